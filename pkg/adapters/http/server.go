package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/internal/presentation/graph"
	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machine"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/aretw0/turing/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// DefaultMaxSteps bounds POST /runs/{id}/run when no max is given.
	DefaultMaxSteps = 10000
	// DefaultMaxGenerations bounds POST /search when no max_generations is given.
	DefaultMaxGenerations = 1000
)

// Server exposes machines, runs and searches over HTTP.
type Server struct {
	Loader  ports.MachineLoader
	Runs    *session.Manager
	Streams *StreamManager
	Watcher ports.Watchable

	gatherer       prometheus.Gatherer
	engineOpts     []runtime.EngineOption
	maxSteps       int
	maxGenerations int
	logger         *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics serves the gatherer's metrics on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithEngineOptions passes options to the engines built for searches.
func WithEngineOptions(opts ...runtime.EngineOption) Option {
	return func(s *Server) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// WithLimits sets the default (and maximum) bounds of runs and searches.
func WithLimits(maxSteps, maxGenerations int) Option {
	return func(s *Server) {
		if maxSteps > 0 {
			s.maxSteps = maxSteps
		}
		if maxGenerations > 0 {
			s.maxGenerations = maxGenerations
		}
	}
}

// WithWatcher enables GET /events, signaled on machine library changes.
func WithWatcher(w ports.Watchable) Option {
	return func(s *Server) {
		s.Watcher = w
	}
}

// NewHandler creates the HTTP handler.
func NewHandler(loader ports.MachineLoader, runs *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Loader:         loader,
		Runs:           runs,
		maxSteps:       DefaultMaxSteps,
		maxGenerations: DefaultMaxGenerations,
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	if s.Watcher == nil {
		if w, ok := loader.(ports.Watchable); ok {
			s.Watcher = w
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Get("/events", s.subscribeReload)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/machines", func(r chi.Router) {
		r.Get("/", s.listMachines)
		r.Get("/{name}", s.getMachine)
		r.Get("/{name}/graph", s.getGraph)
	})

	r.Route("/runs", func(r chi.Router) {
		r.Post("/", s.createRun)
		r.Get("/", s.listRuns)
		r.Get("/{id}", s.getRun)
		r.Delete("/{id}", s.deleteRun)
		r.Post("/{id}/step", s.stepRun)
		r.Post("/{id}/run", s.runRun)
		r.Post("/{id}/reset", s.resetRun)
		r.Get("/{id}/events", s.subscribeRun)
	})

	r.Post("/search", s.search)

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// -- Machines --

// MachineSummary is one entry of GET /machines.
type MachineSummary struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Discipline  domain.Discipline `json:"discipline"`
	Tapes       int               `json:"tapes"`
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "turing-http",
		"version": strings.TrimSpace(turing.Version),
	})
}

func (s *Server) listMachines(w http.ResponseWriter, r *http.Request) {
	names, err := s.Loader.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	out := make([]MachineSummary, 0, len(names))
	for _, name := range names {
		def, err := s.Loader.Get(r.Context(), name)
		if err != nil {
			s.fail(w, err)
			return
		}
		table, err := def.Compile()
		if err != nil {
			s.logger.Warn("skipping invalid machine", "machine", name, "err", err)
			continue
		}
		out = append(out, MachineSummary{
			Name:        def.Name,
			Description: def.Description,
			Discipline:  table.Discipline(),
			Tapes:       table.Tapes(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"machines": out})
}

func (s *Server) getMachine(w http.ResponseWriter, r *http.Request) {
	def, err := s.Loader.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"definition": def,
		"issues":     machine.Validate(def),
	})
}

// getGraph renders the machine as Mermaid. With ?run=<id> the run's current state is highlighted.
func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	table, err := s.table(r, chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, err)
		return
	}

	var overlay *graph.Overlay
	if runID := r.URL.Query().Get("run"); runID != "" {
		run, err := s.Runs.Get(r.Context(), runID)
		if err != nil {
			s.fail(w, err)
			return
		}
		overlay = &graph.Overlay{CurrentState: run.State}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(graph.GenerateMermaid(table, overlay)))
}

// -- Runs --

// CreateRunRequest is the body of POST /runs. Input is shorthand for a single tape.
type CreateRunRequest struct {
	Machine string   `json:"machine"`
	Input   *string  `json:"input,omitempty"`
	Inputs  []string `json:"inputs,omitempty"`
}

func (s *Server) createRun(w http.ResponseWriter, r *http.Request) {
	var body CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		s.logger.Warn("createRun: Invalid request body", "err", err)
		return
	}
	if body.Machine == "" {
		writeError(w, http.StatusBadRequest, "machine is required")
		return
	}
	inputs := body.Inputs
	if body.Input != nil {
		inputs = append([]string{*body.Input}, inputs...)
	}

	run, err := s.Runs.Create(r.Context(), body.Machine, inputs)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, run)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Runs.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": ids})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.Runs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) deleteRun(w http.ResponseWriter, r *http.Request) {
	if err := s.Runs.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) stepRun(w http.ResponseWriter, r *http.Request) {
	run, res, err := s.Runs.Step(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.publish(run)
	writeJSON(w, http.StatusOK, map[string]any{"run": run, "result": res})
}

func (s *Server) runRun(w http.ResponseWriter, r *http.Request) {
	maxSteps := s.maxSteps
	if raw := r.URL.Query().Get("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "max must be a positive integer")
			return
		}
		maxSteps = min(n, s.maxSteps)
	}

	run, res, err := s.Runs.Run(r.Context(), chi.URLParam(r, "id"), maxSteps)
	// An interrupted run still saved its progress; report it as undetermined.
	interrupted := err != nil && run != nil && isCanceled(err)
	if err != nil && !interrupted {
		s.fail(w, err)
		return
	}
	s.publish(run)
	writeJSON(w, http.StatusOK, map[string]any{
		"run":         run,
		"verdict":     res.Verdict,
		"steps":       len(res.Steps),
		"cap_reached": res.CapReached(),
		"interrupted": interrupted,
	})
}

func (s *Server) resetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.Runs.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.publish(run)
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) publish(run *session.Run) {
	if s.Streams.Subscribers(run.ID) == 0 {
		return
	}
	payload, err := json.Marshal(run)
	if err != nil {
		s.logger.Error("failed to encode run update", "run_id", run.ID, "err", err)
		return
	}
	s.Streams.Broadcast(run.ID, string(payload))
}

// -- Search --

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Machine        string `json:"machine"`
	Input          string `json:"input"`
	MaxGenerations int    `json:"max_generations"`
	// Trace includes every generation in the response.
	Trace bool `json:"trace,omitempty"`
}

// SearchResponse is the outcome of a bounded nondeterministic search.
type SearchResponse struct {
	Machine     string                     `json:"machine"`
	Input       string                     `json:"input"`
	Verdict     domain.Verdict             `json:"verdict"`
	Generations int                        `json:"generations"`
	Accepting   []domain.ConfigurationView `json:"accepting,omitempty"`
	Trace       []domain.GenerationResult  `json:"trace,omitempty"`
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Machine == "" {
		writeError(w, http.StatusBadRequest, "machine is required")
		return
	}
	maxGen := s.maxGenerations
	if body.MaxGenerations < 0 {
		writeError(w, http.StatusBadRequest, "max_generations must be positive")
		return
	}
	if body.MaxGenerations > 0 {
		maxGen = min(body.MaxGenerations, s.maxGenerations)
	}

	table, err := s.table(r, body.Machine)
	if err != nil {
		s.fail(w, err)
		return
	}
	ntm, err := runtime.NewNondeterministic(table, s.engineOpts...)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := ntm.Start(body.Input); err != nil {
		s.fail(w, err)
		return
	}
	res, err := ntm.RunContext(r.Context(), maxGen)
	if err != nil {
		s.fail(w, err)
		return
	}

	resp := SearchResponse{
		Machine:     table.Name(),
		Input:       body.Input,
		Verdict:     res.Verdict,
		Generations: ntm.Generation(),
	}
	for _, c := range ntm.Configurations() {
		if table.IsAccepting(c.State()) {
			resp.Accepting = append(resp.Accepting, c.View())
		}
	}
	if body.Trace {
		resp.Trace = res.Generations
	}
	writeJSON(w, http.StatusOK, resp)
}

// -- Helpers --

func (s *Server) table(r *http.Request, name string) (*domain.Table, error) {
	def, err := s.Loader.Get(r.Context(), name)
	if err != nil {
		return nil, err
	}
	return def.Compile()
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrRunNotFound), errors.Is(err, domain.ErrMachineNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTapeCount),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrStepLimitRequired),
		errors.Is(err, domain.ErrNondeterministicTable):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidTable), errors.Is(err, domain.ErrInvalidMove):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeError(w, code, err.Error())
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}
