package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machine"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	machinesURI = "turing://machines"

	defaultMaxSteps       = 10000
	defaultMaxGenerations = 1000
)

// MachineSummary describes one machine of the library.
type MachineSummary struct {
	Name        string            `json:"name" jsonschema_description:"Machine name, used by the other tools"`
	Description string            `json:"description,omitempty" jsonschema_description:"What the machine computes"`
	Discipline  domain.Discipline `json:"discipline" jsonschema_description:"deterministic or nondeterministic"`
	Tapes       int               `json:"tapes" jsonschema_description:"Number of tapes"`
}

// ListResponse is the output of list_machines.
type ListResponse struct {
	Machines []MachineSummary `json:"machines"`
}

// RunArgs are the arguments of run_machine.
type RunArgs struct {
	Machine  string   `json:"machine"`
	Input    string   `json:"input"`
	Inputs   []string `json:"inputs,omitempty"`
	MaxSteps int      `json:"max_steps,omitempty"`
}

// RunResponse is the output of run_machine.
type RunResponse struct {
	Machine    string         `json:"machine"`
	Verdict    domain.Verdict `json:"verdict" jsonschema_description:"accept, reject, halt, stuck or undetermined when the step limit was hit"`
	Status     domain.Status  `json:"status"`
	State      domain.State   `json:"state" jsonschema_description:"State the machine stopped in"`
	Steps      int            `json:"steps"`
	Tapes      []string       `json:"tapes" jsonschema_description:"Final tape contents, blanks trimmed"`
	CapReached bool           `json:"cap_reached"`
}

// SearchArgs are the arguments of search_machine.
type SearchArgs struct {
	Machine        string `json:"machine"`
	Input          string `json:"input"`
	MaxGenerations int    `json:"max_generations,omitempty"`
}

// SearchResponse is the output of search_machine.
type SearchResponse struct {
	Machine     string                     `json:"machine"`
	Verdict     domain.Verdict             `json:"verdict"`
	Generations int                        `json:"generations"`
	Accepting   []domain.ConfigurationView `json:"accepting,omitempty" jsonschema_description:"Accepting configurations with the path that reached them"`
}

// Server exposes the machine library as an MCP server.
type Server struct {
	loader     ports.MachineLoader
	engineOpts []runtime.EngineOption
	logger     *slog.Logger
	mcpServer  *server.MCPServer

	maxSteps       int
	maxGenerations int
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEngineOptions passes options to every engine the tools build.
func WithEngineOptions(opts ...runtime.EngineOption) Option {
	return func(s *Server) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// WithLimits sets the default (and maximum) bounds of run_machine and search_machine.
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

// NewServer creates a new MCP Server instance.
func NewServer(loader ports.MachineLoader, opts ...Option) *Server {
	s := &Server{
		loader:         loader,
		logger:         logging.NewNop(),
		mcpServer:      server.NewMCPServer("turing-mcp", strings.TrimSpace(turing.Version)),
		maxSteps:       defaultMaxSteps,
		maxGenerations: defaultMaxGenerations,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE, until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: list_machines
	listTool := mcp.NewTool("list_machines",
		mcp.WithDescription("List the Turing machines available in the library."),
		mcp.WithOutputSchema[ListResponse](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleList))

	// TOOL: describe_machine
	s.mcpServer.AddTool(mcp.NewTool("describe_machine",
		mcp.WithDescription("Get the full definition of a machine as YAML."),
		mcp.WithString("machine", mcp.Required(), mcp.Description("Machine name")),
	), s.handleDescribe)

	// TOOL: run_machine
	runTool := mcp.NewTool("run_machine",
		mcp.WithDescription("Run a deterministic machine on an input until it halts or the step limit is hit."),
		mcp.WithString("machine", mcp.Required(), mcp.Description("Machine name")),
		mcp.WithString("input", mcp.Description("Input written on the first tape")),
		mcp.WithArray("inputs", mcp.Description("Inputs of the following tapes (multi-tape machines)"), mcp.WithStringItems()),
		mcp.WithNumber("max_steps", mcp.Description("Step limit, capped by the server (default 10000)")),
		mcp.WithOutputSchema[RunResponse](),
	)
	s.mcpServer.AddTool(runTool, mcp.NewStructuredToolHandler(s.handleRun))

	// TOOL: search_machine
	searchTool := mcp.NewTool("search_machine",
		mcp.WithDescription("Explore every computation branch of a machine breadth-first. Accepts if any branch accepts."),
		mcp.WithString("machine", mcp.Required(), mcp.Description("Machine name")),
		mcp.WithString("input", mcp.Description("Input written on the tape")),
		mcp.WithNumber("max_generations", mcp.Description("Generation limit, capped by the server (default 1000)")),
		mcp.WithOutputSchema[SearchResponse](),
	)
	s.mcpServer.AddTool(searchTool, mcp.NewStructuredToolHandler(s.handleSearch))
}

func (s *Server) table(ctx context.Context, name string) (*domain.Table, error) {
	if name == "" {
		return nil, errors.New("machine is required")
	}
	def, err := s.loader.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return def.Compile()
}

func (s *Server) summaries(ctx context.Context) ([]MachineSummary, error) {
	names, err := s.loader.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]MachineSummary, 0, len(names))
	for _, name := range names {
		def, err := s.loader.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		table, err := def.Compile()
		if err != nil {
			s.logger.Warn("skipping invalid machine", "machine", name, "err", err)
			continue
		}
		out = append(out, MachineSummary{
			Name:        def.Name,
			Description: strings.TrimSpace(def.Description),
			Discipline:  table.Discipline(),
			Tapes:       table.Tapes(),
		})
	}
	return out, nil
}

func (s *Server) handleList(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (ListResponse, error) {
	machines, err := s.summaries(ctx)
	if err != nil {
		return ListResponse{}, fmt.Errorf("list failed: %w", err)
	}
	return ListResponse{Machines: machines}, nil
}

func (s *Server) handleDescribe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("machine")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	def, err := s.loader.Get(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("describe failed: %v", err)), nil
	}
	data, err := machine.MarshalYAML(def)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("describe failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleRun(ctx context.Context, _ mcp.CallToolRequest, args RunArgs) (RunResponse, error) {
	table, err := s.table(ctx, args.Machine)
	if err != nil {
		return RunResponse{}, fmt.Errorf("run failed: %w", err)
	}
	inputs := append([]string{args.Input}, args.Inputs...)
	eng, err := runtime.NewMultiTapeEngine(table, inputs, s.engineOpts...)
	if err != nil {
		return RunResponse{}, fmt.Errorf("run failed: %w", err)
	}
	maxSteps := s.maxSteps
	if args.MaxSteps > 0 {
		maxSteps = min(args.MaxSteps, s.maxSteps)
	}
	res, err := eng.RunContext(ctx, maxSteps)
	if err != nil {
		return RunResponse{}, fmt.Errorf("run failed: %w", err)
	}

	snap := eng.Snapshot(0)
	s.logger.Debug("MCP run finished", "machine", table.Name(), "verdict", res.Verdict, "steps", snap.Step)
	return RunResponse{
		Machine:    table.Name(),
		Verdict:    res.Verdict,
		Status:     snap.Status,
		State:      snap.State,
		Steps:      snap.Step,
		Tapes:      snap.Content,
		CapReached: res.CapReached(),
	}, nil
}

func (s *Server) handleSearch(ctx context.Context, _ mcp.CallToolRequest, args SearchArgs) (SearchResponse, error) {
	table, err := s.table(ctx, args.Machine)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search failed: %w", err)
	}
	ntm, err := runtime.NewNondeterministic(table, s.engineOpts...)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search failed: %w", err)
	}
	if err := ntm.Start(args.Input); err != nil {
		return SearchResponse{}, fmt.Errorf("search failed: %w", err)
	}
	maxGen := s.maxGenerations
	if args.MaxGenerations > 0 {
		maxGen = min(args.MaxGenerations, s.maxGenerations)
	}
	res, err := ntm.RunContext(ctx, maxGen)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search failed: %w", err)
	}

	resp := SearchResponse{
		Machine:     table.Name(),
		Verdict:     res.Verdict,
		Generations: ntm.Generation(),
	}
	for _, c := range ntm.Configurations() {
		if table.IsAccepting(c.State()) {
			resp.Accepting = append(resp.Accepting, c.View())
		}
	}
	return resp, nil
}

func (s *Server) registerResources() {
	// EXPOSE: turing://machines
	s.mcpServer.AddResource(mcp.NewResource(machinesURI, "Machine Library",
		mcp.WithResourceDescription("Every machine available to run_machine and search_machine"),
		mcp.WithMIMEType("application/json"),
	), s.readMachines)
}

func (s *Server) readMachines(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	machines, err := s.summaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	jsonBytes, err := json.Marshal(machines)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      machinesURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
