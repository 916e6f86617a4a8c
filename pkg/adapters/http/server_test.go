package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/observability"
	"github.com/aretw0/turing/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockWatcher signals a fixed number of reloads.
type MockWatcher struct {
	Events int
}

func (m *MockWatcher) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, m.Events)
	for i := 0; i < m.Events; i++ {
		ch <- struct{}{}
	}
	close(ch)
	return ch, nil
}

func newTestHandler(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	loader, err := memory.NewBuiltinLoader()
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	hooks := runtime.WithLifecycleHooks(metrics.Hooks())

	runs := session.NewManager(memory.NewStore(), loader, session.WithEngineOptions(hooks))
	opts = append([]Option{WithMetrics(reg), WithEngineOptions(hooks)}, opts...)
	return NewHandler(loader, runs, opts...)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthAndInfo(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, "GET", "/info", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "turing-http", decode[map[string]string](t, w)["app"])
}

func TestMachines(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/machines", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Machines []MachineSummary `json:"machines"`
	}](t, w)
	byName := map[string]MachineSummary{}
	for _, m := range list.Machines {
		byName[m.Name] = m
	}
	assert.Equal(t, domain.DisciplineNondeterministic, byName["pattern-101"].Discipline)
	assert.Equal(t, 2, byName["ww-two-tape"].Tapes)

	w = do(t, h, "GET", "/machines/bit-flip", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"initial":"q0"`)

	w = do(t, h, "GET", "/machines/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "machine not found")

	w = do(t, h, "GET", "/machines/bit-flip/graph", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "graph LR"))
}

func TestRunLifecycle(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "POST", "/runs", map[string]any{"machine": "binary-increment", "input": "1011"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	run := decode[session.Run](t, w)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, domain.StatusReady, run.Status)

	w = do(t, h, "POST", "/runs/"+run.ID+"/step", nil)
	require.Equal(t, http.StatusOK, w.Code)
	step := decode[struct {
		Run    session.Run       `json:"run"`
		Result domain.StepResult `json:"result"`
	}](t, w)
	assert.Equal(t, 1, step.Result.Step)

	w = do(t, h, "POST", "/runs/"+run.ID+"/run?max=100", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ran := decode[struct {
		Run        session.Run    `json:"run"`
		Verdict    domain.Verdict `json:"verdict"`
		CapReached bool           `json:"cap_reached"`
	}](t, w)
	assert.Equal(t, domain.VerdictAccept, ran.Verdict)
	assert.False(t, ran.CapReached)
	assert.Equal(t, "1100", ran.Run.Content[0])

	w = do(t, h, "GET", "/runs/"+run.ID+"", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "GET", "/machines/binary-increment/graph?run="+run.ID, nil)
	assert.Contains(t, w.Body.String(), "class halt_accept current;")

	w = do(t, h, "POST", "/runs/"+run.ID+"/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[session.Run](t, w).Step)

	w = do(t, h, "GET", "/runs", nil)
	assert.Contains(t, w.Body.String(), run.ID)

	w = do(t, h, "DELETE", "/runs/"+run.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, "GET", "/runs/"+run.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `turing_halts_total{machine="binary-increment",status="accepted"} 1`)
}

func TestRunErrors(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		code   int
	}{
		{"Missing Machine", "POST", "/runs", map[string]any{"input": "1"}, http.StatusBadRequest},
		{"Unknown Machine", "POST", "/runs", map[string]any{"machine": "nope"}, http.StatusNotFound},
		{"Nondeterministic Machine", "POST", "/runs", map[string]any{"machine": "pattern-101", "input": "1"}, http.StatusBadRequest},
		{"Blank In Input", "POST", "/runs", map[string]any{"machine": "bit-flip", "input": "1_1"}, http.StatusBadRequest},
		{"Too Many Inputs", "POST", "/runs", map[string]any{"machine": "bit-flip", "inputs": []string{"1", "0"}}, http.StatusBadRequest},
		{"Unknown Run", "POST", "/runs/missing/step", nil, http.StatusNotFound},
		{"Bad Max", "POST", "/runs/missing/run?max=-1", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			assert.NotEmpty(t, decode[map[string]string](t, w)["error"])
		})
	}

	req := httptest.NewRequest("POST", "/runs", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunInterrupted(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "POST", "/runs", map[string]any{"machine": "bit-flip", "input": "0101"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	run := decode[session.Run](t, w)
	w = do(t, h, "POST", "/runs/"+run.ID+"/step", nil)
	require.Equal(t, http.StatusOK, w.Code)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest("POST", "/runs/"+run.ID+"/run?max=100", nil).WithContext(ctx)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ran := decode[struct {
		Run         session.Run    `json:"run"`
		Verdict     domain.Verdict `json:"verdict"`
		Interrupted bool           `json:"interrupted"`
	}](t, w)
	assert.Equal(t, domain.VerdictUndetermined, ran.Verdict)
	assert.True(t, ran.Interrupted)
	assert.Equal(t, 1, ran.Run.Step, "progress made before the cancel is kept")
}

func TestStatusOf_ContextErrors(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, statusOf(fmt.Errorf("run: %w", context.Canceled)))
	assert.Equal(t, http.StatusGatewayTimeout, statusOf(context.DeadlineExceeded))
	assert.Equal(t, http.StatusNotFound, statusOf(domain.ErrRunNotFound))
}

func TestSearch(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "POST", "/search", SearchRequest{Machine: "pattern-101", Input: "0101", MaxGenerations: 20, Trace: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[SearchResponse](t, w)
	assert.Equal(t, domain.VerdictAccept, res.Verdict)
	require.NotEmpty(t, res.Accepting)
	assert.Contains(t, res.Accepting[0].Path, "accept")
	assert.Len(t, res.Trace, res.Generations)

	w = do(t, h, "POST", "/search", SearchRequest{Machine: "pattern-101", Input: "000"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.VerdictReject, decode[SearchResponse](t, w).Verdict)

	w = do(t, h, "POST", "/search", SearchRequest{Machine: "ww-two-tape", Input: "0"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "searches run on one tape")
}

func TestSubscribeEvents_Reload(t *testing.T) {
	h := newTestHandler(t, WithWatcher(&MockWatcher{Events: 1}))

	w := do(t, h, "GET", "/events", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "event: ping")
	assert.Contains(t, body, "data: reload")
}

func TestSubscribeEvents_NotWatchable(t *testing.T) {
	h := newTestHandler(t)
	w := do(t, h, "GET", "/events", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestSubscribeEvents_Run(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "POST", "/runs", map[string]any{"machine": "bit-flip", "input": "01"})
	require.Equal(t, http.StatusCreated, w.Code)
	run := decode[session.Run](t, w)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest("GET", "/runs/"+run.ID+"/events", nil).WithContext(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(wSub, reqSub)
	}()

	time.Sleep(100 * time.Millisecond) // Wait for subscription to register

	w = do(t, h, "POST", "/runs/"+run.ID+"/step", nil)
	require.Equal(t, http.StatusOK, w.Code)

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	output := wSub.Body.String()
	assert.Contains(t, output, "event: ping")
	assert.Contains(t, output, "event: run")
	assert.Contains(t, output, `"step":1`)
}
