package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/google/uuid"
)

// DefaultWindow is the tape window width returned with every run view.
const DefaultWindow = 21

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Run is the view of a stored run returned by every Manager operation.
type Run struct {
	ID     string   `json:"id"`
	Inputs []string `json:"inputs"`
	runtime.Snapshot
}

// Manager orchestrates run access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store  ports.RunStore
	loader ports.MachineLoader

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker     ports.DistributedLocker
	lockTTL    time.Duration
	logger     *slog.Logger
	window     int
	engineOpts []runtime.EngineOption
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(m *Manager) {
		m.locker = locker
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithWindow sets the tape window width of returned runs.
func WithWindow(width int) Option {
	return func(m *Manager) {
		m.window = width
	}
}

// WithEngineOptions passes options (hooks, logger) to every engine the Manager rebuilds.
func WithEngineOptions(opts ...runtime.EngineOption) Option {
	return func(m *Manager) {
		m.engineOpts = append(m.engineOpts, opts...)
	}
}

// NewManager creates a run Manager over a store and a machine loader.
func NewManager(store ports.RunStore, loader ports.MachineLoader, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		loader:  loader,
		locks:   make(map[string]*lockEntry),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(),
		window:  DefaultWindow,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(runID) after unlocking.
func (m *Manager) acquire(runID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[runID]
	if !exists {
		entry = &lockEntry{}
		m.locks[runID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(runID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[runID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, runID)
	}
}

// Create starts a new run of the named machine and persists it.
func (m *Manager) Create(ctx context.Context, machineName string, inputs []string) (*Run, error) {
	table, err := m.table(ctx, machineName)
	if err != nil {
		return nil, err
	}
	eng, err := runtime.NewMultiTapeEngine(table, inputs, m.engineOpts...)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	var run *Run
	err = m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		run, err = m.save(ctx, id, eng)
		return err
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("run created", "run_id", id, "machine", machineName, "tapes", table.Tapes())
	return run, nil
}

// Get returns the current view of a run.
func (m *Manager) Get(ctx context.Context, runID string) (*Run, error) {
	var run *Run
	err := m.WithLock(ctx, runID, func(ctx context.Context) error {
		eng, err := m.restore(ctx, runID)
		if err != nil {
			return err
		}
		run = m.view(runID, eng)
		return nil
	})
	return run, err
}

// Step applies one transition to a run.
// Stepping a halted run is a no-op, reported through StepResult.NoOp.
func (m *Manager) Step(ctx context.Context, runID string) (*Run, domain.StepResult, error) {
	var (
		run *Run
		res domain.StepResult
	)
	err := m.WithLock(ctx, runID, func(ctx context.Context) error {
		eng, err := m.restore(ctx, runID)
		if err != nil {
			return err
		}
		res = eng.Step()
		run, err = m.save(ctx, runID, eng)
		return err
	})
	return run, res, err
}

// Run advances a run by at most maxSteps steps.
// A canceled context still persists the steps that were taken.
func (m *Manager) Run(ctx context.Context, runID string, maxSteps int) (*Run, domain.RunResult, error) {
	if maxSteps <= 0 {
		return nil, domain.RunResult{}, domain.ErrStepLimitRequired
	}
	var (
		run *Run
		res domain.RunResult
	)
	err := m.WithLock(ctx, runID, func(ctx context.Context) error {
		eng, err := m.restore(ctx, runID)
		if err != nil {
			return err
		}
		res, err = eng.RunContext(ctx, maxSteps)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		var saveErr error
		run, saveErr = m.save(context.WithoutCancel(ctx), runID, eng)
		return errors.Join(err, saveErr)
	})
	if err == nil {
		m.logger.Debug("run advanced", "run_id", runID, "steps", len(res.Steps), "verdict", res.Verdict)
	}
	return run, res, err
}

// Reset puts a run back on its original inputs.
func (m *Manager) Reset(ctx context.Context, runID string) (*Run, error) {
	var run *Run
	err := m.WithLock(ctx, runID, func(ctx context.Context) error {
		eng, err := m.restore(ctx, runID)
		if err != nil {
			return err
		}
		if err := eng.Reset(eng.Inputs()...); err != nil {
			return err
		}
		run, err = m.save(ctx, runID, eng)
		return err
	})
	return run, err
}

// Delete removes the run from the store.
func (m *Manager) Delete(ctx context.Context, runID string) error {
	err := m.WithLock(ctx, runID, func(ctx context.Context) error {
		return m.store.Delete(ctx, runID)
	})
	if err == nil {
		m.logger.Info("run deleted", "run_id", runID)
	}
	return err
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying run store.
func (m *Manager) Store() ports.RunStore {
	return m.store
}

// WithLock executes a function while holding the lock for the run.
func (m *Manager) WithLock(ctx context.Context, runID string, fn func(context.Context) error) error {
	entry := m.acquire(runID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(runID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, runID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"run_id", runID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) table(ctx context.Context, machineName string) (*domain.Table, error) {
	def, err := m.loader.Get(ctx, machineName)
	if err != nil {
		return nil, err
	}
	return def.Compile()
}

func (m *Manager) restore(ctx context.Context, runID string) (*runtime.MultiTapeEngine, error) {
	cp, err := m.store.Load(ctx, runID)
	if err != nil {
		return nil, err
	}
	table, err := m.table(ctx, cp.Machine)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return runtime.RestoreEngine(table, *cp, m.engineOpts...)
}

func (m *Manager) save(ctx context.Context, runID string, eng *runtime.MultiTapeEngine) (*Run, error) {
	cp := eng.Checkpoint()
	cp.ID = runID
	if err := m.store.Save(ctx, runID, &cp); err != nil {
		return nil, fmt.Errorf("failed to save run %s: %w", runID, err)
	}
	return m.view(runID, eng), nil
}

func (m *Manager) view(runID string, eng *runtime.MultiTapeEngine) *Run {
	return &Run{
		ID:       runID,
		Inputs:   eng.Inputs(),
		Snapshot: eng.Snapshot(m.window),
	}
}
