package runtime

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/tape"
)

// MultiTapeEngine runs a deterministic machine with N independently headed tapes.
// All heads read, write and move in one Step; the table keys on the shared state plus
// the tuple of symbols read. The engine knows nothing about phases, only states.
//
// An engine is not safe for concurrent use. Each call to Step is atomic: on return the
// engine is consistent and can be inspected or abandoned.
type MultiTapeEngine struct {
	table  *domain.Table
	opts   options
	inputs []string

	state  domain.State
	tapes  []*tape.Tape
	heads  []int
	step   int
	status domain.Status
}

// NewMultiTapeEngine creates an engine with one input per tape, starting with tape 0.
// Tapes without an input start blank. More inputs than tapes is ErrTapeCount.
func NewMultiTapeEngine(table *domain.Table, inputs []string, opts ...EngineOption) (*MultiTapeEngine, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: nil table", domain.ErrInvalidTable)
	}
	if table.Discipline() != domain.DisciplineDeterministic {
		return nil, fmt.Errorf("%w: %s is %s", domain.ErrNondeterministicTable, table.Name(), table.Discipline())
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	e := &MultiTapeEngine{table: table, opts: o}
	if err := e.Reset(inputs...); err != nil {
		return nil, err
	}
	return e, nil
}

// Reset reinitializes tapes, heads, state and step counter, exactly like a fresh engine.
func (e *MultiTapeEngine) Reset(inputs ...string) error {
	if len(inputs) == 0 {
		inputs = []string{""}
	}
	if len(inputs) > e.table.Tapes() {
		return fmt.Errorf("%w: %d inputs for %d tapes", domain.ErrTapeCount, len(inputs), e.table.Tapes())
	}

	tapes := make([]*tape.Tape, e.table.Tapes())
	for i := range tapes {
		var in string
		if i < len(inputs) {
			in = inputs[i]
		}
		symbols, err := parseInput(e.table.Blank(), in)
		if err != nil {
			return fmt.Errorf("tape %d: %w", i, err)
		}
		tapes[i] = tape.New(e.table.Blank(), symbols)
	}

	e.inputs = append([]string(nil), inputs...)
	e.tapes = tapes
	e.heads = make([]int, len(tapes))
	e.state = e.table.Initial()
	e.step = 0
	e.status = domain.StatusReady
	if e.table.IsTerminal(e.state) {
		e.status = e.table.StatusOf(e.state)
	}
	return nil
}

// parseInput splits an input into one symbol per rune.
func parseInput(blank domain.Symbol, input string) ([]domain.Symbol, error) {
	if !utf8.ValidString(input) {
		return nil, fmt.Errorf("%w: not valid UTF-8", domain.ErrInvalidInput)
	}
	symbols := domain.Symbols(input)
	for i, s := range symbols {
		if s == blank || s == domain.Wildcard {
			return nil, fmt.Errorf("%w: reserved symbol %q at position %d", domain.ErrInvalidInput, s, i)
		}
	}
	return symbols, nil
}

// Step applies one transition to every tape.
func (e *MultiTapeEngine) Step() domain.StepResult {
	return e.stepContext(context.Background())
}

func (e *MultiTapeEngine) stepContext(ctx context.Context) domain.StepResult {
	if !e.status.Live() {
		return domain.StepResult{
			Step:   e.step,
			From:   e.state,
			To:     e.state,
			Heads:  e.Heads(),
			Status: e.status,
			NoOp:   true,
		}
	}

	read := make([]domain.Symbol, len(e.tapes))
	for i, t := range e.tapes {
		read[i] = t.Read(e.heads[i])
	}

	tr, ok := e.table.Lookup(e.state, read)
	if !ok {
		e.status = domain.StatusStuck
		e.opts.logger.Debug("no transition defined, machine is stuck",
			"machine", e.table.Name(), "state", e.state, "read", domain.Join(read), "step", e.step)
		res := domain.StepResult{
			Step:   e.step,
			From:   e.state,
			To:     e.state,
			Read:   read,
			Heads:  e.Heads(),
			Status: e.status,
			Stuck:  true,
		}
		e.emitHalt(ctx)
		return res
	}

	// Deterministic tables never hold branching transitions (checked on construction).
	out := tr.Outcomes()[0]
	written := make([]domain.Symbol, len(e.tapes))
	moves := make([]domain.Move, len(e.tapes))
	for i, t := range e.tapes {
		w, m := out.Apply(i, read[i])
		t.Write(e.heads[i], w)
		e.heads[i] += m.Delta()
		written[i] = w
		moves[i] = m
	}

	from := e.state
	e.state = out.Next
	e.step++
	e.status = e.table.StatusOf(e.state)

	res := domain.StepResult{
		Step:    e.step,
		From:    from,
		To:      e.state,
		Read:    read,
		Written: written,
		Moves:   moves,
		Heads:   e.Heads(),
		Status:  e.status,
	}
	e.emitStep(ctx, res)
	if !e.status.Live() {
		e.emitHalt(ctx)
	}
	return res
}

// Run steps until the machine halts or maxSteps steps were attempted.
// maxSteps must be positive: machines are not guaranteed to halt.
func (e *MultiTapeEngine) Run(maxSteps int) (domain.RunResult, error) {
	return e.RunContext(context.Background(), maxSteps)
}

// RunContext is Run with cooperative cancellation, checked between steps.
// A canceled run reports VerdictUndetermined together with ctx.Err().
func (e *MultiTapeEngine) RunContext(ctx context.Context, maxSteps int) (domain.RunResult, error) {
	if maxSteps <= 0 {
		return domain.RunResult{}, domain.ErrStepLimitRequired
	}

	var steps []domain.StepResult
	for i := 0; i < maxSteps && e.status.Live(); i++ {
		if err := ctx.Err(); err != nil {
			return domain.RunResult{Steps: steps, Verdict: domain.VerdictUndetermined}, err
		}
		steps = append(steps, e.stepContext(ctx))
	}
	return domain.RunResult{Steps: steps, Verdict: domain.VerdictOf(e.status)}, nil
}

// State returns the current machine state.
func (e *MultiTapeEngine) State() domain.State { return e.state }

// Status returns the run status.
func (e *MultiTapeEngine) Status() domain.Status { return e.status }

// Steps returns the number of transitions applied.
func (e *MultiTapeEngine) Steps() int { return e.step }

// Table returns the transition table the engine runs.
func (e *MultiTapeEngine) Table() *domain.Table { return e.table }

// Inputs returns the inputs the engine was last reset with.
func (e *MultiTapeEngine) Inputs() []string { return append([]string(nil), e.inputs...) }

// Heads returns a copy of the head positions.
func (e *MultiTapeEngine) Heads() []int {
	return append([]int(nil), e.heads...)
}

// TapeCount returns the number of tapes.
func (e *MultiTapeEngine) TapeCount() int { return len(e.tapes) }

// TapeAt returns a read-only copy of tape i.
func (e *MultiTapeEngine) TapeAt(i int) *tape.Tape {
	return e.tapes[i].Clone()
}

// Snapshot is the per-step view a presentation layer renders.
type Snapshot struct {
	Machine string        `json:"machine"`
	State   domain.State  `json:"state"`
	Step    int           `json:"step"`
	Status  domain.Status `json:"status"`
	Heads   []int         `json:"heads"`
	Windows []tape.Window `json:"windows"`
	Content []string      `json:"content"`
}

// Snapshot returns the current state with a tape window of the given width per tape,
// centered on each head.
func (e *MultiTapeEngine) Snapshot(width int) Snapshot {
	s := Snapshot{
		Machine: e.table.Name(),
		State:   e.state,
		Step:    e.step,
		Status:  e.status,
		Heads:   e.Heads(),
		Windows: make([]tape.Window, len(e.tapes)),
		Content: make([]string, len(e.tapes)),
	}
	for i, t := range e.tapes {
		s.Windows[i] = t.Window(e.heads[i], width)
		s.Content[i] = t.Content()
	}
	return s
}

func (e *MultiTapeEngine) emitStep(ctx context.Context, res domain.StepResult) {
	if e.opts.hooks.OnStep == nil {
		return
	}
	e.opts.hooks.OnStep(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStep, Machine: e.table.Name()},
		Result:    res,
	})
}

func (e *MultiTapeEngine) emitHalt(ctx context.Context) {
	e.opts.logger.Debug("machine halted", "machine", e.table.Name(), "status", e.status, "steps", e.step)
	if e.opts.hooks.OnHalt == nil {
		return
	}
	e.opts.hooks.OnHalt(ctx, &domain.HaltEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventHalt, Machine: e.table.Name()},
		Status:    e.status,
		Steps:     e.step,
	})
}
