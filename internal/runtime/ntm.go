package runtime

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/tape"
)

const rootPath = "start"

// Configuration is one branch of a nondeterministic computation.
// It is immutable once created and owns its tape.
type Configuration struct {
	id         string
	parentID   string
	generation int
	state      domain.State
	head       int
	path       string
	tape       *tape.Tape
}

func (c *Configuration) ID() string          { return c.id }
func (c *Configuration) ParentID() string    { return c.parentID }
func (c *Configuration) Generation() int     { return c.generation }
func (c *Configuration) State() domain.State { return c.state }
func (c *Configuration) Head() int           { return c.head }
func (c *Configuration) Path() string        { return c.path }
func (c *Configuration) Tape() *tape.Tape    { return c.tape.Clone() }
func (c *Configuration) Read() domain.Symbol { return c.tape.Read(c.head) }

// View projects the configuration to plain data.
func (c *Configuration) View() domain.ConfigurationView {
	return domain.ConfigurationView{
		ID:       c.id,
		ParentID: c.parentID,
		State:    c.state,
		Head:     c.head,
		Path:     c.path,
		Tape:     c.tape.Content(),
	}
}

func (c *Configuration) key() string {
	return string(c.state) + "\x1f" + strconv.Itoa(c.head) + "\x1f" + c.tape.Fingerprint()
}

// Nondeterministic explores every branch of a single-tape machine breadth-first.
// Each generation is the set of configurations reachable in exactly that many steps,
// with terminal configurations carried forward.
type Nondeterministic struct {
	table *domain.Table
	opts  options

	started    bool
	input      string
	generation int
	status     domain.Status
	current    []*Configuration
	history    [][]*Configuration
	nextID     int
}

// NewNondeterministic creates a search over table. Deterministic tables are accepted and
// simply never branch.
func NewNondeterministic(table *domain.Table, opts ...EngineOption) (*Nondeterministic, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: nil table", domain.ErrInvalidTable)
	}
	if table.Tapes() != 1 {
		return nil, fmt.Errorf("%w: nondeterministic search needs one tape, %s has %d",
			domain.ErrTapeCount, table.Name(), table.Tapes())
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Nondeterministic{table: table, opts: o, status: domain.StatusReady}, nil
}

// Start resets the search to the single initial configuration on input.
func (n *Nondeterministic) Start(input string) error {
	symbols, err := parseInput(n.table.Blank(), input)
	if err != nil {
		return err
	}

	n.nextID = 0
	root := &Configuration{
		id:    n.newID(),
		state: n.table.Initial(),
		path:  rootPath,
		tape:  tape.New(n.table.Blank(), symbols),
	}
	n.started = true
	n.input = input
	n.generation = 0
	n.current = []*Configuration{root}
	n.history = nil
	if n.opts.history {
		n.history = [][]*Configuration{n.current}
	}
	n.status = n.evaluate()
	if n.status == domain.StatusRunning {
		n.status = domain.StatusReady
	}
	return nil
}

func (n *Nondeterministic) newID() string {
	id := "c" + strconv.Itoa(n.nextID)
	n.nextID++
	return id
}

// StepGeneration expands every active configuration once.
// A branch with no transition dies silently; the search only fails when every branch is gone.
// Once the search is finished, further calls change nothing and report NoOp.
func (n *Nondeterministic) StepGeneration() domain.GenerationResult {
	return n.stepGeneration(context.Background())
}

func (n *Nondeterministic) stepGeneration(ctx context.Context) domain.GenerationResult {
	if !n.started || !n.status.Live() {
		res := n.report(0)
		res.NoOp = true
		return res
	}

	seen := make(map[string]bool, len(n.current))
	next := make([]*Configuration, 0, len(n.current))
	add := func(c *Configuration) {
		if n.opts.dedup {
			k := c.key()
			if seen[k] {
				return
			}
			seen[k] = true
		}
		if c.id == "" {
			c.id = n.newID()
		}
		next = append(next, c)
	}

	died := 0
	for _, c := range n.current {
		if n.table.IsTerminal(c.state) {
			add(c)
			continue
		}
		read := c.tape.Read(c.head)
		tr, ok := n.table.Lookup(c.state, []domain.Symbol{read})
		if !ok {
			died++
			continue
		}
		for _, out := range tr.Outcomes() {
			w, m := out.Apply(0, read)
			t := c.tape.Clone()
			t.Write(c.head, w)
			add(&Configuration{
				parentID:   c.id,
				generation: n.generation + 1,
				state:      out.Next,
				head:       c.head + m.Delta(),
				path:       c.path + " → " + string(out.Next) + "," + string(m),
				tape:       t,
			})
		}
	}

	n.generation++
	n.current = next
	if n.opts.history {
		n.history = append(n.history, next)
	}
	n.status = n.evaluate()

	res := n.report(died)
	n.emitGeneration(ctx, res)
	if !n.status.Live() {
		n.emitHalt(ctx)
	}
	return res
}

// evaluate derives the search status from the current set: accepting anywhere wins,
// no active configuration left is a rejection.
func (n *Nondeterministic) evaluate() domain.Status {
	active := 0
	for _, c := range n.current {
		if n.table.IsAccepting(c.state) {
			return domain.StatusAccepted
		}
		if !n.table.IsTerminal(c.state) {
			active++
		}
	}
	if active == 0 {
		return domain.StatusRejected
	}
	return domain.StatusRunning
}

func (n *Nondeterministic) report(died int) domain.GenerationResult {
	res := domain.GenerationResult{
		Generation:     n.generation,
		Status:         n.status,
		Active:         n.Active(),
		Died:           died,
		Configurations: make([]domain.ConfigurationView, len(n.current)),
	}
	for i, c := range n.current {
		res.Configurations[i] = c.View()
	}
	return res
}

// Run expands generations until the search finishes or maxGenerations were expanded.
// Reaching the bound is VerdictUndetermined, never a rejection.
func (n *Nondeterministic) Run(maxGenerations int) (domain.SearchResult, error) {
	return n.RunContext(context.Background(), maxGenerations)
}

// RunContext is Run with cancellation checked between generations.
func (n *Nondeterministic) RunContext(ctx context.Context, maxGenerations int) (domain.SearchResult, error) {
	if maxGenerations <= 0 {
		return domain.SearchResult{}, domain.ErrStepLimitRequired
	}
	if !n.started {
		return domain.SearchResult{}, domain.ErrNotStarted
	}

	var gens []domain.GenerationResult
	for i := 0; i < maxGenerations && n.status.Live(); i++ {
		if err := ctx.Err(); err != nil {
			return domain.SearchResult{Generations: gens, Verdict: domain.VerdictUndetermined}, err
		}
		gens = append(gens, n.stepGeneration(ctx))
	}
	return domain.SearchResult{Generations: gens, Verdict: domain.VerdictOf(n.status)}, nil
}

// Generation returns the number of expanded generations.
func (n *Nondeterministic) Generation() int { return n.generation }

// Status returns the search status.
func (n *Nondeterministic) Status() domain.Status { return n.status }

// Input returns the input of the current search.
func (n *Nondeterministic) Input() string { return n.input }

// Table returns the table being searched.
func (n *Nondeterministic) Table() *domain.Table { return n.table }

// Configurations returns the current generation, terminal configurations included.
func (n *Nondeterministic) Configurations() []*Configuration {
	return append([]*Configuration(nil), n.current...)
}

// Active counts configurations that can still move.
func (n *Nondeterministic) Active() int {
	active := 0
	for _, c := range n.current {
		if !n.table.IsTerminal(c.state) {
			active++
		}
	}
	return active
}

// History returns every generation since Start when WithHistory was set, nil otherwise.
func (n *Nondeterministic) History() [][]*Configuration {
	if n.history == nil {
		return nil
	}
	out := make([][]*Configuration, len(n.history))
	for i, g := range n.history {
		out[i] = append([]*Configuration(nil), g...)
	}
	return out
}

func (n *Nondeterministic) emitGeneration(ctx context.Context, res domain.GenerationResult) {
	if n.opts.hooks.OnGeneration == nil {
		return
	}
	n.opts.hooks.OnGeneration(ctx, &domain.GenerationEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventGeneration, Machine: n.table.Name()},
		Result:    res,
	})
}

func (n *Nondeterministic) emitHalt(ctx context.Context) {
	n.opts.logger.Debug("search finished", "machine", n.table.Name(), "status", n.status, "generations", n.generation)
	if n.opts.hooks.OnHalt == nil {
		return
	}
	n.opts.hooks.OnHalt(ctx, &domain.HaltEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventHalt, Machine: n.table.Name()},
		Status:    n.status,
		Steps:     n.generation,
	})
}
