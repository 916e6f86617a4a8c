package domain

import (
	"fmt"
	"maps"
	"slices"
)

// Rule is one entry of a Table, kept in declaration order for introspection.
type Rule struct {
	State      State
	Read       []Symbol
	Transition Transition
}

// TableConfig holds the non-rule parts of a machine.
type TableConfig struct {
	Name       string
	Discipline Discipline
	Tapes      int
	Blank      Symbol
	Initial    State
	Accept     []State
	Reject     []State
	Halt       []State
}

// Table is a compiled transition function.
// It is immutable once handed to an engine; engines only call its read methods.
type Table struct {
	name       string
	discipline Discipline
	tapes      int
	blank      Symbol
	initial    State

	accept map[State]bool
	reject map[State]bool
	halt   map[State]bool

	rules    map[Key]Transition
	patterns map[State][]pattern
	order    []Rule
}

type pattern struct {
	read      []Symbol
	wildcards int
	tr        Transition
}

// NewTable creates an empty table. Rules are added with Add.
func NewTable(cfg TableConfig) *Table {
	if cfg.Tapes <= 0 {
		cfg.Tapes = 1
	}
	if cfg.Blank == "" {
		cfg.Blank = DefaultBlank
	}
	if cfg.Discipline == "" {
		cfg.Discipline = DisciplineDeterministic
	}
	return &Table{
		name:       cfg.Name,
		discipline: cfg.Discipline,
		tapes:      cfg.Tapes,
		blank:      cfg.Blank,
		initial:    cfg.Initial,
		accept:     setOf(cfg.Accept),
		reject:     setOf(cfg.Reject),
		halt:       setOf(cfg.Halt),
		rules:      make(map[Key]Transition),
		patterns:   make(map[State][]pattern),
	}
}

func setOf(states []State) map[State]bool {
	m := make(map[State]bool, len(states))
	for _, s := range states {
		m[s] = true
	}
	return m
}

// Add registers a transition for (state, read).
// A deterministic table refuses branching transitions; every table refuses duplicate keys.
func (t *Table) Add(state State, read []Symbol, tr Transition) error {
	if len(read) != t.tapes {
		return fmt.Errorf("%w: rule %s reads %d symbols, machine has %d tapes", ErrInvalidTable, KeyOf(state, read), len(read), t.tapes)
	}
	outcomes := tr.Outcomes()
	if len(outcomes) == 0 {
		return fmt.Errorf("%w: rule %s has no outcomes", ErrInvalidTable, KeyOf(state, read))
	}
	if tr.Branching() && len(outcomes) == 1 {
		tr = Deterministic{Outcome: outcomes[0]}
	}
	if tr.Branching() && t.discipline == DisciplineDeterministic {
		return fmt.Errorf("%w: rule %s has %d outcomes", ErrNondeterministicTable, KeyOf(state, read), len(outcomes))
	}
	for _, o := range outcomes {
		if o.Next == "" {
			return fmt.Errorf("%w: rule %s has an outcome without a next state", ErrInvalidTable, KeyOf(state, read))
		}
		if len(o.Actions) > t.tapes {
			return fmt.Errorf("%w: rule %s has %d tape actions, machine has %d tapes", ErrInvalidTable, KeyOf(state, read), len(o.Actions), t.tapes)
		}
	}

	key := KeyOf(state, read)
	if _, exists := t.rules[key]; exists {
		return fmt.Errorf("%w: duplicate rule %s", ErrInvalidTable, key)
	}
	t.rules[key] = tr

	wild := 0
	for _, s := range read {
		if s == Wildcard {
			wild++
		}
	}
	if wild > 0 {
		t.patterns[state] = append(t.patterns[state], pattern{read: append([]Symbol(nil), read...), wildcards: wild, tr: tr})
	}

	t.order = append(t.order, Rule{State: state, Read: append([]Symbol(nil), read...), Transition: tr})
	return nil
}

// Lookup finds the transition for the symbols read in state.
// An exact rule wins; otherwise the wildcard rule with the fewest wildcards,
// earliest declared first.
func (t *Table) Lookup(state State, read []Symbol) (Transition, bool) {
	if tr, ok := t.rules[KeyOf(state, read)]; ok {
		return tr, true
	}

	var best *pattern
	for i := range t.patterns[state] {
		p := &t.patterns[state][i]
		if !p.matches(read) {
			continue
		}
		if best == nil || p.wildcards < best.wildcards {
			best = p
		}
	}
	if best == nil {
		return nil, false
	}
	return best.tr, true
}

func (p *pattern) matches(read []Symbol) bool {
	if len(read) != len(p.read) {
		return false
	}
	for i, s := range p.read {
		if s != Wildcard && s != read[i] {
			return false
		}
	}
	return true
}

func (t *Table) Name() string           { return t.name }
func (t *Table) Discipline() Discipline { return t.discipline }
func (t *Table) Tapes() int             { return t.tapes }
func (t *Table) Blank() Symbol          { return t.blank }
func (t *Table) Initial() State         { return t.initial }

// Rules returns every rule in declaration order.
func (t *Table) Rules() []Rule {
	return append([]Rule(nil), t.order...)
}

func (t *Table) IsAccepting(s State) bool { return t.accept[s] }
func (t *Table) IsRejecting(s State) bool { return t.reject[s] }
func (t *Table) IsHalting(s State) bool   { return t.halt[s] }

// IsTerminal reports whether execution stops on entering s.
func (t *Table) IsTerminal(s State) bool {
	return t.accept[s] || t.reject[s] || t.halt[s]
}

// StatusOf maps a state to the status a run has after entering it.
// Accepting wins over rejecting if a state is (wrongly) declared as both.
func (t *Table) StatusOf(s State) Status {
	switch {
	case t.accept[s]:
		return StatusAccepted
	case t.reject[s]:
		return StatusRejected
	case t.halt[s]:
		return StatusHalted
	default:
		return StatusRunning
	}
}

// TerminalStates lists the accept, reject and halt states, each sorted.
func (t *Table) TerminalStates() (accept, reject, halt []State) {
	return slices.Sorted(maps.Keys(t.accept)), slices.Sorted(maps.Keys(t.reject)), slices.Sorted(maps.Keys(t.halt))
}
