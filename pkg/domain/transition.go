package domain

import (
	"fmt"
	"strings"
)

// TapeAction is what a transition does to one tape.
// An empty (or wildcard) Write keeps the symbol read; an empty Move is Stay.
type TapeAction struct {
	Write Symbol `json:"write,omitempty" yaml:"write,omitempty"`
	Move  Move   `json:"move,omitempty" yaml:"move,omitempty"`
}

// Outcome is one result of applying a transition: the next state plus one action per tape.
// Missing actions default to "keep the symbol, stay".
type Outcome struct {
	Next    State        `json:"next" yaml:"next"`
	Actions []TapeAction `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// Apply resolves the symbol written and the move made on tape i after reading read.
func (o Outcome) Apply(i int, read Symbol) (Symbol, Move) {
	if i >= len(o.Actions) {
		return read, MoveStay
	}
	a := o.Actions[i]
	write := a.Write
	if write == "" || write == Wildcard {
		write = read
	}
	move := a.Move
	if move == "" {
		move = MoveStay
	}
	return write, move
}

// Transition is the value stored for a (state, symbols) key.
// It is either Deterministic (exactly one outcome) or Nondeterministic (a non-empty set).
type Transition interface {
	// Outcomes lists every branch. Deterministic transitions return a single element.
	Outcomes() []Outcome
	// Branching reports whether this is a nondeterministic set.
	Branching() bool
	sealed()
}

// Deterministic is a transition with exactly one outcome.
type Deterministic struct {
	Outcome Outcome
}

func (d Deterministic) Outcomes() []Outcome { return []Outcome{d.Outcome} }
func (d Deterministic) Branching() bool     { return false }
func (Deterministic) sealed()               {}

// Nondeterministic is a transition whose engine branches once per choice.
type Nondeterministic struct {
	Choices []Outcome
}

func (n Nondeterministic) Outcomes() []Outcome { return n.Choices }
func (n Nondeterministic) Branching() bool     { return true }
func (Nondeterministic) sealed()               {}

// keySep never appears in printable symbols.
const keySep = "\x1f"

// Key identifies a rule: a state plus the tuple of symbols under the heads.
type Key struct {
	State State
	Read  string
}

// KeyOf builds the lookup key for a state and the symbols read.
func KeyOf(state State, read []Symbol) Key {
	parts := make([]string, len(read))
	for i, s := range read {
		parts[i] = string(s)
	}
	return Key{State: state, Read: strings.Join(parts, keySep)}
}

// Symbols returns the tuple encoded in the key.
func (k Key) Symbols() []Symbol {
	parts := strings.Split(k.Read, keySep)
	out := make([]Symbol, len(parts))
	for i, p := range parts {
		out[i] = Symbol(p)
	}
	return out
}

func (k Key) String() string {
	return fmt.Sprintf("(%s, %s)", k.State, strings.ReplaceAll(k.Read, keySep, ","))
}
