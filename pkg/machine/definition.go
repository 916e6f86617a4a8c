package machine

import (
	"slices"

	"github.com/aretw0/turing/pkg/domain"
)

// Definition is an authored machine.
//
// Symbols in transitions may be any short string, but inputs are split one symbol per
// rune, so only single-character symbols can appear in an input. Longer symbols are
// reachable only through writes.
type Definition struct {
	Name        string            `json:"name" yaml:"name" mapstructure:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Discipline  domain.Discipline `json:"discipline,omitempty" yaml:"discipline,omitempty" mapstructure:"discipline"`
	Tapes       int               `json:"tapes,omitempty" yaml:"tapes,omitempty" mapstructure:"tapes"`
	Blank       string            `json:"blank,omitempty" yaml:"blank,omitempty" mapstructure:"blank"`

	Initial string   `json:"initial" yaml:"initial" mapstructure:"initial"`
	Accept  []string `json:"accept,omitempty" yaml:"accept,omitempty" mapstructure:"accept"`
	Reject  []string `json:"reject,omitempty" yaml:"reject,omitempty" mapstructure:"reject"`
	Halt    []string `json:"halt,omitempty" yaml:"halt,omitempty" mapstructure:"halt"`

	Transitions map[string]map[string]OutcomeSet `json:"transitions,omitempty" yaml:"transitions,omitempty" mapstructure:"transitions"`
	Rules       []RuleDef                        `json:"rules,omitempty" yaml:"rules,omitempty" mapstructure:"rules"`

	// Examples document expected behavior and are checked by `turing validate`.
	Examples []Example `json:"examples,omitempty" yaml:"examples,omitempty" mapstructure:"examples"`
}

// OutcomeSpec is one authored outcome of a single-tape transition.
type OutcomeSpec struct {
	Next  string `json:"next" yaml:"next" mapstructure:"next"`
	Write string `json:"write,omitempty" yaml:"write,omitempty" mapstructure:"write"`
	Move  string `json:"move,omitempty" yaml:"move,omitempty" mapstructure:"move"`
}

// OutcomeSet is the value stored under transitions[state][symbol].
// More than one element makes the transition nondeterministic.
type OutcomeSet []OutcomeSpec

// RuleDef is one row of the tuple notation. Rows sharing a key in a
// nondeterministic machine become the choices of one transition.
type RuleDef struct {
	State string   `json:"state" yaml:"state" mapstructure:"state"`
	Read  []string `json:"read" yaml:"read,flow" mapstructure:"read"`
	Next  string   `json:"next" yaml:"next" mapstructure:"next"`
	Write []string `json:"write,omitempty" yaml:"write,flow,omitempty" mapstructure:"write"`
	Move  []string `json:"move,omitempty" yaml:"move,flow,omitempty" mapstructure:"move"`
}

// Example is a documented input together with what the machine must do with it.
type Example struct {
	Input   string         `json:"input" yaml:"input" mapstructure:"input"`
	Verdict domain.Verdict `json:"verdict" yaml:"verdict" mapstructure:"verdict"`
	// Output is the expected content of the first tape, checked when set.
	Output string `json:"output,omitempty" yaml:"output,omitempty" mapstructure:"output"`
}

// TapeCount returns the declared number of tapes, inferring it from the rules when unset.
func (d *Definition) TapeCount() int {
	if d.Tapes > 0 {
		return d.Tapes
	}
	if len(d.Rules) > 0 && len(d.Rules[0].Read) > 0 {
		return len(d.Rules[0].Read)
	}
	return 1
}

// IsTerminal reports whether s is listed as an accept, reject or halt state.
func (d *Definition) IsTerminal(s string) bool {
	return slices.Contains(d.Accept, s) || slices.Contains(d.Reject, s) || slices.Contains(d.Halt, s)
}
