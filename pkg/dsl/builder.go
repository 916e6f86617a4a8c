package dsl

import (
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machine"
)

// Builder manages the machine construction.
type Builder struct {
	def machine.Definition
}

// New creates a new machine builder.
func New(name string) *Builder {
	return &Builder{def: machine.Definition{Name: name}}
}

// Describe sets the human readable description.
func (b *Builder) Describe(text string) *Builder {
	b.def.Description = text
	return b
}

// Initial sets the start state.
func (b *Builder) Initial(state string) *Builder {
	b.def.Initial = state
	return b
}

// Accept adds accepting states.
func (b *Builder) Accept(states ...string) *Builder {
	b.def.Accept = append(b.def.Accept, states...)
	return b
}

// Reject adds rejecting states.
func (b *Builder) Reject(states ...string) *Builder {
	b.def.Reject = append(b.def.Reject, states...)
	return b
}

// Halt adds halting markers: terminal states without a verdict.
func (b *Builder) Halt(states ...string) *Builder {
	b.def.Halt = append(b.def.Halt, states...)
	return b
}

// Blank overrides the default blank symbol.
func (b *Builder) Blank(symbol string) *Builder {
	b.def.Blank = symbol
	return b
}

// Tapes sets the number of tapes. It is otherwise inferred from the first rule.
func (b *Builder) Tapes(n int) *Builder {
	b.def.Tapes = n
	return b
}

// Nondeterministic declares the machine as branching. Repeated keys then become choices.
func (b *Builder) Nondeterministic() *Builder {
	b.def.Discipline = domain.DisciplineNondeterministic
	return b
}

// Example documents an input and its expected verdict, with an optional first tape output.
func (b *Builder) Example(input string, verdict domain.Verdict, output ...string) *Builder {
	ex := machine.Example{Input: input, Verdict: verdict}
	if len(output) > 0 {
		ex.Output = output[0]
	}
	b.def.Examples = append(b.def.Examples, ex)
	return b
}

// On starts a single-tape rule for (state, symbol).
func (b *Builder) On(state, symbol string) *RuleBuilder {
	return b.OnTuple(state, symbol)
}

// OnTuple starts a rule reading one symbol per tape.
func (b *Builder) OnTuple(state string, symbols ...string) *RuleBuilder {
	return &RuleBuilder{
		builder: b,
		rule: machine.RuleDef{
			State: state,
			Read:  append([]string(nil), symbols...),
			Write: make([]string, len(symbols)),
			Move:  make([]string, len(symbols)),
		},
	}
}

// Definition returns a copy of the definition built so far.
func (b *Builder) Definition() *machine.Definition {
	def := b.def
	def.Accept = append([]string(nil), b.def.Accept...)
	def.Reject = append([]string(nil), b.def.Reject...)
	def.Halt = append([]string(nil), b.def.Halt...)
	def.Rules = append([]machine.RuleDef(nil), b.def.Rules...)
	def.Examples = append([]machine.Example(nil), b.def.Examples...)
	return &def
}

// Build compiles the machine into a transition table.
func (b *Builder) Build() (*domain.Table, error) {
	return b.Definition().Compile()
}
