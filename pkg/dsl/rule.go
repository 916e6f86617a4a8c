package dsl

import (
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machine"
)

// RuleBuilder provides a fluent API for configuring one transition.
// Write and move calls apply to the selected tape, tape 0 by default.
type RuleBuilder struct {
	builder *Builder
	rule    machine.RuleDef
	tape    int
}

// Tape selects which tape the following Write and move calls affect.
func (r *RuleBuilder) Tape(i int) *RuleBuilder {
	r.tape = i
	return r
}

// Write sets the symbol written on the selected tape. Without it the symbol read is kept.
func (r *RuleBuilder) Write(symbol string) *RuleBuilder {
	if r.tape < len(r.rule.Write) {
		r.rule.Write[r.tape] = symbol
	}
	return r
}

// Move sets the head movement on the selected tape.
func (r *RuleBuilder) Move(m domain.Move) *RuleBuilder {
	if r.tape < len(r.rule.Move) {
		r.rule.Move[r.tape] = string(m)
	}
	return r
}

// Left moves the selected head left.
func (r *RuleBuilder) Left() *RuleBuilder { return r.Move(domain.MoveLeft) }

// Right moves the selected head right.
func (r *RuleBuilder) Right() *RuleBuilder { return r.Move(domain.MoveRight) }

// Stay keeps the selected head in place.
func (r *RuleBuilder) Stay() *RuleBuilder { return r.Move(domain.MoveStay) }

// Go finishes the rule with its next state and returns the machine builder.
func (r *RuleBuilder) Go(next string) *Builder {
	r.rule.Next = next
	r.builder.def.Rules = append(r.builder.def.Rules, r.rule)
	return r.builder
}
