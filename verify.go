package turing

import (
	"context"
	"fmt"

	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machine"
)

// ExampleResult is the outcome of checking one documented example.
type ExampleResult struct {
	Example machine.Example `json:"example"`
	Verdict domain.Verdict  `json:"verdict"`
	// Output is the content of the first tape after a deterministic run.
	Output string `json:"output,omitempty"`
	Passed bool   `json:"passed"`
}

// Verify runs every example of a machine and reports each outcome.
// limit bounds steps for deterministic machines and generations for nondeterministic ones.
func (l *Library) Verify(ctx context.Context, name string, limit int) ([]ExampleResult, error) {
	def, err := l.loader.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	table, err := def.Compile()
	if err != nil {
		return nil, err
	}

	results := make([]ExampleResult, 0, len(def.Examples))
	for _, ex := range def.Examples {
		res, err := l.verifyOne(ctx, table, ex, limit)
		if err != nil {
			return results, fmt.Errorf("example %q: %w", ex.Input, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (l *Library) verifyOne(ctx context.Context, table *domain.Table, ex machine.Example, limit int) (ExampleResult, error) {
	out := ExampleResult{Example: ex}

	if table.Discipline() == domain.DisciplineNondeterministic {
		ntm, err := runtime.NewNondeterministic(table, l.EngineOptions()...)
		if err != nil {
			return out, err
		}
		if err := ntm.Start(ex.Input); err != nil {
			return out, err
		}
		res, err := ntm.RunContext(ctx, limit)
		if err != nil {
			return out, err
		}
		out.Verdict = res.Verdict
		out.Passed = res.Verdict == ex.Verdict
		return out, nil
	}

	engine, err := runtime.NewMultiTapeEngine(table, []string{ex.Input}, l.EngineOptions()...)
	if err != nil {
		return out, err
	}
	res, err := engine.RunContext(ctx, limit)
	if err != nil {
		return out, err
	}
	out.Verdict = res.Verdict
	out.Output = engine.TapeAt(0).Content()
	out.Passed = res.Verdict == ex.Verdict && (ex.Output == "" || ex.Output == out.Output)
	return out, nil
}
