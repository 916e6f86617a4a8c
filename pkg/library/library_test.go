package library_test

import (
	"testing"

	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/library"
	"github.com/aretw0/turing/pkg/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		"binary-increment", "bit-flip", "copy", "empty-accept", "equal-count",
		"palindrome", "pattern-101", "ww-two-tape", "zeros-ones",
	}, library.Names())
}

func TestGet_Unknown(t *testing.T) {
	_, err := library.Get("busy-beaver")
	assert.ErrorIs(t, err, domain.ErrMachineNotFound)
}

func TestBuiltins_AreValid(t *testing.T) {
	defs, err := library.All()
	require.NoError(t, err)
	for _, def := range defs {
		t.Run(def.Name, func(t *testing.T) {
			issues := machine.Validate(def)
			assert.False(t, machine.HasErrors(issues), "%v", issues)
			assert.NotEmpty(t, def.Description)
			assert.NotEmpty(t, def.Examples)
		})
	}
}

// Every documented example must hold, run by the engine matching the machine's shape.
func TestBuiltins_Examples(t *testing.T) {
	defs, err := library.All()
	require.NoError(t, err)

	for _, def := range defs {
		table, err := def.Compile()
		require.NoError(t, err, def.Name)

		for _, ex := range def.Examples {
			t.Run(def.Name+"/"+ex.Input, func(t *testing.T) {
				if table.Discipline() == domain.DisciplineNondeterministic {
					ntm, err := runtime.NewNondeterministic(table)
					require.NoError(t, err)
					require.NoError(t, ntm.Start(ex.Input))
					res, err := ntm.Run(1000)
					require.NoError(t, err)
					assert.Equal(t, ex.Verdict, res.Verdict)
					return
				}

				engine, err := runtime.NewMultiTapeEngine(table, []string{ex.Input})
				require.NoError(t, err)
				res, err := engine.Run(10_000)
				require.NoError(t, err)
				assert.Equal(t, ex.Verdict, res.Verdict)
				if ex.Output != "" {
					assert.Equal(t, ex.Output, engine.TapeAt(0).Content())
				}
			})
		}
	}
}

func TestGet_ReturnsIndependentCopies(t *testing.T) {
	a, err := library.Get("bit-flip")
	require.NoError(t, err)
	a.Initial = "changed"

	b, err := library.Get("bit-flip")
	require.NoError(t, err)
	assert.Equal(t, "q0", b.Initial)
}
