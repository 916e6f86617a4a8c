package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/turing/internal/presentation/graph"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/library"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(t *testing.T, name string) *domain.Table {
	t.Helper()
	def, err := library.Get(name)
	require.NoError(t, err)
	tbl, err := def.Compile()
	require.NoError(t, err)
	return tbl
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		machine  string
		contains []string
	}{
		{
			name:    "Terminal Shapes",
			machine: "palindrome",
			contains: []string{
				"graph LR",
				`q0(("q0"))`,
				`accept((("accept")))`,
				`reject>"reject"]`,
				`q_goto_end_a["q_goto_end_a"]`,
			},
		},
		{
			name:    "Parallel Rules Share An Edge",
			machine: "bit-flip",
			contains: []string{
				`q0 -- "0→1 R<br/>1→0 R" --> q0`,
				`q0 -- "_→_ R" --> accept`,
			},
		},
		{
			name:    "Nondeterministic Choices Are Dotted",
			machine: "pattern-101",
			contains: []string{
				`q0 -. "1→1 R" .-> q1`,
				`q1 -- "*→* S" --> reject`,
			},
		},
		{
			name:    "Multi Tape Labels",
			machine: "ww-two-tape",
			contains: []string{"; "},
		},
		{
			name:    "ID Sanitization",
			machine: "binary-increment",
			contains: []string{
				`halt_accept((("halt_accept")))`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(table(t, tt.machine), nil)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			assert.NotContains(t, got, "classDef")
		})
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	got := graph.GenerateMermaid(table(t, "binary-increment"), &graph.Overlay{
		VisitedStates: []domain.State{"q0", "q0", "q1"},
		CurrentState:  "q1",
	})

	assert.Contains(t, got, "classDef current")
	assert.Equal(t, 1, strings.Count(got, "class q0 visited;"))
	assert.Contains(t, got, "class q1 current;")
}
