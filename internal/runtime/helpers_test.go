package runtime_test

import (
	"strings"
	"testing"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/stretchr/testify/require"
)

// buildTable compiles rules written as "state r1,r2 -> next w1,w2 m1,m2 | next ...".
func buildTable(t *testing.T, cfg domain.TableConfig, rules ...string) *domain.Table {
	t.Helper()
	table := domain.NewTable(cfg)
	for _, line := range rules {
		lhs, rhs, ok := strings.Cut(line, "->")
		require.True(t, ok, "malformed rule %q", line)
		key := strings.Fields(lhs)
		require.Len(t, key, 2, "malformed rule %q", line)

		var choices []domain.Outcome
		for _, alt := range strings.Split(rhs, "|") {
			f := strings.Fields(alt)
			require.Len(t, f, 3, "malformed outcome in %q", line)
			writes, moves := strings.Split(f[1], ","), strings.Split(f[2], ",")
			out := domain.Outcome{Next: domain.State(f[0])}
			for i := range writes {
				out.Actions = append(out.Actions, domain.TapeAction{
					Write: domain.Symbol(writes[i]),
					Move:  domain.Move(moves[i]),
				})
			}
			choices = append(choices, out)
		}

		var tr domain.Transition = domain.Deterministic{Outcome: choices[0]}
		if len(choices) > 1 {
			tr = domain.Nondeterministic{Choices: choices}
		}
		require.NoError(t, table.Add(domain.State(key[0]), symbols(key[1]), tr))
	}
	return table
}

func symbols(tuple string) []domain.Symbol {
	var out []domain.Symbol
	for _, s := range strings.Split(tuple, ",") {
		out = append(out, domain.Symbol(s))
	}
	return out
}

func bitFlip(t *testing.T) *domain.Table {
	return buildTable(t, domain.TableConfig{Name: "bit-flip", Initial: "q0", Accept: []domain.State{"accept"}},
		"q0 0 -> q0 1 R",
		"q0 1 -> q0 0 R",
		"q0 _ -> accept _ R",
	)
}

func increment(t *testing.T) *domain.Table {
	return buildTable(t, domain.TableConfig{Name: "binary-increment", Initial: "q0", Accept: []domain.State{"halt_accept"}},
		"q0 0 -> q0 * R",
		"q0 1 -> q0 * R",
		"q0 _ -> q1 * L",
		"q1 1 -> q1 0 L",
		"q1 0 -> halt_accept 1 S",
		"q1 _ -> halt_accept 1 S",
	)
}

func wwTwoTape(t *testing.T) *domain.Table {
	return buildTable(t, domain.TableConfig{Name: "ww-two-tape", Tapes: 2, Initial: "q_count_a",
		Accept: []domain.State{"accept"}, Reject: []domain.State{"reject"}},
		"q_count_a 0,_ -> q_count_b 0,x R,R",
		"q_count_a 1,_ -> q_count_b 1,x R,R",
		"q_count_a _,_ -> q_rewind *,* L,L",
		"q_count_b 0,_ -> q_count_a *,* R,S",
		"q_count_b 1,_ -> q_count_a *,* R,S",
		"q_count_b _,_ -> reject *,* S,S",
		"q_rewind *,x -> q_rewind *,* L,L",
		"q_rewind 0,_ -> q_rewind *,* L,S",
		"q_rewind 1,_ -> q_rewind *,* L,S",
		"q_rewind _,_ -> q_copy *,* R,R",
		"q_copy 0,x -> q_copy 0,0 R,R",
		"q_copy 1,x -> q_copy 1,1 R,R",
		"q_copy *,_ -> q_rewind2 *,* S,L",
		"q_rewind2 *,0 -> q_rewind2 *,* S,L",
		"q_rewind2 *,1 -> q_rewind2 *,* S,L",
		"q_rewind2 *,_ -> q_compare *,* S,R",
		"q_compare 0,0 -> q_compare *,* R,R",
		"q_compare 1,1 -> q_compare *,* R,R",
		"q_compare _,_ -> accept *,* S,S",
		"q_compare *,* -> reject *,* S,S",
	)
}

func pattern101(t *testing.T) *domain.Table {
	return buildTable(t, domain.TableConfig{Name: "pattern-101", Discipline: domain.DisciplineNondeterministic,
		Initial: "q0", Accept: []domain.State{"accept"}, Reject: []domain.State{"reject"}},
		"q0 1 -> q0 * R | q1 * R",
		"q0 0 -> q0 * R",
		"q0 _ -> reject * S",
		"q1 0 -> q2 * R",
		"q1 * -> reject * S",
		"q2 1 -> accept * R",
		"q2 * -> reject * S",
	)
}
