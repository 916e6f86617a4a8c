package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
)

// Overlay contains dynamic run data to visualize on the graph.
type Overlay struct {
	VisitedStates []domain.State
	CurrentState  domain.State
}

type edge struct {
	from, to domain.State
	branch   bool
}

// GenerateMermaid produces a Mermaid flowchart of a transition table.
// It applies semantic styling:
// - Initial: ((Circle))
// - Accept: (((Double circle)))
// - Reject: >Flag]
// - Halt: {{Hexagon}}
// - Default: [Rectangle]
// Edges from nondeterministic choices are dotted. Parallel edges share one arrow
// with one label line per rule.
func GenerateMermaid(table *domain.Table, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, s := range states(table) {
		sb.WriteString(fmt.Sprintf("    %s\n", node(table, s)))
	}

	var order []edge
	labels := make(map[edge][]string)
	for _, r := range table.Rules() {
		branch := r.Transition.Branching()
		for _, out := range r.Transition.Outcomes() {
			e := edge{from: r.State, to: out.Next, branch: branch}
			if _, ok := labels[e]; !ok {
				order = append(order, e)
			}
			labels[e] = append(labels[e], label(r.Read, out))
		}
	}

	for _, e := range order {
		text := strings.ReplaceAll(strings.Join(labels[e], "<br/>"), "\"", "'")
		arrow := fmt.Sprintf("-- \"%s\" -->", text)
		if e.branch {
			arrow = fmt.Sprintf("-. \"%s\" .->", text)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(string(e.from)), arrow, sanitizeMermaidID(string(e.to))))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, s := range overlay.VisitedStates {
			safeID := sanitizeMermaidID(string(s))
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentState != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(string(overlay.CurrentState))))
		}
	}

	return sb.String()
}

// states lists every state once: the initial state, then states in rule order,
// then terminal states no rule mentions.
func states(table *domain.Table) []domain.State {
	seen := make(map[domain.State]bool)
	var out []domain.State
	add := func(s domain.State) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	add(table.Initial())
	for _, r := range table.Rules() {
		add(r.State)
		for _, o := range r.Transition.Outcomes() {
			add(o.Next)
		}
	}
	accept, reject, halt := table.TerminalStates()
	for _, group := range [][]domain.State{accept, reject, halt} {
		for _, s := range group {
			add(s)
		}
	}
	return out
}

func node(table *domain.Table, s domain.State) string {
	opener, closer := "[", "]"
	switch {
	case table.IsAccepting(s):
		opener, closer = "(((", ")))"
	case table.IsRejecting(s):
		opener, closer = ">", "]"
	case table.IsHalting(s):
		opener, closer = "{{", "}}"
	case s == table.Initial():
		opener, closer = "((", "))"
	}
	return fmt.Sprintf("%s%s\"%s\"%s", sanitizeMermaidID(string(s)), opener, s, closer)
}

// label renders one rule as "read→write move" per tape, tapes separated by ";".
func label(read []domain.Symbol, out domain.Outcome) string {
	parts := make([]string, len(read))
	for i, r := range read {
		w, m := out.Apply(i, r)
		if r == domain.Wildcard {
			w = domain.Wildcard
		}
		parts[i] = fmt.Sprintf("%s→%s %s", r, w, m)
	}
	return strings.Join(parts, "; ")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
