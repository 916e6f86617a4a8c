package machine

import (
	"fmt"
	"maps"
	"slices"
)

// Severity grades a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding reported by Validate.
type Issue struct {
	Severity Severity `json:"severity"`
	State    string   `json:"state,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.State == "" {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: state %s: %s", i.Severity, i.State, i.Message)
}

// Validate compiles the definition and lints the resulting graph.
// Compilation failures are errors; suspicious but runnable shapes are warnings.
func Validate(def *Definition) []Issue {
	var issues []Issue
	if def.Name == "" {
		issues = append(issues, Issue{Severity: SeverityError, Message: "name is required"})
	}

	table, err := def.Compile()
	if err != nil {
		return append(issues, Issue{Severity: SeverityError, Message: err.Error()})
	}

	edges := make(map[string][]string)
	for _, r := range table.Rules() {
		from := string(r.State)
		for _, o := range r.Transition.Outcomes() {
			edges[from] = append(edges[from], string(o.Next))
		}
	}

	reached := map[string]bool{def.Initial: true}
	queue := []string{def.Initial}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, next := range edges[s] {
			if !reached[next] {
				reached[next] = true
				queue = append(queue, next)
			}
		}
	}

	for _, s := range slices.Sorted(maps.Keys(edges)) {
		if !reached[s] {
			issues = append(issues, Issue{Severity: SeverityWarning, State: s, Message: "unreachable from the initial state"})
		}
		if def.IsTerminal(s) {
			issues = append(issues, Issue{Severity: SeverityWarning, State: s, Message: "terminal state has transitions that never fire"})
		}
	}
	for _, s := range slices.Sorted(maps.Keys(reached)) {
		if _, defined := edges[s]; !defined && !def.IsTerminal(s) {
			issues = append(issues, Issue{Severity: SeverityWarning, State: s, Message: "no transitions and not terminal, runs entering it get stuck"})
		}
	}
	if len(def.Accept)+len(def.Reject)+len(def.Halt) == 0 {
		issues = append(issues, Issue{Severity: SeverityWarning, Message: "no accept, reject or halt states declared"})
	}
	return issues
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	return slices.ContainsFunc(issues, func(i Issue) bool { return i.Severity == SeverityError })
}
