package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/turing/internal/presentation/tui"
	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machine"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Printer renders engines and searches as text.
type Printer struct {
	out     io.Writer
	profile termenv.Profile
	width   int
}

// NewPrinter creates a printer writing to out.
// Colors are used only when out is a terminal.
func NewPrinter(out io.Writer, width int) *Printer {
	profile := termenv.Ascii
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		profile = termenv.ColorProfile()
	}
	return &Printer{out: out, profile: profile, width: width}
}

func (p *Printer) painter(table *domain.Table) *tui.TapePainter {
	return tui.NewTapePainter(p.profile, table.Blank())
}

// Engine prints the current state and one tape window per tape.
func (p *Printer) Engine(eng *runtime.MultiTapeEngine) {
	snap := eng.Snapshot(p.width)
	painter := p.painter(eng.Table())

	fmt.Fprintf(p.out, "step %d  state %s  %s\n", snap.Step, snap.State, painter.Status(snap.Status))
	for i, w := range snap.Windows {
		prefix := ""
		if len(snap.Windows) > 1 {
			prefix = fmt.Sprintf("t%d ", i)
		}
		fmt.Fprintf(p.out, "  %s%s\n", prefix, painter.Paint(w, snap.Heads[i]))
	}
}

// Trace steps eng up to maxSteps times, printing the configuration after every step.
// It returns the verdict the run ended with.
func (p *Printer) Trace(ctx context.Context, eng *runtime.MultiTapeEngine, maxSteps int) (domain.Verdict, error) {
	if maxSteps <= 0 {
		return domain.VerdictUndetermined, domain.ErrStepLimitRequired
	}
	p.Engine(eng)
	for i := 0; i < maxSteps && eng.Status().Live(); i++ {
		if err := ctx.Err(); err != nil {
			return domain.VerdictUndetermined, err
		}
		res := eng.Step()
		fmt.Fprintf(p.out, "%s -> %s  read %s\n", res.From, res.To, domain.Join(res.Read))
		p.Engine(eng)
	}
	return domain.VerdictOf(eng.Status()), nil
}

// Result prints the verdict and the final tape contents.
func (p *Printer) Result(eng *runtime.MultiTapeEngine, verdict domain.Verdict) {
	fmt.Fprintf(p.out, "%s after %d steps\n", verdict, eng.Steps())
	for i := 0; i < eng.TapeCount(); i++ {
		fmt.Fprintf(p.out, "  tape %d: %s\n", i, eng.TapeAt(i).Content())
	}
	if verdict == domain.VerdictUndetermined {
		fmt.Fprintln(p.out, "  step limit reached; raise --max-steps to keep going")
	}
}

// Search prints the outcome of a nondeterministic search.
// With tree set, every recorded generation is listed.
func (p *Printer) Search(ntm *runtime.Nondeterministic, res domain.SearchResult, tree bool) {
	painter := p.painter(ntm.Table())

	if tree {
		for gen, configs := range ntm.History() {
			fmt.Fprintf(p.out, "generation %d\n", gen)
			for _, c := range configs {
				w := c.Tape().Window(c.Head(), p.width)
				fmt.Fprintf(p.out, "  %-4s %-4s %-10s %s  %s\n",
					c.ID(), c.ParentID(), c.State(), painter.Paint(w, c.Head()), c.Path())
			}
		}
	}

	fmt.Fprintf(p.out, "%s after %d generations\n", res.Verdict, ntm.Generation())
	for _, c := range ntm.Configurations() {
		if ntm.Table().IsAccepting(c.State()) {
			fmt.Fprintf(p.out, "  accepting path: %s\n", c.Path())
		}
	}
	if res.Verdict == domain.VerdictUndetermined {
		fmt.Fprintf(p.out, "  %d configurations still active; raise --max-generations to keep going\n", ntm.Active())
	}
}

// Describe renders the machine description and its states as Markdown.
func (p *Printer) Describe(def *machine.Definition, table *domain.Table) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", def.Name)
	if def.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", strings.TrimSpace(def.Description))
	}
	fmt.Fprintf(&sb, "- **Discipline**: %s\n", table.Discipline())
	fmt.Fprintf(&sb, "- **Tapes**: %d\n", table.Tapes())
	fmt.Fprintf(&sb, "- **Blank**: `%s`\n", table.Blank())
	fmt.Fprintf(&sb, "- **Initial**: `%s`\n", table.Initial())
	accept, reject, halt := table.TerminalStates()
	writeStates(&sb, "Accept", accept)
	writeStates(&sb, "Reject", reject)
	writeStates(&sb, "Halt", halt)
	fmt.Fprintf(&sb, "- **Rules**: %d\n", len(table.Rules()))

	if len(def.Examples) > 0 {
		sb.WriteString("\n## Examples\n\n| input | verdict | output |\n|---|---|---|\n")
		for _, ex := range def.Examples {
			fmt.Fprintf(&sb, "| `%s` | %s | `%s` |\n", ex.Input, ex.Verdict, ex.Output)
		}
	}

	if p.profile == termenv.Ascii {
		_, err := io.WriteString(p.out, sb.String())
		return err
	}
	out, err := tui.NewRenderer()(sb.String())
	if err != nil {
		return err
	}
	_, err = io.WriteString(p.out, out)
	return err
}

func writeStates(sb *strings.Builder, label string, states []domain.State) {
	if len(states) == 0 {
		return
	}
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = "`" + string(s) + "`"
	}
	fmt.Fprintf(sb, "- **%s**: %s\n", label, strings.Join(names, ", "))
}
