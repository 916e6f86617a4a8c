package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/turing"
)

// RunFunc runs one machine once and prints the outcome.
type RunFunc func(ctx context.Context) error

// RunWatch calls run, then calls it again every time the machine library changes,
// until ctx is cancelled. Failures are printed and the watcher waits for the next change.
func RunWatch(ctx context.Context, lib *turing.Library, p *Printer, run RunFunc) error {
	changes, err := lib.Watch(ctx)
	if err != nil {
		return err
	}

	for {
		if err := run(ctx); err != nil {
			fmt.Fprintf(p.out, ">>> %v\n", err)
		}
		fmt.Fprintf(p.out, ">>> Watching %s for changes (Ctrl+C to stop)\n", lib.Name)

		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
		}

		// Editors often write a file in several steps; let them settle.
		settle := time.NewTimer(100 * time.Millisecond)
		select {
		case <-ctx.Done():
			settle.Stop()
			return nil
		case <-settle.C:
		}
		drain(changes)
		fmt.Fprintln(p.out, ">>> Change detected, reloading")
	}
}

func drain(ch <-chan struct{}) {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
