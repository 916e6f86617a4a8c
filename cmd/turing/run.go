package main

import (
	"context"

	"github.com/aretw0/turing/internal/cli"
	"github.com/aretw0/turing/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <machine> [input...]",
	Short: "Run a deterministic machine",
	Long: `Runs a deterministic (single or multi-tape) machine, one input per tape, until it halts
or the step limit is reached. With --watch the run is repeated whenever the library changes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		name, inputs := args[0], args[1:]
		maxSteps := limit(cmd, "max-steps", env.Config.Limits.MaxSteps)
		trace, _ := cmd.Flags().GetBool("trace")
		watch, _ := cmd.Flags().GetBool("watch")

		p := cli.NewPrinter(cmd.OutOrStdout(), limit(cmd, "width", env.Config.Limits.Window))

		runOnce := func(ctx context.Context) error {
			eng, err := env.Library.Engine(ctx, name, inputs...)
			if err != nil {
				return err
			}
			if trace {
				verdict, err := p.Trace(ctx, eng, maxSteps)
				if err != nil {
					return err
				}
				p.Result(eng, verdict)
				return nil
			}
			res, err := eng.RunContext(ctx, maxSteps)
			if err != nil {
				return err
			}
			p.Engine(eng)
			p.Result(eng, res.Verdict)
			return nil
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		if !watch {
			return runOnce(ctx)
		}
		tui.PrintBanner(cmd.OutOrStdout())
		return cli.RunWatch(ctx, env.Library, p, runOnce)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("max-steps", 0, "Step limit (default from config)")
	runCmd.Flags().Int("width", 0, "Width of the printed tape window (default from config)")
	runCmd.Flags().Bool("trace", false, "Print every step")
	runCmd.Flags().BoolP("watch", "w", false, "Re-run when the machine library changes")
}
