package main

import (
	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/cli"
	"github.com/aretw0/turing/internal/runtime"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <machine> <input>",
	Short: "Explore every branch of a nondeterministic machine",
	Long: `Expands the configurations of a nondeterministic machine breadth-first, one generation at
a time, until a branch accepts, every branch rejects or dies, or the generation limit is reached.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []turing.Option
		if noDedup, _ := cmd.Flags().GetBool("no-dedup"); noDedup {
			opts = append(opts, turing.WithoutDeduplication())
		}
		env, err := setup(cmd, opts...)
		if err != nil {
			return err
		}
		defer env.Close()

		var input string
		if len(args) > 1 {
			input = args[1]
		}
		tree, _ := cmd.Flags().GetBool("tree")

		var engineOpts []runtime.EngineOption
		if tree {
			engineOpts = append(engineOpts, runtime.WithHistory())
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		ntm, err := env.Library.Search(ctx, args[0], input, engineOpts...)
		if err != nil {
			return err
		}
		res, err := ntm.RunContext(ctx, limit(cmd, "max-generations", env.Config.Limits.MaxGenerations))
		if err != nil {
			return err
		}

		cli.NewPrinter(cmd.OutOrStdout(), limit(cmd, "width", env.Config.Limits.Window)).Search(ntm, res, tree)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().Int("max-generations", 0, "Generation limit (default from config)")
	searchCmd.Flags().Int("width", 0, "Width of the printed tape windows (default from config)")
	searchCmd.Flags().Bool("tree", false, "Print every generation of the search tree")
	searchCmd.Flags().Bool("no-dedup", false, "Keep equal configurations apart")
}
