package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machine"
	"github.com/spf13/cobra"
)

var errValidation = errors.New("validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate [machine...]",
	Short: "Check machine tables and their documented examples",
	Long: `Reports structural issues (unknown states, unreachable states, malformed rules) and runs
every example against the machine. Checks the whole library when no machine is named.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		ctx := cmd.Context()
		names := args
		if len(names) == 0 {
			if names, err = env.Library.Machines(ctx); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		failed := false
		for _, name := range names {
			def, err := env.Library.Definition(ctx, name)
			if err != nil {
				return err
			}

			issues := machine.Validate(def)
			for _, issue := range issues {
				fmt.Fprintf(out, "%s: %s\n", name, issue)
			}
			if machine.HasErrors(issues) {
				failed = true
				continue
			}

			table, err := def.Compile()
			if err != nil {
				fmt.Fprintf(out, "%s: %v\n", name, err)
				failed = true
				continue
			}
			limit := env.Config.Limits.MaxSteps
			if table.Discipline() == domain.DisciplineNondeterministic {
				limit = env.Config.Limits.MaxGenerations
			}
			results, err := env.Library.Verify(ctx, name, limit)
			if err != nil {
				fmt.Fprintf(out, "%s: %v\n", name, err)
				failed = true
				continue
			}
			passed := true
			for _, r := range results {
				if r.Passed {
					continue
				}
				passed = false
				fmt.Fprintf(out, "%s: example %q: want %s, got %s", name, r.Example.Input, r.Example.Verdict, r.Verdict)
				if r.Example.Output != "" {
					fmt.Fprintf(out, " (output %q, want %q)", r.Output, r.Example.Output)
				}
				fmt.Fprintln(out)
			}
			if !passed {
				failed = true
				continue
			}
			fmt.Fprintf(out, "%s: ok (%d examples)\n", name, len(results))
		}

		if failed {
			return errValidation
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
