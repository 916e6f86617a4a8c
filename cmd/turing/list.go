package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the machines in the library",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		ctx := cmd.Context()
		names, err := env.Library.Machines(ctx)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tDISCIPLINE\tTAPES\tDESCRIPTION")
		for _, name := range names {
			def, err := env.Library.Definition(ctx, name)
			if err != nil {
				return err
			}
			table, err := def.Compile()
			if err != nil {
				fmt.Fprintf(tw, "%s\t-\t-\tinvalid: %v\n", name, err)
				continue
			}
			summary, _, _ := strings.Cut(strings.TrimSpace(def.Description), "\n")
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", name, table.Discipline(), table.Tapes(), summary)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
