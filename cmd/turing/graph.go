package main

import (
	"fmt"

	"github.com/aretw0/turing/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <machine>",
	Short: "Export the state diagram",
	Long:  `Outputs a Mermaid flowchart of the machine's states and transitions.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		table, err := env.Library.Table(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(table, nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
