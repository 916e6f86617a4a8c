package main

import (
	"github.com/aretw0/turing/internal/cli"
	"github.com/aretw0/turing/pkg/machine"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <machine>",
	Short: "Show a machine's description, states and examples",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		def, err := env.Library.Definition(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
			data, err := machine.MarshalYAML(def)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}

		table, err := def.Compile()
		if err != nil {
			return err
		}
		return cli.NewPrinter(cmd.OutOrStdout(), env.Config.Limits.Window).Describe(def, table)
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("yaml", false, "Print the definition as YAML instead")
}
