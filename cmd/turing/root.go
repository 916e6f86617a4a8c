package main

import (
	"fmt"
	"os"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/cli"
	"github.com/aretw0/turing/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "turing",
	Short: "Turing runs abstract Turing machines",
	Long: `Turing loads machine tables from YAML, JSON or Markdown files and runs them:
deterministic, multi-tape or nondeterministic, from the terminal, over HTTP or as MCP tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", "", "Machine library directory (built-in machines when empty)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default turing.yaml, if present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// setup builds the command environment, letting changed flags override the config file.
func setup(cmd *cobra.Command, opts ...turing.Option) (*cli.Env, error) {
	var o config.Overrides
	flags := cmd.Flags()
	if flags.Changed("dir") {
		dir, _ := flags.GetString("dir")
		o.Dir = &dir
	}
	if flags.Changed("log-level") {
		level, _ := flags.GetString("log-level")
		o.LogLevel = &level
	}
	if flags.Lookup("port") != nil && flags.Changed("port") {
		port, _ := flags.GetInt("port")
		o.Port = &port
	}
	if flags.Lookup("store") != nil && flags.Changed("store") {
		backend, _ := flags.GetString("store")
		o.Backend = &backend
	}
	if flags.Lookup("store-path") != nil && flags.Changed("store-path") {
		path, _ := flags.GetString("store-path")
		o.Path = &path
	}

	configPath, _ := flags.GetString("config")
	return cli.Setup(configPath, o, opts...)
}

// limit returns the flag value when set, the configured fallback otherwise.
func limit(cmd *cobra.Command, flag string, fallback int) int {
	if v, _ := cmd.Flags().GetInt(flag); v > 0 {
		return v
	}
	return fallback
}
