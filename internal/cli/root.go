// Package cli provides the command-line interface for nir.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/spikeworks/nir/internal/cli/commands"
	"github.com/spikeworks/nir/internal/config"
)

// Version information (set at build time).
var Version = "0.1.0"

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "nir",
		Short: "nir - Neuromorphic IR toolchain",
		Long: `nir compiles and simulates spiking neural networks described in a
textual intermediate representation.

Modules declare neuron parameters, connectivity, plasticity rules, and
stimuli as versioned operations; nir verifies them, rewrites them into
canonical form, and runs them on a deterministic fixed-step engine.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			projectDir := config.FindProjectRoot(cwd)
			if projectDir == "" {
				projectDir = cwd
			}
			cfg, err := config.LoadFromDir(projectDir)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.ApplyFlags(cmd.Root().PersistentFlags())

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			}))

			cmd.SetContext(commands.WithContext(cmd.Context(), &commands.Context{
				Config:     cfg,
				Logger:     logger,
				ProjectDir: projectDir,
			}))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("state", "", "Path to the run-history database")
	rootCmd.PersistentFlags().Int("history-limit", 0, "Maximum runs shown by the runs command")

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewVerifyCommand())
	rootCmd.AddCommand(commands.NewFmtCommand())
	rootCmd.AddCommand(commands.NewOpsCommand())
	rootCmd.AddCommand(commands.NewRunsCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
