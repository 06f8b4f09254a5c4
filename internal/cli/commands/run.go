package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spikeworks/nir/internal/compiler"
	"github.com/spikeworks/nir/internal/ir"
	"github.com/spikeworks/nir/internal/runtime"
	"github.com/spikeworks/nir/internal/schema"
	"github.com/spikeworks/nir/internal/state"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	var (
		outPath string
		noState bool
	)

	cmd := &cobra.Command{
		Use:   "run <module.nir>",
		Short: "Compile and simulate a network module",
		Long: `Run parses the module, verifies it, applies the rewrite passes,
lowers it to an executable program, and simulates the full horizon.

The run is recorded in the project state database unless --no-state is
given. Use --out to export the spike train as JSON.`,
		Example: `  # Simulate a module
  nir run network.nir

  # Simulate and export spikes
  nir run network.nir --out spikes.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args[0], outPath, noState)
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Write the result as JSON to this file")
	cmd.Flags().BoolVar(&noState, "no-state", false, "Skip recording the run in the state database")
	return cmd
}

func runRun(cmd *cobra.Command, modulePath, outPath string, noState bool) error {
	cmdCtx := FromCommand(cmd)
	logger := cmdCtx.Logger

	data, err := os.ReadFile(modulePath)
	if err != nil {
		return fmt.Errorf("failed to read module: %w", err)
	}

	reg := schema.NewRegistry()
	mod, err := ir.ParseText(reg, string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", modulePath, err)
	}

	prog, err := compiler.CompileWithPasses(reg, logger, mod)
	if err != nil {
		return fmt.Errorf("%s: %w", modulePath, err)
	}
	logger.Info("module compiled",
		"module", modulePath,
		"neurons", len(prog.Neurons),
		"synapses", len(prog.Synapses),
		"seed", prog.Sim.Seed)

	var store state.Store
	var runID string
	if !noState {
		store, runID, err = startRunRecord(cmdCtx, modulePath, prog.Sim.Seed)
		if err != nil {
			logger.Warn("run history disabled", "error", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	result, err := runtime.NewEngine(logger).Run(cmd.Context(), prog)
	if err != nil {
		if store != nil {
			_ = store.CompleteRun(runID, state.RunStatusFailed, 0, 0, err.Error())
		}
		return fmt.Errorf("%s: %w", modulePath, err)
	}
	if store != nil {
		if err := store.CompleteRun(runID, state.RunStatusCompleted,
			result.StepsExecuted, int64(len(result.Spikes)), ""); err != nil {
			logger.Warn("failed to record run completion", "error", err)
		}
	}

	if outPath == "" {
		outPath = cmdCtx.Config.Output.SpikesPath
	}
	if outPath != "" {
		if err := writeResult(outPath, result, cmdCtx.Config.Output.Pretty); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Simulated %d steps (%d ns horizon, dt %d ns, seed %d)\n",
		result.StepsExecuted, prog.Sim.DurationNS, prog.Sim.DtNS, prog.Sim.Seed)
	fmt.Fprintf(out, "Neurons: %d  Synapses: %d  Spikes: %d\n",
		len(prog.Neurons), len(prog.Synapses), len(result.Spikes))
	if len(result.FinalWeights) > 0 {
		fmt.Fprintf(out, "Plastic weights: %d\n", len(result.FinalWeights))
	}
	if outPath != "" {
		fmt.Fprintf(out, "Result written to %s\n", outPath)
	}
	return nil
}

func startRunRecord(cmdCtx *Context, modulePath string, seed uint64) (state.Store, string, error) {
	statePath := cmdCtx.Config.StatePath
	if !filepath.IsAbs(statePath) {
		statePath = filepath.Join(cmdCtx.ProjectDir, statePath)
	}
	if dir := filepath.Dir(statePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, "", fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewSQLiteStore()
	if err := store.Open(statePath); err != nil {
		return nil, "", err
	}
	if err := store.InitSchema(); err != nil {
		store.Close()
		return nil, "", err
	}
	run, err := store.CreateRun(filepath.Base(modulePath), seed)
	if err != nil {
		store.Close()
		return nil, "", err
	}
	return store, run.ID, nil
}

func writeResult(path string, result *runtime.Result, pretty bool) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
