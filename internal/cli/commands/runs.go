package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/spikeworks/nir/internal/state"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent simulation runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRuns(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum runs to show (default from config)")
	return cmd
}

func runRuns(cmd *cobra.Command, limit int) error {
	cmdCtx := FromCommand(cmd)
	if limit <= 0 {
		limit = cmdCtx.Config.HistoryLimit
	}

	statePath := cmdCtx.Config.StatePath
	if !filepath.IsAbs(statePath) {
		statePath = filepath.Join(cmdCtx.ProjectDir, statePath)
	}
	if _, err := os.Stat(statePath); os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	store := state.NewSQLiteStore()
	if err := store.Open(statePath); err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	defer store.Close()
	if err := store.InitSchema(); err != nil {
		return err
	}

	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Module", "Seed", "Status", "Steps", "Spikes", "Started"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			shortID(run.ID),
			run.Module,
			run.Seed,
			run.Status,
			run.Steps,
			run.Spikes,
			run.StartedAt.Local().Format(time.DateTime),
		})
	}
	t.Render()
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
