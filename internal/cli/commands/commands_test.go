package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spikeworks/nir/internal/config"
	"github.com/spikeworks/nir/internal/runtime"
	"github.com/spikeworks/nir/internal/state"
	"github.com/spikeworks/nir/internal/testutil"
)

const validModule = `nir.module {
  neuron.lif@v2 { tau_m: 20000000 ns, v_rest: -70 mV, v_reset: -75 mV, v_thresh: -55 mV, t_refrac: 2000000 ns, r_m: 10 MΩ, c_m: 1 nF }
  stimulus.dc@v1 { neuron: %n0, amplitude: 5 nA, start: 0 ns, duration: 100000000 ns }
  runtime.simulate.run@v1 { dt: 100000 ns, duration: 100000000 ns, record_potentials: false }
}
`

func writeModule(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "network.nir")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, cmd *cobra.Command, cmdCtx *Context, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	cmd.SetContext(WithContext(context.Background(), cmdCtx))
	err := cmd.Execute()
	return buf.String(), err
}

func testContext(t *testing.T, dir string) *Context {
	t.Helper()
	cfg, err := config.LoadFromDir(dir)
	require.NoError(t, err)
	return &Context{
		Config:     cfg,
		Logger:     testutil.NewTestLogger(t),
		ProjectDir: dir,
	}
}

func TestRunCommandSimulatesModule(t *testing.T) {
	dir := t.TempDir()
	modPath := writeModule(t, dir, validModule)
	outPath := filepath.Join(dir, "spikes.json")

	out, err := execute(t, NewRunCommand(), testContext(t, dir),
		modPath, "--no-state", "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Simulated 1000 steps")
	assert.Contains(t, out, "Spikes:")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var result runtime.Result
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, int64(1000), result.StepsExecuted)
	assert.NotEmpty(t, result.Spikes)
}

func TestRunCommandRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	modPath := writeModule(t, dir, validModule)
	cmdCtx := testContext(t, dir)

	_, err := execute(t, NewRunCommand(), cmdCtx, modPath)
	require.NoError(t, err)

	store := state.NewSQLiteStore()
	require.NoError(t, store.Open(filepath.Join(dir, cmdCtx.Config.StatePath)))
	defer store.Close()

	runs, err := store.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "network.nir", runs[0].Module)
	assert.Equal(t, state.RunStatusCompleted, runs[0].Status)
	assert.Equal(t, int64(1000), runs[0].Steps)
}

func TestRunCommandRejectsBadModule(t *testing.T) {
	dir := t.TempDir()
	modPath := writeModule(t, dir, "neuron.unknown@v1\n")

	_, err := execute(t, NewRunCommand(), testContext(t, dir), modPath, "--no-state")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown operation")
}

func TestVerifyCommand(t *testing.T) {
	dir := t.TempDir()
	modPath := writeModule(t, dir, validModule)

	out, err := execute(t, NewVerifyCommand(), testContext(t, dir), modPath)
	require.NoError(t, err)
	assert.Contains(t, out, "OK (3 ops)")
}

func TestVerifyCommandReportsViolation(t *testing.T) {
	dir := t.TempDir()
	bad := `runtime.simulate.run@v1 { dt: 0 ns, duration: 1000000 ns, record_potentials: false }` + "\n"
	modPath := writeModule(t, dir, bad)

	_, err := execute(t, NewVerifyCommand(), testContext(t, dir), modPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"dt"`)
	assert.Contains(t, err.Error(), `"> 0"`)
}

func TestFmtCommandCanonicalizesSpacing(t *testing.T) {
	dir := t.TempDir()
	messy := "runtime.simulate.run@v1 {   record_potentials: false,dt: 100000 ns ,  duration: 1000000 ns }\n"
	modPath := writeModule(t, dir, messy)

	out, err := execute(t, NewFmtCommand(), testContext(t, dir), modPath)
	require.NoError(t, err)
	assert.Equal(t, "nir.module {\n  runtime.simulate.run@v1 { dt: 100000 ns, duration: 1000000 ns, record_potentials: false }\n}\n", out)
}

func TestFmtCommandWriteRewritesFile(t *testing.T) {
	dir := t.TempDir()
	modPath := writeModule(t, dir, "stimulus.dc@v1 { duration: 1 ns, start: 0 ns, amplitude: 1 nA, neuron: %n0 }\n")

	_, err := execute(t, NewFmtCommand(), testContext(t, dir), modPath, "--write")
	require.NoError(t, err)

	data, err := os.ReadFile(modPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "stimulus.dc@v1 { neuron: %n0, amplitude: 1 nA, start: 0 ns, duration: 1 ns }")
}

func TestOpsCommandJSON(t *testing.T) {
	out, err := execute(t, NewOpsCommand(), testContext(t, t.TempDir()), "--output", "json")
	require.NoError(t, err)

	var infos []opInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	assert.Len(t, infos, 9)

	byOp := make(map[string]opInfo)
	for _, info := range infos {
		byOp[info.Op] = info
	}
	assert.True(t, byOp["neuron.lif@v2"].Current)
	assert.False(t, byOp["neuron.lif@v1"].Current)
}

func TestRunsCommandFreshProjectReportsNoRuns(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, NewRunsCommand(), testContext(t, dir))
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")
	assert.NoFileExists(t, filepath.Join(dir, ".nir", "state.db"))
}

func TestRunsCommandListsHistory(t *testing.T) {
	dir := t.TempDir()
	cmdCtx := testContext(t, dir)

	statePath := filepath.Join(dir, cmdCtx.Config.StatePath)
	require.NoError(t, os.MkdirAll(filepath.Dir(statePath), 0o750))
	store := state.NewSQLiteStore()
	require.NoError(t, store.Open(statePath))
	require.NoError(t, store.InitSchema())
	_, err := store.CreateRun("history.nir", 42)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	out, err := execute(t, NewRunsCommand(), cmdCtx)
	require.NoError(t, err)
	assert.Contains(t, out, "history.nir")
}
