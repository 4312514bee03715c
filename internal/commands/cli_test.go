package commands_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tellerd-dev/tellerd/internal/auditlog"
	"github.com/tellerd-dev/tellerd/internal/store"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "tellerd-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "tellerd")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/tellerd")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runTellerd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// initWorkspace runs init and shrinks the seed volumes so end-to-end runs
// stay fast.
func initWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	out, err := runTellerd(t, "init", "--dir", dir)
	require.NoError(t, err, "init failed: %s", out)

	cfgPath := filepath.Join(dir, "tellerd.yaml")
	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	contents := strings.ReplaceAll(string(data), "customers: 1000", "customers: 10")
	contents = strings.ReplaceAll(contents, "transactions: 1000", "transactions: 40")
	require.NoError(t, os.WriteFile(cfgPath, []byte(contents), 0o644))

	return dir
}

func TestInit_CreatesWorkspace(t *testing.T) {
	dir := t.TempDir()

	out, err := runTellerd(t, "init", "--dir", dir)
	require.NoError(t, err, "init failed: %s", out)
	assert.Contains(t, out, "Initialized tellerd workspace")

	data, err := os.ReadFile(filepath.Join(dir, "tellerd.yaml"))
	require.NoError(t, err)
	contents := string(data)
	assert.Contains(t, contents, "high_value: \"10000000\"")
	assert.Contains(t, contents, "cumulative_daily: \"20000000\"")

	_, err = os.Stat(filepath.Join(dir, "tellerd.db"))
	require.NoError(t, err, "ledger database should exist")
}

func TestInit_RefusesExistingConfig(t *testing.T) {
	dir := t.TempDir()

	_, err := runTellerd(t, "init", "--dir", dir)
	require.NoError(t, err)

	out, err := runTellerd(t, "init", "--dir", dir)
	require.Error(t, err)
	assert.Contains(t, out, "already exists")
}

func TestSeedResolveCheck_EndToEnd(t *testing.T) {
	dir := initWorkspace(t)

	out, err := runTellerd(t, "seed", "--dir", dir, "--rand-seed", "42")
	require.NoError(t, err, "seed failed: %s", out)

	out, err = runTellerd(t, "resolve", "--dir", dir, "--rand-seed", "7", "--workers", "2")
	require.NoError(t, err, "resolve failed: %s", out)
	assert.Contains(t, out, "Processed 40 transactions")

	entries, err := auditlog.Read(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 40)

	// Every pending transaction reached a terminal state, so a second run
	// finds nothing to do.
	out, err = runTellerd(t, "resolve", "--dir", dir)
	require.NoError(t, err, "second resolve failed: %s", out)
	assert.Contains(t, out, "Processed 0 transactions")

	out, err = runTellerd(t, "check", "--dir", dir)
	require.NoError(t, err, "check failed: %s", out)
}

func TestImport_Flow(t *testing.T) {
	dir := initWorkspace(t)

	out, err := runTellerd(t, "seed", "--dir", dir, "--rand-seed", "1")
	require.NoError(t, err, "seed failed: %s", out)

	// Import rows must reference a real account; borrow one from the seed.
	st, err := store.Open(filepath.Join(dir, "tellerd.db"))
	require.NoError(t, err)
	ids, err := st.AccountIDs(context.Background())
	require.NoError(t, st.Close())
	require.NoError(t, err)
	require.NotEmpty(t, ids)

	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))
	csv := "tx_id,account_id,device_id,target_id,amount,method\n" +
		"imp-1," + ids[0] + ",,,500000,online\n" +
		"imp-2," + ids[0] + ",,,-250000,atm\n"
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "batch.csv"), []byte(csv), 0o644))

	out, err = runTellerd(t, "import", "--dir", dir)
	require.NoError(t, err, "import failed: %s", out)
	assert.Contains(t, out, "Imported 2 pending transactions from 1 file(s)")

	_, err = os.Stat(filepath.Join(importDir, "processed", "batch.csv"))
	require.NoError(t, err, "imported file should move to processed")

	out, err = runTellerd(t, "import", "--dir", dir)
	require.NoError(t, err)

	out, err = runTellerd(t, "import", "--dir", dir, "--format", "nope")
	require.Error(t, err)
	assert.Contains(t, out, "unknown import format")
}

func TestResolve_MissingWorkspace(t *testing.T) {
	out, err := runTellerd(t, "resolve", "--dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, out, "reading config")
}
