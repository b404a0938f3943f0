package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCSV = "EC Tracker\n#,Task,Tree\n1,EC1x1 Warm up,oak\n2,EC1x2 Climb,\n3,Stretch,birch\n"

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(src, []byte(testCSV), 0644))

	cfgPath := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("source = %q\ndata_dir = %q\nwatch_source = false\n", src, filepath.Join(dir, "data"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0644))
	return cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ectrack v"+Version+"\n", out)
}

func TestList(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "[ ] EC1x1 Warm up  (oak)")
	assert.Contains(t, out, "[ ] EC1x2 Climb\n")
	assert.Contains(t, out, "0/3 done")
	assert.Contains(t, out, "other  0/1")
}

func TestExportAndReset(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "export")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "row-2"`)
	assert.Contains(t, out, `"done": false`)

	out, err = run(t, "--config", cfg, "reset")
	require.NoError(t, err)
	assert.Equal(t, "Checklist reset (3 items)\n", out)

	out, err = run(t, "--config", cfg, "reset", "--state")
	require.NoError(t, err)
	assert.Equal(t, "Stored checklist cleared\n", out)
}

func TestStatus(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "cache:    ad-tracker-v11 (")
	assert.Contains(t, out, "data.csv)")
	assert.Contains(t, out, "stored:   none\n")
	assert.Contains(t, out, "items:    3 of 3 source items\n")
}

func TestSourceFlagOverridesConfig(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, "--config", cfg, "--source", filepath.Join(t.TempDir(), "missing.csv"), "list")
	assert.Error(t, err)
}

func TestMissingExplicitConfig(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "nope.toml"), "list")
	assert.Error(t, err)
}
