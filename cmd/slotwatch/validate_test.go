package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCmd runs the root command with args and returns captured stdout.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	rootCmd.SetArgs(args)
	execErr := rootCmd.Execute()

	_ = w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)

	return buf.String(), execErr
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "slotwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunValidate_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
interval: 2m
status_port: 8081
rules:
  cost: 17
  cutoff: "03-06"
pushplus:
  token: abc
`)

	output, err := executeCmd(t, "validate", "-c", path)
	require.NoError(t, err)

	for _, phrase := range []string{
		"Config is valid!",
		"Interval:      2m0s",
		"docId",
		"cost=17 cutoff=03-06 full_marker=号满",
		"PushPlus:      enabled",
		"Status server: port 8081",
	} {
		assert.Contains(t, output, phrase)
	}
}

func TestRunValidate_NoTokenReportsSkipped(t *testing.T) {
	path := writeConfig(t, "interval: 1m\n")

	output, err := executeCmd(t, "validate", "-c", path)
	require.NoError(t, err)

	assert.Contains(t, output, "skipped (no token)")
	assert.Contains(t, output, "Status server: disabled")
}

func TestRunValidate_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "interval: 100ms\n")

	_, err := executeCmd(t, "validate", "-c", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interval must be at least")
}

func TestRunValidate_MissingFile(t *testing.T) {
	_, err := executeCmd(t, "validate", "-c", "/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}
