package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// An HCL string with a syntax error that is guaranteed to cause a panic
	// during the loading phase inside app.NewApp().
	invalidHCL := `
		task "A" {
			reads = [
		// Missing closing bracket here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	err := os.WriteFile(filePath, []byte(invalidHCL), 0600)
	require.NoError(t, err, "failed to set up test file")

	args := []string{filePath}
	out := &bytes.Buffer{}

	// --- Act ---
	// The run function should recover the panic and return it as an error.
	runErr := run(out, args)

	// --- Assert ---
	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")

	errStr := runErr.Error()
	require.True(t, strings.Contains(errStr, "application startup panicked"), "The error message should indicate that a panic was recovered.")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Providing an unknown flag will cause cli.Parse to return an error.
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A small grid with a region-derived edge and an explicit depends_on.
	grid := `
		runtime {
			workers = 2
		}

		task "producer" {
			writes  = ["0x1000+64"]
			busy_us = 50
		}

		task "consumer" {
			reads      = ["0x1000+64"]
			depends_on = ["producer"]
		}
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	err := os.WriteFile(filePath, []byte(grid), 0600)
	require.NoError(t, err, "failed to set up test file")

	args := []string{"--log-level", "error", "--log-format", "text", filePath}
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(out, args)

	// --- Assert ---
	require.NoError(t, runErr, "run() should execute a valid grid to completion")
}
