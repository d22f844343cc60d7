package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/taskgridgo/internal/hcl"
)

func writeGrid(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func testConfig(t *testing.T, gridPath string) *Config {
	t.Helper()
	cfg, err := NewConfig(Config{
		GridPath:     gridPath,
		LogFormat:    "text",
		LogLevel:     "error",
		Workers:      2,
		Architecture: "smp",
	})
	require.NoError(t, err)
	return cfg
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	t.Run("requires grid path", func(t *testing.T) {
		t.Parallel()
		_, err := NewConfig(Config{Workers: 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GridPath")
	})

	t.Run("requires at least one worker", func(t *testing.T) {
		t.Parallel()
		_, err := NewConfig(Config{GridPath: "grid.hcl", Workers: 0})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Workers")
	})
}

func TestNewApp_PanicsOnBadGrid(t *testing.T) {
	t.Parallel()

	path := writeGrid(t, `task "broken" {`)
	cfg := testConfig(t, path)
	out := &bytes.Buffer{}

	require.Panics(t, func() {
		NewApp(out, cfg, hcl.NewLoader())
	})
}

func TestApp_RunExecutesGrid(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A chain via regions, a diamond via depends_on, and async device ops.
	path := writeGrid(t, `
		task "load" {
			writes    = ["0x1000+128"]
			busy_us   = 50
			async_ops = 2
		}

		task "left" {
			reads  = ["0x1000+64"]
			writes = ["0x2000+64"]
		}

		task "right" {
			reads  = ["0x1040+64"]
			writes = ["0x3000+64"]
		}

		task "join" {
			reads      = ["0x2000+64", "0x3000+64"]
			depends_on = ["left", "right"]
		}
	`)
	cfg := testConfig(t, path)
	out := &bytes.Buffer{}
	a := NewApp(out, cfg, hcl.NewLoader())
	require.Len(t, a.Model().Tasks, 4)

	// --- Act ---
	err := a.Run(context.Background(), cfg)

	// --- Assert ---
	require.NoError(t, err)
}

func TestApp_RunRejectsForwardDependsOn(t *testing.T) {
	t.Parallel()

	// depends_on may only reference tasks declared earlier; the model
	// validates existence, the runtime enforces ordering.
	path := writeGrid(t, `
		task "early" {
			depends_on = ["late"]
		}

		task "late" {
			busy_us = 10
		}
	`)
	cfg := testConfig(t, path)
	out := &bytes.Buffer{}
	a := NewApp(out, cfg, hcl.NewLoader())

	err := a.Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declared later")
}

func TestApp_RunUndersizedQueueDepthFanOut(t *testing.T) {
	t.Parallel()

	// One worker and a declared queue depth of 1, with a completion that
	// releases two successors at once. The runtime must raise the depth to a
	// safe minimum; otherwise the worker blocks enqueueing the second release
	// from its own completion path.
	path := writeGrid(t, `
		runtime {
			workers     = 1
			queue_depth = 1
		}

		task "producer" {
			writes = ["0x1000+64"]
		}

		task "reader_a" {
			reads = ["0x1000+64"]
		}

		task "reader_b" {
			reads = ["0x1000+64"]
		}
	`)
	cfg := testConfig(t, path)
	out := &bytes.Buffer{}
	a := NewApp(out, cfg, hcl.NewLoader())

	require.NoError(t, a.Run(context.Background(), cfg))
}

func TestApp_RunHonorsRuntimeBlock(t *testing.T) {
	t.Parallel()

	path := writeGrid(t, `
		runtime {
			workers     = 1
			queue_depth = 2
		}

		task "only" {
			busy_us = 10
		}
	`)
	cfg := testConfig(t, path)
	out := &bytes.Buffer{}
	a := NewApp(out, cfg, hcl.NewLoader())
	require.Equal(t, 1, a.Model().Runtime.Workers)

	require.NoError(t, a.Run(context.Background(), cfg))
}
