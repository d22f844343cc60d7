package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/taskgridgo/internal/config"
)

// writeGrid writes content into a fresh temp dir and returns the file path.
func writeGrid(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	grid := `
		runtime {
			workers      = 3
			architecture = "smp"
			queue_depth  = 16
		}

		task "producer" {
			writes    = ["0x1000+64"]
			busy_us   = 250
			async_ops = 2
		}

		task "consumer" {
			reads      = ["0x1000+64", "0x2000+32"]
			depends_on = ["producer"]
		}
	`
	path := writeGrid(t, "main.hcl", grid)

	// --- Act ---
	model, err := NewLoader().Load(context.Background(), path)

	// --- Assert ---
	require.NoError(t, err)
	require.NotNil(t, model.Runtime)
	assert.Equal(t, 3, model.Runtime.Workers)
	assert.Equal(t, "smp", model.Runtime.Architecture)
	assert.Equal(t, 16, model.Runtime.QueueDepth)

	require.Len(t, model.Tasks, 2)
	producer := model.Tasks[0]
	assert.Equal(t, "producer", producer.Name)
	require.Len(t, producer.Writes, 1)
	assert.Equal(t, config.Region{Base: 0x1000, Length: 64}, producer.Writes[0])
	assert.Equal(t, 250, producer.BusyUS)
	assert.Equal(t, 2, producer.AsyncOps)

	consumer := model.Tasks[1]
	require.Len(t, consumer.Reads, 2)
	assert.Equal(t, config.Region{Base: 0x2000, Length: 32}, consumer.Reads[1])
	assert.Equal(t, []string{"producer"}, consumer.DependsOn)
}

func TestLoader_LoadDirectoryMergesFiles(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hcl"), []byte(`
		task "a" {
			writes = ["0x1000+8"]
		}
	`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.hcl"), []byte(`
		runtime {
			workers = 2
		}
		task "b" {
			reads = ["0x1000+8"]
		}
	`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("not hcl"), 0600))

	// --- Act ---
	model, err := NewLoader().Load(context.Background(), dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 2, model.Runtime.Workers)
	assert.Len(t, model.Tasks, 2)
}

func TestLoader_LoadErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		grid    string
		wantErr string
	}{
		{
			name:    "syntax error",
			grid:    `task "broken" {`,
			wantErr: "failed to parse",
		},
		{
			name: "bad region literal",
			grid: `
				task "bad" {
					reads = ["0x1000"]
				}
			`,
			wantErr: "want base+length",
		},
		{
			name: "non-string region entry",
			grid: `
				task "bad" {
					reads = [42]
				}
			`,
			wantErr: "region entries must be strings",
		},
		{
			name: "zero-length region",
			grid: `
				task "bad" {
					writes = ["0x1000+0"]
				}
			`,
			wantErr: "zero length",
		},
		{
			name: "duplicate task across validation",
			grid: `
				task "dup" {
					writes = ["0x1000+8"]
				}
				task "dup" {
					writes = ["0x2000+8"]
				}
			`,
			wantErr: "duplicate task name",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := writeGrid(t, "main.hcl", tc.grid)
			_, err := NewLoader().Load(context.Background(), path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoader_LoadMissingPath(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().Load(context.Background(), "/does/not/exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot access path")
}

func TestParseRegion(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		in      string
		want    config.Region
		wantErr bool
	}{
		{name: "hex base", in: "0x1000+64", want: config.Region{Base: 0x1000, Length: 64}},
		{name: "decimal base", in: "4096+64", want: config.Region{Base: 4096, Length: 64}},
		{name: "spaces tolerated", in: " 0x20 + 8 ", want: config.Region{Base: 0x20, Length: 8}},
		{name: "missing separator", in: "0x1000", wantErr: true},
		{name: "bad base", in: "zzz+8", wantErr: true},
		{name: "bad length", in: "0x1000+abc", wantErr: true},
		{name: "zero length", in: "0x1000+0", wantErr: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseRegion(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
