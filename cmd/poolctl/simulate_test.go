package main

import (
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/poolkit/pool"
)

func TestSimulateCommand(t *testing.T) {
	tests := []struct {
		name        string
		layout      string
		ops         int
		maxBytes    int
		json        bool
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "small layout text",
			layout:      "small",
			ops:         2000,
			maxBytes:    200,
			wantContain: []string{"Layout Small[8x256 32x128 128x64]", "longest run", "bytes wasted:"},
		},
		{
			name:        "general layout json",
			layout:      "general",
			ops:         5000,
			maxBytes:    4096,
			json:        true,
			wantContain: []string{`"dispatcher"`, `"alloc_calls"`, `"block_size": 4096`},
		},
		{
			name:    "unknown layout",
			layout:  "nope",
			ops:     10,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			layoutName = tt.layout
			simOps = tt.ops
			if tt.maxBytes > 0 {
				simMaxBytes = tt.maxBytes
			}
			jsonOut = tt.json

			output, err := captureOutput(t, runSimulate)
			if (err != nil) != tt.wantErr {
				t.Fatalf("runSimulate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.json {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

// TestSimulate_DrainEmptiesPool checks every checked free succeeds and the
// ledgers end empty.
func TestSimulate_DrainEmptiesPool(t *testing.T) {
	resetFlags()
	simDrain = true

	p, err := pool.New(pool.LayoutSmall)
	require.NoError(t, err)
	defer p.Close()
	d := pool.NewDispatcher(p)

	require.NoError(t, simulate(d, rand.New(rand.NewSource(7)), 20000))
	for i, s := range p.Stats() {
		assert.Zero(t, s.UsedBlocks, "bucket %d", i)
	}
	st := d.Stats()
	assert.Greater(t, st.AllocFailures, 0, "the small layout should run out under this load")
	assert.Equal(t, st.BytesRequested, st.BytesFreed)
}

func TestSimulate_InvalidRange(t *testing.T) {
	resetFlags()
	simMinBytes, simMaxBytes = 10, 5
	require.Error(t, runSimulate())
}

func TestSimulate_ConfigFile(t *testing.T) {
	resetFlags()
	path := filepath.Join(t.TempDir(), "pool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: tiny
buckets:
  - {block_size: 16, block_count: 64}
`), 0o644))
	configPath = path
	jsonOut = true
	simOps = 500
	simMaxBytes = 64

	output, err := captureOutput(t, runSimulate)
	require.NoError(t, err)

	var report poolReport
	require.NoError(t, json.Unmarshal([]byte(output), &report))
	assert.Equal(t, "tiny", report.Layout.Name)
	require.Len(t, report.Buckets, 1)
	assert.Equal(t, 16, report.Buckets[0].BlockSize)
	assert.Equal(t, 500, report.Dispatcher.AllocCalls+report.Dispatcher.FreeCalls)
}
