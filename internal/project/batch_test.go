package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/casemk/internal/errors"
	"github.com/piwi3910/casemk/internal/model"
)

const batchYAML = `version: "1"
defaults:
  wall_thickness: 1.6
jobs:
  - name: bits
    item: 6x6x40
  - name: cards
    item: 24x32x2.1
    count: 10
    output: out/cards.scad
    formats: [SCAD, " stl "]
    config:
      stackable: true
  - name: drawer
    items: "30x20x15:4, 40x30x20:2(SD-1)"
  - name: parts
    items_file: parts.csv
`

func TestLoadBatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(batchYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "parts.csv"), []byte("label,width,length,height,count\nnut,10,10,5,8\n"), 0o644))

	jobs, err := LoadBatch(path, model.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, jobs, 4)

	bits := jobs[0]
	assert.True(t, bits.Fill)
	assert.False(t, bits.Mixed)
	require.Len(t, bits.Items, 1)
	assert.Equal(t, model.Dimension{Width: 6, Length: 6, Height: 40}, bits.Items[0].Size)
	assert.Equal(t, 1.6, bits.Config.WallThickness)
	assert.False(t, bits.Config.Stackable)
	assert.Equal(t, filepath.Join(dir, "bits"), bits.Output)
	assert.Equal(t, []string{"scad"}, bits.Formats)

	cards := jobs[1]
	assert.False(t, cards.Fill)
	assert.Equal(t, 10, cards.Items[0].Count)
	assert.True(t, cards.Config.Stackable)
	assert.Equal(t, 1.6, cards.Config.WallThickness)
	assert.Equal(t, filepath.Join(dir, "out", "cards"), cards.Output)
	assert.Equal(t, []string{"scad", "stl"}, cards.Formats)

	drawer := jobs[2]
	assert.True(t, drawer.Mixed)
	require.Len(t, drawer.Items, 2)
	assert.Equal(t, "SD-1", drawer.Items[1].Label)

	parts := jobs[3]
	assert.True(t, parts.Mixed)
	require.Len(t, parts.Items, 1)
	assert.Equal(t, "nut", parts.Items[0].Label)
	assert.Equal(t, 8, parts.Items[0].Count)
}

func TestLoadBatch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"missing version", "jobs:\n  - item: 10x10x10\n", errors.ErrCodeInvalidConfig},
		{"wrong version", "version: \"9\"\njobs:\n  - item: 10x10x10\n", errors.ErrCodeInvalidConfig},
		{"no jobs", "version: \"1\"\njobs: []\n", errors.ErrCodeInvalidConfig},
		{"duplicate names", "version: \"1\"\njobs:\n  - {name: a, item: 10x10}\n  - {name: a, item: 20x20}\n", errors.ErrCodeInvalidConfig},
		{"two sources", "version: \"1\"\njobs:\n  - {item: 10x10, items: \"20x20:2\"}\n", errors.ErrCodeInvalidInput},
		{"no source", "version: \"1\"\njobs:\n  - {name: empty}\n", errors.ErrCodeInvalidInput},
		{"bad item", "version: \"1\"\njobs:\n  - {item: 10x0x10}\n", errors.ErrCodeInvalidDimension},
		{"bad override", "version: \"1\"\njobs:\n  - {item: 10x10, config: {divider_thickness: -1}}\n", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := write(t, "jobs.yaml", tt.content)
			_, err := LoadBatch(path, model.DefaultConfig())
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestSaveBatch_StampsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.toml")
	require.NoError(t, SaveBatch(path, BatchFile{
		Jobs: []BatchJob{{Name: "bits", Item: "6x6x40", Count: 12, Formats: []string{"stl"}}},
	}))

	jobs, err := LoadBatch(path, model.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, 12, jobs[0].Items[0].Count)
	assert.Equal(t, []string{"stl"}, jobs[0].Formats)
}
