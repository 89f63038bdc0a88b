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

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json", "case.json", `{"footprint": {"mode": "fixed", "width": 120, "length": 80}, "wall_thickness": 1.6, "stackable": true}`},
		{"yaml", "case.yaml", "footprint:\n  mode: fixed\n  width: 120\n  length: 80\nwall_thickness: 1.6\nstackable: true\n"},
		{"yml", "case.yml", "footprint: {mode: fixed, width: 120, length: 80}\nwall_thickness: 1.6\nstackable: true\n"},
		{"toml", "case.toml", "wall_thickness = 1.6\nstackable = true\n\n[footprint]\nmode = \"fixed\"\nwidth = 120\nlength = 80\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(write(t, tt.file, tt.content))
			require.NoError(t, err)

			want := model.DefaultConfig()
			want.Footprint = model.FixedFootprint(120, 80)
			want.WallThickness = 1.6
			want.Stackable = true
			assert.Equal(t, want, cfg)
		})
	}
}

func TestLoadConfig_MissingKeysKeepDefaults(t *testing.T) {
	cfg, err := LoadConfig(write(t, "case.yaml", "clearance: 0.5\n"))
	require.NoError(t, err)

	want := model.DefaultConfig()
	want.Clearance = 0.5
	assert.Equal(t, want, cfg)
}

func TestLoadConfig_FootprintModeOnly(t *testing.T) {
	cfg, err := LoadConfig(write(t, "case.json", `{"footprint": {"mode": "fixed"}}`))
	require.NoError(t, err)
	assert.Equal(t, model.FixedFootprint(350, 300), cfg.Footprint)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		code    errors.Code
	}{
		{"unknown key", "case.json", `{"wall": 2}`, errors.ErrCodeInvalidConfig},
		{"unknown yaml key", "case.yaml", "colour: red\n", errors.ErrCodeInvalidConfig},
		{"unknown toml key", "case.toml", "colour = \"red\"\n", errors.ErrCodeInvalidConfig},
		{"bad mode", "case.yaml", "footprint: {mode: huge}\n", errors.ErrCodeInvalidConfig},
		{"invalid value", "case.yaml", "wall_thickness: 0\n", errors.ErrCodeInvalidConfig},
		{"bad extension", "case.ini", "wall_thickness=2\n", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(write(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestLoadConfig_LabelAreas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case.yaml")
	require.NoError(t, os.WriteFile(path, []byte("label_width: 8\nlabel_length: 20\nlabel_dir: Y\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8.0, cfg.LabelWidth)
	assert.Equal(t, 20.0, cfg.LabelLength)
	assert.Equal(t, model.LabelBelow, cfg.LabelDir)

	require.NoError(t, os.WriteFile(path, []byte("label_dir: diagonal\n"), 0o644))
	_, err = LoadConfig(path)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeIO))
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Footprint = model.FixedFootprint(200, 150)
	cfg.CornerRadius = 4
	cfg.Stackable = true
	cfg.StackLipHeight = 1.2
	cfg.AllowRotation = true
	cfg.LabelWidth, cfg.LabelLength = 10, 30
	cfg.LabelDir = model.LabelBelow

	for _, ext := range []string{"json", "yaml", "toml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "case."+ext)
			require.NoError(t, SaveConfig(path, FileFromConfig(cfg)))

			loaded, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadDefaultConfig_NoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadDefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig(), cfg)
}

func TestLoadDefaultConfig_FromHome(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, SaveConfig(DefaultConfigPath(), ConfigFile{CornerRadius: ptr(3.0)}))

	cfg, err := LoadDefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, 3.0, cfg.CornerRadius)
}

func ptr[T any](v T) *T { return &v }
