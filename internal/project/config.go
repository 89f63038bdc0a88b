// Package project loads and saves casemk configuration and batch job files.
// JSON, YAML and TOML are supported; the format follows the file extension.
package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/piwi3910/casemk/internal/errors"
	"github.com/piwi3910/casemk/internal/model"
)

// FootprintFile is the footprint section of a config file.
type FootprintFile struct {
	Mode   string  `json:"mode" yaml:"mode" toml:"mode"`
	Width  float64 `json:"width" yaml:"width" toml:"width"`
	Length float64 `json:"length" yaml:"length" toml:"length"`
}

// ConfigFile is the on-disk form of model.Config. Absent keys keep the value
// they are applied over.
type ConfigFile struct {
	Footprint        *FootprintFile `json:"footprint,omitempty" yaml:"footprint,omitempty" toml:"footprint,omitempty"`
	Clearance        *float64       `json:"clearance,omitempty" yaml:"clearance,omitempty" toml:"clearance,omitempty"`
	WallThickness    *float64       `json:"wall_thickness,omitempty" yaml:"wall_thickness,omitempty" toml:"wall_thickness,omitempty"`
	DividerThickness *float64       `json:"divider_thickness,omitempty" yaml:"divider_thickness,omitempty" toml:"divider_thickness,omitempty"`
	BaseHeight       *float64       `json:"base_height,omitempty" yaml:"base_height,omitempty" toml:"base_height,omitempty"`
	CornerRadius     *float64       `json:"corner_radius,omitempty" yaml:"corner_radius,omitempty" toml:"corner_radius,omitempty"`
	Stackable        *bool          `json:"stackable,omitempty" yaml:"stackable,omitempty" toml:"stackable,omitempty"`
	StackLipExtent   *float64       `json:"stack_lip_extent,omitempty" yaml:"stack_lip_extent,omitempty" toml:"stack_lip_extent,omitempty"`
	StackLipHeight   *float64       `json:"stack_lip_height,omitempty" yaml:"stack_lip_height,omitempty" toml:"stack_lip_height,omitempty"`
	StackClearance   *float64       `json:"stack_clearance,omitempty" yaml:"stack_clearance,omitempty" toml:"stack_clearance,omitempty"`
	AllowRotation    *bool          `json:"allow_rotation,omitempty" yaml:"allow_rotation,omitempty" toml:"allow_rotation,omitempty"`
	LabelWidth       *float64       `json:"label_width,omitempty" yaml:"label_width,omitempty" toml:"label_width,omitempty"`
	LabelLength      *float64       `json:"label_length,omitempty" yaml:"label_length,omitempty" toml:"label_length,omitempty"`
	LabelDir         *string        `json:"label_dir,omitempty" yaml:"label_dir,omitempty" toml:"label_dir,omitempty"`
	LabelDepth       *float64       `json:"label_depth,omitempty" yaml:"label_depth,omitempty" toml:"label_depth,omitempty"`
}

// Apply overlays the keys present in f onto base and validates the result.
func (f ConfigFile) Apply(base model.Config) (model.Config, error) {
	cfg := base
	if fp := f.Footprint; fp != nil {
		kind, err := model.ParseFootprintKind(fp.Mode)
		if err != nil {
			return model.Config{}, err
		}
		w, l := fp.Width, fp.Length
		if w == 0 && l == 0 {
			w, l = base.Footprint.Width, base.Footprint.Length
		}
		cfg.Footprint = model.FootprintMode{Kind: kind, Width: w, Length: l}
	}
	setFloat(&cfg.Clearance, f.Clearance)
	setFloat(&cfg.WallThickness, f.WallThickness)
	setFloat(&cfg.DividerThickness, f.DividerThickness)
	setFloat(&cfg.BaseHeight, f.BaseHeight)
	setFloat(&cfg.CornerRadius, f.CornerRadius)
	setBool(&cfg.Stackable, f.Stackable)
	setFloat(&cfg.StackLipExtent, f.StackLipExtent)
	setFloat(&cfg.StackLipHeight, f.StackLipHeight)
	setFloat(&cfg.StackClearance, f.StackClearance)
	setBool(&cfg.AllowRotation, f.AllowRotation)
	setFloat(&cfg.LabelWidth, f.LabelWidth)
	setFloat(&cfg.LabelLength, f.LabelLength)
	setFloat(&cfg.LabelDepth, f.LabelDepth)
	if f.LabelDir != nil {
		dir, err := model.ParseLabelDir(*f.LabelDir)
		if err != nil {
			return model.Config{}, err
		}
		cfg.LabelDir = dir
	}

	if err := cfg.Validate(); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// FileFromConfig returns a ConfigFile with every key set from cfg.
func FileFromConfig(cfg model.Config) ConfigFile {
	f := func(v float64) *float64 { return &v }
	b := func(v bool) *bool { return &v }
	dir := string(cfg.LabelDir)
	if dir == "" {
		dir = string(model.LabelRight)
	}
	return ConfigFile{
		Footprint: &FootprintFile{
			Mode:   cfg.Footprint.Kind.String(),
			Width:  cfg.Footprint.Width,
			Length: cfg.Footprint.Length,
		},
		Clearance:        f(cfg.Clearance),
		WallThickness:    f(cfg.WallThickness),
		DividerThickness: f(cfg.DividerThickness),
		BaseHeight:       f(cfg.BaseHeight),
		CornerRadius:     f(cfg.CornerRadius),
		Stackable:        b(cfg.Stackable),
		StackLipExtent:   f(cfg.StackLipExtent),
		StackLipHeight:   f(cfg.StackLipHeight),
		StackClearance:   f(cfg.StackClearance),
		AllowRotation:    b(cfg.AllowRotation),
		LabelWidth:       f(cfg.LabelWidth),
		LabelLength:      f(cfg.LabelLength),
		LabelDir:         &dir,
		LabelDepth:       f(cfg.LabelDepth),
	}
}

// DefaultConfigDir returns the default directory for casemk configuration,
// ~/.casemk on all platforms.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".casemk")
}

// DefaultConfigPath returns the default path for the config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// ReadConfigFile decodes a config file without applying it.
func ReadConfigFile(path string) (ConfigFile, error) {
	var f ConfigFile
	if err := decodeFile(path, &f); err != nil {
		return ConfigFile{}, err
	}
	return f, nil
}

// LoadConfig reads a config file and applies it over model.DefaultConfig.
func LoadConfig(path string) (model.Config, error) {
	f, err := ReadConfigFile(path)
	if err != nil {
		return model.Config{}, err
	}
	return f.Apply(model.DefaultConfig())
}

// LoadDefaultConfig loads DefaultConfigPath. A missing file yields
// model.DefaultConfig with no error.
func LoadDefaultConfig() (model.Config, error) {
	path := DefaultConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return model.DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// SaveConfig writes a config file in the format of its extension.
// It creates any missing parent directories automatically.
func SaveConfig(path string, f ConfigFile) error {
	return encodeFile(path, f)
}

type format int

const (
	formatJSON format = iota
	formatYAML
	formatTOML
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".toml":
		return formatTOML, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unsupported file type %q (want .json, .yaml, .yml or .toml)", filepath.Ext(path))
}

func decodeFile(path string, v any) error {
	ft, err := formatOf(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}

	switch ft {
	case formatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(v)
	case formatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(v)
	case formatTOML:
		var md toml.MetaData
		md, err = toml.Decode(string(data), v)
		if err == nil {
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				err = fmt.Errorf("unknown key %q", undecoded[0].String())
			}
		}
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	return nil
}

func encodeFile(path string, v any) error {
	ft, err := formatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	switch ft {
	case formatJSON:
		data, err = json.MarshalIndent(v, "", "  ")
	case formatYAML:
		data, err = yaml.Marshal(v)
	case formatTOML:
		data, err = toml.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create directory for %s", path)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return nil
}
