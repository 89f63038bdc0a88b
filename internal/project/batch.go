package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/piwi3910/casemk/internal/errors"
	"github.com/piwi3910/casemk/internal/importer"
	"github.com/piwi3910/casemk/internal/model"
)

// BatchVersion is the batch file schema version written by SaveBatch.
const BatchVersion = "1"

// DefaultFormats is used when a job names no output formats.
var DefaultFormats = []string{"scad"}

// BatchFile is a list of independent case jobs sharing default settings.
type BatchFile struct {
	Version  string      `json:"version" yaml:"version" toml:"version"`
	Defaults *ConfigFile `json:"defaults,omitempty" yaml:"defaults,omitempty" toml:"defaults,omitempty"`
	Jobs     []BatchJob  `json:"jobs" yaml:"jobs" toml:"jobs"`
}

// BatchJob describes one case. Exactly one of Item, Items or ItemsFile is
// set. Item without Count fills the footprint; Items and ItemsFile are
// packed as a mixed layout. DXFHeight is the item height for .dxf item files.
type BatchJob struct {
	Name      string      `json:"name" yaml:"name" toml:"name"`
	Item      string      `json:"item,omitempty" yaml:"item,omitempty" toml:"item,omitempty"`
	Count     int         `json:"count,omitempty" yaml:"count,omitempty" toml:"count,omitempty"`
	Items     string      `json:"items,omitempty" yaml:"items,omitempty" toml:"items,omitempty"`
	ItemsFile string      `json:"items_file,omitempty" yaml:"items_file,omitempty" toml:"items_file,omitempty"`
	DXFHeight float64     `json:"dxf_height,omitempty" yaml:"dxf_height,omitempty" toml:"dxf_height,omitempty"`
	Config    *ConfigFile `json:"config,omitempty" yaml:"config,omitempty" toml:"config,omitempty"`
	Output    string      `json:"output,omitempty" yaml:"output,omitempty" toml:"output,omitempty"`
	Formats   []string    `json:"formats,omitempty" yaml:"formats,omitempty" toml:"formats,omitempty"`
}

// Job is a batch job with its items parsed and its config resolved.
type Job struct {
	Name    string
	Items   []model.Item
	Fill    bool // single item, as many as fit
	Mixed   bool // several item types, shelf packed
	Config  model.Config
	Output  string // output path without extension
	Formats []string
}

// LoadBatch reads a batch file and resolves every job against base, the
// file's defaults and the job's own overrides, in that order. Relative
// paths are resolved against the batch file's directory.
func LoadBatch(path string, base model.Config) ([]Job, error) {
	var f BatchFile
	if err := decodeFile(path, &f); err != nil {
		return nil, err
	}
	if f.Version == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "invalid batch file %s: missing version field", path)
	}
	if f.Version != BatchVersion {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unsupported batch file version %q", f.Version)
	}
	if len(f.Jobs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "batch file %s has no jobs", path)
	}

	if f.Defaults != nil {
		var err error
		if base, err = f.Defaults.Apply(base); err != nil {
			return nil, fmt.Errorf("batch defaults: %w", err)
		}
	}

	dir := filepath.Dir(path)
	seen := map[string]bool{}
	jobs := make([]Job, 0, len(f.Jobs))
	for i, bj := range f.Jobs {
		if bj.Name == "" {
			bj.Name = fmt.Sprintf("job-%d", i+1)
		}
		if seen[bj.Name] {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "duplicate job name %q", bj.Name)
		}
		seen[bj.Name] = true

		job, err := bj.resolve(base, dir)
		if err != nil {
			return nil, fmt.Errorf("job %q: %w", bj.Name, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// SaveBatch writes a batch file, stamping the current schema version.
func SaveBatch(path string, f BatchFile) error {
	f.Version = BatchVersion
	return encodeFile(path, f)
}

func (bj BatchJob) resolve(base model.Config, dir string) (Job, error) {
	job := Job{Name: bj.Name, Config: base}

	sources := 0
	for _, s := range []string{bj.Item, bj.Items, bj.ItemsFile} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return Job{}, errors.New(errors.ErrCodeInvalidInput, "exactly one of item, items or items_file is required")
	}

	switch {
	case bj.Item != "":
		d, err := importer.ParseDimension(bj.Item)
		if err != nil {
			return Job{}, err
		}
		if bj.Count < 0 {
			return Job{}, errors.New(errors.ErrCodeInvalidInput, "count must be positive, got %d", bj.Count)
		}
		count := bj.Count
		if count == 0 {
			job.Fill, count = true, 1
		}
		job.Items = []model.Item{model.NewItem("", d, count)}
	case bj.Items != "":
		items, err := importer.ParseItems(bj.Items)
		if err != nil {
			return Job{}, err
		}
		job.Items, job.Mixed = items, true
	default:
		res := importer.Import(relTo(dir, bj.ItemsFile), bj.DXFHeight)
		if err := res.Err(); err != nil {
			return Job{}, err
		}
		job.Items, job.Mixed = res.Items, true
	}

	if bj.Config != nil {
		cfg, err := bj.Config.Apply(base)
		if err != nil {
			return Job{}, err
		}
		job.Config = cfg
	}

	formats := bj.Formats
	if len(formats) == 0 {
		formats = DefaultFormats
	}
	for _, f := range formats {
		job.Formats = append(job.Formats, strings.ToLower(strings.TrimSpace(f)))
	}

	out := bj.Output
	if out == "" {
		out = bj.Name
	}
	job.Output = strings.TrimSuffix(relTo(dir, out), filepath.Ext(out))
	return job, nil
}

func relTo(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
