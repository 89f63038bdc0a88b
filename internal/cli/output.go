package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/casemk/internal/emit/scad"
	"github.com/piwi3910/casemk/internal/emit/stl"
	"github.com/piwi3910/casemk/internal/errors"
	"github.com/piwi3910/casemk/internal/export"
	"github.com/piwi3910/casemk/internal/geometry"
	"github.com/piwi3910/casemk/internal/model"
)

// Output formats.
const (
	FormatSCAD   = "scad"
	FormatSTL    = "stl"
	FormatDXF    = "dxf"
	FormatPDF    = "pdf"
	FormatLabels = "labels"
	FormatJSON   = "json"
)

// formatSuffix maps each format to the suffix appended to the output base.
var formatSuffix = map[string]string{
	FormatSCAD:   ".scad",
	FormatSTL:    ".stl",
	FormatDXF:    ".dxf",
	FormatPDF:    ".pdf",
	FormatLabels: "-labels.pdf",
	FormatJSON:   ".json",
}

// parseFormats splits a comma-separated format list, dropping duplicates.
func parseFormats(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return []string{FormatSCAD}, nil
	}
	return normalizeFormats(strings.Split(s, ","))
}

func normalizeFormats(list []string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, f := range list {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		if _, ok := formatSuffix[f]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown output format %q (want scad, stl, dxf, pdf, labels or json)", f)
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no output formats")
	}
	return out, nil
}

// outputBase strips a known format extension from an output path, so
// "-o case.scad --format scad,stl" writes case.scad and case.stl.
func outputBase(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	for _, suffix := range formatSuffix {
		if ext == suffix {
			return strings.TrimSuffix(path, filepath.Ext(path))
		}
	}
	return path
}

// outputOptions tune the emitters.
type outputOptions struct {
	Segments int // $fn for OpenSCAD cylinders
	STLCells int // marching cubes resolution
}

// caseResult is a generated case ready to be written.
type caseResult struct {
	Layout   model.Layout
	Assembly *geometry.Assembly
	Config   model.Config
}

// writeOutputs writes one file per format next to base and returns the
// paths written. Every format is rendered to a temporary file first; the
// files are moved into place only once all of them rendered, so a failing
// format leaves no output behind.
func writeOutputs(ctx context.Context, base string, formats []string, res caseResult, opts outputOptions) ([]string, error) {
	logger := loggerFromContext(ctx)

	dir := filepath.Dir(base)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, err, "create %s", dir)
		}
	}

	var staged []string
	discard := func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}

	for _, f := range formats {
		if err := ctx.Err(); err != nil {
			discard()
			return nil, err
		}

		tmp, err := stageFile(dir, formatSuffix[f])
		if err != nil {
			discard()
			return nil, err
		}
		staged = append(staged, tmp)

		p := newProgress(logger)
		if err := renderFormat(tmp, f, res, opts); err != nil {
			discard()
			return nil, err
		}
		p.done("rendered output", "format", f)
	}

	written := make([]string, 0, len(formats))
	for i, f := range formats {
		path := base + formatSuffix[f]
		if err := os.Rename(staged[i], path); err != nil {
			for _, done := range written {
				os.Remove(done)
			}
			staged = staged[i:]
			discard()
			return nil, errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
		}
		logger.Debug("wrote output", "format", f, "path", path)
		written = append(written, path)
	}
	return written, nil
}

// stageFile creates an empty temporary file in dir for one format.
func stageFile(dir, suffix string) (string, error) {
	f, err := os.CreateTemp(dir, ".casemk-*"+suffix)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "create temporary file in %s", dir)
	}
	name := f.Name()
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(name)
		return "", errors.Wrap(errors.ErrCodeIO, err, "create temporary file in %s", dir)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", errors.Wrap(errors.ErrCodeIO, err, "create temporary file in %s", dir)
	}
	return name, nil
}

// renderFormat writes one format of res to path.
func renderFormat(path, format string, res caseResult, opts outputOptions) error {
	switch format {
	case FormatSCAD:
		g := scad.New()
		if opts.Segments > 0 {
			g.Segments = opts.Segments
		}
		return g.Save(path, res.Assembly)
	case FormatSTL:
		return stl.Save(path, res.Assembly, opts.STLCells)
	case FormatDXF:
		return export.ExportDXF(path, res.Layout, res.Assembly)
	case FormatPDF:
		return export.ExportPDF(path, res.Layout, res.Assembly, res.Config)
	case FormatLabels:
		return export.ExportLabels(path, res.Layout, res.Assembly)
	case FormatJSON:
		return export.SaveJSON(path, export.NewSummary(res.Layout, res.Assembly))
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown output format %q", format)
}
