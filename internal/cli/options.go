package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/piwi3910/casemk/internal/engine"
	"github.com/piwi3910/casemk/internal/errors"
	"github.com/piwi3910/casemk/internal/importer"
	"github.com/piwi3910/casemk/internal/model"
)

// caseFlags are the item and case flags shared by generate, layout and
// compare.
type caseFlags struct {
	item      string
	count     int
	items     string
	itemsFile string
	dxfHeight float64

	configFile string
	max        string
	caseSize   string

	clearance      float64
	wall           float64
	divider        float64
	base           float64
	cornerRadius   float64
	stackable      bool
	stackLip       float64
	stackLipHeight float64
	stackClearance float64
	rotate         bool

	labelSize  string
	labelDir   string
	labelDepth float64
}

func (f *caseFlags) register(cmd *cobra.Command) {
	d := model.DefaultConfig()
	fs := cmd.Flags()

	fs.StringVar(&f.item, "item", "", "item size WxLxH (or WxL, height = width)")
	fs.IntVar(&f.count, "count", 0, "exact number of slots for --item (default: as many as fit)")
	fs.StringVar(&f.items, "items", "", `mixed items, e.g. "30x20x15:4, 40x30x20:2(SD)"`)
	fs.StringVar(&f.itemsFile, "items-file", "", "read mixed items from a .csv, .xlsx, .dxf or text file")
	fs.Float64Var(&f.dxfHeight, "dxf-height", 0, "item height for --items-file .dxf footprints")

	fs.StringVar(&f.configFile, "config", "", "config file (.json, .yaml, .toml)")
	fs.StringVar(&f.max, "max", "", "maximum exterior footprint WxL")
	fs.StringVar(&f.caseSize, "case-size", "", "exact exterior footprint WxL")

	fs.Float64Var(&f.clearance, "clearance", d.Clearance, "clearance added to every item axis in mm")
	fs.Float64Var(&f.wall, "wall", d.WallThickness, "outer wall thickness in mm")
	fs.Float64Var(&f.divider, "divider", d.DividerThickness, "divider thickness in mm")
	fs.Float64Var(&f.base, "base", d.BaseHeight, "base thickness in mm")
	fs.Float64Var(&f.cornerRadius, "corner-radius", d.CornerRadius, "outer corner radius in mm")
	fs.BoolVar(&f.stackable, "stackable", d.Stackable, "add a stacking lip and a matching base recess")
	fs.Float64Var(&f.stackLip, "stack-lip", d.StackLipExtent, "stacking lip extent from the outer edge in mm")
	fs.Float64Var(&f.stackLipHeight, "stack-lip-height", d.StackLipHeight, "stacking lip height in mm (0 = half the wall)")
	fs.Float64Var(&f.stackClearance, "stack-clearance", d.StackClearance, "fit clearance between lip and recess in mm")
	fs.BoolVar(&f.rotate, "rotate", d.AllowRotation, "allow items to be rotated 90 degrees")
	fs.StringVar(&f.labelSize, "label-size", "", "reserve a WxL label area next to every labelled slot of a mixed layout")
	fs.StringVar(&f.labelDir, "label-dir", string(d.LabelDir), "label area placement: x (beside the slot) or y (below it)")
	fs.Float64Var(&f.labelDepth, "label-depth", d.LabelDepth, "depth of the label pads sunk into the top surface in mm")

	cmd.MarkFlagsMutuallyExclusive("max", "case-size")
	cmd.MarkFlagsMutuallyExclusive("item", "items", "items-file")
}

// config resolves the configuration: defaults, then the config file, then
// the flags that were set explicitly.
func (f *caseFlags) config(cmd *cobra.Command) (model.Config, error) {
	cfg, err := baseConfig(f.configFile)
	if err != nil {
		return model.Config{}, err
	}

	fs := cmd.Flags()
	switch {
	case fs.Changed("max"):
		w, l, err := importer.ParseFootprint(f.max)
		if err != nil {
			return model.Config{}, err
		}
		cfg.Footprint = model.AutoFootprint(w, l)
	case fs.Changed("case-size"):
		w, l, err := importer.ParseFootprint(f.caseSize)
		if err != nil {
			return model.Config{}, err
		}
		cfg.Footprint = model.FixedFootprint(w, l)
	}

	floats := map[string]struct {
		dst *float64
		v   float64
	}{
		"clearance":        {&cfg.Clearance, f.clearance},
		"wall":             {&cfg.WallThickness, f.wall},
		"divider":          {&cfg.DividerThickness, f.divider},
		"base":             {&cfg.BaseHeight, f.base},
		"corner-radius":    {&cfg.CornerRadius, f.cornerRadius},
		"stack-lip":        {&cfg.StackLipExtent, f.stackLip},
		"stack-lip-height": {&cfg.StackLipHeight, f.stackLipHeight},
		"stack-clearance":  {&cfg.StackClearance, f.stackClearance},
	}
	for name, o := range floats {
		if fs.Changed(name) {
			*o.dst = o.v
		}
	}
	if fs.Changed("stackable") {
		cfg.Stackable = f.stackable
	}
	if fs.Changed("rotate") {
		cfg.AllowRotation = f.rotate
	}
	if fs.Changed("label-size") {
		w, l, err := importer.ParseFootprint(f.labelSize)
		if err != nil {
			return model.Config{}, err
		}
		cfg.LabelWidth, cfg.LabelLength = w, l
	}
	if fs.Changed("label-dir") {
		dir, err := model.ParseLabelDir(f.labelDir)
		if err != nil {
			return model.Config{}, err
		}
		cfg.LabelDir = dir
	}
	if fs.Changed("label-depth") {
		cfg.LabelDepth = f.labelDepth
	}

	if err := cfg.Validate(); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

// job builds the engine job from the item flags.
func (f *caseFlags) job(ctx context.Context, cmd *cobra.Command) (engine.Job, error) {
	fs := cmd.Flags()
	if fs.Changed("count") && f.item == "" {
		return engine.Job{}, errors.New(errors.ErrCodeInvalidInput, "--count requires --item")
	}

	switch {
	case f.item != "":
		d, err := importer.ParseDimension(f.item)
		if err != nil {
			return engine.Job{}, err
		}
		if !fs.Changed("count") {
			return engine.Job{Items: []model.Item{model.NewItem("", d, 1)}, Fill: true}, nil
		}
		it := model.NewItem("", d, f.count)
		if err := it.Validate(); err != nil {
			return engine.Job{}, err
		}
		return engine.Job{Items: []model.Item{it}}, nil

	case f.items != "":
		items, err := importer.ParseItems(f.items)
		if err != nil {
			return engine.Job{}, err
		}
		return engine.Job{Items: items, Mixed: true}, nil

	case f.itemsFile != "":
		res := importer.Import(f.itemsFile, f.dxfHeight)
		logger := loggerFromContext(ctx)
		for _, w := range res.Warnings {
			logger.Warn(w, "file", f.itemsFile)
		}
		if err := res.Err(); err != nil {
			return engine.Job{}, err
		}
		logger.Debug("imported items", "file", f.itemsFile, "items", len(res.Items))
		return engine.Job{Items: res.Items, Mixed: true}, nil
	}

	return engine.Job{}, errors.New(errors.ErrCodeInvalidInput, "one of --item, --items or --items-file is required")
}

// resolve returns the job and configuration of a command invocation.
func (f *caseFlags) resolve(cmd *cobra.Command) (engine.Job, model.Config, error) {
	cfg, err := f.config(cmd)
	if err != nil {
		return engine.Job{}, model.Config{}, err
	}
	job, err := f.job(cmd.Context(), cmd)
	if err != nil {
		return engine.Job{}, model.Config{}, err
	}
	return job, cfg, nil
}
