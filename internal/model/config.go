package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/casemk/internal/errors"
)

// FootprintKind selects how the case footprint is derived.
type FootprintKind int

const (
	FootprintAuto  FootprintKind = iota // Width/Length bound the exterior; the case shrinks to fit
	FootprintFixed                      // Width/Length are the exact exterior size
)

func (k FootprintKind) String() string {
	switch k {
	case FootprintFixed:
		return "fixed"
	default:
		return "auto"
	}
}

// MarshalText encodes the kind as "auto" or "fixed".
func (k FootprintKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *FootprintKind) UnmarshalText(b []byte) error {
	v, err := ParseFootprintKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseFootprintKind converts "auto" or "fixed" to a FootprintKind.
func ParseFootprintKind(s string) (FootprintKind, error) {
	switch s {
	case "", "auto":
		return FootprintAuto, nil
	case "fixed":
		return FootprintFixed, nil
	}
	return FootprintAuto, errors.New(errors.ErrCodeInvalidConfig, "unknown footprint mode %q (want auto or fixed)", s)
}

// FootprintMode is either a maximum exterior bound or an exact exterior size.
// Build it with AutoFootprint or FixedFootprint.
type FootprintMode struct {
	Kind   FootprintKind `json:"kind"`
	Width  float64       `json:"width"`
	Length float64       `json:"length"`
}

func AutoFootprint(w, l float64) FootprintMode {
	return FootprintMode{Kind: FootprintAuto, Width: w, Length: l}
}

func FixedFootprint(w, l float64) FootprintMode {
	return FootprintMode{Kind: FootprintFixed, Width: w, Length: l}
}

func (f FootprintMode) IsFixed() bool { return f.Kind == FootprintFixed }

func (f FootprintMode) String() string {
	return fmt.Sprintf("%s %sx%s", f.Kind, fmtMM(f.Width), fmtMM(f.Length))
}

// StackLipHeightFraction derives the lip height from the wall thickness when
// no explicit lip height is configured. Half the wall keeps the base recess,
// which is as deep as the lip, shallower than the default 2 mm base; a
// full-wall lip with the defaults would cut the recess through the floor.
const StackLipHeightFraction = 0.5

// CornerSafetyMargin is added to the corner radius when keeping slots clear
// of the rounded corners.
const CornerSafetyMargin = 1.0

// LabelDir places a slot's label area relative to the slot.
type LabelDir string

const (
	LabelRight LabelDir = "x" // beside the slot, along the shelf
	LabelBelow LabelDir = "y" // after the slot, across the shelf
)

// ParseLabelDir converts "x" or "y" (any case) to a LabelDir.
func ParseLabelDir(s string) (LabelDir, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "x":
		return LabelRight, nil
	case "y":
		return LabelBelow, nil
	}
	return LabelRight, errors.New(errors.ErrCodeInvalidConfig, "unknown label direction %q (want x or y)", s)
}

// Config holds every tunable of the generator. All values are in mm.
type Config struct {
	Footprint        FootprintMode `json:"footprint"`
	Clearance        float64       `json:"clearance"`
	WallThickness    float64       `json:"wall_thickness"`
	DividerThickness float64       `json:"divider_thickness"`
	BaseHeight       float64       `json:"base_height"`
	CornerRadius     float64       `json:"corner_radius"`

	Stackable      bool    `json:"stackable"`
	StackLipExtent float64 `json:"stack_lip_extent"`
	StackLipHeight float64 `json:"stack_lip_height"` // 0 = StackLipHeightFraction * WallThickness
	StackClearance float64 `json:"stack_clearance"`

	// AllowRotation lets the engine swap an item's width and length.
	AllowRotation bool `json:"allow_rotation"`

	// LabelWidth x LabelLength is reserved next to every labelled slot of a
	// mixed layout. Zero disables label areas.
	LabelWidth  float64  `json:"label_width"`
	LabelLength float64  `json:"label_length"`
	LabelDir    LabelDir `json:"label_dir"`
	// LabelDepth is how far label pads are sunk into the top surface.
	LabelDepth float64 `json:"label_depth"`
}

// DefaultConfig returns the generator defaults.
func DefaultConfig() Config {
	return Config{
		Footprint:        AutoFootprint(350, 300),
		Clearance:        1.5,
		WallThickness:    2.0,
		DividerThickness: 1.5,
		BaseHeight:       2.0,
		CornerRadius:     0,
		Stackable:        false,
		StackLipExtent:   2.0,
		StackLipHeight:   0,
		StackClearance:   0.3,
		AllowRotation:    false,
		LabelDir:         LabelRight,
		LabelDepth:       0.5,
	}
}

// LipHeight returns the effective stacking lip height, 0 when not stackable.
func (c Config) LipHeight() float64 {
	if !c.Stackable {
		return 0
	}
	if c.StackLipHeight > 0 {
		return c.StackLipHeight
	}
	return StackLipHeightFraction * c.WallThickness
}

// InteriorBound returns the largest interior footprint the footprint allows.
func (c Config) InteriorBound() (w, l float64) {
	return c.Footprint.Width - 2*c.WallThickness, c.Footprint.Length - 2*c.WallThickness
}

// CornerInset is the margin kept between the cavity outline and every slot
// so rounded corners never reach into a slot. It is 0 for sharp corners.
func (c Config) CornerInset() float64 {
	if c.CornerRadius <= 0 {
		return 0
	}
	return c.CornerRadius + CornerSafetyMargin
}

// UsableBound returns the interior bound left for slots once the corner
// inset is taken off every side.
func (c Config) UsableBound() (w, l float64) {
	w, l = c.InteriorBound()
	in := 2 * c.CornerInset()
	return math.Max(w-in, 0), math.Max(l-in, 0)
}

// HasLabelAreas reports whether labelled slots get a reserved label area.
func (c Config) HasLabelAreas() bool {
	return c.LabelWidth > 0 && c.LabelLength > 0
}

// Validate checks the type-level rules of the configuration. Whether the
// requested case can actually be built is decided by the engine and the
// assembler.
func (c Config) Validate() error {
	if c.Footprint.Kind != FootprintAuto && c.Footprint.Kind != FootprintFixed {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown footprint kind %d", c.Footprint.Kind)
	}
	if !positive(c.Footprint.Width) || !positive(c.Footprint.Length) {
		return errors.New(errors.ErrCodeInvalidConfig, "footprint must be positive, got %s", c.Footprint)
	}

	type rule struct {
		name     string
		v        float64
		positive bool
	}
	checks := []rule{
		{"clearance", c.Clearance, false},
		{"wall_thickness", c.WallThickness, true},
		{"divider_thickness", c.DividerThickness, true},
		{"base_height", c.BaseHeight, true},
		{"corner_radius", c.CornerRadius, false},
		{"label_width", c.LabelWidth, false},
		{"label_length", c.LabelLength, false},
		{"label_depth", c.LabelDepth, false},
	}
	if c.Stackable {
		checks = append(checks,
			rule{"stack_lip_extent", c.StackLipExtent, true},
			rule{"stack_lip_height", c.StackLipHeight, false},
			rule{"stack_clearance", c.StackClearance, false},
		)
	}
	for _, ch := range checks {
		if math.IsNaN(ch.v) || math.IsInf(ch.v, 0) {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must be a finite number", ch.name)
		}
		if ch.positive && ch.v <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must be positive, got %g", ch.name, ch.v)
		}
		if ch.v < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must not be negative, got %g", ch.name, ch.v)
		}
	}

	if (c.LabelWidth > 0) != (c.LabelLength > 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "label size needs both a width and a length, got %gx%g", c.LabelWidth, c.LabelLength)
	}
	if c.LabelDir != "" && c.LabelDir != LabelRight && c.LabelDir != LabelBelow {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown label direction %q (want x or y)", string(c.LabelDir))
	}

	if c.Footprint.IsFixed() {
		w, l := c.InteriorBound()
		if w <= 0 || l <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig,
				"case size %sx%s leaves no interior with %g mm walls", fmtMM(c.Footprint.Width), fmtMM(c.Footprint.Length), c.WallThickness)
		}
	}
	return nil
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
