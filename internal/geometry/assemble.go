package geometry

import (
	"math"

	"github.com/piwi3910/casemk/internal/errors"
	"github.com/piwi3910/casemk/internal/model"
)

// cutOverlap extends cutters past the faces they open so the difference
// leaves no zero-thickness skin.
const cutOverlap = 0.01

// Rect is an axis-aligned rectangle on the XY plane.
type Rect struct {
	X, Y, Width, Length float64
}

// Metrics are the derived sizes of an assembled case.
type Metrics struct {
	ExteriorWidth  float64
	ExteriorLength float64
	ExteriorHeight float64

	InteriorWidth  float64
	InteriorLength float64
	CavityHeight   float64
	// InteriorOrigin is where the layout origin sits on the exterior.
	InteriorOrigin Vec3

	WallThickness float64
	OuterRadius   float64
	InnerRadius   float64

	Stackable bool
	LipHeight float64
	// LipOpening is the plan opening inside the lip ring.
	LipOpening Rect
	// Recess is the foot left standing inside the recess band at the base
	// bottom; RecessDepth is the band's depth.
	Recess      Rect
	RecessDepth float64

	SlotCount int
	// LabelPads counts the label areas sunk into the top surface;
	// LabelDepth is their depth.
	LabelPads  int
	LabelDepth float64
}

// Assembly is an assembled case: its CSG tree and derived metrics.
type Assembly struct {
	Root    Node
	Metrics Metrics
}

// Assemble builds the case solid for a layout. Every call returns a fresh
// tree; neither argument is modified.
func Assemble(layout model.Layout, cfg model.Config) (*Assembly, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(layout.Slots) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout has no slots")
	}
	if layout.InteriorWidth <= 0 || layout.InteriorLength <= 0 || layout.CavityHeight <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout has an empty interior")
	}

	wall := cfg.WallThickness
	m := Metrics{
		ExteriorWidth:  layout.InteriorWidth + 2*wall,
		ExteriorLength: layout.InteriorLength + 2*wall,
		InteriorWidth:  layout.InteriorWidth,
		InteriorLength: layout.InteriorLength,
		CavityHeight:   layout.CavityHeight,
		InteriorOrigin: Vec3{wall, wall, cfg.BaseHeight},
		WallThickness:  wall,
		OuterRadius:    cfg.CornerRadius,
		InnerRadius:    math.Max(cfg.CornerRadius-wall, 0),
		Stackable:      cfg.Stackable,
		LipHeight:      cfg.LipHeight(),
		SlotCount:      len(layout.Slots),
	}
	if cfg.Footprint.IsFixed() {
		m.ExteriorWidth, m.ExteriorLength = cfg.Footprint.Width, cfg.Footprint.Length
		m.InteriorOrigin.X = (m.ExteriorWidth - m.InteriorWidth) / 2
		m.InteriorOrigin.Y = (m.ExteriorLength - m.InteriorLength) / 2
	}
	m.ExteriorHeight = cfg.BaseHeight + m.CavityHeight + m.LipHeight

	if err := checkCornerRadius(m, layout); err != nil {
		return nil, err
	}
	if err := checkSlotsClearCorners(m, layout); err != nil {
		return nil, err
	}
	if err := labelMetrics(&m, layout, cfg.LabelDepth); err != nil {
		return nil, err
	}

	parts := []Node{
		baseSlab(m, cfg.BaseHeight),
		walls(m),
		dividers(m, layout),
	}

	if !cfg.Stackable {
		return &Assembly{Root: &Union{Name: "case", Children: parts}, Metrics: m}, nil
	}

	if err := stackingMetrics(&m, cfg); err != nil {
		return nil, err
	}
	parts = append(parts, lip(m, cfg.StackLipExtent))
	root := &Difference{
		Name:    "case",
		Base:    &Union{Name: "body", Children: parts},
		Cutters: []Node{recess(m, cfg.StackLipExtent+cfg.StackClearance)},
	}
	return &Assembly{Root: root, Metrics: m}, nil
}

func checkCornerRadius(m Metrics, layout model.Layout) error {
	r := m.OuterRadius
	if r <= 0 {
		return nil
	}
	if limit := math.Min(m.ExteriorWidth, m.ExteriorLength) / 2; r > limit+model.Epsilon {
		return errors.Infeasible(errors.ErrCodeGeometryInfeasible, "corner_radius", r, limit, "invalid corner radius")
	}
	if limit := layout.MinSlotSpan() / 2; m.InnerRadius > limit+model.Epsilon {
		return errors.Infeasible(errors.ErrCodeGeometryInfeasible, "corner_radius", m.InnerRadius, limit,
			"invalid corner radius: inner radius exceeds half the smallest slot")
	}
	return nil
}

// checkSlotsClearCorners rejects slots that reach past a rounded cavity
// corner, where the wall would run through the slot.
func checkSlotsClearCorners(m Metrics, layout model.Layout) error {
	ri := m.InnerRadius
	if ri <= 0 {
		return nil
	}
	for _, s := range layout.Slots {
		for _, p := range [][2]float64{{s.X, s.Y}, {s.MaxX(), s.Y}, {s.X, s.MaxY()}, {s.MaxX(), s.MaxY()}} {
			if roundedRectDistance(p[0], p[1], m.InteriorWidth, m.InteriorLength, ri) <= model.Epsilon {
				continue
			}
			dx := math.Min(p[0], m.InteriorWidth-p[0])
			dy := math.Min(p[1], m.InteriorLength-p[1])
			return errors.Infeasible(errors.ErrCodeGeometryInfeasible, "corner_radius", ri, maxCornerRadius(dx, dy),
				"invalid corner radius: slot %d reaches into a rounded corner", s.Index)
		}
	}
	return nil
}

// maxCornerRadius returns the largest corner radius whose arc still passes
// outside a point dx, dy in from the corner.
func maxCornerRadius(dx, dy float64) float64 {
	dx, dy = math.Max(dx, 0), math.Max(dy, 0)
	return dx + dy + math.Sqrt(2*dx*dy)
}

func labelMetrics(m *Metrics, layout model.Layout, depth float64) error {
	for _, s := range layout.Slots {
		if s.LabelArea == nil {
			continue
		}
		if !layout.ContainsArea(*s.LabelArea) {
			return errors.New(errors.ErrCodeInvalidInput, "label area of slot %d lies outside the interior", s.Index)
		}
		m.LabelPads++
	}
	if m.LabelPads == 0 || depth <= 0 {
		m.LabelPads = 0
		return nil
	}
	if depth >= m.CavityHeight-model.Epsilon {
		return errors.Infeasible(errors.ErrCodeGeometryInfeasible, "label_depth", depth, m.CavityHeight,
			"label pads would reach the floor")
	}
	m.LabelDepth = depth
	return nil
}

func stackingMetrics(m *Metrics, cfg model.Config) error {
	extent, clearance := cfg.StackLipExtent, cfg.StackClearance

	m.LipOpening = Rect{
		X:      extent,
		Y:      extent,
		Width:  m.ExteriorWidth - 2*extent,
		Length: m.ExteriorLength - 2*extent,
	}
	if m.LipOpening.Width <= 0 || m.LipOpening.Length <= 0 {
		return errors.Infeasible(errors.ErrCodeGeometryInfeasible, "stack_lip_extent",
			2*extent, math.Min(m.ExteriorWidth, m.ExteriorLength), "stacking lip closes the case opening")
	}

	m.Recess = Rect{
		X:      extent + clearance,
		Y:      extent + clearance,
		Width:  m.LipOpening.Width - 2*clearance,
		Length: m.LipOpening.Length - 2*clearance,
	}
	if m.Recess.Width <= 0 || m.Recess.Length <= 0 {
		return errors.Infeasible(errors.ErrCodeGeometryInfeasible, "stack_clearance",
			2*clearance, math.Min(m.LipOpening.Width, m.LipOpening.Length), "stack recess leaves no foot")
	}
	m.RecessDepth = m.LipHeight

	band := extent + clearance
	reachesCavity := band > math.Min(m.InteriorOrigin.X, m.InteriorOrigin.Y)+model.Epsilon
	if reachesCavity && m.RecessDepth >= cfg.BaseHeight-model.Epsilon {
		return errors.Infeasible(errors.ErrCodeGeometryInfeasible, "stack_lip_height",
			m.RecessDepth, cfg.BaseHeight, "stack recess would cut through the base")
	}
	return nil
}

// profile returns a prism of plan size w x l and height h with its minimum
// corner at the origin and vertical edges rounded by r.
func profile(name string, w, l, h, r float64) Node {
	r = math.Min(r, math.Min(w, l)/2)
	if r <= model.Epsilon {
		return &Box{Name: name, Size: Vec3{w, l, h}}
	}

	var children []Node
	if w-2*r > model.Epsilon {
		children = append(children, &Translate{Offset: Vec3{r, 0, 0}, Child: &Box{Size: Vec3{w - 2*r, l, h}}})
	}
	if l-2*r > model.Epsilon {
		children = append(children, &Translate{Offset: Vec3{0, r, 0}, Child: &Box{Size: Vec3{w, l - 2*r, h}}})
	}
	for _, c := range []Vec3{{r, r, 0}, {w - r, r, 0}, {r, l - r, 0}, {w - r, l - r, 0}} {
		children = append(children, &Translate{Offset: c, Child: &Cylinder{Radius: r, Height: h}})
	}
	return &Union{Name: name, Children: children}
}

func baseSlab(m Metrics, height float64) Node {
	return profile("base", m.ExteriorWidth, m.ExteriorLength, height, m.OuterRadius)
}

func walls(m Metrics) Node {
	o := m.InteriorOrigin
	return &Translate{
		Offset: Vec3{0, 0, o.Z},
		Child: &Difference{
			Name: "walls",
			Base: profile("", m.ExteriorWidth, m.ExteriorLength, m.CavityHeight, m.OuterRadius),
			Cutters: []Node{&Translate{
				Offset: Vec3{o.X, o.Y, -cutOverlap},
				Child:  profile("cavity", m.InteriorWidth, m.InteriorLength, m.CavityHeight+2*cutOverlap, m.InnerRadius),
			}},
		},
	}
}

func dividers(m Metrics, layout model.Layout) Node {
	cutters := make([]Node, 0, len(layout.Slots))
	var pads []Node
	for _, s := range layout.Slots {
		cutters = append(cutters, &Translate{
			Offset: Vec3{s.X, s.Y, -cutOverlap},
			Child:  &Box{Name: s.Label, Size: Vec3{s.Width, s.Length, m.CavityHeight + 2*cutOverlap}},
		})
		if a := s.LabelArea; a != nil && m.LabelPads > 0 {
			pads = append(pads, &Translate{
				Offset: Vec3{a.X, a.Y, m.CavityHeight - m.LabelDepth},
				Child:  &Box{Name: s.Label, Size: Vec3{a.Width, a.Length, m.LabelDepth + cutOverlap}},
			})
		}
	}

	all := []Node{&Union{Name: "slots", Children: cutters}}
	if len(pads) > 0 {
		all = append(all, &Union{Name: "labels", Children: pads})
	}
	return &Translate{
		Offset: m.InteriorOrigin,
		Child: &Difference{
			Name:    "dividers",
			Base:    &Box{Size: Vec3{m.InteriorWidth, m.InteriorLength, m.CavityHeight}},
			Cutters: all,
		},
	}
}

func lip(m Metrics, extent float64) Node {
	h := m.LipHeight
	open := m.LipOpening
	return &Translate{
		Offset: Vec3{0, 0, m.InteriorOrigin.Z + m.CavityHeight},
		Child: &Difference{
			Name: "lip",
			Base: profile("", m.ExteriorWidth, m.ExteriorLength, h, m.OuterRadius),
			Cutters: []Node{&Translate{
				Offset: Vec3{open.X, open.Y, -cutOverlap},
				Child:  profile("", open.Width, open.Length, h+2*cutOverlap, math.Max(m.OuterRadius-extent, 0)),
			}},
		},
	}
}

// recess is the band removed from the base bottom around the foot. band is
// the distance from the exterior edge to the foot.
func recess(m Metrics, band float64) Node {
	foot := m.Recess
	d := m.RecessDepth
	outerR := 0.0
	if m.OuterRadius > 0 {
		outerR = m.OuterRadius + cutOverlap
	}
	return &Translate{
		Offset: Vec3{-cutOverlap, -cutOverlap, -cutOverlap},
		Child: &Difference{
			Name: "recess",
			Base: profile("", m.ExteriorWidth+2*cutOverlap, m.ExteriorLength+2*cutOverlap, d+cutOverlap, outerR),
			Cutters: []Node{&Translate{
				Offset: Vec3{foot.X + cutOverlap, foot.Y + cutOverlap, -cutOverlap},
				Child:  profile("foot", foot.Width, foot.Length, d+3*cutOverlap, math.Max(m.OuterRadius-band, 0)),
			}},
		},
	}
}
