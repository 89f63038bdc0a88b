package engine

import (
	"math"
	"sort"

	"github.com/piwi3910/casemk/internal/errors"
	"github.com/piwi3910/casemk/internal/model"
)

// unit is one physical item to place, with its effective size.
type unit struct {
	itemID, label string
	w, l, h       float64
}

func (u unit) area() float64 { return u.w * u.l }

// expandUnits turns (item, count) pairs into individual units and orders
// them tallest first, then largest footprint first. Ties keep input order.
func expandUnits(items []model.Item, clearance float64) []unit {
	var units []unit
	for _, it := range items {
		eff := it.Size.Grow(clearance)
		for i := 0; i < it.Count; i++ {
			units = append(units, unit{itemID: it.ID, label: it.Label, w: eff.Width, l: eff.Length, h: eff.Height})
		}
	}
	sort.SliceStable(units, func(i, j int) bool {
		if math.Abs(units[i].h-units[j].h) > model.Epsilon {
			return units[i].h > units[j].h
		}
		return units[i].area() > units[j].area()+model.Epsilon
	})
	return units
}

// labelled reports whether u gets a label area.
func (e *Engine) labelled(u unit) bool {
	return u.label != "" && e.Config.HasLabelAreas()
}

// extent returns the shelf footprint of u placed as w x l, including its
// label area.
func (e *Engine) extent(u unit, w, l float64) (fw, fl float64) {
	if !e.labelled(u) {
		return w, l
	}
	cfg := e.Config
	div := cfg.DividerThickness
	if cfg.LabelDir == model.LabelBelow {
		return math.Max(w, cfg.LabelWidth), l + div + cfg.LabelLength
	}
	return w + div + cfg.LabelWidth, math.Max(l, cfg.LabelLength)
}

// labelArea returns the label area of a unit placed at (x, y) as w x l.
func (e *Engine) labelArea(u unit, x, y, w, l float64) *model.Area {
	if !e.labelled(u) {
		return nil
	}
	cfg := e.Config
	div := cfg.DividerThickness
	if cfg.LabelDir == model.LabelBelow {
		return &model.Area{X: x + math.Max(0, (w-cfg.LabelWidth)/2), Y: y + l + div, Width: cfg.LabelWidth, Length: cfg.LabelLength}
	}
	return &model.Area{X: x + w + div, Y: y, Width: cfg.LabelWidth, Length: cfg.LabelLength}
}

// longest returns the largest shelf length among units.
func (e *Engine) longest(units []unit) float64 {
	l := 0.0
	for _, u := range units {
		_, fl := e.extent(u, u.w, u.l)
		l = math.Max(l, fl)
	}
	return l
}

// shelf is the row currently being filled.
type shelf struct {
	y, length, x float64
}

func (s shelf) fits(w, l, bound float64) bool {
	return s.x+w <= bound+model.Epsilon && l <= s.length+model.Epsilon
}

// orient picks how u goes on the shelf: unrotated when it fits, rotated
// when only that fits and rotation is allowed.
func (e *Engine) orient(cur shelf, u unit, bound float64) (w, l float64, rotated, ok bool) {
	if fw, fl := e.extent(u, u.w, u.l); cur.fits(fw, fl, bound) {
		return u.w, u.l, false, true
	}
	if e.Config.AllowRotation {
		if fw, fl := e.extent(u, u.l, u.w); cur.fits(fw, fl, bound) {
			return u.l, u.w, true, true
		}
	}
	return u.w, u.l, false, false
}

// Mixed packs heterogeneous items into shelves running along the width.
// Each shelf is as long as the longest unit still to place when it opens.
// Labelled units carry their label area with them when label areas are
// configured.
func (e *Engine) Mixed(items []model.Item) (model.Layout, error) {
	if len(items) == 0 {
		return model.Layout{}, errors.New(errors.ErrCodeInvalidInput, "no items to lay out")
	}
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return model.Layout{}, err
		}
	}
	if err := e.Config.Validate(); err != nil {
		return model.Layout{}, err
	}

	cfg := e.Config
	div := cfg.DividerThickness
	boundW, boundL := cfg.UsableBound()
	units := expandUnits(items, cfg.Clearance)

	cur := shelf{length: e.longest(units)}
	if cur.length > boundL+model.Epsilon {
		return model.Layout{}, errors.Infeasible(errors.ErrCodeLayoutInfeasible, "length", cur.length, boundL, "items exceed footprint")
	}

	slots := make([]model.Slot, 0, len(units))
	maxX, maxY, maxH := 0.0, 0.0, 0.0
	for i, u := range units {
		w, l, rotated, ok := e.orient(cur, u, boundW)
		if !ok {
			if cur.x > 0 {
				cur = shelf{y: cur.y + cur.length + div, length: e.longest(units[i:])}
				if cur.y+cur.length > boundL+model.Epsilon {
					return model.Layout{}, errors.Infeasible(errors.ErrCodeLayoutInfeasible, "length",
						cur.y+cur.length, boundL, "items exceed footprint")
				}
			}
			if w, l, rotated, ok = e.orient(cur, u, boundW); !ok {
				fw, _ := e.extent(u, u.w, u.l)
				return model.Layout{}, errors.Infeasible(errors.ErrCodeLayoutInfeasible, "width", fw, boundW, "items exceed footprint")
			}
		}

		fw, fl := e.extent(u, w, l)
		slots = append(slots, model.Slot{
			Index:     i,
			X:         cur.x,
			Y:         cur.y,
			Width:     w,
			Length:    l,
			Height:    u.h,
			ItemID:    u.itemID,
			Label:     u.label,
			Rotated:   rotated,
			LabelArea: e.labelArea(u, cur.x, cur.y, w, l),
		})
		maxX = math.Max(maxX, cur.x+fw)
		maxY = math.Max(maxY, cur.y+fl)
		maxH = math.Max(maxH, u.h)
		cur.x += fw + div
	}

	inset := cfg.CornerInset()
	for i := range slots {
		slots[i].X += inset
		slots[i].Y += inset
		if a := slots[i].LabelArea; a != nil {
			a.X += inset
			a.Y += inset
		}
	}

	iw, il := maxX+2*inset, maxY+2*inset
	if cfg.Footprint.IsFixed() {
		iw, il = cfg.InteriorBound()
	}

	return model.Layout{
		Mode:           model.LayoutMixed,
		Slots:          slots,
		InteriorWidth:  iw,
		InteriorLength: il,
		CavityHeight:   maxH,
		CaseHeight:     e.caseHeight(maxH),
	}, nil
}
