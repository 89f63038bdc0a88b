package engine

import (
	"math"

	"github.com/piwi3910/casemk/internal/errors"
	"github.com/piwi3910/casemk/internal/model"
)

// cell is an effective slot footprint in one orientation.
type cell struct {
	w, l    float64
	rotated bool
}

// orientations returns the cell orientations the engine may try, the
// unrotated one first.
func (e *Engine) orientations(eff model.Dimension) []cell {
	cells := []cell{{w: eff.Width, l: eff.Length}}
	if e.Config.AllowRotation && math.Abs(eff.Width-eff.Length) > model.Epsilon {
		cells = append(cells, cell{w: eff.Length, l: eff.Width, rotated: true})
	}
	return cells
}

// fitCount returns how many cells of size span fit across a usable interior
// span: floor((usable + divider) / (span + divider)), never negative. With
// sharp corners usable is the exterior bound minus both walls.
func fitCount(usable, divider, span float64) int {
	n := math.Floor((usable+divider)/(span+divider) + 1e-9)
	if n < 0 {
		return 0
	}
	return int(n)
}

// gridSpan returns the length of n cells separated by dividers.
func gridSpan(n int, span, divider float64) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n)*span + float64(n-1)*divider
}

func (e *Engine) grid(d model.Dimension, count int, itemID, label string) (model.Layout, error) {
	if err := d.Validate(); err != nil {
		return model.Layout{}, err
	}
	if count < 0 {
		return model.Layout{}, errors.New(errors.ErrCodeInvalidInput, "count must not be negative, got %d", count)
	}
	if err := e.Config.Validate(); err != nil {
		return model.Layout{}, err
	}

	eff := d.Grow(e.Config.Clearance)
	g := gridRequest{eff: eff, count: count, itemID: itemID, label: label}
	switch {
	case e.Config.Footprint.IsFixed():
		return e.fixedGrid(g)
	case count == 0:
		return e.autoFit(g)
	default:
		return e.exactCount(g)
	}
}

type gridRequest struct {
	eff           model.Dimension
	count         int
	itemID, label string
}

// bestFill picks the orientation giving the most cells; a rotated
// orientation must be strictly better to win.
func (e *Engine) bestFill(eff model.Dimension) (c cell, cols, rows int) {
	uw, ul := e.Config.UsableBound()
	div := e.Config.DividerThickness
	for i, o := range e.orientations(eff) {
		oc := fitCount(uw, div, o.w)
		or := fitCount(ul, div, o.l)
		if i == 0 || oc*or > cols*rows {
			c, cols, rows = o, oc, or
		}
	}
	return c, cols, rows
}

// noFit builds the "item does not fit" error for the first blocked axis.
func (e *Engine) noFit(c cell, cols int) error {
	w, l := e.Config.UsableBound()
	if cols == 0 {
		return errors.Infeasible(errors.ErrCodeLayoutInfeasible, "width", c.w, w, "item does not fit")
	}
	return errors.Infeasible(errors.ErrCodeLayoutInfeasible, "length", c.l, l, "item does not fit")
}

func (e *Engine) autoFit(g gridRequest) (model.Layout, error) {
	c, cols, rows := e.bestFill(g.eff)
	if cols == 0 || rows == 0 {
		return model.Layout{}, e.noFit(c, cols)
	}

	iw, il := e.Config.InteriorBound()
	return e.place(model.LayoutAutoFit, g, c, cols, rows, cols*rows, iw, il), nil
}

func (e *Engine) fixedGrid(g gridRequest) (model.Layout, error) {
	c, cols, rows := e.bestFill(g.eff)
	if cols == 0 || rows == 0 {
		return model.Layout{}, e.noFit(c, cols)
	}

	n := cols * rows
	if g.count > 0 {
		if n < g.count {
			return model.Layout{}, errors.Infeasible(errors.ErrCodeLayoutInfeasible, "count",
				float64(g.count), float64(n), "requested count does not fit in fixed case size")
		}
		n = g.count
	}
	usedCols := min(cols, n)
	usedRows := (n + cols - 1) / cols

	iw, il := e.Config.InteriorBound()
	return e.place(model.LayoutFixed, g, c, usedCols, usedRows, n, iw, il), nil
}

// candidate is a cols x rows factorization for an exact count.
type candidate struct {
	c            cell
	cols, rows   int
	width, lngth float64
}

func (k candidate) area() float64 { return k.width * k.lngth }

// better orders candidates: smaller area, then aspect ratio closer to the
// bound's, then fewer rows.
func (k candidate) better(o candidate, aspect float64) bool {
	if d := k.area() - o.area(); math.Abs(d) > model.Epsilon {
		return d < 0
	}
	ka := math.Abs(k.width/k.lngth - aspect)
	oa := math.Abs(o.width/o.lngth - aspect)
	if math.Abs(ka-oa) > 1e-12 {
		return ka < oa
	}
	return k.rows < o.rows
}

func (e *Engine) exactCount(g gridRequest) (model.Layout, error) {
	fp := e.Config.Footprint
	uw, ul := e.Config.UsableBound()
	div := e.Config.DividerThickness
	aspect := fp.Width / fp.Length

	var plain, rotated *candidate
	for _, o := range e.orientations(g.eff) {
		var pick *candidate
		for cols := 1; cols <= g.count; cols++ {
			rows := (g.count + cols - 1) / cols
			k := candidate{c: o, cols: cols, rows: rows, width: gridSpan(cols, o.w, div), lngth: gridSpan(rows, o.l, div)}
			if k.width > uw+model.Epsilon || k.lngth > ul+model.Epsilon {
				continue
			}
			if pick == nil || k.better(*pick, aspect) {
				pick = &k
			}
		}
		if o.rotated {
			rotated = pick
		} else {
			plain = pick
		}
	}

	chosen := plain
	if rotated != nil && (plain == nil || rotated.area() < plain.area()-model.Epsilon) {
		chosen = rotated
	}
	if chosen == nil {
		c, cols, rows := e.bestFill(g.eff)
		if cols == 0 || rows == 0 {
			return model.Layout{}, e.noFit(c, cols)
		}
		return model.Layout{}, errors.Infeasible(errors.ErrCodeLayoutInfeasible, "count",
			float64(g.count), float64(cols*rows), "cannot fit requested count")
	}

	in := 2 * e.Config.CornerInset()
	return e.place(model.LayoutExactCount, g, chosen.c, chosen.cols, chosen.rows, g.count, chosen.width+in, chosen.lngth+in), nil
}

// place emits n slots row-major on a cols x rows grid centred in the
// interior footprint iw x il. Callers size iw x il so the grid clears the
// corner inset.
func (e *Engine) place(mode model.LayoutMode, g gridRequest, c cell, cols, rows, n int, iw, il float64) model.Layout {
	div := e.Config.DividerThickness
	offX := (iw - gridSpan(cols, c.w, div)) / 2
	offY := (il - gridSpan(rows, c.l, div)) / 2

	slots := make([]model.Slot, 0, n)
	for i := 0; i < n; i++ {
		r, col := i/cols, i%cols
		slots = append(slots, model.Slot{
			Index:   i,
			X:       offX + float64(col)*(c.w+div),
			Y:       offY + float64(r)*(c.l+div),
			Width:   c.w,
			Length:  c.l,
			Height:  g.eff.Height,
			ItemID:  g.itemID,
			Label:   g.label,
			Rotated: c.rotated,
		})
	}

	return model.Layout{
		Mode:           mode,
		Slots:          slots,
		InteriorWidth:  iw,
		InteriorLength: il,
		CavityHeight:   g.eff.Height,
		CaseHeight:     e.caseHeight(g.eff.Height),
		Cols:           cols,
		Rows:           rows,
	}
}
