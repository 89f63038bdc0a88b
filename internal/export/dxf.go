package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/casemk/internal/errors"
	"github.com/piwi3910/casemk/internal/geometry"
	"github.com/piwi3910/casemk/internal/model"
)

// DXF layer names.
const (
	LayerExterior = "EXTERIOR"
	LayerCavity   = "CAVITY"
	LayerSlots    = "SLOTS"
	LayerLabels   = "LABELS"
	LayerLip      = "LIP"
)

// labelTextHeight is the text height of slot labels in mm.
const labelTextHeight = 2.5

// ExportDXF writes a 1:1 plan of the case: exterior and cavity outlines,
// every slot rectangle, slot labels (inside their label areas when the
// layout reserves them) and, for stackable cases, the lip opening. Coordinates are in mm with the exterior corner at the origin.
func ExportDXF(path string, layout model.Layout, a *geometry.Assembly) error {
	if len(layout.Slots) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no slots to export")
	}
	m := a.Metrics

	d := dxf.NewDrawing()
	w := &dxfWriter{d: d}

	w.layer(LayerExterior)
	w.roundedRect(0, 0, m.ExteriorWidth, m.ExteriorLength, m.OuterRadius)

	w.layer(LayerCavity)
	o := m.InteriorOrigin
	w.roundedRect(o.X, o.Y, m.InteriorWidth, m.InteriorLength, m.InnerRadius)

	w.layer(LayerSlots)
	for _, s := range layout.Slots {
		w.roundedRect(o.X+s.X, o.Y+s.Y, s.Width, s.Length, 0)
	}

	w.layer(LayerLabels)
	for _, s := range layout.Slots {
		if s.Label == "" {
			continue
		}
		if a := s.LabelArea; a != nil {
			w.roundedRect(o.X+a.X, o.Y+a.Y, a.Width, a.Length, 0)
			w.text(s.Label, o.X+a.X+0.5, o.Y+a.Y+0.5)
			continue
		}
		w.text(s.Label, o.X+s.X+0.5, o.Y+s.Y+0.5)
	}

	if m.Stackable {
		w.layer(LayerLip)
		lip := m.LipOpening
		r := m.OuterRadius - lip.X
		if r < 0 {
			r = 0
		}
		w.roundedRect(lip.X, lip.Y, lip.Width, lip.Length, r)
	}

	if w.err != nil {
		return fmt.Errorf("failed to build DXF: %w", w.err)
	}
	if err := d.SaveAs(path); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return nil
}

// dxfWriter keeps the first drawing error so callers can chain entities.
type dxfWriter struct {
	d   *drawing.Drawing
	err error
}

func (w *dxfWriter) layer(name string) {
	if w.err != nil {
		return
	}
	_, w.err = w.d.AddLayer(name, dxf.DefaultColor, dxf.DefaultLineType, true)
}

func (w *dxfWriter) line(x1, y1, x2, y2 float64) {
	if w.err != nil {
		return
	}
	_, w.err = w.d.Line(x1, y1, 0, x2, y2, 0)
}

func (w *dxfWriter) arc(cx, cy, r, start, end float64) {
	if w.err != nil {
		return
	}
	_, w.err = w.d.Arc(cx, cy, 0, r, start, end)
}

func (w *dxfWriter) text(s string, x, y float64) {
	if w.err != nil {
		return
	}
	_, w.err = w.d.Text(s, x, y, 0, labelTextHeight)
}

// roundedRect draws a rectangle outline with corners rounded by r using
// lines and quarter arcs.
func (w *dxfWriter) roundedRect(x, y, width, length, r float64) {
	r = min(r, width/2, length/2)
	if r <= model.Epsilon {
		w.line(x, y, x+width, y)
		w.line(x+width, y, x+width, y+length)
		w.line(x+width, y+length, x, y+length)
		w.line(x, y+length, x, y)
		return
	}

	w.line(x+r, y, x+width-r, y)
	w.line(x+width, y+r, x+width, y+length-r)
	w.line(x+width-r, y+length, x+r, y+length)
	w.line(x, y+length-r, x, y+r)

	w.arc(x+r, y+r, r, 180, 270)
	w.arc(x+width-r, y+r, r, 270, 360)
	w.arc(x+width-r, y+length-r, r, 0, 90)
	w.arc(x+r, y+length-r, r, 90, 180)
}
