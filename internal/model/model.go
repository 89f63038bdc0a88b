package model

import (
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/piwi3910/casemk/internal/errors"
)

// Epsilon is the tolerance used when comparing millimetre spans.
const Epsilon = 1e-6

// Dimension is the size of an item in mm.
type Dimension struct {
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
	Height float64 `json:"height"`
}

// Validate checks that every axis is a finite positive number.
func (d Dimension) Validate() error {
	for _, ax := range []struct {
		name string
		v    float64
	}{{"width", d.Width}, {"length", d.Length}, {"height", d.Height}} {
		if math.IsNaN(ax.v) || math.IsInf(ax.v, 0) || ax.v <= 0 {
			return errors.New(errors.ErrCodeInvalidDimension, "%s must be a positive number, got %g", ax.name, ax.v)
		}
	}
	return nil
}

// Grow returns the dimension enlarged by c on every axis.
func (d Dimension) Grow(c float64) Dimension {
	return Dimension{Width: d.Width + c, Length: d.Length + c, Height: d.Height + c}
}

// String formats the dimension the way it is written on the command line.
func (d Dimension) String() string {
	return fmtMM(d.Width) + "x" + fmtMM(d.Length) + "x" + fmtMM(d.Height)
}

func fmtMM(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Item is one kind of object to store together with how many of it.
type Item struct {
	ID    string    `json:"id"`
	Label string    `json:"label,omitempty"`
	Size  Dimension `json:"size"`
	Count int       `json:"count"`
}

func NewItem(label string, size Dimension, count int) Item {
	return Item{
		ID:    uuid.New().String()[:8],
		Label: label,
		Size:  size,
		Count: count,
	}
}

// Validate checks the size and the requested count.
func (it Item) Validate() error {
	if err := it.Size.Validate(); err != nil {
		return err
	}
	if it.Count < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "item %s: count must be at least 1, got %d", it.Size, it.Count)
	}
	return nil
}

// Area is a rectangle on the interior plane.
type Area struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
}

func (a Area) MaxX() float64 { return a.X + a.Width }
func (a Area) MaxY() float64 { return a.Y + a.Length }

// Slot is a single storage cavity positioned from the interior origin.
// Width, Length and Height are the effective size (item plus clearance).
type Slot struct {
	Index   int     `json:"index"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Length  float64 `json:"length"`
	Height  float64 `json:"height"`
	ItemID  string  `json:"item_id,omitempty"`
	Label   string  `json:"label,omitempty"`
	Rotated bool    `json:"rotated,omitempty"`
	// LabelArea is the solid area reserved for the slot's label, if any.
	LabelArea *Area `json:"label_area,omitempty"`
}

// Bounds returns the slot footprint.
func (s Slot) Bounds() Area { return Area{X: s.X, Y: s.Y, Width: s.Width, Length: s.Length} }

func (s Slot) MaxX() float64 { return s.X + s.Width }
func (s Slot) MaxY() float64 { return s.Y + s.Length }
func (s Slot) Area() float64 { return s.Width * s.Length }

// Gap returns the clear distance between two slots, or a negative value
// when their footprints overlap.
func (s Slot) Gap(o Slot) float64 {
	return s.Bounds().Gap(o.Bounds())
}

// Gap returns the clear distance between two areas, or a negative value
// when they overlap.
func (a Area) Gap(o Area) float64 {
	dx := math.Max(o.X-a.MaxX(), a.X-o.MaxX())
	dy := math.Max(o.Y-a.MaxY(), a.Y-o.MaxY())
	return math.Max(dx, dy)
}

// LayoutMode records which placement strategy produced a layout.
type LayoutMode string

const (
	LayoutAutoFit    LayoutMode = "auto-fit"
	LayoutExactCount LayoutMode = "exact-count"
	LayoutFixed      LayoutMode = "fixed"
	LayoutMixed      LayoutMode = "mixed"
)

// Layout is the result of the layout engine. A Layout is never modified
// after it is returned; consumers must treat Slots as read-only.
type Layout struct {
	Mode           LayoutMode `json:"mode"`
	Slots          []Slot     `json:"slots"`
	InteriorWidth  float64    `json:"interior_width"`
	InteriorLength float64    `json:"interior_length"`
	CavityHeight   float64    `json:"cavity_height"`
	CaseHeight     float64    `json:"case_height"`
	Cols           int        `json:"cols,omitempty"`
	Rows           int        `json:"rows,omitempty"`
}

// InteriorArea returns the interior footprint area in mm².
func (l Layout) InteriorArea() float64 {
	return l.InteriorWidth * l.InteriorLength
}

// UsedArea returns the sum of all slot footprints in mm².
func (l Layout) UsedArea() float64 {
	total := 0.0
	for _, s := range l.Slots {
		total += s.Area()
	}
	return total
}

// Utilization returns the percentage of the interior covered by slots.
func (l Layout) Utilization() float64 {
	area := l.InteriorArea()
	if area <= 0 {
		return 0
	}
	return l.UsedArea() / area * 100.0
}

// Contains reports whether the slot, and its label area if any, lie inside
// the interior footprint.
func (l Layout) Contains(s Slot) bool {
	if s.LabelArea != nil && !l.ContainsArea(*s.LabelArea) {
		return false
	}
	return l.ContainsArea(s.Bounds())
}

// ContainsArea reports whether a lies inside the interior footprint.
func (l Layout) ContainsArea(a Area) bool {
	return a.X >= -Epsilon && a.Y >= -Epsilon &&
		a.MaxX() <= l.InteriorWidth+Epsilon && a.MaxY() <= l.InteriorLength+Epsilon
}

// MinSlotSpan returns the smallest slot width or length, or 0 without slots.
func (l Layout) MinSlotSpan() float64 {
	if len(l.Slots) == 0 {
		return 0
	}
	span := math.Inf(1)
	for _, s := range l.Slots {
		span = math.Min(span, math.Min(s.Width, s.Length))
	}
	return span
}

// Describe returns a one-line human readable summary.
func (l Layout) Describe() string {
	return fmt.Sprintf("%s: %d slots, interior %.2f x %.2f mm, cavity %.2f mm, case height %.2f mm",
		l.Mode, len(l.Slots), l.InteriorWidth, l.InteriorLength, l.CavityHeight, l.CaseHeight)
}
