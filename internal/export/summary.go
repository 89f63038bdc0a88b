// Package export writes assembled cases to document and drawing formats:
// a JSON summary, a PDF plan sheet, QR-coded slot labels and a DXF plan.
package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/piwi3910/casemk/internal/errors"
	"github.com/piwi3910/casemk/internal/geometry"
	"github.com/piwi3910/casemk/internal/model"
)

// ItemSummary counts the slots holding one item.
type ItemSummary struct {
	ItemID string  `json:"item_id,omitempty"`
	Label  string  `json:"label,omitempty"`
	Width  float64 `json:"width_mm"`
	Length float64 `json:"length_mm"`
	Height float64 `json:"height_mm"`
	Slots  int     `json:"slots"`
}

// Summary describes a generated case.
type Summary struct {
	Mode           model.LayoutMode `json:"mode"`
	ExteriorWidth  float64          `json:"exterior_width_mm"`
	ExteriorLength float64          `json:"exterior_length_mm"`
	ExteriorHeight float64          `json:"exterior_height_mm"`
	InteriorWidth  float64          `json:"interior_width_mm"`
	InteriorLength float64          `json:"interior_length_mm"`
	CavityHeight   float64          `json:"cavity_height_mm"`
	Slots          int              `json:"slots"`
	Cols           int              `json:"cols,omitempty"`
	Rows           int              `json:"rows,omitempty"`
	Utilization    float64          `json:"utilization_pct"`
	CornerRadius   float64          `json:"corner_radius_mm,omitempty"`
	Stackable      bool             `json:"stackable"`
	LipHeight      float64          `json:"lip_height_mm,omitempty"`
	Items          []ItemSummary    `json:"items"`
}

// NewSummary collects the summary of an assembled case. Items are listed in
// order of first appearance in the layout.
func NewSummary(layout model.Layout, a *geometry.Assembly) Summary {
	m := a.Metrics
	return Summary{
		Mode:           layout.Mode,
		ExteriorWidth:  m.ExteriorWidth,
		ExteriorLength: m.ExteriorLength,
		ExteriorHeight: m.ExteriorHeight,
		InteriorWidth:  m.InteriorWidth,
		InteriorLength: m.InteriorLength,
		CavityHeight:   m.CavityHeight,
		Slots:          len(layout.Slots),
		Cols:           layout.Cols,
		Rows:           layout.Rows,
		Utilization:    layout.Utilization(),
		CornerRadius:   m.OuterRadius,
		Stackable:      m.Stackable,
		LipHeight:      m.LipHeight,
		Items:          groupSlots(layout.Slots),
	}
}

// groupSlots counts slots per item. Slots without an item ID are grouped by
// label and size.
func groupSlots(slots []model.Slot) []ItemSummary {
	var items []ItemSummary
	index := map[string]int{}
	for _, s := range slots {
		w, l := s.Width, s.Length
		if s.Rotated {
			w, l = l, w
		}
		key := itemKey(s)
		if i, ok := index[key]; ok {
			items[i].Slots++
			continue
		}
		index[key] = len(items)
		items = append(items, ItemSummary{ItemID: s.ItemID, Label: s.Label, Width: w, Length: l, Height: s.Height, Slots: 1})
	}
	return items
}

// SaveJSON writes v as indented JSON to path.
func SaveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return nil
}
