package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/casemk/internal/errors"
	"github.com/piwi3910/casemk/internal/geometry"
	"github.com/piwi3910/casemk/internal/model"
)

// slotColor represents an RGB color for a slot.
type slotColor struct {
	R, G, B int
}

// slotColors is cycled per item so every item keeps one color.
var slotColors = []slotColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	sidebarWidth = 70.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	summaryQR    = 45.0
)

// ExportPDF writes a plan sheet of the case: a scaled top view with every
// slot, the case statistics, the configuration and a QR code carrying the
// JSON summary.
func ExportPDF(path string, layout model.Layout, a *geometry.Assembly, cfg model.Config) error {
	if len(layout.Slots) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no slots to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.AddPage()

	summary := NewSummary(layout, a)
	renderPlanPage(pdf, layout, a.Metrics, summary)
	if err := renderSidebar(pdf, summary, cfg); err != nil {
		return err
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return nil
}

// renderPlanPage draws the top view on the current PDF page.
func renderPlanPage(pdf *fpdf.Fpdf, layout model.Layout, m geometry.Metrics, summary Summary) {
	// Title
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Storage case %.1f x %.1f x %.1f mm", m.ExteriorWidth, m.ExteriorLength, m.ExteriorHeight)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	// Stats line
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Layout: %s | Slots: %d | Interior: %.1f x %.1f mm | Cavity depth: %.1f mm | Utilization: %.1f%%",
		layout.Mode, len(layout.Slots), m.InteriorWidth, m.InteriorLength, m.CavityHeight, summary.Utilization)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight - sidebarWidth
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	scale := math.Min(drawWidth/m.ExteriorWidth, drawHeight/m.ExteriorLength)
	canvasW := m.ExteriorWidth * scale
	canvasH := m.ExteriorLength * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Case body
	pdf.SetFillColor(220, 220, 220)
	pdf.SetDrawColor(60, 60, 60)
	pdf.SetLineWidth(0.5)
	outline(pdf, offsetX, offsetY, canvasW, canvasH, m.OuterRadius*scale)

	// Cavity
	ix := offsetX + m.InteriorOrigin.X*scale
	iy := offsetY + m.InteriorOrigin.Y*scale
	pdf.SetFillColor(190, 190, 190)
	pdf.SetLineWidth(0.3)
	outline(pdf, ix, iy, m.InteriorWidth*scale, m.InteriorLength*scale, m.InnerRadius*scale)

	colors := itemColors(layout.Slots)
	for _, s := range layout.Slots {
		col := colors[itemKey(s)]
		sw := s.Width * scale
		sl := s.Length * scale
		sx := ix + s.X*scale
		sy := iy + s.Y*scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.2)
		pdf.Rect(sx, sy, sw, sl, "FD")

		if a := s.LabelArea; a != nil {
			pdf.SetFillColor(245, 245, 245)
			pdf.SetDashPattern([]float64{0.8, 0.6}, 0)
			pdf.Rect(ix+a.X*scale, iy+a.Y*scale, a.Width*scale, a.Length*scale, "FD")
			pdf.SetDashPattern([]float64{}, 0)
		}

		// Slot label (only if rectangle is large enough)
		if s.Label != "" && sw > 10 && sl > 5 {
			pdf.SetFont("Helvetica", "", labelFontSize(sw, sl))
			pdf.SetTextColor(0, 0, 0)
			labelW := pdf.GetStringWidth(s.Label)
			if labelW < sw-1 {
				pdf.SetXY(sx+(sw-labelW)/2, sy+sl/2-2)
				pdf.CellFormat(labelW, 4, s.Label, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, m, offsetX, offsetY, canvasW, canvasH)
	drawItemsLegend(pdf, summary, colors, layout.Slots, offsetY+canvasH+8)
}

// outline draws a filled rectangle, rounded when r > 0.
func outline(pdf *fpdf.Fpdf, x, y, w, h, r float64) {
	if r > 0 {
		pdf.RoundedRect(x, y, w, h, r, "1234", "FD")
		return
	}
	pdf.Rect(x, y, w, h, "FD")
}

// renderSidebar draws the configuration and the QR summary right of the plan.
func renderSidebar(pdf *fpdf.Fpdf, summary Summary, cfg model.Config) error {
	x := pageWidth - marginRight - sidebarWidth + 5
	y := drawAreaTop

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(x, y)
	pdf.CellFormat(sidebarWidth-5, 6, "Settings", "", 0, "L", false, 0, "")
	y += 8

	type row struct{ label, value string }
	items := []row{
		{"Footprint", cfg.Footprint.String()},
		{"Clearance", fmt.Sprintf("%.2f mm", cfg.Clearance)},
		{"Wall", fmt.Sprintf("%.2f mm", cfg.WallThickness)},
		{"Divider", fmt.Sprintf("%.2f mm", cfg.DividerThickness)},
		{"Base", fmt.Sprintf("%.2f mm", cfg.BaseHeight)},
		{"Corner radius", fmt.Sprintf("%.2f mm", cfg.CornerRadius)},
		{"Stackable", fmt.Sprintf("%t", cfg.Stackable)},
	}
	if cfg.Stackable {
		items = append(items,
			row{"Lip", fmt.Sprintf("%.2f x %.2f mm", cfg.StackLipExtent, cfg.LipHeight())},
			row{"Stack clearance", fmt.Sprintf("%.2f mm", cfg.StackClearance)},
		)
	}

	pdf.SetFont("Helvetica", "", 8)
	for _, item := range items {
		pdf.SetXY(x, y)
		pdf.CellFormat(28, 4.5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(sidebarWidth-33, 4.5, item.value, "", 0, "L", false, 0, "")
		y += 4.5
	}

	qrData, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal case summary: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Low, 512)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}
	pdf.RegisterImageOptionsReader("qr_summary", fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr_summary", x, y+4, summaryQR, summaryQR, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	// Footer
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by casemk", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}

// drawDimensionAnnotations adds width and length labels outside the case outline.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, m geometry.Metrics, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.1f mm", m.ExteriorWidth)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	lengthLabel := fmt.Sprintf("%.1f mm", m.ExteriorLength)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	lLabelW := pdf.GetStringWidth(lengthLabel)
	pdf.SetXY(offsetX-3-lLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(lLabelW, 4, lengthLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawItemsLegend renders one swatch per item below the plan.
func drawItemsLegend(pdf *fpdf.Fpdf, summary Summary, colors map[string]slotColor, slots []model.Slot, startY float64) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(20, 4, "Items:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 22
	maxX := pageWidth - marginRight - sidebarWidth

	keys := legendKeys(slots)
	for i, it := range summary.Items {
		col := colors[keys[i]]
		name := it.Label
		if name == "" {
			name = "item"
		}
		label := fmt.Sprintf("%s %.1fx%.1fx%.1f (x%d)", name, it.Width, it.Length, it.Height, it.Slots)
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")
		xPos += labelW + 2
	}
}

// itemKey identifies the item a slot belongs to.
func itemKey(s model.Slot) string {
	if s.ItemID != "" {
		return s.ItemID
	}
	w, l := s.Width, s.Length
	if s.Rotated {
		w, l = l, w
	}
	return fmt.Sprintf("%s/%gx%gx%g", s.Label, w, l, s.Height)
}

// legendKeys returns the distinct item keys in order of first appearance,
// matching the order of Summary.Items.
func legendKeys(slots []model.Slot) []string {
	var keys []string
	seen := map[string]bool{}
	for _, s := range slots {
		k := itemKey(s)
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

// itemColors assigns a color to every item in order of first appearance.
func itemColors(slots []model.Slot) map[string]slotColor {
	colors := map[string]slotColor{}
	for i, k := range legendKeys(slots) {
		colors[k] = slotColors[i%len(slotColors)]
	}
	return colors
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
