package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary values
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleHeader      = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
)

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, muted detail line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// mm formats a length for status output.
func mm(v float64) string {
	return StyleNumber.Render(fmt.Sprintf("%.2f", v)) + " mm"
}

// printCase prints the key dimensions of a generated case.
func printCase(w io.Writer, res caseResult) {
	m := res.Assembly.Metrics
	l := res.Layout

	fmt.Fprintln(w, StyleTitle.Render("Case"))
	printInfo(w, "Exterior %s x %s x %s", mm(m.ExteriorWidth), mm(m.ExteriorLength), mm(m.ExteriorHeight))
	printInfo(w, "Interior %s x %s, cavity %s", mm(m.InteriorWidth), mm(m.InteriorLength), mm(m.CavityHeight))
	if l.Cols > 0 {
		printInfo(w, "%s slots (%d x %d), %s", StyleNumber.Render(fmt.Sprint(len(l.Slots))), l.Cols, l.Rows, l.Mode)
	} else {
		printInfo(w, "%s slots, %s", StyleNumber.Render(fmt.Sprint(len(l.Slots))), l.Mode)
	}
	printDetail(w, "utilization %.1f%%", l.Utilization())
	if m.OuterRadius > 0 {
		printDetail(w, "corner radius %.2f mm outside, %.2f mm inside", m.OuterRadius, m.InnerRadius)
	}
	if m.Stackable {
		printDetail(w, "stacking lip %.2f mm high, opening %.2f x %.2f mm", m.LipHeight, m.LipOpening.Width, m.LipOpening.Length)
	}
}
