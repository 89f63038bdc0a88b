// Package scad writes an assembled case as an OpenSCAD script.
package scad

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/casemk/internal/errors"
	"github.com/piwi3910/casemk/internal/geometry"
)

// Generator produces OpenSCAD source from an assembly.
type Generator struct {
	// Segments is the $fn used for cylinders.
	Segments int
	// DecimalPlaces limits the printed precision of every number.
	DecimalPlaces int
}

func New() *Generator {
	return &Generator{Segments: 64, DecimalPlaces: 4}
}

// Render returns the script for a as a string.
func (g *Generator) Render(a *geometry.Assembly) (string, error) {
	if err := geometry.Validate(a.Root); err != nil {
		return "", err
	}

	var b strings.Builder
	g.writeHeader(&b, a)
	g.writeNode(&b, a.Root, 0)
	return b.String(), nil
}

// Emit writes the script for a to w.
func (g *Generator) Emit(w io.Writer, a *geometry.Assembly) error {
	src, err := g.Render(a)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, src); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write scad")
	}
	return nil
}

// Save writes the script to path.
func (g *Generator) Save(path string, a *geometry.Assembly) error {
	src, err := g.Render(a)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return nil
}

// Render is New().Render(a).
func Render(a *geometry.Assembly) (string, error) {
	return New().Render(a)
}

// Emit is New().Emit(w, a).
func Emit(w io.Writer, a *geometry.Assembly) error {
	return New().Emit(w, a)
}

func (g *Generator) writeHeader(b *strings.Builder, a *geometry.Assembly) {
	m := a.Metrics
	fmt.Fprintf(b, "// casemk storage case\n")
	fmt.Fprintf(b, "// Exterior: %s x %s x %s mm\n", g.format(m.ExteriorWidth), g.format(m.ExteriorLength), g.format(m.ExteriorHeight))
	fmt.Fprintf(b, "// Interior: %s x %s mm, cavity depth %s mm\n", g.format(m.InteriorWidth), g.format(m.InteriorLength), g.format(m.CavityHeight))
	fmt.Fprintf(b, "// Slots: %d\n", m.SlotCount)
	if m.Stackable {
		fmt.Fprintf(b, "// Stackable: lip %s mm, recess foot %s x %s mm\n", g.format(m.LipHeight), g.format(m.Recess.Width), g.format(m.Recess.Length))
	}
	b.WriteString("\n")
	fmt.Fprintf(b, "$fn = %d;\n\n", g.Segments)
}

func (g *Generator) writeNode(b *strings.Builder, n geometry.Node, depth int) {
	indent := strings.Repeat("    ", depth)
	if name := geometry.NameOf(n); name != "" {
		fmt.Fprintf(b, "%s// %s\n", indent, strings.ReplaceAll(name, "\n", " "))
	}

	switch v := n.(type) {
	case *geometry.Box:
		fmt.Fprintf(b, "%scube([%s, %s, %s]);\n", indent, g.format(v.Size.X), g.format(v.Size.Y), g.format(v.Size.Z))
	case *geometry.Cylinder:
		fmt.Fprintf(b, "%scylinder(h = %s, r = %s);\n", indent, g.format(v.Height), g.format(v.Radius))
	case *geometry.Translate:
		fmt.Fprintf(b, "%stranslate([%s, %s, %s])\n", indent, g.format(v.Offset.X), g.format(v.Offset.Y), g.format(v.Offset.Z))
		g.writeNode(b, v.Child, depth+1)
	case *geometry.Union:
		fmt.Fprintf(b, "%sunion() {\n", indent)
		for _, c := range v.Children {
			g.writeNode(b, c, depth+1)
		}
		fmt.Fprintf(b, "%s}\n", indent)
	case *geometry.Difference:
		fmt.Fprintf(b, "%sdifference() {\n", indent)
		g.writeNode(b, v.Base, depth+1)
		for _, c := range v.Cutters {
			g.writeNode(b, c, depth+1)
		}
		fmt.Fprintf(b, "%s}\n", indent)
	}
}

// format prints v with at most DecimalPlaces decimals and no trailing zeros.
func (g *Generator) format(v float64) string {
	s := strconv.FormatFloat(v, 'f', g.DecimalPlaces, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}
