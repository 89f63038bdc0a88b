package scad

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/casemk/internal/engine"
	"github.com/piwi3910/casemk/internal/errors"
	"github.com/piwi3910/casemk/internal/geometry"
	"github.com/piwi3910/casemk/internal/model"
)

func testAssembly(t *testing.T, cfg model.Config) *geometry.Assembly {
	t.Helper()
	it := model.NewItem("SD", model.Dimension{Width: 30, Length: 20, Height: 15}, 6)
	layout, err := engine.New(cfg).GridItem(it, false)
	require.NoError(t, err)
	a, err := geometry.Assemble(layout, cfg)
	require.NoError(t, err)
	return a
}

func TestRender_Plain(t *testing.T) {
	src, err := Render(testAssembly(t, model.DefaultConfig()))
	require.NoError(t, err)

	assert.Contains(t, src, "// Exterior: 200.5 x 25.5 x 18.5 mm")
	assert.Contains(t, src, "// Slots: 6")
	assert.Contains(t, src, "$fn = 64;")
	assert.Contains(t, src, "union() {")
	assert.Contains(t, src, "cube([200.5, 25.5, 2]);")
	assert.Contains(t, src, "// walls")
	assert.Contains(t, src, "// dividers")
	assert.Equal(t, 6, strings.Count(src, "// SD\n"))
	assert.NotContains(t, src, "cylinder(")
	assert.Equal(t, strings.Count(src, "{"), strings.Count(src, "}"))
}

func TestRender_RoundedStackable(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.CornerRadius = 5
	cfg.Stackable = true
	src, err := Render(testAssembly(t, cfg))
	require.NoError(t, err)

	assert.Contains(t, src, "cylinder(h = 2, r = 5);")
	assert.Contains(t, src, "// Stackable: lip 1 mm")
	assert.Contains(t, src, "// lip")
	assert.Contains(t, src, "// recess")
	assert.Contains(t, src, "translate([-0.01, -0.01, -0.01])")
}

func TestGenerator_Segments(t *testing.T) {
	g := New()
	g.Segments = 128
	src, err := g.Render(testAssembly(t, model.DefaultConfig()))
	require.NoError(t, err)
	assert.Contains(t, src, "$fn = 128;")
}

func TestFormat(t *testing.T) {
	g := New()
	assert.Equal(t, "2", g.format(2))
	assert.Equal(t, "31.5", g.format(31.5))
	assert.Equal(t, "0.0123", g.format(0.01234))
	assert.Equal(t, "0", g.format(-0.00001))
	assert.Equal(t, "-4.25", g.format(-4.25))
}

func TestEmitAndSave(t *testing.T) {
	a := testAssembly(t, model.DefaultConfig())

	var buf bytes.Buffer
	require.NoError(t, Emit(&buf, a))

	path := filepath.Join(t.TempDir(), "case.scad")
	require.NoError(t, New().Save(path, a))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, buf.String(), string(data))
}

func TestSave_BadPath(t *testing.T) {
	a := testAssembly(t, model.DefaultConfig())
	err := New().Save(filepath.Join(t.TempDir(), "missing", "case.scad"), a)
	assert.True(t, errors.Is(err, errors.ErrCodeIO))
}

func TestRender_InvalidTree(t *testing.T) {
	_, err := Render(&geometry.Assembly{Root: &geometry.Box{}})
	assert.True(t, errors.Is(err, errors.ErrCodeGeometryInfeasible))
}
