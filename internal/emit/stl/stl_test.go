package stl

import (
	"os"
	"path/filepath"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/casemk/internal/engine"
	"github.com/piwi3910/casemk/internal/errors"
	"github.com/piwi3910/casemk/internal/geometry"
	"github.com/piwi3910/casemk/internal/model"
)

func testAssembly(t *testing.T, cfg model.Config) *geometry.Assembly {
	t.Helper()
	layout, err := engine.New(cfg).Grid(model.Dimension{Width: 30, Length: 20, Height: 15}, 4)
	require.NoError(t, err)
	a, err := geometry.Assemble(layout, cfg)
	require.NoError(t, err)
	return a
}

func TestBuild_BoundingBox(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Stackable = true
	a := testAssembly(t, cfg)

	s, err := Build(a)
	require.NoError(t, err)

	bb := s.BoundingBox()
	assert.InDelta(t, 0, bb.Min.X, 1e-6)
	assert.InDelta(t, 0, bb.Min.Z, 1e-6)
	assert.InDelta(t, a.Metrics.ExteriorWidth, bb.Max.X, 1e-6)
	assert.InDelta(t, a.Metrics.ExteriorLength, bb.Max.Y, 1e-6)
	assert.InDelta(t, a.Metrics.ExteriorHeight, bb.Max.Z, 1e-6)
}

func TestBuild_SolidAndCavities(t *testing.T) {
	cfg := model.DefaultConfig()
	a := testAssembly(t, cfg)
	s, err := Build(a)
	require.NoError(t, err)

	m := a.Metrics
	o := m.InteriorOrigin

	// Inside the left wall.
	assert.Less(t, s.Evaluate(v3.Vec{X: m.WallThickness / 2, Y: m.ExteriorLength / 2, Z: o.Z + 5}), 0.0)
	// Inside the floor.
	assert.Less(t, s.Evaluate(v3.Vec{X: m.ExteriorWidth / 2, Y: m.ExteriorLength / 2, Z: cfg.BaseHeight / 2}), 0.0)
	// Centre of the first slot cavity is empty.
	assert.Greater(t, s.Evaluate(v3.Vec{X: o.X + 15, Y: o.Y + 10, Z: o.Z + 5}), 0.0)
	// Divider between the first two slots is solid.
	assert.Less(t, s.Evaluate(v3.Vec{X: o.X + 31.5 + 0.75, Y: o.Y + 10, Z: o.Z + 5}), 0.0)
}

func TestBuild_RoundedCorner(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.CornerRadius = 6
	s, err := Build(testAssembly(t, cfg))
	require.NoError(t, err)

	// The square corner is cut away by the rounding.
	assert.Greater(t, s.Evaluate(v3.Vec{X: 0.3, Y: 0.3, Z: 1}), 0.0)
	assert.Less(t, s.Evaluate(v3.Vec{X: 6, Y: 1, Z: 1}), 0.0)
}

func TestBuild_CornerSlotsStayEmpty(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.CornerRadius = 10
	a := testAssembly(t, cfg)
	s, err := Build(a)
	require.NoError(t, err)

	layout, err := engine.New(cfg).Grid(model.Dimension{Width: 30, Length: 20, Height: 15}, 4)
	require.NoError(t, err)
	o := a.Metrics.InteriorOrigin

	// Points just inside the outer corners of the end slots are empty.
	for _, sl := range []model.Slot{layout.Slots[0], layout.Slots[len(layout.Slots)-1]} {
		for _, in := range []float64{1, 2} {
			corners := []v3.Vec{
				{X: o.X + sl.X + in, Y: o.Y + sl.Y + in, Z: o.Z + 7},
				{X: o.X + sl.MaxX() - in, Y: o.Y + sl.MaxY() - in, Z: o.Z + 7},
			}
			for _, p := range corners {
				assert.Greater(t, s.Evaluate(p), 0.0, "slot %d point %v", sl.Index, p)
			}
		}
	}
	// The rounded wall around the corner is still solid.
	assert.Less(t, s.Evaluate(v3.Vec{X: o.X + 1, Y: o.Y + 1, Z: o.Z + 7}), 0.0)
}

func TestBuild_InvalidTree(t *testing.T) {
	_, err := Build(&geometry.Assembly{Root: &geometry.Union{}})
	assert.True(t, errors.Is(err, errors.ErrCodeGeometryInfeasible))
}

func TestSave(t *testing.T) {
	a := testAssembly(t, model.DefaultConfig())
	path := filepath.Join(t.TempDir(), "case.stl")

	require.NoError(t, Save(path, a, 40))

	info, err := os.Stat(path)
	require.NoError(t, err)
	// 80 byte header, triangle count, 50 bytes per triangle.
	assert.Greater(t, info.Size(), int64(84+50))
	assert.Equal(t, int64(0), (info.Size()-84)%50)
}
