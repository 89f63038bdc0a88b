package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/casemk/internal/errors"
	"github.com/piwi3910/casemk/internal/model"
)

func mixedTestItems() []model.Item {
	return []model.Item{
		model.NewItem("B", model.Dimension{Width: 20, Length: 20, Height: 10}, 2),
		model.NewItem("A", model.Dimension{Width: 40, Length: 30, Height: 20}, 1),
	}
}

func TestMixed_SingleShelf(t *testing.T) {
	cfg := defaultTestConfig()
	layout, err := New(cfg).Mixed(mixedTestItems())
	require.NoError(t, err)

	assert.Equal(t, model.LayoutMixed, layout.Mode)
	require.Len(t, layout.Slots, 3)

	// Tallest first.
	assert.Equal(t, "A", layout.Slots[0].Label)
	assert.InDelta(t, 0, layout.Slots[0].X, 1e-9)
	assert.InDelta(t, 43, layout.Slots[1].X, 1e-9)
	assert.InDelta(t, 66, layout.Slots[2].X, 1e-9)

	assert.InDelta(t, 87.5, layout.InteriorWidth, 1e-9)
	assert.InDelta(t, 31.5, layout.InteriorLength, 1e-9)
	assert.InDelta(t, 21.5, layout.CavityHeight, 1e-9)
	assert.InDelta(t, 23.5, layout.CaseHeight, 1e-9)
	assert.Zero(t, layout.Cols)
	assertWellFormed(t, layout, cfg.DividerThickness)
}

func TestMixed_OpensNewShelf(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Footprint = model.AutoFootprint(54, 300)

	layout, err := New(cfg).Mixed(mixedTestItems())
	require.NoError(t, err)
	require.Len(t, layout.Slots, 3)

	assert.InDelta(t, 0, layout.Slots[1].X, 1e-9)
	assert.InDelta(t, 33, layout.Slots[1].Y, 1e-9)
	assert.InDelta(t, 23, layout.Slots[2].X, 1e-9)
	assert.InDelta(t, 33, layout.Slots[2].Y, 1e-9)
	assert.InDelta(t, 44.5, layout.InteriorWidth, 1e-9)
	assert.InDelta(t, 54.5, layout.InteriorLength, 1e-9)
	assertWellFormed(t, layout, cfg.DividerThickness)
}

func TestMixed_LengthOverflow(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Footprint = model.AutoFootprint(54, 56)

	_, err := New(cfg).Mixed(mixedTestItems())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeLayoutInfeasible))
	assert.Contains(t, err.Error(), "items exceed footprint")
	assert.Equal(t, "length", errors.ConstraintOf(err).Axis)
}

func TestMixed_UnitWiderThanBound(t *testing.T) {
	items := []model.Item{model.NewItem("", model.Dimension{Width: 400, Length: 10, Height: 10}, 1)}
	_, err := New(defaultTestConfig()).Mixed(items)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeLayoutInfeasible))
	assert.Equal(t, "width", errors.ConstraintOf(err).Axis)
}

func TestMixed_FixedFootprint(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Footprint = model.FixedFootprint(200, 150)

	layout, err := New(cfg).Mixed(mixedTestItems())
	require.NoError(t, err)
	assert.InDelta(t, 196, layout.InteriorWidth, 1e-9)
	assert.InDelta(t, 146, layout.InteriorLength, 1e-9)
}

func TestMixed_StableOrderForTies(t *testing.T) {
	items := []model.Item{
		model.NewItem("first", model.Dimension{Width: 10, Length: 10, Height: 5}, 1),
		model.NewItem("second", model.Dimension{Width: 10, Length: 10, Height: 5}, 1),
		model.NewItem("third", model.Dimension{Width: 10, Length: 10, Height: 5}, 1),
	}
	layout, err := New(defaultTestConfig()).Mixed(items)
	require.NoError(t, err)

	var labels []string
	for _, s := range layout.Slots {
		labels = append(labels, s.Label)
	}
	assert.Equal(t, []string{"first", "second", "third"}, labels)
}

func TestMixed_SortByAreaWithinHeight(t *testing.T) {
	items := []model.Item{
		model.NewItem("small", model.Dimension{Width: 10, Length: 10, Height: 5}, 1),
		model.NewItem("large", model.Dimension{Width: 20, Length: 20, Height: 5}, 1),
	}
	layout, err := New(defaultTestConfig()).Mixed(items)
	require.NoError(t, err)
	assert.Equal(t, "large", layout.Slots[0].Label)
}

func TestMixed_RotatesOnlyWhenNeeded(t *testing.T) {
	items := []model.Item{
		model.NewItem("A", model.Dimension{Width: 40, Length: 30, Height: 20}, 1),
		model.NewItem("C", model.Dimension{Width: 30, Length: 10, Height: 10}, 1),
	}
	cfg := defaultTestConfig()
	cfg.Clearance = 0
	cfg.Footprint = model.AutoFootprint(58, 300)

	layout, err := New(cfg).Mixed(items)
	require.NoError(t, err)
	require.Len(t, layout.Slots, 2)
	assert.False(t, layout.Slots[1].Rotated)
	assert.InDelta(t, 31.5, layout.Slots[1].Y, 1e-9)

	cfg.AllowRotation = true
	layout, err = New(cfg).Mixed(items)
	require.NoError(t, err)
	require.Len(t, layout.Slots, 2)
	c := layout.Slots[1]
	assert.True(t, c.Rotated)
	assert.InDelta(t, 41.5, c.X, 1e-9)
	assert.InDelta(t, 0, c.Y, 1e-9)
	assert.InDelta(t, 10, c.Width, 1e-9)
	assert.InDelta(t, 30, c.Length, 1e-9)
	assertWellFormed(t, layout, cfg.DividerThickness)
}

func TestMixed_InvalidItems(t *testing.T) {
	e := New(defaultTestConfig())

	_, err := e.Mixed(nil)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = e.Mixed([]model.Item{model.NewItem("", model.Dimension{Width: 10, Length: 10, Height: 10}, 0)})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = e.Mixed([]model.Item{model.NewItem("", model.Dimension{Width: 10, Length: -1, Height: 10}, 1)})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidDimension))
}

func TestMixed_Deterministic(t *testing.T) {
	e := New(defaultTestConfig())
	items := []model.Item{
		model.NewItem("a", model.Dimension{Width: 12, Length: 30, Height: 8}, 5),
		model.NewItem("b", model.Dimension{Width: 40, Length: 25, Height: 12}, 3),
		model.NewItem("c", model.Dimension{Width: 18, Length: 18, Height: 12}, 4),
	}
	a, err := e.Mixed(items)
	require.NoError(t, err)
	b, err := e.Mixed(items)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(a, b))
	assertWellFormed(t, a, e.Config.DividerThickness)
}

func TestMixed_CornerInset(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.CornerRadius = 4

	layout, err := New(cfg).Mixed(mixedTestItems())
	require.NoError(t, err)
	assert.InDelta(t, 5, layout.Slots[0].X, 1e-9)
	assert.InDelta(t, 5, layout.Slots[0].Y, 1e-9)
	assert.InDelta(t, 87.5+10, layout.InteriorWidth, 1e-9)
	assert.InDelta(t, 31.5+10, layout.InteriorLength, 1e-9)
	assertInset(t, layout, cfg.CornerInset())
	assertWellFormed(t, layout, cfg.DividerThickness)
}

func labelledItems() []model.Item {
	return []model.Item{
		model.NewItem("B", model.Dimension{Width: 20, Length: 20, Height: 10}, 2),
		model.NewItem("A", model.Dimension{Width: 40, Length: 30, Height: 20}, 1),
		model.NewItem("", model.Dimension{Width: 10, Length: 10, Height: 5}, 1),
	}
}

func TestMixed_LabelAreasRight(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.LabelWidth, cfg.LabelLength = 8, 12

	layout, err := New(cfg).Mixed(labelledItems())
	require.NoError(t, err)
	require.Len(t, layout.Slots, 4)

	a := layout.Slots[0]
	require.NotNil(t, a.LabelArea)
	assert.Equal(t, model.Area{X: 43, Y: 0, Width: 8, Length: 12}, *a.LabelArea)

	// Each labelled unit advances the shelf by slot, divider, label, divider.
	assert.InDelta(t, 52.5, layout.Slots[1].X, 1e-9)
	assert.InDelta(t, 75.5, layout.Slots[1].LabelArea.X, 1e-9)
	assert.InDelta(t, 85, layout.Slots[2].X, 1e-9)
	assert.InDelta(t, 117.5, layout.Slots[3].X, 1e-9)
	assert.Nil(t, layout.Slots[3].LabelArea, "unlabelled items get no label area")

	assert.InDelta(t, 129, layout.InteriorWidth, 1e-9)
	assert.InDelta(t, 31.5, layout.InteriorLength, 1e-9)
	assertWellFormed(t, layout, cfg.DividerThickness)
}

func TestMixed_LabelAreasBelow(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.LabelWidth, cfg.LabelLength = 30, 8
	cfg.LabelDir = model.LabelBelow

	layout, err := New(cfg).Mixed(labelledItems())
	require.NoError(t, err)
	require.Len(t, layout.Slots, 4)

	a := layout.Slots[0]
	require.NotNil(t, a.LabelArea)
	// Centred under the slot.
	assert.Equal(t, model.Area{X: 5.75, Y: 33, Width: 30, Length: 8}, *a.LabelArea)

	b := layout.Slots[1]
	assert.InDelta(t, 43, b.X, 1e-9)
	assert.Equal(t, model.Area{X: 43, Y: 23, Width: 30, Length: 8}, *b.LabelArea)
	// The label is wider than the slot, so it sets the advance.
	assert.InDelta(t, 74.5, layout.Slots[2].X, 1e-9)

	assert.InDelta(t, 41, layout.InteriorLength, 1e-9)
	assertWellFormed(t, layout, cfg.DividerThickness)
}

func TestMixed_LabelAreasNeedConfig(t *testing.T) {
	layout, err := New(defaultTestConfig()).Mixed(labelledItems())
	require.NoError(t, err)
	for _, s := range layout.Slots {
		assert.Nil(t, s.LabelArea)
	}
}

func TestMixed_LabelAreaTooWide(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Footprint = model.AutoFootprint(50, 300)
	items := []model.Item{model.NewItem("A", model.Dimension{Width: 40, Length: 30, Height: 20}, 1)}

	_, err := New(cfg).Mixed(items)
	require.NoError(t, err)

	cfg.LabelWidth, cfg.LabelLength = 8, 12
	_, err = New(cfg).Mixed(items)
	require.Error(t, err)
	c := errors.ConstraintOf(err)
	require.NotNil(t, c)
	assert.Equal(t, "width", c.Axis)
	assert.InDelta(t, 51, c.Required, 1e-9)
	assert.InDelta(t, 46, c.Available, 1e-9)
}
