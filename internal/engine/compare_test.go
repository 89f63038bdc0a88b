package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/casemk/internal/errors"
	"github.com/piwi3910/casemk/internal/model"
)

func TestBuildDefaultScenarios(t *testing.T) {
	scenarios := BuildDefaultScenarios(defaultTestConfig())
	require.GreaterOrEqual(t, len(scenarios), 2)
	assert.Equal(t, "Current Settings", scenarios[0].Name)
	assert.Equal(t, "Rotation Allowed", scenarios[1].Name)
	assert.True(t, scenarios[1].Config.AllowRotation)

	names := map[string]bool{}
	for _, s := range scenarios {
		names[s.Name] = true
	}
	assert.True(t, names["Dividers 1.0mm"])
	assert.True(t, names["Walls 1.2mm"])
}

func TestCompareScenarios(t *testing.T) {
	base := defaultTestConfig()
	tiny := base
	tiny.Footprint = model.AutoFootprint(20, 20)

	scenarios := []ComparisonScenario{
		{Name: "default", Config: base},
		{Name: "tiny", Config: tiny},
	}
	job := Job{Items: []model.Item{model.NewItem("", model.Dimension{Width: 30, Length: 20, Height: 15}, 1)}, Fill: true}

	results, err := CompareScenarios(context.Background(), scenarios, job)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "default", results[0].Scenario.Name)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 120, results[0].SlotCount)
	assert.InDelta(t, 350, results[0].CaseWidth, 1e-9)
	assert.Greater(t, results[0].Utilization, 0.0)

	assert.Equal(t, "tiny", results[1].Scenario.Name)
	assert.True(t, errors.Is(results[1].Err, errors.ErrCodeLayoutInfeasible))
	assert.Zero(t, results[1].SlotCount)
}

func TestCompareScenarios_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := Job{Items: []model.Item{model.NewItem("", model.Dimension{Width: 30, Length: 20, Height: 15}, 1)}}
	_, err := CompareScenarios(ctx, BuildDefaultScenarios(defaultTestConfig()), job)
	assert.ErrorIs(t, err, context.Canceled)
}
