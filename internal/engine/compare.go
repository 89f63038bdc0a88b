package engine

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/casemk/internal/model"
)

// ComparisonScenario defines a named configuration to compare.
type ComparisonScenario struct {
	Name   string
	Config model.Config
}

// ComparisonResult holds the layout and computed statistics for a single
// scenario. Err is set when the scenario has no feasible layout.
type ComparisonResult struct {
	Scenario    ComparisonScenario
	Layout      model.Layout
	Err         error
	SlotCount   int
	Utilization float64
	CaseWidth   float64
	CaseLength  float64
}

// CompareScenarios runs the job under each scenario concurrently and
// returns the results in scenario order. Layout failures are reported per
// scenario; the returned error is only set when ctx is cancelled.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, job Job) ([]ComparisonResult, error) {
	results := make([]ComparisonResult, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, scenario := range scenarios {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			layout, err := New(scenario.Config).Compute(job)
			res := ComparisonResult{Scenario: scenario, Layout: layout, Err: err}
			if err == nil {
				wall := scenario.Config.WallThickness
				res.SlotCount = len(layout.Slots)
				res.Utilization = layout.Utilization()
				res.CaseWidth = layout.InteriorWidth + 2*wall
				res.CaseLength = layout.InteriorLength + 2*wall
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// BuildDefaultScenarios generates a set of comparison scenarios based on
// the current configuration, varying key parameters to show what-if
// alternatives.
func BuildDefaultScenarios(base model.Config) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{Name: "Current Settings", Config: base},
	}

	rot := base
	rot.AllowRotation = !base.AllowRotation
	name := "Rotation Allowed"
	if base.AllowRotation {
		name = "No Rotation"
	}
	scenarios = append(scenarios, ComparisonScenario{Name: name, Config: rot})

	if base.Clearance > 0.5 {
		tight := base
		tight.Clearance = base.Clearance * 0.5
		scenarios = append(scenarios, ComparisonScenario{
			Name:   fmt.Sprintf("Clearance %.2fmm (half)", tight.Clearance),
			Config: tight,
		})
	}

	if base.DividerThickness > 1.0 {
		thin := base
		thin.DividerThickness = 1.0
		scenarios = append(scenarios, ComparisonScenario{
			Name:   "Dividers 1.0mm",
			Config: thin,
		})
	}

	if base.WallThickness > 1.2 {
		thin := base
		thin.WallThickness = 1.2
		scenarios = append(scenarios, ComparisonScenario{
			Name:   "Walls 1.2mm",
			Config: thin,
		})
	}

	return scenarios
}
