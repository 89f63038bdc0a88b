package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/piwi3910/casemk/internal/engine"
	"github.com/piwi3910/casemk/internal/errors"
)

func (c *CLI) compareCommand() *cobra.Command {
	var flags caseFlags

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the layout under alternative settings",
		Long: `Compare runs the layout with the current settings and with what-if variants
(rotation toggled, half the clearance, thinner dividers, thinner walls) and
prints slot count, case footprint and utilization side by side.`,
		Example: `  casemk compare --item 30x20x15 --max 200x150
  casemk compare --items-file parts.csv --case-size 300x200`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			job, cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			results, err := engine.CompareScenarios(cmd.Context(), engine.BuildDefaultScenarios(cfg), job)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderComparison(results))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// renderComparison formats the scenario results as a table. The best slot
// count is highlighted; infeasible scenarios show their error.
func renderComparison(results []engine.ComparisonResult) string {
	best := 0
	for _, r := range results {
		if r.Err == nil && r.SlotCount > best {
			best = r.SlotCount
		}
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			rows = append(rows, []string{r.Scenario.Name, "-", "-", "-", errors.UserMessage(r.Err)})
			continue
		}
		rows = append(rows, []string{
			r.Scenario.Name,
			fmt.Sprint(r.SlotCount),
			fmt.Sprintf("%.1f x %.1f", r.CaseWidth, r.CaseLength),
			fmt.Sprintf("%.1f%%", r.Utilization),
			"",
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("Scenario", "Slots", "Case (mm)", "Utilization", "Note").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			r := results[row]
			switch {
			case r.Err != nil:
				return StyleDim
			case col == 1 && r.SlotCount == best:
				return StyleNumber.Bold(true)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
