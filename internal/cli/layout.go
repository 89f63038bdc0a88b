package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/piwi3910/casemk/internal/engine"
	"github.com/piwi3910/casemk/internal/export"
	"github.com/piwi3910/casemk/internal/geometry"
	"github.com/piwi3910/casemk/internal/model"
)

// layoutOutput is the JSON document printed by the layout command.
type layoutOutput struct {
	Config  model.Config    `json:"config"`
	Layout  model.Layout    `json:"layout"`
	Summary *export.Summary `json:"summary,omitempty"`
}

func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags    caseFlags
		withCase bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the slot layout as JSON",
		Long:  `Layout runs only the layout engine and prints the configuration and the slot positions as JSON. With --summary the case is also assembled and its dimensions are included.`,
		Example: `  casemk layout --item 30x20x15 --max 200x100
  casemk layout --items "30x20x15:4, 40x30x20:2" --summary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			job, cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			layout, err := engine.New(cfg).Compute(job)
			if err != nil {
				return err
			}
			doc := layoutOutput{Config: cfg, Layout: layout}
			if withCase {
				a, err := geometry.Assemble(layout, cfg)
				if err != nil {
					return err
				}
				s := export.NewSummary(layout, a)
				doc.Summary = &s
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&withCase, "summary", false, "assemble the case and include its summary")
	return cmd
}
