package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/piwi3910/casemk/internal/emit/stl"
	"github.com/piwi3910/casemk/internal/engine"
	"github.com/piwi3910/casemk/internal/geometry"
	"github.com/piwi3910/casemk/internal/model"
)

func (c *CLI) generateCommand() *cobra.Command {
	var (
		flags   caseFlags
		output  string
		formats string
		opts    outputOptions
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a storage case",
		Long: `Generate lays the items out, assembles the case and writes it in every requested format.

With --item alone the case holds as many items as fit in the footprint;
--count asks for exactly that many. --items and --items-file pack several
item sizes in shelves. Nothing is written when the layout or the geometry is
infeasible.`,
		Example: `  casemk generate --item 30x20x15 --count 6 -o bits.scad
  casemk generate --item 24x32x2.1 --case-size 120x80 --stackable --format scad,stl
  casemk generate --items "30x20x15:4, 40x30x20:2(SD)" --corner-radius 4 --format scad,pdf,json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmts, err := parseFormats(formats)
			if err != nil {
				return err
			}
			job, cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			res, err := buildCase(ctx, job, cfg)
			if err != nil {
				return err
			}

			paths, err := writeOutputs(ctx, outputBase(output), fmts, res, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printCase(out, res)
			for _, p := range paths {
				printSuccess(out, "Wrote %s", p)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "case.scad", "output path; the extension is replaced per format")
	cmd.Flags().StringVar(&formats, "format", FormatSCAD, "comma-separated formats: scad, stl, dxf, pdf, labels, json")
	cmd.Flags().IntVar(&opts.Segments, "segments", 64, "OpenSCAD $fn for rounded corners")
	cmd.Flags().IntVar(&opts.STLCells, "stl-cells", stl.DefaultCells, "STL marching cubes resolution along the longest axis")

	return cmd
}

// buildCase runs the layout engine and the case assembler.
func buildCase(ctx context.Context, job engine.Job, cfg model.Config) (caseResult, error) {
	logger := loggerFromContext(ctx)

	p := newProgress(logger)
	layout, err := engine.New(cfg).Compute(job)
	if err != nil {
		return caseResult{}, err
	}
	p.done("layout computed", "mode", layout.Mode, "slots", len(layout.Slots), "cols", layout.Cols, "rows", layout.Rows)

	p = newProgress(logger)
	a, err := geometry.Assemble(layout, cfg)
	if err != nil {
		return caseResult{}, err
	}
	p.done("case assembled", "boxes", geometry.Count(a.Root, geometry.KindBox), "cylinders", geometry.Count(a.Root, geometry.KindCylinder))

	return caseResult{Layout: layout, Assembly: a, Config: cfg}, nil
}
