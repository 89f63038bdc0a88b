package cli

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/casemk/internal/emit/stl"
	"github.com/piwi3910/casemk/internal/engine"
	"github.com/piwi3910/casemk/internal/errors"
	"github.com/piwi3910/casemk/internal/model"
	"github.com/piwi3910/casemk/internal/project"
)

// jobResult is the outcome of one batch job.
type jobResult struct {
	Name  string
	RunID string
	Paths []string
	Slots int
	Err   error
}

func (c *CLI) batchCommand() *cobra.Command {
	var (
		configFile string
		parallel   int
		opts       outputOptions
	)

	cmd := &cobra.Command{
		Use:   "batch <jobs-file>",
		Short: "Generate many cases from a job file",
		Long: `Batch reads a JSON, YAML or TOML job file and generates every job in parallel.
A failing job does not stop the others; the command fails if any job failed.

  version: "1"
  defaults:
    wall_thickness: 1.6
  jobs:
    - name: bits
      item: 6x6x40
      formats: [scad, stl]
    - name: cards
      items: "24x32x2.1:10(SD), 11x15x1:8(microSD)"
      output: out/cards`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			base, err := baseConfig(configFile)
			if err != nil {
				return err
			}
			jobs, err := project.LoadBatch(args[0], base)
			if err != nil {
				return err
			}
			for i := range jobs {
				if jobs[i].Formats, err = normalizeFormats(jobs[i].Formats); err != nil {
					return fmt.Errorf("job %q: %w", jobs[i].Name, err)
				}
			}
			logger.Info("running batch", "file", args[0], "jobs", len(jobs))

			results, err := runBatch(ctx, jobs, parallel, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					printError(out, "%s: %s", r.Name, errors.UserMessage(r.Err))
					continue
				}
				printSuccess(out, "%s: %d slots", r.Name, r.Slots)
				for _, p := range r.Paths {
					printDetail(out, "%s", p)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d jobs failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "base config file applied before the job file defaults")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", runtime.GOMAXPROCS(0), "maximum number of jobs run at once")
	cmd.Flags().IntVar(&opts.Segments, "segments", 64, "OpenSCAD $fn for rounded corners")
	cmd.Flags().IntVar(&opts.STLCells, "stl-cells", stl.DefaultCells, "STL marching cubes resolution along the longest axis")
	return cmd
}

// baseConfig loads path, or the user's default config file when path is
// empty.
func baseConfig(path string) (model.Config, error) {
	if path != "" {
		return project.LoadConfig(path)
	}
	return project.LoadDefaultConfig()
}

// runBatch generates every job concurrently. Job failures are recorded in
// the results; the returned error is only set when ctx is cancelled.
func runBatch(ctx context.Context, jobs []project.Job, parallel int, opts outputOptions) ([]jobResult, error) {
	logger := loggerFromContext(ctx)
	results := make([]jobResult, len(jobs))

	if parallel < 1 {
		parallel = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	var mu sync.Mutex
	done := 0
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			runID := uuid.New().String()[:8]
			jl := logger.With("job", job.Name, "run", runID)
			jctx := withLogger(gctx, jl)

			res := jobResult{Name: job.Name, RunID: runID}
			built, err := buildCase(jctx, engine.Job{Items: job.Items, Fill: job.Fill, Mixed: job.Mixed}, job.Config)
			if err == nil {
				res.Slots = len(built.Layout.Slots)
				res.Paths, err = writeOutputs(jctx, job.Output, job.Formats, built, opts)
			}
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			res.Err = err
			results[i] = res

			mu.Lock()
			done++
			n := done
			mu.Unlock()
			if err != nil {
				jl.Warn("job failed", "progress", fmt.Sprintf("%d/%d", n, len(jobs)), "err", errors.UserMessage(err))
			} else {
				jl.Info("job done", "progress", fmt.Sprintf("%d/%d", n, len(jobs)), "slots", res.Slots)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
