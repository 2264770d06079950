package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"scenequery/internal/collision"
	"scenequery/internal/filter"
	"scenequery/internal/geom"
	"scenequery/internal/world"
)

type stressOptions struct {
	workers   int
	queries   int
	extent    float32
	seed      uint64
	hitchMode string
	hitchMS   float64
}

type stressStats struct {
	queries  atomic.Int64
	blocks   atomic.Int64
	overlaps atomic.Int64
}

func newStressCommand(root *rootOptions) *cobra.Command {
	opts := &stressOptions{}
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run random queries from concurrent workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.workers <= 0 || opts.queries <= 0 {
				return fmt.Errorf("workers and queries must be positive")
			}
			var mode collision.HitchMode
			if err := mode.UnmarshalText([]byte(opts.hitchMode)); err != nil {
				return err
			}
			w, err := root.loadWorldWith(func(cfg *collision.Config) {
				if cmd.Flags().Changed("hitch") {
					cfg.Hitch.Mode = mode
				}
				if cmd.Flags().Changed("hitch-ms") {
					cfg.Hitch.ThresholdMS = opts.hitchMS
				}
			})
			if err != nil {
				return err
			}

			var stats stressStats
			start := time.Now()
			if err := runStress(cmd.Context(), w, opts, &stats); err != nil {
				return err
			}
			elapsed := time.Since(start)

			n := stats.queries.Load()
			fmt.Fprintf(cmd.OutOrStdout(), "%d workers: %d queries in %v (%.0f q/s) | %d blocking | %d overlap results\n",
				opts.workers, n, elapsed.Round(time.Microsecond), float64(n)/elapsed.Seconds(),
				stats.blocks.Load(), stats.overlaps.Load())
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.workers, "workers", 4, "concurrent query workers")
	cmd.Flags().IntVar(&opts.queries, "queries", 1000, "queries per worker")
	cmd.Flags().Float32Var(&opts.extent, "extent", 20, "half size of the cube queries are drawn from")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 42, "random seed")
	cmd.Flags().StringVar(&opts.hitchMode, "hitch", "off", "override hitch mode: off, log or repeat")
	cmd.Flags().Float64Var(&opts.hitchMS, "hitch-ms", 5, "override hitch threshold in milliseconds")
	return cmd
}

func runStress(ctx context.Context, w *world.World, opts *stressOptions, stats *stressStats) error {
	if ctx == nil {
		ctx = context.Background()
	}
	g, ctx := errgroup.WithContext(ctx)
	for i := range opts.workers {
		rng := rand.New(rand.NewPCG(opts.seed, uint64(i)))
		g.Go(func() error {
			return stressWorker(ctx, w, opts, rng, stats)
		})
	}
	return g.Wait()
}

func stressWorker(ctx context.Context, w *world.World, opts *stressOptions, rng *rand.Rand, stats *stressStats) error {
	point := func() rl.Vector3 {
		e := opts.extent
		return rl.Vector3{X: (rng.Float32()*2 - 1) * e, Y: (rng.Float32()*2 - 1) * e, Z: (rng.Float32()*2 - 1) * e}
	}
	params := collision.DefaultQueryParams()
	params.TraceTag = "stress"
	resp, objects := collision.DefaultResponseParams(), filter.ObjectQueryParams{}
	sphere := geom.Sphere{Radius: 0.25 + rng.Float32()}
	rot := rl.QuaternionIdentity()

	var hits []collision.HitResult
	var overlaps []collision.OverlapResult
	for i := range opts.queries {
		if err := ctx.Err(); err != nil {
			return err
		}
		var blocked bool
		switch i % 4 {
		case 0:
			var hit collision.HitResult
			blocked = w.Query.RaycastSingle(&hit, point(), point(), filter.Visibility, &params, resp, objects)
		case 1:
			hits, blocked = w.Query.RaycastMulti(hits[:0], point(), point(), filter.Visibility, &params, resp, objects)
		case 2:
			var hit collision.HitResult
			blocked = w.Query.GeomSweepSingle(&hit, sphere, rot, point(), point(), filter.Pawn, &params, resp, objects)
		case 3:
			overlaps, blocked = w.Query.GeomOverlapMulti(overlaps[:0], sphere, point(), rot, filter.Pawn, &params, resp, objects)
			stats.overlaps.Add(int64(len(overlaps)))
		}
		if blocked {
			stats.blocks.Add(1)
		}
		stats.queries.Add(1)
	}
	return nil
}
