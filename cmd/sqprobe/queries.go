package main

import (
	"fmt"
	"io"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/cobra"

	"scenequery/internal/collision"
	"scenequery/internal/filter"
)

func newTraceCommand(root *rootOptions) *cobra.Command {
	var (
		q        queryFlags
		from, to string
	)
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Cast a ray",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseSegment(from, to)
			if err != nil {
				return err
			}
			channel, params, err := q.params()
			if err != nil {
				return err
			}
			w, err := root.loadWorld()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			resp, objects := collision.DefaultResponseParams(), filter.ObjectQueryParams{}
			switch q.mode {
			case "test":
				printTest(out, w.Query.RaycastTest(start, end, channel, params, resp, objects))
			case "single":
				var hit collision.HitResult
				if w.Query.RaycastSingle(&hit, start, end, channel, params, resp, objects) {
					printHits(out, []collision.HitResult{hit})
				} else {
					fmt.Fprintln(out, "no hit")
				}
			case "multi":
				hits, _ := w.Query.RaycastMulti(nil, start, end, channel, params, resp, objects)
				printHits(out, hits)
			default:
				return fmt.Errorf("unknown mode %q", q.mode)
			}
			return nil
		},
	}
	q.register(cmd, "single", "test, single or multi")
	cmd.Flags().StringVar(&from, "from", "", "trace start x,y,z")
	cmd.Flags().StringVar(&to, "to", "", "trace end x,y,z")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newSweepCommand(root *rootOptions) *cobra.Command {
	var (
		q        queryFlags
		s        shapeFlags
		from, to string
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Sweep a shape along a segment",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseSegment(from, to)
			if err != nil {
				return err
			}
			g, rot, err := s.geometry()
			if err != nil {
				return err
			}
			channel, params, err := q.params()
			if err != nil {
				return err
			}
			w, err := root.loadWorld()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			resp, objects := collision.DefaultResponseParams(), filter.ObjectQueryParams{}
			switch q.mode {
			case "test":
				printTest(out, w.Query.GeomSweepTest(g, rot, start, end, channel, params, resp, objects))
			case "single":
				var hit collision.HitResult
				if w.Query.GeomSweepSingle(&hit, g, rot, start, end, channel, params, resp, objects) {
					printHits(out, []collision.HitResult{hit})
				} else {
					fmt.Fprintln(out, "no hit")
				}
			case "multi":
				hits, _ := w.Query.GeomSweepMulti(nil, g, rot, start, end, channel, params, resp, objects)
				printHits(out, hits)
			default:
				return fmt.Errorf("unknown mode %q", q.mode)
			}
			return nil
		},
	}
	q.register(cmd, "single", "test, single or multi")
	s.register(cmd)
	cmd.Flags().StringVar(&from, "from", "", "sweep start x,y,z")
	cmd.Flags().StringVar(&to, "to", "", "sweep end x,y,z")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newOverlapCommand(root *rootOptions) *cobra.Command {
	var (
		q  queryFlags
		s  shapeFlags
		at string
	)
	cmd := &cobra.Command{
		Use:   "overlap",
		Short: "Find what a shape overlaps",
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parseVec3(at)
			if err != nil {
				return err
			}
			g, rot, err := s.geometry()
			if err != nil {
				return err
			}
			channel, params, err := q.params()
			if err != nil {
				return err
			}
			w, err := root.loadWorld()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			resp, objects := collision.DefaultResponseParams(), filter.ObjectQueryParams{}
			switch q.mode {
			case "blocking":
				printTest(out, w.Query.GeomOverlapBlockingTest(g, pos, rot, channel, params, resp, objects))
			case "any":
				printTest(out, w.Query.GeomOverlapAnyTest(g, pos, rot, channel, params, resp, objects))
			case "multi":
				results, _ := w.Query.GeomOverlapMulti(nil, g, pos, rot, channel, params, resp, objects)
				printOverlaps(out, results)
			default:
				return fmt.Errorf("unknown mode %q", q.mode)
			}
			return nil
		},
	}
	q.register(cmd, "multi", "blocking, any or multi")
	s.register(cmd)
	cmd.Flags().StringVar(&at, "at", "", "shape position x,y,z")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func parseSegment(from, to string) (rl.Vector3, rl.Vector3, error) {
	start, err := parseVec3(from)
	if err != nil {
		return rl.Vector3{}, rl.Vector3{}, err
	}
	end, err := parseVec3(to)
	if err != nil {
		return rl.Vector3{}, rl.Vector3{}, err
	}
	return start, end, nil
}

func printTest(out io.Writer, hit bool) {
	if hit {
		fmt.Fprintln(out, "blocked")
	} else {
		fmt.Fprintln(out, "clear")
	}
}

func printHits(out io.Writer, hits []collision.HitResult) {
	if len(hits) == 0 {
		fmt.Fprintln(out, "no hit")
		return
	}
	for i := range hits {
		h := &hits[i]
		kind := "touch"
		if h.BlockingHit {
			kind = "block"
		}
		name := "-"
		if g := h.GetActor(); g != nil {
			name = g.Name
		}
		material := "-"
		if m := h.GetPhysMaterial(); m != nil {
			material = m.Name
		}
		fmt.Fprintf(out, "%-5s %-12s t=%.4f at %s normal %s item %d face %d material %s",
			kind, name, h.Time, fmtVec(h.ImpactPoint), fmtVec(h.Normal), h.Item, h.FaceIndex, material)
		if h.StartPenetrating {
			fmt.Fprintf(out, " penetrating %.4f", h.PenetrationDepth)
		}
		fmt.Fprintln(out)
	}
}

func printOverlaps(out io.Writer, results []collision.OverlapResult) {
	if len(results) == 0 {
		fmt.Fprintln(out, "no overlap")
		return
	}
	for i := range results {
		r := &results[i]
		kind := "touch"
		if r.BlockingHit {
			kind = "block"
		}
		name := "-"
		if g := r.GetActor(); g != nil {
			name = g.Name
		}
		fmt.Fprintf(out, "%-5s %-12s item %d\n", kind, name, r.Item)
	}
}

func fmtVec(v rl.Vector3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
