package main

import (
	"fmt"
	"strconv"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/cobra"

	"scenequery/internal/collision"
	"scenequery/internal/filter"
	"scenequery/internal/geom"
)

func parseVec3(s string) (rl.Vector3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return rl.Vector3{}, fmt.Errorf("vector %q: want x,y,z", s)
	}
	var v [3]float32
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return rl.Vector3{}, fmt.Errorf("vector %q: %w", s, err)
		}
		v[i] = float32(f)
	}
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}, nil
}

// queryFlags are the options shared by every query command.
type queryFlags struct {
	channel   string
	mode      string
	complex   bool
	async     bool
	faceIndex bool
	material  bool
	tag       string
}

func (f *queryFlags) register(cmd *cobra.Command, defaultMode, modes string) {
	cmd.Flags().StringVar(&f.channel, "channel", "Visibility", "trace channel")
	cmd.Flags().StringVar(&f.mode, "mode", defaultMode, "query mode: "+modes)
	cmd.Flags().BoolVar(&f.complex, "complex", false, "trace complex collision")
	cmd.Flags().BoolVar(&f.async, "async", true, "also query the async scene")
	cmd.Flags().BoolVar(&f.faceIndex, "face-index", false, "report mesh face indices")
	cmd.Flags().BoolVar(&f.material, "material", false, "report physical materials")
	cmd.Flags().StringVar(&f.tag, "tag", "sqprobe", "trace tag for logs")
}

func (f *queryFlags) params() (filter.Channel, *collision.QueryParams, error) {
	channel, err := filter.ParseChannel(f.channel)
	if err != nil {
		return 0, nil, err
	}
	p := collision.DefaultQueryParams()
	p.TraceTag = f.tag
	p.TraceComplex = f.complex
	p.TraceAsyncScene = f.async
	p.ReturnFaceIndex = f.faceIndex
	p.ReturnPhysicalMaterial = f.material
	return channel, &p, nil
}

// shapeFlags describe the query geometry for sweeps and overlaps.
type shapeFlags struct {
	shape      string
	radius     float32
	halfHeight float32
	half       string
	rotation   string
}

func (f *shapeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.shape, "shape", "sphere", "sphere, capsule, box or convex")
	cmd.Flags().Float32Var(&f.radius, "radius", 0.5, "sphere and capsule radius")
	cmd.Flags().Float32Var(&f.halfHeight, "half-height", 0.5, "capsule half height")
	cmd.Flags().StringVar(&f.half, "half", "0.5,0.5,0.5", "box and convex half extents")
	cmd.Flags().StringVar(&f.rotation, "rotation", "0,0,0", "shape rotation in degrees")
}

func (f *shapeFlags) geometry() (geom.Geometry, rl.Quaternion, error) {
	rot, err := parseVec3(f.rotation)
	if err != nil {
		return nil, rl.Quaternion{}, err
	}
	var g geom.Geometry
	shape := strings.ToLower(f.shape)
	switch shape {
	case "sphere":
		g = geom.Sphere{Radius: f.radius}
	case "capsule":
		g = geom.Capsule{Radius: f.radius, HalfHeight: f.halfHeight}
	case "box", "convex":
		half, err := parseVec3(f.half)
		if err != nil {
			return nil, rl.Quaternion{}, err
		}
		if shape == "box" {
			g = geom.Box{HalfExtents: half}
		} else {
			g = geom.ConvexMesh{Mesh: geom.BoxHull(half), Scale: rl.Vector3{X: 1, Y: 1, Z: 1}}
		}
	default:
		return nil, rl.Quaternion{}, fmt.Errorf("unknown shape %q", f.shape)
	}
	if err := geom.Validate(g); err != nil {
		return nil, rl.Quaternion{}, err
	}
	return g, geom.FromEulerDegrees(rot), nil
}
