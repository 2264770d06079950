package collision

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	log "github.com/sirupsen/logrus"

	"scenequery/internal/geom"
	"scenequery/internal/physics"
)

// GeometryQuerier runs exact geometry tests against single shapes.
// physics.GeometryQuery implements it.
type GeometryQuerier interface {
	// ComputePenetration returns the direction and depth that move g out of shape.
	ComputePenetration(g geom.Geometry, pose geom.Transform, shape *physics.Shape) (rl.Vector3, float32, bool)
	// PointDistance returns the distance from p to shape and the closest point.
	PointDistance(p rl.Vector3, shape *physics.Shape) (float32, rl.Vector3, bool)
	// FindOverlappingTriangles lists mesh faces overlapped by g, up to limit.
	FindOverlappingTriangles(g geom.Geometry, pose geom.Transform, shape *physics.Shape, limit int) ([]uint32, bool)
	MeshTriangle(shape *physics.Shape, face uint32) (geom.Triangle, bool)
	WorldBounds(shape *physics.Shape) geom.AABB
}

var _ GeometryQuerier = physics.GeometryQuery{}

type penetrationInput struct {
	geometry geom.Geometry
	pose     geom.Transform
	shape    *physics.Shape
}

type penetrationResult struct {
	normal rl.Vector3
	depth  float32
}

type penetrationStrategy struct {
	name string
	run  func(in penetrationInput) (penetrationResult, bool)
}

// penetrationResolver recovers an impact normal and depth for a query that
// starts inside its target. Strategies run in order until one succeeds.
type penetrationResolver struct {
	cfg        PenetrationConfig
	geometry   GeometryQuerier
	diag       *Diagnostics
	strategies []penetrationStrategy
}

func newPenetrationResolver(cfg PenetrationConfig, geometry GeometryQuerier, diag *Diagnostics) *penetrationResolver {
	r := &penetrationResolver{cfg: cfg, geometry: geometry, diag: diag}
	r.strategies = []penetrationStrategy{
		{name: "mtd_small", run: func(in penetrationInput) (penetrationResult, bool) {
			return r.inflatedMTD(in, cfg.SmallMTDInflation)
		}},
		{name: "mtd_large", run: func(in penetrationInput) (penetrationResult, bool) {
			return r.inflatedMTD(in, cfg.LargeMTDInflation)
		}},
		{name: "triangle_planes", run: r.trianglePlanes},
		{name: "nearest_point", run: r.nearestPoint},
	}
	return r
}

func (r *penetrationResolver) resolve(in penetrationInput) penetrationResult {
	for _, s := range r.strategies {
		if res, ok := s.run(in); ok {
			return res
		}
	}
	return penetrationResult{normal: geom.Up, depth: geom.KindaSmallNumber}
}

// accept checks a candidate for non-finite values and normalizes it.
func (r *penetrationResolver) accept(strategy string, in penetrationInput, n rl.Vector3, depth float32) (rl.Vector3, bool) {
	if !geom.IsFinite(n) || math32.IsNaN(depth) || math32.IsInf(depth, 0) {
		r.diag.Once(CategoryPenetrationNaN, log.Fields{
			"strategy": strategy,
			"geometry": in.geometry.Kind().String(),
			"target":   in.shape.Geometry().Kind().String(),
			"origin":   in.pose.P,
		}, "Collision: penetration produced a non-finite result")
		return rl.Vector3{}, false
	}
	n = geom.SafeNormal(n, geom.SmallNumber)
	if rl.Vector3LengthSqr(n) == 0 {
		return rl.Vector3{}, false
	}
	return n, true
}

func (r *penetrationResolver) inflatedMTD(in penetrationInput, inflation float32) (penetrationResult, bool) {
	inflated := geom.Inflate(in.geometry, inflation)
	n, depth, ok := r.geometry.ComputePenetration(inflated, in.pose, in.shape)
	if !ok {
		return penetrationResult{}, false
	}
	n, ok = r.accept("mtd", in, n, depth)
	if !ok {
		return penetrationResult{}, false
	}
	return penetrationResult{
		normal: n,
		depth:  max(math32.Abs(depth)-inflation, 0) + geom.KindaSmallNumber,
	}, true
}

// trianglePlanes votes for the overlapped triangle plane farthest in front of
// the query center. Meshes and heightfields only.
func (r *penetrationResolver) trianglePlanes(in penetrationInput) (penetrationResult, bool) {
	switch in.shape.Geometry().(type) {
	case geom.TriangleMesh, geom.HeightField:
	default:
		return penetrationResult{}, false
	}
	for _, inflation := range []float32{0, r.cfg.OverlapTriangleInflation} {
		g := in.geometry
		if inflation > 0 {
			g = geom.Inflate(g, inflation)
		}
		faces, overflow := r.geometry.FindOverlappingTriangles(g, in.pose, in.shape, r.cfg.MaxOverlapTriangles)
		if overflow {
			r.diag.Logger().WithField("limit", r.cfg.MaxOverlapTriangles).Debug("Collision: overlapping triangle buffer full")
		}
		best := float32(-math32.MaxFloat32)
		var bestNormal rl.Vector3
		found := false
		for _, face := range faces {
			tri, ok := r.geometry.MeshTriangle(in.shape, face)
			if !ok {
				continue
			}
			n := tri.Normal()
			if rl.Vector3LengthSqr(n) == 0 {
				continue
			}
			if d := tri.PlaneDistance(in.pose.P); d > best {
				best = d
				bestNormal = n
				found = true
			}
		}
		if !found {
			continue
		}
		n, ok := r.accept("triangle_planes", in, bestNormal, best)
		if !ok {
			return penetrationResult{}, false
		}
		return penetrationResult{normal: n, depth: max(queryExtent(in, n)-best, 0) + geom.KindaSmallNumber}, true
	}
	return penetrationResult{}, false
}

// nearestPoint derives the normal from the closest surface point to the query
// origin. An origin on or inside the surface uses the target bounds center.
func (r *penetrationResolver) nearestPoint(in penetrationInput) (penetrationResult, bool) {
	origin := in.pose.P
	dist, closest, ok := r.geometry.PointDistance(origin, in.shape)
	point := closest
	if !ok || dist <= geom.KindaSmallNumber {
		point = r.geometry.WorldBounds(in.shape).Center()
		dist = 0
	}
	n, ok := r.accept("nearest_point", in, rl.Vector3Subtract(origin, point), dist)
	if !ok {
		n = geom.Up
	}
	return penetrationResult{normal: n, depth: max(queryExtent(in, n)-dist, 0) + geom.KindaSmallNumber}, true
}

// queryExtent is the half width of the query bounds along n.
func queryExtent(in penetrationInput, n rl.Vector3) float32 {
	e := geom.WorldBounds(in.geometry, in.pose).Extents()
	return e.X*math32.Abs(n.X) + e.Y*math32.Abs(n.Y) + e.Z*math32.Abs(n.Z)
}
