package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"scenequery/internal/geom"
)

// overlapGeometry reports whether query geometry at qPose overlaps the target.
func overlapGeometry(qGeom geom.Geometry, qPose geom.Transform, target geom.Geometry, tPose geom.Transform) bool {
	if src, ok := target.(geom.TriangleSource); ok {
		found := false
		visitOverlappingTriangles(qGeom, qPose, src, tPose, func(int, geom.Triangle) bool {
			found = true
			return false
		})
		return found
	}

	switch q := qGeom.(type) {
	case geom.Sphere:
		if b, ok := target.(geom.Box); ok {
			return geom.NewOBB(tPose, b.HalfExtents).IntersectsSphere(qPose.P, q.Radius)
		}
	case geom.Box:
		if b, ok := target.(geom.Box); ok {
			return geom.NewOBB(qPose, q.HalfExtents).IntersectsOBB(geom.NewOBB(tPose, b.HalfExtents))
		}
	}

	qp, okQ := newProxy(qGeom, qPose)
	tp, okT := newProxy(target, tPose)
	if !okQ || !okT {
		return false
	}
	return proxiesOverlap(qp, tp)
}

func proxiesOverlap(a, b *proxy) bool {
	r := gjkDistance(a, b, mgl64.Vec3{})
	return r.overlap || r.distance <= a.margin+b.margin
}

// visitOverlappingTriangles calls fn with the world-space triangles of src that
// overlap the convex query. fn returns false to stop.
func visitOverlappingTriangles(qGeom geom.Geometry, qPose geom.Transform, src geom.TriangleSource, tPose geom.Transform, fn func(face int, tri geom.Triangle) bool) {
	qp, ok := newProxy(qGeom, qPose)
	if !ok {
		return
	}
	local := geom.WorldBounds(qGeom, qPose).Transform(tPose.Inverse())
	src.QueryTriangles(local, func(i int) bool {
		tri := src.LocalTriangle(i).Transform(tPose)
		if !proxiesOverlap(qp, triangleProxy(tri)) {
			return true
		}
		return fn(i, tri)
	})
}
