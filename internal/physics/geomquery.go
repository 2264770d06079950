package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"
	rl "github.com/gen2brain/raylib-go/raylib"

	"scenequery/internal/geom"
)

// GeometryQuery runs exact geometry tests against individual scene shapes.
// It holds no state; the collision layer uses it for penetration recovery and
// normal lookups.
type GeometryQuery struct{}

// ComputePenetration returns the direction and depth that move g at pose out of shape.
func (GeometryQuery) ComputePenetration(g geom.Geometry, pose geom.Transform, shape *Shape) (rl.Vector3, float32, bool) {
	return ComputePenetration(g, pose, shape.geometry, shape.WorldPose())
}

// PointDistance returns the distance from p to the surface of shape and the
// closest point. Points inside report zero.
func (GeometryQuery) PointDistance(p rl.Vector3, shape *Shape) (float32, rl.Vector3, bool) {
	pose := shape.WorldPose()
	switch g := shape.geometry.(type) {
	case geom.Box:
		closest := geom.ClosestPointOnOBB(geom.NewOBB(pose, g.HalfExtents), p)
		return rl.Vector3Distance(p, closest), closest, true

	case geom.TriangleSource:
		best := float32(math32.MaxFloat32)
		var closest rl.Vector3
		for i := 0; i < g.TriangleCount(); i++ {
			tri := g.LocalTriangle(i).Transform(pose)
			c := tri.ClosestPoint(p)
			if d := rl.Vector3DistanceSqr(p, c); d < best {
				best = d
				closest = c
			}
		}
		if best == math32.MaxFloat32 {
			return 0, rl.Vector3{}, false
		}
		return math32.Sqrt(best), closest, true
	}

	tp, ok := newProxy(shape.geometry, pose)
	if !ok {
		return 0, rl.Vector3{}, false
	}
	r := gjkDistance(pointProxy(p), tp, mgl64.Vec3{})
	if r.overlap || r.distance <= tp.margin {
		return 0, p, true
	}
	n := r.pointA.Sub(r.pointB).Mul(1 / r.distance)
	closest := r.pointB.Add(n.Mul(tp.margin))
	return float32(r.distance - tp.margin), v32(closest), true
}

// FindOverlappingTriangles lists internal face indices of a mesh or
// heightfield shape overlapped by g. overflow is set when more than limit were found.
func (GeometryQuery) FindOverlappingTriangles(g geom.Geometry, pose geom.Transform, shape *Shape, limit int) (faces []uint32, overflow bool) {
	src, ok := shape.geometry.(geom.TriangleSource)
	if !ok {
		return nil, false
	}
	visitOverlappingTriangles(g, pose, src, shape.WorldPose(), func(i int, _ geom.Triangle) bool {
		if len(faces) >= limit {
			overflow = true
			return false
		}
		faces = append(faces, uint32(i))
		return true
	})
	return faces, overflow
}

// MeshTriangle returns internal face of a mesh or heightfield shape in world space.
func (GeometryQuery) MeshTriangle(shape *Shape, face uint32) (geom.Triangle, bool) {
	src, ok := shape.geometry.(geom.TriangleSource)
	if !ok || int(face) >= src.TriangleCount() {
		return geom.Triangle{}, false
	}
	return src.LocalTriangle(int(face)).Transform(shape.WorldPose()), true
}

// Raycast intersects a single shape, returning the nearest hit.
func (GeometryQuery) Raycast(shape *Shape, origin, dir rl.Vector3, maxDist float32, flags HitFlags) (RaycastHit, bool) {
	var out RaycastHit
	found := false
	raycastGeometry(shape.geometry, shape.WorldPose(), origin, dir, maxDist, flags&^HitMeshMultiple, func(h RaycastHit) bool {
		out = h
		found = true
		return false
	})
	if found {
		out.Target = Target{Shape: shape, Actor: shape.actor}
	}
	return out, found
}

// Overlap tests g at pose against a single shape.
func (GeometryQuery) Overlap(g geom.Geometry, pose geom.Transform, shape *Shape) bool {
	return overlapGeometry(g, pose, shape.geometry, shape.WorldPose())
}

func (GeometryQuery) WorldBounds(shape *Shape) geom.AABB {
	return shape.WorldBounds()
}
