package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	rl "github.com/gen2brain/raylib-go/raylib"

	"scenequery/internal/geom"
)

// penetrate returns the unit direction that moves a out of b and the distance
// to move. ok is false when the shapes do not overlap.
func penetrate(a, b *proxy) (normal mgl64.Vec3, depth float64, ok bool) {
	r := gjkDistance(a, b, mgl64.Vec3{})
	if !r.overlap && r.distance > 1e-6 {
		sep := r.distance - a.margin - b.margin
		if sep > 0 {
			return mgl64.Vec3{}, 0, false
		}
		return r.pointA.Sub(r.pointB).Mul(1 / r.distance), -sep, true
	}
	return satPenetration(a, b)
}

// satPenetration finds the axis of least overlap among face normals, edge
// cross products and the center line.
func satPenetration(a, b *proxy) (mgl64.Vec3, float64, bool) {
	axes := make([]mgl64.Vec3, 0, len(a.faces)+len(b.faces)+len(a.edges)*len(b.edges)+1)
	axes = append(axes, a.faces...)
	axes = append(axes, b.faces...)
	for _, ea := range a.edges {
		for _, eb := range b.edges {
			if c := ea.Cross(eb); c.Len() > 1e-6 {
				axes = append(axes, c.Normalize())
			}
		}
	}
	if diff := a.center.Sub(b.center); diff.Len() > 1e-9 {
		axes = append(axes, diff.Normalize())
	}
	if len(axes) == 0 {
		axes = append(axes, v64(geom.Up))
	}

	best := math.Inf(1)
	var normal mgl64.Vec3
	for _, axis := range axes {
		aLo, aHi := a.project(axis)
		bLo, bHi := b.project(axis)
		push := bHi - aLo
		pull := aHi - bLo
		if push <= 0 || pull <= 0 {
			return mgl64.Vec3{}, 0, false
		}
		if push < best {
			best = push
			normal = axis
		}
		if pull < best {
			best = pull
			normal = axis.Mul(-1)
		}
	}
	return normal, best, true
}

// ComputePenetration returns the minimum translation that separates geometry a
// at poseA from convex geometry b at poseB: move a by normal*depth.
func ComputePenetration(a geom.Geometry, poseA geom.Transform, b geom.Geometry, poseB geom.Transform) (normal rl.Vector3, depth float32, ok bool) {
	if boxA, isBox := a.(geom.Box); isBox {
		if boxB, isBox := b.(geom.Box); isBox {
			mtv := geom.NewOBB(poseA, boxA.HalfExtents).ResolveOBB(geom.NewOBB(poseB, boxB.HalfExtents))
			d := rl.Vector3Length(mtv)
			if d <= 0 {
				return rl.Vector3{}, 0, false
			}
			return rl.Vector3Scale(mtv, 1/d), d, true
		}
	}

	if src, isMesh := b.(geom.TriangleSource); isMesh {
		return penetrateTriangles(a, poseA, src, poseB)
	}

	pa, okA := newProxy(a, poseA)
	pb, okB := newProxy(b, poseB)
	if !okA || !okB {
		return rl.Vector3{}, 0, false
	}
	n, d, hit := penetrate(pa, pb)
	if !hit {
		return rl.Vector3{}, 0, false
	}
	return v32(n), float32(d), true
}

// penetrateTriangles reports the deepest penetration against any overlapping triangle.
func penetrateTriangles(a geom.Geometry, poseA geom.Transform, src geom.TriangleSource, poseB geom.Transform) (rl.Vector3, float32, bool) {
	pa, ok := newProxy(a, poseA)
	if !ok {
		return rl.Vector3{}, 0, false
	}
	best := -1.0
	var normal mgl64.Vec3
	visitOverlappingTriangles(a, poseA, src, poseB, func(i int, tri geom.Triangle) bool {
		if n, d, hit := penetrate(pa, triangleProxy(tri)); hit && d > best {
			best = d
			normal = n
		}
		return true
	})
	if best < 0 {
		return rl.Vector3{}, 0, false
	}
	return v32(normal), float32(best), true
}
