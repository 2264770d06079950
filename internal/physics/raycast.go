package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"scenequery/internal/geom"
)

// raycastGeometry intersects a world-space ray with one shape. emit is called
// for each hit (once, unless HitMeshMultiple is set on a mesh) and returns
// false to stop.
func raycastGeometry(g geom.Geometry, pose geom.Transform, origin, dir rl.Vector3, maxDist float32, flags HitFlags, emit func(RaycastHit) bool) {
	switch s := g.(type) {
	case geom.Sphere:
		if h, ok := raycastSphere(origin, dir, pose.P, s.Radius, maxDist); ok {
			emit(h)
		}
	case geom.Box:
		if h, ok := raycastBox(origin, dir, pose, s.HalfExtents, maxDist); ok {
			emit(h)
		}
	case geom.Capsule:
		if h, ok := raycastCapsule(origin, dir, pose, s, maxDist); ok {
			emit(h)
		}
	case geom.ConvexMesh:
		if h, ok := raycastConvex(origin, dir, pose, s, maxDist); ok {
			emit(h)
		}
	case geom.TriangleMesh:
		raycastTriangles(origin, dir, pose, s, s.DoubleSided || flags&HitMeshBothSides != 0, maxDist, flags, emit)
	case geom.HeightField:
		raycastTriangles(origin, dir, pose, s, flags&HitMeshBothSides != 0, maxDist, flags, emit)
	}
}

func newRaycastHit(position, normal rl.Vector3, distance float32, face uint32) RaycastHit {
	var h RaycastHit
	h.Flags = HitDefault
	h.Position = position
	h.Normal = normal
	h.Distance = distance
	h.FaceIndex = face
	if face != InvalidFaceIndex {
		h.Flags |= HitFaceIndex
	}
	return h
}

// initialOverlapRayHit is reported by rays starting inside a solid shape.
func initialOverlapRayHit(origin, dir rl.Vector3) RaycastHit {
	h := newRaycastHit(origin, rl.Vector3Negate(dir), 0, InvalidFaceIndex)
	h.Flags |= HitInitialOverlap
	return h
}

// raySphere returns the entry distance of a unit ray into a sphere. inside is
// set when the origin is already in it.
func raySphere(origin, dir, center rl.Vector3, radius, maxDist float32) (t float32, inside, ok bool) {
	oc := rl.Vector3Subtract(origin, center)
	b := rl.Vector3DotProduct(oc, dir)
	c := rl.Vector3DotProduct(oc, oc) - radius*radius
	if c <= 0 {
		return 0, true, true
	}
	if b > 0 {
		return 0, false, false
	}
	disc := b*b - c
	if disc < 0 {
		return 0, false, false
	}
	t = -b - math32.Sqrt(disc)
	if t < 0 || t > maxDist {
		return 0, false, false
	}
	return t, false, true
}

func raycastSphere(origin, dir, center rl.Vector3, radius, maxDist float32) (RaycastHit, bool) {
	t, inside, ok := raySphere(origin, dir, center, radius, maxDist)
	if !ok {
		return RaycastHit{}, false
	}
	if inside {
		return initialOverlapRayHit(origin, dir), true
	}
	point := rl.Vector3Add(origin, rl.Vector3Scale(dir, t))
	normal := rl.Vector3Normalize(rl.Vector3Subtract(point, center))
	return newRaycastHit(point, normal, t, InvalidFaceIndex), true
}

func raycastBox(origin, dir rl.Vector3, pose geom.Transform, half rl.Vector3, maxDist float32) (RaycastHit, bool) {
	localOrigin := pose.InverseApply(origin)
	localDir := pose.InverseRotate(dir)
	box := geom.AABB{Min: rl.Vector3Negate(half), Max: half}

	t, normal, inside, ok := box.RayIntersect(localOrigin, localDir, maxDist)
	if !ok {
		return RaycastHit{}, false
	}
	if inside {
		return initialOverlapRayHit(origin, dir), true
	}
	point := rl.Vector3Add(origin, rl.Vector3Scale(dir, t))
	return newRaycastHit(point, pose.Rotate(normal), t, InvalidFaceIndex), true
}

// raycastCapsule tests the cylinder body and both end caps in capsule space.
func raycastCapsule(origin, dir rl.Vector3, pose geom.Transform, c geom.Capsule, maxDist float32) (RaycastHit, bool) {
	o := pose.InverseApply(origin)
	d := pose.InverseRotate(dir)
	r := c.Radius
	hh := c.HalfHeight

	axial := geom.Clamp(o.Z, -hh, hh)
	if rl.Vector3DistanceSqr(o, rl.Vector3{Z: axial}) <= r*r {
		return initialOverlapRayHit(origin, dir), true
	}

	best := maxDist
	var bestNormal rl.Vector3
	found := false

	a := d.X*d.X + d.Y*d.Y
	if a > geom.SmallNumber {
		b := o.X*d.X + o.Y*d.Y
		cc := o.X*o.X + o.Y*o.Y - r*r
		if disc := b*b - a*cc; disc >= 0 {
			t := (-b - math32.Sqrt(disc)) / a
			if t >= 0 && t <= best {
				if z := o.Z + d.Z*t; z >= -hh && z <= hh {
					p := rl.Vector3Add(o, rl.Vector3Scale(d, t))
					best = t
					bestNormal = rl.Vector3Normalize(rl.Vector3{X: p.X, Y: p.Y})
					found = true
				}
			}
		}
	}

	for _, end := range []float32{-hh, hh} {
		center := rl.Vector3{Z: end}
		t, _, ok := raySphere(o, d, center, r, best)
		if !ok || t > best {
			continue
		}
		p := rl.Vector3Add(o, rl.Vector3Scale(d, t))
		// Only the outer hemisphere belongs to the capsule surface.
		if (end < 0 && p.Z > end) || (end > 0 && p.Z < end) {
			continue
		}
		best = t
		bestNormal = rl.Vector3Normalize(rl.Vector3Subtract(p, center))
		found = true
	}

	if !found {
		return RaycastHit{}, false
	}
	point := rl.Vector3Add(origin, rl.Vector3Scale(dir, best))
	return newRaycastHit(point, pose.Rotate(bestNormal), best, InvalidFaceIndex), true
}

// raycastConvex clips the ray against the hull planes in unscaled hull space.
// The ray parameter is unchanged by the mapping, so distances stay world units.
func raycastConvex(origin, dir rl.Vector3, pose geom.Transform, c geom.ConvexMesh, maxDist float32) (RaycastHit, bool) {
	if c.Mesh == nil {
		return RaycastHit{}, false
	}
	inv := rl.Vector3{X: 1 / c.Scale.X, Y: 1 / c.Scale.Y, Z: 1 / c.Scale.Z}
	o := rl.Vector3Multiply(pose.InverseApply(origin), inv)
	d := rl.Vector3Multiply(pose.InverseRotate(dir), inv)

	tEnter := float32(-math32.MaxFloat32)
	tExit := maxDist
	enterFace := -1
	for i, poly := range c.Mesh.Polygons {
		dist := poly.Plane.Distance(o)
		denom := rl.Vector3DotProduct(poly.Plane.Normal, d)
		if math32.Abs(denom) < geom.SmallNumber {
			if dist > 0 {
				return RaycastHit{}, false
			}
			continue
		}
		t := -dist / denom
		if denom < 0 {
			if t > tEnter {
				tEnter = t
				enterFace = i
			}
		} else if t < tExit {
			tExit = t
		}
		if tEnter > tExit {
			return RaycastHit{}, false
		}
	}

	if tEnter <= 0 || enterFace < 0 {
		if tExit < 0 {
			return RaycastHit{}, false
		}
		return initialOverlapRayHit(origin, dir), true
	}
	if tEnter > maxDist {
		return RaycastHit{}, false
	}
	n, _ := c.PolygonNormal(enterFace)
	point := rl.Vector3Add(origin, rl.Vector3Scale(dir, tEnter))
	return newRaycastHit(point, pose.Rotate(n), tEnter, uint32(enterFace)), true
}

// raycastTriangles walks the mesh or heightfield triangles under the ray
// segment. Back-face hits on two-sided surfaces get a normal facing the ray.
func raycastTriangles(origin, dir rl.Vector3, pose geom.Transform, src geom.TriangleSource, twoSided bool, maxDist float32, flags HitFlags, emit func(RaycastHit) bool) {
	o := pose.InverseApply(origin)
	d := pose.InverseRotate(dir)
	end := rl.Vector3Add(o, rl.Vector3Scale(d, maxDist))
	segment := geom.AABB{Min: rl.Vector3Min(o, end), Max: rl.Vector3Max(o, end)}.Expand(geom.KindaSmallNumber)

	multiple := flags&HitMeshMultiple != 0
	var nearest RaycastHit
	found := false
	stopped := false

	src.QueryTriangles(segment, func(i int) bool {
		tri := src.LocalTriangle(i)
		t, backFace, ok := tri.RayIntersect(o, d, maxDist, twoSided)
		if !ok {
			return true
		}
		normal := pose.Rotate(tri.Normal())
		if backFace {
			normal = rl.Vector3Negate(normal)
		}
		point := rl.Vector3Add(origin, rl.Vector3Scale(dir, t))
		h := newRaycastHit(point, normal, t, uint32(i))
		if multiple {
			if !emit(h) {
				stopped = true
				return false
			}
			return true
		}
		if !found || t < nearest.Distance {
			nearest = h
			found = true
		}
		return true
	})

	if found && !multiple && !stopped {
		emit(nearest)
	}
}
