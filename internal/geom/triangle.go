package geom

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

type Triangle struct {
	V0, V1, V2 rl.Vector3
}

// Normal returns the unit normal following V0, V1, V2 counter-clockwise winding.
func (t Triangle) Normal() rl.Vector3 {
	edge1 := rl.Vector3Subtract(t.V1, t.V0)
	edge2 := rl.Vector3Subtract(t.V2, t.V0)
	return SafeNormal(rl.Vector3CrossProduct(edge1, edge2), SmallNumber*SmallNumber)
}

func (t Triangle) Centroid() rl.Vector3 {
	return rl.Vector3Scale(rl.Vector3Add(rl.Vector3Add(t.V0, t.V1), t.V2), 1.0/3.0)
}

func (t Triangle) Bounds() AABB {
	return AABB{
		Min: rl.Vector3Min(t.V0, rl.Vector3Min(t.V1, t.V2)),
		Max: rl.Vector3Max(t.V0, rl.Vector3Max(t.V1, t.V2)),
	}
}

func (t Triangle) Transform(pose Transform) Triangle {
	return Triangle{V0: pose.Apply(t.V0), V1: pose.Apply(t.V1), V2: pose.Apply(t.V2)}
}

func (t Triangle) Scale(s rl.Vector3) Triangle {
	return Triangle{V0: rl.Vector3Multiply(t.V0, s), V1: rl.Vector3Multiply(t.V1, s), V2: rl.Vector3Multiply(t.V2, s)}
}

// PlaneDistance is the signed distance of p from the triangle's plane.
func (t Triangle) PlaneDistance(p rl.Vector3) float32 {
	return rl.Vector3DotProduct(t.Normal(), rl.Vector3Subtract(p, t.V0))
}

// ClosestPoint finds the closest point on the triangle to p (Ericson, region tests).
func (t Triangle) ClosestPoint(p rl.Vector3) rl.Vector3 {
	a, b, c := t.V0, t.V1, t.V2
	ab := rl.Vector3Subtract(b, a)
	ac := rl.Vector3Subtract(c, a)
	ap := rl.Vector3Subtract(p, a)

	d1 := rl.Vector3DotProduct(ab, ap)
	d2 := rl.Vector3DotProduct(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := rl.Vector3Subtract(p, b)
	d3 := rl.Vector3DotProduct(ab, bp)
	d4 := rl.Vector3DotProduct(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return rl.Vector3Add(a, rl.Vector3Scale(ab, v))
	}

	cp := rl.Vector3Subtract(p, c)
	d5 := rl.Vector3DotProduct(ab, cp)
	d6 := rl.Vector3DotProduct(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return rl.Vector3Add(a, rl.Vector3Scale(ac, w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return rl.Vector3Add(b, rl.Vector3Scale(rl.Vector3Subtract(c, b), w))
	}

	denom := 1.0 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return rl.Vector3Add(a, rl.Vector3Add(rl.Vector3Scale(ab, v), rl.Vector3Scale(ac, w)))
}

// RayIntersect is a Möller–Trumbore test. dir need not be unit length; t is in
// units of dir. Back faces are rejected unless twoSided is set.
func (t Triangle) RayIntersect(origin, dir rl.Vector3, maxT float32, twoSided bool) (hitT float32, backFace bool, ok bool) {
	const eps = 1e-9
	edge1 := rl.Vector3Subtract(t.V1, t.V0)
	edge2 := rl.Vector3Subtract(t.V2, t.V0)
	pvec := rl.Vector3CrossProduct(dir, edge2)
	det := rl.Vector3DotProduct(edge1, pvec)

	if det > -eps && det < eps {
		return 0, false, false
	}
	backFace = det < 0
	if backFace && !twoSided {
		return 0, true, false
	}

	inv := 1 / det
	tvec := rl.Vector3Subtract(origin, t.V0)
	u := rl.Vector3DotProduct(tvec, pvec) * inv
	if u < 0 || u > 1 {
		return 0, backFace, false
	}
	qvec := rl.Vector3CrossProduct(tvec, edge1)
	v := rl.Vector3DotProduct(dir, qvec) * inv
	if v < 0 || u+v > 1 {
		return 0, backFace, false
	}
	hitT = rl.Vector3DotProduct(edge2, qvec) * inv
	if hitT < 0 || hitT > maxT || math32.IsNaN(hitT) {
		return 0, backFace, false
	}
	return hitT, backFace, true
}
