package geom

import (
	"math"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

type AABB struct {
	Min rl.Vector3
	Max rl.Vector3
}

// EmptyAABB returns an inverted box that any AddPoint call will snap to.
func EmptyAABB() AABB {
	return AABB{
		Min: rl.Vector3{X: math.MaxFloat32, Y: math.MaxFloat32, Z: math.MaxFloat32},
		Max: rl.Vector3{X: -math.MaxFloat32, Y: -math.MaxFloat32, Z: -math.MaxFloat32},
	}
}

// NewAABBFromCenter creates an AABB from a center point and full size dimensions.
func NewAABBFromCenter(center, size rl.Vector3) AABB {
	return NewAABBFromExtents(center, rl.Vector3Scale(size, 0.5))
}

func NewAABBFromExtents(center, half rl.Vector3) AABB {
	return AABB{
		Min: rl.Vector3Subtract(center, half),
		Max: rl.Vector3Add(center, half),
	}
}

func (a AABB) IsEmpty() bool {
	return a.Min.X > a.Max.X || a.Min.Y > a.Max.Y || a.Min.Z > a.Max.Z
}

func (a AABB) Center() rl.Vector3 {
	return rl.Vector3Scale(rl.Vector3Add(a.Min, a.Max), 0.5)
}

func (a AABB) Extents() rl.Vector3 {
	return rl.Vector3Scale(rl.Vector3Subtract(a.Max, a.Min), 0.5)
}

func (a AABB) Intersects(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

func (a AABB) Contains(p rl.Vector3) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X &&
		p.Y >= a.Min.Y && p.Y <= a.Max.Y &&
		p.Z >= a.Min.Z && p.Z <= a.Max.Z
}

func (a AABB) AddPoint(p rl.Vector3) AABB {
	return AABB{Min: rl.Vector3Min(a.Min, p), Max: rl.Vector3Max(a.Max, p)}
}

func (a AABB) Union(b AABB) AABB {
	return AABB{Min: rl.Vector3Min(a.Min, b.Min), Max: rl.Vector3Max(a.Max, b.Max)}
}

// Expand grows the box by amount on every side.
func (a AABB) Expand(amount float32) AABB {
	d := rl.Vector3{X: amount, Y: amount, Z: amount}
	return AABB{Min: rl.Vector3Subtract(a.Min, d), Max: rl.Vector3Add(a.Max, d)}
}

// Sweep returns the box covering a moving from its start to start+delta.
func (a AABB) Sweep(delta rl.Vector3) AABB {
	moved := AABB{Min: rl.Vector3Add(a.Min, delta), Max: rl.Vector3Add(a.Max, delta)}
	return a.Union(moved)
}

func (a AABB) Scale(s rl.Vector3) AABB {
	p := rl.Vector3Multiply(a.Min, s)
	q := rl.Vector3Multiply(a.Max, s)
	return AABB{Min: rl.Vector3Min(p, q), Max: rl.Vector3Max(p, q)}
}

// Transform returns the world-space box enclosing a after applying t.
func (a AABB) Transform(t Transform) AABB {
	center := t.Apply(a.Center())
	ext := a.Extents()
	axes := t.Axes()
	half := rl.Vector3{
		X: math32.Abs(axes[0].X)*ext.X + math32.Abs(axes[1].X)*ext.Y + math32.Abs(axes[2].X)*ext.Z,
		Y: math32.Abs(axes[0].Y)*ext.X + math32.Abs(axes[1].Y)*ext.Y + math32.Abs(axes[2].Y)*ext.Z,
		Z: math32.Abs(axes[0].Z)*ext.X + math32.Abs(axes[1].Z)*ext.Y + math32.Abs(axes[2].Z)*ext.Z,
	}
	return NewAABBFromExtents(center, half)
}

// RayIntersect runs the slab test against origin + dir*t for t in [0, maxDist].
// It returns the entry distance and the outward normal of the entry face. A ray
// starting inside reports t=0 and inside=true.
func (a AABB) RayIntersect(origin, dir rl.Vector3, maxDist float32) (t float32, normal rl.Vector3, inside bool, ok bool) {
	tmin := float32(-math.MaxFloat32)
	tmax := float32(math.MaxFloat32)
	enterAxis := -1
	var enterSign float32

	for axis := 0; axis < 3; axis++ {
		o := Axis(origin, axis)
		d := Axis(dir, axis)
		lo := Axis(a.Min, axis)
		hi := Axis(a.Max, axis)
		if d == 0 {
			if o < lo || o > hi {
				return 0, rl.Vector3{}, false, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		sign := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tmin {
			tmin = t1
			enterAxis = axis
			enterSign = sign
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, rl.Vector3{}, false, false
		}
	}

	if tmax < 0 || tmin > maxDist {
		return 0, rl.Vector3{}, false, false
	}
	if tmin < 0 || enterAxis < 0 {
		return 0, rl.Vector3Negate(dir), true, true
	}
	return tmin, AxisVector(enterAxis, enterSign), false, true
}

// Resolve returns the minimum translation vector to push 'a' out of 'b'.
// Returns zero vector if no overlap.
func (a AABB) Resolve(b AABB) rl.Vector3 {
	if !a.Intersects(b) {
		return rl.Vector3Zero()
	}

	// Penetration depth in each direction
	dx1 := b.Max.X - a.Min.X // push a in +X
	dx2 := a.Max.X - b.Min.X // push a in -X
	dy1 := b.Max.Y - a.Min.Y // push a in +Y
	dy2 := a.Max.Y - b.Min.Y // push a in -Y
	dz1 := b.Max.Z - a.Min.Z // push a in +Z
	dz2 := a.Max.Z - b.Min.Z // push a in -Z

	min := dx1
	result := rl.Vector3{X: dx1}

	if dx2 < min {
		min = dx2
		result = rl.Vector3{X: -dx2}
	}
	if dy1 < min {
		min = dy1
		result = rl.Vector3{Y: dy1}
	}
	if dy2 < min {
		min = dy2
		result = rl.Vector3{Y: -dy2}
	}
	if dz1 < min {
		min = dz1
		result = rl.Vector3{Z: dz1}
	}
	if dz2 < min {
		result = rl.Vector3{Z: -dz2}
	}

	return result
}
