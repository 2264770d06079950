package geom

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	SmallNumber      = 1e-8
	KindaSmallNumber = 1e-4

	// normalizedThreshold is the tolerance on |v|^2 - 1 for a vector to count as unit length.
	normalizedThreshold = 0.01
)

var (
	Up   = rl.Vector3{X: 0, Y: 0, Z: 1}
	Zero = rl.Vector3{}
)

func IsFinite(v rl.Vector3) bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

func IsFiniteQuat(q rl.Quaternion) bool {
	return finite(q.X) && finite(q.Y) && finite(q.Z) && finite(q.W)
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

// IsNormalized reports whether v has unit length within the normalization threshold.
func IsNormalized(v rl.Vector3) bool {
	return math32.Abs(1-rl.Vector3LengthSqr(v)) < normalizedThreshold
}

// SafeNormal returns v normalized, or the zero vector when |v|^2 is below tolerance.
func SafeNormal(v rl.Vector3, tolerance float32) rl.Vector3 {
	sq := rl.Vector3LengthSqr(v)
	if sq == 1 {
		return v
	}
	if sq < tolerance {
		return rl.Vector3{}
	}
	return rl.Vector3Scale(v, 1/math32.Sqrt(sq))
}

func IsNearlyZero(v rl.Vector3, tolerance float32) bool {
	return math32.Abs(v.X) <= tolerance && math32.Abs(v.Y) <= tolerance && math32.Abs(v.Z) <= tolerance
}

func Axis(v rl.Vector3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func SetAxis(v *rl.Vector3, axis int, value float32) {
	switch axis {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	default:
		v.Z = value
	}
}

// AxisVector returns the unit vector along axis scaled by sign.
func AxisVector(axis int, sign float32) rl.Vector3 {
	var v rl.Vector3
	SetAxis(&v, axis, sign)
	return v
}

func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absVec(v rl.Vector3) rl.Vector3 {
	return rl.Vector3{X: math32.Abs(v.X), Y: math32.Abs(v.Y), Z: math32.Abs(v.Z)}
}

func maxComponent(v rl.Vector3) float32 {
	return math32.Max(v.X, math32.Max(v.Y, v.Z))
}

// IsUniform reports whether all three scale components match within tolerance.
func IsUniform(scale rl.Vector3) bool {
	return math32.Abs(scale.X-scale.Y) <= KindaSmallNumber && math32.Abs(scale.X-scale.Z) <= KindaSmallNumber
}

// TransformNormalToShapeSpace applies the inverse-transpose of a non-uniform scale to a
// local normal and renormalizes it. Uniform scale leaves the normal untouched.
func TransformNormalToShapeSpace(scale, normal rl.Vector3) rl.Vector3 {
	if IsUniform(scale) {
		return normal
	}
	scaled := rl.Vector3{X: normal.X / scale.X, Y: normal.Y / scale.Y, Z: normal.Z / scale.Z}
	n := SafeNormal(scaled, SmallNumber)
	if rl.Vector3LengthSqr(n) == 0 {
		return normal
	}
	return n
}
