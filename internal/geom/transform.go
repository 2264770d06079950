package geom

import rl "github.com/gen2brain/raylib-go/raylib"

// Transform is a rigid pose: rotation Q followed by translation P.
type Transform struct {
	P rl.Vector3
	Q rl.Quaternion
}

func Identity() Transform {
	return Transform{Q: rl.QuaternionIdentity()}
}

func NewTransform(p rl.Vector3, q rl.Quaternion) Transform {
	return Transform{P: p, Q: q}
}

func Translation(p rl.Vector3) Transform {
	return Transform{P: p, Q: rl.QuaternionIdentity()}
}

// FromEulerDegrees builds a rotation from X, Y, Z angles in degrees.
func FromEulerDegrees(rotation rl.Vector3) rl.Quaternion {
	return rl.QuaternionFromEuler(rotation.X*rl.Deg2rad, rotation.Y*rl.Deg2rad, rotation.Z*rl.Deg2rad)
}

func (t Transform) Rotate(v rl.Vector3) rl.Vector3 {
	return rl.Vector3RotateByQuaternion(v, t.Q)
}

func (t Transform) InverseRotate(v rl.Vector3) rl.Vector3 {
	return rl.Vector3RotateByQuaternion(v, rl.QuaternionInvert(t.Q))
}

// Apply maps a local point into the parent frame.
func (t Transform) Apply(v rl.Vector3) rl.Vector3 {
	return rl.Vector3Add(t.Rotate(v), t.P)
}

func (t Transform) InverseApply(v rl.Vector3) rl.Vector3 {
	return t.InverseRotate(rl.Vector3Subtract(v, t.P))
}

// Mul composes t with a pose expressed in t's local frame.
func (t Transform) Mul(local Transform) Transform {
	return Transform{
		P: t.Apply(local.P),
		Q: rl.QuaternionNormalize(rl.QuaternionMultiply(t.Q, local.Q)),
	}
}

func (t Transform) Inverse() Transform {
	inv := rl.QuaternionInvert(t.Q)
	return Transform{
		P: rl.Vector3RotateByQuaternion(rl.Vector3Negate(t.P), inv),
		Q: inv,
	}
}

// Axes returns the rotated unit X, Y and Z axes.
func (t Transform) Axes() [3]rl.Vector3 {
	return [3]rl.Vector3{
		t.Rotate(rl.Vector3{X: 1}),
		t.Rotate(rl.Vector3{Y: 1}),
		t.Rotate(rl.Vector3{Z: 1}),
	}
}

func (t Transform) IsValid() bool {
	return IsFinite(t.P) && IsFiniteQuat(t.Q)
}
