package geom

import (
	"fmt"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

type Kind uint8

const (
	KindSphere Kind = iota
	KindBox
	KindCapsule
	KindConvex
	KindTriangleMesh
	KindHeightField
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindBox:
		return "box"
	case KindCapsule:
		return "capsule"
	case KindConvex:
		return "convex"
	case KindTriangleMesh:
		return "trimesh"
	case KindHeightField:
		return "heightfield"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Geometry is the closed set of collision shapes: Sphere, Box, Capsule,
// ConvexMesh, TriangleMesh and HeightField.
type Geometry interface {
	Kind() Kind
	// LocalBounds is the shape-space box, with scale applied.
	LocalBounds() AABB
	isGeometry()
}

type Sphere struct {
	Radius float32
}

type Box struct {
	HalfExtents rl.Vector3
}

// Capsule is a segment along local Z of length 2*HalfHeight swept by Radius.
type Capsule struct {
	Radius     float32
	HalfHeight float32
}

type ConvexMesh struct {
	Mesh  *ConvexHull
	Scale rl.Vector3
}

type TriangleMesh struct {
	Mesh        *TriMesh
	Scale       rl.Vector3
	DoubleSided bool
}

type HeightField struct {
	Field       *HeightFieldData
	HeightScale float32
	RowScale    float32
	ColumnScale float32
}

func (Sphere) Kind() Kind       { return KindSphere }
func (Box) Kind() Kind          { return KindBox }
func (Capsule) Kind() Kind      { return KindCapsule }
func (ConvexMesh) Kind() Kind   { return KindConvex }
func (TriangleMesh) Kind() Kind { return KindTriangleMesh }
func (HeightField) Kind() Kind  { return KindHeightField }

func (Sphere) isGeometry()       {}
func (Box) isGeometry()          {}
func (Capsule) isGeometry()      {}
func (ConvexMesh) isGeometry()   {}
func (TriangleMesh) isGeometry() {}
func (HeightField) isGeometry()  {}

func (s Sphere) LocalBounds() AABB {
	r := rl.Vector3{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return AABB{Min: rl.Vector3Negate(r), Max: r}
}

func (b Box) LocalBounds() AABB {
	h := absVec(b.HalfExtents)
	return AABB{Min: rl.Vector3Negate(h), Max: h}
}

func (c Capsule) LocalBounds() AABB {
	h := rl.Vector3{X: c.Radius, Y: c.Radius, Z: c.HalfHeight + c.Radius}
	return AABB{Min: rl.Vector3Negate(h), Max: h}
}

// Segment returns the capsule's core segment endpoints in shape space.
func (c Capsule) Segment() (rl.Vector3, rl.Vector3) {
	return rl.Vector3{Z: -c.HalfHeight}, rl.Vector3{Z: c.HalfHeight}
}

func (c ConvexMesh) LocalBounds() AABB {
	if c.Mesh == nil {
		return AABB{}
	}
	return c.Mesh.Bounds.Scale(c.Scale)
}

func (m TriangleMesh) LocalBounds() AABB {
	if m.Mesh == nil {
		return AABB{}
	}
	return m.Mesh.Bounds().Scale(m.Scale)
}

func (h HeightField) LocalBounds() AABB {
	if h.Field == nil {
		return AABB{}
	}
	return h.Field.bounds(h.HeightScale, h.RowScale, h.ColumnScale)
}

// WorldBounds returns the world-space box of g placed at pose.
func WorldBounds(g Geometry, pose Transform) AABB {
	if s, ok := g.(Sphere); ok {
		return NewAABBFromExtents(pose.P, rl.Vector3{X: s.Radius, Y: s.Radius, Z: s.Radius})
	}
	return g.LocalBounds().Transform(pose)
}

// IsConvex reports whether g can be used as a query shape for sweeps and overlaps.
func IsConvex(g Geometry) bool {
	switch g.(type) {
	case Sphere, Box, Capsule, ConvexMesh:
		return true
	}
	return false
}

// Inflate grows a convex geometry by amount on every side. Convex meshes are
// inflated by scaling about the hull origin. Meshes and heightfields are
// returned unchanged.
func Inflate(g Geometry, amount float32) Geometry {
	switch s := g.(type) {
	case Sphere:
		return Sphere{Radius: s.Radius + amount}
	case Capsule:
		return Capsule{Radius: s.Radius + amount, HalfHeight: s.HalfHeight}
	case Box:
		h := absVec(s.HalfExtents)
		return Box{HalfExtents: rl.Vector3AddValue(h, amount)}
	case ConvexMesh:
		if s.Mesh == nil {
			return s
		}
		extent := s.Mesh.Bounds.Scale(s.Scale).Extents()
		radius := maxComponent(extent)
		if radius <= SmallNumber {
			return s
		}
		k := (radius + amount) / radius
		return ConvexMesh{Mesh: s.Mesh, Scale: rl.Vector3Scale(s.Scale, k)}
	}
	return g
}

// Validate reports malformed geometry parameters.
func Validate(g Geometry) error {
	switch s := g.(type) {
	case Sphere:
		if !(s.Radius > 0) {
			return fmt.Errorf("sphere radius %v must be positive", s.Radius)
		}
	case Box:
		if !(s.HalfExtents.X > 0 && s.HalfExtents.Y > 0 && s.HalfExtents.Z > 0) {
			return fmt.Errorf("box half extents %v must be positive", s.HalfExtents)
		}
	case Capsule:
		if !(s.Radius > 0) || s.HalfHeight < 0 {
			return fmt.Errorf("capsule radius %v / half height %v invalid", s.Radius, s.HalfHeight)
		}
	case ConvexMesh:
		if s.Mesh == nil {
			return fmt.Errorf("convex mesh has no hull")
		}
		if !validScale(s.Scale) {
			return fmt.Errorf("convex scale %v must be positive", s.Scale)
		}
	case TriangleMesh:
		if s.Mesh == nil {
			return fmt.Errorf("triangle mesh has no data")
		}
		if !validScale(s.Scale) {
			return fmt.Errorf("triangle mesh scale %v must be positive", s.Scale)
		}
	case HeightField:
		if s.Field == nil {
			return fmt.Errorf("heightfield has no samples")
		}
		if !(s.RowScale > 0 && s.ColumnScale > 0) || s.HeightScale == 0 {
			return fmt.Errorf("heightfield scales (%v, %v, %v) invalid", s.HeightScale, s.RowScale, s.ColumnScale)
		}
	default:
		return fmt.Errorf("unknown geometry %T", g)
	}
	return nil
}

func validScale(s rl.Vector3) bool {
	return s.X > 0 && s.Y > 0 && s.Z > 0 && !math32.IsInf(s.X, 0) && !math32.IsInf(s.Y, 0) && !math32.IsInf(s.Z, 0)
}
