package collision

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"scenequery/internal/geom"
	"scenequery/internal/physics"
)

// findGeomOpposingNormal returns the face normal of the hit shape that most
// opposes the trace. dir need not be normalized. Shapes without faces, and
// hits without a valid face, return normal unchanged.
func findGeomOpposingNormal(g geom.Geometry, pose geom.Transform, dir, normal rl.Vector3, face uint32) rl.Vector3 {
	switch s := g.(type) {
	case geom.Box:
		return findBoxOpposingNormal(pose, dir, normal)
	case geom.HeightField:
		return findHeightFieldOpposingNormal(s, pose, normal, face)
	case geom.TriangleMesh:
		return findTriMeshOpposingNormal(s, pose, dir, normal, face)
	case geom.ConvexMesh:
		return findConvexOpposingNormal(s, pose, normal, face)
	case geom.Sphere, geom.Capsule:
		return normal
	}
	debugAssert(false, "opposing normal for unknown geometry %T", g)
	return normal
}

// findBoxOpposingNormal scans the local axes in order and keeps the first
// face whose outward normal opposes dir the most.
func findBoxOpposingNormal(pose geom.Transform, dir, normal rl.Vector3) rl.Vector3 {
	localNormal := pose.InverseRotate(normal)
	localDir := pose.InverseRotate(dir)

	best := float32(math32.MaxFloat32)
	var out rl.Vector3
	found := false
	for axis := 0; axis < 3; axis++ {
		n := geom.Axis(localNormal, axis)
		var sign float32
		switch {
		case n > geom.KindaSmallNumber:
			sign = 1
		case n < -geom.KindaSmallNumber:
			sign = -1
		default:
			continue
		}
		if d := sign * geom.Axis(localDir, axis); d < best {
			best = d
			out = geom.AxisVector(axis, sign)
			found = true
		}
	}
	if !found {
		return normal
	}
	return pose.Rotate(out)
}

func findHeightFieldOpposingNormal(h geom.HeightField, pose geom.Transform, normal rl.Vector3, face uint32) rl.Vector3 {
	if face == physics.InvalidFaceIndex || h.Field == nil || int(face) >= h.TriangleCount() {
		return normal
	}
	unit := geom.HeightField{Field: h.Field, HeightScale: 1, RowScale: 1, ColumnScale: 1}
	local := unit.LocalTriangle(int(face)).Normal()
	scale := rl.Vector3{X: h.RowScale, Y: h.ColumnScale, Z: h.HeightScale}
	return pose.Rotate(geom.TransformNormalToShapeSpace(scale, local))
}

func findTriMeshOpposingNormal(m geom.TriangleMesh, pose geom.Transform, dir, normal rl.Vector3, face uint32) rl.Vector3 {
	if face == physics.InvalidFaceIndex || m.Mesh == nil || int(face) >= m.TriangleCount() {
		return normal
	}
	local := geom.TransformNormalToShapeSpace(m.Scale, m.Mesh.Triangle(int(face)).Normal())
	out := pose.Rotate(local)
	if m.DoubleSided && rl.Vector3DotProduct(out, dir) > 0 {
		out = rl.Vector3Negate(out)
	}
	return out
}

func findConvexOpposingNormal(c geom.ConvexMesh, pose geom.Transform, normal rl.Vector3, face uint32) rl.Vector3 {
	if face == physics.InvalidFaceIndex {
		return normal
	}
	local, ok := c.PolygonNormal(int(face))
	if !ok {
		return normal
	}
	return pose.Rotate(local)
}
