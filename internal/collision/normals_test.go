package collision

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenequery/internal/geom"
	"scenequery/internal/physics"
)

func assertVec(t *testing.T, want, got rl.Vector3, delta float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta, "X of %v", got)
	assert.InDelta(t, want.Y, got.Y, delta, "Y of %v", got)
	assert.InDelta(t, want.Z, got.Z, delta, "Z of %v", got)
}

func TestBoxOpposingNormalTieBreak(t *testing.T) {
	box := geom.Box{HalfExtents: unitBox}
	corner := rl.Vector3{X: 0.70710677, Y: 0.70710677}
	down := rl.Vector3{Z: -1}

	for i := 0; i < 100; i++ {
		got := findGeomOpposingNormal(box, geom.Identity(), down, corner, physics.InvalidFaceIndex)
		require.Equal(t, rl.Vector3{X: 1}, got, "the lowest axis wins a tie")
	}

	turned := geom.NewTransform(rl.Vector3{}, geom.FromEulerDegrees(rl.Vector3{Z: 90}))
	got := findGeomOpposingNormal(box, turned, down, corner, physics.InvalidFaceIndex)
	assertVec(t, rl.Vector3{Y: 1}, got, 1e-5)
}

func TestBoxOpposingNormalPicksMostOpposedFace(t *testing.T) {
	box := geom.Box{HalfExtents: unitBox}
	n := rl.Vector3{X: 0.6, Z: 0.8}

	got := findGeomOpposingNormal(box, geom.Identity(), rl.Vector3{X: -10, Z: -1}, n, physics.InvalidFaceIndex)
	assert.Equal(t, rl.Vector3{X: 1}, got)

	got = findGeomOpposingNormal(box, geom.Identity(), rl.Vector3{X: -1, Z: -10}, n, physics.InvalidFaceIndex)
	assert.Equal(t, rl.Vector3{Z: 1}, got)

	got = findGeomOpposingNormal(box, geom.Identity(), rl.Vector3{Z: -1}, rl.Vector3{}, physics.InvalidFaceIndex)
	assert.Equal(t, rl.Vector3{}, got, "no significant axis leaves the normal alone")
}

func TestTriMeshOpposingNormal(t *testing.T) {
	mesh, err := geom.NewTriMesh([]rl.Vector3{{}, {X: 1}, {Y: 1}}, [][3]uint32{{0, 1, 2}}, nil)
	require.NoError(t, err)
	up := rl.Vector3{Z: 1}
	input := rl.Vector3{X: 1}

	single := geom.TriangleMesh{Mesh: mesh, Scale: unitBox}
	assert.Equal(t, input, findGeomOpposingNormal(single, geom.Identity(), up, input, physics.InvalidFaceIndex))
	assertVec(t, up, findGeomOpposingNormal(single, geom.Identity(), up, input, 0), 1e-6)
	assert.Equal(t, input, findGeomOpposingNormal(single, geom.Identity(), up, input, 5), "out of range face")

	double := single
	double.DoubleSided = true
	assertVec(t, rl.Vector3{Z: -1}, findGeomOpposingNormal(double, geom.Identity(), up, input, 0), 1e-6)
	assertVec(t, up, findGeomOpposingNormal(double, geom.Identity(), rl.Vector3{Z: -1}, input, 0), 1e-6)

	slanted, err := geom.NewTriMesh([]rl.Vector3{{}, {X: 1, Z: 1}, {Y: 1}}, [][3]uint32{{0, 1, 2}}, nil)
	require.NoError(t, err)
	stretched := geom.TriangleMesh{Mesh: slanted, Scale: rl.Vector3{X: 2, Y: 1, Z: 1}}
	want := rl.Vector3Normalize(rl.Vector3{X: -0.5, Z: 1})
	assertVec(t, want, findGeomOpposingNormal(stretched, geom.Identity(), rl.Vector3{Z: -1}, input, 0), 1e-5)
}

func TestHeightFieldOpposingNormal(t *testing.T) {
	field, err := geom.NewHeightFieldData(2, 2, []int16{0, 0, 1, 1}, nil)
	require.NoError(t, err)
	hf := geom.HeightField{Field: field, HeightScale: 1, RowScale: 2, ColumnScale: 1}
	input := rl.Vector3{Y: 1}

	assert.Equal(t, input, findGeomOpposingNormal(hf, geom.Identity(), rl.Vector3{Z: -1}, input, physics.InvalidFaceIndex))

	want := rl.Vector3Normalize(rl.Vector3{X: -0.5, Z: 1})
	got := findGeomOpposingNormal(hf, geom.Identity(), rl.Vector3{Z: -1}, input, 0)
	assertVec(t, want, got, 1e-5)

	// Matches the normal of the scaled triangle itself.
	assertVec(t, hf.LocalTriangle(0).Normal(), got, 1e-5)
}

func TestConvexOpposingNormal(t *testing.T) {
	hull := geom.ConvexMesh{Mesh: geom.BoxHull(unitBox), Scale: unitBox}
	input := rl.Vector3{Z: 1}
	assert.Equal(t, input, findGeomOpposingNormal(hull, geom.Identity(), rl.Vector3{Z: -1}, input, physics.InvalidFaceIndex))

	pose := geom.NewTransform(rl.Vector3{X: 3}, geom.FromEulerDegrees(rl.Vector3{Z: 90}))
	for i := range hull.Mesh.Polygons {
		local, ok := hull.PolygonNormal(i)
		require.True(t, ok)
		got := findGeomOpposingNormal(hull, pose, rl.Vector3{Z: -1}, input, uint32(i))
		assertVec(t, pose.Rotate(local), got, 1e-6)
		assertUnit(t, got)
	}
}

func TestRoundShapesKeepNormal(t *testing.T) {
	n := rl.Vector3{X: 0.6, Y: 0.8}
	assert.Equal(t, n, findGeomOpposingNormal(geom.Sphere{Radius: 1}, geom.Identity(), rl.Vector3{X: -1}, n, 3))
	assert.Equal(t, n, findGeomOpposingNormal(geom.Capsule{Radius: 1, HalfHeight: 2}, geom.Identity(), rl.Vector3{X: -1}, n, 3))
}
