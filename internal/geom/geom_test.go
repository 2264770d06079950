package geom

import (
	"testing"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

func near(a, b float32) bool {
	return math32.Abs(a-b) < 1e-4
}

func nearVec(a, b rl.Vector3) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}

func TestAABBRayIntersect(t *testing.T) {
	box := NewAABBFromCenter(rl.Vector3{}, rl.Vector3{X: 2, Y: 2, Z: 2})

	tests := []struct {
		name       string
		origin     rl.Vector3
		dir        rl.Vector3
		wantOK     bool
		wantT      float32
		wantNormal rl.Vector3
		wantInside bool
	}{
		{"hit from +X", rl.Vector3{X: 5}, rl.Vector3{X: -1}, true, 4, rl.Vector3{X: 1}, false},
		{"hit from -Z", rl.Vector3{Z: -3}, rl.Vector3{Z: 1}, true, 2, rl.Vector3{Z: -1}, false},
		{"miss parallel", rl.Vector3{X: 5, Y: 3}, rl.Vector3{X: -1}, false, 0, rl.Vector3{}, false},
		{"too short", rl.Vector3{X: 10}, rl.Vector3{X: -1}, false, 0, rl.Vector3{}, false},
		{"inside", rl.Vector3{}, rl.Vector3{Y: 1}, true, 0, rl.Vector3{Y: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hitT, n, inside, ok := box.RayIntersect(tt.origin, tt.dir, 5)
			if ok != tt.wantOK {
				t.Fatalf("Expected ok=%v, got %v", tt.wantOK, ok)
			}
			if !ok {
				return
			}
			if !near(hitT, tt.wantT) {
				t.Errorf("Expected t=%v, got %v", tt.wantT, hitT)
			}
			if !nearVec(n, tt.wantNormal) {
				t.Errorf("Expected normal %v, got %v", tt.wantNormal, n)
			}
			if inside != tt.wantInside {
				t.Errorf("Expected inside=%v, got %v", tt.wantInside, inside)
			}
		})
	}
}

func TestAABBTransformRotated(t *testing.T) {
	box := Box{HalfExtents: rl.Vector3{X: 2, Y: 1, Z: 1}}
	pose := NewTransform(rl.Vector3{X: 10}, rl.QuaternionFromAxisAngle(rl.Vector3{Z: 1}, math32.Pi/2))
	b := WorldBounds(box, pose)
	if !nearVec(b.Min, rl.Vector3{X: 9, Y: -2, Z: -1}) || !nearVec(b.Max, rl.Vector3{X: 11, Y: 2, Z: 1}) {
		t.Errorf("Unexpected bounds %v", b)
	}
}

func TestAABBResolve(t *testing.T) {
	a := NewAABBFromCenter(rl.Vector3{X: 0.9}, rl.Vector3{X: 1, Y: 1, Z: 1})
	b := NewAABBFromCenter(rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})
	mtv := a.Resolve(b)
	if !nearVec(mtv, rl.Vector3{X: 0.1}) {
		t.Errorf("Expected push of 0.1 along +X, got %v", mtv)
	}
	if got := NewAABBFromCenter(rl.Vector3{X: 5}, rl.Vector3{X: 1, Y: 1, Z: 1}).Resolve(b); got != rl.Vector3Zero() {
		t.Errorf("Expected zero vector for separated boxes, got %v", got)
	}
}

func TestOBBResolvePushesAwayFromB(t *testing.T) {
	a := NewOBB(Translation(rl.Vector3{X: 1.5}), rl.Vector3{X: 1, Y: 1, Z: 1})
	b := NewOBB(Identity(), rl.Vector3{X: 1, Y: 1, Z: 1})
	if !a.IntersectsOBB(b) {
		t.Fatal("Expected overlap")
	}
	mtv := a.ResolveOBB(b)
	if !nearVec(mtv, rl.Vector3{X: 0.5}) {
		t.Errorf("Expected MTV (0.5,0,0), got %v", mtv)
	}
}

func TestOBBIntersectsSphere(t *testing.T) {
	o := NewOBB(NewTransform(rl.Vector3{}, rl.QuaternionFromAxisAngle(rl.Vector3{Z: 1}, math32.Pi/4)), rl.Vector3{X: 1, Y: 1, Z: 1})
	if !o.IntersectsSphere(rl.Vector3{X: 1.5}, 0.2) {
		t.Error("Expected rotated corner to reach the sphere")
	}
	if o.IntersectsSphere(rl.Vector3{X: 1.5, Y: 1.5}, 0.2) {
		t.Error("Expected sphere beside the rotated face to miss")
	}
}

func TestTriangleRayIntersectCulling(t *testing.T) {
	tri := Triangle{V0: rl.Vector3{}, V1: rl.Vector3{X: 1}, V2: rl.Vector3{Y: 1}}
	if n := tri.Normal(); !nearVec(n, Up) {
		t.Fatalf("Expected +Z normal, got %v", n)
	}

	if hitT, _, ok := tri.RayIntersect(rl.Vector3{X: 0.2, Y: 0.2, Z: 2}, rl.Vector3{Z: -1}, 10, false); !ok || !near(hitT, 2) {
		t.Errorf("Expected front face hit at 2, got %v (ok=%v)", hitT, ok)
	}
	if _, back, ok := tri.RayIntersect(rl.Vector3{X: 0.2, Y: 0.2, Z: -2}, rl.Vector3{Z: 1}, 10, false); ok || !back {
		t.Error("Expected back face to be culled")
	}
	if _, back, ok := tri.RayIntersect(rl.Vector3{X: 0.2, Y: 0.2, Z: -2}, rl.Vector3{Z: 1}, 10, true); !ok || !back {
		t.Error("Expected two-sided test to hit back face")
	}
}

func TestTriangleClosestPoint(t *testing.T) {
	tri := Triangle{V0: rl.Vector3{}, V1: rl.Vector3{X: 2}, V2: rl.Vector3{Y: 2}}
	tests := []struct {
		p, want rl.Vector3
	}{
		{rl.Vector3{X: 0.5, Y: 0.5, Z: 3}, rl.Vector3{X: 0.5, Y: 0.5}},
		{rl.Vector3{X: -1, Y: -1}, rl.Vector3{}},
		{rl.Vector3{X: 1, Y: -1}, rl.Vector3{X: 1}},
		{rl.Vector3{X: 3, Y: 3}, rl.Vector3{X: 1, Y: 1}},
	}
	for _, tt := range tests {
		if got := tri.ClosestPoint(tt.p); !nearVec(got, tt.want) {
			t.Errorf("ClosestPoint(%v): expected %v, got %v", tt.p, tt.want, got)
		}
	}
}

func TestBoxHullPlanesPointOutward(t *testing.T) {
	h := BoxHull(rl.Vector3{X: 1, Y: 2, Z: 3})
	if len(h.Polygons) != 6 {
		t.Fatalf("Expected 6 polygons, got %d", len(h.Polygons))
	}
	for i, p := range h.Polygons {
		if p.Plane.Distance(rl.Vector3{}) >= 0 {
			t.Errorf("Polygon %d: origin should be behind plane %v", i, p.Plane)
		}
	}
	if !nearVec(h.Polygons[5].Plane.Normal, rl.Vector3{X: 1}) || !near(h.Polygons[5].Plane.D, 1) {
		t.Errorf("Expected +X face at distance 1, got %v", h.Polygons[5].Plane)
	}
}

func TestConvexHullRejectsConcave(t *testing.T) {
	verts := []rl.Vector3{{X: 0}, {X: 1}, {Y: 1}, {Z: 1}}
	faces := [][]int{{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {0, 3, 2}}
	if _, err := NewConvexHull(verts, faces); err != nil {
		t.Fatalf("Expected tetrahedron to be accepted, got %v", err)
	}
	flipped := [][]int{{0, 1, 2}, {0, 1, 3}, {1, 2, 3}, {0, 3, 2}}
	if _, err := NewConvexHull(verts, flipped); err == nil {
		t.Error("Expected inconsistent winding to be rejected")
	}
}

func TestConvexPolygonNormalNonUniformScale(t *testing.T) {
	c := ConvexMesh{Mesh: BoxHull(rl.Vector3{X: 1, Y: 1, Z: 1}), Scale: rl.Vector3{X: 2, Y: 1, Z: 1}}
	n, ok := c.PolygonNormal(5)
	if !ok || !nearVec(n, rl.Vector3{X: 1}) {
		t.Errorf("Expected +X normal, got %v (ok=%v)", n, ok)
	}
	if _, ok := c.PolygonNormal(99); ok {
		t.Error("Expected out of range polygon to fail")
	}
}

func gridMesh(t *testing.T, n int) *TriMesh {
	t.Helper()
	var verts []rl.Vector3
	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			verts = append(verts, rl.Vector3{X: float32(x), Y: float32(y)})
		}
	}
	var idx [][3]uint32
	var mats []uint16
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			a := uint32(y*(n+1) + x)
			b := a + 1
			c := a + uint32(n+1)
			d := c + 1
			idx = append(idx, [3]uint32{a, b, c}, [3]uint32{b, d, c})
			mats = append(mats, uint16(len(mats)%3), uint16((len(mats)+1)%3))
		}
	}
	m, err := NewTriMesh(verts, idx, mats)
	if err != nil {
		t.Fatalf("NewTriMesh: %v", err)
	}
	return m
}

func TestTriMeshRemapIsPermutation(t *testing.T) {
	m := gridMesh(t, 8)
	if m.TriangleCount() != 128 {
		t.Fatalf("Expected 128 triangles, got %d", m.TriangleCount())
	}
	seen := make(map[uint32]bool)
	for i := range m.Remap {
		orig, ok := m.OriginalIndex(uint32(i))
		if !ok {
			t.Fatalf("OriginalIndex(%d) failed", i)
		}
		if seen[orig] {
			t.Fatalf("Original index %d appears twice", orig)
		}
		seen[orig] = true
	}
	if _, ok := m.OriginalIndex(1000); ok {
		t.Error("Expected out-of-range internal index to fail")
	}
}

func TestTriMeshQueryFindsLocalTriangles(t *testing.T) {
	m := gridMesh(t, 8)
	query := NewAABBFromCenter(rl.Vector3{X: 2.5, Y: 2.5}, rl.Vector3{X: 0.2, Y: 0.2, Z: 1})
	found := 0
	m.Query(query, func(i int) bool {
		if m.Triangle(i).Bounds().Intersects(query) {
			found++
		}
		return true
	})
	if found != 2 {
		t.Errorf("Expected 2 triangles in the cell, got %d", found)
	}
}

func TestHeightFieldFaceLayout(t *testing.T) {
	data, err := NewHeightFieldData(3, 3, []int16{0, 0, 0, 0, 10, 0, 0, 0, 0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	hf := HeightField{Field: data, HeightScale: 0.1, RowScale: 1, ColumnScale: 1}
	if hf.TriangleCount() != 8 {
		t.Fatalf("Expected 8 triangles, got %d", hf.TriangleCount())
	}
	for face := 0; face < hf.TriangleCount(); face++ {
		if n := hf.LocalTriangle(face).Normal(); n.Z <= 0 {
			t.Errorf("Face %d normal %v should face up", face, n)
		}
	}
	// Cell (1,1) is faces 6 and 7
	tri := hf.LocalTriangle(6)
	if !nearVec(tri.V0, rl.Vector3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("Expected face 6 to start at the raised sample, got %v", tri.V0)
	}
}

func TestHeightFieldHolesSkipped(t *testing.T) {
	mats := []uint8{0, HoleMaterial}
	data, err := NewHeightFieldData(2, 2, []int16{0, 0, 0, 0}, mats)
	if err != nil {
		t.Fatal(err)
	}
	hf := HeightField{Field: data, HeightScale: 1, RowScale: 1, ColumnScale: 1}
	var faces []int
	hf.QueryTriangles(hf.LocalBounds().Expand(1), func(i int) bool {
		faces = append(faces, i)
		return true
	})
	if len(faces) != 1 || faces[0] != 0 {
		t.Errorf("Expected only face 0, got %v", faces)
	}
}

func TestInflate(t *testing.T) {
	if s := Inflate(Sphere{Radius: 1}, 0.25).(Sphere); !near(s.Radius, 1.25) {
		t.Errorf("Expected radius 1.25, got %v", s.Radius)
	}
	if b := Inflate(Box{HalfExtents: rl.Vector3{X: 1, Y: 2, Z: 3}}, 0.5).(Box); !nearVec(b.HalfExtents, rl.Vector3{X: 1.5, Y: 2.5, Z: 3.5}) {
		t.Errorf("Unexpected inflated box %v", b.HalfExtents)
	}
	c := Inflate(ConvexMesh{Mesh: BoxHull(rl.Vector3{X: 1, Y: 1, Z: 1}), Scale: rl.Vector3{X: 1, Y: 1, Z: 1}}, 1).(ConvexMesh)
	if !nearVec(c.Scale, rl.Vector3{X: 2, Y: 2, Z: 2}) {
		t.Errorf("Expected convex scale 2, got %v", c.Scale)
	}
}

func TestTransformNormalToShapeSpace(t *testing.T) {
	n := SafeNormal(rl.Vector3{X: 1, Y: 1}, SmallNumber)
	got := TransformNormalToShapeSpace(rl.Vector3{X: 2, Y: 1, Z: 1}, n)
	if !IsNormalized(got) || !(got.Y > got.X) {
		t.Errorf("Expected normal tilted toward Y, got %v", got)
	}
	if got := TransformNormalToShapeSpace(rl.Vector3{X: 3, Y: 3, Z: 3}, n); got != n {
		t.Errorf("Uniform scale should not change the normal, got %v", got)
	}
}
