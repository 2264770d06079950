package geom

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

var ErrDegenerateHull = errors.New("degenerate convex hull")

// Plane holds points x with Normal·x = D.
type Plane struct {
	Normal rl.Vector3
	D      float32
}

func (p Plane) Distance(x rl.Vector3) float32 {
	return rl.Vector3DotProduct(p.Normal, x) - p.D
}

// HullPolygon is one face of a hull; Indices wind counter-clockwise seen from outside.
type HullPolygon struct {
	Plane   Plane
	Indices []int
}

type ConvexHull struct {
	Vertices []rl.Vector3
	Polygons []HullPolygon
	Bounds   AABB
	// Edges are unique edge directions, used as separating-axis candidates.
	Edges []rl.Vector3
}

// NewConvexHull builds a hull from vertices and face index lists. Faces must be
// planar and wound counter-clockwise seen from outside.
func NewConvexHull(vertices []rl.Vector3, faces [][]int) (*ConvexHull, error) {
	if len(vertices) < 4 || len(faces) < 4 {
		return nil, fmt.Errorf("%w: %d vertices, %d faces", ErrDegenerateHull, len(vertices), len(faces))
	}
	h := &ConvexHull{
		Vertices: append([]rl.Vector3(nil), vertices...),
		Bounds:   EmptyAABB(),
	}
	for _, v := range vertices {
		h.Bounds = h.Bounds.AddPoint(v)
	}

	type edgeKey struct{ a, b int }
	seen := make(map[edgeKey]bool)

	for fi, face := range faces {
		if len(face) < 3 {
			return nil, fmt.Errorf("%w: face %d has %d indices", ErrDegenerateHull, fi, len(face))
		}
		// Newell's method tolerates slightly non-planar input.
		var n rl.Vector3
		var centroid rl.Vector3
		for i, idx := range face {
			if idx < 0 || idx >= len(vertices) {
				return nil, fmt.Errorf("face %d: vertex index %d out of range", fi, idx)
			}
			cur := vertices[idx]
			next := vertices[face[(i+1)%len(face)]]
			n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
			n.Y += (cur.Z - next.Z) * (cur.X + next.X)
			n.Z += (cur.X - next.X) * (cur.Y + next.Y)
			centroid = rl.Vector3Add(centroid, cur)

			a, b := idx, face[(i+1)%len(face)]
			if a > b {
				a, b = b, a
			}
			if !seen[edgeKey{a, b}] {
				seen[edgeKey{a, b}] = true
				h.Edges = append(h.Edges, SafeNormal(rl.Vector3Subtract(vertices[b], vertices[a]), SmallNumber))
			}
		}
		n = SafeNormal(n, SmallNumber)
		if rl.Vector3LengthSqr(n) == 0 {
			return nil, fmt.Errorf("%w: face %d has zero area", ErrDegenerateHull, fi)
		}
		centroid = rl.Vector3Scale(centroid, 1/float32(len(face)))
		plane := Plane{Normal: n, D: rl.Vector3DotProduct(n, centroid)}
		h.Polygons = append(h.Polygons, HullPolygon{Plane: plane, Indices: append([]int(nil), face...)})
	}

	tolerance := KindaSmallNumber * math32.Max(1, maxComponent(h.Bounds.Extents()))
	for pi, poly := range h.Polygons {
		for vi, v := range h.Vertices {
			if poly.Plane.Distance(v) > tolerance*10 {
				return nil, fmt.Errorf("%w: vertex %d lies outside face %d", ErrDegenerateHull, vi, pi)
			}
		}
	}
	return h, nil
}

// BoxHull returns a hull with the eight corners of a box of the given half extents.
func BoxHull(half rl.Vector3) *ConvexHull {
	hx, hy, hz := half.X, half.Y, half.Z
	verts := []rl.Vector3{
		{X: -hx, Y: -hy, Z: -hz}, {X: hx, Y: -hy, Z: -hz}, {X: hx, Y: hy, Z: -hz}, {X: -hx, Y: hy, Z: -hz},
		{X: -hx, Y: -hy, Z: hz}, {X: hx, Y: -hy, Z: hz}, {X: hx, Y: hy, Z: hz}, {X: -hx, Y: hy, Z: hz},
	}
	faces := [][]int{
		{0, 3, 2, 1}, // -Z
		{4, 5, 6, 7}, // +Z
		{0, 1, 5, 4}, // -Y
		{2, 3, 7, 6}, // +Y
		{0, 4, 7, 3}, // -X
		{1, 2, 6, 5}, // +X
	}
	h, err := NewConvexHull(verts, faces)
	if err != nil {
		panic(err)
	}
	return h
}

// Support returns the scaled vertex furthest along dir.
func (h *ConvexHull) Support(dir, scale rl.Vector3) rl.Vector3 {
	best := float32(-math32.MaxFloat32)
	var out rl.Vector3
	for _, v := range h.Vertices {
		sv := rl.Vector3Multiply(v, scale)
		if d := rl.Vector3DotProduct(sv, dir); d > best {
			best = d
			out = sv
		}
	}
	return out
}

// PolygonNormal returns the shape-space normal of polygon i with scale applied.
func (c ConvexMesh) PolygonNormal(i int) (rl.Vector3, bool) {
	if c.Mesh == nil || i < 0 || i >= len(c.Mesh.Polygons) {
		return rl.Vector3{}, false
	}
	return TransformNormalToShapeSpace(c.Scale, c.Mesh.Polygons[i].Plane.Normal), true
}
