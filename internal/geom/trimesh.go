package geom

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// bvhNode is a node in the bounding volume hierarchy. Leaves cover the
// contiguous triangle range [first, first+count).
type bvhNode struct {
	Bounds      AABB
	Left, Right *bvhNode
	first       int
	count       int
}

func (n *bvhNode) leaf() bool { return n.Left == nil && n.Right == nil }

// TriMesh is cooked triangle data. Triangles are stored in BVH leaf order;
// Remap maps each stored (internal) index back to the caller's original index.
type TriMesh struct {
	Vertices  []rl.Vector3
	Triangles [][3]uint32
	Remap     []uint32
	// Materials holds one material slot per internal triangle, or is empty.
	Materials []uint16
	root      *bvhNode
}

const (
	bvhLeafSize = 4
	bvhMaxDepth = 20
)

// NewTriMesh cooks vertices and triangle indices into a BVH-ordered mesh.
// materials, when non-empty, gives a material slot per original triangle.
func NewTriMesh(vertices []rl.Vector3, indices [][3]uint32, materials []uint16) (*TriMesh, error) {
	if len(indices) == 0 {
		return nil, fmt.Errorf("triangle mesh has no triangles")
	}
	if len(materials) != 0 && len(materials) != len(indices) {
		return nil, fmt.Errorf("triangle mesh has %d material slots for %d triangles", len(materials), len(indices))
	}
	for i, tri := range indices {
		for _, idx := range tri {
			if int(idx) >= len(vertices) {
				return nil, fmt.Errorf("triangle %d: vertex index %d out of range", i, idx)
			}
		}
	}

	m := &TriMesh{Vertices: append([]rl.Vector3(nil), vertices...)}

	order := make([]int, len(indices))
	for i := range order {
		order[i] = i
	}
	centroids := make([]rl.Vector3, len(indices))
	for i, tri := range indices {
		centroids[i] = m.triangleFromIndices(tri).Centroid()
	}
	m.root = m.buildBVHNode(indices, centroids, order, 0, 0)

	m.Triangles = make([][3]uint32, len(order))
	m.Remap = make([]uint32, len(order))
	if len(materials) != 0 {
		m.Materials = make([]uint16, len(order))
	}
	for internal, original := range order {
		m.Triangles[internal] = indices[original]
		m.Remap[internal] = uint32(original)
		if m.Materials != nil {
			m.Materials[internal] = materials[original]
		}
	}
	return m, nil
}

func (m *TriMesh) triangleFromIndices(tri [3]uint32) Triangle {
	return Triangle{V0: m.Vertices[tri[0]], V1: m.Vertices[tri[1]], V2: m.Vertices[tri[2]]}
}

func (m *TriMesh) buildBVHNode(indices [][3]uint32, centroids []rl.Vector3, order []int, offset, depth int) *bvhNode {
	node := &bvhNode{first: offset, count: len(order)}

	node.Bounds = EmptyAABB()
	for _, idx := range order {
		node.Bounds = node.Bounds.Union(m.triangleFromIndices(indices[idx]).Bounds())
	}

	if len(order) <= bvhLeafSize || depth > bvhMaxDepth {
		return node
	}

	// Split on the longest axis around the mean centroid
	size := rl.Vector3Subtract(node.Bounds.Max, node.Bounds.Min)
	axis := 0
	if size.Y > size.X {
		axis = 1
	}
	if size.Z > Axis(size, axis) {
		axis = 2
	}

	mid := partitionTriangles(centroids, order, axis)
	if mid == 0 || mid == len(order) {
		return node
	}

	node.Left = m.buildBVHNode(indices, centroids, order[:mid], offset, depth+1)
	node.Right = m.buildBVHNode(indices, centroids, order[mid:], offset+mid, depth+1)
	return node
}

func partitionTriangles(centroids []rl.Vector3, order []int, axis int) int {
	center := float32(0)
	for _, idx := range order {
		center += Axis(centroids[idx], axis)
	}
	center /= float32(len(order))

	left := 0
	right := len(order) - 1
	for left <= right {
		if Axis(centroids[order[left]], axis) < center {
			left++
		} else {
			order[left], order[right] = order[right], order[left]
			right--
		}
	}
	return left
}

func (m *TriMesh) TriangleCount() int { return len(m.Triangles) }

// Triangle returns internal triangle i in unscaled mesh space.
func (m *TriMesh) Triangle(i int) Triangle {
	return m.triangleFromIndices(m.Triangles[i])
}

func (m *TriMesh) Bounds() AABB {
	if m.root == nil {
		return AABB{}
	}
	return m.root.Bounds
}

// OriginalIndex maps an internal triangle index to the caller's index.
func (m *TriMesh) OriginalIndex(internal uint32) (uint32, bool) {
	if int(internal) >= len(m.Remap) {
		return 0, false
	}
	return m.Remap[internal], true
}

// Query calls fn with every internal triangle whose leaf overlaps query
// (unscaled mesh space) until fn returns false.
func (m *TriMesh) Query(query AABB, fn func(i int) bool) {
	m.queryBVH(m.root, query, fn)
}

func (m *TriMesh) queryBVH(node *bvhNode, query AABB, fn func(i int) bool) bool {
	if node == nil || !node.Bounds.Intersects(query) {
		return true
	}
	if node.leaf() {
		for i := node.first; i < node.first+node.count; i++ {
			if !fn(i) {
				return false
			}
		}
		return true
	}
	return m.queryBVH(node.Left, query, fn) && m.queryBVH(node.Right, query, fn)
}

// LocalTriangle returns internal triangle i in shape space (scale applied).
func (g TriangleMesh) LocalTriangle(i int) Triangle {
	return g.Mesh.Triangle(i).Scale(g.Scale)
}

func (g TriangleMesh) TriangleCount() int { return g.Mesh.TriangleCount() }

// QueryTriangles visits triangles overlapping a shape-space box.
func (g TriangleMesh) QueryTriangles(local AABB, fn func(i int) bool) {
	inv := rl.Vector3{X: 1 / g.Scale.X, Y: 1 / g.Scale.Y, Z: 1 / g.Scale.Z}
	g.Mesh.Query(local.Scale(inv), fn)
}

// TriangleSource is implemented by the mesh-like geometries.
type TriangleSource interface {
	Geometry
	TriangleCount() int
	LocalTriangle(i int) Triangle
	QueryTriangles(local AABB, fn func(i int) bool)
}

var (
	_ TriangleSource = TriangleMesh{}
	_ TriangleSource = HeightField{}
)
