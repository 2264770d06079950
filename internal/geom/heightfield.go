package geom

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HoleMaterial marks a heightfield triangle that does not collide.
const HoleMaterial uint8 = 0x7F

// HeightFieldData is a Rows x Columns grid of samples. Sample (r, c) sits at
// (r*RowScale, c*ColumnScale, height*HeightScale) in shape space. Each cell
// holds two triangles, so face index = 2*(r*(Columns-1)+c)+k.
type HeightFieldData struct {
	Rows, Columns int
	Heights       []int16
	// Materials holds one entry per triangle; HoleMaterial removes the triangle.
	Materials []uint8
}

func NewHeightFieldData(rows, cols int, heights []int16, materials []uint8) (*HeightFieldData, error) {
	if rows < 2 || cols < 2 {
		return nil, fmt.Errorf("heightfield must be at least 2x2, got %dx%d", rows, cols)
	}
	if len(heights) != rows*cols {
		return nil, fmt.Errorf("heightfield has %d samples, want %d", len(heights), rows*cols)
	}
	tris := 2 * (rows - 1) * (cols - 1)
	if len(materials) != 0 && len(materials) != tris {
		return nil, fmt.Errorf("heightfield has %d materials, want %d", len(materials), tris)
	}
	return &HeightFieldData{Rows: rows, Columns: cols, Heights: heights, Materials: materials}, nil
}

func (h *HeightFieldData) TriangleCount() int {
	return 2 * (h.Rows - 1) * (h.Columns - 1)
}

func (h *HeightFieldData) Material(face int) uint8 {
	if face < 0 || face >= len(h.Materials) {
		return 0
	}
	return h.Materials[face]
}

func (h *HeightFieldData) IsHole(face int) bool {
	return len(h.Materials) != 0 && h.Material(face) == HoleMaterial
}

func (h *HeightFieldData) bounds(heightScale, rowScale, colScale float32) AABB {
	lo, hi := int16(math.MaxInt16), int16(math.MinInt16)
	for _, s := range h.Heights {
		lo = min(lo, s)
		hi = max(hi, s)
	}
	zlo, zhi := float32(lo)*heightScale, float32(hi)*heightScale
	if zlo > zhi {
		zlo, zhi = zhi, zlo
	}
	return AABB{
		Min: rl.Vector3{X: 0, Y: 0, Z: zlo},
		Max: rl.Vector3{X: float32(h.Rows-1) * rowScale, Y: float32(h.Columns-1) * colScale, Z: zhi},
	}
}

func (g HeightField) vertex(r, c int) rl.Vector3 {
	s := g.Field.Heights[r*g.Field.Columns+c]
	return rl.Vector3{X: float32(r) * g.RowScale, Y: float32(c) * g.ColumnScale, Z: float32(s) * g.HeightScale}
}

func (g HeightField) TriangleCount() int { return g.Field.TriangleCount() }

// LocalTriangle returns triangle face in shape space. Both triangles of a
// cell face +Z for positive HeightScale.
func (g HeightField) LocalTriangle(face int) Triangle {
	cell := face / 2
	r := cell / (g.Field.Columns - 1)
	c := cell % (g.Field.Columns - 1)
	a := g.vertex(r, c)
	b := g.vertex(r+1, c)
	cc := g.vertex(r, c+1)
	d := g.vertex(r+1, c+1)
	if face%2 == 0 {
		return Triangle{V0: a, V1: b, V2: cc}
	}
	return Triangle{V0: b, V1: d, V2: cc}
}

// QueryTriangles visits non-hole triangles of every cell whose footprint
// overlaps the shape-space box.
func (g HeightField) QueryTriangles(local AABB, fn func(i int) bool) {
	r0 := clampCell(int(math.Floor(float64(local.Min.X/g.RowScale))), g.Field.Rows-1)
	r1 := clampCell(int(math.Floor(float64(local.Max.X/g.RowScale))), g.Field.Rows-1)
	c0 := clampCell(int(math.Floor(float64(local.Min.Y/g.ColumnScale))), g.Field.Columns-1)
	c1 := clampCell(int(math.Floor(float64(local.Max.Y/g.ColumnScale))), g.Field.Columns-1)
	if local.Max.X < 0 || local.Max.Y < 0 ||
		local.Min.X > float32(g.Field.Rows-1)*g.RowScale || local.Min.Y > float32(g.Field.Columns-1)*g.ColumnScale {
		return
	}
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			base := 2 * (r*(g.Field.Columns-1) + c)
			for k := 0; k < 2; k++ {
				face := base + k
				if g.Field.IsHole(face) {
					continue
				}
				if !g.LocalTriangle(face).Bounds().Intersects(local) {
					continue
				}
				if !fn(face) {
					return
				}
			}
		}
	}
}

func clampCell(v, cells int) int {
	if v < 0 {
		return 0
	}
	if v >= cells {
		return cells - 1
	}
	return v
}
