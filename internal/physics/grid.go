package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"scenequery/internal/geom"
)

// DefaultCellSize is the spatial hash cell edge length.
const DefaultCellSize = 5.0

const (
	// Shapes spanning more cells than this live in the oversized list.
	maxCellsPerShape = 64
	// Queries spanning more cells than this scan every shape instead.
	maxCellsPerQuery = 4096
)

// CellKey is a spatial hash cell coordinate.
type CellKey struct {
	X, Y, Z int
}

func posToCell(pos rl.Vector3, cellSize float32) CellKey {
	return CellKey{
		X: int(math32.Floor(pos.X / cellSize)),
		Y: int(math32.Floor(pos.Y / cellSize)),
		Z: int(math32.Floor(pos.Z / cellSize)),
	}
}

type gridEntry struct {
	cells []CellKey
	slot  int
}

// shapeGrid indexes shapes by the cells their world bounds touch.
type shapeGrid struct {
	cellSize  float32
	cells     map[CellKey][]*Shape
	oversized []*Shape
	entries   map[*Shape]*gridEntry
	all       []*Shape
}

func newShapeGrid(cellSize float32) *shapeGrid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &shapeGrid{
		cellSize: cellSize,
		cells:    make(map[CellKey][]*Shape),
		entries:  make(map[*Shape]*gridEntry),
	}
}

// cellRange returns the cells covered by b. A count above limit means the
// range is too large to walk; count is then limit+1, never the real product.
func (g *shapeGrid) cellRange(b geom.AABB, limit int) (lo, hi CellKey, count int) {
	lo = posToCell(b.Min, g.cellSize)
	hi = posToCell(b.Max, g.cellSize)
	count = 1
	for _, span := range [3][2]int{{lo.X, hi.X}, {lo.Y, hi.Y}, {lo.Z, hi.Z}} {
		if span[1] < span[0] {
			return lo, hi, 0
		}
		n := span[1] - span[0]
		if n < 0 || n >= limit {
			return lo, hi, limit + 1
		}
		count *= n + 1
		if count > limit {
			return lo, hi, limit + 1
		}
	}
	return lo, hi, count
}

func boundsFinite(b geom.AABB) bool {
	return geom.IsFinite(b.Min) && geom.IsFinite(b.Max) &&
		math32.Abs(b.Max.X-b.Min.X) < 1e9 && math32.Abs(b.Max.Y-b.Min.Y) < 1e9 && math32.Abs(b.Max.Z-b.Min.Z) < 1e9
}

func (g *shapeGrid) insert(s *Shape) {
	if _, ok := g.entries[s]; ok {
		g.remove(s)
	}
	e := &gridEntry{slot: len(g.all)}
	g.all = append(g.all, s)
	g.entries[s] = e

	b := s.WorldBounds()
	if !boundsFinite(b) {
		g.oversized = append(g.oversized, s)
		return
	}
	lo, hi, count := g.cellRange(b, maxCellsPerShape)
	if count == 0 || count > maxCellsPerShape {
		g.oversized = append(g.oversized, s)
		return
	}
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for z := lo.Z; z <= hi.Z; z++ {
				key := CellKey{x, y, z}
				g.cells[key] = append(g.cells[key], s)
				e.cells = append(e.cells, key)
			}
		}
	}
}

func (g *shapeGrid) remove(s *Shape) {
	e, ok := g.entries[s]
	if !ok {
		return
	}
	delete(g.entries, s)

	last := len(g.all) - 1
	if e.slot != last {
		moved := g.all[last]
		g.all[e.slot] = moved
		g.entries[moved].slot = e.slot
	}
	g.all = g.all[:last]

	if e.cells == nil {
		g.oversized = removeShape(g.oversized, s)
		return
	}
	for _, key := range e.cells {
		rest := removeShape(g.cells[key], s)
		if len(rest) == 0 {
			delete(g.cells, key)
		} else {
			g.cells[key] = rest
		}
	}
}

func removeShape(list []*Shape, s *Shape) []*Shape {
	for i, other := range list {
		if other == s {
			list[i] = list[len(list)-1]
			return list[:len(list)-1]
		}
	}
	return list
}

// query calls fn once for every shape whose cells overlap bounds, until fn
// returns false. Candidates are coarse; callers run the exact test.
func (g *shapeGrid) query(bounds geom.AABB, fn func(*Shape) bool) {
	var lo, hi CellKey
	count := maxCellsPerQuery + 1
	if boundsFinite(bounds) {
		lo, hi, count = g.cellRange(bounds, maxCellsPerQuery)
	}
	if count > maxCellsPerQuery {
		for _, s := range g.all {
			if !fn(s) {
				return
			}
		}
		return
	}

	for _, s := range g.oversized {
		if !fn(s) {
			return
		}
	}
	visited := make(map[*Shape]struct{})
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for z := lo.Z; z <= hi.Z; z++ {
				for _, s := range g.cells[CellKey{x, y, z}] {
					if _, seen := visited[s]; seen {
						continue
					}
					visited[s] = struct{}{}
					if !fn(s) {
						return
					}
				}
			}
		}
	}
}
