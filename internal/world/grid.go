package world

import (
	"math"
	"slices"

	"github.com/barrage/server/internal/component"
	"github.com/barrage/server/internal/core/ecs"
)

// BoxGrid is a uniform-cell broadphase for axis-aligned boxes. A box is
// filed under every cell it touches; Nearby returns the union of those
// cells' occupants and the caller does the exact overlap test.
// Rebuilt from scratch each collision pass, so there is no Move.
type BoxGrid struct {
	cellSize float32
	cells    map[cellKey][]ecs.EntityID
	seen     map[ecs.EntityID]struct{}
}

type cellKey struct {
	cx int32
	cy int32
}

// DefaultCellSize is used when the configured size is not positive.
const DefaultCellSize = 32

func NewBoxGrid(cellSize float32) *BoxGrid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &BoxGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]ecs.EntityID),
		seen:     make(map[ecs.EntityID]struct{}),
	}
}

func (g *BoxGrid) toCell(v float32) int32 {
	return int32(math.Floor(float64(v / g.cellSize)))
}

// Reset empties the grid, keeping allocated cell slices.
func (g *BoxGrid) Reset() {
	for k, ids := range g.cells {
		g.cells[k] = ids[:0]
	}
}

// Insert files id under every cell overlapped by box.
func (g *BoxGrid) Insert(id ecs.EntityID, box component.AABB) {
	x0, x1 := g.toCell(box.Min.X()), g.toCell(box.Max.X())
	y0, y1 := g.toCell(box.Min.Y()), g.toCell(box.Max.Y())
	for cx := x0; cx <= x1; cx++ {
		for cy := y0; cy <= y1; cy++ {
			k := cellKey{cx: cx, cy: cy}
			g.cells[k] = append(g.cells[k], id)
		}
	}
}

// Nearby returns every id sharing a cell with box, ascending and without
// duplicates.
func (g *BoxGrid) Nearby(box component.AABB) []ecs.EntityID {
	clear(g.seen)
	var result []ecs.EntityID
	x0, x1 := g.toCell(box.Min.X()), g.toCell(box.Max.X())
	y0, y1 := g.toCell(box.Min.Y()), g.toCell(box.Max.Y())
	for cx := x0; cx <= x1; cx++ {
		for cy := y0; cy <= y1; cy++ {
			for _, id := range g.cells[cellKey{cx: cx, cy: cy}] {
				if _, dup := g.seen[id]; dup {
					continue
				}
				g.seen[id] = struct{}{}
				result = append(result, id)
			}
		}
	}
	slices.Sort(result)
	return result
}
