// Package spatial provides a cell-based grid for neighbor lookups in a
// bounded arena.
package spatial

// Neighbor holds a nearby creature id with precomputed spatial data.
type Neighbor struct {
	ID     int
	DX, DY float64 // Delta from query origin
	DistSq float64 // Squared distance (avoid sqrt in hot path)
}

// Grid provides O(1) neighbor lookups using a cell-based grid. The
// arena is bounded by walls, so deltas never wrap.
type Grid struct {
	cellSize float64
	cols     int
	rows     int
	width    float64
	height   float64
	cells    [][]entry
}

type entry struct {
	id   int
	x, y float64
}

// NewGrid creates a grid covering the given world size.
func NewGrid(width, height, cellSize float64) *Grid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]entry, cols*rows)
	for i := range cells {
		cells[i] = make([]entry, 0, 8)
	}

	return &Grid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		width:    width,
		height:   height,
		cells:    cells,
	}
}

// Clear removes all entries from the grid.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds a creature id to the grid at the given position.
func (g *Grid) Insert(id int, x, y float64) {
	idx := g.cellIndex(x, y)
	if idx >= 0 && idx < len(g.cells) {
		g.cells[idx] = append(g.cells[idx], entry{id: id, x: x, y: y})
	}
}

// MaxQueryResults caps the number of neighbors returned by queries so
// density spikes cannot cause unbounded work.
const MaxQueryResults = 128

// QueryRadiusInto finds entries within radius and appends to dst, up to
// MaxQueryResults. Returns the updated slice; reuse dst across calls to
// avoid allocations.
func (g *Grid) QueryRadiusInto(dst []Neighbor, x, y, radius float64, exclude int) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1
	centerCol := g.clampCol(int(x / g.cellSize))
	centerRow := g.clampRow(int(y / g.cellSize))
	radiusSq := radius * radius

	for dc := -cellRadius; dc <= cellRadius; dc++ {
		col := centerCol + dc
		if col < 0 || col >= g.cols {
			continue
		}
		for dr := -cellRadius; dr <= cellRadius; dr++ {
			row := centerRow + dr
			if row < 0 || row >= g.rows {
				continue
			}

			for _, e := range g.cells[row*g.cols+col] {
				if e.id == exclude {
					continue
				}
				dx := e.x - x
				dy := e.y - y
				distSq := dx*dx + dy*dy
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{ID: e.id, DX: dx, DY: dy, DistSq: distSq})
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}
	return dst
}

// cellIndex returns the flat index for a world position, clamped to the
// grid bounds.
func (g *Grid) cellIndex(x, y float64) int {
	return g.clampRow(int(y/g.cellSize))*g.cols + g.clampCol(int(x/g.cellSize))
}

func (g *Grid) clampCol(col int) int {
	if col < 0 {
		return 0
	}
	if col >= g.cols {
		return g.cols - 1
	}
	return col
}

func (g *Grid) clampRow(row int) int {
	if row < 0 {
		return 0
	}
	if row >= g.rows {
		return g.rows - 1
	}
	return row
}
