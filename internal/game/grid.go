// internal/game/grid.go
//
// Bounded play field; cells are addressed (x, y) with (0, 0) top-left.

package game

import "fmt"

// Grid is the bounded play field. It is immutable once constructed.
type Grid struct {
	columns int
	rows    int
}

// NewGrid returns a columns×rows grid. Both dimensions must be positive.
func NewGrid(columns, rows int) (Grid, error) {
	if columns <= 0 || rows <= 0 {
		return Grid{}, fmt.Errorf("%w: grid %dx%d", ErrInvalidConfiguration, columns, rows)
	}
	return Grid{columns: columns, rows: rows}, nil
}

func (g Grid) Columns() int { return g.columns }
func (g Grid) Rows() int    { return g.rows }

// Size is the number of cells in the grid.
func (g Grid) Size() int { return g.columns * g.rows }

// Contains reports whether c lies inside the grid.
func (g Grid) Contains(c Cell) bool {
	return c.X >= 0 && c.X < g.columns && c.Y >= 0 && c.Y < g.rows
}

// Cells enumerates every cell once in row-major order.
func (g Grid) Cells() []Cell {
	out := make([]Cell, 0, g.Size())
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.columns; x++ {
			out = append(out, Cell{X: x, Y: y})
		}
	}
	return out
}
