// internal/game/food.go
//
// The single food item and its placement over the free cells.

package game

// CellSet answers membership queries; *Body implements it.
type CellSet interface {
	Has(c Cell) bool
}

// Food is the single active food item. It is absent once the board is full.
type Food struct {
	cell    Cell
	present bool
}

// Cell returns the food position and whether any food is on the board.
func (f *Food) Cell() (Cell, bool) { return f.cell, f.present }

// Respawn places the food on a cell chosen uniformly from the grid cells not
// in occupied. It returns false, leaving the food absent, when no cell is
// free.
func (f *Food) Respawn(grid Grid, occupied CellSet, rng Rand) bool {
	var free []Cell
	for _, c := range grid.Cells() {
		if !occupied.Has(c) {
			free = append(free, c)
		}
	}
	if len(free) == 0 {
		f.cell, f.present = Cell{}, false
		return false
	}
	f.cell, f.present = free[rng.Intn(len(free))], true
	return true
}
