// internal/game/snake.go
//
// The snake body: an ordered run of cells, head first.
//
// Invariants (checked after every Advance):
//   - at least one cell;
//   - no cell appears twice;
//   - consecutive cells are one orthogonal step apart.
//
// Membership lookups go through an occupancy set kept in step with the slice.

package game

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// Body is the snake. The zero value is not usable; see newBody.
type Body struct {
	cells    []Cell
	occupied mapset.Set[Cell]
}

// newBody lays out a snake of the given length with its head on start and
// the rest trailing behind it, opposite to the heading.
func newBody(grid Grid, start Cell, length int, heading Direction) (*Body, error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: snake length %d", ErrInvalidConfiguration, length)
	}
	if !heading.Valid() {
		return nil, fmt.Errorf("%w: start direction %s", ErrInvalidConfiguration, heading)
	}
	cells := make([]Cell, 0, length)
	c := start
	for i := 0; i < length; i++ {
		if !grid.Contains(c) {
			return nil, fmt.Errorf("%w: snake segment %s outside %dx%d grid",
				ErrInvalidConfiguration, c, grid.Columns(), grid.Rows())
		}
		cells = append(cells, c)
		c = c.Step(heading.Opposite())
	}
	return bodyFrom(cells)
}

// bodyFrom adopts cells as a body after checking the invariants.
func bodyFrom(cells []Cell) (*Body, error) {
	b := &Body{
		cells:    append([]Cell(nil), cells...),
		occupied: mapset.New[Cell](),
	}
	for _, c := range b.cells {
		b.occupied.Put(c)
	}
	if err := b.verify(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Body) Head() Cell { return b.cells[0] }
func (b *Body) Tail() Cell { return b.cells[len(b.cells)-1] }
func (b *Body) Len() int   { return len(b.cells) }

// Occupies reports whether any segment sits on c.
func (b *Body) Occupies(c Cell) bool { return b.occupied.Has(c) }

// Has makes a Body usable wherever a CellSet is expected.
func (b *Body) Has(c Cell) bool { return b.Occupies(c) }

// Cells returns a copy of the body, head first.
func (b *Body) Cells() []Cell { return append([]Cell(nil), b.cells...) }

// Blocks reports whether moving the head onto c would hit the body. Without
// growth the tail leaves its cell on the same tick, so c == Tail() is free.
func (b *Body) Blocks(c Cell, grow bool) bool {
	if !b.occupied.Has(c) {
		return false
	}
	return grow || c != b.Tail()
}

// isNeck reports whether c is the segment right behind the head.
func (b *Body) isNeck(c Cell) bool {
	return len(b.cells) > 1 && b.cells[1] == c
}

// Advance moves the head one step in d and returns the new head. With grow
// the tail stays put and the body lengthens by one.
//
// Collision checks belong to the caller; a move that breaks the invariants
// panics.
func (b *Body) Advance(d Direction, grow bool) Cell {
	head := b.Head().Step(d)
	if !grow {
		tail := b.Tail()
		b.cells = b.cells[:len(b.cells)-1]
		b.occupied.Remove(tail)
	}
	b.cells = append(b.cells, Cell{})
	copy(b.cells[1:], b.cells)
	b.cells[0] = head
	b.occupied.Put(head)

	if err := b.verify(); err != nil {
		panic(err)
	}
	return head
}

func (b *Body) verify() error {
	if len(b.cells) == 0 {
		return fmt.Errorf("%w: empty snake", ErrInvariantViolation)
	}
	if b.occupied.Size() != len(b.cells) {
		return fmt.Errorf("%w: snake overlaps itself (%d segments, %d distinct cells)",
			ErrInvariantViolation, len(b.cells), b.occupied.Size())
	}
	for i := 1; i < len(b.cells); i++ {
		if !b.cells[i-1].Adjacent(b.cells[i]) {
			return fmt.Errorf("%w: segments %s and %s are not adjacent",
				ErrInvariantViolation, b.cells[i-1], b.cells[i])
		}
	}
	return nil
}
