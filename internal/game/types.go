// internal/game/types.go
//
// Core type definitions for the snake simulation.
// Defines:
//   - Cell: a grid coordinate.
//   - Direction: one of the four orthogonal headings.
//   - Outcome: the classification of a single tick.
//   - Status/Cause: the session state machine (running → game_over | won).

package game

import (
	"fmt"
	"strings"
)

// Cell is a grid coordinate. x grows to the right, y grows downwards.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Step returns the neighbouring cell in direction d.
func (c Cell) Step(d Direction) Cell {
	delta := d.Delta()
	return Cell{X: c.X + delta.X, Y: c.Y + delta.Y}
}

// Adjacent reports whether o is exactly one orthogonal step away from c.
func (c Cell) Adjacent(o Cell) bool {
	return abs(c.X-o.X)+abs(c.Y-o.Y) == 1
}

func (c Cell) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// Direction is a snake heading. The zero value means "no direction" and is
// used for an empty pending-input slot.
type Direction uint8

const (
	DirNone Direction = iota
	Up
	Down
	Left
	Right
)

var deltas = [...]Cell{
	Up:    {X: 0, Y: -1},
	Down:  {X: 0, Y: 1},
	Left:  {X: -1, Y: 0},
	Right: {X: 1, Y: 0},
}

var directionNames = [...]string{
	Up:    "up",
	Down:  "down",
	Left:  "left",
	Right: "right",
}

// Valid reports whether d is one of the four headings.
func (d Direction) Valid() bool { return d >= Up && d <= Right }

// Delta returns the unit step for d, or the zero cell for an invalid value.
func (d Direction) Delta() Cell {
	if !d.Valid() {
		return Cell{}
	}
	return deltas[d]
}

// Opposite returns the reverse heading.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return DirNone
}

func (d Direction) String() string {
	if !d.Valid() {
		if d == DirNone {
			return "none"
		}
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
	return directionNames[d]
}

// ParseDirection maps "up", "down", "left" or "right" (case-insensitive) to
// a Direction.
func ParseDirection(s string) (Direction, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := Up; d <= Right; d++ {
		if directionNames[d] == name {
			return d, nil
		}
	}
	return DirNone, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// MarshalText encodes a heading by name; DirNone encodes as the empty string.
func (d Direction) MarshalText() ([]byte, error) {
	if d == DirNone {
		return []byte{}, nil
	}
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, uint8(d))
	}
	return []byte(directionNames[d]), nil
}

// UnmarshalText is the inverse of MarshalText.
func (d *Direction) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = DirNone
		return nil
	}
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Outcome classifies a single tick.
type Outcome string

const (
	Moved     Outcome = "moved"
	Ate       Outcome = "ate"
	HitWall   Outcome = "hit_wall"
	HitSelf   Outcome = "hit_self"
	BoardFull Outcome = "board_full"
)

// Terminal reports whether o ends the session.
func (o Outcome) Terminal() bool {
	return o == HitWall || o == HitSelf || o == BoardFull
}

// Status is the coarse session state.
type Status string

const (
	StatusRunning  Status = "running"
	StatusGameOver Status = "game_over"
	StatusWon      Status = "won"
)

// Cause explains a game_over status.
type Cause string

const (
	CauseNone Cause = ""
	CauseWall Cause = "wall"
	CauseSelf Cause = "self"
)

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
