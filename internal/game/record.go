// internal/game/record.go
//
// Persisted form of a session.
//
// Contract:
//   - Record captures grid, body, food, heading, pending direction, state
//     and the generator state of the default Source.
//   - Restore re-checks every invariant a live session maintains and
//     rejects a record that breaks one with ErrInvariantViolation:
//     body shape, food off the body, food present exactly while the board
//     has free cells, won exactly when the body fills the board, and a
//     status/cause/outcome triple that Tick can produce.
//   - A restored session continues with the same food sequence.

package game

import (
	"encoding"
	"fmt"
)

// Record is the persisted form of a session. RandState carries the
// generator state when the session uses the default Source.
type Record struct {
	ID        string    `json:"id"`
	Columns   int       `json:"columns"`
	Rows      int       `json:"rows"`
	Body      []Cell    `json:"body"`
	Food      *Cell     `json:"food,omitempty"`
	Direction Direction `json:"direction"`
	Pending   Direction `json:"pending,omitempty"`
	Status    Status    `json:"status"`
	Cause     Cause     `json:"cause,omitempty"`
	Outcome   Outcome   `json:"outcome,omitempty"`
	Tick      uint64    `json:"tick"`
	Score     int       `json:"score"`
	Seed      uint64    `json:"seed"`
	RandState []byte    `json:"randState,omitempty"`
}

// Record captures everything needed to resume the session later.
func (g *Game) Record() (Record, error) {
	rec := Record{
		ID:        g.ID,
		Columns:   g.grid.Columns(),
		Rows:      g.grid.Rows(),
		Body:      g.body.Cells(),
		Direction: g.heading,
		Pending:   Direction(g.pending.Load()),
		Status:    g.status,
		Cause:     g.cause,
		Outcome:   g.last,
		Tick:      g.tick,
		Score:     g.score,
		Seed:      g.seed,
	}
	if c, ok := g.food.Cell(); ok {
		rec.Food = &c
	}
	if m, ok := g.rng.(encoding.BinaryMarshaler); ok {
		state, err := m.MarshalBinary()
		if err != nil {
			return Record{}, fmt.Errorf("marshal rng: %w", err)
		}
		rec.RandState = state
	}
	return rec, nil
}

// Restore rebuilds a session from a Record. A record without RandState
// resumes from a fresh generator seeded with Seed.
func Restore(rec Record) (*Game, error) {
	grid, err := NewGrid(rec.Columns, rec.Rows)
	if err != nil {
		return nil, err
	}
	if len(rec.Body) == 0 {
		return nil, fmt.Errorf("%w: record %s has no body", ErrInvariantViolation, rec.ID)
	}
	for _, c := range rec.Body {
		if !grid.Contains(c) {
			return nil, fmt.Errorf("%w: segment %s outside grid", ErrInvariantViolation, c)
		}
	}
	body, err := bodyFrom(rec.Body)
	if err != nil {
		return nil, err
	}
	if !rec.Direction.Valid() {
		return nil, fmt.Errorf("%w: heading %s", ErrInvariantViolation, rec.Direction)
	}
	if rec.Pending != DirNone && !rec.Pending.Valid() {
		return nil, fmt.Errorf("%w: pending %s", ErrInvariantViolation, rec.Pending)
	}

	if err := checkState(rec.Status, rec.Cause, rec.Outcome); err != nil {
		return nil, err
	}

	g := &Game{
		ID:      rec.ID,
		grid:    grid,
		body:    body,
		heading: rec.Direction,
		seed:    rec.Seed,
		status:  rec.Status,
		cause:   rec.Cause,
		last:    rec.Outcome,
		tick:    rec.Tick,
		score:   rec.Score,
	}
	full := body.Len() == grid.Size()
	switch {
	case full != (rec.Status == StatusWon):
		return nil, fmt.Errorf("%w: status %s with %d of %d cells", ErrInvariantViolation,
			rec.Status, body.Len(), grid.Size())
	case full && rec.Food != nil:
		return nil, fmt.Errorf("%w: food on a full board", ErrInvariantViolation)
	case !full && rec.Food == nil:
		return nil, fmt.Errorf("%w: no food with free cells left", ErrInvariantViolation)
	}
	if rec.Food != nil {
		if !grid.Contains(*rec.Food) || body.Occupies(*rec.Food) {
			return nil, fmt.Errorf("%w: food at %s", ErrInvariantViolation, *rec.Food)
		}
		g.food = Food{cell: *rec.Food, present: true}
	}
	g.pending.Store(uint32(rec.Pending))

	src := NewSource(rec.Seed)
	if len(rec.RandState) > 0 {
		if err := src.UnmarshalBinary(rec.RandState); err != nil {
			return nil, fmt.Errorf("restore rng: %w", err)
		}
	}
	g.rng = src
	return g, nil
}

// checkState accepts only the status/cause/outcome combinations Tick
// produces.
func checkState(s Status, c Cause, o Outcome) error {
	ok := false
	switch s {
	case StatusRunning:
		ok = c == CauseNone && (o == "" || o == Moved || o == Ate)
	case StatusGameOver:
		ok = (c == CauseWall && o == HitWall) || (c == CauseSelf && o == HitSelf)
	case StatusWon:
		ok = c == CauseNone && o == BoardFull
	default:
		return fmt.Errorf("%w: status %q", ErrInvariantViolation, s)
	}
	if !ok {
		return fmt.Errorf("%w: status %s with cause %q and outcome %q", ErrInvariantViolation, s, c, o)
	}
	return nil
}
