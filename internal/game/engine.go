// internal/game/engine.go
//
// Simulation engine for a single snake session.
// Responsibilities:
//   - Build a session from Options (grid, start layout, heading, seed).
//   - Buffer the latest requested direction until the next tick.
//   - Advance one tick: wall check, food check, self-collision, move, respawn.
//   - Track state transitions: running → game_over{wall|self} | won.
//
// Notes:
//   - Terminal outcomes are ordinary return values of Tick, never errors.
//   - Ticking a finished game re-reports its terminal outcome unchanged.
//   - Tick must not run concurrently with itself; SetPendingDirection may.

package game

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const defaultLength = 1

// Options configures a new session.
type Options struct {
	Columns   int
	Rows      int
	Start     Cell      // head position
	Length    int       // initial body length; 0 means 1
	Direction Direction // initial heading; DirNone means Right
	Seed      uint64    // seed for the default random source; 0 picks one from the clock
	Rand      Rand      // optional source overriding Seed
}

// Game holds the state of a single snake session.
type Game struct {
	ID string

	grid    Grid
	body    *Body
	food    Food
	heading Direction
	pending atomic.Uint32 // Direction awaiting the next tick; 0 when empty
	rng     Rand
	seed    uint64

	status Status
	cause  Cause
	last   Outcome
	tick   uint64
	score  int
}

// New constructs a running session and places the first food item. A grid
// already filled by the initial snake starts out won.
func New(opts Options) (*Game, error) {
	grid, err := NewGrid(opts.Columns, opts.Rows)
	if err != nil {
		return nil, err
	}
	heading := opts.Direction
	if heading == DirNone {
		heading = Right
	}
	length := opts.Length
	if length == 0 {
		length = defaultLength
	}
	body, err := newBody(grid, opts.Start, length, heading)
	if err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := opts.Rand
	if rng == nil {
		rng = NewSource(seed)
	}

	g := &Game{
		ID:      uuid.NewString(),
		grid:    grid,
		body:    body,
		heading: heading,
		rng:     rng,
		seed:    seed,
		status:  StatusRunning,
	}
	if !g.food.Respawn(grid, body, rng) {
		g.finish(StatusWon, CauseNone, BoardFull)
	}
	return g, nil
}

// SetPendingDirection records d for the next tick, replacing any earlier
// request. Values other than up/down/left/right are rejected.
func (g *Game) SetPendingDirection(d Direction) error {
	if !d.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidDirection, d)
	}
	g.pending.Store(uint32(d))
	return nil
}

// Tick advances the session by one step and reports what happened.
func (g *Game) Tick() Outcome {
	if g.status != StatusRunning {
		return g.last
	}
	g.tick++

	if d := Direction(g.pending.Swap(uint32(DirNone))); d != DirNone {
		g.turn(d)
	}

	next := g.body.Head().Step(g.heading)
	if !g.grid.Contains(next) {
		return g.finish(StatusGameOver, CauseWall, HitWall)
	}

	food, ok := g.food.Cell()
	eat := ok && food == next
	if g.body.Blocks(next, eat) {
		return g.finish(StatusGameOver, CauseSelf, HitSelf)
	}

	g.body.Advance(g.heading, eat)
	if !eat {
		g.last = Moved
		return Moved
	}

	g.score++
	if !g.food.Respawn(g.grid, g.body, g.rng) {
		return g.finish(StatusWon, CauseNone, BoardFull)
	}
	g.last = Ate
	return Ate
}

// turn changes heading unless d would send the head back onto the neck.
func (g *Game) turn(d Direction) {
	if d == g.heading {
		return
	}
	if g.body.isNeck(g.body.Head().Step(d)) {
		return
	}
	g.heading = d
}

func (g *Game) finish(s Status, c Cause, o Outcome) Outcome {
	g.status, g.cause, g.last = s, c, o
	return o
}

// Finished reports whether the session reached a terminal state.
func (g *Game) Finished() bool { return g.status != StatusRunning }

func (g *Game) Status() Status       { return g.status }
func (g *Game) Grid() Grid           { return g.grid }
func (g *Game) Heading() Direction   { return g.heading }
func (g *Game) Seed() uint64         { return g.seed }
func (g *Game) LastOutcome() Outcome { return g.last }
