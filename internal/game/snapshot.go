// internal/game/snapshot.go
//
// Read-only view of a session for renderers and the HTTP layer.

package game

// Snapshot is a read-only copy of a session, safe to hand to renderers and
// encode as JSON.
type Snapshot struct {
	ID        string    `json:"id"`
	Columns   int       `json:"columns"`
	Rows      int       `json:"rows"`
	Body      []Cell    `json:"body"`
	Food      *Cell     `json:"food,omitempty"`
	Direction Direction `json:"direction"`
	Status    Status    `json:"status"`
	Cause     Cause     `json:"cause,omitempty"`
	Outcome   Outcome   `json:"outcome,omitempty"`
	Tick      uint64    `json:"tick"`
	Score     int       `json:"score"`
}

// Snapshot copies the current state. Call it between ticks.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		ID:        g.ID,
		Columns:   g.grid.Columns(),
		Rows:      g.grid.Rows(),
		Body:      g.body.Cells(),
		Direction: g.heading,
		Status:    g.status,
		Cause:     g.cause,
		Outcome:   g.last,
		Tick:      g.tick,
		Score:     g.score,
	}
	if c, ok := g.food.Cell(); ok {
		s.Food = &c
	}
	return s
}
