// internal/store/sqlite.go
//
// SQL-backed Store. Each session is one row in `games`, holding the JSON
// encoding of game.Record plus a few columns for inspection (status, tick,
// score). Get rebuilds the session with game.Restore, so a restored game
// keeps drawing the same food positions it would have drawn in memory.
//
// The schema lives in the embedded migrations (see Migrate).

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/snake/internal/game"
)

type sqlStore struct {
	db *sql.DB
}

// NewSQLStore wraps an open, migrated database handle.
func NewSQLStore(db *sql.DB) Store {
	return &sqlStore{db: db}
}

func (s *sqlStore) Save(ctx context.Context, g *game.Game) error {
	rec, err := g.Record()
	if err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", g.ID, err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO games (id, record, status, tick, score, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            record=excluded.record,
            status=excluded.status,
            tick=excluded.tick,
            score=excluded.score,
            updated_at=excluded.updated_at`,
		rec.ID, string(data), string(rec.Status), rec.Tick, rec.Score, now, now,
	)
	if err != nil {
		return fmt.Errorf("save game %s: %w", g.ID, err)
	}
	return nil
}

func (s *sqlStore) Get(ctx context.Context, id string) (*game.Game, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM games WHERE id=?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", id, err)
	}
	var rec game.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	return game.Restore(rec)
}
