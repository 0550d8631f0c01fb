package store

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/robalobadob/snake/assets"
	"github.com/robalobadob/snake/internal/game"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// Every pooled connection to :memory: would see its own empty database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	if err := Migrate(context.Background(), db, assets.Migrations()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newGame(t *testing.T) *game.Game {
	t.Helper()
	g, err := game.New(game.Options{Columns: 8, Rows: 8, Start: game.Cell{X: 1, Y: 1}, Direction: game.Right, Seed: 77})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Store { return NewSQLStore(openTestDB(t)) },
	}
	for name, mk := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			st := mk(t)

			if _, err := st.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get(missing) = %v, want ErrNotFound", err)
			}

			g := newGame(t)
			if err := st.Save(ctx, g); err != nil {
				t.Fatal(err)
			}
			_ = g.SetPendingDirection(game.Down)
			g.Tick()
			if err := st.Save(ctx, g); err != nil {
				t.Fatalf("second save: %v", err)
			}

			got, err := st.Get(ctx, g.ID)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got.Snapshot(), g.Snapshot()) {
				t.Fatalf("snapshot mismatch:\n%+v\n%+v", got.Snapshot(), g.Snapshot())
			}
		})
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := Migrate(context.Background(), db, assets.Migrations()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("_migrations has %d rows, want 1", n)
	}
}

func TestSQLStoreResumesFoodSequence(t *testing.T) {
	ctx := context.Background()
	st := NewSQLStore(openTestDB(t))

	live := newGame(t)
	if err := st.Save(ctx, live); err != nil {
		t.Fatal(err)
	}
	restored, err := st.Get(ctx, live.ID)
	if err != nil {
		t.Fatal(err)
	}

	// Walk both copies in lockstep along the same path; any divergence in
	// food placement shows up in the snapshots.
	path := []game.Direction{game.Down, game.Down, game.Right, game.Right, game.Up, game.Right, game.Down, game.Down}
	for i := 0; i < 60; i++ {
		d := path[i%len(path)]
		_ = live.SetPendingDirection(d)
		_ = restored.SetPendingDirection(d)
		if a, b := live.Tick(), restored.Tick(); a != b {
			t.Fatalf("tick %d: %s vs %s", i, a, b)
		}
		if !reflect.DeepEqual(live.Snapshot(), restored.Snapshot()) {
			t.Fatalf("tick %d diverged", i)
		}
	}
}
