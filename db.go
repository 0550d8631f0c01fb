// db.go
//
// Database bootstrap for the SQLite session store:
//   - opens the file with WAL journaling, a busy timeout and foreign keys;
//   - applies the embedded migrations (assets/sql) before first use.

package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/robalobadob/snake/assets"
	"github.com/robalobadob/snake/internal/store"
)

// openDB opens (and creates if missing) the SQLite database at dsn and
// brings its schema up to date.
func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	// Ensure directory exists for ./data/snake.db, etc.
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dsn, err)
	}
	if err := store.Migrate(ctx, db, assets.Migrations()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
