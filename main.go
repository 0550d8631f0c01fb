package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/snake/internal/config"
	"github.com/robalobadob/snake/internal/httpserver"
	"github.com/robalobadob/snake/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("SNAKE_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	st, closeStore, err := openStore(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Server.Store).Msg("failed to open store")
	}
	defer closeStore()

	srv := httpserver.New(st, cfg)
	log.Info().
		Str("port", cfg.Server.Port).
		Str("store", cfg.Server.Store).
		Int("columns", cfg.World.Columns).
		Int("rows", cfg.World.Rows).
		Msg("starting " + cfg.AppName)
	if err := srv.Start(":" + cfg.Server.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// openStore returns the configured session store and a release func.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if cfg.Server.Store != config.StoreSQLite {
		return store.NewMemoryStore(), func() {}, nil
	}
	db, err := openDB(ctx, cfg.Server.DBPath)
	if err != nil {
		return nil, nil, err
	}
	return store.NewSQLStore(db), func() { _ = db.Close() }, nil
}
