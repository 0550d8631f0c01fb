// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes two endpoints under /daily:
//   - GET  /daily/today → today's date key and board size
//   - POST /daily/new   → start a game on today's shared food sequence
//
// Every daily game of a given UTC date uses the same seed, derived from the
// date and a server-side salt, so all players see the same food placements
// for the same moves.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/snake/internal/daily"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv  *Server
	salt string
	now  func() time.Time
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:  s,
		salt: s.cfg.Daily.Salt,
		now:  time.Now,
	}
	r.Route("/daily", func(r chi.Router) {
		r.Get("/today", dd.handleToday)
		r.Post("/new", dd.handleNew)
	})
}

func (d *dailyServer) handleToday(w http.ResponseWriter, r *http.Request) {
	opts := d.srv.cfg.GameOptions()
	_ = json.NewEncoder(w).Encode(map[string]any{
		"date":    daily.DateKey(d.now()),
		"columns": opts.Columns,
		"rows":    opts.Rows,
	})
}

// handleNew starts a game using the configured world and today's seed.
// Request-level overrides are not accepted: daily games must be comparable.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	now := d.now()
	seed, err := daily.Seed(now, d.salt)
	if err != nil {
		log.Error().Err(err).Msg("daily seed")
		http.Error(w, `{"error":"daily_unavailable"}`, http.StatusInternalServerError)
		return
	}
	opts := d.srv.cfg.GameOptions()
	opts.Seed = seed
	d.srv.createGame(w, r, opts, map[string]any{"date": daily.DateKey(now)})
}
