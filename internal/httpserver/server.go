// internal/httpserver/server.go
//
// HTTP server wiring for the snake backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", GET /game/{id}.
//   - Game endpoints: POST /game/new, POST /game/direction, POST /game/tick.
//   - Daily Challenge endpoints: mounted under /daily.
//   - Per-game JWT handling: /game/new hands out a token that steers one game.
//
// Notes:
//   - The client is the tick driver: each POST /game/tick advances one step.
//   - Ticks and direction changes for one game are serialised by a per-game
//     lock, so the engine never sees overlapping calls.
//   - Terminal outcomes (hit_wall, hit_self, board_full) are 200 responses.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/snake/internal/config"
	"github.com/robalobadob/snake/internal/game"
	"github.com/robalobadob/snake/internal/store"
)

// Server bundles router, session store and settings.
type Server struct {
	r     *chi.Mux
	store store.Store
	cfg   *config.Config

	mu    sync.Mutex           // guards locks
	locks map[string]*gameLock // per-game locks, held only while in use
}

// gameLock serialises requests for one game. refs counts holders and
// waiters; the entry is dropped when it reaches zero.
type gameLock struct {
	mu   sync.Mutex
	refs int
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, cfg *config.Config) *Server {
	s := &Server{r: chi.NewRouter(), store: st, cfg: cfg, locks: make(map[string]*gameLock)}

	timeout := cfg.Server.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(timeout))
	s.r.Use(jsonContentType)
	s.r.Use(cors(cfg.Server.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"snake-go","endpoints":["/health","POST /game/new","POST /game/direction","POST /game/tick","GET /game/{id}","/daily/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Post("/game/new", s.handleNewGame)
	s.r.With(s.requireGameToken()).Post("/game/direction", s.handleDirection)
	s.r.With(s.requireGameToken()).Post("/game/tick", s.handleTick)
	s.r.Get("/game/{id}", s.handleGet)

	s.mountDaily(s.r)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------ GAME ---------------------------------------

// newGameReq overrides the configured world for one game. Zero fields keep
// the configured value.
type newGameReq struct {
	Columns   int      `json:"columns"`
	Rows      int      `json:"rows"`
	Length    int      `json:"length"`
	Direction string   `json:"direction"`
	Seed      uint64   `json:"seed"`
	Start     *startXY `json:"start"`
}

type startXY struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type newGameRes struct {
	GameID   string        `json:"gameId"`
	Token    string        `json:"token"`
	Snapshot game.Snapshot `json:"snapshot"`
}

// handleNewGame creates a game from the configured world plus any request
// overrides, stores it and returns a token for steering it.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}

	opts := s.cfg.GameOptions()
	if req.Columns != 0 {
		opts.Columns = req.Columns
	}
	if req.Rows != 0 {
		opts.Rows = req.Rows
	}
	if req.Length != 0 {
		opts.Length = req.Length
	}
	if req.Seed != 0 {
		opts.Seed = req.Seed
	}
	if req.Start != nil {
		opts.Start = game.Cell{X: req.Start.X, Y: req.Start.Y}
	}
	if req.Direction != "" {
		d, err := game.ParseDirection(req.Direction)
		if err != nil {
			http.Error(w, `{"error":"invalid_direction"}`, http.StatusBadRequest)
			return
		}
		opts.Direction = d
	}

	s.createGame(w, r, opts, nil)
}

// createGame builds, stores and announces a game. extra is merged into the
// JSON response.
func (s *Server) createGame(w http.ResponseWriter, r *http.Request, opts game.Options, extra map[string]any) {
	g, err := game.New(opts)
	if err != nil {
		if errors.Is(err, game.ErrInvalidConfiguration) {
			http.Error(w, `{"error":"invalid_configuration"}`, http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Msg("new game")
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Str("gameId", g.ID).Msg("save game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	tok, err := s.signToken(g.ID)
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}

	snap := g.Snapshot()
	log.Info().Str("gameId", g.ID).Int("columns", snap.Columns).Int("rows", snap.Rows).
		Uint64("seed", g.Seed()).Msg("game created")

	if extra == nil {
		_ = json.NewEncoder(w).Encode(newGameRes{GameID: g.ID, Token: tok, Snapshot: snap})
		return
	}
	out := map[string]any{"gameId": g.ID, "token": tok, "snapshot": snap}
	for k, v := range extra {
		out[k] = v
	}
	_ = json.NewEncoder(w).Encode(out)
}

type directionReq struct {
	GameID    string `json:"gameId"`
	Direction string `json:"direction"`
}

// handleDirection buffers a direction for the game's next tick. A finished
// game accepts and drops it.
func (s *Server) handleDirection(w http.ResponseWriter, r *http.Request) {
	var req directionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if !s.authorized(w, r, req.GameID) {
		return
	}
	d, err := game.ParseDirection(req.Direction)
	if err != nil {
		http.Error(w, `{"error":"invalid_direction"}`, http.StatusBadRequest)
		return
	}

	unlock := s.lock(req.GameID)
	defer unlock()

	g, ok := s.load(w, r, req.GameID)
	if !ok {
		return
	}
	if g.Finished() {
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "finished": true})
		return
	}
	if err := g.SetPendingDirection(d); err != nil {
		http.Error(w, `{"error":"invalid_direction"}`, http.StatusBadRequest)
		return
	}
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Str("gameId", g.ID).Msg("save game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

type tickReq struct {
	GameID    string `json:"gameId"`
	Direction string `json:"direction"` // optional
}

type tickRes struct {
	Outcome  game.Outcome  `json:"outcome"`
	Snapshot game.Snapshot `json:"snapshot"`
}

// handleTick applies an optional direction and advances the game one step.
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	var req tickReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if !s.authorized(w, r, req.GameID) {
		return
	}
	var dir game.Direction
	if req.Direction != "" {
		d, err := game.ParseDirection(req.Direction)
		if err != nil {
			http.Error(w, `{"error":"invalid_direction"}`, http.StatusBadRequest)
			return
		}
		dir = d
	}

	unlock := s.lock(req.GameID)
	defer unlock()

	g, ok := s.load(w, r, req.GameID)
	if !ok {
		return
	}
	wasFinished := g.Finished()
	if dir != game.DirNone && !wasFinished {
		_ = g.SetPendingDirection(dir)
	}
	outcome := g.Tick()
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Str("gameId", g.ID).Msg("save game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	snap := g.Snapshot()
	if outcome.Terminal() && !wasFinished {
		log.Info().Str("gameId", g.ID).Str("outcome", string(outcome)).
			Int("score", snap.Score).Uint64("tick", snap.Tick).Msg("game finished")
	}
	_ = json.NewEncoder(w).Encode(tickRes{Outcome: outcome, Snapshot: snap})
}

// handleGet returns a read-only snapshot.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	unlock := s.lock(id)
	defer unlock()

	g, ok := s.load(w, r, id)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(g.Snapshot())
}

// load fetches a game, writing the error response itself on failure.
func (s *Server) load(w http.ResponseWriter, r *http.Request, id string) (*game.Game, bool) {
	g, err := s.store.Get(r.Context(), id)
	switch {
	case err == nil:
		return g, true
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
	default:
		log.Error().Err(err).Str("gameId", id).Msg("load game")
		http.Error(w, `{"error":"load_failed"}`, http.StatusInternalServerError)
	}
	return nil, false
}

// lock takes the per-game lock and returns its release func.
func (s *Server) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &gameLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

// ------------------------------ JWT ----------------------------------------

// ctxGameKey is the context key type for the token's game ID.
type ctxGameKey struct{}

// signToken creates an HS256 JWT binding the bearer to one game.
func (s *Server) signToken(gameID string) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"gid": gameID,
		"iat": now.Unix(),
		"exp": now.Add(s.cfg.Server.TokenTTL).Unix(),
	})
	return t.SignedString([]byte(s.cfg.Server.JWTSecret))
}

// requireGameToken enforces a valid game token and stores its game ID in the
// request context.
func (s *Server) requireGameToken() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
				return
			}
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(s.cfg.Server.JWTSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			gid, _ := claims["gid"].(string)
			if gid == "" {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ctxGameKey{}, gid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authorized checks that the request's token was issued for gameID.
func (s *Server) authorized(w http.ResponseWriter, r *http.Request, gameID string) bool {
	gid, _ := r.Context().Value(ctxGameKey{}).(string)
	if gameID == "" || gid != gameID {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return false
	}
	return true
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}
