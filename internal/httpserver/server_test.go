package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/snake/internal/config"
	"github.com/robalobadob/snake/internal/game"
	"github.com/robalobadob/snake/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.World.Columns, cfg.World.Rows = 5, 5
	cfg.World.Start = config.Point{X: 2, Y: 2}
	cfg.Server.JWTSecret = "test-secret"
	return New(store.NewMemoryStore(), cfg)
}

func do(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != `{"ok":true}` {
		t.Fatalf("health: %d %s", rec.Code, rec.Body)
	}
}

func TestPlayUntilWall(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/game/new", "", map[string]any{"seed": 7})
	if rec.Code != http.StatusOK {
		t.Fatalf("new: %d %s", rec.Code, rec.Body)
	}
	created := decode[newGameRes](t, rec)
	if created.GameID == "" || created.Token == "" {
		t.Fatalf("new: %+v", created)
	}
	if created.Snapshot.Status != game.StatusRunning || len(created.Snapshot.Body) != 1 {
		t.Fatalf("initial snapshot %+v", created.Snapshot)
	}

	rec = do(t, s, http.MethodPost, "/game/direction", created.Token,
		directionReq{GameID: created.GameID, Direction: "up"})
	if rec.Code != http.StatusOK {
		t.Fatalf("direction: %d %s", rec.Code, rec.Body)
	}

	// From (2,2) heading up, the third step leaves the 5x5 board.
	var last tickRes
	for i := 0; i < 3; i++ {
		rec = do(t, s, http.MethodPost, "/game/tick", created.Token, tickReq{GameID: created.GameID})
		if rec.Code != http.StatusOK {
			t.Fatalf("tick %d: %d %s", i, rec.Code, rec.Body)
		}
		last = decode[tickRes](t, rec)
	}
	if last.Outcome != game.HitWall || last.Snapshot.Status != game.StatusGameOver || last.Snapshot.Cause != game.CauseWall {
		t.Fatalf("final tick %+v", last)
	}

	rec = do(t, s, http.MethodPost, "/game/tick", created.Token, tickReq{GameID: created.GameID})
	again := decode[tickRes](t, rec)
	if again.Outcome != game.HitWall || again.Snapshot.Tick != last.Snapshot.Tick {
		t.Fatalf("repeat tick changed state: %+v vs %+v", again, last)
	}

	rec = do(t, s, http.MethodGet, "/game/"+created.GameID, "", nil)
	snap := decode[game.Snapshot](t, rec)
	if snap.Status != game.StatusGameOver {
		t.Fatalf("GET snapshot %+v", snap)
	}
}

func TestInvalidDirection(t *testing.T) {
	s := newTestServer(t)
	created := decode[newGameRes](t, do(t, s, http.MethodPost, "/game/new", "", nil))

	rec := do(t, s, http.MethodPost, "/game/direction", created.Token,
		directionReq{GameID: created.GameID, Direction: "diagonal"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("direction: %d %s", rec.Code, rec.Body)
	}
	rec = do(t, s, http.MethodPost, "/game/tick", created.Token,
		tickReq{GameID: created.GameID, Direction: "north"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("tick: %d %s", rec.Code, rec.Body)
	}

	snap := decode[game.Snapshot](t, do(t, s, http.MethodGet, "/game/"+created.GameID, "", nil))
	if snap.Tick != 0 || snap.Direction != game.Right {
		t.Fatalf("rejected input changed state: %+v", snap)
	}
}

func TestTokenBindsToGame(t *testing.T) {
	s := newTestServer(t)
	a := decode[newGameRes](t, do(t, s, http.MethodPost, "/game/new", "", nil))
	b := decode[newGameRes](t, do(t, s, http.MethodPost, "/game/new", "", nil))

	if rec := do(t, s, http.MethodPost, "/game/tick", "", tickReq{GameID: a.GameID}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/game/tick", "garbage", tickReq{GameID: a.GameID}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/game/tick", b.Token, tickReq{GameID: a.GameID}); rec.Code != http.StatusForbidden {
		t.Fatalf("foreign token: %d", rec.Code)
	}
}

func TestNewGameRejectsBadWorld(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/game/new", "", map[string]any{"columns": -3})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative columns: %d %s", rec.Code, rec.Body)
	}
	rec = do(t, s, http.MethodPost, "/game/new", "", map[string]any{"start": map[string]int{"x": 9, "y": 9}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("start outside: %d %s", rec.Code, rec.Body)
	}
}

func TestUnknownGame(t *testing.T) {
	s := newTestServer(t)
	if rec := do(t, s, http.MethodGet, "/game/nope", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("GET unknown: %d", rec.Code)
	}
	tok, err := s.signToken("nope")
	if err != nil {
		t.Fatal(err)
	}
	if rec := do(t, s, http.MethodPost, "/game/tick", tok, tickReq{GameID: "nope"}); rec.Code != http.StatusNotFound {
		t.Fatalf("tick unknown: %d", rec.Code)
	}
}

func TestDailyGamesShareFood(t *testing.T) {
	s := newTestServer(t)
	s.cfg.World.Columns, s.cfg.World.Rows = 12, 12

	type dailyRes struct {
		newGameRes
		Date string `json:"date"`
	}
	a := decode[dailyRes](t, do(t, s, http.MethodPost, "/daily/new", "", nil))
	b := decode[dailyRes](t, do(t, s, http.MethodPost, "/daily/new", "", nil))

	if a.Date != time.Now().UTC().Format("2006-01-02") || a.Date != b.Date {
		t.Fatalf("dates %q %q", a.Date, b.Date)
	}
	if a.GameID == b.GameID {
		t.Fatal("daily games must be distinct sessions")
	}
	if a.Snapshot.Food == nil || b.Snapshot.Food == nil || *a.Snapshot.Food != *b.Snapshot.Food {
		t.Fatalf("food differs: %v vs %v", a.Snapshot.Food, b.Snapshot.Food)
	}
}

func (s *Server) lockCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}

func TestLocksReleasedAfterRequests(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 2000; i++ {
		if rec := do(t, s, http.MethodGet, fmt.Sprintf("/game/bogus-%d", i), "", nil); rec.Code != http.StatusNotFound {
			t.Fatalf("GET bogus-%d: %d", i, rec.Code)
		}
	}
	if n := s.lockCount(); n != 0 {
		t.Fatalf("%d locks left after unknown ids", n)
	}

	created := decode[newGameRes](t, do(t, s, http.MethodPost, "/game/new", "", map[string]any{"columns": 30, "start": map[string]int{"x": 0, "y": 0}}))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/game/tick",
				bytes.NewBufferString(`{"gameId":"`+created.GameID+`"}`))
			req.Header.Set("Authorization", "Bearer "+created.Token)
			s.Router().ServeHTTP(httptest.NewRecorder(), req)
		}()
	}
	wg.Wait()
	if n := s.lockCount(); n != 0 {
		t.Fatalf("%d locks left after ticks", n)
	}
	snap := decode[game.Snapshot](t, do(t, s, http.MethodGet, "/game/"+created.GameID, "", nil))
	if snap.Tick != 8 {
		t.Fatalf("tick %d, want 8", snap.Tick)
	}
}

func TestFinishedGameIgnoresDirection(t *testing.T) {
	s := newTestServer(t)
	created := decode[newGameRes](t, do(t, s, http.MethodPost, "/game/new", "", nil))

	// (2,2) heading right leaves the 5x5 board on the third tick.
	for i := 0; i < 3; i++ {
		do(t, s, http.MethodPost, "/game/tick", created.Token, tickReq{GameID: created.GameID})
	}
	rec := do(t, s, http.MethodPost, "/game/tick", created.Token, tickReq{GameID: created.GameID, Direction: "up"})
	if res := decode[tickRes](t, rec); res.Outcome != game.HitWall {
		t.Fatalf("outcome %s, want hit_wall", res.Outcome)
	}
	rec = do(t, s, http.MethodPost, "/game/direction", created.Token, directionReq{GameID: created.GameID, Direction: "down"})
	if rec.Code != http.StatusOK {
		t.Fatalf("direction: %d %s", rec.Code, rec.Body)
	}

	g, err := s.store.Get(context.Background(), created.GameID)
	if err != nil {
		t.Fatal(err)
	}
	r, err := g.Record()
	if err != nil {
		t.Fatal(err)
	}
	if r.Pending != game.DirNone {
		t.Fatalf("pending %s stored on a finished game", r.Pending)
	}
}
