package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"

	"coinflip3d/internal/db"
	"coinflip3d/internal/game"
	httpserver "coinflip3d/internal/http"
	"coinflip3d/internal/repository"
	"coinflip3d/internal/service"
	"coinflip3d/internal/ws"
)

func applyMigrations(t *testing.T, dbp *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := dbp.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

// TestE2E_LiveFlip runs the whole server on Postgres: session over HTTP, a
// live flip over the websocket, then the history over HTTP.
func TestE2E_LiveFlip(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	pool, err := db.Connect(ctx, dsn, 10, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer pool.Close()
	applyMigrations(t, pool)

	store := repository.NewPGFlipRepository(pool)
	tokens, err := service.NewTokenService("e2e-secret", time.Hour)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	settings := game.DefaultSettings()
	settings.TotalDuration = 300 * time.Millisecond
	flips := service.NewFlipService(store, tokens, settings)

	cfg := ws.DefaultConfig()
	cfg.WaitInterval = 10 * time.Millisecond
	hub := ws.NewHub(flips, cfg)
	defer hub.Shutdown()

	r := httpserver.NewRouter(flips, httpserver.Options{Store: store, Hub: hub, Version: "e2e"})
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/session", "application/json", nil)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	var sess service.Session
	err = json.NewDecoder(resp.Body).Decode(&sess)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("session decode: %v", err)
	}

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + sess.Token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	write := func(msg string) {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	write(`{"type":"hello","payload":{"renderer":true,"timeline":true}}`)

	var outcome game.Outcome
	flipped := false
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	for done := false; !done; {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var env ws.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("bad message: %v", err)
		}
		switch env.Type {
		case ws.MsgFrame:
			if !flipped {
				write(`{"type":"flip"}`)
				flipped = true
			}
		case ws.MsgError:
			t.Fatalf("server error: %s", env.Payload)
		case ws.MsgResult:
			var res ws.ResultPayload
			if err := json.Unmarshal(env.Payload, &res); err != nil {
				t.Fatalf("result: %v", err)
			}
			outcome = res.Outcome
			done = true
		}
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		hist, err := flips.History(ctx, sess.PlayerID, 5)
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		if len(hist) == 1 {
			if hist[0].Outcome != outcome || hist[0].SessionID == "" {
				t.Fatalf("recorded %+v, shown %v", hist[0], outcome)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("live flip not recorded")
		}
		time.Sleep(50 * time.Millisecond)
	}
}
