package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"coinflip3d/internal/anim"
	"coinflip3d/internal/game"
	"coinflip3d/internal/repository"
	"coinflip3d/internal/service"
	"coinflip3d/internal/ws"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := repository.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(store.Close)

	tokens, err := service.NewTokenService("routes-secret", time.Hour)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	flips := service.NewFlipService(store, tokens, game.DefaultSettings())
	hub := ws.NewHub(flips, ws.DefaultConfig())
	t.Cleanup(hub.Shutdown)

	return NewRouter(flips, Options{Store: store, Hub: hub, Version: "test"})
}

func do(t *testing.T, r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(""))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func TestFlipFlow(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/session", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("session: %d %s", w.Code, w.Body.String())
	}
	var sess service.Session
	decode(t, w, &sess)
	if sess.Token == "" || sess.PlayerID == 0 {
		t.Fatalf("session %+v", sess)
	}

	var outcomes []game.Outcome
	for i := 0; i < 3; i++ {
		w = do(t, r, http.MethodPost, "/api/v1/flip", sess.Token)
		if w.Code != http.StatusOK {
			t.Fatalf("flip: %d %s", w.Code, w.Body.String())
		}
		var pf struct {
			ID            int64               `json:"id"`
			Outcome       game.Outcome        `json:"outcome"`
			Label         string              `json:"label"`
			Params        game.FlipParameters `json:"params"`
			FinalRotation float64             `json:"final_rotation"`
			SettleAt      float64             `json:"settle_at"`
			Timeline      *anim.Timeline      `json:"timeline"`
		}
		decode(t, w, &pf)
		if game.FaceUp(pf.FinalRotation) != pf.Outcome || pf.Label != pf.Outcome.Label() {
			t.Fatalf("inconsistent flip %+v", pf)
		}
		if pf.Params.SpinCount < game.DefaultSpinMin || pf.Params.SpinCount >= game.DefaultSpinMax {
			t.Fatalf("spin count %v out of range", pf.Params.SpinCount)
		}
		if pf.Timeline == nil || len(pf.Timeline.Segments()) == 0 || pf.Timeline.Duration() < pf.Params.TotalDuration {
			t.Fatalf("timeline missing or short")
		}
		outcomes = append(outcomes, pf.Outcome)
	}

	w = do(t, r, http.MethodGet, "/api/v1/flips?limit=2", sess.Token)
	if w.Code != http.StatusOK {
		t.Fatalf("flips: %d %s", w.Code, w.Body.String())
	}
	var hist struct {
		Flips []struct {
			Outcome game.Outcome `json:"outcome"`
			Channel string       `json:"channel"`
		} `json:"flips"`
	}
	decode(t, w, &hist)
	if len(hist.Flips) != 2 {
		t.Fatalf("expected 2 flips, got %d", len(hist.Flips))
	}
	if hist.Flips[0].Outcome != outcomes[2] || hist.Flips[0].Channel != "plan" {
		t.Fatalf("newest flip %+v, want outcome %v", hist.Flips[0], outcomes[2])
	}

	w = do(t, r, http.MethodGet, "/api/v1/stats?window=1h", "")
	var stats struct {
		Heads int64 `json:"heads"`
		Tails int64 `json:"tails"`
		Total int64 `json:"total"`
	}
	decode(t, w, &stats)
	if stats.Total != 3 || stats.Heads+stats.Tails != 3 {
		t.Fatalf("stats %+v", stats)
	}
}

func TestAuthAndValidation(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/session", "")
	var sess service.Session
	decode(t, w, &sess)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"flip without token", http.MethodPost, "/api/v1/flip", "", http.StatusUnauthorized},
		{"flip with junk token", http.MethodPost, "/api/v1/flip", "junk", http.StatusUnauthorized},
		{"history without token", http.MethodGet, "/api/v1/flips", "", http.StatusUnauthorized},
		{"bad limit", http.MethodGet, "/api/v1/flips?limit=-1", sess.Token, http.StatusBadRequest},
		{"bad window", http.MethodGet, "/api/v1/stats?window=yesterday", "", http.StatusBadRequest},
		{"all-time stats", http.MethodGet, "/api/v1/stats", "", http.StatusOK},
		{"settings", http.MethodGet, "/api/v1/settings", "", http.StatusOK},
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"liveness", http.MethodGet, "/healthz", "", http.StatusOK},
		{"readiness", http.MethodGet, "/readyz", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"ws without token", http.MethodGet, "/ws", "", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, tc.method, tc.path, tc.token)
			if w.Code != tc.want {
				t.Fatalf("%s %s: got %d want %d (%s)", tc.method, tc.path, w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestPreflight(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/flip", nil)
	req.Header.Set("Origin", "https://coin.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight: %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://coin.example" {
		t.Fatalf("allow origin %q", got)
	}
}
