package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/robalobadob/wordchallenge/internal/game"
	"github.com/robalobadob/wordchallenge/internal/ledger"
	"github.com/robalobadob/wordchallenge/internal/session"
	"github.com/robalobadob/wordchallenge/internal/words"
)

type client struct {
	t     *testing.T
	h     http.Handler
	token string
}

func newTestServer(t *testing.T) (*client, *session.Manager) {
	t.Helper()
	v, err := words.New([]string{"CAT"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	m := session.NewManager(game.DefaultConfig(), v, ledger.NewMemory(0))
	t.Cleanup(m.Close)
	srv := New(m, v, Options{SessionSecret: "test-secret"})
	return &client{t: t, h: srv.Router()}, m
}

func (c *client) do(method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	if tok := rec.Header().Get(sessionTokenHeader); tok != "" && c.token == "" {
		c.token = tok
	}
	out := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			c.t.Fatalf("%s %s: bad json %q", method, path, rec.Body.String())
		}
	}
	return rec, out
}

func TestHealth(t *testing.T) {
	c, _ := newTestServer(t)
	rec, body := c.do(http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || body["ok"] != true {
		t.Fatalf("health: %d %v", rec.Code, body)
	}
}

func TestRoundFlow(t *testing.T) {
	c, m := newTestServer(t)

	rec, body := c.do(http.MethodGet, "/round", "")
	if rec.Code != http.StatusOK || body["phase"] != string(game.PhaseNotStarted) {
		t.Fatalf("initial state: %d %v", rec.Code, body)
	}
	if c.token == "" {
		t.Fatal("expected a session token")
	}
	if _, ok := body["Word"]; ok {
		t.Fatal("word leaked to client")
	}

	rec, body = c.do(http.MethodPost, "/round/answer", `{"input":"cat"}`)
	if rec.Code != http.StatusConflict || body["error"] != "invalid_transition" {
		t.Fatalf("answer before start: %d %v", rec.Code, body)
	}

	rec, body = c.do(http.MethodPost, "/round/start", "")
	if rec.Code != http.StatusOK || body["phase"] != string(game.PhaseInProgress) || body["timeRemaining"] != float64(60) {
		t.Fatalf("start: %d %v", rec.Code, body)
	}
	if s, _ := body["scramble"].(string); s == "" || s == "CAT" {
		t.Fatalf("scramble = %q", s)
	}

	_, body = c.do(http.MethodPost, "/round/answer", `{"input":"dog"}`)
	if body["outcome"] != string(game.OutcomeIncorrect) || body["score"] != float64(0) {
		t.Fatalf("wrong answer: %v", body)
	}

	_, body = c.do(http.MethodPost, "/round/hint", "")
	if body["hintText"] != "First letter: C" || body["hintsUsed"] != float64(1) {
		t.Fatalf("hint: %v", body)
	}

	_, body = c.do(http.MethodPost, "/round/answer", `{"input":"cat"}`)
	if body["outcome"] != string(game.OutcomeCorrect) || body["wordsCompleted"] != float64(1) {
		t.Fatalf("right answer: %v", body)
	}
	if score, _ := body["score"].(float64); score < 100 {
		t.Fatalf("score = %v", score)
	}

	_, body = c.do(http.MethodPost, "/round/end", "")
	if body["phase"] != string(game.PhaseOver) {
		t.Fatalf("end: %v", body)
	}
	res, _ := body["result"].(map[string]any)
	if res == nil || res["id"] == "" || res["wordsCompleted"] != float64(1) || res["score"] != body["score"] {
		t.Fatalf("end result: %v", body)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		_, body = c.do(http.MethodGet, "/scores", "")
		if top, _ := body["top"].([]any); len(top) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("score never recorded: %v", body)
		}
		time.Sleep(5 * time.Millisecond)
	}

	rec, _ = c.do(http.MethodDelete, "/round", "")
	if rec.Code != http.StatusNoContent || m.Len() != 0 {
		t.Fatalf("discard: %d, %d sessions", rec.Code, m.Len())
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	a, m := newTestServer(t)
	b := &client{t: t, h: a.h}

	a.do(http.MethodPost, "/round/start", "")
	_, body := b.do(http.MethodGet, "/round", "")
	if body["phase"] != string(game.PhaseNotStarted) {
		t.Fatalf("second client saw first client's round: %v", body)
	}
	if m.Len() != 2 {
		t.Fatalf("sessions = %d", m.Len())
	}
}

func TestForgedTokenGetsNewSession(t *testing.T) {
	c, _ := newTestServer(t)
	c.token = "not-a-jwt"
	rec, _ := c.do(http.MethodGet, "/round", "")
	if rec.Header().Get(sessionTokenHeader) == "" {
		t.Fatal("expected a fresh token for an invalid one")
	}
}

func TestBadJSON(t *testing.T) {
	c, _ := newTestServer(t)
	rec, body := c.do(http.MethodPost, "/round/answer", `{`)
	if rec.Code != http.StatusBadRequest || body["error"] != "bad_json" {
		t.Fatalf("bad json: %d %v", rec.Code, body)
	}
}

func TestHintText(t *testing.T) {
	if got := hintText("C"); got != "First letter: C" {
		t.Errorf("hintText(C) = %q", got)
	}
	if got := hintText("CA"); got != "Starts with: CA" {
		t.Errorf("hintText(CA) = %q", got)
	}
}
