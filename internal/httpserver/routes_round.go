// internal/httpserver/routes_round.go
//
// HTTP routes for playing a round. Mounted under /round:
//   - POST   /round/start   → start or replay the caller's round
//   - GET    /round         → current state
//   - PUT    /round/input   → store in-progress text
//   - POST   /round/answer  → submit an answer
//   - POST   /round/hint    → reveal the hint
//   - POST   /round/skip    → draw a new word without scoring
//   - POST   /round/end     → finish early
//   - DELETE /round         → discard the session and stop its timer
//
// Calls made in the wrong phase answer 409 {"error":"invalid_transition"}.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordchallenge/internal/game"
	"github.com/robalobadob/wordchallenge/internal/session"
)

// roundRes is returned by every /round endpoint.
type roundRes struct {
	session.View
	Outcome  game.Outcome `json:"outcome,omitempty"`
	HintText string       `json:"hintText,omitempty"`
}

type inputReq struct {
	Input string `json:"input"`
}

// mountRound registers all /round routes.
func (s *Server) mountRound(r chi.Router) {
	r.Route("/round", func(r chi.Router) {
		r.Get("/", s.handleState)
		r.Delete("/", s.handleDiscard)
		r.Post("/start", s.handleStart)
		r.Put("/input", s.handleInput)
		r.Post("/answer", s.handleAnswer)
		r.Post("/hint", s.handleHint)
		r.Post("/skip", s.handleSkip)
		r.Post("/end", s.handleEnd)
	})
}

// session resolves the caller's session, writing an error response on failure.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.GetOrCreate(s.sessionID(w, r))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeRound(w, sess, roundRes{})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.Start(); err != nil {
		writeError(w, err)
		return
	}
	writeRound(w, sess, roundRes{})
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var p inputReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_json"})
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.SetInput(p.Input); err != nil {
		writeError(w, err)
		return
	}
	writeRound(w, sess, roundRes{})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var p inputReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_json"})
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	out, err := sess.Submit(p.Input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeRound(w, sess, roundRes{Outcome: out})
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	hint, err := sess.Hint()
	if err != nil {
		writeError(w, err)
		return
	}
	writeRound(w, sess, roundRes{HintText: hintText(hint)})
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.Skip(); err != nil {
		writeError(w, err)
		return
	}
	writeRound(w, sess, roundRes{})
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.End(); err != nil {
		writeError(w, err)
		return
	}
	writeRound(w, sess, roundRes{})
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	s.sessions.Discard(s.sessionID(w, r))
	w.WriteHeader(http.StatusNoContent)
}

// hintText formats a revealed prefix for display.
func hintText(prefix string) string {
	if len([]rune(prefix)) == 1 {
		return "First letter: " + prefix
	}
	return "Starts with: " + prefix
}

func writeRound(w http.ResponseWriter, sess *session.Session, res roundRes) {
	res.View = sess.View()
	writeJSON(w, http.StatusOK, res)
}

// writeError maps engine and session errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "invalid_transition", "detail": err.Error()})
	case errors.Is(err, session.ErrClosed):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "shutting_down"})
	default:
		log.Error().Err(err).Msg("round operation")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server_error"})
	}
}
