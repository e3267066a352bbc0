// internal/httpserver/server.go
//
// HTTP server wiring for Word Challenge.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Round endpoints under /round (see routes_round.go).
//   - High scores: GET /scores.
//   - Session cookie: a signed HS256 JWT carrying the session id.
//
// Notes:
//   - Each client gets its own session and round; there is no shared game.
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Clients that cannot keep cookies may send the token from the
//     X-Session-Token response header as "Authorization: Bearer <token>".

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordchallenge/internal/game"
	"github.com/robalobadob/wordchallenge/internal/session"
	"github.com/robalobadob/wordchallenge/internal/words"
)

const (
	sessionCookieName  = "wc_session"
	sessionTokenHeader = "X-Session-Token"
)

// Options configures a Server.
type Options struct {
	SessionSecret string
	SessionTTL    time.Duration
	ClientOrigin  string
	Secure        bool // mark cookies Secure/SameSite=None
}

// Server bundles router, sessions, and vocabulary.
type Server struct {
	r        *chi.Mux
	sessions *session.Manager
	vocab    *words.Vocabulary
	opts     Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(sessions *session.Manager, vocab *words.Vocabulary, opts Options) *Server {
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	s := &Server{r: chi.NewRouter(), sessions: sessions, vocab: vocab, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)                       // zerolog access line
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"wordchallenge","endpoints":["/health","POST /round/start","GET /round","POST /round/answer","POST /round/hint","POST /round/skip","POST /round/end","GET /scores"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{"words": s.vocab.Len(), "sessions": s.sessions.Len()})
	})

	s.mountRound(s.r)
	s.r.Get("/scores", s.handleScores)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Router exposes the internal router (used by main and tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.opts.ClientOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", sessionTokenHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accessLog writes one zerolog line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("request")
	})
}

// ------------------------------- scores ------------------------------------

type scoresRes struct {
	Top     []game.RoundResult `json:"top"`
	Warning string             `json:"warning,omitempty"`
}

// handleScores returns the high-score ledger. Storage failures produce an
// empty list with a warning rather than an error status.
func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	top, warning := s.sessions.Scores(r.Context())
	writeJSON(w, http.StatusOK, scoresRes{Top: top, Warning: warning})
}

// ------------------------------ sessions -----------------------------------

// sessionID returns the caller's session id, minting and setting a new signed
// token when the request carries none or an invalid one.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if tok := bearerOrCookie(r); tok != "" {
		if id, err := s.parseToken(tok); err == nil {
			return id
		}
	}
	id := uuid.NewString()
	exp := time.Now().Add(s.opts.SessionTTL)
	tok, err := s.signToken(id, exp)
	if err != nil {
		log.Error().Err(err).Msg("sign session token")
		return id
	}
	sameSite := http.SameSiteLaxMode
	if s.opts.Secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: sameSite,
		Expires:  exp,
	})
	w.Header().Set(sessionTokenHeader, tok)
	return id
}

// signToken creates an HS256 JWT with the session id in "sid".
func (s *Server) signToken(id string, exp time.Time) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": id,
		"exp": exp.Unix(),
		"iat": time.Now().Unix(),
	})
	return t.SignedString([]byte(s.opts.SessionSecret))
}

// parseToken verifies a session token and returns its id.
func (s *Server) parseToken(tok string) (string, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.SessionSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return "", errors.New("invalid session token")
	}
	id, _ := claims["sid"].(string)
	if id == "" {
		return "", errors.New("invalid session token")
	}
	return id, nil
}

// bearerOrCookie extracts a token from the Authorization header or the session cookie.
func bearerOrCookie(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
