package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordchallenge/internal/config"
	"github.com/robalobadob/wordchallenge/internal/httpserver"
	"github.com/robalobadob/wordchallenge/internal/kv"
	"github.com/robalobadob/wordchallenge/internal/ledger"
	"github.com/robalobadob/wordchallenge/internal/session"
	"github.com/robalobadob/wordchallenge/internal/words"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	vocab, err := words.Load(cfg.WordsFile, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load vocabulary")
	}

	scores := ledger.NewMemory(cfg.LedgerCap)
	if cfg.DBPath != "" {
		store, err := kv.OpenSQLite(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
		}
		defer store.Close()
		scores = ledger.NewSlot(store, ledger.DefaultKey, cfg.LedgerCap)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := session.NewManager(cfg.Game, vocab, scores, session.WithTTL(cfg.SessionTTL))
	go sessions.RunJanitor(ctx, time.Minute)

	srv := httpserver.New(sessions, vocab, httpserver.Options{
		SessionSecret: cfg.SessionSecret,
		SessionTTL:    cfg.SessionTTL,
		ClientOrigin:  cfg.ClientOrigin,
		Secure:        cfg.Production,
	})
	hs := &http.Server{Addr: ":" + cfg.Port, Handler: srv.Router()}

	// drained is closed once in-flight requests have finished.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("http shutdown")
		}
	}()

	log.Info().
		Str("port", cfg.Port).
		Int("words", vocab.Len()).
		Int("round_seconds", cfg.Game.RoundDurationSeconds).
		Bool("persistent_scores", cfg.DBPath != "").
		Msg("starting wordchallenge")
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server exited")
		stop()
	}
	<-drained
	// Timers stop and pending score writes finish before the store closes.
	sessions.Close()
	log.Info().Msg("shutdown complete")
}
