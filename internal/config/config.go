// internal/config/config.go
//
// Process configuration loaded from the environment (and .env in development).
//
// Environment variables:
//   PORT                    HTTP listen port (default 5175)
//   LOG_LEVEL               zerolog level (default info)
//   DB_PATH                 SQLite file for the score ledger; empty keeps scores in memory
//   WORDS_FILE              vocabulary file, one word per line; empty uses the embedded list
//   ROUND_DURATION_SECONDS  round length (default 60)
//   BASE_POINTS             points per correct word (default 100)
//   BONUS_RATE_PER_SECOND   bonus points per second remaining (default 10)
//   HINT_FIRST_LETTER_ONLY  hints reveal only the first letter (default true)
//   HINT_COUNTING           "requests" or "words" (default requests)
//   LEDGER_CAP              high scores retained (default 10)
//   SESSION_SECRET          HMAC key for session cookies
//   SESSION_TTL_MINUTES     idle session eviction (default 30)
//   CLIENT_ORIGIN           CORS origin (default http://localhost:5173)

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordchallenge/internal/game"
)

const devSessionSecret = "dev_secret_change_me"

type Config struct {
	Port          string
	LogLevel      string
	DBPath        string
	WordsFile     string
	LedgerCap     int
	SessionSecret string
	SessionTTL    time.Duration
	ClientOrigin  string
	Production    bool
	Game          game.Config
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, reading from environment")
	}

	def := game.DefaultConfig()
	cfg := &Config{
		Port:          getEnv("PORT", "5175"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DBPath:        os.Getenv("DB_PATH"),
		WordsFile:     os.Getenv("WORDS_FILE"),
		LedgerCap:     getEnvAsInt("LEDGER_CAP", 10),
		SessionSecret: getEnv("SESSION_SECRET", devSessionSecret),
		SessionTTL:    time.Duration(getEnvAsInt("SESSION_TTL_MINUTES", 30)) * time.Minute,
		ClientOrigin:  getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:    os.Getenv("APP_ENV") == "production",
		Game: game.Config{
			RoundDurationSeconds:       getEnvAsInt("ROUND_DURATION_SECONDS", def.RoundDurationSeconds),
			BasePoints:                 getEnvAsInt("BASE_POINTS", def.BasePoints),
			BonusRatePerSecond:         getEnvAsFloat("BONUS_RATE_PER_SECOND", def.BonusRatePerSecond),
			HintRevealsFirstLetterOnly: getEnvAsBool("HINT_FIRST_LETTER_ONLY", def.HintRevealsFirstLetterOnly),
			HintCounting:               game.HintCounting(getEnv("HINT_COUNTING", string(def.HintCounting))),
		},
	}

	if err := cfg.Game.Validate(); err != nil {
		return nil, err
	}
	if cfg.LedgerCap <= 0 {
		return nil, fmt.Errorf("LEDGER_CAP must be positive, got %d", cfg.LedgerCap)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL_MINUTES must be positive")
	}
	if cfg.Production && cfg.SessionSecret == devSessionSecret {
		return nil, fmt.Errorf("SESSION_SECRET must be set in production")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
