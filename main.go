package main

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func initLogger() {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && parsed != zerolog.NoLevel {
		level = parsed
	}
	zerolog.SetGlobalLevel(level)

	if os.Getenv("LOG_FORMAT") != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func main() {
	initLogger()

	cfg := LoadConfig()

	db, err := InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	store := NewStore(db, cfg.DBDriver)
	ai := NewAIClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel)
	s := newServer(cfg, store, ai)

	if !cfg.LoginConfigured() {
		log.Warn().Msg("Dashboard login is not configured, operator routes will reject every session")
	}

	log.Info().Str("port", cfg.Port).Msg("Server starting")
	if err := http.ListenAndServe(":"+cfg.Port, s); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
