package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all configuration for the application, loaded from the
// environment (optionally seeded from a .env file).
type Config struct {
	Port string

	// Database backend. "sqlite" (default) or "postgres".
	DBDriver    string
	DBPath      string // sqlite file path
	DatabaseURL string // postgres DSN

	// Completions provider. The provider is disabled when APIKey is empty.
	AIAPIKey  string
	AIBaseURL string
	AIModel   string

	// Operator login. Either LawyerPass (plain) or LawyerPassHash
	// (pbkdf2_sha256$iterations$salt$base64key) must be set together with
	// LawyerUser for the dashboard login to work.
	LawyerUser     string
	LawyerPass     string
	LawyerPassHash string
	SessionName    string

	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables. A .env file is
// honored when present; real environment variables take precedence.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded, relying on environment variables")
	}

	cfg := &Config{
		Port:           os.Getenv("PORT"),
		DBDriver:       os.Getenv("DB_DRIVER"),
		DBPath:         os.Getenv("DB_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		AIAPIKey:       os.Getenv("GROQ_API_KEY"),
		AIBaseURL:      os.Getenv("GROQ_BASE_URL"),
		AIModel:        os.Getenv("GROQ_MODEL"),
		LawyerUser:     os.Getenv("LAWYER_USER"),
		LawyerPass:     os.Getenv("LAWYER_PASS"),
		LawyerPassHash: os.Getenv("LAWYER_PASS_HASH"),
		SessionName:    os.Getenv("SESSION_NAME"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
		LogFormat:      os.Getenv("LOG_FORMAT"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.DBDriver == "" {
		cfg.DBDriver = "sqlite"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "chat.db"
	}
	if cfg.AIAPIKey == "" {
		// GROQ_* takes precedence, OPENAI_* kept as an alias.
		cfg.AIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.AIBaseURL == "" {
		cfg.AIBaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if cfg.AIBaseURL == "" {
		cfg.AIBaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.AIModel == "" {
		cfg.AIModel = "llama-3.3-70b-versatile"
	}
	if cfg.SessionName == "" {
		cfg.SessionName = "lawyer_session"
	}

	return cfg
}

// LoginConfigured reports whether operator credentials are present.
func (c *Config) LoginConfigured() bool {
	return c.LawyerUser != "" && (c.LawyerPass != "" || c.LawyerPassHash != "")
}
