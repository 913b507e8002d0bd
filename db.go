package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	client_id TEXT,
	client_name TEXT,
	client_location TEXT,
	client_phone TEXT,
	message TEXT,
	is_client_message BOOLEAN,
	read BOOLEAN DEFAULT FALSE,
	timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS clients (
	client_id TEXT PRIMARY KEY,
	name TEXT,
	location TEXT,
	phone TEXT,
	step TEXT,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS messages (
	id BIGSERIAL PRIMARY KEY,
	client_id TEXT,
	client_name TEXT,
	client_location TEXT,
	client_phone TEXT,
	message TEXT,
	is_client_message BOOLEAN,
	read BOOLEAN DEFAULT FALSE,
	timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS clients (
	client_id TEXT PRIMARY KEY,
	name TEXT,
	location TEXT,
	phone TEXT,
	step TEXT,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

// InitDB opens the configured database backend and makes sure the schema
// exists. Supported drivers are sqlite (default) and postgres.
func InitDB(cfg *Config) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch cfg.DBDriver {
	case "sqlite":
		dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", cfg.DBPath)
		db, err = sqlx.Open("sqlite", dsn)
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		db, err = sqlx.Open("postgres", cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not reach database: %w", err)
	}

	schema := sqliteSchema
	if cfg.DBDriver == "postgres" {
		schema = postgresSchema
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}

	log.Info().Str("driver", cfg.DBDriver).Msg("Database initialized")
	return db, nil
}
