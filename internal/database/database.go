package database

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

var db *sql.DB

// Config holds the Postgres connection settings.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	// SchemaPath optionally points at a SQL file applied on startup.
	SchemaPath string
}

// InitDB opens the Postgres connection pool, verifies it with a ping and
// optionally applies the schema file.
func InitDB(cfg Config) error {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	db, err = sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info().Str("host", cfg.Host).Str("dbname", cfg.DBName).Msg("Database connection established")

	if cfg.SchemaPath != "" {
		if err := applySchema(cfg.SchemaPath); err != nil {
			return err
		}
	}
	return nil
}

// applySchema runs the schema file. All statements in it are idempotent
// (CREATE TABLE IF NOT EXISTS etc), so running it on every start is safe.
func applySchema(path string) error {
	schema, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read schema file %s: %w", path, err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Info().Str("path", path).Msg("Database schema applied")
	return nil
}

// GetDB returns the database connection pool.
func GetDB() *sql.DB {
	return db
}

// Close closes the connection pool.
func Close() error {
	if db == nil {
		return nil
	}
	return db.Close()
}
