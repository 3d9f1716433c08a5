package postgres

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"insurance-ledger/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens the service database, creating it and applying schema.sql on
// first run.
func Connect(cfg config.PostgresConfig) (*sqlx.DB, error) {
	defaultConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=postgres sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password)

	defaultDB, err := sql.Open("postgres", defaultConnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to default postgres db: %w", err)
	}
	defer defaultDB.Close()

	var exists bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	if err := defaultDB.QueryRow(checkQuery, cfg.DBname).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check if database exists: %w", err)
	}

	if !exists {
		if _, err := defaultDB.Exec(fmt.Sprintf(`CREATE DATABASE "%s"`, cfg.DBname)); err != nil {
			return nil, fmt.Errorf("failed to create database %s: %w", cfg.DBname, err)
		}
		slog.Info("created database", "name", cfg.DBname)
	}

	targetConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.DBname)

	db, err := sqlx.Connect("postgres", targetConnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to target database: %w", err)
	}

	if !exists {
		if err := executeSchema(db); err != nil {
			slog.Warn("failed to execute schema.sql; apply it manually", "error", err)
		}
	}

	return db, nil
}

// executeSchema applies schema.sql statement by statement, continuing past
// individual failures so a partially applied schema can be fixed manually.
func executeSchema(db *sqlx.DB) error {
	content, err := os.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}

	applied := 0
	for _, statement := range strings.Split(string(content), ";") {
		statement = strings.TrimSpace(statement)
		if statement == "" || strings.HasPrefix(statement, "--") {
			continue
		}
		if _, err := db.Exec(statement); err != nil {
			slog.Warn("schema statement failed", "error", err)
			continue
		}
		applied++
	}

	slog.Info("schema applied", "statements", applied)
	return nil
}
