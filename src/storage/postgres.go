package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"market-sync/src/logger"
	"market-sync/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

// PostgresVault stores the session token in Postgres, namespaced per binary
// via a schema. Intended for shared/kiosk deployments where a local file is
// not appropriate.
type PostgresVault struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresVault(cfg *models.MConfig, log *logger.Logger) (*PostgresVault, error) {
	// Use the executable name as the schema so parallel installs don't collide
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresVault{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresVault) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s".session_token (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			token TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create session_token: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresVault) Load() (string, error) {
	var token string
	query := fmt.Sprintf(`SELECT token FROM "%s".session_token WHERE id = 1`, d.Schema)
	err := d.DB.QueryRow(query).Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresVault) Save(token string) error {
	query := fmt.Sprintf(`
		INSERT INTO "%s".session_token (id, token, updated_at) VALUES (1, $1, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET token = EXCLUDED.token, updated_at = CURRENT_TIMESTAMP;
	`, d.Schema)
	if _, err := d.DB.Exec(query, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresVault) Clear() error {
	query := fmt.Sprintf(`DELETE FROM "%s".session_token WHERE id = 1`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresVault) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
