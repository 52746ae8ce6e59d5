package storage

import (
	"database/sql"
	"fmt"

	"market-sync/src/logger"
	"market-sync/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

// SQLiteVault stores the session token in a local SQLite file. This is the
// default client-local store; on restart only the token comes back — the
// snapshot starts empty until the first tick arrives.
type SQLiteVault struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteVault(cfg *models.MConfig, log *logger.Logger) (*SQLiteVault, error) {
	return &SQLiteVault{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteVault) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	// Single-row table; id is fixed so Save can upsert.
	query := `
		CREATE TABLE IF NOT EXISTS session_token (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			token TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create session_token: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteVault) Load() (string, error) {
	var token string
	err := d.DB.QueryRow("SELECT token FROM session_token WHERE id = 1").Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteVault) Save(token string) error {
	query := `
		INSERT INTO session_token (id, token, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET token = excluded.token, updated_at = CURRENT_TIMESTAMP;
	`
	if _, err := d.DB.Exec(query, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteVault) Clear() error {
	if _, err := d.DB.Exec("DELETE FROM session_token WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteVault) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
