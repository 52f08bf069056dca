// Package sqlite provides a SQLite-backed persistence backend.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"drawboard/internal/document"
)

type sqliteStore struct {
	db *sql.DB
}

// NewStore creates a new SQLite-based store.
func NewStore(dataSourceName string) *sqliteStore {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		log.Fatalf("failed to open sqlite database: %v", err)
	}

	// A board file is one row; the CHECK keeps it that way.
	boardTableStmt := `
	CREATE TABLE IF NOT EXISTS boards (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		data BLOB NOT NULL,
		updated_at DATETIME
	);`
	if _, err = db.Exec(boardTableStmt); err != nil {
		log.Fatalf("failed to create boards table: %v", err)
	}

	return &sqliteStore{db}
}

func (s *sqliteStore) Load(ctx context.Context) (*document.BoardFile, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM boards WHERE id = 1").Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			logrus.Info("No stored board, starting fresh")
			return document.Normalize(nil), nil
		}
		logrus.WithError(err).Error("Failed to load board")
		return nil, err
	}
	return document.Normalize(data), nil
}

func (s *sqliteStore) Save(ctx context.Context, bf *document.BoardFile) error {
	data, err := json.Marshal(bf)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO boards (id, data, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		data, time.Now().UTC())
	if err != nil {
		logrus.WithError(err).Error("Failed to save board")
		return err
	}
	return nil
}
