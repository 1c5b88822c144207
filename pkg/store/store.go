// Package store persists the catalog (services, systems, dependency edges),
// downtime events and notifications in SQLite. Times are stored as unix
// seconds; a zero end_time / resolved_at marks a still-open record.
package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3"
)

type Store struct {
	db *sqlx.DB
}

func NewStore(dbpath string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", dbpath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) InitializeDB() error {
	createSQL := []string{
		`CREATE TABLE IF NOT EXISTS services (
		  "id" TEXT PRIMARY KEY,
		  "name" TEXT NOT NULL,
		  "provider" TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS systems (
		  "id" TEXT PRIMARY KEY,
		  "name" TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS dependencies (
		  "from_id" TEXT NOT NULL,
		  "to_id" TEXT NOT NULL,
		  UNIQUE("from_id", "to_id")
		)`,
		`CREATE TABLE IF NOT EXISTS events (
		  "id" TEXT PRIMARY KEY,
		  "service_id" TEXT NOT NULL,
		  "start_time" INTEGER NOT NULL,
		  "end_time" INTEGER NOT NULL DEFAULT 0,
		  "confidence" REAL NOT NULL DEFAULT 0,
		  "summary" TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
		  "id" TEXT PRIMARY KEY,
		  "event_id" TEXT NOT NULL,
		  "system_id" TEXT NOT NULL,
		  "severity" REAL NOT NULL DEFAULT 0,
		  "created_at" INTEGER NOT NULL,
		  "resolved_at" INTEGER NOT NULL DEFAULT 0
		)`,
		// backs the dedup lookup in FindOngoingNear
		`CREATE INDEX IF NOT EXISTS idx_events_service_open
		  ON events ("service_id", "end_time", "start_time")`,
	}

	for _, q := range createSQL {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to initialize db: %w", err)
		}
	}
	return nil
}

func (s *Store) CloseDB() error {
	return s.db.Close()
}
