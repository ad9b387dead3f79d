// Package store persists the most recently accepted routine parse so
// the schedule survives restarts and supports delete-by-id. It is a
// snapshot, not a history: each accepted parse replaces the previous
// one wholesale.
package store

import (
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3"

	"github.com/KaziBadrul/Acadex-sub000/internal/model"
)

// ErrNotFound is returned by Delete when no row matches the id.
var ErrNotFound = errors.New("store: event not found")

// Store wraps a sqlite database holding the current routine snapshot.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the sqlite database at path and ensures the
// schema exists. The seq column preserves parser scan order.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS routine_events (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT NOT NULL UNIQUE,
		title      TEXT NOT NULL,
		day        TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time   TEXT NOT NULL,
		location   TEXT NOT NULL DEFAULT '',
		confidence REAL NOT NULL,
		raw        TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_routine_events_day ON routine_events(day);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ReplaceAll atomically replaces the snapshot with the given events,
// preserving their order. Called on every accepted parse.
func (s *Store) ReplaceAll(events []model.RoutineEvent) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM routine_events`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO routine_events (id, title, day, start_time, end_time, location, confidence, raw)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.Exec(
			ev.ID, ev.Title, string(ev.Day), ev.Start, ev.End,
			ev.Location, ev.Confidence, ev.Raw,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// List returns the stored events in their original scan order.
func (s *Store) List() ([]model.RoutineEvent, error) {
	rows, err := s.db.Query(
		`SELECT id, title, day, start_time, end_time, location, confidence, raw
		 FROM routine_events ORDER BY seq`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]model.RoutineEvent, 0)
	for rows.Next() {
		var ev model.RoutineEvent
		var day string
		if err := rows.Scan(
			&ev.ID, &ev.Title, &day, &ev.Start, &ev.End,
			&ev.Location, &ev.Confidence, &ev.Raw,
		); err != nil {
			return nil, err
		}
		ev.Day = model.Weekday(day)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Delete removes a single event by id.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM routine_events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored events.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM routine_events`).Scan(&n)
	return n, err
}
