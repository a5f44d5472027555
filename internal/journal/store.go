package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/udisondev/statcore/internal/event"
	"github.com/udisondev/statcore/internal/journal/migrations"
)

var ErrEmptyPath = errors.New("journal path is required")

// Entry is one recorded event.
type Entry struct {
	ID       string
	EntityID string
	Type     event.Type
	Subject  string
	Payload  json.RawMessage
	Time     time.Time
}

// Store is an append-only sqlite journal of entity events.
// Safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the journal at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	// sqlite allows one writer at a time
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging journal %s: %w", path, err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.FS)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating journal migrator: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating journal: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends e to the journal and returns the assigned entry ID.
func (s *Store) Record(ctx context.Context, e event.Event) (string, error) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return "", fmt.Errorf("encoding %s payload: %w", e.Type, err)
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	id := ulid.Make().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (id, entity_id, type, subject, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, e.EntityID, string(e.Type), e.Subject, string(payload), e.Time.UTC().UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("recording %s for %s: %w", e.Type, e.EntityID, err)
	}
	return id, nil
}

// Handler returns a bus handler that records every event.
// Write failures are logged; the event flow is not interrupted.
func (s *Store) Handler(ctx context.Context) event.Handler {
	return func(e event.Event) {
		if _, err := s.Record(ctx, e); err != nil {
			slog.Error("journal write failed",
				"type", string(e.Type),
				"entity", e.EntityID,
				"error", err)
		}
	}
}

// Recent returns up to limit entries for entityID, newest first.
func (s *Store) Recent(ctx context.Context, entityID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit %d: must be greater than zero", limit)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, entity_id, type, subject, payload, created_at
		 FROM events
		 WHERE entity_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		entityID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying events for %s: %w", entityID, err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			en      Entry
			typ     string
			payload string
			millis  int64
		)
		if err := rows.Scan(&en.ID, &en.EntityID, &typ, &en.Subject, &payload, &millis); err != nil {
			return nil, fmt.Errorf("scanning event for %s: %w", entityID, err)
		}
		en.Type = event.Type(typ)
		en.Payload = json.RawMessage(payload)
		en.Time = time.UnixMilli(millis).UTC()
		entries = append(entries, en)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events for %s: %w", entityID, err)
	}
	return entries, nil
}

// Count returns the number of entries recorded for entityID.
func (s *Store) Count(ctx context.Context, entityID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE entity_id = ?`, entityID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting events for %s: %w", entityID, err)
	}
	return n, nil
}
