package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/xiaot623/gogo/askbot/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS invocations (
			request_id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			channel_id TEXT,
			user_id TEXT,
			status TEXT NOT NULL,
			outcome TEXT,
			error TEXT,
			started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			ended_at DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_invocations_kind ON invocations(kind, started_at)`,
		`CREATE TABLE IF NOT EXISTS events (
			event_id TEXT PRIMARY KEY,
			request_id TEXT NOT NULL,
			channel_id TEXT,
			ts INTEGER NOT NULL,
			type TEXT NOT NULL,
			payload TEXT,
			FOREIGN KEY (request_id) REFERENCES invocations(request_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_request ON events(request_id, ts)`,
		`CREATE INDEX IF NOT EXISTS idx_events_channel ON events(channel_id, ts)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateInvocation records the start of an invocation.
func (s *SQLiteStore) CreateInvocation(ctx context.Context, invocation *domain.Invocation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invocations (request_id, kind, channel_id, user_id, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		invocation.RequestID, invocation.Kind, nullIfEmpty(invocation.ChannelID), nullIfEmpty(invocation.UserID), invocation.Status, invocation.StartedAt)
	return err
}

const invocationColumns = `request_id, kind, channel_id, user_id, status, outcome, error, started_at, ended_at`

func scanInvocation(row interface{ Scan(...interface{}) error }) (*domain.Invocation, error) {
	var invocation domain.Invocation
	var channelID, userID, outcome, errText sql.NullString
	var endedAt sql.NullTime
	if err := row.Scan(&invocation.RequestID, &invocation.Kind, &channelID, &userID,
		&invocation.Status, &outcome, &errText, &invocation.StartedAt, &endedAt); err != nil {
		return nil, err
	}
	invocation.ChannelID = channelID.String
	invocation.UserID = userID.String
	invocation.Outcome = outcome.String
	invocation.Error = errText.String
	if endedAt.Valid {
		invocation.EndedAt = &endedAt.Time
	}
	return &invocation, nil
}

// GetInvocation retrieves an invocation by request ID.
func (s *SQLiteStore) GetInvocation(ctx context.Context, requestID string) (*domain.Invocation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+invocationColumns+` FROM invocations WHERE request_id = ?`, requestID)
	invocation, err := scanInvocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return invocation, nil
}

// ListInvocations lists the newest invocations, optionally of one kind.
func (s *SQLiteStore) ListInvocations(ctx context.Context, kind domain.InvocationKind, limit int) ([]domain.Invocation, error) {
	query := `SELECT ` + invocationColumns + ` FROM invocations`
	var args []interface{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY started_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invocations []domain.Invocation
	for rows.Next() {
		invocation, err := scanInvocation(rows)
		if err != nil {
			return nil, err
		}
		invocations = append(invocations, *invocation)
	}
	return invocations, rows.Err()
}

// FinishInvocation records how an invocation ended.
func (s *SQLiteStore) FinishInvocation(ctx context.Context, requestID string, status domain.InvocationStatus, outcome, errText string, endedAt time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE invocations SET status = ?, outcome = ?, error = ?, ended_at = ? WHERE request_id = ?`,
		status, nullIfEmpty(outcome), nullIfEmpty(errText), endedAt, requestID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("invocation %s not found", requestID)
	}
	return nil
}

// CreateEvent creates a new event.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *domain.Event) error {
	payload := ""
	if event.Payload != nil {
		payload = string(event.Payload)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (event_id, request_id, channel_id, ts, type, payload) VALUES (?, ?, ?, ?, ?, ?)`,
		event.EventID, event.RequestID, nullIfEmpty(event.ChannelID), event.Ts, event.Type, payload)
	return err
}

// ListEvents retrieves events matching filter, oldest first.
func (s *SQLiteStore) ListEvents(ctx context.Context, filter EventFilter) ([]domain.Event, error) {
	query := `SELECT event_id, request_id, channel_id, ts, type, payload FROM events WHERE 1 = 1`
	var args []interface{}

	if filter.RequestID != "" {
		query += ` AND request_id = ?`
		args = append(args, filter.RequestID)
	}
	if filter.ChannelID != "" {
		query += ` AND channel_id = ?`
		args = append(args, filter.ChannelID)
	}
	if filter.AfterTs > 0 {
		query += ` AND ts > ?`
		args = append(args, filter.AfterTs)
	}
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			placeholders[i] = "?"
			args = append(args, t)
		}
		query += fmt.Sprintf(" AND type IN (%s)", strings.Join(placeholders, ","))
	}

	query += ` ORDER BY ts ASC, rowid ASC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var event domain.Event
		var channelID, payload sql.NullString
		if err := rows.Scan(&event.EventID, &event.RequestID, &channelID, &event.Ts, &event.Type, &payload); err != nil {
			return nil, err
		}
		event.ChannelID = channelID.String
		if payload.Valid && payload.String != "" {
			event.Payload = json.RawMessage(payload.String)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
