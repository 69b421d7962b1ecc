// Package suppress keeps the list of recipients that should no longer be
// mailed, fed by hard bounces and feedback loop complaints.
package suppress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/emurenMRz/bounceview/bounce"
)

const schema = `
CREATE TABLE IF NOT EXISTS suppressions (
	recipient  TEXT PRIMARY KEY,
	email_type TEXT NOT NULL,
	action     TEXT NOT NULL,
	status     TEXT NOT NULL,
	reason     TEXT NOT NULL,
	message_id TEXT NOT NULL DEFAULT '',
	first_seen INTEGER NOT NULL,
	last_seen  INTEGER NOT NULL,
	hits       INTEGER NOT NULL DEFAULT 1
)`

const upsert = `
INSERT INTO suppressions
	(recipient, email_type, action, status, reason, message_id, first_seen, last_seen, hits)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)
ON CONFLICT(recipient) DO UPDATE SET
	email_type = excluded.email_type,
	action     = excluded.action,
	status     = excluded.status,
	reason     = excluded.reason,
	message_id = excluded.message_id,
	last_seen  = excluded.last_seen,
	hits       = suppressions.hits + 1`

// Entry is one suppressed recipient.
type Entry struct {
	Recipient string    `json:"recipient"`
	EmailType string    `json:"emailType"`
	Action    string    `json:"action"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason"`
	MessageID string    `json:"messageId,omitempty"`
	FirstSeen time.Time `json:"firstSeen"`
	LastSeen  time.Time `json:"lastSeen"`
	Hits      int       `json:"hits"`
}

// Store is a SQLite backed suppression list.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("suppress: empty database path")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for SQLite database: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.With("component", "suppress", "database", path),
		now:    time.Now,
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record adds every suppressible result and returns how many were stored.
// All rows are written in one transaction.
func (s *Store) Record(ctx context.Context, results []bounce.Result) (int, error) {
	var keep []bounce.Result
	for _, r := range results {
		if r.Suppressible() {
			keep = append(keep, r)
		}
	}
	if len(keep) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now().Unix()
	for _, r := range keep {
		_, err := tx.ExecContext(ctx, upsert,
			normalize(r.Recipient),
			string(r.EmailType),
			string(r.Action),
			r.DeliveryStatus,
			string(r.Reason),
			r.MessageID,
			now, now,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to record %s: %w", r.Recipient, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit suppressions: %w", err)
	}

	s.logger.Debug("suppressions recorded", "count", len(keep))
	return len(keep), nil
}

// IsSuppressed reports whether addr is on the list.
func (s *Store) IsSuppressed(ctx context.Context, addr string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM suppressions WHERE recipient = ?`, normalize(addr)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query suppression: %w", err)
	}
	return n > 0, nil
}

// Get returns the entry for addr, or false when it is not suppressed.
func (s *Store) Get(ctx context.Context, addr string) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx, selectEntries+` WHERE recipient = ?`, normalize(addr))
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to query suppression: %w", err)
	}
	return e, true, nil
}

// List returns every entry, most recently seen first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectEntries+` ORDER BY last_seen DESC, recipient`)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppressions: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan suppression: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list suppressions: %w", err)
	}
	return entries, nil
}

// Remove deletes addr from the list and reports whether it was there.
func (s *Store) Remove(ctx context.Context, addr string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM suppressions WHERE recipient = ?`, normalize(addr))
	if err != nil {
		return false, fmt.Errorf("failed to remove suppression: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to remove suppression: %w", err)
	}
	return n > 0, nil
}

const selectEntries = `SELECT recipient, email_type, action, status, reason, message_id,
	first_seen, last_seen, hits FROM suppressions`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	var first, last int64
	err := row.Scan(&e.Recipient, &e.EmailType, &e.Action, &e.Status, &e.Reason,
		&e.MessageID, &first, &last, &e.Hits)
	if err != nil {
		return Entry{}, err
	}
	e.FirstSeen = time.Unix(first, 0).UTC()
	e.LastSeen = time.Unix(last, 0).UTC()
	return e, nil
}

func normalize(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
