package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) a SQLite-backed store at path and
// applies the schema migrations.
func OpenSQLite(path string) (Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store: sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")
	_, _ = db.Exec("PRAGMA busy_timeout = 5000")
	_, _ = db.Exec("PRAGMA foreign_keys = ON")

	s := &sqliteStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, string(b)); err != nil {
		return fmt.Errorf("store: migration failed: %w", err)
	}
	return nil
}

func (s *sqliteStore) CreateCampaign(ctx context.Context, c *Campaign) error {
	if c.Status == "" {
		c.Status = StatusPending
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO campaigns(id, name, subject, body, total_emails, sent_count, failed_count, status, started_at, completed_at, created_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		c.ID, c.Name, c.Subject, c.Body, c.TotalEmails, c.SentCount, c.FailedCount,
		c.Status, nullTime(c.StartedAt), nullTime(c.CompletedAt), c.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *sqliteStore) StartCampaign(ctx context.Context, id string, startedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE campaigns SET status = ?, started_at = ? WHERE id = ?`,
		StatusProcessing, startedAt.Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *sqliteStore) CompleteCampaign(ctx context.Context, id string, sent, failed int, status string, completedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE campaigns SET sent_count = ?, failed_count = ?, status = ?, completed_at = ? WHERE id = ?`,
		sent, failed, status, completedAt.Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *sqliteStore) AppendLogs(ctx context.Context, entries []LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO email_logs(campaign_id, email, status, error, attempts, sent_at)
		 VALUES(?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		sentAt := e.SentAt
		if sentAt.IsZero() {
			sentAt = time.Now()
		}
		if _, err := stmt.ExecContext(ctx,
			e.CampaignID, strings.ToLower(e.Email), e.Status, nullStr(e.Error), e.Attempts,
			sentAt.Format(time.RFC3339Nano),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) Campaign(ctx context.Context, id string) (*Campaign, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, subject, body, total_emails, sent_count, failed_count, status, started_at, completed_at, created_at
		 FROM campaigns WHERE id = ?`, id)
	c, err := scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (s *sqliteStore) Campaigns(ctx context.Context, limit int) ([]*Campaign, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, subject, body, total_emails, sent_count, failed_count, status, started_at, completed_at, created_at
		 FROM campaigns ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Logs(ctx context.Context, campaignID string) ([]LogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT campaign_id, email, status, error, attempts, sent_at
		 FROM email_logs WHERE campaign_id = ? ORDER BY id`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LogEntry
	for rows.Next() {
		var e LogEntry
		var errText sql.NullString
		var sentAt string
		if err := rows.Scan(&e.CampaignID, &e.Email, &e.Status, &errText, &e.Attempts, &sentAt); err != nil {
			return nil, err
		}
		e.Error = errText.String
		e.SentAt, _ = time.Parse(time.RFC3339Nano, sentAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (*Campaign, error) {
	var c Campaign
	var startedAt, completedAt sql.NullString
	var createdAt string
	if err := row.Scan(&c.ID, &c.Name, &c.Subject, &c.Body,
		&c.TotalEmails, &c.SentCount, &c.FailedCount, &c.Status,
		&startedAt, &completedAt, &createdAt); err != nil {
		return nil, err
	}
	c.StartedAt = parseTime(startedAt)
	c.CompletedAt = parseTime(completedAt)
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &c, nil
}

func parseTime(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
