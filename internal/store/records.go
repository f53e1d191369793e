package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"kaamkhojo-engine/internal/domain"
)

var ErrNotFound = errors.New("record not found")

type ListOpts struct {
	Kind   domain.Kind // empty = every kind
	Window string      // 24h | 7d | 30d | all
	Limit  int
}

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1 ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  kind TEXT NOT NULL,
  title TEXT NOT NULL,
  company TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  type TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'open',
  experience TEXT NOT NULL DEFAULT '',
  salary TEXT NOT NULL DEFAULT '',
  salary_band TEXT NOT NULL DEFAULT '',
  skills TEXT NOT NULL DEFAULT '[]',
  summary TEXT NOT NULL DEFAULT '',
  url TEXT NOT NULL DEFAULT '',
  posted_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_records_kind
ON records(kind, id);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_records_posted_at
ON records(posted_at);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}

// ListRecords returns records in insertion order, which is the order the
// listing screens show them in.
func ListRecords(ctx context.Context, db *sql.DB, opts ListOpts) ([]domain.Record, error) {
	var where []string
	var args []any

	if opts.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(opts.Kind))
	}

	var window time.Duration
	switch opts.Window {
	case "24h":
		window = 24 * time.Hour
	case "7d":
		window = 7 * 24 * time.Hour
	case "30d":
		window = 30 * 24 * time.Hour
	}
	if window > 0 {
		where = append(where, "posted_at >= ?")
		args = append(args, time.Now().UTC().Add(-window).Format(time.RFC3339))
	}

	if opts.Limit <= 0 || opts.Limit > 5000 {
		opts.Limit = 5000
	}

	query := `
SELECT id, kind, title, company, location, category, type, status, experience,
       salary, salary_band, skills, summary, url, posted_at
FROM records`
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY id ASC\nLIMIT ?;"
	args = append(args, opts.Limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	out := []domain.Record{}
	for rows.Next() {
		var r domain.Record
		var kind, skillsJSON, postedStr string
		if err := rows.Scan(
			&r.ID,
			&kind,
			&r.Title,
			&r.Company,
			&r.Location,
			&r.Category,
			&r.Type,
			&r.Status,
			&r.Experience,
			&r.Salary,
			&r.SalaryBand,
			&skillsJSON,
			&r.Summary,
			&r.URL,
			&postedStr,
		); err != nil {
			return nil, err
		}
		r.Kind = domain.Kind(kind)
		if err := json.Unmarshal([]byte(skillsJSON), &r.Skills); err != nil {
			return nil, fmt.Errorf("record %d: decode skills: %w", r.ID, err)
		}
		if r.PostedAt, err = time.Parse(time.RFC3339, postedStr); err != nil {
			return nil, fmt.Errorf("record %d: parse posted_at: %w", r.ID, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func InsertRecord(ctx context.Context, db execer, r domain.Record) (int64, error) {
	if r.PostedAt.IsZero() {
		r.PostedAt = time.Now().UTC()
	}
	if r.Status == "" {
		r.Status = "open"
	}
	if r.Skills == nil {
		r.Skills = []string{}
	}
	skillsB, _ := json.Marshal(r.Skills)

	res, err := db.ExecContext(ctx, `
INSERT INTO records(kind, title, company, location, category, type, status, experience,
                    salary, salary_band, skills, summary, url, posted_at)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?);`,
		string(r.Kind), r.Title, r.Company, r.Location, r.Category, r.Type, r.Status, r.Experience,
		r.Salary, r.SalaryBand, string(skillsB), r.Summary, r.URL,
		r.PostedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	return res.LastInsertId()
}

func DeleteRecord(ctx context.Context, db *sql.DB, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM records WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete record %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CleanupExpired removes records posted before now-retention.
func CleanupExpired(ctx context.Context, db *sql.DB, retention time.Duration) (deleted int64, err error) {
	cutoff := time.Now().UTC().Add(-retention).Format(time.RFC3339)
	res, err := db.ExecContext(ctx, `DELETE FROM records WHERE posted_at < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup expired records: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func CountRecords(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records;`).Scan(&n)
	return n, err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Source serves listing pages from the records table.
type Source struct {
	DB     *sql.DB
	Window string
}

func (s Source) Records(ctx context.Context, kind domain.Kind) ([]domain.Record, error) {
	return ListRecords(ctx, s.DB, ListOpts{Kind: kind, Window: s.Window})
}
