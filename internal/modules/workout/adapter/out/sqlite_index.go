package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"intervals/internal/modules/workout/domain"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

type SQLiteWorkoutIndex struct {
	db *sql.DB
}

func NewSQLiteWorkoutIndex(dbPath string) (*SQLiteWorkoutIndex, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	index := &SQLiteWorkoutIndex{db: db}
	if err := index.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return index, nil
}

func (s *SQLiteWorkoutIndex) Close() error {
	return s.db.Close()
}

func (s *SQLiteWorkoutIndex) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS workouts (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  interval_count INTEGER NOT NULL,
  rounds INTEGER NOT NULL,
  total_seconds REAL NOT NULL,
  summary TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS workouts_name ON workouts(name);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create workouts table: %w", err)
	}
	return nil
}

func (s *SQLiteWorkoutIndex) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM workouts`); err != nil {
		return fmt.Errorf("reset workouts: %w", err)
	}
	return nil
}

func (s *SQLiteWorkoutIndex) UpsertListing(ctx context.Context, listing domain.Listing) error {
	const stmt = `
INSERT INTO workouts (id, name, interval_count, rounds, total_seconds, summary, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  name=excluded.name,
  interval_count=excluded.interval_count,
  rounds=excluded.rounds,
  total_seconds=excluded.total_seconds,
  summary=excluded.summary,
  updated_at=excluded.updated_at;
`
	_, err := s.db.ExecContext(ctx, stmt,
		listing.ID,
		listing.Name,
		listing.IntervalCount,
		listing.Rounds,
		listing.TotalSeconds,
		listing.Summary,
		listing.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("upsert workout listing: %w", err)
	}
	return nil
}

func (s *SQLiteWorkoutIndex) DeleteListing(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM workouts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete workout listing: %w", err)
	}
	return nil
}

// Search matches query against names, case-insensitively. An empty query
// lists everything.
func (s *SQLiteWorkoutIndex) Search(ctx context.Context, query string) ([]domain.Listing, error) {
	const stmt = `
SELECT id, name, interval_count, rounds, total_seconds, summary, updated_at
FROM workouts
WHERE lower(name) LIKE ? ESCAPE '\'
ORDER BY name, id;
`
	rows, err := s.db.QueryContext(ctx, stmt, "%"+escapeLike(strings.ToLower(query))+"%")
	if err != nil {
		return nil, fmt.Errorf("search workouts: %w", err)
	}
	defer rows.Close()

	out := []domain.Listing{}
	for rows.Next() {
		var (
			listing   domain.Listing
			updatedAt string
		)
		if err := rows.Scan(&listing.ID, &listing.Name, &listing.IntervalCount, &listing.Rounds, &listing.TotalSeconds, &listing.Summary, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan workout listing: %w", err)
		}
		if ts, err := time.Parse(timeLayout, updatedAt); err == nil {
			listing.UpdatedAt = ts
		}
		out = append(out, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workout listings: %w", err)
	}
	return out, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
