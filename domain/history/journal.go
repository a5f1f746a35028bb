// Package history persists detection results to a SQLite journal.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/soocke/monster-detector-go/domain/detection"
)

const schema = `
CREATE TABLE IF NOT EXISTS detections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session TEXT NOT NULL,
	captured_at TEXT NOT NULL,
	method TEXT NOT NULL,
	confidence REAL,
	scale REAL,
	x INTEGER,
	y INTEGER,
	w INTEGER,
	h INTEGER
);
CREATE INDEX IF NOT EXISTS idx_detections_session ON detections(session);`

// Entry is one journal row.
type Entry struct {
	Session    string
	CapturedAt time.Time
	Result     detection.Result
}

// Summary aggregates the rows of one session.
type Summary struct {
	Total          int
	ByMethod       map[detection.Method]int
	MeanConfidence float64
}

// Journal appends detections to a SQLite database. A nil *Journal is a valid no-op
// journal, used when history is disabled.
type Journal struct {
	db     *sql.DB
	insert *sql.Stmt
}

// Open creates or opens the journal at path. An empty path disables history and
// returns a nil journal.
func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, nil
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	insert, err := db.Prepare(`
		INSERT INTO detections (session, captured_at, method, confidence, scale, x, y, w, h)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare history insert: %w", err)
	}
	return &Journal{db: db, insert: insert}, nil
}

// Record appends e. Not-found results are ignored.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if j == nil || !e.Result.Found {
		return nil
	}
	r := e.Result
	_, err := j.insert.ExecContext(ctx,
		e.Session,
		e.CapturedAt.UTC().Format(time.RFC3339Nano),
		string(r.Method),
		r.Confidence,
		r.Scale,
		r.Position.X, r.Position.Y,
		r.Size.X, r.Size.Y,
	)
	if err != nil {
		return fmt.Errorf("record detection: %w", err)
	}
	return nil
}

// Summary returns per-method counts and the mean confidence for session.
func (j *Journal) Summary(ctx context.Context, session string) (Summary, error) {
	s := Summary{ByMethod: map[detection.Method]int{}}
	if j == nil {
		return s, nil
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT method, COUNT(*), AVG(confidence) FROM detections WHERE session = ? GROUP BY method`, session)
	if err != nil {
		return s, fmt.Errorf("query history summary: %w", err)
	}
	defer rows.Close()

	var weighted float64
	for rows.Next() {
		var (
			method string
			count  int
			mean   float64
		)
		if err := rows.Scan(&method, &count, &mean); err != nil {
			return s, fmt.Errorf("scan history summary: %w", err)
		}
		s.ByMethod[detection.Method(method)] = count
		s.Total += count
		weighted += mean * float64(count)
	}
	if err := rows.Err(); err != nil {
		return s, fmt.Errorf("iterate history summary: %w", err)
	}
	if s.Total > 0 {
		s.MeanConfidence = weighted / float64(s.Total)
	}
	return s, nil
}

// Close releases the database handle.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return errors.Join(j.insert.Close(), j.db.Close())
}
