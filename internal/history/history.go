// Package history is the log of terminal transfer transitions backed by
// modernc.org/sqlite (pure Go, no cgo). It keeps one row per transfer id,
// overwritten by that transfer's latest terminal state. It is
// deliberately not the Registry: nothing here ever feeds back into a
// Control API decision, and restarting the daemon does not reload the
// live transfer set from it (SPEC_FULL.md §4.K).
package history

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/freedlm/fdm/internal/transfer"
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id TEXT PRIMARY KEY,
	url TEXT NOT NULL,
	file_name TEXT NOT NULL,
	save_path TEXT NOT NULL,
	status TEXT NOT NULL,
	total_bytes INTEGER,
	downloaded_bytes INTEGER NOT NULL,
	error TEXT,
	finished_at INTEGER NOT NULL
);`

// Store is a handle to the history database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite database at path and
// ensures the history table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Entry is one terminal-transition row.
type Entry struct {
	ID              string
	URL             string
	FileName        string
	SavePath        string
	Status          transfer.Status
	TotalBytes      *int64
	DownloadedBytes int64
	Error           string
	FinishedAt      int64
}

// Record upserts rec's current state as a history entry, keyed by id.
// Best-effort: callers (the Manager's OnTerminal hook, wired up by
// `fdm serve`) log and swallow any error rather than letting it affect a
// transfer's status.
func (s *Store) Record(rec *transfer.Record) error {
	_, err := s.db.Exec(
		`INSERT INTO history (id, url, file_name, save_path, status, total_bytes, downloaded_bytes, error, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status=excluded.status,
		   total_bytes=excluded.total_bytes,
		   downloaded_bytes=excluded.downloaded_bytes,
		   error=excluded.error,
		   finished_at=excluded.finished_at`,
		rec.ID, rec.URL, rec.FileName, rec.SavePath, string(rec.Status),
		rec.TotalBytes, rec.DownloadedBytes, nullableString(rec.Error), rec.UpdatedAt,
	)
	return err
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// List returns every recorded entry, most recently finished first.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, url, file_name, save_path, status, total_bytes, downloaded_bytes, error, finished_at
		 FROM history ORDER BY finished_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var total sql.NullInt64
		var errStr sql.NullString
		var status string
		if err := rows.Scan(&e.ID, &e.URL, &e.FileName, &e.SavePath, &status, &total, &e.DownloadedBytes, &errStr, &e.FinishedAt); err != nil {
			return nil, err
		}
		e.Status = transfer.Status(status)
		if total.Valid {
			v := total.Int64
			e.TotalBytes = &v
		}
		e.Error = errStr.String
		out = append(out, e)
	}
	return out, rows.Err()
}
