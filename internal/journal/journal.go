// Package journal keeps a local history of upload attempts in SQLite.
// Every call to the uploader made through the CLI is recorded with its
// outcome, so failures can be inspected after the fact with `history`.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	// Pure-Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"

	"github.com/tonimelisma/adls-go/internal/outcome"
)

// OutcomeSucceeded is recorded for uploads that completed.
const OutcomeSucceeded = "succeeded"

const (
	sqlInsertUpload = `INSERT INTO uploads
		(upload_id, account, endpoint, local_path, remote_path, overwrite, size,
		 outcome, status_code, message, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	sqlRecentUploads = `SELECT upload_id, account, endpoint, local_path, remote_path,
		overwrite, size, outcome, status_code, message, started_at, finished_at
		FROM uploads ORDER BY finished_at DESC, id DESC LIMIT ?`

	sqlRecentUploadsForAccount = `SELECT upload_id, account, endpoint, local_path, remote_path,
		overwrite, size, outcome, status_code, message, started_at, finished_at
		FROM uploads WHERE account = ? ORDER BY finished_at DESC, id DESC LIMIT ?`
)

// Entry is one recorded upload attempt.
type Entry struct {
	ID         string
	Account    string
	Endpoint   string
	LocalPath  string
	RemotePath string
	Overwrite  bool
	Size       int64
	Outcome    string // OutcomeSucceeded or the failure kind
	StatusCode int
	Message    string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Succeeded reports whether the attempt completed.
func (e *Entry) Succeeded() bool {
	return e.Outcome == OutcomeSucceeded
}

// SetOutcome fills Outcome, StatusCode and Message from the error an upload
// returned. A nil error marks the entry as succeeded.
func (e *Entry) SetOutcome(err error) {
	if err == nil {
		e.Outcome = OutcomeSucceeded
		e.StatusCode = 0
		e.Message = ""

		return
	}

	var oe *outcome.Error
	if errors.As(err, &oe) {
		e.Outcome = oe.Kind.Error()
		e.StatusCode = oe.StatusCode
		e.Message = oe.Message

		return
	}

	e.Outcome = outcome.ErrTransferFailure.Error()
	e.StatusCode = 0
	e.Message = err.Error()
}

// Journal is the upload history store. Safe for concurrent use.
type Journal struct {
	db      *sql.DB
	logger  *slog.Logger
	nowFunc func() time.Time
}

// Open opens (creating if needed) the journal database at dbPath and
// applies migrations.
func Open(ctx context.Context, dbPath string, logger *slog.Logger) (*Journal, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"+
			"&_pragma=busy_timeout(5000)",
		dbPath,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("journal: opening database %s: %w", dbPath, err)
	}

	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("journal opened", slog.String("db_path", dbPath))

	return &Journal{db: db, logger: logger, nowFunc: time.Now}, nil
}

// Close releases the database.
func (j *Journal) Close() error {
	if err := j.db.Close(); err != nil {
		return fmt.Errorf("journal: closing database: %w", err)
	}

	return nil
}

// Record stores e. A missing ID is generated, a zero FinishedAt is set to
// now, and a zero StartedAt defaults to FinishedAt. The stored entry is
// returned.
func (j *Journal) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	if e.FinishedAt.IsZero() {
		e.FinishedAt = j.nowFunc()
	}

	if e.StartedAt.IsZero() {
		e.StartedAt = e.FinishedAt
	}

	if e.Outcome == "" {
		return Entry{}, fmt.Errorf("journal: recording %s: outcome is empty", e.ID)
	}

	_, err := j.db.ExecContext(ctx, sqlInsertUpload,
		e.ID, e.Account, e.Endpoint, e.LocalPath, e.RemotePath, boolToInt(e.Overwrite), e.Size,
		e.Outcome, e.StatusCode, e.Message, e.StartedAt.UnixNano(), e.FinishedAt.UnixNano(),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("journal: recording %s: %w", e.ID, err)
	}

	j.logger.Debug("upload recorded",
		slog.String("upload_id", e.ID),
		slog.String("outcome", e.Outcome),
	)

	return e, nil
}

// Recent returns up to limit entries, newest first. An empty account
// returns entries for every account.
func (j *Journal) Recent(ctx context.Context, account string, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	var (
		rows *sql.Rows
		err  error
	)

	if account == "" {
		rows, err = j.db.QueryContext(ctx, sqlRecentUploads, limit)
	} else {
		rows, err = j.db.QueryContext(ctx, sqlRecentUploadsForAccount, account, limit)
	}

	if err != nil {
		return nil, fmt.Errorf("journal: querying uploads: %w", err)
	}
	defer rows.Close()

	var entries []Entry

	for rows.Next() {
		var (
			e                 Entry
			overwrite         int
			started, finished int64
		)

		if err := rows.Scan(&e.ID, &e.Account, &e.Endpoint, &e.LocalPath, &e.RemotePath,
			&overwrite, &e.Size, &e.Outcome, &e.StatusCode, &e.Message, &started, &finished); err != nil {
			return nil, fmt.Errorf("journal: scanning upload row: %w", err)
		}

		e.Overwrite = overwrite == 1
		e.StartedAt = time.Unix(0, started)
		e.FinishedAt = time.Unix(0, finished)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterating upload rows: %w", err)
	}

	return entries, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
