package journal

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/adls-go/internal/account"
	"github.com/tonimelisma/adls-go/internal/outcome"
)

// testLogger writes journal activity to t.Log.
func testLogger(t *testing.T) *slog.Logger {
	t.Helper()

	return slog.New(slog.NewTextHandler(&testLogWriter{t: t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type testLogWriter struct {
	t *testing.T
}

func (w *testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))

	return len(p), nil
}

func newTestJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := Open(context.Background(), filepath.Join(t.TempDir(), "journal.db"), testLogger(t))
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, j.Close())
	})

	return j
}

func TestOpen_ReopenKeepsEntries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(ctx, dbPath, testLogger(t))
	require.NoError(t, err)

	_, err = j.Record(ctx, Entry{Account: "lake", LocalPath: "/tmp/a", RemotePath: "/a", Outcome: OutcomeSucceeded})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(ctx, dbPath, testLogger(t))
	require.NoError(t, err)
	defer j.Close()

	entries, err := j.Recent(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "lake", entries[0].Account)
}

func TestRecord_FillsDefaults(t *testing.T) {
	t.Parallel()

	j := newTestJournal(t)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	j.nowFunc = func() time.Time { return fixed }

	e, err := j.Record(context.Background(), Entry{Account: "lake", Outcome: OutcomeSucceeded})
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID)
	assert.True(t, e.FinishedAt.Equal(fixed))
	assert.True(t, e.StartedAt.Equal(fixed))
}

func TestRecord_RejectsEmptyOutcome(t *testing.T) {
	t.Parallel()

	j := newTestJournal(t)

	_, err := j.Record(context.Background(), Entry{Account: "lake"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outcome is empty")
}

func TestRecent_NewestFirstAndLimited(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j := newTestJournal(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, remote := range []string{"/one", "/two", "/three"} {
		_, err := j.Record(ctx, Entry{
			Account:    "lake",
			RemotePath: remote,
			Overwrite:  i%2 == 0,
			Size:       int64(i * 10),
			Outcome:    OutcomeSucceeded,
			FinishedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	entries, err := j.Recent(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "/three", entries[0].RemotePath)
	assert.Equal(t, "/two", entries[1].RemotePath)
	assert.True(t, entries[0].Overwrite)
	assert.False(t, entries[1].Overwrite)
	assert.Equal(t, int64(20), entries[0].Size)
	assert.True(t, entries[0].FinishedAt.Equal(base.Add(2*time.Minute)))
}

func TestRecent_FiltersByAccount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j := newTestJournal(t)

	for _, acct := range []string{"lake", "pond", "lake"} {
		_, err := j.Record(ctx, Entry{Account: acct, Outcome: OutcomeSucceeded})
		require.NoError(t, err)
	}

	entries, err := j.Recent(ctx, "pond", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "pond", entries[0].Account)
}

func TestRecent_ZeroLimit(t *testing.T) {
	t.Parallel()

	j := newTestJournal(t)

	entries, err := j.Recent(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEntry_SetOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantKind   string
		wantStatus int
		wantMsg    string
	}{
		{name: "success", err: nil, wantKind: OutcomeSucceeded},
		{
			name:       "authorization denied",
			err:        outcome.AuthorizationDenied("no write permission", nil),
			wantKind:   "authorization denied",
			wantStatus: 403,
			wantMsg:    "no write permission",
		},
		{
			name:     "unsupported kind",
			err:      outcome.UnsupportedAccountKind(account.KindBlob),
			wantKind: "unsupported storage account kind",
			wantMsg:  `storage account kind "blob" cannot be written to; a certificate-backed Data Lake Store account is required`,
		},
		{
			name:     "unclassified",
			err:      errors.New("boom"),
			wantKind: "transfer failed",
			wantMsg:  "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Entry{Outcome: "stale", StatusCode: 500, Message: "stale"}
			e.SetOutcome(tt.err)

			assert.Equal(t, tt.wantKind, e.Outcome)
			assert.Equal(t, tt.wantStatus, e.StatusCode)
			assert.Equal(t, tt.wantMsg, e.Message)
			assert.Equal(t, tt.err == nil, e.Succeeded())
		})
	}
}
