package adls

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// DefaultBufferSize is how many bytes a FileWriter buffers before sending
// an append (4 MiB, the store's preferred append size).
const DefaultBufferSize = 4 * 1024 * 1024

// IfExists is the create policy for a path that already exists.
type IfExists int

const (
	// IfExistsOverwrite replaces any existing file unconditionally.
	IfExistsOverwrite IfExists = iota
	// IfExistsFail makes Create fail with ErrAlreadyExists.
	IfExistsFail
)

func (m IfExists) String() string {
	if m == IfExistsOverwrite {
		return "overwrite"
	}

	return "fail"
}

// Sync flags sent with appends.
const (
	syncData  = "DATA"
	syncClose = "CLOSE"
)

// FileWriter streams bytes into a remote file opened by Create. Writes are
// buffered and sent as appends at increasing offsets under the lease taken
// at creation. A FileWriter is not safe for concurrent use.
type FileWriter struct {
	client    *Client
	ctx       context.Context
	path      string
	leaseID   string
	sessionID string

	buf    bytes.Buffer
	offset int64 // bytes acknowledged by the store
	closed bool
}

// Create creates (or truncates, under IfExistsOverwrite) the file at
// remotePath and returns a writer for its content. Parent directories are
// created by the store. ctx governs every request the writer makes.
func (c *Client) Create(ctx context.Context, remotePath string, mode IfExists) (*FileWriter, error) {
	clean := CleanPath(remotePath)
	if clean == "" {
		return nil, fmt.Errorf("adls: cannot create file at root path %q", remotePath)
	}

	leaseID := uuid.NewString()

	c.logger.Info("creating remote file",
		slog.String("path", clean),
		slog.String("if_exists", mode.String()),
	)

	q := url.Values{}
	q.Set("op", "CREATE")
	q.Set("overwrite", strconv.FormatBool(mode == IfExistsOverwrite))
	q.Set("write", "true")
	q.Set("syncFlag", syncData)
	q.Set("leaseid", leaseID)
	q.Set("filesessionid", leaseID)

	resp, err := c.do(ctx, http.MethodPut, clean, q, http.NoBody, 0)
	if err != nil {
		return nil, err
	}

	if err := drain(resp); err != nil {
		return nil, err
	}

	return &FileWriter{
		client:    c,
		ctx:       ctx,
		path:      clean,
		leaseID:   leaseID,
		sessionID: leaseID,
	}, nil
}

// Path returns the cleaned remote path.
func (w *FileWriter) Path() string { return w.path }

// Offset returns the number of bytes the store has acknowledged.
func (w *FileWriter) Offset() int64 { return w.offset }

// Write buffers p, sending a full buffer to the store whenever it fills.
func (w *FileWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}

	written := 0
	size := w.client.bufferSize

	for len(p) > 0 {
		room := size - w.buf.Len()
		take := min(room, len(p))

		w.buf.Write(p[:take])
		p = p[take:]
		written += take

		if w.buf.Len() >= size {
			if err := w.appendBuffered(syncData); err != nil {
				return written, err
			}
		}
	}

	return written, nil
}

// Flush sends any buffered bytes to the store.
func (w *FileWriter) Flush() error {
	if w.closed {
		return ErrClosed
	}

	if w.buf.Len() == 0 {
		return nil
	}

	return w.appendBuffered(syncData)
}

// Close sends remaining bytes with the CLOSE sync flag, releasing the lease.
// Calling Close more than once returns nil.
func (w *FileWriter) Close() error {
	if w.closed {
		return nil
	}

	w.closed = true

	if err := w.appendBuffered(syncClose); err != nil {
		return err
	}

	w.client.logger.Debug("remote file closed",
		slog.String("path", w.path),
		slog.Int64("size", w.offset),
	)

	return nil
}

// appendBuffered sends the buffer as one append at the current offset.
// A CLOSE append is sent even when the buffer is empty.
func (w *FileWriter) appendBuffered(flag string) error {
	n := w.buf.Len()

	q := url.Values{}
	q.Set("op", "APPEND")
	q.Set("append", "true")
	q.Set("offset", strconv.FormatInt(w.offset, 10))
	q.Set("syncFlag", flag)
	q.Set("leaseid", w.leaseID)
	q.Set("filesessionid", w.sessionID)

	w.client.logger.Debug("appending",
		slog.String("path", w.path),
		slog.Int64("offset", w.offset),
		slog.Int("length", n),
		slog.String("sync_flag", flag),
	)

	resp, err := w.client.do(w.ctx, http.MethodPost, w.path, q, bytes.NewReader(w.buf.Bytes()), int64(n))
	if err != nil {
		return err
	}

	if err := drain(resp); err != nil {
		return err
	}

	w.offset += int64(n)
	w.buf.Reset()

	return nil
}
