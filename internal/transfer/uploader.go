// Package transfer uploads a single local file into a Data Lake Store
// account: it checks the account kind, obtains a fresh token, opens the
// remote file under the requested overwrite policy, streams the local bytes
// and flushes. Failures come back as *outcome.Error values.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tonimelisma/adls-go/internal/account"
	"github.com/tonimelisma/adls-go/internal/adls"
	"github.com/tonimelisma/adls-go/internal/credential"
	"github.com/tonimelisma/adls-go/internal/outcome"
)

// TokenAcquirer obtains a storage-scoped token. Satisfied by *credential.Broker.
type TokenAcquirer interface {
	AcquireAccessToken(ctx context.Context, acct *account.CertificateAccount) (credential.AccessToken, error)
}

// RemoteFile is an open remote write handle.
type RemoteFile interface {
	io.Writer
	Flush() error
	Close() error
}

// Store opens remote files. Satisfied by *adls.Client via ClientStore.
type Store interface {
	Create(ctx context.Context, remotePath string, mode adls.IfExists) (RemoteFile, error)
}

// StoreFactory builds a Store for an endpoint base URL and token.
type StoreFactory func(endpoint string, token adls.TokenSource) Store

// ProgressFunc reports bytes copied so far.
type ProgressFunc func(copied int64)

// Request is one upload. It is consumed by a single UploadFile call.
type Request struct {
	LocalPath  string
	RemotePath string
	Overwrite  bool
	Progress   ProgressFunc // optional
}

// Result reports a successful upload.
type Result struct {
	Endpoint   string
	RemotePath string
	Size       int64
}

// Uploader is the upload orchestrator. It is safe for concurrent use; each
// call is independent and no two calls share a token.
type Uploader struct {
	tokens        TokenAcquirer
	stores        StoreFactory
	storageDomain string
	limiter       *BandwidthLimiter
	logger        *slog.Logger

	// openFunc opens the local file. Tests override it to observe closes.
	openFunc func(name string) (io.ReadCloser, error)
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithStorageDomain sets the default service domain for endpoint derivation.
func WithStorageDomain(domain string) Option {
	return func(u *Uploader) { u.storageDomain = domain }
}

// WithBandwidthLimiter rate-limits the local read side of every upload.
func WithBandwidthLimiter(bl *BandwidthLimiter) Option {
	return func(u *Uploader) { u.limiter = bl }
}

// NewUploader creates an Uploader.
func NewUploader(tokens TokenAcquirer, stores StoreFactory, logger *slog.Logger, opts ...Option) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}

	u := &Uploader{
		tokens:        tokens,
		stores:        stores,
		storageDomain: adls.DefaultStorageDomain,
		logger:        logger,
		openFunc:      openLocalFile,
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}

// UploadFile copies req.LocalPath to req.RemotePath in the account. Only
// certificate-backed accounts are supported; any other kind fails with
// outcome.ErrUnsupportedAccountKind before any network activity.
//
// The local and remote handles are closed on every path. A failure while
// closing is logged and discarded: it never replaces an earlier failure and
// never turns a completed upload into a failure.
func (u *Uploader) UploadFile(ctx context.Context, desc account.Descriptor, req Request) (*Result, error) {
	var acct *account.CertificateAccount

	switch d := desc.(type) {
	case *account.CertificateAccount:
		acct = d
	default:
		u.logger.Warn("upload rejected: unsupported account kind",
			slog.String("account", desc.Name()),
			slog.String("kind", desc.Kind().String()),
		)

		return nil, outcome.UnsupportedAccountKind(desc.Kind())
	}

	token, err := u.tokens.AcquireAccessToken(ctx, acct)
	if err != nil {
		return nil, err
	}

	domain := acct.StorageDomain
	if domain == "" {
		domain = u.storageDomain
	}

	endpoint := adls.EndpointURL(acct.Name(), domain)
	store := u.stores(endpoint, token)

	mode := adls.IfExistsFail
	if req.Overwrite {
		mode = adls.IfExistsOverwrite
	}

	u.logger.Info("uploading",
		slog.String("account", acct.Name()),
		slog.String("local_path", req.LocalPath),
		slog.String("remote_path", req.RemotePath),
		slog.String("if_exists", mode.String()),
	)

	remote, err := store.Create(ctx, req.RemotePath, mode)
	if err != nil {
		return nil, outcome.Classify(err)
	}
	defer u.closeQuietly("remote file", req.RemotePath, remote)

	size, err := u.copyLocal(ctx, remote, req)
	if err != nil {
		return nil, err
	}

	if err := remote.Flush(); err != nil {
		return nil, outcome.Classify(err)
	}

	u.logger.Info("upload complete",
		slog.String("remote_path", req.RemotePath),
		slog.Int64("size", size),
	)

	return &Result{Endpoint: endpoint, RemotePath: req.RemotePath, Size: size}, nil
}

// copyLocal streams the local file into remote and returns bytes copied.
func (u *Uploader) copyLocal(ctx context.Context, remote io.Writer, req Request) (int64, error) {
	f, err := u.openFunc(req.LocalPath)
	if err != nil {
		return 0, outcome.TransferFailure(0, fmt.Sprintf("opening local file: %s", err), err)
	}
	defer u.closeQuietly("local file", req.LocalPath, f)

	var src io.Reader = u.limiter.WrapReader(ctx, f)

	dst := remote
	if req.Progress != nil {
		dst = &progressWriter{w: remote, progress: req.Progress}
	}

	n, err := io.Copy(dst, src)
	if err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return n, outcome.TransferFailure(0, fmt.Sprintf("reading local file: %s", err), err)
		}

		return n, outcome.Classify(err)
	}

	return n, nil
}

// closeQuietly closes c and logs, never returns, any failure.
func (u *Uploader) closeQuietly(what, path string, c io.Closer) {
	if err := c.Close(); err != nil {
		u.logger.Warn("ignoring close failure",
			slog.String("handle", what),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}

func openLocalFile(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

// progressWriter reports cumulative bytes written.
type progressWriter struct {
	w        io.Writer
	progress ProgressFunc
	total    int64
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.total += int64(n)
	p.progress(p.total)

	return n, err
}
