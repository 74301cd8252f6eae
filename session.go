package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/tonimelisma/adls-go/internal/config"
	"github.com/tonimelisma/adls-go/internal/credential"
	"github.com/tonimelisma/adls-go/internal/journal"
	"github.com/tonimelisma/adls-go/internal/transfer"
)

// storeFactoryFor builds the remote store factory. Tests replace it to point
// uploads at a fake store.
var storeFactoryFor = transfer.NewClientStoreFactory

// session carries the collaborators shared by commands that talk to an account.
type session struct {
	cfg        *config.Resolved
	logger     *slog.Logger
	httpClient *http.Client
}

func newSession(cfg *config.Resolved) (*session, error) {
	httpClient, err := newHTTPClient(cfg.Network)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:        cfg,
		logger:     buildLogger(cfg.Config),
		httpClient: httpClient,
	}, nil
}

// newHTTPClient applies the network timeouts. There is no overall request
// timeout: an append of a full buffer on a slow link is legitimately long.
func newHTTPClient(n config.NetworkConfig) (*http.Client, error) {
	connect, err := time.ParseDuration(n.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect_timeout: %w", err)
	}

	data, err := time.ParseDuration(n.DataTimeout)
	if err != nil {
		return nil, fmt.Errorf("data_timeout: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connect}).DialContext
	transport.TLSHandshakeTimeout = connect
	transport.ResponseHeaderTimeout = data

	return &http.Client{Transport: transport}, nil
}

func (s *session) broker() *credential.Broker {
	return credential.NewBroker(credential.Options{
		Resource:              s.cfg.Auth.Resource,
		AuthorityHost:         s.cfg.Auth.AuthorityHost,
		MaxConcurrentRequests: s.cfg.Auth.MaxConcurrentTokenRequests,
		HTTPClient:            s.httpClient,
	}, s.logger)
}

func (s *session) uploader() (*transfer.Uploader, error) {
	bufferSize, err := config.ParseSize(s.cfg.Transfers.BufferSize)
	if err != nil {
		return nil, fmt.Errorf("buffer_size: %w", err)
	}

	rate, err := config.ParseBandwidth(s.cfg.Transfers.BandwidthLimit)
	if err != nil {
		return nil, fmt.Errorf("bandwidth_limit: %w", err)
	}

	limiter, err := transfer.NewBandwidthLimiter(rate, s.logger)
	if err != nil {
		return nil, err
	}

	stores := storeFactoryFor(transfer.ClientStoreConfig{
		HTTPClient: s.httpClient,
		UserAgent:  s.cfg.Network.UserAgent,
		BufferSize: int(bufferSize),
	}, s.logger)

	return transfer.NewUploader(s.broker(), stores, s.logger,
		transfer.WithStorageDomain(s.cfg.Transfers.StorageDomain),
		transfer.WithBandwidthLimiter(limiter),
	), nil
}

// openJournal opens the upload journal, or returns nil when it is disabled.
func openJournal(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*journal.Journal, error) {
	if !cfg.Journal.Enabled {
		return nil, nil //nolint:nilnil // nil journal = recording disabled
	}

	path := cfg.JournalPath()
	if path == "" {
		return nil, fmt.Errorf("journal: cannot determine data directory")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("journal: creating %s: %w", filepath.Dir(path), err)
	}

	return journal.Open(ctx, path, logger)
}
