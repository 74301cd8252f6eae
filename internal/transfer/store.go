package transfer

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tonimelisma/adls-go/internal/adls"
)

// ClientStore adapts *adls.Client to Store.
type ClientStore struct {
	Client *adls.Client
}

// Create opens a remote file through the client.
func (s ClientStore) Create(ctx context.Context, remotePath string, mode adls.IfExists) (RemoteFile, error) {
	w, err := s.Client.Create(ctx, remotePath, mode)
	if err != nil {
		return nil, err
	}

	return w, nil
}

// ClientStoreConfig carries the client settings applied by NewClientStoreFactory.
type ClientStoreConfig struct {
	HTTPClient *http.Client
	UserAgent  string
	BufferSize int
}

// NewClientStoreFactory returns a StoreFactory producing adls-backed stores.
func NewClientStoreFactory(cfg ClientStoreConfig, logger *slog.Logger) StoreFactory {
	return func(endpoint string, token adls.TokenSource) Store {
		c := adls.NewClient(endpoint, cfg.HTTPClient, token, logger)
		c.SetUserAgent(cfg.UserAgent)
		c.SetBufferSize(cfg.BufferSize)

		return ClientStore{Client: c}
	}
}
