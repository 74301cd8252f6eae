package adls

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultStorageDomain is the public-cloud Data Lake Store domain.
	DefaultStorageDomain = "azuredatalakestore.net"

	apiVersion       = "2018-09-01"
	webHDFSPrefix    = "/webhdfs/v1"
	defaultUserAgent = "adls-go/0.1"
)

// TokenSource provides bearer tokens. Defined at the consumer per Go
// convention "accept interfaces, return structs".
type TokenSource interface {
	Token() (string, error)
}

// Client is an HTTP client for one Data Lake Store account.
// It does not retry: every request is issued exactly once.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
	logger     *slog.Logger
	userAgent  string

	// bufferSize is the number of bytes a FileWriter holds before appending.
	bufferSize int
}

// EndpointURL derives the service base URL from an account name.
// Empty domain means DefaultStorageDomain.
func EndpointURL(accountName, domain string) string {
	if domain == "" {
		domain = DefaultStorageDomain
	}

	return fmt.Sprintf("https://%s.%s", accountName, domain)
}

// NewClient creates a store client.
// baseURL is typically the result of EndpointURL.
func NewClient(baseURL string, httpClient *http.Client, token TokenSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		token:      token,
		logger:     logger,
		userAgent:  defaultUserAgent,
		bufferSize: DefaultBufferSize,
	}
}

// SetUserAgent overrides the User-Agent header sent with every request.
func (c *Client) SetUserAgent(ua string) {
	if ua != "" {
		c.userAgent = ua
	}
}

// SetBufferSize sets how many bytes each FileWriter buffers per append.
// Values <= 0 keep the default.
func (c *Client) SetBufferSize(n int) {
	if n > 0 {
		c.bufferSize = n
	}
}

// CleanPath normalizes a remote path: NFC-normalized, slash-separated,
// rooted, with no trailing slash. Returns "" for the root itself.
func CleanPath(p string) string {
	p = norm.NFC.String(p)
	p = strings.ReplaceAll(p, "\\", "/")

	cleaned := path.Clean("/" + p)
	if cleaned == "/" {
		return ""
	}

	return cleaned
}

// escapePath escapes each segment of a cleaned path for use in a URL.
func escapePath(p string) string {
	segments := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	return "/" + strings.Join(segments, "/")
}

// do executes a single WebHDFS operation on remotePath. query carries the
// operation parameters; api-version is added here. On 2xx the caller owns
// the response body. Non-2xx responses are returned as *RemoteError.
func (c *Client) do(
	ctx context.Context, method, remotePath string, query url.Values, body io.Reader, length int64,
) (*http.Response, error) {
	query.Set("api-version", apiVersion)
	u := c.baseURL + webHDFSPrefix + escapePath(remotePath) + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("adls: creating request: %w", err)
	}

	tok, err := c.token.Token()
	if err != nil {
		return nil, fmt.Errorf("adls: obtaining token: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("User-Agent", c.userAgent)

	if body != nil {
		req.Header.Set("Content-Type", "application/octet-stream")
		req.ContentLength = length
	}

	op := query.Get("op")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("request failed",
			slog.String("op", op),
			slog.String("path", remotePath),
			slog.String("error", err.Error()),
		)

		return nil, fmt.Errorf("adls: %s %s: %w", op, remotePath, err)
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		c.logger.Debug("request succeeded",
			slog.String("op", op),
			slog.String("path", remotePath),
			slog.Int("status", resp.StatusCode),
		)

		return resp, nil
	}

	errBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()

	if readErr != nil {
		errBody = []byte("(failed to read response body)")
	}

	remoteErr := newRemoteError(resp, errBody)

	c.logger.Warn("request rejected",
		slog.String("op", op),
		slog.String("path", remotePath),
		slog.Int("status", resp.StatusCode),
		slog.String("exception", remoteErr.Exception),
		slog.String("request_id", remoteErr.RequestID),
	)

	return nil, remoteErr
}

// drain discards and closes a response body so the connection can be reused.
func drain(resp *http.Response) error {
	defer resp.Body.Close()

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("adls: draining response body: %w", err)
	}

	return nil
}
