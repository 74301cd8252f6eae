// Package credential exchanges service principal certificate material for a
// bearer token scoped to the storage resource. Each call performs one
// client-credentials request against the token issuer; tokens are never
// cached. In-flight issuer requests are bounded process-wide by the auth gate.
package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/oauth2/microsoft"

	"github.com/tonimelisma/adls-go/internal/account"
	"github.com/tonimelisma/adls-go/internal/outcome"
)

const (
	// DefaultResource is the storage resource tokens are scoped to.
	DefaultResource = "https://storage.azure.com/"

	// DefaultMaxConcurrentRequests bounds in-flight token requests per process.
	DefaultMaxConcurrentRequests = 5

	defaultTenant       = "common"
	clientAssertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"
)

// AccessToken is a bearer token for one upload. It satisfies
// adls.TokenSource by returning the same value on every call.
type AccessToken struct {
	Value string
	Scope string
}

// Token returns the bearer value.
func (t AccessToken) Token() (string, error) {
	return t.Value, nil
}

// String never reveals the bearer value.
func (t AccessToken) String() string {
	return fmt.Sprintf("AccessToken(scope=%s)", t.Scope)
}

// Options configures a Broker.
type Options struct {
	// Resource is the storage resource URI. Empty means DefaultResource.
	Resource string
	// AuthorityHost overrides the issuer host, e.g. for sovereign clouds.
	// Empty means the public Microsoft identity platform.
	AuthorityHost string
	// MaxConcurrentRequests bounds in-flight token requests across the
	// process. Zero or negative disables the bound.
	MaxConcurrentRequests int
	// HTTPClient is used for issuer requests. Nil means http.DefaultClient.
	HTTPClient *http.Client
}

// Broker acquires storage-scoped access tokens with a client certificate.
type Broker struct {
	resource      string
	authorityHost string
	httpClient    *http.Client
	logger        *slog.Logger
	nowFunc       func() time.Time

	gate     *authGate // nil when unbounded
	gateSize int64
}

// NewBroker creates a Broker. All Brokers in a process share one auth gate.
func NewBroker(opts Options, logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.Default()
	}

	resource := opts.Resource
	if resource == "" {
		resource = DefaultResource
	}

	b := &Broker{
		resource:      resource,
		authorityHost: strings.TrimRight(opts.AuthorityHost, "/"),
		httpClient:    opts.HTTPClient,
		logger:        logger,
		nowFunc:       time.Now,
	}

	if opts.MaxConcurrentRequests > 0 {
		b.gate = &processGate
		b.gateSize = int64(opts.MaxConcurrentRequests)
	}

	return b
}

// Scope returns the OAuth2 scope requested for the broker's resource.
func (b *Broker) Scope() string {
	return scopeFor(b.resource)
}

// scopeFor builds "<resource>/.default" without doubling the slash.
func scopeFor(resource string) string {
	return strings.TrimRight(resource, "/") + "/.default"
}

// tokenURL returns the issuer token endpoint for tenant.
func (b *Broker) tokenURL(tenant string) string {
	if tenant == "" {
		tenant = defaultTenant
	}

	if b.authorityHost == "" {
		return microsoft.AzureADEndpoint(tenant).TokenURL
	}

	return b.authorityHost + "/" + url.PathEscape(tenant) + "/oauth2/v2.0/token"
}

// AcquireAccessToken requests a token for the account's service principal.
// It blocks until the issuer responds. Every failure is an
// outcome.ErrAuthenticationFailure error; unusable certificate material is
// reported with an "invalid certificate material" message before any
// network activity.
func (b *Broker) AcquireAccessToken(ctx context.Context, acct *account.CertificateAccount) (AccessToken, error) {
	info := acct.CertificateInfo()
	scope := b.Scope()

	if b.gate != nil {
		sem := b.gate.semaphore(b.gateSize, b.logger)
		if err := sem.Acquire(ctx, 1); err != nil {
			return AccessToken{}, outcome.AuthenticationFailure("waiting for a token request slot: "+err.Error(), err)
		}
		defer sem.Release(1)
	}

	signer, err := validateMaterial(info)
	if err != nil {
		b.logger.Warn("certificate material rejected",
			slog.String("account", acct.Name()),
			slog.String("error", err.Error()),
		)

		return AccessToken{}, outcome.AuthenticationFailure("invalid certificate material: "+err.Error(), err)
	}

	tokenURL := b.tokenURL(info.TenantID)

	assertion, err := signAssertion(info, signer, tokenURL, b.nowFunc())
	if err != nil {
		return AccessToken{}, outcome.AuthenticationFailure("invalid certificate material: "+err.Error(), err)
	}

	cfg := &clientcredentials.Config{
		ClientID: info.ClientID,
		TokenURL: tokenURL,
		Scopes:   []string{scope},
		EndpointParams: url.Values{
			"client_assertion_type": {clientAssertionType},
			"client_assertion":      {assertion},
		},
		AuthStyle: oauth2.AuthStyleInParams,
	}

	if b.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, b.httpClient)
	}

	b.logger.Info("requesting access token",
		slog.String("account", acct.Name()),
		slog.String("client_id", info.ClientID),
		slog.String("scope", scope),
	)

	tok, err := cfg.Token(ctx)
	if err != nil {
		msg := issuerMessage(err)
		b.logger.Warn("token request failed",
			slog.String("client_id", info.ClientID),
			slog.String("error", msg),
		)

		return AccessToken{}, outcome.AuthenticationFailure(msg, err)
	}

	b.logger.Debug("access token acquired",
		slog.String("client_id", info.ClientID),
		slog.Time("expiry", tok.Expiry),
	)

	return AccessToken{Value: tok.AccessToken, Scope: scope}, nil
}

// issuerMessage extracts the most useful text from a token request failure.
func issuerMessage(err error) string {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		switch {
		case re.ErrorDescription != "":
			return fmt.Sprintf("token issuer rejected the request: %s: %s", re.ErrorCode, re.ErrorDescription)
		case re.ErrorCode != "":
			return "token issuer rejected the request: " + re.ErrorCode
		case re.Response != nil:
			return fmt.Sprintf("token issuer rejected the request: HTTP %d", re.Response.StatusCode)
		}
	}

	return "token issuer unreachable: " + err.Error()
}
