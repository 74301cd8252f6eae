package config

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/tonimelisma/adls-go/internal/account"
)

// Validation range constants.
const (
	minBufferBytes    = 4 * kibibyte
	maxBufferBytes    = 100 * mebibyte
	maxTokenRequests  = 64
	minConnectTimeout = 1 * time.Second
	minDataTimeout    = 5 * time.Second
)

// Validate checks all configuration values and returns all errors found,
// so users can fix every issue in one pass.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateLogLevel(cfg.LogLevel)...)
	errs = append(errs, validateAccounts(cfg.Accounts)...)
	errs = append(errs, validateAuth(&cfg.Auth)...)
	errs = append(errs, validateTransfers(&cfg.Transfers)...)
	errs = append(errs, validateNetwork(&cfg.Network)...)

	return errors.Join(errs...)
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func validateLogLevel(level string) []error {
	if !validLogLevels[level] {
		return []error{fmt.Errorf("log_level: must be one of debug, info, warn, error; got %q", level)}
	}

	return nil
}

// validateAccounts checks every [account.<name>] section in name order so
// the error report is stable.
func validateAccounts(accounts map[string]AccountConfig) []error {
	names := make([]string, 0, len(accounts))
	for name := range accounts {
		names = append(names, name)
	}

	sort.Strings(names)

	var errs []error

	for _, name := range names {
		for _, err := range validateAccount(accounts[name]) {
			errs = append(errs, fmt.Errorf("account %q: %w", name, err))
		}
	}

	return errs
}

func validateAccount(a AccountConfig) []error {
	kind, ok := account.ParseKind(a.Kind)
	if !ok {
		return []error{fmt.Errorf("kind: must be one of %s, %s, %s; got %q",
			account.KindNameCertificate, account.KindNameBlob, account.KindNameGenTwo, a.Kind)}
	}

	var errs []error

	switch kind {
	case account.KindCertificate:
		if a.ClientID == "" {
			errs = append(errs, errors.New("client_id: required for kind "+account.KindNameCertificate))
		}

		if a.CertificateFile == "" {
			errs = append(errs, errors.New("certificate_file: required for kind "+account.KindNameCertificate))
		}
	case account.KindBlob:
		if a.AccessKey == "" {
			errs = append(errs, errors.New("access_key: required for kind "+account.KindNameBlob))
		}
	case account.KindGenTwo:
	}

	return errs
}

func validateAuth(a *AuthConfig) []error {
	var errs []error

	if a.MaxConcurrentTokenRequests < 0 || a.MaxConcurrentTokenRequests > maxTokenRequests {
		errs = append(errs, fmt.Errorf("max_concurrent_token_requests: must be between 0 and %d, got %d",
			maxTokenRequests, a.MaxConcurrentTokenRequests))
	}

	if a.Resource == "" {
		errs = append(errs, errors.New("resource: must not be empty"))
	}

	if a.AuthorityHost != "" {
		u, err := url.Parse(a.AuthorityHost)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("authority_host: must be an absolute URL, got %q", a.AuthorityHost))
		}
	}

	return errs
}

func validateTransfers(t *TransfersConfig) []error {
	var errs []error

	n, err := ParseSize(t.BufferSize)

	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("buffer_size: %w", err))
	case n < minBufferBytes || n > maxBufferBytes:
		errs = append(errs, fmt.Errorf("buffer_size: must be between 4KiB and 100MiB, got %q", t.BufferSize))
	}

	if _, err := ParseBandwidth(t.BandwidthLimit); err != nil {
		errs = append(errs, fmt.Errorf("bandwidth_limit: %w", err))
	}

	if t.StorageDomain == "" {
		errs = append(errs, errors.New("storage_domain: must not be empty"))
	}

	return errs
}

func validateNetwork(n *NetworkConfig) []error {
	var errs []error

	errs = append(errs, validateDurationMin("connect_timeout", n.ConnectTimeout, minConnectTimeout)...)
	errs = append(errs, validateDurationMin("data_timeout", n.DataTimeout, minDataTimeout)...)

	return errs
}

func validateDurationMin(field, value string, minimum time.Duration) []error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return []error{fmt.Errorf("%s: invalid duration %q: %w", field, value, err)}
	}

	if d < minimum {
		return []error{fmt.Errorf("%s: must be >= %s, got %s", field, minimum, d)}
	}

	return nil
}
