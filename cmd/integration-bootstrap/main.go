// Writes the credentials config used by the e2e tests.
//
// Reads the service principal and account from the environment, validates
// that the certificate material loads, and writes .testdata/config.toml:
//
//	ADLS_E2E_ACCOUNT=mylake ADLS_E2E_CLIENT_ID=... ADLS_E2E_TENANT_ID=... \
//	ADLS_E2E_CERTIFICATE=/path/principal.pem go run ./cmd/integration-bootstrap
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/tonimelisma/adls-go/internal/account"
	"github.com/tonimelisma/adls-go/internal/config"
)

func main() {
	out := flag.String("out", filepath.Join(".testdata", "config.toml"), "config file to write")
	flag.Parse()

	if err := run(*out); err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s\n", *out)
}

func run(out string) error {
	name := os.Getenv("ADLS_E2E_ACCOUNT")
	if name == "" {
		return fmt.Errorf("ADLS_E2E_ACCOUNT is not set")
	}

	if os.Getenv("ADLS_E2E_CERTIFICATE") == "" {
		return fmt.Errorf("ADLS_E2E_CERTIFICATE is not set")
	}

	certPath, err := filepath.Abs(os.Getenv("ADLS_E2E_CERTIFICATE"))
	if err != nil {
		return fmt.Errorf("resolving ADLS_E2E_CERTIFICATE: %w", err)
	}

	keyPath := os.Getenv("ADLS_E2E_KEY")
	if keyPath != "" {
		if keyPath, err = filepath.Abs(keyPath); err != nil {
			return fmt.Errorf("resolving ADLS_E2E_KEY: %w", err)
		}
	}

	acct := config.AccountConfig{
		Kind:            account.KindNameCertificate,
		ClientID:        os.Getenv("ADLS_E2E_CLIENT_ID"),
		TenantID:        os.Getenv("ADLS_E2E_TENANT_ID"),
		CertificateFile: certPath,
		KeyFile:         keyPath,
		StorageDomain:   os.Getenv("ADLS_E2E_STORAGE_DOMAIN"),
	}

	if _, err := acct.Descriptor(name); err != nil {
		return err
	}

	journalPath, err := filepath.Abs(filepath.Join(filepath.Dir(out), "journal.db"))
	if err != nil {
		return fmt.Errorf("resolving journal path: %w", err)
	}

	cfg := config.DefaultConfig()
	cfg.LogLevel = "debug"
	cfg.Accounts[name] = acct
	cfg.Journal.Path = journalPath

	if err := config.Validate(cfg); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(out), err)
	}

	f, err := os.OpenFile(out, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening %s: %w", out, err)
	}

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("encoding config: %w", err)
	}

	return f.Close()
}
