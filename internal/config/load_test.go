package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/adls-go/internal/account"
	"github.com/tonimelisma/adls-go/testutil"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	err := os.WriteFile(path, []byte(content), 0o600)
	require.NoError(t, err)

	return path
}

func TestLoad_ValidFullConfig(t *testing.T) {
	path := writeTestConfig(t, `
log_level = "debug"

[account.lake]
kind = "adls-certificate"
client_id = "11111111-2222-3333-4444-555555555555"
tenant_id = "contoso.onmicrosoft.com"
certificate_file = "/etc/adls/principal.pem"
storage_domain = "azuredatalakestore.net"

[account.archive]
kind = "blob"
access_key = "c2VjcmV0"

[auth]
max_concurrent_token_requests = 2
resource = "https://datalake.azure.net/"
authority_host = "https://login.microsoftonline.us"

[transfers]
buffer_size = "8MiB"
bandwidth_limit = "5MB/s"

[network]
connect_timeout = "5s"
data_timeout = "2m"
user_agent = "ingest/1.0"

[journal]
enabled = false
path = "/var/lib/adls/journal.db"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	require.Len(t, cfg.Accounts, 2)
	assert.Equal(t, "adls-certificate", cfg.Accounts["lake"].Kind)
	assert.Equal(t, "contoso.onmicrosoft.com", cfg.Accounts["lake"].TenantID)
	assert.Equal(t, "c2VjcmV0", cfg.Accounts["archive"].AccessKey)
	assert.Equal(t, 2, cfg.Auth.MaxConcurrentTokenRequests)
	assert.Equal(t, "https://datalake.azure.net/", cfg.Auth.Resource)
	assert.Equal(t, "8MiB", cfg.Transfers.BufferSize)
	assert.Equal(t, "5MB/s", cfg.Transfers.BandwidthLimit)
	assert.Equal(t, "ingest/1.0", cfg.Network.UserAgent)
	assert.False(t, cfg.Journal.Enabled)
	assert.Equal(t, "/var/lib/adls/journal.db", cfg.JournalPath())
}

func TestLoad_UnsetFieldsKeepDefaults(t *testing.T) {
	path := writeTestConfig(t, `
[account.lake]
kind = "adls-gen2"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, defaultLogLevel, cfg.LogLevel)
	assert.Equal(t, defaultMaxConcurrentTokenRequests, cfg.Auth.MaxConcurrentTokenRequests)
	assert.Equal(t, defaultResource, cfg.Auth.Resource)
	assert.Equal(t, defaultBufferSize, cfg.Transfers.BufferSize)
	assert.Equal(t, defaultStorageDomain, cfg.Transfers.StorageDomain)
	assert.True(t, cfg.Journal.Enabled)
}

func TestLoad_GateCanBeDisabled(t *testing.T) {
	path := writeTestConfig(t, "[auth]\nmax_concurrent_token_requests = 0\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.Auth.MaxConcurrentTokenRequests)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeTestConfig(t, "log_level = \n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoad_ValidationCollectsAllErrors(t *testing.T) {
	path := writeTestConfig(t, `
log_level = "chatty"

[account.lake]
kind = "adls-certificate"

[account.archive]
kind = "blob"

[account.odd]
kind = "s3"

[auth]
max_concurrent_token_requests = -1

[transfers]
buffer_size = "1KB"
bandwidth_limit = "fast"

[network]
connect_timeout = "1ms"
`)

	_, err := Load(path)
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "log_level")
	assert.Contains(t, msg, `account "lake": client_id`)
	assert.Contains(t, msg, `account "lake": certificate_file`)
	assert.Contains(t, msg, `account "archive": access_key`)
	assert.Contains(t, msg, `account "odd": kind`)
	assert.Contains(t, msg, "max_concurrent_token_requests")
	assert.Contains(t, msg, "buffer_size")
	assert.Contains(t, msg, "bandwidth_limit")
	assert.Contains(t, msg, "connect_timeout")
}

func TestLoad_AuthorityHostMustBeAbsolute(t *testing.T) {
	path := writeTestConfig(t, "[auth]\nauthority_host = \"login.example\"\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authority_host")
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestResolve_SingleAccountAutoSelected(t *testing.T) {
	path := writeTestConfig(t, "[account.lake]\nkind = \"adls-gen2\"\n")

	r, err := Resolve(EnvOverrides{}, CLIOverrides{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, "lake", r.AccountName)
	assert.Equal(t, path, r.ConfigPath)
}

func TestResolve_Precedence(t *testing.T) {
	envPath := writeTestConfig(t, "[account.from_env_file]\nkind = \"adls-gen2\"\n")
	cliPath := writeTestConfig(t, `
[account.one]
kind = "adls-gen2"

[account.two]
kind = "adls-gen2"
`)

	r, err := Resolve(EnvOverrides{ConfigPath: envPath}, CLIOverrides{})
	require.NoError(t, err)
	assert.Equal(t, "from_env_file", r.AccountName)

	r, err = Resolve(EnvOverrides{ConfigPath: envPath, Account: "one"}, CLIOverrides{ConfigPath: cliPath})
	require.NoError(t, err)
	assert.Equal(t, "one", r.AccountName)

	r, err = Resolve(EnvOverrides{Account: "one"}, CLIOverrides{ConfigPath: cliPath, Account: "two"})
	require.NoError(t, err)
	assert.Equal(t, "two", r.AccountName)
}

func TestResolve_AccountSelectionErrors(t *testing.T) {
	twoAccounts := writeTestConfig(t, `
[account.one]
kind = "adls-gen2"

[account.two]
kind = "adls-gen2"
`)

	tests := []struct {
		name    string
		path    string
		account string
		want    string
	}{
		{"none configured", filepath.Join(t.TempDir(), "absent.toml"), "", "no accounts configured"},
		{"ambiguous", twoAccounts, "", "multiple accounts configured (one, two)"},
		{"unknown name", twoAccounts, "three", `account "three" is not configured (have: one, two)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(EnvOverrides{}, CLIOverrides{ConfigPath: tt.path, Account: tt.account})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNoAccount)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAccountConfig_DescriptorCertificate(t *testing.T) {
	key, cert := testutil.SelfSignedCert(t)
	pemPath := testutil.WriteCombinedPEM(t, t.TempDir(), key, cert)

	ac := AccountConfig{
		Kind:            "adls-certificate",
		ClientID:        "client-1",
		TenantID:        "tenant-1",
		CertificateFile: pemPath,
		StorageDomain:   "azuredatalakestore.cn",
	}

	desc, err := ac.Descriptor("lake")
	require.NoError(t, err)

	ca, ok := desc.(*account.CertificateAccount)
	require.True(t, ok)
	assert.Equal(t, "lake", ca.Name())
	assert.Equal(t, "client-1", ca.Certificate.ClientID)
	assert.Equal(t, "tenant-1", ca.Certificate.TenantID)
	assert.Equal(t, "azuredatalakestore.cn", ca.StorageDomain)
	assert.True(t, cert.Equal(ca.Certificate.Certificate))
	assert.NotNil(t, ca.Certificate.Key)
}

func TestAccountConfig_DescriptorMissingFile(t *testing.T) {
	ac := AccountConfig{
		Kind:            "adls-certificate",
		ClientID:        "client-1",
		CertificateFile: filepath.Join(t.TempDir(), "absent.pem"),
	}

	_, err := ac.Descriptor("lake")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), `account "lake"`)
}

func TestAccountConfig_DescriptorOtherKinds(t *testing.T) {
	desc, err := AccountConfig{Kind: "blob", AccessKey: "k"}.Descriptor("archive")
	require.NoError(t, err)
	assert.Equal(t, account.KindBlob, desc.Kind())

	desc, err = AccountConfig{Kind: "adls-gen2"}.Descriptor("gen2")
	require.NoError(t, err)
	assert.Equal(t, account.KindGenTwo, desc.Kind())
	assert.Equal(t, "gen2", desc.Name())

	_, err = AccountConfig{Kind: "s3"}.Descriptor("odd")
	require.Error(t, err)
}
