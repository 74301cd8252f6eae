// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for adls-go. Values come from a
// four-layer override chain (defaults -> config file -> environment -> CLI
// flags). Storage accounts are declared as [account.<name>] sections; one of
// them is selected per invocation.
package config

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	LogLevel  string                   `toml:"log_level"`
	Accounts  map[string]AccountConfig `toml:"account"`
	Auth      AuthConfig               `toml:"auth"`
	Transfers TransfersConfig          `toml:"transfers"`
	Network   NetworkConfig            `toml:"network"`
	Journal   JournalConfig            `toml:"journal"`
}

// AccountConfig is one [account.<name>] section. Which fields are required
// depends on Kind: adls-certificate needs client_id, certificate_file and
// key_file (which may be the same combined PEM file); blob needs access_key.
type AccountConfig struct {
	Kind            string `toml:"kind"`
	ClientID        string `toml:"client_id"`
	TenantID        string `toml:"tenant_id"`
	CertificateFile string `toml:"certificate_file"`
	KeyFile         string `toml:"key_file"`
	StorageDomain   string `toml:"storage_domain"`
	AccessKey       string `toml:"access_key"`
}

// AuthConfig controls token acquisition.
// MaxConcurrentTokenRequests bounds in-flight requests to the token issuer
// across the whole process; 0 disables the bound.
type AuthConfig struct {
	MaxConcurrentTokenRequests int    `toml:"max_concurrent_token_requests"`
	Resource                   string `toml:"resource"`
	AuthorityHost              string `toml:"authority_host"`
}

// TransfersConfig controls the remote write buffer and the upload rate.
type TransfersConfig struct {
	BufferSize     string `toml:"buffer_size"`
	BandwidthLimit string `toml:"bandwidth_limit"`
	StorageDomain  string `toml:"storage_domain"`
}

// NetworkConfig controls HTTP client behavior.
type NetworkConfig struct {
	ConnectTimeout string `toml:"connect_timeout"`
	DataTimeout    string `toml:"data_timeout"`
	UserAgent      string `toml:"user_agent"`
}

// JournalConfig controls the local upload history database.
type JournalConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // empty = DefaultJournalPath()
}

// CLIOverrides holds values from CLI flags that override config file and
// environment settings.
type CLIOverrides struct {
	ConfigPath string // --config flag (empty = use default)
	Account    string // --account flag (empty = env or single configured account)
}

// Resolved is the configuration for one invocation: the loaded Config plus
// the selected account.
type Resolved struct {
	*Config
	ConfigPath  string
	AccountName string
	Account     AccountConfig
}
