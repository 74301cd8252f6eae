package config

// Default values for configuration options: layer 0 of the override chain.
const (
	defaultLogLevel                   = "info"
	defaultMaxConcurrentTokenRequests = 5
	defaultResource                   = "https://storage.azure.com/"
	defaultBufferSize                 = "4MiB"
	defaultBandwidthLimit             = "0"
	defaultStorageDomain              = "azuredatalakestore.net"
	defaultConnectTimeout             = "10s"
	defaultDataTimeout                = "60s"
)

// DefaultConfig returns a Config populated with all default values. It is
// both the starting point for TOML decoding and the fallback when no config
// file exists.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: defaultLogLevel,
		Accounts: make(map[string]AccountConfig),
		Auth: AuthConfig{
			MaxConcurrentTokenRequests: defaultMaxConcurrentTokenRequests,
			Resource:                   defaultResource,
		},
		Transfers: TransfersConfig{
			BufferSize:     defaultBufferSize,
			BandwidthLimit: defaultBandwidthLimit,
			StorageDomain:  defaultStorageDomain,
		},
		Network: NetworkConfig{
			ConnectTimeout: defaultConnectTimeout,
			DataTimeout:    defaultDataTimeout,
		},
		Journal: JournalConfig{Enabled: true},
	}
}
