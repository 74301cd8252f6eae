package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig  = "ADLS_GO_CONFIG"
	EnvAccount = "ADLS_GO_ACCOUNT"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath string // ADLS_GO_CONFIG: override config file path
	Account    string // ADLS_GO_ACCOUNT: selected account name
}

// ReadEnvOverrides reads environment variables and returns any overrides found.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath: os.Getenv(EnvConfig),
		Account:    os.Getenv(EnvAccount),
	}
}
