package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrNoAccount is returned by Resolve when no account can be selected.
var ErrNoAccount = errors.New("config: no account selected")

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are fatal, with "did you mean?" suggestions.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns
// a Config populated with all default values.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve loads configuration and applies the override chain:
// defaults -> config file -> environment variables -> CLI flags.
// The account is chosen by --account, then ADLS_GO_ACCOUNT, then
// automatically when exactly one account is configured.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Resolved, error) {
	cfgPath := DefaultConfigPath()
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	cfg, err := LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	selector := cli.Account
	if selector == "" {
		selector = env.Account
	}

	name, acct, err := selectAccount(cfg, selector)
	if err != nil {
		return nil, err
	}

	return &Resolved{
		Config:      cfg,
		ConfigPath:  cfgPath,
		AccountName: name,
		Account:     acct,
	}, nil
}

// selectAccount picks the named account, or the only one when name is empty.
func selectAccount(cfg *Config, name string) (string, AccountConfig, error) {
	if name != "" {
		acct, ok := cfg.Accounts[name]
		if !ok {
			return "", AccountConfig{}, fmt.Errorf("%w: account %q is not configured (have: %s)",
				ErrNoAccount, name, accountList(cfg))
		}

		return name, acct, nil
	}

	switch len(cfg.Accounts) {
	case 0:
		return "", AccountConfig{}, fmt.Errorf("%w: no accounts configured; add an [account.<name>] section to %s",
			ErrNoAccount, DefaultConfigPath())
	case 1:
		for n, acct := range cfg.Accounts {
			return n, acct, nil
		}
	}

	return "", AccountConfig{}, fmt.Errorf("%w: multiple accounts configured (%s); specify with --account",
		ErrNoAccount, accountList(cfg))
}

func accountList(cfg *Config) string {
	names := make([]string, 0, len(cfg.Accounts))
	for n := range cfg.Accounts {
		names = append(names, n)
	}

	if len(names) == 0 {
		return "none"
	}

	sort.Strings(names)

	return strings.Join(names, ", ")
}
