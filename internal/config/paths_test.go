package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigPath_EndsWithConfigToml(t *testing.T) {
	path := DefaultConfigPath()
	assert.NotEmpty(t, path)
	assert.True(t, strings.HasSuffix(path, filepath.Join(appName, "config.toml")))
}

func TestDefaultJournalPath(t *testing.T) {
	path := DefaultJournalPath()
	assert.NotEmpty(t, path)
	assert.True(t, strings.HasSuffix(path, filepath.Join(appName, "journal.db")))
}

func TestDefaultDirs_LinuxXDG(t *testing.T) {
	if runtime.GOOS != platformLinux {
		t.Skip("XDG variables apply on Linux only")
	}

	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_DATA_HOME", "/xdg/data")

	assert.Equal(t, filepath.Join("/xdg/config", appName), DefaultConfigDir())
	assert.Equal(t, filepath.Join("/xdg/data", appName), DefaultDataDir())
}

func TestJournalPath_ExpandsTilde(t *testing.T) {
	t.Setenv("HOME", "/home/testuser")

	cfg := DefaultConfig()
	cfg.Journal.Path = "~/adls/journal.db"

	assert.Equal(t, "/home/testuser/adls/journal.db", cfg.JournalPath())
}

func TestReadEnvOverrides(t *testing.T) {
	t.Setenv(EnvConfig, "/tmp/custom.toml")
	t.Setenv(EnvAccount, "lake")

	env := ReadEnvOverrides()
	assert.Equal(t, "/tmp/custom.toml", env.ConfigPath)
	assert.Equal(t, "lake", env.Account)
}
