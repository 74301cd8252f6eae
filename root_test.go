package main

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tonimelisma/adls-go/internal/config"
	"github.com/tonimelisma/adls-go/internal/outcome"
)

// Global flag reset pattern: newRootCmd() binds flags via StringVar/BoolVar,
// which reset the globals to their defaults. Tests that set globals directly
// restore them with t.Cleanup.

func withFlags(t *testing.T, verbose, quiet bool) {
	t.Helper()

	oldVerbose, oldQuiet := flagVerbose, flagQuiet

	t.Cleanup(func() {
		flagVerbose = oldVerbose
		flagQuiet = oldQuiet
	})

	flagVerbose = verbose
	flagQuiet = quiet
}

func TestBuildLogger_Levels(t *testing.T) {
	tests := []struct {
		name           string
		configLevel    string
		verbose, quiet bool
		enabled        slog.Level
		disabled       slog.Level
	}{
		{name: "bootstrap default", enabled: slog.LevelWarn, disabled: slog.LevelInfo},
		{name: "config info", configLevel: "info", enabled: slog.LevelInfo, disabled: slog.LevelDebug},
		{name: "config debug", configLevel: "debug", enabled: slog.LevelDebug, disabled: slog.LevelDebug - 1},
		{name: "config error", configLevel: "error", enabled: slog.LevelError, disabled: slog.LevelWarn},
		{name: "verbose wins", configLevel: "error", verbose: true, enabled: slog.LevelDebug, disabled: slog.LevelDebug - 1},
		{name: "quiet wins", configLevel: "debug", quiet: true, enabled: slog.LevelError, disabled: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withFlags(t, tt.verbose, tt.quiet)

			cfg := config.DefaultConfig()
			cfg.LogLevel = tt.configLevel

			h := buildLogger(cfg).Handler()
			assert.True(t, h.Enabled(context.Background(), tt.enabled))
			assert.False(t, h.Enabled(context.Background(), tt.disabled))
		})
	}
}

func TestBuildLogger_NilConfig(t *testing.T) {
	withFlags(t, false, false)

	h := buildLogger(nil).Handler()
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitAuthorizationDenied, exitCode(outcome.AuthorizationDenied("denied", nil)))
	assert.Equal(t, exitFailure, exitCode(outcome.TransferFailure(500, "boom", nil)))
	assert.Equal(t, exitFailure, exitCode(errors.New("plain")))
}

func TestConfigPath_Precedence(t *testing.T) {
	old := flagConfigPath
	t.Cleanup(func() { flagConfigPath = old })

	flagConfigPath = ""
	t.Setenv(config.EnvConfig, "")
	assert.Equal(t, config.DefaultConfigPath(), configPath())

	t.Setenv(config.EnvConfig, "/env/config.toml")
	assert.Equal(t, "/env/config.toml", configPath())

	flagConfigPath = "/flag/config.toml"
	assert.Equal(t, "/flag/config.toml", configPath())
}

func TestNewRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	names := make([]string, 0)
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}

	assert.ElementsMatch(t, []string{"put", "check", "history"}, names)
}

func TestInterruptContext_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx := interruptContext(parent, slog.Default())

	cancel()
	<-ctx.Done()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
