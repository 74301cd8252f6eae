package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// interruptContext returns a context that is canceled on the first
// SIGINT/SIGTERM, so an in-flight upload stops and its remote file is
// closed on the way out. A second signal exits immediately.
func interruptContext(parent context.Context, logger *slog.Logger) context.Context {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			logger.Info("interrupted, canceling upload", slog.String("signal", sig.String()))
			cancel()
		case <-parent.Done():
			cancel()
			return
		}

		select {
		case sig := <-sigCh:
			logger.Warn("interrupted again, exiting", slog.String("signal", sig.String()))
			os.Exit(exitFailure)
		case <-parent.Done():
			return
		}
	}()

	return ctx
}
