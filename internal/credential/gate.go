package credential

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// processGate is the single auth gate for the process. It is reachable only
// through Broker.AcquireAccessToken.
var processGate authGate

// authGate bounds concurrent token requests. The semaphore is built exactly
// once, on first use, sized by whichever broker reaches it first.
type authGate struct {
	once   sync.Once
	sem    *semaphore.Weighted
	size   int64
	builds atomic.Int32
}

func (g *authGate) semaphore(size int64, logger *slog.Logger) *semaphore.Weighted {
	g.once.Do(func() {
		g.builds.Add(1)
		g.size = size
		g.sem = semaphore.NewWeighted(size)
	})

	if size != g.size {
		logger.Debug("auth gate already sized by an earlier broker",
			slog.Int64("requested", size),
			slog.Int64("size", g.size),
		)
	}

	return g.sem
}
