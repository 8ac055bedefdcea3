// Package scheduler runs the background loops of the daemon: the
// connectivity watcher and the periodic sync.
package scheduler

import (
	"context"
	"time"

	"github.com/opsdeck/opsdeck/internal/ledger"
	"github.com/opsdeck/opsdeck/internal/logger"
)

// Pinger probes whether the remote API is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnectivityWatcher polls the remote API and feeds transitions into the
// ledger's connectivity flag. The offline-to-online transition is what
// kicks the ledger's drain-ready hook.
type ConnectivityWatcher struct {
	pinger   Pinger
	ledger   *ledger.Ledger
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

func NewConnectivityWatcher(pinger Pinger, led *ledger.Ledger, log logger.Logger, interval time.Duration) *ConnectivityWatcher {
	return &ConnectivityWatcher{
		pinger:   pinger,
		ledger:   led,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start probes once immediately, then on every tick.
func (w *ConnectivityWatcher) Start(ctx context.Context) {
	w.probe(ctx)

	ticker := time.NewTicker(w.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.probe(ctx)
			case <-w.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the watcher.
func (w *ConnectivityWatcher) Stop() {
	close(w.stopCh)
}

func (w *ConnectivityWatcher) probe(ctx context.Context) {
	wasOnline := w.ledger.Online()
	err := w.pinger.Ping(ctx)
	online := err == nil

	if online != wasOnline {
		if online {
			w.logger.Info("remote api reachable again")
		} else {
			w.logger.Warn("remote api unreachable, entering offline mode",
				logger.Error(err))
		}
	}
	w.ledger.SetOnline(online)
}
