package scheduler

import (
	"context"
	"time"

	"github.com/opsdeck/opsdeck/internal/ledger"
	"github.com/opsdeck/opsdeck/internal/logger"
)

// Drainer replays the pending-change ledger.
type Drainer interface {
	Drain(ctx context.Context) bool
}

// SyncLoop periodically drains the ledger so changes that failed an earlier
// attempt are retried even without new mutations. A manual trigger channel
// serves explicit "sync now" requests.
type SyncLoop struct {
	drainer       Drainer
	ledger        *ledger.Ledger
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

func NewSyncLoop(drainer Drainer, led *ledger.Ledger, log logger.Logger, interval time.Duration, manualTrigger chan struct{}) *SyncLoop {
	return &SyncLoop{
		drainer:       drainer,
		ledger:        led,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic drain.
func (s *SyncLoop) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.drain(ctx)
			case <-s.manualTrigger:
				s.logger.Info("manual sync triggered")
				s.drain(ctx)
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the loop.
func (s *SyncLoop) Stop() {
	close(s.stopCh)
}

func (s *SyncLoop) drain(ctx context.Context) {
	if s.ledger.PendingCount() == 0 {
		return
	}
	if !s.drainer.Drain(ctx) {
		s.logger.Warn("sync pass left changes pending",
			logger.Int("pending", s.ledger.PendingCount()))
	}
}
