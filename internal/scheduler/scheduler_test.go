package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/opsdeck/opsdeck/internal/domain"
	"github.com/opsdeck/opsdeck/internal/ledger"
	"github.com/opsdeck/opsdeck/internal/logger"
)

type stubPinger struct {
	fail atomic.Bool
}

func (p *stubPinger) Ping(context.Context) error {
	if p.fail.Load() {
		return fmt.Errorf("unreachable")
	}
	return nil
}

type countingDrainer struct {
	calls atomic.Int64
}

func (d *countingDrainer) Drain(context.Context) bool {
	d.calls.Add(1)
	return true
}

func newLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	return ledger.New(filepath.Join(t.TempDir(), "sync_state.json"), logger.New("error", false))
}

func TestConnectivityWatcherTracksTransitions(t *testing.T) {
	led := newLedger(t)
	pinger := &stubPinger{}
	w := NewConnectivityWatcher(pinger, led, logger.New("error", false), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	if !led.Online() {
		t.Error("expected online after successful initial probe")
	}

	pinger.fail.Store(true)
	waitFor(t, func() bool { return !led.Online() })

	pinger.fail.Store(false)
	waitFor(t, func() bool { return led.Online() })
}

func TestOnlineTransitionKicksDrainHook(t *testing.T) {
	led := newLedger(t)
	led.Track(domain.PendingChange{ID: "b1", Type: domain.ChangeAdd, EntityType: domain.EntityBookmark, Timestamp: 1})

	fired := make(chan struct{}, 1)
	led.SetDrainReadyHook(func() { fired <- struct{}{} })

	pinger := &stubPinger{}
	pinger.fail.Store(true)
	w := NewConnectivityWatcher(pinger, led, logger.New("error", false), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	waitFor(t, func() bool { return !led.Online() })
	pinger.fail.Store(false)

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("expected drain hook after connectivity returned")
	}
}

func TestSyncLoopDrainsOnTickAndTrigger(t *testing.T) {
	led := newLedger(t)
	led.Track(domain.PendingChange{ID: "b1", Type: domain.ChangeAdd, EntityType: domain.EntityBookmark, Timestamp: 1})

	drainer := &countingDrainer{}
	trigger := make(chan struct{}, 1)
	loop := NewSyncLoop(drainer, led, logger.New("error", false), 10*time.Millisecond, trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loop.Start(ctx)
	defer loop.Stop()

	waitFor(t, func() bool { return drainer.calls.Load() >= 1 })

	before := drainer.calls.Load()
	trigger <- struct{}{}
	waitFor(t, func() bool { return drainer.calls.Load() > before })
}

func TestSyncLoopSkipsEmptyLedger(t *testing.T) {
	led := newLedger(t)
	drainer := &countingDrainer{}
	loop := NewSyncLoop(drainer, led, logger.New("error", false), 5*time.Millisecond, make(chan struct{}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loop.Start(ctx)
	defer loop.Stop()

	time.Sleep(50 * time.Millisecond)
	if got := drainer.calls.Load(); got != 0 {
		t.Errorf("expected no drains with an empty ledger, got %d", got)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never met")
}
