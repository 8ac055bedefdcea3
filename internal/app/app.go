// Package app wires the daemon together: config, logger, store backend,
// ledger, sync engine, schedulers and the HTTP server.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opsdeck/opsdeck/internal/bookmarks"
	"github.com/opsdeck/opsdeck/internal/config"
	"github.com/opsdeck/opsdeck/internal/httpserver"
	"github.com/opsdeck/opsdeck/internal/httpserver/deps"
	"github.com/opsdeck/opsdeck/internal/ledger"
	"github.com/opsdeck/opsdeck/internal/logger"
	"github.com/opsdeck/opsdeck/internal/redis"
	"github.com/opsdeck/opsdeck/internal/remote"
	"github.com/opsdeck/opsdeck/internal/scheduler"
	"github.com/opsdeck/opsdeck/internal/sources/seed"
	"github.com/opsdeck/opsdeck/internal/store"
	"github.com/opsdeck/opsdeck/internal/store/memory"
	redisstore "github.com/opsdeck/opsdeck/internal/store/redis"
	"github.com/opsdeck/opsdeck/internal/store/sqlite"
	"github.com/opsdeck/opsdeck/internal/sync"
	"github.com/opsdeck/opsdeck/internal/version"
)

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	server   *httpserver.Server
	store    store.Store
	ledger   *ledger.Ledger
	service  *bookmarks.Service
	engine   *sync.Engine
	watcher  *scheduler.ConnectivityWatcher // nil without a remote
	syncLoop *scheduler.SyncLoop            // nil without a remote
}

func New() *App {
	cfg := config.Load()
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	st := OpenStore(cfg, loggerClient)
	led := ledger.New(cfg.LedgerPath, loggerClient)

	var (
		client   *remote.Client
		engine   *sync.Engine
		watcher  *scheduler.ConnectivityWatcher
		syncLoop *scheduler.SyncLoop
		fetcher  bookmarks.Fetcher
		drainer  bookmarks.Drainer
	)
	if cfg.RemoteURL != "" {
		client = remote.New(remote.Options{
			BaseURL:               cfg.RemoteURL,
			Token:                 cfg.RemoteToken,
			Timeout:               cfg.RemoteTimeout,
			CategoryUpdateViaPost: cfg.CategoryUpdateViaPost,
		})
		engine = sync.New(st, led, client, loggerClient)
		fetcher = client
		drainer = engine

		syncTrigger := make(chan struct{}, 1)
		syncLoop = scheduler.NewSyncLoop(engine, led, loggerClient, cfg.SyncInterval, syncTrigger)
		watcher = scheduler.NewConnectivityWatcher(client, led, loggerClient, cfg.PingInterval)

		// Coming back online with queued changes feeds the sync loop.
		led.SetDrainReadyHook(func() {
			select {
			case syncTrigger <- struct{}{}:
			default:
			}
		})
	} else {
		loggerClient.Info("no remote configured, running in offline-only mode")
		led.SetOnline(false)
	}

	service := bookmarks.New(st, led, drainer, fetcher, seed.NewLoader(cfg.SeedFile), loggerClient)

	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		Bookmarks:    service,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:      cfg,
		logger:   loggerClient,
		server:   server,
		store:    st,
		ledger:   led,
		service:  service,
		engine:   engine,
		watcher:  watcher,
		syncLoop: syncLoop,
	}
}

// OpenStore opens the configured backend. Any failure degrades to the
// in-memory store: bookmark access must survive a broken local database.
func OpenStore(cfg *config.Config, log logger.Logger) store.Store {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		st, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			log.Warn("failed to open sqlite store, falling back to memory",
				logger.String("path", cfg.SQLitePath), logger.Error(err))
			return memory.New()
		}
		log.Info("sqlite store opened", logger.String("path", cfg.SQLitePath))
		return st

	case config.BackendRedis:
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDialTimeout,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			log.Warn("failed to connect to redis store, falling back to memory",
				logger.String("addr", cfg.RedisAddr), logger.Error(err))
			return memory.New()
		}
		return redisstore.New(client)

	case config.BackendMemory:
		log.Info("using in-memory store, data will not survive a restart")
		return memory.New()

	default:
		log.Warn("unknown storage backend, falling back to memory",
			logger.String("backend", cfg.StorageBackend))
		return memory.New()
	}
}

func (a *App) Run() error {
	a.logger.Infof("Starting opsdeck v%s on %s", version.Version, a.cfg.ListenAddr)
	a.logger.Infof("opsdeck %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Fetch, merge and seed before the server accepts traffic.
	if err := a.service.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize bookmarks: %w", err)
	}

	if a.watcher != nil {
		a.watcher.Start(ctx)
		a.logger.Info("connectivity watcher started",
			logger.Duration("interval", a.cfg.PingInterval))
	}
	if a.syncLoop != nil {
		a.syncLoop.Start(ctx)
		a.logger.Info("sync loop started",
			logger.Duration("interval", a.cfg.SyncInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.syncLoop != nil {
		a.syncLoop.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	// Last chance to push queued changes before exit.
	if a.engine != nil && a.ledger.Online() && a.ledger.PendingCount() > 0 {
		a.logger.Info("flushing pending changes before exit",
			logger.Int("pending", a.ledger.PendingCount()))
		a.engine.Drain(shutdownCtx)
	}

	if err := a.store.Close(); err != nil {
		a.logger.Warnf("failed to close store: %v", err)
	}

	a.logger.Info("opsdeck stopped cleanly")
	return nil
}
