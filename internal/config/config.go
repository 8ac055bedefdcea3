package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Backend names accepted by OPSDECK_STORAGE_BACKEND.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	ListenAddr      string        // ex: "127.0.0.1:8787"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DataDir        string // directory for the local database and sync state
	StorageBackend string // "sqlite" | "redis" | "memory"
	SQLitePath     string // path to the sqlite database file
	LedgerPath     string // path to the persisted sync state file
	SeedFile       string // path to the seed bookmarks yaml (empty = built-in defaults)

	RemoteURL             string        // base URL of the bookmark API (empty = offline-only mode)
	RemoteToken           string        // bearer token for the bookmark API (optional)
	RemoteTimeout         time.Duration // per-request timeout for sync calls
	CategoryUpdateViaPost bool          // compatibility shim for servers that update categories via POST

	SyncInterval time.Duration // interval between background drains (default: 5m)
	PingInterval time.Duration // interval between connectivity probes (default: 30s)

	// Redis (only used when StorageBackend == "redis")
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDialTimeout    time.Duration // Redis dial timeout (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // initial wait between retries (grows exponentially)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisWarnThreshold  int           // warn after this many attempts

	AllowedCIDRS []string // optional, restrict access to specific IPs (e.g. "127.0.0.1/32")
	TrustProxy   bool     // true => trust X-Forwarded-For headers
}

func Load() *Config {
	dataDir := getenv("OPSDECK_DATA_DIR", defaultDataDir())

	cfg := &Config{
		// Server settings
		ListenAddr:      getenv("OPSDECK_LISTEN_ADDR", "127.0.0.1:8787"),
		ShutdownTimeout: mustDuration("OPSDECK_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("OPSDECK_LOG_LEVEL", "info"),
		PrettyLog: mustBool("OPSDECK_PRETTY_LOG", true),

		// Local storage
		DataDir:        dataDir,
		StorageBackend: getenv("OPSDECK_STORAGE_BACKEND", BackendSQLite),
		SQLitePath:     getenv("OPSDECK_SQLITE_PATH", filepath.Join(dataDir, "bookmarks.db")),
		LedgerPath:     getenv("OPSDECK_LEDGER_PATH", filepath.Join(dataDir, "sync_state.json")),
		SeedFile:       getenv("OPSDECK_SEED_FILE", ""),

		// Remote bookmark API
		RemoteURL:             getenv("OPSDECK_REMOTE_URL", ""),
		RemoteToken:           getenv("OPSDECK_REMOTE_TOKEN", ""),
		RemoteTimeout:         mustDuration("OPSDECK_REMOTE_TIMEOUT", 10*time.Second),
		CategoryUpdateViaPost: mustBool("OPSDECK_CATEGORY_UPDATE_VIA_POST", false),

		// Background sync
		SyncInterval: mustDuration("OPSDECK_SYNC_INTERVAL", 5*time.Minute),
		PingInterval: mustDuration("OPSDECK_PING_INTERVAL", 30*time.Second),

		// Redis settings
		RedisAddr:           getenv("OPSDECK_REDIS_ADDR", "localhost:6379"),
		RedisUser:           getenv("OPSDECK_REDIS_USERNAME", ""),
		RedisPassword:       getenv("OPSDECK_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("OPSDECK_REDIS_DB", 0),
		RedisDialTimeout:    mustDuration("OPSDECK_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("OPSDECK_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("OPSDECK_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("OPSDECK_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisMaxWait:        mustDuration("OPSDECK_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("OPSDECK_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisWarnThreshold:  getenvInt("OPSDECK_REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedCIDRS: splitAndTrim(getenv("OPSDECK_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("OPSDECK_TRUST_PROXY", false),
	}

	return cfg
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".opsdeck")
	}
	return ".opsdeck"
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
