// Package config loads the application configuration from flags, the
// environment (INSTRUX_*) and an optional YAML file, all through viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "INSTRUX"

const (
	DriverBbolt  = "bbolt"
	DriverBadger = "badger"
)

// Keys understood by [Load].
const (
	KeyStoreDriver     = "store.driver"
	KeyStorePath       = "store.path"
	KeyStoreSyncWrites = "store.sync-writes"
	KeyServerAddr      = "server.addr"
	KeyServerCORS      = "server.cors-origins"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
	KeyCacheEnabled    = "cache.enabled"
	KeyCacheTTL        = "cache.ttl"
)

type Config struct {
	Store  Store
	Server Server
	Log    Log
	Cache  Cache
}

type Store struct {
	Driver     string
	Path       string
	SyncWrites bool
}

type Server struct {
	Addr        string
	CORSOrigins []string
}

type Log struct {
	Level  string
	Format string
}

type Cache struct {
	Enabled bool
	TTL     time.Duration
}

// Setup registers defaults and environment lookup on v. INSTRUX_STORE_DRIVER
// maps to store.driver, INSTRUX_SERVER_CORS_ORIGINS to server.cors-origins.
func Setup(v *viper.Viper) {
	v.SetDefault(KeyStoreDriver, DriverBbolt)
	v.SetDefault(KeyStorePath, "")
	v.SetDefault(KeyStoreSyncWrites, true)
	v.SetDefault(KeyServerAddr, ":8080")
	v.SetDefault(KeyServerCORS, []string{"*"})
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyCacheEnabled, true)
	v.SetDefault(KeyCacheTTL, 40*time.Second)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// Load reads and validates the configuration from v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Store: Store{
			Driver:     strings.ToLower(strings.TrimSpace(v.GetString(KeyStoreDriver))),
			Path:       v.GetString(KeyStorePath),
			SyncWrites: v.GetBool(KeyStoreSyncWrites),
		},
		Server: Server{
			Addr:        v.GetString(KeyServerAddr),
			CORSOrigins: parseList(v.GetStringSlice(KeyServerCORS)),
		},
		Log: Log{
			Level:  strings.ToLower(v.GetString(KeyLogLevel)),
			Format: strings.ToLower(v.GetString(KeyLogFormat)),
		},
		Cache: Cache{
			Enabled: v.GetBool(KeyCacheEnabled),
			TTL:     v.GetDuration(KeyCacheTTL),
		},
	}

	switch cfg.Store.Driver {
	case DriverBbolt, DriverBadger:
	default:
		return Config{}, fmt.Errorf("config: invalid store driver %q (must be %s or %s)",
			cfg.Store.Driver, DriverBbolt, DriverBadger)
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath(cfg.Store.Driver)
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		return Config{}, fmt.Errorf("config: invalid log format %q (must be console or json)", cfg.Log.Format)
	}
	if cfg.Server.Addr == "" {
		return Config{}, fmt.Errorf("config: server address must not be empty")
	}
	if cfg.Cache.TTL < 0 {
		return Config{}, fmt.Errorf("config: cache ttl must not be negative")
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	return cfg, nil
}

// DefaultStorePath returns the database location used when none is configured.
func DefaultStorePath(driver string) string {
	dir := "."
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".instrux")
	}
	if driver == DriverBadger {
		return filepath.Join(dir, "badger")
	}
	return filepath.Join(dir, "instrux.db")
}

// parseList accepts both YAML lists and comma separated environment values.
func parseList(raw []string) []string {
	var out []string
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if t := strings.TrimSpace(part); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}
