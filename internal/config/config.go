// Package config loads application settings from environment variables.
// Every setting has a default except the optional integrations (database and
// broker), which stay disabled until their URL is set.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Source   SourceConfig
	Profiles ProfilesConfig
	Catalog  CatalogConfig
	Spawn    SpawnConfig
	Broker   BrokerConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including the wait for
	// running spawns (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// MaxBodySize caps POST /api/parse bodies in bytes (default: 10MB)
	MaxBodySize int64 `env:"SERVER_MAX_BODY_SIZE" default:"10485760"`

	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Real-IP and X-Forwarded-For headers are honored
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// APIKeys guard POST /api/spawn and DELETE /api/scene when set
	APIKeys []string `env:"API_KEYS"`
}

// DatabaseConfig holds the optional Postgres prefab catalog settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Empty selects the in-memory
	// catalog. Both DATABASE_URL and DB_URL are accepted.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a database URL is configured.
func (c DatabaseConfig) Enabled() bool { return c.URL != "" }

// SourceConfig holds the source file provider settings.
type SourceConfig struct {
	// Root is the directory source names resolve against (default: data)
	Root string `env:"SOURCE_ROOT" default:"data"`

	// MaxSize is the largest source file accepted in bytes (default: 100MB)
	MaxSize int64 `env:"SOURCE_MAX_SIZE" default:"104857600"`
}

// ProfilesConfig locates binding profiles.
type ProfilesConfig struct {
	// Dir holds .yaml, .yml and .hcl profile files (default: profiles)
	Dir string `env:"PROFILES_DIR" default:"profiles"`
}

// CatalogConfig seeds the prefab catalog.
type CatalogConfig struct {
	// Prefabs is a comma-separated list of prefab names registered at
	// startup. With a database they are upserted.
	Prefabs []string `env:"CATALOG_PREFABS"`
}

// SpawnConfig holds spawn service settings.
type SpawnConfig struct {
	// MaxConcurrent is the number of spawns that may run at once (default: 1)
	MaxConcurrent int `env:"SPAWN_MAX_CONCURRENT" default:"1"`

	// MaxWaitTime is how long a spawn waits for a slot (default: 30s)
	MaxWaitTime time.Duration `env:"SPAWN_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds a single spawn (default: 2m)
	Timeout time.Duration `env:"SPAWN_TIMEOUT" default:"2m"`

	// HistorySize is the number of spawn results kept (default: 50)
	HistorySize int `env:"SPAWN_HISTORY_SIZE" default:"50"`

	// HistoryMaxAge drops older history entries (default: 24h)
	HistoryMaxAge time.Duration `env:"SPAWN_HISTORY_MAX_AGE" default:"24h"`

	// PruneInterval is how often history is pruned (default: 1h)
	PruneInterval time.Duration `env:"SPAWN_PRUNE_INTERVAL" default:"1h"`
}

// BrokerConfig holds the optional MQTT publisher settings.
type BrokerConfig struct {
	// URL is the broker address, e.g. tcp://localhost:1883. Empty disables
	// publishing.
	URL string `env:"BROKER_URL" envAlt:"MQTT_URL"`

	ClientID    string `env:"BROKER_CLIENT_ID" default:"scenecsv"`
	Username    string `env:"BROKER_USERNAME"`
	Password    string `env:"BROKER_PASSWORD"`
	TopicPrefix string `env:"BROKER_TOPIC_PREFIX" default:"scenecsv"`
	Scene       string `env:"BROKER_SCENE" default:"default"`
	QoS         int    `env:"BROKER_QOS" default:"1"`
}

// Enabled reports whether a broker URL is configured.
func (c BrokerConfig) Enabled() bool { return c.URL != "" }

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
