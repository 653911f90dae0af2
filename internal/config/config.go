// Package config loads application settings from environment variables.
// Defaults cover local use; everything is validated on startup so a bad
// setting fails fast.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Generator GeneratorConfig
	Runs      RunConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is 0 by default so progress streams are not cut off
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds the wait for in-flight runs on shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for non-streaming requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// TrustedProxies lists proxy CIDRs whose X-Real-IP / X-Forwarded-For headers are honored
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// DatabaseConfig holds the optional run history database.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Empty keeps history in memory.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns int `env:"DB_MAX_CONNS" default:"5"`

	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
}

// Enabled reports whether a database is configured.
func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// GeneratorConfig tunes form generation.
type GeneratorConfig struct {
	// HeaderScanRows is how many leading rows are searched for the header (default: 10)
	HeaderScanRows int `env:"GEN_HEADER_SCAN_ROWS" default:"10"`

	// FontSize is applied to every written cell (default: 11)
	FontSize float64 `env:"GEN_FONT_SIZE" default:"11"`

	// DateFormat is a Go time layout; the result is upper-cased (default: 02 Jan 2006)
	DateFormat string `env:"GEN_DATE_FORMAT" default:"02 Jan 2006"`

	// OutputDir receives a copy of every generated workbook. Empty disables it.
	OutputDir string `env:"GEN_OUTPUT_DIR"`

	// LogFile is the append-only run log (default: rv_generator_log.txt)
	LogFile string `env:"GEN_LOG_FILE" default:"rv_generator_log.txt"`
}

// RunConfig limits background runs.
type RunConfig struct {
	// MaxConcurrent is the number of runs processed in parallel (default: 3)
	MaxConcurrent int `env:"RUN_MAX_CONCURRENT" default:"3"`

	// MaxWaitTime is how long a run waits for a slot (default: 30s)
	MaxWaitTime time.Duration `env:"RUN_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds a single run (default: 10m)
	Timeout time.Duration `env:"RUN_TIMEOUT" default:"10m"`

	// Retention is how long finished runs stay downloadable (default: 30m)
	Retention time.Duration `env:"RUN_RETENTION" default:"30m"`

	// MaxFileSize is the largest accepted upload in bytes (default: 50MB)
	MaxFileSize int64 `env:"RUN_MAX_FILE_SIZE" default:"52428800"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
