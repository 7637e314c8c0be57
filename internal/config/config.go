// Package config loads xlread settings from defaults, an optional YAML file
// and XLREAD_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ukaji3/xlread-go/pkg/xlread"
	"github.com/ukaji3/xlread-go/pkg/xlread/normalize"
)

// Config holds all application configuration.
type Config struct {
	Read    ReadConfig    `yaml:"read"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// ReadConfig holds workbook conversion settings.
type ReadConfig struct {
	// DuplicateHeaders is the policy for repeated header names: suffix or last (default: suffix)
	DuplicateHeaders string `yaml:"duplicate_headers" env:"XLREAD_DUPLICATE_HEADERS" default:"suffix"`

	// BlankRows keeps blank data rows as empty records (default: false)
	BlankRows bool `yaml:"blank_rows" env:"XLREAD_BLANK_ROWS" default:"false"`

	// Password opens encrypted workbooks
	Password string `yaml:"password" env:"XLREAD_PASSWORD"`

	// MaxPayloadBytes is the largest accepted encoded payload (default: 128MB)
	MaxPayloadBytes int64 `yaml:"max_payload_bytes" env:"XLREAD_MAX_PAYLOAD_BYTES" default:"134217728"`

	// Concurrency is how many inputs the CLI converts at once (default: 4)
	Concurrency int `yaml:"concurrency" env:"XLREAD_CONCURRENCY" default:"4"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address (default: :8080)
	Addr string `yaml:"addr" env:"XLREAD_SERVER_ADDR" default:":8080"`

	// MaxConcurrent caps in-flight conversions (default: 8)
	MaxConcurrent int `yaml:"max_concurrent" env:"XLREAD_SERVER_MAX_CONCURRENT" default:"8"`

	// RequestTimeout bounds how long a request waits for its conversion (default: 60s)
	RequestTimeout time.Duration `yaml:"request_timeout" env:"XLREAD_SERVER_REQUEST_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 15s)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"XLREAD_SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `yaml:"level" env:"XLREAD_LOG_LEVEL" default:"info"`

	// Format is the log output format: text, json (default: text)
	Format string `yaml:"format" env:"XLREAD_LOG_FORMAT" default:"text"`
}

// ReaderOptions converts the read settings into xlread options.
func (c *Config) ReaderOptions(logger *slog.Logger) (xlread.Options, error) {
	policy, err := normalize.ParsePolicy(c.Read.DuplicateHeaders)
	if err != nil {
		return xlread.Options{}, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return xlread.Options{
		DuplicateHeaders: policy,
		BlankRows:        c.Read.BlankRows,
		Password:         c.Read.Password,
		MaxPayloadBytes:  c.Read.MaxPayloadBytes,
		Logger:           logger,
	}, nil
}

// String returns a representation safe for logging; the password is masked.
func (c *Config) String() string {
	password := ""
	if c.Read.Password != "" {
		password = "[MASKED]"
	}
	return fmt.Sprintf("Config{Read: {DuplicateHeaders: %q, BlankRows: %v, Password: %q, MaxPayloadBytes: %d, Concurrency: %d}, "+
		"Server: {Addr: %q, MaxConcurrent: %d, RequestTimeout: %s, ShutdownTimeout: %s}, "+
		"Logging: {Level: %q, Format: %q}}",
		c.Read.DuplicateHeaders, c.Read.BlankRows, password, c.Read.MaxPayloadBytes, c.Read.Concurrency,
		c.Server.Addr, c.Server.MaxConcurrent, c.Server.RequestTimeout, c.Server.ShutdownTimeout,
		c.Logging.Level, c.Logging.Format)
}
