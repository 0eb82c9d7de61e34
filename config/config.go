// Package config loads server settings from defaults, an optional TOML
// file, MCP_TODO_* environment variables and command-line flags, in that
// order of increasing precedence.
//
// Example file:
//
//	[transport]
//	kind = "http"
//	addr = "127.0.0.1:8080"
//
//	[log]
//	level = "debug"
//	format = "json"
//
//	[limits]
//	rate_limit = 20
//	rate_burst = 40
//	rate_per_method = true
//
// Every key can also be set through an MCP_TODO_* environment variable,
// for example MCP_TODO_LOG_LEVEL=debug.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/felixgeelhaar/mcp-todo/logging"
	"github.com/felixgeelhaar/mcp-todo/protocol"
)

// Transport kinds.
const (
	TransportStdio     = "stdio"
	TransportHTTP      = "http"
	TransportWebSocket = "websocket"
)

// Defaults.
const (
	DefaultServerName      = "mcp-todo-server"
	DefaultServerVersion   = "1.0.0"
	DefaultAddr            = "127.0.0.1:8080"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultMaxMessageBytes = 1 << 20
	DefaultServiceName     = "mcp-todo-server"
)

// Config is the complete server configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Transport TransportConfig `toml:"transport"`
	Log       LogConfig       `toml:"log"`
	Limits    LimitsConfig    `toml:"limits"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// ServerConfig holds the identity advertised by initialize.
type ServerConfig struct {
	Name              string   `toml:"name" env:"MCP_TODO_SERVER_NAME"`
	Version           string   `toml:"version" env:"MCP_TODO_SERVER_VERSION"`
	ProtocolVersion   string   `toml:"protocol_version" env:"MCP_TODO_PROTOCOL_VERSION"`
	SupportedVersions []string `toml:"supported_versions" env:"MCP_TODO_SUPPORTED_VERSIONS"`
}

// TransportConfig selects how messages reach the server.
type TransportConfig struct {
	Kind        string   `toml:"kind" env:"MCP_TODO_TRANSPORT"`
	Addr        string   `toml:"addr" env:"MCP_TODO_ADDR"`
	CORSOrigins []string `toml:"cors_origins" env:"MCP_TODO_CORS_ORIGINS"`
}

// LogConfig configures the stderr logger.
type LogConfig struct {
	Level      string `toml:"level" env:"MCP_TODO_LOG_LEVEL"`
	Format     string `toml:"format" env:"MCP_TODO_LOG_FORMAT"`
	Timestamps bool   `toml:"timestamps" env:"MCP_TODO_LOG_TIMESTAMPS"`
}

// LimitsConfig bounds message size and request rate. A zero RateLimit
// disables rate limiting; RatePerMethod gives each method its own bucket.
type LimitsConfig struct {
	MaxMessageBytes int64 `toml:"max_message_bytes" env:"MCP_TODO_MAX_MESSAGE_BYTES"`
	RateLimit       int   `toml:"rate_limit" env:"MCP_TODO_RATE_LIMIT"`
	RateBurst       int   `toml:"rate_burst" env:"MCP_TODO_RATE_BURST"`
	RatePerMethod   bool  `toml:"rate_per_method" env:"MCP_TODO_RATE_PER_METHOD"`
}

// TelemetryConfig toggles OpenTelemetry instrumentation.
type TelemetryConfig struct {
	Enabled     bool   `toml:"enabled" env:"MCP_TODO_TELEMETRY"`
	ServiceName string `toml:"service_name" env:"MCP_TODO_SERVICE_NAME"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:              DefaultServerName,
			Version:           DefaultServerVersion,
			ProtocolVersion:   protocol.MCPVersion,
			SupportedVersions: slices.Clone(protocol.SupportedVersions),
		},
		Transport: TransportConfig{
			Kind: TransportStdio,
			Addr: DefaultAddr,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Limits: LimitsConfig{
			MaxMessageBytes: DefaultMaxMessageBytes,
		},
		Telemetry: TelemetryConfig{
			ServiceName: DefaultServiceName,
		},
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Name) == "" {
		errs = append(errs, errors.New("server.name must not be empty"))
	}
	if c.Server.ProtocolVersion == "" {
		errs = append(errs, errors.New("server.protocol_version must not be empty"))
	}

	switch c.Transport.Kind {
	case TransportStdio:
	case TransportHTTP, TransportWebSocket:
		if c.Transport.Addr == "" {
			errs = append(errs, fmt.Errorf("transport.addr is required for %s", c.Transport.Kind))
		}
	default:
		errs = append(errs, fmt.Errorf("transport.kind %q is not one of stdio, http, websocket", c.Transport.Kind))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		errs = append(errs, fmt.Errorf("log.format: %w", err))
	}

	if c.Limits.MaxMessageBytes <= 0 {
		errs = append(errs, errors.New("limits.max_message_bytes must be positive"))
	}
	if c.Limits.RateLimit < 0 {
		errs = append(errs, errors.New("limits.rate_limit must not be negative"))
	}
	if c.Limits.RateLimit > 0 && c.Limits.RateBurst <= 0 {
		errs = append(errs, errors.New("limits.rate_burst must be positive when rate_limit is set"))
	}

	return errors.Join(errs...)
}
