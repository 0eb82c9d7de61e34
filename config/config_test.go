package config

import (
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "mcp-todo.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Transport.Kind != TransportStdio {
		t.Errorf("Transport.Kind = %q", cfg.Transport.Kind)
	}
	if cfg.Server.Name != "mcp-todo-server" || cfg.Server.Version != "1.0.0" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Limits.RateLimit != 0 {
		t.Error("rate limiting should be off by default")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown transport", func(c *Config) { c.Transport.Kind = "carrier-pigeon" }, "transport.kind"},
		{"http without addr", func(c *Config) { c.Transport.Kind = TransportHTTP; c.Transport.Addr = "" }, "transport.addr"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"zero message size", func(c *Config) { c.Limits.MaxMessageBytes = 0 }, "max_message_bytes"},
		{"negative rate", func(c *Config) { c.Limits.RateLimit = -1 }, "rate_limit"},
		{"rate without burst", func(c *Config) { c.Limits.RateLimit = 5 }, "rate_burst"},
		{"empty name", func(c *Config) { c.Server.Name = " " }, "server.name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Layers(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, `
[transport]
kind = "http"
addr = "127.0.0.1:9000"

[log]
level = "debug"
format = "json"

[limits]
rate_limit = 10
rate_burst = 20
`)

	t.Run("file overrides defaults", func(t *testing.T) {
		cfg, used, err := Load(newFlagSet(), []string{"-config", path})
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if used != path {
			t.Errorf("used = %q, want %q", used, path)
		}
		if cfg.Transport.Kind != TransportHTTP || cfg.Transport.Addr != "127.0.0.1:9000" {
			t.Errorf("Transport = %+v", cfg.Transport)
		}
		if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
			t.Errorf("Log = %+v", cfg.Log)
		}
		if cfg.Server.Name != DefaultServerName {
			t.Errorf("unset keys should keep defaults, Server.Name = %q", cfg.Server.Name)
		}
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv(EnvConfigFile, path)
		t.Setenv("MCP_TODO_LOG_LEVEL", "warn")
		t.Setenv("MCP_TODO_SERVER_NAME", "todo-env")

		cfg, _, err := Load(newFlagSet(), nil)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.Log.Level != "warn" {
			t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
		}
		if cfg.Server.Name != "todo-env" {
			t.Errorf("Server.Name = %q", cfg.Server.Name)
		}
		if cfg.Transport.Kind != TransportHTTP {
			t.Errorf("file layer lost: Transport.Kind = %q", cfg.Transport.Kind)
		}
	})

	t.Run("flags override env", func(t *testing.T) {
		t.Setenv("MCP_TODO_LOG_LEVEL", "warn")

		cfg, _, err := Load(newFlagSet(), []string{"-config", path, "-log-level", "error", "-transport", "stdio"})
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.Log.Level != "error" || cfg.Transport.Kind != TransportStdio {
			t.Errorf("cfg = %+v %+v", cfg.Log, cfg.Transport)
		}
		if cfg.Limits.RateLimit != 10 {
			t.Errorf("unset flag replaced file value: RateLimit = %d", cfg.Limits.RateLimit)
		}
	})
}

func TestLoad_NoFile(t *testing.T) {
	cfg, used, err := Load(newFlagSet(), []string{"-rate-limit", "5"})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if used != "" {
		t.Errorf("used = %q, want empty", used)
	}
	if cfg.Limits.RateLimit != 5 || cfg.Limits.RateBurst != 5 {
		t.Errorf("Limits = %+v", cfg.Limits)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args func() []string
	}{
		{"missing file", func() []string { return []string{"-config", filepath.Join(dir, "nope.toml")} }},
		{"malformed toml", func() []string { return []string{"-config", writeFile(t, dir, "[log\nlevel=")} }},
		{"unknown key", func() []string { return []string{"-config", writeFile(t, dir, "[log]\ncolour = \"red\"\n")} }},
		{"invalid value", func() []string { return []string{"-transport", "smoke-signals"} }},
		{"unknown flag", func() []string { return []string{"-verbose"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Load(newFlagSet(), tt.args()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "[log]\nlevel = \"info\"\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	errs := make(chan error, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config, err error) {
			if err != nil {
				select {
				case errs <- err:
				default:
				}
				return
			}
			select {
			case got <- cfg:
			default:
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "[log]\nlevel = \"debug\"\n")

	// A save may surface as several events, some seeing a truncated file.
	timeout := time.After(5 * time.Second)
	for reloaded := false; !reloaded; {
		select {
		case cfg := <-got:
			reloaded = cfg.Log.Level == "debug"
		case <-errs:
		case <-timeout:
			t.Fatal("no reload with the new level observed")
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() = %v", err)
	}
}
