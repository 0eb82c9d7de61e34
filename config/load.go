package config

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joeshaw/envdecode"
)

// EnvConfigFile names the environment variable holding the config file path.
const EnvConfigFile = "MCP_TODO_CONFIG"

// flagValues holds command-line overrides before they are merged.
type flagValues struct {
	configFile string
	transport  string
	addr       string
	logLevel   string
	logFormat  string
	rateLimit  int
	telemetry  bool
}

func bindFlags(fs *flag.FlagSet, fv *flagValues) {
	fs.StringVar(&fv.configFile, "config", "", "path to a TOML config file (env "+EnvConfigFile+")")
	fs.StringVar(&fv.transport, "transport", "", "transport: stdio, http or websocket")
	fs.StringVar(&fv.addr, "addr", "", "listen address for http and websocket transports")
	fs.StringVar(&fv.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.StringVar(&fv.logFormat, "log-format", "", "log format: text, json or logfmt")
	fs.IntVar(&fv.rateLimit, "rate-limit", 0, "max requests per second, 0 disables")
	fs.BoolVar(&fv.telemetry, "telemetry", false, "enable OpenTelemetry instrumentation")
}

// Load builds the configuration from, in increasing priority:
// 1. Defaults
// 2. The TOML file named by -config or MCP_TODO_CONFIG
// 3. MCP_TODO_* environment variables
// 4. CLI flags
//
// It returns the config file path actually used, empty when none.
func Load(fs *flag.FlagSet, args []string) (*Config, string, error) {
	if fs == nil {
		fs = flag.NewFlagSet("mcp-todo", flag.ContinueOnError)
	}

	var fv flagValues
	bindFlags(fs, &fv)
	if err := fs.Parse(args); err != nil {
		return nil, "", fmt.Errorf("parsing flags: %w", err)
	}

	path := fv.configFile
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}

	cfg, err := load(path)
	if err != nil {
		return nil, "", err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "transport":
			cfg.Transport.Kind = fv.transport
		case "addr":
			cfg.Transport.Addr = fv.addr
		case "log-level":
			cfg.Log.Level = fv.logLevel
		case "log-format":
			cfg.Log.Format = fv.logFormat
		case "rate-limit":
			cfg.Limits.RateLimit = fv.rateLimit
			if cfg.Limits.RateBurst == 0 {
				cfg.Limits.RateBurst = fv.rateLimit
			}
		case "telemetry":
			cfg.Telemetry.Enabled = fv.telemetry
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, path, nil
}

// load applies the file and environment layers on top of the defaults.
func load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := loadEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("loading config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("loading config file %s: unknown key %q", path, undecoded[0].String())
	}
	return nil
}

func loadEnv(cfg *Config) error {
	err := envdecode.Decode(cfg)
	if err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return fmt.Errorf("loading environment: %w", err)
	}
	return nil
}
