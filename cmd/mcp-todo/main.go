// Command mcp-todo serves an in-memory todo list over the Model Context
// Protocol. By default it speaks newline-delimited JSON-RPC on stdin and
// stdout and logs to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/felixgeelhaar/mcp-todo"
	"github.com/felixgeelhaar/mcp-todo/config"
	"github.com/felixgeelhaar/mcp-todo/logging"
	"github.com/felixgeelhaar/mcp-todo/transport"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mcp-todo", flag.ContinueOnError)
	fs.SetOutput(stderr)

	cfg, path, err := config.Load(fs, args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "mcp-todo: %v\n", err)
		return 2
	}

	logger, err := logging.New(stderr, logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Timestamps: cfg.Log.Timestamps,
	})
	if err != nil {
		fmt.Fprintf(stderr, "mcp-todo: %v\n", err)
		return 2
	}

	if path != "" {
		watchConfig(ctx, path, logger)
	}

	srv, err := mcptodo.New(append(mcptodo.OptionsFromConfig(cfg), mcptodo.WithLogger(logger))...)
	if err != nil {
		logger.Error("server setup failed", logging.F("error", err.Error()))
		return 1
	}

	err = serve(ctx, srv, cfg, stdin, stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("transport failed", logging.F("error", err.Error()))
		return 1
	}
	return 0
}

func serve(ctx context.Context, srv *mcptodo.Server, cfg *config.Config, stdin io.Reader, stdout io.Writer) error {
	switch cfg.Transport.Kind {
	case config.TransportHTTP:
		var opts []transport.HTTPOption
		if len(cfg.Transport.CORSOrigins) > 0 {
			cors := transport.DefaultCORSConfig()
			cors.AllowOrigins = cfg.Transport.CORSOrigins
			opts = append(opts, transport.WithCORS(cors))
		}
		opts = append(opts, transport.WithMaxBodyBytes(cfg.Limits.MaxMessageBytes))
		return mcptodo.ServeHTTP(ctx, srv, cfg.Transport.Addr, opts...)
	case config.TransportWebSocket:
		var opts []transport.WebSocketOption
		if origins := cfg.Transport.CORSOrigins; len(origins) > 0 {
			opts = append(opts, transport.WithWebSocketCheckOrigin(func(r *http.Request) bool {
				return slices.Contains(origins, "*") || slices.Contains(origins, r.Header.Get("Origin"))
			}))
		}
		return mcptodo.ServeWebSocket(ctx, srv, cfg.Transport.Addr, opts...)
	default:
		return mcptodo.ServeStdio(ctx, srv, transport.WithStdin(stdin), transport.WithStdout(stdout))
	}
}

// watchConfig applies log level changes from the config file until ctx is
// done. Other settings take effect on restart.
func watchConfig(ctx context.Context, path string, logger *logging.CharmLogger) {
	go func() {
		err := config.Watch(ctx, path, func(cfg *config.Config, err error) {
			if err != nil {
				logger.Warn("config reload failed", logging.F("path", path), logging.F("error", err.Error()))
				return
			}
			if err := logger.SetLevel(cfg.Log.Level); err != nil {
				logger.Warn("config reload failed", logging.F("path", path), logging.F("error", err.Error()))
				return
			}
			logger.Info("config reloaded", logging.F("path", path), logging.F("log_level", cfg.Log.Level))
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("config watch stopped", logging.F("path", path), logging.F("error", err.Error()))
		}
	}()
}
