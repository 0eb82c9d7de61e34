// Package mcptodo wires the todo MCP server together: an in-memory task
// store, the tool dispatcher and resource reader built on it, and the
// message handler with its middleware stack.
//
// Basic usage:
//
//	srv, err := mcptodo.New(mcptodo.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	return mcptodo.ServeStdio(ctx, srv)
package mcptodo

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-todo/config"
	"github.com/felixgeelhaar/mcp-todo/logging"
	"github.com/felixgeelhaar/mcp-todo/middleware"
	"github.com/felixgeelhaar/mcp-todo/resources"
	"github.com/felixgeelhaar/mcp-todo/server"
	"github.com/felixgeelhaar/mcp-todo/task"
	"github.com/felixgeelhaar/mcp-todo/tools"
	"github.com/felixgeelhaar/mcp-todo/transport"
)

// Option configures a Server.
type Option func(*options)

type options struct {
	info            server.Info
	logger          logging.Logger
	storeOpts       []task.Option
	middleware      []middleware.Middleware
	maxMessageBytes int64
	rateLimit       int
	rateBurst       int
	ratePerMethod   bool
	telemetry       bool
	otelOpts        []middleware.OTelOption
}

// WithInfo sets the identity advertised by initialize.
func WithInfo(info server.Info) Option {
	return func(o *options) {
		o.info = info
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithStoreOptions configures the task store, for example its clock.
func WithStoreOptions(opts ...task.Option) Option {
	return func(o *options) {
		o.storeOpts = append(o.storeOpts, opts...)
	}
}

// WithMiddleware appends middleware after the built-in stack.
func WithMiddleware(m ...middleware.Middleware) Option {
	return func(o *options) {
		o.middleware = append(o.middleware, m...)
	}
}

// WithSizeLimit rejects requests whose params exceed n bytes.
func WithSizeLimit(n int64) Option {
	return func(o *options) {
		o.maxMessageBytes = n
	}
}

// WithRateLimit allows rate requests per second with the given burst.
// With perMethod set every method gets its own bucket.
func WithRateLimit(rate, burst int, perMethod bool) Option {
	return func(o *options) {
		o.rateLimit = rate
		o.rateBurst = burst
		o.ratePerMethod = perMethod
	}
}

// WithTelemetry enables OpenTelemetry tracing and metrics.
func WithTelemetry(opts ...middleware.OTelOption) Option {
	return func(o *options) {
		o.telemetry = true
		o.otelOpts = append(o.otelOpts, opts...)
	}
}

// OptionsFromConfig translates a loaded configuration into options.
func OptionsFromConfig(cfg *config.Config) []Option {
	opts := []Option{
		WithInfo(server.Info{
			Name:              cfg.Server.Name,
			Version:           cfg.Server.Version,
			ProtocolVersion:   cfg.Server.ProtocolVersion,
			SupportedVersions: cfg.Server.SupportedVersions,
		}),
		WithSizeLimit(cfg.Limits.MaxMessageBytes),
	}
	if cfg.Limits.RateLimit > 0 {
		opts = append(opts, WithRateLimit(cfg.Limits.RateLimit, cfg.Limits.RateBurst, cfg.Limits.RatePerMethod))
	}
	if cfg.Telemetry.Enabled {
		opts = append(opts, WithTelemetry(middleware.WithOTelServiceName(cfg.Telemetry.ServiceName)))
	}
	return opts
}

// Server is a fully wired todo MCP server.
type Server struct {
	store   *task.Store
	handler *server.Handler
	logger  logging.Logger
}

// New creates a server with an empty task store.
func New(opts ...Option) (*Server, error) {
	o := &options{
		info:            server.DefaultInfo(),
		logger:          logging.NopLogger{},
		maxMessageBytes: config.DefaultMaxMessageBytes,
	}
	for _, opt := range opts {
		opt(o)
	}

	registry, err := tools.NewRegistry(tools.Definitions())
	if err != nil {
		return nil, fmt.Errorf("building tool registry: %w", err)
	}

	store := task.NewStore(o.storeOpts...)
	dispatcher := tools.NewDispatcher(registry, store, tools.WithLogger(o.logger))
	reader := resources.NewReader(store, resources.WithLogger(o.logger))

	stack := middleware.Use(middleware.DefaultStack(o.logger)...)
	if o.telemetry {
		stack.Append(middleware.OTel(o.otelOpts...))
	}
	stack.Append(middleware.SizeLimit(o.maxMessageBytes, middleware.WithSizeLimitLogger(o.logger)))
	stack.Append(rateLimiter(o))
	stack.Append(o.middleware...)

	handler := server.NewHandler(o.info, dispatcher, reader,
		server.WithLogger(o.logger),
		server.WithMiddleware(stack.Middlewares()...),
	)

	return &Server{
		store:   store,
		handler: handler,
		logger:  o.logger,
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Server {
	s, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func rateLimiter(o *options) middleware.Middleware {
	if o.rateLimit <= 0 {
		return nil
	}
	logOpt := middleware.WithRateLimitLogger(o.logger)
	if o.ratePerMethod {
		return middleware.RateLimitByMethod(o.rateLimit, o.rateBurst, logOpt)
	}
	return middleware.RateLimit(o.rateLimit, o.rateBurst, logOpt)
}

// Handler returns the message handler, suitable for any transport.
func (s *Server) Handler() *server.Handler {
	return s.handler
}

// Store returns the task store backing the server.
func (s *Server) Store() *task.Store {
	return s.store
}

// ServeStdio serves newline-delimited messages on stdin/stdout until EOF,
// which returns nil.
func ServeStdio(ctx context.Context, s *Server, opts ...transport.StdioOption) error {
	opts = append([]transport.StdioOption{transport.WithStdioLogger(s.logger)}, opts...)
	return serve(ctx, s, transport.NewStdio(opts...))
}

// ServeHTTP serves one message per POST /mcp request.
func ServeHTTP(ctx context.Context, s *Server, addr string, opts ...transport.HTTPOption) error {
	opts = append([]transport.HTTPOption{transport.WithHTTPLogger(s.logger)}, opts...)
	return serve(ctx, s, transport.NewHTTP(addr, opts...))
}

// ServeWebSocket serves one message per text frame.
func ServeWebSocket(ctx context.Context, s *Server, addr string, opts ...transport.WebSocketOption) error {
	opts = append([]transport.WebSocketOption{transport.WithWebSocketLogger(s.logger)}, opts...)
	return serve(ctx, s, transport.NewWebSocket(addr, opts...))
}

func serve(ctx context.Context, s *Server, t transport.Transport) error {
	info := s.handler.Info()
	s.logger.Info("server started",
		logging.F("name", info.Name),
		logging.F("version", info.Version),
		logging.F("protocol", info.ProtocolVersion),
		logging.F("transport", t.Addr()),
	)
	return t.Serve(ctx, s.handler)
}
