package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/mcp-todo/protocol"
)

type requestIDKey struct{}

// RequestIDOption configures the request ID middleware.
type RequestIDOption func(*requestIDConfig)

type requestIDConfig struct {
	generate func() string
}

// WithRequestIDGenerator replaces uuid.NewString as the ID source.
func WithRequestIDGenerator(fn func() string) RequestIDOption {
	return func(c *requestIDConfig) {
		c.generate = fn
	}
}

// RequestID returns middleware that tags each message with a server-side
// ID for log correlation. It is independent of the JSON-RPC id, which
// notifications lack. An ID already on the context is kept.
func RequestID(opts ...RequestIDOption) Middleware {
	cfg := &requestIDConfig{generate: uuid.NewString}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if RequestIDFromContext(ctx) == "" {
				ctx = ContextWithRequestID(ctx, cfg.generate())
			}
			return next(ctx, req)
		}
	}
}

// RequestIDFromContext returns the request ID on ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ContextWithRequestID returns a copy of ctx carrying id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}
