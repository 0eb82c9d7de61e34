package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/felixgeelhaar/mcp-todo/logging"
	"github.com/felixgeelhaar/mcp-todo/protocol"
)

// PanicHandler converts a recovered panic value into a reply.
type PanicHandler func(ctx context.Context, req *protocol.Request, panicVal any) (*protocol.Response, error)

// RecoverOption configures the recover middleware.
type RecoverOption func(*recoverConfig)

type recoverConfig struct {
	logger  logging.Logger
	handler PanicHandler
}

// WithRecoverLogger logs every recovered panic with its stack.
func WithRecoverLogger(l logging.Logger) RecoverOption {
	return func(c *recoverConfig) {
		c.logger = l
	}
}

// WithPanicHandler replaces the default InternalError reply.
func WithPanicHandler(h PanicHandler) RecoverOption {
	return func(c *recoverConfig) {
		c.handler = h
	}
}

// Recover returns middleware that turns a panic in any later handler into
// an InternalError whose data is "panic: <value>". The store is never left
// half-written because handlers validate before mutating.
func Recover(opts ...RecoverOption) Middleware {
	cfg := &recoverConfig{
		logger:  logging.NopLogger{},
		handler: internalErrorOnPanic,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (resp *protocol.Response, err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				cfg.logger.Error("panic recovered",
					logging.F("method", req.Method),
					logging.F("panic", fmt.Sprint(r)),
					logging.F("stack", string(debug.Stack())),
				)
				resp, err = cfg.handler(ctx, req, r)
			}()
			return next(ctx, req)
		}
	}
}

func internalErrorOnPanic(_ context.Context, _ *protocol.Request, panicVal any) (*protocol.Response, error) {
	return nil, protocol.NewInternalError(fmt.Sprintf("panic: %v", panicVal))
}
