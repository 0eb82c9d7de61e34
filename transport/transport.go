// Package transport frames MCP messages for the message handler.
package transport

import (
	"context"

	"github.com/felixgeelhaar/mcp-todo/protocol"
)

// Handler processes one raw message and returns the response to send, or
// nil when no reply is due.
type Handler interface {
	HandleMessage(ctx context.Context, msg []byte) *protocol.Response
}

// HandlerFunc is an adapter to allow ordinary functions as handlers.
type HandlerFunc func(ctx context.Context, msg []byte) *protocol.Response

// HandleMessage calls f(ctx, msg).
func (f HandlerFunc) HandleMessage(ctx context.Context, msg []byte) *protocol.Response {
	return f(ctx, msg)
}

// Transport defines the communication layer interface.
type Transport interface {
	// Serve starts the transport, blocking until ctx is canceled or an error occurs.
	Serve(ctx context.Context, handler Handler) error

	// Addr returns the transport's address description.
	Addr() string
}
