// Package transport carries MCP messages between clients and a Handler.
//
// # Stdio Transport
//
// The default transport reads one JSON message per line from stdin and
// writes one response per line to stdout. Lines are handled strictly in
// order; a trailing fragment without a newline is discarded at EOF.
//
//	t := transport.NewStdio(transport.WithStdioLogger(logger))
//	err := t.Serve(ctx, handler) // nil on EOF
//
// # HTTP Transport
//
//	t := transport.NewHTTP(":8080", transport.WithDefaultCORS())
//	err := t.Serve(ctx, handler)
//
// Endpoints:
//   - POST /mcp - one JSON-RPC message per request body
//   - GET /health - health check
//
// # WebSocket Transport
//
// Each text frame carries one message; responses are written back as
// text frames on the same connection.
package transport
