package middleware

import "github.com/felixgeelhaar/mcp-todo/logging"

// DefaultStack returns the middleware every server runs: panic recovery,
// request ID injection and request logging.
func DefaultStack(logger logging.Logger) []Middleware {
	return []Middleware{
		Recover(WithRecoverLogger(logger)),
		RequestID(),
		Logging(logger),
	}
}
