// Package middleware provides request middleware for the todo server.
//
// Each middleware wraps the next handler in the chain, allowing pre- and
// post-processing of requests:
//
//	chain := middleware.Chain(
//	    middleware.Recover(),
//	    middleware.RequestID(),
//	    middleware.Logging(logger),
//	)
//	handler := chain(baseHandler)
//
// # Available Middleware
//
//   - Recover: converts panics into internal errors
//   - RequestID: injects a UUID request id into the context
//   - Logging: logs method, duration and outcome of each request
//   - SizeLimit: rejects oversized params with an invalid request error
//   - RateLimit: token bucket limiting with a rate limited error
//   - OTel: OpenTelemetry spans and request metrics
//
// Middleware report failures as *protocol.Error values so the message
// handler can map them onto the wire unchanged.
package middleware
