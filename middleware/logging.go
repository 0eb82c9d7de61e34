package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/mcp-todo/logging"
	"github.com/felixgeelhaar/mcp-todo/protocol"
)

// Logging returns middleware that logs request details.
// Successful requests are logged at info level, errors at error level.
func Logging(logger logging.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			start := time.Now()

			resp, err := next(ctx, req)

			fields := []logging.Field{
				logging.F("method", req.Method),
				logging.F("duration", time.Since(start)),
			}
			if len(req.ID) > 0 {
				fields = append(fields, logging.F("id", string(req.ID)))
			}
			if requestID := RequestIDFromContext(ctx); requestID != "" {
				fields = append(fields, logging.F("request_id", requestID))
			}

			if err != nil {
				var mcpErr *protocol.Error
				if errors.As(err, &mcpErr) {
					fields = append(fields, logging.F("code", mcpErr.Code))
				}
				fields = append(fields, logging.F("error", err.Error()))
				logger.Error("request failed", fields...)
			} else {
				logger.Info("request completed", fields...)
			}

			return resp, err
		}
	}
}
