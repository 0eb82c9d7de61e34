// Package server implements the MCP message handler for the todo server.
//
// A Handler turns one raw JSON-RPC message into at most one response:
//
//	h := server.NewHandler(server.DefaultInfo(), dispatcher, reader,
//	    server.WithLogger(logger),
//	    server.WithMiddleware(middleware.DefaultStack(logger)...),
//	)
//	resp := h.HandleMessage(ctx, line)
//	if resp != nil {
//	    // write resp
//	}
//
// Parse failures, unknown methods, validation failures and panics all
// become error responses addressed to the request id. Notifications are
// processed but never answered. Calls are serialized, so the task store
// behind the tool and resource services needs no locking of its own.
package server
