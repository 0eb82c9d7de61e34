// Package protocol defines the MCP JSON-RPC 2.0 message types and the closed
// error taxonomy used on the wire.
//
// # Request and Response Types
//
//	type Request struct {
//	    JSONRPC string          `json:"jsonrpc"`
//	    ID      json.RawMessage `json:"id,omitempty"`
//	    Method  string          `json:"method"`
//	    Params  json.RawMessage `json:"params,omitempty"`
//	}
//
// ParseRequest decodes a single message and checks the envelope. A response
// always carries an id; it is null when the request id could not be recovered.
//
// # Error Kinds
//
// Every error has a Kind with a fixed code and message:
//
//	ParseError             -32700
//	InvalidRequest         -32600
//	MethodNotFound         -32601
//	InvalidParams          -32602
//	InternalError          -32603
//	UnsupportedProtocol    -32000
//	CapabilityNotSupported -32001
//	ResourceNotFound       -32002
//	ToolNotFound           -32003
//	Unauthorized           -32004
//	RateLimited            -32005
//	ValidationError        -32006
//
// Diagnostic detail travels in the data member:
//
//	err := protocol.Errorf(protocol.KindValidationError, "Parameter '%s' is not supported", key)
//
// AsError maps any error to a protocol error, turning unknown errors into
// internal errors that keep their message as data.
package protocol
