package protocol

import (
	"bytes"
	"encoding/json"
)

// JSONRPCVersion is the JSON-RPC protocol version.
const JSONRPCVersion = "2.0"

// nullID is written when the request id cannot be recovered.
var nullID = json.RawMessage("null")

// Request represents a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification returns true if this request has no ID (is a notification).
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0
}

// Response represents a JSON-RPC 2.0 response.
// The id member is always present and is null when the request id is unknown.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// NewResponse creates a successful response.
func NewResponse(id json.RawMessage, result any) *Response {
	if result == nil {
		result = struct{}{}
	}
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      responseID(id),
		Result:  result,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(id json.RawMessage, err *Error) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      responseID(id),
		Error:   err,
	}
}

func responseID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return nullID
	}
	return id
}

// ParseRequest decodes one message into a Request and checks the envelope.
//
// On failure the returned request still carries whatever id could be
// recovered, so the caller can address the error response. A message that
// is not valid JSON yields a parse error; valid JSON with a bad envelope
// yields an invalid request error.
func ParseRequest(data []byte) (*Request, *Error) {
	req := &Request{}

	if !json.Valid(data) {
		var v any
		err := json.Unmarshal(data, &v)
		msg := "invalid JSON"
		if err != nil {
			msg = err.Error()
		}
		return req, NewParseError(msg)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil || envelope == nil {
		return req, NewInvalidRequest("Request must be an object")
	}

	if id, ok := envelope["id"]; ok {
		if !isValidID(id) {
			return req, NewInvalidRequest("ID must be a string or number")
		}
		req.ID = id
	}

	var version string
	if err := json.Unmarshal(envelope["jsonrpc"], &version); err != nil || version != JSONRPCVersion {
		return req, NewInvalidRequest("Invalid jsonrpc version")
	}
	req.JSONRPC = version

	if err := json.Unmarshal(envelope["method"], &req.Method); err != nil || req.Method == "" {
		return req, NewInvalidRequest("Method is required and must be a string")
	}

	if params, ok := envelope["params"]; ok && !bytes.Equal(bytes.TrimSpace(params), nullID) {
		req.Params = params
	}

	return req, nil
}

// isValidID reports whether raw holds a string, a number or null.
func isValidID(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch v.(type) {
	case nil, string, float64:
		return true
	default:
		return false
	}
}
