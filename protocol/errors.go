package protocol

import (
	"errors"
	"fmt"
)

// Kind identifies one member of the closed error taxonomy.
type Kind int

// Error kinds. Transport-level kinds follow JSON-RPC 2.0, the rest are
// domain-level MCP errors.
const (
	KindParseError Kind = iota + 1
	KindInvalidRequest
	KindMethodNotFound
	KindInvalidParams
	KindInternalError
	KindUnsupportedProtocol
	KindCapabilityNotSupported
	KindResourceNotFound
	KindToolNotFound
	KindUnauthorized
	KindRateLimited
	KindValidationError
)

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// MCP-specific error codes.
const (
	CodeUnsupportedProtocol    = -32000
	CodeCapabilityNotSupported = -32001
	CodeResourceNotFound       = -32002
	CodeToolNotFound           = -32003
	CodeUnauthorized           = -32004
	CodeRateLimited            = -32005
	CodeValidationError        = -32006
)

type kindInfo struct {
	code    int
	message string
}

var kinds = map[Kind]kindInfo{
	KindParseError:             {CodeParseError, "Parse error"},
	KindInvalidRequest:         {CodeInvalidRequest, "Invalid Request"},
	KindMethodNotFound:         {CodeMethodNotFound, "Method not found"},
	KindInvalidParams:          {CodeInvalidParams, "Invalid params"},
	KindInternalError:          {CodeInternalError, "Internal error"},
	KindUnsupportedProtocol:    {CodeUnsupportedProtocol, "Protocol version not supported by server"},
	KindCapabilityNotSupported: {CodeCapabilityNotSupported, "Requested capability not supported"},
	KindResourceNotFound:       {CodeResourceNotFound, "Requested resource does not exist"},
	KindToolNotFound:           {CodeToolNotFound, "Requested tool does not exist"},
	KindUnauthorized:           {CodeUnauthorized, "Access denied for requested operation"},
	KindRateLimited:            {CodeRateLimited, "Request rate limit exceeded"},
	KindValidationError:        {CodeValidationError, "Request parameters failed validation"},
}

// Code returns the fixed wire code for the kind.
func (k Kind) Code() int {
	if info, ok := kinds[k]; ok {
		return info.code
	}
	return CodeInternalError
}

// Message returns the fixed wire message for the kind.
func (k Kind) Message() string {
	if info, ok := kinds[k]; ok {
		return info.message
	}
	return kinds[KindInternalError].message
}

// String returns the message, which doubles as a readable name.
func (k Kind) String() string {
	return k.Message()
}

// Kinds returns every kind in the taxonomy in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for k := KindParseError; k <= KindValidationError; k++ {
		out = append(out, k)
	}
	return out
}

// Error represents a JSON-RPC 2.0 error.
type Error struct {
	Kind    Kind   `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("mcp: %s (code: %d): %v", e.Message, e.Code, e.Data)
	}
	return fmt.Sprintf("mcp: %s (code: %d)", e.Message, e.Code)
}

// Is implements errors.Is comparison by error code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithData returns a copy of the error with additional data attached.
func (e *Error) WithData(data any) *Error {
	return &Error{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: e.Message,
		Data:    data,
	}
}

// New creates an error of the given kind. A nil data leaves the data member
// off the wire.
func New(kind Kind, data any) *Error {
	return &Error{
		Kind:    kind,
		Code:    kind.Code(),
		Message: kind.Message(),
		Data:    data,
	}
}

// Errorf creates an error of the given kind with formatted diagnostic data.
func Errorf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// AsError converts any error into a protocol error. Protocol errors anywhere
// in the chain pass through; everything else becomes an internal error that
// keeps the original message as data.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var mcpErr *Error
	if errors.As(err, &mcpErr) {
		return mcpErr
	}
	return New(KindInternalError, err.Error())
}

// NewParseError creates a parse error (-32700).
func NewParseError(data string) *Error {
	return New(KindParseError, data)
}

// NewInvalidRequest creates an invalid request error (-32600).
func NewInvalidRequest(data string) *Error {
	return New(KindInvalidRequest, data)
}

// NewMethodNotFound creates a method not found error (-32601).
func NewMethodNotFound(method string) *Error {
	return New(KindMethodNotFound, method)
}

// NewInvalidParams creates an invalid params error (-32602).
func NewInvalidParams(data string) *Error {
	return New(KindInvalidParams, data)
}

// NewInternalError creates an internal error (-32603).
func NewInternalError(data string) *Error {
	return New(KindInternalError, data)
}

// NewValidationError creates a validation error (-32006).
func NewValidationError(data string) *Error {
	return New(KindValidationError, data)
}
