package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/mcp-todo/logging"
	"github.com/felixgeelhaar/mcp-todo/middleware"
	"github.com/felixgeelhaar/mcp-todo/protocol"
	"github.com/felixgeelhaar/mcp-todo/resources"
	"github.com/felixgeelhaar/mcp-todo/tools"
)

// ToolService lists and executes tools.
type ToolService interface {
	Definitions() []tools.Definition
	Call(ctx context.Context, name string, arguments json.RawMessage) (*tools.Result, error)
}

// ResourceService lists and renders resources.
type ResourceService interface {
	Definitions() []resources.Definition
	Read(ctx context.Context, uri string) (*resources.Result, error)
}

// ToolsListResult is the payload of tools/list.
type ToolsListResult struct {
	Tools []tools.Definition `json:"tools"`
}

// ResourcesListResult is the payload of resources/list.
type ResourcesListResult struct {
	Resources []resources.Definition `json:"resources"`
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger for message handling events.
func WithLogger(l logging.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// WithMiddleware appends middleware around method routing.
func WithMiddleware(m ...middleware.Middleware) Option {
	return func(h *Handler) {
		h.middleware.Append(m...)
	}
}

// WithCapabilities overrides the capabilities advertised by initialize.
func WithCapabilities(c Capabilities) Option {
	return func(h *Handler) {
		h.capabilities = c
	}
}

// Handler parses, routes and answers MCP messages one at a time.
type Handler struct {
	mu sync.Mutex

	info         Info
	capabilities Capabilities
	tools        ToolService
	resources    ResourceService
	logger       logging.Logger
	middleware   *middleware.MiddlewareChain
	next         middleware.HandlerFunc
}

// NewHandler creates a handler serving the given tool and resource services.
func NewHandler(info Info, toolSvc ToolService, resourceSvc ResourceService, opts ...Option) *Handler {
	h := &Handler{
		info:         info,
		capabilities: DefaultCapabilities(),
		tools:        toolSvc,
		resources:    resourceSvc,
		logger:       logging.NopLogger{},
		middleware:   middleware.Use(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.next = h.middleware.Then(h.route)
	return h
}

// Info returns the server info.
func (h *Handler) Info() Info {
	return h.info
}

// HandleMessage processes one raw message and returns the response to
// send, or nil when the message is a notification.
func (h *Handler) HandleMessage(ctx context.Context, msg []byte) (resp *protocol.Response) {
	h.mu.Lock()
	defer h.mu.Unlock()

	req, perr := protocol.ParseRequest(msg)
	if perr != nil {
		h.logger.Warn("invalid message", logging.F("code", perr.Code), logging.F("error", perr.Error()))
		return protocol.NewErrorResponse(req.ID, perr)
	}

	h.logger.Debug("request received",
		logging.F("method", req.Method),
		logging.F("id", string(req.ID)),
	)

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("handler panic", logging.F("method", req.Method), logging.F("panic", fmt.Sprint(r)))
			resp = h.reply(req, nil, protocol.NewInternalError(fmt.Sprintf("panic: %v", r)))
		}
	}()

	out, err := h.next(ctx, req)
	return h.reply(req, out, err)
}

// reply builds the wire response. Notifications and initialized are never
// answered, even when the latter carries an id.
func (h *Handler) reply(req *protocol.Request, out *protocol.Response, err error) *protocol.Response {
	if req.IsNotification() || req.Method == protocol.MethodInitialized {
		return nil
	}
	if err != nil {
		return protocol.NewErrorResponse(req.ID, protocol.AsError(err))
	}
	if out == nil {
		return protocol.NewResponse(req.ID, nil)
	}
	return out
}

func (h *Handler) route(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	var (
		result any
		err    error
	)

	switch req.Method {
	case protocol.MethodInitialize:
		result, err = h.initialize(req.Params)
	case protocol.MethodInitialized:
		return nil, nil
	case protocol.MethodToolsList:
		result = ToolsListResult{Tools: h.tools.Definitions()}
	case protocol.MethodToolsCall:
		result, err = h.callTool(ctx, req.Params)
	case protocol.MethodResourcesList:
		result = ResourcesListResult{Resources: h.resources.Definitions()}
	case protocol.MethodResourcesRead:
		result, err = h.readResource(ctx, req.Params)
	default:
		return nil, protocol.NewMethodNotFound(req.Method)
	}

	if err != nil {
		return nil, err
	}
	return protocol.NewResponse(req.ID, result), nil
}

type initializeParams struct {
	ProtocolVersion *string         `json:"protocolVersion"`
	Capabilities    json.RawMessage `json:"capabilities"`
}

func (h *Handler) initialize(raw json.RawMessage) (*InitializeResult, error) {
	var params initializeParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}

	if v := params.ProtocolVersion; v != nil && !h.info.Supports(*v) {
		return nil, protocol.Errorf(protocol.KindUnsupportedProtocol,
			"Protocol version '%s' is not supported", *v)
	}
	if len(params.Capabilities) > 0 && !isObject(params.Capabilities) {
		return nil, protocol.NewValidationError("Client capabilities must be provided as an object")
	}

	return &InitializeResult{
		ProtocolVersion: h.info.ProtocolVersion,
		Capabilities:    h.capabilities,
		ServerInfo:      Implementation{Name: h.info.Name, Version: h.info.Version},
	}, nil
}

type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func (h *Handler) callTool(ctx context.Context, raw json.RawMessage) (*tools.Result, error) {
	var params callToolParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	if params.Name == "" {
		return nil, protocol.NewInvalidParams("Tool name is required")
	}
	return h.tools.Call(ctx, params.Name, params.Arguments)
}

type readResourceParams struct {
	URI string `json:"uri"`
}

func (h *Handler) readResource(ctx context.Context, raw json.RawMessage) (*resources.Result, error) {
	var params readResourceParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	if params.URI == "" {
		return nil, protocol.NewInvalidParams("Resource URI is required")
	}
	return h.resources.Read(ctx, params.URI)
}

// decodeParams unmarshals optional params into v. Absent params leave v
// untouched.
func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if !isObject(raw) {
		return protocol.NewInvalidParams("params must be an object")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return protocol.NewInvalidParams(err.Error())
	}
	return nil
}

func isObject(raw json.RawMessage) bool {
	var m map[string]json.RawMessage
	return json.Unmarshal(raw, &m) == nil && m != nil
}
