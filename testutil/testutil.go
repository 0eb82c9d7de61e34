// Package testutil provides testing utilities for the todo MCP server.
//
// A TestClient drives any transport.Handler in process and decodes every
// reply from its JSON wire form, so assertions see exactly what a client
// would read:
//
//	func TestCreate(t *testing.T) {
//	    tc := testutil.NewTestClient(t, mcptodo.MustNew().Handler())
//
//	    text, err := tc.CallTool("create_task", map[string]any{"text": "Buy milk"})
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	}
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/felixgeelhaar/mcp-todo/protocol"
	"github.com/felixgeelhaar/mcp-todo/transport"
)

// Response is a JSON-RPC response decoded from the wire.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *protocol.Error `json:"error,omitempty"`

	// Raw is the response exactly as serialized.
	Raw []byte `json:"-"`
}

// HasResult reports whether the response carries a result member.
func (r *Response) HasResult() bool {
	return len(r.Result) > 0
}

// TestClient is an in-process client for a message handler.
type TestClient struct {
	t       testing.TB
	handler transport.Handler
	reqID   int64
	mu      sync.Mutex
}

// NewTestClient creates a test client and performs the initialize handshake.
func NewTestClient(t testing.TB, handler transport.Handler) *TestClient {
	t.Helper()

	tc := NewTestClientWithHandler(t, handler)
	if _, err := tc.Initialize(); err != nil {
		t.Fatalf("failed to initialize server: %v", err)
	}
	if resp := tc.Notify(protocol.MethodInitialized, nil); resp != nil {
		t.Fatalf("initialized notification was answered: %s", resp.Raw)
	}
	return tc
}

// NewTestClientWithHandler creates a test client without the handshake.
func NewTestClientWithHandler(t testing.TB, handler transport.Handler) *TestClient {
	t.Helper()
	return &TestClient{
		t:       t,
		handler: handler,
	}
}

func (tc *TestClient) nextID() json.RawMessage {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.reqID++
	return json.RawMessage(fmt.Sprintf("%d", tc.reqID))
}

// Send hands one raw message to the handler and returns the decoded reply,
// or nil when the handler produced none.
func (tc *TestClient) Send(msg string) *Response {
	tc.t.Helper()

	resp := tc.handler.HandleMessage(context.Background(), []byte(msg))
	if resp == nil {
		return nil
	}
	data, err := json.Marshal(resp)
	if err != nil {
		tc.t.Fatalf("response does not serialize: %v", err)
	}
	return DecodeResponse(tc.t, data)
}

// DecodeResponse parses one serialized response.
func DecodeResponse(t testing.TB, data []byte) *Response {
	t.Helper()
	var r Response
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatalf("response %q is not valid JSON: %v", data, err)
	}
	r.Raw = data
	return &r
}

// SendRequest sends a request with a fresh id.
func (tc *TestClient) SendRequest(method string, params any) (*Response, error) {
	tc.t.Helper()

	msg, err := encode(tc.nextID(), method, params)
	if err != nil {
		return nil, err
	}
	resp := tc.Send(string(msg))
	if resp == nil {
		return nil, fmt.Errorf("no response to %s", method)
	}
	return resp, nil
}

// Notify sends a notification. Any reply is returned so callers can
// assert there was none.
func (tc *TestClient) Notify(method string, params any) *Response {
	tc.t.Helper()

	msg, err := encode(nil, method, params)
	if err != nil {
		tc.t.Fatalf("encode notification: %v", err)
	}
	return tc.Send(string(msg))
}

func encode(id json.RawMessage, method string, params any) ([]byte, error) {
	req := protocol.Request{
		JSONRPC: protocol.JSONRPCVersion,
		ID:      id,
		Method:  method,
	}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal params: %w", err)
		}
		req.Params = data
	}
	return json.Marshal(req)
}

// call sends a request and decodes its result into out.
func (tc *TestClient) call(method string, params any, out any) error {
	tc.t.Helper()

	resp, err := tc.SendRequest(method, params)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("unexpected result %s: %w", resp.Result, err)
	}
	return nil
}

// Initialize sends an initialize request offering the current protocol version.
func (tc *TestClient) Initialize() (map[string]any, error) {
	tc.t.Helper()

	var result map[string]any
	err := tc.call(protocol.MethodInitialize, map[string]any{
		"protocolVersion": protocol.MCPVersion,
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    "test-client",
			"version": "1.0.0",
		},
	}, &result)
	return result, err
}

// ListTools lists all available tools.
func (tc *TestClient) ListTools() ([]map[string]any, error) {
	tc.t.Helper()

	var result struct {
		Tools []map[string]any `json:"tools"`
	}
	if err := tc.call(protocol.MethodToolsList, nil, &result); err != nil {
		return nil, err
	}
	return result.Tools, nil
}

// CallTool calls a tool and returns the text of its single content item.
func (tc *TestClient) CallTool(name string, args any) (string, error) {
	tc.t.Helper()

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := tc.call(protocol.MethodToolsCall, map[string]any{
		"name":      name,
		"arguments": args,
	}, &result); err != nil {
		return "", err
	}
	if len(result.Content) != 1 {
		return "", fmt.Errorf("expected one content item, got %d", len(result.Content))
	}
	return result.Content[0].Text, nil
}

// CallToolRaw calls a tool and returns the raw response.
func (tc *TestClient) CallToolRaw(name string, args any) (*Response, error) {
	tc.t.Helper()

	return tc.SendRequest(protocol.MethodToolsCall, map[string]any{
		"name":      name,
		"arguments": args,
	})
}

// ListResources lists all available resources.
func (tc *TestClient) ListResources() ([]map[string]any, error) {
	tc.t.Helper()

	var result struct {
		Resources []map[string]any `json:"resources"`
	}
	if err := tc.call(protocol.MethodResourcesList, nil, &result); err != nil {
		return nil, err
	}
	return result.Resources, nil
}

// ReadResource reads a resource by URI and returns its text.
func (tc *TestClient) ReadResource(uri string) (string, error) {
	tc.t.Helper()

	var result struct {
		Contents []struct {
			URI  string `json:"uri"`
			Text string `json:"text"`
		} `json:"contents"`
	}
	if err := tc.call(protocol.MethodResourcesRead, map[string]any{"uri": uri}, &result); err != nil {
		return "", err
	}
	if len(result.Contents) != 1 {
		return "", fmt.Errorf("expected one contents item, got %d", len(result.Contents))
	}
	return result.Contents[0].Text, nil
}

// AssertToolExists asserts that a tool with the given name exists.
func (tc *TestClient) AssertToolExists(name string) {
	tc.t.Helper()

	tools, err := tc.ListTools()
	if err != nil {
		tc.t.Fatalf("ListTools failed: %v", err)
	}

	for _, tool := range tools {
		if tool["name"] == name {
			return
		}
	}
	tc.t.Errorf("tool %q not found", name)
}

// AssertResourceExists asserts that a resource with the given URI exists.
func (tc *TestClient) AssertResourceExists(uri string) {
	tc.t.Helper()

	resources, err := tc.ListResources()
	if err != nil {
		tc.t.Fatalf("ListResources failed: %v", err)
	}

	for _, res := range resources {
		if res["uri"] == uri {
			return
		}
	}
	tc.t.Errorf("resource %q not found", uri)
}

// AssertError asserts that resp is an error response with the given code.
func AssertError(t testing.TB, resp *Response, code int) *protocol.Error {
	t.Helper()

	if resp == nil {
		t.Fatalf("expected error %d, got no response", code)
	}
	if resp.Error == nil {
		t.Fatalf("expected error %d, got %s", code, resp.Raw)
	}
	if resp.HasResult() {
		t.Errorf("response carries both result and error: %s", resp.Raw)
	}
	if resp.Error.Code != code {
		t.Errorf("error code = %d, want %d (%s)", resp.Error.Code, code, resp.Raw)
	}
	return resp.Error
}

// RunStdio feeds input through a stdio transport around handler and
// returns each response line decoded.
func RunStdio(t testing.TB, handler transport.Handler, input string) []*Response {
	t.Helper()

	var out bytes.Buffer
	s := transport.NewStdio(transport.WithStdin(strings.NewReader(input)), transport.WithStdout(&out))
	if err := s.Serve(context.Background(), handler); err != nil {
		t.Fatalf("Serve() error: %v", err)
	}

	var resps []*Response
	for _, line := range bytes.Split(out.Bytes(), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		resps = append(resps, DecodeResponse(t, line))
	}
	return resps
}
