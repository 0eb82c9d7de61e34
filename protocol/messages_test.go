package protocol

import (
	"encoding/json"
	"testing"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     Request
		wantCode int
		wantData string
	}{
		{
			name:  "valid request with params",
			input: `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"create_task"}}`,
			want: Request{
				JSONRPC: "2.0",
				ID:      json.RawMessage(`1`),
				Method:  "tools/call",
				Params:  json.RawMessage(`{"name":"create_task"}`),
			},
		},
		{
			name:  "valid request without params",
			input: `{"jsonrpc":"2.0","id":"abc-123","method":"tools/list"}`,
			want: Request{
				JSONRPC: "2.0",
				ID:      json.RawMessage(`"abc-123"`),
				Method:  "tools/list",
			},
		},
		{
			name:  "notification (no id)",
			input: `{"jsonrpc":"2.0","method":"notifications/initialized"}`,
			want: Request{
				JSONRPC: "2.0",
				Method:  "notifications/initialized",
			},
		},
		{
			name:  "null params are dropped",
			input: `{"jsonrpc":"2.0","id":2,"method":"tools/list","params":null}`,
			want: Request{
				JSONRPC: "2.0",
				ID:      json.RawMessage(`2`),
				Method:  "tools/list",
			},
		},
		{
			name:     "invalid json",
			input:    `{invalid}`,
			wantCode: CodeParseError,
		},
		{
			name:     "not an object",
			input:    `[1,2,3]`,
			wantCode: CodeInvalidRequest,
			wantData: "Request must be an object",
		},
		{
			name:     "wrong version",
			input:    `{"jsonrpc":"1.0","id":7,"method":"tools/list"}`,
			want:     Request{ID: json.RawMessage(`7`)},
			wantCode: CodeInvalidRequest,
			wantData: "Invalid jsonrpc version",
		},
		{
			name:     "missing method",
			input:    `{"jsonrpc":"2.0","id":8}`,
			want:     Request{JSONRPC: "2.0", ID: json.RawMessage(`8`)},
			wantCode: CodeInvalidRequest,
			wantData: "Method is required and must be a string",
		},
		{
			name:     "non-string method",
			input:    `{"jsonrpc":"2.0","id":9,"method":42}`,
			want:     Request{JSONRPC: "2.0", ID: json.RawMessage(`9`)},
			wantCode: CodeInvalidRequest,
			wantData: "Method is required and must be a string",
		},
		{
			name:     "object id",
			input:    `{"jsonrpc":"2.0","id":{"a":1},"method":"tools/list"}`,
			wantCode: CodeInvalidRequest,
			wantData: "ID must be a string or number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRequest([]byte(tt.input))

			if tt.wantCode != 0 {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if err.Code != tt.wantCode {
					t.Errorf("Code = %d, want %d", err.Code, tt.wantCode)
				}
				if tt.wantData != "" && err.Data != tt.wantData {
					t.Errorf("Data = %v, want %q", err.Data, tt.wantData)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.JSONRPC != tt.want.JSONRPC {
				t.Errorf("JSONRPC = %q, want %q", got.JSONRPC, tt.want.JSONRPC)
			}
			if got.Method != tt.want.Method {
				t.Errorf("Method = %q, want %q", got.Method, tt.want.Method)
			}
			if string(got.ID) != string(tt.want.ID) {
				t.Errorf("ID = %s, want %s", got.ID, tt.want.ID)
			}
			if string(got.Params) != string(tt.want.Params) {
				t.Errorf("Params = %s, want %s", got.Params, tt.want.Params)
			}
		})
	}
}

func TestRequest_IsNotification(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want bool
	}{
		{
			name: "request with id is not notification",
			req:  Request{ID: json.RawMessage(`1`)},
			want: false,
		},
		{
			name: "explicit null id is not notification",
			req:  Request{ID: json.RawMessage(`null`)},
			want: false,
		},
		{
			name: "request without id is notification",
			req:  Request{},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.IsNotification(); got != tt.want {
				t.Errorf("IsNotification() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResponse_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		resp *Response
		want string
	}{
		{
			name: "success response",
			resp: NewResponse(json.RawMessage(`1`), map[string]string{"status": "ok"}),
			want: `{"jsonrpc":"2.0","id":1,"result":{"status":"ok"}}`,
		},
		{
			name: "error response",
			resp: NewErrorResponse(json.RawMessage(`"a"`), New(KindInternalError, nil)),
			want: `{"jsonrpc":"2.0","id":"a","error":{"code":-32603,"message":"Internal error"}}`,
		},
		{
			name: "missing id is written as null",
			resp: NewErrorResponse(nil, NewParseError("bad")),
			want: `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"Parse error","data":"bad"}}`,
		},
		{
			name: "nil result is an empty object",
			resp: NewResponse(json.RawMessage(`3`), nil),
			want: `{"jsonrpc":"2.0","id":3,"result":{}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.resp)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if string(got) != tt.want {
				t.Errorf("MarshalJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	id := json.RawMessage(`42`)
	resp := NewErrorResponse(id, NewInternalError("something failed"))

	if resp.JSONRPC != JSONRPCVersion {
		t.Errorf("JSONRPC = %q, want %q", resp.JSONRPC, JSONRPCVersion)
	}
	if resp.Result != nil {
		t.Error("Result should be nil for error response")
	}
	if resp.Error == nil {
		t.Fatal("Error should not be nil")
	}
	if resp.Error.Code != CodeInternalError {
		t.Errorf("Error.Code = %d, want %d", resp.Error.Code, CodeInternalError)
	}
}
