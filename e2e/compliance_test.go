// Package e2e runs the todo server end to end over the stdio transport and
// checks every wire response against the JSON-RPC 2.0 response envelope.
package e2e

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/xeipuuv/gojsonschema"

	"github.com/felixgeelhaar/mcp-todo"
	"github.com/felixgeelhaar/mcp-todo/protocol"
	"github.com/felixgeelhaar/mcp-todo/task"
	"github.com/felixgeelhaar/mcp-todo/testutil"
)

const responseSchema = `{
  "type": "object",
  "required": ["jsonrpc", "id"],
  "properties": {
    "jsonrpc": {"const": "2.0"},
    "id": {"type": ["string", "number", "null"]},
    "result": {"type": "object"},
    "error": {
      "type": "object",
      "required": ["code", "message"],
      "properties": {
        "code": {"type": "integer"},
        "message": {"type": "string"}
      }
    }
  },
  "oneOf": [
    {"required": ["result"], "not": {"required": ["error"]}},
    {"required": ["error"], "not": {"required": ["result"]}}
  ],
  "additionalProperties": false
}`

var envelope = gojsonschema.NewStringLoader(responseSchema)

func checkEnvelope(t *testing.T, r *testutil.Response) {
	t.Helper()
	res, err := gojsonschema.Validate(envelope, gojsonschema.NewBytesLoader(r.Raw))
	if err != nil {
		t.Fatalf("schema validation failed: %v", err)
	}
	if !res.Valid() {
		for _, e := range res.Errors() {
			t.Errorf("%s: %s", r.Raw, e)
		}
	}
}

// session runs lines through a fresh server and returns the responses.
func session(t *testing.T, srv *mcptodo.Server, lines ...string) []*testutil.Response {
	t.Helper()
	resps := testutil.RunStdio(t, srv.Handler(), strings.Join(lines, "\n")+"\n")
	for _, r := range resps {
		checkEnvelope(t, r)
	}
	return resps
}

func callTool(id int, name, args string) string {
	return fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"method":"tools/call","params":{"name":%q,"arguments":%s}}`, id, name, args)
}

func toolText(t *testing.T, r *testutil.Response) string {
	t.Helper()
	if r.Error != nil {
		t.Fatalf("unexpected error: %s", r.Raw)
	}
	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(r.Result, &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Content) != 1 || result.Content[0].Type != "text" {
		t.Fatalf("result = %s", r.Result)
	}
	return result.Content[0].Text
}

const initialize = `{"jsonrpc":"2.0","id":0,"method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"e2e","version":"1.0.0"}}}`
const initialized = `{"jsonrpc":"2.0","method":"notifications/initialized"}`

func TestHandshake(t *testing.T) {
	resps := session(t, mcptodo.MustNew(), initialize, initialized,
		`{"jsonrpc":"2.0","id":"tools","method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":"resources","method":"resources/list"}`,
	)

	if len(resps) != 3 {
		t.Fatalf("got %d responses, want 3", len(resps))
	}

	var init struct {
		ProtocolVersion string `json:"protocolVersion"`
		ServerInfo      struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"serverInfo"`
	}
	if err := json.Unmarshal(resps[0].Result, &init); err != nil {
		t.Fatal(err)
	}
	if init.ProtocolVersion != protocol.MCPVersion || init.ServerInfo.Name != "mcp-todo-server" {
		t.Errorf("initialize = %s", resps[0].Result)
	}
	if string(resps[1].ID) != `"tools"` || string(resps[2].ID) != `"resources"` {
		t.Errorf("ids = %s, %s", resps[1].ID, resps[2].ID)
	}
}

func TestScenarios(t *testing.T) {
	t.Run("create task", func(t *testing.T) {
		srv := mcptodo.MustNew()
		resps := session(t, srv,
			`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"create_task","arguments":{"text":"Buy milk"}}}`)

		if got := toolText(t, resps[0]); got != `Task created successfully: "Buy milk"` {
			t.Errorf("text = %q", got)
		}
		if string(resps[0].ID) != "1" {
			t.Errorf("id = %s", resps[0].ID)
		}
		if srv.Store().Count() != 1 {
			t.Errorf("Count() = %d", srv.Store().Count())
		}
	})

	t.Run("complete by text", func(t *testing.T) {
		srv := mcptodo.MustNew()
		srv.Store().Add("Buy milk")
		resps := session(t, srv, callTool(1, "complete_task_by_text", `{"text":"milk"}`))

		if got := toolText(t, resps[0]); got != `Task "Buy milk" marked as completed` {
			t.Errorf("text = %q", got)
		}
		if a := srv.Store().Analytics(); a.Completed != 1 {
			t.Errorf("Completed = %d", a.Completed)
		}
	})

	t.Run("complete by text no match", func(t *testing.T) {
		resps := session(t, mcptodo.MustNew(), callTool(1, "complete_task_by_text", `{"text":"zzz"}`))

		e := testutil.AssertError(t, resps[0], protocol.CodeValidationError)
		if e.Data != `No pending tasks found containing "zzz"` {
			t.Errorf("Data = %v", e.Data)
		}
	})

	t.Run("update unknown id", func(t *testing.T) {
		srv := mcptodo.MustNew()
		srv.Store().Add("keep")
		id := "123e4567-e89b-42d3-a456-426614174000"
		resps := session(t, srv, callTool(1, "update_task", `{"id":"`+id+`","completed":true}`))

		e := testutil.AssertError(t, resps[0], protocol.CodeValidationError)
		if !strings.Contains(fmt.Sprint(e.Data), id) {
			t.Errorf("Data = %v", e.Data)
		}
		if a := srv.Store().Analytics(); a.Total != 1 || a.Completed != 0 {
			t.Errorf("store changed: %+v", a)
		}
	})

	t.Run("progress", func(t *testing.T) {
		srv := mcptodo.MustNew()
		resps := session(t, srv,
			callTool(1, "create_task", `{"text":"a"}`),
			callTool(2, "create_task", `{"text":"b"}`),
			callTool(3, "complete_task_by_text", `{"text":"a"}`),
			callTool(4, "analyze_tasks", `{"analysis_type":"progress"}`),
		)

		if got := toolText(t, resps[3]); !strings.Contains(got, "50.0%") {
			t.Errorf("text = %q", got)
		}
	})

	t.Run("parse error", func(t *testing.T) {
		resps := session(t, mcptodo.MustNew(), `{"jsonrpc":"2.0","id":1,`)

		testutil.AssertError(t, resps[0], protocol.CodeParseError)
		if string(resps[0].ID) != "null" {
			t.Errorf("id = %s, want null", resps[0].ID)
		}
	})
}

func TestRoundTripIDs(t *testing.T) {
	resps := session(t, mcptodo.MustNew(),
		initialized,
		`{"jsonrpc":"2.0","id":7,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":"abc","method":"resources/read","params":{"uri":"todo://tasks"}}`,
		`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"create_task","arguments":{"text":"quiet"}}}`,
		`{"jsonrpc":"2.0","id":9.5,"method":"unknown/method"}`,
	)

	want := []string{"7", `"abc"`, "9.5"}
	if len(resps) != len(want) {
		t.Fatalf("got %d responses, want %d", len(resps), len(want))
	}
	for i, id := range want {
		if string(resps[i].ID) != id {
			t.Errorf("[%d] id = %s, want %s", i, resps[i].ID, id)
		}
	}
	testutil.AssertError(t, resps[2], protocol.CodeMethodNotFound)
}

func TestClearAllIdempotent(t *testing.T) {
	srv := mcptodo.MustNew()
	resps := session(t, srv,
		callTool(1, "create_task", `{"text":"a"}`),
		callTool(2, "create_task", `{"text":"b"}`),
		callTool(3, "clear_all_tasks", `{}`),
		callTool(4, "clear_all_tasks", `{}`),
	)

	if got := toolText(t, resps[2]); got != "Cleared 2 tasks from the todo list" {
		t.Errorf("first = %q", got)
	}
	if got := toolText(t, resps[3]); got != "Cleared 0 tasks from the todo list" {
		t.Errorf("second = %q", got)
	}
	if srv.Store().Count() != 0 {
		t.Errorf("Count() = %d", srv.Store().Count())
	}
}

func TestCreateTaskBoundaries(t *testing.T) {
	tests := []struct {
		name string
		text string
		ok   bool
	}{
		{"single character", "a", true},
		{"maximum length", strings.Repeat("x", 500), true},
		{"empty", "", false},
		{"too long", strings.Repeat("x", 501), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resps := session(t, mcptodo.MustNew(), callTool(1, "create_task", fmt.Sprintf(`{"text":%q}`, tt.text)))
			if tt.ok {
				toolText(t, resps[0])
				return
			}
			testutil.AssertError(t, resps[0], protocol.CodeValidationError)
		})
	}
}

func TestFilterInvariant(t *testing.T) {
	srv := mcptodo.MustNew()
	tc := testutil.NewTestClient(t, srv.Handler())

	for _, text := range []string{"one", "two", "three", "four"} {
		if _, err := tc.CallTool("create_task", map[string]any{"text": text}); err != nil {
			t.Fatal(err)
		}
	}
	for _, text := range []string{"two", "four"} {
		if _, err := tc.CallTool("complete_task_by_text", map[string]any{"text": text}); err != nil {
			t.Fatal(err)
		}
	}

	read := func(uri string) []task.Task {
		t.Helper()
		text, err := tc.ReadResource(uri)
		if err != nil {
			t.Fatalf("ReadResource(%s): %v", uri, err)
		}
		var tasks []task.Task
		if err := json.Unmarshal([]byte(text), &tasks); err != nil {
			t.Fatal(err)
		}
		return tasks
	}

	all := read("todo://tasks")
	pending := read("todo://tasks/pending")
	completed := read("todo://tasks/completed")

	for _, tk := range pending {
		if tk.Completed {
			t.Errorf("completed task %q in pending view", tk.Text)
		}
	}
	for _, tk := range completed {
		if !tk.Completed {
			t.Errorf("pending task %q in completed view", tk.Text)
		}
	}

	text, err := tc.ReadResource("todo://analytics/summary")
	if err != nil {
		t.Fatal(err)
	}
	var summary struct {
		Total     int `json:"total"`
		Completed int `json:"completed"`
		Pending   int `json:"pending"`
	}
	if err := json.Unmarshal([]byte(text), &summary); err != nil {
		t.Fatal(err)
	}
	if len(all) != summary.Total || summary.Total != summary.Completed+summary.Pending {
		t.Errorf("len(all) = %d, summary = %+v", len(all), summary)
	}
	if len(pending) != summary.Pending || len(completed) != summary.Completed {
		t.Errorf("views %d/%d, summary = %+v", len(pending), len(completed), summary)
	}
}

func TestErrorsKeepServing(t *testing.T) {
	resps := session(t, mcptodo.MustNew(),
		`not json at all`,
		`{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"todo://nope"}}`,
		callTool(2, "drop_table", `{}`),
		callTool(3, "create_task", `{"text":"still here"}`),
	)

	if len(resps) != 4 {
		t.Fatalf("got %d responses", len(resps))
	}
	testutil.AssertError(t, resps[0], protocol.CodeParseError)
	testutil.AssertError(t, resps[1], protocol.CodeValidationError)
	testutil.AssertError(t, resps[2], protocol.CodeToolNotFound)
	toolText(t, resps[3])
}
