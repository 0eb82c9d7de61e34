package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/mcp-todo/logging"
	"github.com/felixgeelhaar/mcp-todo/protocol"
	"github.com/felixgeelhaar/mcp-todo/task"
)

// Content is one item of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the payload of a successful tools/call.
type Result struct {
	Content []Content `json:"content"`
}

// TextResult wraps text in a single-item result.
func TextResult(text string) *Result {
	return &Result{Content: []Content{{Type: "text", Text: text}}}
}

type handlerFunc func(ctx context.Context, arguments json.RawMessage) (string, error)

// typed adapts a handler taking decoded arguments. Arguments are validated
// before decoding, so a decode failure means a malformed message.
func typed[T any](fn func(context.Context, T) (string, error)) handlerFunc {
	return func(ctx context.Context, arguments json.RawMessage) (string, error) {
		var in T
		if err := json.Unmarshal(arguments, &in); err != nil {
			return "", protocol.NewInvalidParams(err.Error())
		}
		return fn(ctx, in)
	}
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger for tool execution events.
func WithLogger(l logging.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// Dispatcher validates tool calls and runs them against a task store.
type Dispatcher struct {
	registry *Registry
	store    *task.Store
	logger   logging.Logger
	handlers map[string]handlerFunc
}

// NewDispatcher creates a dispatcher for the tools in registry.
func NewDispatcher(registry *Registry, store *task.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		store:    store,
		logger:   logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(d)
	}

	d.handlers = map[string]handlerFunc{
		CreateTask:         typed(d.createTask),
		GetTasks:           typed(d.getTasks),
		UpdateTask:         typed(d.updateTask),
		CompleteTaskByText: typed(d.completeTaskByText),
		AnalyzeTasks:       typed(d.analyzeTasks),
		DeleteTask:         typed(d.deleteTask),
		ClearAllTasks:      typed(d.clearAllTasks),
	}
	return d
}

// Definitions returns the advertised tool table.
func (d *Dispatcher) Definitions() []Definition {
	return d.registry.Definitions()
}

// Call validates arguments for the named tool and executes it. Errors are
// *protocol.Error values; the store is unchanged when a call fails.
func (d *Dispatcher) Call(ctx context.Context, name string, arguments json.RawMessage) (*Result, error) {
	start := time.Now()

	text, err := d.call(ctx, name, arguments)
	if err != nil {
		d.logger.Error("tool execution failed",
			logging.F("tool", name),
			logging.F("arguments", string(arguments)),
			logging.F("error", err.Error()),
		)
		return nil, err
	}

	d.logger.Info("tool executed",
		logging.F("tool", name),
		logging.F("arguments", string(arguments)),
		logging.F("duration", time.Since(start)),
	)
	return TextResult(text), nil
}

func (d *Dispatcher) call(ctx context.Context, name string, arguments json.RawMessage) (string, error) {
	if err := d.registry.Validate(name, arguments); err != nil {
		return "", err
	}
	h, ok := d.handlers[name]
	if !ok {
		return "", protocol.Errorf(protocol.KindToolNotFound, "Tool '%s' is not available", name)
	}
	return h(ctx, arguments)
}

type createTaskInput struct {
	Text string `json:"text"`
}

func (d *Dispatcher) createTask(_ context.Context, in createTaskInput) (string, error) {
	if strings.TrimSpace(in.Text) == "" {
		return "", protocol.NewValidationError("Parameter 'text' must be at least 1 characters")
	}
	t := d.store.Add(in.Text)
	return fmt.Sprintf("Task created successfully: \"%s\"", t.Text), nil
}

type getTasksInput struct {
	Filter string `json:"filter"`
}

func (d *Dispatcher) getTasks(_ context.Context, in getTasksInput) (string, error) {
	filter, err := task.ParseFilter(in.Filter)
	if err != nil {
		return "", protocol.NewValidationError(err.Error())
	}
	tasks := d.store.Filter(filter)
	return fmt.Sprintf("Retrieved %d tasks (filter: %s)", len(tasks), filter), nil
}

type updateTaskInput struct {
	ID        string `json:"id"`
	Completed bool   `json:"completed"`
}

func (d *Dispatcher) updateTask(_ context.Context, in updateTaskInput) (string, error) {
	t, ok := d.store.Update(in.ID, task.Patch{Completed: &in.Completed})
	if !ok {
		return "", taskNotFound(in.ID)
	}
	if t.Completed {
		return fmt.Sprintf("Task \"%s\" completed", t.Text), nil
	}
	return fmt.Sprintf("Task \"%s\" marked as pending", t.Text), nil
}

type completeByTextInput struct {
	Text string `json:"text"`
}

func (d *Dispatcher) completeTaskByText(_ context.Context, in completeByTextInput) (string, error) {
	matches := d.store.Search(in.Text, task.FilterPending)

	switch len(matches) {
	case 0:
		return "", protocol.Errorf(protocol.KindValidationError,
			"No pending tasks found containing \"%s\"", in.Text)
	case 1:
	default:
		lines := make([]string, len(matches))
		for i, m := range matches {
			lines[i] = "- " + m.Text
		}
		return "", protocol.Errorf(protocol.KindValidationError,
			"Multiple tasks found containing \"%s\". Please be more specific:\n%s",
			in.Text, strings.Join(lines, "\n"))
	}

	done := true
	t, ok := d.store.Update(matches[0].ID, task.Patch{Completed: &done})
	if !ok {
		return "", taskNotFound(matches[0].ID)
	}
	return fmt.Sprintf("Task \"%s\" marked as completed", t.Text), nil
}

type analyzeTasksInput struct {
	AnalysisType string `json:"analysis_type"`
}

func (d *Dispatcher) analyzeTasks(_ context.Context, in analyzeTasksInput) (string, error) {
	a := d.store.Analytics()

	switch in.AnalysisType {
	case AnalysisSummary:
		return fmt.Sprintf("Task Summary: %d total tasks, %d completed, %d pending",
			a.Total, a.Completed, a.Pending), nil
	case AnalysisProgress:
		return fmt.Sprintf("Progress: %s%% completion rate", a.FormatCompletionRate()), nil
	case AnalysisSuggestions:
		if a.Pending > 0 {
			return fmt.Sprintf("Suggestions: You have %d pending tasks. Consider prioritizing them.", a.Pending), nil
		}
		return "Great job! All tasks are completed.", nil
	default:
		return "", protocol.Errorf(protocol.KindValidationError,
			"Parameter 'analysis_type' must be one of: %s, %s, %s",
			AnalysisSummary, AnalysisProgress, AnalysisSuggestions)
	}
}

type deleteTaskInput struct {
	ID string `json:"id"`
}

func (d *Dispatcher) deleteTask(_ context.Context, in deleteTaskInput) (string, error) {
	t, ok := d.store.Delete(in.ID)
	if !ok {
		return "", taskNotFound(in.ID)
	}
	return fmt.Sprintf("Task \"%s\" deleted successfully", t.Text), nil
}

type clearAllInput struct{}

func (d *Dispatcher) clearAllTasks(_ context.Context, _ clearAllInput) (string, error) {
	n := d.store.Clear()
	return fmt.Sprintf("Cleared %d tasks from the todo list", n), nil
}

func taskNotFound(id string) error {
	return protocol.Errorf(protocol.KindValidationError, "Task with ID %s not found", id)
}
