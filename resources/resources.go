// Package resources exposes read-only JSON views of the task store.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-todo/logging"
	"github.com/felixgeelhaar/mcp-todo/protocol"
	"github.com/felixgeelhaar/mcp-todo/task"
)

// Resource URIs.
const (
	URITasks          = "todo://tasks"
	URIPendingTasks   = "todo://tasks/pending"
	URICompletedTasks = "todo://tasks/completed"
	URIAnalytics      = "todo://analytics/summary"
)

// MimeJSON is the MIME type of every resource.
const MimeJSON = "application/json"

// Definition describes a resource as advertised by resources/list.
type Definition struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

// Definitions returns the resource table in advertised order.
func Definitions() []Definition {
	return []Definition{
		{URITasks, "All Tasks", "Complete list of all tasks with metadata", MimeJSON},
		{URIPendingTasks, "Pending Tasks", "List of incomplete tasks requiring attention", MimeJSON},
		{URICompletedTasks, "Completed Tasks", "List of successfully completed tasks", MimeJSON},
		{URIAnalytics, "Task Analytics", "Statistical summary of task completion and progress", MimeJSON},
	}
}

// Content is one item of a resources/read result.
type Content struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// Result is the payload of a successful resources/read.
type Result struct {
	Contents []Content `json:"contents"`
}

// Summary is the document served at URIAnalytics.
type Summary struct {
	Total          int    `json:"total"`
	Completed      int    `json:"completed"`
	Pending        int    `json:"pending"`
	CompletionRate string `json:"completion_rate"`
	LastUpdated    string `json:"last_updated"`
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger for resource reads.
func WithLogger(l logging.Logger) Option {
	return func(r *Reader) {
		r.logger = l
	}
}

// Reader renders resources from a task store.
type Reader struct {
	store  *task.Store
	logger logging.Logger
}

// NewReader creates a reader backed by store.
func NewReader(store *task.Store, opts ...Option) *Reader {
	r := &Reader{
		store:  store,
		logger: logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Definitions returns the advertised resource table.
func (r *Reader) Definitions() []Definition {
	return Definitions()
}

// Read renders the resource at uri. It never modifies the store.
func (r *Reader) Read(_ context.Context, uri string) (*Result, error) {
	var doc any
	switch uri {
	case URITasks:
		doc = r.store.All()
	case URIPendingTasks:
		doc = r.store.Filter(task.FilterPending)
	case URICompletedTasks:
		doc = r.store.Filter(task.FilterCompleted)
	case URIAnalytics:
		doc = r.summary()
	default:
		err := protocol.Errorf(protocol.KindValidationError, "Unknown resource: %s", uri)
		r.logger.Error("resource read failed", logging.F("uri", uri), logging.F("error", err.Error()))
		return nil, err
	}

	text, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", uri, err)
	}

	r.logger.Info("resource read", logging.F("uri", uri))
	return &Result{
		Contents: []Content{{URI: uri, MimeType: MimeJSON, Text: string(text)}},
	}, nil
}

func (r *Reader) summary() Summary {
	a := r.store.Analytics()
	return Summary{
		Total:          a.Total,
		Completed:      a.Completed,
		Pending:        a.Pending,
		CompletionRate: a.FormatCompletionRate(),
		LastUpdated:    task.FormatTime(r.store.Now()),
	}
}
