// Package task holds the in-memory todo list.
package task

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeLayout is the wire format for task timestamps: RFC 3339 in UTC with
// exactly three fractional digits.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// MaxTextLength is the maximum length of task text in characters.
const MaxTextLength = 500

// Task is a single todo item.
type Task struct {
	ID        string
	Text      string
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type taskJSON struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// MarshalJSON implements json.Marshaler.
func (t Task) MarshalJSON() ([]byte, error) {
	return json.Marshal(taskJSON{
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
		CreatedAt: FormatTime(t.CreatedAt),
		UpdatedAt: FormatTime(t.UpdatedAt),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Task) UnmarshalJSON(data []byte) error {
	var raw taskJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	created, err := time.Parse(time.RFC3339Nano, raw.CreatedAt)
	if err != nil {
		return fmt.Errorf("createdAt: %w", err)
	}
	updated, err := time.Parse(time.RFC3339Nano, raw.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updatedAt: %w", err)
	}
	*t = Task{
		ID:        raw.ID,
		Text:      raw.Text,
		Completed: raw.Completed,
		CreatedAt: created.UTC(),
		UpdatedAt: updated.UTC(),
	}
	return nil
}

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Filter selects tasks by completion status.
type Filter string

// Filters accepted by Store.Filter.
const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
)

// ParseFilter converts s to a Filter.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case FilterAll, FilterPending, FilterCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("unknown filter %q", s)
	}
}

// Matches reports whether t is selected by f.
func (f Filter) Matches(t Task) bool {
	switch f {
	case FilterPending:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Patch lists the fields to change in Store.Update. Nil fields are left alone.
type Patch struct {
	Completed *bool
	Text      *string
}

// Analytics summarises the list.
type Analytics struct {
	Total     int
	Completed int
	Pending   int
}

// CompletionRate returns the completed share as a percentage.
func (a Analytics) CompletionRate() float64 {
	if a.Total == 0 {
		return 0
	}
	return float64(a.Completed) / float64(a.Total) * 100
}

// FormatCompletionRate returns the rate with one decimal place, or "0" for
// an empty list.
func (a Analytics) FormatCompletionRate() string {
	if a.Total == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", a.CompletionRate())
}
