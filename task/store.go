package task

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is an ordered, in-memory task collection. Tasks keep insertion
// order. Store does no locking; callers serialize access.
type Store struct {
	tasks []Task
	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator sets the function used to mint task ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// Add creates a pending task with the trimmed text and appends it.
func (s *Store) Add(text string) Task {
	now := s.timestamp()
	t := Task{
		ID:        s.newID(),
		Text:      strings.TrimSpace(text),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.tasks = append(s.tasks, t)
	return t
}

// Find returns the task with the given id.
func (s *Store) Find(id string) (Task, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return Task{}, false
}

// All returns every task in insertion order.
func (s *Store) All() []Task {
	return s.Filter(FilterAll)
}

// Filter returns the tasks selected by f in insertion order. The result is
// never nil.
func (s *Store) Filter(f Filter) []Task {
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// Search returns the tasks selected by f whose text contains query,
// ignoring case. The query is trimmed first.
func (s *Store) Search(query string, f Filter) []Task {
	needle := strings.ToLower(strings.TrimSpace(query))
	var out []Task
	for _, t := range s.tasks {
		if f.Matches(t) && strings.Contains(strings.ToLower(t.Text), needle) {
			out = append(out, t)
		}
	}
	return out
}

// Update applies p to the task with the given id and refreshes UpdatedAt.
func (s *Store) Update(id string, p Patch) (Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, false
	}

	t := &s.tasks[i]
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Text != nil {
		t.Text = strings.TrimSpace(*p.Text)
	}

	t.UpdatedAt = s.timestamp()
	if t.UpdatedAt.Before(t.CreatedAt) {
		t.UpdatedAt = t.CreatedAt
	}
	return *t, true
}

// Delete removes the task with the given id and returns it.
func (s *Store) Delete(id string) (Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, false
	}
	t := s.tasks[i]
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return t, true
}

// Clear removes every task and returns how many were removed.
func (s *Store) Clear() int {
	n := len(s.tasks)
	s.tasks = nil
	return n
}

// Count returns the number of tasks.
func (s *Store) Count() int {
	return len(s.tasks)
}

// Analytics counts tasks by status.
func (s *Store) Analytics() Analytics {
	a := Analytics{Total: len(s.tasks)}
	for _, t := range s.tasks {
		if t.Completed {
			a.Completed++
		}
	}
	a.Pending = a.Total - a.Completed
	return a
}

// Now returns the store's current time at timestamp precision.
func (s *Store) Now() time.Time {
	return s.timestamp()
}

func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
