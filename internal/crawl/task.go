package crawl

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Kind classifies a task as normal crawl work or a pool control marker.
type Kind int

// Task kinds.
const (
	KindNormal Kind = iota
	KindStop
	KindAbort
)

// Control-task priorities. Stop tasks sort below all normal work so they are
// drawn only once the queue is drained; abort tasks sort above everything so
// they preempt pending work at the next pop.
const (
	StopPriority  = math.MinInt32
	AbortPriority = math.MaxInt32
)

// Task is one unit of crawl work: a URL plus metadata, or a Stop/Abort
// control marker. Tasks are immutable once pushed onto the queue.
type Task struct {
	// ID correlates log lines and error reports for one task.
	ID string
	// URL is the absolute target URL. Empty for control tasks.
	URL string
	// Data is an opaque payload handed to the matched handler.
	Data map[string]any
	// Priority orders the queue; higher runs sooner. Default 0.
	Priority int
	// Handler, when non-nil, bypasses pattern matching and forces dispatch
	// to this handler.
	Handler *Handler
	// Kind marks control semantics.
	Kind Kind
}

// NewTask creates a normal task for the given URL with default priority.
func NewTask(url string) *Task {
	return &Task{
		ID:   uuid.NewString(),
		URL:  url,
		Data: map[string]any{},
		Kind: KindNormal,
	}
}

// WithData attaches a payload and returns the task for chaining.
func (t *Task) WithData(data map[string]any) *Task {
	t.Data = data
	return t
}

// WithPriority sets the priority and returns the task for chaining.
func (t *Task) WithPriority(priority int) *Task {
	t.Priority = priority
	return t
}

// WithHandler forces dispatch to the given handler and returns the task.
func (t *Task) WithHandler(h *Handler) *Task {
	t.Handler = h
	return t
}

// StopTask creates a drain-and-stop control task.
func StopTask() *Task {
	return &Task{
		ID:       uuid.NewString(),
		Priority: StopPriority,
		Kind:     KindStop,
	}
}

// AbortTask creates a stop-immediately control task.
func AbortTask() *Task {
	return &Task{
		ID:       uuid.NewString(),
		Priority: AbortPriority,
		Kind:     KindAbort,
	}
}

// URLTasks converts plain URLs to tasks, a convenience for handlers whose
// follow-ups need no payload or priority.
func URLTasks(urls ...string) []*Task {
	tasks := make([]*Task, 0, len(urls))
	for _, u := range urls {
		tasks = append(tasks, NewTask(u))
	}
	return tasks
}

func (t *Task) String() string {
	switch t.Kind {
	case KindStop:
		return "<task stop>"
	case KindAbort:
		return "<task abort>"
	default:
		return fmt.Sprintf("<task %q>", t.URL)
	}
}
