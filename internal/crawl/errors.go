package crawl

import "fmt"

// Status is the terminal state of a crawl run.
type Status int

// Run statuses. Completed means the queue drained naturally; Aborted means
// an abort task or context cancellation ended the run early.
const (
	StatusCompleted Status = iota
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusAborted:
		return "aborted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ExitCode maps the run status to a process exit code: 0 for a clean
// completion, 1 for an aborted run.
func (s Status) ExitCode() int {
	if s == StatusCompleted {
		return 0
	}
	return 1
}

// TaskError records one isolated per-task failure for post-run reporting.
// Task failures never terminate the crawl.
type TaskError struct {
	TaskID string
	URL    string
	Err    error
}

func (e TaskError) Error() string {
	return fmt.Sprintf("task %s (%s): %v", e.TaskID, e.URL, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e TaskError) Unwrap() error {
	return e.Err
}
