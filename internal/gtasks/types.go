// Package gtasks wraps the slice of the Google Tasks v1 API this app uses:
// task-list enumeration, completed-task windows, and outstanding-task counts.
package gtasks

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotAuthenticated means no credential is available at all, as opposed to
// a request that failed. Callers treat it as "sign-in required", not retry.
var ErrNotAuthenticated = errors.New("gtasks: not authenticated")

// MalformedError marks a single remote record the client could not parse.
// Fetches skip such records instead of failing; the error type exists so
// callers that do see one can tell it apart from transport failures.
type MalformedError struct {
	Field  string
	Value  string
	TaskID string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("gtasks: malformed %s %q in task %s", e.Field, e.Value, e.TaskID)
}

// CompletedTask is a remote task that has been marked complete.
type CompletedTask struct {
	ID          string
	Title       string
	CompletedAt time.Time
}

// TaskCount buckets outstanding tasks by due date against the local today.
type TaskCount struct {
	Overdue  int
	DueToday int
}

func (c TaskCount) Total() int {
	return c.Overdue + c.DueToday
}

// TaskList is one of the user's task lists.
type TaskList struct {
	ID    string
	Title string
}

// Source is the remote capability the sync manager and dashboard consume.
type Source interface {
	// CompletedTasks returns every task completed at or after the given
	// instant (and before the optional upper bound), across all task lists.
	CompletedTasks(ctx context.Context, after time.Time, before *time.Time) ([]CompletedTask, error)

	// Counts buckets the outstanding (incomplete, due) tasks into overdue
	// and due-today.
	Counts(ctx context.Context) (TaskCount, error)
}
