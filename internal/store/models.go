package store

import "time"

// DailyCompletion is the materialized per-date completion count. A missing
// row reads the same as a zero count everywhere.
type DailyCompletion struct {
	Date           string // YYYY-MM-DD
	CompletedCount int
	UpdatedAt      time.Time
}

// CompletedTask is one remote completed task, unique by its remote task id.
type CompletedTask struct {
	ID          int64
	TaskID      string
	Title       string
	Date        string // YYYY-MM-DD, local calendar date of completion
	CompletedAt int64  // epoch milliseconds, orders tasks within a date
}

// DailyCount is a group-by-date aggregate over completed_tasks.
type DailyCount struct {
	Date  string
	Count int
}

type Setting struct {
	Key   string
	Value string
}
