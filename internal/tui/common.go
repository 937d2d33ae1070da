package tui

import (
	"fmt"
	"time"

	"github.com/tachibanayu24/taskstreak/internal/completion"
	"github.com/tachibanayu24/taskstreak/internal/gtasks"
	"github.com/tachibanayu24/taskstreak/internal/store"
	"github.com/tachibanayu24/taskstreak/internal/tasksync"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewReports
	viewSettings
)

var viewNames = []string{"Dashboard", "Reports", "Settings"}

// --- Messages ---

type dashboardDataMsg struct {
	today  *store.DailyCompletion
	streak int
	stats  completion.Stats
	recent []store.CompletedTask
}

type countsMsg struct {
	counts gtasks.TaskCount
	err    error
}

type syncDoneMsg struct {
	result tasksync.Result
	err    error
}

type reportsDataMsg struct {
	series  []store.DailyCompletion
	heatmap []store.DailyCompletion
	weeks   int
	stats   completion.Stats
}

type drilldownDataMsg struct {
	date  string
	tasks []store.CompletedTask
}

type settingsDataMsg struct {
	settings []store.Setting
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatCount(n int) string {
	if n == 1 {
		return "1 task"
	}
	return fmt.Sprintf("%d tasks", n)
}

func formatClock(millis int64) string {
	return time.UnixMilli(millis).Local().Format("15:04")
}
