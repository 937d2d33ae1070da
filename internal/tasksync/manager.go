// Package tasksync reconciles the local ledger and daily counts against the
// remote task source.
package tasksync

import (
	"context"
	"fmt"
	"time"

	"github.com/tachibanayu24/taskstreak/internal/completion"
	"github.com/tachibanayu24/taskstreak/internal/dateutil"
	"github.com/tachibanayu24/taskstreak/internal/gtasks"
	"github.com/tachibanayu24/taskstreak/internal/store"
)

// Result reports one sync pass. Synced counts the records fetched from the
// remote window, not the rows that changed, so re-syncing an unchanged
// window reports the same number each time.
type Result struct {
	Synced int
}

// Manager drives sync passes. It keeps no state of its own between calls;
// everything lives in the store, so overlapping passes converge to the same
// rows (upserts are keyed by task id and date).
type Manager struct {
	source gtasks.Source
	repo   *completion.Repository
	store  *store.Store
}

func NewManager(source gtasks.Source, repo *completion.Repository, s *store.Store) *Manager {
	return &Manager{source: source, repo: repo, store: s}
}

// Sync fetches the tasks completed in the trailing window of days, upserts
// them into the ledger, then rewrites the per-date counts from the ledger.
// The counts are always re-derived locally rather than taken from the remote
// feed, which is what makes overlapping windows and repeated polling safe.
//
// A fetch failure returns a zero Result and the error without touching
// local data, so the dashboards keep serving the last synced state.
func (m *Manager) Sync(ctx context.Context, days int) (Result, error) {
	now := time.Now()
	completedAfter := now.Add(-time.Duration(days) * 24 * time.Hour)
	startDate := dateutil.Format(now.AddDate(0, 0, -days))

	fetched, err := m.source.CompletedTasks(ctx, completedAfter, nil)
	if err != nil {
		return Result{}, fmt.Errorf("fetch completed tasks: %w", err)
	}
	if len(fetched) == 0 {
		return Result{Synced: 0}, nil
	}

	tasks := make([]store.CompletedTask, 0, len(fetched))
	for _, t := range fetched {
		tasks = append(tasks, store.CompletedTask{
			TaskID:      t.ID,
			Title:       t.Title,
			Date:        dateutil.Format(t.CompletedAt.Local()),
			CompletedAt: t.CompletedAt.UnixMilli(),
		})
	}
	if err := m.store.UpsertTasks(tasks); err != nil {
		return Result{}, err
	}

	// Overwrite any optimistic RecordCompletion bumps with the
	// ledger-derived counts.
	counts, err := m.store.DailyCounts(startDate)
	if err != nil {
		return Result{}, err
	}
	for _, dc := range counts {
		if err := m.repo.SetCompletion(dc.Date, dc.Count); err != nil {
			return Result{}, err
		}
	}

	return Result{Synced: len(fetched)}, nil
}

// SyncToday runs the lightweight 1-day window used for frequent polling.
func (m *Manager) SyncToday(ctx context.Context) (Result, error) {
	return m.Sync(ctx, 1)
}
