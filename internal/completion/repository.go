// Package completion derives the dashboard views (weekly/monthly series,
// heatmap window, statistics, streak) from the daily_completions table and
// owns its two write paths.
package completion

import (
	"time"

	"github.com/tachibanayu24/taskstreak/internal/dateutil"
	"github.com/tachibanayu24/taskstreak/internal/store"
)

// streakWindowDays bounds how far back the streak walk loads rows. Activity
// entirely older than this cannot extend the streak.
const streakWindowDays = 365

type Repository struct {
	store *store.Store
}

func NewRepository(s *store.Store) *Repository {
	return &Repository{store: s}
}

// Stats summarizes the whole history. Average is total over calendar days
// since the first record, not over active days only, so sparse histories
// dilute it.
type Stats struct {
	Total      int
	Average    float64
	Max        int
	ActiveDays int
}

// RecordCompletion bumps today's count by delta. This is the optimistic
// local increment used when a poll sees the outstanding total drop; the next
// sync overwrites it with the ledger-derived count via SetCompletion.
func (r *Repository) RecordCompletion(delta int) error {
	today := dateutil.Today()
	existing, err := r.store.GetCompletion(today)
	if err != nil {
		return err
	}
	count := delta
	if existing != nil {
		count += existing.CompletedCount
	}
	return r.store.UpsertCompletion(today, count)
}

// SetCompletion is the authoritative overwrite for one date, used by sync
// after re-aggregating the ledger.
func (r *Repository) SetCompletion(date string, count int) error {
	return r.store.UpsertCompletion(date, count)
}

func (r *Repository) TodayCompletion() (*store.DailyCompletion, error) {
	return r.store.GetCompletion(dateutil.Today())
}

// WeeklyData returns exactly 7 zero-filled rows covering [today-6, today].
func (r *Repository) WeeklyData() ([]store.DailyCompletion, error) {
	return r.zeroFilledWindow(6)
}

// MonthlyData returns exactly 30 zero-filled rows covering [today-29, today].
func (r *Repository) MonthlyData() ([]store.DailyCompletion, error) {
	return r.zeroFilledWindow(29)
}

func (r *Repository) zeroFilledWindow(daysBack int) ([]store.DailyCompletion, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -daysBack)

	rows, err := r.store.GetCompletionRange(dateutil.Format(start), dateutil.Format(end))
	if err != nil {
		return nil, err
	}
	return dateutil.ZeroFilledRange(start, end, byDate(rows)), nil
}

// HeatmapData returns the stored rows (sparse, no zero-fill) for the window
// of weeks*7 days ending today. weeks <= 0 falls back to 12.
func (r *Repository) HeatmapData(weeks int) ([]store.DailyCompletion, error) {
	if weeks <= 0 {
		weeks = 12
	}
	end := time.Now()
	start := end.AddDate(0, 0, -weeks*7+1)
	return r.store.GetCompletionRange(dateutil.Format(start), dateutil.Format(end))
}

func (r *Repository) Statistics() (Stats, error) {
	total, err := r.store.TotalCompleted()
	if err != nil {
		return Stats{}, err
	}
	max, err := r.store.MaxCompleted()
	if err != nil {
		return Stats{}, err
	}
	activeDays, err := r.store.ActiveDaysCount()
	if err != nil {
		return Stats{}, err
	}
	firstDate, err := r.store.FirstRecordDate()
	if err != nil {
		return Stats{}, err
	}

	average := 0.0
	if firstDate != "" && total > 0 {
		first, err := dateutil.Parse(firstDate)
		if err != nil {
			return Stats{}, err
		}
		totalDays := dateutil.DaysBetween(first, time.Now()) + 1
		average = float64(total) / float64(totalDays)
	}

	return Stats{
		Total:      total,
		Average:    average,
		Max:        max,
		ActiveDays: activeDays,
	}, nil
}

// CurrentStreak walks backward from today (or yesterday if today is still
// empty) over the trailing year of rows.
func (r *Repository) CurrentStreak() (int, error) {
	start := time.Now().AddDate(0, 0, -streakWindowDays)
	rows, err := r.store.GetCompletionsFrom(dateutil.Format(start))
	if err != nil {
		return 0, err
	}
	return dateutil.StreakWalk(byDate(rows), time.Now()), nil
}

func byDate(rows []store.DailyCompletion) map[string]store.DailyCompletion {
	m := make(map[string]store.DailyCompletion, len(rows))
	for _, c := range rows {
		m[c.Date] = c
	}
	return m
}
