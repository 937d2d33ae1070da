// Package dateutil holds the calendar-date arithmetic shared by the
// completion repository and the sync manager. Dates are plain YYYY-MM-DD
// strings in the local timezone; instants only matter at the parsing edge.
package dateutil

import (
	"fmt"
	"time"

	"github.com/tachibanayu24/taskstreak/internal/store"
)

const Layout = "2006-01-02"

// Today returns the current local calendar date.
func Today() string {
	return time.Now().Format(Layout)
}

func Format(t time.Time) string {
	return t.Format(Layout)
}

func Parse(date string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	return t, nil
}

// DaysBetween returns the number of whole calendar days from a to b,
// ignoring the time of day. Computed on UTC midnights so DST transitions
// cannot shave a day off.
func DaysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

// ZeroFilledRange emits one row per date in [start, end] inclusive,
// ascending, taking the stored row when present and a zero-count row
// otherwise. The output length is always the full span of days.
func ZeroFilledRange(start, end time.Time, existing map[string]store.DailyCompletion) []store.DailyCompletion {
	var result []store.DailyCompletion
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format(Layout)
		if c, ok := existing[date]; ok {
			result = append(result, c)
		} else {
			result = append(result, store.DailyCompletion{Date: date, CompletedCount: 0})
		}
	}
	return result
}

// StreakWalk counts consecutive active days walking backward from the given
// date. If that date itself has no completions yet, the walk starts one day
// earlier, so an empty morning still reports yesterday's streak instead of 0.
func StreakWalk(completions map[string]store.DailyCompletion, from time.Time) int {
	current := from

	if c, ok := completions[current.Format(Layout)]; !ok || c.CompletedCount == 0 {
		current = current.AddDate(0, 0, -1)
	}

	streak := 0
	for {
		c, ok := completions[current.Format(Layout)]
		if !ok || c.CompletedCount == 0 {
			break
		}
		streak++
		current = current.AddDate(0, 0, -1)
	}
	return streak
}
