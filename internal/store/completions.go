package store

import (
	"database/sql"
	"fmt"
	"time"
)

// UpsertCompletion replaces or inserts the count for a date. Last write wins.
func (s *Store) UpsertCompletion(date string, count int) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO daily_completions (date, completed_count, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET completed_count = excluded.completed_count, updated_at = excluded.updated_at`,
		date, count, now,
	)
	if err != nil {
		return fmt.Errorf("upsert completion %s: %w", date, err)
	}
	return nil
}

// GetCompletion returns the row for a date, or nil if no row exists.
func (s *Store) GetCompletion(date string) (*DailyCompletion, error) {
	c := &DailyCompletion{}
	var updatedAt string
	err := s.db.QueryRow(
		`SELECT date, completed_count, updated_at FROM daily_completions WHERE date = ?`, date,
	).Scan(&c.Date, &c.CompletedCount, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get completion %s: %w", date, err)
	}
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return c, nil
}

// GetCompletionRange returns stored rows with start <= date <= end, ascending.
// Dates with no row are absent from the result.
func (s *Store) GetCompletionRange(start, end string) ([]DailyCompletion, error) {
	rows, err := s.db.Query(
		`SELECT date, completed_count, updated_at FROM daily_completions
		 WHERE date BETWEEN ? AND ? ORDER BY date ASC`, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("completion range: %w", err)
	}
	return scanCompletions(rows)
}

// GetCompletionsFrom returns all rows with date >= start, ascending.
func (s *Store) GetCompletionsFrom(start string) ([]DailyCompletion, error) {
	rows, err := s.db.Query(
		`SELECT date, completed_count, updated_at FROM daily_completions
		 WHERE date >= ? ORDER BY date ASC`, start,
	)
	if err != nil {
		return nil, fmt.Errorf("completions from %s: %w", start, err)
	}
	return scanCompletions(rows)
}

func scanCompletions(rows *sql.Rows) ([]DailyCompletion, error) {
	defer rows.Close()

	var completions []DailyCompletion
	for rows.Next() {
		var c DailyCompletion
		var updatedAt string
		if err := rows.Scan(&c.Date, &c.CompletedCount, &updatedAt); err != nil {
			return nil, err
		}
		c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

// TotalCompleted sums completed_count over all rows, 0 when empty.
func (s *Store) TotalCompleted() (int, error) {
	var total sql.NullInt64
	err := s.db.QueryRow(`SELECT SUM(completed_count) FROM daily_completions`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total completed: %w", err)
	}
	return int(total.Int64), nil
}

// MaxCompleted returns the largest single-day count, 0 when empty.
func (s *Store) MaxCompleted() (int, error) {
	var max sql.NullInt64
	err := s.db.QueryRow(`SELECT MAX(completed_count) FROM daily_completions`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max completed: %w", err)
	}
	return int(max.Int64), nil
}

// ActiveDaysCount counts rows with a positive count.
func (s *Store) ActiveDaysCount() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM daily_completions WHERE completed_count > 0`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("active days: %w", err)
	}
	return n, nil
}

// FirstRecordDate returns the earliest date with a row, or "" when empty.
func (s *Store) FirstRecordDate() (string, error) {
	var date sql.NullString
	err := s.db.QueryRow(`SELECT MIN(date) FROM daily_completions`).Scan(&date)
	if err != nil {
		return "", fmt.Errorf("first record date: %w", err)
	}
	return date.String, nil
}
