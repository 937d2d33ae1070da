package store

import "fmt"

// UpsertTasks inserts the batch in one transaction. A task_id conflict
// replaces every field of the existing row, so re-syncing an overlapping
// window never duplicates a task.
func (s *Store) UpsertTasks(tasks []CompletedTask) error {
	if len(tasks) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin upsert tasks: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO completed_tasks (task_id, title, date, completed_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(task_id) DO UPDATE SET
			title = excluded.title,
			date = excluded.date,
			completed_at = excluded.completed_at`,
	)
	if err != nil {
		return fmt.Errorf("prepare upsert tasks: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		if _, err := stmt.Exec(t.TaskID, t.Title, t.Date, t.CompletedAt); err != nil {
			return fmt.Errorf("upsert task %s: %w", t.TaskID, err)
		}
	}

	return tx.Commit()
}

// GetTasksByDate returns the tasks completed on a date, most recent first.
func (s *Store) GetTasksByDate(date string) ([]CompletedTask, error) {
	rows, err := s.db.Query(
		`SELECT id, task_id, title, date, completed_at FROM completed_tasks
		 WHERE date = ? ORDER BY completed_at DESC`, date,
	)
	if err != nil {
		return nil, fmt.Errorf("tasks by date %s: %w", date, err)
	}
	defer rows.Close()

	var tasks []CompletedTask
	for rows.Next() {
		var t CompletedTask
		if err := rows.Scan(&t.ID, &t.TaskID, &t.Title, &t.Date, &t.CompletedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// AllTasks returns the whole ledger, oldest date first, most recent
// completion first within a date. Used by export.
func (s *Store) AllTasks() ([]CompletedTask, error) {
	rows, err := s.db.Query(
		`SELECT id, task_id, title, date, completed_at FROM completed_tasks
		 ORDER BY date ASC, completed_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("all tasks: %w", err)
	}
	defer rows.Close()

	var tasks []CompletedTask
	for rows.Next() {
		var t CompletedTask
		if err := rows.Scan(&t.ID, &t.TaskID, &t.Title, &t.Date, &t.CompletedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) CountTasksByDate(date string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM completed_tasks WHERE date = ?`, date).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count tasks by date %s: %w", date, err)
	}
	return n, nil
}

// DailyCounts aggregates the ledger per date, ascending. An empty since
// returns every date; otherwise only dates >= since. Sync re-derives the
// daily_completions rows from this instead of trusting remote counts.
func (s *Store) DailyCounts(since string) ([]DailyCount, error) {
	query := `SELECT date, COUNT(*) FROM completed_tasks`
	var args []any
	if since != "" {
		query += ` WHERE date >= ?`
		args = append(args, since)
	}
	query += ` GROUP BY date ORDER BY date ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("daily counts: %w", err)
	}
	defer rows.Close()

	var counts []DailyCount
	for rows.Next() {
		var dc DailyCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, dc)
	}
	return counts, rows.Err()
}
