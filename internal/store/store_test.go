package store

import (
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// Should have run migration v1
	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/taskstreak.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen — should succeed and not re-migrate
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestDefaultSettingsSeeded(t *testing.T) {
	s := newTestStore(t)
	for key, want := range map[string]string{
		"sync_days":     "30",
		"poll_interval": "60",
		"heatmap_weeks": "12",
	} {
		v, err := s.GetSetting(key)
		if err != nil {
			t.Fatalf("get %s: %v", key, err)
		}
		if v != want {
			t.Fatalf("setting %s = %q, want %q", key, v, want)
		}
	}
}

// ============================================================
// Daily completions
// ============================================================

func TestUpsertAndGetCompletion(t *testing.T) {
	s := newTestStore(t)

	if err := s.UpsertCompletion("2026-03-01", 4); err != nil {
		t.Fatal(err)
	}

	c, err := s.GetCompletion("2026-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if c == nil {
		t.Fatal("expected a row")
	}
	if c.CompletedCount != 4 {
		t.Fatalf("count = %d, want 4", c.CompletedCount)
	}
	if c.UpdatedAt.IsZero() {
		t.Fatal("UpdatedAt should be set")
	}
}

func TestGetCompletionMissing(t *testing.T) {
	s := newTestStore(t)
	c, err := s.GetCompletion("2026-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if c != nil {
		t.Fatalf("expected nil for missing date, got %+v", c)
	}
}

func TestUpsertCompletionReplaces(t *testing.T) {
	s := newTestStore(t)
	s.UpsertCompletion("2026-03-01", 4)
	s.UpsertCompletion("2026-03-01", 7)

	c, _ := s.GetCompletion("2026-03-01")
	if c.CompletedCount != 7 {
		t.Fatalf("count = %d, want 7 (last write wins)", c.CompletedCount)
	}

	var rows int
	s.db.QueryRow(`SELECT COUNT(*) FROM daily_completions`).Scan(&rows)
	if rows != 1 {
		t.Fatalf("expected 1 row, got %d", rows)
	}
}

func TestGetCompletionRange(t *testing.T) {
	s := newTestStore(t)
	s.UpsertCompletion("2026-03-01", 1)
	s.UpsertCompletion("2026-03-03", 3)
	s.UpsertCompletion("2026-03-05", 5)
	s.UpsertCompletion("2026-03-10", 10)

	rows, err := s.GetCompletionRange("2026-03-02", "2026-03-05")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Date != "2026-03-03" || rows[1].Date != "2026-03-05" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestGetCompletionsFrom(t *testing.T) {
	s := newTestStore(t)
	s.UpsertCompletion("2026-02-27", 1)
	s.UpsertCompletion("2026-03-01", 2)
	s.UpsertCompletion("2026-03-02", 3)

	rows, err := s.GetCompletionsFrom("2026-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Date != "2026-03-01" {
		t.Fatalf("rows not ascending: %+v", rows)
	}
}

func TestAggregatesEmpty(t *testing.T) {
	s := newTestStore(t)

	total, err := s.TotalCompleted()
	if err != nil || total != 0 {
		t.Fatalf("total = %d err = %v, want 0", total, err)
	}
	max, err := s.MaxCompleted()
	if err != nil || max != 0 {
		t.Fatalf("max = %d err = %v, want 0", max, err)
	}
	active, err := s.ActiveDaysCount()
	if err != nil || active != 0 {
		t.Fatalf("active = %d err = %v, want 0", active, err)
	}
	first, err := s.FirstRecordDate()
	if err != nil || first != "" {
		t.Fatalf("first = %q err = %v, want empty", first, err)
	}
}

func TestAggregates(t *testing.T) {
	s := newTestStore(t)
	s.UpsertCompletion("2026-03-01", 2)
	s.UpsertCompletion("2026-03-02", 0)
	s.UpsertCompletion("2026-03-03", 5)

	if total, _ := s.TotalCompleted(); total != 7 {
		t.Fatalf("total = %d, want 7", total)
	}
	if max, _ := s.MaxCompleted(); max != 5 {
		t.Fatalf("max = %d, want 5", max)
	}
	// Zero-count rows are not active days.
	if active, _ := s.ActiveDaysCount(); active != 2 {
		t.Fatalf("active = %d, want 2", active)
	}
	if first, _ := s.FirstRecordDate(); first != "2026-03-01" {
		t.Fatalf("first = %q, want 2026-03-01", first)
	}
}

// ============================================================
// Completed-task ledger
// ============================================================

func sampleTasks() []CompletedTask {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC).UnixMilli()
	return []CompletedTask{
		{TaskID: "a1", Title: "Water plants", Date: "2026-03-01", CompletedAt: base},
		{TaskID: "b2", Title: "File taxes", Date: "2026-03-01", CompletedAt: base + 3600_000},
		{TaskID: "c3", Title: "Call dentist", Date: "2026-03-02", CompletedAt: base + 90_000_000},
	}
}

func TestUpsertTasksAndGetByDate(t *testing.T) {
	s := newTestStore(t)
	if err := s.UpsertTasks(sampleTasks()); err != nil {
		t.Fatal(err)
	}

	tasks, err := s.GetTasksByDate("2026-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(tasks))
	}
	// Most recent completion first.
	if tasks[0].TaskID != "b2" || tasks[1].TaskID != "a1" {
		t.Fatalf("wrong order: %+v", tasks)
	}
}

func TestUpsertTasksEmpty(t *testing.T) {
	s := newTestStore(t)
	if err := s.UpsertTasks(nil); err != nil {
		t.Fatal(err)
	}
}

func TestUpsertTasksIdempotent(t *testing.T) {
	s := newTestStore(t)
	tasks := sampleTasks()
	s.UpsertTasks(tasks)
	s.UpsertTasks(tasks)

	counts, err := s.DailyCounts("")
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 2 {
		t.Fatalf("got %d dates, want 2", len(counts))
	}
	if counts[0].Date != "2026-03-01" || counts[0].Count != 2 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if counts[1].Date != "2026-03-02" || counts[1].Count != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestUpsertTaskConflictReplacesAllFields(t *testing.T) {
	s := newTestStore(t)
	s.UpsertTasks([]CompletedTask{
		{TaskID: "a1", Title: "Old title", Date: "2026-03-01", CompletedAt: 100},
	})
	s.UpsertTasks([]CompletedTask{
		{TaskID: "a1", Title: "New title", Date: "2026-03-02", CompletedAt: 200},
	})

	tasks, _ := s.GetTasksByDate("2026-03-02")
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	if tasks[0].Title != "New title" || tasks[0].CompletedAt != 200 {
		t.Fatalf("fields not replaced: %+v", tasks[0])
	}

	// Old date must have no row for the task anymore.
	old, _ := s.GetTasksByDate("2026-03-01")
	if len(old) != 0 {
		t.Fatalf("task duplicated across dates: %+v", old)
	}
}

func TestCountTasksByDate(t *testing.T) {
	s := newTestStore(t)
	s.UpsertTasks(sampleTasks())

	n, err := s.CountTasksByDate("2026-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}
	if n, _ := s.CountTasksByDate("2026-03-09"); n != 0 {
		t.Fatalf("count = %d, want 0", n)
	}
}

func TestDailyCountsSince(t *testing.T) {
	s := newTestStore(t)
	s.UpsertTasks(sampleTasks())

	counts, err := s.DailyCounts("2026-03-02")
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 1 {
		t.Fatalf("got %d dates, want 1", len(counts))
	}
	if counts[0].Date != "2026-03-02" {
		t.Fatalf("unexpected date: %+v", counts[0])
	}
}

func TestAllTasks(t *testing.T) {
	s := newTestStore(t)
	s.UpsertTasks(sampleTasks())

	tasks, err := s.AllTasks()
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 3 {
		t.Fatalf("got %d tasks, want 3", len(tasks))
	}
	if tasks[0].Date != "2026-03-01" || tasks[2].Date != "2026-03-02" {
		t.Fatalf("not ordered by date: %+v", tasks)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSetAndGetSetting(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetSetting("sync_days", "7"); err != nil {
		t.Fatal(err)
	}
	v, err := s.GetSetting("sync_days")
	if err != nil {
		t.Fatal(err)
	}
	if v != "7" {
		t.Fatalf("value = %q, want 7", v)
	}
}

func TestGetSettingMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nope")
	if err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	settings, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(settings) != 3 {
		t.Fatalf("got %d settings, want 3", len(settings))
	}
}
