package gtasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL), WithToken("test-token"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// ============================================================
// Auth
// ============================================================

func TestNotAuthenticatedWithoutToken(t *testing.T) {
	c := NewClient(WithBaseURL("http://unreachable.invalid"), WithToken(""))

	_, err := c.TaskLists(context.Background())
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestUnauthorizedResponse(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.TaskLists(context.Background())
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated in chain", err)
	}
}

func TestBearerTokenSent(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, taskListsResponse{})
	}))

	c.TaskLists(context.Background())
	if gotAuth != "Bearer test-token" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
}

// ============================================================
// Completed tasks
// ============================================================

func TestCompletedTasksAcrossListsAndPages(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/@me/lists":
			writeJSON(w, taskListsResponse{Items: []taskListItem{
				{ID: "inbox", Title: "Inbox"},
				{ID: "chores", Title: "Chores"},
			}})
		case "/lists/inbox/tasks":
			if r.URL.Query().Get("pageToken") == "" {
				writeJSON(w, tasksResponse{
					Items: []taskItem{
						{ID: "a1", Title: "One", Status: "completed", Completed: "2026-03-01T09:00:00Z"},
					},
					NextPageToken: "page2",
				})
			} else {
				writeJSON(w, tasksResponse{Items: []taskItem{
					{ID: "a2", Title: "Two", Status: "completed", Completed: "2026-03-01T10:00:00Z"},
				}})
			}
		case "/lists/chores/tasks":
			writeJSON(w, tasksResponse{Items: []taskItem{
				{ID: "b1", Title: "Three", Status: "completed", Completed: "2026-03-02T08:00:00Z"},
				{ID: "b2", Title: "Still open", Status: "needsAction"},
			}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	tasks, err := c.CompletedTasks(context.Background(), time.Now().Add(-30*24*time.Hour), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 3 {
		t.Fatalf("got %d tasks, want 3", len(tasks))
	}
	ids := map[string]bool{}
	for _, task := range tasks {
		ids[task.ID] = true
	}
	for _, want := range []string{"a1", "a2", "b1"} {
		if !ids[want] {
			t.Fatalf("missing task %s in %v", want, ids)
		}
	}
}

func TestCompletedTasksWindowParams(t *testing.T) {
	after := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	var gotMin, gotMax, gotShow string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/@me/lists":
			writeJSON(w, taskListsResponse{Items: []taskListItem{{ID: "inbox"}}})
		case "/lists/inbox/tasks":
			q := r.URL.Query()
			gotMin = q.Get("completedMin")
			gotMax = q.Get("completedMax")
			gotShow = q.Get("showCompleted")
			writeJSON(w, tasksResponse{})
		}
	}))

	if _, err := c.CompletedTasks(context.Background(), after, &before); err != nil {
		t.Fatal(err)
	}
	if gotMin != "2026-03-01T00:00:00Z" {
		t.Fatalf("completedMin = %q", gotMin)
	}
	if gotMax != "2026-03-10T00:00:00Z" {
		t.Fatalf("completedMax = %q", gotMax)
	}
	if gotShow != "true" {
		t.Fatalf("showCompleted = %q", gotShow)
	}
}

func TestCompletedTasksSkipsMalformed(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/@me/lists":
			writeJSON(w, taskListsResponse{Items: []taskListItem{{ID: "inbox"}}})
		case "/lists/inbox/tasks":
			writeJSON(w, tasksResponse{Items: []taskItem{
				{ID: "ok1", Title: "Good", Status: "completed", Completed: "2026-03-01T09:00:00Z"},
				{ID: "ok2", Title: "Bare date", Status: "completed", Completed: "2026-03-01"},
				{ID: "bad", Title: "Junk", Status: "completed", Completed: "yesterday-ish"},
				{ID: "none", Title: "No stamp", Status: "completed"},
			}})
		}
	}))

	tasks, err := c.CompletedTasks(context.Background(), time.Now().Add(-30*24*time.Hour), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2 (malformed skipped)", len(tasks))
	}
}

func TestCompletedTasksServerError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.CompletedTasks(context.Background(), time.Now(), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrNotAuthenticated) {
		t.Fatal("5xx must not map to ErrNotAuthenticated")
	}
}

// ============================================================
// Counts
// ============================================================

func TestCountsBuckets(t *testing.T) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
	yesterday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1).Format(time.RFC3339)
	tomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1).Format(time.RFC3339)

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/@me/lists":
			writeJSON(w, taskListsResponse{Items: []taskListItem{{ID: "inbox"}}})
		case "/lists/inbox/tasks":
			writeJSON(w, tasksResponse{Items: []taskItem{
				{ID: "t1", Status: "needsAction", Due: yesterday},
				{ID: "t2", Status: "needsAction", Due: yesterday},
				{ID: "t3", Status: "needsAction", Due: today},
				{ID: "t4", Status: "needsAction", Due: tomorrow},
				{ID: "t5", Status: "needsAction"}, // no due date
			}})
		}
	}))

	counts, err := c.Counts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if counts.Overdue != 2 {
		t.Fatalf("overdue = %d, want 2", counts.Overdue)
	}
	if counts.DueToday != 1 {
		t.Fatalf("dueToday = %d, want 1", counts.DueToday)
	}
	if counts.Total() != 3 {
		t.Fatalf("total = %d, want 3", counts.Total())
	}
}

// ============================================================
// Timestamp parsing
// ============================================================

func TestParseCompletedTimeRFC3339(t *testing.T) {
	got, err := ParseCompletedTime("2026-03-01T09:30:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if got.UTC().Hour() != 9 || got.UTC().Minute() != 30 {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseCompletedTimeBareDate(t *testing.T) {
	got, err := ParseCompletedTime("2026-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if got.Year() != 2026 || got.Month() != time.March || got.Day() != 1 {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseCompletedTimeMalformed(t *testing.T) {
	_, err := ParseCompletedTime("01/03/2026")
	if err == nil {
		t.Fatal("expected error")
	}
	var malformed *MalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("err = %T, want *MalformedError", err)
	}
	if malformed.Field != "completed" {
		t.Fatalf("field = %q", malformed.Field)
	}
}
