package gtasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

const defaultBaseURL = "https://tasks.googleapis.com/tasks/v1"

// TokenEnv is where the client reads its OAuth bearer token. Obtaining and
// refreshing the token is the caller's problem.
const TokenEnv = "TASKSTREAK_TOKEN"

// Client talks to the Google Tasks REST API. The zero value is not usable;
// construct with NewClient.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithToken sets the bearer token directly instead of reading TokenEnv.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		token:   os.Getenv(TokenEnv),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Authenticated reports whether a token is present at all.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// --- wire types ---

type taskListsResponse struct {
	Items         []taskListItem `json:"items"`
	NextPageToken string         `json:"nextPageToken"`
}

type taskListItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type tasksResponse struct {
	Items         []taskItem `json:"items"`
	NextPageToken string     `json:"nextPageToken"`
}

type taskItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	Due       string `json:"due"`
	Completed string `json:"completed"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if !c.Authenticated() {
		return ErrNotAuthenticated
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("get %s: status %d: %w", path, resp.StatusCode, ErrNotAuthenticated)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// TaskLists enumerates the user's task lists.
func (c *Client) TaskLists(ctx context.Context) ([]TaskList, error) {
	var resp taskListsResponse
	if err := c.get(ctx, "/users/@me/lists", nil, &resp); err != nil {
		return nil, err
	}
	lists := make([]TaskList, 0, len(resp.Items))
	for _, item := range resp.Items {
		lists = append(lists, TaskList{ID: item.ID, Title: item.Title})
	}
	return lists, nil
}

// CompletedTasks pages through every task list collecting tasks completed in
// the window. Records whose completed timestamp cannot be parsed are skipped.
func (c *Client) CompletedTasks(ctx context.Context, after time.Time, before *time.Time) ([]CompletedTask, error) {
	lists, err := c.TaskLists(ctx)
	if err != nil {
		return nil, err
	}

	var completed []CompletedTask
	for _, list := range lists {
		pageToken := ""
		for {
			query := url.Values{
				"showCompleted": {"true"},
				"showHidden":    {"true"},
				"completedMin":  {after.UTC().Format(time.RFC3339)},
				"maxResults":    {"100"},
			}
			if before != nil {
				query.Set("completedMax", before.UTC().Format(time.RFC3339))
			}
			if pageToken != "" {
				query.Set("pageToken", pageToken)
			}

			var resp tasksResponse
			if err := c.get(ctx, "/lists/"+list.ID+"/tasks", query, &resp); err != nil {
				return nil, err
			}

			for _, item := range resp.Items {
				if item.Status != "completed" || item.Completed == "" {
					continue
				}
				at, err := ParseCompletedTime(item.Completed)
				if err != nil {
					continue
				}
				completed = append(completed, CompletedTask{
					ID:          item.ID,
					Title:       item.Title,
					CompletedAt: at,
				})
			}

			pageToken = resp.NextPageToken
			if pageToken == "" {
				break
			}
		}
	}

	return completed, nil
}

// Counts lists the incomplete tasks of every list and buckets the dated ones
// against the local calendar today. Tasks with no due date are not counted.
func (c *Client) Counts(ctx context.Context) (TaskCount, error) {
	lists, err := c.TaskLists(ctx)
	if err != nil {
		return TaskCount{}, err
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var count TaskCount
	for _, list := range lists {
		pageToken := ""
		for {
			query := url.Values{
				"showCompleted": {"false"},
				"showHidden":    {"false"},
				"maxResults":    {"100"},
			}
			if pageToken != "" {
				query.Set("pageToken", pageToken)
			}

			var resp tasksResponse
			if err := c.get(ctx, "/lists/"+list.ID+"/tasks", query, &resp); err != nil {
				return TaskCount{}, err
			}

			for _, item := range resp.Items {
				if item.Due == "" {
					continue
				}
				// Due dates arrive as RFC3339 with a meaningless time part;
				// only the date is significant.
				due, err := time.Parse(time.RFC3339, item.Due)
				if err != nil {
					continue
				}
				dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
				switch {
				case dueDay.Before(today):
					count.Overdue++
				case dueDay.Equal(today):
					count.DueToday++
				}
			}

			pageToken = resp.NextPageToken
			if pageToken == "" {
				break
			}
		}
	}

	return count, nil
}

// ParseCompletedTime accepts the two shapes the API is known to produce for
// completion timestamps: full RFC3339, or a bare date. Anything else is a
// MalformedError; no further guessing.
func ParseCompletedTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, &MalformedError{Field: "completed", Value: value}
}
