package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tachibanayu24/taskstreak/internal/completion"
	"github.com/tachibanayu24/taskstreak/internal/dateutil"
	"github.com/tachibanayu24/taskstreak/internal/gtasks"
	"github.com/tachibanayu24/taskstreak/internal/store"
)

type dashboardModel struct {
	store  *store.Store
	repo   *completion.Repository
	source gtasks.Source
	width  int
	height int

	today  *store.DailyCompletion
	streak int
	stats  completion.Stats
	recent []store.CompletedTask

	counts    gtasks.TaskCount
	countsErr error
	havePoll  bool
	lastTotal int

	sinceLastPoll int // seconds
}

func newDashboardModel(s *store.Store, repo *completion.Repository, source gtasks.Source) dashboardModel {
	return dashboardModel{
		store:     s,
		repo:      repo,
		source:    source,
		lastTotal: -1,
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return tea.Batch(d.loadData(), d.pollCounts())
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		today, _ := d.repo.TodayCompletion()
		streak, _ := d.repo.CurrentStreak()
		stats, _ := d.repo.Statistics()
		recent, _ := d.store.GetTasksByDate(dateutil.Today())

		return dashboardDataMsg{
			today:  today,
			streak: streak,
			stats:  stats,
			recent: recent,
		}
	}
}

func (d dashboardModel) pollCounts() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		counts, err := d.source.Counts(ctx)
		return countsMsg{counts: counts, err: err}
	}
}

func (d dashboardModel) pollInterval() int {
	v, err := d.store.GetSetting("poll_interval")
	if err != nil {
		return 60
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 5 {
		return 60
	}
	return secs
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.today = msg.today
		d.streak = msg.streak
		d.stats = msg.stats
		d.recent = msg.recent
		return d, nil

	case tickMsg:
		d.sinceLastPoll++
		if d.sinceLastPoll >= d.pollInterval() {
			d.sinceLastPoll = 0
			return d, d.pollCounts()
		}
		return d, nil

	case countsMsg:
		d.countsErr = msg.err
		if msg.err != nil {
			return d, nil
		}

		total := msg.counts.Total()
		var cmd tea.Cmd
		// A drop in the outstanding total between polls means tasks were
		// completed elsewhere. Credit them locally right away; the next
		// sync pass replaces the guess with ledger-derived counts.
		if d.havePoll && total < d.lastTotal {
			delta := d.lastTotal - total
			if err := d.repo.RecordCompletion(delta); err == nil {
				cmd = d.loadData()
			}
		}
		d.counts = msg.counts
		d.havePoll = true
		d.lastTotal = total
		return d, cmd
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	badgePanel := d.renderBadgePanel(contentWidth)
	todayPanel := d.renderTodayPanel(contentWidth)
	recentPanel := d.renderRecentPanel(contentWidth)

	return lipgloss.JoinVertical(lipgloss.Left, badgePanel, todayPanel, recentPanel)
}

func (d dashboardModel) renderBadgePanel(w int) string {
	title := titleStyle.Render("Outstanding")

	if d.countsErr != nil {
		var detail string
		if errors.Is(d.countsErr, gtasks.ErrNotAuthenticated) {
			detail = "Not signed in. Set " + gtasks.TokenEnv + " and restart."
		} else {
			detail = fmt.Sprintf("Unreachable: %v", d.countsErr)
		}
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			errorStyle.Render(detail),
		)
		return panelStyle.Width(w).Render(content)
	}

	if !d.havePoll {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Checking..."),
		)
		return panelStyle.Width(w).Render(content)
	}

	total := counterStyle.Width(w - 6).Render(strconv.Itoa(d.counts.Total()))
	breakdown := fmt.Sprintf("%s  %s",
		errorStyle.Render(fmt.Sprintf("%d overdue", d.counts.Overdue)),
		warningStyle.Render(fmt.Sprintf("%d due today", d.counts.DueToday)),
	)
	breakdown = lipgloss.NewStyle().Width(w - 6).Align(lipgloss.Center).Render(breakdown)

	content := lipgloss.JoinVertical(lipgloss.Center, title, total, breakdown)
	return activePanelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderTodayPanel(w int) string {
	todayCount := 0
	if d.today != nil {
		todayCount = d.today.CompletedCount
	}

	title := titleStyle.Render("Today")
	done := highlightStyle.Render(formatCount(todayCount) + " done")

	streak := mutedStyle.Render("no streak yet")
	if d.streak > 0 {
		streak = successStyle.Render(fmt.Sprintf("🔥 %d day streak", d.streak))
	}

	statsLine := mutedStyle.Render(fmt.Sprintf(
		"total %d · avg %.1f/day · best %d · %d active days",
		d.stats.Total, d.stats.Average, d.stats.Max, d.stats.ActiveDays,
	))

	content := lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("%s  %s  %s", title, done, streak),
		statsLine,
	)
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Completed Today")
	if len(d.recent) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Nothing yet. Press s to sync."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	limit := min(len(d.recent), 8)
	for _, t := range d.recent[:limit] {
		taskTitle := t.Title
		if taskTitle == "" {
			taskTitle = "(untitled)"
		}
		row := fmt.Sprintf("  %s %s  %s",
			successStyle.Render("✓"),
			mutedStyle.Render(formatClock(t.CompletedAt)),
			taskTitle,
		)
		rows = append(rows, row)
	}
	if len(d.recent) > limit {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  … and %d more", len(d.recent)-limit)))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
