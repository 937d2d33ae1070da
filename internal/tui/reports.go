package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tachibanayu24/taskstreak/internal/completion"
	"github.com/tachibanayu24/taskstreak/internal/dateutil"
	"github.com/tachibanayu24/taskstreak/internal/store"
)

type reportMode int

const (
	reportWeekly reportMode = iota
	reportMonthly
)

type reportsModel struct {
	store  *store.Store
	repo   *completion.Repository
	width  int
	height int

	mode    reportMode
	series  []store.DailyCompletion
	heatmap map[string]int
	weeks   int
	stats   completion.Stats

	cursor int // selected day within series, counted from the end

	drillOpen  bool
	drillDate  string
	drillTasks []store.CompletedTask

	chart barchart.Model
}

func newReportsModel(s *store.Store, repo *completion.Repository) reportsModel {
	return reportsModel{
		store:   s,
		repo:    repo,
		heatmap: map[string]int{},
		weeks:   12,
		chart:   barchart.New(60, 10),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

func (r reportsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		var series []store.DailyCompletion
		if r.mode == reportWeekly {
			series, _ = r.repo.WeeklyData()
		} else {
			series, _ = r.repo.MonthlyData()
		}

		weeks := r.heatmapWeeks()
		heat, _ := r.repo.HeatmapData(weeks)
		stats, _ := r.repo.Statistics()

		return reportsDataMsg{
			series:  series,
			heatmap: heat,
			weeks:   weeks,
			stats:   stats,
		}
	}
}

func (r reportsModel) heatmapWeeks() int {
	v, err := r.store.GetSetting("heatmap_weeks")
	if err != nil {
		return 12
	}
	weeks, err := strconv.Atoi(v)
	if err != nil || weeks < 1 || weeks > 52 {
		return 12
	}
	return weeks
}

func (r reportsModel) openDrilldown(date string) tea.Cmd {
	return func() tea.Msg {
		tasks, _ := r.store.GetTasksByDate(date)
		return drilldownDataMsg{date: date, tasks: tasks}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.series = msg.series
		r.weeks = msg.weeks
		r.stats = msg.stats
		r.heatmap = make(map[string]int, len(msg.heatmap))
		for _, c := range msg.heatmap {
			r.heatmap[c.Date] = c.CompletedCount
		}
		if r.cursor >= len(r.series) {
			r.cursor = 0
		}
		r.buildChart()
		return r, nil

	case drilldownDataMsg:
		r.drillOpen = true
		r.drillDate = msg.date
		r.drillTasks = msg.tasks
		return r, nil

	case tea.KeyMsg:
		if r.drillOpen {
			if key.Matches(msg, keys.Back) || key.Matches(msg, keys.Enter) {
				r.drillOpen = false
			}
			return r, nil
		}

		switch {
		case key.Matches(msg, keys.Mode):
			if r.mode == reportWeekly {
				r.mode = reportMonthly
			} else {
				r.mode = reportWeekly
			}
			r.cursor = 0
			return r, r.refresh()
		case key.Matches(msg, keys.Left):
			if r.cursor < len(r.series)-1 {
				r.cursor++
				r.buildChart()
			}
			return r, nil
		case key.Matches(msg, keys.Right):
			if r.cursor > 0 {
				r.cursor--
				r.buildChart()
			}
			return r, nil
		case key.Matches(msg, keys.Enter):
			if d := r.selectedDate(); d != "" {
				return r, r.openDrilldown(d)
			}
			return r, nil
		}
	}
	return r, nil
}

// selectedDate maps the cursor (0 = most recent day) onto the series.
func (r reportsModel) selectedDate() string {
	if len(r.series) == 0 {
		return ""
	}
	idx := len(r.series) - 1 - r.cursor
	if idx < 0 {
		return ""
	}
	return r.series[idx].Date
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if r.height > 34 {
		chartHeight = 14
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	selected := r.selectedDate()

	var bars []barchart.BarData
	for _, c := range r.series {
		d, err := dateutil.Parse(c.Date)
		label := c.Date
		if err == nil {
			if r.mode == reportWeekly {
				label = d.Format("Mon")
			} else {
				label = d.Format("02")
			}
		}

		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if c.Date == selected {
			style = lipgloss.NewStyle().Foreground(colorHighlight)
		}
		if c.CompletedCount == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}

		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{
				{Name: c.Date, Value: float64(c.CompletedCount), Style: style},
			},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	if r.drillOpen {
		return r.renderDrilldown(w)
	}

	weeklyTab := inactiveTabStyle.Render("Week")
	monthlyTab := inactiveTabStyle.Render("Month")
	if r.mode == reportWeekly {
		weeklyTab = activeTabStyle.Render("Week")
	} else {
		monthlyTab = activeTabStyle.Render("Month")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, weeklyTab, monthlyTab)

	selectedLabel := ""
	if d := r.selectedDate(); d != "" {
		count := 0
		for _, c := range r.series {
			if c.Date == d {
				count = c.CompletedCount
			}
		}
		selectedLabel = mutedStyle.Render(fmt.Sprintf("%s · %s", d, formatCount(count)))
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", selectedLabel,
	)

	chartView := r.chart.View()
	heatmapView := r.renderHeatmap()
	statsLine := mutedStyle.Render(fmt.Sprintf(
		"  total %d · avg %.1f/day · best %d · %d active days",
		r.stats.Total, r.stats.Average, r.stats.Max, r.stats.ActiveDays,
	))
	nav := mutedStyle.Render("  ←/→: select day  enter: details  m: week/month")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", heatmapView, "", statsLine, "", nav,
		),
	)
}

// renderHeatmap draws a GitHub-style grid, one column per week, weekdays as
// rows, ending at today.
func (r reportsModel) renderHeatmap() string {
	end := time.Now()
	start := end.AddDate(0, 0, -r.weeks*7+1)

	// Column-major fill: walk the window day by day.
	grid := make([][]string, 7)
	for i := range grid {
		grid[i] = make([]string, r.weeks)
		for j := range grid[i] {
			grid[i][j] = " "
		}
	}

	day := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		week := day / 7
		row := day % 7
		count := r.heatmap[d.Format(dateutil.Layout)]
		grid[row][week] = lipgloss.NewStyle().
			Foreground(heatmapColors[heatBucket(count)]).
			Render("■")
		day++
	}

	var lines []string
	lines = append(lines, titleStyle.Render("  Heatmap")+mutedStyle.Render(fmt.Sprintf("  last %d weeks", r.weeks)))
	for row := 0; row < 7; row++ {
		lines = append(lines, "  "+strings.Join(grid[row], " "))
	}

	var legend []string
	for _, c := range heatmapColors {
		legend = append(legend, lipgloss.NewStyle().Foreground(c).Render("■"))
	}
	lines = append(lines, mutedStyle.Render("  less ")+strings.Join(legend, " ")+mutedStyle.Render(" more"))

	return strings.Join(lines, "\n")
}

func heatBucket(count int) int {
	switch {
	case count <= 0:
		return 0
	case count <= 2:
		return 1
	case count <= 4:
		return 2
	case count <= 7:
		return 3
	default:
		return 4
	}
}

func (r reportsModel) renderDrilldown(w int) string {
	title := titleStyle.Render("Completed on " + r.drillDate)

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	if len(r.drillTasks) == 0 {
		rows = append(rows, mutedStyle.Render("  No tasks recorded for this day"))
	}
	for _, t := range r.drillTasks {
		taskTitle := t.Title
		if taskTitle == "" {
			taskTitle = "(untitled)"
		}
		rows = append(rows, fmt.Sprintf("  %s %s  %s",
			successStyle.Render("✓"),
			mutedStyle.Render(formatClock(t.CompletedAt)),
			taskTitle,
		))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  esc: back"))

	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
