package tui

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/tachibanayu24/taskstreak/internal/gtasks"
	"github.com/tachibanayu24/taskstreak/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	syncDays     *string
	pollInterval *string
	heatmapWeeks *string
}

func newSettingsModel(s *store.Store) settingsModel {
	sd, pi, hw := "", "", ""
	return settingsModel{
		store:        s,
		syncDays:     &sd,
		pollInterval: &pi,
		heatmapWeeks: &hw,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Enter) {
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	// Load current values
	*s.syncDays = s.getVal("sync_days", "30")
	*s.pollInterval = s.getVal("poll_interval", "60")
	*s.heatmapWeeks = s.getVal("heatmap_weeks", "12")

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Sync window (days)").
				Validate(validateRange(1, 365)).Value(s.syncDays),
			huh.NewInput().Title("Poll interval (seconds)").
				Validate(validateRange(5, 3600)).Value(s.pollInterval),
			huh.NewInput().Title("Heatmap weeks").
				Validate(validateRange(1, 52)).Value(s.heatmapWeeks),
		).Title("Sync"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validateRange(lo, hi int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("must be a number")
		}
		if n < lo || n > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.saveSettings()
		return s, s.refresh()
	}

	return s, cmd
}

func (s settingsModel) saveSettings() {
	s.store.SetSetting("sync_days", *s.syncDays)
	s.store.SetSetting("poll_interval", *s.pollInterval)
	s.store.SetSetting("heatmap_weeks", *s.heatmapWeeks)
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	tokenLabel := lipgloss.NewStyle().Width(24).Render("api token")
	if os.Getenv(gtasks.TokenEnv) != "" {
		rows = append(rows, fmt.Sprintf("  %s %s", tokenLabel, successStyle.Render("present ("+gtasks.TokenEnv+")")))
	} else {
		rows = append(rows, fmt.Sprintf("  %s %s", tokenLabel, errorStyle.Render("missing ("+gtasks.TokenEnv+")")))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case "sync_days":
		return v + " days"
	case "poll_interval":
		return v + " s"
	case "heatmap_weeks":
		return v + " weeks"
	}
	return v
}
