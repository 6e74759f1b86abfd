package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/dunesim/internal/scenario"
	"github.com/vovakirdan/dunesim/internal/storage"
)

// maxRecentRuns is how many stored runs the picker shows per scenario.
const maxRecentRuns = 3

// PickerModel lists the registered scenarios and lets the user pick one
// to watch.
type PickerModel struct {
	scenarios []scenario.Info
	store     *storage.Store
	table     table.Model
	help      help.Model
	keys      PickerKeyMap
	width     int
	height    int
	selected  *scenario.Info
	quitting  bool
}

// NewPickerModel creates a picker over every registered scenario.
func NewPickerModel(store *storage.Store, width, height int) PickerModel {
	h := help.New()
	h.ShowAll = false

	m := PickerModel{
		scenarios: scenario.List(),
		store:     store,
		help:      h,
		keys:      DefaultPickerKeyMap(),
		width:     width,
		height:    height,
	}
	m.table = m.createTable()
	return m
}

// createTable creates the scenario table sized to the window.
func (m *PickerModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 12},
		{Title: "Title", Width: 24},
		{Title: "Map", Width: 8},
		{Title: "Ticks", Width: 6},
	}
	if extra := m.width - 4 - 56; extra > 0 {
		columns[1].Width += min(extra, 16)
	}

	rows := make([]table.Row, len(m.scenarios))
	for i, s := range m.scenarios {
		rows[i] = table.Row{
			s.ID,
			s.Title,
			fmt.Sprintf("%dx%d", s.Width, s.Height),
			fmt.Sprintf("%d", s.Ticks),
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-12, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// Init initializes the picker.
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the picker.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Select):
			if i := m.table.Cursor(); i >= 0 && i < len(m.scenarios) {
				info := m.scenarios[i]
				m.selected = &info
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		cursor := m.table.Cursor()
		m.table = m.createTable()
		m.table.SetCursor(cursor)
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the picker.
func (m PickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)
	b.WriteString(titleStyle.Render("DUNESIM - pick a scenario to watch"))
	b.WriteString("\n")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	if len(m.scenarios) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		b.WriteString(boxStyle.Render(emptyStyle.Render("No scenarios registered.")))
	} else {
		b.WriteString(boxStyle.Render(m.table.View()))
		b.WriteString("\n")
		b.WriteString(m.details())
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// details describes the scenario under the cursor and its last runs.
func (m PickerModel) details() string {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.scenarios) {
		return ""
	}
	s := m.scenarios[i]

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Width(max(m.width-4, 20))
	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	var b strings.Builder
	b.WriteString(descStyle.Render(s.Description))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("seed %d", s.Seed)))

	if m.store != nil {
		runs, err := m.store.RecentRuns(s.ID, maxRecentRuns)
		if err == nil {
			for _, r := range runs {
				line := fmt.Sprintf("\n  %s  seed %d  %d ticks  %s", r.CreatedAt.Format("Jan 02 15:04"), r.Seed, r.Ticks, r.Hash[:min(len(r.Hash), 12)])
				if r.Desync {
					line += "  desync"
				}
				b.WriteString(dimStyle.Render(line))
			}
		}
	}
	return b.String()
}

// Selected returns the picked scenario, or nil.
func (m PickerModel) Selected() *scenario.Info {
	return m.selected
}

// IsQuitting returns true if user wants to quit entirely.
func (m PickerModel) IsQuitting() bool {
	return m.quitting
}
