package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/dunesim/internal/core"
	"github.com/vovakirdan/dunesim/internal/sim"
	"github.com/vovakirdan/dunesim/internal/storage"
)

// maxNotes is how many recent notifications the spectator keeps.
const maxNotes = 4

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236"))
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	desyncStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// SpectatorConfig holds the settings of a spectator view.
type SpectatorConfig struct {
	Scenario string // used in the status line and save names
	TickRate int
	MaxTicks int // the view pauses at this tick, 0 runs forever
	Width    int
	Height   int
}

// SpectatorModel is the Bubble Tea model that watches a running world.
type SpectatorModel struct {
	world  *sim.World
	store  *storage.Store
	config SpectatorConfig
	screen *core.Screen
	keys   SpectatorKeyMap
	help   help.Model
	notes  *sim.ChannelNotifier

	recent     []string
	origin     core.Coord
	viewer     sim.PlayerID
	paused     bool
	finished   bool
	status     string
	quitting   bool
	backToMenu bool
}

// NewSpectatorModel creates a spectator for w. The world's notifier is
// replaced so notifications show up in the view. store may be nil, which
// disables saving.
func NewSpectatorModel(w *sim.World, store *storage.Store, cfg SpectatorConfig) SpectatorModel {
	def := core.DefaultConfig()
	if cfg.TickRate <= 0 {
		cfg.TickRate = def.TickRate
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = def.ScreenW, def.ScreenH
	}

	notes := sim.NewChannelNotifier(64)
	w.SetNotifier(notes)

	h := help.New()
	h.ShowAll = false

	m := SpectatorModel{
		world:  w,
		store:  store,
		config: cfg,
		keys:   DefaultSpectatorKeyMap(),
		help:   h,
		notes:  notes,
		viewer: AllPlayers,
	}
	m.screen = core.NewScreen(cfg.Width, m.mapHeight())
	return m
}

// Init starts the tick loop.
func (m SpectatorModel) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m SpectatorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.Width, m.config.Height = msg.Width, msg.Height
		m.screen.Resize(msg.Width, m.mapHeight())
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m SpectatorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.backToMenu = true
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
	case key.Matches(msg, m.keys.Step):
		m.paused = true
		m.advance()
	case key.Matches(msg, m.keys.Faster):
		m.config.TickRate = core.Clamp(m.config.TickRate*2, MinTickRate, MaxTickRate)
	case key.Matches(msg, m.keys.Slower):
		m.config.TickRate = core.Clamp(m.config.TickRate/2, MinTickRate, MaxTickRate)
	case key.Matches(msg, m.keys.Fog):
		m.viewer = m.nextViewer()
	case key.Matches(msg, m.keys.Up):
		m.scroll(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.scroll(0, 1)
	case key.Matches(msg, m.keys.Left):
		m.scroll(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.scroll(1, 0)
	case key.Matches(msg, m.keys.Save):
		m.status = m.save()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.screen.Resize(m.config.Width, m.mapHeight())
	}
	return m, nil
}

// handleTick advances the world unless paused.
func (m SpectatorModel) handleTick() (tea.Model, tea.Cmd) {
	if !m.paused && !m.finished {
		m.advance()
	}
	return m, tickCmd(m.config.TickRate)
}

// advance runs one tick and collects the notifications it produced.
func (m *SpectatorModel) advance() {
	if m.config.MaxTicks > 0 && int(m.world.CurrentTick()) >= m.config.MaxTicks {
		m.finished = true
		return
	}
	m.world.Tick()
	for {
		select {
		case n := <-m.notes.C:
			m.recent = append(m.recent, formatNote(n))
			if len(m.recent) > maxNotes {
				m.recent = m.recent[len(m.recent)-maxNotes:]
			}
		default:
			return
		}
	}
}

// nextViewer cycles through the whole map and then each player's view.
func (m SpectatorModel) nextViewer() sim.PlayerID {
	players := m.world.Players()
	if m.viewer == AllPlayers {
		if len(players) == 0 {
			return AllPlayers
		}
		return players[0].ID
	}
	for i, p := range players {
		if p.ID == m.viewer && i+1 < len(players) {
			return players[i+1].ID
		}
	}
	return AllPlayers
}

func (m *SpectatorModel) scroll(dx, dy int) {
	mw, mh := m.world.Map().Width(), m.world.Map().Height()
	m.origin.X = core.Clamp(m.origin.X+dx, 0, core.Max(mw-m.config.Width, 0))
	m.origin.Y = core.Clamp(m.origin.Y+dy, 0, core.Max(mh-m.mapHeight(), 0))
}

// save stores the world in the database and returns a status message.
func (m SpectatorModel) save() string {
	if m.store == nil {
		return "no database, game not saved"
	}
	data, err := m.world.MarshalBinary()
	if err != nil {
		return err.Error()
	}
	info := storage.SaveInfo{
		Name:     fmt.Sprintf("%s-%06d", m.config.Scenario, m.world.CurrentTick()),
		Scenario: m.config.Scenario,
		Tick:     m.world.CurrentTick(),
		Seed:     m.world.Seed(),
		Hash:     m.world.HashHex(),
	}
	if _, err := m.store.SaveGame(info, data); err != nil {
		return err.Error()
	}
	return "saved " + info.Name
}

// mapHeight is the number of screen rows left for the map.
func (m SpectatorModel) mapHeight() int {
	return core.Max(m.config.Height-2-lipgloss.Height(m.help.View(m.keys)), 1)
}

// View renders the current state to a string for display.
func (m SpectatorModel) View() string {
	if m.quitting {
		return ""
	}

	r := core.NewRect(0, 0, m.screen.Width(), m.screen.Height())
	DrawWorld(m.screen, r, m.world, m.origin, m.viewer)

	var sb strings.Builder
	sb.WriteString(RenderScreen(m.screen))
	sb.WriteRune('\n')
	sb.WriteString(m.statusLine())
	sb.WriteRune('\n')
	sb.WriteString(noteStyle.Render(m.noteLine()))
	sb.WriteRune('\n')
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

// statusLine shows the clock, speed, view and credits.
func (m SpectatorModel) statusLine() string {
	w := m.world
	parts := []string{m.config.Scenario}
	if m.config.MaxTicks > 0 {
		parts = append(parts, fmt.Sprintf("tick %d/%d", w.CurrentTick(), m.config.MaxTicks))
	} else {
		parts = append(parts, fmt.Sprintf("tick %d", w.CurrentTick()))
	}
	parts = append(parts, fmt.Sprintf("%d tps", m.config.TickRate))

	view := "all"
	if m.viewer != AllPlayers {
		view = fmt.Sprintf("player %d", m.viewer)
	}
	parts = append(parts, "view: "+view)
	for _, p := range w.Players() {
		parts = append(parts, fmt.Sprintf("P%d $%d", p.ID, p.Credits.Floor()))
	}

	line := statusStyle.Render(" " + strings.Join(parts, "  ") + " ")
	switch {
	case m.finished:
		line += " " + pausedStyle.Render("FINISHED")
	case m.paused:
		line += " " + pausedStyle.Render("PAUSED")
	}
	if d := w.Desync(); d != nil {
		line += " " + desyncStyle.Render(fmt.Sprintf("DESYNC at tick %d", d.Tick))
	}
	return line
}

func (m SpectatorModel) noteLine() string {
	if m.status != "" {
		return m.status
	}
	return strings.Join(m.recent, " | ")
}

func formatNote(n sim.Notification) string {
	if n.Item.Valid() {
		return fmt.Sprintf("%d: P%d %s (%s)", n.Tick, n.Player, n.Kind, n.Item)
	}
	return fmt.Sprintf("%d: P%d %s", n.Tick, n.Player, n.Kind)
}

// IsQuitting returns true if user requested to quit entirely.
func (m SpectatorModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to the picker.
func (m SpectatorModel) BackToMenu() bool {
	return m.backToMenu
}

// Paused reports whether the clock is stopped.
func (m SpectatorModel) Paused() bool {
	return m.paused
}

// Run starts a Bubble Tea program watching w.
func Run(w *sim.World, store *storage.Store, cfg SpectatorConfig) error {
	model := NewSpectatorModel(w, store, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
