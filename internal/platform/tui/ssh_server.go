package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/dunesim/internal/config"
	"github.com/vovakirdan/dunesim/internal/scenario"
	"github.com/vovakirdan/dunesim/internal/sim"
	"github.com/vovakirdan/dunesim/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23235").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.dunesim/host_key.
	HostKeyPath string

	// DBPath is the path to the saves database.
	DBPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// TickRate is the initial spectator speed.
	TickRate int

	// Rules are the game rules every session simulates with.
	Rules config.Rules

	// Logger receives server events; nil creates one on stderr.
	Logger *log.Logger
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23235",
		DBPath:      "~/.dunesim/dunesim.db",
		IdleTimeout: 30 * time.Minute,
		TickRate:    16,
	}
}

// SSHServer wraps a Wish SSH server that lets each session watch a
// scenario of its own.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "dunesim-ssh",
		})
	}
	if cfg.Rules.Items == nil {
		cfg.Rules = config.DefaultRules()
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open database", "error", err)
		// Sessions still work, they just cannot save
		store = nil
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".dunesim", "host_key")
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	model := NewSessionModel(s.store, s.config, pty.Window.Width, pty.Window.Height, s.logger.With("user", sshSession.User()))
	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.store != nil {
		s.store.Close()
	}

	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// SessionModel manages one SSH session: picker -> spectator -> picker.
type SessionModel struct {
	store     *storage.Store
	config    SSHServerConfig
	logger    *log.Logger
	width     int
	height    int
	picker    PickerModel
	spectator *SpectatorModel
	err       string
	quitting  bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(store *storage.Store, cfg SSHServerConfig, width, height int, logger *log.Logger) SessionModel {
	return SessionModel{
		store:  store,
		config: cfg,
		logger: logger,
		width:  width,
		height: height,
		picker: NewPickerModel(store, width, height),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.picker.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = wsm.Width, wsm.Height
	}

	if m.spectator != nil {
		return m.updateSpectator(msg)
	}
	return m.updatePicker(msg)
}

// updatePicker handles updates while choosing a scenario.
func (m SessionModel) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	newPicker, cmd := m.picker.Update(msg)
	if p, ok := newPicker.(PickerModel); ok {
		m.picker = p
	}

	if m.picker.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if selected := m.picker.Selected(); selected != nil {
		_, w, err := scenario.Start(selected.ID, sim.Options{
			Rules:  m.config.Rules,
			Logger: m.logger,
		})
		if err != nil {
			m.logger.Error("cannot start scenario", "scenario", selected.ID, "error", err)
			m.err = err.Error()
			m.picker = NewPickerModel(m.store, m.width, m.height)
			return m, nil
		}

		m.logger.Info("watching", "scenario", selected.ID, "seed", w.Seed())
		spectator := NewSpectatorModel(w, m.store, SpectatorConfig{
			Scenario: selected.ID,
			TickRate: m.config.TickRate,
			MaxTicks: selected.Ticks,
			Width:    m.width,
			Height:   m.height,
		})
		m.spectator = &spectator
		m.err = ""
		return m, m.spectator.Init()
	}

	return m, cmd
}

// updateSpectator handles updates while watching.
func (m SessionModel) updateSpectator(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.spectator.Update(msg)
	if s, ok := newModel.(SpectatorModel); ok {
		m.spectator = &s
	}

	if m.spectator.BackToMenu() {
		m.spectator = nil
		m.picker = NewPickerModel(m.store, m.width, m.height)
		return m, m.picker.Init()
	}

	if m.spectator.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	// Tick messages addressed to a closed spectator are dropped by the
	// picker, which ends the old tick loop
	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	if m.spectator != nil {
		return m.spectator.View()
	}
	if m.err != "" {
		return m.picker.View() + "\n" + desyncStyle.Render(m.err)
	}
	return m.picker.View()
}
