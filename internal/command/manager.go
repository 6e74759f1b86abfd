package command

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vovakirdan/dunesim/internal/stream"
)

// ErrReadOnly is returned when adding to a manager that replays a log.
var ErrReadOnly = errors.New("command: manager is replaying")

// Entry is a command scheduled for a tick by a player.
type Entry struct {
	Tick   uint32
	Player uint8
	Cmd    Command
}

// Executor applies commands to a simulation.
type Executor interface {
	Execute(player int, cmd Command)
}

// Manager holds the command log. Entries are kept ordered by tick; entries
// for the same tick stay in enqueue order.
type Manager struct {
	entries  []Entry
	cursor   int    // index of the next entry to apply
	applied  uint32 // first tick not yet applied
	delay    uint32
	readOnly bool
}

// NewManager creates a manager that schedules local commands delay ticks
// ahead of the current tick.
func NewManager(delay uint32) *Manager {
	return &Manager{delay: delay}
}

// Delay returns the scheduling delay in ticks.
func (m *Manager) Delay() uint32 {
	return m.delay
}

// SetReadOnly switches replay mode on or off. In replay mode the log is
// fixed and Add fails.
func (m *Manager) SetReadOnly(ro bool) {
	m.readOnly = ro
}

// ReadOnly reports whether the manager is replaying.
func (m *Manager) ReadOnly() bool {
	return m.readOnly
}

// Add schedules cmd for tick now+delay.
func (m *Manager) Add(now uint32, player uint8, cmd Command) error {
	return m.AddAt(now+m.delay, player, cmd)
}

// AddAt schedules cmd for an explicit tick. Commands for ticks that were
// already applied are rejected.
func (m *Manager) AddAt(tick uint32, player uint8, cmd Command) error {
	if m.readOnly {
		return ErrReadOnly
	}
	return m.insert(Entry{Tick: tick, Player: player, Cmd: cmd})
}

func (m *Manager) insert(e Entry) error {
	if err := e.Cmd.Validate(); err != nil {
		return err
	}
	if e.Tick < m.applied {
		return fmt.Errorf("command: %s scheduled for tick %d but tick %d was already applied", e.Cmd.Opcode, e.Tick, m.applied-1)
	}
	// First index with a later tick keeps same-tick entries in arrival order
	i := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].Tick > e.Tick })
	m.entries = append(m.entries, Entry{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = e
	return nil
}

// Apply executes every entry due at or before tick, in log order, and
// returns how many were executed.
func (m *Manager) Apply(tick uint32, exec Executor) int {
	n := 0
	for m.cursor < len(m.entries) && m.entries[m.cursor].Tick <= tick {
		e := m.entries[m.cursor]
		m.cursor++
		exec.Execute(int(e.Player), e.Cmd)
		n++
	}
	m.applied = tick + 1
	return n
}

// Pending returns how many entries have not been applied yet.
func (m *Manager) Pending() int {
	return len(m.entries) - m.cursor
}

// Cursor returns the replay position in the log.
func (m *Manager) Cursor() int {
	return m.cursor
}

// Entries returns a copy of the whole log.
func (m *Manager) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// LoadLog replaces the log with entries, for replaying a recording. The
// manager is left read-only at the start of the log.
func (m *Manager) LoadLog(entries []Entry) error {
	m.entries = m.entries[:0]
	m.cursor = 0
	m.applied = 0
	m.readOnly = false
	for _, e := range entries {
		if err := m.insert(e); err != nil {
			return err
		}
	}
	m.readOnly = true
	return nil
}

// Save writes the log, cursor and mode.
func (m *Manager) Save(w *stream.Writer) {
	w.WriteUint32(m.delay)
	w.WriteBool(m.readOnly)
	w.WriteUint32(m.applied)
	w.WriteUint32(uint32(m.cursor))
	SaveEntries(w, m.entries)
}

// Load restores a manager written by Save.
func (m *Manager) Load(r *stream.Reader) error {
	m.delay = r.ReadUint32()
	m.readOnly = r.ReadBool()
	m.applied = r.ReadUint32()
	cursor := int(r.ReadUint32())
	entries, err := LoadEntries(r)
	if err != nil {
		return err
	}
	if cursor > len(entries) {
		return fmt.Errorf("%w: replay cursor %d beyond %d entries", stream.ErrCorrupt, cursor, len(entries))
	}
	m.entries = entries
	m.cursor = cursor
	return nil
}

// SaveEntries writes a list of entries.
func SaveEntries(w *stream.Writer, entries []Entry) {
	w.WriteUint32(uint32(len(entries)))
	for _, e := range entries {
		w.WriteUint32(e.Tick)
		w.WriteUint8(e.Player)
		e.Cmd.Save(w)
	}
}

// LoadEntries reads a list written by SaveEntries.
func LoadEntries(r *stream.Reader) ([]Entry, error) {
	n := r.ReadLen()
	if err := r.Err(); err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		e := Entry{Tick: r.ReadUint32(), Player: r.ReadUint8()}
		cmd, err := Load(r)
		if err != nil {
			return nil, fmt.Errorf("command: entry %d: %w", i, err)
		}
		e.Cmd = cmd
		entries = append(entries, e)
	}
	return entries, nil
}
