// Package lockstep runs several replicas of one simulation in lockstep.
// Peers exchange per-tick command batches through a Hub; a peer only
// advances a tick once it holds that tick's batch from every peer, so
// every replica applies the same commands in the same order.
package lockstep

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/dunesim/internal/command"
	"github.com/vovakirdan/dunesim/internal/config"
	"github.com/vovakirdan/dunesim/internal/sim"
)

var (
	// ErrStarted is returned when joining a hub that already runs.
	ErrStarted = errors.New("lockstep: hub already started")

	// ErrClosed is returned by peers once the hub was stopped.
	ErrClosed = errors.New("lockstep: hub closed")
)

// Batch is the set of commands one player sends for one tick. An empty
// batch still has to arrive: it tells the others the player has nothing to
// add.
type Batch struct {
	Tick     uint32
	Player   sim.PlayerID
	Commands []command.Command
}

// Config holds lockstep parameters.
type Config struct {
	Delay     uint32 // ticks between sending a batch and executing it
	SyncEvery uint32 // ticks between TestSync batches, 0 disables them
}

// DefaultConfig returns the rules' command delay and sync interval.
func DefaultConfig(g config.GameRules) Config {
	cfg := Config{Delay: 2, SyncEvery: 50}
	if g.CommandDelay > 0 {
		cfg.Delay = uint32(g.CommandDelay)
	}
	if g.SyncInterval > 0 {
		cfg.SyncEvery = uint32(g.SyncInterval)
	}
	return cfg
}

// Hub relays batches between peers. It plays the role a network relay
// plays between remote machines, without a socket.
type Hub struct {
	config Config
	logger *log.Logger

	mu      sync.RWMutex
	peers   []*Peer
	started bool

	done     chan struct{}
	doneOnce sync.Once
}

// NewHub creates an empty hub.
func NewHub(cfg Config, logger *log.Logger) *Hub {
	if cfg.Delay == 0 {
		cfg.Delay = 1
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Hub{
		config: cfg,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Join adds a peer that plays player on its own replica w. Every replica
// must start from the same state.
func (h *Hub) Join(player sim.PlayerID, w *sim.World) (*Peer, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.started {
		return nil, ErrStarted
	}
	for _, p := range h.peers {
		if p.player == player {
			return nil, fmt.Errorf("lockstep: player %d already joined", player)
		}
	}
	if w.Player(player) == nil {
		return nil, fmt.Errorf("lockstep: player %d is not in the world", player)
	}

	p := newPeer(h, player, w)
	h.peers = append(h.peers, p)
	sort.Slice(h.peers, func(i, j int) bool { return h.peers[i].player < h.peers[j].player })
	return p, nil
}

// Peers returns the joined peers ordered by player.
func (h *Hub) Peers() []*Peer {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Peer, len(h.peers))
	copy(out, h.peers)
	return out
}

// start freezes the peer set and sizes every inbox. A peer can run at most
// Delay ticks ahead of the slowest one, so an inbox never holds more than
// 2*Delay+1 batches from each peer.
func (h *Hub) start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return
	}
	h.started = true
	size := len(h.peers) * int(2*h.config.Delay+2)
	for _, p := range h.peers {
		p.inbox = make(chan Batch, size)
	}
}

// broadcast delivers b to every peer, the sender included.
func (h *Hub) broadcast(b Batch) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, p := range h.peers {
		select {
		case p.inbox <- b:
		case <-h.done:
			return ErrClosed
		}
	}
	return nil
}

// Stop wakes every waiting peer with ErrClosed.
func (h *Hub) Stop() {
	h.doneOnce.Do(func() {
		close(h.done)
	})
}

// Run drives every peer for ticks ticks, each in its own goroutine, and
// returns the first error. Each replica is only touched by its goroutine.
func (h *Hub) Run(ticks int) error {
	h.start()
	peers := h.Peers()

	var wg sync.WaitGroup
	errs := make(chan error, len(peers))
	for _, p := range peers {
		wg.Add(1)
		go func(p *Peer) {
			defer wg.Done()
			for i := 0; i < ticks; i++ {
				if err := p.Step(); err != nil {
					errs <- fmt.Errorf("lockstep: player %d: %w", p.player, err)
					h.Stop()
					return
				}
			}
		}(p)
	}
	wg.Wait()
	close(errs)

	// A failing peer stops the hub, so prefer its error over the ErrClosed
	// the others see
	var first error
	for err := range errs {
		if first == nil || errors.Is(first, ErrClosed) {
			first = err
		}
	}
	return first
}
