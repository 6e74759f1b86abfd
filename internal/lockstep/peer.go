package lockstep

import (
	"fmt"
	"sync"

	"github.com/vovakirdan/dunesim/internal/command"
	"github.com/vovakirdan/dunesim/internal/sim"
)

// Peer is one participant: a player and the replica it simulates.
type Peer struct {
	hub    *Hub
	player sim.PlayerID
	world  *sim.World
	inbox  chan Batch

	// Received batches by tick, then by player
	pending map[uint32]map[sim.PlayerID][]command.Command
	first   uint32 // first tick that carries batches
	sent    uint32 // first tick without an outgoing batch

	mu    sync.Mutex
	local []command.Command // queued by Queue, sent with the next batch
}

func newPeer(h *Hub, player sim.PlayerID, w *sim.World) *Peer {
	return &Peer{
		hub:     h,
		player:  player,
		world:   w,
		pending: make(map[uint32]map[sim.PlayerID][]command.Command),
		first:   w.CurrentTick() + h.config.Delay,
		sent:    w.CurrentTick() + h.config.Delay,
	}
}

// Player returns the peer's player.
func (p *Peer) Player() sim.PlayerID {
	return p.player
}

// World returns the peer's replica. It must only be read from the
// goroutine that calls Step, or after Run returns.
func (p *Peer) World() *sim.World {
	return p.world
}

// Queue adds a command to the next outgoing batch. Safe to call from any
// goroutine.
func (p *Peer) Queue(cmd command.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if cmd.Opcode == command.OpTestSync {
		return fmt.Errorf("lockstep: TestSync commands are issued by the peer")
	}
	p.mu.Lock()
	p.local = append(p.local, cmd)
	p.mu.Unlock()
	return nil
}

// Step sends this peer's batch for tick now+Delay, waits until every peer's
// batch for the current tick has arrived, schedules those commands in
// player order and advances the replica by one tick.
func (p *Peer) Step() error {
	h := p.hub
	h.start()
	now := p.world.CurrentTick()

	if target := now + h.config.Delay; p.sent <= target {
		if err := h.broadcast(p.outgoing(target)); err != nil {
			return err
		}
		p.sent = target + 1
	}

	// The first Delay ticks of a session carry no batches
	if now >= p.first {
		if err := p.await(now); err != nil {
			return err
		}
		if err := p.schedule(now); err != nil {
			return err
		}
	}

	p.world.Tick()
	return nil
}

// outgoing drains the local queue into a batch for tick.
func (p *Peer) outgoing(tick uint32) Batch {
	p.mu.Lock()
	cmds := p.local
	p.local = nil
	p.mu.Unlock()

	if every := p.hub.config.SyncEvery; every > 0 && tick%every == 0 {
		// Carries the seed this replica had at the start of the current
		// tick; every replica checks it against its own history
		cmds = append(cmds, command.Must(command.OpTestSync, p.world.Seed(), p.world.CurrentTick()))
	}
	return Batch{Tick: tick, Player: p.player, Commands: cmds}
}

// await collects inbox batches until tick is complete.
func (p *Peer) await(tick uint32) error {
	want := len(p.hub.Peers())
	for len(p.pending[tick]) < want {
		select {
		case b := <-p.inbox:
			got := p.pending[b.Tick]
			if got == nil {
				got = make(map[sim.PlayerID][]command.Command)
				p.pending[b.Tick] = got
			}
			if _, dup := got[b.Player]; dup {
				return fmt.Errorf("lockstep: second batch from player %d for tick %d", b.Player, b.Tick)
			}
			got[b.Player] = b.Commands
		case <-p.hub.done:
			return ErrClosed
		}
	}
	return nil
}

// schedule hands the batches of tick to the command log in player order.
func (p *Peer) schedule(tick uint32) error {
	batches := p.pending[tick]
	delete(p.pending, tick)
	for _, peer := range p.hub.Peers() {
		for _, cmd := range batches[peer.player] {
			if err := p.world.IssueAt(tick, peer.player, cmd); err != nil {
				return fmt.Errorf("tick %d: %w", tick, err)
			}
		}
	}
	return nil
}
