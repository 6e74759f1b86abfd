package sim

import "github.com/vovakirdan/dunesim/internal/command"

// DesyncReport describes the first detected divergence.
type DesyncReport struct {
	Tick       uint32 // tick whose start seed was compared
	DetectedAt uint32
	Player     PlayerID
	Expected   uint32 // seed carried by the command
	Actual     uint32 // seed this world had
}

// Desync returns the first divergence seen, or nil.
func (w *World) Desync() *DesyncReport {
	return w.desync
}

// SyncCommand builds a TestSync command carrying the seed the world has
// at the start of the upcoming tick.
func (w *World) SyncCommand() command.Command {
	return command.Must(command.OpTestSync, w.rng.Seed(), w.tick)
}

// checkSync compares a carried seed with the recorded start seed of its
// tick. A mismatch is reported once; the simulation carries on.
func (w *World) checkSync(player PlayerID, seed, tick uint32) {
	if tick > w.tick || w.tick-tick >= uint32(len(w.seeds)) {
		w.logger.Debug("sync check outside history", "tick", tick, "now", w.tick)
		return
	}
	actual := w.seeds[int(tick)%len(w.seeds)]
	if actual == seed || w.desync != nil {
		return
	}
	w.desync = &DesyncReport{
		Tick:       tick,
		DetectedAt: w.tick,
		Player:     player,
		Expected:   seed,
		Actual:     actual,
	}
	w.logger.Warn("desync detected", "tick", tick, "player", player, "expected", seed, "actual", actual)
	w.notifier.Notify(Notification{Kind: NoteDesync, Tick: w.tick, Player: player})
}
