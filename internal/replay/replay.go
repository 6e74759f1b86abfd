// Package replay records a scenario run as its starting seed plus the
// command log, and verifies a recording by simulating it again. A replay
// reproduces the run exactly, so its final state hash must match.
package replay

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vovakirdan/dunesim/internal/command"
	"github.com/vovakirdan/dunesim/internal/scenario"
	"github.com/vovakirdan/dunesim/internal/sim"
	"github.com/vovakirdan/dunesim/internal/stream"
)

const (
	replayMagic   uint32 = 0x50525344 // "DSRP"
	replayVersion uint32 = 1
)

var (
	// ErrRulesMismatch is returned when a replay was recorded under other rules.
	ErrRulesMismatch = errors.New("replay: recorded with different rules")

	// ErrHashMismatch is returned when a replay ends in a different state.
	ErrHashMismatch = errors.New("replay: final state differs")
)

// Record is a complete recording of one run.
type Record struct {
	Scenario  string
	Seed      uint32
	Rules     [32]byte
	Ticks     int
	Commands  []command.Entry
	FinalHash string
}

// Encode serializes the record and compresses it.
func (r *Record) Encode() ([]byte, error) {
	var buf bytes.Buffer
	sw := stream.NewWriter(&buf)
	sw.WriteUint32(replayMagic)
	sw.WriteUint32(replayVersion)
	sw.WriteString(r.Scenario)
	sw.WriteUint32(r.Seed)
	sw.WriteString(string(r.Rules[:]))
	sw.WriteUint32(uint32(r.Ticks))
	command.SaveEntries(sw, r.Commands)
	sw.WriteString(r.FinalHash)
	if err := sw.Err(); err != nil {
		return nil, fmt.Errorf("replay: encode: %w", err)
	}
	return stream.Compress(buf.Bytes())
}

// Decode reverses Encode.
func Decode(data []byte) (*Record, error) {
	raw, err := stream.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("replay: decode: %w", err)
	}
	sr := stream.NewReader(bytes.NewReader(raw))
	if sr.ReadUint32() != replayMagic {
		return nil, fmt.Errorf("replay: decode: %w: bad magic", stream.ErrCorrupt)
	}
	if v := sr.ReadUint32(); v != replayVersion {
		return nil, fmt.Errorf("replay: decode: %w: unsupported version %d", stream.ErrCorrupt, v)
	}

	r := &Record{Scenario: sr.ReadString(), Seed: sr.ReadUint32()}
	fp := sr.ReadString()
	if len(fp) != len(r.Rules) {
		sr.Fail(fmt.Errorf("%w: rules fingerprint of %d bytes", stream.ErrCorrupt, len(fp)))
	}
	copy(r.Rules[:], fp)
	r.Ticks = int(sr.ReadUint32())
	if err := sr.Err(); err != nil {
		return nil, fmt.Errorf("replay: decode: %w", err)
	}

	entries, err := command.LoadEntries(sr)
	if err != nil {
		return nil, fmt.Errorf("replay: decode: %w", err)
	}
	r.Commands = entries
	r.FinalHash = sr.ReadString()
	if err := sr.Err(); err != nil {
		return nil, fmt.Errorf("replay: decode: %w", err)
	}
	return r, nil
}

// Recorder drives a scenario world and keeps what is needed to replay it.
// Every sync interval it schedules a TestSync command, so a replay that
// drifts is caught at the first checkpoint instead of at the end.
type Recorder struct {
	id        string
	seed      uint32
	world     *sim.World
	syncEvery uint32
	local     sim.PlayerID
}

// Start creates the scenario world and a recorder around it.
func Start(id string, opts sim.Options) (*Recorder, error) {
	s, err := scenario.Create(id)
	if err != nil {
		return nil, err
	}
	if opts.Seed == 0 {
		opts.Seed = s.Info().Seed
	}
	w, err := scenario.NewWorld(s, opts)
	if err != nil {
		return nil, err
	}

	r := &Recorder{id: id, seed: opts.Seed, world: w}
	if n := w.Rules().Game.SyncInterval; n > 0 {
		r.syncEvery = uint32(n)
	}
	if players := w.Players(); len(players) > 0 {
		r.local = players[0].ID
	}
	return r, nil
}

// World returns the recorded world.
func (r *Recorder) World() *sim.World {
	return r.world
}

// Seed returns the seed the world was created with.
func (r *Recorder) Seed() uint32 {
	return r.seed
}

// Issue schedules a player command; it becomes part of the recording.
func (r *Recorder) Issue(player sim.PlayerID, cmd command.Command) error {
	return r.world.Issue(player, cmd)
}

// Tick advances the world by one tick.
func (r *Recorder) Tick() {
	w := r.world
	if r.syncEvery > 0 && w.CurrentTick()%r.syncEvery == 0 {
		if err := w.Issue(r.local, w.SyncCommand()); err != nil {
			w.Logger().Debug("sync not scheduled", "tick", w.CurrentTick(), "err", err)
		}
	}
	w.Tick()
}

// Run advances n ticks.
func (r *Recorder) Run(n int) {
	for i := 0; i < n; i++ {
		r.Tick()
	}
}

// Record captures the run so far.
func (r *Recorder) Record() *Record {
	w := r.world
	return &Record{
		Scenario:  r.id,
		Seed:      r.seed,
		Rules:     sim.RulesFingerprint(w.Rules()),
		Ticks:     int(w.CurrentTick()),
		Commands:  w.Commands().Entries(),
		FinalHash: w.HashHex(),
	}
}

// Result is the outcome of a verification.
type Result struct {
	Hash   string
	Ticks  int
	Desync *sim.DesyncReport
}

// Verify simulates rec again and compares its final state. opts supply the
// rules and logger; the seed and map size come from the record. A world
// that ends in another state returns ErrHashMismatch along with the result.
func Verify(rec *Record, opts sim.Options) (Result, error) {
	opts.Seed = rec.Seed
	_, w, err := scenario.Start(rec.Scenario, opts)
	if err != nil {
		return Result{}, fmt.Errorf("replay: %w", err)
	}
	if sim.RulesFingerprint(w.Rules()) != rec.Rules {
		return Result{}, ErrRulesMismatch
	}
	if err := w.Commands().LoadLog(rec.Commands); err != nil {
		return Result{}, fmt.Errorf("replay: %w", err)
	}

	w.Run(rec.Ticks)
	// The recording was hashed with a writable log
	w.Commands().SetReadOnly(false)
	res := Result{Hash: w.HashHex(), Ticks: rec.Ticks, Desync: w.Desync()}
	if res.Hash != rec.FinalHash {
		w.Logger().Warn("replay diverged", "scenario", rec.Scenario, "expected", rec.FinalHash, "got", res.Hash)
		return res, fmt.Errorf("%w: got %s, expected %s", ErrHashMismatch, res.Hash, rec.FinalHash)
	}
	return res, nil
}
