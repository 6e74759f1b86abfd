package sim

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
	"lukechampine.com/blake3"

	"github.com/vovakirdan/dunesim/internal/core"
	"github.com/vovakirdan/dunesim/internal/stream"
)

const (
	saveMagic   uint32 = 0x4d495344 // "DSIM"
	saveVersion uint32 = 1
)

// ErrRulesMismatch is returned when a save was written under other rules.
var ErrRulesMismatch = errors.New("sim: saved game uses different rules")

// RulesFingerprint identifies a rule set.
func RulesFingerprint(rules any) [32]byte {
	data, err := yaml.Marshal(rules)
	if err != nil {
		return [32]byte{}
	}
	return blake3.Sum256(data)
}

// Hash returns a checksum of the complete world state.
func (w *World) Hash() [32]byte {
	var buf bytes.Buffer
	sw := stream.NewWriter(&buf)
	w.Save(sw)
	return blake3.Sum256(buf.Bytes())
}

// HashHex is Hash as a hex string.
func (w *World) HashHex() string {
	h := w.Hash()
	return hex.EncodeToString(h[:])
}

// MarshalBinary returns the uncompressed save of the world.
func (w *World) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.Save(stream.NewWriter(&buf)); err != nil {
		return nil, fmt.Errorf("sim: save: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode restores a world from bytes produced by MarshalBinary.
func Decode(data []byte, opts Options) (*World, error) {
	return Load(stream.NewReader(bytes.NewReader(data)), opts)
}

// Save writes the world state.
func (w *World) Save(sw *stream.Writer) error {
	sw.WriteUint32(saveMagic)
	sw.WriteUint32(saveVersion)
	fp := RulesFingerprint(w.rules)
	sw.WriteString(string(fp[:]))

	sw.WriteUint32(uint32(w.m.Width()))
	sw.WriteUint32(uint32(w.m.Height()))
	sw.WriteUint32(w.tick)
	sw.WriteUint32(w.rng.Seed())

	for _, p := range w.players {
		sw.WriteBool(p != nil)
		if p == nil {
			continue
		}
		sw.WriteInt32(int32(p.Team))
		writeFixed(sw, p.Credits)
		sw.WriteUint32(p.lastAttackWarning)
		sw.WriteUint32(uint32(p.Stats.UnitsBuilt))
		sw.WriteUint32(uint32(p.Stats.UnitsLost))
		sw.WriteUint32(uint32(p.Stats.StructuresBuilt))
		sw.WriteUint32(uint32(p.Stats.StructuresLost))
		sw.WriteUint32(uint32(p.Stats.Kills))
		writeFixed(sw, p.Stats.SpiceHarvested)
	}

	for i := range w.m.tiles {
		t := &w.m.tiles[i]
		sw.WriteUint8(uint8(t.Terrain))
		sw.WriteUint8(uint8(t.Owner))
		writeFixed(sw, t.Spice)
		var explored uint8
		for p := 0; p < MaxPlayers; p++ {
			if t.explored[p] {
				explored |= 1 << uint(p)
			}
			sw.WriteUint32(t.lastSeen[p])
		}
		sw.WriteUint8(explored)
		for l := range t.occupants {
			writeIDs(sw, t.occupants[l])
		}
	}

	sw.WriteUint32(uint32(len(w.reg.slots)))
	for _, g := range w.reg.gens {
		sw.WriteUint16(g)
	}
	free := make([]uint32, len(w.reg.free))
	for i, s := range w.reg.free {
		free[i] = uint32(s)
	}
	sw.WriteUint32Slice(free)
	sw.WriteUint32(uint32(w.reg.Len()))
	w.reg.Each(func(o *Object) { saveObject(sw, o) })

	sw.WriteUint32(uint32(len(w.bullets)))
	for _, b := range w.bullets {
		sw.WriteUint32(uint32(b.Shooter))
		sw.WriteUint8(uint8(b.Owner))
		sw.WriteUint8(uint8(b.Kind))
		writePoint(sw, b.Pos)
		writePoint(sw, b.Dest)
		writeFixed(sw, b.Damage)
		writeFixed(sw, b.Speed)
		writeFixed(sw, b.Radius)
		sw.WriteBool(b.Air)
	}

	w.cmds.Save(sw)
	sw.WriteUint32Slice(w.seeds)

	sw.WriteBool(w.desync != nil)
	if d := w.desync; d != nil {
		sw.WriteUint32(d.Tick)
		sw.WriteUint32(d.DetectedAt)
		sw.WriteUint8(uint8(d.Player))
		sw.WriteUint32(d.Expected)
		sw.WriteUint32(d.Actual)
	}
	return sw.Err()
}

// Load restores a world written by Save. Options supply the rules, logger,
// notifier and footprint provider; the map size comes from the stream.
func Load(sr *stream.Reader, opts Options) (*World, error) {
	if sr.ReadUint32() != saveMagic {
		return nil, fmt.Errorf("sim: load: %w: bad magic", stream.ErrCorrupt)
	}
	if v := sr.ReadUint32(); v != saveVersion {
		return nil, fmt.Errorf("sim: load: %w: unsupported version %d", stream.ErrCorrupt, v)
	}
	fp := sr.ReadString()
	width, height := int(sr.ReadUint32()), int(sr.ReadUint32())
	if err := sr.Err(); err != nil {
		return nil, fmt.Errorf("sim: load: %w", err)
	}
	if width <= 0 || height <= 0 || width > MaxMapSize || height > MaxMapSize {
		return nil, fmt.Errorf("sim: load: %w: map size %dx%d", stream.ErrCorrupt, width, height)
	}

	opts.Width, opts.Height = width, height
	w, err := New(opts)
	if err != nil {
		return nil, err
	}
	if want := RulesFingerprint(w.rules); fp != string(want[:]) {
		return nil, ErrRulesMismatch
	}

	w.tick = sr.ReadUint32()
	w.rng.SetSeed(sr.ReadUint32())

	for i := range w.players {
		if !sr.ReadBool() {
			continue
		}
		p := &Player{ID: PlayerID(i), Team: int(sr.ReadInt32())}
		p.Credits = readFixed(sr)
		p.lastAttackWarning = sr.ReadUint32()
		p.Stats.UnitsBuilt = int(sr.ReadUint32())
		p.Stats.UnitsLost = int(sr.ReadUint32())
		p.Stats.StructuresBuilt = int(sr.ReadUint32())
		p.Stats.StructuresLost = int(sr.ReadUint32())
		p.Stats.Kills = int(sr.ReadUint32())
		p.Stats.SpiceHarvested = readFixed(sr)
		w.players[i] = p
	}

	for i := range w.m.tiles {
		t := &w.m.tiles[i]
		t.Terrain = Terrain(sr.ReadUint8())
		t.Owner = PlayerID(int8(sr.ReadUint8()))
		t.Spice = readFixed(sr)
		for p := 0; p < MaxPlayers; p++ {
			t.lastSeen[p] = sr.ReadUint32()
		}
		explored := sr.ReadUint8()
		for p := 0; p < MaxPlayers; p++ {
			t.explored[p] = explored&(1<<uint(p)) != 0
		}
		for l := range t.occupants {
			t.occupants[l] = readIDs(sr)
		}
		if t.Terrain >= terrainCount {
			sr.Fail(fmt.Errorf("%w: terrain %d", stream.ErrCorrupt, t.Terrain))
		}
	}
	if err := sr.Err(); err != nil {
		return nil, fmt.Errorf("sim: load: %w", err)
	}
	w.m.CreateSandRegions()

	if err := w.loadRegistry(sr); err != nil {
		return nil, err
	}

	n := sr.ReadLen()
	for i := 0; i < n && sr.Err() == nil; i++ {
		b := &Bullet{
			Shooter: ObjectID(sr.ReadUint32()),
			Owner:   PlayerID(int8(sr.ReadUint8())),
			Kind:    BulletKind(sr.ReadUint8()),
		}
		b.Pos = readPoint(sr)
		b.Dest = readPoint(sr)
		b.Damage = readFixed(sr)
		b.Speed = readFixed(sr)
		b.Radius = readFixed(sr)
		b.Air = sr.ReadBool()
		w.bullets = append(w.bullets, b)
	}

	if err := w.cmds.Load(sr); err != nil {
		return nil, fmt.Errorf("sim: load: %w", err)
	}
	seeds := sr.ReadUint32Slice()
	if len(seeds) != len(w.seeds) {
		sr.Fail(fmt.Errorf("%w: sync history of %d, expected %d", stream.ErrCorrupt, len(seeds), len(w.seeds)))
	} else {
		copy(w.seeds, seeds)
	}
	if sr.ReadBool() {
		w.desync = &DesyncReport{
			Tick:       sr.ReadUint32(),
			DetectedAt: sr.ReadUint32(),
			Player:     PlayerID(int8(sr.ReadUint8())),
			Expected:   sr.ReadUint32(),
			Actual:     sr.ReadUint32(),
		}
	}
	if err := sr.Err(); err != nil {
		return nil, fmt.Errorf("sim: load: %w", err)
	}
	return w, nil
}

func (w *World) loadRegistry(sr *stream.Reader) error {
	slots := sr.ReadLen()
	if slots < 1 || slots > maxSlots {
		sr.Fail(fmt.Errorf("%w: %d registry slots", stream.ErrCorrupt, slots))
	}
	if err := sr.Err(); err != nil {
		return fmt.Errorf("sim: load: %w", err)
	}
	w.reg.slots = make([]*Object, slots)
	w.reg.gens = make([]uint16, slots)
	for i := range w.reg.gens {
		w.reg.gens[i] = sr.ReadUint16()
	}
	for _, s := range sr.ReadUint32Slice() {
		if int(s) >= slots || s == 0 {
			sr.Fail(fmt.Errorf("%w: free slot %d", stream.ErrCorrupt, s))
			break
		}
		w.reg.free = append(w.reg.free, int(s))
	}

	count := sr.ReadLen()
	for i := 0; i < count && sr.Err() == nil; i++ {
		o := w.loadObject(sr)
		if o == nil {
			break
		}
		if !w.reg.insertAt(o.ID, o) {
			sr.Fail(fmt.Errorf("%w: object id %v collides", stream.ErrCorrupt, o.ID))
			break
		}
	}
	if err := sr.Err(); err != nil {
		return fmt.Errorf("sim: load: %w", err)
	}

	// every occupant must resolve and sit on a tile it covers
	for i := range w.m.tiles {
		c := core.C(i%w.m.width, i/w.m.width)
		for l := range w.m.tiles[i].occupants {
			for _, id := range w.m.tiles[i].occupants[l] {
				o := w.reg.Get(id)
				if o == nil || o.InTransport() || o.Kind.layer() != Layer(l) || !o.Footprint().Contains(c) {
					return fmt.Errorf("sim: load: %w: stale occupant %v at %v", stream.ErrCorrupt, id, c)
				}
			}
		}
	}

	// and every placed object must be listed on each tile it covers
	var err error
	w.reg.Each(func(o *Object) {
		if err != nil {
			return
		}
		if o.Mobile != nil {
			for _, c := range o.Mobile.Path {
				if !w.m.Contains(c) {
					err = fmt.Errorf("sim: load: %w: path of %v leaves the map at %v", stream.ErrCorrupt, o.ID, c)
					return
				}
			}
		}
		if o.InTransport() {
			return
		}
		for _, c := range o.Footprint().Cells() {
			if !w.m.Contains(c) {
				err = fmt.Errorf("sim: load: %w: %v placed off the map at %v", stream.ErrCorrupt, o.ID, c)
				return
			}
			if !slices.Contains(w.m.Tile(c).Objects(o.Kind.layer()), o.ID) {
				err = fmt.Errorf("sim: load: %w: %v missing from tile %v", stream.ErrCorrupt, o.ID, c)
				return
			}
		}
	})
	return err
}

func saveObject(sw *stream.Writer, o *Object) {
	sw.WriteUint32(uint32(o.ID))
	sw.WriteUint8(uint8(o.Item))
	sw.WriteUint8(uint8(o.Owner))
	sw.WriteUint8(uint8(o.OriginalOwner))
	writeCoord(sw, o.Location)
	writePoint(sw, o.Real)
	writeCoord(sw, o.Destination)
	writeFixed(sw, o.Health)
	sw.WriteUint32(uint32(o.Target))
	writeCoord(sw, o.AttackPos)
	sw.WriteBool(o.ForcedTarget)
	sw.WriteUint8(uint8(o.Mode))
	writeFixed(sw, o.Angle)
	sw.WriteUint8(uint8(o.DrawnAngle))
	sw.WriteUint8(o.visible)

	if m := o.Mobile; m != nil {
		sw.WriteUint32(uint32(len(m.Path)))
		for _, c := range m.Path {
			writeCoord(sw, c)
		}
		writeCoord(sw, m.PathGoal)
		sw.WriteInt32(int32(m.RepathTimer))
		sw.WriteBool(m.Moving)
		sw.WriteBool(m.Forced)
		writeCoord(sw, m.GuardPoint)
		sw.WriteInt32(int32(m.TargetTimer))
		sw.WriteBool(m.InTransport)
		sw.WriteBool(m.AwaitingPickup)
	}
	if wp := o.Weapon; wp != nil {
		sw.WriteInt32(int32(wp.Counter))
		sw.WriteUint32(uint32(wp.Fired))
	}
	if s := o.Structure; s != nil {
		sw.WriteBool(s.Repairing)
		writeCoord(sw, s.DeployPoint)
		sw.WriteInt32(int32(s.SpecialCharge))
	}
	if b := o.Builder; b != nil {
		sw.WriteUint32(uint32(len(b.Queue)))
		for _, it := range b.Queue {
			sw.WriteUint8(uint8(it.Item))
			writeFixed(sw, it.Paid)
		}
		sw.WriteInt32(int32(b.Progress))
		sw.WriteBool(b.OnHold)
		sw.WriteUint8(uint8(b.Ready))
	}
	if h := o.Harvest; h != nil {
		writeFixed(sw, h.Spice)
		sw.WriteUint8(uint8(h.State))
		sw.WriteUint32(uint32(h.Refinery))
		sw.WriteInt32(int32(h.Idle))
	}
	if c := o.Carrier; c != nil {
		sw.WriteUint8(uint8(c.Job))
		sw.WriteUint32(uint32(c.Client))
		sw.WriteUint32(uint32(c.Carried))
		writeCoord(sw, c.DropAt)
		sw.WriteUint32(uint32(c.Home))
		sw.WriteInt32(int32(c.Patrol))
	}
	if wm := o.Worm; wm != nil {
		sw.WriteInt32(int32(wm.Kills))
		sw.WriteInt32(int32(wm.Wander))
	}
	sw.WriteBool(o.Deviation != nil)
	if o.Deviation != nil {
		sw.WriteInt32(int32(o.Deviation.Timer))
	}
}

// loadObject reconstructs one object. The capability blocks are rebuilt
// from the item statistics and their dynamic state is read back.
func (w *World) loadObject(sr *stream.Reader) *Object {
	id := ObjectID(sr.ReadUint32())
	item := ItemID(sr.ReadUint8())
	owner := PlayerID(int8(sr.ReadUint8()))
	original := PlayerID(int8(sr.ReadUint8()))
	loc := readCoord(sr)
	st := w.items.get(item)
	if st == nil || !owner.Valid() || !original.Valid() {
		sr.Fail(fmt.Errorf("%w: object %v of item %d owned by %d", stream.ErrCorrupt, id, item, owner))
		return nil
	}
	o := w.newObject(st, original, loc)
	o.ID = id
	o.Owner = owner
	o.Real = readPoint(sr)
	o.Destination = readCoord(sr)
	o.Health = readFixed(sr)
	o.Target = ObjectID(sr.ReadUint32())
	o.AttackPos = readCoord(sr)
	o.ForcedTarget = sr.ReadBool()
	o.Mode = AttackMode(sr.ReadUint8())
	o.Angle = readFixed(sr)
	o.DrawnAngle = int(sr.ReadUint8())
	o.visible = sr.ReadUint8()
	if !o.Mode.Valid() {
		sr.Fail(fmt.Errorf("%w: attack mode %d", stream.ErrCorrupt, o.Mode))
	}

	if m := o.Mobile; m != nil {
		n := sr.ReadLen()
		for i := 0; i < n && sr.Err() == nil; i++ {
			m.Path = append(m.Path, readCoord(sr))
		}
		m.PathGoal = readCoord(sr)
		m.RepathTimer = int(sr.ReadInt32())
		m.Moving = sr.ReadBool()
		m.Forced = sr.ReadBool()
		m.GuardPoint = readCoord(sr)
		m.TargetTimer = int(sr.ReadInt32())
		m.InTransport = sr.ReadBool()
		m.AwaitingPickup = sr.ReadBool()
	}
	if wp := o.Weapon; wp != nil {
		wp.Counter = int(sr.ReadInt32())
		wp.Fired = int(sr.ReadUint32())
	}
	if s := o.Structure; s != nil {
		s.Repairing = sr.ReadBool()
		s.DeployPoint = readCoord(sr)
		s.SpecialCharge = int(sr.ReadInt32())
	}
	if b := o.Builder; b != nil {
		n := sr.ReadLen()
		for i := 0; i < n && sr.Err() == nil; i++ {
			b.Queue = append(b.Queue, ProductionItem{Item: ItemID(sr.ReadUint8()), Paid: readFixed(sr)})
		}
		b.Progress = int(sr.ReadInt32())
		b.OnHold = sr.ReadBool()
		b.Ready = ItemID(sr.ReadUint8())
	}
	if h := o.Harvest; h != nil {
		h.Spice = readFixed(sr)
		h.State = HarvestState(sr.ReadUint8())
		h.Refinery = ObjectID(sr.ReadUint32())
		h.Idle = int(sr.ReadInt32())
	}
	if c := o.Carrier; c != nil {
		c.Job = CarrierJob(sr.ReadUint8())
		c.Client = ObjectID(sr.ReadUint32())
		c.Carried = ObjectID(sr.ReadUint32())
		c.DropAt = readCoord(sr)
		c.Home = ObjectID(sr.ReadUint32())
		c.Patrol = int(sr.ReadInt32())
	}
	if wm := o.Worm; wm != nil {
		wm.Kills = int(sr.ReadInt32())
		wm.Wander = int(sr.ReadInt32())
	}
	if sr.ReadBool() {
		o.Deviation = &Deviation{Timer: int(sr.ReadInt32())}
	}
	if sr.Err() != nil {
		return nil
	}
	return o
}

func writeIDs(sw *stream.Writer, ids []ObjectID) {
	sw.WriteUint32(uint32(len(ids)))
	for _, id := range ids {
		sw.WriteUint32(uint32(id))
	}
}

func readIDs(sr *stream.Reader) []ObjectID {
	n := sr.ReadLen()
	if n == 0 {
		return nil
	}
	ids := make([]ObjectID, 0, n)
	for i := 0; i < n && sr.Err() == nil; i++ {
		ids = append(ids, ObjectID(sr.ReadUint32()))
	}
	return ids
}

func writeFixed(sw *stream.Writer, f core.Fixed) {
	sw.WriteInt64(int64(f))
}

func readFixed(sr *stream.Reader) core.Fixed {
	return core.Fixed(sr.ReadInt64())
}

func writeCoord(sw *stream.Writer, c core.Coord) {
	sw.WriteInt32(int32(c.X))
	sw.WriteInt32(int32(c.Y))
}

func readCoord(sr *stream.Reader) core.Coord {
	x := int(sr.ReadInt32())
	return core.C(x, int(sr.ReadInt32()))
}

func writePoint(sw *stream.Writer, p Point) {
	writeFixed(sw, p.X)
	writeFixed(sw, p.Y)
}

func readPoint(sr *stream.Reader) Point {
	x := readFixed(sr)
	return Point{X: x, Y: readFixed(sr)}
}
