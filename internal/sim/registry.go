package sim

import "errors"

// maxSlots is the number of addressable registry slots.
const maxSlots = 1 << 16

var errRegistryFull = errors.New("sim: object registry full")

// Registry owns every live object. It is a slot map: an ObjectID names a
// slot and the generation it was issued for, so IDs of destroyed objects
// never resolve again even after the slot is reused.
type Registry struct {
	slots []*Object
	gens  []uint16
	free  []int // stack of free slot indices
	live  int
}

func newRegistry() *Registry {
	// Slot 0 is reserved so that ID 0 is never handed out even with
	// generation wrap-around.
	return &Registry{
		slots: []*Object{nil},
		gens:  []uint16{1},
	}
}

// Len returns the number of live objects.
func (r *Registry) Len() int {
	return r.live
}

// insert stores o in a free slot, assigns its ID and returns it.
func (r *Registry) insert(o *Object) (ObjectID, error) {
	var slot int
	if n := len(r.free); n > 0 {
		slot = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		if len(r.slots) >= maxSlots {
			return NoObject, errRegistryFull
		}
		slot = len(r.slots)
		r.slots = append(r.slots, nil)
		r.gens = append(r.gens, 1)
	}
	id := makeID(r.gens[slot], slot)
	o.ID = id
	r.slots[slot] = o
	r.live++
	return id, nil
}

// insertAt stores o under a fixed id, used when loading a saved game.
func (r *Registry) insertAt(id ObjectID, o *Object) bool {
	s := id.slot()
	if s == 0 || s >= len(r.slots) || r.slots[s] != nil || r.gens[s] != id.generation() {
		return false
	}
	o.ID = id
	r.slots[s] = o
	r.live++
	return true
}

// Get resolves id. Stale and unknown IDs return nil.
func (r *Registry) Get(id ObjectID) *Object {
	s := id.slot()
	if id == NoObject || s >= len(r.slots) {
		return nil
	}
	if r.gens[s] != id.generation() {
		return nil
	}
	return r.slots[s]
}

// remove invalidates id and frees its slot.
func (r *Registry) remove(id ObjectID) bool {
	if r.Get(id) == nil {
		return false
	}
	s := id.slot()
	r.slots[s] = nil
	r.gens[s]++
	if r.gens[s] == 0 {
		r.gens[s] = 1
	}
	r.free = append(r.free, s)
	r.live--
	return true
}

// Each calls fn for every live object in slot order. Objects inserted
// during the walk into a new slot are visited; removed ones are skipped.
func (r *Registry) Each(fn func(*Object)) {
	for i := 1; i < len(r.slots); i++ {
		if o := r.slots[i]; o != nil {
			fn(o)
		}
	}
}

// IDs returns the IDs of all live objects in slot order.
func (r *Registry) IDs() []ObjectID {
	ids := make([]ObjectID, 0, r.live)
	r.Each(func(o *Object) { ids = append(ids, o.ID) })
	return ids
}
