package sim

import "github.com/vovakirdan/dunesim/internal/core"

// OrderCapture sends infantry to take over an enemy structure.
func (w *World) OrderCapture(o, target *Object) bool {
	if o == nil || target == nil || !o.IsInfantry() || !target.IsStructure() {
		return false
	}
	if !w.isEnemy(o.Owner, target.Owner) {
		return false
	}
	o.Mode = ModeCapture
	o.Target = target.ID
	o.ForcedTarget = true
	o.AttackPos = core.Invalid()
	o.setDestination(target.ClosestPoint(o.Location))
	return true
}

// updateCapture walks capturing infantry into the target footprint. It
// returns false when the infantry was used up.
func (w *World) updateCapture(o *Object) bool {
	t := w.reg.Get(o.Target)
	if t == nil || !t.IsStructure() || !w.isEnemy(o.Owner, t.Owner) {
		o.Mode = ModeGuard
		o.Target = NoObject
		o.ForcedTarget = false
		if t == nil {
			o.stop()
		}
		return true
	}
	if o.Mobile.Moving || !t.Footprint().Contains(o.Location) {
		if dest := t.ClosestPoint(o.Location); o.Destination != dest && !o.Mobile.Moving {
			o.setDestination(dest)
		}
		return true
	}
	w.capture(o, t)
	return false
}

// capture resolves infantry o entering structure t. A badly damaged
// structure changes hands with its production state intact and every
// infantry on the footprint is spent; otherwise o damages the structure
// and dies.
func (w *World) capture(o, t *Object) {
	if t.Health > t.MaxHealth.Mul(w.tun.captureRatio) {
		w.handleDamage(t, o.Health, o.ID, o.Owner, BulletNone)
		w.Destroy(o.ID)
		return
	}

	previous := t.Owner
	t.Owner = o.Owner
	t.OriginalOwner = o.Owner
	t.Target = NoObject
	t.ForcedTarget = false
	var spent []ObjectID
	for _, c := range t.Footprint().Cells() {
		w.m.Tile(c).Owner = o.Owner
		spent = append(spent, w.m.Tile(c).Objects(LayerInfantry)...)
	}
	for _, id := range spent {
		w.Destroy(id)
	}
	w.Destroy(o.ID)
	w.refreshVisibility(t)

	w.logger.Debug("structure captured", "structure", t.ID, "item", t.Item, "from", previous, "to", t.Owner)
	w.notify(NoteStructureCaptured, t.Owner, t)
	w.notify(NoteStructureCaptured, previous, t)
}
