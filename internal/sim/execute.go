package sim

import (
	"github.com/vovakirdan/dunesim/internal/command"
	"github.com/vovakirdan/dunesim/internal/core"
)

// Execute applies one command for player. Commands that name objects the
// player does not own, or objects that no longer exist, are skipped.
func (w *World) Execute(player int, cmd command.Command) {
	if err := cmd.Validate(); err != nil {
		w.logger.Warn("invalid command dropped", "player", player, "err", err)
		return
	}
	pid := PlayerID(player)
	p := func(i int) uint32 { return cmd.Param(i) }
	at := func(i int) core.Coord { return core.C(int(int32(p(i))), int(int32(p(i+1)))) }

	if cmd.Opcode == command.OpTestSync {
		w.checkSync(pid, p(0), p(1))
		return
	}

	o := w.reg.Get(ObjectID(p(0)))
	if o == nil || o.Owner != pid {
		return
	}

	switch cmd.Opcode {
	case command.OpPlaceStructure:
		if _, err := w.PlaceStructure(o, ItemID(p(1)), at(2)); err != nil {
			w.logger.Debug("place structure failed", "player", player, "err", err)
		}

	case command.OpUnitMove2Pos:
		if o.Mobile == nil || !w.m.Contains(at(1)) {
			return
		}
		o.Target = NoObject
		o.ForcedTarget = false
		o.AttackPos = core.Invalid()
		if o.Mode == ModeCapture {
			o.Mode = ModeGuard
		}
		o.setDestination(at(1))
		o.Mobile.GuardPoint = at(1)
		o.Mobile.Forced = p(3) != 0

	case command.OpUnitMove2Object:
		t := w.reg.Get(ObjectID(p(1)))
		if o.Mobile == nil || t == nil {
			return
		}
		if t.Item == ItemRefinery && o.Harvest != nil && t.Owner == o.Owner {
			o.Harvest.Refinery = t.ID
			w.ReturnHarvester(o)
			return
		}
		o.Target = NoObject
		o.AttackPos = core.Invalid()
		o.setDestination(t.ClosestPoint(o.Location))
		o.Mobile.GuardPoint = o.Destination

	case command.OpUnitAttackPos:
		if o.Mobile == nil || o.Weapon == nil || !w.m.Contains(at(1)) {
			return
		}
		o.Target = NoObject
		o.ForcedTarget = true
		o.AttackPos = at(1)
		o.Mobile.Forced = false

	case command.OpUnitAttackObject:
		t := w.reg.Get(ObjectID(p(1)))
		if o.Mobile == nil || !w.canAttack(o, t) {
			return
		}
		o.Target = t.ID
		o.ForcedTarget = true
		o.AttackPos = core.Invalid()
		o.Mobile.Forced = false

	case command.OpInfantryCapture:
		w.OrderCapture(o, w.reg.Get(ObjectID(p(1))))

	case command.OpUnitRequestCarryallDrop:
		w.requestCarryall(o, at(1))

	case command.OpUnitSetMode:
		mode := AttackMode(p(1))
		if o.Mobile == nil || !mode.Valid() || mode == ModeCapture {
			return
		}
		o.Mode = mode
		o.Target = NoObject
		o.ForcedTarget = false
		o.AttackPos = core.Invalid()
		o.Mobile.GuardPoint = o.Location
		if mode == ModeStop {
			o.stop()
		}

	case command.OpHarvesterReturn:
		w.ReturnHarvester(o)

	case command.OpStructureSetDeployPosition:
		if o.Builder == nil || o.Structure == nil || !w.m.Contains(at(1)) {
			return
		}
		o.Structure.DeployPoint = at(1)

	case command.OpStructureRepair:
		if o.Structure != nil && o.Health < o.MaxHealth {
			o.Structure.Repairing = true
		}

	case command.OpBuilderProduceItem:
		w.ProduceItem(o, ItemID(p(1)), p(2) != 0)

	case command.OpBuilderCancelItem:
		w.CancelItem(o, ItemID(p(1)), p(2) != 0)

	case command.OpBuilderSetOnHold:
		if o.Builder != nil {
			o.Builder.OnHold = p(1) != 0
		}

	case command.OpPalaceSpecialWeapon:
		w.LaunchSpecialWeapon(o, at(1))

	case command.OpTurretAttackObject:
		t := w.reg.Get(ObjectID(p(1)))
		if !o.IsStructure() || o.Weapon == nil || !w.canAttack(o, t) {
			return
		}
		o.Target = t.ID
		o.ForcedTarget = true
	}
}
