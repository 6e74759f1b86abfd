package sim

import "fmt"

// ObjectID is a registry key: the upper 16 bits hold the slot generation and
// the lower 16 bits the slot index. Generations start at 1, so the zero
// value never names a live object.
type ObjectID uint32

// NoObject is the absent reference.
const NoObject ObjectID = 0

func makeID(gen uint16, slot int) ObjectID {
	return ObjectID(uint32(gen)<<16 | uint32(slot))
}

func (id ObjectID) slot() int {
	return int(id & 0xffff)
}

func (id ObjectID) generation() uint16 {
	return uint16(id >> 16)
}

func (id ObjectID) String() string {
	if id == NoObject {
		return "none"
	}
	return fmt.Sprintf("#%d.%d", id.slot(), id.generation())
}

// PlayerID is a player slot. NoPlayer marks unowned tiles.
type PlayerID int8

const (
	NoPlayer   PlayerID = -1
	MaxPlayers          = 8
)

// Valid reports whether p names a player slot.
func (p PlayerID) Valid() bool {
	return p >= 0 && p < MaxPlayers
}

// ItemID identifies a unit or structure type. Values appear in commands and
// save games.
type ItemID uint8

const (
	ItemNone ItemID = iota

	// Structures
	ItemConstructionYard
	ItemWindTrap
	ItemRefinery
	ItemSilo
	ItemBarracks
	ItemLightFactory
	ItemHeavyFactory
	ItemHighTechFactory
	ItemRadar
	ItemGunTurret
	ItemRocketTurret
	ItemWall
	ItemSlab1
	ItemPalace

	// Units
	ItemSoldier
	ItemTrooper
	ItemTrike
	ItemQuad
	ItemTank
	ItemSiegeTank
	ItemLauncher
	ItemDevastator
	ItemDeviator
	ItemHarvester
	ItemMCV
	ItemCarryall
	ItemOrnithopter
	ItemSandworm

	itemCount
)

// itemNames are the keys used in the rules file.
var itemNames = [itemCount]string{
	ItemNone:             "none",
	ItemConstructionYard: "construction_yard",
	ItemWindTrap:         "wind_trap",
	ItemRefinery:         "refinery",
	ItemSilo:             "silo",
	ItemBarracks:         "barracks",
	ItemLightFactory:     "light_factory",
	ItemHeavyFactory:     "heavy_factory",
	ItemHighTechFactory:  "high_tech_factory",
	ItemRadar:            "radar",
	ItemGunTurret:        "gun_turret",
	ItemRocketTurret:     "rocket_turret",
	ItemWall:             "wall",
	ItemSlab1:            "slab1",
	ItemPalace:           "palace",
	ItemSoldier:          "soldier",
	ItemTrooper:          "trooper",
	ItemTrike:            "trike",
	ItemQuad:             "quad",
	ItemTank:             "tank",
	ItemSiegeTank:        "siege_tank",
	ItemLauncher:         "launcher",
	ItemDevastator:       "devastator",
	ItemDeviator:         "deviator",
	ItemHarvester:        "harvester",
	ItemMCV:              "mcv",
	ItemCarryall:         "carryall",
	ItemOrnithopter:      "ornithopter",
	ItemSandworm:         "sandworm",
}

func (i ItemID) String() string {
	if i >= itemCount {
		return fmt.Sprintf("item(%d)", uint8(i))
	}
	return itemNames[i]
}

// Valid reports whether i is a known item other than ItemNone.
func (i ItemID) Valid() bool {
	return i > ItemNone && i < itemCount
}

// ParseItem resolves a rules-file item name.
func ParseItem(name string) (ItemID, bool) {
	for i := ItemNone + 1; i < itemCount; i++ {
		if itemNames[i] == name {
			return i, true
		}
	}
	return ItemNone, false
}

// AttackMode is the long-lived behavior setting of a unit.
type AttackMode uint8

const (
	ModeGuard AttackMode = iota
	ModeAreaGuard
	ModeStop
	ModeAmbush
	ModeHunt
	ModeCapture

	modeCount
)

var modeNames = [modeCount]string{"guard", "area_guard", "stop", "ambush", "hunt", "capture"}

func (m AttackMode) String() string {
	if m >= modeCount {
		return "unknown"
	}
	return modeNames[m]
}

// Valid reports whether m is a known mode.
func (m AttackMode) Valid() bool {
	return m < modeCount
}

// ParseAttackMode resolves a mode name.
func ParseAttackMode(name string) (AttackMode, bool) {
	for m := AttackMode(0); m < modeCount; m++ {
		if modeNames[m] == name {
			return m, true
		}
	}
	return ModeGuard, false
}
