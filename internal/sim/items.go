package sim

import (
	"fmt"

	"github.com/vovakirdan/dunesim/internal/config"
	"github.com/vovakirdan/dunesim/internal/core"
)

// Kind is the closed tag that selects an object's update behavior.
type Kind uint8

const (
	KindStructure Kind = iota
	KindGround
	KindInfantry
	KindAir
	KindSandworm
)

func (k Kind) String() string {
	switch k {
	case KindStructure:
		return "structure"
	case KindGround:
		return "ground"
	case KindInfantry:
		return "infantry"
	case KindAir:
		return "air"
	case KindSandworm:
		return "worm"
	default:
		return "unknown"
	}
}

func parseKind(name string) (Kind, bool) {
	switch name {
	case "structure":
		return KindStructure, true
	case "ground":
		return KindGround, true
	case "infantry":
		return KindInfantry, true
	case "air":
		return KindAir, true
	case "worm":
		return KindSandworm, true
	}
	return 0, false
}

// layer returns the occupancy layer objects of this kind live on.
func (k Kind) layer() Layer {
	switch k {
	case KindInfantry:
		return LayerInfantry
	case KindAir:
		return LayerAir
	case KindSandworm:
		return LayerUnderground
	default:
		return LayerGround
	}
}

// BulletKind selects projectile speed, blast radius and impact effects.
type BulletKind uint8

const (
	BulletNone BulletKind = iota
	BulletSmall
	BulletShell
	BulletRocket
	BulletSonic
	BulletDeviator
	BulletDeathHand
	BulletSandworm
)

type bulletInfo struct {
	speed  core.Fixed // world units per tick
	radius core.Fixed // blast radius in world units
}

var bulletInfos = map[BulletKind]bulletInfo{
	BulletSmall:     {core.FromInt(16), core.FromInt(8)},
	BulletShell:     {core.FromInt(12), core.FromInt(16)},
	BulletRocket:    {core.FromInt(8), core.FromInt(24)},
	BulletSonic:     {core.FromInt(10), core.FromInt(16)},
	BulletDeviator:  {core.FromInt(8), core.FromInt(32)},
	BulletDeathHand: {core.FromInt(4), core.FromInt(96)},
}

func parseBullet(name string) BulletKind {
	switch name {
	case "bullet":
		return BulletSmall
	case "shell":
		return BulletShell
	case "rocket":
		return BulletRocket
	case "sonic":
		return BulletSonic
	case "deviator":
		return BulletDeviator
	case "deathhand":
		return BulletDeathHand
	case "sandworm":
		return BulletSandworm
	}
	return BulletNone
}

// ItemStats are the per-type statistics in simulation units.
type ItemStats struct {
	ID           ItemID
	Kind         Kind
	Movement     MovementClass
	HitPoints    core.Fixed
	Price        core.Fixed
	BuildTime    int
	Speed        core.Fixed
	TurnSpeed    core.Fixed
	ViewRange    int
	WeaponRange  int
	WeaponDamage core.Fixed
	ReloadTime   int
	Bullet       BulletKind
	Width        int
	Height       int
	Builds       []ItemID
}

// itemTable is the converted rule set.
type itemTable struct {
	items      [itemCount]*ItemStats
	difficulty [movementCount][terrainCount]core.Fixed // zero means impassable
}

func buildItemTable(rules config.Rules) (*itemTable, error) {
	tbl := &itemTable{}

	for class, terrains := range rules.Terrain {
		mc := parseMovement(class)
		if mc == MoveNone {
			return nil, fmt.Errorf("sim: unknown movement class %q", class)
		}
		for name, d := range terrains {
			t, ok := ParseTerrain(name)
			if !ok {
				return nil, fmt.Errorf("sim: unknown terrain %q", name)
			}
			tbl.difficulty[mc][t] = core.FromFloat(d)
		}
	}
	for t := Terrain(0); t < terrainCount; t++ {
		tbl.difficulty[MoveFlying][t] = core.One
	}

	for id := ItemNone + 1; id < itemCount; id++ {
		r, ok := rules.Items[id.String()]
		if !ok {
			continue
		}
		kind, ok := parseKind(r.Kind)
		if !ok {
			return nil, fmt.Errorf("sim: item %s: unknown kind %q", id, r.Kind)
		}
		st := &ItemStats{
			ID:           id,
			Kind:         kind,
			Movement:     parseMovement(r.Movement),
			HitPoints:    core.FromInt(r.HitPoints),
			Price:        core.FromInt(r.Price),
			BuildTime:    core.Max(r.BuildTime, 1),
			Speed:        core.FromFloat(r.Speed),
			TurnSpeed:    core.FromFloat(r.TurnSpeed),
			ViewRange:    r.ViewRange,
			WeaponRange:  r.WeaponRange,
			WeaponDamage: core.FromInt(r.WeaponDamage),
			ReloadTime:   r.ReloadTime,
			Bullet:       parseBullet(r.Bullet),
			Width:        1,
			Height:       1,
		}
		if kind == KindStructure {
			st.Width, st.Height = r.Size[0], r.Size[1]
		}
		for _, b := range r.Builds {
			bid, ok := ParseItem(b)
			if !ok {
				return nil, fmt.Errorf("sim: item %s builds unknown item %q", id, b)
			}
			st.Builds = append(st.Builds, bid)
		}
		tbl.items[id] = st
	}
	return tbl, nil
}

func (t *itemTable) get(id ItemID) *ItemStats {
	if !id.Valid() {
		return nil
	}
	return t.items[id]
}

// FootprintProvider answers the size in tiles of an item as drawn for an
// owner. It stands in for the asset layer.
type FootprintProvider interface {
	Footprint(item ItemID, owner PlayerID) (w, h int)
}

// rulesFootprints reads sizes from the rules.
type rulesFootprints struct {
	items *itemTable
}

func (f rulesFootprints) Footprint(item ItemID, _ PlayerID) (int, int) {
	st := f.items.get(item)
	if st == nil {
		return 1, 1
	}
	return st.Width, st.Height
}
