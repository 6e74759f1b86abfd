package sim

import (
	"github.com/vovakirdan/dunesim/internal/core"
)

// Bullet is a projectile in flight.
type Bullet struct {
	Shooter ObjectID
	Owner   PlayerID
	Kind    BulletKind
	Pos     Point
	Dest    Point
	Damage  core.Fixed
	Speed   core.Fixed
	Radius  core.Fixed
	Air     bool // may hit flying units
}

// Bullets returns the projectiles in flight.
func (w *World) Bullets() []*Bullet {
	return w.bullets
}

// fire launches o's weapon at tile c.
func (w *World) fire(o *Object, c core.Coord, target *Object) {
	wp := o.Weapon
	wp.Counter = wp.Reload
	wp.Fired++

	info := bulletInfos[wp.Bullet]
	dest := TileCenter(c)
	if target != nil && !target.IsStructure() {
		dest = target.Real
	}
	w.bullets = append(w.bullets, &Bullet{
		Shooter: o.ID,
		Owner:   o.Owner,
		Kind:    wp.Bullet,
		Pos:     w.center(o),
		Dest:    dest,
		Damage:  wp.Damage,
		Speed:   info.speed,
		Radius:  info.radius,
		Air:     target != nil && target.IsFlying(),
	})
}

// center returns the world position of the middle of o's footprint.
func (w *World) center(o *Object) Point {
	if o.Structure == nil {
		return o.Real
	}
	fp := o.Footprint()
	return Point{
		X: core.FromInt(fp.X*TileSize + fp.W*TileSize/2),
		Y: core.FromInt(fp.Y*TileSize + fp.H*TileSize/2),
	}
}

// updateBullets moves every projectile and detonates those that arrived.
func (w *World) updateBullets() {
	live := w.bullets[:0]
	var arrived []*Bullet
	for _, b := range w.bullets {
		b.Pos.X = approach(b.Pos.X, b.Dest.X, b.Speed)
		b.Pos.Y = approach(b.Pos.Y, b.Dest.Y, b.Speed)
		if b.Pos == b.Dest {
			arrived = append(arrived, b)
			continue
		}
		live = append(live, b)
	}
	for i := len(live); i < len(w.bullets); i++ {
		w.bullets[i] = nil
	}
	w.bullets = live

	for _, b := range arrived {
		w.detonate(b)
	}
}

func (w *World) detonate(b *Bullet) {
	if b.Kind != BulletDeathHand {
		w.Damage(b.Shooter, b.Owner, b.Dest, b.Kind, b.Damage, b.Radius, b.Air)
		return
	}
	w.Damage(b.Shooter, b.Owner, b.Dest, b.Kind, b.Damage, b.Radius, false)
	for i := 0; i < 8; i++ {
		p := Point{
			X: b.Dest.X + core.FromInt(w.rng.Intn(-TileSize, TileSize)),
			Y: b.Dest.Y + core.FromInt(w.rng.Intn(-TileSize, TileSize)),
		}
		w.Damage(b.Shooter, b.Owner, p, b.Kind, b.Damage/2, b.Radius/2, false)
	}
}

// Damage applies splash damage around pos. Objects in the 5x5 tiles
// around the impact take damage falling off linearly with their distance;
// the impact tile itself may change: rockets crack slabs and any hit sets
// off a spice bloom.
func (w *World) Damage(shooter ObjectID, owner PlayerID, pos Point, bullet BulletKind, damage, radius core.Fixed, air bool) {
	center := pos.Tile()
	if !w.m.Contains(center) {
		return
	}

	var victims []*Object
	seen := make(map[ObjectID]bool)
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			c := center.Add(core.C(dx, dy))
			if !w.m.Contains(c) {
				continue
			}
			t := w.m.Tile(c)
			for l := LayerGround; l < layerCount; l++ {
				if l == LayerAir && !air {
					continue
				}
				for _, id := range t.Objects(l) {
					if seen[id] {
						continue
					}
					seen[id] = true
					if o := w.reg.Get(id); o != nil {
						victims = append(victims, o)
					}
				}
			}
		}
	}

	for _, o := range victims {
		if w.reg.Get(o.ID) != o {
			continue
		}
		d := pos.Distance(TileCenter(o.ClosestPoint(center)))
		if o.Structure == nil {
			d = pos.Distance(o.Real)
		}
		if d > radius {
			continue
		}
		dmg := damage - damage.Mul(d).Div(radius*2)
		w.handleDamage(o, dmg, shooter, owner, bullet)
	}

	t := w.m.Tile(center)
	if t.Terrain == TerrainSlab && (bullet == BulletRocket || bullet == BulletDeathHand) && !t.HasGroundObject() {
		t.Terrain = TerrainRock
		t.Owner = NoPlayer
	}
	if t.Terrain.IsBloom() {
		w.igniteBloom(center)
	}
}

// handleDamage applies damage from a hit. Deviator hits change the
// owner instead of doing damage.
func (w *World) handleDamage(o *Object, damage core.Fixed, shooter ObjectID, owner PlayerID, bullet BulletKind) {
	if bullet == BulletDeviator {
		w.Deviate(o, owner)
		return
	}
	if damage <= 0 || o.IsDead() {
		return
	}
	o.Health -= damage
	if o.Health <= 0 {
		if p := w.Player(owner); p != nil && w.isEnemy(owner, o.Owner) {
			p.Stats.Kills++
		}
		w.Destroy(o.ID)
		return
	}

	if p := w.Player(o.Owner); p != nil && w.isEnemy(owner, o.Owner) {
		if p.lastAttackWarning == 0 || w.tick+1-p.lastAttackWarning >= w.tun.underAttackCooldown {
			p.lastAttackWarning = w.tick + 1
			w.notify(NoteUnderAttack, o.Owner, o)
		}
	}

	// fight back
	if o.Weapon == nil || o.Target != NoObject || o.Mode == ModeStop {
		return
	}
	if s := w.reg.Get(shooter); s != nil && w.canAttack(o, s) {
		o.Target = s.ID
	}
}

// launchDeathHand fires the palace missile at c. The landing point is
// scattered by up to two tiles.
func (w *World) launchDeathHand(palace *Object, c core.Coord) {
	landing := c.Add(core.C(w.rng.Intn(-2, 2), w.rng.Intn(-2, 2)))
	landing.X = core.Clamp(landing.X, 0, w.m.Width()-1)
	landing.Y = core.Clamp(landing.Y, 0, w.m.Height()-1)

	info := bulletInfos[BulletDeathHand]
	from := w.center(palace)
	dest := TileCenter(landing)
	dist := from.Distance(dest)
	speed := core.MaxF(dist.Div(core.FromInt(w.tun.deathHandFlight)), core.One)

	w.bullets = append(w.bullets, &Bullet{
		Shooter: palace.ID,
		Owner:   palace.Owner,
		Kind:    BulletDeathHand,
		Pos:     from,
		Dest:    dest,
		Damage:  core.FromInt(500),
		Speed:   speed,
		Radius:  info.radius,
	})
	w.notify(NoteDeathHandLaunched, palace.Owner, palace)
}
