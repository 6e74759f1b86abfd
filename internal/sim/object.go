package sim

import "github.com/vovakirdan/dunesim/internal/core"

// Capability flags.
type Capability uint8

const (
	CapStructure Capability = 1 << iota
	CapUnit
	CapFlying
	CapGround
	CapInfantry
	CapCanAttack
)

// TileSize is the number of world units per tile.
const TileSize = 64

// Point is a position in world units.
type Point struct {
	X, Y core.Fixed
}

// TileCenter returns the world position of the center of c.
func TileCenter(c core.Coord) Point {
	return Point{
		X: core.FromInt(c.X*TileSize + TileSize/2),
		Y: core.FromInt(c.Y*TileSize + TileSize/2),
	}
}

// Tile returns the tile containing p.
func (p Point) Tile() core.Coord {
	return core.C(p.X.Floor()/TileSize, p.Y.Floor()/TileSize)
}

// Distance returns the euclidean distance to q.
func (p Point) Distance(q Point) core.Fixed {
	dx, dy := q.X-p.X, q.Y-p.Y
	return (dx.Mul(dx) + dy.Mul(dy)).Sqrt()
}

// Object is one unit or structure. Behavior is selected by Kind; the
// optional blocks are present only for objects that have the capability.
type Object struct {
	ID            ObjectID
	Item          ItemID
	Kind          Kind
	Owner         PlayerID
	OriginalOwner PlayerID

	Location    core.Coord // tile; top-left tile for structures
	Real        Point
	Destination core.Coord
	Health      core.Fixed
	MaxHealth   core.Fixed

	Target       ObjectID
	AttackPos    core.Coord
	ForcedTarget bool
	Mode         AttackMode

	Angle      core.Fixed // facing in eighths of a turn, [0, 8)
	DrawnAngle int

	visible uint8 // bit per player

	Mobile    *Mobile
	Weapon    *Weapon
	Structure *Structure
	Builder   *Builder
	Harvest   *Harvest
	Carrier   *Carrier
	Deviation *Deviation
	Worm      *Worm

	stats *ItemStats
}

// Mobile is the movement state of a unit.
type Mobile struct {
	Speed          core.Fixed
	TurnSpeed      core.Fixed
	Path           []core.Coord
	PathGoal       core.Coord
	RepathTimer    int
	Moving         bool
	Forced         bool // ignore targets until the destination is reached
	GuardPoint     core.Coord
	TargetTimer    int
	InTransport    bool
	AwaitingPickup bool
}

// Weapon is the armament of a unit or turret.
type Weapon struct {
	Range    int
	Damage   core.Fixed
	Reload   int
	Counter  int
	Bullet   BulletKind
	Fired    int // shots fired, for statistics
	AntiAir  bool
	MustFace bool
}

// Structure holds state shared by every building.
type Structure struct {
	Width, Height int
	Repairing     bool
	DeployPoint   core.Coord
	SpecialCharge int // palace weapon charge in ticks
}

// ProductionItem is one entry of a build queue.
type ProductionItem struct {
	Item ItemID
	Paid core.Fixed
}

// Builder is the production state of factories and the construction yard.
type Builder struct {
	Queue    []ProductionItem
	Progress int // ticks spent on the head of the queue
	OnHold   bool
	Ready    ItemID // finished structure waiting for placement
}

// HarvestState is the harvester sub-state.
type HarvestState uint8

const (
	HarvestSeek HarvestState = iota
	HarvestCollect
	HarvestReturn
	HarvestUnload
)

// Harvest is the cargo state of a harvester.
type Harvest struct {
	Spice    core.Fixed
	State    HarvestState
	Refinery ObjectID
	Idle     int // ticks to wait before searching for spice again
}

// CarrierJob is the carryall sub-state.
type CarrierJob uint8

const (
	JobIdle CarrierJob = iota
	JobPickup
	JobDeliver
)

// Carrier is the transport state of a carryall.
type Carrier struct {
	Job     CarrierJob
	Client  ObjectID
	Carried ObjectID
	DropAt  core.Coord
	Home    ObjectID
	Patrol  int
}

// Deviation is present while a unit fights for another player.
type Deviation struct {
	Timer int
}

// Worm is the state of a sandworm.
type Worm struct {
	Kills  int
	Wander int
}

// Stats returns the static statistics of the object's item.
func (o *Object) Stats() *ItemStats {
	return o.stats
}

// Flags returns the capability set.
func (o *Object) Flags() Capability {
	var f Capability
	switch o.Kind {
	case KindStructure:
		f |= CapStructure | CapGround
	case KindGround, KindSandworm:
		f |= CapUnit | CapGround
	case KindInfantry:
		f |= CapUnit | CapGround | CapInfantry
	case KindAir:
		f |= CapUnit | CapFlying
	}
	if o.Weapon != nil {
		f |= CapCanAttack
	}
	return f
}

// Has reports whether the object has every capability in c.
func (o *Object) Has(c Capability) bool {
	return o.Flags()&c == c
}

func (o *Object) IsStructure() bool { return o.Kind == KindStructure }
func (o *Object) IsUnit() bool      { return o.Kind != KindStructure }
func (o *Object) IsFlying() bool    { return o.Kind == KindAir }
func (o *Object) IsInfantry() bool  { return o.Kind == KindInfantry }

// IsDead reports whether the object has been destroyed by damage but not
// yet removed.
func (o *Object) IsDead() bool {
	return o.Health <= 0
}

// HealthRatio returns Health/MaxHealth.
func (o *Object) HealthRatio() core.Fixed {
	return o.Health.Div(o.MaxHealth)
}

// Footprint returns the tiles covered by the object.
func (o *Object) Footprint() core.Rect {
	if o.Structure != nil {
		return core.RectAt(o.Location, o.Structure.Width, o.Structure.Height)
	}
	return core.RectAt(o.Location, 1, 1)
}

// ClosestPoint returns the tile of the object nearest to c.
func (o *Object) ClosestPoint(c core.Coord) core.Coord {
	return o.Footprint().ClosestPoint(c)
}

// IsVisibleTo reports whether player currently sees the object.
func (o *Object) IsVisibleTo(p PlayerID) bool {
	return p.Valid() && o.visible&(1<<uint(p)) != 0
}

// InTransport reports whether the object is carried and off the grid.
func (o *Object) InTransport() bool {
	return o.Mobile != nil && o.Mobile.InTransport
}
