package sim

// Terrain is the ground type of a tile.
type Terrain uint8

const (
	TerrainSand Terrain = iota
	TerrainDunes
	TerrainRock
	TerrainSlab
	TerrainMountain
	TerrainSpice
	TerrainThickSpice
	TerrainSpiceBloom
	TerrainSpecialBloom

	terrainCount
)

var terrainNames = [terrainCount]string{
	"sand", "dunes", "rock", "slab", "mountain",
	"spice", "thick_spice", "spice_bloom", "special_bloom",
}

func (t Terrain) String() string {
	if t >= terrainCount {
		return "unknown"
	}
	return terrainNames[t]
}

// ParseTerrain resolves a rules-file terrain name.
func ParseTerrain(name string) (Terrain, bool) {
	for t := Terrain(0); t < terrainCount; t++ {
		if terrainNames[t] == name {
			return t, true
		}
	}
	return TerrainSand, false
}

// IsRock reports whether t belongs to the rock family that separates sand regions.
func (t Terrain) IsRock() bool {
	return t == TerrainRock || t == TerrainSlab || t == TerrainMountain
}

// IsSpice reports whether t carries harvestable spice.
func (t Terrain) IsSpice() bool {
	return t == TerrainSpice || t == TerrainThickSpice
}

// IsBloom reports whether t is an unexploded spice bloom.
func (t Terrain) IsBloom() bool {
	return t == TerrainSpiceBloom || t == TerrainSpecialBloom
}

// Buildable reports whether structures may stand on t.
func (t Terrain) Buildable() bool {
	return t == TerrainRock || t == TerrainSlab
}

// MovementClass decides which terrain a unit may cross.
type MovementClass uint8

const (
	MoveNone MovementClass = iota
	MoveWheeled
	MoveTracked
	MoveInfantry
	MoveFlying
	MoveWorm

	movementCount
)

var movementNames = [movementCount]string{"", "wheeled", "tracked", "infantry", "flying", "worm"}

func (m MovementClass) String() string {
	if m >= movementCount {
		return "unknown"
	}
	return movementNames[m]
}

func parseMovement(name string) MovementClass {
	for m := MoveNone; m < movementCount; m++ {
		if movementNames[m] == name {
			return m
		}
	}
	return MoveNone
}
