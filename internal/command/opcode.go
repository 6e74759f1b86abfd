// Package command defines player intents: the closed set of opcodes, their
// parameter validation, the uint32 wire record and the per-tick schedule that
// every participant applies in the same order.
package command

// Opcode identifies a command. Values are part of the wire format and must
// never be renumbered.
type Opcode uint32

const (
	OpNone Opcode = iota
	OpPlaceStructure
	OpUnitMove2Pos
	OpUnitMove2Object
	OpUnitAttackPos
	OpUnitAttackObject
	OpInfantryCapture
	OpUnitRequestCarryallDrop
	OpUnitSetMode
	OpHarvesterReturn
	OpStructureSetDeployPosition
	OpStructureRepair
	OpBuilderProduceItem
	OpBuilderCancelItem
	OpBuilderSetOnHold
	OpPalaceSpecialWeapon
	OpTurretAttackObject
	OpTestSync

	opcodeCount
)

type opcodeInfo struct {
	name   string
	params int
}

// opcodes is indexed by Opcode.
var opcodes = [opcodeCount]opcodeInfo{
	OpNone:                       {"None", -1},
	OpPlaceStructure:             {"PlaceStructure", 4},             // builder, item, x, y
	OpUnitMove2Pos:               {"UnitMove2Pos", 4},               // unit, x, y, forced
	OpUnitMove2Object:            {"UnitMove2Object", 2},            // unit, target
	OpUnitAttackPos:              {"UnitAttackPos", 3},              // unit, x, y
	OpUnitAttackObject:           {"UnitAttackObject", 2},           // unit, target
	OpInfantryCapture:            {"InfantryCapture", 2},            // unit, target
	OpUnitRequestCarryallDrop:    {"UnitRequestCarryallDrop", 3},    // unit, x, y
	OpUnitSetMode:                {"UnitSetMode", 2},                // unit, mode
	OpHarvesterReturn:            {"HarvesterReturn", 1},            // unit
	OpStructureSetDeployPosition: {"StructureSetDeployPosition", 3}, // structure, x, y
	OpStructureRepair:            {"StructureRepair", 1},            // structure
	OpBuilderProduceItem:         {"BuilderProduceItem", 3},         // builder, item, multiple
	OpBuilderCancelItem:          {"BuilderCancelItem", 3},          // builder, item, multiple
	OpBuilderSetOnHold:           {"BuilderSetOnHold", 2},           // builder, onHold
	OpPalaceSpecialWeapon:        {"PalaceSpecialWeapon", 3},        // palace, x, y
	OpTurretAttackObject:         {"TurretAttackObject", 2},         // turret, target
	OpTestSync:                   {"TestSync", 2},                   // seed, tick
}

// Valid reports whether o is a known, executable opcode.
func (o Opcode) Valid() bool {
	return o > OpNone && o < opcodeCount
}

// ParamCount returns the number of parameters o requires, or -1 for
// unknown opcodes.
func (o Opcode) ParamCount() int {
	if !o.Valid() {
		return -1
	}
	return opcodes[o].params
}

// String returns the opcode name.
func (o Opcode) String() string {
	if o >= opcodeCount {
		return "Unknown"
	}
	return opcodes[o].name
}

// Opcodes lists every executable opcode in numeric order.
func Opcodes() []Opcode {
	ops := make([]Opcode, 0, opcodeCount-1)
	for o := OpNone + 1; o < opcodeCount; o++ {
		ops = append(ops, o)
	}
	return ops
}

// ParseOpcode resolves an opcode name as returned by String.
func ParseOpcode(name string) (Opcode, bool) {
	for o := OpNone + 1; o < opcodeCount; o++ {
		if opcodes[o].name == name {
			return o, true
		}
	}
	return OpNone, false
}
