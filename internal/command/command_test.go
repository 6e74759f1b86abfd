package command

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/vovakirdan/dunesim/internal/stream"
)

func TestParamCounts(t *testing.T) {
	tests := []struct {
		op       Opcode
		expected int
	}{
		{OpPlaceStructure, 4},
		{OpUnitMove2Pos, 4},
		{OpUnitMove2Object, 2},
		{OpUnitAttackPos, 3},
		{OpUnitSetMode, 2},
		{OpHarvesterReturn, 1},
		{OpBuilderProduceItem, 3},
		{OpTestSync, 2},
		{OpNone, -1},
		{Opcode(999), -1},
	}
	for _, tc := range tests {
		t.Run(tc.op.String(), func(t *testing.T) {
			if got := tc.op.ParamCount(); got != tc.expected {
				t.Errorf("ParamCount() = %d, expected %d", got, tc.expected)
			}
		})
	}
}

func TestParseOpcode(t *testing.T) {
	for _, op := range Opcodes() {
		got, ok := ParseOpcode(op.String())
		if !ok || got != op {
			t.Errorf("ParseOpcode(%q) = %v, %v", op.String(), got, ok)
		}
	}
	if _, ok := ParseOpcode("None"); ok {
		t.Error("ParseOpcode(None) accepted")
	}
}

func TestNewValidates(t *testing.T) {
	if _, err := New(OpUnitSetMode, 1, 2); err != nil {
		t.Errorf("valid command rejected: %v", err)
	}

	_, err := New(OpUnitSetMode, 1)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Code != "param_count" {
		t.Errorf("New with short params = %v, expected param_count ValidationError", err)
	}
	if !errors.Is(err, ErrInvalidCommand) {
		t.Error("validation error should match ErrInvalidCommand")
	}

	_, err = New(Opcode(77), 1)
	if !errors.Is(err, ErrUnknownOpcode) || !errors.Is(err, ErrInvalidCommand) {
		t.Errorf("unknown opcode error = %v", err)
	}
}

func TestWireRoundTrip(t *testing.T) {
	for _, op := range Opcodes() {
		params := make([]uint32, op.ParamCount())
		for i := range params {
			params[i] = uint32(i*1000 + 7)
		}
		c := Must(op, params...)

		data, err := c.MarshalBinary()
		if err != nil {
			t.Fatalf("%s: MarshalBinary: %v", op, err)
		}
		if len(data) != 4*(1+len(params)) {
			t.Errorf("%s: record is %d bytes", op, len(data))
		}
		got, err := Unmarshal(data)
		if err != nil {
			t.Fatalf("%s: Unmarshal: %v", op, err)
		}
		if got.String() != c.String() {
			t.Errorf("%s: round trip = %s, expected %s", op, got, c)
		}
	}
}

func TestUnmarshalRejects(t *testing.T) {
	record := func(words ...uint32) []byte {
		b := make([]byte, 4*len(words))
		for i, w := range words {
			binary.LittleEndian.PutUint32(b[4*i:], w)
		}
		return b
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"ragged length", append(record(uint32(OpHarvesterReturn), 5), 0x01)},
		{"unknown opcode", record(500, 1)},
		{"missing parameter", record(uint32(OpUnitMove2Pos), 1, 2, 3)},
		{"extra parameter", record(uint32(OpHarvesterReturn), 1, 2)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Unmarshal(tc.data); !errors.Is(err, ErrInvalidCommand) {
				t.Errorf("Unmarshal() error = %v, expected ErrInvalidCommand", err)
			}
		})
	}
}

type recorder struct {
	got []Entry
}

func (r *recorder) Execute(player int, cmd Command) {
	r.got = append(r.got, Entry{Player: uint8(player), Cmd: cmd})
}

func TestManagerOrdering(t *testing.T) {
	m := NewManager(2)

	// Scheduled out of tick order; same-tick entries must keep enqueue order
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(m.AddAt(5, 1, Must(OpHarvesterReturn, 10)))
	must(m.AddAt(3, 0, Must(OpHarvesterReturn, 20)))
	must(m.AddAt(5, 0, Must(OpHarvesterReturn, 30)))
	must(m.Add(3, 2, Must(OpHarvesterReturn, 40))) // lands on tick 5

	rec := &recorder{}
	for tick := uint32(0); tick < 5; tick++ {
		m.Apply(tick, rec)
	}
	if len(rec.got) != 1 || rec.got[0].Cmd.Param(0) != 20 {
		t.Fatalf("ticks 0-4 applied %v, expected only the tick 3 command", rec.got)
	}

	if n := m.Apply(5, rec); n != 3 {
		t.Fatalf("tick 5 applied %d, expected 3", n)
	}
	order := []uint32{10, 30, 40}
	for i, want := range order {
		if got := rec.got[i+1].Cmd.Param(0); got != want {
			t.Errorf("entry %d = %d, expected %d", i, got, want)
		}
	}
}

func TestManagerRejectsPastAndReadOnly(t *testing.T) {
	m := NewManager(0)
	m.Apply(0, &recorder{})
	m.Apply(1, &recorder{})

	if err := m.AddAt(1, 0, Must(OpStructureRepair, 1)); err == nil {
		t.Error("expected error scheduling an already applied tick")
	}

	m.SetReadOnly(true)
	if err := m.AddAt(9, 0, Must(OpStructureRepair, 1)); !errors.Is(err, ErrReadOnly) {
		t.Errorf("AddAt in replay mode = %v, expected ErrReadOnly", err)
	}

	// Invalid commands never reach the log
	m.SetReadOnly(false)
	if err := m.AddAt(9, 0, Command{Opcode: OpStructureRepair}); err == nil {
		t.Error("expected invalid command to be rejected")
	}
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d, expected 0", m.Pending())
	}
}

func TestManagerSaveLoad(t *testing.T) {
	m := NewManager(3)
	_ = m.AddAt(1, 0, Must(OpUnitSetMode, 4, 2))
	_ = m.AddAt(7, 1, Must(OpTestSync, 123, 7))
	m.Apply(1, &recorder{})

	var buf bytes.Buffer
	w := stream.NewWriter(&buf)
	m.Save(w)
	if err := w.Err(); err != nil {
		t.Fatal(err)
	}

	var loaded Manager
	if err := loaded.Load(stream.NewReader(&buf)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Cursor() != 1 || loaded.Pending() != 1 || loaded.Delay() != 3 {
		t.Errorf("loaded cursor=%d pending=%d delay=%d", loaded.Cursor(), loaded.Pending(), loaded.Delay())
	}
	rec := &recorder{}
	loaded.Apply(7, rec)
	if len(rec.got) != 1 || rec.got[0].Cmd.Opcode != OpTestSync || rec.got[0].Player != 1 {
		t.Errorf("replayed %v, expected the pending TestSync", rec.got)
	}
}
