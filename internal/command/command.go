package command

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/vovakirdan/dunesim/internal/stream"
)

// ErrInvalidCommand is the root of every command validation failure.
var ErrInvalidCommand = errors.New("command: invalid command")

// ErrUnknownOpcode marks records whose opcode is outside the enumeration.
var ErrUnknownOpcode = fmt.Errorf("%w: unknown opcode", ErrInvalidCommand)

// ValidationError describes why a command was rejected.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("command: %s: %s", e.Code, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidCommand.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidCommand
}

// Command is one player intent.
type Command struct {
	Opcode Opcode
	Params []uint32
}

// New builds a command and validates its parameter count.
func New(op Opcode, params ...uint32) (Command, error) {
	c := Command{Opcode: op, Params: params}
	if err := c.Validate(); err != nil {
		return Command{}, err
	}
	return c, nil
}

// Must is New for statically known commands; it panics on a programming error.
func Must(op Opcode, params ...uint32) Command {
	c, err := New(op, params...)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate checks the opcode and parameter count.
func (c Command) Validate() error {
	if !c.Opcode.Valid() {
		return fmt.Errorf("%w %d", ErrUnknownOpcode, uint32(c.Opcode))
	}
	if want := c.Opcode.ParamCount(); len(c.Params) != want {
		return &ValidationError{
			Code:    "param_count",
			Message: fmt.Sprintf("%s expects %d parameters, got %d", c.Opcode, want, len(c.Params)),
		}
	}
	return nil
}

// Param returns parameter i, or 0 when out of range.
func (c Command) Param(i int) uint32 {
	if i < 0 || i >= len(c.Params) {
		return 0
	}
	return c.Params[i]
}

// String renders the command for logs.
func (c Command) String() string {
	parts := make([]string, len(c.Params))
	for i, p := range c.Params {
		parts[i] = fmt.Sprint(p)
	}
	return fmt.Sprintf("%s(%s)", c.Opcode, strings.Join(parts, ","))
}

// MarshalBinary encodes the wire record: opcode followed by the parameters,
// each a little-endian uint32.
func (c Command) MarshalBinary() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	out := make([]byte, 4*(1+len(c.Params)))
	binary.LittleEndian.PutUint32(out, uint32(c.Opcode))
	for i, p := range c.Params {
		binary.LittleEndian.PutUint32(out[4*(i+1):], p)
	}
	return out, nil
}

// Unmarshal decodes a wire record. Records that are not a whole number of
// uint32 values, carry an unknown opcode, or have the wrong parameter count
// are rejected.
func Unmarshal(data []byte) (Command, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return Command{}, &ValidationError{
			Code:    "record_size",
			Message: fmt.Sprintf("record of %d bytes is not a sequence of uint32 values", len(data)),
		}
	}
	c := Command{Opcode: Opcode(binary.LittleEndian.Uint32(data))}
	n := len(data)/4 - 1
	if n > 0 {
		c.Params = make([]uint32, n)
		for i := range c.Params {
			c.Params[i] = binary.LittleEndian.Uint32(data[4*(i+1):])
		}
	}
	if err := c.Validate(); err != nil {
		return Command{}, err
	}
	return c, nil
}

// Save writes the command as a length-prefixed record.
func (c Command) Save(w *stream.Writer) {
	w.WriteUint32(uint32(c.Opcode))
	w.WriteUint32Slice(c.Params)
}

// Load reads a command written by Save.
func Load(r *stream.Reader) (Command, error) {
	c := Command{Opcode: Opcode(r.ReadUint32())}
	c.Params = r.ReadUint32Slice()
	if err := r.Err(); err != nil {
		return Command{}, err
	}
	if err := c.Validate(); err != nil {
		return Command{}, err
	}
	return c, nil
}
