package chip8

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	/// ErrIllegalOpcode is raised when no opcode table entry matches the
	/// fetched instruction.
	///
	ErrIllegalOpcode = errors.New("illegal opcode")

	/// ErrOutOfBounds is raised when an instruction indexes memory beyond
	/// the 4096 addressable bytes.
	///
	ErrOutOfBounds = errors.New("out of bounds access")

	/// ErrStackOverflow is raised when a CALL exceeds the configured
	/// call stack depth.
	///
	ErrStackOverflow = errors.New("stack overflow")

	/// ErrStackUnderflow is raised when RET executes with an empty stack.
	///
	ErrStackUnderflow = errors.New("stack underflow")
)

/// Fault is a fatal emulation error. It records the program counter and
/// opcode of the faulting instruction and wraps one of the sentinel
/// errors above, so errors.Is can identify the cause.
///
type Fault struct {
	PC     uint16
	Opcode uint16
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%04X: %s (opcode %04X)", f.PC, f.Err, f.Opcode)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
