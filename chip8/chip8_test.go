package chip8

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/assert"
)

// testVM builds a machine around the given program bytes with a
// deterministic random source.
func testVM(t *testing.T, program ...byte) *VM {
	t.Helper()

	vm, err := LoadROM(program, &Options{Seed: 1})
	assert.NoError(t, err)

	return vm
}

func TestLoadROM(t *testing.T) {
	vm := testVM(t, 0x60, 0x0A)

	assert.Equal(t, uint16(ProgramStart), vm.PC)
	assert.Equal(t, byte(0x60), vm.Memory[0x200])
	assert.Equal(t, byte(0x0A), vm.Memory[0x201])
	assert.Equal(t, fontset[:], vm.Memory[:80])
	assert.Equal(t, 0, len(vm.Stack))
}

func TestLoadROMTooLarge(t *testing.T) {
	_, err := LoadROM(make([]byte, 0x1000-ProgramStart+1), nil)
	assert.Error(t, err)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("testdata/does-not-exist.ch8", nil)
	assert.Error(t, err)
}

func TestStepAdvancesPC(t *testing.T) {
	vm := testVM(t, 0x61, 0x0A)

	assert.NoError(t, vm.Step())

	assert.Equal(t, uint16(0x202), vm.PC)
	assert.Equal(t, byte(0x0A), vm.V[1])
}

func TestJump(t *testing.T) {
	vm := testVM(t, 0x13, 0x00)

	assert.NoError(t, vm.Step())

	assert.Equal(t, uint16(0x300), vm.PC)
}

func TestJumpV0(t *testing.T) {
	vm := testVM(t, 0xB3, 0x00)
	vm.V[0] = 4

	assert.NoError(t, vm.Step())

	assert.Equal(t, uint16(0x304), vm.PC)
}

func TestCallAndReturn(t *testing.T) {
	// call 0x204 where a lone RET awaits
	vm := testVM(t, 0x22, 0x04, 0x00, 0x00, 0x00, 0xEE)

	assert.NoError(t, vm.Step())
	assert.Equal(t, uint16(0x204), vm.PC)
	assert.Equal(t, 1, len(vm.Stack))
	assert.Equal(t, uint16(0x200), vm.Stack[0])

	assert.NoError(t, vm.Step())
	assert.Equal(t, uint16(0x202), vm.PC)
	assert.Equal(t, 0, len(vm.Stack))
}

func TestStackOverflow(t *testing.T) {
	// a subroutine calling itself never returns
	vm, err := LoadROM([]byte{0x22, 0x00}, &Options{StackDepth: 2, Seed: 1})
	assert.NoError(t, err)

	assert.NoError(t, vm.Step())
	assert.NoError(t, vm.Step())

	err = vm.Step()
	assert.True(t, errors.Is(err, ErrStackOverflow))

	var fault *Fault
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, uint16(0x200), fault.PC)
	assert.Equal(t, uint16(0x2200), fault.Opcode)
}

func TestStackUnderflow(t *testing.T) {
	vm := testVM(t, 0x00, 0xEE)

	err := vm.Step()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name    string
		opcode  uint16
		setup   func(vm *VM)
		skipped bool
	}{
		{"se constant taken", 0x3005, func(vm *VM) { vm.V[0] = 5 }, true},
		{"se constant not taken", 0x3005, func(vm *VM) { vm.V[0] = 6 }, false},
		{"sne constant taken", 0x4005, func(vm *VM) { vm.V[0] = 6 }, true},
		{"sne constant not taken", 0x4005, func(vm *VM) { vm.V[0] = 5 }, false},
		{"se register taken", 0x5120, func(vm *VM) { vm.V[1], vm.V[2] = 7, 7 }, true},
		{"se register not taken", 0x5120, func(vm *VM) { vm.V[1], vm.V[2] = 7, 8 }, false},
		{"sne register taken", 0x9120, func(vm *VM) { vm.V[1], vm.V[2] = 7, 8 }, true},
		{"sne register not taken", 0x9120, func(vm *VM) { vm.V[1], vm.V[2] = 7, 7 }, false},
		{"skp taken", 0xE29E, func(vm *VM) { vm.V[2] = 4; vm.PressKey(4) }, true},
		{"skp not taken", 0xE29E, func(vm *VM) { vm.V[2] = 4 }, false},
		{"sknp taken", 0xE2A1, func(vm *VM) { vm.V[2] = 4 }, true},
		{"sknp not taken", 0xE2A1, func(vm *VM) { vm.V[2] = 4; vm.PressKey(4) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := testVM(t, byte(tt.opcode>>8), byte(tt.opcode))
			tt.setup(vm)

			assert.NoError(t, vm.Step())

			want := uint16(0x202)
			if tt.skipped {
				want = 0x204
			}
			assert.Equal(t, want, vm.PC)
		})
	}
}

func TestAddSubFlags(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		vx, vy byte
		want   byte
		flag   byte
	}{
		{"add no carry", 0x8124, 20, 30, 50, 0},
		{"add carry wraps", 0x8124, 200, 100, 44, 1},
		{"add carry to zero", 0x8124, 255, 1, 0, 1},
		{"sub no borrow", 0x8125, 30, 20, 10, 1},
		{"sub equal no borrow", 0x8125, 20, 20, 0, 1},
		{"sub borrow wraps", 0x8125, 20, 30, 246, 0},
		{"subn no borrow", 0x8127, 20, 30, 10, 1},
		{"subn borrow wraps", 0x8127, 30, 20, 246, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := testVM(t, byte(tt.opcode>>8), byte(tt.opcode))
			vm.V[1] = tt.vx
			vm.V[2] = tt.vy

			assert.NoError(t, vm.Step())

			assert.Equal(t, tt.want, vm.V[1])
			assert.Equal(t, tt.flag, vm.V[0xF])
		})
	}
}

func TestShifts(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		vx     byte
		want   byte
		flag   byte
	}{
		{"shr keeps low bit", 0x8106, 0x05, 0x02, 1},
		{"shr even", 0x8106, 0x04, 0x02, 0},
		{"shl keeps high bit", 0x810E, 0x81, 0x02, 1},
		{"shl low value", 0x810E, 0x40, 0x80, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := testVM(t, byte(tt.opcode>>8), byte(tt.opcode))
			vm.V[1] = tt.vx

			assert.NoError(t, vm.Step())

			assert.Equal(t, tt.want, vm.V[1])
			assert.Equal(t, tt.flag, vm.V[0xF])
		})
	}
}

func TestBitwise(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		vx, vy byte
		want   byte
	}{
		{"or", 0x8121, 0xF0, 0x0F, 0xFF},
		{"and", 0x8122, 0xCC, 0x0F, 0x0C},
		{"xor", 0x8123, 0xFF, 0x0F, 0xF0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := testVM(t, byte(tt.opcode>>8), byte(tt.opcode))
			vm.V[1] = tt.vx
			vm.V[2] = tt.vy
			vm.V[0xF] = 9

			assert.NoError(t, vm.Step())

			assert.Equal(t, tt.want, vm.V[1])

			// bitwise ops do not define the flag
			assert.Equal(t, byte(9), vm.V[0xF])
		})
	}
}

func TestAddConstantNoFlag(t *testing.T) {
	vm := testVM(t, 0x71, 0x01)
	vm.V[1] = 255
	vm.V[0xF] = 9

	assert.NoError(t, vm.Step())

	assert.Equal(t, byte(0), vm.V[1])
	assert.Equal(t, byte(9), vm.V[0xF])
}

func TestLoadRegisters(t *testing.T) {
	vm := testVM(t, 0x61, 0x2A, 0x82, 0x10)

	assert.NoError(t, vm.Step())
	assert.NoError(t, vm.Step())

	assert.Equal(t, byte(0x2A), vm.V[1])
	assert.Equal(t, byte(0x2A), vm.V[2])
}

func TestRnd(t *testing.T) {
	vm := testVM(t, 0xC1, 0x0F)

	assert.NoError(t, vm.Step())

	// the mask clears the high nibble
	assert.Equal(t, byte(0), vm.V[1]&0xF0)

	// same seed, same sequence
	other := testVM(t, 0xC1, 0x0F)
	assert.NoError(t, other.Step())
	assert.Equal(t, vm.V[1], other.V[1])
}

func TestLoadI(t *testing.T) {
	vm := testVM(t, 0xA3, 0x21)

	assert.NoError(t, vm.Step())

	assert.Equal(t, uint16(0x321), vm.I)
}

func TestAddToI(t *testing.T) {
	tests := []struct {
		name string
		i    uint16
		vx   byte
		want uint16
		flag byte
	}{
		{"no overflow", 0x100, 5, 0x105, 0},
		{"overflow wraps to zero", 0xFFF, 1, 0x000, 1},
		{"overflow wraps", 0xFFE, 5, 0x003, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := testVM(t, 0xF1, 0x1E)
			vm.I = tt.i
			vm.V[1] = tt.vx

			assert.NoError(t, vm.Step())

			assert.Equal(t, tt.want, vm.I)
			assert.Equal(t, tt.flag, vm.V[0xF])
		})
	}
}

func TestFontLookup(t *testing.T) {
	vm := testVM(t, 0xF0, 0x29)

	// only the low nibble selects the glyph
	vm.V[0] = 0xAB

	assert.NoError(t, vm.Step())

	assert.Equal(t, uint16(0xB*5), vm.I)
	assert.Equal(t, fontset[0xB*5:0xB*5+5], vm.Memory[vm.I:vm.I+5])
}

func TestBCD(t *testing.T) {
	tests := []struct {
		name   string
		value  byte
		digits [3]byte
	}{
		{"three digits", 234, [3]byte{2, 3, 4}},
		{"two digits", 42, [3]byte{0, 4, 2}},
		{"one digit", 7, [3]byte{0, 0, 7}},
		{"zero", 0, [3]byte{0, 0, 0}},
		{"max", 255, [3]byte{2, 5, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := testVM(t, 0xF5, 0x33)
			vm.V[5] = tt.value
			vm.I = 0x300

			assert.NoError(t, vm.Step())

			assert.Equal(t, tt.digits[0], vm.Memory[0x300])
			assert.Equal(t, tt.digits[1], vm.Memory[0x301])
			assert.Equal(t, tt.digits[2], vm.Memory[0x302])
		})
	}
}

func TestBCDOutOfBounds(t *testing.T) {
	vm := testVM(t, 0xF5, 0x33)
	vm.I = 0xFFE

	err := vm.Step()
	assert.True(t, errors.Is(err, ErrOutOfBounds))
}

func TestBlockTransferRoundTrip(t *testing.T) {
	vm := testVM(t, 0xF3, 0x55, 0xF3, 0x65)
	vm.V[0], vm.V[1], vm.V[2], vm.V[3] = 1, 2, 3, 4
	vm.V[4] = 99
	vm.I = 0x400

	assert.NoError(t, vm.Step())

	assert.Equal(t, []byte{1, 2, 3, 4}, vm.Memory[0x400:0x404])

	// the transfer is inclusive of VX and no further
	assert.Equal(t, byte(0), vm.Memory[0x404])

	vm.V = [16]byte{}

	assert.NoError(t, vm.Step())

	assert.Equal(t, byte(1), vm.V[0])
	assert.Equal(t, byte(2), vm.V[1])
	assert.Equal(t, byte(3), vm.V[2])
	assert.Equal(t, byte(4), vm.V[3])
	assert.Equal(t, byte(0), vm.V[4])
}

func TestBlockTransferOutOfBounds(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
	}{
		{"store", 0xF355},
		{"load", 0xF365},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := testVM(t, byte(tt.opcode>>8), byte(tt.opcode))
			vm.I = 0xFFD

			err := vm.Step()
			assert.True(t, errors.Is(err, ErrOutOfBounds))
		})
	}
}

func TestDrawCollision(t *testing.T) {
	// drawing the same 8x1 sprite twice first sets, then clears it
	vm := testVM(t, 0xD0, 0x11, 0xD0, 0x11)
	vm.I = 0x300
	vm.Memory[0x300] = 0xFF

	assert.NoError(t, vm.Step())

	assert.Equal(t, byte(0), vm.V[0xF])
	for x := 0; x < 8; x++ {
		assert.True(t, vm.Pixel(x, 0))
	}

	assert.NoError(t, vm.Step())

	assert.Equal(t, byte(1), vm.V[0xF])
	for x := 0; x < 8; x++ {
		assert.False(t, vm.Pixel(x, 0))
	}
}

func TestDrawPacking(t *testing.T) {
	vm := testVM(t, 0xD0, 0x11)
	vm.I = 0x300
	vm.Memory[0x300] = 0x80

	assert.NoError(t, vm.Step())

	// pixel <0,0> is the MSB of the first framebuffer byte
	assert.Equal(t, byte(0x80), vm.Framebuffer()[0])
	assert.True(t, vm.Pixel(0, 0))
	assert.False(t, vm.Pixel(1, 0))
}

func TestDrawWrapsHorizontally(t *testing.T) {
	vm := testVM(t, 0xD0, 0x11)
	vm.I = 0x300
	vm.Memory[0x300] = 0xFF
	vm.V[0] = 60

	assert.NoError(t, vm.Step())

	for _, x := range []int{60, 61, 62, 63, 0, 1, 2, 3} {
		assert.True(t, vm.Pixel(x, 0))
	}
	assert.False(t, vm.Pixel(4, 0))
	assert.Equal(t, byte(0), vm.V[0xF])
}

func TestDrawWrapsVertically(t *testing.T) {
	vm := testVM(t, 0xD0, 0x12)
	vm.I = 0x300
	vm.Memory[0x300] = 0x80
	vm.Memory[0x301] = 0x80
	vm.V[1] = 31

	assert.NoError(t, vm.Step())

	assert.True(t, vm.Pixel(0, 31))
	assert.True(t, vm.Pixel(0, 0))
}

func TestDrawSpriteReadOutOfBounds(t *testing.T) {
	vm := testVM(t, 0xD0, 0x12)
	vm.I = 0xFFF

	err := vm.Step()
	assert.True(t, errors.Is(err, ErrOutOfBounds))
}

func TestClearScreen(t *testing.T) {
	vm := testVM(t, 0xD0, 0x11, 0x00, 0xE0)
	vm.I = 0x300
	vm.Memory[0x300] = 0xFF

	assert.NoError(t, vm.Step())
	assert.NoError(t, vm.Step())

	var empty [DisplayWidth * DisplayHeight / 8]byte
	assert.Equal(t, empty, vm.Framebuffer())
}

func TestTimersTick(t *testing.T) {
	vm := testVM(t)
	vm.DT = 2
	vm.ST = 1

	vm.TickTimers()
	assert.Equal(t, byte(1), vm.DT)
	assert.Equal(t, byte(0), vm.ST)

	vm.TickTimers()
	assert.Equal(t, byte(0), vm.DT)

	// timers never go below zero
	vm.TickTimers()
	assert.Equal(t, byte(0), vm.DT)
	assert.Equal(t, byte(0), vm.ST)
}

func TestTimerInstructions(t *testing.T) {
	vm := testVM(t, 0xF1, 0x15, 0xF2, 0x18, 0xF3, 0x07)
	vm.V[1] = 9
	vm.V[2] = 5

	assert.NoError(t, vm.Step())
	assert.Equal(t, byte(9), vm.DT)

	assert.NoError(t, vm.Step())
	assert.Equal(t, byte(5), vm.ST)

	assert.NoError(t, vm.Step())
	assert.Equal(t, byte(9), vm.V[3])
}

func TestWaitKey(t *testing.T) {
	vm := testVM(t, 0xF5, 0x0A, 0x61, 0x07)

	assert.NoError(t, vm.Step())
	assert.True(t, vm.Waiting())
	assert.Equal(t, uint16(0x202), vm.PC)

	// suspended: stepping makes no progress
	assert.NoError(t, vm.Step())
	assert.Equal(t, uint16(0x202), vm.PC)

	vm.PressKey(7)
	assert.False(t, vm.Waiting())
	assert.Equal(t, byte(7), vm.V[5])

	// execution resumes with the following instruction
	assert.NoError(t, vm.Step())
	assert.Equal(t, byte(7), vm.V[1])
}

func TestWaitKeyNeedsFreshPress(t *testing.T) {
	vm := testVM(t, 0xF5, 0x0A)

	// key held before the wait begins must not resolve it
	vm.PressKey(3)

	assert.NoError(t, vm.Step())
	assert.True(t, vm.Waiting())

	vm.PressKey(3)
	assert.True(t, vm.Waiting())

	vm.ReleaseKey(3)
	vm.PressKey(3)
	assert.False(t, vm.Waiting())
	assert.Equal(t, byte(3), vm.V[5])
}

func TestWaitKeySetKeys(t *testing.T) {
	vm := testVM(t, 0xF0, 0x0A)

	assert.NoError(t, vm.Step())
	assert.True(t, vm.Waiting())

	var keys [16]bool
	keys[0xC] = true
	vm.SetKeys(keys)

	assert.False(t, vm.Waiting())
	assert.Equal(t, byte(0xC), vm.V[0])
	assert.True(t, vm.Keys[0xC])
}

func TestRunStopsWhileWaiting(t *testing.T) {
	vm := testVM(t, 0xF0, 0x0A, 0x61, 0x01)

	assert.NoError(t, vm.Run(4))

	assert.True(t, vm.Waiting())
	assert.Equal(t, uint16(0x202), vm.PC)

	// the burst was cut short before the load
	assert.Equal(t, byte(0), vm.V[1])
}

func TestIllegalOpcode(t *testing.T) {
	vm := testVM(t, 0x80, 0x08)

	err := vm.Step()
	assert.True(t, errors.Is(err, ErrIllegalOpcode))

	var fault *Fault
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, uint16(0x200), fault.PC)
	assert.Equal(t, uint16(0x8008), fault.Opcode)
}

func TestNativeCallIsNoop(t *testing.T) {
	vm := testVM(t, 0x01, 0x23)

	assert.NoError(t, vm.Step())

	assert.Equal(t, uint16(0x202), vm.PC)
	assert.Equal(t, [16]byte{}, vm.V)
}

func TestFetchOutOfBounds(t *testing.T) {
	vm := testVM(t)
	vm.PC = 0xFFF

	err := vm.Step()
	assert.True(t, errors.Is(err, ErrOutOfBounds))
}

func TestFlagIsAlwaysZeroOrOne(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		setup  func(vm *VM)
	}{
		{"add register", 0x8124, func(vm *VM) { vm.V[1], vm.V[2] = 200, 100 }},
		{"add into flag register", 0x8F14, func(vm *VM) { vm.V[0xF], vm.V[1] = 200, 100 }},
		{"sub", 0x8125, func(vm *VM) { vm.V[1], vm.V[2] = 20, 30 }},
		{"sub into flag register", 0x8F15, func(vm *VM) { vm.V[0xF], vm.V[1] = 20, 30 }},
		{"shr", 0x8106, func(vm *VM) { vm.V[1] = 0xFF }},
		{"shr flag register", 0x8F06, func(vm *VM) { vm.V[0xF] = 0xFF }},
		{"subn", 0x8127, func(vm *VM) { vm.V[1], vm.V[2] = 30, 20 }},
		{"shl", 0x810E, func(vm *VM) { vm.V[1] = 0xFF }},
		{"shl flag register", 0x8F0E, func(vm *VM) { vm.V[0xF] = 0xFF }},
		{"add i", 0xF11E, func(vm *VM) { vm.I, vm.V[1] = 0xFFF, 0xFF }},
		{"draw", 0xD011, func(vm *VM) { vm.I = 0x300; vm.Memory[0x300] = 0xFF }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := testVM(t, byte(tt.opcode>>8), byte(tt.opcode))
			vm.V[0xF] = 0xAA
			tt.setup(vm)

			assert.NoError(t, vm.Step())

			assert.True(t, vm.V[0xF] <= 1)
		})
	}
}

func TestReset(t *testing.T) {
	vm := testVM(t, 0x22, 0x04, 0x00, 0x00, 0x00, 0xEE)

	assert.NoError(t, vm.Step())
	vm.V[3] = 9
	vm.I = 0x123
	vm.DT = 3
	vm.ST = 4
	vm.PressKey(2)
	vm.video[0] = 0x80
	vm.wait = 5

	vm.Reset()

	assert.Equal(t, uint16(ProgramStart), vm.PC)
	assert.Equal(t, 0, len(vm.Stack))
	assert.Equal(t, [16]byte{}, vm.V)
	assert.Equal(t, uint16(0), vm.I)
	assert.Equal(t, byte(0), vm.DT)
	assert.Equal(t, byte(0), vm.ST)
	assert.False(t, vm.Keys[2])
	assert.False(t, vm.Pixel(0, 0))
	assert.False(t, vm.Waiting())

	// the program and font survive a reset
	assert.Equal(t, byte(0x22), vm.Memory[0x200])
	assert.Equal(t, fontset[0], vm.Memory[0])
}

func TestTraceHook(t *testing.T) {
	vm := testVM(t, 0x61, 0x02, 0x12, 0x00)

	var got []uint16
	vm.Trace = func(pc, opcode uint16) {
		got = append(got, pc, opcode)
	}

	assert.NoError(t, vm.Step())
	assert.NoError(t, vm.Step())

	assert.Equal(t, []uint16{0x200, 0x6102, 0x202, 0x1200}, got)
}
