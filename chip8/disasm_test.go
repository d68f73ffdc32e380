package chip8

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDisassemble(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		want string
	}{
		{"empty memory", []byte{0x00, 0x00}, "0200 -"},
		{"cls", []byte{0x00, 0xE0}, "0200 - CLS"},
		{"ret", []byte{0x00, 0xEE}, "0200 - RET"},
		{"sys", []byte{0x01, 0x23}, "0200 - SYS    #0123"},
		{"jp", []byte{0x13, 0x00}, "0200 - JP     #0300"},
		{"call", []byte{0x23, 0x00}, "0200 - CALL   #0300"},
		{"se constant", []byte{0x31, 0x0A}, "0200 - SE     V1, #0A"},
		{"sne constant", []byte{0x41, 0x0A}, "0200 - SNE    V1, #0A"},
		{"se register", []byte{0x51, 0x20}, "0200 - SE     V1, V2"},
		{"ld constant", []byte{0x61, 0x0A}, "0200 - LD     V1, #0A"},
		{"add constant", []byte{0x71, 0x0A}, "0200 - ADD    V1, #0A"},
		{"shr", []byte{0x81, 0x06}, "0200 - SHR    V1"},
		{"shl", []byte{0x81, 0x0E}, "0200 - SHL    V1"},
		{"ld i", []byte{0xA3, 0x00}, "0200 - LD     I, #0300"},
		{"jp v0", []byte{0xB3, 0x00}, "0200 - JP     V0, #0300"},
		{"rnd", []byte{0xC1, 0xFF}, "0200 - RND    V1, #FF"},
		{"drw", []byte{0xD1, 0x25}, "0200 - DRW    V1, V2, 5"},
		{"skp", []byte{0xE1, 0x9E}, "0200 - SKP    V1"},
		{"sknp", []byte{0xE1, 0xA1}, "0200 - SKNP   V1"},
		{"ld key", []byte{0xF5, 0x0A}, "0200 - LD     V5, K"},
		{"font", []byte{0xF5, 0x29}, "0200 - LD     F, V5"},
		{"bcd", []byte{0xF5, 0x33}, "0200 - LD     B, V5"},
		{"save regs", []byte{0xF3, 0x55}, "0200 - LD     [I], V3"},
		{"load regs", []byte{0xF3, 0x65}, "0200 - LD     V3, [I]"},
		{"unknown", []byte{0x8A, 0xB8}, "0200 - ??"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := testVM(t, tt.code...)
			assert.Equal(t, tt.want, vm.Disassemble(ProgramStart))
		})
	}
}

func TestDisassembleOutOfRange(t *testing.T) {
	vm := testVM(t)
	assert.Equal(t, "", vm.Disassemble(0xFFF))
}
