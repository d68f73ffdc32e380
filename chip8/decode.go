package chip8

/// op enumerates the 35 CHIP-8 instructions. Every fetched opcode maps
/// to exactly one variant; execution is a switch over them.
///
type op uint8

const (
	opSys  op = iota // 0NNN - legacy native call, decoded as a no-op
	opCls            // 00E0 - clear the display
	opRet            // 00EE - return from subroutine
	opJp             // 1NNN - jump to address
	opCall           // 2NNN - call subroutine
	opSeC            // 3XNN - skip if vx == nn
	opSneC           // 4XNN - skip if vx != nn
	opSe             // 5XY0 - skip if vx == vy
	opLdC            // 6XNN - load nn into vx
	opAddC           // 7XNN - add nn to vx, no carry
	opLd             // 8XY0 - load vy into vx
	opOr             // 8XY1 - vx |= vy
	opAnd            // 8XY2 - vx &= vy
	opXor            // 8XY3 - vx ^= vy
	opAdd            // 8XY4 - vx += vy with carry
	opSub            // 8XY5 - vx -= vy with no-borrow flag
	opShr            // 8XY6 - vx >>= 1, flag is old bit 0
	opSubn           // 8XY7 - vx = vy - vx with no-borrow flag
	opShl            // 8XYE - vx <<= 1, flag is old bit 7
	opSne            // 9XY0 - skip if vx != vy
	opLdI            // ANNN - load address into i
	opJpV0           // BNNN - jump to address + v0
	opRnd            // CXNN - vx = random byte & nn
	opDrw            // DXYN - draw n-row sprite at vx, vy
	opSkp            // EX9E - skip if key(vx) pressed
	opSknp           // EXA1 - skip if key(vx) not pressed
	opLdDT           // FX07 - vx = delay timer
	opLdK            // FX0A - wait for a key press into vx
	opSetDT          // FX15 - delay timer = vx
	opSetST          // FX18 - sound timer = vx
	opAddI           // FX1E - i += vx with overflow flag
	opLdF            // FX29 - i = font sprite of vx
	opBCD            // FX33 - store BCD of vx at i..i+2
	opSaveRegs       // FX55 - store v0..vx at i
	opLoadRegs       // FX65 - load v0..vx from i
)

/// pattern matches an opcode family: the instruction belongs to it when
/// opcode & mask == bits.
///
type pattern struct {
	mask uint16
	bits uint16
	op   op
}

/// opcodes is the decode table, ordered from the most specific mask to
/// the least specific one. 00E0 and 00EE must be tried before the 0NNN
/// family swallows every opcode with a zero high nibble.
///
var opcodes = [...]pattern{
	{0xFFFF, 0x00E0, opCls},
	{0xFFFF, 0x00EE, opRet},
	{0xF0FF, 0xE09E, opSkp},
	{0xF0FF, 0xE0A1, opSknp},
	{0xF0FF, 0xF007, opLdDT},
	{0xF0FF, 0xF00A, opLdK},
	{0xF0FF, 0xF015, opSetDT},
	{0xF0FF, 0xF018, opSetST},
	{0xF0FF, 0xF01E, opAddI},
	{0xF0FF, 0xF029, opLdF},
	{0xF0FF, 0xF033, opBCD},
	{0xF0FF, 0xF055, opSaveRegs},
	{0xF0FF, 0xF065, opLoadRegs},
	{0xF00F, 0x5000, opSe},
	{0xF00F, 0x8000, opLd},
	{0xF00F, 0x8001, opOr},
	{0xF00F, 0x8002, opAnd},
	{0xF00F, 0x8003, opXor},
	{0xF00F, 0x8004, opAdd},
	{0xF00F, 0x8005, opSub},
	{0xF00F, 0x8006, opShr},
	{0xF00F, 0x8007, opSubn},
	{0xF00F, 0x800E, opShl},
	{0xF00F, 0x9000, opSne},
	{0xF000, 0x0000, opSys},
	{0xF000, 0x1000, opJp},
	{0xF000, 0x2000, opCall},
	{0xF000, 0x3000, opSeC},
	{0xF000, 0x4000, opSneC},
	{0xF000, 0x6000, opLdC},
	{0xF000, 0x7000, opAddC},
	{0xF000, 0xA000, opLdI},
	{0xF000, 0xB000, opJpV0},
	{0xF000, 0xC000, opRnd},
	{0xF000, 0xD000, opDrw},
}

/// decode maps a 16-bit opcode to its instruction. The second return is
/// false when no table entry matches.
///
func decode(inst uint16) (op, bool) {
	for _, p := range opcodes {
		if inst&p.mask == p.bits {
			return p.op, true
		}
	}

	return 0, false
}
