package chip8

import "fmt"

/// Disassemble returns the assembly text for the instruction at addr,
/// prefixed with the address itself. Unprogrammed memory disassembles
/// to a bare address marker and unknown opcodes to "??".
///
func (vm *VM) Disassemble(addr uint16) string {
	if int(addr)+1 >= len(vm.Memory) {
		return ""
	}

	inst := uint16(vm.Memory[addr])<<8 | uint16(vm.Memory[addr+1])

	// end of program memory?
	if inst == 0 {
		return fmt.Sprintf("%04X -", addr)
	}

	// 12-bit address operand
	a := inst & 0xFFF

	// byte and nibble operands
	b := byte(inst & 0xFF)
	n := byte(inst & 0xF)

	// x and y register operands
	x := inst >> 8 & 0xF
	y := inst >> 4 & 0xF

	o, ok := decode(inst)
	if !ok {
		return fmt.Sprintf("%04X - ??", addr)
	}

	switch o {
	case opCls:
		return fmt.Sprintf("%04X - CLS", addr)
	case opRet:
		return fmt.Sprintf("%04X - RET", addr)
	case opSys:
		return fmt.Sprintf("%04X - SYS    #%04X", addr, a)
	case opJp:
		return fmt.Sprintf("%04X - JP     #%04X", addr, a)
	case opCall:
		return fmt.Sprintf("%04X - CALL   #%04X", addr, a)
	case opSeC:
		return fmt.Sprintf("%04X - SE     V%X, #%02X", addr, x, b)
	case opSneC:
		return fmt.Sprintf("%04X - SNE    V%X, #%02X", addr, x, b)
	case opSe:
		return fmt.Sprintf("%04X - SE     V%X, V%X", addr, x, y)
	case opLdC:
		return fmt.Sprintf("%04X - LD     V%X, #%02X", addr, x, b)
	case opAddC:
		return fmt.Sprintf("%04X - ADD    V%X, #%02X", addr, x, b)
	case opLd:
		return fmt.Sprintf("%04X - LD     V%X, V%X", addr, x, y)
	case opOr:
		return fmt.Sprintf("%04X - OR     V%X, V%X", addr, x, y)
	case opAnd:
		return fmt.Sprintf("%04X - AND    V%X, V%X", addr, x, y)
	case opXor:
		return fmt.Sprintf("%04X - XOR    V%X, V%X", addr, x, y)
	case opAdd:
		return fmt.Sprintf("%04X - ADD    V%X, V%X", addr, x, y)
	case opSub:
		return fmt.Sprintf("%04X - SUB    V%X, V%X", addr, x, y)
	case opShr:
		return fmt.Sprintf("%04X - SHR    V%X", addr, x)
	case opSubn:
		return fmt.Sprintf("%04X - SUBN   V%X, V%X", addr, x, y)
	case opShl:
		return fmt.Sprintf("%04X - SHL    V%X", addr, x)
	case opSne:
		return fmt.Sprintf("%04X - SNE    V%X, V%X", addr, x, y)
	case opLdI:
		return fmt.Sprintf("%04X - LD     I, #%04X", addr, a)
	case opJpV0:
		return fmt.Sprintf("%04X - JP     V0, #%04X", addr, a)
	case opRnd:
		return fmt.Sprintf("%04X - RND    V%X, #%02X", addr, x, b)
	case opDrw:
		return fmt.Sprintf("%04X - DRW    V%X, V%X, %d", addr, x, y, n)
	case opSkp:
		return fmt.Sprintf("%04X - SKP    V%X", addr, x)
	case opSknp:
		return fmt.Sprintf("%04X - SKNP   V%X", addr, x)
	case opLdDT:
		return fmt.Sprintf("%04X - LD     V%X, DT", addr, x)
	case opLdK:
		return fmt.Sprintf("%04X - LD     V%X, K", addr, x)
	case opSetDT:
		return fmt.Sprintf("%04X - LD     DT, V%X", addr, x)
	case opSetST:
		return fmt.Sprintf("%04X - LD     ST, V%X", addr, x)
	case opAddI:
		return fmt.Sprintf("%04X - ADD    I, V%X", addr, x)
	case opLdF:
		return fmt.Sprintf("%04X - LD     F, V%X", addr, x)
	case opBCD:
		return fmt.Sprintf("%04X - LD     B, V%X", addr, x)
	case opSaveRegs:
		return fmt.Sprintf("%04X - LD     [I], V%X", addr, x)
	case opLoadRegs:
		return fmt.Sprintf("%04X - LD     V%X, [I]", addr, x)
	}

	return fmt.Sprintf("%04X - ??", addr)
}
