package chip8

import (
	"math/rand"
	"os"
	"time"

	"github.com/pkg/errors"
)

const (
	/// ProgramStart is the address where loaded programs begin.
	///
	ProgramStart = 0x200

	/// DisplayWidth and DisplayHeight are the framebuffer dimensions
	/// in pixels.
	///
	DisplayWidth  = 64
	DisplayHeight = 32

	/// DefaultStackDepth is the call stack limit of the original
	/// hardware, used unless Options overrides it.
	///
	DefaultStackDepth = 16
)

/// TraceFunc receives the address and opcode of every instruction about
/// to execute.
///
type TraceFunc func(pc, opcode uint16)

/// Options configure a virtual machine at load time. The zero value of
/// every field selects a sensible default.
///
type Options struct {
	/// StackDepth is the maximum call depth. 16 when zero.
	///
	StackDepth int

	/// Seed for the random source used by the RND instruction. The
	/// wall clock seeds it when zero.
	///
	Seed int64
}

/// VM is a CHIP-8 virtual machine.
///
type VM struct {
	/// ROM is the pristine memory image built at load time: font
	/// sprites in the interpreter region, program bytes from 0x200.
	/// Reset restores Memory from it.
	///
	ROM [0x1000]byte

	/// Memory addressable by the interpreter. The first 512 bytes are
	/// reserved; the font sprites live at the bottom of them.
	///
	Memory [0x1000]byte

	/// V are the 16 virtual registers. VF doubles as the carry,
	/// borrow and collision flag.
	///
	V [16]byte

	/// I is the address register.
	///
	I uint16

	/// PC is the program counter. It advances by 2 after every
	/// executed instruction; jumps and calls account for that by
	/// targeting 2 bytes short.
	///
	PC uint16

	/// Stack holds the return addresses pushed by CALL, most recent
	/// last. Its capacity is fixed at load time.
	///
	Stack []uint16

	/// DT and ST are the delay and sound countdown timers. TickTimers
	/// decrements them at the host frame rate.
	///
	DT byte
	ST byte

	/// Keys holds the pressed state of the 16-key pad.
	///
	Keys [16]bool

	/// Trace, when not nil, is called with every instruction about to
	/// execute.
	///
	Trace TraceFunc

	// video is the packed 64x32 framebuffer, one bit per pixel, row
	// major, MSB first. Pixel <0,0> is bit 0x80 of byte 0.
	video [DisplayWidth * DisplayHeight / 8]byte

	// wait is the register index a key press resolves into while the
	// machine is suspended by LD VX, K. -1 while running.
	wait int

	maxStack int
	rng      *rand.Rand
}

/// LoadROM builds a virtual machine from a program image. A nil opts
/// selects all defaults.
///
func LoadROM(program []byte, opts *Options) (*VM, error) {
	if len(program) > 0x1000-ProgramStart {
		return nil, errors.Errorf("program too large: %d bytes, %d available", len(program), 0x1000-ProgramStart)
	}

	vm := &VM{
		maxStack: DefaultStackDepth,
	}

	seed := time.Now().UnixNano()
	if opts != nil {
		if opts.StackDepth > 0 {
			vm.maxStack = opts.StackDepth
		}
		if opts.Seed != 0 {
			seed = opts.Seed
		}
	}

	vm.rng = rand.New(rand.NewSource(seed))
	vm.Stack = make([]uint16, 0, vm.maxStack)

	// font sprites occupy the bottom of the interpreter region
	copy(vm.ROM[:], fontset[:])

	// the program itself lands at 0x200
	copy(vm.ROM[ProgramStart:], program)

	vm.Reset()

	return vm, nil
}

/// LoadFile builds a virtual machine from a ROM file.
///
func LoadFile(path string, opts *Options) (*VM, error) {
	program, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading rom %q", path)
	}

	return LoadROM(program, opts)
}

/// Reset restores the machine to its power-on state: memory is rebuilt
/// from the load image, registers and timers clear, the display blanks
/// and the program counter returns to 0x200.
///
func (vm *VM) Reset() {
	copy(vm.Memory[:], vm.ROM[:])

	vm.V = [16]byte{}
	vm.I = 0
	vm.PC = ProgramStart
	vm.Stack = vm.Stack[:0]

	vm.DT = 0
	vm.ST = 0

	vm.Keys = [16]bool{}
	vm.video = [DisplayWidth * DisplayHeight / 8]byte{}

	// not waiting for a key
	vm.wait = -1
}

/// Run executes up to cycles instructions. It stops early when the
/// machine suspends waiting for a key press or an instruction faults.
///
func (vm *VM) Run(cycles int) error {
	for i := 0; i < cycles; i++ {
		if vm.wait >= 0 {
			return nil
		}

		if err := vm.Step(); err != nil {
			return err
		}
	}

	return nil
}

/// Step executes a single instruction: fetch at PC, decode, execute,
/// then advance PC by 2. While the machine waits for a key press Step
/// does nothing. A returned error is always a *Fault and ends emulation.
///
func (vm *VM) Step() error {
	if vm.wait >= 0 {
		return nil
	}

	inst, err := vm.fetch()
	if err != nil {
		return &Fault{PC: vm.PC, Err: err}
	}

	o, ok := decode(inst)
	if !ok {
		return &Fault{PC: vm.PC, Opcode: inst, Err: ErrIllegalOpcode}
	}

	if vm.Trace != nil {
		vm.Trace(vm.PC, inst)
	}

	if err := vm.exec(o, inst); err != nil {
		return &Fault{PC: vm.PC, Opcode: inst, Err: err}
	}

	// every instruction ends with the uniform advance
	vm.PC += 2

	return nil
}

/// TickTimers decrements both countdown timers, stopping at zero. The
/// host calls it once per 60 Hz frame.
///
func (vm *VM) TickTimers() {
	if vm.DT > 0 {
		vm.DT--
	}

	if vm.ST > 0 {
		vm.ST--
	}
}

/// Waiting reports whether execution is suspended until a key press.
///
func (vm *VM) Waiting() bool {
	return vm.wait >= 0
}

/// SetKeys replaces the entire key latch, as a host does once per frame.
///
func (vm *VM) SetKeys(keys [16]bool) {
	for k, down := range keys {
		vm.setKey(uint(k), down)
	}
}

/// PressKey emulates a pad key going down.
///
func (vm *VM) PressKey(key uint) {
	vm.setKey(key, true)
}

/// ReleaseKey emulates a pad key coming back up.
///
func (vm *VM) ReleaseKey(key uint) {
	vm.setKey(key, false)
}

/// setKey updates one key. A released-to-pressed transition resumes a
/// suspended machine; a key already held when the wait began does not.
///
func (vm *VM) setKey(key uint, down bool) {
	if key > 0xF {
		return
	}

	if down && !vm.Keys[key] && vm.wait >= 0 {
		vm.V[vm.wait] = byte(key)
		vm.wait = -1
	}

	vm.Keys[key] = down
}

/// Pixel reports the framebuffer bit at x, y. Coordinates must be
/// within 64x32.
///
func (vm *VM) Pixel(x, y int) bool {
	p := y*DisplayWidth + x

	return vm.video[p>>3]&(0x80>>uint(p&7)) != 0
}

/// Framebuffer returns a copy of the packed video memory: one bit per
/// pixel, row major, MSB first.
///
func (vm *VM) Framebuffer() [DisplayWidth * DisplayHeight / 8]byte {
	return vm.video
}

/// fetch reads the 16-bit instruction at PC without advancing it.
///
func (vm *VM) fetch() (uint16, error) {
	if int(vm.PC)+1 >= len(vm.Memory) {
		return 0, ErrOutOfBounds
	}

	return uint16(vm.Memory[vm.PC])<<8 | uint16(vm.Memory[vm.PC+1]), nil
}

/// exec applies a single decoded instruction to the machine state.
///
func (vm *VM) exec(o op, inst uint16) error {
	// 12-bit address operand
	a := inst & 0xFFF

	// byte and nibble operands
	b := byte(inst & 0xFF)
	n := byte(inst & 0xF)

	// x and y register operands
	x := inst >> 8 & 0xF
	y := inst >> 4 & 0xF

	switch o {
	case opSys:
		// legacy native call, nothing to do
	case opCls:
		vm.cls()
	case opRet:
		return vm.ret()
	case opJp:
		vm.jump(a)
	case opCall:
		return vm.call(a)
	case opSeC:
		vm.skipIf(x, b)
	case opSneC:
		vm.skipIfNot(x, b)
	case opSe:
		vm.skipIfXY(x, y)
	case opLdC:
		vm.loadX(x, b)
	case opAddC:
		vm.addX(x, b)
	case opLd:
		vm.loadXY(x, y)
	case opOr:
		vm.or(x, y)
	case opAnd:
		vm.and(x, y)
	case opXor:
		vm.xor(x, y)
	case opAdd:
		vm.addXY(x, y)
	case opSub:
		vm.subXY(x, y)
	case opShr:
		vm.shr(x)
	case opSubn:
		vm.subYX(x, y)
	case opShl:
		vm.shl(x)
	case opSne:
		vm.skipIfNotXY(x, y)
	case opLdI:
		vm.loadI(a)
	case opJpV0:
		vm.jumpV0(a)
	case opRnd:
		vm.rnd(x, b)
	case opDrw:
		return vm.drw(x, y, n)
	case opSkp:
		vm.skipIfPressed(x)
	case opSknp:
		vm.skipIfNotPressed(x)
	case opLdDT:
		vm.loadXDT(x)
	case opLdK:
		vm.loadXK(x)
	case opSetDT:
		vm.loadDTX(x)
	case opSetST:
		vm.loadSTX(x)
	case opAddI:
		vm.addIX(x)
	case opLdF:
		vm.loadF(x)
	case opBCD:
		return vm.loadB(x)
	case opSaveRegs:
		return vm.saveRegs(x)
	case opLoadRegs:
		return vm.loadRegs(x)
	default:
		return ErrIllegalOpcode
	}

	return nil
}

/// Clear the display.
///
func (vm *VM) cls() {
	vm.video = [DisplayWidth * DisplayHeight / 8]byte{}
}

/// return from subroutine.
///
func (vm *VM) ret() error {
	if len(vm.Stack) == 0 {
		return ErrStackUnderflow
	}

	// restore the caller's program counter; the uniform advance then
	// lands on the instruction after the CALL
	vm.PC = vm.Stack[len(vm.Stack)-1]
	vm.Stack = vm.Stack[:len(vm.Stack)-1]

	return nil
}

/// jump to address.
///
func (vm *VM) jump(a uint16) {
	vm.PC = a - 2
}

/// jump to address + v0.
///
func (vm *VM) jumpV0(a uint16) {
	vm.PC = a + uint16(vm.V[0]) - 2
}

/// call the subroutine at address.
///
func (vm *VM) call(a uint16) error {
	if len(vm.Stack) >= vm.maxStack {
		return ErrStackOverflow
	}

	vm.Stack = append(vm.Stack, vm.PC)
	vm.PC = a - 2

	return nil
}

/// skip next instruction if vx == n.
///
func (vm *VM) skipIf(x uint16, b byte) {
	if vm.V[x] == b {
		vm.PC += 2
	}
}

/// skip next instruction if vx != n.
///
func (vm *VM) skipIfNot(x uint16, b byte) {
	if vm.V[x] != b {
		vm.PC += 2
	}
}

/// skip next instruction if vx == vy.
///
func (vm *VM) skipIfXY(x, y uint16) {
	if vm.V[x] == vm.V[y] {
		vm.PC += 2
	}
}

/// skip next instruction if vx != vy.
///
func (vm *VM) skipIfNotXY(x, y uint16) {
	if vm.V[x] != vm.V[y] {
		vm.PC += 2
	}
}

/// skip next instruction if key(vx) is pressed.
///
func (vm *VM) skipIfPressed(x uint16) {
	if vm.Keys[vm.V[x]&0xF] {
		vm.PC += 2
	}
}

/// skip next instruction if key(vx) is not pressed.
///
func (vm *VM) skipIfNotPressed(x uint16) {
	if !vm.Keys[vm.V[x]&0xF] {
		vm.PC += 2
	}
}

/// load n into vx.
///
func (vm *VM) loadX(x uint16, b byte) {
	vm.V[x] = b
}

/// load vy into vx.
///
func (vm *VM) loadXY(x, y uint16) {
	vm.V[x] = vm.V[y]
}

/// load the delay timer into vx.
///
func (vm *VM) loadXDT(x uint16) {
	vm.V[x] = vm.DT
}

/// load vx into the delay timer.
///
func (vm *VM) loadDTX(x uint16) {
	vm.DT = vm.V[x]
}

/// load vx into the sound timer.
///
func (vm *VM) loadSTX(x uint16) {
	vm.ST = vm.V[x]
}

/// suspend until a key is pressed, then load it into vx.
///
func (vm *VM) loadXK(x uint16) {
	vm.wait = int(x)
}

/// load the address register.
///
func (vm *VM) loadI(a uint16) {
	vm.I = a
}

/// load the font sprite address for the low nibble of vx into i.
///
func (vm *VM) loadF(x uint16) {
	vm.I = uint16(vm.V[x]&0xF) * 5
}

/// store the BCD digits of vx at i, i+1 and i+2.
///
func (vm *VM) loadB(x uint16) error {
	if int(vm.I)+2 >= len(vm.Memory) {
		return ErrOutOfBounds
	}

	v := vm.V[x]

	vm.Memory[vm.I+0] = v / 100
	vm.Memory[vm.I+1] = v / 10 % 10
	vm.Memory[vm.I+2] = v % 10

	return nil
}

/// or vx with vy into vx.
///
func (vm *VM) or(x, y uint16) {
	vm.V[x] |= vm.V[y]
}

/// and vx with vy into vx.
///
func (vm *VM) and(x, y uint16) {
	vm.V[x] &= vm.V[y]
}

/// xor vx with vy into vx.
///
func (vm *VM) xor(x, y uint16) {
	vm.V[x] ^= vm.V[y]
}

/// shift vx right one bit; the flag takes the bit shifted out.
///
func (vm *VM) shr(x uint16) {
	flag := vm.V[x] & 1

	vm.V[x] >>= 1
	vm.V[0xF] = flag
}

/// shift vx left one bit; the flag takes the bit shifted out.
///
func (vm *VM) shl(x uint16) {
	flag := vm.V[x] >> 7

	vm.V[x] <<= 1
	vm.V[0xF] = flag
}

/// add n to vx. No flag is set.
///
func (vm *VM) addX(x uint16, b byte) {
	vm.V[x] += b
}

/// add vy to vx; the flag is 1 when the sum exceeds 255. The sum wraps
/// modulo 256.
///
func (vm *VM) addXY(x, y uint16) {
	sum := uint16(vm.V[x]) + uint16(vm.V[y])

	vm.V[x] = byte(sum)

	// the flag write wins when vx is VF
	if sum > 0xFF {
		vm.V[0xF] = 1
	} else {
		vm.V[0xF] = 0
	}
}

/// add vx to i; the flag is 1 when the sum exceeds the address space.
/// The sum wraps modulo 4096.
///
func (vm *VM) addIX(x uint16) {
	sum := vm.I + uint16(vm.V[x])

	vm.I = sum & 0xFFF

	if sum > 0xFFF {
		vm.V[0xF] = 1
	} else {
		vm.V[0xF] = 0
	}
}

/// subtract vy from vx; the flag is 1 when no borrow occurred.
///
func (vm *VM) subXY(x, y uint16) {
	flag := byte(0)
	if vm.V[x] >= vm.V[y] {
		flag = 1
	}

	vm.V[x] -= vm.V[y]
	vm.V[0xF] = flag
}

/// subtract vx from vy into vx; the flag is 1 when no borrow occurred.
///
func (vm *VM) subYX(x, y uint16) {
	flag := byte(0)
	if vm.V[y] >= vm.V[x] {
		flag = 1
	}

	vm.V[x] = vm.V[y] - vm.V[x]
	vm.V[0xF] = flag
}

/// load a random byte masked by n into vx.
///
func (vm *VM) rnd(x uint16, b byte) {
	vm.V[x] = byte(vm.rng.Intn(256)) & b
}

/// draw the n-row sprite at i to the display at vx, vy. Sprite rows are
/// 8 pixels wide, MSB first, XORed onto the framebuffer. Coordinates
/// wrap around both edges. The flag is 1 when any set pixel is cleared.
///
func (vm *VM) drw(x, y uint16, n byte) error {
	if int(vm.I)+int(n) > len(vm.Memory) {
		return ErrOutOfBounds
	}

	vm.V[0xF] = 0

	for row := byte(0); row < n; row++ {
		sprite := vm.Memory[vm.I+uint16(row)]
		yc := (int(vm.V[y]) + int(row)) % DisplayHeight

		for bit := 0; bit < 8; bit++ {
			if sprite&(0x80>>uint(bit)) == 0 {
				continue
			}

			xc := (int(vm.V[x]) + bit) % DisplayWidth

			// pixel position in the packed framebuffer
			p := yc*DisplayWidth + xc
			m := byte(0x80) >> uint(p&7)

			if vm.video[p>>3]&m != 0 {
				vm.V[0xF] = 1
			}

			vm.video[p>>3] ^= m
		}
	}

	return nil
}

/// store registers v0..vx to memory at i.
///
func (vm *VM) saveRegs(x uint16) error {
	if int(vm.I)+int(x) >= len(vm.Memory) {
		return ErrOutOfBounds
	}

	for i := uint16(0); i <= x; i++ {
		vm.Memory[vm.I+i] = vm.V[i]
	}

	return nil
}

/// load registers v0..vx from memory at i.
///
func (vm *VM) loadRegs(x uint16) error {
	if int(vm.I)+int(x) >= len(vm.Memory) {
		return ErrOutOfBounds
	}

	for i := uint16(0); i <= x; i++ {
		vm.V[i] = vm.Memory[vm.I+i]
	}

	return nil
}
