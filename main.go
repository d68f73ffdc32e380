package main

import (
	"fmt"
	"runtime"

	"github.com/chip8vm/chip-8/chip8"
	"github.com/retroenv/retrogolib/log"
)

var (
	/// The CHIP-8 virtual machine.
	///
	VM *chip8.VM

	/// VMOptions configure every machine built during this run, so a
	/// newly loaded ROM keeps the command line settings.
	///
	VMOptions *chip8.Options

	/// File is the path of the running ROM, reloaded by F2.
	///
	File string

	/// Cycles is the number of instructions executed per 60 Hz frame.
	///
	Cycles int
)

func init() {
	runtime.LockOSThread()
}

func main() {
	cfg := parseArgs()
	logger := newLogger(cfg)

	VMOptions = &chip8.Options{
		StackDepth: cfg.Stack,
		Seed:       cfg.Seed,
	}

	// create the CHIP-8 virtual machine, must happen early!
	vm, err := chip8.LoadFile(cfg.ROM, VMOptions)
	if err != nil {
		logger.Fatal("Loading ROM failed", log.Err(err))
	}

	VM = vm
	File = cfg.ROM
	Cycles = cfg.Cycles
	Paused = cfg.Pause

	if cfg.Trace {
		VM.Trace = func(pc, _ uint16) {
			logger.Debug(VM.Disassemble(pc))
		}
	}

	logger.Info("Starting emulation",
		log.String("rom", cfg.ROM),
		log.Int("cycles", cfg.Cycles))

	if cfg.Terminal {
		err = RunTerminal()
	} else {
		err = RunSDL()
	}

	if err != nil {
		logger.Fatal("Emulation stopped", log.Err(err))
	}
}

/// Load replaces the running machine with one freshly built from the
/// ROM file at path.
///
func Load(path string) {
	vm, err := chip8.LoadFile(path, VMOptions)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	// keep the trace hook across machines
	vm.Trace = VM.Trace

	VM = vm
	File = path

	fmt.Println("Loaded", path)
}
