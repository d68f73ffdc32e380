package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chip8vm/chip-8/chip8"
	"github.com/retroenv/retrogolib/log"
)

/// Config holds the program options parsed from the command line.
///
type Config struct {
	ROM      string // path of the ROM file to load
	Terminal bool   // render into the terminal instead of a window
	Cycles   int    // instruction cycles per 60 Hz frame
	Stack    int    // call stack depth limit
	Seed     int64  // random number seed, 0 seeds from the clock
	Pause    bool   // start with emulation paused
	Trace    bool   // log every executed instruction
	Quiet    bool   // only log errors
}

/// parseArgs processes the command line. It exits the program with the
/// usage text when no ROM file was named.
///
func parseArgs() *Config {
	var c Config

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s [options] <rom file>\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.BoolVar(&c.Terminal, "terminal", false, "Render into the terminal instead of a window.")
	flag.IntVar(&c.Cycles, "cycles", 4, "Instruction cycles to run per 60 Hz frame.")
	flag.IntVar(&c.Stack, "stack", chip8.DefaultStackDepth, "Call stack depth limit.")
	flag.Int64Var(&c.Seed, "seed", 0, "Random number seed, 0 seeds from the clock.")
	flag.BoolVar(&c.Pause, "pause", false, "Start with emulation paused.")
	flag.BoolVar(&c.Trace, "trace", false, "Log every executed instruction.")
	flag.BoolVar(&c.Quiet, "quiet", false, "Only log errors.")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	c.ROM = flag.Arg(0)

	if c.Cycles < 1 {
		c.Cycles = 1
	}

	return &c
}

/// newLogger creates the program logger. Tracing needs the debug level
/// to be visible.
///
func newLogger(c *Config) *log.Logger {
	cfg := log.DefaultConfig()

	if c.Trace {
		cfg.Level = log.DebugLevel
	} else if c.Quiet {
		cfg.Level = log.ErrorLevel
	}

	return log.NewWithConfig(cfg)
}
