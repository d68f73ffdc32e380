package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chip8vm/chip-8/chip8"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

/// keyHold is how many frames a typed key stays latched, because
/// terminals report presses but never releases.
///
const keyHold = 6

var (
	/// Mapping of typed characters to pad keys.
	///
	terminalKeys = map[byte]uint{
		'x': 0x0,
		'1': 0x1,
		'2': 0x2,
		'3': 0x3,
		'q': 0x4,
		'w': 0x5,
		'e': 0x6,
		'a': 0x7,
		's': 0x8,
		'd': 0x9,
		'z': 0xA,
		'c': 0xB,
		'4': 0xC,
		'r': 0xD,
		'f': 0xE,
		'v': 0xF,
	}
)

/// RunTerminal drives the machine at 60 Hz, rendering the display as
/// text into a raw terminal.
///
func RunTerminal() error {
	fd := int(os.Stdin.Fd())

	state, err := term.MakeRaw(fd)
	if err != nil {
		return errors.Wrap(err, "entering raw mode")
	}
	defer term.Restore(fd, state)

	// read stdin without blocking the frame loop
	keys := make(chan byte, 64)

	go func() {
		buf := make([]byte, 1)

		for {
			if _, err := os.Stdin.Read(buf); err != nil {
				close(keys)
				return
			}

			keys <- buf[0]
		}
	}()

	// switch to a blank screen with no cursor
	fmt.Print("\x1b[?25l\x1b[2J")
	defer fmt.Print("\x1b[?25h\x1b[2J\x1b[H")

	// frames remaining until each pad key auto-releases
	var hold [16]int

	video := time.NewTicker(time.Second / 60)
	defer video.Stop()

	for {
		<-video.C

		quit, err := drainTerminalKeys(keys, &hold)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}

		if !Paused {
			if err := VM.Run(Cycles); err != nil {
				return err
			}

			// timers run even while the machine waits for a key
			VM.TickTimers()
		}

		// pad keys decay since the terminal never reports releases
		for k := range hold {
			if hold[k] == 0 {
				continue
			}

			hold[k]--

			if hold[k] == 0 {
				VM.ReleaseKey(uint(k))
			}
		}

		refreshTerminal()
	}
}

/// drainTerminalKeys applies all pending key presses. It reports true
/// once the program should quit.
///
func drainTerminalKeys(keys <-chan byte, hold *[16]int) (bool, error) {
	for {
		select {
		case c, ok := <-keys:
			if !ok {
				return true, nil
			}

			// fold letters to the lowercase map
			if c >= 'A' && c <= 'Z' {
				c += 32
			}

			switch c {
			case 0x03, 0x1B: // ctrl-c, escape
				return true, nil
			case ' ':
				Paused = !Paused
			case 0x08, 0x7F: // backspace
				VM.Reset()
			case '.':
				if Paused {
					if err := VM.Step(); err != nil {
						return false, err
					}
				}
			case '[':
				if Cycles > 1 {
					Cycles--
				}
			case ']':
				if Cycles < 64 {
					Cycles++
				}
			default:
				if key, ok := terminalKeys[c]; ok {
					VM.PressKey(key)
					hold[key] = keyHold
				}
			}
		default:
			return false, nil
		}
	}
}

/// refreshTerminal redraws the display and the status lines in place.
///
func refreshTerminal() {
	var b strings.Builder

	// home the cursor
	b.WriteString("\x1b[H")

	for y := 0; y < chip8.DisplayHeight; y++ {
		for x := 0; x < chip8.DisplayWidth; x++ {
			if VM.Pixel(x, y) {
				b.WriteRune('█')
			} else {
				b.WriteByte(' ')
			}
		}

		b.WriteString("\x1b[K\r\n")
	}

	fmt.Fprintf(&b, "PC #%04X  I #%04X  DT #%02X  ST #%02X  %2d CYC", VM.PC, VM.I, VM.DT, VM.ST, Cycles)

	if Paused {
		b.WriteString("  PAUSED")
	}

	b.WriteString("\x1b[K\r\n")

	for i := 0; i < 16; i++ {
		fmt.Fprintf(&b, "V%X %02X  ", i, VM.V[i])

		if i == 7 {
			b.WriteString("\x1b[K\r\n")
		}
	}

	b.WriteString("\x1b[K")

	fmt.Print(b.String())
}
