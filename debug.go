package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	/// True if pausing emulation (single stepping).
	///
	Paused bool

	/// Current debug window address.
	///
	Address uint16

	/// Redirected stdout text to a channel.
	///
	LogChan chan string

	/// Buffer holding all logged text.
	///
	Log []string

	/// Current position of the log.
	///
	LogPos int
)

/// InitDebug redirects STDOUT text to a log that can be displayed.
///
func InitDebug() error {
	r, w, err := os.Pipe()
	if err != nil {
		return errors.Wrap(err, "redirecting stdout")
	}

	// create the log buffer
	LogChan = make(chan string)

	// redirect stdout
	os.Stdout = w

	// spawn a process to capture stdout
	go func() {
		scanner := bufio.NewScanner(r)

		for scanner.Scan() {
			LogChan <- scanner.Text()
		}
	}()

	return nil
}

/// DebugHelp shows the help text in the log.
///
func DebugHelp() {
	fmt.Println("Virtual keys:")
	fmt.Println("  1-2-3-4")
	fmt.Println("  Q-W-E-R")
	fmt.Println("  A-S-D-F")
	fmt.Println("  Z-X-C-V")
	fmt.Println("")
	fmt.Println("Emulation keys:")
	fmt.Println("  ESC      - Quit")
	fmt.Println("  BS       - Reboot (CTRL pauses)")
	fmt.Println("  Pg Up/Dn - Scroll log")
	fmt.Println("  F1       - Help")
	fmt.Println("  F2       - Reload ROM")
	fmt.Println("  F3       - Open ROM")
	fmt.Println("  F5/SPACE - Pause")
	fmt.Println("  F6/F10   - Step")
	fmt.Println("  [ / ]    - Change speed")
}

/// DebugAssembly renders the disassembled instructions around the
/// program counter.
///
func DebugAssembly(x, y int32) {
	// keep the window following the program counter
	if VM.PC < Address+2 || VM.PC >= Address+30 || (Address^VM.PC)&1 != 0 {
		Address = VM.PC - 2
	}

	// show the disassembled instructions
	for i := int32(0); i < 32; i += 2 {
		addr := Address + uint16(i)

		if addr == VM.PC {
			if Paused {
				Renderer.SetDrawColor(176, 32, 57, 255)
			} else {
				Renderer.SetDrawColor(57, 102, 176, 255)
			}

			// highlight the current instruction
			Renderer.FillRect(&sdl.Rect{
				X: x,
				Y: y + i*5 - 1,
				W: 200,
				H: 10,
			})
		}

		DrawText(VM.Disassemble(addr), x, y+i*5)
	}
}

/// DebugRegisters shows the current value of all the machine registers.
///
func DebugRegisters(x, y int32) {
	for i := int32(0); i < 16; i++ {
		DrawText(fmt.Sprintf("V%X #%02X", i, VM.V[i]), x, y+i*10)
	}

	// shift over for the special registers
	x += 64

	DrawText(fmt.Sprintf("PC #%04X", VM.PC), x, y)
	DrawText(fmt.Sprintf("SP #%02X", len(VM.Stack)), x, y+10)
	DrawText(fmt.Sprintf("I  #%04X", VM.I), x, y+30)
	DrawText(fmt.Sprintf("DT #%02X", VM.DT), x, y+50)
	DrawText(fmt.Sprintf("ST #%02X", VM.ST), x, y+60)
}

/// DebugLog shows the tail of the log text (and collects new text).
///
func DebugLog(x, y int32) {
	// collect newly logged lines
drain:
	for {
		select {
		case text := <-LogChan:
			if LogPos == len(Log)-1 {
				LogPos++
			}

			Log = append(Log, text)
		default:
			break drain
		}
	}

	// starting line to display for the log
	line := LogPos - 15

	if line < 0 {
		line = 0
	}

	// display 16 lines of the log
	for i := 0; i < 16 && line < len(Log); i++ {
		text := Log[line]

		if len(text) > 54 {
			text = text[:51] + "..."
		}

		DrawText(text, x, y)

		// advance to the next line
		y += 10
		line++
	}
}

/// DebugLogScroll scrolls the debug log up or down.
///
func DebugLogScroll(d int) {
	LogPos += d

	// clamp to home
	if LogPos < 0 {
		DebugLogHome()
	}

	// clamp to end
	if LogPos > len(Log)-1 {
		DebugLogEnd()
	}
}

/// DebugLogHome scrolls to the beginning of the log.
///
func DebugLogHome() {
	LogPos = 0
}

/// DebugLogEnd scrolls to the end of the log.
///
func DebugLogEnd() {
	LogPos = len(Log) - 1
}
