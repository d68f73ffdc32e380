package main

import (
	"fmt"

	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	/// Mapping of modern keyboard keys to pad keys.
	///
	KeyMap = map[sdl.Scancode]uint{
		sdl.SCANCODE_X: 0x0,
		sdl.SCANCODE_1: 0x1,
		sdl.SCANCODE_2: 0x2,
		sdl.SCANCODE_3: 0x3,
		sdl.SCANCODE_Q: 0x4,
		sdl.SCANCODE_W: 0x5,
		sdl.SCANCODE_E: 0x6,
		sdl.SCANCODE_A: 0x7,
		sdl.SCANCODE_S: 0x8,
		sdl.SCANCODE_D: 0x9,
		sdl.SCANCODE_Z: 0xA,
		sdl.SCANCODE_C: 0xB,
		sdl.SCANCODE_4: 0xC,
		sdl.SCANCODE_R: 0xD,
		sdl.SCANCODE_F: 0xE,
		sdl.SCANCODE_V: 0xF,
	}
)

/// ProcessEvents polls SDL and maps keys to the pad and the emulator
/// controls. It reports false once the program should quit.
///
func ProcessEvents() bool {
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch ev := e.(type) {
		case *sdl.QuitEvent:
			return false
		case *sdl.KeyboardEvent:
			if ev.Repeat != 0 {
				break
			}

			if ev.Type == sdl.KEYDOWN {
				if !keyDown(ev) {
					return false
				}
			} else if ev.Type == sdl.KEYUP {
				if key, ok := KeyMap[ev.Keysym.Scancode]; ok {
					VM.ReleaseKey(key)
				}
			}
		}
	}

	return true
}

/// keyDown handles a single key press. It reports false once the
/// program should quit.
///
func keyDown(ev *sdl.KeyboardEvent) bool {
	if key, ok := KeyMap[ev.Keysym.Scancode]; ok {
		VM.PressKey(key)
		return true
	}

	switch ev.Keysym.Scancode {
	case sdl.SCANCODE_ESCAPE:
		return false
	case sdl.SCANCODE_BACKSPACE:
		VM.Reset()
		fmt.Println("Reset")

		// holding control during reset will reboot paused
		if ev.Keysym.Mod&sdl.KMOD_CTRL != 0 {
			Paused = true
		}
	case sdl.SCANCODE_UP, sdl.SCANCODE_PAGEUP:
		DebugLogScroll(-1)
	case sdl.SCANCODE_DOWN, sdl.SCANCODE_PAGEDOWN:
		DebugLogScroll(1)
	case sdl.SCANCODE_HOME:
		DebugLogHome()
	case sdl.SCANCODE_END:
		DebugLogEnd()
	case sdl.SCANCODE_F1:
		DebugHelp()
	case sdl.SCANCODE_F2:
		Load(File)
	case sdl.SCANCODE_F3:
		LoadDialog()
	case sdl.SCANCODE_LEFTBRACKET:
		if Cycles > 1 {
			Cycles--
		}

		fmt.Println("Speed:", Cycles, "cycles/frame")
	case sdl.SCANCODE_RIGHTBRACKET:
		if Cycles < 64 {
			Cycles++
		}

		fmt.Println("Speed:", Cycles, "cycles/frame")
	case sdl.SCANCODE_F5, sdl.SCANCODE_SPACE:
		Paused = !Paused
	case sdl.SCANCODE_F6, sdl.SCANCODE_F10:
		if Paused {
			if err := VM.Step(); err != nil {
				fmt.Println("FAULT:", err)
			}
		}
	}

	return true
}

/// LoadDialog asks the user to pick a ROM file and loads it.
///
func LoadDialog() {
	path, err := dialog.File().Filter("CHIP-8 ROMs", "ch8").Load()
	if err != nil {
		if err != dialog.ErrCancelled {
			fmt.Println("Error:", err)
		}

		return
	}

	Load(path)
}
