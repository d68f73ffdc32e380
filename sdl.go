package main

import (
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	/// The SDL window and its renderer.
	///
	Window   *sdl.Window
	Renderer *sdl.Renderer

	/// Title is the window caption set by the last refresh.
	///
	Title string
)

/// RunSDL opens the emulator window and drives the machine at 60 Hz
/// until the window closes or an instruction faults.
///
func RunSDL() error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return errors.Wrap(err, "initializing sdl")
	}
	defer sdl.Quit()

	// create the main window and renderer
	flags := sdl.WINDOW_OPENGL | sdl.WINDOWPOS_CENTERED

	var err error
	if Window, Renderer, err = sdl.CreateWindowAndRenderer(550, 348, uint32(flags)); err != nil {
		return errors.Wrap(err, "creating window")
	}
	defer Window.Destroy()
	defer Renderer.Destroy()

	// set the title
	RefreshTitle()

	// initialize subsystems
	if err := InitScreen(); err != nil {
		return err
	}
	if err := InitFont(); err != nil {
		return err
	}
	if err := InitDebug(); err != nil {
		return err
	}

	DebugHelp()

	// refresh rate
	video := time.NewTicker(time.Second / 60)
	defer video.Stop()

	// loop until window closed or user quit
	for ProcessEvents() {
		<-video.C

		if !Paused {
			if err := VM.Run(Cycles); err != nil {
				return err
			}

			// timers run even while the machine waits for a key
			VM.TickTimers()
		}

		Refresh()
	}

	return nil
}

/// RefreshTitle updates the window caption with the loaded ROM name and
/// the pause state.
///
func RefreshTitle() {
	title := "CHIP-8 - " + filepath.Base(File)
	if Paused {
		title += " (paused)"
	}

	if title != Title {
		Window.SetTitle(title)
		Title = title
	}
}

/// Refresh redraws the window: display, disassembly, registers and the
/// log panel.
///
func Refresh() {
	RefreshTitle()

	Renderer.SetDrawColor(32, 42, 53, 255)
	Renderer.Clear()

	// frame various portions of the app
	Frame(8, 8, 322, 162)
	Frame(338, 8, 204, 162)
	Frame(8, 176, 146, 164)
	Frame(162, 176, 380, 164)

	// update the video screen and copy it
	RefreshScreen()
	CopyScreen(10, 10, 5)

	// debug assembly, virtual registers and log output
	DebugAssembly(342, 12)
	DebugRegisters(12, 180)
	DebugLog(166, 180)

	// show the new frame
	Renderer.Present()
}

/// Frame draws a sunken border around a portion of the window.
///
func Frame(x, y, w, h int32) {
	Renderer.SetDrawColor(0, 0, 0, 255)
	Renderer.DrawLine(x, y, x+w, y)
	Renderer.DrawLine(x, y, x, y+h)

	// highlight
	Renderer.SetDrawColor(95, 112, 120, 255)
	Renderer.DrawLine(x+w, y, x+w, y+h)
	Renderer.DrawLine(x, y+h, x+w, y+h)
}
