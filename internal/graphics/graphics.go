// Package graphics owns the raylib window lifetime and drives the frame loop.
package graphics

import (
	"context"

	rl "github.com/gen2brain/raylib-go/raylib"

	"configurator/internal/frameloop"
)

// Window describes the window to open.
type Window struct {
	Width, Height int
	Title         string
}

// Hooks are the per-window callbacks. Init runs once after the GL context exists; Update
// runs every frame before drawing; Draw runs between BeginDrawing and EndDrawing and is
// responsible for clearing; Close runs before the window (and its GL context) goes away.
type Hooks struct {
	Init   func()
	Update func()
	Draw   func()
	Close  func()
}

const (
	minWidth  = 640
	minHeight = 480
)

// Run opens a resizable window and runs loop until the window is closed, ctx is cancelled
// or loop is stopped. ESC does not close the window; it toggles the console.
func Run(ctx context.Context, win Window, loop *frameloop.Loop, h Hooks) error {
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint | rl.FlagVsyncHint)
	rl.InitWindow(int32(win.Width), int32(win.Height), win.Title)
	defer rl.CloseWindow()

	rl.SetWindowMinSize(minWidth, minHeight)
	rl.SetExitKey(rl.KeyNull)
	rl.SetTargetFPS(60)

	if h.Init != nil {
		h.Init()
	}
	if h.Close != nil {
		defer h.Close()
	}
	return loop.Run(ctx, func() bool {
		if rl.WindowShouldClose() {
			return false
		}
		if h.Update != nil {
			h.Update()
		}
		rl.BeginDrawing()
		if h.Draw != nil {
			h.Draw()
		}
		rl.EndDrawing()
		return true
	})
}
