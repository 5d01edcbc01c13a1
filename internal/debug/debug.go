// Package debug draws the optional top-right overlays: FPS, heap usage and model statistics.
package debug

import (
	"fmt"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	fontSize   = 20
	padding    = 12
	lineHeight = fontSize + 4
	// Text is only rebuilt every updateInterval frames to limit allocations.
	updateInterval = 30
)

// Stats describes the displayed model.
type Stats struct {
	Meshes int
	Bound  int
	Parts  int
}

// Debug holds the overlay toggles. All overlays are off by default.
type Debug struct {
	ShowFPS      bool
	ShowMemAlloc bool
	ShowStats    bool
	font         rl.Font
	frameCount   uint32
	lastFpsText  string
	lastMemText  string
	lastStats    Stats
	statsText    string
	memStats     runtime.MemStats
}

func New() *Debug {
	return &Debug{}
}

func (d *Debug) SetShowFPS(show bool) {
	d.ShowFPS = show
}

func (d *Debug) SetShowMemAlloc(show bool) {
	d.ShowMemAlloc = show
}

func (d *Debug) SetShowStats(show bool) {
	d.ShowStats = show
}

// SetFont sets the overlay font. Zero texture ID = raylib default.
func (d *Debug) SetFont(font rl.Font) {
	d.font = font
}

// Draw renders the enabled overlays, right-aligned from the top: FPS, memory, model stats.
func (d *Debug) Draw(stats Stats) {
	d.frameCount++
	update := d.frameCount%updateInterval == 0
	if (d.ShowFPS && d.lastFpsText == "") || (d.ShowMemAlloc && d.lastMemText == "") {
		update = true
	}
	y := int32(padding)
	if d.ShowFPS {
		if update {
			d.lastFpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		d.drawRight(d.lastFpsText, y)
		y += lineHeight
	}
	if d.ShowMemAlloc {
		if update {
			runtime.ReadMemStats(&d.memStats)
			d.lastMemText = fmt.Sprintf("Mem: %.2f MiB", float64(d.memStats.Alloc)/(1024*1024))
		}
		d.drawRight(d.lastMemText, y)
		y += lineHeight
	}
	if d.ShowStats {
		if stats != d.lastStats || d.statsText == "" {
			d.lastStats = stats
			d.statsText = fmt.Sprintf("Meshes: %d  Parts: %d/%d", stats.Meshes, stats.Bound, stats.Parts)
		}
		d.drawRight(d.statsText, y)
	}
}

func (d *Debug) drawRight(text string, y int32) {
	if text == "" {
		return
	}
	screenW := float32(rl.GetScreenWidth())
	if d.font.Texture.ID != 0 {
		w := rl.MeasureTextEx(d.font, text, fontSize, 1).X
		rl.DrawTextEx(d.font, text, rl.NewVector2(screenW-w-padding, float32(y)), fontSize, 1, rl.DarkGreen)
		return
	}
	w := float32(rl.MeasureText(text, fontSize))
	rl.DrawText(text, int32(screenW-w-padding), y, fontSize, rl.DarkGreen)
}
