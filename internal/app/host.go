package app

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"golang.org/x/image/draw"

	"configurator/internal/commands"
	"configurator/internal/config"
	"configurator/internal/configurator"
	"configurator/internal/palette"
	"configurator/internal/snapshot"
)

// The console commands run on the main goroutine inside update, so the methods below may
// touch the viewer and the scene directly.
var _ commands.Host = (*App)(nil)

// Recolor applies value to part and refreshes that part's highlight.
func (a *App) Recolor(part, value string) error {
	p, err := configurator.ParsePart(part)
	if err != nil {
		return err
	}
	if err := a.viewer.Recolor(p, value); err != nil {
		return err
	}
	a.pal.Refresh(string(p), value)
	if a.pview != nil {
		a.pview.Sync()
	}
	return nil
}

// Load starts loading source; the result is picked up by a later frame.
func (a *App) Load(source string) error {
	source = strings.TrimSpace(source)
	if source == "" {
		return errors.New("load: empty source")
	}
	a.startLoad(source)
	return nil
}

// PartLines describes each part: the bound node path and its current color.
func (a *App) PartLines() []string {
	out := make([]string, 0, len(configurator.Parts))
	for _, p := range configurator.Parts {
		node, color := "", ""
		if n, ok := a.viewer.Binding(p); ok {
			node = n.Path()
		}
		if c, ok := a.viewer.Color(p); ok {
			color = palette.FormatColor(c)
		}
		out = append(out, commands.JoinPartLine(string(p), node, color))
	}
	return out
}

type snapshotRequest struct {
	path  string
	width int
}

// Snapshot queues a capture of the next rendered frame, without overlays, and returns the
// file it will be written to. Encoding happens off the main goroutine.
func (a *App) Snapshot(path string, width int) (string, error) {
	if a.snapReq != nil {
		return "", errors.New("snapshot: one is already pending")
	}
	if path == "" {
		path = filepath.Join(a.cfg.Snapshot.Dir, snapshot.FileName(time.Now()))
	}
	if !strings.EqualFold(filepath.Ext(path), ".webp") {
		return "", fmt.Errorf("snapshot: %s: only .webp is written", path)
	}
	if width <= 0 {
		width = a.cfg.Snapshot.Width
	}
	a.snapReq = &snapshotRequest{path: path, width: width}
	return path, nil
}

// captureSnapshot reads the framebuffer. It must run inside the frame, after the scene
// was drawn.
func (a *App) captureSnapshot(req snapshotRequest) {
	shot := rl.LoadImageFromScreen()
	if shot == nil || shot.Width == 0 || shot.Height == 0 {
		a.log.Error("snapshot failed", "path", req.path, "err", "empty framebuffer")
		return
	}
	img := cloneImage(shot.ToImage())
	rl.UnloadImage(shot)
	log := a.log
	go func() {
		if err := snapshot.Save(req.path, img, req.width); err != nil {
			log.Error("snapshot failed", "path", req.path, "err", err)
			return
		}
		log.Info("snapshot saved", "path", req.path, "width", req.width)
	}()
}

// cloneImage copies img into Go-owned memory.
func cloneImage(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	return out
}

// SetOverlay toggles a debug overlay or the grid and persists the choice.
func (a *App) SetOverlay(name string, show bool) error {
	switch name {
	case "fps":
		a.dbg.SetShowFPS(show)
	case "mem":
		a.dbg.SetShowMemAlloc(show)
	case "stats":
		a.dbg.SetShowStats(show)
	case "grid":
		a.scn.SetGridVisible(show)
	default:
		return fmt.Errorf("unknown overlay %q", name)
	}
	prefs := config.Debug{
		ShowFPS:      a.dbg.ShowFPS,
		ShowMemAlloc: a.dbg.ShowMemAlloc,
		ShowStats:    a.dbg.ShowStats,
		GridVisible:  a.scn.GridVisible,
	}
	if err := config.SavePrefs(a.prefsPath, prefs); err != nil {
		a.log.Warn("preferences not saved", "path", a.prefsPath, "err", err)
	}
	return nil
}
