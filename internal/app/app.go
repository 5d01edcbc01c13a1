// Package app wires the configurator together on the main (raylib) goroutine: window,
// scene, palette UI, console and the background loaders whose results it drains once per
// frame.
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"configurator/internal/asset"
	"configurator/internal/commands"
	"configurator/internal/config"
	"configurator/internal/configurator"
	"configurator/internal/debug"
	"configurator/internal/fonts"
	"configurator/internal/frameloop"
	"configurator/internal/graphics"
	"configurator/internal/logger"
	"configurator/internal/palette"
	"configurator/internal/scene"
	"configurator/internal/terminal"
	"configurator/internal/ui"
	"configurator/internal/watch"
)

// App owns every main-thread object. Background goroutines only reach it through the
// channels drained in frame.
type App struct {
	cfg       *config.Config
	prefsPath string
	lines     *logger.Logger
	log       *slog.Logger

	viewer *configurator.Viewer
	pal    *palette.Palette
	loader *asset.Loader
	reg    *commands.Registry
	loop   *frameloop.Loop

	// created once the window exists
	scn       *scene.Scene
	engine    *ui.Engine
	pview     *ui.PaletteView
	inspector *ui.Inspector
	statusBar *ui.Node
	term      *terminal.Terminal
	dbg       *debug.Debug

	ctx      context.Context
	source   string
	loading  string
	pending  <-chan asset.Result
	cancel   context.CancelFunc
	progress chan asset.Progress
	status   string
	statusAt time.Time
	watcher  *watch.Watcher
	snapReq  *snapshotRequest
	nodes    []*ui.Node
}

// New builds the window-independent parts of the app.
func New(cfg *config.Config, lines *logger.Logger, prefsPath string) *App {
	log := lines.Slog(cfg.Level())
	a := &App{
		cfg:       cfg,
		prefsPath: prefsPath,
		lines:     lines,
		log:       log,
		viewer:    configurator.New(identifiers(cfg), log.With("component", "viewer")),
		pal:       palette.New(cfg.Colors, partNames()...),
		reg:       commands.NewRegistry(),
		loop:      frameloop.New(),
		progress:  make(chan asset.Progress, 16),
	}
	a.loader = &asset.Loader{
		Override:   cfg.PartManifest(),
		Log:        log.With("component", "loader"),
		OnProgress: a.onProgress,
	}
	commands.RegisterBuiltins(a.reg, a, lines.Log)
	a.reg.Register("quit", "", nil, func([]string) error {
		a.loop.Stop()
		return nil
	})
	return a
}

func identifiers(cfg *config.Config) map[configurator.Part]string {
	out := map[configurator.Part]string{}
	for name, id := range cfg.Identifiers() {
		out[configurator.Part(name)] = id
	}
	return out
}

func partNames() []string {
	out := make([]string, len(configurator.Parts))
	for i, p := range configurator.Parts {
		out[i] = string(p)
	}
	return out
}

// onProgress runs on the loader goroutine; it never blocks.
func (a *App) onProgress(p asset.Progress) {
	select {
	case a.progress <- p:
	default:
	}
}

// Run opens the window and blocks until it is closed or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.ctx = ctx
	win := graphics.Window{Width: a.cfg.Window.Width, Height: a.cfg.Window.Height, Title: a.cfg.Window.Title}
	err := graphics.Run(ctx, win, a.loop, graphics.Hooks{
		Init:   a.init,
		Update: a.update,
		Draw:   a.draw,
		Close:  a.shutdown,
	})
	if errors.Is(err, context.Canceled) {
		a.log.Info("shutting down")
		return nil
	}
	return err
}

func (a *App) init() {
	bg, _ := palette.ParseColor(a.cfg.Background)
	c := a.cfg.Camera
	a.scn = scene.New(scene.CameraSettings{
		FOV: c.FOV, Near: c.Near, Far: c.Far,
		Distance: c.Distance, MinDistance: c.MinDistance, MaxDistance: c.MaxDistance,
		Damping: c.Damping,
	}, bg)
	a.scn.SetGridVisible(a.cfg.Debug.GridVisible)

	a.engine = ui.New()
	if a.cfg.Stylesheet != "" {
		if err := a.engine.LoadCSS(a.cfg.Stylesheet); err != nil {
			a.log.Warn("stylesheet not loaded", "path", a.cfg.Stylesheet, "err", err)
		}
	}
	if skipped := a.engine.Stylesheet().Skipped; len(skipped) > 0 {
		a.log.Warn("unsupported selectors ignored", "selectors", skipped)
	}
	a.pview = ui.NewPaletteView(a.engine, a.pal)
	a.inspector = ui.NewInspector(a.engine)
	a.statusBar = ui.NewNode("label", "", "", "status")

	a.term = terminal.New(a.lines, a.reg)
	a.dbg = debug.New()
	a.dbg.SetShowFPS(a.cfg.Debug.ShowFPS)
	a.dbg.SetShowMemAlloc(a.cfg.Debug.ShowMemAlloc)
	a.dbg.SetShowStats(a.cfg.Debug.ShowStats)
	a.loadFont()

	a.log.Info("viewer ready", "width", rl.GetScreenWidth(), "height", rl.GetScreenHeight())
	a.startLoad(a.cfg.ModelPath)
}

func (a *App) loadFont() {
	path, err := fonts.Resolve(a.cfg.Font)
	if err != nil {
		if a.cfg.Font != "" {
			a.log.Warn("font not found, using default", "font", a.cfg.Font)
		}
		return
	}
	if err := a.engine.LoadFont(path); err != nil {
		a.log.Warn("font not loaded", "path", path, "err", err)
		return
	}
	a.term.SetFont(a.engine.Font())
	a.dbg.SetFont(a.engine.Font())
}

func (a *App) update() {
	if rl.IsWindowResized() {
		a.engine.Invalidate()
		a.log.Debug("window resized", "width", rl.GetScreenWidth(), "height", rl.GetScreenHeight())
	}
	a.drainBackground()
	a.expireStatus()

	a.term.Update()
	if !a.term.IsOpen() && rl.IsKeyPressed(rl.KeyP) {
		if _, err := a.Snapshot("", 0); err != nil {
			a.log.Error("snapshot failed", "err", err)
		}
	}

	w, h := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
	a.pview.Layout(w, h)
	mouse := rl.GetMousePosition()
	overUI := a.pview.Contains(mouse.X, mouse.Y)
	clicked := rl.IsMouseButtonPressed(rl.MouseButtonLeft)
	if err := a.pview.Update(mouse.X, mouse.Y, clicked, a.recolor); err != nil {
		a.log.Debug("swatch click ignored", "err", err)
	}
	a.scn.Update(!overUI)
}

// recolor is the palette's link to the viewer.
func (a *App) recolor(part, value string) error {
	p, err := configurator.ParsePart(part)
	if err != nil {
		return err
	}
	return a.viewer.Recolor(p, value)
}

func (a *App) draw() {
	a.scn.Draw()
	if a.snapReq != nil {
		a.captureSnapshot(*a.snapReq)
		a.snapReq = nil
	}

	w, h := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
	a.nodes = a.pview.AppendNodes(a.nodes[:0])
	a.statusBar.Text = a.status
	a.statusBar.Hidden = a.status == ""
	a.engine.Place(a.statusBar, w, h)
	a.nodes = append(a.nodes, a.statusBar)
	a.nodes = a.inspector.AppendNodes(a.nodes, a.term.IsOpen(), a.inspectorInfo(), w, h)
	a.engine.Draw(a.nodes)

	a.term.Draw()
	a.dbg.Draw(a.stats())
}

func (a *App) inspectorInfo() ui.Info {
	return ui.Info{
		Model:  a.source,
		Meshes: a.scn.Renderer.MeshCount(),
		Parts:  a.PartLines(),
		Status: a.status,
	}
}

func (a *App) stats() debug.Stats {
	s := debug.Stats{Meshes: a.scn.Renderer.MeshCount(), Parts: len(configurator.Parts)}
	for _, p := range configurator.Parts {
		if _, ok := a.viewer.Binding(p); ok {
			s.Bound++
		}
	}
	return s
}

func (a *App) shutdown() {
	if a.cancel != nil {
		a.cancel()
	}
	a.closeWatcher()
	if a.scn != nil {
		a.scn.Close()
	}
	a.viewer.Close()
	if a.engine != nil {
		a.engine.UnloadFont()
	}
}
