package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"configurator/internal/asset"
	"configurator/internal/configurator"
	"configurator/internal/download"
	"configurator/internal/manifest"
	"configurator/internal/scene"
	"configurator/internal/watch"
)

// statusTTL is how long a finished-load message stays on screen.
const statusTTL = 4 * time.Second

func (a *App) setStatus(text string, ttl time.Duration) {
	a.status = text
	a.statusAt = time.Time{}
	if ttl > 0 {
		a.statusAt = time.Now().Add(ttl)
	}
}

func (a *App) expireStatus() {
	if !a.statusAt.IsZero() && time.Now().After(a.statusAt) {
		a.setStatus("", 0)
	}
}

// startLoad cancels any load in flight and starts loading source in the background.
// The current model stays on screen until the new one is ready.
func (a *App) startLoad(source string) {
	if a.cancel != nil {
		a.cancel()
	}
	ctx, cancel := context.WithCancel(a.ctx)
	a.cancel = cancel
	a.loading = source
	a.pending = a.loader.Load(ctx, source)
	a.setStatus("Loading...", 0)
	a.log.Info("loading model", "source", source)
}

// drainBackground handles whatever the loader, the progress reporter and the file
// watcher sent since the last frame. It never blocks.
func (a *App) drainBackground() {
	if p, ok := asset.DrainProgress(a.progress, a.loading); ok && a.pending != nil {
		a.setStatus(fmt.Sprintf("Loading %d%%", p.Percent), 0)
	}
	if a.pending != nil {
		select {
		case res := <-a.pending:
			a.pending, a.loading = nil, ""
			a.cancel()
			a.cancel = nil
			a.handleResult(res)
		default:
		}
	}
	if a.watcher != nil {
		select {
		case path := <-a.watcher.Changes():
			a.log.Info("model changed on disk, reloading", "path", path)
			a.startLoad(a.source)
		default:
		}
	}
}

// handleResult uploads and attaches a finished load. Every failure leaves the previous
// model displayed.
func (a *App) handleResult(res asset.Result) {
	if res.Err != nil {
		a.log.Error("model load failed", "source", res.Source, "err", res.Err)
		a.setStatus("Load failed: "+filepath.Base(res.Source), statusTTL)
		return
	}
	model, err := scene.LoadModel(res.Path, res.MeshCount)
	if err != nil {
		res.Root.Dispose()
		a.log.Error("model upload failed", "source", res.Source, "err", err)
		a.setStatus("Load failed: "+filepath.Base(res.Source), statusTTL)
		return
	}
	report, err := a.viewer.Attach(res.Root, res.Manifest)
	if err != nil {
		rl.UnloadModel(model)
		res.Root.Dispose()
		a.log.Error("model not attached", "source", res.Source, "err", err)
		a.setStatus("Load failed: "+filepath.Base(res.Source), statusTTL)
		return
	}
	a.scn.Renderer.Replace(model, a.viewer.Model())
	a.applyDefaults()
	a.source = res.Source
	watched := res.Path
	if strings.EqualFold(filepath.Ext(res.Source), ".zip") {
		watched = res.Source
	}
	a.watchModel(watched)

	a.log.Info("model ready", "source", res.Source, "meshes", res.MeshCount, "bound", len(report.Bound))
	a.setStatus("Loaded "+filepath.Base(res.Path), statusTTL)
}

// applyDefaults recolors bound parts with their configured defaults and refreshes every
// container's highlight: a default that is not in the catalog selects nothing, and an
// unbound part has nothing selected.
func (a *App) applyDefaults() {
	defaults := map[configurator.Part]string{}
	for name, value := range a.cfg.DefaultColors {
		if p, err := configurator.ParsePart(name); err == nil {
			defaults[p] = value
		}
	}
	applied := map[configurator.Part]bool{}
	for _, p := range a.viewer.ApplyDefaults(defaults) {
		applied[p] = true
	}
	for _, p := range configurator.Parts {
		value := ""
		if applied[p] {
			value = defaults[p]
		}
		a.pal.Refresh(string(p), value)
	}
	a.pview.Sync()
}

// watchModel (re)starts the file watcher on a local model and its manifest sidecar.
func (a *App) watchModel(path string) {
	if !a.cfg.Watch || download.IsURL(a.source) {
		return
	}
	a.closeWatcher()
	w, err := watch.New(watch.DefaultDebounce, a.log.With("component", "watch"), path, manifest.PathFor(path))
	if err != nil {
		a.log.Warn("hot reload disabled", "err", err)
		return
	}
	a.watcher = w
}

func (a *App) closeWatcher() {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.log.Debug("watcher close", "err", err)
		}
		a.watcher = nil
	}
}
