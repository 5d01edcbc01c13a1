// Package asset loads product models in the background: it resolves the source (local
// path or URL), reads it while reporting progress, decodes the glTF document and builds
// the scenegraph tree the configurator binds against.
package asset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"configurator/internal/archive"
	"configurator/internal/download"
	"configurator/internal/manifest"
	"configurator/internal/scenegraph"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported model format")
	ErrNoMeshes          = errors.New("model has no drawable meshes")
)

// DefaultCacheDir receives models fetched from URLs.
const DefaultCacheDir = "assets/cache"

// Result is the outcome of one load. Either Err is set or Root is.
type Result struct {
	Source string
	// Path is the local file the renderer should upload.
	Path      string
	Root      *scenegraph.Node
	Manifest  *manifest.Manifest
	MeshCount int
	Err       error
}

// Progress is a loading progress update in whole percent.
type Progress struct {
	Source  string
	Percent int
}

// DrainProgress empties ch without blocking and returns the latest update for source.
// Updates for any other source belong to a superseded load and are dropped.
func DrainProgress(ch <-chan Progress, source string) (Progress, bool) {
	var last Progress
	found := false
	for {
		select {
		case p := <-ch:
			if p.Source == source {
				last, found = p, true
			}
		default:
			return last, found
		}
	}
}

// Loader loads models off the main goroutine. Its fields are read-only once loads start.
type Loader struct {
	CacheDir string
	Download *download.Client
	// Override entries win over the asset's sidecar manifest.
	Override *manifest.Manifest
	Log      *slog.Logger
	// OnProgress, when set, is called from the loading goroutine.
	OnProgress func(Progress)
}

// Load starts loading source and returns a channel that receives exactly one Result.
func (l *Loader) Load(ctx context.Context, source string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		res := l.load(ctx, source)
		res.Source = source
		out <- res
		close(out)
	}()
	return out
}

// LoadSync is Load without the goroutine, for tools that block anyway.
func (l *Loader) LoadSync(ctx context.Context, source string) Result {
	res := l.load(ctx, source)
	res.Source = source
	return res
}

func (l *Loader) log() *slog.Logger {
	if l.Log == nil {
		return slog.Default()
	}
	return l.Log
}

func (l *Loader) load(ctx context.Context, source string) Result {
	progress := l.progressReporter(source)

	path := source
	if download.IsURL(source) {
		client := l.Download
		if client == nil {
			client = &download.Client{}
		}
		saved, err := client.Download(ctx, source, l.cacheDir(), func(read, total int64) {
			if total > 0 {
				progress(int(read * 100 / total))
			}
		})
		if err != nil {
			return Result{Err: err}
		}
		path = saved
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".zip" {
		model, err := l.unpack(path)
		if err != nil {
			return Result{Path: path, Err: err}
		}
		path = model
		ext = strings.ToLower(filepath.Ext(path))
	}
	if ext != ".glb" && ext != ".gltf" {
		return Result{Path: path, Err: fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)}
	}

	doc, err := l.decode(ctx, path, ext, progress)
	if err != nil {
		return Result{Path: path, Err: err}
	}
	root, count, err := BuildGraph(doc)
	if err != nil {
		return Result{Path: path, Err: err}
	}
	if count == 0 {
		return Result{Path: path, Err: fmt.Errorf("%w: %s", ErrNoMeshes, path)}
	}

	m, err := manifest.LoadFor(path)
	if err != nil {
		return Result{Path: path, Err: err}
	}
	if !l.Override.Empty() {
		m = m.Merge(l.Override)
	}
	return Result{Path: path, Root: root, Manifest: m, MeshCount: count}
}

func (l *Loader) cacheDir() string {
	if l.CacheDir == "" {
		return DefaultCacheDir
	}
	return l.CacheDir
}

// unpack extracts a zipped bundle into the cache and returns the model inside it.
func (l *Loader) unpack(zipPath string) (string, error) {
	name := strings.TrimSuffix(filepath.Base(zipPath), filepath.Ext(zipPath))
	dest := filepath.Join(l.cacheDir(), name)
	if err := os.RemoveAll(dest); err != nil {
		return "", fmt.Errorf("asset: %w", err)
	}
	files, err := archive.Unzip(zipPath, dest)
	if err != nil {
		return "", fmt.Errorf("asset: %w", err)
	}
	model, err := archive.FindModel(files)
	if err != nil {
		return "", fmt.Errorf("asset: %s: %w", zipPath, err)
	}
	l.log().Debug("bundle extracted", "archive", zipPath, "model", model, "files", len(files))
	return model, nil
}

func (l *Loader) decode(ctx context.Context, path, ext string, progress func(int)) (*gltf.Document, error) {
	if ext == ".gltf" {
		// Text glTF may reference sibling buffers; gltf.Open resolves them relative to path.
		progress(0)
		doc, err := gltf.Open(path)
		if err != nil {
			return nil, fmt.Errorf("asset: decode %s: %w", path, err)
		}
		progress(100)
		return doc, nil
	}

	data, err := readWithProgress(ctx, path, progress)
	if err != nil {
		return nil, err
	}
	var doc gltf.Document
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("asset: decode %s: %w", path, err)
	}
	return &doc, nil
}

// progressReporter logs progress every 10 percent and forwards every change to OnProgress.
func (l *Loader) progressReporter(source string) func(int) {
	last, lastLogged := -1, -1
	return func(pct int) {
		pct = max(0, min(100, pct))
		if pct == last {
			return
		}
		last = pct
		if pct == 100 || pct/10 > lastLogged/10 || lastLogged < 0 {
			lastLogged = pct
			l.log().Info("loading", "source", source, "percent", pct)
		}
		if l.OnProgress != nil {
			l.OnProgress(Progress{Source: source, Percent: pct})
		}
	}
}

const chunkSize = 64 << 10

func readWithProgress(ctx context.Context, path string, progress func(int)) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("asset: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("asset: %w", err)
	}
	total := info.Size()
	buf := bytes.NewBuffer(make([]byte, 0, total))
	progress(0)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := io.CopyN(buf, f, chunkSize)
		if total > 0 && n > 0 {
			progress(int(int64(buf.Len()) * 100 / total))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("asset: read %s: %w", path, err)
		}
	}
	progress(100)
	return buf.Bytes(), nil
}
