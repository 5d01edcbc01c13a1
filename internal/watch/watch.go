// Package watch reports changes of the model file (and its part manifest) so the viewer
// can reload it. Bursts of file events are coalesced into one notification.
package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event before a change is reported.
const DefaultDebounce = 250 * time.Millisecond

// Watcher watches a set of files through their parent directories, so that editors
// which replace files on save are still seen.
type Watcher struct {
	fs       *fsnotify.Watcher
	targets  map[string]bool
	debounce time.Duration
	log      *slog.Logger

	changes   chan string
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New starts watching paths. The first path is the one reported on Changes.
func New(debounce time.Duration, log *slog.Logger, paths ...string) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("watch: no paths")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w := &Watcher{
		fs:       fw,
		targets:  map[string]bool{},
		debounce: debounce,
		log:      log,
		changes:  make(chan string, 1),
		done:     make(chan struct{}),
	}
	dirs := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch: %w", err)
		}
		w.targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch: %s: %w", dir, err)
		}
	}
	w.wg.Add(1)
	go w.run(paths[0])
	return w, nil
}

// Changes receives the primary path once per burst of changes. Notifications that
// arrive while a previous one is still unread are merged.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Close stops watching. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) run(primary string) {
	defer w.wg.Done()
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if !w.targets[filepath.Clean(ev.Name)] {
				continue
			}
			w.log.Debug("file event", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "err", err)
		case <-timer.C:
			select {
			case w.changes <- primary:
			default:
			}
		}
	}
}
