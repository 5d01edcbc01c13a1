// Package frameloop runs the per-frame callback until it is told to stop. The callback
// is expected to pace itself (raylib's EndDrawing waits for the target frame time).
package frameloop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrAlreadyRun is returned when Run is called a second time on the same Loop.
var ErrAlreadyRun = errors.New("frameloop: already run")

// Loop is a start/stop handle for one render loop.
type Loop struct {
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
	started  atomic.Bool
	frames   atomic.Uint64
}

func New() *Loop {
	return &Loop{stop: make(chan struct{}), done: make(chan struct{})}
}

// Run calls frame repeatedly on the calling goroutine until ctx is cancelled, Stop is
// called, or frame returns false. It returns ctx.Err() when the context ended the loop.
func (l *Loop) Run(ctx context.Context, frame func() bool) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyRun
	}
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stop:
			return nil
		default:
		}
		if !frame() {
			return nil
		}
		l.frames.Add(1)
	}
}

// Stop ends the loop after the current frame. Safe to call more than once and from any goroutine.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Frames returns how many frames completed.
func (l *Loop) Frames() uint64 {
	return l.frames.Load()
}
