// Package watch produces reload triggers from file changes and a cron schedule.
//
// Both producers send the name of their source on a shared channel without
// blocking. With a buffer of one, bursts collapse into a single pending reload.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
)

// Trigger source names.
const (
	SourceWatch    = "watch"
	SourceSchedule = "schedule"
)

// NewTriggers returns a trigger channel that coalesces pending reloads.
func NewTriggers() chan string {
	return make(chan string, 1)
}

func send(out chan<- string, src string) bool {
	select {
	case out <- src:
		return true
	default:
		return false
	}
}

// Watcher reports changes to one file. It watches the parent directory so
// editors that save by renaming a temp file over the original are still seen.
type Watcher struct {
	path     string
	debounce time.Duration
	clock    clockwork.Clock
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithClock sets the clock used for debouncing.
func WithClock(c clockwork.Clock) Option {
	return func(w *Watcher) { w.clock = c }
}

// NewWatcher starts watching the directory containing path. Events are
// debounced: a trigger fires once no further change has been seen for the
// debounce interval. A zero debounce fires on every event.
func NewWatcher(path string, debounce time.Duration, logger *slog.Logger, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		debounce: debounce,
		clock:    clockwork.NewRealClock(),
		watcher:  fw,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run forwards debounced change notifications to out until ctx is cancelled
// or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, out chan<- string) error {
	w.logger.Info("file watcher started", "path", w.path, "debounce", w.debounce)

	var (
		timer clockwork.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("source file changed", "path", ev.Name, "op", ev.Op.String())
			if w.debounce <= 0 {
				w.emit(out)
				continue
			}
			if timer == nil {
				timer = w.clock.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.Chan()

		case <-fire:
			fire = nil
			w.emit(out)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

func (w *Watcher) emit(out chan<- string) {
	if !send(out, SourceWatch) {
		w.logger.Debug("reload already pending", "source", SourceWatch)
	}
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
