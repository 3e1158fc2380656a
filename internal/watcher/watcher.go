// Package watcher reports changed grammar files in a directory, debounced
// so an editor's save burst arrives as one change.
package watcher

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"hlkit/internal/grammar"
)

// Change lists the grammar files touched since the last notification.
type Change struct {
	// Paths that were written or created.
	Updated []string
	// Paths that were removed or renamed away.
	Removed []string
}

func (c Change) Names() []string {
	var names []string
	for _, p := range append(slices.Clone(c.Updated), c.Removed...) {
		names = append(names, grammar.NameFromPath(p))
	}
	slices.Sort(names)
	return slices.Compact(names)
}

type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dir       string
	debounce  time.Duration
	log       *zap.Logger
	onChange  chan Change
	done      chan struct{}
}

type Config struct {
	Dir         string
	DebounceDur time.Duration
}

func DefaultConfig(dir string) Config {
	return Config{
		Dir:         dir,
		DebounceDur: 200 * time.Millisecond,
	}
}

func New(cfg Config, log *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Watcher{
		fsWatcher: fsw,
		dir:       cfg.Dir,
		debounce:  cfg.DebounceDur,
		log:       log,
		onChange:  make(chan Change, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching the grammar directory.
func (w *Watcher) Start() (<-chan Change, error) {
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", w.dir, err)
	}

	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher. The change channel is closed once the loop
// exits.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

func (w *Watcher) loop() {
	defer close(w.onChange)

	var (
		timer   *time.Timer
		updated = map[string]bool{}
		removed = map[string]bool{}
	)
	timerC := func() <-chan time.Time {
		if timer != nil {
			return timer.C
		}
		return nil
	}

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !grammar.IsGrammarFile(filepath.Base(event.Name)) {
				continue
			}

			switch {
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				removed[event.Name] = true
				delete(updated, event.Name)
			case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
				updated[event.Name] = true
				delete(removed, event.Name)
			default:
				continue
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC():
			timer = nil
			change := Change{Updated: sortedKeys(updated), Removed: sortedKeys(removed)}
			select {
			case w.onChange <- change:
				updated, removed = map[string]bool{}, map[string]bool{}
			case <-w.done:
				return
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("grammar watcher", zap.Error(err))

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
