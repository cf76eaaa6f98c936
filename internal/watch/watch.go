// Package watch runs a callback for every .sql file that appears or changes
// in a content directory.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nkosisibusisokingjunior-lang/psychic-engine/logging"
)

// DefaultSettle is how long a file must stay quiet before it is handled.
const DefaultSettle = 500 * time.Millisecond

// Handler processes one file. A returned error is logged and watching
// continues.
type Handler func(ctx context.Context, path string) error

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettle sets the quiet period used to coalesce events.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) { w.settle = d }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) { w.logger = logger }
}

// Watcher watches a single directory, non-recursively.
type Watcher struct {
	dir     string
	fsw     *fsnotify.Watcher
	settle  time.Duration
	logger  *slog.Logger
	pending map[string]struct{}
}

// New starts watching dir. Events are buffered by fsnotify until Run is called.
func New(dir string, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		dir:     dir,
		fsw:     fsw,
		settle:  DefaultSettle,
		logger:  logging.Discard(),
		pending: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Dir watches dir and calls fn for each created or written .sql file until
// ctx is done.
func Dir(ctx context.Context, dir string, fn Handler, opts ...Option) error {
	w, err := New(dir, opts...)
	if err != nil {
		return err
	}
	return w.Run(ctx, fn)
}

// Run delivers settled files to fn, one at a time, until ctx is done. It
// closes the watcher on return.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	defer w.fsw.Close()

	// armed by the first relevant event
	timer := time.NewTimer(w.settle)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug("file event", "file", event.Name, "op", event.Op.String())
			w.pending[event.Name] = struct{}{}
			timer.Reset(w.settle)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "dir", w.dir, "error", err)

		case <-timer.C:
			w.flush(ctx, fn)
		}
	}
}

// flush hands every pending file to fn in name order.
func (w *Watcher) flush(ctx context.Context, fn Handler) {
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	clear(w.pending)

	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		w.logger.Info("processing changed file", "file", path)
		if err := fn(ctx, path); err != nil {
			w.logger.Error("failed to process file", "file", path, "error", err)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	return strings.EqualFold(filepath.Ext(event.Name), ".sql")
}
