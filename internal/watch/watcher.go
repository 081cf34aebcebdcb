package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/observability"
)

// DefaultDebounce is the quiet window between the last file event and a rebuild.
const DefaultDebounce = 300 * time.Millisecond

// BuildFunc runs one full build. Errors are logged and watching continues.
type BuildFunc func(ctx context.Context) error

// Options configures a Watcher.
type Options struct {
	// Roots are directories watched recursively.
	Roots []string
	// Ignore lists directories whose events never trigger a rebuild.
	Ignore   []string
	Debounce time.Duration
	// RebuildEvery requests a rebuild on a fixed interval when positive.
	RebuildEvery time.Duration
}

// Watcher turns file events into serialized rebuilds.
type Watcher struct {
	build    BuildFunc
	opts     Options
	ignore   []string
	requests chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

func New(build BuildFunc, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	w := &Watcher{build: build, opts: opts, requests: make(chan struct{}, 1)}
	for _, dir := range opts.Ignore {
		if abs, err := filepath.Abs(dir); err == nil {
			w.ignore = append(w.ignore, abs)
		}
	}
	return w
}

// Request asks for a rebuild. Requests made while one is already pending
// are merged into it.
func (w *Watcher) Request() {
	select {
	case w.requests <- struct{}{}:
	default:
	}
}

// trigger schedules a request after the debounce window, restarting the
// window on every call.
func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, w.Request)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Run watches until ctx is canceled. It returns after the rebuild loop has
// finished its current build.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fw.Close() }()

	for _, root := range w.opts.Roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", root, err)
		}
		if err := w.addDirsRecursive(fw, abs); err != nil {
			return err
		}
	}

	if w.opts.RebuildEvery > 0 {
		sched, err := NewScheduler()
		if err != nil {
			return err
		}
		if _, err := sched.Every(w.opts.RebuildEvery, "periodic-rebuild", w.Request); err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				slog.Warn("Failed to stop scheduler", logfields.Error(err))
			}
		}()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.rebuildLoop(ctx)
	}()
	defer wg.Wait()
	defer w.stopTimer()

	slog.Info("Watching for changes", logfields.Count(len(w.opts.Roots)))
	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping watch mode")
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fw, ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) rebuildLoop(ctx context.Context) {
	ctx = observability.WithWatch(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.requests:
			start := time.Now()
			observability.InfoContext(ctx, "Change detected; rebuilding site")
			if err := w.build(ctx); err != nil {
				observability.WarnContext(ctx, "Rebuild failed", logfields.Error(err), logfields.Elapsed(start))
				continue
			}
			observability.DebugContext(ctx, "Rebuild finished", logfields.Elapsed(start))
		}
	}
}

func (w *Watcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event) {
	if w.ignored(ev.Name) || shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirsRecursive(fw, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), logfields.Event(ev.Op.String()))
	w.trigger()
}

func (w *Watcher) addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("watch %s: %w", root, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// ignored reports whether p lies in one of the ignored directories.
func (w *Watcher) ignored(p string) bool {
	abs, err := filepath.Abs(p)
	if err != nil {
		return false
	}
	for _, dir := range w.ignore {
		if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// shouldIgnoreEvent filters hidden files and editor droppings.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
