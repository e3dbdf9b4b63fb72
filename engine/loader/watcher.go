package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	oxylog "github.com/Carmen-Shannon/oxy-renderstate/engine/log"
	"github.com/Carmen-Shannon/oxy-renderstate/engine/renderstate"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long the Watcher waits after the last change to a file before reloading it.
const DefaultDebounce = 250 * time.Millisecond

// Reload is sent to subscribers after a watched file was reloaded successfully.
type Reload struct {
	// Path is the watched path as it was passed to NewWatcher.
	Path   string
	Config renderstate.ShaderStateConfig
}

// Watcher reloads render-state files through a Loader when they change on disk.
// Invalid edits never replace the cached config: they are logged and the previous config stays in use.
type Watcher struct {
	loader   Loader
	debounce time.Duration
	logger   zerolog.Logger

	// files maps a cleaned path to the path given by the caller
	files map[string]string

	fsw  *fsnotify.Watcher
	done chan struct{}

	// timerMu guards timers and stopped. pending counts scheduled reloads that have not finished.
	timerMu sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	pending sync.WaitGroup

	listenersMu sync.RWMutex
	listeners   []chan<- Reload
}

// WatcherBuilderOption is a functional option for configuring a Watcher via NewWatcher.
type WatcherBuilderOption func(*Watcher)

// WithDebounce sets the quiet period after the last change before a file is reloaded.
//
// Parameters:
//   - d: the debounce duration, non-positive values keep DefaultDebounce
//
// Returns:
//   - WatcherBuilderOption: a function that applies the debounce option to a watcher
func WithDebounce(d time.Duration) WatcherBuilderOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatcherLogger sets the logger for watcher events.
//
// Parameters:
//   - logger: the zerolog logger to use
//
// Returns:
//   - WatcherBuilderOption: a function that applies the logger option to a watcher
func WithWatcherLogger(logger zerolog.Logger) WatcherBuilderOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher creates a Watcher for the given files. Nothing is watched until Start is called.
//
// Parameters:
//   - l: the loader whose cache is refreshed on change
//   - paths: the render-state files to watch
//   - opts: a variadic list of WatcherBuilderOption functions to configure the Watcher
//
// Returns:
//   - *Watcher: the configured watcher
func NewWatcher(l Loader, paths []string, opts ...WatcherBuilderOption) *Watcher {
	w := &Watcher{
		loader:   l,
		debounce: DefaultDebounce,
		logger:   oxylog.WithComponent("watcher"),
		files:    make(map[string]string, len(paths)),
		timers:   make(map[string]*time.Timer),
	}
	for _, p := range paths {
		w.files[filepath.Clean(p)] = p
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Subscribe registers a channel that receives every successful reload.
// Sends never block: a full channel misses the notification. The caller owns the channel.
//
// Parameters:
//   - ch: the channel to notify
func (w *Watcher) Subscribe(ch chan<- Reload) {
	w.listenersMu.Lock()
	defer w.listenersMu.Unlock()
	w.listeners = append(w.listeners, ch)
}

// Start begins watching. The parent directory of every file is watched so that editors which
// replace files on save are still observed. The watch loop runs until ctx is done or Stop is called.
//
// Parameters:
//   - ctx: bounds the lifetime of the watch loop
//
// Returns:
//   - error: an error if the watcher could not be created or a directory could not be watched
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	dirs := make(map[string]bool)
	for clean := range w.files {
		dir := filepath.Dir(clean)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	w.fsw = fsw
	w.done = make(chan struct{})
	w.logger.Info().
		Str(oxylog.FieldEvent, "renderstate.watcher_started").
		Int("files", len(w.files)).
		Msg("watching render state files for changes")

	go w.watchLoop(ctx)
	return nil
}

// Stop closes the watcher, waits for the watch loop to exit and cancels pending reloads.
// A reload that is already running completes before Stop returns.
func (w *Watcher) Stop() {
	if w.fsw != nil {
		_ = w.fsw.Close()
		<-w.done
	}

	w.timerMu.Lock()
	w.stopped = true
	for path, t := range w.timers {
		if t.Stop() {
			w.pending.Done()
		}
		delete(w.timers, path)
	}
	w.timerMu.Unlock()

	w.pending.Wait()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Str(oxylog.FieldEvent, "renderstate.watcher_stopped").Msg("render state watcher stopped")
			_ = w.fsw.Close()
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			path, watched := w.files[filepath.Clean(event.Name)]
			if !watched {
				continue
			}
			// Write and Create cover in-place saves and editors that replace the file.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.logger.Debug().
					Str(oxylog.FieldEvent, "renderstate.file_changed").
					Str(oxylog.FieldPath, path).
					Str("op", event.Op.String()).
					Msg("render state file changed")
				w.schedule(path)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error().
				Err(err).
				Str(oxylog.FieldEvent, "renderstate.watcher_error").
				Msg("render state watcher error")
		}
	}
}

// schedule (re)arms the debounce timer of path.
func (w *Watcher) schedule(path string) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.stopped {
		return
	}

	if t, ok := w.timers[path]; ok && t.Stop() {
		w.pending.Done()
	}
	w.pending.Add(1)
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		defer w.pending.Done()
		w.reload(path)
	})
}

func (w *Watcher) reload(path string) {
	cfg, err := w.loader.Reload(path)
	if err != nil {
		w.logger.Error().
			Err(err).
			Str(oxylog.FieldEvent, "renderstate.reload_failed").
			Str(oxylog.FieldPath, path).
			Msg("keeping previous render state")
		return
	}
	w.logger.Info().
		Str(oxylog.FieldEvent, "renderstate.reloaded").
		Str(oxylog.FieldPath, path).
		Msg("render state reloaded")
	w.notify(Reload{Path: path, Config: cfg})
}

// notify sends r to all listeners without blocking.
func (w *Watcher) notify(r Reload) {
	w.listenersMu.RLock()
	defer w.listenersMu.RUnlock()

	for _, ch := range w.listeners {
		select {
		case ch <- r.clone():
		default:
			w.logger.Warn().
				Str(oxylog.FieldEvent, "renderstate.listener_skip").
				Str(oxylog.FieldPath, r.Path).
				Msg("skipped notifying listener (channel full)")
		}
	}
}

func (r Reload) clone() Reload {
	return Reload{Path: r.Path, Config: r.Config.Clone()}
}
