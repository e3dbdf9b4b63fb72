package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	oxylog "github.com/Carmen-Shannon/oxy-renderstate/engine/log"
	"github.com/Carmen-Shannon/oxy-renderstate/engine/renderstate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// LoaderBackendType identifies the asset file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeRenderState selects the .rs render-state loader backend.
	BackendTypeRenderState LoaderBackendType = iota
)

// ErrUnsupportedFormat is returned by Load for paths whose extension no backend understands.
var ErrUnsupportedFormat = errors.New("unsupported asset format")

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	stateCache map[string]renderstate.ShaderStateConfig

	backend loaderBackend

	// group collapses concurrent loads of the same path into one read
	group singleflight.Group

	// pool runs LoadAll batches, it is created on first use
	pool     worker.DynamicWorkerPool
	poolOnce sync.Once
	workers  int

	strictness renderstate.Strictness
	logger     zerolog.Logger
}

// Loader defines the public-facing interface for loading and caching render-state files.
// It abstracts the file format behind a generic backend and manages a cache of previously
// loaded configs. Failed loads are never cached; the caller decides whether to abort or
// fall back to a default state.
type Loader interface {
	// Load reads a render-state file and caches the result by path.
	// If the file is already cached, the cached version is returned without touching the disk.
	// Concurrent loads of the same uncached path share a single read and parse.
	//
	// Parameters:
	//   - path: the file path to the render-state file
	//
	// Returns:
	//   - renderstate.ShaderStateConfig: the loaded config
	//   - error: error if the format is unsupported, the file cannot be read or it fails to parse
	Load(path string) (renderstate.ShaderStateConfig, error)

	// LoadReader parses a render-state stream and caches it by the given name.
	// If the name is already cached, the cached version is returned and r is not read.
	//
	// Parameters:
	//   - name: the cache key, also used as the source label in diagnostics
	//   - r: the reader providing the file contents
	//
	// Returns:
	//   - renderstate.ShaderStateConfig: the loaded config
	//   - error: error if reading or parsing fails
	LoadReader(name string, r io.Reader) (renderstate.ShaderStateConfig, error)

	// LoadAll loads many files concurrently on the loader's worker pool.
	//
	// Parameters:
	//   - paths: the files to load, duplicates are loaded once
	//
	// Returns:
	//   - map[string]renderstate.ShaderStateConfig: the configs that loaded, keyed by path
	//   - error: the joined errors of every file that failed, nil if all succeeded
	LoadAll(paths []string) (map[string]renderstate.ShaderStateConfig, error)

	// Reload re-reads a file bypassing the cache. The cached config is replaced only when the
	// new file parses; on failure the previous config stays cached.
	//
	// Parameters:
	//   - path: the file path to reload
	//
	// Returns:
	//   - renderstate.ShaderStateConfig: the freshly loaded config
	//   - error: error if reading or parsing fails
	Reload(path string) (renderstate.ShaderStateConfig, error)

	// Get retrieves a cached config by name.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - renderstate.ShaderStateConfig: a copy of the cached config
	//   - bool: false if nothing is cached under name
	Get(name string) (renderstate.ShaderStateConfig, bool)

	// States returns a copy of the full cache.
	//
	// Returns:
	//   - map[string]renderstate.ShaderStateConfig: all cached configs keyed by name
	States() map[string]renderstate.ShaderStateConfig

	// Invalidate drops a cached config so the next Load reads the file again.
	//
	// Parameters:
	//   - name: the cache key to drop
	Invalidate(name string)

	// Close stops the worker pool used by LoadAll. The cache stays readable.
	Close()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeRenderState)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		stateCache: make(map[string]renderstate.ShaderStateConfig),
		workers:    runtime.NumCPU(),
		strictness: renderstate.Strict,
		logger:     oxylog.WithComponent("loader"),
	}

	// Options first so the backend is built with the configured strictness and logger.
	for _, option := range options {
		option(l)
	}

	switch backendType {
	case BackendTypeRenderState:
		fallthrough
	default:
		l.backend = newRenderStateLoaderBackend(l.strictness, l.logger)
	}
	return l
}

func (l *loader) Load(path string) (renderstate.ShaderStateConfig, error) {
	if cfg, ok := l.Get(path); ok {
		loadsTotal.WithLabelValues(resultCached).Inc()
		return cfg, nil
	}

	if err := l.checkFormat(path); err != nil {
		loadsTotal.WithLabelValues(resultError).Inc()
		return renderstate.ShaderStateConfig{}, err
	}

	v, err, _ := l.group.Do(path, func() (any, error) {
		// a concurrent caller may have filled the cache between Get and Do
		l.mu.RLock()
		cached, ok := l.stateCache[path]
		l.mu.RUnlock()
		if ok {
			return cached, nil
		}
		return l.loadAndStore(path, loadsTotal)
	})
	if err != nil {
		return renderstate.ShaderStateConfig{}, err
	}
	return v.(renderstate.ShaderStateConfig).Clone(), nil
}

func (l *loader) LoadReader(name string, r io.Reader) (renderstate.ShaderStateConfig, error) {
	if cfg, ok := l.Get(name); ok {
		loadsTotal.WithLabelValues(resultCached).Inc()
		return cfg, nil
	}

	cfg, err := l.backend.LoadReader(name, r)
	if err != nil {
		loadsTotal.WithLabelValues(resultError).Inc()
		l.logFailure(name, err)
		return renderstate.ShaderStateConfig{}, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	loadsTotal.WithLabelValues(resultOK).Inc()

	l.mu.Lock()
	l.stateCache[name] = cfg
	l.mu.Unlock()
	return cfg.Clone(), nil
}

func (l *loader) LoadAll(paths []string) (map[string]renderstate.ShaderStateConfig, error) {
	l.poolOnce.Do(func() {
		// Queue size of 256 covers a typical shader directory with headroom.
		l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	})

	unique := slices.Compact(slices.Sorted(slices.Values(paths)))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[string]renderstate.ShaderStateConfig, len(unique))
		errs    = make(map[string]error)
	)
	for id, path := range unique {
		wg.Add(1)
		l.pool.SubmitTask(worker.Task{
			ID:      id,
			Payload: path,
			Do: func() (any, error) {
				defer wg.Done()

				cfg, err := l.Load(path)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs[path] = err
					return nil, err
				}
				results[path] = cfg
				return cfg, nil
			},
		})
	}
	wg.Wait()

	// join in path order so the combined message is stable
	var joined []error
	for _, path := range unique {
		if err, ok := errs[path]; ok {
			joined = append(joined, err)
		}
	}
	return results, errors.Join(joined...)
}

func (l *loader) Reload(path string) (renderstate.ShaderStateConfig, error) {
	if err := l.checkFormat(path); err != nil {
		reloadsTotal.WithLabelValues(resultError).Inc()
		return renderstate.ShaderStateConfig{}, err
	}
	v, err, _ := l.group.Do("reload\x00"+path, func() (any, error) {
		return l.loadAndStore(path, reloadsTotal)
	})
	if err != nil {
		return renderstate.ShaderStateConfig{}, err
	}
	return v.(renderstate.ShaderStateConfig).Clone(), nil
}

func (l *loader) Get(name string) (renderstate.ShaderStateConfig, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cfg, ok := l.stateCache[name]
	if !ok {
		return renderstate.ShaderStateConfig{}, false
	}
	return cfg.Clone(), true
}

func (l *loader) States() map[string]renderstate.ShaderStateConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]renderstate.ShaderStateConfig, len(l.stateCache))
	for k, v := range l.stateCache {
		result[k] = v.Clone()
	}
	return result
}

func (l *loader) Invalidate(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.stateCache, name)
}

func (l *loader) Close() {
	if l.pool != nil {
		l.pool.Stop()
	}
}

// loadAndStore parses path through the backend and caches the result on success.
// The outcome is counted on results, loadsTotal for loads and reloadsTotal for reloads.
func (l *loader) loadAndStore(path string, results *prometheus.CounterVec) (renderstate.ShaderStateConfig, error) {
	cfg, err := l.backend.Load(path)
	if err != nil {
		results.WithLabelValues(resultError).Inc()
		l.logFailure(path, err)
		return renderstate.ShaderStateConfig{}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	results.WithLabelValues(resultOK).Inc()

	l.mu.Lock()
	l.stateCache[path] = cfg
	l.mu.Unlock()

	l.logger.Debug().
		Str(oxylog.FieldEvent, "renderstate.loaded").
		Str(oxylog.FieldPath, path).
		Int("samplers", len(cfg.Samplers)).
		Bool("rasterizer", cfg.Rasterizer != nil).
		Msg("render state loaded")
	return cfg, nil
}

// checkFormat rejects paths whose extension the backend does not handle.
func (l *loader) checkFormat(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(l.backend.Extensions(), ext) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return nil
}

func (l *loader) logFailure(source string, err error) {
	ev := l.logger.Error().
		Err(err).
		Str(oxylog.FieldEvent, "renderstate.load_failed").
		Str(oxylog.FieldPath, source)
	var perr *renderstate.ParseError
	if errors.As(err, &perr) {
		ev = ev.Str("kind", perr.Kind.String()).Int(oxylog.FieldLine, perr.Line)
	}
	ev.Msg("render state rejected")
}
