package loader

import (
	"github.com/Carmen-Shannon/oxy-renderstate/engine/renderstate"
	"github.com/rs/zerolog"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithStrictness is an option builder that sets how unknown keys inside known sections are treated.
//
// Parameters:
//   - s: renderstate.Strict (default) or renderstate.Lenient
//
// Returns:
//   - LoaderBuilderOption: a function that applies the strictness option to a loader
func WithStrictness(s renderstate.Strictness) LoaderBuilderOption {
	return func(l *loader) {
		l.strictness = s
	}
}

// WithLogger is an option builder that sets the logger for load events and lenient-mode warnings.
//
// Parameters:
//   - logger: the zerolog logger to use
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger zerolog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		l.logger = logger
	}
}

// WithWorkers is an option builder that sets the maximum number of concurrent loads run by LoadAll.
//
// Parameters:
//   - n: the worker count, values below 1 are raised to 1
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker count option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = max(n, 1)
	}
}

// WithState is an option builder that pre-populates the cache with a config.
//
// Parameters:
//   - key: the cache key for the config
//   - cfg: the config to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the state option to a loader
func WithState(key string, cfg renderstate.ShaderStateConfig) LoaderBuilderOption {
	return func(l *loader) {
		l.stateCache[key] = cfg.Clone()
	}
}
