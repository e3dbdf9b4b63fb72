package renderer

import (
	"github.com/Carmen-Shannon/oxy-renderstate/engine/renderer/pipeline"
	"github.com/rs/zerolog"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPipeline pre-registers a single Pipeline in the renderer's pipeline cache under the given key.
// No GPU samplers are created for it until it is replaced through ReplacePipeline.
//
// Parameters:
//   - key: the unique identifier for the pipeline
//   - p: the Pipeline to cache
//
// Returns:
//   - RendererBuilderOption: a function that applies the pipeline option to a renderer
func WithPipeline(key string, p pipeline.Pipeline) RendererBuilderOption {
	return func(r *renderer) {
		r.pipelineCache[key] = p
	}
}

// WithBackendType selects the GPU backend implementation.
//
// Parameters:
//   - backendType: the backend to use, BackendTypeWGPU is the only one and the default
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend type option to a renderer
func WithBackendType(backendType RendererBackendType) RendererBuilderOption {
	return func(r *renderer) {
		r.backendType = backendType
	}
}

// WithLogger sets the logger that receives lossy translation warnings when pipelines are registered.
//
// Parameters:
//   - l: the zerolog logger to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(l zerolog.Logger) RendererBuilderOption {
	return func(r *renderer) {
		r.logger = l
	}
}
