package renderer

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	oxylog "github.com/Carmen-Shannon/oxy-renderstate/engine/log"
	"github.com/Carmen-Shannon/oxy-renderstate/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/rs/zerolog"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline
	samplerCache  map[string]map[int]*wgpu.Sampler

	backendType RendererBackendType
	backend     RendererBackend
	logger      zerolog.Logger

	// releaseSampler frees a GPU sampler that is no longer referenced by any pipeline
	releaseSampler func(*wgpu.Sampler)
}

// Renderer defines the interface for the rendering system.
//
// The Renderer manages a cache of pipelines and the GPU samplers created for their sampler slots.
// It does not create devices or surfaces, the host hands it a device that already exists.
// The Renderer also implements a backend which allows for multiple backend API implementations to exist.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves a copy of the cache of Pipelines.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines creates the GPU samplers of one or more pipelines via the backend, then caches
	// the pipelines by PipelineKey. Pipelines whose keys are already registered are skipped to avoid duplicate
	// GPU resource creation; use ReplacePipeline to swap one out.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if sampler creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// ReplacePipeline registers p under its key, releasing the samplers of the pipeline it replaces.
	// The previous pipeline stays in place when sampler creation fails.
	//
	// Parameters:
	//   - p: the Pipeline to register
	//
	// Returns:
	//   - error: an error if sampler creation fails
	ReplacePipeline(p pipeline.Pipeline) error

	// InitSamplers creates one GPU sampler for every staged sampler slot of p without caching anything.
	// Either every sampler is created or none is returned.
	//
	// Parameters:
	//   - p: the pipeline whose sampler slots should be created
	//
	// Returns:
	//   - map[int]*wgpu.Sampler: the created samplers keyed by sampler slot index
	//   - error: an error if any sampler could not be created
	InitSamplers(p pipeline.Pipeline) (map[int]*wgpu.Sampler, error)

	// Samplers returns the GPU samplers created for a registered pipeline.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - map[int]*wgpu.Sampler: the samplers keyed by sampler slot index, nil if the pipeline is not registered
	Samplers(key string) map[int]*wgpu.Sampler

	// CreateComparisonSampler creates a comparison sampler suitable for PCF shadow mapping.
	//
	// Returns:
	//   - *wgpu.Sampler: the comparison sampler
	//   - error: an error if sampler creation fails
	CreateComparisonSampler() (*wgpu.Sampler, error)

	// Release frees every cached sampler and empties the caches.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer on top of an existing GPU device.
//
// Parameters:
//   - device: the device used to create GPU objects, usually a *wgpu.Device
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified options
func NewRenderer(device SamplerDevice, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:             &sync.Mutex{},
		pipelineCache:  make(map[string]pipeline.Pipeline),
		samplerCache:   make(map[string]map[int]*wgpu.Sampler),
		backendType:    BackendTypeWGPU,
		logger:         oxylog.WithComponent("renderer"),
		releaseSampler: (*wgpu.Sampler).Release,
	}
	for _, opt := range options {
		opt(r)
	}

	switch r.backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(device)
	}
	return r
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.pipelineCache)
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		samplers, err := r.initSamplers(p)
		if err != nil {
			return err
		}
		r.pipelineCache[key] = p
		r.samplerCache[key] = samplers
		r.logRegistered(p, len(samplers))
	}
	return nil
}

func (r *renderer) ReplacePipeline(p pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := p.PipelineKey()
	samplers, err := r.initSamplers(p)
	if err != nil {
		return err
	}
	r.release(r.samplerCache[key])
	r.pipelineCache[key] = p
	r.samplerCache[key] = samplers
	r.logRegistered(p, len(samplers))
	return nil
}

func (r *renderer) InitSamplers(p pipeline.Pipeline) (map[int]*wgpu.Sampler, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initSamplers(p)
}

// initSamplers creates the samplers of p, releasing the ones already created if any slot fails.
// The caller must hold r.mu.
func (r *renderer) initSamplers(p pipeline.Pipeline) (map[int]*wgpu.Sampler, error) {
	for _, w := range p.Warnings() {
		r.logger.Warn().
			Str(oxylog.FieldEvent, "renderer.lossy_state").
			Str("pipeline", p.PipelineKey()).
			Msg(w)
	}

	staged := p.Samplers()
	out := make(map[int]*wgpu.Sampler, len(staged))
	for _, index := range p.SamplerIndices() {
		data := staged[index]
		label := fmt.Sprintf("%s %s", p.PipelineKey(), data.Label)
		samp, err := r.backend.InitSampler(label, data)
		if err != nil {
			r.release(out)
			return nil, errors.Join(fmt.Errorf("pipeline %q sampler %d", p.PipelineKey(), index), err)
		}
		out[index] = samp
	}
	return out, nil
}

func (r *renderer) Samplers(key string) map[int]*wgpu.Sampler {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.samplerCache[key]; ok {
		return maps.Clone(s)
	}
	return nil
}

func (r *renderer) CreateComparisonSampler() (*wgpu.Sampler, error) {
	return r.backend.CreateComparisonSampler()
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.samplerCache {
		r.release(s)
	}
	clear(r.samplerCache)
	clear(r.pipelineCache)
}

// logRegistered records the fixed-function state a backend builds the render pipeline of p with.
func (r *renderer) logRegistered(p pipeline.Pipeline, samplers int) {
	primitive := p.PrimitiveState()
	r.logger.Debug().
		Str(oxylog.FieldEvent, "renderer.pipeline_registered").
		Str("pipeline", p.PipelineKey()).
		Str("cull_mode", fmt.Sprint(primitive.CullMode)).
		Str("front_face", fmt.Sprint(primitive.FrontFace)).
		Int32("depth_bias", p.DepthBias()).
		Float32("depth_bias_slope_scale", p.DepthBiasSlopeScale()).
		Float32("depth_bias_clamp", p.DepthBiasClamp()).
		Int("samplers", samplers).
		Msg("pipeline registered")
}

func (r *renderer) release(samplers map[int]*wgpu.Sampler) {
	for _, s := range samplers {
		if s != nil {
			r.releaseSampler(s)
		}
	}
}
