package pipeline

import (
	"maps"
	"slices"

	"github.com/Carmen-Shannon/oxy-renderstate/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
// It holds the fixed-function render state of one shader along with the sampler configuration of each sampler slot.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	// The following properties are set from the rasterizer section of a render-state file or with the builder options.

	depthBias           int32
	depthBiasSlopeScale float32
	depthBiasClamp      float32
	cullMode            wgpu.CullMode
	frontFace           wgpu.FrontFace

	// samplers maps a sampler slot index to the staging data used to create its GPU sampler
	samplers map[int]common.SamplerStagingData
	// samplerOrder keeps the slot indices in the order they were staged
	samplerOrder []int
	// warnings collects every setting that could not be expressed exactly
	warnings []string
}

// Pipeline defines the interface for the render state of one shader: cull mode, winding and depth bias
// plus the staged samplers bound alongside it. It is a description only, the renderer turns it into GPU objects.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// DepthBias returns the depth bias value configured for this pipeline.
	//
	// Returns:
	//   - int32: the depth bias value for this pipeline
	DepthBias() int32

	// DepthBiasSlopeScale returns the depth bias slope scale configured for this pipeline.
	//
	// Returns:
	//   - float32: the depth bias slope scale for this pipeline
	DepthBiasSlopeScale() float32

	// DepthBiasClamp returns the maximum depth bias configured for this pipeline.
	//
	// Returns:
	//   - float32: the depth bias clamp, 0 for no clamp
	DepthBiasClamp() float32

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline (e.g., wgpu.CullModeNone, wgpu.CullModeFront, wgpu.CullModeBack)
	CullMode() wgpu.CullMode

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order for this pipeline (e.g., wgpu.FrontFaceCCW, wgpu.FrontFaceCW)
	FrontFace() wgpu.FrontFace

	// PrimitiveState returns the primitive state a render pipeline built from this description would use.
	// Render-state files always describe triangle lists.
	//
	// Returns:
	//   - wgpu.PrimitiveState: the topology, front face and cull mode of this pipeline
	PrimitiveState() wgpu.PrimitiveState

	// Samplers returns a copy of the staged samplers keyed by sampler slot index.
	//
	// Returns:
	//   - map[int]common.SamplerStagingData: the staging data of every sampler slot
	Samplers() map[int]common.SamplerStagingData

	// SamplerIndices returns the staged sampler slot indices in the order they were staged.
	//
	// Returns:
	//   - []int: the sampler slot indices
	SamplerIndices() []int

	// Warnings returns the settings that could not be translated exactly when the pipeline was built.
	//
	// Returns:
	//   - []string: one human readable message per lossy translation
	Warnings() []string
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new Pipeline interface.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey: pipelineKey,
		cullMode:    wgpu.CullModeNone,
		frontFace:   wgpu.FrontFaceCCW,
		samplers:    make(map[int]common.SamplerStagingData),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) DepthBias() int32 {
	return p.depthBias
}

func (p *pipeline) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlopeScale
}

func (p *pipeline) DepthBiasClamp() float32 {
	return p.depthBiasClamp
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) PrimitiveState() wgpu.PrimitiveState {
	return wgpu.PrimitiveState{
		Topology:  wgpu.PrimitiveTopologyTriangleList,
		FrontFace: p.frontFace,
		CullMode:  p.cullMode,
	}
}

func (p *pipeline) Samplers() map[int]common.SamplerStagingData {
	return maps.Clone(p.samplers)
}

func (p *pipeline) SamplerIndices() []int {
	return slices.Clone(p.samplerOrder)
}

func (p *pipeline) Warnings() []string {
	return slices.Clone(p.warnings)
}

// stageSampler records the staging data of a sampler slot, replacing any earlier entry for the same slot.
func (p *pipeline) stageSampler(index int, data common.SamplerStagingData) {
	if _, ok := p.samplers[index]; !ok {
		p.samplerOrder = append(p.samplerOrder, index)
	}
	p.samplers[index] = data
}
