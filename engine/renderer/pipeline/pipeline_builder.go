package pipeline

import (
	"github.com/Carmen-Shannon/oxy-renderstate/common"
	"github.com/Carmen-Shannon/oxy-renderstate/engine/renderstate"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithDepthBias sets the depth bias parameters for this pipeline.
//
// Parameters:
//   - bias: the constant depth bias to apply
//   - slopeScale: the slope scale depth bias to apply
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth bias parameters for this pipeline
func WithDepthBias(bias int32, slopeScale float32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthBias = bias
		p.depthBiasSlopeScale = slopeScale
	}
}

// WithDepthBiasClamp sets the maximum depth bias for this pipeline.
//
// Parameters:
//   - clamp: the largest absolute depth bias applied, 0 for no clamp
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth bias clamp for this pipeline
func WithDepthBiasClamp(clamp float32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthBiasClamp = clamp
	}
}

// WithCullMode sets the cull mode for this pipeline.
//
// Parameters:
//   - mode: the cull mode to use for this pipeline (e.g., wgpu.CullModeNone, wgpu.CullModeFront, wgpu.CullModeBack)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode for this pipeline
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithFrontFace sets the front face winding order for this pipeline.
//
// Parameters:
//   - frontFace: the front face to use for this pipeline (e.g., wgpu.FrontFaceCCW, wgpu.FrontFaceCW)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the front face for this pipeline
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}

// WithSampler stages a sampler for the given slot, replacing any sampler already staged there.
//
// Parameters:
//   - index: the sampler slot index
//   - data: the sampler configuration
//
// Returns:
//   - PipelineBuilderOption: a function that stages the sampler on this pipeline
func WithSampler(index int, data common.SamplerStagingData) PipelineBuilderOption {
	return func(p *pipeline) {
		p.stageSampler(index, data)
	}
}

// WithRenderState applies a parsed render-state config to this pipeline.
// The rasterizer section, when present, overrides cull mode, front face and depth bias; without one the
// pipeline keeps its current values. Every sampler section is staged under its index N.
// Settings WebGPU cannot express are recorded and exposed through Pipeline.Warnings.
//
// Parameters:
//   - cfg: the parsed render-state config
//
// Returns:
//   - PipelineBuilderOption: a function that applies the render state to this pipeline
func WithRenderState(cfg renderstate.ShaderStateConfig) PipelineBuilderOption {
	return func(p *pipeline) {
		if cfg.Rasterizer != nil {
			r := TranslateRasterizer(*cfg.Rasterizer)
			p.cullMode = r.CullMode
			p.frontFace = r.FrontFace
			p.depthBias = r.DepthBias
			p.depthBiasSlopeScale = r.DepthBiasSlopeScale
			p.depthBiasClamp = r.DepthBiasClamp
			p.warnings = append(p.warnings, r.Warnings...)
		}
		for _, s := range cfg.Samplers {
			data, warnings := TranslateSampler(s)
			p.stageSampler(s.Index, data)
			p.warnings = append(p.warnings, warnings...)
		}
	}
}
