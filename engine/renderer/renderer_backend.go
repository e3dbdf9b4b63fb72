package renderer

import "github.com/cogentcore/webgpu/wgpu"

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// SamplerDevice is the part of a GPU device the renderer needs to create samplers.
// *wgpu.Device satisfies it.
type SamplerDevice interface {
	CreateSampler(descriptor *wgpu.SamplerDescriptor) (*wgpu.Sampler, error)
}

var _ SamplerDevice = (*wgpu.Device)(nil)

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
