package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-renderstate/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuRendererBackendImpl is the WebGPU implementation of the RendererBackend interface.
type wgpuRendererBackendImpl struct {
	mu     sync.Mutex
	device SamplerDevice
}

// wgpuRendererBackend defines the WebGPU specific operations of the rendering backend.
type wgpuRendererBackend interface {
	// InitSampler creates a GPU sampler based on the provided staging data.
	// Staged values are passed through as-is, start from common.DefaultSamplerStagingData for a
	// linear, repeating sampler. A zero MaxAnisotropy is raised to 1.
	//
	// Parameters:
	//   - label: the debug label of the sampler
	//   - samplerStagingData: the SamplerStagingData containing the configuration for creating the sampler
	//
	// Returns:
	//   - *wgpu.Sampler: the created sampler
	//   - error: an error if the sampler could not be created
	InitSampler(label string, samplerStagingData common.SamplerStagingData) (*wgpu.Sampler, error)

	// CreateComparisonSampler creates a comparison sampler suitable for PCF shadow mapping.
	// Uses CompareFunction Less for standard shadow depth comparison.
	//
	// Returns:
	//   - *wgpu.Sampler: the comparison sampler
	//   - error: an error if sampler creation fails
	CreateComparisonSampler() (*wgpu.Sampler, error)
}

var _ wgpuRendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend creates the WebGPU backend on top of an existing device.
//
// Parameters:
//   - device: the device used to create GPU objects
//
// Returns:
//   - *wgpuRendererBackendImpl: the backend
func newWGPURendererBackend(device SamplerDevice) *wgpuRendererBackendImpl {
	return &wgpuRendererBackendImpl{device: device}
}

func (b *wgpuRendererBackendImpl) InitSampler(label string, samplerStagingData common.SamplerStagingData) (*wgpu.Sampler, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:        label,
		AddressModeU: samplerStagingData.AddressModeU,
		AddressModeV: samplerStagingData.AddressModeV,
		AddressModeW: samplerStagingData.AddressModeW,
		MagFilter:    samplerStagingData.MagFilter,
		MinFilter:    samplerStagingData.MinFilter,
		MipmapFilter: samplerStagingData.MipmapFilter,
		LodMinClamp:  samplerStagingData.LodMinClamp,
		LodMaxClamp:  samplerStagingData.LodMaxClamp,
		// zero is not a valid anisotropy clamp, unlike the zero filter and address modes
		MaxAnisotropy: common.Coalesce(samplerStagingData.MaxAnisotropy, 1),
		Compare:       samplerStagingData.Compare,
	})
	if err != nil {
		return nil, fmt.Errorf("create sampler %q: %w", label, err)
	}
	return samp, nil
}

func (b *wgpuRendererBackendImpl) CreateComparisonSampler() (*wgpu.Sampler, error) {
	data := common.DefaultSamplerStagingData()
	data.AddressModeU = wgpu.AddressModeClampToEdge
	data.AddressModeV = wgpu.AddressModeClampToEdge
	data.AddressModeW = wgpu.AddressModeClampToEdge
	data.MipmapFilter = wgpu.MipmapFilterModeNearest
	data.Compare = wgpu.CompareFunctionLess
	return b.InitSampler("Shadow Comparison Sampler", data)
}
