// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "github.com/cogentcore/webgpu/wgpu"

// SamplerStagingData holds the configuration for a sampler pending GPU creation.
// Pipelines stage one entry per sampler slot; the renderer turns each entry into a *wgpu.Sampler.
type SamplerStagingData struct {
	// Label is the debug label given to the GPU sampler.
	Label string
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	// Both are used as-is, a zero LodMaxClamp pins sampling to the base level.
	LodMinClamp, LodMaxClamp float32
	// Compare specifies the comparison function for comparison samplers, used in shadow mapping and similar techniques.
	// wgpu.CompareFunctionUndefined makes a regular filtering sampler.
	Compare wgpu.CompareFunction
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering, which can improve texture quality at oblique viewing angles.
	MaxAnisotropy uint16
	// BorderColor is the RGBA color sampled outside the texture by backends that support border addressing.
	BorderColor [4]float32
}

// DefaultSamplerStagingData returns the staging data of a trilinear, repeating sampler covering the full mip chain.
//
// Returns:
//   - SamplerStagingData: the default sampler configuration
func DefaultSamplerStagingData() SamplerStagingData {
	return SamplerStagingData{
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
		BorderColor:   [4]float32{0, 0, 0, 1},
	}
}

// IsComparison reports whether the staged sampler is a comparison sampler.
func (s SamplerStagingData) IsComparison() bool {
	return s.Compare != wgpu.CompareFunctionUndefined
}
