package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-renderstate/common"
	"github.com/Carmen-Shannon/oxy-renderstate/engine/renderstate"
	"github.com/cogentcore/webgpu/wgpu"
)

// WebGPU bounds on sampler level-of-detail clamps.
const (
	minLodClamp float32 = 0
	maxLodClamp float32 = 32
)

// RasterizerTranslation is the WebGPU primitive and depth-stencil state derived from a render-state rasterizer section.
type RasterizerTranslation struct {
	CullMode            wgpu.CullMode
	FrontFace           wgpu.FrontFace
	DepthBias           int32
	DepthBiasSlopeScale float32
	DepthBiasClamp      float32

	// Warnings lists the settings WebGPU cannot express.
	Warnings []string
}

// TranslateRasterizer maps a render-state rasterizer onto WebGPU pipeline state.
// Wireframe fill, disabled depth clipping, scissor, multisample and antialiased line settings
// have no core WebGPU equivalent and are reported as warnings instead.
//
// Parameters:
//   - r: the parsed rasterizer state
//
// Returns:
//   - RasterizerTranslation: the translated state and any lossy-translation warnings
func TranslateRasterizer(r renderstate.RasterizerState) RasterizerTranslation {
	out := RasterizerTranslation{
		CullMode:            cullModes[r.CullMode],
		FrontFace:           wgpu.FrontFaceCW,
		DepthBias:           r.DepthBias,
		DepthBiasSlopeScale: r.SlopeScaledDepthBias,
		DepthBiasClamp:      r.DepthBiasClamp,
	}
	if r.FrontCounterClockwise {
		out.FrontFace = wgpu.FrontFaceCCW
	}

	def := renderstate.DefaultRasterizerState()
	if r.FillMode == renderstate.FillModeWireframe {
		out.Warnings = append(out.Warnings, "FillMode WIREFRAME is not supported, triangles are filled")
	}
	if r.DepthClipEnable != def.DepthClipEnable {
		out.Warnings = append(out.Warnings, "DepthClipEnable FALSE is not supported, depth clipping stays on")
	}
	if r.ScissorEnable {
		out.Warnings = append(out.Warnings, "ScissorEnable is ignored, set the scissor rect on the render pass")
	}
	if r.MultisampleEnable || r.AntialiasedLineEnable {
		out.Warnings = append(out.Warnings, "MultisampleEnable and AntialiasedLineEnable are ignored, multisampling is a render target property")
	}
	return out
}

// TranslateSampler maps a render-state sampler onto sampler staging data.
//
// BORDER and MIRROR_ONCE addressing have no WebGPU equivalent and fall back to clamp-to-edge with a
// warning. LOD clamps are limited to the WebGPU range [0, 32]; a non-zero MipLODBias is dropped with a warning.
//
// Parameters:
//   - s: the parsed sampler state
//
// Returns:
//   - common.SamplerStagingData: the staging data for the sampler slot
//   - []string: warnings for every setting that could not be carried over exactly
func TranslateSampler(s renderstate.SamplerState) (common.SamplerStagingData, []string) {
	var warnings []string
	section := renderstate.SamplerSection(s.Index)

	address := func(key string, m renderstate.AddressMode) wgpu.AddressMode {
		switch m {
		case renderstate.AddressModeWrap:
			return wgpu.AddressModeRepeat
		case renderstate.AddressModeMirror:
			return wgpu.AddressModeMirrorRepeat
		case renderstate.AddressModeBorder, renderstate.AddressModeMirrorOnce:
			warnings = append(warnings, fmt.Sprintf("%s %s %s is not supported, using clamp to edge", section, key, m))
		}
		return wgpu.AddressModeClampToEdge
	}

	out := common.SamplerStagingData{
		Label:         section,
		AddressModeU:  address("AddressU", s.AddressU),
		AddressModeV:  address("AddressV", s.AddressV),
		AddressModeW:  address("AddressW", s.AddressW),
		MagFilter:     filterModes[s.Filter.Mag()],
		MinFilter:     filterModes[s.Filter.Min()],
		MipmapFilter:  mipmapFilterModes[s.Filter.Mip()],
		LodMinClamp:   clampLod(s.MinLOD),
		LodMaxClamp:   clampLod(s.MaxLOD),
		MaxAnisotropy: 1,
		BorderColor:   s.EffectiveBorderColor(),
	}
	if out.LodMaxClamp < out.LodMinClamp {
		out.LodMaxClamp = out.LodMinClamp
	}
	if s.Filter.IsAnisotropic() {
		out.MaxAnisotropy = uint16(s.MaxAnisotropy)
	}
	if s.ComparisonFunc != nil {
		out.Compare = compareFunctions[*s.ComparisonFunc]
	}
	if s.MipLODBias != 0 {
		warnings = append(warnings, fmt.Sprintf("%s MipLODBias %g is not supported, bias dropped", section, s.MipLODBias))
	}
	return out, warnings
}

func clampLod(v float32) float32 {
	return min(max(v, minLodClamp), maxLodClamp)
}

var cullModes = map[renderstate.CullMode]wgpu.CullMode{
	renderstate.CullModeNone:  wgpu.CullModeNone,
	renderstate.CullModeFront: wgpu.CullModeFront,
	renderstate.CullModeBack:  wgpu.CullModeBack,
}

var filterModes = map[renderstate.FilterKind]wgpu.FilterMode{
	renderstate.FilterKindPoint:  wgpu.FilterModeNearest,
	renderstate.FilterKindLinear: wgpu.FilterModeLinear,
}

var mipmapFilterModes = map[renderstate.FilterKind]wgpu.MipmapFilterMode{
	renderstate.FilterKindPoint:  wgpu.MipmapFilterModeNearest,
	renderstate.FilterKindLinear: wgpu.MipmapFilterModeLinear,
}

var compareFunctions = map[renderstate.ComparisonFunc]wgpu.CompareFunction{
	renderstate.ComparisonNever:        wgpu.CompareFunctionNever,
	renderstate.ComparisonLess:         wgpu.CompareFunctionLess,
	renderstate.ComparisonEqual:        wgpu.CompareFunctionEqual,
	renderstate.ComparisonLessEqual:    wgpu.CompareFunctionLessEqual,
	renderstate.ComparisonGreater:      wgpu.CompareFunctionGreater,
	renderstate.ComparisonNotEqual:     wgpu.CompareFunctionNotEqual,
	renderstate.ComparisonGreaterEqual: wgpu.CompareFunctionGreaterEqual,
	renderstate.ComparisonAlways:       wgpu.CompareFunctionAlways,
}
