package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-renderstate/common"
	"github.com/Carmen-Shannon/oxy-renderstate/engine/renderstate"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultShader = `[RasterizerStateDX11]
CullMode = D3D11_CULL_BACK

[SamplerDX11_1]
AddressU = D3D11_TEXTURE_ADDRESS_WRAP
AddressV = D3D11_TEXTURE_ADDRESS_WRAP

[SamplerDX11_2]
ComparisonFunc = D3D11_COMPARISON_GREATER
Filter = D3D11_FILTER_COMPARISON_MIN_MAG_LINEAR_MIP_POINT
AddressU = D3D11_TEXTURE_ADDRESS_BORDER
AddressV = D3D11_TEXTURE_ADDRESS_BORDER
BorderColor0 = 0
BorderColor1 = 0
BorderColor2 = 0
BorderColor3 = 0
`

func parse(t *testing.T, text string) renderstate.ShaderStateConfig {
	t.Helper()
	cfg, err := renderstate.Parse([]byte(text))
	require.NoError(t, err)
	return cfg
}

func TestNewPipeline_Defaults(t *testing.T) {
	p := NewPipeline("lit")

	assert.Equal(t, "lit", p.PipelineKey())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Zero(t, p.DepthBias())
	assert.Empty(t, p.Samplers())
	assert.Empty(t, p.Warnings())
}

func TestNewPipeline_Options(t *testing.T) {
	p := NewPipeline("shadow",
		WithDepthBias(4, 1.5),
		WithDepthBiasClamp(0.01),
		WithCullMode(wgpu.CullModeFront),
		WithFrontFace(wgpu.FrontFaceCW),
	)

	assert.Equal(t, int32(4), p.DepthBias())
	assert.Equal(t, float32(1.5), p.DepthBiasSlopeScale())
	assert.Equal(t, float32(0.01), p.DepthBiasClamp())
	assert.Equal(t, wgpu.CullModeFront, p.CullMode())
	assert.Equal(t, wgpu.FrontFaceCW, p.FrontFace())
}

func TestPrimitiveState(t *testing.T) {
	p := NewPipeline("default", WithRenderState(parse(t, "[RasterizerStateDX11]\nCullMode = FRONT\nFrontCounterClockwise = TRUE\n")))

	want := wgpu.PrimitiveState{
		Topology:  wgpu.PrimitiveTopologyTriangleList,
		FrontFace: wgpu.FrontFaceCCW,
		CullMode:  wgpu.CullModeFront,
	}
	assert.Equal(t, want, p.PrimitiveState())
}

func TestWithRenderState_DefaultShader(t *testing.T) {
	p := NewPipeline("default", WithRenderState(parse(t, defaultShader)))

	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, wgpu.FrontFaceCW, p.FrontFace())
	assert.Equal(t, []int{1, 2}, p.SamplerIndices())

	samplers := p.Samplers()
	require.Len(t, samplers, 2)

	want1 := common.SamplerStagingData{
		Label:         "SamplerDX11_1",
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
		BorderColor:   renderstate.DefaultBorderColor,
	}
	if diff := cmp.Diff(want1, samplers[1]); diff != "" {
		t.Errorf("sampler 1 mismatch (-want +got):\n%s", diff)
	}

	want2 := common.SamplerStagingData{
		Label:         "SamplerDX11_2",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		Compare:       wgpu.CompareFunctionGreater,
		MaxAnisotropy: 1,
		BorderColor:   [4]float32{0, 0, 0, 0},
	}
	if diff := cmp.Diff(want2, samplers[2]); diff != "" {
		t.Errorf("sampler 2 mismatch (-want +got):\n%s", diff)
	}

	// BORDER on U and V of sampler 2
	assert.Len(t, p.Warnings(), 2)
}

func TestWithRenderState_NoRasterizerKeepsDefaults(t *testing.T) {
	cfg := parse(t, "[SamplerDX11_3]\nAddressU = WRAP\nAddressV = MIRROR\n")
	p := NewPipeline("sky", WithCullMode(wgpu.CullModeFront), WithRenderState(cfg))

	assert.Equal(t, wgpu.CullModeFront, p.CullMode())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, []int{3}, p.SamplerIndices())
	assert.Equal(t, wgpu.AddressModeMirrorRepeat, p.Samplers()[3].AddressModeV)
}

func TestWithSampler_ReplacesSlot(t *testing.T) {
	custom := common.DefaultSamplerStagingData()
	custom.MagFilter = wgpu.FilterModeNearest

	cfg := parse(t, "[SamplerDX11_1]\nAddressU = WRAP\nAddressV = WRAP\n")
	p := NewPipeline("ui", WithRenderState(cfg), WithSampler(1, custom), WithSampler(4, custom))

	assert.Equal(t, []int{1, 4}, p.SamplerIndices())
	assert.Equal(t, wgpu.FilterModeNearest, p.Samplers()[1].MagFilter)
}

func TestPipeline_AccessorsReturnCopies(t *testing.T) {
	p := NewPipeline("copy", WithRenderState(parse(t, defaultShader)))

	s := p.Samplers()
	delete(s, 1)
	w := p.Warnings()
	w[0] = "changed"

	assert.Len(t, p.Samplers(), 2)
	assert.NotEqual(t, "changed", p.Warnings()[0])
}
