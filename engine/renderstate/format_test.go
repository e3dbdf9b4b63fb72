package renderstate

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_DefaultShaderCanonical(t *testing.T) {
	cfg, err := Parse(loadFixture(t, "defaultShader.rs"))
	require.NoError(t, err)

	want := `[RasterizerStateDX11]
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
	assert.Equal(t, want, string(Marshal(cfg)))
}

func TestMarshal_Empty(t *testing.T) {
	assert.Empty(t, Marshal(ShaderStateConfig{}))
}

func TestMarshal_RoundTrip(t *testing.T) {
	wireframe := DefaultRasterizerState()
	wireframe.CullMode = CullModeNone
	wireframe.FillMode = FillModeWireframe
	wireframe.FrontCounterClockwise = true
	wireframe.DepthBias = -7
	wireframe.DepthBiasClamp = 0.125
	wireframe.SlopeScaledDepthBias = 1.0 / 3.0
	wireframe.DepthClipEnable = false
	wireframe.ScissorEnable = true
	wireframe.MultisampleEnable = true
	wireframe.AntialiasedLineEnable = true

	aniso := DefaultSamplerState(7)
	aniso.Filter = FilterAnisotropic
	aniso.AddressU = AddressModeMirrorOnce
	aniso.AddressV = AddressModeMirror
	aniso.AddressW = AddressModeWrap
	aniso.MaxAnisotropy = 16
	aniso.MipLODBias = -0.75
	aniso.MinLOD = 0
	aniso.MaxLOD = 9

	shadow := DefaultSamplerState(2)
	shadow.Filter = FilterComparisonMinMagMipPoint
	shadow.ComparisonFunc = ptr(ComparisonLessEqual)
	shadow.AddressU = AddressModeBorder
	shadow.AddressV = AddressModeBorder
	shadow.BorderColor = &[4]float32{0.1, 0.2, 0.3, 1}

	plain := DefaultSamplerState(1)

	tests := []struct {
		name string
		cfg  ShaderStateConfig
	}{
		{"empty", ShaderStateConfig{}},
		{"rasterizer only", ShaderStateConfig{Rasterizer: &wireframe}},
		{"samplers only", ShaderStateConfig{Samplers: []SamplerState{aniso, plain}}},
		{"everything", ShaderStateConfig{Rasterizer: &wireframe, Samplers: []SamplerState{shadow, aniso, plain}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.cfg.Validate())

			got, err := Parse(Marshal(tt.cfg))
			require.NoError(t, err)
			if diff := cmp.Diff(tt.cfg, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarshal_RoundTripFixtures(t *testing.T) {
	for _, name := range []string{"defaultShader.rs", "shadow.rs"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Parse(loadFixture(t, name))
			require.NoError(t, err)

			text := Marshal(cfg)
			again, err := Parse(text)
			require.NoError(t, err)
			assert.True(t, cmp.Equal(cfg, again))

			// canonical text is a fixed point
			assert.Equal(t, string(text), string(Marshal(again)))
		})
	}
}

func TestMarshal_ExtremeLODs(t *testing.T) {
	s := DefaultSamplerState(1)
	s.MinLOD = math.MaxFloat32
	s.MaxLOD = -math.MaxFloat32
	cfg := ShaderStateConfig{Samplers: []SamplerState{s}}

	text := string(Marshal(cfg))
	assert.True(t, strings.Contains(text, "MinLOD = 3.4028235e+38"), text)

	got, err := Parse([]byte(text))
	require.NoError(t, err)
	assert.True(t, cmp.Equal(cfg, got))
}

type failingWriter struct{ n int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n == 0 {
		return 0, errors.New("disk full")
	}
	w.n--
	return len(p), nil
}

func TestWrite_PropagatesWriterError(t *testing.T) {
	cfg, err := Parse(loadFixture(t, "defaultShader.rs"))
	require.NoError(t, err)

	err = Write(&failingWriter{n: 2}, cfg)
	assert.EqualError(t, err, "disk full")
}
