package renderstate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseCullMode(t *testing.T) {
	tests := []struct {
		in      string
		want    CullMode
		wantErr bool
	}{
		{in: "BACK", want: CullModeBack},
		{in: "back", want: CullModeBack},
		{in: "D3D11_CULL_FRONT", want: CullModeFront},
		{in: " d3d11_cull_none ", want: CullModeNone},
		{in: "SIDEWAYS", wantErr: true},
		{in: "D3D11_FILL_SOLID", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCullMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFilter_Aliases(t *testing.T) {
	f, err := ParseFilter("point")
	require.NoError(t, err)
	assert.Equal(t, FilterMinMagMipPoint, f)

	f, err = ParseFilter("LINEAR")
	require.NoError(t, err)
	assert.Equal(t, FilterMinMagMipLinear, f)

	f, err = ParseFilter("D3D11_FILTER_COMPARISON_ANISOTROPIC")
	require.NoError(t, err)
	assert.Equal(t, FilterComparisonAnisotropic, f)
}

func TestFilter_Stages(t *testing.T) {
	tests := []struct {
		filter        Filter
		min, mag, mip FilterKind
		comparison    bool
		anisotropic   bool
	}{
		{FilterMinMagMipPoint, FilterKindPoint, FilterKindPoint, FilterKindPoint, false, false},
		{FilterMinMagMipLinear, FilterKindLinear, FilterKindLinear, FilterKindLinear, false, false},
		{FilterMinPointMagLinearMipPoint, FilterKindPoint, FilterKindLinear, FilterKindPoint, false, false},
		{FilterMinLinearMagPointMipLinear, FilterKindLinear, FilterKindPoint, FilterKindLinear, false, false},
		{FilterComparisonMinMagLinearMipPoint, FilterKindLinear, FilterKindLinear, FilterKindPoint, true, false},
		{FilterAnisotropic, FilterKindLinear, FilterKindLinear, FilterKindLinear, false, true},
		{FilterComparisonAnisotropic, FilterKindLinear, FilterKindLinear, FilterKindLinear, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.filter.String(), func(t *testing.T) {
			assert.Equal(t, tt.min, tt.filter.Min())
			assert.Equal(t, tt.mag, tt.filter.Mag())
			assert.Equal(t, tt.mip, tt.filter.Mip())
			assert.Equal(t, tt.comparison, tt.filter.IsComparison())
			assert.Equal(t, tt.anisotropic, tt.filter.IsAnisotropic())
		})
	}
}

func TestEnum_Names(t *testing.T) {
	assert.Equal(t, "BACK", CullModeBack.String())
	assert.Equal(t, "D3D11_CULL_BACK", CullModeBack.D3D11Name())
	assert.Equal(t, "D3D11_FILL_WIREFRAME", FillModeWireframe.D3D11Name())
	assert.Equal(t, "D3D11_TEXTURE_ADDRESS_MIRROR_ONCE", AddressModeMirrorOnce.D3D11Name())
	assert.Equal(t, "D3D11_COMPARISON_GREATER_EQUAL", ComparisonGreaterEqual.D3D11Name())
	assert.Equal(t, "D3D11_FILTER_COMPARISON_MIN_MAG_LINEAR_MIP_POINT", FilterComparisonMinMagLinearMipPoint.D3D11Name())
	assert.Equal(t, "INVALID(0)", CullMode(0).String())
	assert.Equal(t, "INVALID(9)", AddressMode(9).D3D11Name())
}

func TestEnum_Valid(t *testing.T) {
	assert.False(t, CullMode(0).Valid())
	assert.False(t, FillMode(1).Valid())
	assert.True(t, AddressModeMirrorOnce.Valid())
	assert.False(t, ComparisonFunc(9).Valid())
	assert.False(t, Filter(0x02).Valid())
	assert.True(t, FilterComparisonMinMagMipPoint.Valid())
}

func TestEnum_TextEncoding(t *testing.T) {
	s := DefaultSamplerState(2)
	s.Filter = FilterComparisonMinMagMipLinear
	s.ComparisonFunc = ptr(ComparisonLessEqual)
	s.AddressU = AddressModeBorder

	out, err := yaml.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), "addressU: BORDER")
	assert.Contains(t, string(out), "filter: COMPARISON_MIN_MAG_MIP_LINEAR")
	assert.Contains(t, string(out), "comparisonFunc: LESS_EQUAL")

	var back SamplerState
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, s, back)

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	var fromJSON SamplerState
	require.NoError(t, json.Unmarshal(raw, &fromJSON))
	assert.Equal(t, s, fromJSON)
}

func TestEnum_UnmarshalTextRejectsUnknown(t *testing.T) {
	var m AddressMode
	err := yaml.Unmarshal([]byte("SIDEWAYS"), &m)
	assert.ErrorContains(t, err, `invalid address mode "SIDEWAYS"`)
}
