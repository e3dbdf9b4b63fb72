// package renderstate parses, validates and formats render-state (.rs) files. A render-state file
// declares the fixed-function state of a single shader: the rasterizer state and an ordered set of
// sampler states. Values are produced by a Parser, treated as immutable afterwards and handed to the
// rendering backend.
package renderstate

import (
	"fmt"
	"math"
	"slices"
)

const (
	// SectionRasterizer is the section header of the rasterizer state.
	SectionRasterizer = "RasterizerStateDX11"

	// samplerSectionPrefix is followed by the positive sampler index N.
	samplerSectionPrefix = "SamplerDX11_"

	// MaxAnisotropyLimit is the largest anisotropy level a sampler may request.
	MaxAnisotropyLimit = 16
)

// DefaultBorderColor is the border color a backend applies when a sampler uses
// AddressModeBorder without declaring BorderColor0..3: opaque black.
var DefaultBorderColor = [4]float32{0, 0, 0, 1}

// SamplerSection returns the section header name for sampler index n.
//
// Parameters:
//   - n: the sampler index (positive)
//
// Returns:
//   - string: the section name, e.g. "SamplerDX11_2"
func SamplerSection(n int) string {
	return fmt.Sprintf("%s%d", samplerSectionPrefix, n)
}

// ShaderStateConfig is the parsed render-state of one shader.
type ShaderStateConfig struct {
	// Rasterizer is nil when the file has no RasterizerStateDX11 section. The host
	// engine substitutes its own default in that case.
	Rasterizer *RasterizerState `yaml:"rasterizer,omitempty" json:"rasterizer,omitempty"`

	// Samplers holds the sampler states in the order their sections appear in the
	// file. The sampler count is independent of the shader's texture count.
	Samplers []SamplerState `yaml:"samplers,omitempty" json:"samplers,omitempty"`
}

// RasterizerState mirrors the fields of a D3D11 rasterizer description.
type RasterizerState struct {
	CullMode              CullMode `yaml:"cullMode" json:"cullMode"`
	FillMode              FillMode `yaml:"fillMode" json:"fillMode"`
	FrontCounterClockwise bool     `yaml:"frontCounterClockwise" json:"frontCounterClockwise"`
	DepthBias             int32    `yaml:"depthBias" json:"depthBias"`
	DepthBiasClamp        float32  `yaml:"depthBiasClamp" json:"depthBiasClamp"`
	SlopeScaledDepthBias  float32  `yaml:"slopeScaledDepthBias" json:"slopeScaledDepthBias"`
	DepthClipEnable       bool     `yaml:"depthClipEnable" json:"depthClipEnable"`
	ScissorEnable         bool     `yaml:"scissorEnable" json:"scissorEnable"`
	MultisampleEnable     bool     `yaml:"multisampleEnable" json:"multisampleEnable"`
	AntialiasedLineEnable bool     `yaml:"antialiasedLineEnable" json:"antialiasedLineEnable"`
}

// SamplerState mirrors the fields of a D3D11 sampler description plus the index N
// taken from its SamplerDX11_N section header.
type SamplerState struct {
	// Index is N from the section header. It is the stable lookup key of the sampler.
	Index int `yaml:"index" json:"index"`

	AddressU AddressMode `yaml:"addressU" json:"addressU"`
	AddressV AddressMode `yaml:"addressV" json:"addressV"`
	AddressW AddressMode `yaml:"addressW" json:"addressW"`
	Filter   Filter      `yaml:"filter" json:"filter"`

	// ComparisonFunc is set if and only if Filter is a comparison filter.
	ComparisonFunc *ComparisonFunc `yaml:"comparisonFunc,omitempty" json:"comparisonFunc,omitempty"`

	// BorderColor is nil when BorderColor0..3 were not declared.
	BorderColor *[4]float32 `yaml:"borderColor,omitempty" json:"borderColor,omitempty"`

	MipLODBias    float32 `yaml:"mipLODBias" json:"mipLODBias"`
	MaxAnisotropy uint32  `yaml:"maxAnisotropy" json:"maxAnisotropy"`
	MinLOD        float32 `yaml:"minLOD" json:"minLOD"`
	MaxLOD        float32 `yaml:"maxLOD" json:"maxLOD"`
}

// DefaultRasterizerState returns the D3D11 default rasterizer description.
// CullMode is required in a file, so the default only matters for programmatic use.
//
// Returns:
//   - RasterizerState: solid fill, back-face culling, clockwise front faces, depth clip on
func DefaultRasterizerState() RasterizerState {
	return RasterizerState{
		CullMode:        CullModeBack,
		FillMode:        FillModeSolid,
		DepthClipEnable: true,
	}
}

// DefaultSamplerState returns the D3D11 default sampler description for index n.
//
// Parameters:
//   - n: the sampler index
//
// Returns:
//   - SamplerState: trilinear filtering, clamp addressing, full LOD range
func DefaultSamplerState(n int) SamplerState {
	return SamplerState{
		Index:         n,
		AddressU:      AddressModeClamp,
		AddressV:      AddressModeClamp,
		AddressW:      AddressModeClamp,
		Filter:        FilterMinMagMipLinear,
		MaxAnisotropy: 1,
		MinLOD:        -math.MaxFloat32,
		MaxLOD:        math.MaxFloat32,
	}
}

// Empty reports whether the config declares no section at all.
func (c ShaderStateConfig) Empty() bool {
	return c.Rasterizer == nil && len(c.Samplers) == 0
}

// Sampler looks a sampler up by its index N.
//
// Parameters:
//   - n: the sampler index from the SamplerDX11_N header
//
// Returns:
//   - SamplerState: a copy of the sampler state
//   - bool: false if no sampler with that index exists
func (c ShaderStateConfig) Sampler(n int) (SamplerState, bool) {
	for _, s := range c.Samplers {
		if s.Index == n {
			return s.Clone(), true
		}
	}
	return SamplerState{}, false
}

// SamplerIndices returns the sampler indices in declared order.
func (c ShaderStateConfig) SamplerIndices() []int {
	out := make([]int, 0, len(c.Samplers))
	for _, s := range c.Samplers {
		out = append(out, s.Index)
	}
	return out
}

// Clone returns a deep copy so callers can never alias a cached config.
func (c ShaderStateConfig) Clone() ShaderStateConfig {
	out := ShaderStateConfig{}
	if c.Rasterizer != nil {
		r := *c.Rasterizer
		out.Rasterizer = &r
	}
	if c.Samplers != nil {
		out.Samplers = make([]SamplerState, len(c.Samplers))
		for i, s := range c.Samplers {
			out.Samplers[i] = s.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the sampler state.
func (s SamplerState) Clone() SamplerState {
	out := s
	if s.ComparisonFunc != nil {
		cmp := *s.ComparisonFunc
		out.ComparisonFunc = &cmp
	}
	if s.BorderColor != nil {
		bc := *s.BorderColor
		out.BorderColor = &bc
	}
	return out
}

// UsesBorder reports whether any address mode samples the border color.
func (s SamplerState) UsesBorder() bool {
	return slices.Contains([]AddressMode{s.AddressU, s.AddressV, s.AddressW}, AddressModeBorder)
}

// EffectiveBorderColor returns the declared border color, or DefaultBorderColor when
// none was declared.
func (s SamplerState) EffectiveBorderColor() [4]float32 {
	if s.BorderColor != nil {
		return *s.BorderColor
	}
	return DefaultBorderColor
}

// Validate checks the invariants a parsed config always satisfies. It is meant for
// configs built in code before they are formatted or handed to a backend.
//
// Returns:
//   - error: a *ParseError (Line 0) describing the first violated invariant, or nil
func (c ShaderStateConfig) Validate() error {
	if r := c.Rasterizer; r != nil {
		if !r.CullMode.Valid() {
			return invalidEnum(SectionRasterizer, keyCullMode, r.CullMode.String())
		}
		if !r.FillMode.Valid() {
			return invalidEnum(SectionRasterizer, keyFillMode, r.FillMode.String())
		}
		for _, f := range []floatField{
			{keyDepthBiasClamp, r.DepthBiasClamp},
			{keySlopeScaledDepthBias, r.SlopeScaledDepthBias},
		} {
			if !finite(f.value) {
				return invalidNumber(SectionRasterizer, f.key, f.value)
			}
		}
	}

	seen := make(map[int]bool, len(c.Samplers))
	for _, s := range c.Samplers {
		section := SamplerSection(s.Index)
		if s.Index < 1 {
			return &ParseError{Kind: KindUnrecognizedSection, Section: section}
		}
		if seen[s.Index] {
			return &ParseError{Kind: KindDuplicateSection, Section: section}
		}
		seen[s.Index] = true
		if err := s.validate(section); err != nil {
			return err
		}
	}
	return nil
}

func (s SamplerState) validate(section string) error {
	for _, f := range []struct {
		key  string
		mode AddressMode
	}{{keyAddressU, s.AddressU}, {keyAddressV, s.AddressV}, {keyAddressW, s.AddressW}} {
		if !f.mode.Valid() {
			return invalidEnum(section, f.key, f.mode.String())
		}
	}
	if !s.Filter.Valid() {
		return invalidEnum(section, keyFilter, s.Filter.String())
	}
	switch {
	case s.Filter.IsComparison() && s.ComparisonFunc == nil:
		return &ParseError{Kind: KindMissingKey, Section: section, Key: keyComparisonFunc}
	case !s.Filter.IsComparison() && s.ComparisonFunc != nil:
		return &ParseError{Kind: KindUnexpectedKey, Section: section, Key: keyComparisonFunc}
	case s.ComparisonFunc != nil && !s.ComparisonFunc.Valid():
		return invalidEnum(section, keyComparisonFunc, s.ComparisonFunc.String())
	}
	if s.MaxAnisotropy < 1 || s.MaxAnisotropy > MaxAnisotropyLimit {
		return &ParseError{
			Kind: KindInvalidNumber, Section: section, Key: keyMaxAnisotropy,
			Value: fmt.Sprint(s.MaxAnisotropy), Err: errAnisotropyRange,
		}
	}
	for _, f := range []floatField{{keyMipLODBias, s.MipLODBias}, {keyMinLOD, s.MinLOD}, {keyMaxLOD, s.MaxLOD}} {
		if !finite(f.value) {
			return invalidNumber(section, f.key, f.value)
		}
	}
	if s.BorderColor != nil {
		for i, v := range s.BorderColor {
			if !finite(v) {
				return invalidNumber(section, borderColorKeys[i], v)
			}
		}
	}
	return nil
}

// floatField pairs a key with its value so checks run in key order.
type floatField struct {
	key   string
	value float32
}

func invalidEnum(section, key, value string) *ParseError {
	return &ParseError{Kind: KindInvalidEnumValue, Section: section, Key: key, Value: value}
}

func invalidNumber(section, key string, v float32) *ParseError {
	return &ParseError{Kind: KindInvalidNumber, Section: section, Key: key, Value: fmt.Sprint(v), Err: errNotFinite}
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
