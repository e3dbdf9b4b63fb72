// enums.go defines the enumerated value domains of a render-state file. Each type keeps
// the numeric value of its D3D11 counterpart so that zero stays "unset" wherever D3D11
// does not use it, and each has a name table that accepts both the short token
// (BACK, WRAP, GREATER) and the D3D11 prefixed token (D3D11_CULL_BACK).

package renderstate

import (
	"fmt"
	"strings"
)

// enumSet is the bidirectional name table behind every render-state enum.
type enumSet[T ~int] struct {
	// prefix is the D3D11 qualifier stripped on parse and added by qualified.
	prefix string

	names  map[T]string
	lookup map[string]T
}

// newEnumSet builds an enumSet from canonical names plus optional extra spellings.
//
// Parameters:
//   - prefix: the D3D11 prefix of every qualified name (e.g. "D3D11_CULL_")
//   - names: the canonical short name of each value
//   - aliases: additional accepted short spellings, may be nil
//
// Returns:
//   - *enumSet[T]: the ready-to-use name table
func newEnumSet[T ~int](prefix string, names map[T]string, aliases map[string]T) *enumSet[T] {
	s := &enumSet[T]{
		prefix: prefix,
		names:  names,
		lookup: make(map[string]T, len(names)+len(aliases)),
	}
	for v, n := range names {
		s.lookup[n] = v
	}
	for n, v := range aliases {
		s.lookup[n] = v
	}
	return s
}

func (s *enumSet[T]) parse(token string) (T, bool) {
	t := strings.ToUpper(strings.TrimSpace(token))
	t = strings.TrimPrefix(t, s.prefix)
	v, ok := s.lookup[t]
	return v, ok
}

func (s *enumSet[T]) name(v T) string {
	if n, ok := s.names[v]; ok {
		return n
	}
	return fmt.Sprintf("INVALID(%d)", int(v))
}

func (s *enumSet[T]) qualified(v T) string {
	if n, ok := s.names[v]; ok {
		return s.prefix + n
	}
	return s.name(v)
}

func (s *enumSet[T]) valid(v T) bool {
	_, ok := s.names[v]
	return ok
}

func (s *enumSet[T]) unmarshal(dst *T, text []byte, what string) error {
	v, ok := s.parse(string(text))
	if !ok {
		return fmt.Errorf("invalid %s %q", what, text)
	}
	*dst = v
	return nil
}

// CullMode selects which triangle facing is discarded by the rasterizer.
type CullMode int

const (
	// CullModeNone draws all triangles.
	CullModeNone CullMode = 1
	// CullModeFront discards front-facing triangles.
	CullModeFront CullMode = 2
	// CullModeBack discards back-facing triangles.
	CullModeBack CullMode = 3
)

var cullModes = newEnumSet("D3D11_CULL_", map[CullMode]string{
	CullModeNone:  "NONE",
	CullModeFront: "FRONT",
	CullModeBack:  "BACK",
}, nil)

// FillMode selects how the rasterizer fills triangles.
type FillMode int

const (
	// FillModeWireframe draws triangle edges only.
	FillModeWireframe FillMode = 2
	// FillModeSolid fills triangles.
	FillModeSolid FillMode = 3
)

var fillModes = newEnumSet("D3D11_FILL_", map[FillMode]string{
	FillModeWireframe: "WIREFRAME",
	FillModeSolid:     "SOLID",
}, nil)

// AddressMode resolves texture coordinates outside the [0, 1] range.
type AddressMode int

const (
	AddressModeWrap       AddressMode = 1
	AddressModeMirror     AddressMode = 2
	AddressModeClamp      AddressMode = 3
	AddressModeBorder     AddressMode = 4
	AddressModeMirrorOnce AddressMode = 5
)

var addressModes = newEnumSet("D3D11_TEXTURE_ADDRESS_", map[AddressMode]string{
	AddressModeWrap:       "WRAP",
	AddressModeMirror:     "MIRROR",
	AddressModeClamp:      "CLAMP",
	AddressModeBorder:     "BORDER",
	AddressModeMirrorOnce: "MIRROR_ONCE",
}, nil)

// ComparisonFunc is the operator a comparison sampler applies between the sampled
// value and the reference value.
type ComparisonFunc int

const (
	ComparisonNever        ComparisonFunc = 1
	ComparisonLess         ComparisonFunc = 2
	ComparisonEqual        ComparisonFunc = 3
	ComparisonLessEqual    ComparisonFunc = 4
	ComparisonGreater      ComparisonFunc = 5
	ComparisonNotEqual     ComparisonFunc = 6
	ComparisonGreaterEqual ComparisonFunc = 7
	ComparisonAlways       ComparisonFunc = 8
)

var comparisonFuncs = newEnumSet("D3D11_COMPARISON_", map[ComparisonFunc]string{
	ComparisonNever:        "NEVER",
	ComparisonLess:         "LESS",
	ComparisonEqual:        "EQUAL",
	ComparisonLessEqual:    "LESS_EQUAL",
	ComparisonGreater:      "GREATER",
	ComparisonNotEqual:     "NOT_EQUAL",
	ComparisonGreaterEqual: "GREATER_EQUAL",
	ComparisonAlways:       "ALWAYS",
}, nil)

// Filter is a D3D11 sampler filter. The value is a bit field: bit 0 selects a
// linear mip filter, bit 2 a linear mag filter, bit 4 a linear min filter, bit 6
// anisotropic filtering and bit 7 comparison sampling.
type Filter int

const (
	filterMipLinear   Filter = 0x01
	filterMagLinear   Filter = 0x04
	filterMinLinear   Filter = 0x10
	filterAnisotropic Filter = 0x40
	filterComparison  Filter = 0x80
)

const (
	FilterMinMagMipPoint             Filter = 0x00
	FilterMinMagPointMipLinear       Filter = 0x01
	FilterMinPointMagLinearMipPoint  Filter = 0x04
	FilterMinPointMagMipLinear       Filter = 0x05
	FilterMinLinearMagMipPoint       Filter = 0x10
	FilterMinLinearMagPointMipLinear Filter = 0x11
	FilterMinMagLinearMipPoint       Filter = 0x14
	FilterMinMagMipLinear            Filter = 0x15
	FilterAnisotropic                Filter = 0x55

	FilterComparisonMinMagMipPoint             = filterComparison | FilterMinMagMipPoint
	FilterComparisonMinMagPointMipLinear       = filterComparison | FilterMinMagPointMipLinear
	FilterComparisonMinPointMagLinearMipPoint  = filterComparison | FilterMinPointMagLinearMipPoint
	FilterComparisonMinPointMagMipLinear       = filterComparison | FilterMinPointMagMipLinear
	FilterComparisonMinLinearMagMipPoint       = filterComparison | FilterMinLinearMagMipPoint
	FilterComparisonMinLinearMagPointMipLinear = filterComparison | FilterMinLinearMagPointMipLinear
	FilterComparisonMinMagLinearMipPoint       = filterComparison | FilterMinMagLinearMipPoint
	FilterComparisonMinMagMipLinear            = filterComparison | FilterMinMagMipLinear
	FilterComparisonAnisotropic                = filterComparison | FilterAnisotropic
)

var filters = func() *enumSet[Filter] {
	basic := map[Filter]string{
		FilterMinMagMipPoint:             "MIN_MAG_MIP_POINT",
		FilterMinMagPointMipLinear:       "MIN_MAG_POINT_MIP_LINEAR",
		FilterMinPointMagLinearMipPoint:  "MIN_POINT_MAG_LINEAR_MIP_POINT",
		FilterMinPointMagMipLinear:       "MIN_POINT_MAG_MIP_LINEAR",
		FilterMinLinearMagMipPoint:       "MIN_LINEAR_MAG_MIP_POINT",
		FilterMinLinearMagPointMipLinear: "MIN_LINEAR_MAG_POINT_MIP_LINEAR",
		FilterMinMagLinearMipPoint:       "MIN_MAG_LINEAR_MIP_POINT",
		FilterMinMagMipLinear:            "MIN_MAG_MIP_LINEAR",
		FilterAnisotropic:                "ANISOTROPIC",
	}
	names := make(map[Filter]string, 2*len(basic))
	for f, n := range basic {
		names[f] = n
		names[filterComparison|f] = "COMPARISON_" + n
	}
	return newEnumSet("D3D11_FILTER_", names, map[string]Filter{
		"POINT":  FilterMinMagMipPoint,
		"LINEAR": FilterMinMagMipLinear,
	})
}()

// FilterKind is the per-stage filter (minification, magnification, mip selection)
// encoded in a Filter.
type FilterKind int

const (
	FilterKindPoint FilterKind = iota
	FilterKindLinear
)

func (k FilterKind) String() string {
	if k == FilterKindLinear {
		return "LINEAR"
	}
	return "POINT"
}

// IsComparison reports whether the filter compares samples against a reference value.
func (f Filter) IsComparison() bool { return f&filterComparison != 0 }

// IsAnisotropic reports whether the filter uses anisotropic filtering.
func (f Filter) IsAnisotropic() bool { return f&filterAnisotropic != 0 }

// Min returns the minification filter kind.
func (f Filter) Min() FilterKind { return stageKind(f, filterMinLinear) }

// Mag returns the magnification filter kind.
func (f Filter) Mag() FilterKind { return stageKind(f, filterMagLinear) }

// Mip returns the mip level selection filter kind.
func (f Filter) Mip() FilterKind { return stageKind(f, filterMipLinear) }

func stageKind(f, bit Filter) FilterKind {
	if f&bit != 0 {
		return FilterKindLinear
	}
	return FilterKindPoint
}

// String returns the short token (e.g. "BACK").
func (m CullMode) String() string { return cullModes.name(m) }

// D3D11Name returns the D3D11 prefixed token (e.g. "D3D11_CULL_BACK").
func (m CullMode) D3D11Name() string { return cullModes.qualified(m) }

// Valid reports whether m is a member of the cull mode domain.
func (m CullMode) Valid() bool { return cullModes.valid(m) }

func (m CullMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *CullMode) UnmarshalText(text []byte) error {
	return cullModes.unmarshal(m, text, "cull mode")
}

func (m FillMode) String() string    { return fillModes.name(m) }
func (m FillMode) D3D11Name() string { return fillModes.qualified(m) }
func (m FillMode) Valid() bool       { return fillModes.valid(m) }

func (m FillMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *FillMode) UnmarshalText(text []byte) error {
	return fillModes.unmarshal(m, text, "fill mode")
}

func (m AddressMode) String() string    { return addressModes.name(m) }
func (m AddressMode) D3D11Name() string { return addressModes.qualified(m) }
func (m AddressMode) Valid() bool       { return addressModes.valid(m) }

func (m AddressMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *AddressMode) UnmarshalText(text []byte) error {
	return addressModes.unmarshal(m, text, "address mode")
}

func (c ComparisonFunc) String() string    { return comparisonFuncs.name(c) }
func (c ComparisonFunc) D3D11Name() string { return comparisonFuncs.qualified(c) }
func (c ComparisonFunc) Valid() bool       { return comparisonFuncs.valid(c) }

func (c ComparisonFunc) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *ComparisonFunc) UnmarshalText(text []byte) error {
	return comparisonFuncs.unmarshal(c, text, "comparison function")
}

func (f Filter) String() string    { return filters.name(f) }
func (f Filter) D3D11Name() string { return filters.qualified(f) }
func (f Filter) Valid() bool       { return filters.valid(f) }

func (f Filter) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Filter) UnmarshalText(text []byte) error {
	return filters.unmarshal(f, text, "filter")
}

// ParseCullMode parses a short or D3D11 prefixed cull mode token, case-insensitively.
func ParseCullMode(s string) (CullMode, error) {
	var m CullMode
	if err := m.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}
	return m, nil
}

// ParseAddressMode parses a short or D3D11 prefixed texture address mode token.
func ParseAddressMode(s string) (AddressMode, error) {
	var m AddressMode
	if err := m.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}
	return m, nil
}

// ParseFilter parses a short or D3D11 prefixed filter token. POINT and LINEAR are
// accepted as aliases of MIN_MAG_MIP_POINT and MIN_MAG_MIP_LINEAR.
func ParseFilter(s string) (Filter, error) {
	var f Filter
	if err := f.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}
	return f, nil
}

// ParseComparisonFunc parses a short or D3D11 prefixed comparison function token.
func ParseComparisonFunc(s string) (ComparisonFunc, error) {
	var c ComparisonFunc
	if err := c.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}
	return c, nil
}
