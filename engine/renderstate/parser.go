// parser.go implements the render-state file parser. A render-state file is a list of
// bracketed section headers, each followed by Key = Value lines:
//
//	[RasterizerStateDX11]
//	CullMode = D3D11_CULL_BACK
//
//	[Note: bracketed free text is a comment]
//	[SamplerDX11_1]
//	AddressU = D3D11_TEXTURE_ADDRESS_WRAP
//	AddressV = D3D11_TEXTURE_ADDRESS_WRAP
//
// Bracket content that is a single identifier is a section header and must name a
// known section. Any other bracketed text is a comment and leaves the current section
// open. Lines starting with ";", "#" or "//" are comments too.

package renderstate

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	oxylog "github.com/Carmen-Shannon/oxy-renderstate/engine/log"
	"github.com/rs/zerolog"
)

// Strictness controls how unrecognized keys inside a known section are handled.
type Strictness int

const (
	// Strict rejects unrecognized keys with ErrUnrecognizedKey. A misspelled state key
	// would otherwise turn into a silent rendering difference.
	Strict Strictness = iota

	// Lenient skips unrecognized keys and logs a warning.
	Lenient
)

func (s Strictness) String() string {
	if s == Lenient {
		return "lenient"
	}
	return "strict"
}

const (
	keyCullMode              = "CullMode"
	keyFillMode              = "FillMode"
	keyFrontCounterClockwise = "FrontCounterClockwise"
	keyDepthBias             = "DepthBias"
	keyDepthBiasClamp        = "DepthBiasClamp"
	keySlopeScaledDepthBias  = "SlopeScaledDepthBias"
	keyDepthClipEnable       = "DepthClipEnable"
	keyScissorEnable         = "ScissorEnable"
	keyMultisampleEnable     = "MultisampleEnable"
	keyAntialiasedLineEnable = "AntialiasedLineEnable"

	keyAddressU       = "AddressU"
	keyAddressV       = "AddressV"
	keyAddressW       = "AddressW"
	keyFilter         = "Filter"
	keyComparisonFunc = "ComparisonFunc"
	keyMipLODBias     = "MipLODBias"
	keyMaxAnisotropy  = "MaxAnisotropy"
	keyMinLOD         = "MinLOD"
	keyMaxLOD         = "MaxLOD"
)

var borderColorKeys = [4]string{"BorderColor0", "BorderColor1", "BorderColor2", "BorderColor3"}

var rasterizerKeys = keyTable(
	keyCullMode, keyFillMode, keyFrontCounterClockwise, keyDepthBias, keyDepthBiasClamp,
	keySlopeScaledDepthBias, keyDepthClipEnable, keyScissorEnable, keyMultisampleEnable,
	keyAntialiasedLineEnable,
)

var samplerKeys = keyTable(
	keyAddressU, keyAddressV, keyAddressW, keyFilter, keyComparisonFunc, keyMipLODBias,
	keyMaxAnisotropy, keyMinLOD, keyMaxLOD,
	borderColorKeys[0], borderColorKeys[1], borderColorKeys[2], borderColorKeys[3],
)

// keyTable maps the lower-cased spelling of each key to its canonical spelling.
func keyTable(keys ...string) map[string]string {
	t := make(map[string]string, len(keys))
	for _, k := range keys {
		t[strings.ToLower(k)] = k
	}
	return t
}

// parser is the implementation of the Parser interface. It holds configuration only,
// so one instance can parse concurrently from many goroutines.
type parser struct {
	strictness Strictness
	logger     zerolog.Logger
	source     string
}

// Parser turns render-state text into a validated ShaderStateConfig.
type Parser interface {
	// Parse parses a complete render-state file. On failure no partial config is
	// returned; the error is a *ParseError carrying the line, section and key.
	//
	// Parameters:
	//   - data: the raw file contents
	//
	// Returns:
	//   - ShaderStateConfig: the parsed config, zero value on error
	//   - error: a *ParseError, or nil
	Parse(data []byte) (ShaderStateConfig, error)

	// ParseReader reads r to the end and parses the result.
	//
	// Parameters:
	//   - r: the reader providing the file contents
	//
	// Returns:
	//   - ShaderStateConfig: the parsed config, zero value on error
	//   - error: a read error or a *ParseError
	ParseReader(r io.Reader) (ShaderStateConfig, error)

	// Strictness returns how the parser treats unrecognized keys.
	//
	// Returns:
	//   - Strictness: Strict or Lenient
	Strictness() Strictness
}

var _ Parser = &parser{}

// NewParser creates a Parser. Without options it is strict, anonymous and logs
// through the "renderstate" component logger.
//
// Parameters:
//   - opts: a variadic list of ParserBuilderOption functions to configure the parser
//
// Returns:
//   - Parser: the configured parser
func NewParser(opts ...ParserBuilderOption) Parser {
	p := &parser{
		strictness: Strict,
		logger:     oxylog.WithComponent("renderstate"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses data with a default strict parser.
//
// Parameters:
//   - data: the raw file contents
//
// Returns:
//   - ShaderStateConfig: the parsed config
//   - error: a *ParseError, or nil
func Parse(data []byte) (ShaderStateConfig, error) {
	return NewParser().Parse(data)
}

func (p *parser) Strictness() Strictness {
	return p.strictness
}

func (p *parser) ParseReader(r io.Reader) (ShaderStateConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ShaderStateConfig{}, fmt.Errorf("read render state: %w", err)
	}
	return p.Parse(data)
}

func (p *parser) Parse(data []byte) (ShaderStateConfig, error) {
	cfg, perr := p.parse(strings.TrimPrefix(string(data), "\uFEFF"))
	if perr != nil {
		perr.Source = p.source
		return ShaderStateConfig{}, perr
	}
	return cfg, nil
}

// section tracks the section currently being filled.
type section struct {
	name    string
	line    int
	keys    map[string]int // canonical key -> line it was declared on
	decoder sectionDecoder
}

func (p *parser) parse(text string) (ShaderStateConfig, *ParseError) {
	var (
		cfg      ShaderStateConfig
		current  *section
		declared = make(map[string]int)
	)

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)

		switch {
		case line == "" || isCommentLine(line):
			continue

		case strings.HasPrefix(line, "["):
			if !strings.HasSuffix(line, "]") {
				return ShaderStateConfig{}, malformed(lineNo, "unterminated section header")
			}
			name := strings.TrimSpace(line[1 : len(line)-1])
			if !isIdentifier(name) {
				// free text such as [Note: ...]
				continue
			}
			if err := current.close(&cfg); err != nil {
				return ShaderStateConfig{}, err
			}
			next, err := openSection(name, lineNo, declared)
			if err != nil {
				return ShaderStateConfig{}, err
			}
			current = next

		default:
			if err := p.assign(current, line, lineNo); err != nil {
				return ShaderStateConfig{}, err
			}
		}
	}

	if err := current.close(&cfg); err != nil {
		return ShaderStateConfig{}, err
	}
	return cfg, nil
}

func openSection(name string, line int, declared map[string]int) (*section, *ParseError) {
	s := &section{line: line, keys: make(map[string]int)}

	if strings.EqualFold(name, SectionRasterizer) {
		s.name = SectionRasterizer
		s.decoder = &rasterizerDecoder{state: DefaultRasterizerState()}
	} else if n, ok := samplerIndex(name); ok {
		s.name = SamplerSection(n)
		s.decoder = &samplerDecoder{state: DefaultSamplerState(n)}
	} else {
		return nil, &ParseError{Kind: KindUnrecognizedSection, Line: line, Section: name}
	}

	if first, dup := declared[s.name]; dup {
		return nil, &ParseError{
			Kind: KindDuplicateSection, Line: line, Section: s.name,
			Err: fmt.Errorf("first declared on line %d", first),
		}
	}
	declared[s.name] = line
	return s, nil
}

// samplerIndex extracts N from a SamplerDX11_N header. N must be a positive integer.
func samplerIndex(name string) (int, bool) {
	if len(name) <= len(samplerSectionPrefix) ||
		!strings.EqualFold(name[:len(samplerSectionPrefix)], samplerSectionPrefix) {
		return 0, false
	}
	digits := name[len(samplerSectionPrefix):]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func (p *parser) assign(current *section, line string, lineNo int) *ParseError {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return malformed(lineNo, "expected Key = Value")
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	switch {
	case !isIdentifier(key):
		return malformed(lineNo, fmt.Sprintf("invalid key %q", key))
	case value == "":
		return malformed(lineNo, fmt.Sprintf("missing value for %s", key))
	case current == nil:
		return malformed(lineNo, fmt.Sprintf("%s is declared outside of any section", key))
	}

	canonical, known := current.decoder.lookup(key)
	if !known {
		if p.strictness == Strict {
			return &ParseError{Kind: KindUnrecognizedKey, Line: lineNo, Section: current.name, Key: key}
		}
		p.logger.Warn().
			Str(oxylog.FieldEvent, "renderstate.unknown_key").
			Str(oxylog.FieldPath, p.source).
			Str(oxylog.FieldSection, current.name).
			Str(oxylog.FieldKey, key).
			Int(oxylog.FieldLine, lineNo).
			Msg("ignoring unrecognized render state key")
		return nil
	}

	if first, dup := current.keys[canonical]; dup {
		return &ParseError{
			Kind: KindDuplicateKey, Line: lineNo, Section: current.name, Key: canonical,
			Err: fmt.Errorf("first declared on line %d", first),
		}
	}
	current.keys[canonical] = lineNo

	if err := current.decoder.decode(canonical, value); err != nil {
		var ve *valueError
		kind, cause := KindInvalidEnumValue, error(nil)
		if errors.As(err, &ve) {
			kind, cause = ve.kind, ve.err
		}
		return &ParseError{
			Kind: kind, Line: lineNo, Section: current.name, Key: canonical, Value: value, Err: cause,
		}
	}
	return nil
}

// close validates the section and appends its state to cfg. A nil section is a no-op.
func (s *section) close(cfg *ShaderStateConfig) *ParseError {
	if s == nil {
		return nil
	}
	return s.decoder.finish(s, cfg)
}

func (s *section) missing(key string) *ParseError {
	return &ParseError{Kind: KindMissingKey, Line: s.line, Section: s.name, Key: key}
}

// sectionDecoder decodes the keys of one section type.
type sectionDecoder interface {
	lookup(key string) (canonical string, ok bool)
	decode(key, value string) error
	finish(s *section, cfg *ShaderStateConfig) *ParseError
}

type rasterizerDecoder struct {
	state RasterizerState
}

func (d *rasterizerDecoder) lookup(key string) (string, bool) {
	k, ok := rasterizerKeys[strings.ToLower(key)]
	return k, ok
}

func (d *rasterizerDecoder) decode(key, value string) error {
	r := &d.state
	switch key {
	case keyCullMode:
		return decodeEnum(cullModes, &r.CullMode, value)
	case keyFillMode:
		return decodeEnum(fillModes, &r.FillMode, value)
	case keyFrontCounterClockwise:
		return decodeBool(&r.FrontCounterClockwise, value)
	case keyDepthBias:
		return decodeInt32(&r.DepthBias, value)
	case keyDepthBiasClamp:
		return decodeFloat(&r.DepthBiasClamp, value)
	case keySlopeScaledDepthBias:
		return decodeFloat(&r.SlopeScaledDepthBias, value)
	case keyDepthClipEnable:
		return decodeBool(&r.DepthClipEnable, value)
	case keyScissorEnable:
		return decodeBool(&r.ScissorEnable, value)
	case keyMultisampleEnable:
		return decodeBool(&r.MultisampleEnable, value)
	case keyAntialiasedLineEnable:
		return decodeBool(&r.AntialiasedLineEnable, value)
	}
	return nil
}

func (d *rasterizerDecoder) finish(s *section, cfg *ShaderStateConfig) *ParseError {
	if _, ok := s.keys[keyCullMode]; !ok {
		return s.missing(keyCullMode)
	}
	state := d.state
	cfg.Rasterizer = &state
	return nil
}

type samplerDecoder struct {
	state  SamplerState
	border [4]float32
}

func (d *samplerDecoder) lookup(key string) (string, bool) {
	k, ok := samplerKeys[strings.ToLower(key)]
	return k, ok
}

func (d *samplerDecoder) decode(key, value string) error {
	s := &d.state
	switch key {
	case keyAddressU:
		return decodeEnum(addressModes, &s.AddressU, value)
	case keyAddressV:
		return decodeEnum(addressModes, &s.AddressV, value)
	case keyAddressW:
		return decodeEnum(addressModes, &s.AddressW, value)
	case keyFilter:
		return decodeEnum(filters, &s.Filter, value)
	case keyComparisonFunc:
		var cmp ComparisonFunc
		if err := decodeEnum(comparisonFuncs, &cmp, value); err != nil {
			return err
		}
		s.ComparisonFunc = &cmp
	case keyMipLODBias:
		return decodeFloat(&s.MipLODBias, value)
	case keyMinLOD:
		return decodeFloat(&s.MinLOD, value)
	case keyMaxLOD:
		return decodeFloat(&s.MaxLOD, value)
	case keyMaxAnisotropy:
		return decodeAnisotropy(&s.MaxAnisotropy, value)
	default:
		for i, k := range borderColorKeys {
			if k == key {
				return decodeFloat(&d.border[i], value)
			}
		}
	}
	return nil
}

func (d *samplerDecoder) finish(s *section, cfg *ShaderStateConfig) *ParseError {
	for _, key := range []string{keyAddressU, keyAddressV} {
		if _, ok := s.keys[key]; !ok {
			return s.missing(key)
		}
	}

	state := d.state
	declared := 0
	firstMissing := ""
	for _, k := range borderColorKeys {
		if _, ok := s.keys[k]; ok {
			declared++
		} else if firstMissing == "" {
			firstMissing = k
		}
	}
	switch declared {
	case 0:
	case len(borderColorKeys):
		border := d.border
		state.BorderColor = &border
	default:
		return &ParseError{
			Kind: KindIncompleteBorderColor, Line: s.line, Section: s.name, Key: firstMissing,
			Err: fmt.Errorf("%d of 4 components declared, BorderColor0..3 must be declared together", declared),
		}
	}

	switch {
	case state.Filter.IsComparison() && state.ComparisonFunc == nil:
		return s.missing(keyComparisonFunc)
	case !state.Filter.IsComparison() && state.ComparisonFunc != nil:
		return &ParseError{
			Kind: KindUnexpectedKey, Line: s.keys[keyComparisonFunc], Section: s.name, Key: keyComparisonFunc,
			Err: fmt.Errorf("filter %s is not a comparison filter", state.Filter.D3D11Name()),
		}
	}

	cfg.Samplers = append(cfg.Samplers, state)
	return nil
}

// valueError reports a value that does not fit its key's domain.
type valueError struct {
	kind ErrorKind
	err  error
}

func (e *valueError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return e.kind.String()
}

func decodeEnum[T ~int](set *enumSet[T], dst *T, value string) error {
	v, ok := set.parse(value)
	if !ok {
		return &valueError{kind: KindInvalidEnumValue}
	}
	*dst = v
	return nil
}

func decodeBool(dst *bool, value string) error {
	switch strings.ToUpper(value) {
	case "TRUE", "1":
		*dst = true
	case "FALSE", "0":
		*dst = false
	default:
		return &valueError{kind: KindInvalidEnumValue}
	}
	return nil
}

func decodeFloat(dst *float32, value string) error {
	f, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return &valueError{kind: KindInvalidNumber, err: err}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return &valueError{kind: KindInvalidNumber, err: errNotFinite}
	}
	*dst = float32(f)
	return nil
}

func decodeInt32(dst *int32, value string) error {
	n, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return &valueError{kind: KindInvalidNumber, err: err}
	}
	*dst = int32(n)
	return nil
}

func decodeAnisotropy(dst *uint32, value string) error {
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return &valueError{kind: KindInvalidNumber, err: err}
	}
	if n < 1 || n > MaxAnisotropyLimit {
		return &valueError{kind: KindInvalidNumber, err: errAnisotropyRange}
	}
	*dst = uint32(n)
	return nil
}

func malformed(line int, reason string) *ParseError {
	return &ParseError{Kind: KindMalformedLine, Line: line, Err: errors.New(reason)}
}

func isCommentLine(line string) bool {
	return strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//")
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
