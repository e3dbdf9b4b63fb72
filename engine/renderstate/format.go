package renderstate

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Marshal renders cfg in canonical render-state text. Parsing the result yields a
// config equal to cfg for every cfg that passes Validate.
//
// Parameters:
//   - cfg: the config to render
//
// Returns:
//   - []byte: the canonical file contents
func Marshal(cfg ShaderStateConfig) []byte {
	var buf bytes.Buffer
	// bytes.Buffer writes cannot fail
	_ = Write(&buf, cfg)
	return buf.Bytes()
}

// Write renders cfg in canonical form to w: the rasterizer section first, then the
// sampler sections in stored order, separated by blank lines. Enumerated values use
// their D3D11 names. Optional keys are written only when they differ from the D3D11
// default, except ComparisonFunc and BorderColor0..3 which are written whenever set.
//
// Parameters:
//   - w: the destination writer
//   - cfg: the config to render
//
// Returns:
//   - error: the first write error, if any
func Write(w io.Writer, cfg ShaderStateConfig) error {
	fw := &formatWriter{w: w}

	if r := cfg.Rasterizer; r != nil {
		def := DefaultRasterizerState()
		fw.header(SectionRasterizer)
		fw.kv(keyCullMode, r.CullMode.D3D11Name())
		if r.FillMode != def.FillMode {
			fw.kv(keyFillMode, r.FillMode.D3D11Name())
		}
		fw.boolIf(keyFrontCounterClockwise, r.FrontCounterClockwise, def.FrontCounterClockwise)
		if r.DepthBias != def.DepthBias {
			fw.kv(keyDepthBias, strconv.FormatInt(int64(r.DepthBias), 10))
		}
		fw.floatIf(keyDepthBiasClamp, r.DepthBiasClamp, def.DepthBiasClamp)
		fw.floatIf(keySlopeScaledDepthBias, r.SlopeScaledDepthBias, def.SlopeScaledDepthBias)
		fw.boolIf(keyDepthClipEnable, r.DepthClipEnable, def.DepthClipEnable)
		fw.boolIf(keyScissorEnable, r.ScissorEnable, def.ScissorEnable)
		fw.boolIf(keyMultisampleEnable, r.MultisampleEnable, def.MultisampleEnable)
		fw.boolIf(keyAntialiasedLineEnable, r.AntialiasedLineEnable, def.AntialiasedLineEnable)
	}

	for _, s := range cfg.Samplers {
		def := DefaultSamplerState(s.Index)
		fw.header(SamplerSection(s.Index))
		if s.ComparisonFunc != nil {
			fw.kv(keyComparisonFunc, s.ComparisonFunc.D3D11Name())
		}
		if s.Filter != def.Filter {
			fw.kv(keyFilter, s.Filter.D3D11Name())
		}
		fw.kv(keyAddressU, s.AddressU.D3D11Name())
		fw.kv(keyAddressV, s.AddressV.D3D11Name())
		if s.AddressW != def.AddressW {
			fw.kv(keyAddressW, s.AddressW.D3D11Name())
		}
		fw.floatIf(keyMipLODBias, s.MipLODBias, def.MipLODBias)
		if s.MaxAnisotropy != def.MaxAnisotropy {
			fw.kv(keyMaxAnisotropy, strconv.FormatUint(uint64(s.MaxAnisotropy), 10))
		}
		fw.floatIf(keyMinLOD, s.MinLOD, def.MinLOD)
		fw.floatIf(keyMaxLOD, s.MaxLOD, def.MaxLOD)
		if s.BorderColor != nil {
			for i, v := range s.BorderColor {
				fw.kv(borderColorKeys[i], formatFloat(v))
			}
		}
	}
	return fw.err
}

// formatWriter accumulates the first write error so Write can stay linear.
type formatWriter struct {
	w        io.Writer
	err      error
	sections int
}

func (fw *formatWriter) printf(format string, args ...any) {
	if fw.err != nil {
		return
	}
	_, fw.err = fmt.Fprintf(fw.w, format, args...)
}

func (fw *formatWriter) header(name string) {
	if fw.sections > 0 {
		fw.printf("\n")
	}
	fw.sections++
	fw.printf("[%s]\n", name)
}

func (fw *formatWriter) kv(key, value string) {
	fw.printf("%s = %s\n", key, value)
}

func (fw *formatWriter) boolIf(key string, v, def bool) {
	if v == def {
		return
	}
	if v {
		fw.kv(key, "TRUE")
	} else {
		fw.kv(key, "FALSE")
	}
}

func (fw *formatWriter) floatIf(key string, v, def float32) {
	if math.Float32bits(v) != math.Float32bits(def) {
		fw.kv(key, formatFloat(v))
	}
}

// formatFloat returns the shortest text that parses back to the same float32.
func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}
