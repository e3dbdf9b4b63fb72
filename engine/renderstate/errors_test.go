package renderstate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ParseError
		want string
	}{
		{
			name: "invalid enum with source",
			err:  &ParseError{Kind: KindInvalidEnumValue, Source: "a.rs", Line: 2, Section: "RasterizerStateDX11", Key: "CullMode", Value: "SIDEWAYS"},
			want: `a.rs:2: [RasterizerStateDX11] CullMode: invalid enumerated value "SIDEWAYS"`,
		},
		{
			name: "unrecognized section",
			err:  &ParseError{Kind: KindUnrecognizedSection, Line: 5, Section: "BlendStateDX11"},
			want: `line 5: unrecognized section "BlendStateDX11"`,
		},
		{
			name: "malformed line",
			err:  &ParseError{Kind: KindMalformedLine, Line: 3, Err: errors.New("expected Key = Value")},
			want: `line 3: malformed line: expected Key = Value`,
		},
		{
			name: "missing key without line",
			err:  &ParseError{Kind: KindMissingKey, Section: "SamplerDX11_1", Key: "AddressV"},
			want: `[SamplerDX11_1] AddressV: missing required key`,
		},
		{
			name: "source without line",
			err:  &ParseError{Kind: KindDuplicateSection, Source: "b.rs", Section: "SamplerDX11_2"},
			want: `b.rs: duplicate section "SamplerDX11_2"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestParseError_IsSentinel(t *testing.T) {
	for kind, sentinel := range kindSentinels {
		t.Run(kind.String(), func(t *testing.T) {
			err := fmt.Errorf("load shader: %w", &ParseError{Kind: kind})
			assert.ErrorIs(t, err, sentinel)
			for other, s := range kindSentinels {
				if other != kind {
					assert.NotErrorIs(t, err, s)
				}
			}
		})
	}
}

func TestParseError_UnwrapsCause(t *testing.T) {
	_, err := Parse([]byte("[RasterizerStateDX11]\nCullMode = BACK\nDepthBias = lots\n"))
	require.Error(t, err)

	var numErr *strconv.NumError
	assert.ErrorAs(t, err, &numErr)
	assert.ErrorIs(t, err, ErrInvalidNumber)
}

func TestParseError_FormatWithContext(t *testing.T) {
	src := []byte("[RasterizerStateDX11]\n  CullMode = SIDEWAYS\n")
	_, err := Parse(src)
	perr := requireParseError(t, err)

	out := perr.FormatWithContext(src)
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.True(t, strings.HasPrefix(lines[0], "error: line 2: "))
	assert.Equal(t, "  2|   CullMode = SIDEWAYS", lines[2])
	assert.Equal(t, "   |   "+strings.Repeat("^", len("CullMode = SIDEWAYS")), lines[3])
}

func TestParseError_FormatWithContextOutOfRange(t *testing.T) {
	perr := &ParseError{Kind: KindMissingKey, Section: "SamplerDX11_1", Key: "AddressU"}
	assert.Equal(t, perr.Error(), perr.FormatWithContext([]byte("x")))
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "IncompleteBorderColor", KindIncompleteBorderColor.String())
	assert.Equal(t, "ErrorKind(99)", ErrorKind(99).String())
}
