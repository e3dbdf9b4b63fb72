package renderstate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a render-state parse or validation failure.
type ErrorKind int

const (
	KindMalformedLine ErrorKind = iota + 1
	KindUnrecognizedSection
	KindUnrecognizedKey
	KindMissingKey
	KindInvalidEnumValue
	KindIncompleteBorderColor
	KindDuplicateSection
	KindDuplicateKey
	KindUnexpectedKey
	KindInvalidNumber
)

// Sentinels for errors.Is. Every *ParseError unwraps to the sentinel of its Kind.
var (
	ErrMalformedLine         = errors.New("malformed line")
	ErrUnrecognizedSection   = errors.New("unrecognized section")
	ErrUnrecognizedKey       = errors.New("unrecognized key")
	ErrMissingKey            = errors.New("missing required key")
	ErrInvalidEnumValue      = errors.New("invalid enumerated value")
	ErrIncompleteBorderColor = errors.New("incomplete border color")
	ErrDuplicateSection      = errors.New("duplicate section")
	ErrDuplicateKey          = errors.New("duplicate key")
	ErrUnexpectedKey         = errors.New("unexpected key")
	ErrInvalidNumber         = errors.New("invalid number")
)

var kindSentinels = map[ErrorKind]error{
	KindMalformedLine:         ErrMalformedLine,
	KindUnrecognizedSection:   ErrUnrecognizedSection,
	KindUnrecognizedKey:       ErrUnrecognizedKey,
	KindMissingKey:            ErrMissingKey,
	KindInvalidEnumValue:      ErrInvalidEnumValue,
	KindIncompleteBorderColor: ErrIncompleteBorderColor,
	KindDuplicateSection:      ErrDuplicateSection,
	KindDuplicateKey:          ErrDuplicateKey,
	KindUnexpectedKey:         ErrUnexpectedKey,
	KindInvalidNumber:         ErrInvalidNumber,
}

var (
	errNotFinite       = errors.New("value must be finite")
	errAnisotropyRange = fmt.Errorf("value must be between 1 and %d", MaxAnisotropyLimit)
)

// String returns the name of the error kind, e.g. "UnrecognizedSection".
func (k ErrorKind) String() string {
	switch k {
	case KindMalformedLine:
		return "MalformedLine"
	case KindUnrecognizedSection:
		return "UnrecognizedSection"
	case KindUnrecognizedKey:
		return "UnrecognizedKey"
	case KindMissingKey:
		return "MissingKey"
	case KindInvalidEnumValue:
		return "InvalidEnumValue"
	case KindIncompleteBorderColor:
		return "IncompleteBorderColor"
	case KindDuplicateSection:
		return "DuplicateSection"
	case KindDuplicateKey:
		return "DuplicateKey"
	case KindUnexpectedKey:
		return "UnexpectedKey"
	case KindInvalidNumber:
		return "InvalidNumber"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ParseError describes why a render-state file was rejected. Line is 1-based; it is 0
// for errors raised by ShaderStateConfig.Validate on configs built in code.
type ParseError struct {
	Kind ErrorKind

	// Source names the input (usually the file path). Empty for anonymous input.
	Source string
	Line   int

	// Section, Key and Value locate the offending entry. Any of them may be empty.
	Section string
	Key     string
	Value   string

	// Err is the underlying cause, if any (e.g. a strconv error).
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var sb strings.Builder
	switch {
	case e.Source != "" && e.Line > 0:
		fmt.Fprintf(&sb, "%s:%d: ", e.Source, e.Line)
	case e.Source != "":
		fmt.Fprintf(&sb, "%s: ", e.Source)
	case e.Line > 0:
		fmt.Fprintf(&sb, "line %d: ", e.Line)
	}

	switch e.Kind {
	case KindUnrecognizedSection, KindDuplicateSection:
		fmt.Fprintf(&sb, "%s %q", kindSentinels[e.Kind], e.Section)
	case KindMalformedLine:
		sb.WriteString(ErrMalformedLine.Error())
	default:
		if e.Section != "" {
			fmt.Fprintf(&sb, "[%s] ", e.Section)
		}
		if e.Key != "" {
			fmt.Fprintf(&sb, "%s: ", e.Key)
		}
		sb.WriteString(e.sentinel().Error())
		if e.Value != "" {
			fmt.Fprintf(&sb, " %q", e.Value)
		}
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause to errors.Is/As.
func (e *ParseError) Unwrap() []error {
	errs := []error{e.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *ParseError) sentinel() error {
	if s, ok := kindSentinels[e.Kind]; ok {
		return s
	}
	return errors.New(e.Kind.String())
}

// FormatWithContext returns the error message followed by the offending source line
// and a marker under it. Falls back to Error() when the line cannot be located.
//
// Parameters:
//   - src: the text that was parsed
//
// Returns:
//   - string: the multi-line diagnostic
func (e *ParseError) FormatWithContext(src []byte) string {
	lines := strings.Split(string(src), "\n")
	if e.Line < 1 || e.Line > len(lines) {
		return e.Error()
	}
	line := strings.TrimRight(lines[e.Line-1], "\r")
	trimmed := strings.TrimLeft(line, " \t")
	indent := len(line) - len(trimmed)
	width := max(len(strings.TrimSpace(line)), 1)

	var sb strings.Builder
	fmt.Fprintf(&sb, "error: %s\n", e.Error())
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%3d| %s\n", e.Line, line)
	fmt.Fprintf(&sb, "   | %s%s\n", strings.Repeat(" ", indent), strings.Repeat("^", width))
	return sb.String()
}
