package renderstate

import "github.com/rs/zerolog"

// ParserBuilderOption is a functional option used to configure a Parser during construction.
type ParserBuilderOption func(*parser)

// WithStrictness sets how the parser treats unrecognized keys inside known sections.
//
// Parameters:
//   - s: Strict to reject unknown keys, Lenient to skip them with a warning
//
// Returns:
//   - ParserBuilderOption: a function that sets the strictness of the parser
func WithStrictness(s Strictness) ParserBuilderOption {
	return func(p *parser) {
		p.strictness = s
	}
}

// WithLogger sets the logger that receives lenient-mode warnings.
//
// Parameters:
//   - l: the zerolog logger to write warnings to
//
// Returns:
//   - ParserBuilderOption: a function that sets the logger of the parser
func WithLogger(l zerolog.Logger) ParserBuilderOption {
	return func(p *parser) {
		p.logger = l
	}
}

// WithSource sets the name reported in diagnostics, usually the file path.
//
// Parameters:
//   - name: the source label attached to every ParseError
//
// Returns:
//   - ParserBuilderOption: a function that sets the source label of the parser
func WithSource(name string) ParserBuilderOption {
	return func(p *parser) {
		p.source = name
	}
}
