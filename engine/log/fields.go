package log

// Canonical field name constants for structured logging.
const (
	FieldEvent     = "event"
	FieldComponent = "component"

	// Render-state location fields
	FieldPath    = "path"
	FieldSection = "section"
	FieldKey     = "key"
	FieldLine    = "line"
)
