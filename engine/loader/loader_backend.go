package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-renderstate/engine/renderstate"
)

// loaderBackend defines the generic interface for loading render-state files from disk or streams.
// Concrete implementations (e.g., renderStateLoaderBackendImpl) handle format-specific details.
type loaderBackend interface {
	// Load reads and parses the file at the given path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - renderstate.ShaderStateConfig: the parsed config
	//   - error: error if reading or parsing fails
	Load(path string) (renderstate.ShaderStateConfig, error)

	// LoadReader parses a config from a reader stream.
	//
	// Parameters:
	//   - name: the source label reported in diagnostics
	//   - r: the reader providing the file contents
	//
	// Returns:
	//   - renderstate.ShaderStateConfig: the parsed config
	//   - error: error if reading or parsing fails
	LoadReader(name string, r io.Reader) (renderstate.ShaderStateConfig, error)

	// Extensions lists the file extensions the backend understands, lower case and with the leading dot.
	Extensions() []string
}
