package loader

import (
	"io"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-renderstate/engine/renderstate"
	"github.com/rs/zerolog"
)

// renderStateLoaderBackendImpl is the loaderBackend for .rs render-state files.
type renderStateLoaderBackendImpl struct {
	strictness renderstate.Strictness
	logger     zerolog.Logger
}

var _ loaderBackend = &renderStateLoaderBackendImpl{}

// newRenderStateLoaderBackend creates a render-state loader backend.
//
// Parameters:
//   - strictness: how unknown keys are treated
//   - logger: receives lenient-mode warnings
//
// Returns:
//   - *renderStateLoaderBackendImpl: the loader backend for .rs files
func newRenderStateLoaderBackend(strictness renderstate.Strictness, logger zerolog.Logger) *renderStateLoaderBackendImpl {
	return &renderStateLoaderBackendImpl{strictness: strictness, logger: logger}
}

func (b *renderStateLoaderBackendImpl) Load(path string) (renderstate.ShaderStateConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return renderstate.ShaderStateConfig{}, err
	}
	return b.parse(path, data)
}

func (b *renderStateLoaderBackendImpl) LoadReader(name string, r io.Reader) (renderstate.ShaderStateConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return renderstate.ShaderStateConfig{}, err
	}
	return b.parse(name, data)
}

func (b *renderStateLoaderBackendImpl) Extensions() []string {
	return []string{".rs"}
}

func (b *renderStateLoaderBackendImpl) parse(source string, data []byte) (renderstate.ShaderStateConfig, error) {
	p := renderstate.NewParser(
		renderstate.WithStrictness(b.strictness),
		renderstate.WithLogger(b.logger),
		renderstate.WithSource(source),
	)
	start := time.Now()
	cfg, err := p.Parse(data)
	parseDuration.Observe(time.Since(start).Seconds())
	return cfg, err
}
