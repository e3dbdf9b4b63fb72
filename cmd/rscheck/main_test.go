package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-renderstate/engine/renderstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const messy = `; shadow caster
[RasterizerStateDX11]
cullmode = front
DepthBias = 100

[Note: comparison sampler]
[SamplerDX11_2]
ComparisonFunc = LESS_EQUAL
Filter = COMPARISON_MIN_MAG_MIP_POINT
AddressU = BORDER
AddressV = BORDER
`

const canonical = `[RasterizerStateDX11]
CullMode = D3D11_CULL_FRONT
DepthBias = 100

[SamplerDX11_2]
ComparisonFunc = D3D11_COMPARISON_LESS_EQUAL
Filter = D3D11_FILTER_COMPARISON_MIN_MAG_MIP_POINT
AddressU = D3D11_TEXTURE_ADDRESS_BORDER
AddressV = D3D11_TEXTURE_ADDRESS_BORDER
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Valid(t *testing.T) {
	path := writeFile(t, "shadow.rs", messy)
	code, stdout, _ := runCLI(path)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "ok "+path+"\n", stdout)
}

func TestRun_InvalidShowsContext(t *testing.T) {
	good := writeFile(t, "good.rs", messy)
	bad := writeFile(t, "bad.rs", "[RasterizerStateDX11]\nCullMode = SIDEWAYS\n")

	code, stdout, stderr := runCLI(good, bad)
	assert.Equal(t, exitInvalid, code)
	assert.Equal(t, "ok "+good+"\n", stdout)
	assert.Contains(t, stderr, bad+":2:")
	assert.Contains(t, stderr, `invalid enumerated value "SIDEWAYS"`)
	assert.Contains(t, stderr, "  2| CullMode = SIDEWAYS")
}

func TestRun_MissingFile(t *testing.T) {
	code, _, stderr := runCLI(filepath.Join(t.TempDir(), "nope.rs"))
	assert.Equal(t, exitInvalid, code)
	assert.Contains(t, stderr, "error: ")
}

func TestRun_Lenient(t *testing.T) {
	path := writeFile(t, "extra.rs", messy+"Sharpness = 2\n")

	code, _, _ := runCLI(path)
	assert.Equal(t, exitInvalid, code)

	code, stdout, _ := runCLI("-lenient", path)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "ok "+path+"\n", stdout)
}

func TestRun_Fmt(t *testing.T) {
	path := writeFile(t, "shadow.rs", messy)
	code, stdout, _ := runCLI("-fmt", path)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, canonical, stdout)

	// the file is left untouched without -w
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, messy, string(data))
}

func TestRun_FmtWrite(t *testing.T) {
	path := writeFile(t, "shadow.rs", messy)
	code, stdout, _ := runCLI("-fmt", "-w", path)
	assert.Equal(t, exitOK, code)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, canonical, string(data))

	// a canonical file is a fixed point
	code, _, _ = runCLI("-fmt", "-w", path)
	assert.Equal(t, exitOK, code)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, canonical, string(data))
}

func TestRun_DumpYAML(t *testing.T) {
	path := writeFile(t, "shadow.rs", messy)
	code, stdout, _ := runCLI("-dump", "yaml", path)
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "cullMode: FRONT")
	assert.Contains(t, stdout, "comparisonFunc: LESS_EQUAL")

	var cfg renderstate.ShaderStateConfig
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &cfg))
	require.Len(t, cfg.Samplers, 1)
	assert.Equal(t, 2, cfg.Samplers[0].Index)
	assert.Equal(t, renderstate.AddressModeBorder, cfg.Samplers[0].AddressU)
}

func TestRun_DumpJSON(t *testing.T) {
	path := writeFile(t, "shadow.rs", messy)
	code, stdout, _ := runCLI("-dump", "json", path)
	require.Equal(t, exitOK, code)

	var cfg renderstate.ShaderStateConfig
	require.NoError(t, json.Unmarshal([]byte(stdout), &cfg))
	require.NotNil(t, cfg.Rasterizer)
	assert.Equal(t, renderstate.CullModeFront, cfg.Rasterizer.CullMode)
	assert.Equal(t, int32(100), cfg.Rasterizer.DepthBias)
}

func TestRun_Usage(t *testing.T) {
	path := writeFile(t, "shadow.rs", messy)
	tests := []struct {
		name string
		args []string
	}{
		{"no files", nil},
		{"bad dump format", []string{"-dump", "toml", path}},
		{"write without fmt", []string{"-w", path}},
		{"unknown flag", []string{"-frobnicate", path}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(tt.args...)
			assert.Equal(t, exitUsage, code)
			assert.NotEmpty(t, stderr)
		})
	}
}

// lockedBuffer lets the test read output while run is still writing it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRun_WatchReportsReloads(t *testing.T) {
	path := writeFile(t, "live.rs", messy)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stdout, stderr lockedBuffer
	done := make(chan int, 1)
	go func() {
		done <- run(ctx, []string{"-watch", path}, &stdout, &stderr)
	}()

	// Rewrite slower than the debounce until the watcher, which starts after the first check, reports it.
	edited := "[SamplerDX11_1]\nAddressU = WRAP\nAddressV = WRAP\n"
	require.Eventually(t, func() bool {
		if strings.Contains(stdout.String(), "reloaded ") {
			return true
		}
		_ = os.WriteFile(path, []byte(edited), 0o644)
		return false
	}, 10*time.Second, 400*time.Millisecond)

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, exitOK, code)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}

	out := stdout.String()
	assert.True(t, strings.HasPrefix(out, "ok "+path+"\n"), out)
	assert.Contains(t, out, "reloaded "+path+" (1 samplers)\n")
}
