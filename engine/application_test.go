package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-dx12/engine/core"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/d3d12"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

func TestParseApplicationConfig(t *testing.T) {
	config, err := ParseApplicationConfig([]byte(`
name = "Sandbox"
log_level = "debug"
assets_dir = "data"
driver = "d3d12"
frame_limit = 30

[device]
staging_heap_descriptor_count = 256
`))
	require.NoError(t, err)

	assert.Equal(t, "Sandbox", config.Name)
	assert.Equal(t, core.DebugLevel, config.LogLevel)
	assert.Equal(t, "data", config.AssetsDir)
	assert.Equal(t, metadata.RendererDriverD3D12, config.Driver)
	assert.Equal(t, uint64(30), config.FrameLimit)
	assert.Equal(t, d3d12.DeviceConfig{
		StagingHeapDescriptorCount: 256,
		GPUViewDescriptorCount:     d3d12.ViewGPUDescriptorCount,
		GPUSamplerDescriptorCount:  d3d12.SamplerGPUDescriptorCount,
	}, config.Device)
}

func TestParseApplicationConfigDefaults(t *testing.T) {
	config, err := ParseApplicationConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultApplicationConfig(), config)
}

func TestParseApplicationConfigErrors(t *testing.T) {
	cases := map[string]string{
		"bad toml":        `name = `,
		"unknown driver":  `driver = "vulkan"`,
		"unknown level":   `log_level = "loud"`,
		"empty name":      `name = ""`,
		"empty assets":    `assets_dir = ""`,
		"sampler heap":    "[device]\ngpu_sampler_descriptor_count = 4096",
		"negative counts": "[device]\nstaging_heap_descriptor_count = -1",
	}
	for name, data := range cases {
		_, err := ParseApplicationConfig([]byte(data))
		assert.Error(t, err, name)
	}

	_, err := ParseApplicationConfig([]byte("[device]\ngpu_view_descriptor_count = -4"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[device]")
}

func TestLoadApplicationConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultApplicationConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(`name = "From File"`), 0o644))

	config, err := LoadApplicationConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "From File", config.Name)
	assert.Equal(t, "assets", config.AssetsDir)

	_, err = LoadApplicationConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestEngineRunsFrames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shaders", "world.shadercfg"), `
name = "world"
[vertex]
uniform_buffers = 1
[pixel]
samplers = 1
`)
	writeFile(t, filepath.Join(dir, "textures", "checker.texcfg"), `
width = 8
height = 8
format = "rgba"
`)

	config := DefaultApplicationConfig()
	config.AssetsDir = dir
	config.FrameLimit = 5
	config.Device = d3d12.DeviceConfig{
		StagingHeapDescriptorCount: 32,
		GPUViewDescriptorCount:     64,
		GPUSamplerDescriptorCount:  16,
	}

	var updates, renders int
	var shutdown bool
	game := &Game{
		ApplicationConfig: config,
		FnInitialize: func() error {
			return nil
		},
		FnUpdate: func(deltaTime float64) error {
			updates++
			return nil
		},
		FnRender: func(packet *metadata.RenderPacket, deltaTime float64) error {
			renders++
			return nil
		},
		FnShutdown: func() error {
			shutdown = true
			return nil
		},
	}

	e, err := New(game)
	require.NoError(t, err)
	e.limitFrames = false
	require.Same(t, e.SystemManager(), game.SystemManager)

	assert.Error(t, e.Run())
	require.NoError(t, e.Initialize())

	shader, err := game.SystemManager.ShaderSystem.GetShader("world")
	require.NoError(t, err)
	assert.Equal(t, metadata.SHADER_STATE_INITIALIZED, shader.State)

	tex, err := game.SystemManager.TextureSystem.Acquire("checker", true)
	require.NoError(t, err)
	require.NotNil(t, tex)

	require.NoError(t, e.Run())
	assert.Equal(t, uint64(5), e.FrameCount())
	assert.Equal(t, 5, updates)
	assert.Equal(t, 5, renders)
	assert.Equal(t, uint64(5), game.SystemManager.Renderer.FrameNumber())

	require.NoError(t, e.Shutdown())
	require.NoError(t, e.Shutdown())
	assert.True(t, shutdown)
}

func TestEngineRequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
	_, err = New(&Game{})
	assert.Error(t, err)
}
