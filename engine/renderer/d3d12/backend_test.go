package d3d12_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-dx12/engine/core"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/d3d12"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/d3d12/soft"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

func newRenderer(t *testing.T) (*d3d12.D3D12Renderer, *soft.Device) {
	t.Helper()
	native := soft.New()
	cfg := smallDeviceConfig
	r := d3d12.New(native, &cfg)
	require.NoError(t, r.Initialize("test"))
	t.Cleanup(func() {
		_ = r.Shutdown()
	})
	return r, native
}

func worldShader() *metadata.Shader {
	return &metadata.Shader{
		Name: "world",
		Config: metadata.ShaderConfig{
			Name:   "world",
			Vertex: metadata.ShaderStageConfig{UniformBuffers: 1, Uniform32BitConstants: 16},
			Pixel:  metadata.ShaderStageConfig{Samplers: 2, UniformBuffers: 1},
		},
	}
}

func TestRendererLifecycle(t *testing.T) {
	native := soft.New()
	r := d3d12.New(native, nil)
	assert.Nil(t, r.Stats())
	assert.ErrorIs(t, r.BeginFrame(0), core.ErrNotInitialized)

	require.NoError(t, r.Initialize("test"))
	require.NotNil(t, r.Device())
	require.NoError(t, r.Initialize("test"))
	assert.Len(t, r.Stats(), int(d3d12.DescriptorHeapTypeCount))

	require.NoError(t, r.BeginFrame(0.016))
	assert.Error(t, r.BeginFrame(0.016))
	require.NoError(t, r.EndFrame(0.016))
	assert.Error(t, r.EndFrame(0.016))
	assert.Equal(t, uint64(1), r.FrameNumber)

	require.NoError(t, r.Shutdown())
	require.NoError(t, r.Shutdown())
	assert.Nil(t, r.Device())
	assert.True(t, native.Released())
	assert.Equal(t, 0, native.LiveHeaps())
}

func TestRendererInitializeFailure(t *testing.T) {
	native := soft.New()
	native.FailHeapCreationAfter = 2
	r := d3d12.New(native, nil)

	require.Error(t, r.Initialize("test"))
	assert.Nil(t, r.Device())
	assert.True(t, native.Released())
	assert.Equal(t, 0, native.LiveHeaps())

	// the native device went away with the failed device
	assert.ErrorIs(t, r.Initialize("test"), core.ErrNotInitialized)
	require.NoError(t, r.Shutdown())
}

func TestRendererObjectsAreNilOnFailure(t *testing.T) {
	r, native := newRenderer(t)

	assert.Nil(t, r.TextureCreate(&metadata.TextureConfig{Name: "bad"}))
	assert.Nil(t, r.ZStencilCreate(16, 16, metadata.ZStencilFormatNone))
	assert.Nil(t, r.SamplerStateCreate(nil))

	native.FailResourceCreation = true
	assert.Nil(t, r.TextureCreate(&metadata.TextureConfig{Name: "t", Width: 4, Height: 4, Format: metadata.ColorFormatR8}))
	assert.Nil(t, r.ZStencilCreate(16, 16, metadata.ZStencilFormatZ16))

	uninitialized := d3d12.New(soft.New(), nil)
	assert.Nil(t, uninitialized.TextureCreate(&metadata.TextureConfig{Name: "t", Width: 4, Height: 4, Format: metadata.ColorFormatR8}))
	assert.Nil(t, uninitialized.SamplerStateCreate(&metadata.SamplerInfo{}))
	assert.False(t, uninitialized.ShaderCreate(worldShader()))
}

func TestRendererObjects(t *testing.T) {
	r, _ := newRenderer(t)

	tex := r.TextureCreate(&metadata.TextureConfig{Name: "t", Width: 4, Height: 4, Levels: 1, Format: metadata.ColorFormatRGBA})
	require.NotNil(t, tex)
	zs := r.ZStencilCreate(16, 16, metadata.ZStencilFormatZ32F)
	require.NotNil(t, zs)
	ss := r.SamplerStateCreate(&metadata.SamplerInfo{Filter: metadata.SampleFilterLinear})
	require.NotNil(t, ss)

	busy := 0
	for _, s := range r.Stats() {
		busy += s.InUse
	}
	assert.Equal(t, 3, busy)

	r.TextureDestroy(tex)
	r.ZStencilDestroy(zs)
	r.SamplerStateDestroy(ss)
	for _, s := range r.Stats() {
		assert.Zero(t, s.InUse, s.Type.String())
	}
}

func TestRendererShaderCreate(t *testing.T) {
	r, native := newRenderer(t)
	shader := worldShader()

	require.True(t, r.ShaderCreate(shader))
	assert.Equal(t, metadata.SHADER_STATE_INITIALIZED, shader.State)
	program := d3d12.ShaderProgramOf(shader)
	require.NotNil(t, program)
	assert.Equal(t, "world", program.Name)
	assert.Equal(t, uint32(2), program.Pixel.Samplers)
	assert.Equal(t, 1, native.LiveRootSignatures())

	// a rebuild replaces the program and its root signature
	shader.Config.Pixel.StorageTextures = 1
	require.True(t, r.ShaderCreate(shader))
	rebuilt := d3d12.ShaderProgramOf(shader)
	require.NotNil(t, rebuilt)
	assert.NotSame(t, program, rebuilt)
	assert.Equal(t, uint32(1), rebuilt.Pixel.StorageTextures)
	assert.Equal(t, 1, native.LiveRootSignatures())

	// a failed rebuild keeps the current program
	shader.Config.Vertex.UniformBuffers = 5
	assert.False(t, r.ShaderCreate(shader))
	assert.Same(t, rebuilt, d3d12.ShaderProgramOf(shader))
	assert.Equal(t, metadata.SHADER_STATE_INITIALIZED, shader.State)

	r.ShaderDestroy(shader)
	assert.Nil(t, d3d12.ShaderProgramOf(shader))
	assert.Equal(t, metadata.SHADER_STATE_UNINITIALIZED, shader.State)
	assert.Equal(t, 0, native.LiveRootSignatures())

	assert.False(t, r.ShaderCreate(nil))
	assert.NotPanics(t, func() { r.ShaderDestroy(nil) })
	assert.Nil(t, d3d12.ShaderProgramOf(nil))
}
