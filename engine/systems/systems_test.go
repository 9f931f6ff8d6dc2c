package systems

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-dx12/engine/assets"
	"github.com/spaghettifunk/anima-dx12/engine/renderer"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/d3d12"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newSystems starts a soft renderer and an asset manager on dir. Files are
// expected to be in place before the call.
func newSystems(t *testing.T, dir string) *SystemManager {
	t.Helper()
	am, err := assets.NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(dir))

	r, err := renderer.New(&metadata.RendererBackendConfig{
		ApplicationName: "systems",
		Driver:          metadata.RendererDriverSoft,
	}, &d3d12.DeviceConfig{
		StagingHeapDescriptorCount: 32,
		GPUViewDescriptorCount:     64,
		GPUSamplerDescriptorCount:  16,
	})
	require.NoError(t, err)

	sm, err := NewSystemManager("systems", r, am)
	require.NoError(t, err)
	require.NoError(t, sm.Initialize())
	t.Cleanup(func() {
		assert.NoError(t, sm.Shutdown())
		assert.NoError(t, am.Shutdown())
	})
	return sm
}

func inUse(sm *SystemManager, heapType d3d12.DescriptorHeapType) int {
	for _, s := range sm.Renderer.Stats() {
		if s.Type == heapType {
			return s.InUse
		}
	}
	return -1
}

func TestShaderSystemLoadsEveryConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shaders", "world.shadercfg"), "name = \"world\"\n[vertex]\nuniform_buffers = 1\n[pixel]\nsamplers = 2\n")
	writeFile(t, filepath.Join(dir, "shaders", "ui.shadercfg"), "[pixel]\nsamplers = 1\nuniform_32bit_constants = 4\n")
	writeFile(t, filepath.Join(dir, "shaders", "broken.shadercfg"), "[vertex]\nuniform_buffers = 9\n")

	sm := newSystems(t, dir)
	ss := sm.ShaderSystem

	assert.Equal(t, []string{"ui", "world"}, ss.Names())
	assert.Equal(t, InvalidID, ss.GetShaderID("broken"))

	world, err := ss.GetShader("world")
	require.NoError(t, err)
	assert.Equal(t, metadata.SHADER_STATE_INITIALIZED, world.State)
	program := ss.Program("world")
	require.NotNil(t, program)
	assert.Equal(t, 0, program.RootSignature.Indices.Vertex.UniformBuffers[0])
	assert.Equal(t, 1, program.RootSignature.Indices.Pixel.Sampler)

	byID, err := ss.GetShaderByID(world.ID)
	require.NoError(t, err)
	assert.Same(t, world, byID)

	_, err = ss.GetShader("missing")
	assert.Error(t, err)
	_, err = ss.GetShaderByID(InvalidID)
	assert.Error(t, err)
	assert.Nil(t, ss.Program("missing"))
}

func TestShaderSystemLoadsStageBytecode(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shaders", "world.shadercfg"), "[vertex]\nsource = \"world.vs.cso\"\n[pixel]\nsource = \"world.ps.cso\"\nsamplers = 1\n")
	writeFile(t, filepath.Join(dir, "shaders", "world.vs.cso"), "\x44\x58\x42\x43\x01\x00\x00\x00")
	writeFile(t, filepath.Join(dir, "shaders", "world.ps.cso"), "\x44\x58\x42\x43")
	writeFile(t, filepath.Join(dir, "shaders", "sky.shadercfg"), "[pixel]\nsource = \"sky.ps.cso\"\n")

	sm := newSystems(t, dir)
	ss := sm.ShaderSystem

	world, err := ss.GetShader("world")
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x43425844, 1}, world.VertexCode)
	assert.Equal(t, []uint32{0x43425844}, world.PixelCode)

	// missing bytecode keeps the shader from being created
	assert.Equal(t, InvalidID, ss.GetShaderID("sky"))
	_, err = ss.Load("sky")
	assert.ErrorIs(t, err, assets.ErrAssetNotFound)

	// and a reload pointing at missing bytecode keeps the loaded one
	path, err := sm.assetManager.AssetPath("world", metadata.ResourceTypeShader)
	require.NoError(t, err)
	writeFile(t, path, "[vertex]\nsource = \"gone.vs.cso\"\n[pixel]\nsamplers = 1\n")
	assert.ErrorIs(t, ss.OnAssetChanged(assets.AssetEvent{Path: path, Type: metadata.ResourceTypeShader}), assets.ErrAssetNotFound)
	assert.Equal(t, []uint32{0x43425844, 1}, world.VertexCode)
	assert.Equal(t, "world.vs.cso", world.Config.Vertex.Source)
	assert.Zero(t, world.Generation)
}

func TestShaderSystemRebuild(t *testing.T) {
	sm := newSystems(t, t.TempDir())
	ss := sm.ShaderSystem

	config := &metadata.ShaderConfig{
		Name:  "post",
		Pixel: metadata.ShaderStageConfig{Samplers: 1},
	}
	shader, err := ss.CreateShader(config)
	require.NoError(t, err)
	first := ss.Program("post")
	require.NotNil(t, first)
	assert.Zero(t, shader.Generation)

	config.Pixel.UniformBuffers = 2
	rebuilt, err := ss.CreateShader(config)
	require.NoError(t, err)
	assert.Same(t, shader, rebuilt)
	assert.Equal(t, uint32(1), shader.Generation)
	assert.Equal(t, uint32(2), shader.Config.Pixel.UniformBuffers)
	assert.NotSame(t, first, ss.Program("post"))

	// an invalid config leaves the previous one in place
	current := ss.Program("post")
	_, err = ss.CreateShader(&metadata.ShaderConfig{
		Name:   "post",
		Vertex: metadata.ShaderStageConfig{UniformBuffers: 7},
	})
	require.Error(t, err)
	assert.Equal(t, uint32(1), shader.Generation)
	assert.Equal(t, uint32(2), shader.Config.Pixel.UniformBuffers)
	assert.Same(t, current, ss.Program("post"))
	assert.Equal(t, metadata.SHADER_STATE_INITIALIZED, shader.State)

	_, err = ss.CreateShader(&metadata.ShaderConfig{})
	assert.Error(t, err)
}

func TestShaderSystemReloadsChangedConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shaders", "world.shadercfg"), "[pixel]\nsamplers = 1\n")
	sm := newSystems(t, dir)
	ss := sm.ShaderSystem

	path, err := sm.assetManager.AssetPath("world", metadata.ResourceTypeShader)
	require.NoError(t, err)

	writeFile(t, path, "[pixel]\nsamplers = 3\n")
	require.NoError(t, ss.OnAssetChanged(assets.AssetEvent{Path: path, Type: metadata.ResourceTypeShader}))
	world, err := ss.GetShader("world")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), world.Config.Pixel.Samplers)
	assert.Equal(t, uint32(1), world.Generation)

	writeFile(t, path, "[pixel]\nsamplers = 3\nunknown = true\n")
	assert.Error(t, ss.OnAssetChanged(assets.AssetEvent{Path: path, Type: metadata.ResourceTypeShader}))
	assert.Equal(t, uint32(3), world.Config.Pixel.Samplers)

	// other asset types and removals leave shaders alone
	require.NoError(t, ss.OnAssetChanged(assets.AssetEvent{Path: path, Type: metadata.ResourceTypeTexture}))
	require.NoError(t, ss.OnAssetChanged(assets.AssetEvent{Path: path, Type: metadata.ResourceTypeShader, Removed: true}))
	_, err = ss.GetShader("world")
	assert.NoError(t, err)
}

func TestShaderSystemDestroy(t *testing.T) {
	sm := newSystems(t, t.TempDir())
	ss := sm.ShaderSystem

	a, err := ss.CreateShader(&metadata.ShaderConfig{Name: "a", Pixel: metadata.ShaderStageConfig{Samplers: 1}})
	require.NoError(t, err)
	_, err = ss.CreateShader(&metadata.ShaderConfig{Name: "b", Pixel: metadata.ShaderStageConfig{Samplers: 1}})
	require.NoError(t, err)

	ss.Destroy("a")
	ss.Destroy("a")
	assert.Equal(t, InvalidID, ss.GetShaderID("a"))
	assert.Equal(t, metadata.SHADER_STATE_UNINITIALIZED, a.State)
	assert.Equal(t, []string{"b"}, ss.Names())

	// the freed slot is reused
	c, err := ss.CreateShader(&metadata.ShaderConfig{Name: "c"})
	require.NoError(t, err)
	assert.Equal(t, a.ID, c.ID)
}

func TestShaderSystemIsBounded(t *testing.T) {
	ss, err := NewShaderSystem(&ShaderSystemConfig{MaxShaderCount: 1}, nil, newSystems(t, t.TempDir()).Renderer, nil)
	require.NoError(t, err)

	_, err = ss.CreateShader(&metadata.ShaderConfig{Name: "one"})
	require.NoError(t, err)
	_, err = ss.CreateShader(&metadata.ShaderConfig{Name: "two"})
	assert.Error(t, err)
	require.NoError(t, ss.Shutdown())

	_, err = ss.Load("one")
	assert.Error(t, err)

	_, err = NewShaderSystem(&ShaderSystemConfig{}, nil, nil, nil)
	assert.Error(t, err)
}

func TestTextureSystemReferenceCounting(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "textures", "checker.texcfg"), "width = 16\nheight = 16\nformat = \"rgba\"\n")
	sm := newSystems(t, dir)
	ts := sm.TextureSystem

	require.NotNil(t, ts.GetDefaultTexture())
	assert.Equal(t, 1, inUse(sm, d3d12.DescriptorHeapTypeCBVSRVUAV))

	a, err := ts.Acquire("checker", true)
	require.NoError(t, err)
	b, err := ts.Acquire("checker", true)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, uint64(2), ts.RegisteredTextureTable["checker"].ReferenceCount)
	assert.Equal(t, 2, inUse(sm, d3d12.DescriptorHeapTypeCBVSRVUAV))

	ts.Release("checker")
	assert.Equal(t, 2, inUse(sm, d3d12.DescriptorHeapTypeCBVSRVUAV))
	ts.Release("checker")
	assert.NotContains(t, ts.RegisteredTextureTable, "checker")
	assert.Equal(t, 1, inUse(sm, d3d12.DescriptorHeapTypeCBVSRVUAV))

	def, err := ts.Acquire(DefaultTextureName, false)
	require.NoError(t, err)
	assert.Same(t, ts.GetDefaultTexture(), def)

	_, err = ts.Acquire("missing", false)
	assert.ErrorIs(t, err, assets.ErrAssetNotFound)
	assert.NotPanics(t, func() { ts.Release("missing") })
}

func TestTextureSystemRenderTargets(t *testing.T) {
	sm := newSystems(t, t.TempDir())
	ts := sm.TextureSystem

	target, err := ts.AcquireFromConfig(&metadata.TextureConfig{
		Name:   "scene_color",
		Width:  320,
		Height: 180,
		Levels: 1,
		Format: metadata.ColorFormatBGRA,
		Flags:  metadata.TextureFlagRenderTarget,
	}, false)
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, 2, inUse(sm, d3d12.DescriptorHeapTypeRTV))

	// kept alive without auto release
	ts.Release("scene_color")
	assert.Contains(t, ts.RegisteredTextureTable, "scene_color")
	assert.Equal(t, 2, inUse(sm, d3d12.DescriptorHeapTypeRTV))

	require.NoError(t, ts.Shutdown())
	assert.Equal(t, 0, inUse(sm, d3d12.DescriptorHeapTypeRTV))
	assert.Equal(t, 0, inUse(sm, d3d12.DescriptorHeapTypeCBVSRVUAV))

	_, err = ts.AcquireFromConfig(nil, false)
	assert.Error(t, err)
	_, err = ts.AcquireFromConfig(&metadata.TextureConfig{Name: "flat", Width: 4}, false)
	assert.Error(t, err)
}

func TestProcessAssetEventsDrainsWithoutBlocking(t *testing.T) {
	sm := newSystems(t, t.TempDir())
	assert.NotPanics(t, sm.ProcessAssetEvents)
	assert.NotPanics(t, sm.Update)
	assert.Zero(t, sm.JobSystem.Pending())
}
