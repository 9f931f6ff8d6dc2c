package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

const worldShaderConfig = `
name = "world"

[vertex]
source = "world.vs.cso"
uniform_buffers = 1
uniform_32bit_constants = 16

[pixel]
source = "world.ps.cso"
samplers = 2
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newManager(t *testing.T, dir string) *AssetManager {
	t.Helper()
	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(dir))
	t.Cleanup(func() {
		_ = am.Shutdown()
	})
	return am
}

func TestAssetManagerIndexesKnownFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shaders", "world.shadercfg"), worldShaderConfig)
	writeFile(t, filepath.Join(dir, "shaders", "ui.shadercfg"), `name = "ui"`)
	writeFile(t, filepath.Join(dir, "shaders", "world.vs.cso"), "\x44\x58\x42\x43")
	writeFile(t, filepath.Join(dir, "textures", "checker.texcfg"), "width = 4\nheight = 4")
	writeFile(t, filepath.Join(dir, "readme.txt"), "ignored")

	am := newManager(t, dir)

	shaders := am.Assets(metadata.ResourceTypeShader)
	require.Len(t, shaders, 2)
	assert.Equal(t, filepath.Join(am.BaseDir(), "shaders", "ui.shadercfg"), shaders[0])
	assert.Equal(t, filepath.Join(am.BaseDir(), "shaders", "world.shadercfg"), shaders[1])
	assert.Len(t, am.Assets(metadata.ResourceTypeTexture), 1)
	assert.Len(t, am.Assets(metadata.ResourceTypeBinary), 1)
	assert.Empty(t, am.Assets(metadata.ResourceTypeText))
}

func TestAssetManagerLoadShader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shaders", "world.shadercfg"), worldShaderConfig)
	am := newManager(t, dir)

	res, err := am.LoadAsset("world", metadata.ResourceTypeShader, nil)
	require.NoError(t, err)
	assert.Equal(t, metadata.ResourceTypeShader, res.Type)
	assert.Equal(t, "world", res.Name)

	config, ok := res.Data.(*metadata.ShaderConfig)
	require.True(t, ok)
	assert.Equal(t, metadata.ShaderConfig{
		Name: "world",
		Vertex: metadata.ShaderStageConfig{
			Source:                "world.vs.cso",
			UniformBuffers:        1,
			Uniform32BitConstants: 16,
		},
		Pixel: metadata.ShaderStageConfig{
			Source:   "world.ps.cso",
			Samplers: 2,
		},
	}, *config)

	require.NoError(t, am.UnloadAsset(res))
	assert.Nil(t, res.Data)
	assert.NoError(t, am.UnloadAsset(nil))

	_, err = am.LoadAsset("missing", metadata.ResourceTypeShader, nil)
	assert.ErrorIs(t, err, ErrAssetNotFound)
	_, err = am.LoadAsset("world", metadata.ResourceTypeCustom, nil)
	assert.Error(t, err)
}

func TestAssetManagerLoadTextureAndBinary(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "textures", "sky.texcfg"), `
type = "cube"
width = 512
format = "rgba16f"
flags = 1
`)
	writeFile(t, filepath.Join(dir, "shaders", "world.ps.cso"), "\x01\x00\x00\x00\x02\x00\x00\x00")
	am := newManager(t, dir)

	res, err := am.LoadAsset("sky", metadata.ResourceTypeTexture, nil)
	require.NoError(t, err)
	config := res.Data.(*metadata.TextureConfig)
	assert.Equal(t, "sky", config.Name)
	assert.Equal(t, metadata.TextureTypeCube, config.Type)
	assert.Equal(t, uint32(512), config.Width)
	assert.Equal(t, uint32(1), config.Levels)
	assert.Equal(t, metadata.ColorFormatRGBA16F, config.Format)
	assert.True(t, config.IsRenderTarget())

	bin, err := am.LoadAsset("world.ps.cso", metadata.ResourceTypeBinary, map[string]string{"name": "world.ps"})
	require.NoError(t, err)
	assert.Equal(t, "world.ps", bin.Name)
	assert.Equal(t, []uint32{1, 2}, bin.Data)
	assert.Equal(t, uint64(8), bin.DataSize)
}

func TestAssetManagerEmitsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shaders", "world.shadercfg")
	writeFile(t, path, worldShaderConfig)
	am := newManager(t, dir)
	path = filepath.Join(am.BaseDir(), "shaders", "world.shadercfg")

	writeFile(t, path, worldShaderConfig+"\n# touched\n")
	e := waitForEvent(t, am, path)
	assert.Equal(t, metadata.ResourceTypeShader, e.Type)
	assert.False(t, e.Removed)

	// files in directories created after start are picked up too
	fresh := filepath.Join(am.BaseDir(), "extra", "sky.shadercfg")
	require.NoError(t, os.Mkdir(filepath.Dir(fresh), 0o755))
	require.NoError(t, os.WriteFile(fresh, []byte(`name = "sky"`), 0o644))
	require.Eventually(t, func() bool {
		return containsPath(am.Assets(metadata.ResourceTypeShader), fresh)
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, os.Remove(path))
	e = waitForEvent(t, am, path)
	assert.True(t, e.Removed)
	assert.False(t, containsPath(am.Assets(metadata.ResourceTypeShader), path))
}

func waitForEvent(t *testing.T, am *AssetManager, path string) AssetEvent {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e, ok := <-am.Events():
			require.True(t, ok, "event channel closed")
			if e.Path == path {
				return e
			}
		case <-timeout:
			require.FailNow(t, "no event for "+path)
		}
	}
}

func containsPath(paths []string, path string) bool {
	for _, p := range paths {
		if p == path {
			return true
		}
	}
	return false
}

func TestAssetManagerShutdown(t *testing.T) {
	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(t.TempDir()))

	require.NoError(t, am.Shutdown())
	require.NoError(t, am.Shutdown())
	_, ok := <-am.Events()
	assert.False(t, ok)
	assert.ErrorIs(t, am.Initialize(t.TempDir()), ErrClosed)

	// never started
	idle, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, idle.Shutdown())
	_, ok = <-idle.Events()
	assert.False(t, ok)
}

func TestAssetManagerMissingDirectory(t *testing.T) {
	am, err := NewAssetManager()
	require.NoError(t, err)
	defer am.Shutdown()

	assert.Error(t, am.Initialize(filepath.Join(t.TempDir(), "nope")))
}
