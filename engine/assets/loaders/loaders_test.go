package loaders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestShaderLoaderNameDefaultsToFileName(t *testing.T) {
	path := write(t, "skybox.shadercfg", "[pixel]\nsamplers = 1\n")

	res, err := (&ShaderLoader{}).Load(path, metadata.ResourceTypeShader, nil)
	require.NoError(t, err)
	assert.Equal(t, "skybox", res.Name)
	assert.Equal(t, path, res.FullPath)
	assert.Equal(t, uint32(1), res.Data.(*metadata.ShaderConfig).Pixel.Samplers)
}

func TestShaderLoaderRejectsUnknownKeys(t *testing.T) {
	path := write(t, "typo.shadercfg", "name = \"typo\"\n[vertex]\nsampler = 1\n")

	_, err := (&ShaderLoader{}).Load(path, metadata.ResourceTypeShader, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestShaderLoaderReportsSyntaxPosition(t *testing.T) {
	path := write(t, "broken.shadercfg", "name = \"broken\"\n[vertex\n")

	_, err := (&ShaderLoader{}).Load(path, metadata.ResourceTypeShader, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing shader config "+path+" at ")

	_, err = (&ShaderLoader{}).Load(filepath.Join(t.TempDir(), "missing.shadercfg"), metadata.ResourceTypeShader, nil)
	assert.Error(t, err)
	assert.Error(t, (&ShaderLoader{}).Unload(nil))
}

func TestTextureLoader(t *testing.T) {
	path := write(t, "checker.texcfg", "width = 64\nheight = 32\nformat = \"bgra\"\nlevels = 0\nflags = 2\n")

	res, err := (&TextureLoader{}).Load(path, metadata.ResourceTypeTexture, nil)
	require.NoError(t, err)
	assert.Equal(t, &metadata.TextureConfig{
		Name:   "checker",
		Type:   metadata.TextureType2d,
		Width:  64,
		Height: 32,
		Levels: 0,
		Format: metadata.ColorFormatBGRA,
		Flags:  metadata.TextureFlagBuildMipmaps,
	}, res.Data)

	require.NoError(t, (&TextureLoader{}).Unload(res))
	assert.Nil(t, res.Data)
}

func TestTextureLoaderErrors(t *testing.T) {
	cases := map[string]string{
		"no width":   "height = 4\n",
		"bad format": "width = 4\nformat = \"rgb565\"\n",
		"bad type":   "width = 4\ntype = \"volume\"\n",
	}
	for name, content := range cases {
		_, err := (&TextureLoader{}).Load(write(t, "t.texcfg", content), metadata.ResourceTypeTexture, nil)
		assert.Error(t, err, name)
	}
}

func TestBinaryLoader(t *testing.T) {
	path := write(t, "world.vs.cso", "\x44\x58\x42\x43\xff\x00\x00\x01")

	res, err := (&BinaryLoader{}).Load(path, metadata.ResourceTypeBinary, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Name)
	assert.Equal(t, []uint32{0x43425844, 0x010000ff}, res.Data)

	_, err = (&BinaryLoader{}).Load(write(t, "odd.cso", "abc"), metadata.ResourceTypeBinary, nil)
	assert.Error(t, err)

	require.NoError(t, (&BinaryLoader{}).Unload(res))
	assert.Nil(t, res.Data)
}
