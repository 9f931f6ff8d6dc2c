package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRendererDriverUnmarshalText(t *testing.T) {
	var d RendererDriver
	require.NoError(t, d.UnmarshalText([]byte("D3D12")))
	assert.Equal(t, RendererDriverD3D12, d)
	require.NoError(t, d.UnmarshalText(nil))
	assert.Equal(t, RendererDriverSoft, d)
	assert.Error(t, d.UnmarshalText([]byte("vulkan")))

	assert.Equal(t, "d3d12", RendererDriverD3D12.String())
	assert.Equal(t, "RendererDriver(7)", RendererDriver(7).String())
}

func TestColorFormatFromString(t *testing.T) {
	f, err := ColorFormatFromString("RGBA16F")
	require.NoError(t, err)
	assert.Equal(t, ColorFormatRGBA16F, f)

	_, err = ColorFormatFromString("rgb565")
	assert.Error(t, err)

	var tt TextureType
	require.NoError(t, tt.UnmarshalText([]byte("cube")))
	assert.Equal(t, TextureTypeCube, tt)
	assert.Equal(t, "cube", tt.String())
}

func TestTextureConfigFlags(t *testing.T) {
	c := TextureConfig{Flags: TextureFlagRenderTarget | TextureFlagDynamic}
	assert.True(t, c.IsRenderTarget())
	assert.False(t, c.GenMipmaps())
}
