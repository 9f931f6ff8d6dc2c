package renderer

import (
	"github.com/spaghettifunk/anima-dx12/engine/renderer/d3d12"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

type RendererBackend interface {
	Initialize(appName string) error
	Shutdown() error
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error
	TextureCreate(config *metadata.TextureConfig) *d3d12.Texture2D
	TextureDestroy(texture *d3d12.Texture2D)
	ZStencilCreate(width, height uint32, format metadata.ZStencilFormat) *d3d12.ZStencilBuffer
	ZStencilDestroy(zs *d3d12.ZStencilBuffer)
	SamplerStateCreate(info *metadata.SamplerInfo) *d3d12.SamplerState
	SamplerStateDestroy(ss *d3d12.SamplerState)
	ShaderCreate(shader *metadata.Shader) bool
	ShaderDestroy(shader *metadata.Shader)
	Stats() []d3d12.PoolStats
}

var _ RendererBackend = (*d3d12.D3D12Renderer)(nil)
