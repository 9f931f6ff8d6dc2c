package renderer

import (
	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/anima-dx12/engine/core"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/d3d12"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/d3d12/native"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/d3d12/soft"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

type Renderer struct {
	backend     RendererBackend
	frameNumber uint64
}

// NativeDeviceFor opens the native device of the given driver.
func NativeDeviceFor(driver metadata.RendererDriver) (d3d12.NativeDevice, error) {
	switch driver {
	case metadata.RendererDriverSoft:
		return soft.New(), nil
	case metadata.RendererDriverD3D12:
		return native.New()
	}
	return nil, errors.Newf("unsupported renderer driver %s", driver)
}

func New(config *metadata.RendererBackendConfig, device *d3d12.DeviceConfig) (*Renderer, error) {
	nd, err := NativeDeviceFor(config.Driver)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return NewWithBackend(d3d12.New(nd, device)), nil
}

func NewWithBackend(backend RendererBackend) *Renderer {
	return &Renderer{backend: backend}
}

func (r *Renderer) Initialize(appName string) error {
	return r.backend.Initialize(appName)
}

func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}

func (r *Renderer) BeginFrame(deltaTime float64) error {
	return r.backend.BeginFrame(deltaTime)
}

func (r *Renderer) EndFrame(deltaTime float64) error {
	return r.backend.EndFrame(deltaTime)
}

func (r *Renderer) DrawFrame(renderPacket *metadata.RenderPacket) error {
	renderPacket.FrameNumber = r.frameNumber
	if err := r.BeginFrame(renderPacket.DeltaTime); err != nil {
		core.LogError(err.Error())
		return err
	}
	if err := r.EndFrame(renderPacket.DeltaTime); err != nil {
		core.LogError("RendererEndFrame failed. Application shutting down...")
		return err
	}
	r.frameNumber++
	return nil
}

func (r *Renderer) FrameNumber() uint64 {
	return r.frameNumber
}

func (r *Renderer) TextureCreate(config *metadata.TextureConfig) *d3d12.Texture2D {
	return r.backend.TextureCreate(config)
}

func (r *Renderer) TextureDestroy(texture *d3d12.Texture2D) {
	r.backend.TextureDestroy(texture)
}

func (r *Renderer) ZStencilCreate(width, height uint32, format metadata.ZStencilFormat) *d3d12.ZStencilBuffer {
	return r.backend.ZStencilCreate(width, height, format)
}

func (r *Renderer) ZStencilDestroy(zs *d3d12.ZStencilBuffer) {
	r.backend.ZStencilDestroy(zs)
}

func (r *Renderer) SamplerStateCreate(info *metadata.SamplerInfo) *d3d12.SamplerState {
	return r.backend.SamplerStateCreate(info)
}

func (r *Renderer) SamplerStateDestroy(ss *d3d12.SamplerState) {
	r.backend.SamplerStateDestroy(ss)
}

func (r *Renderer) ShaderCreate(shader *metadata.Shader) bool {
	return r.backend.ShaderCreate(shader)
}

func (r *Renderer) ShaderDestroy(shader *metadata.Shader) {
	r.backend.ShaderDestroy(shader)
}

func (r *Renderer) Stats() []d3d12.PoolStats {
	return r.backend.Stats()
}
