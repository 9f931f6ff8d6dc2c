package d3d12

import (
	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/anima-dx12/engine/core"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

// D3D12Renderer is the renderer backend built on a Device. Object creation
// failures are logged and reported as nil objects.
type D3D12Renderer struct {
	native      NativeDevice
	config      DeviceConfig
	device      *Device
	FrameNumber uint64
	inFrame     bool
}

func New(native NativeDevice, config *DeviceConfig) *D3D12Renderer {
	r := &D3D12Renderer{
		native: native,
		config: DefaultDeviceConfig(),
	}
	if config != nil {
		r.config = *config
	}
	return r
}

func (r *D3D12Renderer) Initialize(appName string) error {
	if r.device != nil {
		return nil
	}
	if r.native == nil {
		err := errors.Wrap(core.ErrNotInitialized, "no native device to initialize the D3D12 renderer with")
		core.LogError(err.Error())
		return err
	}
	device, err := NewDevice(r.native, &r.config)
	// NewDevice owns the native device from here on, even on failure.
	r.native = nil
	if err != nil {
		core.LogError("device_create (D3D12): %s", err)
		return err
	}
	r.device = device
	core.LogInfo("D3D12 renderer initialized for %s", appName)
	return nil
}

func (r *D3D12Renderer) Shutdown() error {
	if r.device == nil {
		if r.native != nil {
			r.native.Release()
			r.native = nil
		}
		return nil
	}
	for _, s := range r.device.Stats() {
		if s.InUse > 0 {
			core.LogWarn("%s pool still has %d descriptors in use at shutdown", s.Type, s.InUse)
		}
	}
	r.device.Shutdown()
	r.device = nil
	core.LogInfo("D3D12 renderer shut down")
	return nil
}

func (r *D3D12Renderer) BeginFrame(deltaTime float64) error {
	if r.device == nil {
		return core.ErrNotInitialized
	}
	if r.inFrame {
		return errors.Newf("frame %d was never ended", r.FrameNumber)
	}
	r.inFrame = true
	return nil
}

func (r *D3D12Renderer) EndFrame(deltaTime float64) error {
	if !r.inFrame {
		return errors.New("EndFrame called without a matching BeginFrame")
	}
	r.inFrame = false
	r.FrameNumber++
	return nil
}

func (r *D3D12Renderer) Device() *Device {
	return r.device
}

func (r *D3D12Renderer) Stats() []PoolStats {
	if r.device == nil {
		return nil
	}
	return r.device.Stats()
}

func (r *D3D12Renderer) TextureCreate(config *metadata.TextureConfig) *Texture2D {
	if r.device == nil {
		core.LogError("device_texture_create (D3D12): %s", core.ErrNotInitialized)
		return nil
	}
	t, err := r.device.TextureCreate(config)
	if err != nil {
		core.LogError("device_texture_create (D3D12): %s", err)
		return nil
	}
	return t
}

func (r *D3D12Renderer) TextureDestroy(texture *Texture2D) {
	texture.Destroy()
}

func (r *D3D12Renderer) ZStencilCreate(width, height uint32, format metadata.ZStencilFormat) *ZStencilBuffer {
	if r.device == nil {
		core.LogError("device_zstencil_create (D3D12): %s", core.ErrNotInitialized)
		return nil
	}
	z, err := r.device.ZStencilCreate(width, height, format)
	if err != nil {
		core.LogError("device_zstencil_create (D3D12): %s", err)
		return nil
	}
	return z
}

func (r *D3D12Renderer) ZStencilDestroy(zs *ZStencilBuffer) {
	zs.Destroy()
}

func (r *D3D12Renderer) SamplerStateCreate(info *metadata.SamplerInfo) *SamplerState {
	if r.device == nil {
		core.LogError("device_samplerstate_create (D3D12): %s", core.ErrNotInitialized)
		return nil
	}
	ss, err := r.device.SamplerStateCreate(info)
	if err != nil {
		core.LogError("device_samplerstate_create (D3D12): %s", err)
		return nil
	}
	return ss
}

func (r *D3D12Renderer) SamplerStateDestroy(ss *SamplerState) {
	ss.Destroy()
}

// ShaderCreate builds the root signature of a shader from its reflected
// counts. The resulting ShaderProgram is stored in shader.InternalData and
// replaces any previous one.
func (r *D3D12Renderer) ShaderCreate(shader *metadata.Shader) bool {
	if shader == nil {
		core.LogError("device_shader_create (D3D12): shader is nil")
		return false
	}
	if r.device == nil {
		core.LogError("device_shader_create (D3D12): %s", core.ErrNotInitialized)
		return false
	}
	program, err := r.device.ShaderProgramCreate(shader.Name,
		ShaderResourceCountsFromConfig(shader.Config.Vertex),
		ShaderResourceCountsFromConfig(shader.Config.Pixel))
	if err != nil {
		core.LogError("device_shader_create (D3D12): %s", err)
		return false
	}

	r.ShaderDestroy(shader)
	shader.InternalData = program
	shader.State = metadata.SHADER_STATE_INITIALIZED
	return true
}

func (r *D3D12Renderer) ShaderDestroy(shader *metadata.Shader) {
	if shader == nil {
		return
	}
	if program, ok := shader.InternalData.(*ShaderProgram); ok {
		program.Destroy()
	}
	shader.InternalData = nil
	shader.State = metadata.SHADER_STATE_UNINITIALIZED
}

// ShaderProgramOf returns the program created for shader, or nil.
func ShaderProgramOf(shader *metadata.Shader) *ShaderProgram {
	if shader == nil {
		return nil
	}
	program, _ := shader.InternalData.(*ShaderProgram)
	return program
}
