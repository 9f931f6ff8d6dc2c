package d3d12

import (
	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

// CubeFaceCount is the number of faces, and render target views, of a cube
// texture.
const CubeFaceCount = 6

/**
 * @brief A 2D or cube texture with its shader resource view and, for render
 * targets, one render target view per face.
 */
type Texture2D struct {
	device *Device
	/** @brief The configuration the texture was created from. */
	Config metadata.TextureConfig
	/** @brief The committed resource. */
	Resource NativeResource

	FormatResource   Format
	FormatView       Format
	FormatViewLinear Format

	/** @brief The shader resource view slot. */
	ShaderResource StagingDescriptor
	/** @brief Render target view slots, one per face. Only face 0 is used for 2D textures. */
	RenderTargets [CubeFaceCount]StagingDescriptor
	/** @brief SRGB render target views. Aliases RenderTargets when the formats match. */
	RenderTargetsLinear [CubeFaceCount]StagingDescriptor
}

func (t *Texture2D) faceCount() int {
	if t.Config.Type == metadata.TextureTypeCube {
		return CubeFaceCount
	}
	return 1
}

// LinearAliased reports whether the SRGB render targets share the slots of
// the regular ones.
func (t *Texture2D) LinearAliased() bool {
	return t.FormatView == t.FormatViewLinear
}

// TextureCreate creates a texture resource and assigns its views.
func (d *Device) TextureCreate(config *metadata.TextureConfig) (tex *Texture2D, ferr error) {
	if config == nil {
		return nil, errors.New("texture config is nil")
	}
	if config.Width == 0 || (config.Type == metadata.TextureType2d && config.Height == 0) {
		return nil, errors.Newf("invalid texture size %dx%d", config.Width, config.Height)
	}

	t := &Texture2D{
		device:           d,
		Config:           *config,
		FormatResource:   ConvertColorFormatResource(config.Format),
		FormatView:       ConvertColorFormatView(config.Format),
		FormatViewLinear: ConvertColorFormatViewLinear(config.Format),
	}
	if t.FormatResource == FormatUnknown {
		return nil, errors.Newf("texture %q has an unknown color format", config.Name)
	}
	if config.Type == metadata.TextureTypeCube {
		t.Config.Height = config.Width
	}
	defer func() {
		if ferr != nil {
			t.Destroy()
		}
	}()

	if err := t.initTexture(); err != nil {
		return nil, err
	}
	if err := t.initResourceView(); err != nil {
		return nil, err
	}
	if config.IsRenderTarget() {
		if err := t.initRenderTargets(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Texture2D) initTexture() error {
	desc := &ResourceDesc{
		Dimension:        ResourceDimensionTexture2D,
		Width:            uint64(t.Config.Width),
		Height:           t.Config.Height,
		DepthOrArraySize: uint16(t.faceCount()),
		MipLevels:        uint16(t.Config.Levels),
		Format:           t.FormatResource,
	}
	if t.Config.GenMipmaps() {
		desc.MipLevels = 0
	}
	if t.Config.IsRenderTarget() {
		desc.Flags |= ResourceFlagAllowRenderTarget
		desc.ClearFormat = t.FormatView
	}

	res, err := t.device.native.CreateCommittedResource(desc)
	if err != nil {
		return newHRError("Failed to create 2D texture", err)
	}
	t.Resource = res
	return nil
}

func (t *Texture2D) initResourceView() error {
	desc := &ShaderResourceViewDesc{
		Format:                  t.FormatView,
		ViewDimension:           SRVDimensionTexture2D,
		Shader4ComponentMapping: DefaultShader4ComponentMapping,
		MipLevels:               t.Config.Levels,
	}
	if t.Config.Type == metadata.TextureTypeCube {
		desc.ViewDimension = SRVDimensionTextureCube
	}
	if t.Config.GenMipmaps() || t.Config.Levels == 0 {
		desc.MipLevels = ^uint32(0)
	}

	slot, err := t.device.AssignStagingDescriptor(DescriptorHeapTypeCBVSRVUAV)
	if err != nil {
		return err
	}
	t.ShaderResource = slot
	t.device.native.CreateShaderResourceView(t.Resource, desc, slot.CPUHandle)
	return nil
}

func (t *Texture2D) initRenderTargets() error {
	desc := &RenderTargetViewDesc{
		Format:        t.FormatView,
		ViewDimension: RTVDimensionTexture2D,
	}
	if t.Config.Type == metadata.TextureTypeCube {
		desc.ViewDimension = RTVDimensionTexture2DArray
		desc.ArraySize = 1
	}

	for face := 0; face < t.faceCount(); face++ {
		desc.FirstArraySlice = uint32(face)
		desc.Format = t.FormatView

		slot, err := t.device.AssignStagingDescriptor(DescriptorHeapTypeRTV)
		if err != nil {
			return err
		}
		t.RenderTargets[face] = slot
		t.device.native.CreateRenderTargetView(t.Resource, desc, slot.CPUHandle)

		if t.LinearAliased() {
			t.RenderTargetsLinear[face] = slot
			continue
		}

		desc.Format = t.FormatViewLinear
		linear, err := t.device.AssignStagingDescriptor(DescriptorHeapTypeRTV)
		if err != nil {
			return err
		}
		t.RenderTargetsLinear[face] = linear
		t.device.native.CreateRenderTargetView(t.Resource, desc, linear.CPUHandle)
	}
	return nil
}

// Destroy releases every view slot exactly once and then the resource. Safe
// to call more than once.
func (t *Texture2D) Destroy() {
	if t == nil || t.device == nil {
		return
	}
	aliased := t.LinearAliased()
	for face := range t.RenderTargets {
		if aliased {
			t.RenderTargetsLinear[face] = StagingDescriptor{}
		} else {
			t.device.releaseSlot("texture "+t.Config.Name, &t.RenderTargetsLinear[face])
		}
		t.device.releaseSlot("texture "+t.Config.Name, &t.RenderTargets[face])
	}
	t.device.releaseSlot("texture "+t.Config.Name, &t.ShaderResource)

	if t.Resource != nil {
		t.Resource.Release()
		t.Resource = nil
	}
}
