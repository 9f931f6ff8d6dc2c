package d3d12

import (
	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

// ZStencilBuffer is a depth/stencil texture and its depth stencil view.
type ZStencilBuffer struct {
	device *Device

	Width    uint32
	Height   uint32
	Format   metadata.ZStencilFormat
	Resource NativeResource
	// DepthStencil is the DSV slot.
	DepthStencil StagingDescriptor
}

func (d *Device) ZStencilCreate(width, height uint32, format metadata.ZStencilFormat) (zs *ZStencilBuffer, ferr error) {
	dxgiFormat := ConvertZStencilFormat(format)
	if dxgiFormat == FormatUnknown {
		return nil, errors.Newf("unsupported depth stencil format %d", format)
	}
	if width == 0 || height == 0 {
		return nil, errors.Newf("invalid depth stencil size %dx%d", width, height)
	}

	z := &ZStencilBuffer{
		device: d,
		Width:  width,
		Height: height,
		Format: format,
	}
	defer func() {
		if ferr != nil {
			z.Destroy()
		}
	}()

	res, err := d.native.CreateCommittedResource(&ResourceDesc{
		Dimension:        ResourceDimensionTexture2D,
		Width:            uint64(width),
		Height:           height,
		DepthOrArraySize: 1,
		MipLevels:        1,
		Format:           dxgiFormat,
		Flags:            ResourceFlagAllowDepthStencil,
		ClearFormat:      dxgiFormat,
	})
	if err != nil {
		return nil, newHRError("Failed to create depth stencil texture", err)
	}
	z.Resource = res

	slot, err := d.AssignStagingDescriptor(DescriptorHeapTypeDSV)
	if err != nil {
		return nil, err
	}
	z.DepthStencil = slot
	d.native.CreateDepthStencilView(res, &DepthStencilViewDesc{
		Format:        dxgiFormat,
		ViewDimension: DSVDimensionTexture2D,
	}, slot.CPUHandle)

	return z, nil
}

func (z *ZStencilBuffer) Destroy() {
	if z == nil || z.device == nil {
		return
	}
	z.device.releaseSlot("zstencil", &z.DepthStencil)
	if z.Resource != nil {
		z.Resource.Release()
		z.Resource = nil
	}
}
