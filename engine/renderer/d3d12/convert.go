package d3d12

import (
	"math"

	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

// ConvertColorFormatResource returns the format the texture resource is
// allocated with. 8-bit RGBA formats are typeless so that both UNORM and SRGB
// views can be created.
func ConvertColorFormatResource(format metadata.ColorFormat) Format {
	switch format {
	case metadata.ColorFormatA8:
		return FormatA8Unorm
	case metadata.ColorFormatR8:
		return FormatR8Unorm
	case metadata.ColorFormatRGBA:
		return FormatR8G8B8A8Typeless
	case metadata.ColorFormatBGRX:
		return FormatB8G8R8X8Typeless
	case metadata.ColorFormatBGRA:
		return FormatB8G8R8A8Typeless
	case metadata.ColorFormatR10G10B10A2:
		return FormatR10G10B10A2Unorm
	case metadata.ColorFormatRGBA16:
		return FormatR16G16B16A16Unorm
	case metadata.ColorFormatR16:
		return FormatR16Unorm
	case metadata.ColorFormatRGBA16F:
		return FormatR16G16B16A16Float
	case metadata.ColorFormatRGBA32F:
		return FormatR32G32B32A32Float
	case metadata.ColorFormatRG16F:
		return FormatR16G16Float
	case metadata.ColorFormatR16F:
		return FormatR16Float
	case metadata.ColorFormatR32F:
		return FormatR32Float
	case metadata.ColorFormatR8G8:
		return FormatR8G8Unorm
	case metadata.ColorFormatRGBAUnorm:
		return FormatR8G8B8A8Unorm
	case metadata.ColorFormatBGRXUnorm:
		return FormatB8G8R8X8Unorm
	case metadata.ColorFormatBGRAUnorm:
		return FormatB8G8R8A8Unorm
	}
	return FormatUnknown
}

// ConvertColorFormatView returns the format of the default views.
func ConvertColorFormatView(format metadata.ColorFormat) Format {
	switch format {
	case metadata.ColorFormatRGBA:
		return FormatR8G8B8A8Unorm
	case metadata.ColorFormatBGRX:
		return FormatB8G8R8X8Unorm
	case metadata.ColorFormatBGRA:
		return FormatB8G8R8A8Unorm
	}
	return ConvertColorFormatResource(format)
}

// ConvertColorFormatViewLinear returns the format of the SRGB render target
// views.
func ConvertColorFormatViewLinear(format metadata.ColorFormat) Format {
	switch format {
	case metadata.ColorFormatRGBA:
		return FormatR8G8B8A8UnormSRGB
	case metadata.ColorFormatBGRX:
		return FormatB8G8R8X8UnormSRGB
	case metadata.ColorFormatBGRA:
		return FormatB8G8R8A8UnormSRGB
	}
	return ConvertColorFormatResource(format)
}

func ConvertZStencilFormat(format metadata.ZStencilFormat) Format {
	switch format {
	case metadata.ZStencilFormatZ16:
		return FormatD16Unorm
	case metadata.ZStencilFormatZ24S8:
		return FormatD24UnormS8Uint
	case metadata.ZStencilFormatZ32F:
		return FormatD32Float
	}
	return FormatUnknown
}

func ConvertAddressMode(mode metadata.AddressMode) TextureAddressMode {
	switch mode {
	case metadata.AddressModeWrap:
		return TextureAddressModeWrap
	case metadata.AddressModeClamp:
		return TextureAddressModeClamp
	case metadata.AddressModeMirror:
		return TextureAddressModeMirror
	case metadata.AddressModeBorder:
		return TextureAddressModeBorder
	case metadata.AddressModeMirrorOnce:
		return TextureAddressModeMirrorOnce
	}
	return TextureAddressModeWrap
}

func ConvertFilter(filter metadata.SampleFilter) Filter {
	switch filter {
	case metadata.SampleFilterPoint:
		return FilterMinMagMipPoint
	case metadata.SampleFilterLinear:
		return FilterMinMagMipLinear
	case metadata.SampleFilterMinMagPointMipLinear:
		return FilterMinMagPointMipLinear
	case metadata.SampleFilterMinPointMagLinearMipPoint:
		return FilterMinPointMagLinearMipPoint
	case metadata.SampleFilterMinPointMagMipLinear:
		return FilterMinPointMagMipLinear
	case metadata.SampleFilterMinLinearMagMipPoint:
		return FilterMinLinearMagMipPoint
	case metadata.SampleFilterMinLinearMagPointMipLinear:
		return FilterMinLinearMagPointMipLinear
	case metadata.SampleFilterMinMagLinearMipPoint:
		return FilterMinMagLinearMipPoint
	case metadata.SampleFilterAnisotropic:
		return FilterAnisotropic
	}
	return FilterMinMagMipPoint
}

// unpackColor splits a 0xAARRGGBB color into normalized RGBA.
func unpackColor(c uint32) [4]float32 {
	return [4]float32{
		float32((c>>16)&0xff) / 255.0,
		float32((c>>8)&0xff) / 255.0,
		float32(c&0xff) / 255.0,
		float32((c>>24)&0xff) / 255.0,
	}
}

// maxLOD is FLT_MAX, meaning no upper mip clamp.
const maxLOD = float32(math.MaxFloat32)
