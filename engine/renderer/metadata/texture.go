package metadata

import (
	"fmt"
	"strings"
)

/**
 * @brief Represents various types of textures.
 */
type TextureType int

const (
	/** @brief A standard two-dimensional texture. */
	TextureType2d TextureType = iota
	/** @brief A cube texture, used for cubemaps. */
	TextureTypeCube
)

func (t TextureType) String() string {
	if t == TextureTypeCube {
		return "cube"
	}
	return "2d"
}

func (t *TextureType) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "", "2d":
		*t = TextureType2d
	case "cube":
		*t = TextureTypeCube
	default:
		return fmt.Errorf("unknown texture type %q", text)
	}
	return nil
}

/** @brief Creation flags of a texture. */
type TextureFlag uint32

const (
	/** @brief The texture can be rendered to. */
	TextureFlagRenderTarget TextureFlag = 0x1
	/** @brief The full mip chain is generated from level 0. */
	TextureFlagBuildMipmaps TextureFlag = 0x2
	/** @brief The texture content is updated every frame. */
	TextureFlagDynamic TextureFlag = 0x4
)

/** @brief The color formats a texture can be created with. */
type ColorFormat int

const (
	ColorFormatUnknown ColorFormat = iota
	ColorFormatA8
	ColorFormatR8
	ColorFormatRGBA
	ColorFormatBGRX
	ColorFormatBGRA
	ColorFormatR10G10B10A2
	ColorFormatRGBA16
	ColorFormatR16
	ColorFormatRGBA16F
	ColorFormatRGBA32F
	ColorFormatRG16F
	ColorFormatR16F
	ColorFormatR32F
	ColorFormatR8G8
	ColorFormatRGBAUnorm
	ColorFormatBGRXUnorm
	ColorFormatBGRAUnorm
)

var colorFormatNames = map[string]ColorFormat{
	"unknown":     ColorFormatUnknown,
	"a8":          ColorFormatA8,
	"r8":          ColorFormatR8,
	"rgba":        ColorFormatRGBA,
	"bgrx":        ColorFormatBGRX,
	"bgra":        ColorFormatBGRA,
	"r10g10b10a2": ColorFormatR10G10B10A2,
	"rgba16":      ColorFormatRGBA16,
	"r16":         ColorFormatR16,
	"rgba16f":     ColorFormatRGBA16F,
	"rgba32f":     ColorFormatRGBA32F,
	"rg16f":       ColorFormatRG16F,
	"r16f":        ColorFormatR16F,
	"r32f":        ColorFormatR32F,
	"r8g8":        ColorFormatR8G8,
	"rgba_unorm":  ColorFormatRGBAUnorm,
	"bgrx_unorm":  ColorFormatBGRXUnorm,
	"bgra_unorm":  ColorFormatBGRAUnorm,
}

func ColorFormatFromString(s string) (ColorFormat, error) {
	if f, ok := colorFormatNames[strings.ToLower(s)]; ok {
		return f, nil
	}
	return ColorFormatUnknown, fmt.Errorf("string %s is not a valid ColorFormat", s)
}

func (f *ColorFormat) UnmarshalText(text []byte) error {
	v, err := ColorFormatFromString(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

/**
 * @brief Everything needed to create a texture on the device.
 */
type TextureConfig struct {
	/** @brief The texture name. */
	Name string `toml:"name"`
	/** @brief The texture type. */
	Type TextureType `toml:"type"`
	/** @brief Width in pixels. For cube textures this is the face size. */
	Width uint32 `toml:"width"`
	/** @brief Height in pixels. Ignored for cube textures. */
	Height uint32 `toml:"height"`
	/** @brief Number of mip levels, 0 means the full chain. */
	Levels uint32 `toml:"levels"`
	/** @brief The color format. */
	Format ColorFormat `toml:"format"`
	/** @brief Creation flags. */
	Flags TextureFlag `toml:"flags"`
}

func (c *TextureConfig) IsRenderTarget() bool {
	return c.Flags&TextureFlagRenderTarget != 0
}

func (c *TextureConfig) GenMipmaps() bool {
	return c.Flags&TextureFlagBuildMipmaps != 0
}

/** @brief Depth/stencil buffer formats. */
type ZStencilFormat int

const (
	ZStencilFormatNone ZStencilFormat = iota
	ZStencilFormatZ16
	ZStencilFormatZ24S8
	ZStencilFormatZ32F
)

/** @brief Represents supported texture filtering modes. */
type SampleFilter int

const (
	SampleFilterPoint SampleFilter = iota
	SampleFilterLinear
	SampleFilterAnisotropic
	SampleFilterMinMagPointMipLinear
	SampleFilterMinPointMagLinearMipPoint
	SampleFilterMinPointMagMipLinear
	SampleFilterMinLinearMagMipPoint
	SampleFilterMinLinearMagPointMipLinear
	SampleFilterMinMagLinearMipPoint
)

type AddressMode int

const (
	AddressModeClamp AddressMode = iota
	AddressModeWrap
	AddressModeMirror
	AddressModeBorder
	AddressModeMirrorOnce
)

/**
 * @brief Sampler state description.
 */
type SamplerInfo struct {
	Filter        SampleFilter
	AddressU      AddressMode
	AddressV      AddressMode
	AddressW      AddressMode
	MaxAnisotropy uint32
	/** @brief Packed as 0xAARRGGBB. */
	BorderColor uint32
}
