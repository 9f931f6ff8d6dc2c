package d3d12

import "fmt"

// DescriptorHeapType matches D3D12_DESCRIPTOR_HEAP_TYPE.
type DescriptorHeapType int32

const (
	DescriptorHeapTypeCBVSRVUAV DescriptorHeapType = iota
	DescriptorHeapTypeSampler
	DescriptorHeapTypeRTV
	DescriptorHeapTypeDSV

	DescriptorHeapTypeCount
)

func (t DescriptorHeapType) String() string {
	switch t {
	case DescriptorHeapTypeCBVSRVUAV:
		return "CBV_SRV_UAV"
	case DescriptorHeapTypeSampler:
		return "SAMPLER"
	case DescriptorHeapTypeRTV:
		return "RTV"
	case DescriptorHeapTypeDSV:
		return "DSV"
	}
	return fmt.Sprintf("DescriptorHeapType(%d)", int32(t))
}

func (t DescriptorHeapType) valid() bool {
	return t >= DescriptorHeapTypeCBVSRVUAV && t < DescriptorHeapTypeCount
}

// DescriptorHeapFlags matches D3D12_DESCRIPTOR_HEAP_FLAGS.
type DescriptorHeapFlags int32

const (
	DescriptorHeapFlagNone          DescriptorHeapFlags = 0
	DescriptorHeapFlagShaderVisible DescriptorHeapFlags = 1
)

type DescriptorHeapDesc struct {
	Type           DescriptorHeapType
	NumDescriptors uint32
	Flags          DescriptorHeapFlags
	NodeMask       uint32
}

// CPUDescriptorHandle is the CPU address of a descriptor.
type CPUDescriptorHandle struct {
	Ptr uintptr
}

// Offset returns the handle n descriptors further, each stride bytes wide.
func (h CPUDescriptorHandle) Offset(n int, stride uint32) CPUDescriptorHandle {
	return CPUDescriptorHandle{Ptr: uintptr(int64(h.Ptr) + int64(n)*int64(stride))}
}

func (h CPUDescriptorHandle) IsNull() bool {
	return h.Ptr == 0
}

// GPUDescriptorHandle is the GPU virtual address of a descriptor in a shader
// visible heap.
type GPUDescriptorHandle struct {
	Ptr uint64
}

func (h GPUDescriptorHandle) Offset(n int, stride uint32) GPUDescriptorHandle {
	return GPUDescriptorHandle{Ptr: uint64(int64(h.Ptr) + int64(n)*int64(stride))}
}

func (h GPUDescriptorHandle) IsNull() bool {
	return h.Ptr == 0
}

// Format matches the subset of DXGI_FORMAT used by the device.
type Format uint32

const (
	FormatUnknown           Format = 0
	FormatR32G32B32A32Float Format = 2
	FormatR16G16B16A16Float Format = 10
	FormatR16G16B16A16Unorm Format = 11
	FormatR10G10B10A2Unorm  Format = 24
	FormatR8G8B8A8Typeless  Format = 27
	FormatR8G8B8A8Unorm     Format = 28
	FormatR8G8B8A8UnormSRGB Format = 29
	FormatR16G16Float       Format = 34
	FormatR32Typeless       Format = 39
	FormatD32Float          Format = 40
	FormatR32Float          Format = 41
	FormatR24G8Typeless     Format = 44
	FormatD24UnormS8Uint    Format = 45
	FormatR8G8Unorm         Format = 49
	FormatR16Typeless       Format = 53
	FormatR16Float          Format = 54
	FormatD16Unorm          Format = 55
	FormatR16Unorm          Format = 56
	FormatR8Unorm           Format = 61
	FormatA8Unorm           Format = 65
	FormatB8G8R8A8Unorm     Format = 87
	FormatB8G8R8X8Unorm     Format = 88
	FormatB8G8R8A8Typeless  Format = 90
	FormatB8G8R8A8UnormSRGB Format = 91
	FormatB8G8R8X8Typeless  Format = 92
	FormatB8G8R8X8UnormSRGB Format = 93
)

// ResourceDimension matches D3D12_RESOURCE_DIMENSION.
type ResourceDimension int32

const (
	ResourceDimensionUnknown   ResourceDimension = 0
	ResourceDimensionBuffer    ResourceDimension = 1
	ResourceDimensionTexture1D ResourceDimension = 2
	ResourceDimensionTexture2D ResourceDimension = 3
	ResourceDimensionTexture3D ResourceDimension = 4
)

// ResourceFlags matches D3D12_RESOURCE_FLAGS.
type ResourceFlags int32

const (
	ResourceFlagNone               ResourceFlags = 0
	ResourceFlagAllowRenderTarget  ResourceFlags = 0x1
	ResourceFlagAllowDepthStencil  ResourceFlags = 0x2
	ResourceFlagAllowUnorderedAcc  ResourceFlags = 0x4
	ResourceFlagDenyShaderResource ResourceFlags = 0x8
)

// ResourceDesc describes a committed resource in the default heap.
type ResourceDesc struct {
	Dimension        ResourceDimension
	Width            uint64
	Height           uint32
	DepthOrArraySize uint16
	MipLevels        uint16
	Format           Format
	Flags            ResourceFlags
	// ClearFormat is used for the optimized clear value of render targets and
	// depth buffers. FormatUnknown means no clear value.
	ClearFormat Format
}

// SRVDimension matches D3D12_SRV_DIMENSION.
type SRVDimension int32

const (
	SRVDimensionTexture2D   SRVDimension = 4
	SRVDimensionTexture3D   SRVDimension = 8
	SRVDimensionTextureCube SRVDimension = 9
)

// DefaultShader4ComponentMapping is D3D12_DEFAULT_SHADER_4_COMPONENT_MAPPING.
const DefaultShader4ComponentMapping uint32 = 0x1688

type ShaderResourceViewDesc struct {
	Format                  Format
	ViewDimension           SRVDimension
	Shader4ComponentMapping uint32
	MostDetailedMip         uint32
	// MipLevels of ^uint32(0) selects every mip from MostDetailedMip down.
	MipLevels uint32
}

// RTVDimension matches D3D12_RTV_DIMENSION.
type RTVDimension int32

const (
	RTVDimensionTexture2D      RTVDimension = 4
	RTVDimensionTexture2DArray RTVDimension = 5
	RTVDimensionTexture3D      RTVDimension = 8
)

type RenderTargetViewDesc struct {
	Format          Format
	ViewDimension   RTVDimension
	MipSlice        uint32
	FirstArraySlice uint32
	ArraySize       uint32
}

// DSVDimension matches D3D12_DSV_DIMENSION.
type DSVDimension int32

const (
	DSVDimensionTexture2D DSVDimension = 3
)

type DepthStencilViewDesc struct {
	Format        Format
	ViewDimension DSVDimension
	MipSlice      uint32
}

// Filter matches the D3D12_FILTER values reachable from SampleFilter.
type Filter int32

const (
	FilterMinMagMipPoint             Filter = 0
	FilterMinMagPointMipLinear       Filter = 0x1
	FilterMinPointMagLinearMipPoint  Filter = 0x4
	FilterMinPointMagMipLinear       Filter = 0x5
	FilterMinLinearMagMipPoint       Filter = 0x10
	FilterMinLinearMagPointMipLinear Filter = 0x11
	FilterMinMagLinearMipPoint       Filter = 0x14
	FilterMinMagMipLinear            Filter = 0x15
	FilterAnisotropic                Filter = 0x55
)

// TextureAddressMode matches D3D12_TEXTURE_ADDRESS_MODE.
type TextureAddressMode int32

const (
	TextureAddressModeWrap       TextureAddressMode = 1
	TextureAddressModeMirror     TextureAddressMode = 2
	TextureAddressModeClamp      TextureAddressMode = 3
	TextureAddressModeBorder     TextureAddressMode = 4
	TextureAddressModeMirrorOnce TextureAddressMode = 5
)

// ComparisonFunc matches D3D12_COMPARISON_FUNC.
type ComparisonFunc int32

const (
	ComparisonFuncNever  ComparisonFunc = 1
	ComparisonFuncAlways ComparisonFunc = 8
)

type SamplerDesc struct {
	Filter         Filter
	AddressU       TextureAddressMode
	AddressV       TextureAddressMode
	AddressW       TextureAddressMode
	MipLODBias     float32
	MaxAnisotropy  uint32
	ComparisonFunc ComparisonFunc
	BorderColor    [4]float32
	MinLOD         float32
	MaxLOD         float32
}
