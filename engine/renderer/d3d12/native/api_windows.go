//go:build windows

package native

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/spaghettifunk/anima-dx12/engine/renderer/d3d12"
)

const (
	_D3D_FEATURE_LEVEL_11_0 = 0xb000

	_D3D_ROOT_SIGNATURE_VERSION_1 = 0x1

	_D3D12_HEAP_TYPE_DEFAULT = 1

	_D3D12_RESOURCE_STATE_COMMON = 0

	_D3D12_TEXTURE_LAYOUT_UNKNOWN = 0
)

var (
	d3d12dll = windows.NewLazySystemDLL("d3d12.dll")

	procD3D12CreateDevice           = d3d12dll.NewProc("D3D12CreateDevice")
	procD3D12SerializeRootSignature = d3d12dll.NewProc("D3D12SerializeRootSignature")
)

var (
	_IID_ID3D12Device         = windows.GUID{Data1: 0x189819f1, Data2: 0x1db6, Data3: 0x4b57, Data4: [...]byte{0xbe, 0x54, 0x18, 0x21, 0x33, 0x9b, 0x85, 0xf7}}
	_IID_ID3D12DescriptorHeap = windows.GUID{Data1: 0x8efb471d, Data2: 0x616c, Data3: 0x4f49, Data4: [...]byte{0x90, 0xf7, 0x12, 0x7b, 0xb7, 0x63, 0xfa, 0x51}}
	_IID_ID3D12RootSignature  = windows.GUID{Data1: 0xc54a6b66, Data2: 0x72df, Data3: 0x4ee8, Data4: [...]byte{0x8b, 0xe5, 0xa9, 0x46, 0xa1, 0x42, 0x92, 0x14}}
	_IID_ID3D12Resource       = windows.GUID{Data1: 0x696442be, Data2: 0xa72e, Data3: 0x4059, Data4: [...]byte{0xbc, 0x79, 0x5b, 0x5c, 0x98, 0x04, 0x0f, 0xad}}
)

type _IUnknownVtbl struct {
	QueryInterface uintptr
	AddRef         uintptr
	Release        uintptr
}

type _ID3D12ObjectVtbl struct {
	_IUnknownVtbl
	GetPrivateData          uintptr
	SetPrivateData          uintptr
	SetPrivateDataInterface uintptr
	SetName                 uintptr
}

type _ID3D12Device struct {
	vtbl *struct {
		_ID3D12ObjectVtbl
		GetNodeCount                     uintptr
		CreateCommandQueue               uintptr
		CreateCommandAllocator           uintptr
		CreateGraphicsPipelineState      uintptr
		CreateComputePipelineState       uintptr
		CreateCommandList                uintptr
		CheckFeatureSupport              uintptr
		CreateDescriptorHeap             uintptr
		GetDescriptorHandleIncrementSize uintptr
		CreateRootSignature              uintptr
		CreateConstantBufferView         uintptr
		CreateShaderResourceView         uintptr
		CreateUnorderedAccessView        uintptr
		CreateRenderTargetView           uintptr
		CreateDepthStencilView           uintptr
		CreateSampler                    uintptr
		CopyDescriptors                  uintptr
		CopyDescriptorsSimple            uintptr
		GetResourceAllocationInfo        uintptr
		GetCustomHeapProperties          uintptr
		CreateCommittedResource          uintptr
	}
}

type _ID3D12DescriptorHeap struct {
	vtbl *struct {
		_ID3D12ObjectVtbl
		GetDevice                          uintptr
		GetDesc                            uintptr
		GetCPUDescriptorHandleForHeapStart uintptr
		GetGPUDescriptorHandleForHeapStart uintptr
	}
}

type _ID3D12Resource struct {
	vtbl *struct {
		_ID3D12ObjectVtbl
	}
}

type _ID3D12RootSignature struct {
	vtbl *struct {
		_ID3D12ObjectVtbl
	}
}

type _ID3DBlob struct {
	vtbl *struct {
		_IUnknownVtbl
		GetBufferPointer uintptr
		GetBufferSize    uintptr
	}
}

type _D3D12_DESCRIPTOR_HEAP_DESC struct {
	Type           int32
	NumDescriptors uint32
	Flags          int32
	NodeMask       uint32
}

type _D3D12_CPU_DESCRIPTOR_HANDLE struct {
	ptr uintptr
}

type _D3D12_GPU_DESCRIPTOR_HANDLE struct {
	ptr uint64
}

type _D3D12_HEAP_PROPERTIES struct {
	Type                 int32
	CPUPageProperty      int32
	MemoryPoolPreference int32
	CreationNodeMask     uint32
	VisibleNodeMask      uint32
}

type _DXGI_SAMPLE_DESC struct {
	Count   uint32
	Quality uint32
}

type _D3D12_RESOURCE_DESC struct {
	Dimension        int32
	Alignment        uint64
	Width            uint64
	Height           uint32
	DepthOrArraySize uint16
	MipLevels        uint16
	Format           uint32
	SampleDesc       _DXGI_SAMPLE_DESC
	Layout           int32
	Flags            int32
}

// _D3D12_CLEAR_VALUE holds either a color or, in Color[0], a depth value.
type _D3D12_CLEAR_VALUE struct {
	Format uint32
	Color  [4]float32
}

// The view descriptions below spell out the anonymous unions of the C
// headers as plain fields, sized to the largest union member.

type _D3D12_SHADER_RESOURCE_VIEW_DESC struct {
	Format                  uint32
	ViewDimension           int32
	Shader4ComponentMapping uint32
	_                       uint32
	MostDetailedMip         uint32
	MipLevels               uint32
	PlaneSlice              uint32
	ResourceMinLODClamp     float32
	_                       [8]byte
}

type _D3D12_RENDER_TARGET_VIEW_DESC struct {
	Format        uint32
	ViewDimension int32
	union         [4]uint32
}

type _D3D12_DEPTH_STENCIL_VIEW_DESC struct {
	Format        uint32
	ViewDimension int32
	Flags         int32
	MipSlice      uint32
	_             [2]uint32
}

type _D3D12_SAMPLER_DESC struct {
	Filter         int32
	AddressU       int32
	AddressV       int32
	AddressW       int32
	MipLODBias     float32
	MaxAnisotropy  uint32
	ComparisonFunc int32
	BorderColor    [4]float32
	MinLOD         float32
	MaxLOD         float32
}

type _D3D12_DESCRIPTOR_RANGE struct {
	RangeType                         int32
	NumDescriptors                    uint32
	BaseShaderRegister                uint32
	RegisterSpace                     uint32
	OffsetInDescriptorsFromTableStart uint32
}

// _D3D12_ROOT_PARAMETER keeps its union as raw words. Descriptor table
// pointers are stored as integers; the caller keeps the ranges alive.
type _D3D12_ROOT_PARAMETER struct {
	ParameterType    int32
	_                uint32
	union            [2]uint64
	ShaderVisibility int32
	_                uint32
}

type _D3D12_ROOT_SIGNATURE_DESC struct {
	NumParameters     uint32
	pParameters       *_D3D12_ROOT_PARAMETER
	NumStaticSamplers uint32
	pStaticSamplers   uintptr
	Flags             int32
}

func hresult(r uintptr) error {
	hr := d3d12.HRESULT(int32(uint32(r)))
	if hr.Failed() {
		return hr
	}
	return nil
}

func release(obj unsafe.Pointer, releaseMethod uintptr) {
	syscall.Syscall(releaseMethod, 1, uintptr(obj), 0, 0)
}

func (b *_ID3DBlob) Bytes() []byte {
	ptr, _, _ := syscall.Syscall(b.vtbl.GetBufferPointer, 1, uintptr(unsafe.Pointer(b)), 0, 0)
	size, _, _ := syscall.Syscall(b.vtbl.GetBufferSize, 1, uintptr(unsafe.Pointer(b)), 0, 0)
	if ptr == 0 || size == 0 {
		return nil
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(ptr)), size))
	return out
}

func (b *_ID3DBlob) Release() {
	release(unsafe.Pointer(b), b.vtbl.Release)
}
