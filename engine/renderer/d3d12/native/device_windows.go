//go:build windows

// Package native implements d3d12.NativeDevice on top of d3d12.dll.
package native

import (
	"runtime"
	"syscall"
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/anima-dx12/engine/core"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/d3d12"
)

const is64bit = uint64(^uintptr(0)) == ^uint64(0)

type Device struct {
	device *_ID3D12Device
}

var _ d3d12.NativeDevice = (*Device)(nil)

// New creates a device on the default adapter.
func New() (d3d12.NativeDevice, error) {
	// The calling convention below passes 64-bit values and descriptor
	// handles as single arguments, which only holds on 64-bit Windows.
	if !is64bit {
		return nil, errors.New("the D3D12 backend requires a 64-bit process")
	}
	if err := procD3D12CreateDevice.Find(); err != nil {
		return nil, errors.Wrap(err, "d3d12.dll is not available")
	}

	var dev *_ID3D12Device
	r, _, _ := procD3D12CreateDevice.Call(
		0, // pAdapter
		_D3D_FEATURE_LEVEL_11_0,
		uintptr(unsafe.Pointer(&_IID_ID3D12Device)),
		uintptr(unsafe.Pointer(&dev)),
	)
	if err := hresult(r); err != nil {
		return nil, errors.Wrap(err, "D3D12CreateDevice failed")
	}
	core.LogInfo("D3D12 native device created")
	return &Device{device: dev}, nil
}

func (d *Device) this() uintptr {
	return uintptr(unsafe.Pointer(d.device))
}

type descriptorHeap struct {
	heap *_ID3D12DescriptorHeap
	cpu  d3d12.CPUDescriptorHandle
	gpu  d3d12.GPUDescriptorHandle
}

func (h *descriptorHeap) CPUDescriptorHandleForHeapStart() d3d12.CPUDescriptorHandle {
	return h.cpu
}

func (h *descriptorHeap) GPUDescriptorHandleForHeapStart() d3d12.GPUDescriptorHandle {
	return h.gpu
}

func (h *descriptorHeap) Release() {
	if h.heap == nil {
		return
	}
	release(unsafe.Pointer(h.heap), h.heap.vtbl.Release)
	h.heap = nil
}

func (d *Device) CreateDescriptorHeap(desc *d3d12.DescriptorHeapDesc) (d3d12.NativeDescriptorHeap, error) {
	nd := _D3D12_DESCRIPTOR_HEAP_DESC{
		Type:           int32(desc.Type),
		NumDescriptors: desc.NumDescriptors,
		Flags:          int32(desc.Flags),
		NodeMask:       desc.NodeMask,
	}
	var heap *_ID3D12DescriptorHeap
	r, _, _ := syscall.Syscall6(d.device.vtbl.CreateDescriptorHeap, 4,
		d.this(),
		uintptr(unsafe.Pointer(&nd)),
		uintptr(unsafe.Pointer(&_IID_ID3D12DescriptorHeap)),
		uintptr(unsafe.Pointer(&heap)),
		0, 0)
	runtime.KeepAlive(&nd)
	if err := hresult(r); err != nil {
		return nil, err
	}

	h := &descriptorHeap{heap: heap}
	var cpu _D3D12_CPU_DESCRIPTOR_HANDLE
	syscall.Syscall(heap.vtbl.GetCPUDescriptorHandleForHeapStart, 2,
		uintptr(unsafe.Pointer(heap)), uintptr(unsafe.Pointer(&cpu)), 0)
	h.cpu = d3d12.CPUDescriptorHandle{Ptr: cpu.ptr}

	if desc.Flags&d3d12.DescriptorHeapFlagShaderVisible != 0 {
		var gpu _D3D12_GPU_DESCRIPTOR_HANDLE
		syscall.Syscall(heap.vtbl.GetGPUDescriptorHandleForHeapStart, 2,
			uintptr(unsafe.Pointer(heap)), uintptr(unsafe.Pointer(&gpu)), 0)
		h.gpu = d3d12.GPUDescriptorHandle{Ptr: gpu.ptr}
	}
	return h, nil
}

func (d *Device) DescriptorHandleIncrementSize(t d3d12.DescriptorHeapType) uint32 {
	r, _, _ := syscall.Syscall(d.device.vtbl.GetDescriptorHandleIncrementSize, 2, d.this(), uintptr(t), 0)
	return uint32(r)
}

type resource struct {
	res *_ID3D12Resource
}

func (r *resource) Release() {
	if r.res == nil {
		return
	}
	release(unsafe.Pointer(r.res), r.res.vtbl.Release)
	r.res = nil
}

func resourcePtr(res d3d12.NativeResource) uintptr {
	if r, ok := res.(*resource); ok && r != nil {
		return uintptr(unsafe.Pointer(r.res))
	}
	return 0
}

func (d *Device) CreateCommittedResource(desc *d3d12.ResourceDesc) (d3d12.NativeResource, error) {
	props := _D3D12_HEAP_PROPERTIES{
		Type:             _D3D12_HEAP_TYPE_DEFAULT,
		CreationNodeMask: 1,
		VisibleNodeMask:  1,
	}
	rd := _D3D12_RESOURCE_DESC{
		Dimension:        int32(desc.Dimension),
		Width:            desc.Width,
		Height:           desc.Height,
		DepthOrArraySize: desc.DepthOrArraySize,
		MipLevels:        desc.MipLevels,
		Format:           uint32(desc.Format),
		SampleDesc:       _DXGI_SAMPLE_DESC{Count: 1},
		Layout:           _D3D12_TEXTURE_LAYOUT_UNKNOWN,
		Flags:            int32(desc.Flags),
	}

	var clear *_D3D12_CLEAR_VALUE
	if desc.ClearFormat != d3d12.FormatUnknown {
		clear = &_D3D12_CLEAR_VALUE{Format: uint32(desc.ClearFormat)}
		if desc.Flags&d3d12.ResourceFlagAllowDepthStencil != 0 {
			clear.Color[0] = 1.0
		}
	}

	var res *_ID3D12Resource
	r, _, _ := syscall.Syscall9(d.device.vtbl.CreateCommittedResource, 8,
		d.this(),
		uintptr(unsafe.Pointer(&props)),
		0, // D3D12_HEAP_FLAG_NONE
		uintptr(unsafe.Pointer(&rd)),
		_D3D12_RESOURCE_STATE_COMMON,
		uintptr(unsafe.Pointer(clear)),
		uintptr(unsafe.Pointer(&_IID_ID3D12Resource)),
		uintptr(unsafe.Pointer(&res)),
		0)
	runtime.KeepAlive(&props)
	runtime.KeepAlive(&rd)
	runtime.KeepAlive(clear)
	if err := hresult(r); err != nil {
		return nil, err
	}
	return &resource{res: res}, nil
}

func (d *Device) CreateShaderResourceView(res d3d12.NativeResource, desc *d3d12.ShaderResourceViewDesc, dest d3d12.CPUDescriptorHandle) {
	var pDesc uintptr
	var nd _D3D12_SHADER_RESOURCE_VIEW_DESC
	if desc != nil {
		nd = _D3D12_SHADER_RESOURCE_VIEW_DESC{
			Format:                  uint32(desc.Format),
			ViewDimension:           int32(desc.ViewDimension),
			Shader4ComponentMapping: desc.Shader4ComponentMapping,
			MostDetailedMip:         desc.MostDetailedMip,
			MipLevels:               desc.MipLevels,
		}
		pDesc = uintptr(unsafe.Pointer(&nd))
	}
	syscall.Syscall6(d.device.vtbl.CreateShaderResourceView, 4,
		d.this(), resourcePtr(res), pDesc, dest.Ptr, 0, 0)
	runtime.KeepAlive(&nd)
}

func (d *Device) CreateRenderTargetView(res d3d12.NativeResource, desc *d3d12.RenderTargetViewDesc, dest d3d12.CPUDescriptorHandle) {
	var pDesc uintptr
	var nd _D3D12_RENDER_TARGET_VIEW_DESC
	if desc != nil {
		nd.Format = uint32(desc.Format)
		nd.ViewDimension = int32(desc.ViewDimension)
		nd.union[0] = desc.MipSlice
		if desc.ViewDimension == d3d12.RTVDimensionTexture2DArray {
			nd.union[1] = desc.FirstArraySlice
			nd.union[2] = desc.ArraySize
		}
		pDesc = uintptr(unsafe.Pointer(&nd))
	}
	syscall.Syscall6(d.device.vtbl.CreateRenderTargetView, 4,
		d.this(), resourcePtr(res), pDesc, dest.Ptr, 0, 0)
	runtime.KeepAlive(&nd)
}

func (d *Device) CreateDepthStencilView(res d3d12.NativeResource, desc *d3d12.DepthStencilViewDesc, dest d3d12.CPUDescriptorHandle) {
	var pDesc uintptr
	var nd _D3D12_DEPTH_STENCIL_VIEW_DESC
	if desc != nil {
		nd = _D3D12_DEPTH_STENCIL_VIEW_DESC{
			Format:        uint32(desc.Format),
			ViewDimension: int32(desc.ViewDimension),
			MipSlice:      desc.MipSlice,
		}
		pDesc = uintptr(unsafe.Pointer(&nd))
	}
	syscall.Syscall6(d.device.vtbl.CreateDepthStencilView, 4,
		d.this(), resourcePtr(res), pDesc, dest.Ptr, 0, 0)
	runtime.KeepAlive(&nd)
}

func (d *Device) CreateSampler(desc *d3d12.SamplerDesc, dest d3d12.CPUDescriptorHandle) {
	nd := _D3D12_SAMPLER_DESC{
		Filter:         int32(desc.Filter),
		AddressU:       int32(desc.AddressU),
		AddressV:       int32(desc.AddressV),
		AddressW:       int32(desc.AddressW),
		MipLODBias:     desc.MipLODBias,
		MaxAnisotropy:  desc.MaxAnisotropy,
		ComparisonFunc: int32(desc.ComparisonFunc),
		BorderColor:    desc.BorderColor,
		MinLOD:         desc.MinLOD,
		MaxLOD:         desc.MaxLOD,
	}
	syscall.Syscall(d.device.vtbl.CreateSampler, 3, d.this(), uintptr(unsafe.Pointer(&nd)), dest.Ptr)
	runtime.KeepAlive(&nd)
}

func (d *Device) SerializeRootSignature(desc *d3d12.RootSignatureDesc) ([]byte, string, error) {
	params := make([]_D3D12_ROOT_PARAMETER, len(desc.Parameters))
	ranges := make([][]_D3D12_DESCRIPTOR_RANGE, len(desc.Parameters))

	for i, p := range desc.Parameters {
		np := &params[i]
		np.ParameterType = int32(p.Type)
		np.ShaderVisibility = int32(p.Visibility)

		switch p.Type {
		case d3d12.RootParameterTypeDescriptorTable:
			ranges[i] = make([]_D3D12_DESCRIPTOR_RANGE, len(p.Ranges))
			for j, r := range p.Ranges {
				ranges[i][j] = _D3D12_DESCRIPTOR_RANGE{
					RangeType:                         int32(r.Type),
					NumDescriptors:                    r.NumDescriptors,
					BaseShaderRegister:                r.BaseShaderRegister,
					RegisterSpace:                     r.RegisterSpace,
					OffsetInDescriptorsFromTableStart: r.OffsetInDescriptorsFromTableStart,
				}
			}
			np.union[0] = uint64(len(p.Ranges))
			if len(ranges[i]) > 0 {
				np.union[1] = uint64(uintptr(unsafe.Pointer(&ranges[i][0])))
			}
		case d3d12.RootParameterType32BitConstants:
			np.union[0] = uint64(p.Constants.ShaderRegister) | uint64(p.Constants.RegisterSpace)<<32
			np.union[1] = uint64(p.Constants.Num32BitValues)
		default:
			np.union[0] = uint64(p.Descriptor.ShaderRegister) | uint64(p.Descriptor.RegisterSpace)<<32
		}
	}

	rsDesc := _D3D12_ROOT_SIGNATURE_DESC{
		NumParameters:     uint32(len(params)),
		NumStaticSamplers: desc.NumStaticSamplers,
		Flags:             int32(desc.Flags),
	}
	if len(params) > 0 {
		rsDesc.pParameters = &params[0]
	}

	var blob, errBlob *_ID3DBlob
	r, _, _ := procD3D12SerializeRootSignature.Call(
		uintptr(unsafe.Pointer(&rsDesc)),
		_D3D_ROOT_SIGNATURE_VERSION_1,
		uintptr(unsafe.Pointer(&blob)),
		uintptr(unsafe.Pointer(&errBlob)),
	)
	runtime.KeepAlive(&rsDesc)
	runtime.KeepAlive(params)
	runtime.KeepAlive(ranges)

	var diagnostics string
	if errBlob != nil {
		diagnostics = string(errBlob.Bytes())
		errBlob.Release()
	}
	if err := hresult(r); err != nil {
		if blob != nil {
			blob.Release()
		}
		return nil, diagnostics, err
	}
	defer blob.Release()
	return blob.Bytes(), diagnostics, nil
}

type rootSignature struct {
	rs *_ID3D12RootSignature
}

func (r *rootSignature) Release() {
	if r.rs == nil {
		return
	}
	release(unsafe.Pointer(r.rs), r.rs.vtbl.Release)
	r.rs = nil
}

func (d *Device) CreateRootSignature(blob []byte) (d3d12.NativeRootSignature, error) {
	if len(blob) == 0 {
		return nil, d3d12.EInvalidArg
	}
	var rs *_ID3D12RootSignature
	r, _, _ := syscall.Syscall6(d.device.vtbl.CreateRootSignature, 6,
		d.this(),
		0, // nodeMask
		uintptr(unsafe.Pointer(&blob[0])),
		uintptr(len(blob)),
		uintptr(unsafe.Pointer(&_IID_ID3D12RootSignature)),
		uintptr(unsafe.Pointer(&rs)))
	runtime.KeepAlive(blob)
	if err := hresult(r); err != nil {
		return nil, err
	}
	return &rootSignature{rs: rs}, nil
}

func (d *Device) Release() {
	if d.device == nil {
		return
	}
	release(unsafe.Pointer(d.device), d.device.vtbl.Release)
	d.device = nil
}
