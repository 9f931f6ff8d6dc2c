package d3d12

// NativeDescriptorHeap is a driver-allocated descriptor heap.
type NativeDescriptorHeap interface {
	CPUDescriptorHandleForHeapStart() CPUDescriptorHandle
	// GPUDescriptorHandleForHeapStart returns a null handle for heaps that
	// are not shader visible.
	GPUDescriptorHandleForHeapStart() GPUDescriptorHandle
	Release()
}

// NativeResource is a committed GPU resource (texture or depth buffer).
type NativeResource interface {
	Release()
}

// NativeRootSignature is a root signature object created from a serialized
// blob.
type NativeRootSignature interface {
	Release()
}

// NativeDevice is the slice of the graphics API the descriptor and root
// signature layer is built on. Implementations return HRESULT values (or
// errors wrapping one) on failure so callers can surface the platform status
// code.
//
// A NativeDevice is not safe for concurrent use.
type NativeDevice interface {
	CreateDescriptorHeap(desc *DescriptorHeapDesc) (NativeDescriptorHeap, error)
	DescriptorHandleIncrementSize(t DescriptorHeapType) uint32

	CreateCommittedResource(desc *ResourceDesc) (NativeResource, error)
	CreateShaderResourceView(res NativeResource, desc *ShaderResourceViewDesc, dest CPUDescriptorHandle)
	CreateRenderTargetView(res NativeResource, desc *RenderTargetViewDesc, dest CPUDescriptorHandle)
	CreateDepthStencilView(res NativeResource, desc *DepthStencilViewDesc, dest CPUDescriptorHandle)
	CreateSampler(desc *SamplerDesc, dest CPUDescriptorHandle)

	// SerializeRootSignature encodes desc as a version 1.0 root signature
	// blob. On failure diagnostics holds whatever text the serializer
	// produced, possibly empty.
	SerializeRootSignature(desc *RootSignatureDesc) (blob []byte, diagnostics string, err error)
	CreateRootSignature(blob []byte) (NativeRootSignature, error)

	Release()
}
