package d3d12

import (
	"github.com/cockroachdb/errors"
)

const (
	// StagingHeapDescriptorCount is the default capacity of every staging heap.
	StagingHeapDescriptorCount = 1024
	// ViewGPUDescriptorCount is the capacity of the shader visible CBV/SRV/UAV heap.
	ViewGPUDescriptorCount = 65536
	// SamplerGPUDescriptorCount is the capacity of the shader visible sampler
	// heap, which D3D12 caps at 2048.
	SamplerGPUDescriptorCount = 2048
)

/**
 * @brief A CPU-only descriptor heap. Staging heaps are the allocation source
 * of truth; descriptors are written here and copied into a shader visible
 * heap at bind time.
 */
type StagingDescriptorHeap struct {
	/** @brief The driver heap object. */
	handle NativeDescriptorHeap
	/** @brief The kind of descriptors the heap holds. Never changes. */
	heapType DescriptorHeapType
	/** @brief Fixed number of descriptors in the heap. */
	maxDescriptors int
	/** @brief Distance in bytes between two consecutive descriptors. */
	descriptorSize uint32
	/** @brief CPU handle of descriptor 0. */
	cpuStart CPUDescriptorHandle
	/** @brief Per-slot checkout tag, used to reject double releases. */
	allocated []bool
}

func newStagingDescriptorHeap(device NativeDevice, heapType DescriptorHeapType, descriptorCount int) (*StagingDescriptorHeap, error) {
	if !heapType.valid() {
		return nil, errors.Wrapf(ErrInvalidHeapType, "staging heap of type %d", int32(heapType))
	}
	if descriptorCount <= 0 {
		return nil, errors.Newf("staging heap descriptor count must be > 0, got %d", descriptorCount)
	}

	handle, err := device.CreateDescriptorHeap(&DescriptorHeapDesc{
		Type:           heapType,
		NumDescriptors: uint32(descriptorCount),
		Flags:          DescriptorHeapFlagNone,
		NodeMask:       0,
	})
	if err != nil {
		return nil, newHRError("failed to create staging desc heap", err)
	}

	return &StagingDescriptorHeap{
		handle:         handle,
		heapType:       heapType,
		maxDescriptors: descriptorCount,
		descriptorSize: device.DescriptorHandleIncrementSize(heapType),
		cpuStart:       handle.CPUDescriptorHandleForHeapStart(),
		allocated:      make([]bool, descriptorCount),
	}, nil
}

func (h *StagingDescriptorHeap) Type() DescriptorHeapType {
	return h.heapType
}

func (h *StagingDescriptorHeap) Capacity() int {
	return h.maxDescriptors
}

func (h *StagingDescriptorHeap) DescriptorSize() uint32 {
	return h.descriptorSize
}

func (h *StagingDescriptorHeap) CPUStart() CPUDescriptorHandle {
	return h.cpuStart
}

// HandleAt returns the CPU handle of slot index.
func (h *StagingDescriptorHeap) HandleAt(index int) CPUDescriptorHandle {
	return h.cpuStart.Offset(index, h.descriptorSize)
}

func (h *StagingDescriptorHeap) destroy() {
	if h == nil {
		return
	}
	if h.handle != nil {
		h.handle.Release()
		h.handle = nil
	}
	h.allocated = nil
}

// GPUDescriptorHeap is a shader visible heap. Descriptor tables bound at draw
// time point into it.
type GPUDescriptorHeap struct {
	handle         NativeDescriptorHeap
	heapType       DescriptorHeapType
	maxDescriptors int
	descriptorSize uint32
	cpuStart       CPUDescriptorHandle
	gpuStart       GPUDescriptorHandle
}

// NewGPUDescriptorHeap creates a shader visible heap. Only CBV/SRV/UAV and
// sampler heaps can be shader visible.
func NewGPUDescriptorHeap(device NativeDevice, heapType DescriptorHeapType, descriptorCount int) (*GPUDescriptorHeap, error) {
	if heapType != DescriptorHeapTypeCBVSRVUAV && heapType != DescriptorHeapTypeSampler {
		return nil, errors.Wrapf(ErrInvalidHeapType, "%s heaps cannot be shader visible", heapType)
	}
	if descriptorCount <= 0 {
		return nil, errors.Newf("gpu heap descriptor count must be > 0, got %d", descriptorCount)
	}

	handle, err := device.CreateDescriptorHeap(&DescriptorHeapDesc{
		Type:           heapType,
		NumDescriptors: uint32(descriptorCount),
		Flags:          DescriptorHeapFlagShaderVisible,
		NodeMask:       0,
	})
	if err != nil {
		return nil, newHRError("failed to create gpu desc heap", err)
	}

	return &GPUDescriptorHeap{
		handle:         handle,
		heapType:       heapType,
		maxDescriptors: descriptorCount,
		descriptorSize: device.DescriptorHandleIncrementSize(heapType),
		cpuStart:       handle.CPUDescriptorHandleForHeapStart(),
		gpuStart:       handle.GPUDescriptorHandleForHeapStart(),
	}, nil
}

func (h *GPUDescriptorHeap) Type() DescriptorHeapType {
	return h.heapType
}

func (h *GPUDescriptorHeap) Capacity() int {
	return h.maxDescriptors
}

func (h *GPUDescriptorHeap) DescriptorSize() uint32 {
	return h.descriptorSize
}

func (h *GPUDescriptorHeap) CPUStart() CPUDescriptorHandle {
	return h.cpuStart
}

func (h *GPUDescriptorHeap) GPUStart() GPUDescriptorHandle {
	return h.gpuStart
}

// CPUToGPUHandle translates a CPU handle inside this heap into the GPU handle
// of the same descriptor.
func (h *GPUDescriptorHeap) CPUToGPUHandle(cpu CPUDescriptorHandle) (GPUDescriptorHandle, error) {
	end := h.cpuStart.Offset(h.maxDescriptors, h.descriptorSize)
	if cpu.Ptr < h.cpuStart.Ptr || cpu.Ptr >= end.Ptr {
		return GPUDescriptorHandle{}, errors.Newf("cpu handle %#x is outside of the %s gpu heap", cpu.Ptr, h.heapType)
	}
	return GPUDescriptorHandle{Ptr: h.gpuStart.Ptr + uint64(cpu.Ptr-h.cpuStart.Ptr)}, nil
}

// Destroy releases the driver heap. Safe to call on a nil heap.
func (h *GPUDescriptorHeap) Destroy() {
	if h == nil || h.handle == nil {
		return
	}
	h.handle.Release()
	h.handle = nil
}
