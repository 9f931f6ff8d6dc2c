package soft

import (
	"github.com/spaghettifunk/anima-dx12/engine/renderer/d3d12"
)

type DescriptorHeap struct {
	desc     d3d12.DescriptorHeapDesc
	stride   uint32
	cpuStart d3d12.CPUDescriptorHandle
	gpuStart d3d12.GPUDescriptorHandle

	released      bool
	extraReleases int
}

func (h *DescriptorHeap) CPUDescriptorHandleForHeapStart() d3d12.CPUDescriptorHandle {
	return h.cpuStart
}

func (h *DescriptorHeap) GPUDescriptorHandleForHeapStart() d3d12.GPUDescriptorHandle {
	return h.gpuStart
}

func (h *DescriptorHeap) Release() {
	if h.released {
		h.extraReleases++
		return
	}
	h.released = true
}

func (h *DescriptorHeap) Desc() d3d12.DescriptorHeapDesc {
	return h.desc
}

func (h *DescriptorHeap) Released() bool {
	return h.released
}

func (h *DescriptorHeap) contains(ptr uintptr) bool {
	end := h.cpuStart.Ptr + uintptr(h.desc.NumDescriptors)*uintptr(h.stride)
	return ptr >= h.cpuStart.Ptr && ptr < end
}

type Resource struct {
	Desc d3d12.ResourceDesc

	released      bool
	extraReleases int
}

func (r *Resource) Release() {
	if r.released {
		r.extraReleases++
		return
	}
	r.released = true
}

func (r *Resource) Released() bool {
	return r.released
}

func asResource(res d3d12.NativeResource) *Resource {
	r, _ := res.(*Resource)
	return r
}

type RootSignature struct {
	// Desc is the layout decoded back from the serialized blob.
	Desc *d3d12.RootSignatureDesc

	released      bool
	extraReleases int
}

func (rs *RootSignature) Release() {
	if rs.released {
		rs.extraReleases++
		return
	}
	rs.released = true
}

func (rs *RootSignature) Released() bool {
	return rs.released
}

type ViewKind int

const (
	ViewKindShaderResource ViewKind = iota
	ViewKindRenderTarget
	ViewKindDepthStencil
	ViewKindSampler
)

func (k ViewKind) String() string {
	switch k {
	case ViewKindShaderResource:
		return "SRV"
	case ViewKindRenderTarget:
		return "RTV"
	case ViewKindDepthStencil:
		return "DSV"
	case ViewKindSampler:
		return "sampler"
	}
	return "unknown"
}

// View is a descriptor written into a heap slot.
type View struct {
	Kind       ViewKind
	Resource   *Resource
	Format     d3d12.Format
	Dimension  int32
	ArraySlice uint32
	Sampler    *d3d12.SamplerDesc
}
