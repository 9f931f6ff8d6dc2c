// Package soft implements d3d12.NativeDevice in memory. Heaps get addresses
// in a fake address space, views are recorded per CPU handle and root
// signatures are validated the way the D3D12 runtime validates them. It is
// used for headless runs and as the device of every test.
package soft

import (
	"github.com/spaghettifunk/anima-dx12/engine/core"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/d3d12"
)

const (
	cpuAddressBase uintptr = 0x10000000
	gpuAddressBase uint64  = 0x100000000
	// heapAlignment separates consecutive heaps so stray offsets never land in
	// a neighbour.
	heapAlignment = 0x10000
)

var descriptorSizes = [d3d12.DescriptorHeapTypeCount]uint32{
	d3d12.DescriptorHeapTypeCBVSRVUAV: 32,
	d3d12.DescriptorHeapTypeSampler:   32,
	d3d12.DescriptorHeapTypeRTV:       32,
	d3d12.DescriptorHeapTypeDSV:       8,
}

// CallCounts counts the calls made into the device.
type CallCounts struct {
	CreateDescriptorHeap     int
	CreateCommittedResource  int
	CreateShaderResourceView int
	CreateRenderTargetView   int
	CreateDepthStencilView   int
	CreateSampler            int
	SerializeRootSignature   int
	CreateRootSignature      int
}

type Device struct {
	// FailHeapCreationAfter makes heap creation fail with E_OUTOFMEMORY once
	// that many heaps have been created. Negative disables the failure.
	FailHeapCreationAfter int
	// FailResourceCreation makes every committed resource creation fail.
	FailResourceCreation bool

	Calls CallCounts

	nextCPU       uintptr
	nextGPU       uint64
	heapsCreated  int
	heaps         []*DescriptorHeap
	views         map[uintptr]View
	invalidWrites int
	resources     []*Resource
	rootSigs      []*RootSignature
	released      bool
}

func New() *Device {
	return &Device{
		FailHeapCreationAfter: -1,
		nextCPU:               cpuAddressBase,
		nextGPU:               gpuAddressBase,
		views:                 make(map[uintptr]View),
	}
}

func (d *Device) CreateDescriptorHeap(desc *d3d12.DescriptorHeapDesc) (d3d12.NativeDescriptorHeap, error) {
	d.Calls.CreateDescriptorHeap++

	if d.FailHeapCreationAfter >= 0 && d.heapsCreated >= d.FailHeapCreationAfter {
		return nil, d3d12.EOutOfMemory
	}
	if desc.Type < 0 || desc.Type >= d3d12.DescriptorHeapTypeCount || desc.NumDescriptors == 0 {
		return nil, d3d12.EInvalidArg
	}
	shaderVisible := desc.Flags&d3d12.DescriptorHeapFlagShaderVisible != 0
	if shaderVisible && desc.Type != d3d12.DescriptorHeapTypeCBVSRVUAV && desc.Type != d3d12.DescriptorHeapTypeSampler {
		return nil, d3d12.EInvalidArg
	}
	if shaderVisible && desc.Type == d3d12.DescriptorHeapTypeSampler && desc.NumDescriptors > d3d12.SamplerGPUDescriptorCount {
		return nil, d3d12.EInvalidArg
	}

	stride := descriptorSizes[desc.Type]
	size := alignUp(uint64(desc.NumDescriptors)*uint64(stride), heapAlignment)

	h := &DescriptorHeap{
		desc:     *desc,
		stride:   stride,
		cpuStart: d3d12.CPUDescriptorHandle{Ptr: d.nextCPU},
	}
	d.nextCPU += uintptr(size + heapAlignment)
	if shaderVisible {
		h.gpuStart = d3d12.GPUDescriptorHandle{Ptr: d.nextGPU}
		d.nextGPU += size + heapAlignment
	}

	d.heapsCreated++
	d.heaps = append(d.heaps, h)
	core.LogDebug("soft: created %s heap of %d descriptors at %#x", desc.Type, desc.NumDescriptors, h.cpuStart.Ptr)
	return h, nil
}

func (d *Device) DescriptorHandleIncrementSize(t d3d12.DescriptorHeapType) uint32 {
	if t < 0 || t >= d3d12.DescriptorHeapTypeCount {
		return 0
	}
	return descriptorSizes[t]
}

func (d *Device) CreateCommittedResource(desc *d3d12.ResourceDesc) (d3d12.NativeResource, error) {
	d.Calls.CreateCommittedResource++

	if d.FailResourceCreation {
		return nil, d3d12.EOutOfMemory
	}
	if desc.Width == 0 || desc.Format == d3d12.FormatUnknown {
		return nil, d3d12.EInvalidArg
	}
	if desc.Flags&d3d12.ResourceFlagAllowRenderTarget != 0 && desc.Flags&d3d12.ResourceFlagAllowDepthStencil != 0 {
		return nil, d3d12.EInvalidArg
	}
	r := &Resource{Desc: *desc}
	d.resources = append(d.resources, r)
	return r, nil
}

func (d *Device) CreateShaderResourceView(res d3d12.NativeResource, desc *d3d12.ShaderResourceViewDesc, dest d3d12.CPUDescriptorHandle) {
	d.Calls.CreateShaderResourceView++
	v := View{Kind: ViewKindShaderResource, Resource: asResource(res)}
	if desc != nil {
		v.Format = desc.Format
		v.Dimension = int32(desc.ViewDimension)
	}
	d.write(dest, d3d12.DescriptorHeapTypeCBVSRVUAV, v)
}

func (d *Device) CreateRenderTargetView(res d3d12.NativeResource, desc *d3d12.RenderTargetViewDesc, dest d3d12.CPUDescriptorHandle) {
	d.Calls.CreateRenderTargetView++
	v := View{Kind: ViewKindRenderTarget, Resource: asResource(res)}
	if desc != nil {
		v.Format = desc.Format
		v.Dimension = int32(desc.ViewDimension)
		v.ArraySlice = desc.FirstArraySlice
	}
	d.write(dest, d3d12.DescriptorHeapTypeRTV, v)
}

func (d *Device) CreateDepthStencilView(res d3d12.NativeResource, desc *d3d12.DepthStencilViewDesc, dest d3d12.CPUDescriptorHandle) {
	d.Calls.CreateDepthStencilView++
	v := View{Kind: ViewKindDepthStencil, Resource: asResource(res)}
	if desc != nil {
		v.Format = desc.Format
		v.Dimension = int32(desc.ViewDimension)
	}
	d.write(dest, d3d12.DescriptorHeapTypeDSV, v)
}

func (d *Device) CreateSampler(desc *d3d12.SamplerDesc, dest d3d12.CPUDescriptorHandle) {
	d.Calls.CreateSampler++
	v := View{Kind: ViewKindSampler}
	if desc != nil {
		s := *desc
		v.Sampler = &s
	}
	d.write(dest, d3d12.DescriptorHeapTypeSampler, v)
}

// write records v at dest when dest is a slot of a live heap of kind t.
func (d *Device) write(dest d3d12.CPUDescriptorHandle, t d3d12.DescriptorHeapType, v View) {
	h := d.heapAt(dest.Ptr)
	if h == nil || h.desc.Type != t || (dest.Ptr-h.cpuStart.Ptr)%uintptr(h.stride) != 0 {
		d.invalidWrites++
		core.LogWarn("soft: %s view written to invalid handle %#x", v.Kind, dest.Ptr)
		return
	}
	d.views[dest.Ptr] = v
}

func (d *Device) heapAt(ptr uintptr) *DescriptorHeap {
	for _, h := range d.heaps {
		if !h.released && h.contains(ptr) {
			return h
		}
	}
	return nil
}

func (d *Device) CreateRootSignature(blob []byte) (d3d12.NativeRootSignature, error) {
	d.Calls.CreateRootSignature++

	desc, err := decodeRootSignature(blob)
	if err != nil {
		return nil, d3d12.EInvalidArg
	}
	rs := &RootSignature{Desc: desc}
	d.rootSigs = append(d.rootSigs, rs)
	return rs, nil
}

func (d *Device) Release() {
	d.released = true
}

// View returns the view last written at the CPU handle ptr.
func (d *Device) View(ptr uintptr) (View, bool) {
	v, ok := d.views[ptr]
	return v, ok
}

// InvalidWrites counts view writes that did not target a slot of a live heap
// of the matching kind.
func (d *Device) InvalidWrites() int {
	return d.invalidWrites
}

func (d *Device) HeapsCreated() int {
	return d.heapsCreated
}

func (d *Device) LiveHeaps() int {
	n := 0
	for _, h := range d.heaps {
		if !h.released {
			n++
		}
	}
	return n
}

func (d *Device) LiveResources() int {
	n := 0
	for _, r := range d.resources {
		if !r.released {
			n++
		}
	}
	return n
}

func (d *Device) LiveRootSignatures() int {
	n := 0
	for _, rs := range d.rootSigs {
		if !rs.released {
			n++
		}
	}
	return n
}

// DoubleReleases counts Release calls on objects that were already released.
func (d *Device) DoubleReleases() int {
	n := 0
	for _, h := range d.heaps {
		n += h.extraReleases
	}
	for _, r := range d.resources {
		n += r.extraReleases
	}
	for _, rs := range d.rootSigs {
		n += rs.extraReleases
	}
	return n
}

func (d *Device) Released() bool {
	return d.released
}

func alignUp(v, a uint64) uint64 {
	return (v + a - 1) &^ (a - 1)
}
