package d3d12

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/spaghettifunk/anima-dx12/engine/containers"
	"github.com/spaghettifunk/anima-dx12/engine/core"
)

/**
 * @brief A growable pool of staging descriptors of a single heap kind. Slots
 * are recycled through a LIFO free list; when it runs dry another heap of the
 * same capacity is added. Not safe for concurrent use.
 */
type StagingDescriptorPool struct {
	/** @brief Identity used by descriptors to refer back to the pool. */
	id uuid.UUID
	/** @brief The device heaps are created on. */
	device NativeDevice
	/** @brief The kind of descriptors this pool hands out. */
	heapType DescriptorHeapType
	/** @brief Capacity of every heap in the pool. */
	heapDescriptorCount int
	/** @brief All heaps ever created by this pool, in creation order. */
	heaps []*StagingDescriptorHeap
	/** @brief Slots available for allocation. The tail is handed out first. */
	freeDescriptors *containers.Stack[StagingDescriptor]

	destroyed bool
}

// NewStagingDescriptorPool creates a pool with one heap of heapDescriptorCount
// slots, all of them free.
func NewStagingDescriptorPool(device NativeDevice, heapType DescriptorHeapType, heapDescriptorCount int) (*StagingDescriptorPool, error) {
	if device == nil {
		return nil, errors.New("staging descriptor pool requires a device")
	}
	if !heapType.valid() {
		return nil, errors.Wrapf(ErrInvalidHeapType, "staging descriptor pool of type %d", int32(heapType))
	}
	if heapDescriptorCount <= 0 {
		heapDescriptorCount = StagingHeapDescriptorCount
	}

	p := &StagingDescriptorPool{
		id:                  uuid.New(),
		device:              device,
		heapType:            heapType,
		heapDescriptorCount: heapDescriptorCount,
		freeDescriptors:     containers.NewStack[StagingDescriptor](heapDescriptorCount),
	}
	if err := p.Expand(); err != nil {
		return nil, err
	}
	return p, nil
}

// Expand adds exactly one heap to the pool and makes all of its slots
// available. On failure the pool is unchanged.
func (p *StagingDescriptorPool) Expand() error {
	if p.destroyed {
		return ErrPoolDestroyed
	}

	heap, err := newStagingDescriptorHeap(p.device, p.heapType, p.heapDescriptorCount)
	if err != nil {
		return err
	}

	heapIndex := len(p.heaps)
	p.heaps = append(p.heaps, heap)

	slots := make([]StagingDescriptor, heap.maxDescriptors)
	for i := range slots {
		slots[i] = StagingDescriptor{
			PoolID:    p.id,
			HeapIndex: heapIndex,
			Index:     i,
			CPUHandle: heap.HandleAt(i),
		}
	}
	p.freeDescriptors.PushAll(slots...)

	core.LogDebug("staging descriptor pool %s (%s) grew to %d heaps", p.id, p.heapType, len(p.heaps))
	return nil
}

// Allocate checks out a free slot, growing the pool first if none is left.
func (p *StagingDescriptorPool) Allocate() (StagingDescriptor, error) {
	if p.destroyed {
		return StagingDescriptor{}, ErrPoolDestroyed
	}

	if p.freeDescriptors.IsEmpty() {
		if err := p.Expand(); err != nil {
			return StagingDescriptor{}, err
		}
	}

	d, err := p.freeDescriptors.Pop()
	if err != nil {
		return StagingDescriptor{}, err
	}
	p.heaps[d.HeapIndex].allocated[d.Index] = true
	return d, nil
}

// Release returns a slot to the free list, where it becomes the next slot to
// be allocated. Slots from other pools and slots that are not checked out are
// rejected.
func (p *StagingDescriptorPool) Release(d StagingDescriptor) error {
	if p.destroyed {
		return ErrPoolDestroyed
	}
	if !d.IsValid() {
		return ErrInvalidDescriptor
	}
	if d.PoolID != p.id {
		return errors.Wrapf(ErrDescriptorForeign, "descriptor from pool %s released to pool %s", d.PoolID, p.id)
	}
	if d.HeapIndex < 0 || d.HeapIndex >= len(p.heaps) {
		return errors.Wrapf(ErrInvalidDescriptor, "heap index %d out of range [0,%d)", d.HeapIndex, len(p.heaps))
	}

	heap := p.heaps[d.HeapIndex]
	if d.Index < 0 || d.Index >= heap.maxDescriptors {
		return errors.Wrapf(ErrInvalidDescriptor, "slot index %d out of range [0,%d)", d.Index, heap.maxDescriptors)
	}
	if !heap.allocated[d.Index] {
		return errors.Wrapf(ErrDescriptorNotAllocated, "heap %d slot %d", d.HeapIndex, d.Index)
	}
	if want := heap.HandleAt(d.Index); d.CPUHandle != want {
		return errors.Wrapf(ErrInvalidDescriptor, "heap %d slot %d has handle %#x, expected %#x", d.HeapIndex, d.Index, d.CPUHandle.Ptr, want.Ptr)
	}

	heap.allocated[d.Index] = false
	p.freeDescriptors.Push(d)
	return nil
}

// Destroy releases every heap of the pool. It is safe to call on a nil pool
// and more than once.
func (p *StagingDescriptorPool) Destroy() {
	if p == nil || p.destroyed {
		return
	}
	for _, heap := range p.heaps {
		heap.destroy()
	}
	p.heaps = nil
	p.freeDescriptors.Clear()
	p.destroyed = true
}

func (p *StagingDescriptorPool) ID() uuid.UUID {
	return p.id
}

func (p *StagingDescriptorPool) Type() DescriptorHeapType {
	return p.heapType
}

// HeapDescriptorCount is the capacity of each heap of the pool.
func (p *StagingDescriptorPool) HeapDescriptorCount() int {
	return p.heapDescriptorCount
}

// Capacity is the total number of slots across all heaps.
func (p *StagingDescriptorPool) Capacity() int {
	return len(p.heaps) * p.heapDescriptorCount
}

func (p *StagingDescriptorPool) FreeCount() int {
	return p.freeDescriptors.Len()
}

func (p *StagingDescriptorPool) InUseCount() int {
	return p.Capacity() - p.FreeCount()
}

func (p *StagingDescriptorPool) HeapCount() int {
	return len(p.heaps)
}

// Heap returns the i-th heap of the pool, or nil when out of range.
func (p *StagingDescriptorPool) Heap(i int) *StagingDescriptorHeap {
	if i < 0 || i >= len(p.heaps) {
		return nil
	}
	return p.heaps[i]
}

// IsDestroyed reports whether Destroy has been called.
func (p *StagingDescriptorPool) IsDestroyed() bool {
	return p.destroyed
}
