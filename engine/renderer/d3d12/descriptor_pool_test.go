package d3d12_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-dx12/engine/renderer/d3d12"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/d3d12/soft"
)

func newPool(t *testing.T, dev *soft.Device, heapType d3d12.DescriptorHeapType, capacity int) *d3d12.StagingDescriptorPool {
	t.Helper()
	pool, err := d3d12.NewStagingDescriptorPool(dev, heapType, capacity)
	require.NoError(t, err)
	t.Cleanup(pool.Destroy)
	return pool
}

func assertCapacityInvariant(t *testing.T, pool *d3d12.StagingDescriptorPool) {
	t.Helper()
	assert.Equal(t, pool.HeapCount()*pool.HeapDescriptorCount(), pool.FreeCount()+pool.InUseCount())
}

func TestPoolStartsWithOneFreeHeap(t *testing.T) {
	pool := newPool(t, soft.New(), d3d12.DescriptorHeapTypeRTV, 16)

	assert.Equal(t, d3d12.DescriptorHeapTypeRTV, pool.Type())
	assert.Equal(t, 1, pool.HeapCount())
	assert.Equal(t, 16, pool.Capacity())
	assert.Equal(t, 16, pool.FreeCount())
	assert.Equal(t, 0, pool.InUseCount())
	assert.NotEqual(t, uuid.Nil, pool.ID())
}

func TestPoolDefaultHeapSize(t *testing.T) {
	pool := newPool(t, soft.New(), d3d12.DescriptorHeapTypeCBVSRVUAV, 0)
	assert.Equal(t, d3d12.StagingHeapDescriptorCount, pool.HeapDescriptorCount())
}

func TestPoolAllocateWithoutGrowth(t *testing.T) {
	pool := newPool(t, soft.New(), d3d12.DescriptorHeapTypeCBVSRVUAV, 64)

	seen := make(map[uintptr]bool)
	for i := 0; i < 40; i++ {
		d, err := pool.Allocate()
		require.NoError(t, err)
		assert.False(t, seen[d.CPUHandle.Ptr], "handle %#x handed out twice", d.CPUHandle.Ptr)
		seen[d.CPUHandle.Ptr] = true
		assertCapacityInvariant(t, pool)
	}

	assert.Equal(t, 1, pool.HeapCount())
	assert.Equal(t, 24, pool.FreeCount())
	assert.Equal(t, 40, pool.InUseCount())
}

func TestPoolGrowsByOneHeap(t *testing.T) {
	dev := soft.New()
	pool := newPool(t, dev, d3d12.DescriptorHeapTypeSampler, 8)

	for i := 0; i < 9; i++ {
		_, err := pool.Allocate()
		require.NoError(t, err)
	}

	assert.Equal(t, 2, pool.HeapCount())
	assert.Equal(t, 16, pool.Capacity())
	assert.Equal(t, 7, pool.FreeCount())
	assert.Equal(t, 2, dev.Calls.CreateDescriptorHeap)
	assertCapacityInvariant(t, pool)
}

func TestPoolHandlesFollowHeapLayout(t *testing.T) {
	pool := newPool(t, soft.New(), d3d12.DescriptorHeapTypeDSV, 4)

	for i := 0; i < 10; i++ {
		d, err := pool.Allocate()
		require.NoError(t, err)

		heap := pool.Heap(d.HeapIndex)
		require.NotNil(t, heap)
		want := heap.CPUStart().Ptr + uintptr(d.Index)*uintptr(heap.DescriptorSize())
		assert.Equal(t, want, d.CPUHandle.Ptr)
		assert.Equal(t, pool.ID(), d.PoolID)
	}
	assert.Equal(t, 3, pool.HeapCount())
	assert.Nil(t, pool.Heap(3))
	assert.Nil(t, pool.Heap(-1))
}

func TestPoolReleaseIsReusedFirst(t *testing.T) {
	pool := newPool(t, soft.New(), d3d12.DescriptorHeapTypeCBVSRVUAV, 32)

	_, err := pool.Allocate()
	require.NoError(t, err)
	d, err := pool.Allocate()
	require.NoError(t, err)
	_, err = pool.Allocate()
	require.NoError(t, err)

	require.NoError(t, pool.Release(d))
	assertCapacityInvariant(t, pool)

	again, err := pool.Allocate()
	require.NoError(t, err)
	assert.Equal(t, d, again)
}

func TestPoolExhaustHeapThenGrow(t *testing.T) {
	dev := soft.New()
	pool := newPool(t, dev, d3d12.DescriptorHeapTypeCBVSRVUAV, 1024)

	for i := 0; i < 1024; i++ {
		_, err := pool.Allocate()
		require.NoError(t, err)
	}
	assert.Equal(t, 1, pool.HeapCount())
	assert.Equal(t, 0, pool.FreeCount())

	_, err := pool.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 2, pool.HeapCount())
	assert.Equal(t, 2048, pool.Capacity())
	assert.Equal(t, 1023, pool.FreeCount())
}

func TestPoolRejectsDoubleRelease(t *testing.T) {
	pool := newPool(t, soft.New(), d3d12.DescriptorHeapTypeRTV, 8)

	d, err := pool.Allocate()
	require.NoError(t, err)
	require.NoError(t, pool.Release(d))

	err = pool.Release(d)
	require.Error(t, err)
	assert.ErrorIs(t, err, d3d12.ErrDescriptorNotAllocated)
	assert.Equal(t, 8, pool.FreeCount())
	assertCapacityInvariant(t, pool)

	// the slot is still handed out only once
	first, err := pool.Allocate()
	require.NoError(t, err)
	second, err := pool.Allocate()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestPoolRejectsForeignAndInvalidDescriptors(t *testing.T) {
	dev := soft.New()
	a := newPool(t, dev, d3d12.DescriptorHeapTypeRTV, 8)
	b := newPool(t, dev, d3d12.DescriptorHeapTypeRTV, 8)

	d, err := a.Allocate()
	require.NoError(t, err)

	assert.ErrorIs(t, b.Release(d), d3d12.ErrDescriptorForeign)
	assert.ErrorIs(t, a.Release(d3d12.StagingDescriptor{}), d3d12.ErrInvalidDescriptor)

	outOfRange := d
	outOfRange.HeapIndex = 5
	assert.ErrorIs(t, a.Release(outOfRange), d3d12.ErrInvalidDescriptor)

	outOfRange = d
	outOfRange.Index = 8
	assert.ErrorIs(t, a.Release(outOfRange), d3d12.ErrInvalidDescriptor)

	// a slot whose handle no longer matches its heap position stays checked out
	tampered := d
	tampered.CPUHandle.Ptr++
	assert.ErrorIs(t, a.Release(tampered), d3d12.ErrInvalidDescriptor)
	assert.Equal(t, 1, a.InUseCount())

	require.NoError(t, a.Release(d))
	again, err := a.Allocate()
	require.NoError(t, err)
	assert.Equal(t, a.Heap(0).HandleAt(again.Index), again.CPUHandle)
	assert.Equal(t, d, again)
}

func TestPoolFailedGrowthLeavesPoolUnchanged(t *testing.T) {
	dev := soft.New()
	pool := newPool(t, dev, d3d12.DescriptorHeapTypeCBVSRVUAV, 2)
	dev.FailHeapCreationAfter = dev.HeapsCreated()

	for i := 0; i < 2; i++ {
		_, err := pool.Allocate()
		require.NoError(t, err)
	}

	_, err := pool.Allocate()
	require.Error(t, err)
	hr, ok := d3d12.StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, d3d12.EOutOfMemory, hr)
	assert.Contains(t, err.Error(), "failed to create staging desc heap")

	assert.Equal(t, 1, pool.HeapCount())
	assert.Equal(t, 0, pool.FreeCount())
	assertCapacityInvariant(t, pool)

	dev.FailHeapCreationAfter = -1
	_, err = pool.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 2, pool.HeapCount())
}

func TestPoolCreationFailure(t *testing.T) {
	dev := soft.New()
	dev.FailHeapCreationAfter = 0

	pool, err := d3d12.NewStagingDescriptorPool(dev, d3d12.DescriptorHeapTypeCBVSRVUAV, 4)
	require.Error(t, err)
	assert.Nil(t, pool)

	_, err = d3d12.NewStagingDescriptorPool(soft.New(), d3d12.DescriptorHeapTypeCount, 4)
	assert.ErrorIs(t, err, d3d12.ErrInvalidHeapType)

	_, err = d3d12.NewStagingDescriptorPool(nil, d3d12.DescriptorHeapTypeRTV, 4)
	assert.Error(t, err)
}

func TestPoolDestroy(t *testing.T) {
	dev := soft.New()
	pool, err := d3d12.NewStagingDescriptorPool(dev, d3d12.DescriptorHeapTypeSampler, 4)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := pool.Allocate()
		require.NoError(t, err)
	}
	require.Equal(t, 2, dev.LiveHeaps())

	pool.Destroy()
	pool.Destroy()
	assert.True(t, pool.IsDestroyed())
	assert.Equal(t, 0, dev.LiveHeaps())
	assert.Equal(t, 0, dev.DoubleReleases())

	_, err = pool.Allocate()
	assert.ErrorIs(t, err, d3d12.ErrPoolDestroyed)
	assert.ErrorIs(t, pool.Expand(), d3d12.ErrPoolDestroyed)

	var nilPool *d3d12.StagingDescriptorPool
	assert.NotPanics(t, nilPool.Destroy)
}
