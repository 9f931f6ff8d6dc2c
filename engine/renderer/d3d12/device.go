package d3d12

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"golang.org/x/exp/maps"

	"github.com/spaghettifunk/anima-dx12/engine/core"
)

/**
 * @brief Sizes of the descriptor heaps owned by a device.
 */
type DeviceConfig struct {
	/** @brief Capacity of each staging heap. Pools grow one heap at a time. */
	StagingHeapDescriptorCount int `toml:"staging_heap_descriptor_count"`
	/** @brief Capacity of the shader visible CBV/SRV/UAV heap. */
	GPUViewDescriptorCount int `toml:"gpu_view_descriptor_count"`
	/** @brief Capacity of the shader visible sampler heap. */
	GPUSamplerDescriptorCount int `toml:"gpu_sampler_descriptor_count"`
}

func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		StagingHeapDescriptorCount: StagingHeapDescriptorCount,
		GPUViewDescriptorCount:     ViewGPUDescriptorCount,
		GPUSamplerDescriptorCount:  SamplerGPUDescriptorCount,
	}
}

// ApplyDefaults fills every zero field with its default.
func (c *DeviceConfig) ApplyDefaults() {
	def := DefaultDeviceConfig()
	if c.StagingHeapDescriptorCount == 0 {
		c.StagingHeapDescriptorCount = def.StagingHeapDescriptorCount
	}
	if c.GPUViewDescriptorCount == 0 {
		c.GPUViewDescriptorCount = def.GPUViewDescriptorCount
	}
	if c.GPUSamplerDescriptorCount == 0 {
		c.GPUSamplerDescriptorCount = def.GPUSamplerDescriptorCount
	}
}

func (c *DeviceConfig) Validate() error {
	if c.StagingHeapDescriptorCount < 0 {
		return errors.Newf("staging_heap_descriptor_count must not be negative (0 selects the default), got %d", c.StagingHeapDescriptorCount)
	}
	if c.GPUViewDescriptorCount < 0 {
		return errors.Newf("gpu_view_descriptor_count must not be negative (0 selects the default), got %d", c.GPUViewDescriptorCount)
	}
	if c.GPUSamplerDescriptorCount < 0 || c.GPUSamplerDescriptorCount > SamplerGPUDescriptorCount {
		return errors.Newf("gpu_sampler_descriptor_count must be in [0,%d] (0 selects the default), got %d", SamplerGPUDescriptorCount, c.GPUSamplerDescriptorCount)
	}
	return nil
}

// PoolStats is a snapshot of one staging pool.
type PoolStats struct {
	ID       uuid.UUID
	Type     DescriptorHeapType
	Heaps    int
	Capacity int
	Free     int
	InUse    int
}

/**
 * @brief The descriptor side of a graphics device: one staging pool per heap
 * kind, the shader visible heaps and the objects built on them. All methods
 * must be called from the rendering thread.
 */
type Device struct {
	/** @brief The driver device. Owned by the Device. */
	native NativeDevice
	/** @brief The effective configuration. */
	config DeviceConfig
	/** @brief One staging pool per descriptor heap kind. */
	pools [DescriptorHeapTypeCount]*StagingDescriptorPool
	/** @brief Pools by ID, used to route descriptor releases. */
	registry map[uuid.UUID]*StagingDescriptorPool
	/** @brief Shader visible CBV/SRV/UAV heap. */
	gpuViewHeap *GPUDescriptorHeap
	/** @brief Shader visible sampler heap. */
	gpuSamplerHeap *GPUDescriptorHeap
	/** @brief Set by Shutdown. */
	shutdown bool
}

// NewDevice creates the staging pools and shader visible heaps on top of
// native. On failure everything created so far is released, native included.
func NewDevice(native NativeDevice, config *DeviceConfig) (_ *Device, ferr error) {
	if native == nil {
		return nil, errors.New("d3d12 device requires a native device")
	}

	cfg := DefaultDeviceConfig()
	if config != nil {
		cfg = *config
		cfg.ApplyDefaults()
	}
	if err := cfg.Validate(); err != nil {
		native.Release()
		return nil, err
	}

	d := &Device{
		native:   native,
		config:   cfg,
		registry: make(map[uuid.UUID]*StagingDescriptorPool),
	}
	defer func() {
		if ferr != nil {
			d.Shutdown()
		}
	}()

	for t := DescriptorHeapTypeCBVSRVUAV; t < DescriptorHeapTypeCount; t++ {
		pool, err := NewStagingDescriptorPool(native, t, cfg.StagingHeapDescriptorCount)
		if err != nil {
			return nil, errors.Wrapf(err, "creating %s staging pool", t)
		}
		d.pools[t] = pool
		d.registry[pool.ID()] = pool
	}

	var err error
	if d.gpuViewHeap, err = NewGPUDescriptorHeap(native, DescriptorHeapTypeCBVSRVUAV, cfg.GPUViewDescriptorCount); err != nil {
		return nil, err
	}
	if d.gpuSamplerHeap, err = NewGPUDescriptorHeap(native, DescriptorHeapTypeSampler, cfg.GPUSamplerDescriptorCount); err != nil {
		return nil, err
	}

	core.LogInfo("D3D12 device created: staging heaps of %d descriptors, %d view and %d sampler GPU descriptors",
		cfg.StagingHeapDescriptorCount, cfg.GPUViewDescriptorCount, cfg.GPUSamplerDescriptorCount)
	return d, nil
}

func (d *Device) Native() NativeDevice {
	return d.native
}

func (d *Device) Config() DeviceConfig {
	return d.config
}

// Pool returns the staging pool of kind t, or nil for an unknown kind.
func (d *Device) Pool(t DescriptorHeapType) *StagingDescriptorPool {
	if !t.valid() {
		return nil
	}
	return d.pools[t]
}

// GPUHeap returns the shader visible heap of kind t. Only CBV/SRV/UAV and
// sampler heaps exist.
func (d *Device) GPUHeap(t DescriptorHeapType) *GPUDescriptorHeap {
	switch t {
	case DescriptorHeapTypeCBVSRVUAV:
		return d.gpuViewHeap
	case DescriptorHeapTypeSampler:
		return d.gpuSamplerHeap
	}
	return nil
}

// AssignStagingDescriptor checks out a slot of kind t.
func (d *Device) AssignStagingDescriptor(t DescriptorHeapType) (StagingDescriptor, error) {
	if !t.valid() {
		return StagingDescriptor{}, errors.Wrapf(ErrInvalidHeapType, "assign staging descriptor of type %d", int32(t))
	}
	pool := d.pools[t]
	if pool == nil {
		return StagingDescriptor{}, ErrPoolDestroyed
	}
	return pool.Allocate()
}

// ReleaseStagingDescriptor hands desc back to the pool it came from and
// resets it to the unassigned state. Releasing an unassigned descriptor is a
// no-op.
func (d *Device) ReleaseStagingDescriptor(desc *StagingDescriptor) error {
	if desc == nil || !desc.IsValid() {
		return nil
	}
	pool, ok := d.registry[desc.PoolID]
	if !ok {
		if d.shutdown {
			return errors.Wrapf(ErrPoolDestroyed, "device shut down before %s was released", desc)
		}
		return errors.Wrapf(ErrDescriptorForeign, "no pool %s on this device", desc.PoolID)
	}
	if err := pool.Release(*desc); err != nil {
		return err
	}
	*desc = StagingDescriptor{}
	return nil
}

// releaseSlot releases a slot owned by a device object. Failures are logged,
// the slot is left as it was.
func (d *Device) releaseSlot(owner string, desc *StagingDescriptor) {
	if err := d.ReleaseStagingDescriptor(desc); err != nil {
		core.LogWarn("%s: releasing %s: %s", owner, desc, err)
	}
}

// Stats reports every staging pool, ordered by heap kind.
func (d *Device) Stats() []PoolStats {
	ids := maps.Keys(d.registry)
	stats := make([]PoolStats, 0, len(ids))
	for _, id := range ids {
		p := d.registry[id]
		stats = append(stats, PoolStats{
			ID:       id,
			Type:     p.Type(),
			Heaps:    p.HeapCount(),
			Capacity: p.Capacity(),
			Free:     p.FreeCount(),
			InUse:    p.InUseCount(),
		})
	}
	slices.SortFunc(stats, func(a, b PoolStats) int {
		return int(a.Type) - int(b.Type)
	})
	return stats
}

// Shutdown destroys pools, GPU heaps and finally the native device. Safe to
// call on a nil device and more than once.
func (d *Device) Shutdown() {
	if d == nil {
		return
	}
	d.shutdown = true
	for t := range d.pools {
		if d.pools[t] != nil {
			delete(d.registry, d.pools[t].ID())
			d.pools[t].Destroy()
			d.pools[t] = nil
		}
	}
	d.gpuViewHeap.Destroy()
	d.gpuViewHeap = nil
	d.gpuSamplerHeap.Destroy()
	d.gpuSamplerHeap = nil

	if d.native != nil {
		d.native.Release()
		d.native = nil
	}
}
