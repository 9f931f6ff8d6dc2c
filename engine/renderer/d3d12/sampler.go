package d3d12

import (
	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

// SamplerState is a sampler written into a staging sampler slot.
type SamplerState struct {
	device *Device

	Info    metadata.SamplerInfo
	Desc    SamplerDesc
	Sampler StagingDescriptor
}

func (d *Device) SamplerStateCreate(info *metadata.SamplerInfo) (*SamplerState, error) {
	if info == nil {
		return nil, errors.New("sampler info is nil")
	}
	ss := &SamplerState{
		device: d,
		Info:   *info,
		Desc: SamplerDesc{
			Filter:         ConvertFilter(info.Filter),
			AddressU:       ConvertAddressMode(info.AddressU),
			AddressV:       ConvertAddressMode(info.AddressV),
			AddressW:       ConvertAddressMode(info.AddressW),
			MaxAnisotropy:  info.MaxAnisotropy,
			ComparisonFunc: ComparisonFuncAlways,
			BorderColor:    unpackColor(info.BorderColor),
			MaxLOD:         maxLOD,
		},
	}

	slot, err := d.AssignStagingDescriptor(DescriptorHeapTypeSampler)
	if err != nil {
		return nil, err
	}
	ss.Sampler = slot
	d.native.CreateSampler(&ss.Desc, slot.CPUHandle)
	return ss, nil
}

func (ss *SamplerState) Destroy() {
	if ss == nil || ss.device == nil {
		return
	}
	ss.device.releaseSlot("sampler state", &ss.Sampler)
}
