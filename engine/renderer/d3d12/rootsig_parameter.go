package d3d12

// RootParameterType matches D3D12_ROOT_PARAMETER_TYPE.
type RootParameterType int32

const (
	RootParameterTypeDescriptorTable RootParameterType = 0
	RootParameterType32BitConstants  RootParameterType = 1
	RootParameterTypeCBV             RootParameterType = 2
	RootParameterTypeSRV             RootParameterType = 3
	RootParameterTypeUAV             RootParameterType = 4
)

func (t RootParameterType) String() string {
	switch t {
	case RootParameterTypeDescriptorTable:
		return "DESCRIPTOR_TABLE"
	case RootParameterType32BitConstants:
		return "32BIT_CONSTANTS"
	case RootParameterTypeCBV:
		return "CBV"
	case RootParameterTypeSRV:
		return "SRV"
	case RootParameterTypeUAV:
		return "UAV"
	}
	return "UNKNOWN"
}

// ShaderVisibility matches D3D12_SHADER_VISIBILITY.
type ShaderVisibility int32

const (
	ShaderVisibilityAll      ShaderVisibility = 0
	ShaderVisibilityVertex   ShaderVisibility = 1
	ShaderVisibilityHull     ShaderVisibility = 2
	ShaderVisibilityDomain   ShaderVisibility = 3
	ShaderVisibilityGeometry ShaderVisibility = 4
	ShaderVisibilityPixel    ShaderVisibility = 5
)

func (v ShaderVisibility) String() string {
	switch v {
	case ShaderVisibilityAll:
		return "ALL"
	case ShaderVisibilityVertex:
		return "VERTEX"
	case ShaderVisibilityHull:
		return "HULL"
	case ShaderVisibilityDomain:
		return "DOMAIN"
	case ShaderVisibilityGeometry:
		return "GEOMETRY"
	case ShaderVisibilityPixel:
		return "PIXEL"
	}
	return "UNKNOWN"
}

// DescriptorRangeType matches D3D12_DESCRIPTOR_RANGE_TYPE.
type DescriptorRangeType int32

const (
	DescriptorRangeTypeSRV     DescriptorRangeType = 0
	DescriptorRangeTypeUAV     DescriptorRangeType = 1
	DescriptorRangeTypeCBV     DescriptorRangeType = 2
	DescriptorRangeTypeSampler DescriptorRangeType = 3
)

func (t DescriptorRangeType) String() string {
	switch t {
	case DescriptorRangeTypeSRV:
		return "SRV"
	case DescriptorRangeTypeUAV:
		return "UAV"
	case DescriptorRangeTypeCBV:
		return "CBV"
	case DescriptorRangeTypeSampler:
		return "SAMPLER"
	}
	return "UNKNOWN"
}

// DescriptorRangeOffsetAppend places a range right after the previous one in
// its table.
const DescriptorRangeOffsetAppend uint32 = 0xffffffff

type DescriptorRange struct {
	Type                              DescriptorRangeType
	NumDescriptors                    uint32
	BaseShaderRegister                uint32
	RegisterSpace                     uint32
	OffsetInDescriptorsFromTableStart uint32
}

// RootConstants is the payload of a 32-bit constants parameter.
type RootConstants struct {
	ShaderRegister uint32
	RegisterSpace  uint32
	Num32BitValues uint32
}

// RootDescriptor is the payload of a root CBV/SRV/UAV parameter.
type RootDescriptor struct {
	ShaderRegister uint32
	RegisterSpace  uint32
}

/**
 * @brief One entry of a root signature. Which payload is meaningful depends on
 * Type: Ranges for descriptor tables, Constants for inline constants and
 * Descriptor for root CBV/SRV/UAV.
 */
type RootParameter struct {
	Type       RootParameterType
	Visibility ShaderVisibility
	Constants  RootConstants
	Descriptor RootDescriptor
	Ranges     []DescriptorRange
}

// InitAsConstants makes p an inline constants block of numDwords values.
func (p *RootParameter) InitAsConstants(register, numDwords uint32, visibility ShaderVisibility) {
	*p = RootParameter{
		Type:       RootParameterType32BitConstants,
		Visibility: visibility,
		Constants: RootConstants{
			ShaderRegister: register,
			Num32BitValues: numDwords,
		},
	}
}

func (p *RootParameter) InitAsConstantBuffer(register uint32, visibility ShaderVisibility) {
	p.initAsDescriptor(RootParameterTypeCBV, register, visibility)
}

func (p *RootParameter) InitAsBufferSRV(register uint32, visibility ShaderVisibility) {
	p.initAsDescriptor(RootParameterTypeSRV, register, visibility)
}

func (p *RootParameter) InitAsBufferUAV(register uint32, visibility ShaderVisibility) {
	p.initAsDescriptor(RootParameterTypeUAV, register, visibility)
}

func (p *RootParameter) initAsDescriptor(t RootParameterType, register uint32, visibility ShaderVisibility) {
	*p = RootParameter{
		Type:       t,
		Visibility: visibility,
		Descriptor: RootDescriptor{ShaderRegister: register},
	}
}

// InitAsDescriptorRange makes p a descriptor table holding a single range of
// count descriptors starting at register.
func (p *RootParameter) InitAsDescriptorRange(t DescriptorRangeType, register, count uint32, visibility ShaderVisibility) {
	*p = RootParameter{
		Type:       RootParameterTypeDescriptorTable,
		Visibility: visibility,
		Ranges: []DescriptorRange{{
			Type:                              t,
			NumDescriptors:                    count,
			BaseShaderRegister:                register,
			OffsetInDescriptorsFromTableStart: DescriptorRangeOffsetAppend,
		}},
	}
}

// WithRegisterSpace moves every register of p into space and returns p.
func (p *RootParameter) WithRegisterSpace(space uint32) *RootParameter {
	switch p.Type {
	case RootParameterTypeDescriptorTable:
		for i := range p.Ranges {
			p.Ranges[i].RegisterSpace = space
		}
	case RootParameterType32BitConstants:
		p.Constants.RegisterSpace = space
	default:
		p.Descriptor.RegisterSpace = space
	}
	return p
}
