package d3d12

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	// MaxRootSignatureParameters is the parameter budget of a root signature.
	MaxRootSignatureParameters = 64
	// MaxDescriptorRanges bounds the total number of ranges over all tables.
	MaxDescriptorRanges = 64
	// MaxUniformBuffersPerStage is the number of root CBVs a stage may use.
	MaxUniformBuffersPerStage = 4
	// InvalidRootIndex marks a resource category that has no root parameter.
	InvalidRootIndex = -1
)

// Register spaces of the graphics root signature layout. Vertex tables share
// space 0 with the inline constants; every other category has its own space.
const (
	VertexTableRegisterSpace         uint32 = 0
	VertexUniformBufferRegisterSpace uint32 = 1
	PixelTableRegisterSpace          uint32 = 2
	PixelUniformBufferRegisterSpace  uint32 = 3
	ConstantsRegisterSpace           uint32 = 0
)

// RootSignatureFlags matches D3D12_ROOT_SIGNATURE_FLAGS.
type RootSignatureFlags uint32

const (
	RootSignatureFlagNone                           RootSignatureFlags = 0
	RootSignatureFlagAllowInputAssemblerInputLayout RootSignatureFlags = 0x1
)

/**
 * @brief The description handed to the root signature serializer. Ranges are
 * owned by their table parameter.
 */
type RootSignatureDesc struct {
	/** @brief Root parameters in binding order. */
	Parameters []RootParameter
	/** @brief Always 0, samplers are bound through descriptor tables. */
	NumStaticSamplers uint32
	/** @brief Root signature flags. */
	Flags RootSignatureFlags
}

// RangeCount is the number of descriptor ranges across every table parameter.
func (d *RootSignatureDesc) RangeCount() int {
	n := 0
	for i := range d.Parameters {
		if d.Parameters[i].Type == RootParameterTypeDescriptorTable {
			n += len(d.Parameters[i].Ranges)
		}
	}
	return n
}

// Validate enforces the parameter and range budgets.
func (d *RootSignatureDesc) Validate() error {
	if len(d.Parameters) > MaxRootSignatureParameters {
		return errors.Wrapf(ErrLayoutLimit, "%d root parameters, at most %d allowed", len(d.Parameters), MaxRootSignatureParameters)
	}
	if n := d.RangeCount(); n > MaxDescriptorRanges {
		return errors.Wrapf(ErrLayoutLimit, "%d descriptor ranges, at most %d allowed", n, MaxDescriptorRanges)
	}
	return nil
}

func (d *RootSignatureDesc) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "RootSignature(%d params, %d ranges)", len(d.Parameters), d.RangeCount())
	for i, p := range d.Parameters {
		fmt.Fprintf(&sb, "\n  [%d] %s %s", i, p.Type, p.Visibility)
		switch p.Type {
		case RootParameterTypeDescriptorTable:
			for _, r := range p.Ranges {
				fmt.Fprintf(&sb, " {%s n=%d reg=%d space=%d}", r.Type, r.NumDescriptors, r.BaseShaderRegister, r.RegisterSpace)
			}
		case RootParameterType32BitConstants:
			fmt.Fprintf(&sb, " reg=%d space=%d values=%d", p.Constants.ShaderRegister, p.Constants.RegisterSpace, p.Constants.Num32BitValues)
		default:
			fmt.Fprintf(&sb, " reg=%d space=%d", p.Descriptor.ShaderRegister, p.Descriptor.RegisterSpace)
		}
	}
	return sb.String()
}

// ShaderResourceCounts is the reflected resource usage of one shader stage.
type ShaderResourceCounts struct {
	Samplers        uint32
	StorageTextures uint32
	StorageBuffers  uint32
	UniformBuffers  uint32
	// Uniform32BitConstants is the size of the inline constants block in
	// 32-bit values. Zero means the stage has none.
	Uniform32BitConstants uint32
}

// StageRootIndices maps every resource category of a stage to its root
// parameter index, or InvalidRootIndex when the stage does not use it.
type StageRootIndices struct {
	Sampler               int
	SamplerTexture        int
	StorageTexture        int
	StorageBuffer         int
	UniformBuffers        [MaxUniformBuffersPerStage]int
	Uniform32BitConstants int
}

func newStageRootIndices() StageRootIndices {
	s := StageRootIndices{
		Sampler:               InvalidRootIndex,
		SamplerTexture:        InvalidRootIndex,
		StorageTexture:        InvalidRootIndex,
		StorageBuffer:         InvalidRootIndex,
		Uniform32BitConstants: InvalidRootIndex,
	}
	for i := range s.UniformBuffers {
		s.UniformBuffers[i] = InvalidRootIndex
	}
	return s
}

type RootIndices struct {
	Vertex StageRootIndices
	Pixel  StageRootIndices
}

// NewRootIndices returns a table with every category unused.
func NewRootIndices() RootIndices {
	return RootIndices{
		Vertex: newStageRootIndices(),
		Pixel:  newStageRootIndices(),
	}
}

type rootSignatureBuilder struct {
	params []RootParameter
}

func (b *rootSignatureBuilder) add(p RootParameter) int {
	b.params = append(b.params, p)
	return len(b.params) - 1
}

func (b *rootSignatureBuilder) table(t DescriptorRangeType, register, count, space uint32, visibility ShaderVisibility) int {
	var p RootParameter
	p.InitAsDescriptorRange(t, register, count, visibility)
	return b.add(*p.WithRegisterSpace(space))
}

func (b *rootSignatureBuilder) stage(c ShaderResourceCounts, visibility ShaderVisibility, tableSpace, uniformSpace uint32, idx *StageRootIndices) {
	if c.Samplers > 0 {
		idx.Sampler = b.table(DescriptorRangeTypeSampler, 0, c.Samplers, tableSpace, visibility)
		idx.SamplerTexture = b.table(DescriptorRangeTypeSRV, 0, c.Samplers, tableSpace, visibility)
	}
	if c.StorageTextures > 0 {
		idx.StorageTexture = b.table(DescriptorRangeTypeSRV, c.Samplers, c.StorageTextures, tableSpace, visibility)
	}
	if c.StorageBuffers > 0 {
		idx.StorageBuffer = b.table(DescriptorRangeTypeSRV, c.Samplers+c.StorageTextures, c.StorageBuffers, tableSpace, visibility)
	}
	for i := uint32(0); i < c.UniformBuffers; i++ {
		var p RootParameter
		p.InitAsConstantBuffer(i, visibility)
		idx.UniformBuffers[i] = b.add(*p.WithRegisterSpace(uniformSpace))
	}
	if c.Uniform32BitConstants > 0 {
		var p RootParameter
		p.InitAsConstants(0, c.Uniform32BitConstants, visibility)
		idx.Uniform32BitConstants = b.add(*p.WithRegisterSpace(ConstantsRegisterSpace))
	}
}

// BuildGraphicsRootSignatureDesc derives the root signature of a vertex and
// pixel shader pair. The parameter order is part of the contract with the
// compiled shaders: for each stage, vertex first, come the sampler table, the
// sampled texture table, the storage texture table, the storage buffer table,
// one root CBV per uniform buffer and finally the inline constants. Unused
// categories take no parameter and keep InvalidRootIndex.
func BuildGraphicsRootSignatureDesc(vs, ps ShaderResourceCounts) (*RootSignatureDesc, RootIndices, error) {
	indices := NewRootIndices()

	if vs.UniformBuffers > MaxUniformBuffersPerStage {
		return nil, indices, errors.Wrapf(ErrLayoutLimit, "vertex stage uses %d uniform buffers, at most %d allowed", vs.UniformBuffers, MaxUniformBuffersPerStage)
	}
	if ps.UniformBuffers > MaxUniformBuffersPerStage {
		return nil, indices, errors.Wrapf(ErrLayoutLimit, "pixel stage uses %d uniform buffers, at most %d allowed", ps.UniformBuffers, MaxUniformBuffersPerStage)
	}

	b := &rootSignatureBuilder{params: make([]RootParameter, 0, MaxRootSignatureParameters)}
	b.stage(vs, ShaderVisibilityVertex, VertexTableRegisterSpace, VertexUniformBufferRegisterSpace, &indices.Vertex)
	b.stage(ps, ShaderVisibilityPixel, PixelTableRegisterSpace, PixelUniformBufferRegisterSpace, &indices.Pixel)

	desc := &RootSignatureDesc{
		Parameters:        b.params,
		NumStaticSamplers: 0,
		Flags:             RootSignatureFlagAllowInputAssemblerInputLayout,
	}
	if err := desc.Validate(); err != nil {
		return nil, NewRootIndices(), err
	}
	return desc, indices, nil
}

// CreateRootSignature validates desc, serializes it and creates the native
// object from the blob. Serializer diagnostics end up in the error message
// and as an error detail.
func CreateRootSignature(device NativeDevice, desc *RootSignatureDesc) (NativeRootSignature, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	blob, diagnostics, err := device.SerializeRootSignature(desc)
	if err != nil {
		msg := "failed to serialize root signature"
		if diagnostics = strings.TrimSpace(diagnostics); diagnostics != "" {
			msg += ": " + diagnostics
		}
		serr := newHRError(msg, err)
		if diagnostics != "" {
			serr = errors.WithDetail(serr, diagnostics)
		}
		return nil, errors.Mark(serr, ErrSerializeRootSignature)
	}

	rs, err := device.CreateRootSignature(blob)
	if err != nil {
		return nil, newHRError("failed to create root signature", err)
	}
	return rs, nil
}

/**
 * @brief A created root signature together with the layout it was built from.
 */
type GraphicsRootSignature struct {
	/** @brief The driver object. */
	Native NativeRootSignature
	/** @brief The description that was serialized. */
	Desc *RootSignatureDesc
	/** @brief Root parameter index per resource category. */
	Indices RootIndices
}

// NewGraphicsRootSignature builds and creates the root signature of a vertex
// and pixel shader pair.
func NewGraphicsRootSignature(device NativeDevice, vs, ps ShaderResourceCounts) (*GraphicsRootSignature, error) {
	desc, indices, err := BuildGraphicsRootSignatureDesc(vs, ps)
	if err != nil {
		return nil, err
	}
	rs, err := CreateRootSignature(device, desc)
	if err != nil {
		return nil, err
	}
	return &GraphicsRootSignature{
		Native:  rs,
		Desc:    desc,
		Indices: indices,
	}, nil
}

func (rs *GraphicsRootSignature) Destroy() {
	if rs == nil || rs.Native == nil {
		return
	}
	rs.Native.Release()
	rs.Native = nil
}
