package soft

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/anima-dx12/engine/renderer/d3d12"
)

// maxRootSignatureDWords is the size limit of a root signature in 32-bit
// values: a table costs 1, a root descriptor 2, constants one per value.
const maxRootSignatureDWords = 64

var blobMagic = [4]byte{'S', 'R', 'S', '0'}

// registerClass is the register file a binding lives in: t, u, b or s.
type registerClass byte

func rangeClass(t d3d12.DescriptorRangeType) registerClass {
	switch t {
	case d3d12.DescriptorRangeTypeSRV:
		return 't'
	case d3d12.DescriptorRangeTypeUAV:
		return 'u'
	case d3d12.DescriptorRangeTypeCBV:
		return 'b'
	}
	return 's'
}

type binding struct {
	class      registerClass
	space      uint32
	lo, hi     uint64
	visibility d3d12.ShaderVisibility
	param      int
	slot       int
}

func (b binding) String() string {
	if b.slot >= 0 {
		return fmt.Sprintf("root parameter [%d], visibility %s, descriptor table slot [%d]", b.param, b.visibility, b.slot)
	}
	return fmt.Sprintf("root parameter [%d], visibility %s", b.param, b.visibility)
}

func (b binding) overlaps(o binding) bool {
	if b.class != o.class || b.space != o.space {
		return false
	}
	if b.visibility != o.visibility && b.visibility != d3d12.ShaderVisibilityAll && o.visibility != d3d12.ShaderVisibilityAll {
		return false
	}
	return b.lo <= o.hi && o.lo <= b.hi
}

func (d *Device) SerializeRootSignature(desc *d3d12.RootSignatureDesc) ([]byte, string, error) {
	d.Calls.SerializeRootSignature++

	if problems := validateRootSignature(desc); len(problems) > 0 {
		return nil, strings.Join(problems, "\n"), d3d12.EInvalidArg
	}
	return encodeRootSignature(desc), "", nil
}

func validateRootSignature(desc *d3d12.RootSignatureDesc) []string {
	var problems []string
	var bindings []binding
	cost := 0

	if desc.NumStaticSamplers != 0 {
		problems = append(problems, "Static samplers are not supported.")
	}

	for i, p := range desc.Parameters {
		if p.Visibility < d3d12.ShaderVisibilityAll || p.Visibility > d3d12.ShaderVisibilityPixel {
			problems = append(problems, fmt.Sprintf("Root parameter [%d] has an invalid shader visibility %d.", i, p.Visibility))
		}

		switch p.Type {
		case d3d12.RootParameterTypeDescriptorTable:
			cost++
			if len(p.Ranges) == 0 {
				problems = append(problems, fmt.Sprintf("Root parameter [%d] is a descriptor table with no ranges.", i))
			}
			samplers, others := 0, 0
			for j, r := range p.Ranges {
				if r.Type < d3d12.DescriptorRangeTypeSRV || r.Type > d3d12.DescriptorRangeTypeSampler {
					problems = append(problems, fmt.Sprintf("Descriptor range [%d] of root parameter [%d] has an invalid type %d.", j, i, r.Type))
					continue
				}
				if r.NumDescriptors == 0 {
					problems = append(problems, fmt.Sprintf("Descriptor range [%d] of root parameter [%d] declares 0 descriptors.", j, i))
					continue
				}
				if r.Type == d3d12.DescriptorRangeTypeSampler {
					samplers++
				} else {
					others++
				}
				hi := uint64(math.MaxUint32)
				if r.NumDescriptors != math.MaxUint32 {
					hi = uint64(r.BaseShaderRegister) + uint64(r.NumDescriptors) - 1
				}
				bindings = append(bindings, binding{
					class:      rangeClass(r.Type),
					space:      r.RegisterSpace,
					lo:         uint64(r.BaseShaderRegister),
					hi:         hi,
					visibility: p.Visibility,
					param:      i,
					slot:       j,
				})
			}
			if samplers > 0 && others > 0 {
				problems = append(problems, fmt.Sprintf("Root parameter [%d] mixes sampler ranges with other range types.", i))
			}

		case d3d12.RootParameterType32BitConstants:
			cost += int(p.Constants.Num32BitValues)
			if p.Constants.Num32BitValues == 0 {
				problems = append(problems, fmt.Sprintf("Root parameter [%d] declares 0 32-bit constants.", i))
			}
			bindings = append(bindings, binding{
				class:      'b',
				space:      p.Constants.RegisterSpace,
				lo:         uint64(p.Constants.ShaderRegister),
				hi:         uint64(p.Constants.ShaderRegister),
				visibility: p.Visibility,
				param:      i,
				slot:       -1,
			})

		case d3d12.RootParameterTypeCBV, d3d12.RootParameterTypeSRV, d3d12.RootParameterTypeUAV:
			cost += 2
			class := registerClass('b')
			if p.Type == d3d12.RootParameterTypeSRV {
				class = 't'
			} else if p.Type == d3d12.RootParameterTypeUAV {
				class = 'u'
			}
			bindings = append(bindings, binding{
				class:      class,
				space:      p.Descriptor.RegisterSpace,
				lo:         uint64(p.Descriptor.ShaderRegister),
				hi:         uint64(p.Descriptor.ShaderRegister),
				visibility: p.Visibility,
				param:      i,
				slot:       -1,
			})

		default:
			problems = append(problems, fmt.Sprintf("Root parameter [%d] has an invalid type %d.", i, p.Type))
		}
	}

	for i := range bindings {
		for j := i + 1; j < len(bindings); j++ {
			if bindings[i].overlaps(bindings[j]) {
				problems = append(problems, fmt.Sprintf(
					"Shader register range of type %c (%s) overlaps with another shader register range (%s) in space %d.",
					bindings[j].class, bindings[j], bindings[i], bindings[j].space))
			}
		}
	}

	if cost > maxRootSignatureDWords {
		problems = append(problems, fmt.Sprintf("Root signature size of %d DWORDs exceeds the maximum of %d.", cost, maxRootSignatureDWords))
	}
	return problems
}

func encodeRootSignature(desc *d3d12.RootSignatureDesc) []byte {
	var buf bytes.Buffer
	buf.Write(blobMagic[:])
	put := func(v uint32) {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}

	put(uint32(desc.Flags))
	put(desc.NumStaticSamplers)
	put(uint32(len(desc.Parameters)))
	for _, p := range desc.Parameters {
		put(uint32(p.Type))
		put(uint32(p.Visibility))
		switch p.Type {
		case d3d12.RootParameterTypeDescriptorTable:
			put(uint32(len(p.Ranges)))
			for _, r := range p.Ranges {
				put(uint32(r.Type))
				put(r.NumDescriptors)
				put(r.BaseShaderRegister)
				put(r.RegisterSpace)
				put(r.OffsetInDescriptorsFromTableStart)
			}
		case d3d12.RootParameterType32BitConstants:
			put(p.Constants.ShaderRegister)
			put(p.Constants.RegisterSpace)
			put(p.Constants.Num32BitValues)
		default:
			put(p.Descriptor.ShaderRegister)
			put(p.Descriptor.RegisterSpace)
		}
	}
	return buf.Bytes()
}

func decodeRootSignature(blob []byte) (*d3d12.RootSignatureDesc, error) {
	if len(blob) < len(blobMagic) || !bytes.Equal(blob[:len(blobMagic)], blobMagic[:]) {
		return nil, errors.New("not a root signature blob")
	}
	r := bytes.NewReader(blob[len(blobMagic):])
	var readErr error
	get := func() uint32 {
		var v uint32
		if readErr == nil {
			readErr = binary.Read(r, binary.LittleEndian, &v)
		}
		return v
	}

	desc := &d3d12.RootSignatureDesc{
		Flags:             d3d12.RootSignatureFlags(get()),
		NumStaticSamplers: get(),
	}
	count := get()
	if readErr == nil && count > d3d12.MaxRootSignatureParameters {
		return nil, errors.Newf("root signature blob declares %d parameters", count)
	}
	for i := uint32(0); i < count && readErr == nil; i++ {
		p := d3d12.RootParameter{
			Type:       d3d12.RootParameterType(get()),
			Visibility: d3d12.ShaderVisibility(get()),
		}
		switch p.Type {
		case d3d12.RootParameterTypeDescriptorTable:
			n := get()
			if n > d3d12.MaxDescriptorRanges {
				return nil, errors.Newf("root signature blob declares %d ranges", n)
			}
			for j := uint32(0); j < n && readErr == nil; j++ {
				p.Ranges = append(p.Ranges, d3d12.DescriptorRange{
					Type:                              d3d12.DescriptorRangeType(get()),
					NumDescriptors:                    get(),
					BaseShaderRegister:                get(),
					RegisterSpace:                     get(),
					OffsetInDescriptorsFromTableStart: get(),
				})
			}
		case d3d12.RootParameterType32BitConstants:
			p.Constants = d3d12.RootConstants{
				ShaderRegister: get(),
				RegisterSpace:  get(),
				Num32BitValues: get(),
			}
		default:
			p.Descriptor = d3d12.RootDescriptor{
				ShaderRegister: get(),
				RegisterSpace:  get(),
			}
		}
		desc.Parameters = append(desc.Parameters, p)
	}
	if readErr != nil {
		return nil, errors.Wrap(readErr, "truncated root signature blob")
	}
	return desc, nil
}
