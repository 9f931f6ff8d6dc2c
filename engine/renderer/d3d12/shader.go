package d3d12

import (
	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

// ShaderResourceCountsFromConfig copies the reflected counts of a stage.
func ShaderResourceCountsFromConfig(c metadata.ShaderStageConfig) ShaderResourceCounts {
	return ShaderResourceCounts{
		Samplers:              c.Samplers,
		StorageTextures:       c.StorageTextures,
		StorageBuffers:        c.StorageBuffers,
		UniformBuffers:        c.UniformBuffers,
		Uniform32BitConstants: c.Uniform32BitConstants,
	}
}

/**
 * @brief A vertex and pixel shader pair with the root signature both are
 * bound with.
 */
type ShaderProgram struct {
	Name          string
	Vertex        ShaderResourceCounts
	Pixel         ShaderResourceCounts
	RootSignature *GraphicsRootSignature
}

func (d *Device) ShaderProgramCreate(name string, vs, ps ShaderResourceCounts) (*ShaderProgram, error) {
	rs, err := NewGraphicsRootSignature(d.native, vs, ps)
	if err != nil {
		return nil, err
	}
	return &ShaderProgram{
		Name:          name,
		Vertex:        vs,
		Pixel:         ps,
		RootSignature: rs,
	}, nil
}

func (p *ShaderProgram) Destroy() {
	if p == nil {
		return
	}
	p.RootSignature.Destroy()
	p.RootSignature = nil
}
