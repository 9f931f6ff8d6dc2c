package loaders

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

// ShaderLoader reads a .shadercfg file: the name of a shader and the
// reflected resource counts of its vertex and pixel stages.
//
//	name = "Shader.Builtin.World"
//
//	[vertex]
//	source = "world.vs.cso"
//	uniform_buffers = 1
//
//	[pixel]
//	source = "world.ps.cso"
//	samplers = 2
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading shader config %s", path)
	}

	config := &metadata.ShaderConfig{}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(config); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, errors.Wrapf(err, "parsing shader config %s at %d:%d", path, row, col)
		}
		return nil, errors.Wrapf(err, "parsing shader config %s", path)
	}
	if config.Name == "" {
		config.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return &metadata.Resource{
		Type:     metadata.ResourceTypeShader,
		Name:     config.Name,
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     config,
	}, nil
}

func (sl *ShaderLoader) Unload(res *metadata.Resource) error {
	if res == nil {
		return errors.New("cannot unload a nil shader resource")
	}
	res.Data = nil
	res.DataSize = 0
	return nil
}
