package loaders

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

// TextureLoader reads a .texcfg file describing a texture to create on the
// device.
type TextureLoader struct{}

func (tl *TextureLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading texture config %s", path)
	}

	config := &metadata.TextureConfig{Levels: 1}
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "parsing texture config %s", path)
	}
	if config.Name == "" {
		config.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if config.Width == 0 {
		return nil, errors.Newf("texture config %s: width must be greater than 0", path)
	}

	return &metadata.Resource{
		Type:     metadata.ResourceTypeTexture,
		Name:     config.Name,
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     config,
	}, nil
}

func (tl *TextureLoader) Unload(res *metadata.Resource) error {
	if res == nil {
		return errors.New("cannot unload a nil texture resource")
	}
	res.Data = nil
	res.DataSize = 0
	return nil
}
