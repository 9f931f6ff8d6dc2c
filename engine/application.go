package engine

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/anima-dx12/engine/core"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/d3d12"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

const DefaultApplicationConfigFile = "anima.toml"

type ApplicationConfig struct {
	// The application name, used in logs.
	Name     string        `toml:"name"`
	LogLevel core.LogLevel `toml:"log_level"`
	// Directory watched by the asset manager.
	AssetsDir string `toml:"assets_dir"`
	// Native device driver: "soft" or "d3d12".
	Driver metadata.RendererDriver `toml:"driver"`
	// Number of frames to run before stopping. 0 runs until stopped.
	FrameLimit uint64 `toml:"frame_limit"`
	// Descriptor heap sizes.
	Device d3d12.DeviceConfig `toml:"device"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:      "Anima D3D12",
		LogLevel:  core.InfoLevel,
		AssetsDir: "assets",
		Driver:    metadata.RendererDriverSoft,
		Device:    d3d12.DefaultDeviceConfig(),
	}
}

// LoadApplicationConfig reads a TOML application config. Keys missing from
// the file keep their default value.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading application config %s", path)
	}
	config, err := ParseApplicationConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "application config %s", path)
	}
	return config, nil
}

func ParseApplicationConfig(data []byte) (*ApplicationConfig, error) {
	config := DefaultApplicationConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	config.Device.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *ApplicationConfig) Validate() error {
	if c.Name == "" {
		return errors.New("name must not be empty")
	}
	if c.AssetsDir == "" {
		return errors.New("assets_dir must not be empty")
	}
	if err := c.Device.Validate(); err != nil {
		return errors.Wrap(err, "[device]")
	}
	return nil
}
