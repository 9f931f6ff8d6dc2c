package metadata

import (
	"fmt"
	"strings"
)

/** @brief The driver a renderer backend talks to. */
type RendererDriver int

const (
	/** @brief In-process software device. Runs headless on every platform. */
	RendererDriverSoft RendererDriver = iota
	/** @brief The system d3d12.dll. Windows only. */
	RendererDriverD3D12
)

func (d RendererDriver) String() string {
	switch d {
	case RendererDriverSoft:
		return "soft"
	case RendererDriverD3D12:
		return "d3d12"
	}
	return fmt.Sprintf("RendererDriver(%d)", int(d))
}

func (d *RendererDriver) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "", "soft":
		*d = RendererDriverSoft
	case "d3d12":
		*d = RendererDriverD3D12
	default:
		return fmt.Errorf("unknown renderer driver %q", text)
	}
	return nil
}

type RendererBackendConfig struct {
	/** @brief The name of the application */
	ApplicationName string
	/** @brief The driver to create the device on. */
	Driver RendererDriver
}

/**
 * @brief A structure which is generated by the application and sent once
 * to the renderer to render a given frame.
 */
type RenderPacket struct {
	DeltaTime float64
	/** @brief Set by the renderer when the frame begins. */
	FrameNumber uint64
}
