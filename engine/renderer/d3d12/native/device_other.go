//go:build !windows

// Package native implements d3d12.NativeDevice on top of d3d12.dll.
package native

import (
	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/anima-dx12/engine/renderer/d3d12"
)

var ErrUnsupportedPlatform = errors.New("the D3D12 backend is only available on windows")

// New always fails outside of windows.
func New() (d3d12.NativeDevice, error) {
	return nil, ErrUnsupportedPlatform
}
