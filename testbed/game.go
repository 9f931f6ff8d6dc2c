package testbed

import (
	"github.com/spaghettifunk/anima-dx12/engine"
	"github.com/spaghettifunk/anima-dx12/engine/core"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/d3d12"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

const (
	sceneTextureName  = "checker"
	renderTargetName  = "scene_color"
	environmentName   = "environment"
	worldShaderName   = "Shader.Builtin.World"
	statsEveryNFrames = 120
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	width  uint32
	height uint32

	sceneColor  *d3d12.Texture2D
	environment *d3d12.Texture2D
	depth       *d3d12.ZStencilBuffer
	linearWrap  *d3d12.SamplerState
	pointClamp  *d3d12.SamplerState
	acquired    []string
}

func NewTestGame(config *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State: &gameState{
				width:  1280,
				height: 720,
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize() error {
	core.LogInfo("initializing testbed...")
	state := g.state()
	sm := g.SystemManager

	if _, err := sm.TextureSystem.Acquire(sceneTextureName, true); err != nil {
		core.LogWarn("texture '%s' not available: %s", sceneTextureName, err)
	} else {
		state.acquired = append(state.acquired, sceneTextureName)
	}

	var err error
	state.sceneColor, err = sm.TextureSystem.AcquireFromConfig(&metadata.TextureConfig{
		Name:   renderTargetName,
		Type:   metadata.TextureType2d,
		Width:  state.width,
		Height: state.height,
		Levels: 1,
		Format: metadata.ColorFormatBGRA,
		Flags:  metadata.TextureFlagRenderTarget,
	}, true)
	if err != nil {
		return err
	}
	state.acquired = append(state.acquired, renderTargetName)

	state.environment, err = sm.TextureSystem.AcquireFromConfig(&metadata.TextureConfig{
		Name:   environmentName,
		Type:   metadata.TextureTypeCube,
		Width:  256,
		Levels: 1,
		Format: metadata.ColorFormatRGBA16F,
		Flags:  metadata.TextureFlagRenderTarget,
	}, true)
	if err != nil {
		return err
	}
	state.acquired = append(state.acquired, environmentName)

	state.depth = sm.Renderer.ZStencilCreate(state.width, state.height, metadata.ZStencilFormatZ24S8)
	state.linearWrap = sm.Renderer.SamplerStateCreate(&metadata.SamplerInfo{
		Filter:        metadata.SampleFilterLinear,
		AddressU:      metadata.AddressModeWrap,
		AddressV:      metadata.AddressModeWrap,
		AddressW:      metadata.AddressModeWrap,
		MaxAnisotropy: 1,
	})
	state.pointClamp = sm.Renderer.SamplerStateCreate(&metadata.SamplerInfo{
		Filter:        metadata.SampleFilterPoint,
		AddressU:      metadata.AddressModeClamp,
		AddressV:      metadata.AddressModeClamp,
		AddressW:      metadata.AddressModeClamp,
		MaxAnisotropy: 1,
		BorderColor:   0xFF000000,
	})

	if program := sm.ShaderSystem.Program(worldShaderName); program != nil {
		idx := program.RootSignature.Indices
		core.LogInfo("%s: %d root parameters, pixel samplers at %d, pixel constants at %d",
			worldShaderName, len(program.RootSignature.Desc.Parameters), idx.Pixel.Sampler, idx.Pixel.Uniform32BitConstants)
	}
	g.logStats()
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	return nil
}

func (g *TestGame) Render(packet *metadata.RenderPacket, deltaTime float64) error {
	if packet.FrameNumber%statsEveryNFrames == 0 {
		g.logStats()
	}
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.state()
	sm := g.SystemManager

	sm.Renderer.SamplerStateDestroy(state.pointClamp)
	sm.Renderer.SamplerStateDestroy(state.linearWrap)
	sm.Renderer.ZStencilDestroy(state.depth)
	for _, name := range state.acquired {
		sm.TextureSystem.Release(name)
	}
	state.acquired = nil
	g.logStats()
	return nil
}

func (g *TestGame) logStats() {
	for _, s := range g.SystemManager.Renderer.Stats() {
		core.LogDebug("%-11s pool: %d heap(s), %d/%d descriptors in use", s.Type, s.Heaps, s.InUse, s.Capacity)
	}
}
