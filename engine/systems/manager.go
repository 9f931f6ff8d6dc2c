package systems

import (
	"runtime"

	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/anima-dx12/engine/assets"
	"github.com/spaghettifunk/anima-dx12/engine/core"
	"github.com/spaghettifunk/anima-dx12/engine/renderer"
)

type SystemManager struct {
	appName      string
	assetManager *assets.AssetManager

	Renderer      *renderer.Renderer
	JobSystem     *JobSystem
	ShaderSystem  *ShaderSystem
	TextureSystem *TextureSystem
}

func NewSystemManager(appName string, r *renderer.Renderer, am *assets.AssetManager) (*SystemManager, error) {
	js, err := NewJobSystem(runtime.NumCPU(), 64)
	if err != nil {
		return nil, err
	}
	ts, err := NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: 1000,
	}, am, r)
	if err != nil {
		_ = js.Shutdown()
		return nil, err
	}
	ssys, err := NewShaderSystem(&ShaderSystemConfig{
		MaxShaderCount: 1000,
	}, am, r, js)
	if err != nil {
		_ = js.Shutdown()
		return nil, err
	}
	return &SystemManager{
		appName:       appName,
		assetManager:  am,
		Renderer:      r,
		JobSystem:     js,
		TextureSystem: ts,
		ShaderSystem:  ssys,
	}, nil
}

func (sm *SystemManager) Initialize() error {
	if err := sm.Renderer.Initialize(sm.appName); err != nil {
		return err
	}
	if err := sm.TextureSystem.Initialize(); err != nil {
		return err
	}
	if err := sm.ShaderSystem.Initialize(); err != nil {
		return err
	}
	return nil
}

// Update runs the callbacks of finished jobs and applies pending asset
// changes. Called once per frame.
func (sm *SystemManager) Update() {
	sm.JobSystem.Update()
	sm.ProcessAssetEvents()
}

// ProcessAssetEvents applies every pending asset change. It never blocks and
// must run on the rendering thread.
func (sm *SystemManager) ProcessAssetEvents() {
	if sm.assetManager == nil {
		return
	}
	for {
		select {
		case e, ok := <-sm.assetManager.Events():
			if !ok {
				return
			}
			if err := sm.ShaderSystem.OnAssetChanged(e); err != nil {
				core.LogError("reloading %s: %s", e.Path, err)
			}
		default:
			return
		}
	}
}

func (sm *SystemManager) Shutdown() error {
	var errs error
	if err := sm.ShaderSystem.Shutdown(); err != nil {
		errs = errors.CombineErrors(errs, err)
	}
	if err := sm.TextureSystem.Shutdown(); err != nil {
		errs = errors.CombineErrors(errs, err)
	}
	if err := sm.Renderer.Shutdown(); err != nil {
		errs = errors.CombineErrors(errs, err)
	}
	if err := sm.JobSystem.Shutdown(); err != nil {
		errs = errors.CombineErrors(errs, err)
	}
	return errs
}
