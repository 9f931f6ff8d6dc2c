package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/anima-dx12/engine/assets"
	"github.com/spaghettifunk/anima-dx12/engine/core"
	"github.com/spaghettifunk/anima-dx12/engine/renderer"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-dx12/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

const targetFrameSeconds float64 = 1.0 / 60.0

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	isRunning     atomic.Bool
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	clock         *core.Clock
	metrics       core.FrameMetrics
	lastTime      float64
	frameCount    uint64
	// frame pacing is skipped when false, e.g. in tests
	limitFrames  bool
	shutdownOnce sync.Once
	shutdownErr  error
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		err := errors.New("engine requires a game with an application config")
		core.LogError(err.Error())
		return nil, err
	}
	config := g.ApplicationConfig
	core.SetLogLevel(config.LogLevel)

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	r, err := renderer.New(&metadata.RendererBackendConfig{
		ApplicationName: config.Name,
		Driver:          config.Driver,
	}, &config.Device)
	if err != nil {
		_ = am.Shutdown()
		return nil, err
	}

	sm, err := systems.NewSystemManager(config.Name, r, am)
	if err != nil {
		core.LogError(err.Error())
		_ = r.Shutdown()
		_ = am.Shutdown()
		return nil, err
	}
	g.SystemManager = sm

	return &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		clock:         core.NewClock(),
		assetManager:  am,
		systemManager: sm,
		limitFrames:   true,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	config := e.gameInstance.ApplicationConfig

	// initialize subsystems
	if err := e.assetManager.Initialize(config.AssetsDir); err != nil {
		core.LogError(err.Error())
		return err
	}
	if err := e.systemManager.Initialize(); err != nil {
		core.LogError(err.Error())
		return err
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			core.LogError("game failed to initialize: %s", err)
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("%s initialized with the %s driver", config.Name, config.Driver)
	return nil
}

// Run drives the frame loop on the calling goroutine until Stop is called,
// the frame limit is reached or a frame fails.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return errors.Wrap(core.ErrNotInitialized, "engine must be initialized before Run")
	}
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)
	defer e.isRunning.Store(false)

	frameLimit := e.gameInstance.ApplicationConfig.FrameLimit

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning.Load() {
		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStart := time.Now()

		// Finished jobs and asset changes are applied between frames, on this goroutine.
		e.systemManager.Update()

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("Game update failed, shutting down: %s", err)
				return err
			}
		}

		packet := &metadata.RenderPacket{DeltaTime: delta}

		// Call the game's render routine.
		if e.gameInstance.FnRender != nil {
			if err := e.gameInstance.FnRender(packet, delta); err != nil {
				core.LogError("Game render failed, shutting down: %s", err)
				return err
			}
		}

		if err := e.systemManager.Renderer.DrawFrame(packet); err != nil {
			return err
		}
		e.frameCount++
		e.lastTime = currentTime
		e.metrics.Update(time.Since(frameStart).Seconds())

		if frameLimit > 0 && e.frameCount >= frameLimit {
			core.LogInfo("frame limit of %d reached", frameLimit)
			break
		}

		// If there is time left, give it back to the OS.
		if remaining := targetFrameSeconds - time.Since(frameStart).Seconds(); e.limitFrames && remaining > 0 {
			time.Sleep(time.Duration(remaining * float64(time.Second)))
		}
	}
	return nil
}

// Stop asks Run to return after the current frame. Safe to call from any
// goroutine.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

func (e *Engine) FrameCount() uint64 {
	return e.frameCount
}

func (e *Engine) Metrics() *core.FrameMetrics {
	return &e.metrics
}

func (e *Engine) SystemManager() *systems.SystemManager {
	return e.systemManager
}

// Shutdown releases every system. It must run on the goroutine that ran
// the frame loop and is a no-op after the first call.
func (e *Engine) Shutdown() error {
	e.shutdownOnce.Do(func() {
		e.currentStage = EngineStageShuttingDown
		e.Stop()
		fps, frameTime := e.metrics.Frame()
		core.LogDebug("shutting down after %d frames (%.0f fps, %.3f ms average frame time)", e.frameCount, fps, frameTime)

		if e.gameInstance.FnShutdown != nil {
			if err := e.gameInstance.FnShutdown(); err != nil {
				e.shutdownErr = errors.CombineErrors(e.shutdownErr, err)
			}
		}
		if err := e.systemManager.Shutdown(); err != nil {
			e.shutdownErr = errors.CombineErrors(e.shutdownErr, err)
		}
		if err := e.assetManager.Shutdown(); err != nil {
			e.shutdownErr = errors.CombineErrors(e.shutdownErr, err)
		}
		e.currentStage = EngineStageUninitialized
	})
	return e.shutdownErr
}
