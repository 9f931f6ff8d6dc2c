package systems

import (
	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/anima-dx12/engine/assets"
	"github.com/spaghettifunk/anima-dx12/engine/core"
	"github.com/spaghettifunk/anima-dx12/engine/renderer"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/d3d12"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

const DefaultTextureName = "default"

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
}

type TextureReference struct {
	ReferenceCount uint64
	AutoRelease    bool
	Texture        *d3d12.Texture2D
}

type TextureSystem struct {
	Config         *TextureSystemConfig
	DefaultTexture *d3d12.Texture2D
	// Hashtable for texture lookups.
	RegisteredTextureTable map[string]*TextureReference
	// sub systems
	assetManager *assets.AssetManager
	renderer     *renderer.Renderer
}

func NewTextureSystem(config *TextureSystemConfig, am *assets.AssetManager, r *renderer.Renderer) (*TextureSystem, error) {
	if config.MaxTextureCount == 0 {
		err := errors.New("func NewTextureSystem - config.MaxTextureCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}

	return &TextureSystem{
		Config:                 config,
		RegisteredTextureTable: make(map[string]*TextureReference),
		assetManager:           am,
		renderer:               r,
	}, nil
}

// Initialize creates the default texture used in place of missing ones.
func (ts *TextureSystem) Initialize() error {
	ts.DefaultTexture = ts.renderer.TextureCreate(&metadata.TextureConfig{
		Name:   DefaultTextureName,
		Type:   metadata.TextureType2d,
		Width:  256,
		Height: 256,
		Levels: 1,
		Format: metadata.ColorFormatRGBA,
	})
	if ts.DefaultTexture == nil {
		return errors.New("failed to create the default texture")
	}
	return nil
}

func (ts *TextureSystem) Shutdown() error {
	// Destroy all loaded textures.
	for name, ref := range ts.RegisteredTextureTable {
		ts.renderer.TextureDestroy(ref.Texture)
		delete(ts.RegisteredTextureTable, name)
	}
	ts.renderer.TextureDestroy(ts.DefaultTexture)
	ts.DefaultTexture = nil
	return nil
}

/**
 * @brief Attempts to acquire a texture with the given name. If it has not yet
 * been loaded, its .texcfg file is loaded and the texture created. If the
 * texture is found, its reference counter is incremented.
 */
func (ts *TextureSystem) Acquire(name string, autoRelease bool) (*d3d12.Texture2D, error) {
	// Return default texture, but warn about it since this should be returned via GetDefaultTexture();
	if name == DefaultTextureName {
		core.LogWarn("func texture system Acquire called for default texture. Use GetDefaultTexture for texture 'default'")
		return ts.DefaultTexture, nil
	}
	if ref, ok := ts.RegisteredTextureTable[name]; ok {
		ref.ReferenceCount++
		return ref.Texture, nil
	}
	if ts.assetManager == nil {
		return nil, errors.Wrap(core.ErrNotInitialized, "texture system has no asset manager")
	}

	res, err := ts.assetManager.LoadAsset(name, metadata.ResourceTypeTexture, nil)
	if err != nil {
		core.LogError("func texture system Acquire failed to load texture '%s': %s", name, err)
		return nil, err
	}
	defer func() {
		_ = ts.assetManager.UnloadAsset(res)
	}()
	config, ok := res.Data.(*metadata.TextureConfig)
	if !ok {
		return nil, errors.Newf("texture '%s' did not load as a texture config", name)
	}
	return ts.create(name, config, autoRelease)
}

/**
 * @brief Creates a texture from a config that does not come from disk, such
 * as a render target.
 */
func (ts *TextureSystem) AcquireFromConfig(config *metadata.TextureConfig, autoRelease bool) (*d3d12.Texture2D, error) {
	if config == nil {
		return nil, errors.New("texture config is nil")
	}
	if ref, ok := ts.RegisteredTextureTable[config.Name]; ok {
		ref.ReferenceCount++
		return ref.Texture, nil
	}
	return ts.create(config.Name, config, autoRelease)
}

func (ts *TextureSystem) create(name string, config *metadata.TextureConfig, autoRelease bool) (*d3d12.Texture2D, error) {
	if uint32(len(ts.RegisteredTextureTable)) >= ts.Config.MaxTextureCount {
		err := errors.Newf("texture system is full (%d textures), cannot create '%s'", ts.Config.MaxTextureCount, name)
		core.LogError(err.Error())
		return nil, err
	}
	t := ts.renderer.TextureCreate(config)
	if t == nil {
		return nil, errors.Newf("texture '%s' was not created", name)
	}
	ts.RegisteredTextureTable[name] = &TextureReference{
		ReferenceCount: 1,
		AutoRelease:    autoRelease,
		Texture:        t,
	}
	return t, nil
}

/**
 * @brief Releases a texture with the given name. Textures acquired with
 * autoRelease are destroyed when their last reference goes away.
 */
func (ts *TextureSystem) Release(name string) {
	ref, ok := ts.RegisteredTextureTable[name]
	if !ok {
		core.LogWarn("func texture system Release called for unknown texture '%s'", name)
		return
	}
	if ref.ReferenceCount > 0 {
		ref.ReferenceCount--
	}
	if ref.ReferenceCount == 0 && ref.AutoRelease {
		ts.renderer.TextureDestroy(ref.Texture)
		delete(ts.RegisteredTextureTable, name)
	}
}

func (ts *TextureSystem) GetDefaultTexture() *d3d12.Texture2D {
	return ts.DefaultTexture
}
