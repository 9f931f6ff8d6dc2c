package systems

import (
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"
	"golang.org/x/exp/maps"

	"github.com/spaghettifunk/anima-dx12/engine/assets"
	"github.com/spaghettifunk/anima-dx12/engine/core"
	"github.com/spaghettifunk/anima-dx12/engine/renderer"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/d3d12"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

const InvalidID uint32 = 4294967295

/** @brief Configuration for the shader system. */
type ShaderSystemConfig struct {
	/** @brief The maximum number of shaders held in the system. */
	MaxShaderCount uint16
}

type ShaderSystem struct {
	// This system's configuration.
	Config *ShaderSystemConfig
	// A lookup table for shader name->id
	Lookup map[string]uint32
	// A collection of created shaders, indexed by id. Free slots are nil.
	Shaders []*metadata.Shader
	// shader config path -> shader name, used to route file changes
	sources map[string]string
	// sub systems
	assetManager *assets.AssetManager
	renderer     *renderer.Renderer
	jobSystem    *JobSystem
}

// NewShaderSystem creates the shader system. When js is nil shader configs
// are parsed on the calling goroutine.
func NewShaderSystem(config *ShaderSystemConfig, am *assets.AssetManager, r *renderer.Renderer, js *JobSystem) (*ShaderSystem, error) {
	// Verify configuration.
	if config.MaxShaderCount == 0 {
		err := errors.New("NewShaderSystem - config.MaxShaderCount must be greater than 0")
		core.LogError(err.Error())
		return nil, err
	}

	return &ShaderSystem{
		Config:       config,
		Shaders:      make([]*metadata.Shader, config.MaxShaderCount),
		Lookup:       make(map[string]uint32),
		sources:      make(map[string]string),
		assetManager: am,
		renderer:     r,
		jobSystem:    js,
	}, nil
}

/**
 * @brief Creates a shader for every shader config known to the asset manager.
 * Configs are parsed on the job system, root signatures are built here.
 * Configs that fail to load are logged and skipped.
 */
func (shaderSystem *ShaderSystem) Initialize() error {
	if shaderSystem.assetManager == nil {
		return nil
	}
	paths := shaderSystem.assetManager.Assets(metadata.ResourceTypeShader)
	if shaderSystem.jobSystem == nil {
		for _, path := range paths {
			if _, err := shaderSystem.LoadFromPath(path); err != nil {
				core.LogError("failed to load shader config %s: %s", path, err)
			}
		}
		return nil
	}

	for _, path := range paths {
		err := shaderSystem.jobSystem.Submit(metadata.JobTask{
			Name:        path,
			JobType:     metadata.JOB_TYPE_RESOURCE_LOAD,
			InputParams: path,
			OnStart: func(params interface{}) (interface{}, error) {
				return shaderSystem.readShaderSource(params.(string))
			},
			OnComplete: func(result interface{}) {
				if _, err := shaderSystem.createFromSource(path, result.(*shaderSource)); err != nil {
					core.LogError("failed to load shader config %s: %s", path, err)
				}
			},
		})
		if err != nil {
			return err
		}
	}
	shaderSystem.jobSystem.Flush()
	return nil
}

/**
 * @brief Shuts down the shader system, destroying every shader.
 */
func (shaderSystem *ShaderSystem) Shutdown() error {
	for _, name := range shaderSystem.Names() {
		shaderSystem.Destroy(name)
	}
	return nil
}

/**
 * @brief Loads the shader config with the given name from the assets
 * directory and creates (or rebuilds) the shader.
 */
func (shaderSystem *ShaderSystem) Load(name string) (*metadata.Shader, error) {
	if shaderSystem.assetManager == nil {
		return nil, errors.Wrap(core.ErrNotInitialized, "shader system has no asset manager")
	}
	path, err := shaderSystem.assetManager.AssetPath(name, metadata.ResourceTypeShader)
	if err != nil {
		return nil, err
	}
	return shaderSystem.LoadFromPath(path)
}

func (shaderSystem *ShaderSystem) LoadFromPath(path string) (*metadata.Shader, error) {
	src, err := shaderSystem.readShaderSource(path)
	if err != nil {
		return nil, err
	}
	return shaderSystem.createFromSource(path, src)
}

// shaderSource is a parsed shader config and the bytecode of its stages.
type shaderSource struct {
	config     *metadata.ShaderConfig
	vertexCode []uint32
	pixelCode  []uint32
}

// readShaderSource loads the config at path and the bytecode every stage
// names. It never touches the renderer, so it may run on a job worker.
func (shaderSystem *ShaderSystem) readShaderSource(path string) (*shaderSource, error) {
	res, err := shaderSystem.assetManager.LoadAssetPath(path, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = shaderSystem.assetManager.UnloadAsset(res)
	}()

	config, ok := res.Data.(*metadata.ShaderConfig)
	if !ok {
		return nil, errors.Newf("%s did not load as a shader config", path)
	}
	src := &shaderSource{config: config}
	if src.vertexCode, err = shaderSystem.readBytecode(path, config.Vertex.Source); err != nil {
		return nil, errors.Wrapf(err, "shader '%s' vertex stage", config.Name)
	}
	if src.pixelCode, err = shaderSystem.readBytecode(path, config.Pixel.Source); err != nil {
		return nil, errors.Wrapf(err, "shader '%s' pixel stage", config.Name)
	}
	return src, nil
}

// readBytecode loads a stage source, resolved next to the config file.
func (shaderSystem *ShaderSystem) readBytecode(configPath, source string) ([]uint32, error) {
	if source == "" {
		return nil, nil
	}
	path := filepath.Join(filepath.Dir(configPath), source)
	res, err := shaderSystem.assetManager.LoadAssetPath(path, map[string]string{"name": source})
	if err != nil {
		return nil, err
	}
	code, ok := res.Data.([]uint32)
	_ = shaderSystem.assetManager.UnloadAsset(res)
	if !ok || len(code) == 0 {
		return nil, errors.Newf("%s holds no bytecode", path)
	}
	return code, nil
}

func (shaderSystem *ShaderSystem) createFromSource(path string, src *shaderSource) (*metadata.Shader, error) {
	shader, err := shaderSystem.createShader(src.config, src.vertexCode, src.pixelCode)
	if err != nil {
		return nil, err
	}
	shaderSystem.sources[path] = shader.Name
	return shader, nil
}

/**
 * @brief Creates a new shader with the given config. When a shader of that
 * name exists its root signature is rebuilt instead; if the rebuild fails
 * the shader keeps its previous config and root signature.
 *
 * CreateShader does not read stage bytecode; Load does.
 *
 * @param config The configuration to be used when creating the shader.
 */
func (shaderSystem *ShaderSystem) CreateShader(config *metadata.ShaderConfig) (*metadata.Shader, error) {
	return shaderSystem.createShader(config, nil, nil)
}

func (shaderSystem *ShaderSystem) createShader(config *metadata.ShaderConfig, vertexCode, pixelCode []uint32) (*metadata.Shader, error) {
	if config == nil || config.Name == "" {
		err := errors.New("shader config must have a name")
		core.LogError(err.Error())
		return nil, err
	}

	if id, ok := shaderSystem.Lookup[config.Name]; ok {
		return shaderSystem.rebuild(shaderSystem.Shaders[id], config, vertexCode, pixelCode)
	}

	id := shaderSystem.newShaderID()
	if id == InvalidID {
		err := errors.Newf("unable to find free slot to create shader '%s'", config.Name)
		core.LogError(err.Error())
		return nil, err
	}

	shader := &metadata.Shader{
		ID:         id,
		Name:       config.Name,
		Config:     *config,
		State:      metadata.SHADER_STATE_UNINITIALIZED,
		VertexCode: vertexCode,
		PixelCode:  pixelCode,
	}
	if !shaderSystem.renderer.ShaderCreate(shader) {
		err := errors.Newf("shader '%s' was not created", config.Name)
		core.LogError(err.Error())
		return nil, err
	}

	shaderSystem.Shaders[id] = shader
	// At this point, creation is successful, so store the shader id in the
	// lookup table so this can be looked up by name later.
	shaderSystem.Lookup[config.Name] = id
	core.LogDebug("shader '%s' created with id %d", shader.Name, id)
	return shader, nil
}

func (shaderSystem *ShaderSystem) rebuild(shader *metadata.Shader, config *metadata.ShaderConfig, vertexCode, pixelCode []uint32) (*metadata.Shader, error) {
	previous, previousVertex, previousPixel := shader.Config, shader.VertexCode, shader.PixelCode
	shader.Config = *config
	shader.VertexCode, shader.PixelCode = vertexCode, pixelCode
	if !shaderSystem.renderer.ShaderCreate(shader) {
		shader.Config = previous
		shader.VertexCode, shader.PixelCode = previousVertex, previousPixel
		err := errors.Newf("shader '%s' could not be rebuilt, keeping the previous root signature", config.Name)
		core.LogError(err.Error())
		return nil, err
	}
	shader.Generation++
	core.LogInfo("shader '%s' rebuilt (generation %d)", shader.Name, shader.Generation)
	return shader, nil
}

/**
 * @brief Handles a change to a shader config on disk. Removed configs keep
 * their shader alive.
 */
func (shaderSystem *ShaderSystem) OnAssetChanged(e assets.AssetEvent) error {
	if e.Type != metadata.ResourceTypeShader {
		return nil
	}
	if e.Removed {
		if name, ok := shaderSystem.sources[e.Path]; ok {
			core.LogWarn("shader config of '%s' was removed, keeping the loaded shader", name)
			delete(shaderSystem.sources, e.Path)
		}
		return nil
	}
	_, err := shaderSystem.LoadFromPath(e.Path)
	return err
}

/**
 * @brief Destroys the shader with the given name and frees its slot.
 */
func (shaderSystem *ShaderSystem) Destroy(shaderName string) {
	id, ok := shaderSystem.Lookup[shaderName]
	if !ok {
		return
	}
	shaderSystem.renderer.ShaderDestroy(shaderSystem.Shaders[id])
	shaderSystem.Shaders[id] = nil
	delete(shaderSystem.Lookup, shaderName)
	for path, name := range shaderSystem.sources {
		if name == shaderName {
			delete(shaderSystem.sources, path)
		}
	}
}

/**
 * @brief Gets the identifier of a shader by name.
 *
 * @param shaderName The name of the shader.
 * @return The shader id, if found; otherwise InvalidID.
 */
func (shaderSystem *ShaderSystem) GetShaderID(shaderName string) uint32 {
	if id, ok := shaderSystem.Lookup[shaderName]; ok {
		return id
	}
	return InvalidID
}

/**
 * @brief Returns a pointer to a shader with the given identifier.
 */
func (shaderSystem *ShaderSystem) GetShaderByID(shaderID uint32) (*metadata.Shader, error) {
	if shaderID >= uint32(len(shaderSystem.Shaders)) || shaderSystem.Shaders[shaderID] == nil {
		return nil, errors.Newf("shader with ID `%d` not found", shaderID)
	}
	return shaderSystem.Shaders[shaderID], nil
}

/**
 * @brief Returns a pointer to a shader with the given name.
 *
 * @param shaderName The name to search for. Case sensitive.
 */
func (shaderSystem *ShaderSystem) GetShader(shaderName string) (*metadata.Shader, error) {
	shaderID := shaderSystem.GetShaderID(shaderName)
	if shaderID == InvalidID {
		return nil, errors.Newf("shader with name `%s` not found", shaderName)
	}
	return shaderSystem.GetShaderByID(shaderID)
}

// Program returns the device program of the named shader.
func (shaderSystem *ShaderSystem) Program(shaderName string) *d3d12.ShaderProgram {
	shader, err := shaderSystem.GetShader(shaderName)
	if err != nil {
		return nil
	}
	return d3d12.ShaderProgramOf(shader)
}

// Names returns the names of every shader, sorted.
func (shaderSystem *ShaderSystem) Names() []string {
	names := maps.Keys(shaderSystem.Lookup)
	slices.Sort(names)
	return names
}

func (shaderSystem *ShaderSystem) newShaderID() uint32 {
	for i, s := range shaderSystem.Shaders {
		if s == nil {
			return uint32(i)
		}
	}
	return InvalidID
}
