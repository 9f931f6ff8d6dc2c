package metadata

import "fmt"

/**
 * @brief Represents the current state of a given shader.
 */
type ShaderState int

const (
	/** @brief The shader has not yet gone through the creation process, and is unusable.*/
	SHADER_STATE_NOT_CREATED ShaderState = iota
	/** @brief The shader config is loaded but no root signature exists yet. It is unusable.*/
	SHADER_STATE_UNINITIALIZED
	/** @brief The shader has a root signature, and is ready for use.*/
	SHADER_STATE_INITIALIZED
)

/** @brief Shader stages available in the system. */
type ShaderStage int

const (
	ShaderStageVertex ShaderStage = 0x00000001
	ShaderStagePixel  ShaderStage = 0x00000002
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStagePixel:
		return "pixel"
	}
	return fmt.Sprintf("ShaderStage(%d)", int(s))
}

/**
 * @brief The reflected resource usage of a single shader stage. These counts
 * decide the layout of the root signature the stage is bound with.
 */
type ShaderStageConfig struct {
	/** @brief Compiled bytecode file, relative to the shader config. */
	Source string `toml:"source"`
	/** @brief Number of samplers. Each sampler is paired with a sampled texture. */
	Samplers uint32 `toml:"samplers"`
	/** @brief Number of read-only storage textures. */
	StorageTextures uint32 `toml:"storage_textures"`
	/** @brief Number of read-only storage buffers. */
	StorageBuffers uint32 `toml:"storage_buffers"`
	/** @brief Number of uniform (constant) buffers. */
	UniformBuffers uint32 `toml:"uniform_buffers"`
	/** @brief Size of the inline constants block in 32-bit values. 0 means none. */
	Uniform32BitConstants uint32 `toml:"uniform_32bit_constants"`
}

/**
 * @brief Configuration for a shader. Typically created and
 * destroyed by the shader system, and set up from a shader config file.
 */
type ShaderConfig struct {
	/** @brief The Name of the shader to be created. */
	Name string `toml:"name"`
	/** @brief The vertex stage. */
	Vertex ShaderStageConfig `toml:"vertex"`
	/** @brief The pixel stage. */
	Pixel ShaderStageConfig `toml:"pixel"`
}

/**
 * @brief Represents a shader on the frontend.
 */
type Shader struct {
	/** @brief The shader identifier */
	ID uint32
	/** @brief The shader name. */
	Name string
	/** @brief The config the shader was created from. */
	Config ShaderConfig
	/** @brief Incremented every time the config is reloaded. */
	Generation uint32
	/** @brief The internal State of the shader. */
	State ShaderState
	/** @brief Vertex stage bytecode. Nil when the config names no source. */
	VertexCode []uint32
	/** @brief Pixel stage bytecode. Nil when the config names no source. */
	PixelCode []uint32
	/** @brief An opaque pointer to hold renderer API specific data. Renderer is responsible for creation and destruction of this.  */
	InternalData interface{}
}
