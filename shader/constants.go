package shader

// Binding slots shared by the procedural templates and the code that binds
// their inputs.
const (
	UniformTransformModelViewProjection = 0
	UniformTransformModel               = 1

	// UniformCustom is the first slot handed to descriptor uniforms.
	UniformCustom = 220

	TextureChannel0 = 2
	TextureChannel1 = 3
	TextureChannel2 = 4
	TextureChannel3 = 5

	BufferInputs      = 7
	BufferSkinCluster = 8

	// MaxTextureChannels is the number of iChannelN samplers.
	MaxTextureChannels = 4
)

// Markers replaced when a procedural program is built.
const (
	ProceduralBlock   = "//PROCEDURAL_BLOCK"
	ProceduralVersion = "//PROCEDURAL_VERSION"
)
