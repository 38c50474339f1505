// Package procedural renders materials whose appearance comes from
// user-supplied GLSL. A Procedural takes a descriptor (api.ProceduralData),
// resolves and hot-reloads its shader sources, binds its JSON uniforms to
// fixed slots and keeps one set of compiled pipelines per ProgramKey.
package procedural

import (
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goprocedural/api"
	"github.com/richinsley/goprocedural/gpu"
	"github.com/richinsley/goprocedural/resource"
	"github.com/richinsley/goprocedural/shader"
)

var enableProceduralShaders atomic.Bool

// SetEnableProceduralShaders turns procedural shading on or off for the whole
// process. While off, every material draws its disabled pipeline.
func SetEnableProceduralShaders(enabled bool) {
	enableProceduralShaders.Store(enabled)
}

func EnableProceduralShaders() bool {
	return enableProceduralShaders.Load()
}

// Stencil hooks applied to the pipeline states of every new Procedural.
var (
	OpaqueStencil      = func(state *gpu.State, useAA bool) {}
	TransparentStencil = func(state *gpu.State) {}
)

// TextureCache resolves channel URLs to asynchronously loading textures.
type TextureCache interface {
	GetTexture(url string) *resource.NetworkTexture
}

// Config wires a Procedural to its collaborators. Nil caches fall back to the
// process-wide ones; a nil Compiler leaves programs uncompiled.
type Config struct {
	Compiler     gpu.Compiler
	ShaderCache  ShaderCache
	TextureCache TextureCache
	Now          func() time.Time
	UseAA        bool
}

// Procedural is one procedural material instance. All methods may be called
// from different goroutines; they serialize on a single mutex.
type Procedural struct {
	// Templates, set once before use.
	VertexSource              *shader.Source
	VertexSourceSkinned       *shader.Source
	VertexSourceSkinnedDQ     *shader.Source
	OpaqueFragmentSource      *shader.Source
	TransparentFragmentSource *shader.Source
	ErrorFallbackFragmentPath string

	compiler     gpu.Compiler
	shaderCache  ShaderCache
	textureCache TextureCache
	now          func() time.Time

	mu      sync.Mutex
	data    api.ProceduralData
	enabled bool

	vertexShader         shaderSource
	fragmentShader       shaderSource
	vertexReplacements   map[string]string
	fragmentReplacements map[string]string

	shaderDirty   bool
	uniformsDirty bool
	prevKey       ProgramKey

	channels [shader.MaxTextureChannels]*resource.NetworkTexture
	samplers [shader.MaxTextureChannels]gpu.Sampler

	pipelines                   map[ProgramKey]*pipelineEntry
	uniforms                    []uniformBinder
	errorFallbackFragmentSource string

	opaqueState          *gpu.State
	transparentState     *gpu.State
	standardInputs       StandardInputs
	standardInputsBuffer *gpu.Buffer

	entityPosition    mgl32.Vec3
	entityDimensions  mgl32.Vec3
	entityOrientation mgl32.Mat3
	entityCreated     time.Time

	lastCompile  time.Time
	firstCompile time.Time
	frameCount   int32

	hasStartedFade bool
	isFading       bool
	fadeStartTime  time.Time
}

func New(cfg Config) *Procedural {
	p := &Procedural{
		compiler:             cfg.Compiler,
		shaderCache:          cfg.ShaderCache,
		textureCache:         cfg.TextureCache,
		now:                  cfg.Now,
		vertexShader:         shaderSource{stage: "vertex"},
		fragmentShader:       shaderSource{stage: "fragment"},
		pipelines:            map[ProgramKey]*pipelineEntry{},
		opaqueState:          gpu.NewState(),
		transparentState:     gpu.NewState(),
		standardInputsBuffer: gpu.NewBuffer(StandardInputsSize),
	}
	if p.shaderCache == nil {
		p.shaderCache = resource.DefaultShaderCache()
	}
	if p.textureCache == nil {
		p.textureCache = resource.DefaultTextureCache()
	}
	if p.now == nil {
		p.now = time.Now
	}
	for i := range p.samplers {
		p.samplers[i] = gpu.DefaultSampler()
	}

	p.opaqueState.SetCullMode(gpu.CullNone)
	p.opaqueState.SetDepthTest(true, true, gpu.LessEqual)
	p.opaqueState.SetBlendFunction(false,
		gpu.SrcAlpha, gpu.BlendOpAdd, gpu.InvSrcAlpha,
		gpu.FactorAlpha, gpu.BlendOpAdd, gpu.One)
	OpaqueStencil(p.opaqueState, cfg.UseAA)

	p.transparentState.SetCullMode(gpu.CullNone)
	p.transparentState.SetDepthTest(true, false, gpu.LessEqual)
	p.transparentState.SetBlendFunction(true,
		gpu.SrcAlpha, gpu.BlendOpAdd, gpu.InvSrcAlpha,
		gpu.FactorAlpha, gpu.BlendOpAdd, gpu.One)
	TransparentStencil(p.transparentState)

	return p
}

// SetProceduralData applies a new descriptor. Equal descriptors are ignored.
// Only what changed is invalidated: a version change or a change of uniform
// names rebuilds the shaders, a value-only uniform change rebinds uniforms.
func (p *Procedural) SetProceduralData(data api.ProceduralData) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setProceduralData(data)
}

// setProceduralData must be called with p.mu held.
func (p *Procedural) setProceduralData(data api.ProceduralData) {
	if api.Equal(data, p.data) {
		return
	}

	p.enabled = false

	if data.Version != p.data.Version {
		p.data.Version = data.Version
		p.shaderDirty = true
	}

	if !data.Uniforms.Equal(p.data.Uniforms) {
		// Slots follow uniform names, so a new name set needs new reflection
		if !data.Uniforms.KeysEqual(p.data.Uniforms) {
			p.shaderDirty = true
		}
		p.data.Uniforms = data.Uniforms
		p.uniformsDirty = true
	}

	if !reflect.DeepEqual(data.Channels, p.data.Channels) {
		p.data.Channels = data.Channels
		p.setChannels(data.Channels)
	}

	resolved := true
	if data.FragmentShaderURL != p.data.FragmentShaderURL {
		p.data.FragmentShaderURL = data.FragmentShaderURL
		p.shaderDirty = true
		resolved = p.fragmentShader.resolve(data.FragmentShaderURL, p.shaderCache) && resolved
	}

	if data.VertexShaderURL != p.data.VertexShaderURL {
		p.data.VertexShaderURL = data.VertexShaderURL
		p.shaderDirty = true
		resolved = p.vertexShader.resolve(data.VertexShaderURL, p.shaderCache) && resolved
	}

	p.enabled = resolved
}

// setChannels fills every channel slot; slots past the descriptor's channels
// are reset to the empty texture. Must be called with p.mu held.
func (p *Procedural) setChannels(channels []any) {
	channelCount := min(shader.MaxTextureChannels, len(channels))
	for channel := 0; channel < shader.MaxTextureChannels; channel++ {
		if channel < channelCount {
			if desc, ok := api.ParseChannel(channels[channel]); ok {
				p.channels[channel] = p.textureCache.GetTexture(desc.URL)
				p.samplers[channel] = gpu.ParseSampler(desc.Sampler)
				continue
			}
		}
		// Release textures no longer in use
		p.channels[channel] = p.textureCache.GetTexture("")
		p.samplers[channel] = gpu.DefaultSampler()
	}
}

// IsReady reports whether the configured shaders and channel textures have
// all loaded. The first time it does, the fade-in starts.
func (p *Procedural) IsReady() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled {
		return false
	}

	// We need at least one shader, and whichever ones we have need to be loaded
	hasFragmentShader := p.fragmentShader.hasShader()
	hasVertexShader := p.vertexShader.hasShader()
	if !hasFragmentShader && !hasVertexShader {
		return false
	}
	if hasFragmentShader && !p.fragmentShader.isLoaded() {
		return false
	}
	if hasVertexShader && !p.vertexShader.isLoaded() {
		return false
	}

	for _, ch := range p.channels {
		if ch != nil && !ch.IsLoaded() {
			return false
		}
	}

	if !p.hasStartedFade {
		p.hasStartedFade = true
		p.isFading = true
		p.fadeStartTime = p.now()
	}
	return true
}

// FadeStartTime is when IsReady first returned true; zero before that.
func (p *Procedural) FadeStartTime() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fadeStartTime
}

func (p *Procedural) IsFading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isFading
}

// SetIsFading lets the renderer end the fade once it has run its course.
func (p *Procedural) SetIsFading(fading bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.isFading = fading
}

func (p *Procedural) HasVertexShader() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data.VertexShaderURL != ""
}

// SetVertexReplacements sets extra source replacements for the vertex stage
// and forces a rebuild.
func (p *Procedural) SetVertexReplacements(replacements map[string]string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vertexReplacements = copyReplacements(replacements)
	p.shaderDirty = true
}

func (p *Procedural) SetFragmentReplacements(replacements map[string]string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fragmentReplacements = copyReplacements(replacements)
	p.shaderDirty = true
}

func copyReplacements(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// GetColor returns the color to tint the entity with. Version 1 shaders
// compute the final color themselves, so they get opaque white.
func (p *Procedural) GetColor(entityColor mgl32.Vec4) mgl32.Vec4 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data.Version == 1 {
		return mgl32.Vec4{1, 1, 1, 1}
	}
	return entityColor
}

// Data returns the descriptor currently applied.
func (p *Procedural) Data() api.ProceduralData {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data
}
