package procedural

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/richinsley/goprocedural/gpu"
	"github.com/richinsley/goprocedural/resources"
	"github.com/richinsley/goprocedural/shader"
)

// ProgramKey selects the shader variant a draw needs. Distinct keys never
// share cached pipelines.
type ProgramKey uint8

const (
	keyTransparent ProgramKey = 1 << iota
	keySkinned
	keySkinnedDQ
)

func NewProgramKey(transparent, skinned, skinnedDQ bool) ProgramKey {
	var k ProgramKey
	if transparent {
		k |= keyTransparent
	}
	if skinned {
		k |= keySkinned
	}
	if skinnedDQ {
		k |= keySkinnedDQ
	}
	return k
}

func (k ProgramKey) IsTransparent() bool { return k&keyTransparent != 0 }
func (k ProgramKey) IsSkinned() bool     { return k&keySkinned != 0 }
func (k ProgramKey) IsSkinnedDQ() bool   { return k&keySkinnedDQ != 0 }

func (k ProgramKey) String() string {
	var parts []string
	if k.IsTransparent() {
		parts = append(parts, "transparent")
	}
	if k.IsSkinned() {
		parts = append(parts, "skinned")
	}
	if k.IsSkinnedDQ() {
		parts = append(parts, "skinnedDQ")
	}
	if len(parts) == 0 {
		return "opaque"
	}
	return strings.Join(parts, "|")
}

// pipelineEntry holds the three pipelines built for one key and the uniform
// slots patched into their reflection.
type pipelineEntry struct {
	main     *gpu.Pipeline
	error    *gpu.Pipeline
	disabled *gpu.Pipeline
	slots    map[string]int
}

// selectPipeline picks the pipeline to draw with. It depends only on its
// arguments so it is evaluated fresh every frame.
func selectPipeline(entry *pipelineEntry, enabled bool) *gpu.Pipeline {
	if entry == nil {
		return nil
	}
	if !enabled {
		return entry.disabled
	}
	if entry.main == nil || entry.main.Program == nil || entry.main.Program.CompilationHasFailed() {
		return entry.error
	}
	return entry.main
}

// buildPipelines compiles the main, error and disabled pipelines for key.
// Must be called with p.mu held.
func (p *Procedural) buildPipelines(key ProgramKey) *pipelineEntry {
	var vertexTemplate *shader.Source
	switch {
	case key.IsSkinnedDQ():
		vertexTemplate = p.VertexSourceSkinnedDQ
	case key.IsSkinned():
		vertexTemplate = p.VertexSourceSkinned
	default:
		vertexTemplate = p.VertexSource
	}
	fragmentTemplate := p.OpaqueFragmentSource
	if key.IsTransparent() && p.TransparentFragmentSource.Valid() {
		fragmentTemplate = p.TransparentFragmentSource
	}
	vertexSource := vertexTemplate.Clone()
	fragmentSource := fragmentTemplate.Clone()

	versionDefine := fmt.Sprintf("#define PROCEDURAL_V%d", p.data.Version)
	fragmentSource.SetReplacements(p.fragmentReplacements)
	fragmentSource.Replacements[shader.ProceduralVersion] = versionDefine
	if p.fragmentShader.source != "" {
		fragmentSource.Replacements[shader.ProceduralBlock] = p.fragmentShader.source
	}
	vertexSource.SetReplacements(p.vertexReplacements)
	vertexSource.Replacements[shader.ProceduralVersion] = versionDefine
	if p.vertexShader.source != "" {
		vertexSource.Replacements[shader.ProceduralBlock] = p.vertexShader.source
	}

	// Register descriptor uniforms in every dialect/variant reflection
	slots := assignSlots(p.data.Uniforms, fragmentSource, vertexSource)

	state := p.opaqueState
	if key.IsTransparent() {
		state = p.transparentState
	}
	entry := &pipelineEntry{slots: slots}
	entry.main = p.createPipeline(key, "main", vertexSource, fragmentSource, state)

	// Error fallback: pink checkerboard
	delete(vertexSource.Replacements, shader.ProceduralBlock)
	fragmentSource.Replacements[shader.ProceduralBlock] = p.errorFallbackSource()
	entry.error = p.createPipeline(key, "error", vertexSource, fragmentSource, p.opaqueState)

	// Disabled fallback: the templates' own body
	delete(vertexSource.Replacements, shader.ProceduralBlock)
	delete(fragmentSource.Replacements, shader.ProceduralBlock)
	entry.disabled = p.createPipeline(key, "disabled", vertexSource, fragmentSource, p.opaqueState)

	p.lastCompile = p.now()
	if p.firstCompile.IsZero() {
		p.firstCompile = p.lastCompile
	}
	p.frameCount = 0
	return entry
}

func (p *Procedural) createPipeline(key ProgramKey, kind string, vs, fs *shader.Source, state *gpu.State) *gpu.Pipeline {
	program := gpu.CreateProgram(gpu.CreateVertex(vs), gpu.CreatePixel(fs))
	if p.compiler != nil {
		if err := p.compiler.Compile(program); err != nil {
			log.Printf("Warning: %s procedural program (%s) failed to compile: %v", kind, key, err)
		}
	}
	return gpu.CreatePipeline(program, state)
}

// errorFallbackSource loads the error body once.
func (p *Procedural) errorFallbackSource() string {
	if p.errorFallbackFragmentSource != "" || p.ErrorFallbackFragmentPath == "" {
		return p.errorFallbackFragmentSource
	}
	var data []byte
	var err error
	if resources.IsPackagedPath(p.ErrorFallbackFragmentPath) {
		data, err = resources.ReadFile(p.ErrorFallbackFragmentPath)
	} else {
		data, err = os.ReadFile(p.ErrorFallbackFragmentPath)
	}
	if err != nil {
		log.Printf("Warning: failed to load error fallback shader: %v", err)
		return ""
	}
	p.errorFallbackFragmentSource = string(data)
	return p.errorFallbackFragmentSource
}
