package procedural

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goprocedural/gpu"
	"github.com/richinsley/goprocedural/shader"
)

// Prepare records everything a draw of this material needs into batch: the
// pipeline for key, the descriptor uniforms, the standard inputs block and the
// channel textures. Changed shader sources are picked up here, and a dirty
// material rebuilds its pipelines before anything is recorded.
func (p *Procedural) Prepare(batch *gpu.Batch, position, size mgl32.Vec3, orientation mgl32.Quat, created time.Time, key ProgramKey) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.entityPosition = position
	p.entityDimensions = size
	p.entityOrientation = orientation.Mat4().Mat3()
	p.entityCreated = created

	if p.fragmentShader.refresh() {
		p.shaderDirty = true
	}
	if p.vertexShader.refresh() {
		p.shaderDirty = true
	}

	if p.shaderDirty {
		p.pipelines = map[ProgramKey]*pipelineEntry{}
	}

	recompiled := false
	entry, ok := p.pipelines[key]
	if !ok {
		entry = p.buildPipelines(key)
		p.pipelines[key] = entry
		recompiled = true
	}

	batch.SetPipeline(selectPipeline(entry, EnableProceduralShaders()))

	if p.shaderDirty || p.uniformsDirty || recompiled || p.prevKey != key {
		p.setupUniforms(entry)
	}

	p.shaderDirty = false
	p.uniformsDirty = false
	p.prevKey = key

	for _, bind := range p.uniforms {
		bind(batch)
	}

	for i, ch := range p.channels {
		if ch == nil || !ch.IsLoaded() {
			continue
		}
		tex := ch.GPUTexture()
		if tex != nil {
			tex.SetAutoGenerateMips(true)
			tex.SetSampler(p.samplers[i])
		}
		batch.SetResourceTexture(shader.TextureChannel0+i, tex)
	}
}

// setupUniforms rebuilds the per-frame binders against the slots of entry's
// programs. Must be called with p.mu held.
func (p *Procedural) setupUniforms(entry *pipelineEntry) {
	p.uniforms = buildUniformBinders(p.data.Uniforms, entry.slots)
	p.uniforms = append(p.uniforms, p.bindStandardInputs)
}

// bindStandardInputs refreshes the standard inputs block and binds it. Every
// call counts as one frame.
func (p *Procedural) bindStandardInputs(batch *gpu.Batch) {
	now := p.now()
	in := &p.standardInputs

	in.Date = dateVector(now)
	in.Position = p.entityPosition.Vec4(1)
	in.Scale = p.entityDimensions.Vec4(1)
	in.Orientation = p.entityOrientation.Mat4()
	in.TimeSinceLastCompile = secondsSince(now, p.lastCompile)
	in.TimeSinceFirstCompile = secondsSince(now, p.firstCompile)
	in.TimeSinceEntityCreation = secondsSince(now, p.entityCreated)
	p.frameCount++
	in.FrameCount = p.frameCount

	for i, ch := range p.channels {
		in.Resolution[i] = mgl32.Vec4{1, 1, 1, 1}
		if ch != nil && ch.IsLoaded() {
			in.Resolution[i] = mgl32.Vec4{float32(ch.Width()), float32(ch.Height()), 1, 1}
		}
	}

	p.standardInputsBuffer.SetSubData(0, in.Bytes())
	batch.SetUniformBuffer(shader.BufferInputs, p.standardInputsBuffer, 0, StandardInputsSize)
}
