package renderer

import (
	"log"
	"sync"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/richinsley/goprocedural/gpu"
	"github.com/richinsley/goprocedural/graphics"
	"github.com/richinsley/goprocedural/options"
	"github.com/richinsley/goprocedural/procedural"
	"github.com/richinsley/goprocedural/shader"
)

var glInit sync.Once

// Renderer draws one procedural material on a quad in the context window.
type Renderer struct {
	context graphics.Context
	backend *Backend
	options *options.Options
	batch   *gpu.Batch

	quadVAO uint32
	quadVBO uint32
}

// Interleaved position (vec4), normal (vec3), color (vec4) and uv (vec2).
const vertexFloats = 13

var quadVertices = []float32{
	-1, -1, 0, 1, 0, 0, 1, 1, 1, 1, 1, 0, 0,
	1, -1, 0, 1, 0, 0, 1, 1, 1, 1, 1, 1, 0,
	1, 1, 0, 1, 0, 0, 1, 1, 1, 1, 1, 1, 1,
	-1, -1, 0, 1, 0, 0, 1, 1, 1, 1, 1, 0, 0,
	1, 1, 0, 1, 0, 0, 1, 1, 1, 1, 1, 1, 1,
	-1, 1, 0, 1, 0, 0, 1, 1, 1, 1, 1, 0, 1,
}

// NewRenderer makes ctx current, loads GL and builds the quad.
func NewRenderer(ctx graphics.Context, opts *options.Options) (*Renderer, error) {
	dialect, err := opts.ShaderDialect()
	if err != nil {
		return nil, err
	}
	ctx.MakeCurrent()
	var initErr error
	glInit.Do(func() { initErr = gl.Init() })
	if initErr != nil {
		return nil, errors.Wrap(initErr, "failed to initialize OpenGL")
	}
	log.Printf("OpenGL version %s", gl.GoStr(gl.GetString(gl.VERSION)))

	r := &Renderer{
		context: ctx,
		backend: NewBackend(dialect),
		options: opts,
		batch:   &gpu.Batch{},
	}

	gl.GenVertexArrays(1, &r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	stride := int32(vertexFloats * 4)
	offset := 0
	for loc, size := range []int32{4, 3, 4, 2} {
		gl.EnableVertexAttribArray(uint32(loc))
		gl.VertexAttribPointer(uint32(loc), size, gl.FLOAT, false, stride, gl.PtrOffset(offset))
		offset += int(size) * 4
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	gl.BlendColor(0, 0, 0, 1)
	return r, nil
}

// Backend is the compiler materials must be configured with.
func (r *Renderer) Backend() *Backend {
	return r.backend
}

// Shutdown releases GL objects. The window is owned by the caller.
func (r *Renderer) Shutdown() {
	r.backend.Shutdown()
	gl.DeleteBuffers(1, &r.quadVBO)
	gl.DeleteVertexArrays(1, &r.quadVAO)
}

// RenderFrame draws material if it is ready, returning false while it still
// waits on its shader or channels.
func (r *Renderer) RenderFrame(material *procedural.ProceduralMaterial, created time.Time, elapsed float64) bool {
	width, height := r.context.GetFramebufferSize()
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(0.1, 0.1, 0.12, 1)
	gl.DepthMask(true)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT | gl.STENCIL_BUFFER_BIT)

	if !material.IsReady() {
		return false
	}

	scale := float32(1)
	if material.IsFading() {
		fade := float32(time.Since(material.FadeStartTime()).Seconds() / *r.options.FadeSeconds)
		if fade >= 1 || *r.options.FadeSeconds <= 0 {
			material.SetIsFading(false)
		} else {
			scale = fade
		}
	}

	angle := float32(0)
	if *r.options.Spin {
		angle = float32(elapsed) * 0.5
	}
	orientation := mgl32.QuatRotate(angle, mgl32.Vec3{0, 1, 0})
	size := mgl32.Vec3{2, 2, 0}.Mul(scale)
	model := orientation.Mat4().Mul4(mgl32.Scale3D(scale, scale, scale))

	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	projection := mgl32.Perspective(mgl32.DegToRad(45), aspect, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	mvp := projection.Mul4(view).Mul4(model)

	key := procedural.NewProgramKey(*r.options.Transparent, false, false)
	r.batch.Clear()
	material.Prepare(r.batch, mgl32.Vec3{}, size, orientation, created, key)
	r.batch.UniformMatrix4fv(shader.UniformTransformModelViewProjection, 1, false, mvp[:])
	r.batch.UniformMatrix4fv(shader.UniformTransformModel, 1, false, model[:])
	r.backend.Execute(r.batch)

	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(quadVertices)/vertexFloats))
	gl.BindVertexArray(0)
	return true
}

// Run draws until the window closes. Each string received on updates replaces
// the material's descriptor.
func (r *Renderer) Run(material *procedural.ProceduralMaterial, updates <-chan string) {
	created := time.Now()
	startTime := r.context.Time()
	waiting := false

	for !r.context.ShouldClose() {
		select {
		case descriptor, ok := <-updates:
			if ok {
				log.Printf("Applying updated procedural descriptor")
				material.SetProceduralString(descriptor)
			} else {
				updates = nil
			}
		default:
		}

		ready := r.RenderFrame(material, created, r.context.Time()-startTime)
		if ready == waiting {
			waiting = !ready
			if waiting {
				r.context.SetTitle("goprocedural (loading)")
			} else {
				r.context.SetTitle("goprocedural")
			}
		}
		r.context.EndFrame()
	}
}
