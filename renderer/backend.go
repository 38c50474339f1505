package renderer

import (
	"log"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goprocedural/gpu"
	"github.com/richinsley/goprocedural/shader"
)

// Backend compiles gpu programs and replays recorded batches against the
// current OpenGL context. All methods must run on the GL thread.
type Backend struct {
	dialect shader.Dialect

	programs []*gpu.Program
	textures map[*gpu.Texture]*glTexture
	buffers  map[*gpu.Buffer]*glBuffer
	current  *glProgram
}

type glBuffer struct {
	id    uint32
	stamp uint64
	size  int
}

// NewBackend returns a backend compiling the given dialect. GLSLES300
// sources are translated to desktop GLSL before compiling.
func NewBackend(dialect shader.Dialect) *Backend {
	return &Backend{
		dialect:  dialect,
		textures: map[*gpu.Texture]*glTexture{},
		buffers:  map[*gpu.Buffer]*glBuffer{},
	}
}

// Execute replays batch in order.
func (b *Backend) Execute(batch *gpu.Batch) {
	for _, c := range batch.Commands {
		switch c.Type {
		case gpu.CommandSetPipeline:
			b.setPipeline(c.Pipeline)
		case gpu.CommandSetResourceTexture:
			b.bindTexture(c.Slot, c.Texture)
		case gpu.CommandSetUniformBuffer:
			b.bindUniformBuffer(c.Slot, c.Buffer, c.Offset, c.Size)
		default:
			b.uniform(c)
		}
	}
}

func (b *Backend) setPipeline(p *gpu.Pipeline) {
	b.current = nil
	if p == nil || p.Program == nil {
		gl.UseProgram(0)
		return
	}
	prog, ok := p.Program.Handle().(*glProgram)
	if !ok || prog.id == 0 {
		gl.UseProgram(0)
		return
	}
	b.current = prog
	gl.UseProgram(prog.id)
	if p.State != nil {
		applyState(p.State)
	}
}

func (b *Backend) uniform(c gpu.Command) {
	if b.current == nil {
		return
	}
	loc := b.current.location(c.Slot)
	if loc == -1 || len(c.Values) == 0 {
		return
	}
	v := c.Values
	count := int32(c.Count)
	switch c.Type {
	case gpu.CommandUniform1f:
		gl.Uniform1f(loc, v[0])
	case gpu.CommandUniform2f:
		gl.Uniform2f(loc, v[0], v[1])
	case gpu.CommandUniform3f:
		gl.Uniform3f(loc, v[0], v[1], v[2])
	case gpu.CommandUniform4f:
		gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
	case gpu.CommandUniform3fv:
		gl.Uniform3fv(loc, count, &v[0])
	case gpu.CommandUniform4fv:
		gl.Uniform4fv(loc, count, &v[0])
	case gpu.CommandUniformMatrix3fv:
		gl.UniformMatrix3fv(loc, count, c.Transpose, &v[0])
	case gpu.CommandUniformMatrix4fv:
		gl.UniformMatrix4fv(loc, count, c.Transpose, &v[0])
	default:
		log.Printf("Warning: unhandled batch command %s", c.Type)
	}
}

func (b *Backend) bindTexture(slot int, tex *gpu.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(slot))
	if tex == nil {
		gl.BindTexture(gl.TEXTURE_2D, 0)
		return
	}
	t, ok := b.textures[tex]
	if !ok {
		t = uploadTexture(tex)
		b.textures[tex] = t
	}
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	if t.stamp != tex.Stamp() {
		t.apply(tex)
	}
}

func (b *Backend) bindUniformBuffer(slot int, buf *gpu.Buffer, offset, size int) {
	if buf == nil {
		gl.BindBufferBase(gl.UNIFORM_BUFFER, uint32(slot), 0)
		return
	}
	ub, ok := b.buffers[buf]
	if !ok {
		ub = &glBuffer{}
		gl.GenBuffers(1, &ub.id)
		b.buffers[buf] = ub
	}
	data, stamp := buf.Bytes()
	gl.BindBuffer(gl.UNIFORM_BUFFER, ub.id)
	if ub.size != len(data) {
		gl.BufferData(gl.UNIFORM_BUFFER, len(data), gl.Ptr(data), gl.DYNAMIC_DRAW)
		ub.size = len(data)
	} else if ub.stamp != stamp && len(data) > 0 {
		gl.BufferSubData(gl.UNIFORM_BUFFER, 0, len(data), gl.Ptr(data))
	}
	ub.stamp = stamp
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	gl.BindBufferRange(gl.UNIFORM_BUFFER, uint32(slot), ub.id, offset, size)
}

// Shutdown releases every GL object the backend created.
func (b *Backend) Shutdown() {
	for _, p := range b.programs {
		deleteProgram(p)
	}
	b.programs = nil
	for tex, t := range b.textures {
		t.destroy()
		delete(b.textures, tex)
	}
	for buf, ub := range b.buffers {
		gl.DeleteBuffers(1, &ub.id)
		delete(b.buffers, buf)
	}
}

func applyState(s *gpu.State) {
	switch s.CullMode {
	case gpu.CullNone:
		gl.Disable(gl.CULL_FACE)
	case gpu.CullFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	default:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}

	if s.DepthTest {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(comparisonFunction(s.DepthFunc))
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.DepthMask(s.DepthWrite)

	if s.Blend.Enabled {
		gl.Enable(gl.BLEND)
		gl.BlendFuncSeparate(
			blendArg(s.Blend.SrcColor), blendArg(s.Blend.DestColor),
			blendArg(s.Blend.SrcAlpha), blendArg(s.Blend.DestAlpha))
		gl.BlendEquationSeparate(blendOp(s.Blend.OpColor), blendOp(s.Blend.OpAlpha))
	} else {
		gl.Disable(gl.BLEND)
	}

	if s.Stencil.Enabled {
		gl.Enable(gl.STENCIL_TEST)
		gl.StencilFunc(comparisonFunction(s.Stencil.Function), int32(s.Stencil.Reference), uint32(s.Stencil.ReadMask))
		gl.StencilMask(uint32(s.Stencil.WriteMask))
	} else {
		gl.Disable(gl.STENCIL_TEST)
	}

	if s.AntialiasedLines {
		gl.Enable(gl.LINE_SMOOTH)
	} else {
		gl.Disable(gl.LINE_SMOOTH)
	}
}

func comparisonFunction(f gpu.ComparisonFunction) uint32 {
	switch f {
	case gpu.Never:
		return gl.NEVER
	case gpu.Less:
		return gl.LESS
	case gpu.Equal:
		return gl.EQUAL
	case gpu.LessEqual:
		return gl.LEQUAL
	case gpu.Greater:
		return gl.GREATER
	case gpu.NotEqual:
		return gl.NOTEQUAL
	case gpu.GreaterEqual:
		return gl.GEQUAL
	default:
		return gl.ALWAYS
	}
}

func blendArg(a gpu.BlendArg) uint32 {
	switch a {
	case gpu.Zero:
		return gl.ZERO
	case gpu.SrcAlpha:
		return gl.SRC_ALPHA
	case gpu.InvSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case gpu.FactorAlpha:
		return gl.CONSTANT_ALPHA
	default:
		return gl.ONE
	}
}

func blendOp(op gpu.BlendOp) uint32 {
	if op == gpu.BlendOpSubtract {
		return gl.FUNC_SUBTRACT
	}
	return gl.FUNC_ADD
}
