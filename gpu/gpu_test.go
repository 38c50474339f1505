package gpu

import (
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goprocedural/api"
	"github.com/richinsley/goprocedural/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSampler(t *testing.T) {
	assert.Equal(t, DefaultSampler(), ParseSampler(nil))
	assert.True(t, DefaultSampler().UsesMips())

	maxMip := 3.0
	s := ParseSampler(&api.Sampler{
		Filter:      "point",
		Wrap:        "clamp",
		WrapV:       "mirror",
		MaxMip:      &maxMip,
		BorderColor: []float64{0.5, 0.25},
	})
	assert.Equal(t, FilterMinMagPoint, s.Filter)
	assert.Equal(t, WrapClamp, s.WrapU)
	assert.Equal(t, WrapMirror, s.WrapV)
	assert.Equal(t, WrapClamp, s.WrapW)
	assert.Equal(t, float32(3), s.MaxMip)
	assert.Equal(t, mgl32.Vec4{0.5, 0.25, 0, 0}, s.BorderColor)
	assert.False(t, s.UsesMips())

	s = ParseSampler(&api.Sampler{Filter: "bogus", Wrap: "bogus"})
	assert.Equal(t, FilterMinMagMipLinear, s.Filter)
	assert.Equal(t, WrapRepeat, s.WrapU)
}

func TestBatchRecordsCopies(t *testing.T) {
	b := NewBatch("b")
	values := []float32{1, 2, 3}
	b.Uniform3fv(220, 1, values)
	values[0] = 9

	b.Uniform4f(221, mgl32.Vec4{1, 2, 3, 4})
	require.Len(t, b.Commands, 2)
	assert.Equal(t, []float32{1, 2, 3}, b.Commands[0].Values)
	assert.Equal(t, "Uniform3fv", b.Commands[0].Type.String())
	assert.Len(t, b.CommandsOfType(CommandUniform4f), 1)

	p := CreatePipeline(CreateProgram(nil, nil), NewState())
	b.SetPipeline(p)
	assert.Same(t, p, b.Pipeline())

	b.Clear()
	assert.Empty(t, b.Commands)
	assert.Nil(t, b.Pipeline())
}

func TestShadersSnapshotSource(t *testing.T) {
	src := shader.NewSource("s", "void main() {}\n", shader.NewReflection())
	vs := CreateVertex(src)
	src.Replacements["main"] = "other"
	assert.Empty(t, vs.Source.Replacements)
	assert.Equal(t, VertexStage, vs.Stage)
	assert.Equal(t, "fragment", CreatePixel(src).Stage.String())
}

func TestProgramCompileOutcome(t *testing.T) {
	p := CreateProgram(nil, nil)
	assert.False(t, p.Compiled())
	assert.False(t, p.CompilationHasFailed())

	p.SetCompiled(uint32(7), true, "syntax error")
	assert.True(t, p.Compiled())
	assert.True(t, p.CompilationHasFailed())
	assert.Equal(t, "syntax error", p.CompileLog())
	assert.Equal(t, uint32(7), p.Handle())
}

func TestTextureStamp(t *testing.T) {
	tex := NewTexture(image.NewNRGBA(image.Rect(0, 0, 4, 2)), FormatSRGBA8)
	assert.Equal(t, 4, tex.Width())
	assert.Equal(t, 2, tex.Height())

	stamp := tex.Stamp()
	tex.SetSampler(DefaultSampler())
	assert.Equal(t, stamp, tex.Stamp(), "same sampler is not a change")
	tex.SetSampler(NewSampler(FilterMinMagPoint))
	tex.SetAutoGenerateMips(true)
	assert.Equal(t, stamp+2, tex.Stamp())
}

func TestBufferGrows(t *testing.T) {
	b := NewBuffer(4)
	b.SetSubData(2, []byte{1, 2, 3, 4})
	data, stamp := b.Bytes()
	assert.Equal(t, []byte{0, 0, 1, 2, 3, 4}, data)
	assert.Equal(t, uint64(1), stamp)
	assert.Equal(t, 6, b.Size())
}

func TestStates(t *testing.T) {
	s := NewState()
	s.SetDepthTest(true, false, LessEqual)
	s.SetBlendFunction(true, SrcAlpha, BlendOpAdd, InvSrcAlpha, FactorAlpha, BlendOpAdd, One)
	assert.False(t, s.DepthWrite)
	assert.Equal(t, LessEqual, s.DepthFunc)
	assert.Equal(t, InvSrcAlpha, s.Blend.DestColor)
	assert.True(t, s.Blend.Enabled)
}
