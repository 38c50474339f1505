package renderer

import (
	"fmt"
	"log"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/pkg/errors"
	"github.com/richinsley/goprocedural/gpu"
	"github.com/richinsley/goprocedural/shader"
	xlate "github.com/richinsley/goprocedural/translator"
)

// glProgram is the backend handle attached to a compiled gpu.Program. It maps
// reflection slots to program locations.
type glProgram struct {
	id       uint32
	uniforms map[int]int32
}

func (p *glProgram) location(slot int) int32 {
	if loc, ok := p.uniforms[slot]; ok {
		return loc
	}
	return -1
}

// Compile implements gpu.Compiler. Failures are recorded on the program; the
// error is returned for logging only.
func (b *Backend) Compile(p *gpu.Program) error {
	prog, err := b.compile(p)
	if err != nil {
		p.SetCompiled(nil, true, err.Error())
		return err
	}
	p.SetCompiled(prog, false, "")
	b.programs = append(b.programs, p)
	return nil
}

func (b *Backend) compile(p *gpu.Program) (*glProgram, error) {
	if p.Vertex == nil || p.Fragment == nil {
		return nil, errors.New("program is missing a stage")
	}
	vs, err := b.stageSource(p.Vertex)
	if err != nil {
		return nil, err
	}
	fs, err := b.stageSource(p.Fragment)
	if err != nil {
		return nil, err
	}

	id, err := newProgram(vs.Code, fs.Code)
	if err != nil {
		return nil, err
	}

	prog := &glProgram{id: id, uniforms: map[int]int32{}}
	gl.UseProgram(id)
	for _, stage := range []struct {
		shader     *gpu.Shader
		translated *xlate.Translated
	}{{p.Vertex, vs}, {p.Fragment, fs}} {
		vsrc := stage.shader.Source.VariantSource(b.dialect, shader.Mono)
		if vsrc == nil {
			continue
		}
		r := vsrc.Reflection
		for name, slot := range r.Uniforms {
			if loc := uniformLocation(id, stage.translated, name); loc != -1 {
				prog.uniforms[slot] = loc
			}
		}
		for name, slot := range r.Textures {
			if loc := uniformLocation(id, stage.translated, name); loc != -1 {
				gl.Uniform1i(loc, int32(slot))
			}
		}
		for name, slot := range r.UniformBuffers {
			bindUniformBlock(id, stage.translated, name, slot)
		}
	}
	gl.UseProgram(0)
	return prog, nil
}

// stageSource returns the code to hand to the driver. GLSL 4.10 sources are
// compiled as they are; ESSL sources go through the translator first.
func (b *Backend) stageSource(s *gpu.Shader) (*xlate.Translated, error) {
	if s.Source == nil {
		return nil, errors.Errorf("%s shader has no source", s.Stage)
	}
	code := s.Source.GetSource(b.dialect, shader.Mono)
	if code == "" {
		return nil, errors.Errorf("%s shader %s has no %s source", s.Stage, s.Source.Name, b.dialect)
	}
	if b.dialect != shader.GLSLES300 {
		return xlate.Identity(code), nil
	}
	return xlate.Translate(code, s.Stage.String())
}

// uniformLocation resolves a reflection name. Array uniforms are reflected as
// name[0]; the translator maps the base name.
func uniformLocation(program uint32, t *xlate.Translated, name string) int32 {
	mapped := t.MappedName(name)
	if base, ok := strings.CutSuffix(name, "[0]"); ok {
		mapped = t.MappedName(base) + "[0]"
	}
	return gl.GetUniformLocation(program, gl.Str(mapped+"\x00"))
}

func bindUniformBlock(program uint32, t *xlate.Translated, name string, slot int) {
	index := gl.GetUniformBlockIndex(program, gl.Str(t.MappedName(name)+"\x00"))
	if index == gl.INVALID_INDEX {
		// the translator prefixes user identifiers
		index = gl.GetUniformBlockIndex(program, gl.Str("_u"+name+"\x00"))
	}
	if index == gl.INVALID_INDEX {
		return
	}
	gl.UniformBlockBinding(program, index, uint32(slot))
}

func deleteProgram(p *gpu.Program) {
	if prog, ok := p.Handle().(*glProgram); ok && prog.id != 0 {
		gl.DeleteProgram(prog.id)
		prog.id = 0
	}
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, errors.Wrap(err, "vertex")
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, errors.Wrap(err, "fragment")
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
		gl.DeleteProgram(program)
		return 0, errors.Errorf("failed to link program: %v", strings.TrimRight(logText, "\x00"))
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	id := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(id, 1, csources, nil)
	free()
	gl.CompileShader(id)

	var status int32
	gl.GetShaderiv(id, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(id, logLength, nil, gl.Str(logText))
		gl.DeleteShader(id)
		log.Printf("Warning: shader source that failed to compile:\n%s", numberLines(source))
		return 0, errors.Errorf("failed to compile shader: %v", strings.TrimRight(logText, "\x00"))
	}
	return id, nil
}

// numberLines prefixes each line with its number so driver errors can be
// matched to the source.
func numberLines(source string) string {
	var sb strings.Builder
	for i, line := range strings.Split(source, "\n") {
		fmt.Fprintf(&sb, "%4d: %s\n", i+1, line)
	}
	return sb.String()
}
