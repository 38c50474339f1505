package gpu

import (
	"sync"

	"github.com/richinsley/goprocedural/shader"
)

type Stage int

const (
	VertexStage Stage = iota
	FragmentStage
)

func (s Stage) String() string {
	if s == VertexStage {
		return "vertex"
	}
	return "fragment"
}

// Shader is one stage's source, snapshotted at creation. Later edits to the
// Source it was created from do not reach it.
type Shader struct {
	Stage  Stage
	Source *shader.Source
}

func CreateVertex(src *shader.Source) *Shader {
	return &Shader{Stage: VertexStage, Source: src.Clone()}
}

func CreatePixel(src *shader.Source) *Shader {
	return &Shader{Stage: FragmentStage, Source: src.Clone()}
}

// Program pairs a vertex and a fragment shader. Whether it compiled is only
// known after a Compiler has run on it.
type Program struct {
	Vertex   *Shader
	Fragment *Shader

	mu       sync.Mutex
	compiled bool
	failed   bool
	log      string
	handle   any
}

func CreateProgram(vs, fs *Shader) *Program {
	return &Program{Vertex: vs, Fragment: fs}
}

// CompilationHasFailed reports a failed compile or link.
func (p *Program) CompilationHasFailed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failed
}

func (p *Program) Compiled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.compiled
}

// CompileLog holds the compiler output of a failed compile.
func (p *Program) CompileLog() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.log
}

// SetCompiled is called by backends once a compile attempt finished.
func (p *Program) SetCompiled(handle any, failed bool, log string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.compiled = true
	p.handle = handle
	p.failed = failed
	p.log = log
}

// Handle returns the backend object attached by SetCompiled.
func (p *Program) Handle() any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handle
}

// Compiler turns a Program into a backend program. Implementations record the
// outcome on the Program with SetCompiled; the returned error is informational.
type Compiler interface {
	Compile(p *Program) error
}

// Pipeline is a program plus the fixed-function state it is drawn with.
type Pipeline struct {
	Program *Program
	State   *State
}

func CreatePipeline(program *Program, state *State) *Pipeline {
	return &Pipeline{Program: program, State: state}
}
