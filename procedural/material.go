package procedural

import (
	"github.com/richinsley/goprocedural/api"
	"github.com/richinsley/goprocedural/shader"
)

// ErrorFallbackFragmentPath is the packaged pink checkerboard drawn when a
// procedural program fails to compile.
const ErrorFallbackFragmentPath = ":/shaders/errorShader.frag"

// ProceduralMaterial is a Procedural set up with the built-in templates. It
// also remembers the descriptor JSON it was last given.
type ProceduralMaterial struct {
	*Procedural

	// guarded by Procedural.mu
	proceduralString string
}

func NewProceduralMaterial(cfg Config) *ProceduralMaterial {
	p := New(cfg)
	p.VertexSource = shader.SimpleProceduralVertex()
	p.VertexSourceSkinned = shader.SimpleProceduralDeformedVertex()
	p.VertexSourceSkinnedDQ = shader.SimpleProceduralDeformedDQVertex()
	p.OpaqueFragmentSource = shader.SimpleProceduralFragment()
	p.TransparentFragmentSource = shader.SimpleProceduralTranslucentFragment()
	p.ErrorFallbackFragmentPath = ErrorFallbackFragmentPath
	return &ProceduralMaterial{Procedural: p}
}

// SetProceduralString parses descriptor JSON and applies it.
func (m *ProceduralMaterial) SetProceduralString(proceduralJSON string) {
	data := api.ParseProceduralData(proceduralJSON)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proceduralString = proceduralJSON
	m.setProceduralData(data)
}

func (m *ProceduralMaterial) ProceduralString() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.proceduralString
}

// IsProcedural reports whether the material has a descriptor at all.
func (m *ProceduralMaterial) IsProcedural() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.proceduralString != ""
}
