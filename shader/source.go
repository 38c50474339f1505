package shader

import (
	"sort"
	"strings"
)

// Dialect is a target shading language.
type Dialect int

const (
	GLSL410 Dialect = iota
	GLSLES300
)

var AllDialects = []Dialect{GLSL410, GLSLES300}

func (d Dialect) String() string {
	switch d {
	case GLSL410:
		return "glsl410"
	case GLSLES300:
		return "glsles300"
	}
	return "unknown"
}

// Variant selects mono or single-pass stereo rendering.
type Variant int

const (
	Mono Variant = iota
	Stereo
)

var AllVariants = []Variant{Mono, Stereo}

// Reflection maps source-level names to binding slots.
type Reflection struct {
	Uniforms       map[string]int
	Textures       map[string]int
	UniformBuffers map[string]int
}

func NewReflection() Reflection {
	return Reflection{
		Uniforms:       map[string]int{},
		Textures:       map[string]int{},
		UniformBuffers: map[string]int{},
	}
}

func (r Reflection) Clone() Reflection {
	out := NewReflection()
	for k, v := range r.Uniforms {
		out.Uniforms[k] = v
	}
	for k, v := range r.Textures {
		out.Textures[k] = v
	}
	for k, v := range r.UniformBuffers {
		out.UniformBuffers[k] = v
	}
	return out
}

// VariantSource is the code of one dialect/variant pair and its reflection.
type VariantSource struct {
	Code       string
	Reflection Reflection
}

type DialectSource struct {
	VariantSources map[Variant]*VariantSource
}

// Source holds every dialect/variant rendition of one shader stage plus the
// text replacements applied when code is requested.
type Source struct {
	Name           string
	DialectSources map[Dialect]*DialectSource
	Replacements   map[string]string
}

// Valid reports whether the source has any code.
func (s *Source) Valid() bool {
	return s != nil && len(s.DialectSources) > 0
}

// Clone deep-copies the source, including reflections and replacements.
func (s *Source) Clone() *Source {
	if s == nil {
		return nil
	}
	out := &Source{
		Name:           s.Name,
		DialectSources: make(map[Dialect]*DialectSource, len(s.DialectSources)),
		Replacements:   make(map[string]string, len(s.Replacements)),
	}
	for d, ds := range s.DialectSources {
		nds := &DialectSource{VariantSources: make(map[Variant]*VariantSource, len(ds.VariantSources))}
		for v, vs := range ds.VariantSources {
			nds.VariantSources[v] = &VariantSource{Code: vs.Code, Reflection: vs.Reflection.Clone()}
		}
		out.DialectSources[d] = nds
	}
	for k, v := range s.Replacements {
		out.Replacements[k] = v
	}
	return out
}

// VariantSource returns the dialect/variant entry, or nil.
func (s *Source) VariantSource(d Dialect, v Variant) *VariantSource {
	if s == nil {
		return nil
	}
	ds, ok := s.DialectSources[d]
	if !ok {
		return nil
	}
	return ds.VariantSources[v]
}

// GetSource returns the code for a dialect/variant with replacements applied.
func (s *Source) GetSource(d Dialect, v Variant) string {
	vs := s.VariantSource(d, v)
	if vs == nil {
		return ""
	}
	return ApplyReplacements(vs.Code, s.Replacements)
}

// AllReflections returns every reflection of the source in dialect, then
// variant order.
func (s *Source) AllReflections() []*Reflection {
	var out []*Reflection
	for _, d := range AllDialects {
		ds, ok := s.DialectSources[d]
		if !ok {
			continue
		}
		for _, v := range AllVariants {
			if vs, ok := ds.VariantSources[v]; ok {
				out = append(out, &vs.Reflection)
			}
		}
	}
	return out
}

// SetReplacements replaces the whole replacement table with a copy of r.
func (s *Source) SetReplacements(r map[string]string) {
	s.Replacements = make(map[string]string, len(r))
	for k, v := range r {
		s.Replacements[k] = v
	}
}

// ApplyReplacements substitutes each key in code. When the code carries a
// KEY_BEGIN ... KEY_END region, the whole region (markers included) is
// replaced; otherwise every occurrence of the key is. Keys are applied in
// sorted order so the result is deterministic.
func ApplyReplacements(code string, replacements map[string]string) string {
	keys := make([]string, 0, len(replacements))
	for k := range replacements {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := replacements[key]
		begin := key + "_BEGIN"
		end := key + "_END"
		if bi := strings.Index(code, begin); bi >= 0 {
			if ei := strings.Index(code[bi:], end); ei >= 0 {
				ei += bi + len(end)
				code = code[:bi] + value + code[ei:]
				continue
			}
		}
		code = strings.ReplaceAll(code, key, value)
	}
	return code
}
