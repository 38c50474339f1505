package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyReplacementsRegion(t *testing.T) {
	code := "a\n//BLOCK_BEGIN\ndefault\n//BLOCK_END\nb //VERSION //VERSION"
	out := ApplyReplacements(code, map[string]string{
		"//BLOCK":   "user",
		"//VERSION": "#define V2",
	})
	assert.Equal(t, "a\nuser\nb #define V2 #define V2", out)
}

func TestApplyReplacementsUnterminatedRegion(t *testing.T) {
	out := ApplyReplacements("//BLOCK_BEGIN x", map[string]string{"//BLOCK": "y"})
	assert.Equal(t, "y_BEGIN x", out)
}

func TestCloneIsDeep(t *testing.T) {
	src := SimpleProceduralFragment()
	clone := src.Clone()
	clone.Replacements[ProceduralBlock] = "x"
	for _, r := range clone.AllReflections() {
		r.Uniforms["custom"] = UniformCustom
	}

	assert.Empty(t, src.Replacements)
	for _, r := range src.AllReflections() {
		assert.NotContains(t, r.Uniforms, "custom")
	}
	assert.Len(t, clone.AllReflections(), len(AllDialects)*len(AllVariants))
}

func TestTemplates(t *testing.T) {
	for _, src := range []*Source{
		SimpleProceduralVertex(),
		SimpleProceduralDeformedVertex(),
		SimpleProceduralDeformedDQVertex(),
		SimpleProceduralFragment(),
		SimpleProceduralTranslucentFragment(),
	} {
		t.Run(src.Name, func(t *testing.T) {
			require.True(t, src.Valid())
			gl := src.GetSource(GLSL410, Mono)
			es := src.GetSource(GLSLES300, Stereo)
			assert.Contains(t, gl, "#version 410")
			assert.Contains(t, es, "#version 300 es")
			assert.Contains(t, gl, ProceduralVersion)
			assert.Contains(t, gl, ProceduralBlock+"_BEGIN")

			vs := src.VariantSource(GLSL410, Mono)
			assert.Equal(t, BufferInputs, vs.Reflection.UniformBuffers["standardInputsBuffer"])
		})
	}

	frag := SimpleProceduralFragment().VariantSource(GLSL410, Mono)
	assert.Equal(t, TextureChannel3, frag.Reflection.Textures["iChannel3"])
	deformed := SimpleProceduralDeformedVertex().VariantSource(GLSL410, Mono)
	assert.Equal(t, BufferSkinCluster, deformed.Reflection.UniformBuffers["skinClusterBuffer"])
}

func TestMissingVariant(t *testing.T) {
	var src *Source
	assert.False(t, src.Valid())
	assert.Nil(t, src.VariantSource(GLSL410, Mono))
	assert.Equal(t, "", (&Source{}).GetSource(GLSL410, Mono))
}
