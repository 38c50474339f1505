package shader

import (
	"fmt"
)

// ─────────────────────────────────── Headers ───────────────────────────────────

const headerGL = `#version 410 core
`

const headerGLES = `#version 300 es
precision highp float;
precision highp int;
`

const stereoDefine = `#define GPU_TRANSFORM_IS_STEREO
`

// ──────────────────────────────── Shared blocks ────────────────────────────────

// The std140 layout of this block must match procedural.StandardInputs.
const standardInputsBlock = `
layout(std140) uniform standardInputsBuffer {
    vec4 date;
    vec4 position;
    vec4 scale;
    mat4 orientation;
    vec4 resolution[4];
    float time;
    float timeSinceFirstCompile;
    float timeSinceEntityCreation;
    int frameCount;
} standardInputs;

#define iDate standardInputs.date
#define iWorldPosition standardInputs.position.xyz
#define iWorldScale standardInputs.scale.xyz
#define iWorldOrientation mat3(standardInputs.orientation)
#define iChannelResolution standardInputs.resolution
#define iGlobalTime standardInputs.time
#define iTime standardInputs.time
#define iTimeSinceFirstCompile standardInputs.timeSinceFirstCompile
#define iEntityTime standardInputs.timeSinceEntityCreation
#define iFrameCount standardInputs.frameCount
`

const transformUniforms = `
uniform mat4 transformModelViewProjection;
uniform mat4 transformModel;
`

// ─────────────────────────────────── Vertex ────────────────────────────────────

const vertexDataStruct = `
struct ProceduralVertexData {
    vec4 position;
    vec4 nonSkinnedPosition;
    vec3 normal;
    vec3 nonSkinnedNormal;
    vec4 color;
    vec2 texCoord0;
};
`

const vertexInputs = `
layout(location = 0) in vec4 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec4 inColor;
layout(location = 3) in vec2 inTexCoord0;

out vec4 _positionMS;
out vec3 _normalMS;
out vec3 _normalWS;
out vec4 _color;
out vec2 _texCoord0;
`

const defaultVertexBlock = `
//PROCEDURAL_BLOCK_BEGIN
void getProceduralVertex(inout ProceduralVertexData proceduralData) {}
//PROCEDURAL_BLOCK_END
`

const skinLBS = `
const int MAX_CLUSTERS = 128;
layout(std140) uniform skinClusterBuffer {
    mat4 clusterMatrices[MAX_CLUSTERS];
};
layout(location = 5) in ivec4 inSkinClusterIndex;
layout(location = 6) in vec4 inSkinClusterWeight;

void skinPositionNormal(vec4 inPos, vec3 inNrm, out vec4 skinnedPos, out vec3 skinnedNrm) {
    vec4 p = vec4(0.0);
    vec4 n = vec4(0.0);
    for (int i = 0; i < 4; i++) {
        mat4 m = clusterMatrices[inSkinClusterIndex[i]];
        float w = inSkinClusterWeight[i];
        p += m * inPos * w;
        n += m * vec4(inNrm, 0.0) * w;
    }
    skinnedPos = p;
    skinnedNrm = normalize(n.xyz);
}
`

const skinDQ = `
const int MAX_CLUSTERS = 128;
layout(std140) uniform skinClusterBuffer {
    // real part, dual part, scale per cluster
    vec4 clusterDQ[3 * MAX_CLUSTERS];
};
layout(location = 5) in ivec4 inSkinClusterIndex;
layout(location = 6) in vec4 inSkinClusterWeight;

vec3 rotateByQuat(vec4 q, vec3 v) {
    return v + 2.0 * cross(q.xyz, cross(q.xyz, v) + q.w * v);
}

void skinPositionNormal(vec4 inPos, vec3 inNrm, out vec4 skinnedPos, out vec3 skinnedNrm) {
    vec4 real = vec4(0.0);
    vec4 dual = vec4(0.0);
    vec3 scale = vec3(0.0);
    vec4 polarity = clusterDQ[3 * inSkinClusterIndex[0]];
    for (int i = 0; i < 4; i++) {
        int base = 3 * inSkinClusterIndex[i];
        float w = inSkinClusterWeight[i];
        vec4 r = clusterDQ[base];
        vec4 d = clusterDQ[base + 1];
        if (dot(r, polarity) < 0.0) {
            w = -w;
        }
        real += r * w;
        dual += d * w;
        scale += clusterDQ[base + 2].xyz * abs(w);
    }
    float len = length(real);
    real /= len;
    dual /= len;
    vec3 t = 2.0 * (real.w * dual.xyz - dual.w * real.xyz + cross(real.xyz, dual.xyz));
    skinnedPos = vec4(rotateByQuat(real, inPos.xyz * scale) + t, 1.0);
    skinnedNrm = normalize(rotateByQuat(real, inNrm));
}
`

const vertexMainSimple = `
void main(void) {
    ProceduralVertexData proceduralData = ProceduralVertexData(
        inPosition, inPosition, inNormal, inNormal, inColor, inTexCoord0);

#if defined(PROCEDURAL_V3) || defined(PROCEDURAL_V4)
    getProceduralVertex(proceduralData);
#endif

    _positionMS = proceduralData.position;
    _normalMS = proceduralData.normal;
    _normalWS = normalize(mat3(transformModel) * proceduralData.normal);
    _color = proceduralData.color;
    _texCoord0 = proceduralData.texCoord0;
    gl_Position = transformModelViewProjection * proceduralData.position;
}
`

const vertexMainSkinned = `
void main(void) {
    vec4 skinnedPosition;
    vec3 skinnedNormal;
    skinPositionNormal(inPosition, inNormal, skinnedPosition, skinnedNormal);

    ProceduralVertexData proceduralData = ProceduralVertexData(
        skinnedPosition, inPosition, skinnedNormal, inNormal, inColor, inTexCoord0);

#if defined(PROCEDURAL_V3) || defined(PROCEDURAL_V4)
    getProceduralVertex(proceduralData);
#endif

    _positionMS = proceduralData.position;
    _normalMS = proceduralData.normal;
    _normalWS = normalize(mat3(transformModel) * proceduralData.normal);
    _color = proceduralData.color;
    _texCoord0 = proceduralData.texCoord0;
    gl_Position = transformModelViewProjection * proceduralData.position;
}
`

// ────────────────────────────────── Fragment ───────────────────────────────────

const fragmentInputs = `
in vec4 _positionMS;
in vec3 _normalMS;
in vec3 _normalWS;
in vec4 _color;
in vec2 _texCoord0;

uniform sampler2D iChannel0;
uniform sampler2D iChannel1;
uniform sampler2D iChannel2;
uniform sampler2D iChannel3;

layout(location = 0) out vec4 _fragColor0;

struct ProceduralFragment {
    vec3 normal;
    vec3 diffuse;
    vec3 specular;
    vec3 emissive;
    float alpha;
    float roughness;
    float metallic;
    float occlusion;
    float scattering;
};

struct ProceduralFragmentWithPosition {
    vec3 position;
    vec3 normal;
    vec3 diffuse;
    vec3 specular;
    vec3 emissive;
    float alpha;
    float roughness;
    float metallic;
    float occlusion;
    float scattering;
};

vec3 getWorldPosition() {
    return iWorldOrientation * (_positionMS.xyz * iWorldScale) + iWorldPosition;
}
`

// defaultFragmentBlock is what a disabled program renders with.
const defaultFragmentBlock = `
//PROCEDURAL_BLOCK_BEGIN
vec3 getProceduralColor() {
    return _color.rgb;
}

float getProceduralColors(inout vec3 diffuse, inout vec3 specular, inout float shininess) {
    return 1.0;
}

float getProceduralFragment(inout ProceduralFragment proceduralData) {
    return 1.0;
}

float getProceduralFragmentWithPosition(inout ProceduralFragmentWithPosition proceduralData) {
    return 1.0;
}
//PROCEDURAL_BLOCK_END
`

const fragmentShade = `
const vec3 LIGHT_DIRECTION = normalize(vec3(0.3, 1.0, 0.5));

vec3 shade(vec3 normal, vec3 diffuse, vec3 specular, float roughness) {
    vec3 n = normalize(normal);
    float lambert = max(dot(n, LIGHT_DIRECTION), 0.0);
    vec3 h = normalize(LIGHT_DIRECTION + vec3(0.0, 0.0, 1.0));
    float gloss = pow(max(dot(n, h), 0.0), mix(128.0, 2.0, clamp(roughness, 0.0, 1.0)));
    return diffuse * (0.2 + 0.8 * lambert) + specular * gloss;
}
`

func fragmentMain(translucent bool) string {
	alpha := "1.0"
	if translucent {
		alpha = "alpha"
	}
	return fmt.Sprintf(`
void main(void) {
    vec3 normal = normalize(_normalWS);
    vec3 diffuse = _color.rgb;
    vec3 specular = vec3(0.1);
    vec3 emissive = vec3(0.0);
    float roughness = 0.9;
    float alpha = _color.a;
    float emissiveAmount = 0.0;

#if defined(PROCEDURAL_V1)
    diffuse = getProceduralColor().rgb;
    emissiveAmount = 1.0;
    emissive = diffuse;
#elif defined(PROCEDURAL_V2)
    float shininess = 128.0;
    emissiveAmount = getProceduralColors(diffuse, specular, shininess);
    roughness = max(0.0, 1.0 - shininess / 128.0);
    emissive = diffuse;
#elif defined(PROCEDURAL_V3)
    ProceduralFragment proceduralData = ProceduralFragment(
        normal, diffuse, specular, emissive, alpha, roughness, 0.0, 1.0, 0.0);
    emissiveAmount = getProceduralFragment(proceduralData);
    normal = proceduralData.normal;
    diffuse = proceduralData.diffuse;
    specular = proceduralData.specular;
    emissive = proceduralData.emissive;
    alpha = proceduralData.alpha;
    roughness = proceduralData.roughness;
#elif defined(PROCEDURAL_V4)
    ProceduralFragmentWithPosition proceduralData = ProceduralFragmentWithPosition(
        getWorldPosition(), normal, diffuse, specular, emissive, alpha, roughness, 0.0, 1.0, 0.0);
    emissiveAmount = getProceduralFragmentWithPosition(proceduralData);
    normal = proceduralData.normal;
    diffuse = proceduralData.diffuse;
    specular = proceduralData.specular;
    emissive = proceduralData.emissive;
    alpha = proceduralData.alpha;
    roughness = proceduralData.roughness;
#endif

    vec3 lit = shade(normal, diffuse, specular, roughness);
    _fragColor0 = vec4(mix(lit, emissive, clamp(emissiveAmount, 0.0, 1.0)), %s);
}
`, alpha)
}

// ───────────────────────────────── Assembly ────────────────────────────────────

func vertexReflection(skinned bool) Reflection {
	r := NewReflection()
	r.Uniforms["transformModelViewProjection"] = UniformTransformModelViewProjection
	r.Uniforms["transformModel"] = UniformTransformModel
	r.UniformBuffers["standardInputsBuffer"] = BufferInputs
	if skinned {
		r.UniformBuffers["skinClusterBuffer"] = BufferSkinCluster
	}
	return r
}

func fragmentReflection() Reflection {
	r := NewReflection()
	r.UniformBuffers["standardInputsBuffer"] = BufferInputs
	for i := 0; i < MaxTextureChannels; i++ {
		r.Textures[fmt.Sprintf("iChannel%d", i)] = TextureChannel0 + i
	}
	return r
}

// NewSource builds every dialect/variant rendition of body with the given
// reflection.
func NewSource(name, body string, reflection Reflection) *Source {
	src := &Source{
		Name:           name,
		DialectSources: map[Dialect]*DialectSource{},
		Replacements:   map[string]string{},
	}
	for _, d := range AllDialects {
		header := headerGL
		if d == GLSLES300 {
			header = headerGLES
		}
		ds := &DialectSource{VariantSources: map[Variant]*VariantSource{}}
		for _, v := range AllVariants {
			code := header
			if v == Stereo {
				code += stereoDefine
			}
			ds.VariantSources[v] = &VariantSource{
				Code:       code + body,
				Reflection: reflection.Clone(),
			}
		}
		src.DialectSources[d] = ds
	}
	return src
}

func vertexBody(skin string, main string) string {
	return ProceduralVersion + "\n" + standardInputsBlock + transformUniforms + vertexDataStruct +
		vertexInputs + skin + defaultVertexBlock + main
}

func fragmentBody(translucent bool) string {
	return ProceduralVersion + "\n" + standardInputsBlock + fragmentInputs +
		defaultFragmentBlock + fragmentShade + fragmentMain(translucent)
}

// SimpleProceduralVertex is the vertex template for static meshes.
func SimpleProceduralVertex() *Source {
	return NewSource("simple_procedural.vert", vertexBody("", vertexMainSimple), vertexReflection(false))
}

// SimpleProceduralDeformedVertex is the linear-blend skinned vertex template.
func SimpleProceduralDeformedVertex() *Source {
	return NewSource("simple_procedural_deformed.vert", vertexBody(skinLBS, vertexMainSkinned), vertexReflection(true))
}

// SimpleProceduralDeformedDQVertex is the dual-quaternion skinned vertex template.
func SimpleProceduralDeformedDQVertex() *Source {
	return NewSource("simple_procedural_deformeddq.vert", vertexBody(skinDQ, vertexMainSkinned), vertexReflection(true))
}

func SimpleProceduralFragment() *Source {
	return NewSource("simple_procedural.frag", fragmentBody(false), fragmentReflection())
}

func SimpleProceduralTranslucentFragment() *Source {
	return NewSource("simple_procedural_translucent.frag", fragmentBody(true), fragmentReflection())
}
