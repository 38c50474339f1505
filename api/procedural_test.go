package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProceduralData(t *testing.T) {
	data := ParseProceduralData(`{
		"version": 2,
		"fragmentShaderURL": " http://example.com/a.frag ",
		"vertexShaderURL": "/tmp/a.vert",
		"uniforms": {"speed": 2.5, "color": [1, 0, 0]},
		"channels": ["http://example.com/tex.png", {"url": "qrc:///t.png", "sampler": {"filter": "point"}}]
	}`)

	assert.Equal(t, uint8(2), data.Version)
	assert.Equal(t, "http://example.com/a.frag", data.FragmentShaderURL)
	assert.Equal(t, "file:///tmp/a.vert", data.VertexShaderURL)
	assert.Equal(t, []string{"speed", "color"}, data.Uniforms.Keys())
	assert.Len(t, data.Channels, 2)

	speed, ok := data.Uniforms.Get("speed")
	require.True(t, ok)
	assert.Equal(t, 2.5, speed)
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		json    string
		version uint8
		url     string
	}{
		{`{"shaderUrl": "qrc:///a.frag"}`, 1, "qrc:///a.frag"},
		{`{"version": "3", "shaderUrl": "qrc:///a.frag"}`, 1, "qrc:///a.frag"},
		{`{"version": 4.7, "shaderUrl": "qrc:///a.frag"}`, 4, "qrc:///a.frag"},
		{`{"version": 5, "shaderUrl": "qrc:///a.frag"}`, 0, ""},
		{`{"version": 0, "shaderUrl": "qrc:///a.frag"}`, 0, ""},
		{`{"version": -1, "shaderUrl": "qrc:///a.frag"}`, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.json, func(t *testing.T) {
			data := ParseProceduralData(tt.json)
			assert.Equal(t, tt.version, data.Version)
			assert.Equal(t, tt.url, data.FragmentShaderURL)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	assert.Equal(t, ProceduralData{}, ParseProceduralData(""))
	assert.Equal(t, ProceduralData{}, ParseProceduralData("{not json"))
	assert.Equal(t, ProceduralData{}, ParseProceduralData("[1, 2]"))
}

func TestFragmentURLWinsOverShaderURL(t *testing.T) {
	data := ParseProceduralData(`{"fragmentShaderURL": "qrc:///a.frag", "shaderUrl": "qrc:///b.frag"}`)
	assert.Equal(t, "qrc:///a.frag", data.FragmentShaderURL)
}

func TestParseWrappedEntity(t *testing.T) {
	data := ParseProceduralData(`{"ProceduralEntity": {"version": 3, "shaderUrl": "qrc:///a.frag"}, "other": 1}`)
	assert.Equal(t, uint8(3), data.Version)
	assert.Equal(t, "qrc:///a.frag", data.FragmentShaderURL)
}

func TestUniformsKeepDocumentOrder(t *testing.T) {
	var u Uniforms
	require.NoError(t, json.Unmarshal([]byte(`{"z": 1, "a": [1, 2], "m": 3, "z": 4}`), &u))
	assert.Equal(t, []string{"z", "a", "m"}, u.Keys())
	z, _ := u.Get("z")
	assert.Equal(t, 4.0, z)

	assert.Error(t, json.Unmarshal([]byte(`[1]`), &u))
}

func TestUniformsEquality(t *testing.T) {
	a := Uniforms{{Name: "x", Value: 1.0}, {Name: "y", Value: []any{1.0, 2.0}}}
	b := Uniforms{{Name: "x", Value: 2.0}, {Name: "y", Value: []any{1.0, 2.0}}}
	c := Uniforms{{Name: "y", Value: []any{1.0, 2.0}}, {Name: "x", Value: 1.0}}

	assert.True(t, a.KeysEqual(b))
	assert.False(t, a.Equal(b))
	assert.False(t, a.KeysEqual(c), "order is part of the key set")
	assert.True(t, a.Equal(Uniforms{{Name: "x", Value: 1.0}, {Name: "y", Value: []any{1.0, 2.0}}}))
}

func TestEqual(t *testing.T) {
	raw := `{"version": 2, "shaderUrl": "qrc:///a.frag", "uniforms": {"s": 1}, "channels": ["a.png"]}`
	a := ParseProceduralData(raw)
	b := ParseProceduralData(raw)
	assert.True(t, Equal(a, b))

	b.Channels = []any{"b.png"}
	assert.False(t, Equal(a, b))
	assert.True(t, Equal(ProceduralData{}, ProceduralData{}))
}

func TestParseProceduralObject(t *testing.T) {
	data := ParseProceduralObject(map[string]any{
		"version":   3,
		"shaderUrl": "qrc:///a.frag",
		"uniforms":  map[string]any{"b": 1.0, "a": 2.0},
	})
	assert.Equal(t, uint8(3), data.Version)
	assert.Equal(t, []string{"a", "b"}, data.Uniforms.Keys())
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "", NormalizeURL("  "))
	assert.Equal(t, "http://a/b.frag", NormalizeURL(" http://a/b.frag\n"))
	assert.Equal(t, "file:///abs/b.frag", NormalizeURL("/abs/b.frag"))
	assert.Equal(t, "relative.frag", NormalizeURL("relative.frag"))
}

func TestParseChannel(t *testing.T) {
	desc, ok := ParseChannel("http://a/t.png")
	require.True(t, ok)
	assert.Equal(t, ChannelDescriptor{URL: "http://a/t.png"}, desc)

	var obj any
	require.NoError(t, json.Unmarshal([]byte(`{"url": "http://a/t.png", "sampler": {"filter": "linear", "wrapU": "clamp", "maxMip": 4, "borderColor": [1, 0, 0, 1]}}`), &obj))
	desc, ok = ParseChannel(obj)
	require.True(t, ok)
	require.NotNil(t, desc.Sampler)
	assert.Equal(t, "linear", desc.Sampler.Filter)
	assert.Equal(t, "clamp", desc.Sampler.WrapU)
	require.NotNil(t, desc.Sampler.MaxMip)
	assert.Equal(t, 4.0, *desc.Sampler.MaxMip)
	assert.Nil(t, desc.Sampler.MinMip)
	assert.Equal(t, []float64{1, 0, 0, 1}, desc.Sampler.BorderColor)

	_, ok = ParseChannel(map[string]any{"sampler": map[string]any{}})
	assert.False(t, ok)
	_, ok = ParseChannel(42.0)
	assert.False(t, ok)
}
