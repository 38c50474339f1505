package api

import (
	"bytes"
	"encoding/json"
	"math"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// Keys recognized in a procedural descriptor.
const (
	ProceduralUserDataKey = "ProceduralEntity"
	VertexURLKey          = "vertexShaderURL"
	FragmentURLKey        = "fragmentShaderURL"
	URLKey                = "shaderUrl"
	VersionKey            = "version"
	UniformsKey           = "uniforms"
	ChannelsKey           = "channels"
)

// ProceduralData is the parsed form of a procedural material descriptor.
// The zero value is the default descriptor: no shaders, no uniforms, no channels.
type ProceduralData struct {
	Version           uint8
	FragmentShaderURL string
	VertexShaderURL   string
	Uniforms          Uniforms
	Channels          []any
}

// Uniform is one entry of the descriptor's uniforms object.
type Uniform struct {
	Name  string
	Value any
}

// Uniforms keeps the uniforms object in document order. The order matters:
// slots are handed out in this order.
type Uniforms []Uniform

// Keys returns the uniform names in document order.
func (u Uniforms) Keys() []string {
	keys := make([]string, len(u))
	for i, e := range u {
		keys[i] = e.Name
	}
	return keys
}

// KeysEqual reports whether both sets carry the same names in the same order,
// ignoring values.
func (u Uniforms) KeysEqual(other Uniforms) bool {
	if len(u) != len(other) {
		return false
	}
	for i := range u {
		if u[i].Name != other[i].Name {
			return false
		}
	}
	return true
}

// Equal compares names and values.
func (u Uniforms) Equal(other Uniforms) bool {
	if !u.KeysEqual(other) {
		return false
	}
	for i := range u {
		if !reflect.DeepEqual(u[i].Value, other[i].Value) {
			return false
		}
	}
	return true
}

// Get looks a uniform up by name.
func (u Uniforms) Get(name string) (any, bool) {
	for _, e := range u {
		if e.Name == name {
			return e.Value, true
		}
	}
	return nil, false
}

// UnmarshalJSON decodes a JSON object while preserving key order.
// A repeated key keeps its first position and takes the last value.
func (u *Uniforms) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(err, "uniforms")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("uniforms must be a JSON object")
	}

	var out Uniforms
	index := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return errors.Wrap(err, "uniforms")
		}
		name, ok := tok.(string)
		if !ok {
			return errors.Errorf("unexpected uniform key %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return errors.Wrapf(err, "uniform %q", name)
		}
		if i, seen := index[name]; seen {
			out[i].Value = value
			continue
		}
		index[name] = len(out)
		out = append(out, Uniform{Name: name, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return errors.Wrap(err, "uniforms")
	}
	*u = out
	return nil
}

// Equal reports structural equality of two descriptors.
func Equal(a, b ProceduralData) bool {
	return a.Version == b.Version &&
		a.FragmentShaderURL == b.FragmentShaderURL &&
		a.VertexShaderURL == b.VertexShaderURL &&
		a.Uniforms.Equal(b.Uniforms) &&
		reflect.DeepEqual(a.Channels, b.Channels)
}

// ParseProceduralData parses an entity's procedural JSON. Empty or malformed
// input yields the default descriptor. When the document wraps the descriptor
// under ProceduralUserDataKey, the wrapped object is used.
func ParseProceduralData(proceduralJSON string) ProceduralData {
	var result ProceduralData
	if strings.TrimSpace(proceduralJSON) == "" {
		return result
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal([]byte(proceduralJSON), &object); err != nil {
		return result
	}
	if wrapped, ok := object[ProceduralUserDataKey]; ok {
		object = nil
		if err := json.Unmarshal(wrapped, &object); err != nil {
			return result
		}
	}
	result.parse(object)
	return result
}

// ParseProceduralObject parses an already decoded descriptor object. Go maps
// carry no order, so uniforms come out sorted by name.
func ParseProceduralObject(object map[string]any) ProceduralData {
	var result ProceduralData
	raw := make(map[string]json.RawMessage, len(object))
	for k, v := range object {
		b, err := json.Marshal(v)
		if err != nil {
			continue
		}
		raw[k] = b
	}
	result.parse(raw)
	return result
}

func (d *ProceduralData) parse(object map[string]json.RawMessage) {
	if len(object) == 0 {
		return
	}

	if raw, ok := object[VersionKey]; ok {
		var version any
		json.Unmarshal(raw, &version)
		if f, isNumber := version.(float64); isNumber {
			v := math.Floor(f)
			// invalid version
			if v < 1 || v > 4 {
				return
			}
			d.Version = uint8(v)
		} else {
			d.Version = 1
		}
	} else {
		// All unversioned shaders default to V1
		d.Version = 1
	}

	d.FragmentShaderURL = NormalizeURL(jsonString(object[FragmentURLKey]))
	if d.FragmentShaderURL == "" {
		d.FragmentShaderURL = NormalizeURL(jsonString(object[URLKey]))
	}
	d.VertexShaderURL = NormalizeURL(jsonString(object[VertexURLKey]))

	if raw, ok := object[UniformsKey]; ok {
		var uniforms Uniforms
		if err := json.Unmarshal(raw, &uniforms); err == nil {
			d.Uniforms = uniforms
		}
	}
	if raw, ok := object[ChannelsKey]; ok {
		var channels []any
		if err := json.Unmarshal(raw, &channels); err == nil {
			d.Channels = channels
		}
	}
}

func jsonString(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// NormalizeURL trims the reference and turns bare absolute paths into file URLs.
func NormalizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "/") || filepath.IsAbs(s) {
		p := filepath.ToSlash(s)
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		return "file://" + p
	}
	return s
}
