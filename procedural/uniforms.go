package procedural

import (
	"encoding/json"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goprocedural/api"
	"github.com/richinsley/goprocedural/gpu"
	"github.com/richinsley/goprocedural/shader"
)

type uniformKind int

const (
	uniformInvalid uniformKind = iota
	uniformScalar
	uniformVector
	uniformMatrix
	uniformArray
)

// uniformShape is what a JSON uniform value binds as. length is the number of
// floats per element, count the number of elements of an array uniform.
type uniformShape struct {
	kind   uniformKind
	length int
	count  int
	values []float32
}

// slots is the number of uniform slots the shape occupies.
func (s uniformShape) slots() int {
	switch s.kind {
	case uniformScalar, uniformVector, uniformMatrix:
		return 1
	case uniformArray:
		return s.count
	}
	return 0
}

func validArrayElementLength(n int) bool {
	return n == 3 || n == 4 || n == 9 || n == 16
}

func toFloat(v any) (float32, bool) {
	switch n := v.(type) {
	case float64:
		return float32(n), true
	case float32:
		return n, true
	case int:
		return float32(n), true
	case int64:
		return float32(n), true
	case json.Number:
		f, err := n.Float64()
		return float32(f), err == nil
	}
	return 0, false
}

func toFloats(values []any) ([]float32, bool) {
	out := make([]float32, len(values))
	for i, v := range values {
		f, ok := toFloat(v)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

// classifyUniform infers how a JSON value binds. Array uniforms take the
// first inner array's length; inner arrays of another length are dropped.
func classifyUniform(value any) uniformShape {
	if f, ok := toFloat(value); ok {
		return uniformShape{kind: uniformScalar, length: 1, count: 1, values: []float32{f}}
	}

	array, ok := value.([]any)
	if !ok || len(array) == 0 {
		return uniformShape{}
	}

	if first, nested := array[0].([]any); nested {
		length := len(first)
		if !validArrayElementLength(length) {
			return uniformShape{}
		}
		values := make([]float32, 0, length*len(array))
		count := 0
		for _, element := range array {
			inner, ok := element.([]any)
			if !ok || len(inner) != length {
				continue
			}
			floats, ok := toFloats(inner)
			if !ok {
				continue
			}
			values = append(values, floats...)
			count++
		}
		if count == 0 {
			return uniformShape{}
		}
		return uniformShape{kind: uniformArray, length: length, count: count, values: values}
	}

	floats, ok := toFloats(array)
	if !ok {
		return uniformShape{}
	}
	switch len(floats) {
	case 1, 2, 3, 4:
		return uniformShape{kind: uniformVector, length: len(floats), count: 1, values: floats}
	case 9, 16:
		return uniformShape{kind: uniformMatrix, length: len(floats), count: 1, values: floats}
	}
	return uniformShape{}
}

// assignSlots hands out uniform slots from shader.UniformCustom in uniform
// order and registers them in every reflection of the given sources. Array
// uniforms are registered under name[0]. Values that bind as nothing get no slot.
func assignSlots(uniforms api.Uniforms, sources ...*shader.Source) map[string]int {
	var reflections []*shader.Reflection
	for _, src := range sources {
		if src != nil {
			reflections = append(reflections, src.AllReflections()...)
		}
	}

	slots := make(map[string]int, len(uniforms))
	customSlot := shader.UniformCustom
	for _, u := range uniforms {
		shape := classifyUniform(u.Value)
		numSlots := shape.slots()
		if numSlots == 0 {
			continue
		}
		trueUniformName := u.Name
		if shape.kind == uniformArray {
			trueUniformName += "[0]"
		}
		for _, r := range reflections {
			if r.Uniforms == nil {
				r.Uniforms = map[string]int{}
			}
			r.Uniforms[trueUniformName] = customSlot
		}
		slots[u.Name] = customSlot
		customSlot += numSlots
	}
	return slots
}

// uniformBinder issues one uniform upload against a batch.
type uniformBinder func(batch *gpu.Batch)

// buildUniformBinders snapshots the current uniform values into binders.
// Uniforms without an assigned slot are skipped.
func buildUniformBinders(uniforms api.Uniforms, slots map[string]int) []uniformBinder {
	var binders []uniformBinder
	for _, u := range uniforms {
		slot, ok := slots[u.Name]
		if !ok {
			continue
		}
		if b := newUniformBinder(slot, classifyUniform(u.Value)); b != nil {
			binders = append(binders, b)
		}
	}
	return binders
}

func newUniformBinder(slot int, shape uniformShape) uniformBinder {
	vs := shape.values
	switch shape.kind {
	case uniformScalar:
		v := vs[0]
		return func(batch *gpu.Batch) { batch.Uniform1f(slot, v) }
	case uniformVector:
		switch shape.length {
		case 1:
			v := vs[0]
			return func(batch *gpu.Batch) { batch.Uniform1f(slot, v) }
		case 2:
			v := mgl32.Vec2{vs[0], vs[1]}
			return func(batch *gpu.Batch) { batch.Uniform2f(slot, v) }
		case 3:
			v := mgl32.Vec3{vs[0], vs[1], vs[2]}
			return func(batch *gpu.Batch) { batch.Uniform3f(slot, v) }
		case 4:
			v := mgl32.Vec4{vs[0], vs[1], vs[2], vs[3]}
			return func(batch *gpu.Batch) { batch.Uniform4f(slot, v) }
		}
	case uniformMatrix:
		switch shape.length {
		case 9:
			var m mgl32.Mat3
			copy(m[:], vs)
			return func(batch *gpu.Batch) { batch.UniformMatrix3fv(slot, 1, false, m[:]) }
		case 16:
			var m mgl32.Mat4
			copy(m[:], vs)
			return func(batch *gpu.Batch) { batch.UniformMatrix4fv(slot, 1, false, m[:]) }
		}
	case uniformArray:
		count := shape.count
		switch shape.length {
		case 3:
			return func(batch *gpu.Batch) { batch.Uniform3fv(slot, count, vs) }
		case 4:
			return func(batch *gpu.Batch) { batch.Uniform4fv(slot, count, vs) }
		case 9:
			return func(batch *gpu.Batch) { batch.UniformMatrix3fv(slot, count, false, vs) }
		case 16:
			return func(batch *gpu.Batch) { batch.UniformMatrix4fv(slot, count, false, vs) }
		}
	}
	return nil
}
