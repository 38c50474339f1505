package gpu

import (
	"github.com/go-gl/mathgl/mgl32"
)

// CommandType identifies a recorded batch command.
type CommandType int

const (
	CommandSetPipeline CommandType = iota
	CommandUniform1f
	CommandUniform2f
	CommandUniform3f
	CommandUniform4f
	CommandUniform3fv
	CommandUniform4fv
	CommandUniformMatrix3fv
	CommandUniformMatrix4fv
	CommandSetResourceTexture
	CommandSetUniformBuffer
)

var commandNames = map[CommandType]string{
	CommandSetPipeline:        "SetPipeline",
	CommandUniform1f:          "Uniform1f",
	CommandUniform2f:          "Uniform2f",
	CommandUniform3f:          "Uniform3f",
	CommandUniform4f:          "Uniform4f",
	CommandUniform3fv:         "Uniform3fv",
	CommandUniform4fv:         "Uniform4fv",
	CommandUniformMatrix3fv:   "UniformMatrix3fv",
	CommandUniformMatrix4fv:   "UniformMatrix4fv",
	CommandSetResourceTexture: "SetResourceTexture",
	CommandSetUniformBuffer:   "SetUniformBuffer",
}

func (c CommandType) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "Unknown"
}

// Command is one recorded batch operation. Slot is the reflection slot the
// backend resolves to a program location, texture unit or buffer binding.
type Command struct {
	Type      CommandType
	Slot      int
	Count     int
	Transpose bool
	Values    []float32
	Pipeline  *Pipeline
	Texture   *Texture
	Buffer    *Buffer
	Offset    int
	Size      int
}

// Batch records draw state for later execution by a backend. A Batch is
// filled by one goroutine and handed to the render thread as a whole.
type Batch struct {
	Name     string
	Commands []Command
	pipeline *Pipeline
}

func NewBatch(name string) *Batch {
	return &Batch{Name: name}
}

// Clear drops every recorded command so the batch can be reused.
func (b *Batch) Clear() {
	b.Commands = b.Commands[:0]
	b.pipeline = nil
}

// Pipeline returns the most recently set pipeline.
func (b *Batch) Pipeline() *Pipeline {
	return b.pipeline
}

func (b *Batch) SetPipeline(p *Pipeline) {
	b.pipeline = p
	b.Commands = append(b.Commands, Command{Type: CommandSetPipeline, Pipeline: p})
}

func (b *Batch) Uniform1f(slot int, v float32) {
	b.uniform(CommandUniform1f, slot, 1, false, []float32{v})
}

func (b *Batch) Uniform2f(slot int, v mgl32.Vec2) {
	b.uniform(CommandUniform2f, slot, 1, false, v[:])
}

func (b *Batch) Uniform3f(slot int, v mgl32.Vec3) {
	b.uniform(CommandUniform3f, slot, 1, false, v[:])
}

func (b *Batch) Uniform4f(slot int, v mgl32.Vec4) {
	b.uniform(CommandUniform4f, slot, 1, false, v[:])
}

func (b *Batch) Uniform3fv(slot, count int, values []float32) {
	b.uniform(CommandUniform3fv, slot, count, false, values)
}

func (b *Batch) Uniform4fv(slot, count int, values []float32) {
	b.uniform(CommandUniform4fv, slot, count, false, values)
}

func (b *Batch) UniformMatrix3fv(slot, count int, transpose bool, values []float32) {
	b.uniform(CommandUniformMatrix3fv, slot, count, transpose, values)
}

func (b *Batch) UniformMatrix4fv(slot, count int, transpose bool, values []float32) {
	b.uniform(CommandUniformMatrix4fv, slot, count, transpose, values)
}

func (b *Batch) uniform(t CommandType, slot, count int, transpose bool, values []float32) {
	// copy so the recorded command does not alias caller memory
	v := make([]float32, len(values))
	copy(v, values)
	b.Commands = append(b.Commands, Command{Type: t, Slot: slot, Count: count, Transpose: transpose, Values: v})
}

// SetResourceTexture binds tex to a texture slot. A nil texture unbinds it.
func (b *Batch) SetResourceTexture(slot int, tex *Texture) {
	b.Commands = append(b.Commands, Command{Type: CommandSetResourceTexture, Slot: slot, Texture: tex})
}

func (b *Batch) SetUniformBuffer(slot int, buf *Buffer, offset, size int) {
	b.Commands = append(b.Commands, Command{Type: CommandSetUniformBuffer, Slot: slot, Buffer: buf, Offset: offset, Size: size})
}

// CommandsOfType filters the recorded commands.
func (b *Batch) CommandsOfType(t CommandType) []Command {
	var out []Command
	for _, c := range b.Commands {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}
