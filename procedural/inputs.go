package procedural

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goprocedural/shader"
)

// StandardInputs mirrors the std140 standardInputsBuffer block of the
// procedural templates. Field order and sizes must match it.
type StandardInputs struct {
	Date                    mgl32.Vec4
	Position                mgl32.Vec4
	Scale                   mgl32.Vec4
	Orientation             mgl32.Mat4
	Resolution              [shader.MaxTextureChannels]mgl32.Vec4
	TimeSinceLastCompile    float32
	TimeSinceFirstCompile   float32
	TimeSinceEntityCreation float32
	FrameCount              int32
}

// StandardInputsSize is the byte size of the block.
var StandardInputsSize = binary.Size(StandardInputs{})

// Bytes encodes the block in std140 layout.
func (s *StandardInputs) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(StandardInputsSize)
	binary.Write(&buf, binary.LittleEndian, s)
	return buf.Bytes()
}

// dateVector packs a UTC time the way shadertoy's iDate does: year, zero-based
// month, day, and seconds since midnight with millisecond fraction.
func dateVector(now time.Time) mgl32.Vec4 {
	t := now.UTC()
	seconds := float32(t.Hour()*3600+t.Minute()*60+t.Second()) + float32(t.Nanosecond()/int(time.Millisecond))/1000
	return mgl32.Vec4{
		float32(t.Year()),
		float32(int(t.Month()) - 1),
		float32(t.Day()),
		seconds,
	}
}

// secondsSince truncates to whole milliseconds before converting to float
// seconds to limit rounding error. A zero start counts as no time elapsed.
func secondsSince(now, start time.Time) float32 {
	if start.IsZero() {
		return 0
	}
	ms := now.Sub(start) / time.Millisecond
	return float32(ms) / 1000
}
