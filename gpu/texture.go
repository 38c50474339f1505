package gpu

import (
	"image"
	"sync"
)

type TextureFormat int

const (
	FormatRGBA8 TextureFormat = iota
	FormatSRGBA8
	FormatRGBA16F
)

// Texture is CPU-side image data plus the sampling state the backend uploads
// with it. Backends keep their own handle via SetHandle.
type Texture struct {
	mu               sync.Mutex
	image            *image.NRGBA
	format           TextureFormat
	sampler          Sampler
	autoGenerateMips bool
	handle           any
	stamp            uint64
}

func NewTexture(img *image.NRGBA, format TextureFormat) *Texture {
	return &Texture{image: img, format: format, sampler: DefaultSampler()}
}

func (t *Texture) Width() int {
	if t == nil || t.image == nil {
		return 0
	}
	return t.image.Bounds().Dx()
}

func (t *Texture) Height() int {
	if t == nil || t.image == nil {
		return 0
	}
	return t.image.Bounds().Dy()
}

func (t *Texture) Image() *image.NRGBA {
	return t.image
}

func (t *Texture) Format() TextureFormat {
	return t.format
}

// SetSampler changes the sampling state. The stamp lets backends notice the
// change and re-apply parameters.
func (t *Texture) SetSampler(s Sampler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sampler != s {
		t.sampler = s
		t.stamp++
	}
}

func (t *Texture) Sampler() Sampler {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sampler
}

func (t *Texture) SetAutoGenerateMips(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.autoGenerateMips != enabled {
		t.autoGenerateMips = enabled
		t.stamp++
	}
}

func (t *Texture) AutoGenerateMips() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.autoGenerateMips
}

// Stamp increases every time sampling state changes.
func (t *Texture) Stamp() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stamp
}

func (t *Texture) Handle() any {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handle
}

func (t *Texture) SetHandle(h any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handle = h
}

// Buffer is a CPU-side byte buffer mirrored into a GPU uniform buffer.
type Buffer struct {
	mu    sync.Mutex
	data  []byte
	stamp uint64
}

func NewBuffer(size int) *Buffer {
	return &Buffer{data: make([]byte, size)}
}

// SetSubData copies data at offset, growing the buffer when needed.
func (b *Buffer) SetSubData(offset int, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if end := offset + len(data); end > len(b.data) {
		grown := make([]byte, end)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[offset:], data)
	b.stamp++
}

// Bytes returns a copy of the buffer contents and the change stamp.
func (b *Buffer) Bytes() ([]byte, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out, b.stamp
}

func (b *Buffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}
