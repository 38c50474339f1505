package gpu

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goprocedural/api"
)

type Filter int

const (
	FilterMinMagPoint Filter = iota
	FilterMinMagLinear
	FilterMinMagMipPoint
	FilterMinMagMipLinear
	FilterAnisotropic
)

type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapMirror
	WrapClamp
	WrapBorder
	WrapMirrorOnce
)

// Sampler is the sampling configuration applied to a texture channel.
type Sampler struct {
	Filter      Filter
	WrapU       WrapMode
	WrapV       WrapMode
	WrapW       WrapMode
	MinMip      float32
	MaxMip      float32
	MipOffset   float32
	BorderColor mgl32.Vec4
}

// NewSampler returns a repeating sampler with the given filter.
func NewSampler(filter Filter) Sampler {
	return Sampler{Filter: filter, MaxMip: 1000}
}

// DefaultSampler is the trilinear repeating sampler used when a channel does
// not carry its own.
func DefaultSampler() Sampler {
	return NewSampler(FilterMinMagMipLinear)
}

// ParseSampler converts a channel's sampler object. Unknown strings keep the
// default for that field.
func ParseSampler(s *api.Sampler) Sampler {
	out := DefaultSampler()
	if s == nil {
		return out
	}
	out.Filter = filterMode(s.Filter)
	wrap := wrapMode(s.Wrap, WrapRepeat)
	out.WrapU = wrapMode(s.WrapU, wrap)
	out.WrapV = wrapMode(s.WrapV, wrap)
	out.WrapW = wrapMode(s.WrapW, wrap)
	if s.MinMip != nil {
		out.MinMip = float32(*s.MinMip)
	}
	if s.MaxMip != nil {
		out.MaxMip = float32(*s.MaxMip)
	}
	if s.MipOffset != nil {
		out.MipOffset = float32(*s.MipOffset)
	}
	for i := 0; i < 4 && i < len(s.BorderColor); i++ {
		out.BorderColor[i] = float32(s.BorderColor[i])
	}
	return out
}

// Helper to convert a wrap string to a WrapMode.
func wrapMode(wrap string, fallback WrapMode) WrapMode {
	switch wrap {
	case "repeat":
		return WrapRepeat
	case "clamp":
		return WrapClamp
	case "mirror":
		return WrapMirror
	case "mirrorOnce", "mirror_once":
		return WrapMirrorOnce
	case "border":
		return WrapBorder
	default:
		return fallback
	}
}

// Helper to convert a filter string to a Filter.
func filterMode(filter string) Filter {
	switch filter {
	case "mipmap":
		return FilterMinMagMipLinear
	case "linear":
		return FilterMinMagLinear
	case "nearest", "point":
		return FilterMinMagPoint
	case "mipmapNearest", "mipmap_nearest":
		return FilterMinMagMipPoint
	case "anisotropic":
		return FilterAnisotropic
	default:
		return FilterMinMagMipLinear
	}
}

// UsesMips reports whether the filter samples the mip chain.
func (s Sampler) UsesMips() bool {
	return s.Filter == FilterMinMagMipLinear || s.Filter == FilterMinMagMipPoint || s.Filter == FilterAnisotropic
}
