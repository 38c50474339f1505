package renderer

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goprocedural/gpu"
)

// glTexture is the backend copy of a gpu.Texture.
type glTexture struct {
	id    uint32
	stamp uint64
	mips  bool
}

// uploadTexture creates the GL texture for tex from its CPU image. Rows are
// expected bottom-up already.
func uploadTexture(tex *gpu.Texture) *glTexture {
	img := tex.Image()
	t := &glTexture{}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)

	// Determine the correct internal format for the texture.
	// sRGB textures are linearized by the GPU when sampled.
	var internalFormat int32
	switch tex.Format() {
	case gpu.FormatSRGBA8:
		internalFormat = gl.SRGB8_ALPHA8
	case gpu.FormatRGBA16F:
		internalFormat = gl.RGBA16F
	default:
		internalFormat = gl.RGBA8
	}

	if img != nil {
		gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
		gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
		gl.TexImage2D(
			gl.TEXTURE_2D,
			0,
			internalFormat,
			int32(img.Rect.Dx()),
			int32(img.Rect.Dy()),
			0,
			gl.RGBA,
			gl.UNSIGNED_BYTE,
			gl.Ptr(img.Pix),
		)
		gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	}

	t.apply(tex)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t
}

// apply sets sampling parameters on the bound texture and builds the mip
// chain when first asked to.
func (t *glTexture) apply(tex *gpu.Texture) {
	s := tex.Sampler()
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, getWrapMode(s.WrapU))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, getWrapMode(s.WrapV))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_R, getWrapMode(s.WrapW))

	minFilter, magFilter := getFilterMode(s.Filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, magFilter)
	gl.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_MIN_LOD, s.MinMip)
	gl.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_MAX_LOD, s.MaxMip)
	gl.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_LOD_BIAS, s.MipOffset)
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &s.BorderColor[0])

	if tex.AutoGenerateMips() && s.UsesMips() && !t.mips && tex.Image() != nil {
		gl.GenerateMipmap(gl.TEXTURE_2D)
		t.mips = true
	}
	t.stamp = tex.Stamp()
}

func (t *glTexture) destroy() {
	gl.DeleteTextures(1, &t.id)
}

// Helper to convert a wrap mode to an OpenGL constant.
func getWrapMode(wrap gpu.WrapMode) int32 {
	switch wrap {
	case gpu.WrapClamp:
		return gl.CLAMP_TO_EDGE
	case gpu.WrapMirror, gpu.WrapMirrorOnce:
		return gl.MIRRORED_REPEAT
	case gpu.WrapBorder:
		return gl.CLAMP_TO_BORDER
	default:
		return gl.REPEAT
	}
}

// Helper to convert a filter to OpenGL min/mag constants.
func getFilterMode(filter gpu.Filter) (minFilter, magFilter int32) {
	switch filter {
	case gpu.FilterMinMagPoint:
		return gl.NEAREST, gl.NEAREST
	case gpu.FilterMinMagLinear:
		return gl.LINEAR, gl.LINEAR
	case gpu.FilterMinMagMipPoint:
		return gl.NEAREST_MIPMAP_NEAREST, gl.NEAREST
	case gpu.FilterAnisotropic:
		return gl.LINEAR_MIPMAP_LINEAR, gl.LINEAR
	default:
		return gl.LINEAR_MIPMAP_LINEAR, gl.LINEAR
	}
}
