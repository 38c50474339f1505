package resource

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcherCachesResponses(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "goprocedural/1.0", r.Header.Get("User-Agent"))
		if r.URL.Path == "/missing.frag" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("void main() {}"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(t.TempDir())
	data, err := f.Fetch(context.Background(), srv.URL+"/a.frag")
	require.NoError(t, err)
	assert.Equal(t, "void main() {}", string(data))

	data, err = f.Fetch(context.Background(), srv.URL+"/a.frag")
	require.NoError(t, err)
	assert.Equal(t, "void main() {}", string(data))
	assert.Equal(t, int32(1), hits.Load(), "second fetch is served from disk")

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.frag")
	assert.ErrorContains(t, err, "status code: 404")
}

func TestHTTPFetcherLocalSchemes(t *testing.T) {
	f := NewHTTPFetcher("")
	path := filepath.Join(t.TempDir(), "a.frag")
	require.NoError(t, os.WriteFile(path, []byte("local"), 0644))

	data, err := f.Fetch(context.Background(), "file://"+filepath.ToSlash(path))
	require.NoError(t, err)
	assert.Equal(t, "local", string(data))

	data, err = f.Fetch(context.Background(), "qrc:///shaders/errorShader.frag")
	require.NoError(t, err)
	assert.Contains(t, string(data), "getErrorColor")

	_, err = f.Fetch(context.Background(), "ftp://example.com/a.frag")
	assert.Error(t, err)
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LOCALAPPDATA", t.TempDir())
	dir, err := CacheDir("shaders")
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, "shaders", filepath.Base(dir))
	assert.Equal(t, "goprocedural", filepath.Base(filepath.Dir(dir)))
}

type mapFetcher map[string][]byte

func (m mapFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	data, ok := m[rawURL]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func TestShaderCache(t *testing.T) {
	c := NewShaderCache(mapFetcher{"http://a/x.frag": []byte("x")})
	defer c.Close()

	s := c.GetShader("http://a/x.frag")
	assert.Same(t, s, c.GetShader("http://a/x.frag"))
	require.Eventually(t, s.IsLoaded, time.Second, time.Millisecond)
	assert.Equal(t, "x", s.Source())
	assert.NoError(t, s.Err())

	missing := c.GetShader("http://a/missing.frag")
	require.Eventually(t, missing.Failed, time.Second, time.Millisecond)
	assert.False(t, missing.IsLoaded())
	assert.Error(t, missing.Err())

	c.Evict("http://a/x.frag")
	assert.NotSame(t, s, c.GetShader("http://a/x.frag"))
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	// top row red, the rest blue
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			c := color.NRGBA{B: 255, A: 255}
			if y == 0 {
				c = color.NRGBA{R: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestTextureCache(t *testing.T) {
	c := NewTextureCache(mapFetcher{
		"http://a/t.png":   pngBytes(t, 4, 2),
		"http://a/bad.png": []byte("not an image"),
	})
	defer c.Close()

	assert.Same(t, EmptyTexture, c.GetTexture(""))
	assert.True(t, EmptyTexture.IsLoaded())
	assert.Equal(t, 1, EmptyTexture.Width())
	assert.Nil(t, EmptyTexture.GPUTexture())

	tex := c.GetTexture("http://a/t.png")
	require.Eventually(t, tex.IsLoaded, time.Second, time.Millisecond)
	assert.Equal(t, 4, tex.Width())
	assert.Equal(t, 2, tex.Height())
	img := tex.GPUTexture().Image()
	// flipped: the red row is last
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(0, 1))
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, img.NRGBAAt(0, 0))

	bad := c.GetTexture("http://a/bad.png")
	require.Eventually(t, bad.Failed, time.Second, time.Millisecond)
	assert.False(t, bad.IsLoaded())
}

func TestTextureDecodeNoFlip(t *testing.T) {
	c := NewTextureCache(mapFetcher{})
	c.FlipY = false
	tex, err := c.decode(pngBytes(t, 2, 2))
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, tex.Image().NRGBAAt(0, 0))
}

func TestPendingTexture(t *testing.T) {
	tex := NewPendingTexture("http://a/t.png")
	assert.False(t, tex.IsLoaded())
	assert.Equal(t, "http://a/t.png", tex.URL())
	tex.MarkLoaded(nil)
	assert.True(t, tex.IsLoaded())
	assert.Zero(t, tex.Width())
}
