package resource

import (
	"bytes"
	"context"
	"image"
	"log"
	"sync"
	"sync/atomic"

	// Decoders registered with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/richinsley/goprocedural/gpu"
)

// MaxTextureSize bounds the larger side of a decoded texture.
const MaxTextureSize = 4096

// NetworkTexture is a texture being fetched and decoded in the background.
type NetworkTexture struct {
	url    string
	loaded atomic.Bool
	failed atomic.Bool

	mu      sync.Mutex
	texture *gpu.Texture
	width   int
	height  int
}

func (t *NetworkTexture) URL() string {
	return t.url
}

// IsLoaded never blocks.
func (t *NetworkTexture) IsLoaded() bool {
	return t.loaded.Load()
}

func (t *NetworkTexture) Failed() bool {
	return t.failed.Load()
}

// GPUTexture is nil until loaded, and always nil for the empty texture.
func (t *NetworkTexture) GPUTexture() *gpu.Texture {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.texture
}

func (t *NetworkTexture) Width() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width
}

func (t *NetworkTexture) Height() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.height
}

// MarkLoaded installs a decoded texture. Caches call it once the fetch
// completes; tests call it directly.
func (t *NetworkTexture) MarkLoaded(tex *gpu.Texture) {
	t.mu.Lock()
	t.texture = tex
	if tex != nil {
		t.width = tex.Width()
		t.height = tex.Height()
	}
	t.mu.Unlock()
	t.loaded.Store(true)
}

// NewPendingTexture returns a handle that stays unloaded until MarkLoaded.
func NewPendingTexture(url string) *NetworkTexture {
	return &NetworkTexture{url: url}
}

// EmptyTexture is handed out for an empty URL: loaded, 1x1, nothing to bind.
var EmptyTexture = newEmptyTexture()

func newEmptyTexture() *NetworkTexture {
	t := &NetworkTexture{width: 1, height: 1}
	t.loaded.Store(true)
	return t
}

// TextureCache hands out one NetworkTexture per URL.
type TextureCache struct {
	fetcher Fetcher
	ctx     context.Context
	cancel  context.CancelFunc
	sem     chan struct{}

	// FlipY stores rows bottom-up, the order OpenGL samples them in.
	FlipY bool

	mu       sync.Mutex
	textures map[string]*NetworkTexture
}

func NewTextureCache(fetcher Fetcher) *TextureCache {
	ctx, cancel := context.WithCancel(context.Background())
	return &TextureCache{
		fetcher:  fetcher,
		ctx:      ctx,
		cancel:   cancel,
		sem:      make(chan struct{}, maxConcurrentFetches),
		FlipY:    true,
		textures: make(map[string]*NetworkTexture),
	}
}

var (
	defaultTextureCache     *TextureCache
	defaultTextureCacheOnce sync.Once
)

// DefaultTextureCache is the process-wide texture cache.
func DefaultTextureCache() *TextureCache {
	defaultTextureCacheOnce.Do(func() {
		dir, err := CacheDir("media")
		if err != nil {
			log.Printf("Warning: texture cache runs without disk cache: %v", err)
			dir = ""
		}
		defaultTextureCache = NewTextureCache(NewHTTPFetcher(dir))
	})
	return defaultTextureCache
}

// GetTexture returns the handle for url, starting the fetch on first request.
// An empty url yields EmptyTexture.
func (c *TextureCache) GetTexture(url string) *NetworkTexture {
	if url == "" {
		return EmptyTexture
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.textures[url]; ok {
		return t
	}
	t := &NetworkTexture{url: url}
	c.textures[url] = t
	go c.fetch(t)
	return t
}

func (c *TextureCache) fetch(t *NetworkTexture) {
	select {
	case c.sem <- struct{}{}:
	case <-c.ctx.Done():
		return
	}
	defer func() { <-c.sem }()

	data, err := c.fetcher.Fetch(c.ctx, t.url)
	if err == nil {
		var tex *gpu.Texture
		tex, err = c.decode(data)
		if err == nil {
			t.MarkLoaded(tex)
			return
		}
	}
	t.failed.Store(true)
	log.Printf("Warning: failed to load texture %s: %v", t.url, err)
}

func (c *TextureCache) decode(data []byte) (*gpu.Texture, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode image")
	}
	b := img.Bounds()
	if b.Dx() > MaxTextureSize || b.Dy() > MaxTextureSize {
		img = imaging.Fit(img, MaxTextureSize, MaxTextureSize, imaging.Lanczos)
	}
	var nrgba *image.NRGBA
	if c.FlipY {
		nrgba = imaging.FlipV(img)
	} else {
		nrgba = imaging.Clone(img)
	}
	return gpu.NewTexture(nrgba, gpu.FormatSRGBA8), nil
}

func (c *TextureCache) Evict(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.textures, url)
}

func (c *TextureCache) Close() {
	c.cancel()
}
