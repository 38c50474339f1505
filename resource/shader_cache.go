package resource

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
)

// maxConcurrentFetches bounds the number of downloads in flight per cache.
const maxConcurrentFetches = 4

// NetworkShader is a shader source being fetched in the background. Poll
// IsLoaded; Source is empty until it reports true.
type NetworkShader struct {
	url    string
	loaded atomic.Bool
	failed atomic.Bool

	mu     sync.Mutex
	source string
	err    error
}

func (s *NetworkShader) URL() string {
	return s.url
}

// IsLoaded never blocks.
func (s *NetworkShader) IsLoaded() bool {
	return s.loaded.Load()
}

// Failed reports a fetch that ended in an error. A failed shader never loads.
func (s *NetworkShader) Failed() bool {
	return s.failed.Load()
}

func (s *NetworkShader) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

func (s *NetworkShader) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ShaderCache hands out one NetworkShader per URL and fetches each at most once.
type ShaderCache struct {
	fetcher Fetcher
	ctx     context.Context
	cancel  context.CancelFunc
	sem     chan struct{}

	mu      sync.Mutex
	shaders map[string]*NetworkShader
}

func NewShaderCache(fetcher Fetcher) *ShaderCache {
	ctx, cancel := context.WithCancel(context.Background())
	return &ShaderCache{
		fetcher: fetcher,
		ctx:     ctx,
		cancel:  cancel,
		sem:     make(chan struct{}, maxConcurrentFetches),
		shaders: make(map[string]*NetworkShader),
	}
}

var (
	defaultShaderCache     *ShaderCache
	defaultShaderCacheOnce sync.Once
)

// DefaultShaderCache is the process-wide shader cache.
func DefaultShaderCache() *ShaderCache {
	defaultShaderCacheOnce.Do(func() {
		dir, err := CacheDir("shaders")
		if err != nil {
			log.Printf("Warning: shader cache runs without disk cache: %v", err)
			dir = ""
		}
		defaultShaderCache = NewShaderCache(NewHTTPFetcher(dir))
	})
	return defaultShaderCache
}

// GetShader returns the handle for url, starting the fetch on first request.
func (c *ShaderCache) GetShader(url string) *NetworkShader {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.shaders[url]; ok {
		return s
	}
	s := &NetworkShader{url: url}
	c.shaders[url] = s
	go c.fetch(s)
	return s
}

func (c *ShaderCache) fetch(s *NetworkShader) {
	select {
	case c.sem <- struct{}{}:
	case <-c.ctx.Done():
		return
	}
	defer func() { <-c.sem }()

	data, err := c.fetcher.Fetch(c.ctx, s.url)
	s.mu.Lock()
	if err != nil {
		s.err = err
		s.mu.Unlock()
		s.failed.Store(true)
		log.Printf("Warning: failed to fetch shader %s: %v", s.url, err)
		return
	}
	s.source = string(data)
	s.mu.Unlock()
	s.loaded.Store(true)
}

// Evict drops url so the next GetShader fetches it again.
func (c *ShaderCache) Evict(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.shaders, url)
}

// Close abandons fetches that have not started yet.
func (c *ShaderCache) Close() {
	c.cancel()
}
