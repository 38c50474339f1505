package procedural

import (
	"log"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/richinsley/goprocedural/resource"
	"github.com/richinsley/goprocedural/resources"
)

// ShaderCache resolves network shader URLs to asynchronously loading handles.
type ShaderCache interface {
	GetShader(url string) *resource.NetworkShader
}

// shaderSource is the resolution state of one stage. At most one of
// localPath, packagedPath and network is set.
type shaderSource struct {
	stage string

	localPath    string
	packagedPath string
	network      *resource.NetworkShader
	copied       bool
	missing      bool // warned that the path cannot be stat'ed

	source   string
	modified time.Time
}

func (s *shaderSource) clear() {
	*s = shaderSource{stage: s.stage}
}

// resolve replaces the current reference with rawURL. It returns false when
// the reference cannot be used; the stage is left without a shader.
func (s *shaderSource) resolve(rawURL string, cache ShaderCache) bool {
	s.clear()
	if rawURL == "" {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		log.Printf("Warning: Invalid %s shader URL: %s", s.stage, rawURL)
		return false
	}

	switch u.Scheme {
	case "file":
		path := filepath.FromSlash(u.Path)
		if fi, err := os.Stat(path); err != nil || fi.IsDir() {
			log.Printf("Warning: Invalid %s shader URL, missing local file: %s", s.stage, rawURL)
			return false
		}
		s.localPath = path
	case resources.Scheme:
		s.packagedPath = resources.PathForURL(u)
	default:
		s.network = cache.GetShader(rawURL)
	}
	return true
}

func (s *shaderSource) hasShader() bool {
	return s.localPath != "" || s.packagedPath != "" || s.network != nil
}

// isLoaded treats path-based sources as always loaded; they are read
// synchronously on the next refresh.
func (s *shaderSource) isLoaded() bool {
	return s.localPath != "" || s.packagedPath != "" || (s.network != nil && s.network.IsLoaded())
}

// refresh polls the source once and reports whether its text changed.
// Path-based sources are re-read when their modification time moves past the
// last one seen; network sources are copied the first time they report loaded.
func (s *shaderSource) refresh() bool {
	switch {
	case s.localPath != "":
		fi, err := os.Stat(s.localPath)
		if err != nil {
			s.warnMissing(err)
			return false
		}
		s.missing = false
		return s.reload(fi.ModTime(), func() ([]byte, error) { return os.ReadFile(s.localPath) })
	case s.packagedPath != "":
		modified, err := resources.ModTime(s.packagedPath)
		if err != nil {
			s.warnMissing(err)
			return false
		}
		s.missing = false
		return s.reload(modified, func() ([]byte, error) { return resources.ReadFile(s.packagedPath) })
	case s.network != nil && !s.copied && s.network.IsLoaded():
		s.source = s.network.Source()
		s.copied = true
		return true
	}
	return false
}

// warnMissing logs the first failed stat of a path-based source.
func (s *shaderSource) warnMissing(err error) {
	if s.missing {
		return
	}
	s.missing = true
	log.Printf("Warning: %s shader source is unavailable: %v", s.stage, err)
}

func (s *shaderSource) reload(modified time.Time, read func() ([]byte, error)) bool {
	if !modified.After(s.modified) {
		return false
	}
	s.modified = modified
	data, err := read()
	if err != nil {
		log.Printf("Warning: failed to read %s shader: %v", s.stage, err)
		return false
	}
	s.source = string(data)
	return true
}
