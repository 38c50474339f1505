package resource

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/richinsley/goprocedural/resources"
)

// Fetcher retrieves the bytes behind a resource URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

type headerTransport struct {
	Transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", "goprocedural/1.0")
	return t.Transport.RoundTrip(req)
}

// HTTPFetcher fetches http(s), file and qrc URLs. Network responses are kept
// in CacheDir when it is set.
type HTTPFetcher struct {
	Client   *http.Client
	CacheDir string
}

func NewHTTPFetcher(cacheDir string) *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{
			Transport: &headerTransport{Transport: http.DefaultTransport},
		},
		CacheDir: cacheDir,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid URL %q", rawURL)
	}

	switch u.Scheme {
	case "file":
		data, err := os.ReadFile(filepath.FromSlash(u.Path))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", u.Path)
		}
		return data, nil
	case resources.Scheme:
		return resources.ReadFile(resources.PathForURL(u))
	case "http", "https":
	default:
		return nil, errors.Errorf("unsupported URL scheme %q", u.Scheme)
	}

	cachePath := ""
	if f.CacheDir != "" {
		sum := sha1.Sum([]byte(rawURL))
		cachePath = filepath.Join(f.CacheDir, hex.EncodeToString(sum[:])+path.Ext(u.Path))
		if data, err := os.ReadFile(cachePath); err == nil {
			return data, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to download %s", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("failed to load %s, status code: %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read data from %s", rawURL)
	}

	if cachePath != "" {
		if err := os.WriteFile(cachePath, data, 0644); err != nil {
			log.Printf("Warning: failed to save %s to cache at %s: %v", rawURL, cachePath, err)
		}
	}
	return data, nil
}

// CacheDir returns <user cache dir>/goprocedural/subdir, creating it.
func CacheDir(subdir string) (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(err, "no user cache directory")
	}
	dir := filepath.Join(base, "goprocedural", subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create cache directory at %s", dir)
	}
	return dir, nil
}
