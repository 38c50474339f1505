// Package resources serves files packaged into the binary under the qrc:
// URL scheme. A packaged path is the URL path prefixed with ":", e.g.
// qrc:///shaders/errorShader.frag -> :/shaders/errorShader.frag.
package resources

import (
	"embed"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const Scheme = "qrc"

//go:embed shaders
var files embed.FS

// Embedded files carry no modification time; they all report this one so a
// first read always happens.
var packagedTime = time.Unix(1, 0)

// PathForURL returns the packaged path of a qrc URL.
func PathForURL(u *url.URL) string {
	return ":" + u.Path
}

// IsPackagedPath reports whether p names a packaged file.
func IsPackagedPath(p string) bool {
	return strings.HasPrefix(p, ":")
}

func fsPath(p string) (string, error) {
	if !IsPackagedPath(p) {
		return "", errors.Errorf("not a packaged path: %s", p)
	}
	return strings.TrimPrefix(strings.TrimPrefix(p, ":"), "/"), nil
}

// ReadFile reads a packaged file.
func ReadFile(p string) ([]byte, error) {
	name, err := fsPath(p)
	if err != nil {
		return nil, err
	}
	data, err := files.ReadFile(name)
	if err != nil {
		return nil, errors.Wrapf(err, "packaged resource %s", p)
	}
	return data, nil
}

// ModTime returns the modification time of a packaged file.
func ModTime(p string) (time.Time, error) {
	name, err := fsPath(p)
	if err != nil {
		return time.Time{}, err
	}
	if _, err := fs.Stat(files, name); err != nil {
		return time.Time{}, errors.Wrapf(err, "packaged resource %s", p)
	}
	return packagedTime, nil
}

// FS exposes the packaged files.
func FS() fs.FS {
	return files
}
