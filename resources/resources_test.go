package resources

import (
	"io/fs"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackagedPaths(t *testing.T) {
	u, err := url.Parse("qrc:///shaders/errorShader.frag")
	require.NoError(t, err)
	p := PathForURL(u)
	assert.Equal(t, ":/shaders/errorShader.frag", p)
	assert.True(t, IsPackagedPath(p))
	assert.False(t, IsPackagedPath("/shaders/errorShader.frag"))

	data, err := ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), "getProceduralColor")

	modified, err := ModTime(p)
	require.NoError(t, err)
	assert.False(t, modified.IsZero())

	_, err = ReadFile(":/shaders/missing.frag")
	assert.Error(t, err)
	_, err = ModTime(":/shaders/missing.frag")
	assert.Error(t, err)
	_, err = ReadFile("shaders/errorShader.frag")
	assert.Error(t, err)
}

func TestFS(t *testing.T) {
	matches, err := fs.Glob(FS(), "shaders/*.frag")
	require.NoError(t, err)
	assert.Contains(t, matches, "shaders/rainbow.frag")
}
