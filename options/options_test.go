package options

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/richinsley/goprocedural/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("goprocedural", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestDefaults(t *testing.T) {
	o, err := Parse(newFlagSet(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1280, *o.Width)
	assert.Equal(t, "", *o.Descriptor)
	d, err := o.ShaderDialect()
	require.NoError(t, err)
	assert.Equal(t, shader.GLSL410, d)
}

func TestConfigFileMergesUnderFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
descriptor: /tmp/material.json
width: 640
height: 480
dialect: glsles300
fadeSeconds: 0.5
`), 0644))

	o, err := Parse(newFlagSet(), []string{"-config", path, "-width", "800"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/material.json", *o.Descriptor)
	assert.Equal(t, 800, *o.Width, "command line wins")
	assert.Equal(t, 480, *o.Height)
	assert.Equal(t, 0.5, *o.FadeSeconds)
	assert.True(t, *o.Spin, "absent keys keep the flag default")
	d, err := o.ShaderDialect()
	require.NoError(t, err)
	assert.Equal(t, shader.GLSLES300, d)
}

func TestInvalidOptions(t *testing.T) {
	_, err := Parse(newFlagSet(), []string{"-dialect", "hlsl"})
	assert.ErrorContains(t, err, "unknown dialect")

	_, err = Parse(newFlagSet(), []string{"-width", "0"})
	assert.Error(t, err)

	_, err = Parse(newFlagSet(), []string{"-config", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("width: [1, 2"), 0644))
	_, err = Parse(newFlagSet(), []string{"-config", bad})
	assert.ErrorContains(t, err, "failed to parse config")
}
