package descriptor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "material.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":2}`), 0644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, `{"version":2}`, got)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestWatchReportsEdits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "material.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":1}`), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates, err := Watch(ctx, path)
	require.NoError(t, err)

	// edits to other files in the directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0644))
	require.NoError(t, os.WriteFile(path, []byte(`{"version":3}`), 0644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-updates:
			if got == `{"version":3}` {
				cancel()
				// drain until the watcher goroutine closes the channel
				for range updates {
				}
				return
			}
			assert.NotEqual(t, `{}`, got)
		case <-deadline:
			t.Fatal("no update for the edited descriptor")
		}
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	_, err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "material.json"))
	assert.Error(t, err)
}
