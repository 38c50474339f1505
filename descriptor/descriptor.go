// Package descriptor loads procedural descriptor files and reports edits to
// them so a viewer can hot reload its material.
package descriptor

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Load returns the contents of the descriptor at path.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read descriptor %s", path)
	}
	return string(data), nil
}

// Watch sends the descriptor's new contents every time path is written or
// recreated. The directory is watched rather than the file so editors that
// save by rename keep working. The channel closes when ctx is done.
func Watch(ctx context.Context, path string) (<-chan string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid descriptor path %s", path)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "error creating descriptor watcher")
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "error watching %s", filepath.Dir(abs))
	}

	out := make(chan string, 1)
	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				contents, err := Load(abs)
				if err != nil {
					log.Printf("Warning: %v", err)
					continue
				}
				select {
				case out <- contents:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Warning: descriptor watcher error: %v", err)
			}
		}
	}()
	return out, nil
}
