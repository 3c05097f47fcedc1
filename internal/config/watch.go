package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the configuration at path whenever the file is written and
// passes each valid result to onChange. Invalid files are logged and skipped.
// Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Config)) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			config, err := LoadFrom(path)
			if err != nil {
				log.Printf("Config reload failed: %v", err)
				continue
			}
			if err := config.Validate(); err != nil {
				log.Printf("Config reload rejected: %v", err)
				continue
			}
			log.Printf("Config reloaded from %s", path)
			onChange(config)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Config watcher error: %v", err)
		}
	}
}
