package config

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/frudas24/screenoff/internal/logx"
)

// Watch calls onChange with freshly parsed settings whenever the file at path changes.
// It blocks until ctx is done. Parse errors are logged and the previous settings kept.
func Watch(ctx context.Context, path string, onChange func(Settings)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating settings watcher: %w", err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			log.Printf("config: closing settings watcher: %v", err)
		}
	}()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating settings dir: %w", err)
	}
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	logx.Debugf("config: watching %s", path)

	lastHash, _ := fileHash(path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			h, err := fileHash(path)
			if err != nil || h == lastHash {
				continue
			}
			lastHash = h

			s, err := LoadSettings(path)
			if err != nil {
				log.Printf("config: ignoring settings change: %v", err)
				continue
			}
			log.Printf("config: settings reloaded from %s", path)
			onChange(s)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("settings watcher: %w", err)
		}
	}
}

// fileHash returns the sha256 of a file's contents.
func fileHash(path string) ([32]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}
