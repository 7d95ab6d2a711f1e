package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 150 * time.Millisecond

// Watch reloads the config file whenever it changes and passes the result,
// environment overrides applied, to onChange. It watches the profile
// directory rather than the file so editors that save by rename are seen.
// The watcher stops when ctx is done.
func Watch(ctx context.Context, profileDir string, log logrus.FieldLogger, onChange func(Config)) error {
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	if err := w.Add(profileDir); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", profileDir, err)
	}

	target := filepath.Clean(Path(profileDir))
	go func() {
		defer w.Close()
		timer := time.NewTimer(watchDebounce)
		if !timer.Stop() {
			<-timer.C
		}
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return

			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				timer.Reset(watchDebounce)

			case <-timer.C:
				cfg, err := LoadFile(target)
				if err != nil {
					log.WithError(err).Warn("config reload skipped")
					continue
				}
				cfg.ApplyEnvOverrides()
				log.WithField("path", target).Info("config reloaded")
				onChange(cfg)

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("config watcher error")
			}
		}
	}()
	return nil
}
