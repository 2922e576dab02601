package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Load restores store from the file at path. A missing file leaves the store
// empty.
func Load(store Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("failed to read state file: %w", err)
	}

	if err := store.Restore(data); err != nil {
		return fmt.Errorf("failed to restore state file %s: %w", path, err)
	}

	return nil
}

// Flush writes a backup of store to path after every update, until ctx is
// cancelled or the store is closed. Updates still queued when ctx ends are
// written once more.
func Flush(ctx context.Context, store Store, path string, log *zap.Logger) error {
	updates := store.ListenToUpdates()

	for {
		select {
		case <-ctx.Done():
			if drain(updates) > 0 {
				return writeBackup(store, path)
			}

			return nil

		case update, ok := <-updates:
			if !ok {
				return nil
			}

			if err := writeBackup(store, path); err != nil {
				log.Error("Failed to flush state",
					zap.String("key", string(update.Key)),
					zap.Error(err))
				continue
			}

			log.Debug("Flushed state", zap.String("key", string(update.Key)))
		}
	}
}

func drain(updates <-chan *Update) (n int) {
	for {
		select {
		case _, ok := <-updates:
			if !ok {
				return n
			}
			n++

		default:
			return n
		}
	}
}

// writeBackup replaces path atomically so a crash never leaves half a file.
func writeBackup(store Store, path string) error {
	data, err := store.Backup()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
