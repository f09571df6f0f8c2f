// File: services/catalog_watcher.go
package services

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"ctf-catalog/logger"
	"github.com/fsnotify/fsnotify"
)

// reloadDebounce collapses editor write bursts into one reload.
var reloadDebounce = time.Second

// WatchCatalog reloads store whenever the catalog file at path is written.
// It watches the parent directory so atomic rename-based saves are seen too.
// It returns when ctx is cancelled.
func WatchCatalog(ctx context.Context, path string, store *CatalogStore) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create catalog watcher: %w", err)
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve catalog path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("watch catalog dir: %w", err)
	}
	logger.Info.Printf("[WatchCatalog] watching %s", absPath)

	timer := time.NewTimer(reloadDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(reloadDebounce)
		case <-timer.C:
			if _, err := store.Reload(); err != nil {
				logger.Error.Printf("[WatchCatalog] reload failed: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error.Printf("[WatchCatalog] watcher error: %v", err)
		}
	}
}
