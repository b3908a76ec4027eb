// Package hotreload watches the recipe dataset and reloads the catalog when
// the file changes on disk
package hotreload

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/alchemorsel/recipebook/internal/ports/inbound"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Reloader is the part of the catalog the watcher drives
type Reloader interface {
	Load(ctx context.Context) (*inbound.ReloadResult, error)
}

// DatasetWatcher reloads the catalog after the dataset file is written,
// created or renamed into place. Bursts of events collapse into one reload.
type DatasetWatcher struct {
	watcher  *fsnotify.Watcher
	target   string
	reloader Reloader
	logger   *zap.Logger

	debounceDelay time.Duration
	timer         *time.Timer
	mutex         sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDatasetWatcher watches the directory containing path. Editors that
// save through a rename replace the inode, so the file itself is not watched.
func NewDatasetWatcher(path string, debounce time.Duration, reloader Reloader, logger *zap.Logger) (*DatasetWatcher, error) {
	target, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &DatasetWatcher{
		watcher:       watcher,
		target:        target,
		reloader:      reloader,
		logger:        logger.Named("dataset-watcher"),
		debounceDelay: debounce,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

// Start begins file watching
func (w *DatasetWatcher) Start() {
	w.wg.Add(1)
	go w.watchLoop()
	w.logger.Info("Watching recipe dataset", zap.String("path", w.target))
}

// Stop gracefully shuts down the watcher and cancels a pending reload
func (w *DatasetWatcher) Stop() error {
	w.cancel()

	w.mutex.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mutex.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *DatasetWatcher) watchLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("File watcher error", zap.Error(err))
		}
	}
}

func (w *DatasetWatcher) handleEvent(event fsnotify.Event) {
	if !w.relevant(event) {
		return
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounceDelay, w.reload)
}

func (w *DatasetWatcher) relevant(event fsnotify.Event) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil || name != w.target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *DatasetWatcher) reload() {
	if w.ctx.Err() != nil {
		return
	}

	result, err := w.reloader.Load(w.ctx)
	if err != nil {
		w.logger.Error("Recipe dataset reload failed, keeping previous catalog",
			zap.String("path", w.target),
			zap.Error(err),
		)
		return
	}

	w.logger.Info("Recipe dataset reloaded",
		zap.String("path", w.target),
		zap.Int("recipes", result.RecipeCount),
		zap.Int("skipped", result.Skipped),
	)
}
