package hotreload

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alchemorsel/recipebook/internal/ports/inbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingReloader struct {
	calls atomic.Int32
}

func (r *countingReloader) Load(context.Context) (*inbound.ReloadResult, error) {
	r.calls.Add(1)
	return &inbound.ReloadResult{RecipeCount: 1, LoadedAt: time.Now()}, nil
}

func newWatcher(t *testing.T, path string, r Reloader) *DatasetWatcher {
	t.Helper()
	w, err := NewDatasetWatcher(path, 50*time.Millisecond, r, zap.NewNop())
	require.NoError(t, err)
	w.Start()
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func TestDatasetWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recipes.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	r := &countingReloader{}
	newWatcher(t, path, r)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`[{"recipeId":1,"recipeNameEn":"Soup"}]`), 0o644))
	}

	assert.Eventually(t, func() bool { return r.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestDatasetWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recipes.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	r := &countingReloader{}
	newWatcher(t, path, r)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, r.calls.Load())
}

func TestDatasetWatcherHandlesRenameIntoPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recipes.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	r := &countingReloader{}
	newWatcher(t, path, r)

	tmp := filepath.Join(dir, "recipes.json.new")
	require.NoError(t, os.WriteFile(tmp, []byte("[]"), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	assert.Eventually(t, func() bool { return r.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestNewDatasetWatcherMissingDirectory(t *testing.T) {
	_, err := NewDatasetWatcher(filepath.Join(t.TempDir(), "missing", "recipes.json"), 0, &countingReloader{}, zap.NewNop())
	assert.Error(t, err)
}
