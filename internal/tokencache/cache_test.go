package tokencache_test

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scerrors "github.com/systmms/sitectl/internal/errors"
	"github.com/systmms/sitectl/internal/logging"
	"github.com/systmms/sitectl/internal/tokencache"
)

func testLogger() *logging.Logger {
	return logging.NewWithWriter(true, true, io.Discard)
}

func TestEnsureDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "tokencache.bin")
	cache := tokencache.NewAt(path)

	require.NoError(t, cache.EnsureDir())
	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestClearRemovesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tokencache.bin")
	require.NoError(t, os.WriteFile(path, []byte("opaque"), 0o600))

	cache := tokencache.NewAt(path)
	require.NoError(t, cache.Clear(testLogger()))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

// TestClearMissingFileIsFine pins the clear-token-cache contract: asking
// for a clean sign-in with no cache present succeeds silently.
func TestClearMissingFileIsFine(t *testing.T) {
	t.Parallel()

	cache := tokencache.NewAt(filepath.Join(t.TempDir(), "absent.bin"))
	assert.NoError(t, cache.Clear(testLogger()))
}

// TestClearUndeletableFileFails makes the cache file undeletable by
// stripping write permission from its directory.
func TestClearUndeletableFileFails(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("directory permissions not enforced here")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "tokencache.bin")
	require.NoError(t, os.WriteFile(path, []byte("opaque"), 0o600))
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	err := tokencache.NewAt(path).Clear(testLogger())
	var cacheErr scerrors.CacheError
	require.ErrorAs(t, err, &cacheErr)
	assert.Equal(t, "delete", cacheErr.Op)
}

func TestDefaultPath(t *testing.T) {
	cache, err := tokencache.New()
	require.NoError(t, err)
	assert.Equal(t, "tokencache.bin", filepath.Base(cache.Path()))
}
