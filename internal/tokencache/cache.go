// Package tokencache manages the opaque token cache artifact the AAD
// authentication libraries keep per user. sitectl never reads or writes
// the file's contents; it only prepares the containing directory and
// deletes the file when a caller asks for a clean sign-in.
package tokencache

import (
	"os"
	"path/filepath"

	scerrors "github.com/systmms/sitectl/internal/errors"
	"github.com/systmms/sitectl/internal/logging"
)

const (
	cacheDirName  = "sitectl"
	cacheFileName = "tokencache.bin"
)

// Cache locates the per-user token cache artifact.
type Cache struct {
	path string
}

// New returns the cache at the default per-user configuration path.
func New() (*Cache, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, scerrors.CacheError{Op: "locate", Err: err}
	}
	return &Cache{path: filepath.Join(configDir, cacheDirName, cacheFileName)}, nil
}

// NewAt returns a cache at an explicit path. Primarily for tests.
func NewAt(path string) *Cache {
	return &Cache{path: path}
}

// Path returns the cache file location.
func (c *Cache) Path() string {
	return c.path
}

// EnsureDir creates the containing directory if needed.
func (c *Cache) EnsureDir() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return scerrors.CacheError{Path: c.path, Op: "prepare", Err: err}
	}
	return nil
}

// Clear deletes the cache file. A missing file is not an error; a
// present file that cannot be removed is.
func (c *Cache) Clear(logger *logging.Logger) error {
	err := os.Remove(c.path)
	if err == nil {
		logger.Debug("Removed token cache at %s", c.path)
		return nil
	}
	if os.IsNotExist(err) {
		logger.Debug("Token cache at %s already absent", c.path)
		return nil
	}
	return scerrors.CacheError{Path: c.path, Op: "delete", Err: err}
}
