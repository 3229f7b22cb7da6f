// Package fs defines the filesystem abstraction used by the build steps.
// Implementations live in sub-packages (see fs/billy) so that callers can
// swap the OS filesystem for an in-memory one in tests.
package fs

import (
	"errors"
	"io/fs"
	"os"
)

// Filesystem is the set of file operations the build steps rely on.
// Paths are interpreted by the implementation; the OS implementation
// accepts absolute paths.
type Filesystem interface {
	// Exists reports whether path exists.
	Exists(path string) (bool, error)

	// MkdirAll creates path and any missing parents.
	MkdirAll(path string, perm os.FileMode) error

	// ReadDir lists the entries of dirname.
	ReadDir(dirname string) ([]os.FileInfo, error)

	// ReadFile returns the content of path.
	ReadFile(path string) ([]byte, error)

	// Remove deletes a single file or empty directory.
	Remove(name string) error

	// Stat returns file information for name.
	Stat(name string) (os.FileInfo, error)

	// WriteFile writes data to filename, truncating existing content.
	WriteFile(filename string, data []byte, perm os.FileMode) error

	// WriteFileAtomic writes data to a temporary sibling of filename and
	// renames it into place, creating parent directories as needed.
	// On failure filename is left absent or unchanged.
	WriteFileAtomic(filename string, data []byte, perm os.FileMode) error
}

// IsNotExist reports whether err indicates a missing file.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
