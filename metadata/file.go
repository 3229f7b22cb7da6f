package metadata

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/input-output-hk/catalyst-forge-libs/maven/errors"
	"github.com/input-output-hk/catalyst-forge-libs/maven/fs"
	"github.com/input-output-hk/catalyst-forge-libs/maven/repository"
)

// FileTransport reads metadata from file:// repositories.
type FileTransport struct {
	fs fs.Filesystem
}

// NewFileTransport creates a transport reading through filesystem.
func NewFileTransport(filesystem fs.Filesystem) *FileTransport {
	return &FileTransport{fs: filesystem}
}

// Fetch implements Transport.
func (t *FileTransport) Fetch(_ context.Context, remote repository.Remote, path string) ([]byte, error) {
	u, err := url.Parse(remote.URL)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "invalid file repository url")
	}
	full := filepath.Join(filepath.FromSlash(u.Path), filepath.FromSlash(path))

	data, err := t.fs.ReadFile(full)
	if err != nil {
		if fs.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", full, ErrNotFound)
		}
		return nil, errors.WrapWithContext(err, errors.CodeIO, "failed to read repository file",
			map[string]interface{}{"path": full})
	}
	return data, nil
}
