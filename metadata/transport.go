package metadata

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/input-output-hk/catalyst-forge-libs/maven/repository"
)

// ErrNotFound is returned by a Transport when the repository does not hold
// the requested file. It is not a resolution failure.
var ErrNotFound = stderrors.New("metadata: not found in repository")

// Transport fetches a file from a remote repository. Implementations must
// bypass any cache between them and the repository.
type Transport interface {
	// Fetch returns the content of the slash separated path relative to the
	// repository root, or ErrNotFound.
	Fetch(ctx context.Context, remote repository.Remote, path string) ([]byte, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, remote repository.Remote, path string) ([]byte, error)

// Fetch implements Transport.
func (f TransportFunc) Fetch(ctx context.Context, remote repository.Remote, path string) ([]byte, error) {
	return f(ctx, remote, path)
}

// Transports maps URL schemes to transports.
type Transports map[string]Transport

// For returns the transport registered for the repository URL scheme.
//
//nolint:ireturn // transports are selected dynamically by scheme.
func (t Transports) For(remote repository.Remote) (Transport, error) {
	scheme, err := remote.Scheme()
	if err != nil {
		return nil, err
	}
	tr, ok := t[scheme]
	if !ok {
		return nil, fmt.Errorf("repository %q: unsupported url scheme %q", remote.ID, scheme)
	}
	return tr, nil
}
