package metadata

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/maven/artifact"
	"github.com/input-output-hk/catalyst-forge-libs/maven/credentials"
	"github.com/input-output-hk/catalyst-forge-libs/maven/errors"
	"github.com/input-output-hk/catalyst-forge-libs/maven/fs"
	"github.com/input-output-hk/catalyst-forge-libs/maven/fs/billy"
	"github.com/input-output-hk/catalyst-forge-libs/maven/repository"
)

// Manager resolves repository metadata for artifact coordinates.
type Manager struct {
	transports Transports
	fs         fs.Filesystem
	logger     *slog.Logger
}

type managerOptions struct {
	transports  Transports
	fs          fs.Filesystem
	logger      *slog.Logger
	credentials credentials.Resolver
	s3          []S3Option
}

// Option configures a Manager.
type Option func(*managerOptions)

// WithLogger configures the manager with a logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *managerOptions) {
		o.logger = logger
	}
}

// WithFilesystem sets the filesystem holding the local repository and
// file:// repositories. Defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) Option {
	return func(o *managerOptions) {
		o.fs = filesystem
	}
}

// WithTransport registers t for a URL scheme, replacing any default.
func WithTransport(scheme string, t Transport) Option {
	return func(o *managerOptions) {
		o.transports[strings.ToLower(scheme)] = t
	}
}

// WithCredentials sets the resolver used for repository passwords by the
// default HTTP transport.
func WithCredentials(r credentials.Resolver) Option {
	return func(o *managerOptions) {
		o.credentials = r
	}
}

// WithS3Options configures the default s3 transport, for example with a
// region or an S3 compatible endpoint.
func WithS3Options(opts ...S3Option) Option {
	return func(o *managerOptions) {
		o.s3 = append(o.s3, opts...)
	}
}

// NewManager creates a Manager. Unless overridden it supports http, https,
// file and s3 repositories.
func NewManager(opts ...Option) *Manager {
	o := &managerOptions{transports: Transports{}}
	for _, opt := range opts {
		opt(o)
	}
	if o.fs == nil {
		o.fs = billy.NewBaseOSFS()
	}

	defaults := Transports{
		"http":  NewHTTPTransport(nil, o.credentials),
		"https": NewHTTPTransport(nil, o.credentials),
		"file":  NewFileTransport(o.fs),
		"s3":    NewS3Transport(o.s3...),
	}
	for scheme, t := range defaults {
		if _, ok := o.transports[scheme]; !ok {
			o.transports[scheme] = t
		}
	}

	return &Manager{transports: o.transports, fs: o.fs, logger: o.logger}
}

// ResolveAlways retrieves the metadata of coord fresh from every given
// repository, writes each document through to the local repository as
// maven-metadata-<id>.xml and merges the results in repository order. Local
// metadata is never read back.
//
// A repository that does not know the coordinate contributes nothing. With
// several repositories a failing one is logged and skipped as long as
// another one answered; otherwise the failure is returned with
// CodeMetadataResolution. No repositories yields nil metadata.
func (m *Manager) ResolveAlways(
	ctx context.Context,
	coord artifact.Coordinate,
	local repository.Local,
	remotes ...repository.Remote,
) (*Metadata, error) {
	var (
		docs     []*Metadata
		failures []error
		answered bool
	)
	for _, remote := range remotes {
		md, err := m.resolveRemote(ctx, coord, local, remote)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		answered = true
		docs = append(docs, md)
	}

	if len(failures) > 0 {
		if !answered {
			if len(failures) == 1 {
				return nil, failures[0]
			}
			return nil, errors.Join(failures...)
		}
		for _, err := range failures {
			if m.logger != nil {
				m.logger.WarnContext(ctx, "skipping repository", "coordinate", coord.String(), "error", err)
			}
		}
	}
	return Merge(docs...), nil
}

func (m *Manager) resolveRemote(
	ctx context.Context,
	coord artifact.Coordinate,
	local repository.Local,
	remote repository.Remote,
) (*Metadata, error) {
	details := map[string]interface{}{"coordinate": coord.String(), "repository": remote.ID}

	transport, err := m.transports.For(remote)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeMetadataResolution,
			"failed to resolve repository metadata", details)
	}

	remotePath := repository.MetadataPath(coord.GroupID, coord.ArtifactID)
	m.debug(ctx, "fetching repository metadata", "repository", remote.ID, "path", remotePath)

	data, err := transport.Fetch(ctx, remote, remotePath)
	if err != nil {
		if stderrors.Is(err, ErrNotFound) {
			m.debug(ctx, "repository has no metadata for artifact",
				"repository", remote.ID, "coordinate", coord.String())
			return nil, nil
		}
		return nil, errors.WrapWithContext(err, errors.CodeMetadataResolution,
			"failed to resolve repository metadata", details)
	}

	if err := checkContent(data); err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeMetadataResolution,
			"failed to resolve repository metadata", details)
	}
	md, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeMetadataResolution,
			"failed to resolve repository metadata", details)
	}

	if local.Basedir != "" {
		target := local.MetadataPath(coord.GroupID, coord.ArtifactID, remote.ID)
		if werr := m.fs.WriteFileAtomic(target, data, 0o644); werr != nil && m.logger != nil {
			m.logger.WarnContext(ctx, "failed to store metadata in local repository",
				"path", target, "error", werr)
		}
	}

	return md, nil
}

func (m *Manager) debug(ctx context.Context, msg string, args ...any) {
	if m.logger != nil {
		m.logger.DebugContext(ctx, msg, args...)
	}
}
