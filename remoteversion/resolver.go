// Package remoteversion determines the highest version of an artifact
// published in a remote Maven repository.
package remoteversion

import (
	"context"
	"log/slog"

	"github.com/input-output-hk/catalyst-forge-libs/maven/artifact"
	"github.com/input-output-hk/catalyst-forge-libs/maven/errors"
	"github.com/input-output-hk/catalyst-forge-libs/maven/metadata"
	"github.com/input-output-hk/catalyst-forge-libs/maven/repository"
	"github.com/input-output-hk/catalyst-forge-libs/maven/version"
)

// MetadataResolver retrieves repository metadata fresh from the given
// remotes, always bypassing any cache.
type MetadataResolver interface {
	ResolveAlways(
		ctx context.Context,
		coord artifact.Coordinate,
		local repository.Local,
		remotes ...repository.Remote,
	) (*metadata.Metadata, error)
}

// Request describes one resolution.
type Request struct {
	Coordinate artifact.Coordinate

	// Repositories is the caller supplied repository list.
	Repositories []repository.Remote

	// LocalRepository receives the fetched metadata.
	LocalRepository repository.Local

	// TargetRepositoryID selects the repository to query. Empty, or an id
	// that matches nothing, selects no specific repository.
	TargetRepositoryID string

	// Constraint optionally restricts the candidates.
	Constraint version.Constraint
}

// Resolver selects the highest published version of an artifact.
type Resolver struct {
	metadata MetadataResolver
	logger   *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger configures the resolver with a logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithMetadataResolver replaces the default metadata manager.
func WithMetadataResolver(m MetadataResolver) Option {
	return func(r *Resolver) {
		r.metadata = m
	}
}

// New creates a Resolver. Without WithMetadataResolver it uses a
// metadata.Manager sharing the resolver's logger.
func New(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	if r.metadata == nil {
		r.metadata = metadata.NewManager(metadata.WithLogger(r.logger))
	}
	return r
}

// Resolve returns the highest version of req.Coordinate, or nil when none
// is known. A metadata failure is logged as a warning and yields nil; the
// only errors returned concern an invalid request.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Properties, error) {
	if req.Coordinate.IsZero() {
		return nil, errors.Newf(errors.CodeInvalidInput, "artifact coordinate %q is incomplete", req.Coordinate.String())
	}

	remotes := req.Repositories
	if remote, found := repository.Find(req.Repositories, req.TargetRepositoryID); found {
		remotes = []repository.Remote{*remote}
	} else if req.TargetRepositoryID != "" && r.logger != nil {
		r.logger.DebugContext(ctx, "target repository not configured, querying all repositories",
			"repositoryId", req.TargetRepositoryID)
	}

	md, err := r.metadata.ResolveAlways(ctx, req.Coordinate, req.LocalRepository, remotes...)
	if err != nil {
		if r.logger != nil {
			r.logger.WarnContext(ctx, "failed to resolve artifact metadata",
				"coordinate", req.Coordinate.String(), "error", err)
		}
		return nil, nil
	}

	raws := md.Versions()
	if len(raws) == 0 {
		if r.logger != nil {
			r.logger.DebugContext(ctx, "no versions published", "coordinate", req.Coordinate.String())
		}
		return nil, nil
	}

	candidates := req.Constraint.Filter(version.ParseAll(raws))
	best, ok := version.Max(candidates)
	if !ok {
		if r.logger != nil {
			r.logger.DebugContext(ctx, "no version satisfies constraint",
				"coordinate", req.Coordinate.String(), "constraint", req.Constraint.String())
		}
		return nil, nil
	}

	if r.logger != nil {
		r.logger.DebugContext(ctx, "selected remote version",
			"coordinate", req.Coordinate.String(), "version", best.String(), "candidates", len(candidates))
	}
	return newProperties(best), nil
}
