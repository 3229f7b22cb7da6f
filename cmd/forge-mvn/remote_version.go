package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/input-output-hk/catalyst-forge-libs/maven/config"
	"github.com/input-output-hk/catalyst-forge-libs/maven/credentials"
	"github.com/input-output-hk/catalyst-forge-libs/maven/errors"
	"github.com/input-output-hk/catalyst-forge-libs/maven/fs/billy"
	"github.com/input-output-hk/catalyst-forge-libs/maven/metadata"
	"github.com/input-output-hk/catalyst-forge-libs/maven/properties"
	"github.com/input-output-hk/catalyst-forge-libs/maven/remoteversion"
)

func runRemoteVersion(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	args []string,
	stdout, stderr io.Writer,
) error {
	rv := &cfg.RemoteVersion
	var githubOutput bool

	fset := flag.NewFlagSet("remote-version", flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.StringVar(&rv.GroupID, "group", rv.GroupID, "artifact groupId")
	fset.StringVar(&rv.ArtifactID, "artifact", rv.ArtifactID, "artifact artifactId")
	fset.StringVar(&rv.RepositoryID, "repository-id", rv.RepositoryID, "id of the repository to query")
	fset.StringVar(&rv.PropertyPrefix, "prefix", rv.PropertyPrefix, "property name prefix")
	fset.StringVar(&rv.Constraint, "constraint", rv.Constraint, "semantic version range candidates must satisfy")
	fset.StringVar(&rv.PropertiesFile, "properties-file", rv.PropertiesFile, "also write the properties to this file")
	fset.BoolVar(&githubOutput, "github-output", false, "also append the properties to $GITHUB_OUTPUT")
	if err := fset.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	constraint, err := cfg.VersionConstraint()
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "invalid --constraint")
	}

	resolver := remoteversion.New(
		remoteversion.WithLogger(logger),
		remoteversion.WithMetadataResolver(metadata.NewManager(
			metadata.WithLogger(logger),
			metadata.WithCredentials(newCredentials(logger)),
			metadata.WithS3Options(s3Options(cfg.S3)...),
		)),
	)

	props, err := resolver.Resolve(ctx, remoteversion.Request{
		Coordinate:         rv.Coordinate(),
		Repositories:       cfg.Repositories,
		LocalRepository:    cfg.Local(),
		TargetRepositoryID: rv.RepositoryID,
		Constraint:         constraint,
	})
	if err != nil {
		return err
	}
	if props == nil {
		logger.InfoContext(ctx, "no remote version found", "coordinate", rv.Coordinate().String())
		return nil
	}

	values := props.Map(rv.PropertyPrefix)
	for _, k := range properties.SortedKeys(values) {
		fmt.Fprintf(stdout, "%s=%s\n", k, values[k])
	}

	if rv.PropertiesFile != "" {
		if err := properties.DefineAll(properties.NewFileSink(billy.NewBaseOSFS(), rv.PropertiesFile), values); err != nil {
			return err
		}
	}
	if githubOutput {
		sink, err := properties.NewGitHubOutputSink()
		if err != nil {
			return err
		}
		if err := properties.DefineAll(sink, values); err != nil {
			return err
		}
	}
	return nil
}

func s3Options(s config.S3) []metadata.S3Option {
	var opts []metadata.S3Option
	if s.Region != "" {
		opts = append(opts, metadata.WithS3Region(s.Region))
	}
	if s.Endpoint != "" {
		opts = append(opts, metadata.WithS3Endpoint(s.Endpoint))
	}
	return opts
}

// newCredentials resolves env: and aws-sm: password references. AWS
// configuration is only loaded when an aws-sm: reference is used.
func newCredentials(logger *slog.Logger) *credentials.Chain {
	var (
		once sync.Once
		sm   *credentials.SecretsManager
		err  error
	)
	lazy := credentials.ResolverFunc(func(ctx context.Context, ref string) (string, error) {
		once.Do(func() {
			sm, err = credentials.NewSecretsManager(ctx, logger)
		})
		if err != nil {
			return "", err
		}
		return sm.Resolve(ctx, ref)
	})

	return credentials.NewChain(
		credentials.WithLogger(logger),
		credentials.WithResolver(credentials.SecretsManagerPrefix, lazy),
	)
}
