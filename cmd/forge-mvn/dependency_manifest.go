package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/maven/artifact"
	"github.com/input-output-hk/catalyst-forge-libs/maven/config"
	"github.com/input-output-hk/catalyst-forge-libs/maven/fs/billy"
	"github.com/input-output-hk/catalyst-forge-libs/maven/manifest"
)

func runDependencyManifest(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	args []string,
	stderr io.Writer,
) error {
	m := &cfg.Manifest
	mvn := "mvn"

	fset := flag.NewFlagSet("dependency-manifest", flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.BoolVar(&m.ExcludeTransitive, "exclude-transitive", m.ExcludeTransitive, "only list direct dependencies")
	fset.StringVar(&m.OutputFile, "output-file", m.OutputFile, "write the manifest to this file instead of the log")
	fset.StringVar(&m.ArtifactsFile, "artifacts-file", m.ArtifactsFile, "dependency:list output with every dependency")
	fset.StringVar(&m.DirectArtifactsFile, "direct-artifacts-file", m.DirectArtifactsFile, "dependency:list output with direct dependencies")
	fset.StringVar(&m.ProjectDir, "project", m.ProjectDir, "project directory to run mvn in")
	fset.StringVar(&mvn, "mvn", mvn, "mvn executable")
	fset.StringVar(&m.MavenOpts, "maven-opts", m.MavenOpts, "MAVEN_OPTS for the mvn run")
	fset.IntVar(&m.Retries, "mvn-retries", m.Retries, "repeat a failing mvn run this many times")
	if err := fset.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	filesystem := billy.NewBaseOSFS()

	var provider artifact.Provider
	if m.ArtifactsFile != "" {
		provider = artifact.NewListProvider(filesystem, m.ArtifactsFile, m.DirectArtifactsFile)
	} else {
		dir := m.ProjectDir
		if dir == "" {
			dir = "."
		}
		opts := []artifact.MavenOption{
			artifact.WithLogger(logger),
			artifact.WithMavenCommand(mvn),
			artifact.WithMavenArgs("-Dmaven.repo.local=" + cfg.LocalRepository),
			artifact.WithRetries(m.Retries, time.Second),
		}
		if m.MavenOpts != "" {
			opts = append(opts, artifact.WithMavenEnv("MAVEN_OPTS", m.MavenOpts))
		}
		provider = artifact.NewMavenProvider(dir, opts...)
	}

	set, err := provider.Artifacts(ctx)
	if err != nil {
		return err
	}

	builder := manifest.New(manifest.WithLogger(logger), manifest.WithFilesystem(filesystem))
	_, err = builder.Run(ctx, manifest.Request{
		Artifacts:         set,
		BaseDir:           cfg.LocalRepository,
		ExcludeTransitive: m.ExcludeTransitive,
		OutputFile:        m.OutputFile,
	})
	return err
}
