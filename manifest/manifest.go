// Package manifest builds the local-repository-relative list of a project's
// resolved dependency files.
package manifest

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/maven/artifact"
	"github.com/input-output-hk/catalyst-forge-libs/maven/errors"
	"github.com/input-output-hk/catalyst-forge-libs/maven/fs"
	"github.com/input-output-hk/catalyst-forge-libs/maven/fs/billy"
)

// LineSeparator terminates every manifest entry.
var LineSeparator = lineSeparator(runtime.GOOS)

func lineSeparator(goos string) string {
	if goos == "windows" {
		return "\r\n"
	}
	return "\n"
}

// Request describes one manifest run.
type Request struct {
	Artifacts artifact.Set

	// BaseDir is the local repository every artifact file must live under.
	BaseDir string

	// ExcludeTransitive restricts the manifest to direct dependencies.
	ExcludeTransitive bool

	// OutputFile receives the manifest. When empty the manifest is logged.
	OutputFile string
}

// Result is the outcome of a manifest run.
type Result struct {
	Entries []string
	Text    string

	// Skipped lists the artifacts whose file was outside BaseDir.
	Skipped []artifact.Artifact
}

// Builder produces dependency manifests.
type Builder struct {
	fs        fs.Filesystem
	logger    *slog.Logger
	separator string
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger configures the builder with a logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithFilesystem sets the filesystem the manifest file is written to.
func WithFilesystem(filesystem fs.Filesystem) Option {
	return func(b *Builder) {
		b.fs = filesystem
	}
}

// WithLineSeparator overrides the platform line separator.
func WithLineSeparator(sep string) Option {
	return func(b *Builder) {
		b.separator = sep
	}
}

// New creates a Builder writing to the OS filesystem.
func New(opts ...Option) *Builder {
	b := &Builder{separator: LineSeparator}
	for _, opt := range opts {
		opt(b)
	}
	if b.fs == nil {
		b.fs = billy.NewBaseOSFS()
	}
	return b
}

// Build returns the manifest entries of artifacts in input order. Artifacts
// whose file is not under baseDir are skipped with a warning.
func (b *Builder) Build(ctx context.Context, artifacts []artifact.Artifact, baseDir string) []string {
	entries, _ := b.build(ctx, artifacts, baseDir)
	return entries
}

func (b *Builder) build(ctx context.Context, artifacts []artifact.Artifact, baseDir string) ([]string, []artifact.Artifact) {
	entries := make([]string, 0, len(artifacts))
	var skipped []artifact.Artifact
	for _, a := range artifacts {
		entry, err := Relativize(a.File, baseDir)
		if err != nil {
			if b.logger != nil {
				b.logger.WarnContext(ctx, "artifact file is not in the local repository, skipping",
					"artifact", a.ID(), "path", a.File, "baseDir", baseDir)
			}
			skipped = append(skipped, a)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, skipped
}

// Relativize strips baseDir and every leading path separator from path.
// A path that does not start with baseDir is an invalid artifact path.
func Relativize(path, baseDir string) (string, error) {
	if !strings.HasPrefix(path, baseDir) {
		return "", errors.Newf(errors.CodeInvalidArtifactPath, "%s is not under %s", path, baseDir)
	}
	return strings.TrimLeft(strings.TrimPrefix(path, baseDir), string(os.PathSeparator)+"/"), nil
}

// Format joins entries, terminating each with sep.
func Format(entries []string, sep string) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e)
		sb.WriteString(sep)
	}
	return sb.String()
}

// Run builds the manifest for req and writes or logs it. Only a failure to
// write the output file is returned, as CodeManifestWrite.
func (b *Builder) Run(ctx context.Context, req Request) (*Result, error) {
	artifacts := req.Artifacts.Select(req.ExcludeTransitive)
	if len(artifacts) == 0 {
		b.info(ctx, "project has no dependencies")
	}

	entries, skipped := b.build(ctx, artifacts, req.BaseDir)
	res := &Result{Entries: entries, Text: Format(entries, b.separator), Skipped: skipped}

	switch {
	case req.OutputFile != "":
		b.info(ctx, "writing dependency manifest", "file", req.OutputFile, "entries", len(entries))
		if err := b.fs.WriteFileAtomic(req.OutputFile, []byte(res.Text), 0o644); err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeManifestWrite,
				"failed to write dependency manifest", map[string]interface{}{"file": req.OutputFile})
		}
	case res.Text != "":
		b.info(ctx, "dependency manifest", "manifest", res.Text)
	}

	return res, nil
}

func (b *Builder) info(ctx context.Context, msg string, args ...any) {
	if b.logger != nil {
		b.logger.InfoContext(ctx, msg, args...)
	}
}
