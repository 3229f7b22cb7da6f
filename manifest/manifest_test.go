package manifest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/maven/artifact"
	"github.com/input-output-hk/catalyst-forge-libs/maven/errors"
	"github.com/input-output-hk/catalyst-forge-libs/maven/fs/billy"
	"github.com/input-output-hk/catalyst-forge-libs/maven/internal/testutil"
)

func jar(group, name, file string) artifact.Artifact {
	return artifact.Artifact{
		Coordinate: artifact.Coordinate{GroupID: group, ArtifactID: name},
		Type:       "jar",
		Version:    "1.0",
		File:       file,
	}
}

var (
	inRepo  = jar("a", "a", "/repo/a/1.0/a-1.0.jar")
	outside = jar("b", "b", "/other/b/1.0/b-1.0.jar")
	nested  = jar("c", "c", "/repo//c/1.0/c-1.0.jar")
)

func TestBuild(t *testing.T) {
	logger, rec := testutil.NewLogger()
	b := New(WithLogger(logger), WithFilesystem(billy.NewInMemoryFS()))

	entries := b.Build(context.Background(), []artifact.Artifact{inRepo, outside, nested}, "/repo")
	assert.Equal(t, []string{"a/1.0/a-1.0.jar", "c/1.0/c-1.0.jar"}, entries)

	warnings := rec.AtLevel(slog.LevelWarn)
	require.Len(t, warnings, 1)
	assert.Equal(t, "b:b:jar:1.0", warnings[0].Attrs["artifact"])
	assert.Equal(t, "/other/b/1.0/b-1.0.jar", warnings[0].Attrs["path"])
}

func TestBuildPreservesInputOrder(t *testing.T) {
	b := New(WithFilesystem(billy.NewInMemoryFS()))
	z := jar("z", "z", "/repo/z/1/z-1.jar")
	a := jar("a", "a", "/repo/a/1/a-1.jar")

	assert.Equal(t, []string{"z/1/z-1.jar", "a/1/a-1.jar"}, b.Build(context.Background(), []artifact.Artifact{z, a}, "/repo"))
}

func TestRelativize(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		baseDir string
		want    string
		wantErr bool
	}{
		{name: "under base", path: "/repo/a/a.jar", baseDir: "/repo", want: "a/a.jar"},
		{name: "base with trailing separator", path: "/repo/a/a.jar", baseDir: "/repo/", want: "a/a.jar"},
		{name: "repeated separators", path: "/repo///a/a.jar", baseDir: "/repo", want: "a/a.jar"},
		{name: "string prefix only", path: "/repository/a.jar", baseDir: "/repo", want: "sitory/a.jar"},
		{name: "outside", path: "/other/a.jar", baseDir: "/repo", wantErr: true},
		{name: "empty base", path: "/x/a.jar", baseDir: "", want: "x/a.jar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Relativize(tt.path, tt.baseDir)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.CodeInvalidArtifactPath, errors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "", Format(nil, "\n"))
	assert.Equal(t, "a\nb\n", Format([]string{"a", "b"}, "\n"))
	assert.Equal(t, "a\r\n", Format([]string{"a"}, "\r\n"))
	assert.Equal(t, "\r\n", lineSeparator("windows"))
	assert.Equal(t, "\n", lineSeparator("linux"))
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	set := artifact.Set{
		Direct: []artifact.Artifact{inRepo},
		All:    []artifact.Artifact{inRepo, outside, nested},
	}

	t.Run("writes output file", func(t *testing.T) {
		mem := billy.NewInMemoryFS()
		logger, rec := testutil.NewLogger()
		b := New(WithLogger(logger), WithFilesystem(mem), WithLineSeparator("\n"))

		res, err := b.Run(ctx, Request{Artifacts: set, BaseDir: "/repo", OutputFile: "/work/target/deps.txt"})
		require.NoError(t, err)
		assert.Equal(t, "a/1.0/a-1.0.jar\nc/1.0/c-1.0.jar\n", res.Text)
		assert.Equal(t, []artifact.Artifact{outside}, res.Skipped)

		data, err := mem.ReadFile("/work/target/deps.txt")
		require.NoError(t, err)
		assert.Equal(t, res.Text, string(data))

		var destinations []string
		for _, e := range rec.AtLevel(slog.LevelInfo) {
			if e.Attrs["file"] != "" {
				destinations = append(destinations, e.Attrs["file"])
			}
		}
		assert.Equal(t, []string{"/work/target/deps.txt"}, destinations)
	})

	t.Run("direct only", func(t *testing.T) {
		mem := billy.NewInMemoryFS()
		b := New(WithFilesystem(mem), WithLineSeparator("\n"))

		res, err := b.Run(ctx, Request{Artifacts: set, BaseDir: "/repo", ExcludeTransitive: true})
		require.NoError(t, err)
		assert.Equal(t, "a/1.0/a-1.0.jar\n", res.Text)
	})

	t.Run("overwrites and is idempotent", func(t *testing.T) {
		mem := billy.NewInMemoryFS()
		require.NoError(t, mem.WriteFile("/out/deps.txt", []byte("stale content that is longer\n"), 0o644))
		b := New(WithFilesystem(mem), WithLineSeparator("\n"))
		req := Request{Artifacts: set, BaseDir: "/repo", OutputFile: "/out/deps.txt"}

		first, err := b.Run(ctx, req)
		require.NoError(t, err)
		second, err := b.Run(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, first.Text, second.Text)

		data, err := mem.ReadFile("/out/deps.txt")
		require.NoError(t, err)
		assert.Equal(t, "a/1.0/a-1.0.jar\nc/1.0/c-1.0.jar\n", string(data))
	})

	t.Run("logs manifest without output file", func(t *testing.T) {
		logger, rec := testutil.NewLogger()
		b := New(WithLogger(logger), WithFilesystem(billy.NewInMemoryFS()), WithLineSeparator("\n"))

		_, err := b.Run(ctx, Request{Artifacts: set, BaseDir: "/repo", ExcludeTransitive: true})
		require.NoError(t, err)

		infos := rec.AtLevel(slog.LevelInfo)
		require.Len(t, infos, 1)
		assert.Equal(t, "a/1.0/a-1.0.jar\n", infos[0].Attrs["manifest"])
	})

	t.Run("no dependencies", func(t *testing.T) {
		logger, rec := testutil.NewLogger()
		b := New(WithLogger(logger), WithFilesystem(billy.NewInMemoryFS()))

		res, err := b.Run(ctx, Request{BaseDir: "/repo"})
		require.NoError(t, err)
		assert.Empty(t, res.Entries)
		assert.Empty(t, res.Text)

		infos := rec.AtLevel(slog.LevelInfo)
		require.Len(t, infos, 1)
		assert.Equal(t, "project has no dependencies", infos[0].Msg)
		assert.Empty(t, rec.AtLevel(slog.LevelWarn))
	})

	t.Run("write failure", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "out")
		require.NoError(t, os.WriteFile(blocker, []byte("a file, not a directory"), 0o644))
		b := New(WithFilesystem(billy.NewBaseOSFS()))

		// parent is a regular file, so the manifest cannot be created
		_, err := b.Run(ctx, Request{Artifacts: set, BaseDir: "/repo", OutputFile: filepath.Join(blocker, "deps.txt")})
		require.Error(t, err)
		assert.Equal(t, errors.CodeManifestWrite, errors.GetCode(err))

		data, err := os.ReadFile(blocker)
		require.NoError(t, err)
		assert.Equal(t, "a file, not a directory", string(data))
	})
}

func TestRunOnDisk(t *testing.T) {
	dir := t.TempDir()
	b := New(WithFilesystem(billy.NewBaseOSFS()))

	res, err := b.Run(context.Background(), Request{
		Artifacts:  artifact.Set{All: []artifact.Artifact{jar("a", "a", dir+"/m2/a/1.0/a-1.0.jar")}},
		BaseDir:    dir + "/m2",
		OutputFile: dir + "/target/manifest.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a/1.0/a-1.0.jar"}, res.Entries)

	data, err := billy.NewBaseOSFS().ReadFile(dir + "/target/manifest.txt")
	require.NoError(t, err)
	assert.Equal(t, "a/1.0/a-1.0.jar"+LineSeparator, string(data))
}
