package properties

import (
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/maven/errors"
	"github.com/input-output-hk/catalyst-forge-libs/maven/fs/billy"
)

var versionProps = map[string]string{
	"remoteVersion.version":            "2.0.0-rc1",
	"remoteVersion.majorVersion":       "2",
	"remoteVersion.minorVersion":       "0",
	"remoteVersion.incrementalVersion": "0",
}

func TestMapSink(t *testing.T) {
	sink := MapSink{}
	require.NoError(t, DefineAll(sink, versionProps))
	assert.Equal(t, MapSink(versionProps), sink)
}

func TestFileSink(t *testing.T) {
	mem := billy.NewInMemoryFS()
	sink := NewFileSink(mem, "/target/remote-version.properties")

	require.NoError(t, DefineAll(sink, versionProps))
	require.NoError(t, sink.Define("odd key", "a=b: c\\d"))
	require.NoError(t, sink.Flush())

	data, err := mem.ReadFile("/target/remote-version.properties")
	require.NoError(t, err)
	assert.Equal(t, "odd\\ key=a\\=b\\: c\\\\d\n"+
		"remoteVersion.incrementalVersion=0\n"+
		"remoteVersion.majorVersion=2\n"+
		"remoteVersion.minorVersion=0\n"+
		"remoteVersion.version=2.0.0-rc1\n", string(data))
}

func TestEscape(t *testing.T) {
	assert.Equal(t, `\ lead`, escape(" lead", false))
	assert.Equal(t, `caf\u00e9`, escape("café", false))
	assert.Equal(t, `smile \ud83d\ude00`, escape("smile \U0001F600", false))
	assert.Equal(t, `a\nb`, escape("a\nb", false))
	assert.Equal(t, `\#x\!`, escape("#x!", true))
}

func TestGitHubOutputSink(t *testing.T) {
	out := filepath.Join(t.TempDir(), "github_output")
	require.NoError(t, os.WriteFile(out, []byte("previous=1\n"), 0o644))
	t.Setenv(GitHubOutputEnv, out)

	sink, err := NewGitHubOutputSink()
	require.NoError(t, err)
	require.NoError(t, DefineAll(sink, versionProps))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous=1\n"+
		"remoteVersion_incrementalVersion=0\n"+
		"remoteVersion_majorVersion=2\n"+
		"remoteVersion_minorVersion=0\n"+
		"remoteVersion_version=2.0.0-rc1\n", string(data))

	err = sink.Define("multi", "a\nb")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

type closeFailingFile struct {
	strings.Builder
}

func (f *closeFailingFile) Close() error { return stderrors.New("disk quota exceeded") }

func TestGitHubOutputSinkCloseError(t *testing.T) {
	f := &closeFailingFile{}
	sink := &GitHubOutputSink{path: "github_output", open: func(string) (io.WriteCloser, error) { return f, nil }}

	require.NoError(t, sink.Define("remoteVersion.version", "1.0"))
	err := sink.Flush()
	require.Error(t, err)
	assert.Equal(t, errors.CodeIO, errors.GetCode(err))
	assert.Contains(t, err.Error(), "disk quota exceeded")
	assert.Equal(t, "remoteVersion_version=1.0\n", f.String())
	assert.Len(t, sink.lines, 1)
}

func TestGitHubOutputSinkUnset(t *testing.T) {
	t.Setenv(GitHubOutputEnv, "")
	_, err := NewGitHubOutputSink()
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}
