package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeInvalidInput, "group id is empty")

	assert.Equal(t, CodeInvalidInput, err.Code())
	assert.Equal(t, "group id is empty", err.Message())
	assert.Equal(t, "group id is empty", err.Error())
	assert.NotNil(t, err.Context())
	assert.Nil(t, err.Unwrap())
}

func TestWrap(t *testing.T) {
	t.Run("nil cause returns nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeIO, "write"))
		assert.NoError(t, WrapWithContext(nil, CodeIO, "write", nil))
	})

	t.Run("cause is preserved", func(t *testing.T) {
		cause := stderrors.New("disk full")
		err := Wrap(cause, CodeManifestWrite, "error writing file")

		require.Error(t, err)
		assert.True(t, Is(err, cause))
		assert.Equal(t, CodeManifestWrite, GetCode(err))
		assert.Equal(t, "error writing file: disk full", err.Error())
	})

	t.Run("context is rendered in key order", func(t *testing.T) {
		err := WrapWithContext(stderrors.New("boom"), CodeMetadataResolution, "metadata",
			map[string]interface{}{"repository": "central", "coordinate": "a:b"})

		assert.Equal(t, "metadata (coordinate=a:b, repository=central): boom", err.Error())

		var pe PlatformError
		require.True(t, As(err, &pe))
		assert.Equal(t, "central", pe.Context()["repository"])
	})
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, CodeUnknown, GetCode(nil))

	wrapped := fmt.Errorf("outer: %w", New(CodeNotFound, "missing"))
	assert.Equal(t, CodeNotFound, GetCode(wrapped))
}

func TestHasCode(t *testing.T) {
	inner := New(CodeNetwork, "connection refused")
	outer := Wrap(inner, CodeMetadataResolution, "metadata")

	assert.True(t, HasCode(outer, CodeMetadataResolution))
	assert.True(t, HasCode(outer, CodeNetwork))
	assert.False(t, HasCode(outer, CodeIO))
	assert.False(t, HasCode(stderrors.New("plain"), CodeIO))
}
