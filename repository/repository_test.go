package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {
	remotes := []Remote{
		{ID: "central", URL: "https://repo.maven.apache.org/maven2"},
		{ID: "releases", URL: "https://nexus.example.com/releases"},
	}

	t.Run("matching id", func(t *testing.T) {
		r, ok := Find(remotes, "releases")
		require.True(t, ok)
		assert.Equal(t, "https://nexus.example.com/releases", r.URL)
	})

	t.Run("empty id", func(t *testing.T) {
		r, ok := Find(remotes, "")
		assert.False(t, ok)
		assert.Nil(t, r)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, ok := Find(remotes, "snapshots")
		assert.False(t, ok)
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		r, ok := Find(remotes, "central")
		require.True(t, ok)
		r.URL = "changed"
		assert.Equal(t, "https://repo.maven.apache.org/maven2", remotes[0].URL)
	})
}

func TestScheme(t *testing.T) {
	s, err := Remote{ID: "a", URL: "HTTPS://repo.example.com"}.Scheme()
	require.NoError(t, err)
	assert.Equal(t, "https", s)

	s, err = Remote{ID: "b", URL: "s3://bucket/maven"}.Scheme()
	require.NoError(t, err)
	assert.Equal(t, "s3", s)

	_, err = Remote{ID: "c", URL: "repo.example.com/maven"}.Scheme()
	assert.Error(t, err)
}

func TestLayout(t *testing.T) {
	assert.Equal(t, "org/acme/tools", GroupPath("org.acme.tools"))
	assert.Equal(t, "org/acme/app/maven-metadata.xml", MetadataPath("org.acme", "app"))

	local := Local{Basedir: "/home/me/.m2/repository"}
	assert.Equal(t, filepath.FromSlash("/home/me/.m2/repository/org/acme/app"), local.ArtifactDir("org.acme", "app"))
	assert.Equal(t,
		filepath.FromSlash("/home/me/.m2/repository/org/acme/app/maven-metadata-central.xml"),
		local.MetadataPath("org.acme", "app", "central"))
}
