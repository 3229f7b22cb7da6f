package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMetadata = `<?xml version="1.0" encoding="UTF-8"?>
<metadata modelVersion="1.1.0">
  <groupId>com.acme</groupId>
  <artifactId>app</artifactId>
  <versioning>
    <latest>2.0.0-rc1</latest>
    <release>2.0.0-rc1</release>
    <versions>
      <version>1.0.0</version>
      <version>1.2.3</version>
      <version>1.2.10</version>
      <version>2.0.0-rc1</version>
    </versions>
    <lastUpdated>20240102030405</lastUpdated>
  </versioning>
</metadata>
`

func TestDecode(t *testing.T) {
	t.Run("full document", func(t *testing.T) {
		md, err := Decode(strings.NewReader(sampleMetadata))
		require.NoError(t, err)

		assert.Equal(t, "com.acme", md.GroupID)
		assert.Equal(t, "app", md.ArtifactID)
		require.NotNil(t, md.Versioning)
		assert.Equal(t, "2.0.0-rc1", md.Versioning.Release)
		assert.Equal(t, "20240102030405", md.Versioning.LastUpdated)
		assert.Equal(t, []string{"1.0.0", "1.2.3", "1.2.10", "2.0.0-rc1"}, md.Versions())
	})

	t.Run("no versioning section", func(t *testing.T) {
		md, err := Decode(strings.NewReader(`<metadata><groupId>g</groupId><artifactId>a</artifactId></metadata>`))
		require.NoError(t, err)
		assert.Nil(t, md.Versioning)
		assert.Nil(t, md.Versions())
	})

	t.Run("latin1 declaration", func(t *testing.T) {
		doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
			"<metadata><groupId>g</groupId><artifactId>a</artifactId>" +
			"<versioning><versions><version>1.0</version></versions></versioning></metadata>"
		md, err := Decode(strings.NewReader(doc))
		require.NoError(t, err)
		assert.Equal(t, []string{"1.0"}, md.Versions())
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Decode(strings.NewReader("<metadata><versioning>"))
		assert.Error(t, err)
	})

	t.Run("nil receiver", func(t *testing.T) {
		var md *Metadata
		assert.Nil(t, md.Versions())
	})
}

func TestMerge(t *testing.T) {
	assert.Nil(t, Merge())
	assert.Nil(t, Merge(nil, nil))

	a := &Metadata{GroupID: "g", ArtifactID: "a", Versioning: &Versioning{
		Release:  "1.1",
		Versions: []string{"1.0", "1.1"},
	}}
	b := &Metadata{GroupID: "g", ArtifactID: "a", Versioning: &Versioning{
		Latest:   "2.0-SNAPSHOT",
		Release:  "1.2",
		Versions: []string{"1.1", "1.2", "2.0-SNAPSHOT"},
	}}
	c := &Metadata{GroupID: "g", ArtifactID: "a"}

	merged := Merge(c, a, nil, b)
	require.NotNil(t, merged)
	assert.Equal(t, "g", merged.GroupID)
	assert.Equal(t, []string{"1.0", "1.1", "1.2", "2.0-SNAPSHOT"}, merged.Versions())
	assert.Equal(t, "1.1", merged.Versioning.Release)
	assert.Equal(t, "2.0-SNAPSHOT", merged.Versioning.Latest)

	onlyEmpty := Merge(c)
	require.NotNil(t, onlyEmpty)
	assert.Nil(t, onlyEmpty.Versions())
}
