// Package artifact describes resolved Maven dependencies and the providers
// that obtain them. The build steps never resolve artifacts themselves;
// they consume the sets produced here.
package artifact

import (
	"sort"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/maven/version"
)

// Coordinate identifies an artifact family independent of version.
type Coordinate struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
}

// String renders the coordinate as groupId:artifactId.
func (c Coordinate) String() string {
	return c.GroupID + ":" + c.ArtifactID
}

// IsZero reports whether either part of the coordinate is missing.
func (c Coordinate) IsZero() bool {
	return c.GroupID == "" || c.ArtifactID == ""
}

// Artifact is an already resolved dependency file.
type Artifact struct {
	Coordinate

	Type       string
	Classifier string
	Version    string
	Scope      string

	// File is the absolute path of the resolved file.
	File string
}

// ID renders the artifact as Maven prints it:
// groupId:artifactId:type[:classifier]:version.
func (a Artifact) ID() string {
	parts := []string{a.GroupID, a.ArtifactID, a.Type}
	if a.Classifier != "" {
		parts = append(parts, a.Classifier)
	}
	parts = append(parts, a.Version)
	return strings.Join(parts, ":")
}

// Set holds the direct dependencies of a project and the full resolved set
// (direct plus transitive).
type Set struct {
	Direct []Artifact
	All    []Artifact
}

// Select returns Direct when excludeTransitive is true and All otherwise.
func (s Set) Select(excludeTransitive bool) []Artifact {
	if excludeTransitive {
		return s.Direct
	}
	return s.All
}

// Sort orders artifacts by groupId, artifactId, type, classifier and
// Maven version order so that sets built from unordered sources iterate reproducibly.
func Sort(artifacts []Artifact) {
	sort.SliceStable(artifacts, func(i, j int) bool {
		a, b := artifacts[i], artifacts[j]
		if a.GroupID != b.GroupID {
			return a.GroupID < b.GroupID
		}
		if a.ArtifactID != b.ArtifactID {
			return a.ArtifactID < b.ArtifactID
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Classifier != b.Classifier {
			return a.Classifier < b.Classifier
		}
		return version.Less(version.Parse(a.Version), version.Parse(b.Version))
	})
}
