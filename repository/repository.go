// Package repository describes Maven repositories: the remote repositories a
// build step may query and the local repository that holds resolved
// artifacts and write-through metadata.
package repository

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// MetadataFile is the name of the per-artifact metadata document in a
// remote repository.
const MetadataFile = "maven-metadata.xml"

// Remote is one entry of the caller supplied repository list.
type Remote struct {
	ID  string `json:"id"`
	URL string `json:"url"`

	// Username and Password are optional credentials. Password may be a
	// reference understood by the credentials package.
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// Scheme returns the lower-cased URL scheme of the repository.
func (r Remote) Scheme() (string, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return "", fmt.Errorf("repository %q: invalid url %q: %w", r.ID, r.URL, err)
	}
	if u.Scheme == "" {
		return "", fmt.Errorf("repository %q: url %q has no scheme", r.ID, r.URL)
	}
	return strings.ToLower(u.Scheme), nil
}

// Find returns the repository whose ID equals id. An empty id never matches.
func Find(remotes []Remote, id string) (*Remote, bool) {
	if id == "" {
		return nil, false
	}
	for i := range remotes {
		if remotes[i].ID == id {
			r := remotes[i]
			return &r, true
		}
	}
	return nil, false
}

// GroupPath converts a groupId into its directory form, "org.acme" to "org/acme".
func GroupPath(groupID string) string {
	return strings.ReplaceAll(groupID, ".", "/")
}

// MetadataPath returns the slash separated path of the artifact metadata
// document relative to a remote repository root.
func MetadataPath(groupID, artifactID string) string {
	return path.Join(GroupPath(groupID), artifactID, MetadataFile)
}

// Local is the local repository.
type Local struct {
	Basedir string
}

// ArtifactDir returns the directory holding every version of an artifact.
func (l Local) ArtifactDir(groupID, artifactID string) string {
	return filepath.Join(l.Basedir, filepath.FromSlash(GroupPath(groupID)), artifactID)
}

// MetadataPath returns where metadata fetched from repositoryID is stored,
// following Maven's maven-metadata-<id>.xml convention.
func (l Local) MetadataPath(groupID, artifactID, repositoryID string) string {
	return filepath.Join(l.ArtifactDir(groupID, artifactID), "maven-metadata-"+repositoryID+".xml")
}
