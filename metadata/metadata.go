// Package metadata retrieves Maven repository metadata (maven-metadata.xml)
// for an artifact coordinate.
//
// Resolution always performs a fresh fetch from the remote repositories it
// is given; the local repository is only a write-through target and is
// never consulted as a cache.
package metadata

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html/charset"
)

// Metadata is the decoded form of maven-metadata.xml.
type Metadata struct {
	XMLName    xml.Name    `xml:"metadata"`
	GroupID    string      `xml:"groupId,omitempty"`
	ArtifactID string      `xml:"artifactId,omitempty"`
	Version    string      `xml:"version,omitempty"`
	Versioning *Versioning `xml:"versioning,omitempty"`
}

// Versioning is the versioning section of the metadata.
type Versioning struct {
	Latest      string   `xml:"latest,omitempty"`
	Release     string   `xml:"release,omitempty"`
	Versions    []string `xml:"versions>version"`
	LastUpdated string   `xml:"lastUpdated,omitempty"`
}

// Versions returns the published versions, or nil when there is no
// versioning section.
func (m *Metadata) Versions() []string {
	if m == nil || m.Versioning == nil {
		return nil
	}
	return m.Versioning.Versions
}

// Decode parses a maven-metadata.xml document. Documents declaring a
// non UTF-8 encoding are transcoded.
func Decode(r io.Reader) (*Metadata, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var m Metadata
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode maven metadata: %w", err)
	}
	return &m, nil
}

// checkContent rejects payloads that are clearly not metadata documents.
// Repository proxies and login walls commonly answer with an HTML page and
// a 200 status.
func checkContent(data []byte) error {
	mt := mimetype.Detect(data)
	if mt.Is("text/html") {
		return fmt.Errorf("repository returned %s instead of maven metadata", mt.String())
	}
	return nil
}

// Merge combines several metadata documents for the same coordinate. The
// version list is the union of all lists in first-seen order. The first
// non-empty latest, release and lastUpdated values win. Nil documents are
// skipped; the result is nil when every input is nil.
func Merge(docs ...*Metadata) *Metadata {
	var out *Metadata
	seen := map[string]struct{}{}

	for _, d := range docs {
		if d == nil {
			continue
		}
		if out == nil {
			out = &Metadata{GroupID: d.GroupID, ArtifactID: d.ArtifactID}
		}
		if d.Versioning == nil {
			continue
		}
		if out.Versioning == nil {
			out.Versioning = &Versioning{}
		}
		v := out.Versioning
		if v.Latest == "" {
			v.Latest = d.Versioning.Latest
		}
		if v.Release == "" {
			v.Release = d.Versioning.Release
		}
		if v.LastUpdated == "" {
			v.LastUpdated = d.Versioning.LastUpdated
		}
		for _, ver := range d.Versioning.Versions {
			if _, ok := seen[ver]; ok {
				continue
			}
			seen[ver] = struct{}{}
			v.Versions = append(v.Versions, ver)
		}
	}
	return out
}
