package remoteversion

import (
	"strconv"

	"github.com/input-output-hk/catalyst-forge-libs/maven/version"
)

// DefaultPropertyPrefix is the prefix of the defined properties unless the
// caller chooses another.
const DefaultPropertyPrefix = "remoteVersion"

// Property name suffixes.
const (
	KeyVersion            = "version"
	KeyMajorVersion       = "majorVersion"
	KeyMinorVersion       = "minorVersion"
	KeyIncrementalVersion = "incrementalVersion"
)

// Properties is the outcome of a successful resolution.
type Properties struct {
	Version     string
	Major       int
	Minor       int
	Incremental int
}

func newProperties(v version.Version) *Properties {
	return &Properties{
		Version:     v.String(),
		Major:       v.Major(),
		Minor:       v.Minor(),
		Incremental: v.Incremental(),
	}
}

// Map renders the properties under prefix, or DefaultPropertyPrefix when
// prefix is empty.
func (p *Properties) Map(prefix string) map[string]string {
	if p == nil {
		return nil
	}
	if prefix == "" {
		prefix = DefaultPropertyPrefix
	}
	return map[string]string{
		prefix + "." + KeyVersion:            p.Version,
		prefix + "." + KeyMajorVersion:       strconv.Itoa(p.Major),
		prefix + "." + KeyMinorVersion:       strconv.Itoa(p.Minor),
		prefix + "." + KeyIncrementalVersion: strconv.Itoa(p.Incremental),
	}
}
