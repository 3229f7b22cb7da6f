// Package version models Maven artifact versions.
//
// A version string is parsed into major, minor and incremental components
// plus an optional build number or qualifier. Parsing never fails: a
// component that is not a non-negative integer turns the rest of the string
// into an opaque qualifier and the version is compared by the numeric
// prefix it did parse, with the raw string as the final tiebreak. The
// resulting order is total, so selecting a maximum is independent of input
// order.
package version

import (
	"strconv"
	"strings"
)

// Version is a parsed artifact version. The zero value is the empty version.
type Version struct {
	raw string

	major       int
	minor       int
	incremental int
	buildNumber int

	hasBuildNumber bool
	qualifier      string
	hasQualifier   bool
	fullyParsed    bool
}

// Parse parses raw into a Version. It never fails.
func Parse(raw string) Version {
	v := Version{raw: raw, fullyParsed: true}

	numeric, suffix, hasSuffix := strings.Cut(raw, "-")
	if hasSuffix {
		if n, ok := atoi(suffix); ok && (len(suffix) == 1 || !strings.HasPrefix(suffix, "0")) {
			v.buildNumber = n
			v.hasBuildNumber = true
		} else {
			v.setQualifier(suffix)
		}
	}

	parts := strings.Split(numeric, ".")
	fields := []*int{&v.major, &v.minor, &v.incremental}
	for i, part := range parts {
		if i >= len(fields) {
			// 1.2.3.RELEASE style trailer
			v.setQualifier(joinQualifier(strings.Join(parts[i:], "."), suffix, hasSuffix))
			break
		}
		n, ok := atoi(part)
		if !ok {
			v.degrade(strings.Join(parts[i:], "."), suffix, hasSuffix)
			break
		}
		*fields[i] = n
	}

	return v
}

func (v *Version) setQualifier(q string) {
	v.qualifier = q
	v.hasQualifier = true
}

// degrade turns everything from the first unparseable component onwards
// into the qualifier.
func (v *Version) degrade(rest, suffix string, hasSuffix bool) {
	v.fullyParsed = false
	v.buildNumber = 0
	v.hasBuildNumber = false
	v.setQualifier(joinQualifier(rest, suffix, hasSuffix))
}

func joinQualifier(rest, suffix string, hasSuffix bool) string {
	if hasSuffix {
		return rest + "-" + suffix
	}
	return rest
}

// atoi accepts only non-empty strings of ASCII digits that fit in an int.
func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// String returns the raw version string.
func (v Version) String() string { return v.raw }

// Major returns the major component, 0 when absent.
func (v Version) Major() int { return v.major }

// Minor returns the minor component, 0 when absent.
func (v Version) Minor() int { return v.minor }

// Incremental returns the incremental component, 0 when absent.
func (v Version) Incremental() int { return v.incremental }

// BuildNumber returns the build number and whether one was present.
func (v Version) BuildNumber() (int, bool) { return v.buildNumber, v.hasBuildNumber }

// Qualifier returns the qualifier and whether one was present.
func (v Version) Qualifier() (string, bool) { return v.qualifier, v.hasQualifier }

// IsFullyParsed reports whether every numeric component present in the raw
// string was a valid non-negative integer.
func (v Version) IsFullyParsed() bool { return v.fullyParsed && v.raw != "" }
