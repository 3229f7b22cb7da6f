package version

import "strings"

// Compare returns -1, 0 or +1 depending on whether a is lower than, equal to
// or higher than b.
//
// Versions are ordered by the tuple (major, minor, incremental, build
// number, raw string). Missing numeric components count as 0, so a version
// that only partially parsed competes with the prefix it did parse. Two
// versions are equal only when their raw strings are equal.
func Compare(a, b Version) int {
	if c := compareInt(a.major, b.major); c != 0 {
		return c
	}
	if c := compareInt(a.minor, b.minor); c != 0 {
		return c
	}
	if c := compareInt(a.incremental, b.incremental); c != 0 {
		return c
	}
	if c := compareInt(a.buildNumber, b.buildNumber); c != 0 {
		return c
	}
	return strings.Compare(a.raw, b.raw)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Less reports whether a orders before b.
func Less(a, b Version) bool { return Compare(a, b) < 0 }

// Max returns the highest version in versions. The result does not depend
// on the order of the input. ok is false when versions is empty.
func Max(versions []Version) (best Version, ok bool) {
	for i, v := range versions {
		if i == 0 || Compare(v, best) > 0 {
			best = v
		}
	}
	return best, len(versions) > 0
}

// ParseAll parses every raw string in order.
func ParseAll(raws []string) []Version {
	out := make([]Version, 0, len(raws))
	for _, r := range raws {
		out = append(out, Parse(r))
	}
	return out
}
