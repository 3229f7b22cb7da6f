package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Constraint restricts candidate versions to a semantic version range such
// as ">=1.2, <2" or "~1.4". The zero value accepts every version.
type Constraint struct {
	raw         string
	constraints *semver.Constraints
}

// ParseConstraint parses a range expression. An empty expression yields a
// constraint that accepts everything.
func ParseConstraint(expr string) (Constraint, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Constraint{}, nil
	}
	c, err := semver.NewConstraint(expr)
	if err != nil {
		return Constraint{}, fmt.Errorf("invalid version constraint %q: %w", expr, err)
	}
	return Constraint{raw: expr, constraints: c}, nil
}

// IsEmpty reports whether the constraint accepts every version.
func (c Constraint) IsEmpty() bool { return c.constraints == nil }

// String returns the original expression.
func (c Constraint) String() string { return c.raw }

// Allows reports whether v satisfies the constraint. Versions that are not
// valid semantic versions only satisfy the empty constraint.
func (c Constraint) Allows(v Version) bool {
	if c.constraints == nil {
		return true
	}
	sv, err := semver.NewVersion(v.String())
	if err != nil {
		return false
	}
	return c.constraints.Check(sv)
}

// Filter returns the versions allowed by c, preserving order.
func (c Constraint) Filter(versions []Version) []Version {
	if c.IsEmpty() {
		return versions
	}
	out := make([]Version, 0, len(versions))
	for _, v := range versions {
		if c.Allows(v) {
			out = append(out, v)
		}
	}
	return out
}
