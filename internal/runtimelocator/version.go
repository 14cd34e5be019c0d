package runtimelocator

import (
	"fmt"
	"regexp"
	"strconv"

	hcversion "github.com/hashicorp/go-version"
)

// preRank orders the three documented pre-release lanes below any final
// release at the same update level (spec.md §3 "Pre-release encodes
// rc/beta/ea as negative update lanes").
var preRank = map[string]int64{
	"ea":   -3000,
	"beta": -2000,
	"rc":   -1000,
}

// classic matches the traditional dotted JVM version scheme this module
// fully supports: "1.<minor>.<patch>[_<update>][-(ea|beta|rc)<n>]", e.g.
// "1.8.0_362" or "1.7.0_80-ea".
var classic = regexp.MustCompile(`^1\.(\d+)\.(\d+)(?:_(\d+))?(?:-(ea|beta|rc)(\d*))?$`)

// modern matches the single-number major scheme introduced with major
// version 9 and later, e.g. "11.0.2" or "17". spec.md §9 documents that
// Min-Update-Version comparison is undefined for this scheme in the
// original source; this module accepts modern versions for ordering
// purposes only and never matches them against a Min-Update-Version entry
// (see Version.SupportsUpdateConstraint).
var modern = regexp.MustCompile(`^(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:-(ea|beta|rc)(\d*))?$`)

// Version is the (major, minor, patch, update, prerelease) tuple of
// spec.md §3's Runtime installation record.
type Version struct {
	Raw    string
	Major  int
	Minor  int
	Patch  int
	Update int
	// PreRelease is "ea", "beta", "rc", or "" for a final release.
	PreRelease    string
	PreReleaseNum int
	// legacy is true for the classic "1.x.y_u" scheme, false for the
	// modern single-number-major scheme.
	legacy bool

	base *hcversion.Version
}

// ParseVersion parses a JVM version string in either the classic or
// modern scheme.
func ParseVersion(s string) (Version, error) {
	if m := classic.FindStringSubmatch(s); m != nil {
		v := Version{Raw: s, Major: 1, legacy: true}
		v.Minor = atoiOr(m[1], 0)
		v.Patch = atoiOr(m[2], 0)
		v.Update = atoiOr(m[3], 0)
		v.PreRelease = m[4]
		v.PreReleaseNum = atoiOr(m[5], 0)
		return v.withBase()
	}
	if m := modern.FindStringSubmatch(s); m != nil {
		v := Version{Raw: s, legacy: false}
		v.Major = atoiOr(m[1], 0)
		v.Minor = atoiOr(m[2], 0)
		v.Patch = atoiOr(m[3], 0)
		v.PreRelease = m[4]
		v.PreReleaseNum = atoiOr(m[5], 0)
		return v.withBase()
	}
	return Version{}, fmt.Errorf("runtimelocator: %q is not a recognized runtime version", s)
}

func (v Version) withBase() (Version, error) {
	base, err := hcversion.NewVersion(fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch))
	if err != nil {
		return Version{}, fmt.Errorf("runtimelocator: %q: %w", v.Raw, err)
	}
	v.base = base
	return v, nil
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// SupportsUpdateConstraint reports whether this version's scheme lets it
// be compared against a per-major Min-Update-Version entry. Only the
// classic dotted scheme does (spec.md §9).
func (v Version) SupportsUpdateConstraint() bool {
	return v.legacy
}

// lane collapses Update/PreRelease into the single comparable scalar
// spec.md §3 describes: pre-release lanes sort below the corresponding
// final release.
func (v Version) lane() int64 {
	if v.PreRelease == "" {
		return int64(v.Update)
	}
	return preRank[v.PreRelease] + int64(v.PreReleaseNum)
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than
// other, ordering lexicographically over (major, minor, patch, lane) per
// spec.md §3.
func (v Version) Compare(other Version) int {
	if c := v.base.Compare(other.base); c != 0 {
		return c
	}
	vl, ol := v.lane(), other.lane()
	switch {
	case vl < ol:
		return -1
	case vl > ol:
		return 1
	default:
		return 0
	}
}

func (v Version) String() string { return v.Raw }
