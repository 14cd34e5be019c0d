package dependency

import (
	"fmt"
	"strings"

	"github.com/capsulerun/capsule/internal/archivefmt"
	"github.com/capsulerun/capsule/pkg/coordinate"
)

// AmbiguousCoordinateError is returned when a coordinate's version is
// omitted and more than one embedded-archive entry could satisfy it
// (spec.md §8 "Coordinate with an omitted version and no unique match ->
// ambiguity error").
type AmbiguousCoordinateError struct {
	Coordinate string
	Matches    []string
}

func (e *AmbiguousCoordinateError) Error() string {
	return fmt.Sprintf("dependency: coordinate %q has no version and matches multiple embedded entries: %s",
		e.Coordinate, strings.Join(e.Matches, ", "))
}

// embeddedLookup tries a parsed coordinate against the archive's fixed
// search paths (spec.md §3 "embedded-resolution fixed search paths").
// With a concrete version it returns an empty path and a nil error when
// nothing matches — falling through to the external resolver is the
// normal case, not a failure. With an omitted version it scans every
// archive entry for a candidate matching any fixed search location and
// returns an *AmbiguousCoordinateError when more than one exists.
func embeddedLookup(archive *archivefmt.Reader, c coordinate.Coordinate, ext string) (string, error) {
	if c.HasVersion() {
		for _, candidate := range c.EmbeddedSearchPaths(ext) {
			if archive.Has(candidate) {
				return candidate, nil
			}
		}
		return "", nil
	}

	var matches []string
	for _, entry := range archive.Entries() {
		if entry.IsDir {
			continue
		}
		if c.MatchesEmbeddedEntry(entry.Name, ext) {
			matches = append(matches, entry.Name)
		}
	}
	switch len(matches) {
	case 0:
		return "", nil
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousCoordinateError{Coordinate: c.String(), Matches: matches}
	}
}

// embeddedLookupRaw is used for raw (non-Maven-coordinate) native
// dependency sources: the string is tried as a literal archive-relative
// path before anything else.
func embeddedLookupRaw(archive *archivefmt.Reader, raw string) (string, bool) {
	if archive.Has(raw) {
		return raw, true
	}
	return "", false
}
