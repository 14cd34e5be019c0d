// Package coordinate parses and renders Maven-style artifact coordinates:
// group:artifact[:version[:classifier]][(exclusionGroup:exclusionArtifact, ...)].
package coordinate

import (
	"fmt"
	"regexp"
	"strings"
)

// Exclusion names a group:artifact pair to exclude from a transitive
// resolution of a Coordinate.
type Exclusion struct {
	Group    string
	Artifact string
}

func (e Exclusion) String() string {
	return e.Group + ":" + e.Artifact
}

// Coordinate identifies an artifact, embedded or external. Version and
// Classifier may be empty: an empty Version means "any", to be resolved
// against a unique embedded match or left to the external resolver.
type Coordinate struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
	Exclusions []Exclusion
}

var (
	exclusionSuffix = regexp.MustCompile(`\(([^)]*)\)\s*$`)
	gavRegexp       = regexp.MustCompile(`^([^:()]+):([^:()]+)(?::([^:]*))?(?::([^:()]*))?$`)
)

// Parse parses a coordinate string of the form
// group:artifact[:version[:classifier]][(exclGroup:exclArtifact, ...)].
func Parse(s string) (Coordinate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Coordinate{}, fmt.Errorf("coordinate: empty coordinate string")
	}

	exclusions := []Exclusion(nil)
	body := s
	if m := exclusionSuffix.FindStringSubmatchIndex(s); m != nil {
		body = s[:m[0]]
		excl, err := parseExclusions(s[m[2]:m[3]])
		if err != nil {
			return Coordinate{}, fmt.Errorf("coordinate %q: %w", s, err)
		}
		exclusions = excl
	}

	match := gavRegexp.FindStringSubmatch(strings.TrimSpace(body))
	if match == nil {
		return Coordinate{}, fmt.Errorf("coordinate %q: must be group:artifact[:version[:classifier]]", s)
	}

	c := Coordinate{
		Group:      match[1],
		Artifact:   match[2],
		Version:    match[3],
		Classifier: match[4],
		Exclusions: exclusions,
	}
	if c.Group == "" || c.Artifact == "" {
		return Coordinate{}, fmt.Errorf("coordinate %q: group and artifact are required", s)
	}
	return c, nil
}

func parseExclusions(body string) ([]Exclusion, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, nil
	}
	var out []Exclusion
	for _, part := range strings.Split(body, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pieces := strings.SplitN(part, ":", 2)
		if len(pieces) != 2 || pieces[0] == "" || pieces[1] == "" {
			return nil, fmt.Errorf("invalid exclusion %q: must be group:artifact", part)
		}
		out = append(out, Exclusion{Group: pieces[0], Artifact: pieces[1]})
	}
	return out, nil
}

// HasVersion reports whether a concrete or ranged version was specified.
func (c Coordinate) HasVersion() bool {
	return c.Version != ""
}

// IsRange reports whether Version is a Maven-style range expression, e.g.
// "[1.0,2.0)" or "[1.0,)".
func (c Coordinate) IsRange() bool {
	return strings.HasPrefix(c.Version, "[") || strings.HasPrefix(c.Version, "(")
}

func (c Coordinate) String() string {
	var b strings.Builder
	b.WriteString(c.Group)
	b.WriteByte(':')
	b.WriteString(c.Artifact)
	if c.Version != "" || c.Classifier != "" {
		b.WriteByte(':')
		b.WriteString(c.Version)
	}
	if c.Classifier != "" {
		b.WriteByte(':')
		b.WriteString(c.Classifier)
	}
	if len(c.Exclusions) > 0 {
		b.WriteByte('(')
		for i, e := range c.Exclusions {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(e.String())
		}
		b.WriteByte(')')
	}
	return b.String()
}

// FileNameBase returns the "<artifact>-<version>" stem used by the
// embedded-resolution search paths in spec.md's Artifact coordinates
// section, e.g. "gson-2.8.9".
func (c Coordinate) FileNameBase() string {
	if c.Version == "" {
		return c.Artifact
	}
	return c.Artifact + "-" + c.Version
}

// EmbeddedSearchPaths returns, in the exhaustive and fixed search order
// defined by spec.md's Artifact coordinates section, the candidate archive
// entry paths for this coordinate with the given file extension (without
// the leading dot), e.g. "jar".
func (c Coordinate) EmbeddedSearchPaths(ext string) []string {
	base := c.FileNameBase()
	stems := []string{
		"lib/" + c.Group + "/" + base + "." + ext,
		"lib/" + c.Group + "-" + base + "." + ext,
		"lib/" + base + "." + ext,
		c.Group + "/" + base + "." + ext,
		c.Group + "-" + base + "." + ext,
		base + "." + ext,
	}
	return stems
}

// embeddedDirPrefixes returns the six fixed directory-style prefixes
// EmbeddedSearchPaths places an artifact's file name stem under, in the
// same order.
func (c Coordinate) embeddedDirPrefixes() []string {
	return []string{
		"lib/" + c.Group + "/",
		"lib/" + c.Group + "-",
		"lib/",
		c.Group + "/",
		c.Group + "-",
		"",
	}
}

// MatchesEmbeddedEntry reports whether archive entry name could satisfy
// this coordinate under one of the fixed search locations when Version
// is unknown: either the literal unversioned stem (artifact.ext) or a
// versioned stem (artifact-<any version>.ext) with no further path
// separators in the version portion. Used only for the omitted-version
// case (spec.md §3 "When version is absent, a unique match must exist"):
// a concrete Version is still matched exhaustively via
// EmbeddedSearchPaths instead.
func (c Coordinate) MatchesEmbeddedEntry(name, ext string) bool {
	suffix := "." + ext
	if !strings.HasSuffix(name, suffix) {
		return false
	}
	stem := strings.TrimSuffix(name, suffix)
	for _, prefix := range c.embeddedDirPrefixes() {
		rest, ok := strings.CutPrefix(stem, prefix)
		if !ok {
			continue
		}
		if rest == c.Artifact {
			return true
		}
		if versionPart, ok := strings.CutPrefix(rest, c.Artifact+"-"); ok {
			if versionPart != "" && !strings.Contains(versionPart, "/") {
				return true
			}
		}
	}
	return false
}
