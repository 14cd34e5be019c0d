package cachepath

import (
	"strings"

	"github.com/capsulerun/capsule/pkg/coordinate"
)

// DeriveAppID computes a capsule's stable application ID (spec.md §3 "ID
// is stable: either explicit, or derived deterministically from the main
// artifact coordinates or main class name"). explicitID, mainArtifact, and
// mainClass are the respective manifest values (mainArtifact may be
// empty); whichever source is used, the result is sanitized into a form
// that can never contain a path separator.
func DeriveAppID(explicitID, mainArtifact, mainClass string) string {
	if explicitID != "" {
		return sanitizeID(explicitID)
	}
	if mainArtifact != "" {
		if c, err := coordinate.Parse(mainArtifact); err == nil {
			return sanitizeID(c.Group + "." + c.Artifact)
		}
		return sanitizeID(mainArtifact)
	}
	return sanitizeID(mainClass)
}

// sanitizeID replaces path separators and other disallowed characters so
// the result always satisfies ValidateAppID.
func sanitizeID(s string) string {
	s = strings.ReplaceAll(s, "/", ".")
	s = strings.ReplaceAll(s, `\`, ".")
	s = strings.ReplaceAll(s, ":", ".")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" {
		out = "capsule-app"
	}
	return out
}
