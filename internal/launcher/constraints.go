package launcher

import (
	"strconv"
	"strings"

	"github.com/capsulerun/capsule/internal/manifest"
	"github.com/capsulerun/capsule/internal/runtimelocator"
)

// buildConstraints reads the Min/Max-Runtime-Version, Min-Update-Version,
// and JDK-Required attributes (spec.md §3 "Runtime constraints") into
// runtimelocator.Constraints, through rm so a caplet's Attribute override
// can participate in what a capsule declares as its own runtime
// requirements. Min-Update-Version is per-major: spec.md §9 documents
// that only classic dotted majors are supported, since the original's
// shortJavaVersion normalizer is undefined for majors ≥ 9.
func buildConstraints(rm resolvedManifest) runtimelocator.Constraints {
	var c runtimelocator.Constraints

	if raw, ok := rm.get(manifest.MinRuntimeVersion); ok && raw != "" {
		if v, err := runtimelocator.ParseVersion(raw); err == nil {
			c.Min = v
			c.HasMin = true
		}
	}
	if raw, ok := rm.get(manifest.MaxRuntimeVersion); ok && raw != "" {
		if v, err := runtimelocator.ParseVersion(raw); err == nil {
			c.MaxMajor = v.Major
		}
	}
	if raw, ok := rm.get(manifest.JDKRequired); ok {
		c.JDKRequired = strings.EqualFold(strings.TrimSpace(raw), "true")
	}

	minUpdate := rm.getMap(manifest.MinUpdateVersion, "")
	if len(minUpdate) > 0 {
		c.MinUpdatePerMajor = map[int]int{}
		for majorStr, updateStr := range minUpdate {
			major, err := parseMajor(majorStr)
			if err != nil {
				continue
			}
			update, err := strconv.Atoi(strings.TrimSpace(updateStr))
			if err != nil {
				continue
			}
			c.MinUpdatePerMajor[major] = update
		}
	}
	return c
}

// parseMajor accepts both a classic dotted major ("1.8") and a bare
// modern major ("11") as a Min-Update-Version key, consistent with
// spec.md §9's note that the constraint only has defined behavior for
// classic dotted majors but the port should not reject modern-looking
// keys outright.
func parseMajor(s string) (int, error) {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "."); idx >= 0 {
		return strconv.Atoi(s[idx+1:])
	}
	return strconv.Atoi(s)
}
