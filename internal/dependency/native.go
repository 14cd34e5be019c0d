package dependency

import (
	"fmt"
	"strings"
)

// NativeEntry is one parsed Native-Dependencies-{Linux,Mac,Win} list
// member: a path (or coordinate, resolved the same as any other) to
// copy into the app cache, optionally under a different file name.
type NativeEntry struct {
	Source   string
	Renamed  string
	HasAlias bool
}

// ParseNativeEntry splits a raw Native-Dependencies entry into its
// source and optional rename target. Two separators are documented for
// the rename suffix and disagree with each other (spec.md §9); both are
// accepted here, comma checked first since it is the form most
// manifests in the wild actually use.
func ParseNativeEntry(raw string) (NativeEntry, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NativeEntry{}, fmt.Errorf("dependency: empty native dependency entry")
	}
	if idx := strings.IndexByte(raw, ','); idx >= 0 {
		return NativeEntry{Source: raw[:idx], Renamed: raw[idx+1:], HasAlias: true}, nil
	}
	if idx := strings.IndexByte(raw, '='); idx >= 0 {
		return NativeEntry{Source: raw[:idx], Renamed: raw[idx+1:], HasAlias: true}, nil
	}
	return NativeEntry{Source: raw}, nil
}

// DestName is the file name the entry should be written under inside
// the app cache.
func (e NativeEntry) DestName(fallback string) string {
	if e.HasAlias && e.Renamed != "" {
		return e.Renamed
	}
	return fallback
}

// HasAnyRename reports whether any entry in a Native-Dependencies list
// carries a rename suffix; spec.md §4.3 counts this toward the
// extraction decision ("renamed native dependencies present").
func HasAnyRename(entries []string) bool {
	for _, raw := range entries {
		e, err := ParseNativeEntry(raw)
		if err == nil && e.HasAlias {
			return true
		}
	}
	return false
}
