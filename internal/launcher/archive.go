package launcher

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/capsulerun/capsule/internal/archivefmt"
	"github.com/capsulerun/capsule/internal/manifest"
)

// IndexEntryName is the fixed path spec.md §6 says holds the capsule's
// textual index, mirroring a Java jar's own manifest convention.
const IndexEntryName = "META-INF/MANIFEST.MF"

// launcherSupportPrefix identifies the launcher's own embedded support
// files (spec.md §4.3 "launcher support files (identified by a fixed
// prefix)"), excluded from extraction alongside META-INF/ itself.
const launcherSupportPrefix = "capsule/"

// loadManifest opens r's index entry and parses it.
func loadManifest(r *archivefmt.Reader) (*manifest.Manifest, error) {
	raw, err := r.ReadAll(IndexEntryName)
	if err != nil {
		return nil, fmt.Errorf("launcher: reading archive index: %w", err)
	}
	m, err := manifest.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("launcher: parsing archive index: %w", err)
	}
	return m, nil
}

// excludeFromExtraction implements spec.md §4.3's extraction exclusion
// rule: the archive's own META-INF/ entries, any *.class file (launcher
// classes have no equivalent in this port, but the rule is kept for
// archives carrying embedded JVM bytecode alongside native resources),
// and anything under the launcher's own support prefix.
func excludeFromExtraction(name string) bool {
	if strings.HasPrefix(name, "META-INF/") {
		return true
	}
	if strings.HasPrefix(name, launcherSupportPrefix) {
		return true
	}
	return strings.HasSuffix(name, ".class")
}
