package runtimelocator

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// ProbeFunc executes a candidate runtime binary and returns its version.
// Modeled per spec.md §9 "Reflection-heavy runtime detection" as a typed
// probe(path) -> version with a bounded-time wait, grounded on
// provider/internal/java/provider.go's exec.CommandContext pattern for
// spawning and reading a subprocess.
type ProbeFunc func(ctx context.Context, binPath string) (Version, error)

// probeTimeout bounds how long a single version probe may block, per
// spec.md §5 "No user operation may suspend; all waits are bounded".
const probeTimeout = 5 * time.Second

var quotedVersion = regexp.MustCompile(`version "([^"]+)"`)

// Probe runs "<binPath> -version" and parses the quoted version string out
// of the first matching line of its combined output. JVMs print this to
// stderr; combined output is read to tolerate implementations that don't.
func Probe(ctx context.Context, binPath string) (Version, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binPath, "-version")
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return Version{}, fmt.Errorf("runtimelocator: probing %s timed out: %w", binPath, ctx.Err())
		}
		return Version{}, fmt.Errorf("runtimelocator: probing %s: %w", binPath, err)
	}

	for _, line := range strings.Split(string(out), "\n") {
		if m := quotedVersion.FindStringSubmatch(line); m != nil {
			return ParseVersion(m[1])
		}
	}
	return Version{}, fmt.Errorf("runtimelocator: %s: no quoted version string in output: %q", binPath, string(out))
}

// versionFromDirName attempts to parse a runtime's version directly from
// its installation directory name (e.g. "jdk1.8.0_362" or "jdk-11.0.2"),
// avoiding a subprocess spawn. ok is false when the name doesn't resolve
// to an update level, per spec.md §4.4 "if unresolved to an update level,
// execute the candidate binary with a version flag".
func versionFromDirName(dirName string) (Version, bool) {
	stem := stripRuntimeDirAffixes(dirName)
	if stem == "" {
		return Version{}, false
	}
	v, err := ParseVersion(stem)
	if err != nil {
		return Version{}, false
	}
	if (v.legacy || v.Major == 1) && !strings.Contains(stem, "_") {
		return Version{}, false
	}
	return v, true
}

var dirAffix = regexp.MustCompile(`(?i)^(jdk|jre)-?`)
var dirSuffix = regexp.MustCompile(`(?i)\.(jdk|jre)$`)

func stripRuntimeDirAffixes(dirName string) string {
	s := dirAffix.ReplaceAllString(dirName, "")
	s = dirSuffix.ReplaceAllString(s, "")
	return s
}
