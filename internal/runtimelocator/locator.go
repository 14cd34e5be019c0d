// Package runtimelocator discovers host runtime (JVM) installations and
// matches them against a capsule's declared version constraints (spec.md
// §4.4).
package runtimelocator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"github.com/go-logr/logr"
)

// ErrNoMatch is returned when no installation, including the current
// runtime fallback, satisfies the declared Constraints.
var ErrNoMatch = errors.New("runtimelocator: no runtime installation matches the declared constraints")

// Installation is spec.md §3's Runtime installation record.
type Installation struct {
	Version Version
	Home    string
	IsJDK   bool
}

// Constraints is the tuple of declared requirements spec.md §4.4 matches
// candidates against: "(min, max-major, min-update-per-major, jdk-required)".
type Constraints struct {
	Min               Version
	HasMin            bool
	MaxMajor          int // 0 means unconstrained
	MinUpdatePerMajor map[int]int
	JDKRequired       bool
}

// Matches reports whether inst satisfies c.
func (c Constraints) Matches(inst Installation) bool {
	if c.HasMin && inst.Version.Compare(c.Min) < 0 {
		return false
	}
	if c.MaxMajor > 0 && inst.Version.Major > c.MaxMajor {
		return false
	}
	if inst.Version.SupportsUpdateConstraint() {
		// A classic "1.x.y_u" version carries its major number in Minor.
		if floor, ok := c.MinUpdatePerMajor[inst.Version.Minor]; ok && inst.Version.Update < floor {
			return false
		}
	}
	if c.JDKRequired && !inst.IsJDK {
		return false
	}
	return true
}

var candidateDirName = regexp.MustCompile(`(?i)^(jdk|jre)?[0-9][^/]*$`)
var candidateSuffix = regexp.MustCompile(`(?i)\.(jdk|jre)$`)

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "java.exe"
	}
	return "java"
}

// Locator discovers and matches runtime installations.
type Locator struct {
	log   logr.Logger
	probe ProbeFunc
}

// New builds a Locator. probe is injectable so tests don't need to spawn
// real JVMs; production code should pass Probe.
func New(log logr.Logger, probe ProbeFunc) *Locator {
	if probe == nil {
		probe = Probe
	}
	return &Locator{log: log.WithName("runtimelocator"), probe: probe}
}

// Discover walks upward from currentHome looking for sibling runtime
// installations (spec.md §4.4 "Discovery"). The first ancestor directory
// yielding any candidates wins; installations below it are not
// considered, matching the source behavior being ported.
func (l *Locator) Discover(ctx context.Context, currentHome string) ([]Installation, error) {
	dir := filepath.Clean(currentHome)
	for {
		parent := filepath.Dir(dir)
		names, err := readDirNames(parent)
		if err != nil {
			l.log.V(6).Info("skipping unreadable ancestor", "dir", parent, "error", err.Error())
			if parent == dir {
				break
			}
			dir = parent
			continue
		}
		var found []Installation
		for _, name := range names {
			if !candidateDirName.MatchString(name) && !candidateSuffix.MatchString(name) {
				continue
			}
			candidateHome := filepath.Join(parent, name)
			inst, ok := l.probeCandidate(ctx, candidateHome, name)
			if !ok {
				continue
			}
			found = append(found, inst)
		}
		if len(found) > 0 {
			return found, nil
		}
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, nil
}

func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (l *Locator) probeCandidate(ctx context.Context, home, dirName string) (Installation, bool) {
	bin := filepath.Join(home, "bin", binaryName())
	if _, err := os.Stat(bin); err != nil {
		l.log.V(6).Info("candidate has no runtime binary, skipping", "home", home)
		return Installation{}, false
	}

	isJDK := looksLikeJDK(dirName, home)

	if v, ok := versionFromDirName(dirName); ok {
		return Installation{Version: v, Home: home, IsJDK: isJDK}, true
	}

	v, err := l.probe(ctx, bin)
	if err != nil {
		l.log.V(5).Info("probe failed for candidate, skipping", "home", home, "error", err.Error())
		return Installation{}, false
	}
	return Installation{Version: v, Home: home, IsJDK: isJDK}, true
}

func looksLikeJDK(dirName, home string) bool {
	if strings.Contains(strings.ToLower(dirName), "jdk") {
		return true
	}
	if _, err := os.Stat(filepath.Join(home, "bin", javacName())); err == nil {
		return true
	}
	return false
}

func javacName() string {
	if runtime.GOOS == "windows" {
		return "javac.exe"
	}
	return "javac"
}

// Select picks the lexicographically greatest matching installation, with
// ties (identical version tuples) broken in favor of a JDK over a JRE
// (spec.md §4.4 "Matching"). If no candidate matches, and current itself
// matches, current is returned: spec.md §9 documents that the original
// source sometimes skips this fallback and directs the port to always
// apply it.
func Select(candidates []Installation, current Installation, c Constraints) (Installation, error) {
	matching := make([]Installation, 0, len(candidates))
	for _, inst := range candidates {
		if c.Matches(inst) {
			matching = append(matching, inst)
		}
	}
	if len(matching) == 0 {
		if c.Matches(current) {
			return current, nil
		}
		return Installation{}, ErrNoMatch
	}
	sort.SliceStable(matching, func(i, j int) bool {
		if cmp := matching[i].Version.Compare(matching[j].Version); cmp != 0 {
			return cmp > 0
		}
		if matching[i].IsJDK != matching[j].IsJDK {
			return matching[i].IsJDK
		}
		return false
	})
	return matching[0], nil
}
