package manifest

import (
	"strconv"
	"strings"
)

// osTokens are the OS identifiers recognized in section names (spec.md
// §3). "POSIX" and "Unix" are synonyms matching any non-Windows host.
var osTokens = map[string]bool{
	"Windows": true,
	"Mac":     true,
	"Linux":   true,
	"Solaris": true,
	"Unix":    true,
	"POSIX":   true,
}

// MatchesOS reports whether a section's OS token matches the given
// runtime.GOOS-style identifier ("windows", "darwin", "linux", ...).
func MatchesOS(token, goos string) bool {
	switch token {
	case "Windows":
		return goos == "windows"
	case "Mac":
		return goos == "darwin"
	case "Linux":
		return goos == "linux"
	case "Solaris":
		return goos == "solaris"
	case "Unix", "POSIX":
		return goos != "windows"
	}
	return false
}

type sectionCategory int

const (
	categoryUnknown sectionCategory = iota
	categoryOS
	categoryRuntime
	categoryMode
	categoryModeOS
	categoryModeRuntime
)

type classifiedSection struct {
	category sectionCategory
	osToken  string
	major    int
	mode     string
}

// classifySection determines what a section name means: a bare OS token,
// "Runtime-N", a user mode name, or one of the two combination forms
// "Mode-OS" / "Mode-Runtime-N". Ambiguity is resolved by preferring the
// more specific syntactic form: Runtime-N over plain mode, and the
// combination forms over a plain mode name containing a hyphen.
func classifySection(name string) classifiedSection {
	if major, ok := parseRuntimeMajor(name); ok {
		return classifiedSection{category: categoryRuntime, major: major}
	}
	if osTokens[name] {
		return classifiedSection{category: categoryOS, osToken: name}
	}
	if idx := strings.Index(name, "-Runtime-"); idx > 0 {
		mode, majorStr := name[:idx], name[idx+len("-Runtime-"):]
		if n, err := strconv.Atoi(majorStr); err == nil && n > 0 {
			return classifiedSection{category: categoryModeRuntime, mode: mode, major: n}
		}
	}
	if idx := strings.LastIndex(name, "-"); idx > 0 {
		prefix, suffix := name[:idx], name[idx+1:]
		if osTokens[suffix] {
			return classifiedSection{category: categoryModeOS, mode: prefix, osToken: suffix}
		}
	}
	return classifiedSection{category: categoryMode, mode: name}
}

func parseRuntimeMajor(name string) (int, bool) {
	const prefix = "Runtime-"
	if !strings.HasPrefix(name, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(name[len(prefix):])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// SelectionContext is the per-call environment a manifest attribute is
// resolved against (spec.md §4.2, "Mode/OS/runtime section selection is
// evaluated per-call against current environment").
type SelectionContext struct {
	GOOS         string
	RuntimeMajor int
	Mode         string
}

func (c classifiedSection) matches(ctx SelectionContext) bool {
	switch c.category {
	case categoryOS:
		return MatchesOS(c.osToken, ctx.GOOS)
	case categoryRuntime:
		return c.major == ctx.RuntimeMajor
	case categoryMode:
		return ctx.Mode != "" && c.mode == ctx.Mode
	case categoryModeOS:
		return ctx.Mode != "" && c.mode == ctx.Mode && MatchesOS(c.osToken, ctx.GOOS)
	case categoryModeRuntime:
		return ctx.Mode != "" && c.mode == ctx.Mode && c.major == ctx.RuntimeMajor
	}
	return false
}

// orderedMatchingSections returns the sections of m matching ctx, in the
// deterministic category order spec.md §3/§4.2 mandates: OS, Runtime-N,
// mode, Mode-OS, Mode-Runtime-N.
func (m *Manifest) orderedMatchingSections(ctx SelectionContext) []*rawSection {
	byCategory := map[sectionCategory][]*rawSection{}
	for _, name := range m.sectionOrder {
		s := m.sections[name]
		cls := classifySection(name)
		if cls.matches(ctx) {
			byCategory[cls.category] = append(byCategory[cls.category], s)
		}
	}
	var out []*rawSection
	for _, cat := range []sectionCategory{categoryOS, categoryRuntime, categoryMode, categoryModeOS, categoryModeRuntime} {
		out = append(out, byCategory[cat]...)
	}
	return out
}
