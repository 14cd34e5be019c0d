// Package manifest parses a capsule archive's textual index into a typed
// attribute model and resolves attribute values against the current
// OS/runtime/mode selection (spec.md §3, §4.2).
package manifest

import "strings"

// Manifest is the parsed, immutable attribute index. It is created once
// at startup (spec.md §3 "Lifecycle") and never mutated; caplets produce
// transformed copies (see internal/caplet) rather than editing one in
// place.
type Manifest struct {
	main     map[string]string
	mainList map[string][]string

	sections     map[string]*rawSection
	sectionOrder []string
}

// Has reports whether attr has any value under ctx, in the main section or
// any matching section.
func (m *Manifest) Has(attr string, ctx SelectionContext) bool {
	if _, ok := m.main[attr]; ok {
		return true
	}
	for _, s := range m.orderedMatchingSections(ctx) {
		if _, ok := s.values[attr]; ok {
			return true
		}
	}
	return false
}

// Get returns the effective scalar value of attr under ctx: the last
// non-empty value found while walking the main section then the matching
// sections in the fixed category order (spec.md §3 "Scalar attributes
// take the last non-empty value").
func (m *Manifest) Get(attr string, ctx SelectionContext) (string, bool) {
	val, found := m.main[attr]
	for _, s := range m.orderedMatchingSections(ctx) {
		vals, ok2 := s.values[attr]
		if !ok2 || len(vals) == 0 {
			continue
		}
		last := vals[len(vals)-1]
		if last != "" {
			val = last
			found = true
		} else if !found {
			val, found = last, true
		}
	}
	return val, found
}

// GetList returns the concatenation of the main section's values plus
// every matching section's values, in declared order (spec.md §3 "List
// attributes accumulate"; spec.md §8 invariant 7).
func (m *Manifest) GetList(attr string, ctx SelectionContext) []string {
	var out []string
	out = append(out, splitAll(m.mainList[attr])...)
	for _, s := range m.orderedMatchingSections(ctx) {
		out = append(out, splitAll(s.values[attr])...)
	}
	return out
}

func splitAll(lines []string) []string {
	var out []string
	for _, line := range lines {
		out = append(out, strings.Fields(line)...)
	}
	return out
}

// GetMap returns the key/value map for attr, parsed from "KEY=VALUE" (or
// "KEY" alone, falling back to defaultValue) entries in the main section
// and every matching section, later entries overriding earlier ones for
// the same key (spec.md §4.2).
func (m *Manifest) GetMap(attr string, ctx SelectionContext, defaultValue string) map[string]string {
	out := map[string]string{}
	applyMapLines(out, m.mainList[attr], defaultValue)
	for _, s := range m.orderedMatchingSections(ctx) {
		applyMapLines(out, s.values[attr], defaultValue)
	}
	return out
}

func applyMapLines(out map[string]string, lines []string, defaultValue string) {
	for _, line := range lines {
		for _, tok := range strings.Fields(line) {
			if idx := strings.Index(tok, "="); idx >= 0 {
				out[tok[:idx]] = tok[idx+1:]
			} else {
				out[tok] = defaultValue
			}
		}
	}
}

// ErrUnknownMode is returned by ValidateMode when a caller selects a mode
// the manifest never declares a section for (spec.md §8 "Attribute with an
// unknown mode → structural error before spawn").
type ErrUnknownMode struct {
	Mode string
}

func (e *ErrUnknownMode) Error() string {
	return "unknown mode: " + e.Mode
}

// ValidateMode checks that mode (if non-empty) is one of the modes
// declared by the manifest's sections.
func (m *Manifest) ValidateMode(mode string) error {
	if mode == "" {
		return nil
	}
	for _, candidate := range m.Modes() {
		if candidate == mode {
			return nil
		}
	}
	return &ErrUnknownMode{Mode: mode}
}

// Modes returns the set of user-selectable mode names declared by any
// section of the manifest (every section name classified as a plain mode,
// Mode-OS, or Mode-Runtime-N section contributes its mode part). Used by
// the "capsule.modes" action (spec.md §4.9).
func (m *Manifest) Modes() []string {
	seen := map[string]bool{}
	var out []string
	for _, name := range m.sectionOrder {
		cls := classifySection(name)
		var mode string
		switch cls.category {
		case categoryMode:
			mode = cls.mode
		case categoryModeOS, categoryModeRuntime:
			mode = cls.mode
		default:
			continue
		}
		if mode != "" && !seen[mode] {
			seen[mode] = true
			out = append(out, mode)
		}
	}
	return out
}
