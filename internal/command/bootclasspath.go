package command

import (
	"path/filepath"
	"strings"
)

// BuildBootClasspathArgs renders the Boot-Class-Path family of manifest
// attributes into their JVM flag forms (spec.md §4.6 step 4): a plain
// replacement (-Xbootclasspath:), a prepend (-Xbootclasspath/p:), and an
// append (-Xbootclasspath/a:). Any list left empty contributes no flag.
func BuildBootClasspathArgs(plain, prepend, appendList []string) []string {
	var out []string
	if len(prepend) > 0 {
		out = append(out, "-Xbootclasspath/p:"+joinPath(prepend))
	}
	if len(plain) > 0 {
		out = append(out, "-Xbootclasspath:"+joinPath(plain))
	}
	if len(appendList) > 0 {
		out = append(out, "-Xbootclasspath/a:"+joinPath(appendList))
	}
	return out
}

// BuildLibraryPathProperty renders Library-Path-A/Library-Path-P into a
// single java.library.path system property value, prepended entries
// first so they're searched before the default path, appended entries
// last.
func BuildLibraryPathProperty(prepend, appendList []string) (key, value string, ok bool) {
	if len(prepend) == 0 && len(appendList) == 0 {
		return "", "", false
	}
	var all []string
	all = append(all, prepend...)
	all = append(all, appendList...)
	return "java.library.path", joinPath(all), true
}

func joinPath(paths []string) string {
	return strings.Join(paths, string(filepath.ListSeparator))
}
