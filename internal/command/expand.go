package command

import (
	"fmt"
	"strings"
)

// ErrCapsuleDirWithoutExtraction is returned when a value references
// $CAPSULE_DIR but the capsule never extracted to a cache directory
// (spec.md §4.6 "$CAPSULE_DIR in a context without an extracted cache
// is a hard error").
var ErrCapsuleDirWithoutExtraction = fmt.Errorf("command: $CAPSULE_DIR referenced but this capsule was not extracted")

// Vars holds the values substituted into manifest-declared strings.
// CapsuleDir is empty exactly when the capsule ran without extraction.
type Vars struct {
	CapsuleDir string
	CapsuleJar string
	JavaHome   string
}

var varNames = []string{"$CAPSULE_DIR", "$CAPSULE_JAR", "$JAVA_HOME"}

// Expand substitutes $CAPSULE_DIR, $CAPSULE_JAR, and $JAVA_HOME
// textually within a single value. Keys are never expanded — callers
// must only apply this to values (spec.md §4.6).
func Expand(value string, v Vars) (string, error) {
	if strings.Contains(value, "$CAPSULE_DIR") && v.CapsuleDir == "" {
		return "", ErrCapsuleDirWithoutExtraction
	}
	replacer := strings.NewReplacer(
		"$CAPSULE_DIR", v.CapsuleDir,
		"$CAPSULE_JAR", v.CapsuleJar,
		"$JAVA_HOME", v.JavaHome,
	)
	return replacer.Replace(value), nil
}

// ExpandList expands every element of a list attribute's values.
func ExpandList(values []string, v Vars) ([]string, error) {
	out := make([]string, len(values))
	for i, val := range values {
		expanded, err := Expand(val, v)
		if err != nil {
			return nil, err
		}
		out[i] = expanded
	}
	return out, nil
}

// ExpandMap expands every value (never the key) of a map attribute.
func ExpandMap(m map[string]string, v Vars) (map[string]string, error) {
	out := make(map[string]string, len(m))
	for k, val := range m {
		expanded, err := Expand(val, v)
		if err != nil {
			return nil, err
		}
		out[k] = expanded
	}
	return out, nil
}
