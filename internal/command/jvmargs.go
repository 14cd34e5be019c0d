package command

import "strings"

// MergeJVMArgs concatenates the manifest's JVM-Args with the host's
// forwarded runtime flags, then de-duplicates matched option families so
// that a later value wins over an earlier one for the same option
// (spec.md §4.6 "keyed de-dup ... lets the right-most wins"). manifestArgs
// come first so a host override always lands last in precedence.
func MergeJVMArgs(manifestArgs, hostArgs []string) []string {
	all := make([]string, 0, len(manifestArgs)+len(hostArgs))
	all = append(all, manifestArgs...)
	all = append(all, hostArgs...)
	return dedupByKey(all)
}

func dedupByKey(args []string) []string {
	index := map[string]int{}
	var out []string
	for _, arg := range args {
		key := flagKey(arg)
		if i, ok := index[key]; ok {
			out[i] = arg
			continue
		}
		index[key] = len(out)
		out = append(out, arg)
	}
	return out
}

var memoryFlagPrefixes = []string{"-Xmx", "-Xms", "-Xss"}

// flagKey returns the de-dup key for a single JVM flag: the option
// family it belongs to, collapsing variants that set the same thing
// (spec.md §4.6: "-Xmx*", "-XX:+/-*", "-Xbootclasspath*", "-cp"/"-classpath").
// A flag outside every recognized family is its own key, so unrelated
// flags are never merged together.
func flagKey(arg string) string {
	switch arg {
	case "-cp", "-classpath":
		return "-classpath"
	}
	for _, prefix := range memoryFlagPrefixes {
		if strings.HasPrefix(arg, prefix) {
			return prefix
		}
	}
	if strings.HasPrefix(arg, "-XX:+") {
		return "-XX:" + arg[len("-XX:+"):]
	}
	if strings.HasPrefix(arg, "-XX:-") {
		return "-XX:" + arg[len("-XX:-"):]
	}
	if strings.HasPrefix(arg, "-XX:") {
		if idx := strings.IndexByte(arg, '='); idx >= 0 {
			return arg[:idx]
		}
		return arg
	}
	if strings.HasPrefix(arg, "-Xbootclasspath") {
		if idx := strings.IndexByte(arg, ':'); idx >= 0 {
			return arg[:idx]
		}
		return arg
	}
	return arg
}
