package command

import (
	"fmt"
	"strings"
)

// BuildEnvironment starts from the parent process's environment (as
// "KEY=VALUE" strings, e.g. os.Environ()) and applies
// Environment-Variables entries: "KEY=VAL" sets the variable only if
// absent, "KEY:=VAL" always overwrites it (spec.md §4.6). javaHome is
// always set, overwriting any inherited value.
func BuildEnvironment(parentEnv []string, vars map[string]string, javaHome string) []string {
	env := map[string]string{}
	var order []string
	for _, kv := range parentEnv {
		k, v, ok := splitEnv(kv)
		if !ok {
			continue
		}
		if _, exists := env[k]; !exists {
			order = append(order, k)
		}
		env[k] = v
	}

	for key, raw := range vars {
		overwrite := strings.HasSuffix(key, ":")
		name := strings.TrimSuffix(key, ":")
		if _, exists := env[name]; !exists {
			order = append(order, name)
			env[name] = raw
			continue
		}
		if overwrite {
			env[name] = raw
		}
	}

	if _, exists := env["JAVA_HOME"]; !exists {
		order = append(order, "JAVA_HOME")
	}
	env["JAVA_HOME"] = javaHome

	out := make([]string, 0, len(order))
	for _, k := range order {
		out = append(out, fmt.Sprintf("%s=%s", k, env[k]))
	}
	return out
}

func splitEnv(kv string) (key, value string, ok bool) {
	idx := strings.IndexByte(kv, '=')
	if idx < 0 {
		return "", "", false
	}
	return kv[:idx], kv[idx+1:], true
}
