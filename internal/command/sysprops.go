package command

import (
	"fmt"
	"sort"
)

// MergeSystemProperties combines the manifest's System-Properties with
// host -D overrides and the derived properties the launcher always
// sets itself (capsule.app, capsule.jar, capsule.dir, capsule.app.pid,
// and a security-manager marker when a policy is declared), host
// overrides and derived properties winning over manifest values for the
// same key (spec.md §4.6 step 3).
func MergeSystemProperties(manifest, host, derived map[string]string) map[string]string {
	out := make(map[string]string, len(manifest)+len(host)+len(derived))
	for k, v := range manifest {
		out[k] = v
	}
	for k, v := range host {
		out[k] = v
	}
	for k, v := range derived {
		out[k] = v
	}
	return out
}

// DerivedProperties computes the launcher-owned capsule.* properties
// (spec.md §4.6). capsuleDir is empty when the capsule ran without
// extraction (the archive itself is run in place).
func DerivedProperties(appID, archivePath, capsuleDir string, pid int, securityManager string) map[string]string {
	out := map[string]string{
		"capsule.app": appID,
		"capsule.jar": archivePath,
	}
	if capsuleDir != "" {
		out["capsule.dir"] = capsuleDir
	}
	if pid > 0 {
		out["capsule.app.pid"] = fmt.Sprintf("%d", pid)
	}
	if securityManager != "" {
		out["capsule.security.manager"] = securityManager
	}
	return out
}

// AsDefineFlags renders a system-properties map as sorted "-Dkey=value"
// flags, sorted for deterministic, diffable command lines.
func AsDefineFlags(props map[string]string) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("-D%s=%s", k, props[k]))
	}
	return out
}
