package command

// BuildClassPath assembles the application classpath as the ordered
// union of: the capsule archive itself (unless excluded), the main
// artifact, the declared App-Class-Path, the default in-cache jars, and
// the resolved Dependencies — in that order, duplicates dropped after
// their first occurrence (spec.md §4.6 step 5).
func BuildClassPath(archivePath string, includeArchive bool, mainArtifactPath string, appClassPath, defaultInCacheJars, resolvedDependencies []string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(path string) {
		if path == "" || seen[path] {
			return
		}
		seen[path] = true
		out = append(out, path)
	}

	if includeArchive {
		add(archivePath)
	}
	add(mainArtifactPath)
	for _, p := range appClassPath {
		add(p)
	}
	for _, p := range defaultInCacheJars {
		add(p)
	}
	for _, p := range resolvedDependencies {
		add(p)
	}
	return out
}

// JoinClassPath renders a classpath list as a single platform-separated
// string suitable for -cp/CLASSPATH.
func JoinClassPath(paths []string) string {
	return joinPath(paths)
}
