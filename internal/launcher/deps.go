package launcher

import (
	"context"
	"fmt"
	"runtime"

	"github.com/capsulerun/capsule/internal/dependency"
	"github.com/capsulerun/capsule/internal/manifest"
)

// nativeDependencyAttr picks the Native-Dependencies-{Linux,Mac,Win}
// attribute matching the current host.
func nativeDependencyAttr() string {
	switch runtime.GOOS {
	case "windows":
		return manifest.NativeDependenciesWin
	case "darwin":
		return manifest.NativeDependenciesMac
	default:
		return manifest.NativeDependenciesLinux
	}
}

// resolvedDeps is the C5 output command building needs.
type resolvedDeps struct {
	ClassPathJars []string
}

// resolveMainArtifact resolves the Application-Artifact coordinate (the
// classpath-only main artifact spec.md §4.6 step 5 names separately
// from the entrypoint resolution in step 7) to a local file path. An
// absent attribute is not an error: it simply contributes nothing to
// the classpath. capsuleDir materializes an embedded-archive
// resolution's path the same way resolveEntrypoint does.
func resolveMainArtifact(ctx context.Context, resolver *dependency.Resolver, rm resolvedManifest, capsuleDir string) (string, error) {
	coord, ok := rm.get(manifest.ApplicationArtifact)
	if !ok || coord == "" {
		return "", nil
	}
	paths, err := resolver.Resolve(ctx, coord, "jar")
	if err != nil {
		return "", wrapExit(ExitDependencyNotFound, "dependency-not-found", fmt.Errorf("resolving application artifact %s: %w", coord, err))
	}
	if len(paths) == 0 {
		return "", wrapExit(ExitDependencyNotFound, "dependency-not-found", fmt.Errorf("application artifact %s resolved to no file", coord))
	}
	return materializePath(paths[0], capsuleDir), nil
}

// resolveDependencies resolves every Dependencies coordinate to a jar
// path (spec.md §4.5) and copies every native dependency for the host
// OS into nativeDestDir, when one is available. capsuleDir materializes
// embedded-archive resolutions the same way resolveEntrypoint does.
func resolveDependencies(ctx context.Context, resolver *dependency.Resolver, rm resolvedManifest, nativeDestDir, capsuleDir string) (resolvedDeps, error) {
	var out resolvedDeps
	for _, coord := range rm.list(manifest.Dependencies) {
		paths, err := resolver.Resolve(ctx, coord, "jar")
		if err != nil {
			return resolvedDeps{}, wrapExit(ExitDependencyNotFound, "dependency-not-found", fmt.Errorf("resolving %s: %w", coord, err))
		}
		for _, p := range paths {
			out.ClassPathJars = append(out.ClassPathJars, materializePath(p, capsuleDir))
		}
	}

	nativeEntries := rm.list(nativeDependencyAttr())
	if len(nativeEntries) > 0 {
		if nativeDestDir == "" {
			return resolvedDeps{}, wrapExit(ExitAttributeMisuse, "attribute-misuse",
				fmt.Errorf("native dependencies declared but this capsule has no app-cache directory to copy them into"))
		}
		if err := resolver.ResolveNative(ctx, nativeEntries, nativeDestDir); err != nil {
			return resolvedDeps{}, wrapExit(ExitDependencyNotFound, "dependency-not-found", err)
		}
	}
	return out, nil
}
