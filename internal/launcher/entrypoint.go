package launcher

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/capsulerun/capsule/internal/archivefmt"
	"github.com/capsulerun/capsule/internal/dependency"
	"github.com/capsulerun/capsule/internal/manifest"
)

// jarManifestPath is the standard (non-capsule) jar manifest path;
// resolving a coordinate-declared `Application` entrypoint whose own
// jar doesn't name an Application-Class means reading it from there
// (spec.md §8 scenario 2, "main class taken from the resolved
// artifact's own index").
const jarManifestPath = "META-INF/MANIFEST.MF"

// entrypoint is the resolved (program, args-prefix) pair command
// building needs: exactly one of MainClass/MainJarPath is set.
type entrypoint struct {
	MainClass   string
	MainJarPath string
}

// resolveEntrypoint implements spec.md §4.6 step 7: Application-Class
// wins outright; otherwise an Application coordinate is resolved to a
// jar and that jar's own Main-Class attribute is read; otherwise
// there's no entrypoint at all. capsuleDir materializes an
// embedded-archive resolution's archive-relative path (see
// materializePath) into a real file the jar's own manifest can be read
// from; it is empty when this capsule never extracted.
func resolveEntrypoint(ctx context.Context, resolver *dependency.Resolver, rm resolvedManifest, capsuleDir string) (entrypoint, error) {
	if mainClass, ok := rm.get(manifest.ApplicationClass); ok && mainClass != "" {
		return entrypoint{MainClass: mainClass}, nil
	}

	artifact, ok := rm.get(manifest.Application)
	if !ok || artifact == "" {
		return entrypoint{}, nil
	}

	paths, err := resolver.ResolveRoot(ctx, artifact)
	if err != nil {
		return entrypoint{}, wrapExit(ExitDependencyNotFound, "dependency-not-found", fmt.Errorf("resolving application artifact %s: %w", artifact, err))
	}
	if len(paths) == 0 {
		return entrypoint{}, wrapExit(ExitDependencyNotFound, "dependency-not-found", fmt.Errorf("application artifact %s resolved to no file", artifact))
	}
	mainJar := materializePath(paths[0], capsuleDir)

	mainClass, err := readJarMainClass(mainJar)
	if err != nil {
		return entrypoint{}, wrapExit(ExitMissingEntrypoint, "missing-entrypoint", err)
	}
	if mainClass == "" {
		return entrypoint{MainJarPath: mainJar}, nil
	}
	return entrypoint{MainClass: mainClass, MainJarPath: mainJar}, nil
}

// readJarMainClass reads a standard jar's own META-INF/MANIFEST.MF (a
// plain "Key: Value" index, not a capsule one) looking for Main-Class.
// Absence is not an error: a jar without a Main-Class is still runnable
// with -jar only when it declares one; the caller decides.
func readJarMainClass(jarPath string) (string, error) {
	r, err := archivefmt.Open(jarPath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", jarPath, err)
	}
	defer r.Close()

	if !r.Has(jarManifestPath) {
		return "", nil
	}
	raw, err := r.ReadAll(jarManifestPath)
	if err != nil {
		return "", fmt.Errorf("reading %s's manifest: %w", jarPath, err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := scanner.Text()
		if k, v, ok := strings.Cut(line, ":"); ok && strings.TrimSpace(k) == "Main-Class" {
			return strings.TrimSpace(v), nil
		}
	}
	return "", nil
}
