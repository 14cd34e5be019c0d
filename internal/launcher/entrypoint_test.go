package launcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/mholt/archiver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capsulerun/capsule/internal/archivefmt"
	"github.com/capsulerun/capsule/internal/dependency"
)

func TestResolveEntrypointPrefersApplicationClass(t *testing.T) {
	archive := buildFixtureArchive(t)
	resolver := dependency.New(archive, nil, logr.Discard())
	m := mustManifest(t, "Application-Class: com.acme.Main\nApplication: com.acme:widget:1.0\n")
	ctx := preliminaryContext("")
	chain, err := resolveCaplets(m, ctx, logr.Discard())
	require.NoError(t, err)
	rm := resolvedManifest{m: m, ctx: ctx, chain: chain}

	ep, err := resolveEntrypoint(context.Background(), resolver, rm, "")
	require.NoError(t, err)
	assert.Equal(t, "com.acme.Main", ep.MainClass)
	assert.Empty(t, ep.MainJarPath)
}

func TestResolveEntrypointAbsentIsNotAnError(t *testing.T) {
	archive := buildFixtureArchive(t)
	resolver := dependency.New(archive, nil, logr.Discard())
	m := mustManifest(t, "Application-Artifact: com.acme:widget:1.0\n")
	ctx := preliminaryContext("")
	chain, err := resolveCaplets(m, ctx, logr.Discard())
	require.NoError(t, err)
	rm := resolvedManifest{m: m, ctx: ctx, chain: chain}

	ep, err := resolveEntrypoint(context.Background(), resolver, rm, "")
	require.NoError(t, err)
	assert.Empty(t, ep.MainClass)
	assert.Empty(t, ep.MainJarPath)
}

// buildJarWithMainClass builds a standalone jar (its own
// META-INF/MANIFEST.MF naming Main-Class) embedded under lib/ in a
// capsule archive, for resolving an Application coordinate down to its
// own declared entrypoint. It also lays the same lib/ layout out as a
// plain directory (capsuleDir), standing in for this capsule's own
// already-extracted app cache: reading a resolved jar's own manifest
// requires a real file, which only exists once extraction has happened.
func buildJarWithMainClass(t *testing.T) (archive *archivefmt.Reader, capsuleDir string) {
	t.Helper()
	jarSrc := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(jarSrc, "META-INF"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(jarSrc, "META-INF", "MANIFEST.MF"), []byte("Manifest-Version: 1.0\nMain-Class: com.acme.Jarred\n"), 0o644))
	jarPath := filepath.Join(t.TempDir(), "widget-1.0.jar")
	entries, err := os.ReadDir(jarSrc)
	require.NoError(t, err)
	var sources []string
	for _, e := range entries {
		sources = append(sources, filepath.Join(jarSrc, e.Name()))
	}
	require.NoError(t, archiver.Archive(sources, jarPath))

	capsuleSrc := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(capsuleSrc, "lib", "com.acme"), 0o755))
	jarBytes, err := os.ReadFile(jarPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(capsuleSrc, "lib", "com.acme", "widget-1.0.jar"), jarBytes, 0o644))

	capsulePath := filepath.Join(t.TempDir(), "capsule.zip")
	entries, err = os.ReadDir(capsuleSrc)
	require.NoError(t, err)
	sources = nil
	for _, e := range entries {
		sources = append(sources, filepath.Join(capsuleSrc, e.Name()))
	}
	require.NoError(t, archiver.Archive(sources, capsulePath))

	r, err := archivefmt.Open(capsulePath)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r, capsuleSrc
}

func TestResolveEntrypointReadsMainClassFromResolvedJar(t *testing.T) {
	archive, capsuleDir := buildJarWithMainClass(t)
	resolver := dependency.New(archive, nil, logr.Discard())
	m := mustManifest(t, "Application: com.acme:widget:1.0\n")
	ctx := preliminaryContext("")
	chain, err := resolveCaplets(m, ctx, logr.Discard())
	require.NoError(t, err)
	rm := resolvedManifest{m: m, ctx: ctx, chain: chain}

	ep, err := resolveEntrypoint(context.Background(), resolver, rm, capsuleDir)
	require.NoError(t, err)
	assert.Equal(t, "com.acme.Jarred", ep.MainClass)
	assert.Equal(t, filepath.Join(capsuleDir, "lib", "com.acme", "widget-1.0.jar"), ep.MainJarPath)
}
