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

// buildFixtureArchive lays out an embedded jar and native library under
// lib/ and zips it, mirroring internal/dependency's own test fixture.
func buildFixtureArchive(t *testing.T) *archivefmt.Reader {
	t.Helper()
	srcDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(srcDir, "lib", "com.acme"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "lib", "com.acme", "widget-1.0.jar"), []byte("jar-bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "lib", "libnative.so"), []byte("native-bytes"), 0o755))

	archivePath := filepath.Join(t.TempDir(), "test.zip")
	entries, err := os.ReadDir(srcDir)
	require.NoError(t, err)
	var sources []string
	for _, e := range entries {
		sources = append(sources, filepath.Join(srcDir, e.Name()))
	}
	require.NoError(t, archiver.Archive(sources, archivePath))

	r, err := archivefmt.Open(archivePath)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestResolveMainArtifactAbsentIsNotAnError(t *testing.T) {
	archive := buildFixtureArchive(t)
	resolver := dependency.New(archive, nil, logr.Discard())
	m := mustManifest(t, "Application-Class: demo.Main\n")
	ctx := preliminaryContext("")
	chain, err := resolveCaplets(m, ctx, logr.Discard())
	require.NoError(t, err)
	rm := resolvedManifest{m: m, ctx: ctx, chain: chain}

	path, err := resolveMainArtifact(context.Background(), resolver, rm, "")
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestResolveMainArtifactFindsEmbedded(t *testing.T) {
	archive := buildFixtureArchive(t)
	resolver := dependency.New(archive, nil, logr.Discard())
	m := mustManifest(t, "Application-Artifact: com.acme:widget:1.0\n")
	ctx := preliminaryContext("")
	chain, err := resolveCaplets(m, ctx, logr.Discard())
	require.NoError(t, err)
	rm := resolvedManifest{m: m, ctx: ctx, chain: chain}

	path, err := resolveMainArtifact(context.Background(), resolver, rm, "")
	require.NoError(t, err)
	assert.Equal(t, "lib/com.acme/widget-1.0.jar", path)
}

func TestResolveMainArtifactMaterializesAgainstCapsuleDir(t *testing.T) {
	archive := buildFixtureArchive(t)
	resolver := dependency.New(archive, nil, logr.Discard())
	m := mustManifest(t, "Application-Artifact: com.acme:widget:1.0\n")
	ctx := preliminaryContext("")
	chain, err := resolveCaplets(m, ctx, logr.Discard())
	require.NoError(t, err)
	rm := resolvedManifest{m: m, ctx: ctx, chain: chain}

	path, err := resolveMainArtifact(context.Background(), resolver, rm, "/extracted/app")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/extracted/app", "lib", "com.acme", "widget-1.0.jar"), path)
}

func TestResolveDependenciesCollectsClassPathJars(t *testing.T) {
	archive := buildFixtureArchive(t)
	resolver := dependency.New(archive, nil, logr.Discard())
	m := mustManifest(t, "Dependencies: com.acme:widget:1.0\n")
	ctx := preliminaryContext("")
	chain, err := resolveCaplets(m, ctx, logr.Discard())
	require.NoError(t, err)
	rm := resolvedManifest{m: m, ctx: ctx, chain: chain}

	deps, err := resolveDependencies(context.Background(), resolver, rm, "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/com.acme/widget-1.0.jar"}, deps.ClassPathJars)
}

func TestResolveDependenciesFailsWithoutCacheDirWhenNativeDepsDeclared(t *testing.T) {
	archive := buildFixtureArchive(t)
	resolver := dependency.New(archive, nil, logr.Discard())
	m := mustManifest(t, "Native-Dependencies-Linux: lib/libnative.so\n")
	ctx := preliminaryContext("")
	chain, err := resolveCaplets(m, ctx, logr.Discard())
	require.NoError(t, err)
	rm := resolvedManifest{m: m, ctx: ctx, chain: chain}

	_, err = resolveDependencies(context.Background(), resolver, rm, "", "")
	require.Error(t, err)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitAttributeMisuse, exitErr.Code)
}

func TestResolveDependenciesCopiesNativeDepsWhenCacheDirPresent(t *testing.T) {
	archive := buildFixtureArchive(t)
	resolver := dependency.New(archive, nil, logr.Discard())
	m := mustManifest(t, "Native-Dependencies-Linux: lib/libnative.so\n")
	ctx := preliminaryContext("")
	chain, err := resolveCaplets(m, ctx, logr.Discard())
	require.NoError(t, err)
	rm := resolvedManifest{m: m, ctx: ctx, chain: chain}

	destDir := t.TempDir()
	_, err = resolveDependencies(context.Background(), resolver, rm, destDir, "")
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(destDir, "libnative.so"))
	require.NoError(t, statErr)
}
