package cachepath

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAppID(t *testing.T) {
	assert.NoError(t, ValidateAppID("com.acme.widget"))
	assert.Error(t, ValidateAppID(""))
	assert.Error(t, ValidateAppID("../escape"))
	assert.Error(t, ValidateAppID("a/b"))
	assert.Error(t, ValidateAppID(`a\b`))
}

func TestResolveRootHonorsCacheDirOverride(t *testing.T) {
	env := map[string]string{"CAPSULE_CACHE_DIR": "/tmp/explicit-cache"}
	root, err := ResolveRoot(func(k string) string { return env[k] })
	require.NoError(t, err)
	assert.Equal(t, "/tmp/explicit-cache", root.Path)
}

func TestResolveRootDefaultsNameUnderHome(t *testing.T) {
	env := map[string]string{"HOME": "/home/dev"}
	root, err := ResolveRoot(func(k string) string { return env[k] })
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/dev", "capsule"), root.Path)
}

func TestAppDirRejectsInvalidID(t *testing.T) {
	root := Root{Path: "/tmp/whatever"}
	_, err := root.AppDir("../escape", "")
	assert.Error(t, err)
}

func TestAppDirSuffixesVersion(t *testing.T) {
	root := Root{Path: "/tmp/whatever"}
	dir, err := root.AppDir("com.acme.widget", "1.0")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/whatever", "apps", "com.acme.widget_1.0"), dir)
}

func TestDeriveAppIDPrefersExplicit(t *testing.T) {
	assert.Equal(t, "explicit-id", DeriveAppID("explicit-id", "com.acme:widget:1.0", "com.acme.Main"))
}

func TestDeriveAppIDFallsBackToCoordinate(t *testing.T) {
	assert.Equal(t, "com.acme.widget", DeriveAppID("", "com.acme:widget:1.0", "com.acme.Main"))
}

func TestDeriveAppIDFallsBackToMainClass(t *testing.T) {
	assert.Equal(t, "com.acme.Main", DeriveAppID("", "", "com.acme.Main"))
}

func TestDeriveAppIDSanitizesSeparators(t *testing.T) {
	assert.Equal(t, "com.acme.Main", DeriveAppID("com/acme/Main", "", ""))
}

func TestExtractionRequiredForStartupScript(t *testing.T) {
	assert.True(t, ExtractionRequired(true, false, "", false, ""))
}

func TestExtractionRequiredForRenamedNativeDeps(t *testing.T) {
	assert.True(t, ExtractionRequired(false, true, "false", true, "com.acme:widget:1.0"))
}

func TestExtractionRequiredWhenExtractAttributeAbsent(t *testing.T) {
	assert.True(t, ExtractionRequired(false, false, "", false, ""))
}

func TestExtractionNotRequiredWhenArtifactPresentAndExtractFalse(t *testing.T) {
	assert.False(t, ExtractionRequired(false, false, "false", true, "com.acme:widget:1.0"))
}

func TestExtractionNotRequiredWhenArtifactPresentAndExtractAbsent(t *testing.T) {
	// Application-Artifact present with no Extract attribute at all: the
	// capsule can run straight from the archive.
	assert.False(t, ExtractionRequired(false, false, "", false, "com.acme:widget:1.0"))
}
