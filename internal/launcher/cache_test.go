package launcher

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractionRequiredForScript(t *testing.T) {
	m := mustManifest(t, "Script: run.sh\nApplication-Artifact: com.acme:widget:1.0\n")
	ctx := preliminaryContext("")
	chain, err := resolveCaplets(m, ctx, logr.Discard())
	require.NoError(t, err)
	rm := resolvedManifest{m: m, ctx: ctx, chain: chain}

	script, _ := rm.get("Script")
	assert.True(t, extractionRequired(rm, script))
}

func TestExtractionNotRequiredWithArtifactAndNoScript(t *testing.T) {
	m := mustManifest(t, "Application-Artifact: com.acme:widget:1.0\n")
	ctx := preliminaryContext("")
	chain, err := resolveCaplets(m, ctx, logr.Discard())
	require.NoError(t, err)
	rm := resolvedManifest{m: m, ctx: ctx, chain: chain}

	script, _ := rm.get("Script")
	assert.False(t, extractionRequired(rm, script))
}

func TestExtractionRequiredWhenNothingDeclared(t *testing.T) {
	m := mustManifest(t, "Application-Class: demo.Main\n")
	ctx := preliminaryContext("")
	chain, err := resolveCaplets(m, ctx, logr.Discard())
	require.NoError(t, err)
	rm := resolvedManifest{m: m, ctx: ctx, chain: chain}

	script, _ := rm.get("Script")
	assert.True(t, extractionRequired(rm, script))
}

func TestExtractionRequiredForRenamedNativeDependency(t *testing.T) {
	m := mustManifest(t, "Application-Artifact: com.acme:widget:1.0\nNative-Dependencies-Linux: lib/libfoo.so,librenamed.so\n")
	ctx := preliminaryContext("")
	chain, err := resolveCaplets(m, ctx, logr.Discard())
	require.NoError(t, err)
	rm := resolvedManifest{m: m, ctx: ctx, chain: chain}

	script, _ := rm.get("Script")
	assert.True(t, extractionRequired(rm, script))
}
