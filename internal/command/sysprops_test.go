package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeSystemPropertiesPrecedence(t *testing.T) {
	manifest := map[string]string{"a": "manifest", "b": "manifest"}
	host := map[string]string{"b": "host", "c": "host"}
	derived := map[string]string{"c": "derived", "d": "derived"}
	got := MergeSystemProperties(manifest, host, derived)
	assert.Equal(t, map[string]string{
		"a": "manifest",
		"b": "host",
		"c": "derived",
		"d": "derived",
	}, got)
}

func TestDerivedPropertiesOmitsDirWhenNotExtracted(t *testing.T) {
	got := DerivedProperties("app-1.0", "/archives/app.jar", "", 0, "")
	assert.Equal(t, map[string]string{
		"capsule.app": "app-1.0",
		"capsule.jar": "/archives/app.jar",
	}, got)
}

func TestDerivedPropertiesIncludesDirPidAndSecurityManager(t *testing.T) {
	got := DerivedProperties("app-1.0", "/archives/app.jar", "/cache/app-1.0", 4242, "com.example.Policy")
	assert.Equal(t, "/cache/app-1.0", got["capsule.dir"])
	assert.Equal(t, "4242", got["capsule.app.pid"])
	assert.Equal(t, "com.example.Policy", got["capsule.security.manager"])
}

func TestAsDefineFlagsSortedOutput(t *testing.T) {
	got := AsDefineFlags(map[string]string{"b": "2", "a": "1"})
	assert.Equal(t, []string{"-Da=1", "-Db=2"}, got)
}
