package command

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildClassPathOrdersEntriesAndDropsDuplicates(t *testing.T) {
	got := BuildClassPath(
		"/archives/app.jar",
		true,
		"/cache/app-1.0/app.jar",
		[]string{"/cache/app-1.0/lib/a.jar"},
		[]string{"/cache/app-1.0/lib/a.jar", "/cache/app-1.0/lib/b.jar"},
		[]string{"/deps/guava.jar"},
	)
	assert.Equal(t, []string{
		"/archives/app.jar",
		"/cache/app-1.0/app.jar",
		"/cache/app-1.0/lib/a.jar",
		"/cache/app-1.0/lib/b.jar",
		"/deps/guava.jar",
	}, got)
}

func TestBuildClassPathExcludesArchiveWhenNotIncluded(t *testing.T) {
	got := BuildClassPath("/archives/app.jar", false, "", nil, nil, nil)
	assert.Empty(t, got)
}

func TestBuildClassPathSkipsEmptyMainArtifact(t *testing.T) {
	got := BuildClassPath("/archives/app.jar", true, "", nil, nil, []string{"/deps/a.jar"})
	assert.Equal(t, []string{"/archives/app.jar", "/deps/a.jar"}, got)
}

func TestJoinClassPathUsesPlatformSeparator(t *testing.T) {
	got := JoinClassPath([]string{"/a.jar", "/b.jar"})
	assert.Equal(t, "/a.jar"+string(filepath.ListSeparator)+"/b.jar", got)
}
