package command

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildBootClasspathArgsOrdersPrependPlainAppend(t *testing.T) {
	got := BuildBootClasspathArgs([]string{"plain.jar"}, []string{"pre.jar"}, []string{"app.jar"})
	assert.Equal(t, []string{
		"-Xbootclasspath/p:pre.jar",
		"-Xbootclasspath:plain.jar",
		"-Xbootclasspath/a:app.jar",
	}, got)
}

func TestBuildBootClasspathArgsOmitsEmptyFamilies(t *testing.T) {
	got := BuildBootClasspathArgs(nil, []string{"pre.jar"}, nil)
	assert.Equal(t, []string{"-Xbootclasspath/p:pre.jar"}, got)
}

func TestBuildBootClasspathArgsEmptyWhenAllUnset(t *testing.T) {
	got := BuildBootClasspathArgs(nil, nil, nil)
	assert.Empty(t, got)
}

func TestBuildLibraryPathPropertyPrependsBeforeAppend(t *testing.T) {
	key, value, ok := BuildLibraryPathProperty([]string{"/native/pre"}, []string{"/native/app"})
	assert.True(t, ok)
	assert.Equal(t, "java.library.path", key)
	assert.Equal(t, "/native/pre"+string(filepath.ListSeparator)+"/native/app", value)
}

func TestBuildLibraryPathPropertyFalseWhenUnset(t *testing.T) {
	_, _, ok := BuildLibraryPathProperty(nil, nil)
	assert.False(t, ok)
}
