package cachepath

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	root := Root{Path: t.TempDir()}
	require.NoError(t, root.Init())
	return NewManager(root, logr.Discard())
}

func TestPrepareNotRequiredReturnsEmptyAppDir(t *testing.T) {
	m := newTestManager(t)
	res, err := m.Prepare("com.acme.widget", "", time.Now(), false, false, func(string) error {
		t.Fatal("extract should not be called when extraction isn't required")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, PrepareResult{}, res)
}

func TestPrepareExtractsOnFirstRun(t *testing.T) {
	m := newTestManager(t)
	var extractedInto string
	res, err := m.Prepare("com.acme.widget", "1.0", time.Now(), true, false, func(dest string) error {
		extractedInto = dest
		return os.WriteFile(filepath.Join(dest, "payload.txt"), []byte("hi"), 0o644)
	})
	require.NoError(t, err)
	assert.True(t, res.Extracted)
	assert.Equal(t, res.AppDir, extractedInto)
	assert.FileExists(t, filepath.Join(res.AppDir, "payload.txt"))
	assert.FileExists(t, filepath.Join(res.AppDir, markerName))
}

func TestPrepareSkipsReExtractionWhenUpToDate(t *testing.T) {
	m := newTestManager(t)
	archiveModTime := time.Now().Add(-time.Hour)
	calls := 0
	extract := func(dest string) error {
		calls++
		return os.WriteFile(filepath.Join(dest, "payload.txt"), []byte("hi"), 0o644)
	}

	_, err := m.Prepare("com.acme.widget", "1.0", archiveModTime, true, false, extract)
	require.NoError(t, err)

	res2, err := m.Prepare("com.acme.widget", "1.0", archiveModTime, true, false, extract)
	require.NoError(t, err)
	assert.False(t, res2.Extracted)
	assert.Equal(t, 1, calls)
}

func TestPrepareReExtractsWhenArchiveIsNewer(t *testing.T) {
	m := newTestManager(t)
	extract := func(dest string) error {
		return os.WriteFile(filepath.Join(dest, "payload.txt"), []byte("hi"), 0o644)
	}

	_, err := m.Prepare("com.acme.widget", "1.0", time.Now().Add(-time.Hour), true, false, extract)
	require.NoError(t, err)

	res2, err := m.Prepare("com.acme.widget", "1.0", time.Now().Add(time.Hour), true, false, extract)
	require.NoError(t, err)
	assert.True(t, res2.Extracted)
}

func TestPrepareForcesReExtractionOnReset(t *testing.T) {
	m := newTestManager(t)
	archiveModTime := time.Now()
	calls := 0
	extract := func(dest string) error {
		calls++
		return os.WriteFile(filepath.Join(dest, "payload.txt"), []byte("hi"), 0o644)
	}

	_, err := m.Prepare("com.acme.widget", "1.0", archiveModTime, true, false, extract)
	require.NoError(t, err)

	res2, err := m.Prepare("com.acme.widget", "1.0", archiveModTime, true, true, extract)
	require.NoError(t, err)
	assert.True(t, res2.Extracted)
	assert.Equal(t, 2, calls)
}

func TestResetRemovesMarker(t *testing.T) {
	m := newTestManager(t)
	archiveModTime := time.Now()
	extract := func(dest string) error {
		return os.WriteFile(filepath.Join(dest, "payload.txt"), []byte("hi"), 0o644)
	}
	res, err := m.Prepare("com.acme.widget", "1.0", archiveModTime, true, false, extract)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(res.AppDir, markerName))

	require.NoError(t, m.Reset("com.acme.widget", "1.0"))
	assert.NoFileExists(t, filepath.Join(res.AppDir, markerName))
}

func TestResetOnNeverExtractedAppIsNotAnError(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Reset("com.acme.never-launched", ""))
}

func TestPrepareVolatileFallsBackToTempDirAndCleansUp(t *testing.T) {
	var touched string
	dir, cleanup, err := PrepareVolatile("com.acme.widget", func(dest string) error {
		touched = dest
		return os.WriteFile(filepath.Join(dest, "payload.txt"), []byte("hi"), 0o644)
	}, logr.Discard())
	require.NoError(t, err)
	assert.Equal(t, touched, dir)
	assert.FileExists(t, filepath.Join(dir, "payload.txt"))

	cleanup()
	assert.NoDirExists(t, dir)
}
