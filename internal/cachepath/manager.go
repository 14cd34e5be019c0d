package cachepath

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-logr/logr"
)

const markerName = ".extracted"

// ExtractorFunc extracts a capsule archive's contents into dest.
type ExtractorFunc func(dest string) error

// ExtractionRequired implements spec.md §4.3's extraction decision:
// "Extraction decides on extraction when any of: startup-script present,
// renamed native dependencies present, or the explicit Extract attribute
// is absent/true and Application-Artifact is absent."
func ExtractionRequired(hasScript, hasRenamedNativeDeps bool, extractAttr string, extractAttrPresent bool, applicationArtifact string) bool {
	if hasScript || hasRenamedNativeDeps {
		return true
	}
	extractAbsentOrTrue := !extractAttrPresent || extractAttr == "" || extractAttr == "true"
	return extractAbsentOrTrue && applicationArtifact == ""
}

// Manager owns the lifecycle of one application's cache directory.
type Manager struct {
	Root Root
	log  logr.Logger
}

// NewManager builds a Manager over an already-initialized Root.
func NewManager(root Root, log logr.Logger) *Manager {
	return &Manager{Root: root, log: log.WithName("cachepath")}
}

// PrepareResult reports what Prepare decided.
type PrepareResult struct {
	// AppDir is empty when extraction was not required; callers must
	// then run the application from the archive in place (spec.md §4.3).
	AppDir string
	// Extracted is true iff files were written during this call.
	Extracted bool
}

// Prepare produces the app cache path, extracting (or re-extracting, if
// reset is requested or the cache is stale) as needed. extract is called
// with the target directory exactly when extraction must occur.
func (m *Manager) Prepare(
	appID, version string,
	archiveModTime time.Time,
	required bool,
	reset bool,
	extract ExtractorFunc,
) (PrepareResult, error) {
	if !required {
		return PrepareResult{}, nil
	}

	appDir, err := m.Root.AppDir(appID, version)
	if err != nil {
		return PrepareResult{}, err
	}
	if err := os.MkdirAll(m.Root.AppsDir(), 0o755); err != nil {
		return PrepareResult{}, fmt.Errorf("cachepath: preparing apps directory: %w", err)
	}

	lock, err := acquireLock(m.Root.AppsDir(), appID, m.log)
	if err != nil {
		return PrepareResult{}, fmt.Errorf("cachepath: acquiring extraction lock for %s: %w", appID, err)
	}
	defer lock.release()

	// Invariant 3: if up-to-date and reset isn't requested, no file
	// under the app-cache is modified. Re-check after acquiring the
	// lock, since a concurrent launcher of the same app may have just
	// finished extracting while we were waiting (spec.md §5).
	if !reset && isUpToDate(appDir, archiveModTime) {
		return PrepareResult{AppDir: appDir, Extracted: false}, nil
	}

	if err := os.MkdirAll(appDir, 0o755); err != nil {
		return PrepareResult{}, fmt.Errorf("cachepath: creating app cache dir %s: %w", appDir, err)
	}
	if err := clearDir(appDir); err != nil {
		return PrepareResult{}, fmt.Errorf("cachepath: clearing stale app cache %s: %w", appDir, err)
	}
	if err := extract(appDir); err != nil {
		return PrepareResult{}, fmt.Errorf("cachepath: extracting into %s: %w", appDir, err)
	}
	if err := writeMarker(appDir); err != nil {
		return PrepareResult{}, fmt.Errorf("cachepath: writing extraction marker in %s: %w", appDir, err)
	}
	return PrepareResult{AppDir: appDir, Extracted: true}, nil
}

// Reset forces the next Prepare call on this app to delete and
// re-extract, by removing the marker file if present (spec.md §3 "Reset
// is an explicit command-line override").
func (m *Manager) Reset(appID, version string) error {
	appDir, err := m.Root.AppDir(appID, version)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(appDir, markerName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cachepath: resetting %s: %w", appDir, err)
	}
	return nil
}

func isUpToDate(appDir string, archiveModTime time.Time) bool {
	info, err := os.Stat(filepath.Join(appDir, markerName))
	if err != nil {
		return false
	}
	return !info.ModTime().Before(archiveModTime)
}

func writeMarker(appDir string) error {
	return os.WriteFile(filepath.Join(appDir, markerName), []byte(time.Now().UTC().Format(time.RFC3339Nano)), 0o644)
}

func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// PrepareVolatile is the §7 recovery path: "Cache init failure -> fall
// back to a temp directory (advertised as volatile), with a warning,
// delete on launcher exit." Callers should invoke the returned cleanup
// function unconditionally when the launcher exits.
func PrepareVolatile(appID string, extract ExtractorFunc, log logr.Logger) (dir string, cleanup func(), err error) {
	dir, err = os.MkdirTemp("", "capsule-"+sanitizeID(appID)+"-")
	if err != nil {
		return "", func() {}, fmt.Errorf("cachepath: creating volatile cache dir: %w", err)
	}
	log.Info("cache initialization failed, falling back to a volatile temp directory", "dir", dir)
	if err := extract(dir); err != nil {
		os.RemoveAll(dir)
		return "", func() {}, fmt.Errorf("cachepath: extracting into volatile cache dir: %w", err)
	}
	return dir, func() { os.RemoveAll(dir) }, nil
}
