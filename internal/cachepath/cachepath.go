// Package cachepath manages the process-wide and per-application caches
// a launched capsule extracts into on the host (spec.md §3 "Cache layout
// invariants", §4.3).
package cachepath

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

const (
	appsDirName = "apps"
	depsDirName = "deps"
	defaultName = "capsule"
)

// ErrInvalidAppID is returned when a derived or declared application ID
// would escape the apps/ directory or contains a path separator (spec.md
// §3 "ID ... never contains path separators and must not escape apps/").
type ErrInvalidAppID struct {
	ID string
}

func (e *ErrInvalidAppID) Error() string {
	return fmt.Sprintf("cachepath: invalid application id %q", e.ID)
}

var validAppID = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateAppID enforces spec.md §3's app-ID invariant.
func ValidateAppID(id string) error {
	if id == "" || strings.Contains(id, "/") || strings.Contains(id, `\`) || id == "." || id == ".." || !validAppID.MatchString(id) {
		return &ErrInvalidAppID{ID: id}
	}
	return nil
}

// Root is the process-wide cache root: $CAPSULE_CACHE_DIR if set,
// otherwise <user-local>/<CAPSULE_CACHE_NAME or "capsule">, where
// <user-local> is $HOME on Unix-like systems and %LOCALAPPDATA% (with
// fallbacks) on Windows (spec.md §3).
type Root struct {
	Path string
}

// ResolveRoot computes the deterministic cache root per spec.md §3,
// reading CAPSULE_CACHE_DIR and CAPSULE_CACHE_NAME from env.
func ResolveRoot(env func(string) string) (Root, error) {
	if dir := env("CAPSULE_CACHE_DIR"); dir != "" {
		return Root{Path: dir}, nil
	}
	name := env("CAPSULE_CACHE_NAME")
	if name == "" {
		name = defaultName
	}
	base, err := userLocalDir(env)
	if err != nil {
		return Root{}, err
	}
	return Root{Path: filepath.Join(base, name)}, nil
}

func userLocalDir(env func(string) string) (string, error) {
	if runtime.GOOS == "windows" {
		for _, key := range []string{"LOCALAPPDATA", "USERPROFILE"} {
			if v := env(key); v != "" {
				return v, nil
			}
		}
		if home, home2 := env("HOMEDRIVE"), env("HOMEPATH"); home != "" && home2 != "" {
			return home + home2, nil
		}
		return "", fmt.Errorf("cachepath: unable to determine a user-local directory (no LOCALAPPDATA/USERPROFILE/HOMEDRIVE+HOMEPATH)")
	}
	if home := env("HOME"); home != "" {
		return home, nil
	}
	return "", fmt.Errorf("cachepath: unable to determine a user-local directory (no HOME)")
}

// AppsDir is the shared per-application cache directory.
func (r Root) AppsDir() string { return filepath.Join(r.Path, appsDirName) }

// DepsDir is the shared dependency store, owned by the external resolver
// (spec.md §5 "The deps cache is resolver-owned").
func (r Root) DepsDir() string { return filepath.Join(r.Path, depsDirName) }

// Init creates apps/ and deps/ under the root if they don't already
// exist.
func (r Root) Init() error {
	for _, dir := range []string{r.AppsDir(), r.DepsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cachepath: initializing %s: %w", dir, err)
		}
	}
	return nil
}

// AppDir returns the per-application cache directory for id, suffixed
// with version when version is non-empty, e.g. "apps/com.acme.widget_1.0"
// (spec.md §3 "Per-application directory is apps/<Application-ID>[_<version>]").
func (r Root) AppDir(id, version string) (string, error) {
	if err := ValidateAppID(id); err != nil {
		return "", err
	}
	name := id
	if version != "" {
		name = id + "_" + version
	}
	return filepath.Join(r.AppsDir(), name), nil
}
