package launcher

import (
	"github.com/go-logr/logr"

	"github.com/capsulerun/capsule/internal/archivefmt"
	"github.com/capsulerun/capsule/internal/cachepath"
	"github.com/capsulerun/capsule/internal/dependency"
	"github.com/capsulerun/capsule/internal/manifest"
)

// extractionRequired implements spec.md §4.3's decision directly over a
// resolvedManifest.
func extractionRequired(rm resolvedManifest, script string) bool {
	nativeDeps := append(append(append([]string{},
		rm.list(manifest.NativeDependenciesLinux)...),
		rm.list(manifest.NativeDependenciesMac)...),
		rm.list(manifest.NativeDependenciesWin)...)
	hasRename := dependency.HasAnyRename(nativeDeps)

	extractAttr, extractPresent := rm.get(manifest.Extract)
	mainArtifact, _ := rm.get(manifest.ApplicationArtifact)

	return cachepath.ExtractionRequired(script != "", hasRename, extractAttr, extractPresent, mainArtifact)
}

// cacheResult is what prepareCache hands back to command building.
type cacheResult struct {
	AppDir    string // empty if this capsule runs from the archive in place
	Extracted bool
	Volatile  bool
	Cleanup   func()
}

// prepareCache wires cachepath.Manager/PrepareVolatile against the
// archive's own extraction, falling back to a volatile temp directory on
// cache-root failure per spec.md §7's recovery policy.
func prepareCache(
	archive *archivefmt.Reader,
	root cachepath.Root,
	appID, version string,
	reset bool,
	log logr.Logger,
) (cacheResult, error) {
	extract := func(dest string) error {
		return archivefmt.Extract(archive, dest, excludeFromExtraction)
	}

	if err := root.Init(); err != nil {
		log.Error(err, "cache root initialization failed, falling back to a volatile directory")
		dir, cleanup, verr := cachepath.PrepareVolatile(appID, extract, log)
		if verr != nil {
			return cacheResult{}, wrapExit(ExitCacheIOFailure, "cache-io-failure", verr)
		}
		return cacheResult{AppDir: dir, Extracted: true, Volatile: true, Cleanup: cleanup}, nil
	}

	mgr := cachepath.NewManager(root, log)
	if reset {
		if err := mgr.Reset(appID, version); err != nil {
			return cacheResult{}, wrapExit(ExitCacheIOFailure, "cache-io-failure", err)
		}
	}
	res, err := mgr.Prepare(appID, version, archive.ModTime(), true, reset, extract)
	if err != nil {
		log.Error(err, "app cache preparation failed, falling back to a volatile directory")
		dir, cleanup, verr := cachepath.PrepareVolatile(appID, extract, log)
		if verr != nil {
			return cacheResult{}, wrapExit(ExitCacheIOFailure, "cache-io-failure", verr)
		}
		return cacheResult{AppDir: dir, Extracted: true, Volatile: true, Cleanup: cleanup}, nil
	}
	return cacheResult{AppDir: res.AppDir, Extracted: res.Extracted}, nil
}
