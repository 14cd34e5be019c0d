package launcher

import (
	"path/filepath"

	"github.com/capsulerun/capsule/internal/caplet"
	"github.com/capsulerun/capsule/internal/manifest"
)

// materializePath turns an embedded-archive resolution's archive-relative
// path into a real, independently-openable file by joining it with
// capsuleDir (spec.md §4.3: extraction lays the whole archive out on
// disk, so an embedded entry's path becomes a real file under it).
// Absolute paths (an external resolver's own downloads) and the
// never-extracted case (capsuleDir == "") pass through unchanged.
func materializePath(path, capsuleDir string) string {
	if path == "" || capsuleDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(capsuleDir, filepath.FromSlash(path))
}

// resolvedManifest pairs a parsed manifest with the selection context
// and caplet chain it must be read through, so every attribute lookup
// in the rest of the package goes through the same two steps spec.md
// §4.2/§4.8 requires: section selection, then caplet override.
type resolvedManifest struct {
	m     *manifest.Manifest
	ctx   manifest.SelectionContext
	chain *caplet.Chain
}

// get applies the caplet chain on top of the manifest's own section
// resolution, mirroring what command-building attribute reads must see
// (spec.md §4.8 "each caplet sees the previous caplet's view; attribute
// reads during command building go through the chain").
func (r resolvedManifest) get(attr string) (string, bool) {
	base, ok := r.m.Get(attr, r.ctx)
	if r.chain == nil {
		return base, ok
	}
	return r.chain.Attribute(attr, base, ok)
}

func (r resolvedManifest) list(attr string) []string {
	return r.m.GetList(attr, r.ctx)
}

func (r resolvedManifest) getMap(attr string, defaultValue string) map[string]string {
	return r.m.GetMap(attr, r.ctx, defaultValue)
}

// lookupFunc adapts a resolvedManifest into a caplet.AttributeLookup,
// bound to the pre-runtime SelectionContext so caplets can read
// constraint-ish attributes before a chain even exists for them to be
// folded through (see resolveCaplets).
func lookupFunc(m *manifest.Manifest, ctx manifest.SelectionContext) caplet.AttributeLookup {
	return func(name string) (string, bool) {
		return m.Get(name, ctx)
	}
}
