// Package dependency resolves Maven-style coordinates and native
// library entries against a capsule archive's embedded layout first,
// falling through to an external resolver collaborator when nothing
// embedded matches (spec.md §4.5).
package dependency

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/capsulerun/capsule/internal/archivefmt"
	"github.com/capsulerun/capsule/pkg/coordinate"
)

// ErrNoResolver is returned when a coordinate doesn't match the
// archive's embedded layout and no external resolver was configured to
// fall back to.
var ErrNoResolver = fmt.Errorf("dependency: coordinate not embedded and no external resolver is configured")

// Resolver is the C5 façade: embedded-archive lookup, with an optional
// external resolver for everything the archive doesn't carry itself.
type Resolver struct {
	archive  *archivefmt.Reader
	external *ExternalResolver
	log      logr.Logger
}

// New builds a Resolver. external may be nil, meaning only the
// embedded archive layout is ever consulted.
func New(archive *archivefmt.Reader, external *ExternalResolver, log logr.Logger) *Resolver {
	return &Resolver{archive: archive, external: external, log: log.WithName("dependency")}
}

// Resolve implements the `resolve(coords, type) -> [paths]` operation:
// embedded archive first, external resolver otherwise.
func (r *Resolver) Resolve(ctx context.Context, coord, typ string) ([]string, error) {
	if c, err := coordinate.Parse(coord); err == nil {
		path, err := embeddedLookup(r.archive, c, typ)
		if err != nil {
			return nil, err
		}
		if path != "" {
			return []string{path}, nil
		}
	} else if path, ok := embeddedLookupRaw(r.archive, coord); ok {
		return []string{path}, nil
	}
	if r.external == nil {
		return nil, ErrNoResolver
	}
	return r.external.Resolve(ctx, coord, typ)
}

// ResolveRoot implements `resolve_root(coords) -> [paths]`.
func (r *Resolver) ResolveRoot(ctx context.Context, coord string) ([]string, error) {
	if c, err := coordinate.Parse(coord); err == nil {
		path, err := embeddedLookup(r.archive, c, "jar")
		if err != nil {
			return nil, err
		}
		if path != "" {
			return []string{path}, nil
		}
	}
	if r.external == nil {
		return nil, ErrNoResolver
	}
	return r.external.ResolveRoot(ctx, coord)
}

// LatestVersion implements `latest_version(coords, type) -> string`.
// The embedded archive has no version catalog to consult, so this
// always delegates.
func (r *Resolver) LatestVersion(ctx context.Context, coord, typ string) (string, error) {
	if r.external == nil {
		return "", ErrNoResolver
	}
	return r.external.LatestVersion(ctx, coord, typ)
}

// PrintTree implements `print_tree(...)`.
func (r *Resolver) PrintTree(ctx context.Context, coords []string) ([]TreeNode, error) {
	if r.external == nil {
		return nil, ErrNoResolver
	}
	return r.external.PrintTree(ctx, coords)
}

// ResolveNative resolves every Native-Dependencies-{OS} entry and
// copies the result into destDir under its (possibly renamed) file
// name, preserving the executable bit. Entries are resolved and copied
// concurrently; a failure on one entry cancels the rest.
func (r *Resolver) ResolveNative(ctx context.Context, entries []string, destDir string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, raw := range entries {
		raw := raw
		g.Go(func() error {
			entry, err := ParseNativeEntry(raw)
			if err != nil {
				return err
			}
			return r.resolveAndCopyOne(gctx, entry, destDir)
		})
	}
	return g.Wait()
}

func (r *Resolver) resolveAndCopyOne(ctx context.Context, entry NativeEntry, destDir string) error {
	fallbackName := filepath.Base(entry.Source)
	destName := entry.DestName(fallbackName)
	destPath := filepath.Join(destDir, destName)

	if archivePath, ok := embeddedLookupRaw(r.archive, entry.Source); ok {
		rc, err := r.archive.Open(archivePath)
		if err != nil {
			return fmt.Errorf("dependency: opening embedded native dependency %s: %w", archivePath, err)
		}
		defer rc.Close()
		return copyExecutable(rc, destPath)
	}
	if c, err := coordinate.Parse(entry.Source); err == nil {
		archivePath, err := embeddedLookup(r.archive, c, "so")
		if err != nil {
			return err
		}
		if archivePath != "" {
			rc, err := r.archive.Open(archivePath)
			if err != nil {
				return fmt.Errorf("dependency: opening embedded native dependency %s: %w", archivePath, err)
			}
			defer rc.Close()
			return copyExecutable(rc, destPath)
		}
	}

	if r.external == nil {
		return fmt.Errorf("dependency: native dependency %s: %w", entry.Source, ErrNoResolver)
	}
	paths, err := r.external.Resolve(ctx, entry.Source, "native")
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("dependency: external resolver returned no file for native dependency %s", entry.Source)
	}
	f, err := os.Open(paths[0])
	if err != nil {
		return fmt.Errorf("dependency: reading resolved native dependency %s: %w", paths[0], err)
	}
	defer f.Close()
	return copyExecutable(f, destPath)
}

// copyExecutable writes src to destPath atomically (temp file + rename,
// mirroring internal/archivefmt.extractOne) with the executable bit
// set, since native libraries and startup scripts must retain it.
func copyExecutable(src io.Reader, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("dependency: creating %s: %w", filepath.Dir(destPath), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".capsule-native-*")
	if err != nil {
		return fmt.Errorf("dependency: creating temp file for %s: %w", destPath, err)
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("dependency: writing %s: %w", destPath, err)
	}
	if err := tmp.Chmod(0o755); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("dependency: chmod %s: %w", destPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("dependency: closing temp file for %s: %w", destPath, err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("dependency: renaming into place %s: %w", destPath, err)
	}
	return nil
}
