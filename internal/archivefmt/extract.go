package archivefmt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExcludeFunc decides whether an entry should be skipped during
// extraction.
type ExcludeFunc func(name string) bool

// Extract writes every entry not rejected by exclude into dest, preserving
// each entry's executable bit (spec.md §4.1 "preserves unix executable
// bits (or restores them during extraction)"). Each file is written to a
// temporary sibling and renamed into place so a concurrent reader never
// observes a partially-written file (spec.md §4.3 "Writes are atomic per
// file").
func Extract(r *Reader, dest string, exclude ExcludeFunc) error {
	for _, e := range r.Entries() {
		if exclude != nil && exclude(e.Name) {
			continue
		}
		target := filepath.Join(dest, filepath.FromSlash(e.Name))
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(filepath.Separator)) && target != filepath.Clean(dest) {
			return fmt.Errorf("archivefmt: %w: %s", ErrPathEscape, e.Name)
		}
		if e.IsDir {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("archivefmt: creating directory %s: %w", target, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("archivefmt: creating directory %s: %w", filepath.Dir(target), err)
		}
		if err := extractOne(r, e, target); err != nil {
			return err
		}
	}
	return nil
}

func extractOne(r *Reader, e Entry, target string) error {
	src, err := r.Open(e.Name)
	if err != nil {
		return fmt.Errorf("archivefmt: opening entry %s: %w", e.Name, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(target), ".capsule-extract-*")
	if err != nil {
		return fmt.Errorf("archivefmt: creating temp file for %s: %w", e.Name, err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("archivefmt: writing %s: %w", e.Name, err)
	}
	mode := e.Mode
	if mode == 0 {
		mode = 0o644
	}
	if err := tmp.Chmod(mode.Perm()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("archivefmt: chmod %s: %w", e.Name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("archivefmt: closing temp file for %s: %w", e.Name, err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("archivefmt: renaming into place %s: %w", e.Name, err)
	}
	return nil
}
