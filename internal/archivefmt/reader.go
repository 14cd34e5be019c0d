// Package archivefmt provides random-access reads of a capsule archive: a
// ZIP-family container holding the manifest index plus whatever embedded
// artifacts, native libraries, and application classes the manifest
// references (spec.md §4.1, §6 "Archive format").
//
// mholt/archiver/v3 (wired elsewhere in this module, see DESIGN.md) only
// exposes whole-archive Archive/Unarchive operations and cannot read a
// single named entry or enumerate entries without unpacking everything, so
// the standard library's archive/zip is used here directly.
package archivefmt

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"
)

// ErrPathEscape is returned when an entry name, once normalized, would
// resolve outside the archive/destination root (spec.md §4.1 "rejects
// entries whose normalized path escapes the destination").
var ErrPathEscape = errors.New("archivefmt: entry path escapes archive root")

// ErrNotFound is returned by Open/Stat when no entry matches the given
// name.
var ErrNotFound = fs.ErrNotExist

// Entry describes one archive member.
type Entry struct {
	Name    string
	Mode    fs.FileMode
	Size    int64
	IsDir   bool
	ModTime time.Time
}

// Reader gives random-access, by-name reads over a capsule archive and a
// stable enumeration of its entries.
type Reader struct {
	path    string
	zr      *zip.Reader
	closer  io.Closer
	modTime time.Time
	byName  map[string]*zip.File
	order   []string
}

// Open opens the archive at archivePath for random access. The returned
// Reader must be closed by the caller.
func Open(archivePath string) (*Reader, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("archivefmt: opening %s: %w", archivePath, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("archivefmt: stat %s: %w", archivePath, err)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("archivefmt: %s is not a valid archive: %w", archivePath, err)
	}

	r := &Reader{
		path:    archivePath,
		zr:      zr,
		closer:  f,
		modTime: info.ModTime(),
		byName:  map[string]*zip.File{},
	}
	for _, zf := range zr.File {
		name, err := Normalize(zf.Name)
		if err != nil {
			return nil, fmt.Errorf("archivefmt: %s: %w", archivePath, err)
		}
		r.byName[name] = zf
		r.order = append(r.order, name)
	}
	return r, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.closer.Close()
}

// Path returns the archive's filesystem path.
func (r *Reader) Path() string { return r.path }

// ModTime returns the archive file's last-modified time, used by the
// cache manager's freshness check (spec.md §3 "Cache layout invariants").
func (r *Reader) ModTime() time.Time { return r.modTime }

// Entries returns every entry in the archive, in the archive's own byte
// order (spec.md §4.1 "enumerates entries").
func (r *Reader) Entries() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		zf := r.byName[name]
		out = append(out, entryFromZipFile(name, zf))
	}
	return out
}

func entryFromZipFile(name string, zf *zip.File) Entry {
	return Entry{
		Name:    name,
		Mode:    zf.Mode(),
		Size:    int64(zf.UncompressedSize64),
		IsDir:   zf.FileInfo().IsDir(),
		ModTime: zf.Modified,
	}
}

// Has reports whether an entry by this normalized name exists.
func (r *Reader) Has(name string) bool {
	norm, err := Normalize(name)
	if err != nil {
		return false
	}
	_, ok := r.byName[norm]
	return ok
}

// Stat returns metadata for a single entry.
func (r *Reader) Stat(name string) (Entry, error) {
	norm, err := Normalize(name)
	if err != nil {
		return Entry{}, err
	}
	zf, ok := r.byName[norm]
	if !ok {
		return Entry{}, fmt.Errorf("archivefmt: %s: %w", name, ErrNotFound)
	}
	return entryFromZipFile(norm, zf), nil
}

// Open returns a reader over a single entry's decompressed bytes. Callers
// must close it.
func (r *Reader) Open(name string) (io.ReadCloser, error) {
	norm, err := Normalize(name)
	if err != nil {
		return nil, err
	}
	zf, ok := r.byName[norm]
	if !ok {
		return nil, fmt.Errorf("archivefmt: %s: %w", name, ErrNotFound)
	}
	return zf.Open()
}

// ReadAll reads a single entry fully into memory; convenient for small
// entries such as the manifest index.
func (r *Reader) ReadAll(name string) ([]byte, error) {
	rc, err := r.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Normalize validates and cleans an archive-relative entry path,
// rejecting absolute paths and any ".." segment (spec.md §4.1, §4.6 "Path
// sanitization rejects absolute paths and .. segments for archive-relative
// inputs").
func Normalize(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	if path.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, name)
	}
	cleaned := path.Clean(name)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, name)
	}
	if cleaned == "." {
		return "", nil
	}
	return cleaned, nil
}
