package command

import "github.com/capsulerun/capsule/internal/archivefmt"

// SanitizeArchiveRelative validates an archive-relative path used while
// building a command (e.g. an App-Class-Path entry), rejecting absolute
// paths and ".." segments exactly as archive extraction does (spec.md
// §4.6 "Path sanitization rejects absolute paths and .. segments for
// archive-relative inputs").
func SanitizeArchiveRelative(path string) (string, error) {
	return archivefmt.Normalize(path)
}

// SanitizeArchiveRelativeList sanitizes every element of a list of
// archive-relative paths.
func SanitizeArchiveRelativeList(paths []string) ([]string, error) {
	out := make([]string, len(paths))
	for i, p := range paths {
		clean, err := SanitizeArchiveRelative(p)
		if err != nil {
			return nil, err
		}
		out[i] = clean
	}
	return out, nil
}
