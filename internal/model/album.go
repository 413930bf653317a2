package model

import (
	"path/filepath"
	"regexp"
	"strings"
)

// TrackExtension is appended to every downloaded track name.
const TrackExtension = ".mp3"

var (
	invalidChars   = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	repeatedSpaces = regexp.MustCompile(`\s+`)
)

// AlbumFolder returns the folder an album is downloaded into: root/album.
//
// With sanitize set, the album label is passed through SanitizeFileName so
// that it always stays a single path segment below root.
func AlbumFolder(root, album string, sanitize bool) string {
	if sanitize {
		album = SanitizeFileName(album)
	}
	return filepath.Join(root, album)
}

// TrackPath returns folder/<name>.mp3.
func TrackPath(folder, name string, sanitize bool) string {
	if sanitize {
		name = SanitizeFileName(name)
	}
	return filepath.Join(folder, name+TrackExtension)
}

// SanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Multiple whitespace is collapsed to single space
//   - Leading and trailing whitespace is removed
//   - Trailing dots and the spaces between them are removed (Windows limitation)
//
// A name that ends up empty becomes "_", so the result is never "", "." or "..".
//
// Example:
//
//	SanitizeFileName("Song: Part 1/2") // Returns "Song_ Part 1_2"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = repeatedSpaces.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	name = strings.TrimRight(name, ". ")

	switch name {
	case "", ".", "..":
		return "_"
	}
	return name
}
