package notepath

// Package notepath maps catalog fields (university/course/subject) to storage
// keys and public URLs. It is purely computational: directory creation and any
// other filesystem effects belong to the storage layer.

import (
	"path"
	"strings"
)

// PublicPrefix is the URL prefix under which note files are served.
const PublicPrefix = "/uploads/"

// Location is the resolved placement of a note file: the store-relative key
// used by the blob store and the public path persisted on the Note record.
type Location struct {
	Key        string
	PublicPath string
}

// Sanitize turns arbitrary catalog text into a filesystem-safe path segment.
// Every character outside [A-Za-z0-9] becomes '_', and the result is
// lowercased. Sanitize(Sanitize(x)) == Sanitize(x) for all x, so repeated
// uploads for the same catalog triple always land in the same directory.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Locate computes where a note file belongs for the given catalog triple and
// filename. The key is relative to the storage root; the public path is what
// gets stored in the Note record and served over HTTP.
func Locate(university, course, subject, filename string) Location {
	key := path.Join("notes", Sanitize(university), Sanitize(course), Sanitize(subject), filename)
	return Location{
		Key:        key,
		PublicPath: PublicPrefix + key,
	}
}

// KeyFromPublic converts a stored public path back into a storage key.
// It is the inverse of Location.PublicPath for keys produced by Locate.
func KeyFromPublic(publicPath string) string {
	return strings.TrimPrefix(publicPath, PublicPrefix)
}
