// Package imagekey generates object-store keys for stored images.
package imagekey

import (
	"strings"

	"github.com/google/uuid"
)

// Prefix is the root folder for every stored image object.
const Prefix = "image-uploads/"

// Extension is fixed: every stored image is a transcoded JPEG.
const Extension = ".jpg"

// New returns a fresh collision-resistant image key, e.g.
// "3e2f4b1a-....jpg". Keys are never reused.
func New() string {
	return uuid.NewString() + Extension
}

// ObjectPath builds the full object-store path for a user's image key:
// image-uploads/{username}/{key}.
func ObjectPath(username, key string) string {
	return Prefix + username + "/" + key
}

// KeyFromObjectPath extracts the bare image key from a full object path.
// Returns an empty string for paths outside the image prefix.
func KeyFromObjectPath(path string) string {
	if !strings.HasPrefix(path, Prefix) {
		return ""
	}
	rest := strings.TrimPrefix(path, Prefix)
	idx := strings.LastIndex(rest, "/")
	if idx < 0 || idx == len(rest)-1 {
		return ""
	}
	return rest[idx+1:]
}
