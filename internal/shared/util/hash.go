package util

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"strings"
)

// UserKey returns a short, stable, path-safe stand-in for a user id so raw
// ids never appear in object storage paths.
func UserKey(uid string) string {
	sum := sha256.Sum256([]byte(uid))
	return hex.EncodeToString(sum[:12])
}

// ObjectKey builds "<folder>/<user key>/<file>". File names that try to
// escape the folder are rejected.
func ObjectKey(folder, uid, fileName string) (string, error) {
	name, err := SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	return path.Join(strings.Trim(folder, "/"), UserKey(uid), name), nil
}
