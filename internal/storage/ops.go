package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/maxth/mediadl/internal/constants"
)

var ErrInvalidFilename = errors.New("invalid filename")

// SafeStem replaces slashes so a resolved "artist - title" name can be used
// as a single file name stem.
func SafeStem(s string) string {
	return strings.ReplaceAll(s, "/", "_")
}

func EnsureDir(path string) error {
	return os.MkdirAll(path, constants.DirPermissions)
}

func WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, constants.FilePermissions)
}

// ValidateFilename accepts only a single, non-special path segment.
func ValidateFilename(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrInvalidFilename
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return ErrInvalidFilename
	}
	return nil
}

// ResolveArtifact joins a validated file name onto dir. It never returns a
// path outside dir.
func ResolveArtifact(dir, name string) (string, error) {
	if err := ValidateFilename(name); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if filepath.Dir(path) != filepath.Clean(dir) {
		return "", ErrInvalidFilename
	}
	return path, nil
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
