package ioutils

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	invalidNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots     = regexp.MustCompile(`\.+$`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
)

// WriteFile writes data next to path and renames it into place, so a
// reader never sees a partial file.
func WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// SanitizeFileName makes name safe as a single path element on every
// platform, Windows included.
//
//	SanitizeFileName("Song: Part 1/2")      // "Song_ Part 1_2"
//	SanitizeFileName("Track...")            // "Track"
//	SanitizeFileName("Name   with  spaces") // "Name with spaces"
func SanitizeFileName(name string) string {
	name = invalidNameChars.ReplaceAllString(name, "_")
	name = whitespaceRuns.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	return trailingDots.ReplaceAllString(name, "")
}

// EnsureDir creates path and its parents.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// FileSize returns the size of the file at path, or -1 when it does not
// exist.
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return -1
	}
	return info.Size()
}
