// Package fonts locates TTF/OTF files for the overlay text.
package fonts

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Exts are the file extensions considered font files.
var Exts = []string{".ttf", ".otf"}

// BaseDirs returns candidate base directories for fonts (relative to process cwd).
func BaseDirs() []string {
	return []string{"assets/fonts", "../../assets/fonts"}
}

// ScanDir returns relative paths of all font files under dir (e.g. "Inter/Inter-Regular.ttf"),
// sorted, with forward slashes. A missing dir yields no paths and no error.
func ScanDir(dir string) ([]string, error) {
	var out []string
	dir = filepath.Clean(dir)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || !isFont(path) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	return out, err
}

func isFont(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Exts {
		if ext == e {
			return true
		}
	}
	return false
}

// normalizeForMatch lowercases and removes spaces, dashes, and underscores for fuzzy matching.
func normalizeForMatch(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}

// Find searches dirs for a font whose relative path contains search (fuzzy: case, spaces,
// dashes and underscores are ignored). An empty search matches any font. When several
// match, a path containing "regular" wins. It returns the full path.
func Find(search string, dirs ...string) (string, error) {
	norm := normalizeForMatch(strings.TrimSuffix(search, filepath.Ext(search)))
	var first string
	for _, base := range dirs {
		list, err := ScanDir(base)
		if err != nil {
			continue
		}
		for _, rel := range list {
			if !strings.Contains(normalizeForMatch(rel), norm) {
				continue
			}
			full := filepath.Join(base, filepath.FromSlash(rel))
			if strings.Contains(strings.ToLower(rel), "regular") {
				return full, nil
			}
			if first == "" {
				first = full
			}
		}
	}
	if first == "" {
		return "", os.ErrNotExist
	}
	return first, nil
}

// Resolve turns a configured font into a file path: an existing file is used as is,
// anything else is searched by name in BaseDirs. An empty name picks any available font.
func Resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name != "" && isFont(name) {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return Find(name, BaseDirs()...)
}
