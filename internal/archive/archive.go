// Package archive unpacks zipped model bundles (a .gltf with its buffers and textures).
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoModel is returned when an archive holds no glTF file.
var ErrNoModel = errors.New("archive: no .glb or .gltf file")

// maxFileSize bounds a single extracted entry.
const maxFileSize = 512 << 20

// Unzip extracts zipPath into destDir, preserving directory structure.
// destDir is created if needed. Entries that would land outside destDir are skipped.
// Returns the extracted file paths.
func Unzip(zipPath, destDir string) (extracted []string, err error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("unzip: %w", err)
	}
	defer r.Close()
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("unzip: %w", err)
	}
	absDir, err := filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("unzip: %w", err)
	}
	for _, f := range r.File {
		dest := filepath.Clean(filepath.Join(destDir, f.Name))
		absDest, err := filepath.Abs(dest)
		if err != nil {
			return nil, fmt.Errorf("unzip: %w", err)
		}
		if !strings.HasPrefix(absDest, absDir+string(os.PathSeparator)) {
			continue
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0755); err != nil {
				return nil, fmt.Errorf("unzip: %w", err)
			}
			continue
		}
		if err := extract(f, dest); err != nil {
			return nil, err
		}
		extracted = append(extracted, dest)
	}
	return extracted, nil
}

func extract(f *zip.File, dest string) error {
	if f.UncompressedSize64 > maxFileSize {
		return fmt.Errorf("unzip: %s: %d bytes exceeds limit", f.Name, f.UncompressedSize64)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("unzip: %w", err)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("unzip: %w", err)
	}
	defer rc.Close()
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("unzip: %w", err)
	}
	_, err = io.Copy(out, io.LimitReader(rc, maxFileSize))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("unzip: %s: %w", f.Name, err)
	}
	return nil
}

// FindModel picks the model among extracted files: the shallowest .glb or .gltf, ties
// broken by name. Files under __MACOSX are ignored.
func FindModel(files []string) (string, error) {
	var models []string
	for _, f := range files {
		slashed := filepath.ToSlash(f)
		if strings.Contains(slashed, "__MACOSX/") {
			continue
		}
		switch strings.ToLower(filepath.Ext(f)) {
		case ".glb", ".gltf":
			models = append(models, f)
		}
	}
	if len(models) == 0 {
		return "", ErrNoModel
	}
	sort.Slice(models, func(i, j int) bool {
		di := strings.Count(filepath.ToSlash(models[i]), "/")
		dj := strings.Count(filepath.ToSlash(models[j]), "/")
		if di != dj {
			return di < dj
		}
		return models[i] < models[j]
	})
	return models[0], nil
}
