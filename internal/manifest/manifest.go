// Package manifest reads the optional part manifest that ships next to a model asset.
// A manifest maps a part key to an exact node name or slash-joined node path, e.g.
//
//	parts:
//	  front: Mandala/Mandala_Schicht_A
//	  back: Mandala_Schicht_B
//
// and takes precedence over substring matching when present.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Suffix is appended to the asset path (without extension) to locate its manifest.
const Suffix = ".parts.yaml"

// Manifest maps part keys to node names or paths.
type Manifest struct {
	Parts map[string]string `yaml:"parts"`
}

// Lookup returns the node reference for part, if the manifest names it.
func (m *Manifest) Lookup(part string) (string, bool) {
	if m == nil {
		return "", false
	}
	ref, ok := m.Parts[part]
	ref = strings.TrimSpace(ref)
	return ref, ok && ref != ""
}

// Empty reports whether the manifest names no part.
func (m *Manifest) Empty() bool {
	return m == nil || len(m.Parts) == 0
}

// Merge returns a manifest where entries of override win over those of m.
func (m *Manifest) Merge(override *Manifest) *Manifest {
	out := &Manifest{Parts: map[string]string{}}
	for _, src := range []*Manifest{m, override} {
		if src == nil {
			continue
		}
		for k, v := range src.Parts {
			out.Parts[k] = v
		}
	}
	return out
}

// PathFor returns the sidecar manifest path for an asset: "a/b/model.glb" -> "a/b/model.parts.yaml".
func PathFor(assetPath string) string {
	ext := filepath.Ext(assetPath)
	return strings.TrimSuffix(assetPath, ext) + Suffix
}

// Parse decodes a manifest document.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	if m.Parts == nil {
		m.Parts = map[string]string{}
	}
	return &m, nil
}

// LoadFor reads the sidecar manifest of assetPath. A missing file is not an error;
// it returns (nil, nil).
func LoadFor(assetPath string) (*Manifest, error) {
	data, err := os.ReadFile(PathFor(assetPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return Parse(data)
}
