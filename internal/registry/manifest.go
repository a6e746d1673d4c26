package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jverho/kontor/internal/domain"
)

// ManifestLoader reads module manifests from <dir>/<slug>/module.json.
type ManifestLoader struct {
	dir string
}

func NewManifestLoader(dir string) *ManifestLoader {
	return &ManifestLoader{dir: dir}
}

// Load parses and normalizes the manifest for a module slug. Menu entry ids
// are prefixed with the module slug and tagged with it, so later merges and
// removals can be keyed on the contributing module.
func (l *ManifestLoader) Load(slug string) (*domain.Manifest, error) {
	path := filepath.Join(l.dir, slug, "module.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest %s: %w", path, domain.ErrModuleNotFound)
		}
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	var man domain.Manifest
	if err := json.Unmarshal(data, &man); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if man.Slug == "" {
		man.Slug = slug
	}
	if man.Slug != slug {
		return nil, fmt.Errorf("manifest %s declares slug %q", path, man.Slug)
	}
	if man.Name == "" {
		return nil, fmt.Errorf("manifest %s: name is required", path)
	}

	for i := range man.Menu {
		entry := &man.Menu[i]
		entry.Module = slug
		if entry.ID == "" {
			entry.ID = strings.ToLower(strings.ReplaceAll(entry.Label, " ", "-"))
		}
		if !strings.HasPrefix(entry.ID, slug+".") {
			entry.ID = slug + "." + entry.ID
		}
	}
	return &man, nil
}
