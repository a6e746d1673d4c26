package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/jverho/kontor/internal/domain"
)

// MenuStore owns the shared menu-configuration document. Every mutation
// rewrites the whole document with an incremented version and fresh
// timestamp. The version is advisory; it is not enforced as a
// compare-and-swap.
type MenuStore struct {
	mu   sync.Mutex
	path string
}

func NewMenuStore(path string) *MenuStore {
	return &MenuStore{path: path}
}

// Load returns the current document. A missing file reads as an empty
// version-zero document.
func (s *MenuStore) Load() (*domain.MenuConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// MergeModule replaces the entries contributed by one module with the given
// set. Existing entries are matched by their module tag, so re-activation
// never duplicates them.
func (s *MenuStore) MergeModule(slug string, entries []domain.MenuEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return err
	}

	menus := removeModuleEntries(cfg.Menus, slug)
	menus = append(menus, entries...)
	sort.SliceStable(menus, func(i, j int) bool { return menus[i].Position < menus[j].Position })

	cfg.Menus = menus
	return s.write(cfg)
}

// RemoveModule drops every entry contributed by one module. Removing an
// absent module is a no-op that still bumps the version only when entries
// actually changed.
func (s *MenuStore) RemoveModule(slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return err
	}

	menus := removeModuleEntries(cfg.Menus, slug)
	if len(menus) == len(cfg.Menus) {
		return nil
	}
	cfg.Menus = menus
	return s.write(cfg)
}

func (s *MenuStore) load() (*domain.MenuConfig, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &domain.MenuConfig{Menus: []domain.MenuEntry{}}, nil
		}
		return nil, fmt.Errorf("read menu config: %w", err)
	}
	cfg := &domain.MenuConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse menu config: %w", err)
	}
	return cfg, nil
}

// write persists via temp-file rename so readers never observe a torn
// document.
func (s *MenuStore) write(cfg *domain.MenuConfig) error {
	cfg.Version++
	cfg.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode menu config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create menu config dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write menu config: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace menu config: %w", err)
	}
	return nil
}

func removeModuleEntries(menus []domain.MenuEntry, slug string) []domain.MenuEntry {
	kept := make([]domain.MenuEntry, 0, len(menus))
	for _, entry := range menus {
		if entry.Module != slug {
			kept = append(kept, entry)
		}
	}
	return kept
}
