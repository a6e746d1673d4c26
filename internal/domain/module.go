package domain

import "time"

type ModuleStatus string

const (
	ModuleActive   ModuleStatus = "active"
	ModuleInactive ModuleStatus = "inactive"
)

// ModuleRecord is the persisted state of an installed module. It is the
// source of truth; the in-memory registry mirror and per-tenant directories
// are rebuildable caches of it.
type ModuleRecord struct {
	Slug        string         `json:"slug"`
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Status      ModuleStatus   `json:"status"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	InstalledAt time.Time      `json:"installed_at"`
	ActivatedAt *time.Time     `json:"activated_at,omitempty"`
}

func (m *ModuleRecord) IsActive() bool {
	return m.Status == ModuleActive
}

// Manifest describes a module as declared by its module.json file.
type Manifest struct {
	Slug     string         `json:"slug"`
	Name     string         `json:"name"`
	Version  string         `json:"version"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Menu     []MenuEntry    `json:"menu,omitempty"`
}

// MenuEntry is one navigation item contributed by a module. ID is prefixed
// with the contributing module's slug so merges stay idempotent.
type MenuEntry struct {
	ID       string `json:"id"`
	Module   string `json:"module"`
	Label    string `json:"label"`
	Path     string `json:"path"`
	Icon     string `json:"icon,omitempty"`
	Position int    `json:"position"`
}

// MenuConfig is the shared menu document. Version increments on every
// mutation; it is advisory (not enforced as a compare-and-swap).
type MenuConfig struct {
	Menus     []MenuEntry `json:"menus"`
	Version   int         `json:"version"`
	UpdatedAt time.Time   `json:"updated_at"`
}
