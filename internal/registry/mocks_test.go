package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jverho/kontor/internal/domain"
	"github.com/jverho/kontor/internal/store"
)

type mockModuleStore struct {
	mu        sync.Mutex
	records   map[string]domain.ModuleRecord
	statusErr error
}

func newMockModuleStore() *mockModuleStore {
	return &mockModuleStore{records: make(map[string]domain.ModuleRecord)}
}

func (s *mockModuleStore) Insert(ctx context.Context, rec *domain.ModuleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.InstalledAt.IsZero() {
		rec.InstalledAt = time.Now().UTC()
	}
	s.records[rec.Slug] = *rec
	return nil
}

func (s *mockModuleStore) GetBySlug(ctx context.Context, slug string) (*domain.ModuleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[slug]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := rec
	return &copied, nil
}

func (s *mockModuleStore) SetStatus(ctx context.Context, slug string, status domain.ModuleStatus, activatedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statusErr != nil {
		return s.statusErr
	}
	rec, ok := s.records[slug]
	if !ok {
		return store.ErrNotFound
	}
	rec.Status = status
	if activatedAt != nil {
		rec.ActivatedAt = activatedAt
	}
	s.records[slug] = rec
	return nil
}

func (s *mockModuleStore) Delete(ctx context.Context, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[slug]; !ok {
		return store.ErrNotFound
	}
	delete(s.records, slug)
	return nil
}

func (s *mockModuleStore) List(ctx context.Context) ([]domain.ModuleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]domain.ModuleRecord, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].InstalledAt.Before(records[j].InstalledAt) })
	return records, nil
}

type mockTenantDirectory struct {
	tenants []domain.Tenant
	listErr error
}

func (d *mockTenantDirectory) Create(ctx context.Context, t *domain.Tenant) error {
	d.tenants = append(d.tenants, *t)
	return nil
}

func (d *mockTenantDirectory) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	for _, t := range d.tenants {
		if t.Slug == slug {
			copied := t
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (d *mockTenantDirectory) GetBySubdomain(ctx context.Context, sub string) (*domain.Tenant, error) {
	return nil, store.ErrNotFound
}

func (d *mockTenantDirectory) GetByCustomDomain(ctx context.Context, dom string) (*domain.Tenant, error) {
	return nil, store.ErrNotFound
}

func (d *mockTenantDirectory) EarliestActive(ctx context.Context) (*domain.Tenant, error) {
	return nil, store.ErrNotFound
}

func (d *mockTenantDirectory) ListActive(ctx context.Context) ([]domain.Tenant, error) {
	if d.listErr != nil {
		return nil, d.listErr
	}
	var actives []domain.Tenant
	for _, t := range d.tenants {
		if t.IsActive() {
			actives = append(actives, t)
		}
	}
	return actives, nil
}

func (d *mockTenantDirectory) List(ctx context.Context) ([]domain.Tenant, error) {
	return d.tenants, nil
}

func (d *mockTenantDirectory) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TenantStatus) error {
	for i := range d.tenants {
		if d.tenants[i].ID == id {
			d.tenants[i].Status = status
			return nil
		}
	}
	return store.ErrNotFound
}

func activeTenant(slug string) domain.Tenant {
	return domain.Tenant{
		ID:        uuid.New(),
		Name:      slug,
		Slug:      slug,
		Status:    domain.TenantActive,
		DBName:    "tenant_" + slug,
		CreatedAt: time.Now().UTC(),
	}
}
