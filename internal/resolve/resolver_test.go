package resolve

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jverho/kontor/internal/domain"
	"github.com/jverho/kontor/internal/store"
)

// mockDirectory is an in-memory tenant directory.
type mockDirectory struct {
	tenants   []domain.Tenant
	lookupErr error
}

func (d *mockDirectory) Create(ctx context.Context, t *domain.Tenant) error {
	d.tenants = append(d.tenants, *t)
	return nil
}

func (d *mockDirectory) find(match func(domain.Tenant) bool) (*domain.Tenant, error) {
	if d.lookupErr != nil {
		return nil, d.lookupErr
	}
	for _, t := range d.tenants {
		if match(t) {
			copied := t
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (d *mockDirectory) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	return d.find(func(t domain.Tenant) bool { return t.Slug == slug })
}

func (d *mockDirectory) GetBySubdomain(ctx context.Context, sub string) (*domain.Tenant, error) {
	return d.find(func(t domain.Tenant) bool { return t.Subdomain == sub })
}

func (d *mockDirectory) GetByCustomDomain(ctx context.Context, dom string) (*domain.Tenant, error) {
	return d.find(func(t domain.Tenant) bool { return t.CustomDomain == dom })
}

func (d *mockDirectory) EarliestActive(ctx context.Context) (*domain.Tenant, error) {
	if d.lookupErr != nil {
		return nil, d.lookupErr
	}
	var actives []domain.Tenant
	for _, t := range d.tenants {
		if t.IsActive() {
			actives = append(actives, t)
		}
	}
	if len(actives) == 0 {
		return nil, store.ErrNotFound
	}
	sort.Slice(actives, func(i, j int) bool { return actives[i].CreatedAt.Before(actives[j].CreatedAt) })
	return &actives[0], nil
}

func (d *mockDirectory) ListActive(ctx context.Context) ([]domain.Tenant, error) {
	var actives []domain.Tenant
	for _, t := range d.tenants {
		if t.IsActive() {
			actives = append(actives, t)
		}
	}
	return actives, nil
}

func (d *mockDirectory) List(ctx context.Context) ([]domain.Tenant, error) {
	return d.tenants, nil
}

func (d *mockDirectory) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TenantStatus) error {
	for i := range d.tenants {
		if d.tenants[i].ID == id {
			d.tenants[i].Status = status
			return nil
		}
	}
	return store.ErrNotFound
}

func testTenant(slug, subdomain string, status domain.TenantStatus, createdAt time.Time) domain.Tenant {
	return domain.Tenant{
		ID:        uuid.New(),
		Name:      slug,
		Slug:      slug,
		Subdomain: subdomain,
		Status:    status,
		DBName:    "tenant_" + slug,
		CreatedAt: createdAt,
	}
}

func TestResolver_CookieOutranksSubdomain(t *testing.T) {
	base := time.Now().Add(-time.Hour)
	dir := &mockDirectory{tenants: []domain.Tenant{
		testTenant("acme", "acme", domain.TenantActive, base),
		testTenant("beta", "beta", domain.TenantActive, base.Add(time.Minute)),
	}}
	r := NewResolver(dir, zap.NewNop())

	tenant, source, err := r.Resolve(context.Background(), []domain.Signal{
		{Source: domain.SignalSubdomain, Value: "beta"},
		{Source: domain.SignalCookie, Value: "acme"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tenant.Slug != "acme" {
		t.Errorf("cookie should outrank subdomain, resolved %q", tenant.Slug)
	}
	if source != domain.SignalCookie {
		t.Errorf("expected cookie source, got %q", source)
	}
}

func TestResolver_InactiveTenantNeverResolves(t *testing.T) {
	base := time.Now().Add(-time.Hour)
	suspended := testTenant("beta", "beta", domain.TenantSuspended, base)
	suspended.CustomDomain = "erp.beta.com"

	signals := map[string]domain.Signal{
		"cookie":       {Source: domain.SignalCookie, Value: "beta"},
		"path":         {Source: domain.SignalPath, Value: "beta"},
		"subdomain":    {Source: domain.SignalSubdomain, Value: "beta"},
		"customDomain": {Source: domain.SignalCustomDomain, Value: "erp.beta.com"},
	}

	for name, sig := range signals {
		t.Run(name, func(t *testing.T) {
			dir := &mockDirectory{tenants: []domain.Tenant{suspended}}
			r := NewResolver(dir, zap.NewNop())

			_, _, err := r.Resolve(context.Background(), []domain.Signal{sig})
			if !errors.Is(err, domain.ErrTenantNotResolved) {
				t.Fatalf("expected ErrTenantNotResolved, got %v", err)
			}
		})
	}
}

// A signal that matches an inactive tenant halts the chain; the anonymous
// fallback must not kick in just because an active tenant exists.
func TestResolver_InactiveMatchHaltsBeforeFallback(t *testing.T) {
	base := time.Now().Add(-time.Hour)
	dir := &mockDirectory{tenants: []domain.Tenant{
		testTenant("acme", "acme", domain.TenantActive, base),
		testTenant("beta", "beta", domain.TenantSuspended, base.Add(time.Minute)),
	}}
	r := NewResolver(dir, zap.NewNop())

	_, _, err := r.Resolve(context.Background(), []domain.Signal{
		{Source: domain.SignalPath, Value: "beta"},
	})
	if !errors.Is(err, domain.ErrTenantNotResolved) {
		t.Fatalf("expected ErrTenantNotResolved, got %v", err)
	}
}

func TestResolver_UnmatchedSignalFallsBack(t *testing.T) {
	base := time.Now().Add(-time.Hour)
	dir := &mockDirectory{tenants: []domain.Tenant{
		testTenant("acme", "acme", domain.TenantActive, base),
	}}
	r := NewResolver(dir, zap.NewNop())

	tenant, source, err := r.Resolve(context.Background(), []domain.Signal{
		{Source: domain.SignalPath, Value: "ghost"},
	})
	if err != nil {
		t.Fatalf("expected fallback resolution, got %v", err)
	}
	if tenant.Slug != "acme" || source != SignalFallback {
		t.Errorf("expected acme via fallback, got %q via %q", tenant.Slug, source)
	}
}

func TestResolver_NoSignalsFallsBackToEarliestActive(t *testing.T) {
	base := time.Now().Add(-time.Hour)
	dir := &mockDirectory{tenants: []domain.Tenant{
		testTenant("newer", "newer", domain.TenantActive, base.Add(time.Minute)),
		testTenant("older", "older", domain.TenantActive, base),
	}}
	r := NewResolver(dir, zap.NewNop())

	tenant, source, err := r.Resolve(context.Background(), nil)
	if err != nil {
		t.Fatalf("expected fallback resolution, got %v", err)
	}
	if tenant.Slug != "older" {
		t.Errorf("fallback should pick the earliest-created active tenant, got %q", tenant.Slug)
	}
	if source != SignalFallback {
		t.Errorf("expected fallback source, got %q", source)
	}
}

func TestResolver_EmptyDirectory(t *testing.T) {
	r := NewResolver(&mockDirectory{}, zap.NewNop())

	_, _, err := r.Resolve(context.Background(), nil)
	if !errors.Is(err, domain.ErrTenantNotResolved) {
		t.Fatalf("expected ErrTenantNotResolved, got %v", err)
	}
}

// A genuine directory failure must propagate, never be masked by the
// anonymous fallback.
func TestResolver_DirectoryErrorNotMasked(t *testing.T) {
	lookupErr := errors.New("connection reset")
	dir := &mockDirectory{lookupErr: lookupErr}
	r := NewResolver(dir, zap.NewNop())

	_, _, err := r.Resolve(context.Background(), []domain.Signal{
		{Source: domain.SignalPath, Value: "acme"},
	})
	if !errors.Is(err, lookupErr) {
		t.Fatalf("expected wrapped lookup error, got %v", err)
	}
	if errors.Is(err, domain.ErrTenantNotResolved) {
		t.Fatal("lookup error must not be downgraded to ErrTenantNotResolved")
	}
}

func TestResolver_CookieMatchesSubdomainValue(t *testing.T) {
	base := time.Now().Add(-time.Hour)
	tenant := testTenant("acme-corp", "acme", domain.TenantActive, base)
	dir := &mockDirectory{tenants: []domain.Tenant{tenant}}
	r := NewResolver(dir, zap.NewNop())

	// Cookie carries the subdomain, not the slug.
	resolved, _, err := r.Resolve(context.Background(), []domain.Signal{
		{Source: domain.SignalCookie, Value: "acme"},
	})
	if err != nil {
		t.Fatalf("expected resolution, got %v", err)
	}
	if resolved.Slug != "acme-corp" {
		t.Errorf("expected acme-corp, got %q", resolved.Slug)
	}
}
