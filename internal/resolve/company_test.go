package resolve

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jverho/kontor/internal/domain"
	"github.com/jverho/kontor/internal/store"
)

type mockCompanies struct {
	companies []domain.Company
}

func (m *mockCompanies) GetByID(ctx context.Context, tenantID, companyID uuid.UUID) (*domain.Company, error) {
	for _, c := range m.companies {
		if c.ID == companyID && c.TenantID == tenantID {
			copied := c
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockCompanies) GetPrimary(ctx context.Context, tenantID uuid.UUID) (*domain.Company, error) {
	var owned []domain.Company
	for _, c := range m.companies {
		if c.TenantID == tenantID {
			owned = append(owned, c)
		}
	}
	if len(owned) == 0 {
		return nil, store.ErrNotFound
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.Before(owned[j].CreatedAt) })
	return &owned[0], nil
}

func TestCompanyScoper_ExplicitID(t *testing.T) {
	tenant := &domain.Tenant{ID: uuid.New(), Slug: "acme"}
	target := domain.Company{ID: uuid.New(), TenantID: tenant.ID, Name: "Acme Trading", CreatedAt: time.Now()}
	companies := &mockCompanies{companies: []domain.Company{target}}

	got, err := CompanyScoper{}.Resolve(context.Background(), companies, tenant, target.ID.String())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.ID != target.ID {
		t.Errorf("expected company %s, got %s", target.ID, got.ID)
	}
}

func TestCompanyScoper_ExplicitIDNotOwned(t *testing.T) {
	tenant := &domain.Tenant{ID: uuid.New(), Slug: "acme"}
	other := domain.Company{ID: uuid.New(), TenantID: uuid.New(), Name: "Someone Else"}
	companies := &mockCompanies{companies: []domain.Company{other}}

	_, err := CompanyScoper{}.Resolve(context.Background(), companies, tenant, other.ID.String())
	if !errors.Is(err, domain.ErrNoCompanyFound) {
		t.Fatalf("expected ErrNoCompanyFound for foreign company id, got %v", err)
	}
}

func TestCompanyScoper_ExplicitIDInvalid(t *testing.T) {
	tenant := &domain.Tenant{ID: uuid.New(), Slug: "acme"}

	_, err := CompanyScoper{}.Resolve(context.Background(), &mockCompanies{}, tenant, "not-a-uuid")
	if !errors.Is(err, domain.ErrNoCompanyFound) {
		t.Fatalf("expected ErrNoCompanyFound for malformed id, got %v", err)
	}
}

func TestCompanyScoper_PrimaryIsEarliest(t *testing.T) {
	tenant := &domain.Tenant{ID: uuid.New(), Slug: "acme"}
	base := time.Now().Add(-time.Hour)
	companies := &mockCompanies{companies: []domain.Company{
		{ID: uuid.New(), TenantID: tenant.ID, Name: "Second", CreatedAt: base.Add(time.Minute)},
		{ID: uuid.New(), TenantID: tenant.ID, Name: "First", CreatedAt: base},
	}}

	got, err := CompanyScoper{}.Resolve(context.Background(), companies, tenant, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Name != "First" {
		t.Errorf("expected earliest-created company, got %q", got.Name)
	}
}

func TestCompanyScoper_NoCompanies(t *testing.T) {
	tenant := &domain.Tenant{ID: uuid.New(), Slug: "empty"}

	_, err := CompanyScoper{}.Resolve(context.Background(), &mockCompanies{}, tenant, "")
	if !errors.Is(err, domain.ErrNoCompanyFound) {
		t.Fatalf("expected ErrNoCompanyFound, got %v", err)
	}
	if errors.Is(err, domain.ErrTenantNotResolved) {
		t.Fatal("NoCompanyFound must stay distinct from TenantNotResolved")
	}
}
