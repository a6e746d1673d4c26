package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TenantDirectory is the shared catalog of tenants. Lookups return tenants
// regardless of status; eligibility is the resolver's decision.
type TenantDirectory interface {
	Create(ctx context.Context, t *Tenant) error
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error)
	GetByCustomDomain(ctx context.Context, domain string) (*Tenant, error)
	EarliestActive(ctx context.Context) (*Tenant, error)
	ListActive(ctx context.Context) ([]Tenant, error)
	List(ctx context.Context) ([]Tenant, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status TenantStatus) error
}

// CompanyLookup reads companies from a single tenant's database. Every query
// filters on tenant_id even though the database is already tenant-scoped.
type CompanyLookup interface {
	GetByID(ctx context.Context, tenantID, companyID uuid.UUID) (*Company, error)
	GetPrimary(ctx context.Context, tenantID uuid.UUID) (*Company, error)
}

type ModuleStore interface {
	Insert(ctx context.Context, rec *ModuleRecord) error
	GetBySlug(ctx context.Context, slug string) (*ModuleRecord, error)
	SetStatus(ctx context.Context, slug string, status ModuleStatus, activatedAt *time.Time) error
	Delete(ctx context.Context, slug string) error
	List(ctx context.Context) ([]ModuleRecord, error)
}
