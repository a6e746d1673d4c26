package domain

import (
	"time"

	"github.com/google/uuid"
)

type TenantStatus string

const (
	TenantActive       TenantStatus = "active"
	TenantSuspended    TenantStatus = "suspended"
	TenantProvisioning TenantStatus = "provisioning"
	TenantDeleted      TenantStatus = "deleted"
)

// Tenant is one row of the shared tenant directory. Slug, subdomain and
// custom domain are unique among active tenants; DBName names the physical
// database all of the tenant's data lives in.
type Tenant struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Slug         string       `json:"slug"`
	Subdomain    string       `json:"subdomain,omitempty"`
	CustomDomain string       `json:"custom_domain,omitempty"`
	Status       TenantStatus `json:"status"`
	DBName       string       `json:"db_name"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (t *Tenant) IsActive() bool {
	return t.Status == TenantActive
}
