package registry

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jverho/kontor/internal/domain"
)

// TenantFailure records a provisioning failure for a single tenant.
type TenantFailure struct {
	Tenant string `json:"tenant"`
	Err    string `json:"error"`
}

// Provisioner materializes per-tenant module directories under the data
// directory. Directory state is a derived cache of the module record: it may
// be rebuilt at any time and is never destroyed by lifecycle transitions.
type Provisioner struct {
	dataDir string
	logger  *zap.Logger
}

func NewProvisioner(dataDir string, logger *zap.Logger) *Provisioner {
	return &Provisioner{dataDir: dataDir, logger: logger}
}

// TenantModuleDir is the provisioned tree for one tenant/module pair.
func (p *Provisioner) TenantModuleDir(tenantSlug, moduleSlug string) string {
	return filepath.Join(p.dataDir, "tenants", tenantSlug, "modules", moduleSlug)
}

// ProvisionAll creates the module directory for every given tenant. A
// failure for one tenant never aborts the others; failures are returned for
// the caller to aggregate.
func (p *Provisioner) ProvisionAll(ctx context.Context, tenants []domain.Tenant, moduleSlug string) (int, []TenantFailure) {
	var (
		provisioned int
		failures    []TenantFailure
	)
	for _, tenant := range tenants {
		if err := ctx.Err(); err != nil {
			failures = append(failures, TenantFailure{Tenant: tenant.Slug, Err: err.Error()})
			continue
		}
		dir := p.TenantModuleDir(tenant.Slug, moduleSlug)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			p.logger.Warn("tenant provisioning failed",
				zap.String("tenant", tenant.Slug),
				zap.String("module", moduleSlug),
				zap.Error(err),
			)
			failures = append(failures, TenantFailure{Tenant: tenant.Slug, Err: err.Error()})
			continue
		}
		provisioned++
	}
	return provisioned, failures
}
