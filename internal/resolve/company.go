package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jverho/kontor/internal/domain"
	"github.com/jverho/kontor/internal/store"
)

// CompanyScoper resolves which of a tenant's companies a request operates
// against. Priority: explicit company id, then the tenant's primary company
// (earliest created). The lookup is bound to whatever client the connection
// router handed out for the tenant.
type CompanyScoper struct{}

func (CompanyScoper) Resolve(ctx context.Context, companies domain.CompanyLookup, tenant *domain.Tenant, explicitID string) (*domain.Company, error) {
	if explicitID != "" {
		id, err := uuid.Parse(explicitID)
		if err != nil {
			return nil, fmt.Errorf("invalid company id %q: %w", explicitID, domain.ErrNoCompanyFound)
		}
		company, err := companies.GetByID(ctx, tenant.ID, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("company %s not owned by tenant %s: %w", id, tenant.Slug, domain.ErrNoCompanyFound)
			}
			return nil, fmt.Errorf("company lookup: %w", err)
		}
		return company, nil
	}

	company, err := companies.GetPrimary(ctx, tenant.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.ErrNoCompanyFound
		}
		return nil, fmt.Errorf("primary company lookup: %w", err)
	}
	return company, nil
}
