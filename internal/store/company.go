package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jverho/kontor/internal/domain"
)

// CompanyStore reads companies from one tenant's database. A new instance is
// bound per request to whatever pool the connection router handed out.
type CompanyStore struct {
	db *pgxpool.Pool
}

func NewCompanyStore(db *pgxpool.Pool) *CompanyStore {
	return &CompanyStore{db: db}
}

// GetByID filters on tenant_id as well as id: a company id belonging to a
// different tenant must behave as if it does not exist.
func (s *CompanyStore) GetByID(ctx context.Context, tenantID, companyID uuid.UUID) (*domain.Company, error) {
	c := &domain.Company{}
	err := s.db.QueryRow(ctx,
		`SELECT id, tenant_id, name, created_at
		 FROM companies WHERE id = $1 AND tenant_id = $2`,
		companyID, tenantID,
	).Scan(&c.ID, &c.TenantID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// GetPrimary returns the tenant's earliest-created company.
func (s *CompanyStore) GetPrimary(ctx context.Context, tenantID uuid.UUID) (*domain.Company, error) {
	c := &domain.Company{}
	err := s.db.QueryRow(ctx,
		`SELECT id, tenant_id, name, created_at
		 FROM companies WHERE tenant_id = $1
		 ORDER BY created_at ASC LIMIT 1`,
		tenantID,
	).Scan(&c.ID, &c.TenantID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}
