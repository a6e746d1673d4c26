package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jverho/kontor/internal/domain"
)

// TenantStore is the shared tenant directory, backed by the core catalog
// database.
type TenantStore struct {
	db *pgxpool.Pool
}

func NewTenantStore(db *pgxpool.Pool) *TenantStore {
	return &TenantStore{db: db}
}

const tenantColumns = `id, name, slug, subdomain, custom_domain, status, db_name, created_at`

func (s *TenantStore) Create(ctx context.Context, t *domain.Tenant) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO tenants (name, slug, subdomain, custom_domain, status, db_name)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		t.Name, t.Slug, nullIfEmpty(t.Subdomain), nullIfEmpty(t.CustomDomain), t.Status, t.DBName,
	).Scan(&t.ID, &t.CreatedAt)
}

func (s *TenantStore) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	return s.getBy(ctx, `slug = $1`, slug)
}

func (s *TenantStore) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	return s.getBy(ctx, `subdomain = $1`, subdomain)
}

func (s *TenantStore) GetByCustomDomain(ctx context.Context, customDomain string) (*domain.Tenant, error) {
	return s.getBy(ctx, `custom_domain = $1`, customDomain)
}

// EarliestActive returns the oldest tenant with status active. It backs the
// last-resort resolution fallback.
func (s *TenantStore) EarliestActive(ctx context.Context) (*domain.Tenant, error) {
	return s.getBy(ctx, `status = $1 ORDER BY created_at ASC LIMIT 1`, string(domain.TenantActive))
}

func (s *TenantStore) ListActive(ctx context.Context) ([]domain.Tenant, error) {
	return s.list(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE status = $1 ORDER BY created_at ASC`,
		string(domain.TenantActive))
}

func (s *TenantStore) List(ctx context.Context) ([]domain.Tenant, error) {
	return s.list(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY created_at ASC`)
}

func (s *TenantStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TenantStatus) error {
	tag, err := s.db.Exec(ctx, `UPDATE tenants SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *TenantStore) getBy(ctx context.Context, where string, arg any) (*domain.Tenant, error) {
	row := s.db.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE `+where, arg)
	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *TenantStore) list(ctx context.Context, query string, args ...any) ([]domain.Tenant, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, *t)
	}
	return tenants, rows.Err()
}

func scanTenant(row pgx.Row) (*domain.Tenant, error) {
	t := &domain.Tenant{}
	var subdomain, customDomain *string
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &subdomain, &customDomain, &t.Status, &t.DBName, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if subdomain != nil {
		t.Subdomain = *subdomain
	}
	if customDomain != nil {
		t.CustomDomain = *customDomain
	}
	return t, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
