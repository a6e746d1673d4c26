package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jverho/kontor/internal/domain"
)

// ModuleStore persists module records in the core catalog database. It is
// the source of truth for module state; everything else (in-memory mirror,
// per-tenant directories, menu document) is derived from it.
type ModuleStore struct {
	db *pgxpool.Pool
}

func NewModuleStore(db *pgxpool.Pool) *ModuleStore {
	return &ModuleStore{db: db}
}

const moduleColumns = `slug, name, version, status, metadata, installed_at, activated_at`

func (s *ModuleStore) Insert(ctx context.Context, rec *domain.ModuleRecord) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO modules (slug, name, version, status, metadata)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING installed_at`,
		rec.Slug, rec.Name, rec.Version, rec.Status, rec.Metadata,
	).Scan(&rec.InstalledAt)
}

func (s *ModuleStore) GetBySlug(ctx context.Context, slug string) (*domain.ModuleRecord, error) {
	row := s.db.QueryRow(ctx, `SELECT `+moduleColumns+` FROM modules WHERE slug = $1`, slug)
	rec, err := scanModule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (s *ModuleStore) SetStatus(ctx context.Context, slug string, status domain.ModuleStatus, activatedAt *time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE modules SET status = $2, activated_at = COALESCE($3, activated_at) WHERE slug = $1`,
		slug, status, activatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ModuleStore) Delete(ctx context.Context, slug string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM modules WHERE slug = $1`, slug)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ModuleStore) List(ctx context.Context) ([]domain.ModuleRecord, error) {
	rows, err := s.db.Query(ctx, `SELECT `+moduleColumns+` FROM modules ORDER BY installed_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.ModuleRecord
	for rows.Next() {
		rec, err := scanModule(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func scanModule(row pgx.Row) (*domain.ModuleRecord, error) {
	rec := &domain.ModuleRecord{}
	err := row.Scan(&rec.Slug, &rec.Name, &rec.Version, &rec.Status, &rec.Metadata, &rec.InstalledAt, &rec.ActivatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
