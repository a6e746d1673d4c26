package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jverho/kontor/internal/domain"
	"github.com/jverho/kontor/internal/metrics"
	"github.com/jverho/kontor/internal/store"
)

// SyncReport describes the non-authoritative side of a lifecycle transition:
// mirror refresh, per-tenant provisioning and menu merge. A degraded report
// is an operational signal, never an error — the persisted record already
// committed and the derived state can be rebuilt by Reconcile.
type SyncReport struct {
	Module       string          `json:"module"`
	Provisioned  int             `json:"provisioned"`
	Failures     []TenantFailure `json:"failures,omitempty"`
	MenuSynced   bool            `json:"menu_synced"`
	MirrorSynced bool            `json:"mirror_synced"`
}

func (r *SyncReport) Degraded() bool {
	return len(r.Failures) > 0 || !r.MenuSynced || !r.MirrorSynced
}

// Service drives the module lifecycle:
//
//	not installed -> installed(inactive) -> active <-> inactive -> uninstalled
//
// The persisted record is always written first; everything else is derived
// state synced afterwards.
type Service struct {
	modules   domain.ModuleStore
	tenants   domain.TenantDirectory
	mirror    *Mirror
	manifests *ManifestLoader
	menu      *MenuStore
	prov      *Provisioner
	logger    *zap.Logger
	m         *metrics.Metrics
}

func NewService(
	modules domain.ModuleStore,
	tenants domain.TenantDirectory,
	mirror *Mirror,
	manifests *ManifestLoader,
	menu *MenuStore,
	prov *Provisioner,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		modules:   modules,
		tenants:   tenants,
		mirror:    mirror,
		manifests: manifests,
		menu:      menu,
		prov:      prov,
		logger:    logger,
		m:         m,
	}
}

// Install loads the module manifest and writes an inactive record.
// Installing an already-installed module returns the existing record.
func (s *Service) Install(ctx context.Context, slug string) (*domain.ModuleRecord, error) {
	existing, err := s.modules.GetBySlug(ctx, slug)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("module lookup: %w", err)
	}

	man, err := s.manifests.Load(slug)
	if err != nil {
		return nil, err
	}

	rec := &domain.ModuleRecord{
		Slug:     man.Slug,
		Name:     man.Name,
		Version:  man.Version,
		Status:   domain.ModuleInactive,
		Metadata: man.Metadata,
	}
	if err := s.modules.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist module record: %w", err)
	}
	s.refreshMirror(ctx)

	s.logger.Info("module installed",
		zap.String("module", slug),
		zap.String("version", rec.Version),
	)
	return rec, nil
}

// Activate persists the active status first — the authoritative write — and
// only then syncs the mirror, per-tenant directories and menu document.
// Partial sync failure leaves the module active and is reported as degraded.
// Activating an already-active module just re-runs the sync (idempotent).
func (s *Service) Activate(ctx context.Context, slug string) (*domain.ModuleRecord, *SyncReport, error) {
	rec, err := s.getRecord(ctx, slug)
	if err != nil {
		return nil, nil, err
	}

	if !rec.IsActive() {
		now := time.Now().UTC()
		if err := s.modules.SetStatus(ctx, slug, domain.ModuleActive, &now); err != nil {
			return nil, nil, fmt.Errorf("persist module status: %w", err)
		}
		rec.Status = domain.ModuleActive
		rec.ActivatedAt = &now
		s.logger.Info("module activated", zap.String("module", slug))
	}

	report := s.sync(ctx, slug)
	return rec, report, nil
}

// Deactivate persists the inactive status, removes the module's menu entries
// and refreshes the mirror. Tenant data directories are left untouched.
func (s *Service) Deactivate(ctx context.Context, slug string) (*domain.ModuleRecord, *SyncReport, error) {
	rec, err := s.getRecord(ctx, slug)
	if err != nil {
		return nil, nil, err
	}

	if rec.IsActive() {
		if err := s.modules.SetStatus(ctx, slug, domain.ModuleInactive, nil); err != nil {
			return nil, nil, fmt.Errorf("persist module status: %w", err)
		}
		rec.Status = domain.ModuleInactive
		s.logger.Info("module deactivated", zap.String("module", slug))
	}

	report := &SyncReport{Module: slug, MenuSynced: true, MirrorSynced: true}
	if err := s.menu.RemoveModule(slug); err != nil {
		s.logger.Warn("menu cleanup failed", zap.String("module", slug), zap.Error(err))
		report.MenuSynced = false
	}
	if err := s.refreshMirror(ctx); err != nil {
		report.MirrorSynced = false
	}
	s.reportDegraded(report)
	return rec, report, nil
}

// Uninstall removes the record, its menu entries and the mirror entry.
// Provisioned tenant directories stay on disk.
func (s *Service) Uninstall(ctx context.Context, slug string) (*SyncReport, error) {
	if err := s.modules.Delete(ctx, slug); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.ErrModuleNotFound
		}
		return nil, fmt.Errorf("delete module record: %w", err)
	}
	s.logger.Info("module uninstalled", zap.String("module", slug))

	report := &SyncReport{Module: slug, MenuSynced: true, MirrorSynced: true}
	if err := s.menu.RemoveModule(slug); err != nil {
		s.logger.Warn("menu cleanup failed", zap.String("module", slug), zap.Error(err))
		report.MenuSynced = false
	}
	if err := s.refreshMirror(ctx); err != nil {
		report.MirrorSynced = false
	}
	s.reportDegraded(report)
	return report, nil
}

// List refreshes the mirror from the persisted records and returns the
// snapshot. The store stays the source of truth even if the mirror was lost.
func (s *Service) List(ctx context.Context) ([]domain.ModuleRecord, error) {
	if err := s.refreshMirror(ctx); err != nil {
		return nil, err
	}
	return s.mirror.List(), nil
}

// Reconcile rebuilds the derived state for one module: the full sync when it
// is active, just the mirror otherwise.
func (s *Service) Reconcile(ctx context.Context, slug string) (*SyncReport, error) {
	rec, err := s.getRecord(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !rec.IsActive() {
		report := &SyncReport{Module: slug, MenuSynced: true, MirrorSynced: s.refreshMirror(ctx) == nil}
		s.reportDegraded(report)
		return report, nil
	}
	return s.sync(ctx, slug), nil
}

func (s *Service) getRecord(ctx context.Context, slug string) (*domain.ModuleRecord, error) {
	rec, err := s.modules.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.ErrModuleNotFound
		}
		return nil, fmt.Errorf("module lookup: %w", err)
	}
	return rec, nil
}

// sync runs the derived-state side of activation: mirror, directories, menu.
// Failures are collected per concern and per tenant, never propagated as
// errors.
func (s *Service) sync(ctx context.Context, slug string) *SyncReport {
	report := &SyncReport{Module: slug, MenuSynced: true, MirrorSynced: true}

	if err := s.refreshMirror(ctx); err != nil {
		report.MirrorSynced = false
	}

	tenants, err := s.tenants.ListActive(ctx)
	if err != nil {
		s.logger.Warn("tenant enumeration failed", zap.String("module", slug), zap.Error(err))
		report.Failures = append(report.Failures, TenantFailure{Tenant: "*", Err: err.Error()})
	} else {
		report.Provisioned, report.Failures = s.prov.ProvisionAll(ctx, tenants, slug)
	}

	man, err := s.manifests.Load(slug)
	if err != nil {
		s.logger.Warn("manifest reload failed", zap.String("module", slug), zap.Error(err))
		report.MenuSynced = false
	} else if err := s.menu.MergeModule(slug, man.Menu); err != nil {
		s.logger.Warn("menu merge failed", zap.String("module", slug), zap.Error(err))
		report.MenuSynced = false
	}

	s.reportDegraded(report)
	return report
}

func (s *Service) refreshMirror(ctx context.Context) error {
	records, err := s.modules.List(ctx)
	if err != nil {
		s.logger.Warn("mirror refresh failed", zap.Error(err))
		return err
	}
	s.mirror.ReplaceAll(records)
	return nil
}

func (s *Service) reportDegraded(report *SyncReport) {
	if !report.Degraded() {
		return
	}
	s.m.ObserveSyncDegraded(report.Module)
	s.logger.Warn("module sync degraded",
		zap.String("module", report.Module),
		zap.Int("provisioned", report.Provisioned),
		zap.Int("failures", len(report.Failures)),
		zap.Bool("menu_synced", report.MenuSynced),
		zap.Bool("mirror_synced", report.MirrorSynced),
	)
}
