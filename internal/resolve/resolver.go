package resolve

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jverho/kontor/internal/domain"
	"github.com/jverho/kontor/internal/store"
)

// SignalFallback marks a resolution that used the earliest-active-tenant
// fallback rather than any request signal.
const SignalFallback domain.SignalSource = "fallback"

// signalPriority is the fixed precedence applied over extracted signals,
// regardless of extraction order.
var signalPriority = []domain.SignalSource{
	domain.SignalCookie,
	domain.SignalPath,
	domain.SignalSubdomain,
	domain.SignalCustomDomain,
}

type matchResult int

const (
	noMatch matchResult = iota
	matchActive
	matchInactive
)

// Resolver turns extracted signals into exactly one active tenant, or an
// error. Chain policy (decided here, not per strategy): a signal that matches
// a directory row whose status is not active halts the chain immediately,
// because falling through to a lower-priority signal would silently switch
// tenants. The anonymous fallback applies only when no signal matched any
// directory row at all.
type Resolver struct {
	dir    domain.TenantDirectory
	logger *zap.Logger
}

func NewResolver(dir domain.TenantDirectory, logger *zap.Logger) *Resolver {
	return &Resolver{dir: dir, logger: logger}
}

// Resolve returns the tenant and the signal source that won. Directory
// lookup errors propagate as-is; they are never masked by the fallback.
func (r *Resolver) Resolve(ctx context.Context, signals []domain.Signal) (*domain.Tenant, domain.SignalSource, error) {
	for _, sig := range orderSignals(signals) {
		result, tenant, err := r.lookup(ctx, sig)
		if err != nil {
			return nil, sig.Source, fmt.Errorf("directory lookup %s=%q: %w", sig.Source, sig.Value, err)
		}
		switch result {
		case matchActive:
			return tenant, sig.Source, nil
		case matchInactive:
			r.logger.Warn("signal matched inactive tenant",
				zap.String("source", string(sig.Source)),
				zap.String("value", sig.Value),
				zap.String("tenant_status", string(tenant.Status)),
			)
			return nil, sig.Source, domain.ErrTenantNotResolved
		}
	}

	tenant, err := r.dir.EarliestActive(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, SignalFallback, domain.ErrTenantNotResolved
		}
		return nil, SignalFallback, fmt.Errorf("fallback lookup: %w", err)
	}
	return tenant, SignalFallback, nil
}

func (r *Resolver) lookup(ctx context.Context, sig domain.Signal) (matchResult, *domain.Tenant, error) {
	var (
		tenant *domain.Tenant
		err    error
	)
	switch sig.Source {
	case domain.SignalCookie:
		// A cookie value may hold either a slug or a subdomain.
		tenant, err = r.dir.GetBySlug(ctx, sig.Value)
		if err != nil && errors.Is(err, store.ErrNotFound) {
			tenant, err = r.dir.GetBySubdomain(ctx, sig.Value)
		}
	case domain.SignalPath:
		tenant, err = r.dir.GetBySlug(ctx, sig.Value)
	case domain.SignalSubdomain:
		tenant, err = r.dir.GetBySubdomain(ctx, sig.Value)
	case domain.SignalCustomDomain:
		tenant, err = r.dir.GetByCustomDomain(ctx, sig.Value)
	default:
		return noMatch, nil, nil
	}

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return noMatch, nil, nil
		}
		return noMatch, nil, err
	}
	if tenant.IsActive() {
		return matchActive, tenant, nil
	}
	return matchInactive, tenant, nil
}

// orderSignals sorts signals into the fixed priority order, keeping the
// extraction order among signals of the same source.
func orderSignals(signals []domain.Signal) []domain.Signal {
	ordered := make([]domain.Signal, 0, len(signals))
	for _, source := range signalPriority {
		for _, sig := range signals {
			if sig.Source == source {
				ordered = append(ordered, sig)
			}
		}
	}
	return ordered
}
