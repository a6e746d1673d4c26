package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jverho/kontor/internal/dbrouter"
	"github.com/jverho/kontor/internal/domain"
	"github.com/jverho/kontor/internal/metrics"
	"github.com/jverho/kontor/internal/resolve"
	"github.com/jverho/kontor/internal/store"
)

type contextKey string

const scopeContextKey contextKey = "scope"

// Scope is the resolved request context: the tenant, its database client,
// and — once RequireCompany ran — the company. It is derived fresh on every
// request; signals like the cookie or host can change between requests from
// the same client.
type Scope struct {
	Tenant  *domain.Tenant
	Company *domain.Company
	DB      *pgxpool.Pool
	Source  domain.SignalSource
}

// ScopeFromContext returns the request scope, or nil outside the resolution
// middleware.
func ScopeFromContext(ctx context.Context) *Scope {
	s, _ := ctx.Value(scopeContextKey).(*Scope)
	return s
}

// ResolveTenant runs the resolution pipeline — signal extraction, the
// priority chain against the tenant directory, then the connection router —
// and stores the scope in the request context. Downstream handlers must
// still filter every query on tenant_id (and company_id where applicable);
// the scope is the input to that contract, not an enforcement of it.
func ResolveTenant(dir domain.TenantDirectory, conns *dbrouter.Router, baseDomain string, logger *zap.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	resolver := resolve.NewResolver(dir, logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			signals := resolve.ExtractSignals(r, baseDomain)

			tenant, source, err := resolver.Resolve(r.Context(), signals)
			if err != nil {
				if errors.Is(err, domain.ErrTenantNotResolved) {
					m.ObserveResolution(source, "not_resolved")
					writeError(w, http.StatusBadRequest, "tenant not resolved")
					return
				}
				m.ObserveResolution(source, "error")
				logger.Error("tenant resolution failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "tenant resolution failed")
				return
			}

			client, err := conns.Client(r.Context(), tenant)
			if err != nil {
				m.ObserveResolution(source, "unavailable")
				logger.Error("tenant database unavailable",
					zap.String("tenant", tenant.Slug), zap.Error(err))
				writeError(w, http.StatusServiceUnavailable, "tenant database unavailable")
				return
			}

			m.ObserveResolution(source, "resolved")
			scope := &Scope{Tenant: tenant, DB: client, Source: source}
			ctx := context.WithValue(r.Context(), scopeContextKey, scope)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCompany resolves the company for operations that need company
// scope. Must be mounted after ResolveTenant. A tenant with zero companies
// is reported distinctly from an unresolved tenant so operators can tell a
// mis-provisioned tenant from an unresolved request.
func RequireCompany(logger *zap.Logger) func(http.Handler) http.Handler {
	scoper := resolve.CompanyScoper{}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := ScopeFromContext(r.Context())
			if scope == nil {
				writeError(w, http.StatusInternalServerError, "tenant scope missing")
				return
			}

			companies := store.NewCompanyStore(scope.DB)
			company, err := scoper.Resolve(r.Context(), companies, scope.Tenant, resolve.ExplicitCompanyID(r))
			if err != nil {
				if errors.Is(err, domain.ErrNoCompanyFound) {
					logger.Warn("company scope missing",
						zap.String("tenant", scope.Tenant.Slug), zap.Error(err))
					writeError(w, http.StatusBadRequest, "no company found for tenant")
					return
				}
				logger.Error("company resolution failed",
					zap.String("tenant", scope.Tenant.Slug), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "company resolution failed")
				return
			}

			scoped := *scope
			scoped.Company = company
			ctx := context.WithValue(r.Context(), scopeContextKey, &scoped)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
