package handlers

import (
	"net/http"

	"github.com/jverho/kontor/internal/api/middleware"
)

// ScopeHandler exposes probe endpoints that echo the resolved request scope.
// Business modules consume the same scope through the middleware contract.
type ScopeHandler struct{}

func NewScopeHandler() *ScopeHandler {
	return &ScopeHandler{}
}

// Resolve reports the tenant scope only.
func (h *ScopeHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	scope := middleware.ScopeFromContext(r.Context())
	if scope == nil {
		writeError(w, http.StatusInternalServerError, "tenant scope missing")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tenant": scope.Tenant,
		"source": scope.Source,
	})
}

// Whoami reports the full tenant+company scope.
func (h *ScopeHandler) Whoami(w http.ResponseWriter, r *http.Request) {
	scope := middleware.ScopeFromContext(r.Context())
	if scope == nil || scope.Company == nil {
		writeError(w, http.StatusInternalServerError, "request scope missing")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tenant":  scope.Tenant,
		"company": scope.Company,
		"source":  scope.Source,
	})
}
