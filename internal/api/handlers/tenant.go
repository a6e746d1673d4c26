package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jverho/kontor/internal/dbrouter"
	"github.com/jverho/kontor/internal/domain"
	"github.com/jverho/kontor/internal/store"
)

// TenantHandler is the administrative surface over the tenant directory.
// Physical database provisioning happens elsewhere; this only manages
// directory records.
type TenantHandler struct {
	dir   domain.TenantDirectory
	conns *dbrouter.Router
}

func NewTenantHandler(dir domain.TenantDirectory, conns *dbrouter.Router) *TenantHandler {
	return &TenantHandler{dir: dir, conns: conns}
}

func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.dir.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tenants")
		return
	}
	if tenants == nil {
		tenants = []domain.Tenant{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tenants": tenants})
}

type createTenantRequest struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Subdomain    string `json:"subdomain"`
	CustomDomain string `json:"custom_domain"`
	DBName       string `json:"db_name"`
	Status       string `json:"status"`
}

func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Slug == "" {
		writeError(w, http.StatusBadRequest, "slug is required")
		return
	}

	status := domain.TenantProvisioning
	if req.Status != "" {
		parsed, ok := parseTenantStatus(req.Status)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		status = parsed
	}

	dbName := req.DBName
	if dbName == "" {
		dbName = "tenant_" + req.Slug
	}

	tenant := &domain.Tenant{
		Name:         req.Name,
		Slug:         req.Slug,
		Subdomain:    req.Subdomain,
		CustomDomain: req.CustomDomain,
		Status:       status,
		DBName:       dbName,
	}
	if err := h.dir.Create(r.Context(), tenant); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create tenant")
		return
	}

	writeJSON(w, http.StatusCreated, tenant)
}

type updateTenantStatusRequest struct {
	Status string `json:"status"`
}

func (h *TenantHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}

	var req updateTenantStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, ok := parseTenantStatus(req.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	if err := h.dir.UpdateStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tenant not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update tenant status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id.String(), "status": string(status)})
}

// InvalidateConnection evicts a tenant's cached database client. The next
// scoped request reconstructs it from the current descriptor.
func (h *TenantHandler) InvalidateConnection(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	tenant, err := h.dir.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tenant not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to look up tenant")
		return
	}

	h.conns.Invalidate(tenant.DBName)
	w.WriteHeader(http.StatusNoContent)
}

func parseTenantStatus(s string) (domain.TenantStatus, bool) {
	switch domain.TenantStatus(s) {
	case domain.TenantActive, domain.TenantSuspended, domain.TenantProvisioning, domain.TenantDeleted:
		return domain.TenantStatus(s), true
	}
	return "", false
}
