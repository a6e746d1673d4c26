package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jverho/kontor/internal/domain"
	"github.com/jverho/kontor/internal/registry"
)

// ModuleHandler exposes the module lifecycle. Every operation is keyed by
// module slug and idempotent on repeated identical calls.
type ModuleHandler struct {
	svc *registry.Service
}

func NewModuleHandler(svc *registry.Service) *ModuleHandler {
	return &ModuleHandler{svc: svc}
}

func (h *ModuleHandler) List(w http.ResponseWriter, r *http.Request) {
	modules, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list modules")
		return
	}
	if modules == nil {
		modules = []domain.ModuleRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"modules": modules})
}

func (h *ModuleHandler) Install(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Install(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, domain.ErrModuleNotFound) {
			writeError(w, http.StatusNotFound, "module manifest not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to install module")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *ModuleHandler) Activate(w http.ResponseWriter, r *http.Request) {
	rec, report, err := h.svc.Activate(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, domain.ErrModuleNotFound) {
			writeError(w, http.StatusNotFound, "module not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to activate module")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"module": rec, "sync": report})
}

func (h *ModuleHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	rec, report, err := h.svc.Deactivate(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, domain.ErrModuleNotFound) {
			writeError(w, http.StatusNotFound, "module not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to deactivate module")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"module": rec, "sync": report})
}

func (h *ModuleHandler) Uninstall(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Uninstall(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, domain.ErrModuleNotFound) {
			writeError(w, http.StatusNotFound, "module not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to uninstall module")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sync": report})
}

func (h *ModuleHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Reconcile(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, domain.ErrModuleNotFound) {
			writeError(w, http.StatusNotFound, "module not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to reconcile module")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sync": report})
}
