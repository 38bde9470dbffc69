package roles

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/ledger-console/internal/platform/httpx"
	"github.com/odyssey-erp/ledger-console/internal/rbac"
	"github.com/odyssey-erp/ledger-console/internal/session"
	"github.com/odyssey-erp/ledger-console/internal/shared"
)

// Handler manages role management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermRoleView))
		r.Get("/", h.listRoles)
		r.Get("/permissions", h.listPermissions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermRoleEdit))
		r.Post("/", h.createRole)
		r.Patch("/{id}", h.updateRole)
		r.Delete("/{id}", h.deleteRole)
	})
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.List(r.Context(), token(r))
	if err != nil {
		h.logger.Error("list roles failed", slog.Any("error", err))
		shared.Fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, roles)
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Catalog())
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body must be JSON")
		return
	}
	role, err := h.service.Create(r.Context(), token(r), in)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	shared.Succeed(w, r, http.StatusCreated, shared.SuccessAlert("Role Created", role.Name+" was created."), role)
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body must be JSON")
		return
	}
	role, err := h.service.Update(r.Context(), token(r), chi.URLParam(r, "id"), in)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	shared.Succeed(w, r, http.StatusOK, shared.SuccessAlert("Role Updated", role.Name+" was saved."), role)
}

func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), token(r), chi.URLParam(r, "id")); err != nil {
		shared.Fail(w, r, err)
		return
	}
	shared.Succeed(w, r, http.StatusOK, shared.SuccessAlert("Role Deleted", "The role was removed."), nil)
}

func token(r *http.Request) string {
	if m := session.FromContext(r.Context()); m != nil {
		return m.Token()
	}
	return ""
}
