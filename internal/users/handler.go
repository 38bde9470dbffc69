package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/ledger-console/internal/platform/httpx"
	"github.com/odyssey-erp/ledger-console/internal/rbac"
	"github.com/odyssey-erp/ledger-console/internal/session"
	"github.com/odyssey-erp/ledger-console/internal/shared"
)

// Handler manages user management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(shared.PermUserView)).Get("/", h.listUsers)
	r.With(h.rbac.RequireAny(shared.PermUserInvite)).Post("/invite", h.inviteUser)
	r.With(h.rbac.RequireAny(shared.PermUserEdit)).Patch("/{id}", h.updateUser)
	r.With(h.rbac.RequireAny(shared.PermUserDelete)).Delete("/{id}", h.deleteUser)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context(), token(r))
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		shared.Fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *Handler) inviteUser(w http.ResponseWriter, r *http.Request) {
	var in Invitation
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body must be JSON")
		return
	}
	user, err := h.service.Invite(r.Context(), token(r), in)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	shared.Succeed(w, r, http.StatusCreated, shared.SuccessAlert("Invitation Sent", "An invitation was sent to "+user.Email+"."), user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var in Update
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body must be JSON")
		return
	}
	user, err := h.service.Update(r.Context(), token(r), chi.URLParam(r, "id"), in)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	shared.Succeed(w, r, http.StatusOK, shared.SuccessAlert("User Updated", user.Name+" was saved."), user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	var actorID string
	if m := session.FromContext(r.Context()); m != nil {
		if u := m.Snapshot().User; u != nil {
			actorID = u.ID
		}
	}
	if err := h.service.Delete(r.Context(), token(r), actorID, chi.URLParam(r, "id")); err != nil {
		shared.Fail(w, r, err)
		return
	}
	shared.Succeed(w, r, http.StatusOK, shared.SuccessAlert("User Removed", "The user no longer has access."), nil)
}

func token(r *http.Request) string {
	if m := session.FromContext(r.Context()); m != nil {
		return m.Token()
	}
	return ""
}
