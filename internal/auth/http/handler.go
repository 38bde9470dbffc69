package authhttp

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/ledger-console/internal/auth"
	"github.com/odyssey-erp/ledger-console/internal/platform/httpx"
	"github.com/odyssey-erp/ledger-console/internal/session"
	"github.com/odyssey-erp/ledger-console/internal/shared"
)

type recoveryGateway interface {
	ForgotPassword(ctx context.Context, email string) error
	ValidateResetToken(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, reset auth.PasswordReset) error
}

// managerRegistry releases the session manager of a browser session.
type managerRegistry interface {
	Forget(scope string)
}

// browserSessions ends the cookie session itself.
type browserSessions interface {
	Destroy(sess *shared.Session)
}

// Handler exposes the session lifecycle and password recovery.
type Handler struct {
	logger    *slog.Logger
	recovery  recoveryGateway
	managers  managerRegistry
	sessions  browserSessions
	validator *validator.Validate
}

// NewHandler constructs a Handler instance. On logout the browser session
// is destroyed and its manager released from managers.
func NewHandler(logger *slog.Logger, recovery recoveryGateway, managers managerRegistry, sessions browserSessions) *Handler {
	return &Handler{
		logger:    logger,
		recovery:  recovery,
		managers:  managers,
		sessions:  sessions,
		validator: shared.NewValidator(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/register", h.handleRegister)
	r.Post("/logout", h.handleLogout)
	r.Get("/me", h.showSession)
	r.Post("/permissions/refresh", h.refreshPermissions)
	r.Post("/forgot-password", h.forgotPassword)
	r.Get("/validate-reset-token", h.validateResetToken)
	r.Post("/reset-password", h.resetPassword)
}

type forgotPasswordForm struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	m := h.manager(w, r)
	if m == nil {
		return
	}
	var form auth.Credentials
	if !h.decode(w, r, &form) {
		return
	}
	form.Email = strings.TrimSpace(form.Email)
	if err := m.Login(r.Context(), form); err != nil {
		h.logger.Info("login rejected", slog.String("email", form.Email), slog.Any("error", err))
		shared.Fail(w, r, err)
		return
	}
	if !m.Authenticated() {
		h.logger.Info("login token rejected by identity check", slog.String("email", form.Email))
		shared.Fail(w, r, httpx.ErrUnauthorized)
		return
	}
	shared.Succeed(w, r, http.StatusOK, shared.SuccessAlert("Signed In", "Welcome back."), m.Snapshot())
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	m := h.manager(w, r)
	if m == nil {
		return
	}
	var form auth.Profile
	if !h.decode(w, r, &form) {
		return
	}
	form.Email = strings.TrimSpace(form.Email)
	if err := m.Register(r.Context(), form); err != nil {
		h.logger.Info("registration rejected", slog.String("email", form.Email), slog.Any("error", err))
		shared.Fail(w, r, err)
		return
	}
	if !m.Authenticated() {
		h.logger.Info("registration token rejected by identity check", slog.String("email", form.Email))
		shared.Fail(w, r, httpx.ErrUnauthorized)
		return
	}
	shared.Succeed(w, r, http.StatusCreated, shared.SuccessAlert("Account Created", "Your company workspace is ready."), m.Snapshot())
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	m := h.manager(w, r)
	if m == nil {
		return
	}
	if err := m.Logout(r.Context()); err != nil {
		h.logger.Warn("logout store cleanup", slog.Any("error", err))
	}
	snap := m.Snapshot()
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.managers.Forget(sess.ID)
		h.sessions.Destroy(sess)
	}
	// The browser session is gone, so the alert travels in the body only.
	alert := shared.SuccessAlert("Signed Out", "You have been signed out.")
	httpx.JSON(w, http.StatusOK, shared.ActionResponse{Alert: &alert, Data: snap})
}

func (h *Handler) showSession(w http.ResponseWriter, r *http.Request) {
	m := h.manager(w, r)
	if m == nil {
		return
	}
	httpx.JSON(w, http.StatusOK, m.Snapshot())
}

func (h *Handler) refreshPermissions(w http.ResponseWriter, r *http.Request) {
	m := h.manager(w, r)
	if m == nil {
		return
	}
	if !m.Authenticated() {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	m.RefreshPermissions(r.Context())
	httpx.JSON(w, http.StatusOK, m.Snapshot())
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var form forgotPasswordForm
	if !h.decode(w, r, &form) {
		return
	}
	if err := h.recovery.ForgotPassword(r.Context(), strings.TrimSpace(form.Email)); err != nil {
		shared.Fail(w, r, err)
		return
	}
	shared.Succeed(w, r, http.StatusAccepted, shared.SuccessAlert("Check Your Email", "If the address is registered, a reset link is on its way."), nil)
}

func (h *Handler) validateResetToken(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		httpx.ValidationProblem(w, map[string]string{"token": "is required"})
		return
	}
	if err := h.recovery.ValidateResetToken(r.Context(), token); err != nil {
		shared.Fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var form auth.PasswordReset
	if !h.decode(w, r, &form) {
		return
	}
	if err := h.recovery.ResetPassword(r.Context(), form); err != nil {
		shared.Fail(w, r, err)
		return
	}
	shared.Succeed(w, r, http.StatusOK, shared.SuccessAlert("Password Updated", "You can now sign in with your new password."), nil)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, form any) bool {
	if err := httpx.DecodeJSON(r, form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body must be JSON")
		return false
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.ValidationProblem(w, shared.FieldErrors(err))
		return false
	}
	return true
}

func (h *Handler) manager(w http.ResponseWriter, r *http.Request) *session.Manager {
	m := session.FromContext(r.Context())
	if m == nil {
		h.logger.Error("session manager missing from request context")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
	return m
}
