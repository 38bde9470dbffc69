package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/ledger-console/internal/accounting/accounts"
	authhttp "github.com/odyssey-erp/ledger-console/internal/auth/http"
	"github.com/odyssey-erp/ledger-console/internal/observability"
	"github.com/odyssey-erp/ledger-console/internal/platform/httpx"
	"github.com/odyssey-erp/ledger-console/internal/roles"
	"github.com/odyssey-erp/ledger-console/internal/shared"
	"github.com/odyssey-erp/ledger-console/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	SessionManager  *shared.SessionManager
	Registry        SessionRegistry
	CSRFManager     *shared.CSRFManager
	AuthHandler     *authhttp.Handler
	AccountsHandler *accounts.Handler
	RolesHandler    *roles.Handler
	UsersHandler    *users.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with console defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	mwConfig := MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Registry:       params.Registry,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}
	for _, mw := range MiddlewareStack(mwConfig) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		for _, mw := range SessionStack(mwConfig) {
			r.Use(mw)
		}
		r.Use(chimw.Logger)

		r.Get("/csrf", func(w http.ResponseWriter, r *http.Request) {
			token, err := params.CSRFManager.EnsureToken(shared.SessionFromContext(r.Context()))
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			httpx.JSON(w, http.StatusOK, map[string]string{"csrfToken": token})
		})

		// The pending alert is shown once; later actions replace it.
		r.Get("/alert", func(w http.ResponseWriter, r *http.Request) {
			var alert *shared.Alert
			if sess := shared.SessionFromContext(r.Context()); sess != nil {
				alert = sess.PopAlert()
			}
			if alert == nil {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			httpx.JSON(w, http.StatusOK, alert)
		})

		r.Route("/auth", params.AuthHandler.MountRoutes)
		if params.AccountsHandler != nil {
			r.Route("/accounting/accounts", params.AccountsHandler.MountRoutes)
		}
		if params.RolesHandler != nil {
			r.Route("/roles", params.RolesHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
	})

	return r
}
