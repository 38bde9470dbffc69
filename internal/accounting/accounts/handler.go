package accounts

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/ledger-console/internal/platform/httpx"
	"github.com/odyssey-erp/ledger-console/internal/rbac"
	"github.com/odyssey-erp/ledger-console/internal/session"
	"github.com/odyssey-erp/ledger-console/internal/shared"
)

// CollapsedKey is the browser session key holding collapsed tree nodes.
const CollapsedKey = "coa_collapsed"

// Handler serves the chart of accounts.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	rbac     rbac.Middleware
	searches *Searches
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware, searches *Searches) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, searches: searches}
}

// MountRoutes registers account routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermAccountView))
		r.Get("/", h.list)
		r.Get("/tree", h.tree)
		r.Post("/tree/{id}/toggle", h.toggle)
		r.Get("/types", h.types)
		r.Get("/summary", h.summary)
		r.Post("/search", h.searchInput)
		r.Get("/search", h.searchResult)
		r.Delete("/search", h.searchCancel)
		r.Get("/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermAccountCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermAccountEdit))
		r.Patch("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermAccountDelete))
		r.Delete("/{id}", h.delete)
	})
}

type accountView struct {
	Account
	Balance string `json:"balance"`
}

type sectionView struct {
	Group    Group         `json:"group"`
	Accounts []accountView `json:"accounts"`
	Total    string        `json:"total"`
}

type listResponse struct {
	Sections []sectionView `json:"sections"`
	Count    int           `json:"count"`
}

type treeResponse struct {
	Rows      []Row    `json:"rows"`
	Collapsed []string `json:"collapsed"`
}

type searchForm struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Query string `json:"query"`
	listResponse
}

type summaryResponse struct {
	listResponse
	Types []TypeInfo `json:"types"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	accounts, err := h.service.List(r.Context(), token(r), filter)
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		shared.Fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, buildListResponse(accounts))
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	var (
		accounts []Account
		types    []TypeInfo
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		accounts, err = h.service.List(ctx, token(r), Filter{})
		return err
	})
	g.Go(func() error {
		var err error
		types, err = h.service.Types(ctx, token(r))
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("account summary", slog.Any("error", err))
		shared.Fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summaryResponse{listResponse: buildListResponse(accounts), Types: types})
}

// searchInput feeds one keystroke worth of query into the browser session's
// live search. The backend is queried once input has been quiet.
func (h *Handler) searchInput(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	mgr := session.FromContext(r.Context())
	if sess == nil || mgr == nil {
		httpx.RespondError(w, shared.ErrNoSession)
		return
	}
	var form searchForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body must be JSON")
		return
	}
	query := strings.TrimSpace(form.Query)
	h.searches.Input(sess.ID, query, func(ctx context.Context, q string) ([]Account, error) {
		return h.service.List(ctx, mgr.Token(), Filter{Search: q})
	})
	httpx.JSON(w, http.StatusAccepted, searchForm{Query: query})
}

func (h *Handler) searchResult(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, shared.ErrNoSession)
		return
	}
	res, ok := h.searches.Latest(sess.ID)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if res.Err != nil {
		h.logger.Warn("account search", slog.String("query", res.Query), slog.Any("error", res.Err))
		shared.Fail(w, r, res.Err)
		return
	}
	httpx.JSON(w, http.StatusOK, searchResponse{Query: res.Query, listResponse: buildListResponse(res.Accounts)})
}

func (h *Handler) searchCancel(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.searches.Cancel(sess.ID)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.loadTree(r)
	if err != nil {
		h.logger.Error("account tree", slog.Any("error", err))
		shared.Fail(w, r, err)
		return
	}
	view := NewTreeView(tree, loadCollapsed(r))
	httpx.JSON(w, http.StatusOK, treeResponse{Rows: view.Rows(), Collapsed: view.Collapsed()})
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	tree, err := h.loadTree(r)
	if err != nil {
		h.logger.Error("account tree", slog.Any("error", err))
		shared.Fail(w, r, err)
		return
	}
	view := NewTreeView(tree, loadCollapsed(r))
	if _, ok := view.Toggle(chi.URLParam(r, "id")); !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	storeCollapsed(r, view.Collapsed())
	httpx.JSON(w, http.StatusOK, treeResponse{Rows: view.Rows(), Collapsed: view.Collapsed()})
}

// loadTree returns the backend's nested tree, or nests the flat list when
// ?mode=flat is given. Accounts cut off by a parent cycle are left out.
func (h *Handler) loadTree(r *http.Request) (Tree, error) {
	if r.URL.Query().Get("mode") != "flat" {
		return h.service.Tree(r.Context(), token(r))
	}
	list, err := h.service.List(r.Context(), token(r), Filter{})
	if err != nil {
		return nil, err
	}
	tree, err := BuildTree(list)
	if err != nil {
		h.logger.Warn("account hierarchy incomplete", slog.Any("error", err))
	}
	return tree, nil
}

func (h *Handler) types(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.Types(r.Context(), token(r))
	if err != nil {
		h.logger.Error("account types", slog.Any("error", err))
		shared.Fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, types)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	acc, err := h.service.Get(r.Context(), token(r), chi.URLParam(r, "id"))
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, accountView{Account: acc, Balance: FormatCurrency(acc.CurrentBalance)})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body must be JSON")
		return
	}
	acc, err := h.service.Create(r.Context(), token(r), in)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	shared.Succeed(w, r, http.StatusCreated, shared.SuccessAlert("Account Created", acc.Name+" was added to the chart of accounts."), acc)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in UpdateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body must be JSON")
		return
	}
	acc, err := h.service.Update(r.Context(), token(r), chi.URLParam(r, "id"), in)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	shared.Succeed(w, r, http.StatusOK, shared.SuccessAlert("Account Updated", acc.Name+" was saved."), acc)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	acc, err := h.service.Get(r.Context(), token(r), chi.URLParam(r, "id"))
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), token(r), acc); err != nil {
		h.logger.Info("delete account rejected", slog.String("account", acc.ID), slog.Any("error", err))
		shared.Fail(w, r, err)
		return
	}
	shared.Succeed(w, r, http.StatusOK, shared.SuccessAlert("Account Deleted", acc.Name+" was removed."), nil)
}

func buildListResponse(accounts []Account) listResponse {
	sections := GroupByTypeGroup(accounts).Sections()
	resp := listResponse{Sections: make([]sectionView, 0, len(sections)), Count: len(accounts)}
	for _, sec := range sections {
		view := sectionView{Group: sec.Group, Accounts: make([]accountView, 0, len(sec.Accounts))}
		total := decimal.Zero
		for _, acc := range sec.Accounts {
			total = total.Add(acc.CurrentBalance)
			view.Accounts = append(view.Accounts, accountView{Account: acc, Balance: FormatCurrency(acc.CurrentBalance)})
		}
		view.Total = FormatCurrency(total)
		resp.Sections = append(resp.Sections, view)
	}
	return resp
}

func parseFilter(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	filter := Filter{AccountType: AccountType(q.Get("accountType")), Search: q.Get("search")}
	if raw := q.Get("isActive"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return Filter{}, shared.Invalid("isActive", "must be true or false")
		}
		filter.IsActive = &active
	}
	return filter, nil
}

func token(r *http.Request) string {
	if m := session.FromContext(r.Context()); m != nil {
		return m.Token()
	}
	return ""
}

func loadCollapsed(r *http.Request) []string {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return nil
	}
	raw := sess.Get(CollapsedKey)
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func storeCollapsed(r *http.Request, ids []string) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return
	}
	if len(ids) == 0 {
		sess.Delete(CollapsedKey)
		return
	}
	sess.Set(CollapsedKey, strings.Join(ids, ","))
}
