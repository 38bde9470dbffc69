package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/ledger-console/internal/platform/httpx"
)

func TestDoSendsBearerTokenAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		require.Equal(t, "/api/accounts", r.URL.Path)
		require.Equal(t, "Bank", r.URL.Query().Get("accountType"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Checking"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/api/", time.Second)
	var out struct {
		Name string `json:"name"`
	}
	err := client.Get(context.Background(), "/accounts", "tok-1", url.Values{"accountType": {"Bank"}}, &out)
	require.NoError(t, err)
	require.Equal(t, "Checking", out.Name)
}

func TestDoEncodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "a@b.c", in["email"])
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	require.NoError(t, client.Post(context.Background(), "/auth/forgot-password", "", map[string]string{"email": "a@b.c"}, nil))
}

func TestDoClassifiesStatusCodes(t *testing.T) {
	cases := []struct {
		status   int
		kind     Kind
		sentinel error
	}{
		{http.StatusUnauthorized, KindUnauthorized, httpx.ErrUnauthorized},
		{http.StatusForbidden, KindForbidden, httpx.ErrForbidden},
		{http.StatusNotFound, KindNotFound, httpx.ErrNotFound},
		{http.StatusConflict, KindConflict, httpx.ErrConflict},
		{http.StatusBadRequest, KindValidation, httpx.ErrValidation},
		{http.StatusUnprocessableEntity, KindValidation, httpx.ErrValidation},
		{http.StatusInternalServerError, KindServer, httpx.ErrUnavailable},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"message":"nope"}`))
		}))
		err := NewClient(srv.URL, time.Second).Get(context.Background(), "/x", "", nil, nil)
		srv.Close()

		var be *Error
		require.True(t, errors.As(err, &be), "status %d", tc.status)
		require.Equal(t, tc.kind, be.Kind)
		require.Equal(t, tc.status, be.Status)
		require.Equal(t, "nope", be.Message)
		require.ErrorIs(t, err, tc.sentinel)
	}
}

func TestDoReportsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	err := NewClient(addr, time.Second).Get(context.Background(), "/x", "", nil, nil)
	var be *Error
	require.True(t, errors.As(err, &be))
	require.Equal(t, KindTransport, be.Kind)
	require.ErrorIs(t, err, httpx.ErrUnavailable)
}
