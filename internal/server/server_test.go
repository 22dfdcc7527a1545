package server_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/handler"
	"storefront/internal/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() http.Handler {
	//ルート登録だけ見るのでusecaseはnilでよい
	h := server.Handlers{
		Webhook:      handler.NewWebhookHandler(nil, nil),
		Reconcile:    handler.NewReconcileHandler(nil, "cron"),
		Checkout:     handler.NewCheckoutHandler(nil, nil),
		Notification: handler.NewNotificationHandler(nil),
		Product:      handler.NewProductHandler(nil),
		AdminOrder:   handler.NewAdminOrderHandler(nil),
		JWTSecret:    "secret",
	}
	return server.New(h, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRoutesRegistered(t *testing.T) {
	e := newTestServer()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	//認証が先に効くルートは401で存在を確認する
	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/api/orders/poll"},
		{http.MethodPost, "/api/orders/poll"},
		{http.MethodPost, "/api/notifications/test"},
		{http.MethodGet, "/admin/orders"},
		{http.MethodGet, "/admin/audit-logs"},
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(r.method, r.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", r.method, r.path)
	}
}

func TestUnknownRoute(t *testing.T) {
	e := newTestServer()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecoverFromPanic(t *testing.T) {
	e := newTestServer()

	//usecaseがnilなので中でpanicする。Recoverで500になる
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
