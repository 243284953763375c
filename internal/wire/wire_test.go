package wire

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketplace-api/internal/data/repository"
	"marketplace-api/pkg/mailer"
	"marketplace-api/pkg/storage"
	"marketplace-api/pkg/token"
	"marketplace-api/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) (*App, *storage.LocalStorage) {
	t.Helper()
	log := zap.NewNop()

	tokens, err := token.NewManager("wire-secret", "marketplace-api", "GHA", time.Hour)
	require.NoError(t, err)

	store, err := storage.NewLocalStorage(storage.Config{
		BasePath: t.TempDir(),
		BaseURL:  "http://localhost:8080/uploads",
	})
	require.NoError(t, err)

	config := &utils.Config{
		App:      utils.AppConfig{CORSOrigin: "https://shop.example.com"},
		Password: utils.PasswordConfig{MinLength: 8, BcryptCost: 4},
		Storage:  utils.StorageConfig{MaxUploadMB: 1},
	}

	// requests exercised here never reach the database
	app := Wiring(Deps{
		Repo:   repository.NewRepository(nil, log),
		Tokens: tokens,
		Mailer: mailer.NewLogMailer(log),
		Store:  store,
	}, config, log)
	return app, store
}

func TestRouter_Health(t *testing.T) {
	app, _ := newTestApp(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	app, _ := newTestApp(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/profile"},
		{http.MethodPost, "/api/profile-picture"},
		{http.MethodPost, "/api/change-password"},
		{http.MethodGet, "/api/users"},
		{http.MethodDelete, "/api/users/3f1c2a7e-8d5b-4a3c-9e1f-2b6d7c8a9e0f"},
	} {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, route.path)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "GHA not-a-jwt")
	app.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_PublicRoutesAreMounted(t *testing.T) {
	app, _ := newTestApp(t)

	for _, path := range []string{
		"/api/register",
		"/api/verify",
		"/api/resend-otp",
		"/api/login",
		"/api/forgot-password",
		"/api/reset-password",
	} {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader("{broken")))
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestRouter_ServesLocalUploads(t *testing.T) {
	app, store := newTestApp(t)

	url, err := store.Put(context.Background(), "profile-pictures/u1/pic.png", strings.NewReader("png-bytes"), 9, "image/png")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/uploads/profile-pictures/u1/pic.png", url)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/profile-pictures/u1/pic.png", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, "png-bytes", string(body))
}

func TestRouter_CORSPreflight(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
