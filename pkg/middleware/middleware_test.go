package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketplace-api/internal/data/entity"
	"marketplace-api/pkg/token"
	"marketplace-api/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubUsers map[uuid.UUID]*entity.User

func (s stubUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return s[id], nil
}

func newManager(t *testing.T) *token.Manager {
	t.Helper()
	m, err := token.NewManager("middleware-secret", "marketplace-api", "GHA", time.Hour)
	require.NoError(t, err)
	return m
}

// echoCaller writes the caller id found on the context.
var echoCaller = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	role, _ := utils.GetRoleFromContext(r.Context())
	_, _ = w.Write([]byte(id.String() + " " + role))
})

func decode(t *testing.T, rec *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var resp utils.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAuthBearer(t *testing.T) {
	m := newManager(t)
	id := uuid.New()
	signed, err := m.Issue(id, "User")
	require.NoError(t, err)

	handler := AuthBearer(m, zap.NewNop())(echoCaller)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "prefixed", header: signed, status: http.StatusOK},
		{name: "bearer", header: "Bearer " + signed[len("GHA "):], status: http.StatusOK},
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "garbage", header: "GHA not-a-jwt", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, id.String()+" User", rec.Body.String())
			} else {
				assert.False(t, decode(t, rec).Status)
			}
		})
	}
}

func TestAdmin(t *testing.T) {
	adminID, userID := uuid.New(), uuid.New()
	users := stubUsers{
		adminID: {Base: entity.Base{ID: adminID}, Role: entity.RoleAdmin},
		userID:  {Base: entity.Base{ID: userID}, Role: entity.RoleUser},
	}
	handler := Admin(users, zap.NewNop())(echoCaller)

	serve := func(ctx context.Context) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, serve(utils.SetUserContext(context.Background(), adminID, "Admin")).Code)
	// the stored role wins over the token claim
	assert.Equal(t, http.StatusForbidden, serve(utils.SetUserContext(context.Background(), userID, "Admin")).Code)
	assert.Equal(t, http.StatusForbidden, serve(utils.SetUserContext(context.Background(), uuid.New(), "Admin")).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(context.Background()).Code)
}

type failingUsers struct{}

func (failingUsers) FindByID(context.Context, uuid.UUID) (*entity.User, error) {
	return nil, errors.New("db down")
}

func TestAdmin_LookupFailure(t *testing.T) {
	handler := Admin(failingUsers{}, zap.NewNop())(echoCaller)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil).
		WithContext(utils.SetUserContext(context.Background(), uuid.New(), "Admin"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRecover(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	handler := Recover(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/explode", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.False(t, decode(t, rec).Status)
	require.Equal(t, 1, logs.FilterMessage("PANIC recovered").Len())
}

func TestLogger_RecordsStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("nope"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing?x=1", nil))

	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, http.StatusNotFound, fields["status"])
	assert.EqualValues(t, 4, fields["bytes"])
	assert.Equal(t, "/missing", fields["path"])
	assert.Equal(t, "x=1", fields["query"])
}

func TestLogger_RedactsResetToken(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodPost, "/api/reset-password?token=0123456789abcdef&lang=en", nil))

	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 1)
	query := entries[0].ContextMap()["query"]
	assert.Equal(t, "lang=en&token=REDACTED", query)
	assert.NotContains(t, query, "0123456789abcdef")
}

func TestRedactQuery(t *testing.T) {
	assert.Equal(t, "", redactQuery(""))
	assert.Equal(t, "pageNumber=2&limit=10", redactQuery("pageNumber=2&limit=10"))
	assert.Equal(t, "token=REDACTED", redactQuery("token=a&token=b"))
	assert.Equal(t, "[unparseable]", redactQuery("token=%zz"))
}

func TestCORS(t *testing.T) {
	handler := CORS("https://shop.example.com, https://admin.example.com")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "https://admin.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/login", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
