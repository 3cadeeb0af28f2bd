// internal/handler/helpers_test.go
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/config"
	"finance-tracker/internal/domain"
	"finance-tracker/internal/middleware"
	"finance-tracker/internal/storage/memory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// testPassword is used for every fixture user.
const testPassword = "password123"

type testEnv struct {
	router *gin.Engine
	store  *memory.Storage
	tokens *auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStorage()
	tokens := auth.NewTokenService(config.Config{
		JWTSecret:    "test-secret",
		JWTExpiresIn: time.Hour,
	})

	router := gin.New()
	New(store, tokens).Mount(router, middleware.NewAuthMiddleware(tokens))
	return &testEnv{router: router, store: store, tokens: tokens}
}

func (e *testEnv) createUser(t *testing.T, email string) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Department:   domain.DepartmentOther,
		Role:         domain.RoleEmployee,
	}
	_, err = e.store.CreateUser(context.Background(), user)
	require.NoError(t, err)
	return user
}

func (e *testEnv) createCategory(t *testing.T, userID *int64, name string, typ domain.EntryType) *domain.Category {
	t.Helper()
	category := &domain.Category{Name: name, Type: typ, UserID: userID}
	_, err := e.store.CreateCategory(context.Background(), category)
	require.NoError(t, err)
	return category
}

func (e *testEnv) token(t *testing.T, userID int64) string {
	t.Helper()
	token, err := e.tokens.GenerateToken(userID)
	require.NoError(t, err)
	return token
}

// do performs a JSON request; token may be empty for public endpoints.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeInto(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

// fieldError extracts the per-field message from a 400 response body.
func fieldError(t *testing.T, w *httptest.ResponseRecorder, field string) string {
	t.Helper()
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	decodeInto(t, w, &body)
	return body.Errors[field]
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "unexpected status, body: %s", w.Body.String())
}
