// internal/handler/user_test.go
package handler

import (
	"net/http"
	"testing"

	"finance-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/register", "", map[string]any{
		"email":            "alice@example.com",
		"password":         "longenough",
		"confirm_password": "longenough",
		"first_name":       "Alice",
		"department":       "engineering",
	})
	requireStatus(t, w, http.StatusCreated)

	var user domain.User
	decodeInto(t, w, &user)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, domain.DepartmentEngineering, user.Department)
	assert.Equal(t, domain.RoleEmployee, user.Role)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "taken@example.com")

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{
			name:  "missing email",
			body:  map[string]any{"password": "longenough", "confirm_password": "longenough"},
			field: "email",
		},
		{
			name:  "malformed email",
			body:  map[string]any{"email": "nope", "password": "longenough", "confirm_password": "longenough"},
			field: "email",
		},
		{
			name:  "duplicate email",
			body:  map[string]any{"email": "taken@example.com", "password": "longenough", "confirm_password": "longenough"},
			field: "email",
		},
		{
			name:  "password too short",
			body:  map[string]any{"email": "a@b.com", "password": "seven77", "confirm_password": "seven77"},
			field: "password",
		},
		{
			name:  "passwords do not match",
			body:  map[string]any{"email": "a@b.com", "password": "longenough", "confirm_password": "different1"},
			field: "password",
		},
		{
			name:  "bad department",
			body:  map[string]any{"email": "a@b.com", "password": "longenough", "confirm_password": "longenough", "department": "magic"},
			field: "department",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/register", "", tt.body)
			requireStatus(t, w, http.StatusBadRequest)
			assert.NotEmpty(t, fieldError(t, w, tt.field))
		})
	}
}

func TestRegister_EightCharPasswordSucceeds(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/register", "", map[string]any{
		"email":            "alice@example.com",
		"password":         "12345678",
		"confirm_password": "12345678",
	})
	requireStatus(t, w, http.StatusCreated)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com")

	w := env.do(t, http.MethodPost, "/login", "", map[string]any{
		"email": "alice@example.com", "password": testPassword,
	})
	requireStatus(t, w, http.StatusOK)
	var body struct {
		Token string `json:"token"`
	}
	decodeInto(t, w, &body)
	require.NotEmpty(t, body.Token)

	// The issued token authenticates as that user.
	w = env.do(t, http.MethodGet, "/api/v1/me", body.Token, nil)
	requireStatus(t, w, http.StatusOK)
	var me domain.User
	decodeInto(t, w, &me)
	assert.Equal(t, user.ID, me.ID)
}

func TestLogin_BadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice@example.com")

	w := env.do(t, http.MethodPost, "/login", "", map[string]any{
		"email": "alice@example.com", "password": "wrong-password",
	})
	requireStatus(t, w, http.StatusUnauthorized)

	w = env.do(t, http.MethodPost, "/login", "", map[string]any{
		"email": "ghost@example.com", "password": testPassword,
	})
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/me", "", nil)
	requireStatus(t, w, http.StatusUnauthorized)

	w = env.do(t, http.MethodGet, "/api/v1/me", "not-a-token", nil)
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestUpdateMe(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com")
	token := env.token(t, user.ID)

	chatID := int64(424242)
	w := env.do(t, http.MethodPut, "/api/v1/me", token, map[string]any{
		"first_name":       "Alice",
		"location":         "Berlin",
		"department":       "finance",
		"telegram_chat_id": chatID,
	})
	requireStatus(t, w, http.StatusOK)

	var me domain.User
	decodeInto(t, w, &me)
	assert.Equal(t, "Alice", me.FirstName)
	assert.Equal(t, "Berlin", me.Location)
	assert.Equal(t, domain.DepartmentFinance, me.Department)
	require.NotNil(t, me.TelegramChatID)
	assert.Equal(t, chatID, *me.TelegramChatID)
	// Email and role are read-only through this endpoint.
	assert.Equal(t, "alice@example.com", me.Email)
	assert.Equal(t, domain.RoleEmployee, me.Role)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice@example.com")

	login := func(password string) int {
		w := env.do(t, http.MethodPost, "/login", "", map[string]any{
			"email": "alice@example.com", "password": password,
		})
		return w.Code
	}
	require.Equal(t, http.StatusOK, login(testPassword))
	var token string
	{
		w := env.do(t, http.MethodPost, "/login", "", map[string]any{
			"email": "alice@example.com", "password": testPassword,
		})
		var body struct {
			Token string `json:"token"`
		}
		decodeInto(t, w, &body)
		token = body.Token
	}

	// Wrong current password.
	w := env.do(t, http.MethodPost, "/api/v1/change-password", token, map[string]any{
		"current_password": "wrong", "new_password": "newsecret1", "confirm_password": "newsecret1",
	})
	requireStatus(t, w, http.StatusBadRequest)
	assert.NotEmpty(t, fieldError(t, w, "current_password"))

	// Mismatched new passwords.
	w = env.do(t, http.MethodPost, "/api/v1/change-password", token, map[string]any{
		"current_password": testPassword, "new_password": "newsecret1", "confirm_password": "newsecret2",
	})
	requireStatus(t, w, http.StatusBadRequest)
	assert.NotEmpty(t, fieldError(t, w, "confirm_password"))

	// Too short.
	w = env.do(t, http.MethodPost, "/api/v1/change-password", token, map[string]any{
		"current_password": testPassword, "new_password": "short1", "confirm_password": "short1",
	})
	requireStatus(t, w, http.StatusBadRequest)
	assert.NotEmpty(t, fieldError(t, w, "new_password"))

	// Success; old password stops working.
	w = env.do(t, http.MethodPost, "/api/v1/change-password", token, map[string]any{
		"current_password": testPassword, "new_password": "newsecret1", "confirm_password": "newsecret1",
	})
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, http.StatusUnauthorized, login(testPassword))
	assert.Equal(t, http.StatusOK, login("newsecret1"))
}
