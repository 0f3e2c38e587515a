package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"geocollect/internal/config"
	"geocollect/internal/models"
)

func postJSON(r http.Handler, path string, body any, token string) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterConfirmLoginFlow(t *testing.T) {
	router, rec := setupTest(t)

	w := postJSON(router, "/api/auth/register", map[string]string{
		"email":        "Alice@Example.com",
		"password":     "secret-password",
		"name":         "Alice",
		"surname":      "Martin",
		"phone":        "0611111111",
		"organization": "Ferme du Nord",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, "editor", created["role"])
	require.Equal(t, "alice@example.com", created["email"])

	// Unconfirmed accounts cannot log in, even with correct credentials.
	w = postJSON(router, "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "secret-password",
	}, "")
	require.Equal(t, http.StatusForbidden, w.Code)

	token := rec.confirmationFor("alice@example.com")
	require.NotEmpty(t, token)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/confirm/"+token, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Confirming twice is harmless.
	req = httptest.NewRequest(http.MethodGet, "/api/auth/confirm/"+token, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, config.DB.Where("email = ?", "alice@example.com").First(&user).Error)
	require.True(t, user.Confirmed)

	w = postJSON(router, "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "secret-password",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var login struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)
	require.Equal(t, "editor", login.User.Role)

	require.NoError(t, config.DB.First(&user, user.ID).Error)
	require.NotNil(t, user.LastLogin)
}

func TestRegisterDuplicateEmailIsCaseInsensitive(t *testing.T) {
	router, _ := setupTest(t)

	body := map[string]string{
		"email":        "A@x.com",
		"password":     "secret-password",
		"name":         "A",
		"surname":      "B",
		"phone":        "0600000000",
		"organization": "Org",
	}
	w := postJSON(router, "/api/auth/register", body, "")
	require.Equal(t, http.StatusCreated, w.Code)

	body["email"] = "a@x.com"
	w = postJSON(router, "/api/auth/register", body, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "already in use")
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	router, _ := setupTest(t)

	w := postJSON(router, "/api/auth/register", map[string]string{
		"email":    "no-name@x.com",
		"password": "secret-password",
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(router, "/api/auth/register", map[string]string{
		"email":        "not-an-email",
		"password":     "secret-password",
		"name":         "A",
		"surname":      "B",
		"phone":        "06",
		"organization": "Org",
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router, _ := setupTest(t)
	createUser(t, "bob@x.com", "editor", true)

	w := postJSON(router, "/api/auth/login", map[string]string{
		"email": "nobody@x.com", "password": "password123",
	}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(router, "/api/auth/login", map[string]string{
		"email": "bob@x.com", "password": "wrong-password",
	}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	router, rec := setupTest(t)
	createUser(t, "carol@x.com", "editor", true)

	// Identical response whether or not the account exists.
	w := postJSON(router, "/api/auth/request-reset", map[string]string{"email": "ghost@x.com"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	missing := w.Body.String()

	w = postJSON(router, "/api/auth/request-reset", map[string]string{"email": "Carol@x.com"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, missing, w.Body.String())

	require.Empty(t, rec.resetFor("ghost@x.com"))
	token := rec.resetFor("carol@x.com")
	require.NotEmpty(t, token)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/reset/"+token, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/reset/not-a-token", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(router, "/api/auth/reset/"+token, map[string]string{"password": "short"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(router, "/api/auth/reset/"+token, map[string]string{"password": "new-password-42"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(router, "/api/auth/login", map[string]string{
		"email": "carol@x.com", "password": "new-password-42",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
}
