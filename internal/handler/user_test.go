package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/shop-api/internal/middleware"
	"github.com/iliyamo/shop-api/internal/model"
	"github.com/iliyamo/shop-api/internal/service"
)

// newUserServer wires both the auth and account routes over one fake store
// so tests can register, then exercise /users with real tokens.
func newUserServer(store *fakeStore) *echo.Echo {
	auth := service.NewAuthService(store, testAccess, testRefresh, bcrypt.MinCost)
	users := service.NewUserService(store, bcrypt.MinCost)
	ah := NewAuthHandler(auth)
	uh := NewUserHandler(users)

	e := echo.New()
	e.POST("/api/v1/auth/register", ah.Register)
	e.POST("/api/v1/auth/refresh", ah.Refresh, middleware.RefreshAuth(testRefresh, store))

	g := e.Group("/api/v1/users", middleware.AccessAuth(testAccess, store))
	g.GET("/me", uh.Me)
	g.PATCH("/me", uh.UpdateProfile)
	g.POST("/me/password", uh.ChangePassword)
	g.DELETE("/me", uh.DeleteAccount)
	g.GET("", uh.List, middleware.RequireRole(model.RoleAdmin))
	return e
}

func request(e *echo.Echo, method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, e *echo.Echo, email string) authResp {
	t.Helper()
	rec := postJSON(e, "/api/v1/auth/register", `{"email":"`+email+`","password":"Passw0rd!"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeAuthResp(t, rec)
}

func TestMeEndpoint(t *testing.T) {
	store := newFakeStore()
	e := newUserServer(store)
	reg := register(t, e, "a@example.com")

	rec := request(e, http.MethodGet, "/api/v1/users/me", "", reg.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"a@example.com"`)
	assert.NotContains(t, rec.Body.String(), "passwordHash")
	assert.NotContains(t, rec.Body.String(), "refreshTokenHash")

	rec = request(e, http.MethodGet, "/api/v1/users/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateProfileEndpoint(t *testing.T) {
	store := newFakeStore()
	e := newUserServer(store)
	reg := register(t, e, "a@example.com")

	rec := request(e, http.MethodPatch, "/api/v1/users/me",
		`{"firstName":"Alice","lastName":"Liddell"}`, reg.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"firstName":"Alice"`)
	assert.Contains(t, rec.Body.String(), `"lastName":"Liddell"`)
	assert.Contains(t, rec.Body.String(), `"email":"a@example.com"`)

	// The change is persisted, not just echoed.
	rec = request(e, http.MethodGet, "/api/v1/users/me", "", reg.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"firstName":"Alice"`)

	rec = request(e, http.MethodPatch, "/api/v1/users/me", `{"firstName":"Alicia"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePasswordEndpoint(t *testing.T) {
	store := newFakeStore()
	e := newUserServer(store)
	reg := register(t, e, "a@example.com")

	rec := request(e, http.MethodPost, "/api/v1/users/me/password",
		`{"currentPassword":"Passw0rd!","newPassword":"NewPassw0rd!"}`, reg.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Password changed successfully")

	// The change revoked the refresh credential.
	rec = postJSON(e, "/api/v1/auth/refresh", "", reg.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePasswordEndpointRejects(t *testing.T) {
	store := newFakeStore()
	e := newUserServer(store)
	reg := register(t, e, "a@example.com")

	cases := map[string]struct {
		body string
		want string
	}{
		"wrong current": {`{"currentPassword":"WrongPw1!","newPassword":"NewPassw0rd!"}`, "current password is incorrect"},
		"same password": {`{"currentPassword":"Passw0rd!","newPassword":"Passw0rd!"}`, "same as current"},
		"weak new":      {`{"currentPassword":"Passw0rd!","newPassword":"weak"}`, "at least 8 characters"},
		"missing field": {`{"currentPassword":"Passw0rd!"}`, "required"},
	}
	for name, tc := range cases {
		rec := request(e, http.MethodPost, "/api/v1/users/me/password", tc.body, reg.AccessToken)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		assert.Contains(t, rec.Body.String(), tc.want, name)
	}
}

func TestDeleteAccountEndpoint(t *testing.T) {
	store := newFakeStore()
	e := newUserServer(store)
	reg := register(t, e, "a@example.com")

	rec := request(e, http.MethodDelete, "/api/v1/users/me", "", reg.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Account deleted successfully")

	// The account is gone, so the still-signed token no longer resolves.
	rec = request(e, http.MethodGet, "/api/v1/users/me", "", reg.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListUsersAdminOnly(t *testing.T) {
	store := newFakeStore()
	e := newUserServer(store)
	reg := register(t, e, "a@example.com")

	// A regular user is authenticated but not allowed.
	rec := request(e, http.MethodGet, "/api/v1/users", "", reg.AccessToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Promote the account and try again.
	store.mu.Lock()
	store.users[reg.User.ID].Role = model.RoleAdmin
	store.mu.Unlock()

	rec = request(e, http.MethodGet, "/api/v1/users", "", reg.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"a@example.com"`)
}
