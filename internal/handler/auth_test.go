package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/shop-api/internal/config"
	"github.com/iliyamo/shop-api/internal/middleware"
	"github.com/iliyamo/shop-api/internal/model"
	"github.com/iliyamo/shop-api/internal/repository"
	"github.com/iliyamo/shop-api/internal/service"
	"github.com/iliyamo/shop-api/internal/utils"
)

// fakeStore is an in-memory user store for the HTTP-level tests.  It backs
// both the services and the auth gates so a full request cycle runs without
// a database.
type fakeStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*model.User)}
}

func (f *fakeStore) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) UpdateRefreshHash(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.RefreshTokenHash = &hash
		return nil
	}
	return repository.ErrUserNotFound
}

func (f *fakeStore) ClearRefreshHash(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.RefreshTokenHash = nil
		return nil
	}
	return repository.ErrUserNotFound
}

func (f *fakeStore) UpdateProfile(_ context.Context, id string, firstName, lastName *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.FirstName = firstName
		u.LastName = lastName
		return nil
	}
	return repository.ErrUserNotFound
}

func (f *fakeStore) UpdatePasswordHash(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.PasswordHash = hash
		return nil
	}
	return repository.ErrUserNotFound
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeStore) List(_ context.Context) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.User, 0, len(f.users))
	for _, u := range f.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

var (
	testAccess  = utils.TokenProfile{Secret: "access-test-secret", TTL: 15 * time.Minute}
	testRefresh = utils.TokenProfile{Secret: "refresh-test-secret", TTL: 7 * 24 * time.Hour}
)

// newAuthServer wires the auth routes exactly as cmd/server does, with the
// fake store in place of MySQL, the limiter disabled and no Redis.
func newAuthServer(store *fakeStore) *echo.Echo {
	auth := service.NewAuthService(store, testAccess, testRefresh, bcrypt.MinCost)
	h := NewAuthHandler(auth)

	e := echo.New()
	g := e.Group("/api/v1/auth", middleware.NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil))
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh, middleware.RefreshAuth(testRefresh, store))
	g.POST("/logout", h.Logout, middleware.AccessAuth(testAccess, store))
	return e
}

func postJSON(e *echo.Echo, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeAuthResp(t *testing.T, rec *httptest.ResponseRecorder) authResp {
	t.Helper()
	var resp authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRegisterEndpoint(t *testing.T) {
	e := newAuthServer(newFakeStore())

	rec := postJSON(e, "/api/v1/auth/register",
		`{"email":"Alice@Example.com","password":"Passw0rd!","firstName":"Alice"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeAuthResp(t, rec)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, model.RoleUser, resp.User.Role)
	require.NotNil(t, resp.User.FirstName)
	assert.Equal(t, "Alice", *resp.User.FirstName)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotContains(t, rec.Body.String(), "passwordHash")
}

func TestRegisterEndpointRejects(t *testing.T) {
	e := newAuthServer(newFakeStore())

	cases := map[string]struct {
		body string
		code int
	}{
		"invalid json":     {`{`, http.StatusBadRequest},
		"missing email":    {`{"password":"Passw0rd!"}`, http.StatusBadRequest},
		"missing password": {`{"email":"a@example.com"}`, http.StatusBadRequest},
		"short password":   {`{"email":"a@example.com","password":"Ab1!"}`, http.StatusBadRequest},
		"no digit":         {`{"email":"a@example.com","password":"Password!"}`, http.StatusBadRequest},
		"no special":       {`{"email":"a@example.com","password":"Passw0rd"}`, http.StatusBadRequest},
	}
	for name, tc := range cases {
		rec := postJSON(e, "/api/v1/auth/register", tc.body, "")
		assert.Equal(t, tc.code, rec.Code, name)
	}
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	e := newAuthServer(newFakeStore())

	rec := postJSON(e, "/api/v1/auth/register", `{"email":"a@example.com","password":"Passw0rd!"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(e, "/api/v1/auth/register", `{"email":"a@example.com","password":"Other1pw!"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestLoginEndpoint(t *testing.T) {
	e := newAuthServer(newFakeStore())
	postJSON(e, "/api/v1/auth/register", `{"email":"a@example.com","password":"Passw0rd!"}`, "")

	rec := postJSON(e, "/api/v1/auth/login", `{"email":"a@example.com","password":"Passw0rd!"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeAuthResp(t, rec)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
}

// The two login failure modes must produce byte-identical bodies.
func TestLoginEndpointUniformFailure(t *testing.T) {
	e := newAuthServer(newFakeStore())
	postJSON(e, "/api/v1/auth/register", `{"email":"a@example.com","password":"Passw0rd!"}`, "")

	unknown := postJSON(e, "/api/v1/auth/login", `{"email":"nobody@example.com","password":"Passw0rd!"}`, "")
	wrongPw := postJSON(e, "/api/v1/auth/login", `{"email":"a@example.com","password":"WrongPw1!"}`, "")

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, unknown.Body.String(), wrongPw.Body.String())
}

func TestRefreshEndpointRotates(t *testing.T) {
	e := newAuthServer(newFakeStore())

	reg := decodeAuthResp(t, postJSON(e, "/api/v1/auth/register",
		`{"email":"a@example.com","password":"Passw0rd!"}`, ""))

	rec := postJSON(e, "/api/v1/auth/refresh", "", reg.RefreshToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	next := decodeAuthResp(t, rec)
	assert.NotEqual(t, reg.RefreshToken, next.RefreshToken)

	// The presented token was consumed by the rotation.
	rec = postJSON(e, "/api/v1/auth/refresh", "", reg.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The freshly issued one works.
	rec = postJSON(e, "/api/v1/auth/refresh", "", next.RefreshToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshEndpointRejectsAccessToken(t *testing.T) {
	e := newAuthServer(newFakeStore())

	reg := decodeAuthResp(t, postJSON(e, "/api/v1/auth/register",
		`{"email":"a@example.com","password":"Passw0rd!"}`, ""))

	rec := postJSON(e, "/api/v1/auth/refresh", "", reg.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndpointInvalidatesRefresh(t *testing.T) {
	e := newAuthServer(newFakeStore())

	reg := decodeAuthResp(t, postJSON(e, "/api/v1/auth/register",
		`{"email":"a@example.com","password":"Passw0rd!"}`, ""))

	rec := postJSON(e, "/api/v1/auth/logout", "", reg.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logged out")

	// Refresh tokens issued before logout are dead.
	rec = postJSON(e, "/api/v1/auth/refresh", "", reg.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The access token is stateless and keeps working until it expires.
	rec = postJSON(e, "/api/v1/auth/logout", "", reg.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// Full credential lifecycle over the wire: register, login, refresh, then
// attempt to reuse the login's rotated-away refresh token.
func TestCredentialLifecycle(t *testing.T) {
	e := newAuthServer(newFakeStore())

	rec := postJSON(e, "/api/v1/auth/register", `{"email":"alice@example.com","password":"Passw0rd!"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	reg := decodeAuthResp(t, rec)
	assert.Equal(t, model.RoleUser, reg.User.Role)
	require.NotEmpty(t, reg.AccessToken)
	require.NotEmpty(t, reg.RefreshToken)

	rec = postJSON(e, "/api/v1/auth/login", `{"email":"alice@example.com","password":"Passw0rd!"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	login := decodeAuthResp(t, rec)
	assert.NotEqual(t, reg.AccessToken, login.AccessToken)
	assert.NotEqual(t, reg.RefreshToken, login.RefreshToken)

	rec = postJSON(e, "/api/v1/auth/refresh", "", login.RefreshToken)
	require.Equal(t, http.StatusOK, rec.Code)
	refreshed := decodeAuthResp(t, rec)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The login's refresh token was rotated away by the refresh above.
	rec = postJSON(e, "/api/v1/auth/refresh", "", login.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthEndpointsRequireToken(t *testing.T) {
	e := newAuthServer(newFakeStore())

	for _, path := range []string{"/api/v1/auth/refresh", "/api/v1/auth/logout"} {
		rec := postJSON(e, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}
