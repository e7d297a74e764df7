package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"farmmarket/internal/auth"
	"farmmarket/internal/domain"
	userrepo "farmmarket/internal/repository/user"
	"farmmarket/internal/service/account"
)

type stubUserRepo struct {
	byUsername map[string]*domain.User
	byID       map[string]*domain.User
	nextID     int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byUsername: map[string]*domain.User{}, byID: map[string]*domain.User{}}
}

func (s *stubUserRepo) Create(_ context.Context, in userrepo.CreateUserInput) (*domain.User, error) {
	if _, exists := s.byUsername[in.Username]; exists {
		return nil, domain.ErrAlreadyExists
	}
	s.nextID++
	u := &domain.User{
		ID:           "user-" + in.Username,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Role:         in.Role,
	}
	s.byUsername[u.Username] = u
	s.byID[u.ID] = u
	return u, nil
}

func (s *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *stubUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := s.byUsername[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *stubUserRepo) GetAll(_ context.Context) ([]domain.User, error)            { return nil, nil }
func (s *stubUserRepo) GetPendingVendors(_ context.Context) ([]domain.User, error) { return nil, nil }
func (s *stubUserRepo) UpdateRole(_ context.Context, _ string, _ domain.Role) error {
	return nil
}
func (s *stubUserRepo) UpdateVerification(_ context.Context, _ string, _ bool) error { return nil }
func (s *stubUserRepo) SetBanned(_ context.Context, _ string, _ bool) error          { return nil }
func (s *stubUserRepo) UpdateProfile(_ context.Context, _ string, _ userrepo.UpdateProfileInput) error {
	return nil
}
func (s *stubUserRepo) UpdatePassword(_ context.Context, _, _ string) error { return nil }
func (s *stubUserRepo) Delete(_ context.Context, _ string) error            { return nil }
func (s *stubUserRepo) WalletBalance(_ context.Context, _ string) (float64, error) {
	return 0, nil
}
func (s *stubUserRepo) DebitWallet(_ context.Context, _ string, _ float64) (float64, error) {
	return 0, nil
}
func (s *stubUserRepo) CreateResetCode(_ context.Context, _, _ string, _ time.Time) error {
	return nil
}
func (s *stubUserRepo) ConsumeResetCode(_ context.Context, _, _ string) error { return nil }

type noopMailer struct{}

func (noopMailer) SendResetCode(_, _ string) error { return nil }

func testEngine(t *testing.T) (*gin.Engine, *auth.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	accounts := account.New(newStubUserRepo(), tokens, noopMailer{}, zap.NewNop())

	router := gin.New()
	router.POST("/api/auth/signup", signupHandler(accounts))
	router.POST("/api/auth/login", loginHandler(accounts))

	authed := router.Group("", requireAuth(tokens))
	authed.GET("/api/me", meHandler(accounts))
	authed.GET("/api/admin/ping", requireRole(domain.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "pong"})
	})
	return router, tokens
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSignupLoginAndMe(t *testing.T) {
	router, _ := testEngine(t)

	w := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": "jane",
		"email":    "jane@example.com",
		"password": "secret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "jane",
		"password": "secret-password",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, domain.RoleCustomer, resp.User.Role)

	w = doJSON(t, router, http.MethodGet, "/api/me", resp.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "jane", me.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	router, _ := testEngine(t)

	w := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": "jane",
		"email":    "jane@example.com",
		"password": "secret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "jane",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	router, _ := testEngine(t)

	w := doJSON(t, router, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleForbidsCustomers(t *testing.T) {
	router, _ := testEngine(t)

	w := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": "jane",
		"email":    "jane@example.com",
		"password": "secret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = doJSON(t, router, http.MethodGet, "/api/admin/ping", resp.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSignupRejectsAdminRole(t *testing.T) {
	router, _ := testEngine(t)

	w := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": "mallory",
		"email":    "mallory@example.com",
		"password": "secret-password",
		"role":     "Admin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
