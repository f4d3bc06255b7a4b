package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"isp-billing-service/internal/domain/auth"
	"isp-billing-service/internal/middleware"
	xerrors "isp-billing-service/internal/pkg/errors"
	"isp-billing-service/internal/pkg/jwt"
	"isp-billing-service/internal/pkg/session"
	authUsecase "isp-billing-service/internal/service/auth"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type memUsers struct {
	mu    sync.Mutex
	users map[int64]*auth.User
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, xerrors.NotFound("User")
}

func (m *memUsers) FindByID(_ context.Context, id int64) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, xerrors.NotFound("User")
}

func (m *memUsers) Create(_ context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = int64(len(m.users) + 1)
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return xerrors.NotFound("User")
	}
	u.PasswordHash = hash
	return nil
}

func (m *memUsers) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func newRouter(t *testing.T) (*gin.Engine, *memUsers) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mgr, err := jwt.LoadAndBuild(jwt.Config{
		Secret:   "handler-secret",
		Issuer:   "isp-billing",
		Audience: "isp-billing-admin",
		TTL:      24 * time.Hour,
	})
	require.NoError(t, err)

	users := &memUsers{users: map[int64]*auth.User{}}
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), authUsecase.BcryptCost)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), &auth.User{
		Email: "admin@isp.local", PasswordHash: string(hash), Name: "Admin", Role: auth.RoleAdmin,
	}))

	svc := authUsecase.NewAuthService(users, mgr, session.NewManager(client),
		session.NewRateLimiter(client, session.DefaultLoginLimit), nil)
	h := NewAuthHandler(svc, zap.NewNop())
	mw := middleware.NewAuthMiddleware(svc)

	r := gin.New()
	g := r.Group("/api/auth")
	g.POST("/login", h.Login)
	g.GET("/verify", mw.Auth(), h.Verify)
	g.PUT("/change-password", mw.Auth(), h.ChangePassword)
	g.POST("/logout", mw.Auth(), h.Logout)
	return r, users
}

func do(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine, password string) string {
	t.Helper()
	w := do(r, http.MethodPost, "/api/auth/login", "", `{"email":"admin@isp.local","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body auth.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	assert.Equal(t, "Login successful", body.Message)
	assert.Equal(t, auth.UserSummary{ID: 1, Email: "admin@isp.local", Name: "Admin", Role: "admin"}, body.User)
	return body.Token
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestLogin(t *testing.T) {
	r, _ := newRouter(t)

	t.Run("success", func(t *testing.T) {
		login(t, r, "secret123")
	})

	t.Run("missing fields", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/auth/login", "", `{"email":"admin@isp.local"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Email and password are required", errorOf(t, w))
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		a := do(r, http.MethodPost, "/api/auth/login", "", `{"email":"admin@isp.local","password":"nope"}`)
		b := do(r, http.MethodPost, "/api/auth/login", "", `{"email":"ghost@isp.local","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, a.Code)
		assert.Equal(t, http.StatusUnauthorized, b.Code)
		assert.Equal(t, a.Body.String(), b.Body.String())
		assert.Equal(t, "Invalid credentials", errorOf(t, a))
	})
}

func TestVerifyAndLogout(t *testing.T) {
	r, _ := newRouter(t)
	token := login(t, r, "secret123")

	w := do(r, http.MethodGet, "/api/auth/verify", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		User jwt.Claims `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.User.UserID)
	assert.Equal(t, "admin@isp.local", body.User.Email)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/auth/verify", "", "").Code)
	assert.Equal(t, "Invalid token.", errorOf(t, do(r, http.MethodGet, "/api/auth/verify", "garbage", "")))

	w = do(r, http.MethodPost, "/api/auth/logout", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/auth/verify", token, "").Code)
}

func TestChangePassword(t *testing.T) {
	r, _ := newRouter(t)
	token := login(t, r, "secret123")

	tests := []struct {
		name   string
		body   string
		status int
		msg    string
	}{
		{"missing fields", `{"currentPassword":"secret123"}`, http.StatusBadRequest, "Current password and new password are required"},
		{"weak password", `{"currentPassword":"secret123","newPassword":"abc"}`, http.StatusBadRequest, "New password must be at least 6 characters"},
		{"wrong current", `{"currentPassword":"wrong","newPassword":"newsecret"}`, http.StatusUnauthorized, "Current password is incorrect"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPut, "/api/auth/change-password", token, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.msg, errorOf(t, w))
		})
	}

	w := do(r, http.MethodPut, "/api/auth/change-password", token, `{"currentPassword":"secret123","newPassword":"newsecret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Password changed successfully"}`, w.Body.String())

	login(t, r, "newsecret")
	assert.Equal(t, http.StatusUnauthorized,
		do(r, http.MethodPost, "/api/auth/login", "", `{"email":"admin@isp.local","password":"secret123"}`).Code)

	// outstanding tokens stay valid
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/auth/verify", token, "").Code)
}
