package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"isp-billing-service/internal/domain/auth"
	xerrors "isp-billing-service/internal/pkg/errors"
	"isp-billing-service/internal/pkg/jwt"
	"isp-billing-service/internal/pkg/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*auth.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[int64]*auth.User{}}
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
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
	u, ok := m.byID[id]
	if !ok {
		return nil, xerrors.NotFound("User")
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(_ context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return xerrors.NotFound("User")
	}
	u.PasswordHash = hash
	return nil
}

func (m *memUsers) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.byID)), nil
}

type fixture struct {
	svc   *AuthService
	users *memUsers
	mr    *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mgr, err := jwt.LoadAndBuild(jwt.Config{
		Secret:   "test-secret",
		Issuer:   "isp-billing",
		Audience: "isp-billing-admin",
		TTL:      24 * time.Hour,
	})
	require.NoError(t, err)

	users := newMemUsers()
	svc := NewAuthService(users, mgr, session.NewManager(client), session.NewRateLimiter(client, session.DefaultLoginLimit), nil)
	return &fixture{svc: svc, users: users, mr: mr}
}

func (f *fixture) seed(t *testing.T, email, password string) *auth.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	require.NoError(t, err)
	u := &auth.User{Email: email, PasswordHash: string(hash), Name: "Admin", Role: auth.RoleAdmin}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	f := newFixture(t)
	u := f.seed(t, "admin@isp.local", "admin123")
	ctx := context.Background()

	resp, err := f.svc.Login(ctx, &auth.LoginRequest{Email: "admin@isp.local", Password: "admin123", IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "Login successful", resp.Message)
	assert.Equal(t, u.ID, resp.User.ID)
	assert.Equal(t, auth.RoleAdmin, resp.User.Role)

	claims, err := f.svc.Verify(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "admin@isp.local", claims.Email)
	assert.Equal(t, "Admin", claims.Name)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "admin@isp.local", "admin123")
	ctx := context.Background()

	_, errUnknown := f.svc.Login(ctx, &auth.LoginRequest{Email: "ghost@isp.local", Password: "admin123"})
	_, errWrong := f.svc.Login(ctx, &auth.LoginRequest{Email: "admin@isp.local", Password: "nope"})

	require.ErrorIs(t, errUnknown, xerrors.ErrInvalidCredentials)
	require.ErrorIs(t, errWrong, xerrors.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestLoginEmailIsCaseSensitive(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "admin@isp.local", "admin123")

	_, err := f.svc.Login(context.Background(), &auth.LoginRequest{Email: "ADMIN@isp.local", Password: "admin123"})
	assert.ErrorIs(t, err, xerrors.ErrInvalidCredentials)
}

func TestLoginRequiresFields(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Login(context.Background(), &auth.LoginRequest{Email: "admin@isp.local"})
	assert.ErrorIs(t, err, xerrors.ErrValidation)
}

func TestLoginIsRateLimited(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "admin@isp.local", "admin123")
	ctx := context.Background()
	req := &auth.LoginRequest{Email: "admin@isp.local", Password: "wrong", IPAddress: "10.0.0.9"}

	for i := int64(0); i < session.DefaultLoginLimit.MaxAttempts; i++ {
		_, err := f.svc.Login(ctx, req)
		require.ErrorIs(t, err, xerrors.ErrInvalidCredentials)
	}

	_, err := f.svc.Login(ctx, &auth.LoginRequest{Email: "admin@isp.local", Password: "admin123", IPAddress: "10.0.0.9"})
	assert.ErrorIs(t, err, xerrors.ErrRateLimited)

	// another ip keeps its own budget
	_, err = f.svc.Login(ctx, &auth.LoginRequest{Email: "admin@isp.local", Password: "admin123", IPAddress: "10.0.0.10"})
	assert.NoError(t, err)
}

func TestLoginSurvivesLimiterOutage(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "admin@isp.local", "admin123")
	f.mr.Close()

	_, err := f.svc.Login(context.Background(), &auth.LoginRequest{Email: "admin@isp.local", Password: "admin123"})
	assert.NoError(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, tok := range []string{"", "abc", "a.b.c"} {
		_, err := f.svc.Verify(ctx, tok)
		assert.ErrorIs(t, err, xerrors.ErrInvalidToken, tok)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "admin@isp.local", "admin123")
	ctx := context.Background()

	resp, err := f.svc.Login(ctx, &auth.LoginRequest{Email: "admin@isp.local", Password: "admin123"})
	require.NoError(t, err)
	claims, err := f.svc.Verify(ctx, resp.Token)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, claims))

	_, err = f.svc.Verify(ctx, resp.Token)
	assert.ErrorIs(t, err, xerrors.ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	u := f.seed(t, "admin@isp.local", "admin123")
	ctx := context.Background()

	old, err := f.svc.Login(ctx, &auth.LoginRequest{Email: "admin@isp.local", Password: "admin123"})
	require.NoError(t, err)

	t.Run("weak", func(t *testing.T) {
		err := f.svc.ChangePassword(ctx, u.ID, &auth.ChangePasswordRequest{CurrentPassword: "admin123", NewPassword: "12345"})
		assert.ErrorIs(t, err, xerrors.ErrWeakPassword)
	})

	t.Run("missing fields", func(t *testing.T) {
		err := f.svc.ChangePassword(ctx, u.ID, &auth.ChangePasswordRequest{NewPassword: "123456"})
		assert.ErrorIs(t, err, xerrors.ErrValidation)
	})

	t.Run("wrong current", func(t *testing.T) {
		err := f.svc.ChangePassword(ctx, u.ID, &auth.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "123456"})
		assert.ErrorIs(t, err, xerrors.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := f.svc.ChangePassword(ctx, 999, &auth.ChangePasswordRequest{CurrentPassword: "admin123", NewPassword: "123456"})
		assert.ErrorIs(t, err, xerrors.ErrNotFound)
	})

	t.Run("success", func(t *testing.T) {
		err := f.svc.ChangePassword(ctx, u.ID, &auth.ChangePasswordRequest{CurrentPassword: "admin123", NewPassword: "s3cret!"})
		require.NoError(t, err)

		stored, err := f.users.FindByID(ctx, u.ID)
		require.NoError(t, err)
		cost, err := bcrypt.Cost([]byte(stored.PasswordHash))
		require.NoError(t, err)
		assert.Equal(t, BcryptCost, cost)

		_, err = f.svc.Login(ctx, &auth.LoginRequest{Email: "admin@isp.local", Password: "admin123"})
		assert.ErrorIs(t, err, xerrors.ErrInvalidCredentials)
		_, err = f.svc.Login(ctx, &auth.LoginRequest{Email: "admin@isp.local", Password: "s3cret!"})
		assert.NoError(t, err)

		// tokens issued before the change stay valid
		_, err = f.svc.Verify(ctx, old.Token)
		assert.NoError(t, err)
	})
}

func TestEnsureAdminExists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.EnsureAdminExists(ctx, "root@isp.local", "rootpass", ""))
	n, _ := f.users.Count(ctx)
	assert.EqualValues(t, 1, n)

	u, err := f.users.FindByEmail(ctx, "root@isp.local")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, u.Role)
	assert.Equal(t, "Administrator", u.Name)

	// second call is a no-op
	require.NoError(t, f.svc.EnsureAdminExists(ctx, "other@isp.local", "otherpass", "Other"))
	n, _ = f.users.Count(ctx)
	assert.EqualValues(t, 1, n)
}

func TestEnsureAdminExistsRejectsShortPassword(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.svc.EnsureAdminExists(context.Background(), "root@isp.local", "123", "Root"))
}
