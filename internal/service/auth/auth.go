// internal/service/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"isp-billing-service/internal/domain/auth"
	xerrors "isp-billing-service/internal/pkg/errors"
	"isp-billing-service/internal/pkg/jwt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost        = 10
	MinPasswordLength = 6
)

// TokenDenylist revokes tokens before their natural expiry.
type TokenDenylist interface {
	IsTokenBlacklisted(ctx context.Context, jti string) (bool, error)
	BlacklistToken(ctx context.Context, jti string, expiresAt time.Time) error
}

// LoginLimiter budgets login attempts per (ip, email).
type LoginLimiter interface {
	CheckLoginAttempt(ctx context.Context, ip, email string) (bool, int64, error)
	ResetLoginAttempts(ctx context.Context, ip, email string) error
}

type AuthService struct {
	users      auth.UserRepository
	jwtManager *jwt.Manager
	denylist   TokenDenylist
	limiter    LoginLimiter
	logger     *zap.Logger
}

// NewAuthService wires the credential store and token manager. denylist and limiter may be nil.
func NewAuthService(
	users auth.UserRepository,
	jwtManager *jwt.Manager,
	denylist TokenDenylist,
	limiter LoginLimiter,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      users,
		jwtManager: jwtManager,
		denylist:   denylist,
		limiter:    limiter,
		logger:     logger,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// compareDummy burns one bcrypt comparison so unknown emails take as long as wrong passwords.
func compareDummy(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), BcryptCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// ========== Login ==========

// Login authenticates an admin with email/password and issues a token.
func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, xerrors.Validation("Email and password are required")
	}

	if s.limiter != nil {
		allowed, _, err := s.limiter.CheckLoginAttempt(ctx, req.IPAddress, req.Email)
		switch {
		case err != nil:
			// limiter outage must not lock admins out
			s.logger.Warn("login rate limiter unavailable", zap.Error(err))
		case !allowed:
			return nil, fmt.Errorf("Too many login attempts, please try again in 15 minutes: %w", xerrors.ErrRateLimited)
		}
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, xerrors.ErrNotFound) {
		compareDummy(req.Password)
		return nil, xerrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("login rejected", zap.Int64("user_id", user.ID), zap.String("ip", req.IPAddress))
		return nil, xerrors.ErrInvalidCredentials
	}

	issued, err := s.jwtManager.Generator.Generate(jwt.Subject{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.ResetLoginAttempts(ctx, req.IPAddress, req.Email); err != nil {
			s.logger.Warn("failed to reset login attempts", zap.Error(err))
		}
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID), zap.String("ip", req.IPAddress))

	return &auth.LoginResponse{
		Message: "Login successful",
		Token:   issued.Token,
		User:    user.Summary(),
	}, nil
}

// ========== Verify ==========

// Verify checks the token signature, expiry, issuer and audience, then the denylist.
func (s *AuthService) Verify(ctx context.Context, token string) (*jwt.Claims, error) {
	if token == "" {
		return nil, xerrors.ErrInvalidToken
	}

	claims, err := s.jwtManager.Verifier.Verify(token)
	if err != nil {
		s.logger.Debug("token rejected", zap.Error(err))
		return nil, xerrors.ErrInvalidToken
	}

	if s.denylist != nil && claims.ID != "" {
		revoked, err := s.denylist.IsTokenBlacklisted(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token denylist: %w", err)
		}
		if revoked {
			return nil, xerrors.ErrInvalidToken
		}
	}

	return claims, nil
}

// ========== Logout ==========

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.denylist == nil || claims == nil || claims.ID == "" {
		return nil
	}

	expiresAt := time.Now().Add(s.jwtManager.Generator.Ttl)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := s.denylist.BlacklistToken(ctx, claims.ID, expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.logger.Info("user logged out", zap.Int64("user_id", claims.UserID))
	return nil
}

// ========== Password Management ==========

// ChangePassword replaces the password after checking the current one. Outstanding tokens stay valid.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req *auth.ChangePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return xerrors.Validation("Current password and new password are required")
	}
	if len(req.NewPassword) < MinPasswordLength {
		return xerrors.ErrWeakPassword
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return fmt.Errorf("Current password is incorrect: %w", xerrors.ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	s.logger.Info("password changed", zap.Int64("user_id", user.ID))
	return nil
}
