// internal/service/auth/admin_create.go
package auth

import (
	"context"
	"fmt"

	"isp-billing-service/internal/domain/auth"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// EnsureAdminExists creates the first admin account when the users table is empty (called on startup).
func (s *AuthService) EnsureAdminExists(ctx context.Context, email, password, name string) error {
	count, err := s.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}

	if count > 0 {
		s.logger.Info("admin account already exists, skipping creation")
		return nil
	}

	if email == "" || password == "" {
		s.logger.Warn("no users exist and ADMIN_EMAIL/ADMIN_PASSWORD are not set; nobody can log in")
		return nil
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("ADMIN_PASSWORD must be at least %d characters", MinPasswordLength)
	}
	if name == "" {
		name = "Administrator"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &auth.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         auth.RoleAdmin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Info("admin account created", zap.Int64("user_id", user.ID), zap.String("email", email))
	return nil
}
