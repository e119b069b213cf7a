package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Seed is the first admin account created when admin_users is empty.
type Seed struct {
	Email    string
	Password string
}

// Bootstrap creates the admin_users table and seeds it when empty.
func (s *Store) Bootstrap(ctx context.Context, seed Seed, logger *slog.Logger) error {
	if _, err := s.DB.ExecContext(ctx, s.Dialect.UsersTableSQL()); err != nil {
		return fmt.Errorf("bootstrap admin_users: %w", err)
	}
	if err := s.seedAdminUser(ctx, seed, logger); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	return nil
}

func (s *Store) seedAdminUser(ctx context.Context, seed Seed, logger *slog.Logger) error {
	count, err := s.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if seed.Email == "" || seed.Password == "" {
		logger.Warn("no admin users exist; run `rocket-admin create-user` to add one")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := s.CreateUser(ctx, seed.Email, string(hash)); err != nil {
		return err
	}

	logger.Warn("default admin user created from config; change the password and remove auth.seed_password",
		"email", strings.ToLower(seed.Email))
	return nil
}
