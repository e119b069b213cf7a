package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"rocket-admin/internal/metadata"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	return s.Count(ctx, "admin_users", nil)
}

// FindUserByEmail matches emails case-insensitively; they are stored lowercased.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.findUser(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*User, error) {
	return s.findUser(ctx, "id", id)
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (*User, error) {
	row, err := s.Insert(ctx, "admin_users", metadata.Record{
		"id":            uuid.NewString(),
		"email":         strings.ToLower(strings.TrimSpace(email)),
		"password_hash": passwordHash,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return userFromRow(row), nil
}

func (s *Store) findUser(ctx context.Context, column, value string) (*User, error) {
	row, err := s.findOne(ctx, "admin_users", column, value)
	if err != nil {
		return nil, err
	}
	return userFromRow(row), nil
}

var userColumns = metadata.Columns{
	{Name: "id", SQLName: "id", DataType: metadata.TypeText, IsPrimaryKey: true},
	{Name: "email", SQLName: "email", DataType: metadata.TypeText},
	{Name: "password_hash", SQLName: "password_hash", DataType: metadata.TypeText},
	{Name: "created_at", SQLName: "created_at", DataType: metadata.TypeTimestamp, HasDefault: true},
}

func userFromRow(row metadata.Record) *User {
	rec := userColumns.FromRow(row)
	u := &User{}
	u.ID, _ = rec["id"].(string)
	u.Email, _ = rec["email"].(string)
	u.PasswordHash, _ = rec["password_hash"].(string)
	u.CreatedAt, _ = rec["created_at"].(time.Time)
	return u
}
