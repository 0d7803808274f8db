// Package seed provisions the first administrator account.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-trace-service/internal/auth"
	"github.com/fekuna/omnipos-trace-service/internal/database"
	"github.com/fekuna/omnipos-trace-service/internal/model"
	"github.com/fekuna/omnipos-trace-service/internal/role"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	DefaultAccessLevel = "super_admin"
	minPasswordLength  = 8
)

var (
	ErrAlreadySeeded = errors.New("a user with this email already exists")
	ErrInvalidInput  = errors.New("invalid admin input")
)

type AdminInput struct {
	Email       string
	Name        string
	Password    string
	AccessLevel string
}

// SeedAdmin creates the user row and its admin profile in one transaction.
// Either both rows exist afterwards or neither does.
func SeedAdmin(ctx context.Context, db *sqlx.DB, in AdminInput, now time.Time) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	level := in.AccessLevel
	if level == "" {
		level = DefaultAccessLevel
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		BaseModel:    model.BaseModel{ID: uuid.New().String(), CreatedAt: now.UTC()},
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         string(role.Admin),
	}
	admin := &model.Admin{UserID: user.ID, AccessLevel: level, CreatedAt: user.CreatedAt}

	err = database.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		var count int
		if err := tx.GetContext(ctx, &count, tx.Rebind(`SELECT count(*) FROM users WHERE email = ?`), email); err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadySeeded
		}

		if _, err := tx.NamedExecContext(ctx, `
            INSERT INTO users (id, email, name, password_hash, role, created_at)
            VALUES (:id, :email, :name, :password_hash, :role, :created_at)
        `, user); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}

		if _, err := tx.NamedExecContext(ctx, `
            INSERT INTO admins (user_id, access_level, created_at)
            VALUES (:user_id, :access_level, :created_at)
        `, admin); err != nil {
			return fmt.Errorf("insert admin profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
