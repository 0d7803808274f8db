package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-trace-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	query := r.DB.Rebind(`SELECT id, email, name, password_hash, role, created_at FROM users WHERE email = ? LIMIT 1`)
	err := r.DB.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
