package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-trace-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGProductRepository struct {
	DB *sqlx.DB
}

func NewPGProductRepository(db *sqlx.DB) *PGProductRepository {
	return &PGProductRepository{DB: db}
}

func (r *PGProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	query := r.DB.Rebind(`SELECT id, name, description, category, image_url, price, created_at FROM products WHERE id = ?`)
	err := r.DB.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
