package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/fekuna/omnipos-trace-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-trace-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const summarySelect = `
	SELECT b.batch_number, p.name AS product_name, p.category,
	       m.name AS manufacturer_name, b.status, b.is_recalled, b.expiry_date
	FROM batches b
	JOIN products p ON p.id = b.product_id
	JOIN manufacturers m ON m.id = b.manufacturer_id
`

// FindAll pages through batch summaries, newest first. A query matches the
// batch number, product, category or manufacturer, case-insensitively.
// A zero PageSize returns every match.
func (r *PGRepository) FindAll(ctx context.Context, f *dto.BatchFilters) ([]model.BatchSummary, int, error) {
	where := ""
	args := []interface{}{}
	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		where = ` WHERE (LOWER(b.batch_number) LIKE ? OR LOWER(p.name) LIKE ?
		            OR LOWER(p.category) LIKE ? OR LOWER(m.name) LIKE ?)`
		args = append(args, pattern, pattern, pattern, pattern)
	}

	var count int
	countQuery := r.DB.Rebind(`
		SELECT count(*) FROM batches b
		JOIN products p ON p.id = b.product_id
		JOIN manufacturers m ON m.id = b.manufacturer_id` + where)
	if err := r.DB.GetContext(ctx, &count, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := summarySelect + where + " ORDER BY b.created_at DESC, b.batch_number ASC"
	if f.PageSize > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.PageSize, f.Offset())
	}

	items := []model.BatchSummary{}
	if err := r.DB.SelectContext(ctx, &items, r.DB.Rebind(query), args...); err != nil {
		return nil, 0, err
	}
	return items, count, nil
}

func (r *PGRepository) FindByNumber(ctx context.Context, batchNumber string) (*model.BatchSummary, error) {
	var s model.BatchSummary
	err := r.DB.GetContext(ctx, &s, r.DB.Rebind(summarySelect+" WHERE b.batch_number = ?"), batchNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) SetRecall(ctx context.Context, batchNumber, reason string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		UPDATE batches SET is_recalled = ?, recall_reason = ?, status = ?
		WHERE batch_number = ?
	`), true, reason, model.BatchStatusRecalled, batchNumber)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
