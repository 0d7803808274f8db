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

const batchDetailSelect = `
	SELECT b.id, b.batch_number, b.product_id, b.manufacturer_id,
	       b.manufacturing_date, b.expiry_date, b.status, b.total_items,
	       b.is_recalled, b.recall_reason, b.created_at,
	       p.name AS product_name, p.description AS product_description,
	       p.category, p.image_url,
	       m.name AS manufacturer_name, m.license_number,
	       (SELECT COUNT(*) FROM units u
	         WHERE u.batch_id = b.id AND u.current_status = 'In_Inventory') AS in_inventory_count,
	       (SELECT MIN(u.serial_code) FROM units u WHERE u.batch_id = b.id) AS sample_serial
	FROM batches b
	JOIN products p ON p.id = b.product_id
	JOIN manufacturers m ON m.id = b.manufacturer_id
`

func (r *PGRepository) FindBatchByNumber(ctx context.Context, batchNumber string) (*model.BatchDetail, error) {
	return r.findBatch(ctx, "b.batch_number = ?", batchNumber)
}

func (r *PGRepository) findBatch(ctx context.Context, where string, arg interface{}) (*model.BatchDetail, error) {
	var batch model.BatchDetail
	query := r.DB.Rebind(batchDetailSelect + " WHERE " + where + " LIMIT 1")
	err := r.DB.GetContext(ctx, &batch, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

// FindUnitBySerial loads the unit, its current retailer and its batch.
func (r *PGRepository) FindUnitBySerial(ctx context.Context, serialCode string) (*model.UnitDetail, error) {
	var unit model.UnitDetail
	query := r.DB.Rebind(`
        SELECT u.id, u.serial_code, u.batch_id, u.current_status, u.current_retailer_id,
               u.is_flagged, u.flag_reason, u.created_at,
               r.name AS retailer_name, r.location AS retailer_location
        FROM units u
        LEFT JOIN retailers r ON r.id = u.current_retailer_id
        WHERE u.serial_code = ?
        LIMIT 1
    `)
	err := r.DB.GetContext(ctx, &unit, query, serialCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	batch, err := r.findBatch(ctx, "b.id = ?", unit.BatchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		// units.batch_id is a foreign key; a unit without a batch is corrupt data
		return nil, errors.New("unit " + serialCode + " references a missing batch")
	}
	unit.Batch = batch
	return &unit, nil
}

func (r *PGRepository) BatchExists(ctx context.Context, batchNumber string) (bool, error) {
	var count int
	query := r.DB.Rebind(`SELECT count(*) FROM batches WHERE batch_number = ?`)
	if err := r.DB.GetContext(ctx, &count, query, batchNumber); err != nil {
		return false, err
	}
	return count > 0, nil
}

// RetailerStock lists retailers holding in-inventory units of the batch,
// largest holder first.
func (r *PGRepository) RetailerStock(ctx context.Context, batchID string) ([]model.RetailerStock, error) {
	query := r.DB.Rebind(`
        SELECT r.id AS retailer_id, r.name, r.location, COUNT(*) AS quantity
        FROM units u
        JOIN retailers r ON r.id = u.current_retailer_id
        WHERE u.batch_id = ? AND u.current_status = 'In_Inventory'
        GROUP BY r.id, r.name, r.location
        ORDER BY quantity DESC, r.name ASC
    `)

	items := []model.RetailerStock{}
	if err := r.DB.SelectContext(ctx, &items, query, batchID); err != nil {
		return nil, err
	}
	return items, nil
}
