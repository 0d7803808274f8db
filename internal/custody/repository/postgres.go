package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-trace-service/internal/custody"
	"github.com/fekuna/omnipos-trace-service/internal/database"
	"github.com/fekuna/omnipos-trace-service/internal/model"
	"github.com/fekuna/omnipos-trace-service/internal/tracecode"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) ListBySubjects(ctx context.Context, subjects []model.SubjectRef) ([]model.CustodyEvent, error) {
	events := []model.CustodyEvent{}
	if len(subjects) == 0 {
		return events, nil
	}

	conditions := make([]string, 0, len(subjects))
	args := make([]interface{}, 0, len(subjects)*2)
	for _, s := range subjects {
		conditions = append(conditions, "(subject_type = ? AND subject_id = ?)")
		args = append(args, s.Type, s.ID)
	}

	query := r.DB.Rebind(`
        SELECT seq, event_id, subject_type, subject_id, action, actor_name, location, created_at
        FROM custody_events
        WHERE ` + strings.Join(conditions, " OR ") + `
        ORDER BY created_at ASC, seq ASC
    `)

	if err := r.DB.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *PGRepository) ResolveSubject(ctx context.Context, code tracecode.Code) (*model.SubjectRef, error) {
	var row struct {
		ID          string `db:"id"`
		BatchID     string `db:"batch_id"`
		BatchNumber string `db:"batch_number"`
	}

	var (
		query string
		typ   model.SubjectType
	)
	switch code.Kind {
	case tracecode.KindBatch:
		typ = model.SubjectBatch
		query = `SELECT id, id AS batch_id, batch_number FROM batches WHERE batch_number = ?`
	case tracecode.KindSerial:
		typ = model.SubjectUnit
		query = `SELECT u.id, u.batch_id, b.batch_number
                 FROM units u JOIN batches b ON b.id = u.batch_id
                 WHERE u.serial_code = ?`
	default:
		return nil, fmt.Errorf("unsupported code kind %s", code.Kind)
	}

	err := r.DB.GetContext(ctx, &row, r.DB.Rebind(query), code.Value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &model.SubjectRef{
		Type:        typ,
		ID:          row.ID,
		BatchID:     row.BatchID,
		BatchNumber: row.BatchNumber,
	}, nil
}

func (r *PGRepository) Append(ctx context.Context, ev *model.CustodyEvent, transition *model.StatusTransition) (bool, error) {
	applied := false

	err := database.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		var dup int
		if err := tx.GetContext(ctx, &dup, tx.Rebind(`SELECT count(*) FROM custody_events WHERE event_id = ?`), ev.EventID); err != nil {
			return err
		}
		if dup > 0 {
			return nil
		}

		var last time.Time
		err := tx.GetContext(ctx, &last, tx.Rebind(`
            SELECT created_at FROM custody_events
            WHERE subject_type = ? AND subject_id = ?
            ORDER BY created_at DESC, seq DESC
            LIMIT 1
        `), ev.SubjectType, ev.SubjectID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return err
		case ev.CreatedAt.Before(last):
			return fmt.Errorf("%w: %s at %s, latest is %s", custody.ErrOutOfOrder,
				ev.EventID, ev.CreatedAt.Format(time.RFC3339), last.UTC().Format(time.RFC3339))
		}

		res, err := tx.NamedExecContext(ctx, `
            INSERT INTO custody_events (event_id, subject_type, subject_id, action, actor_name, location, created_at)
            VALUES (:event_id, :subject_type, :subject_id, :action, :actor_name, :location, :created_at)
            ON CONFLICT (event_id) DO NOTHING
        `, ev)
		if err != nil {
			return fmt.Errorf("failed to insert custody event: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		applied = true

		if transition == nil {
			return nil
		}
		return applyTransition(ctx, tx, ev, transition)
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func applyTransition(ctx context.Context, tx *sqlx.Tx, ev *model.CustodyEvent, t *model.StatusTransition) error {
	var err error
	switch ev.SubjectType {
	case model.SubjectBatch:
		_, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE batches SET status = ? WHERE id = ?`), t.Status, ev.SubjectID)
	case model.SubjectUnit:
		_, err = tx.ExecContext(ctx, tx.Rebind(`
            UPDATE units
            SET current_status = ?, current_retailer_id = COALESCE(?, current_retailer_id)
            WHERE id = ?
        `), t.Status, t.RetailerID, ev.SubjectID)
	default:
		return fmt.Errorf("unknown subject type %q", ev.SubjectType)
	}
	if err != nil {
		return fmt.Errorf("failed to apply status transition: %w", err)
	}
	return nil
}
