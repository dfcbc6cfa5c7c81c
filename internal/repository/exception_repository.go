// This file defines the Exception model and repository methods for per-date
// overrides of recurring slots. An Exception either cancels one occurrence
// (IsDeleted) or retimes it (NewStartTime/NewEndTime, nil meaning "inherit
// from the rule"). At most one exception exists per (slot, date); writes go
// through Upsert which honors that uniqueness.
package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Exception represents a date-specific override of one recurring slot.
// Dates use "YYYY-MM-DD"; override times use DB TIME format "HH:MM:SS".
type Exception struct {
	ID           uint64  // ID is the primary key of the exception
	SlotID       uint64  // SlotID references the owning recurring slot
	Date         string  // Date is the calendar date this override applies to
	NewStartTime *string // NewStartTime overrides the rule start; nil inherits
	NewEndTime   *string // NewEndTime overrides the rule end; nil inherits
	IsDeleted    bool    // IsDeleted cancels the occurrence on Date
	CreatedAt    string  // CreatedAt records row creation time
}

// ExceptionRepo manages persistence for slot exceptions.
type ExceptionRepo struct {
	db *sql.DB
}

// NewExceptionRepo constructs an ExceptionRepo with the given DB handle.
func NewExceptionRepo(db *sql.DB) *ExceptionRepo {
	return &ExceptionRepo{db: db}
}

const exceptionColumns = `id, slot_id, DATE_FORMAT(exception_date, '%Y-%m-%d'),
			   TIME_FORMAT(new_start_time, '%H:%i:%s'), TIME_FORMAT(new_end_time, '%H:%i:%s'),
			   is_deleted, created_at`

func scanException(dest interface {
	Scan(...any) error
}) (*Exception, error) {
	var e Exception
	if err := dest.Scan(&e.ID, &e.SlotID, &e.Date, &e.NewStartTime, &e.NewEndTime, &e.IsDeleted, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// Upsert inserts the exception or, when a row for (slot_id, exception_date)
// already exists, updates it in place. The resulting row id is assigned to
// e.ID; an updated row keeps its original id so repeated writes of the same
// payload return the same id. The locate-then-write pair runs inside a
// transaction so the unique (slot_id, exception_date) constraint is never
// raced by the two statements.
func (r *ExceptionRepo) Upsert(ctx context.Context, e *Exception) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	const sel = `SELECT id FROM exceptions WHERE slot_id = ? AND exception_date = ?`
	var existingID uint64
	err = tx.QueryRowContext(ctx, sel, e.SlotID, e.Date).Scan(&existingID)
	switch {
	case err == nil:
		const upd = `UPDATE exceptions SET new_start_time = ?, new_end_time = ?, is_deleted = ? WHERE id = ?`
		if _, err = tx.ExecContext(ctx, upd, e.NewStartTime, e.NewEndTime, e.IsDeleted, existingID); err != nil {
			return err
		}
		e.ID = existingID
	case errors.Is(err, sql.ErrNoRows):
		const ins = `INSERT INTO exceptions (slot_id, exception_date, new_start_time, new_end_time, is_deleted) VALUES (?, ?, ?, ?, ?)`
		var res sql.Result
		res, err = tx.ExecContext(ctx, ins, e.SlotID, e.Date, e.NewStartTime, e.NewEndTime, e.IsDeleted)
		if err != nil {
			return err
		}
		var id int64
		id, err = res.LastInsertId()
		if err != nil {
			return err
		}
		e.ID = uint64(id)
	default:
		return err
	}

	const sel2 = `SELECT ` + exceptionColumns + ` FROM exceptions WHERE id = ?`
	var got *Exception
	got, err = scanException(tx.QueryRowContext(ctx, sel2, e.ID))
	if err != nil {
		return err
	}
	*e = *got
	return nil
}

// ListByDateRange returns exceptions whose date falls within [from, to]
// inclusive, ordered by id. Used by the weekly merge.
func (r *ExceptionRepo) ListByDateRange(ctx context.Context, from, to string) ([]Exception, error) {
	const q = `SELECT ` + exceptionColumns + `
			   FROM exceptions
			   WHERE exception_date BETWEEN ? AND ?
			   ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Exception
	for rows.Next() {
		e, err := scanException(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListByDate returns every exception for one exact date. The
// write-validation simulation reads these together with the prospective
// payload before committing the upsert; the handler's per-date lock keeps
// the read and the subsequent Upsert effectively atomic.
func (r *ExceptionRepo) ListByDate(ctx context.Context, date string) ([]Exception, error) {
	const q = `SELECT ` + exceptionColumns + `
			   FROM exceptions
			   WHERE exception_date = ?
			   ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Exception
	for rows.Next() {
		e, err := scanException(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteByID removes an exception by primary key, reverting its date to the
// base rule. Returns ErrExceptionNotFound when no row was deleted.
func (r *ExceptionRepo) DeleteByID(ctx context.Context, id uint64) error {
	const q = `DELETE FROM exceptions WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrExceptionNotFound
	}
	return nil
}

// DeleteBySlotAndDate removes the exception identified by the composite
// (slot_id, exception_date) key. Same contract as DeleteByID.
func (r *ExceptionRepo) DeleteBySlotAndDate(ctx context.Context, slotID uint64, date string) error {
	const q = `DELETE FROM exceptions WHERE slot_id = ? AND exception_date = ?`
	res, err := r.db.ExecContext(ctx, q, slotID, date)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrExceptionNotFound
	}
	return nil
}
