// Package repository contains data access logic for the scheduling domain.
// This file defines the Slot model and repository methods for recurring
// weekly slots. A Slot represents a rule of the form "every <weekday> from
// <start_time> to <end_time>".
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sentinel comparison
)

// Slot represents a weekly recurring time slot rule.
// NOTE: time-of-day values are stored in DB TIME format "HH:MM:SS" and kept
// as strings in the model; created_at uses "2006-01-02 15:04:05" (UTC).
type Slot struct {
	ID        uint64 // ID is the primary key of the slot rule
	DayOfWeek int    // DayOfWeek is the weekday index, 0=Sunday .. 6=Saturday
	StartTime string // StartTime is the wall-clock start ("HH:MM:SS")
	EndTime   string // EndTime is the wall-clock end ("HH:MM:SS")
	CreatedAt string // CreatedAt records row creation time
}

// SlotRepo manages persistence for recurring slot rules.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo constructs a SlotRepo with the given DB handle.
func NewSlotRepo(db *sql.DB) *SlotRepo {
	return &SlotRepo{db: db}
}

// Create inserts a new recurring slot and assigns the generated ID back to
// the struct.  The created_at default is populated by re-reading the row.
// The per-weekday capacity check happens before this call, under the
// weekday lock held by the handler.
func (r *SlotRepo) Create(ctx context.Context, s *Slot) error {
	const q = `INSERT INTO slots (day_of_week, start_time, end_time) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.DayOfWeek, s.StartTime, s.EndTime)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT id, day_of_week, TIME_FORMAT(start_time, '%H:%i:%s'), TIME_FORMAT(end_time, '%H:%i:%s'), created_at FROM slots WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, s.ID).Scan(&s.ID, &s.DayOfWeek, &s.StartTime, &s.EndTime, &s.CreatedAt)
}

// GetByID retrieves a slot rule by its ID.  It returns ErrSlotNotFound if
// there is no matching row.
func (r *SlotRepo) GetByID(ctx context.Context, id uint64) (*Slot, error) {
	const q = `SELECT id, day_of_week, TIME_FORMAT(start_time, '%H:%i:%s'), TIME_FORMAT(end_time, '%H:%i:%s'), created_at FROM slots WHERE id = ?`
	var s Slot
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.DayOfWeek, &s.StartTime, &s.EndTime, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListAll returns every recurring slot ordered by id ascending.  Since a
// week always covers all 7 weekdays, the weekly merge reads the full set.
// Creation order (id order) is the stable order the engine emits slots in.
func (r *SlotRepo) ListAll(ctx context.Context) ([]Slot, error) {
	const q = `SELECT id, day_of_week, TIME_FORMAT(start_time, '%H:%i:%s'), TIME_FORMAT(end_time, '%H:%i:%s'), created_at
			   FROM slots
			   ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Slot
	for rows.Next() {
		var s Slot
		if err := rows.Scan(&s.ID, &s.DayOfWeek, &s.StartTime, &s.EndTime, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListByWeekday returns the slots recurring on the given weekday, ordered by
// id ascending.  Used by the exception write-validation simulation.
func (r *SlotRepo) ListByWeekday(ctx context.Context, weekday int) ([]Slot, error) {
	const q = `SELECT id, day_of_week, TIME_FORMAT(start_time, '%H:%i:%s'), TIME_FORMAT(end_time, '%H:%i:%s'), created_at
			   FROM slots
			   WHERE day_of_week = ?
			   ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, weekday)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Slot
	for rows.Next() {
		var s Slot
		if err := rows.Scan(&s.ID, &s.DayOfWeek, &s.StartTime, &s.EndTime, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CountByWeekday returns how many recurring rules exist for a weekday.  The
// rule-creation capacity check counts raw rules, not post-exception
// effective slots; rules can still be overridden per date afterwards.
func (r *SlotRepo) CountByWeekday(ctx context.Context, weekday int) (int, error) {
	const q = `SELECT COUNT(*) FROM slots WHERE day_of_week = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, weekday).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// DeleteByID removes a slot rule.  The exceptions referencing it are removed
// by the schema's ON DELETE CASCADE, which keeps the read path from ever
// observing an exception whose rule no longer exists.  Returns
// ErrSlotNotFound when no row was deleted.
func (r *SlotRepo) DeleteByID(ctx context.Context, id uint64) error {
	const q = `DELETE FROM slots WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSlotNotFound
	}
	return nil
}
