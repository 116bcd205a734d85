package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ruanfs/agenda-posto/internal/model"
)

// SlotRepo provides data access to the slots table. Dates travel through
// this layer as YYYY-MM-DD strings and times as HH:MM strings; formatting
// is done in SQL so callers never deal with driver time types.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo returns a new SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions that
// span slot and booking writes.
func (r *SlotRepo) DB() *sql.DB { return r.db }

// CreateForDate inserts one available slot per template time for the given
// date inside a single transaction. It returns ErrSlotsExist when any slot
// row already exists for the date; generation is all-or-nothing. The count
// of inserted rows is returned on success.
func (r *SlotRepo) CreateForDate(ctx context.Context, date string, times []string) (int, error) {
	if len(times) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	// Reject regeneration for a date that already has slots. The FOR UPDATE
	// lock plus the unique key on (slot_date, slot_time) close the window
	// between this check and the insert.
	var existing int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM slots WHERE slot_date = ? FOR UPDATE`, date,
	).Scan(&existing); err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, ErrSlotsExist
	}
	query := `INSERT INTO slots (slot_date, slot_time, available) VALUES `
	args := make([]interface{}, 0, len(times)*2)
	placeholders := make([]string, 0, len(times))
	for _, t := range times {
		placeholders = append(placeholders, "(?, ?, 1)")
		args = append(args, date, t)
	}
	query += strings.Join(placeholders, ",")
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		// Two generators for the same date can both pass the count check,
		// since neither sees rows to lock. The unique key catches the loser
		// here; report it as the same conflict the check reports.
		if isDuplicateKey(err) {
			return 0, ErrSlotsExist
		}
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return len(times), nil
}

// ListAvailableDates returns the distinct dates, from the given day on,
// that still have at least one available slot, in ascending order. The
// caller supplies today as a YYYY-MM-DD string; computing it in Go keeps
// the horizon on the same UTC clock the booking checks use, independent
// of the MySQL session time zone.
func (r *SlotRepo) ListAvailableDates(ctx context.Context, today string) ([]string, error) {
	const q = `SELECT DISTINCT DATE_FORMAT(slot_date, '%Y-%m-%d')
	           FROM slots
	           WHERE available = 1 AND slot_date >= ?
	           ORDER BY slot_date ASC`
	rows, err := r.db.QueryContext(ctx, q, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	dates := make([]string, 0)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dates, nil
}

// ListAvailableTimes returns the available times for a date in ascending
// time-of-day order. An empty slice means the date is fully booked or has
// no slots at all.
func (r *SlotRepo) ListAvailableTimes(ctx context.Context, date string) ([]string, error) {
	const q = `SELECT slot_time FROM slots
	           WHERE slot_date = ? AND available = 1
	           ORDER BY slot_time ASC`
	rows, err := r.db.QueryContext(ctx, q, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	times := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return times, nil
}

// ListByDate returns every slot row for a date, taken ones included, in
// ascending time-of-day order.
func (r *SlotRepo) ListByDate(ctx context.Context, date string) ([]model.Slot, error) {
	const q = `SELECT id, DATE_FORMAT(slot_date, '%Y-%m-%d'), slot_time, available, created_at
	           FROM slots
	           WHERE slot_date = ?
	           ORDER BY slot_time ASC`
	rows, err := r.db.QueryContext(ctx, q, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]model.Slot, 0)
	for rows.Next() {
		var s model.Slot
		if err := rows.Scan(&s.ID, &s.Date, &s.Time, &s.Available, &s.CreatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// MarkUnavailableTx flips the slot matching (date, time) to unavailable
// within the provided transaction. It reports whether a row was actually
// flipped: false means the slot is missing or already taken, and callers
// must treat that as a failed claim and roll back. The conditional
// `available = 1` predicate is what makes two concurrent bookings of the
// same slot resolve to exactly one winner.
func (r *SlotRepo) MarkUnavailableTx(ctx context.Context, tx *sql.Tx, date, timeOfDay string) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE slots SET available = 0 WHERE slot_date = ? AND slot_time = ? AND available = 1`,
		date, timeOfDay,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkAvailableTx flips the slot matching (date, time) back to available
// within the provided transaction. Restoring a slot that no longer exists
// is a no-op; cancellation of a booking whose date was purged should still
// succeed.
func (r *SlotRepo) MarkAvailableTx(ctx context.Context, tx *sql.Tx, date, timeOfDay string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE slots SET available = 1 WHERE slot_date = ? AND slot_time = ?`,
		date, timeOfDay,
	)
	return err
}

// DeleteForDate removes every slot row for a date and returns how many
// rows were removed.
func (r *SlotRepo) DeleteForDate(ctx context.Context, date string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM slots WHERE slot_date = ?`, date)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
