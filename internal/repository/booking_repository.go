package repository

import (
	"context"
	"database/sql"

	"github.com/ruanfs/agenda-posto/internal/model"
)

// BookingRepo provides CRUD operations for bookings. The write paths that
// must stay consistent with slot availability are exposed as `...Tx`
// variants so handlers can tie the booking write and the slot flip into a
// single transaction. All timestamp fields are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for transaction management.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, name, cpf, email, phone,
	DATE_FORMAT(slot_date, '%Y-%m-%d'), slot_time, status, created_at`

func scanBooking(row interface{ Scan(...interface{}) error }) (*model.Booking, error) {
	var b model.Booking
	if err := row.Scan(&b.ID, &b.Name, &b.CPF, &b.Email, &b.Phone,
		&b.Date, &b.Time, &b.Status, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// ActiveExistsTx reports whether the CPF already holds an active booking.
// Active means status is still pending and the booked date has not passed;
// a served or past booking does not block a new one. The row is locked
// FOR UPDATE so two concurrent requests for the same CPF serialize on the
// existence check instead of both passing it.
func (r *BookingRepo) ActiveExistsTx(ctx context.Context, tx *sql.Tx, cpf, today string) (bool, error) {
	const q = `SELECT id FROM bookings
	           WHERE cpf = ? AND status = 'pendente' AND slot_date >= ?
	           LIMIT 1 FOR UPDATE`
	var id uint64
	err := tx.QueryRowContext(ctx, q, cpf, today).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateTx inserts a new pending booking within the scope of an existing
// transaction and populates the generated ID on the provided value. The
// caller must commit or roll back the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (name, cpf, email, phone, slot_date, slot_time, status)
	           VALUES (?, ?, ?, ?, ?, ?, 'pendente')`
	res, err := tx.ExecContext(ctx, q, b.Name, b.CPF, b.Email, b.Phone, b.Date, b.Time)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.Status = model.StatusPending
	return nil
}

// GetByIDTx loads a booking by primary key within a transaction, locking
// the row FOR UPDATE. It returns ErrNotFound when no such booking exists.
// Cancellation uses this to pin the row before deleting it and restoring
// its slot.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	b, err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ? FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// DeleteTx removes a booking row within the provided transaction.
func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	return err
}

// UpdateStatus sets the status of a booking. The slot is untouched: a
// served booking keeps its slot consumed. It returns ErrNotFound when the
// booking does not exist.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish "missing" from "already in that status".
		var exists uint64
		err := r.db.QueryRowContext(ctx, `SELECT id FROM bookings WHERE id = ?`, id).Scan(&exists)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// ListByRange returns bookings whose date falls inside the optional
// [start, end] range, ordered by date then time. Empty bounds are open
// ended; passing both empty lists everything.
func (r *BookingRepo) ListByRange(ctx context.Context, start, end string) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings`
	var (
		conds []string
		args  []interface{}
	)
	if start != "" {
		conds = append(conds, `slot_date >= ?`)
		args = append(args, start)
	}
	if end != "" {
		conds = append(conds, `slot_date <= ?`)
		args = append(args, end)
	}
	for i, c := range conds {
		if i == 0 {
			q += ` WHERE ` + c
		} else {
			q += ` AND ` + c
		}
	}
	q += ` ORDER BY slot_date ASC, slot_time ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// DeleteServedBefore purges served bookings whose date is strictly before
// the cutoff (YYYY-MM-DD). Pending bookings are never touched regardless
// of age. The number of purged rows is returned; running it again with
// the same cutoff removes nothing further.
func (r *BookingRepo) DeleteServedBefore(ctx context.Context, cutoff string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM bookings WHERE status = 'atendido' AND slot_date < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
