package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruanfs/agenda-posto/internal/model"
)

func newBookingRepo(t *testing.T) (*BookingRepo, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBookingRepo(db), mock
}

func TestBookingRepo_ActiveExistsTx(t *testing.T) {
	repo, mock := newBookingRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM bookings`)).
		WithArgs("52998224725", "2025-10-09").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	tx, err := repo.DB().BeginTx(context.Background(), nil)
	require.NoError(t, err)
	exists, err := repo.ActiveExistsTx(context.Background(), tx, "52998224725", "2025-10-09")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestBookingRepo_ActiveExistsTx_NoRow(t *testing.T) {
	repo, mock := newBookingRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM bookings`)).
		WithArgs("52998224725", "2025-10-09").
		WillReturnError(sql.ErrNoRows)

	tx, err := repo.DB().BeginTx(context.Background(), nil)
	require.NoError(t, err)
	exists, err := repo.ActiveExistsTx(context.Background(), tx, "52998224725", "2025-10-09")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBookingRepo_CreateTx(t *testing.T) {
	repo, mock := newBookingRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bookings`)).
		WithArgs("Maria da Silva", "52998224725", "maria@example.com", "71999990000", "2025-10-09", "08:00").
		WillReturnResult(sqlmock.NewResult(42, 1))

	tx, err := repo.DB().BeginTx(context.Background(), nil)
	require.NoError(t, err)

	b := &model.Booking{
		Name:  "Maria da Silva",
		CPF:   "52998224725",
		Email: "maria@example.com",
		Phone: "71999990000",
		Date:  "2025-10-09",
		Time:  "08:00",
	}
	require.NoError(t, repo.CreateTx(context.Background(), tx, b))
	assert.EqualValues(t, 42, b.ID)
	assert.Equal(t, model.StatusPending, b.Status)
}

func TestBookingRepo_GetByIDTx_NotFound(t *testing.T) {
	repo, mock := newBookingRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM bookings WHERE id = ? FOR UPDATE`)).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	tx, err := repo.DB().BeginTx(context.Background(), nil)
	require.NoError(t, err)
	_, err = repo.GetByIDTx(context.Background(), tx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingRepo_UpdateStatus_NotFound(t *testing.T) {
	repo, mock := newBookingRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE bookings SET status = ? WHERE id = ?`)).
		WithArgs(model.StatusServed, uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM bookings WHERE id = ?`)).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	err := repo.UpdateStatus(context.Background(), 99, model.StatusServed)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Setting a status the booking already has affects zero rows but is not
// an error.
func TestBookingRepo_UpdateStatus_NoChange(t *testing.T) {
	repo, mock := newBookingRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE bookings SET status = ? WHERE id = ?`)).
		WithArgs(model.StatusServed, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM bookings WHERE id = ?`)).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	assert.NoError(t, repo.UpdateStatus(context.Background(), 7, model.StatusServed))
}

func TestBookingRepo_ListByRange(t *testing.T) {
	repo, mock := newBookingRepo(t)
	created := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "name", "cpf", "email", "phone", "slot_date", "slot_time", "status", "created_at",
	}).AddRow(1, "Maria", "52998224725", "m@x.com", "7199999000", "2025-10-09", "08:00", "pendente", created).
		AddRow(2, "João", "12345678909", "j@x.com", "7198888000", "2025-10-09", "09:00", "atendido", created)

	mock.ExpectQuery(regexp.QuoteMeta(`slot_date >= ?`)).
		WithArgs("2025-10-01", "2025-10-31").
		WillReturnRows(rows)

	got, err := repo.ListByRange(context.Background(), "2025-10-01", "2025-10-31")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Maria", got[0].Name)
	assert.Equal(t, model.StatusServed, got[1].Status)
}

func TestBookingRepo_DeleteServedBefore(t *testing.T) {
	repo, mock := newBookingRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM bookings WHERE status = 'atendido' AND slot_date < ?`)).
		WithArgs("2025-09-09").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteServedBefore(context.Background(), "2025-09-09")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}
