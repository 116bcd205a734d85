package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*SlotRepo, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSlotRepo(db), mock
}

func TestSlotRepo_CreateForDate(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM slots WHERE slot_date = ? FOR UPDATE`)).
		WithArgs("2025-10-09").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO slots (slot_date, slot_time, available) VALUES (?, ?, 1),(?, ?, 1)`)).
		WithArgs("2025-10-09", "08:00", "2025-10-09", "09:00").
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectCommit()

	n, err := repo.CreateForDate(context.Background(), "2025-10-09", []string{"08:00", "09:00"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepo_CreateForDate_RejectsExisting(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM slots WHERE slot_date = ? FOR UPDATE`)).
		WithArgs("2025-10-09").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))
	mock.ExpectRollback()

	_, err := repo.CreateForDate(context.Background(), "2025-10-09", []string{"08:00"})
	assert.ErrorIs(t, err, ErrSlotsExist)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Two generators for an empty date can both pass the count check since
// neither has rows to lock; the unique key rejects the loser's insert and
// the repository reports the same conflict the check does.
func TestSlotRepo_CreateForDate_DuplicateKeyLoser(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM slots WHERE slot_date = ? FOR UPDATE`)).
		WithArgs("2025-10-09").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO slots`)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '2025-10-09-08:00' for key 'uq_slots_date_time'"})
	mock.ExpectRollback()

	_, err := repo.CreateForDate(context.Background(), "2025-10-09", []string{"08:00"})
	assert.ErrorIs(t, err, ErrSlotsExist)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepo_ListAvailableDates(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE available = 1 AND slot_date >= ?`)).
		WithArgs("2025-10-01").
		WillReturnRows(sqlmock.NewRows([]string{"slot_date"}).
			AddRow("2025-10-09").AddRow("2025-10-10"))

	dates, err := repo.ListAvailableDates(context.Background(), "2025-10-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-10-09", "2025-10-10"}, dates)
}

func TestSlotRepo_CreateForDate_EmptyTemplate(t *testing.T) {
	repo, mock := newMockDB(t)

	n, err := repo.CreateForDate(context.Background(), "2025-10-09", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepo_ListAvailableTimes(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT slot_time FROM slots`)).
		WithArgs("2025-10-09").
		WillReturnRows(sqlmock.NewRows([]string{"slot_time"}).
			AddRow("08:00").AddRow("09:00").AddRow("14:00"))

	times, err := repo.ListAvailableTimes(context.Background(), "2025-10-09")
	require.NoError(t, err)
	assert.Equal(t, []string{"08:00", "09:00", "14:00"}, times)
}

func TestSlotRepo_ListAvailableTimes_Empty(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT slot_time FROM slots`)).
		WithArgs("2025-10-09").
		WillReturnRows(sqlmock.NewRows([]string{"slot_time"}))

	times, err := repo.ListAvailableTimes(context.Background(), "2025-10-09")
	require.NoError(t, err)
	assert.NotNil(t, times)
	assert.Empty(t, times)
}

func TestSlotRepo_ListByDate(t *testing.T) {
	repo, mock := newMockDB(t)

	created := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM slots
	           WHERE slot_date = ?
	           ORDER BY slot_time ASC`)).
		WithArgs("2025-10-09").
		WillReturnRows(sqlmock.NewRows([]string{"id", "slot_date", "slot_time", "available", "created_at"}).
			AddRow(1, "2025-10-09", "08:00", false, created).
			AddRow(2, "2025-10-09", "09:00", true, created))

	slots, err := repo.ListByDate(context.Background(), "2025-10-09")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.False(t, slots[0].Available)
	assert.Equal(t, "09:00", slots[1].Time)
	assert.True(t, slots[1].Available)
}

func TestSlotRepo_MarkUnavailableTx(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE slots SET available = 0 WHERE slot_date = ? AND slot_time = ? AND available = 1`)).
		WithArgs("2025-10-09", "08:00").
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := repo.DB().BeginTx(context.Background(), nil)
	require.NoError(t, err)
	claimed, err := repo.MarkUnavailableTx(context.Background(), tx, "2025-10-09", "08:00")
	require.NoError(t, err)
	assert.True(t, claimed)
}

// A slot that is missing or already taken affects zero rows; the claim
// must report failure, not succeed silently.
func TestSlotRepo_MarkUnavailableTx_AlreadyTaken(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE slots SET available = 0`)).
		WithArgs("2025-10-09", "08:00").
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := repo.DB().BeginTx(context.Background(), nil)
	require.NoError(t, err)
	claimed, err := repo.MarkUnavailableTx(context.Background(), tx, "2025-10-09", "08:00")
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestSlotRepo_DeleteForDate(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM slots WHERE slot_date = ?`)).
		WithArgs("2025-10-09").
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteForDate(context.Background(), "2025-10-09")
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
}
