package appointments

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"doctor-booking-server/internal/models"
)

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{Conn: db, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	return NewGormStore(gdb), mock
}

func TestGormStoreCreate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `appointments`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectExec("INSERT INTO `appointments`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	a := &models.Appointment{
		BaseModel: models.BaseModel{ID: "a1"},
		UserID:    "u1",
		DoctorID:  "1",
		SlotID:    "slot-2026-03-04-09-00",
		Status:    models.StatusConfirmed,
	}
	require.NoError(t, store.Create(context.Background(), a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreCreateRejectsTakenSlot(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `appointments`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectRollback()

	err := store.Create(context.Background(), &models.Appointment{
		BaseModel: models.BaseModel{ID: "a2"},
		DoctorID:  "1",
		SlotID:    "slot-2026-03-04-09-00",
		Status:    models.StatusConfirmed,
	})
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreGetNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT \\* FROM `appointments`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreBookedSlots(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT `slot_id` FROM `appointments`").
		WillReturnRows(sqlmock.NewRows([]string{"slot_id"}).
			AddRow("slot-2026-03-04-09-00").
			AddRow("slot-2026-03-04-09-30"))

	booked, err := store.BookedSlots(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{
		"slot-2026-03-04-09-00": true,
		"slot-2026-03-04-09-30": true,
	}, booked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreCreateMapsDuplicateSlotHold(t *testing.T) {
	store, mock := newMockStore(t)

	// a concurrent booking committed between the count and the insert
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `appointments`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectExec("INSERT INTO `appointments`").
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry '1|slot-2026-03-04-09-00' for key 'idx_appointments_slot_hold'"})
	mock.ExpectRollback()

	a := &models.Appointment{
		BaseModel: models.BaseModel{ID: "a3"},
		DoctorID:  "1",
		SlotID:    "slot-2026-03-04-09-00",
		Status:    models.StatusConfirmed,
	}
	err := store.Create(context.Background(), a)
	assert.ErrorIs(t, err, ErrSlotTaken)
	require.NotNil(t, a.SlotHold)
	assert.Equal(t, "1|slot-2026-03-04-09-00", *a.SlotHold)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreUpdateCancelReleasesSlotHold(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `appointments` WHERE id = \\?.*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "doctor_id", "slot_id", "status"}).
			AddRow("a1", "1", "slot-2026-03-04-09-00", "confirmed"))
	mock.ExpectExec("UPDATE `appointments` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	hold := "1|slot-2026-03-04-09-00"
	a := &models.Appointment{
		BaseModel: models.BaseModel{ID: "a1"},
		DoctorID:  "1",
		SlotID:    "slot-2026-03-04-09-00",
		Status:    models.StatusCancelled,
		SlotHold:  &hold,
	}
	require.NoError(t, store.Update(context.Background(), a))
	assert.Nil(t, a.SlotHold)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreUpdateNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `appointments` WHERE id = \\?.*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := store.Update(context.Background(), &models.Appointment{
		BaseModel: models.BaseModel{ID: "missing"},
		Status:    models.StatusCancelled,
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
