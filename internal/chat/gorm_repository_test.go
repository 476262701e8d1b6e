package chat

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"doctor-booking-server/internal/models"
)

func newMockRepository(t *testing.T) (*GormRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{Conn: db, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewGormRepository(gdb), mock
}

func TestGormGetThreadNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT \\* FROM `chat_threads` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetThread(context.Background(), "u1-d1")
	assert.ErrorIs(t, err, ErrThreadNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormThreadsForDecodesParticipants(t *testing.T) {
	repo, mock := newMockRepository(t)
	updated := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "user_id", "doctor_id", "participants", "last_message", "updated_at"}).
		AddRow("u1-d1", "u1", "d1", `["u1","d1"]`, `{"id":"m1","content":"hi"}`, updated)
	mock.ExpectQuery("SELECT \\* FROM `chat_threads` WHERE .*user_id = \\? OR doctor_id = \\?.* ORDER BY updated_at desc").
		WithArgs("u1", "u1").
		WillReturnRows(rows)

	threads, err := repo.ThreadsFor(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, []string{"u1", "d1"}, threads[0].Participants)
	require.NotNil(t, threads[0].LastMessage)
	assert.Equal(t, "hi", threads[0].LastMessage.Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormDeleteMessageMissing(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `messages` WHERE id = \\?").
		WithArgs("m404").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.DeleteMessage(context.Background(), "m404")
	assert.ErrorIs(t, err, ErrMessageNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormMessagesInOrdersByTimestamp(t *testing.T) {
	repo, mock := newMockRepository(t)
	ts := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "thread_id", "sender_id", "receiver_id", "content", "timestamp"}).
		AddRow("m1", "u1-d1", "u1", "d1", "hello", ts).
		AddRow("m2", "u1-d1", "d1", "u1", "hi there", ts.Add(time.Minute))
	mock.ExpectQuery("SELECT \\* FROM `messages` WHERE thread_id = \\? ORDER BY timestamp asc").
		WithArgs("u1-d1").
		WillReturnRows(rows)

	msgs, err := repo.MessagesIn(context.Background(), "u1-d1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m2", msgs[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUpdateMessageUnchangedContent(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `id` FROM `messages` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("m1"))
	mock.ExpectExec("UPDATE `messages` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdateMessage(context.Background(), &models.Message{ID: "m1", Content: "same", Edited: true})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUpdateMessageNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `id` FROM `messages` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.UpdateMessage(context.Background(), &models.Message{ID: "m404", Content: "x"})
	assert.ErrorIs(t, err, ErrMessageNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
