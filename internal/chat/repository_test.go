// AngelaMos | 2026
// repository_test.go

package chat

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/localmart/internal/core"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func conversationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "customer_id", "business_id", "created_at", "updated_at", "last_message_at",
	})
}

func TestRepository_GetByID(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewRepository(db)

	now := time.Now()
	mock.ExpectQuery("FROM conversations").
		WithArgs("conv-1").
		WillReturnRows(conversationRows().
			AddRow("conv-1", "customer-1", "business-1", now, now, nil))

	conv, err := repo.GetByID(context.Background(), "conv-1")
	require.NoError(t, err)

	assert.Equal(t, "conv-1", conv.ID)
	assert.Equal(t, "customer-1", conv.CustomerID)
	assert.Nil(t, conv.LastMessageAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery("FROM conversations").
		WithArgs("missing").
		WillReturnRows(conversationRows())

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindOrCreate(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewRepository(db)

	now := time.Now()
	mock.ExpectExec("INSERT INTO conversations").
		WithArgs("customer-1", "business-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM conversations").
		WithArgs("customer-1", "business-1").
		WillReturnRows(conversationRows().
			AddRow("conv-1", "customer-1", "business-1", now, now, nil))

	conv, err := repo.FindOrCreate(context.Background(), "customer-1", "business-1")
	require.NoError(t, err)

	assert.Equal(t, "conv-1", conv.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindOrCreate_ExistingPair(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewRepository(db)

	now := time.Now()
	// The conflicting insert touches no rows; the select still finds
	// the winner.
	mock.ExpectExec("INSERT INTO conversations").
		WithArgs("customer-1", "business-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM conversations").
		WithArgs("customer-1", "business-1").
		WillReturnRows(conversationRows().
			AddRow("conv-existing", "customer-1", "business-1", now, now, &now))

	conv, err := repo.FindOrCreate(context.Background(), "customer-1", "business-1")
	require.NoError(t, err)

	assert.Equal(t, "conv-existing", conv.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InsertMessage(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewRepository(db)

	created := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO messages").
		WithArgs("msg-1", "conv-1", "customer-1", "hello").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectExec("UPDATE conversations").
		WithArgs("conv-1", created).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	msg := &Message{
		ID:             "msg-1",
		ConversationID: "conv-1",
		SenderID:       "customer-1",
		Content:        "hello",
	}
	require.NoError(t, repo.InsertMessage(context.Background(), msg))

	assert.Equal(t, created, msg.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InsertMessage_RollsBackOnBumpFailure(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewRepository(db)

	created := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO messages").
		WithArgs("msg-1", "conv-1", "customer-1", "hello").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectExec("UPDATE conversations").
		WithArgs("conv-1", created).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	msg := &Message{
		ID:             "msg-1",
		ConversationID: "conv-1",
		SenderID:       "customer-1",
		Content:        "hello",
	}
	err := repo.InsertMessage(context.Background(), msg)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListMessages(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewRepository(db)

	now := time.Now()
	before := now.Add(-time.Minute)
	mock.ExpectQuery("FROM messages").
		WithArgs("conv-1", &before, 20).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "conversation_id", "sender_id", "content", "created_at", "read_at",
		}).
			AddRow("msg-1", "conv-1", "customer-1", "first", now.Add(-3*time.Minute), nil).
			AddRow("msg-2", "conv-1", "business-1", "second", now.Add(-2*time.Minute), nil))

	messages, err := repo.ListMessages(context.Background(), "conv-1", &before, 20)
	require.NoError(t, err)

	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_MarkRead(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectExec("UPDATE messages").
		WithArgs("conv-1", "business-1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	updated, err := repo.MarkRead(context.Background(), "conv-1", "business-1")
	require.NoError(t, err)

	assert.Equal(t, int64(4), updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListForUser(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewRepository(db)

	now := time.Now()
	name := "Ravi Kumar"
	lastID := "msg-9"
	lastSender := "business-1"
	lastContent := "see you at 5"
	columns := []string{
		"id", "customer_id", "business_id", "created_at", "updated_at",
		"last_message_at", "other_user_id", "other_full_name",
		"other_avatar_url", "last_message_id", "last_message_sender_id",
		"last_message_content", "last_message_created_at", "last_message_read_at",
	}
	mock.ExpectQuery("FROM conversations").
		WithArgs("customer-1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("conv-1", "customer-1", "business-1", now, now, &now,
				"business-1", &name, nil, &lastID, &lastSender, &lastContent, &now, nil).
			AddRow("conv-2", "customer-1", "business-2", now, now, nil,
				"business-2", nil, nil, nil, nil, nil, nil, nil))

	rows, err := repo.ListForUser(context.Background(), "customer-1")
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "business-1", rows[0].OtherUserID)
	assert.Equal(t, "see you at 5", *rows[0].LastMessageContent)
	assert.Nil(t, rows[1].LastMessageID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
