package messagerepo_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderchat/internal/domain"
	apperror "orderchat/internal/errors"
	"orderchat/internal/pkg/logger"
	"orderchat/internal/repository/messagerepo"
)

func newRepo(t *testing.T) (*messagerepo.MessageRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return messagerepo.NewMessageRepository(db, time.Second, logger.NewLogger("error")), mock
}

func TestCreate_OpenChatroom(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("WHERE c.id = $2 AND NOT c.is_closed")).
		WithArgs(sqlmock.AnyArg(), "chat-1", "user-1", "olá", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	msg, err := repo.Create(context.Background(), domain.Message{ChatroomID: "chat-1", UserID: "user-1", Content: "olá"})

	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "olá", msg.Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_ClosedChatroomIsConflict(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("WHERE c.id = $2 AND NOT c.is_closed")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Create(context.Background(), domain.Message{ChatroomID: "chat-1", UserID: "user-1", Content: "olá"})

	assert.IsType(t, &apperror.ConflictError{}, err)
}

func TestCreate_DBFailure(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO messages")).WillReturnError(errors.New("timeout"))

	_, err := repo.Create(context.Background(), domain.Message{ChatroomID: "chat-1"})

	assert.IsType(t, &apperror.InternalError{}, err)
}

func TestFindByChatroom_Ordered(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE chatroom_id = $1")).
		WithArgs("chat-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "chatroom_id", "user_id", "content", "created_at"}).
			AddRow("m1", "chat-1", "user-1", "primeira", now).
			AddRow("m2", "chat-1", "admin-1", "segunda", now))

	msgs, err := repo.FindByChatroom(context.Background(), "chat-1")

	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "primeira", msgs[0].Content)
	assert.Equal(t, "segunda", msgs[1].Content)
}
