package messageservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"orderchat/internal/domain"
	apperror "orderchat/internal/errors"
	"orderchat/internal/pkg/logger"
	"orderchat/internal/service/messageservice"
)

type MockChatroomRepository struct {
	mock.Mock
}

func (m *MockChatroomRepository) FindByID(ctx context.Context, id string) (domain.Chatroom, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Chatroom), args.Error(1)
}

func (m *MockChatroomRepository) FindAll(ctx context.Context) ([]domain.Chatroom, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Chatroom), args.Error(1)
}

func (m *MockChatroomRepository) FindByOwner(ctx context.Context, userID string) ([]domain.Chatroom, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Chatroom), args.Error(1)
}

func (m *MockChatroomRepository) Ownership(ctx context.Context, id string) (domain.ChatroomOwnership, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.ChatroomOwnership), args.Error(1)
}

func (m *MockChatroomRepository) Close(ctx context.Context, id string) (domain.Chatroom, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Chatroom), args.Error(1)
}

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, msg domain.Message) (domain.Message, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(domain.Message), args.Error(1)
}

func (m *MockMessageRepository) FindByChatroom(ctx context.Context, chatroomID string) ([]domain.Message, error) {
	args := m.Called(ctx, chatroomID)
	return args.Get(0).([]domain.Message), args.Error(1)
}

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Broadcast(msg domain.Message, excludeSessionID string) {
	m.Called(msg, excludeSessionID)
}

var (
	owner = domain.Principal{UserID: "user-1", Role: domain.RoleRegular}
	other = domain.Principal{UserID: "user-2", Role: domain.RoleRegular}
	admin = domain.Principal{UserID: "admin-1", Role: domain.RoleAdmin}
)

type fixture struct {
	chatrooms   *MockChatroomRepository
	messages    *MockMessageRepository
	broadcaster *MockBroadcaster
	svc         *messageservice.Service
	chatroomID  string
}

func newFixture() *fixture {
	f := &fixture{
		chatrooms:   new(MockChatroomRepository),
		messages:    new(MockMessageRepository),
		broadcaster: new(MockBroadcaster),
		chatroomID:  uuid.NewString(),
	}
	f.svc = messageservice.NewService(f.chatrooms, f.messages, f.broadcaster, logger.NewLogger("debug"))
	f.chatrooms.On("Ownership", mock.Anything, f.chatroomID).
		Return(domain.ChatroomOwnership{ChatroomID: f.chatroomID, OrderID: "order-1", UserID: owner.UserID}, nil).Maybe()
	return f
}

func TestPostMessage_PersistsThenBroadcasts(t *testing.T) {
	f := newFixture()
	stored := domain.Message{ID: "m1", ChatroomID: f.chatroomID, UserID: owner.UserID, Content: "olá"}

	f.messages.On("Create", mock.Anything, domain.Message{ChatroomID: f.chatroomID, UserID: owner.UserID, Content: "olá"}).
		Return(stored, nil).Once()
	f.broadcaster.On("Broadcast", stored, "session-9").Once()

	msg, err := f.svc.PostMessage(context.Background(), domain.NewMessage{
		ChatroomID:      f.chatroomID,
		Author:          owner,
		Content:         "  olá ",
		OriginSessionID: "session-9",
	})

	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
	f.messages.AssertExpectations(t)
	f.broadcaster.AssertExpectations(t)
}

func TestPostMessage_AdminMayPost(t *testing.T) {
	f := newFixture()
	stored := domain.Message{ID: "m2", ChatroomID: f.chatroomID, UserID: admin.UserID, Content: "ok"}

	f.messages.On("Create", mock.Anything, mock.Anything).Return(stored, nil)
	f.broadcaster.On("Broadcast", stored, "")

	_, err := f.svc.PostMessage(context.Background(), domain.NewMessage{ChatroomID: f.chatroomID, Author: admin, Content: "ok"})

	assert.NoError(t, err)
}

func TestPostMessage_BlankContent(t *testing.T) {
	f := newFixture()

	_, err := f.svc.PostMessage(context.Background(), domain.NewMessage{ChatroomID: f.chatroomID, Author: owner, Content: "   "})

	assert.IsType(t, &apperror.ValidationError{}, err)
	f.messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPostMessage_NonOwnerUnauthorized(t *testing.T) {
	f := newFixture()

	_, err := f.svc.PostMessage(context.Background(), domain.NewMessage{ChatroomID: f.chatroomID, Author: other, Content: "oi"})

	assert.IsType(t, &apperror.UnauthorizedError{}, err)
	f.messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.broadcaster.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
}

func TestPostMessage_ClosedChatroomConflictNothingBroadcast(t *testing.T) {
	f := newFixture()

	f.messages.On("Create", mock.Anything, mock.Anything).Return(domain.Message{}, apperror.NewConflictError("Chatroom está fechado"))

	_, err := f.svc.PostMessage(context.Background(), domain.NewMessage{ChatroomID: f.chatroomID, Author: owner, Content: "oi"})

	assert.IsType(t, &apperror.ConflictError{}, err)
	f.broadcaster.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
}

func TestPostMessage_UnknownChatroom(t *testing.T) {
	f := newFixture()
	missing := uuid.NewString()
	f.chatrooms.On("Ownership", mock.Anything, missing).Return(domain.ChatroomOwnership{}, apperror.NewNotFoundError("Chatroom não encontrado"))

	_, err := f.svc.PostMessage(context.Background(), domain.NewMessage{ChatroomID: missing, Author: admin, Content: "oi"})
	assert.IsType(t, &apperror.NotFoundError{}, err)

	_, err = f.svc.PostMessage(context.Background(), domain.NewMessage{ChatroomID: "xyz", Author: admin, Content: "oi"})
	assert.IsType(t, &apperror.NotFoundError{}, err)
}

func TestPostMessage_NilBroadcaster(t *testing.T) {
	chatrooms := new(MockChatroomRepository)
	messages := new(MockMessageRepository)
	svc := messageservice.NewService(chatrooms, messages, nil, logger.NewLogger("debug"))
	id := uuid.NewString()

	chatrooms.On("Ownership", mock.Anything, id).Return(domain.ChatroomOwnership{ChatroomID: id, UserID: owner.UserID}, nil)
	messages.On("Create", mock.Anything, mock.Anything).Return(domain.Message{ID: "m1"}, nil)

	_, err := svc.PostMessage(context.Background(), domain.NewMessage{ChatroomID: id, Author: owner, Content: "oi"})

	assert.NoError(t, err)
}

func TestListMessages(t *testing.T) {
	f := newFixture()
	msgs := []domain.Message{{ID: "m1"}, {ID: "m2"}}
	f.messages.On("FindByChatroom", mock.Anything, f.chatroomID).Return(msgs, nil)

	got, err := f.svc.ListMessages(context.Background(), f.chatroomID, owner)
	require.NoError(t, err)
	assert.Equal(t, msgs, got)

	_, err = f.svc.ListMessages(context.Background(), f.chatroomID, other)
	assert.IsType(t, &apperror.UnauthorizedError{}, err)
	f.messages.AssertNumberOfCalls(t, "FindByChatroom", 1)
}

func TestAuthorizeChatroom_DoesNotReadHistory(t *testing.T) {
	f := newFixture()

	assert.NoError(t, f.svc.AuthorizeChatroom(context.Background(), f.chatroomID, owner))
	assert.NoError(t, f.svc.AuthorizeChatroom(context.Background(), f.chatroomID, admin))
	assert.IsType(t, &apperror.UnauthorizedError{}, f.svc.AuthorizeChatroom(context.Background(), f.chatroomID, other))
	assert.IsType(t, &apperror.NotFoundError{}, f.svc.AuthorizeChatroom(context.Background(), "nao-e-uuid", admin))

	f.messages.AssertNotCalled(t, "FindByChatroom", mock.Anything, mock.Anything)
}
