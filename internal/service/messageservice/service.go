package messageservice

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"orderchat/internal/domain"
	apperror "orderchat/internal/errors"
	"orderchat/internal/pkg/logger"
)

// Service implementa domain.MessageService. HTTP e WebSocket passam pelas mesmas regras.
type Service struct {
	chatrooms   domain.ChatroomRepository
	messages    domain.MessageRepository
	broadcaster domain.Broadcaster
	logger      logger.Logger
}

// NewService cria o serviço de mensagens. broadcaster pode ser nil (sem tempo real).
func NewService(chatrooms domain.ChatroomRepository, messages domain.MessageRepository, broadcaster domain.Broadcaster, logger logger.Logger) *Service {
	return &Service{
		chatrooms:   chatrooms,
		messages:    messages,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// PostMessage persiste a mensagem e a entrega aos assinantes do chatroom.
// A entrega em tempo real é best-effort e nunca desfaz a persistência.
func (s *Service) PostMessage(ctx context.Context, cmd domain.NewMessage) (domain.Message, error) {
	// 1. Conteúdo
	content := strings.TrimSpace(cmd.Content)
	if content == "" {
		return domain.Message{}, apperror.NewValidationError("Message Missing")
	}

	// 2. Chatroom existente e acesso dono-ou-admin
	if err := s.authorize(ctx, cmd.ChatroomID, cmd.Author); err != nil {
		return domain.Message{}, err
	}

	// 3. INSERT condicional: chatroom fechado vira ConflictError, mesmo em corrida com o fechamento
	msg, err := s.messages.Create(ctx, domain.Message{
		ChatroomID: cmd.ChatroomID,
		UserID:     cmd.Author.UserID,
		Content:    content,
	})
	if err != nil {
		return domain.Message{}, err
	}

	// 4. Fan-out
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(msg, cmd.OriginSessionID)
	}

	s.logger.Debug("Mensagem postada.", map[string]interface{}{
		"message_id":  msg.ID,
		"chatroom_id": msg.ChatroomID,
		"user_id":     msg.UserID,
		"via_ws":      cmd.OriginSessionID != "",
	})
	return msg, nil
}

// ListMessages devolve todas as mensagens do chatroom em ordem de aceitação.
func (s *Service) ListMessages(ctx context.Context, chatroomID string, principal domain.Principal) ([]domain.Message, error) {
	if err := s.authorize(ctx, chatroomID, principal); err != nil {
		return nil, err
	}
	return s.messages.FindByChatroom(ctx, chatroomID)
}

// AuthorizeChatroom usa o mesmo pareamento (cacheado) de PostMessage e ListMessages.
func (s *Service) AuthorizeChatroom(ctx context.Context, chatroomID string, principal domain.Principal) error {
	return s.authorize(ctx, chatroomID, principal)
}

func (s *Service) authorize(ctx context.Context, chatroomID string, principal domain.Principal) error {
	if _, err := uuid.Parse(chatroomID); err != nil {
		return apperror.NewNotFoundError("Chatroom não encontrado")
	}

	own, err := s.chatrooms.Ownership(ctx, chatroomID)
	if err != nil {
		return err
	}

	if !principal.CanAccess(own.UserID) {
		s.logger.Warn("Acesso negado às mensagens do chatroom.", map[string]interface{}{
			"chatroom_id": chatroomID,
			"user_id":     principal.UserID,
		})
		return apperror.NewUnauthorizedError("Você não tem acesso a este chatroom.")
	}
	return nil
}
