package chatroomservice

import (
	"context"

	"github.com/google/uuid"

	"orderchat/internal/domain"
	apperror "orderchat/internal/errors"
	"orderchat/internal/pkg/logger"
)

// Service implementa domain.ChatroomService.
type Service struct {
	repo   domain.ChatroomRepository
	logger logger.Logger
}

// NewService cria o serviço de chatrooms.
func NewService(repo domain.ChatroomRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ListChatrooms: ADMIN vê todos; REGULAR vê os chatrooms dos próprios pedidos.
func (s *Service) ListChatrooms(ctx context.Context, principal domain.Principal) ([]domain.Chatroom, error) {
	if principal.IsAdmin() {
		return s.repo.FindAll(ctx)
	}
	return s.repo.FindByOwner(ctx, principal.UserID)
}

// GetChatroom devolve o chatroom se o principal for o dono do pedido ou ADMIN.
func (s *Service) GetChatroom(ctx context.Context, id string, principal domain.Principal) (domain.Chatroom, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Chatroom{}, apperror.NewNotFoundError("Chatroom não encontrado")
	}

	chatroom, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Chatroom{}, err
	}

	if !principal.CanAccess(chatroom.UserID) {
		s.logger.Warn("Acesso negado ao chatroom.", map[string]interface{}{"chatroom_id": id, "user_id": principal.UserID})
		return domain.Chatroom{}, apperror.NewUnauthorizedError("Você não tem acesso a este chatroom.")
	}
	return chatroom, nil
}

// CloseChatroom fecha o chatroom (apenas ADMIN). Fechar um chatroom já fechado é sucesso.
func (s *Service) CloseChatroom(ctx context.Context, id string, principal domain.Principal) (domain.Chatroom, error) {
	if !principal.IsAdmin() {
		return domain.Chatroom{}, apperror.NewForbiddenError("Apenas administradores podem fechar chatrooms.")
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.Chatroom{}, apperror.NewNotFoundError("Chatroom não encontrado")
	}

	chatroom, err := s.repo.Close(ctx, id)
	if err != nil {
		return domain.Chatroom{}, err
	}

	s.logger.Info("Chatroom fechado pelo administrador.", map[string]interface{}{"chatroom_id": id, "admin_id": principal.UserID})
	return chatroom, nil
}
