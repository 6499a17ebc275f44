package orderservice

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"

	"orderchat/internal/domain"
	apperror "orderchat/internal/errors"
	"orderchat/internal/pkg/logger"
)

// Service implementa domain.OrderService.
type Service struct {
	repo   domain.OrderRepository
	policy domain.StatusPolicy
	logger logger.Logger
}

// NewService cria o serviço de pedidos com a política de status configurada.
func NewService(repo domain.OrderRepository, policy domain.StatusPolicy, logger logger.Logger) *Service {
	return &Service{repo: repo, policy: policy, logger: logger}
}

// CreateOrder valida a entrada e cria o pedido (REVIEW) com seu chatroom aberto.
func (s *Service) CreateOrder(ctx context.Context, ownerID string, input domain.OrderInput) (domain.OrderWithChatroom, error) {
	s.logger.Debug("Iniciando criação de pedido no serviço.", map[string]interface{}{"user_id": ownerID})

	// 1. Validação (um campo por vez, na ordem do payload)
	if strings.TrimSpace(input.Description) == "" {
		return domain.OrderWithChatroom{}, apperror.NewValidationError("Description Missing")
	}
	if input.Quantity <= 0 {
		return domain.OrderWithChatroom{}, apperror.NewValidationError("Quantity Missing")
	}
	// A coluna quantity é INTEGER (int4)
	if input.Quantity > math.MaxInt32 {
		return domain.OrderWithChatroom{}, apperror.NewValidationError("Quantity Out Of Range")
	}
	if len(input.Specifications) == 0 {
		return domain.OrderWithChatroom{}, apperror.NewValidationError("Specifications Missing")
	}

	// 2. Persistência atômica pedido + chatroom
	order, chatroom, err := s.repo.CreateWithChatroom(ctx,
		domain.Order{
			UserID:         ownerID,
			Description:    strings.TrimSpace(input.Description),
			Quantity:       input.Quantity,
			Specifications: input.Specifications,
			Status:         domain.StatusReview,
		},
		domain.Chatroom{IsClosed: false},
	)
	if err != nil {
		return domain.OrderWithChatroom{}, err
	}

	s.logger.Info("Pedido criado.", map[string]interface{}{"order_id": order.ID, "chatroom_id": chatroom.ID, "user_id": ownerID})

	// A resposta de criação já carrega o chatroom ao lado do pedido.
	order.Chatroom = nil
	return domain.OrderWithChatroom{NewOrder: order, Chatroom: chatroom}, nil
}

// ListOrders: ADMIN vê todos; REGULAR vê apenas os seus.
func (s *Service) ListOrders(ctx context.Context, principal domain.Principal) ([]domain.Order, error) {
	if principal.IsAdmin() {
		return s.repo.FindAll(ctx)
	}
	return s.repo.FindByOwner(ctx, principal.UserID)
}

// GetOrder devolve o pedido se o principal for o dono ou ADMIN.
func (s *Service) GetOrder(ctx context.Context, id string, principal domain.Principal) (domain.Order, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	if !principal.CanAccess(order.UserID) {
		s.logger.Warn("Acesso negado ao pedido.", map[string]interface{}{"order_id": id, "user_id": principal.UserID})
		return domain.Order{}, apperror.NewUnauthorizedError("Você não tem acesso a este pedido.")
	}
	return order, nil
}

// UpdateOrderStatus altera o status do pedido (apenas ADMIN).
// PROCESSING exige o chatroom pareado fechado; as demais arestas seguem a política configurada.
func (s *Service) UpdateOrderStatus(ctx context.Context, id string, status string, principal domain.Principal) (domain.Order, error) {
	// 1. Papel
	if !principal.IsAdmin() {
		return domain.Order{}, apperror.NewForbiddenError("Apenas administradores podem alterar o status do pedido.")
	}

	// 2. Status válido
	next, ok := domain.ParseOrderStatus(status)
	if !ok {
		return domain.Order{}, apperror.NewValidationError("Status inválido. Use REVIEW, PROCESSING, COMPLETED ou REJECTED.")
	}

	// 3. Pedido existente
	order, err := s.find(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	// 4. PROCESSING só com o chatroom fechado. Fechar é irreversível, então a leitura não fica obsoleta.
	if next == domain.StatusProcessing && (order.Chatroom == nil || !order.Chatroom.IsClosed) {
		s.logger.Info("Transição para PROCESSING recusada: chatroom aberto.", map[string]interface{}{"order_id": id})
		return domain.Order{}, apperror.NewForbiddenError("O chatroom do pedido precisa estar fechado antes de iniciar o processamento.")
	}

	// 5. Política de transição
	if !s.policy.Allows(order.Status, next) {
		return domain.Order{}, apperror.NewConflictError(
			"Transição de " + string(order.Status) + " para " + string(next) + " não permitida pela política " + s.policy.Name() + ".")
	}

	updated, err := s.repo.UpdateStatus(ctx, id, next)
	if err != nil {
		return domain.Order{}, err
	}

	s.logger.Info("Status do pedido alterado.", map[string]interface{}{
		"order_id": id,
		"from":     order.Status,
		"to":       next,
		"admin_id": principal.UserID,
	})
	return updated, nil
}

// find trata IDs malformados como inexistentes.
func (s *Service) find(ctx context.Context, id string) (domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Order{}, apperror.NewNotFoundError("Pedido não encontrado")
	}
	return s.repo.FindByID(ctx, id)
}
