package order

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"orderchat/internal/domain"
	"orderchat/internal/pkg/logger"
	"orderchat/internal/pkg/middleware"
	"orderchat/internal/pkg/response"
)

// Handler agrupa os métodos de Handler de pedidos.
type Handler struct {
	Service domain.OrderService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc domain.OrderService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// CreateOrderHandler lida com a requisição POST /orders.
// @Summary Cria um pedido e seu chatroom
// @Description O pedido nasce em REVIEW e o chatroom aberto, na mesma transação.
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param order body domain.OrderInput true "Dados do pedido"
// @Success 201 {object} domain.OrderWithChatroom
// @Failure 400 {object} domain.ErrorResponse "JSON malformado"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Failure 409 {object} domain.ErrorResponse "Campo obrigatório ausente"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /orders [post]
func (h *Handler) CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.RequirePrincipal(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	var input domain.OrderInput
	if err := response.DecodeJSON(w, r, &input); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	created, err := h.Service.CreateOrder(r.Context(), principal.UserID, input)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, created)
}

// ListOrdersHandler lida com a requisição GET /orders.
// @Summary Lista pedidos
// @Description Administradores veem todos; os demais, apenas os próprios.
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Order
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Router /orders [get]
func (h *Handler) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.RequirePrincipal(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	orders, err := h.Service.ListOrders(r.Context(), principal)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusOK, orders)
}

// GetOrderHandler lida com a requisição GET /orders/{id}.
// @Summary Busca um pedido
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do pedido"
// @Success 200 {object} domain.Order
// @Failure 401 {object} domain.ErrorResponse "Pedido de outro usuário"
// @Failure 404 {object} domain.ErrorResponse "Pedido não encontrado"
// @Router /orders/{id} [get]
func (h *Handler) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.RequirePrincipal(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	order, err := h.Service.GetOrder(r.Context(), chi.URLParam(r, "id"), principal)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusOK, order)
}

// UpdateOrderStatusHandler lida com a requisição PATCH /orders/{id}/status.
// @Summary Altera o status de um pedido
// @Description Apenas administradores. PROCESSING exige o chatroom do pedido fechado.
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do pedido"
// @Param status body domain.UpdateOrderStatusRequest true "Novo status"
// @Success 200 {object} domain.Order
// @Failure 400 {object} domain.ErrorResponse "JSON malformado"
// @Failure 403 {object} domain.ErrorResponse "Não é administrador ou chatroom ainda aberto"
// @Failure 404 {object} domain.ErrorResponse "Pedido não encontrado"
// @Failure 409 {object} domain.ErrorResponse "Status inválido ou transição recusada"
// @Router /orders/{id}/status [patch]
func (h *Handler) UpdateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.RequirePrincipal(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	var req domain.UpdateOrderStatusRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	order, err := h.Service.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), req.Status, principal)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusOK, order)
}
