package chatroom

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"orderchat/internal/domain"
	"orderchat/internal/pkg/logger"
	"orderchat/internal/pkg/middleware"
	"orderchat/internal/pkg/response"
)

// Handler agrupa os métodos de Handler de chatrooms.
type Handler struct {
	Service domain.ChatroomService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler.
func NewHandler(svc domain.ChatroomService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// ListChatroomsHandler lida com a requisição GET /chatrooms.
// @Summary Lista chatrooms
// @Tags chatrooms
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Chatroom
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Router /chatrooms [get]
func (h *Handler) ListChatroomsHandler(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.RequirePrincipal(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	rooms, err := h.Service.ListChatrooms(r.Context(), principal)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusOK, rooms)
}

// GetChatroomHandler lida com a requisição GET /chatrooms/{id}.
// @Summary Busca um chatroom
// @Tags chatrooms
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do chatroom"
// @Success 200 {object} domain.Chatroom
// @Failure 401 {object} domain.ErrorResponse "Chatroom de outro usuário"
// @Failure 404 {object} domain.ErrorResponse "Chatroom não encontrado"
// @Router /chatrooms/{id} [get]
func (h *Handler) GetChatroomHandler(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.RequirePrincipal(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	room, err := h.Service.GetChatroom(r.Context(), chi.URLParam(r, "id"), principal)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusOK, room)
}

// CloseChatroomHandler lida com a requisição PATCH /chatrooms/{id}/close.
// @Summary Fecha um chatroom
// @Description Apenas administradores. Fechar um chatroom já fechado não altera nada.
// @Tags chatrooms
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do chatroom"
// @Success 200 {object} domain.Chatroom
// @Failure 403 {object} domain.ErrorResponse "Não é administrador"
// @Failure 404 {object} domain.ErrorResponse "Chatroom não encontrado"
// @Router /chatrooms/{id}/close [patch]
func (h *Handler) CloseChatroomHandler(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.RequirePrincipal(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	room, err := h.Service.CloseChatroom(r.Context(), chi.URLParam(r, "id"), principal)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusOK, room)
}
