package message

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"orderchat/internal/domain"
	"orderchat/internal/pkg/logger"
	"orderchat/internal/pkg/middleware"
	"orderchat/internal/pkg/response"
)

// Handler expõe as mensagens de um chatroom pelo HTTP.
// Mensagens postadas aqui também chegam às sessões WebSocket inscritas.
type Handler struct {
	Service domain.MessageService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler.
func NewHandler(svc domain.MessageService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// CreateMessageHandler lida com a requisição POST /chatrooms/{id}/create-message.
// @Summary Posta uma mensagem
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do chatroom"
// @Param message body domain.CreateMessageRequest true "Conteúdo"
// @Success 201 {object} domain.Message
// @Failure 401 {object} domain.ErrorResponse "Chatroom de outro usuário"
// @Failure 404 {object} domain.ErrorResponse "Chatroom não encontrado"
// @Failure 409 {object} domain.ErrorResponse "Mensagem vazia ou chatroom fechado"
// @Router /chatrooms/{id}/create-message [post]
func (h *Handler) CreateMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateMessageRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	h.post(w, r, req.Message)
}

// PostMessageHandler lida com a requisição POST /chatrooms/{id}/messages.
// @Summary Posta uma mensagem (payload com "content")
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do chatroom"
// @Param message body domain.PostMessageRequest true "Conteúdo"
// @Success 201 {object} domain.Message
// @Failure 401 {object} domain.ErrorResponse "Chatroom de outro usuário"
// @Failure 404 {object} domain.ErrorResponse "Chatroom não encontrado"
// @Failure 409 {object} domain.ErrorResponse "Mensagem vazia ou chatroom fechado"
// @Router /chatrooms/{id}/messages [post]
func (h *Handler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.PostMessageRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	h.post(w, r, req.Content)
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request, content string) {
	principal, err := middleware.RequirePrincipal(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	msg, err := h.Service.PostMessage(r.Context(), domain.NewMessage{
		ChatroomID: chi.URLParam(r, "id"),
		Author:     principal,
		Content:    content,
	})
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, msg)
}

// ListMessagesHandler lida com a requisição GET /chatrooms/{id}/messages.
// @Summary Lista as mensagens de um chatroom
// @Description Em ordem de aceitação.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do chatroom"
// @Success 200 {array} domain.Message
// @Failure 401 {object} domain.ErrorResponse "Chatroom de outro usuário"
// @Failure 404 {object} domain.ErrorResponse "Chatroom não encontrado"
// @Router /chatrooms/{id}/messages [get]
func (h *Handler) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.RequirePrincipal(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	msgs, err := h.Service.ListMessages(r.Context(), chi.URLParam(r, "id"), principal)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusOK, msgs)
}
