package user

import (
	"net/http"

	"orderchat/internal/domain"
	"orderchat/internal/pkg/logger"
	"orderchat/internal/pkg/middleware"
	"orderchat/internal/pkg/response"
)

// Handler agrupa todos os métodos de Handler do usuário.
type Handler struct {
	Service domain.UserService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc domain.UserService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// RegisterUserHandler lida com a requisição POST /auth/register.
// @Summary Registra um novo usuário
// @Description Cria um novo usuário (papel REGULAR por padrão), hasheia a senha e salva no banco de dados.
// @Tags auth
// @Accept json
// @Produce json
// @Param registration body domain.UserRegistration true "Credenciais de registro"
// @Success 201 {object} domain.User "Usuário criado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "JSON malformado"
// @Failure 409 {object} domain.ErrorResponse "Email já cadastrado ou campo inválido"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /auth/register [post]
func (h *Handler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var reg domain.UserRegistration
	if err := response.DecodeJSON(w, r, &reg); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	// 1. Chamar o Serviço (hashing e persistência)
	newUser, err := h.Service.Register(r.Context(), reg)
	if err != nil {
		// ConflictError (e-mail duplicado) -> 409, ValidationError -> 409
		response.Error(w, r, h.Logger, err)
		return
	}

	// 2. Resposta de Sucesso. O hash nunca é serializado (tag json:"-").
	response.JSON(w, http.StatusCreated, newUser)
}

// LoginUserHandler lida com a requisição POST /auth/login.
// @Summary Autentica um usuário e retorna um JWT
// @Description Recebe email/senha, verifica a validade e emite um JSON Web Token.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body domain.LoginRequest true "Credenciais do usuário"
// @Success 201 {object} domain.LoginResponse "Token JWT emitido"
// @Failure 400 {object} domain.ErrorResponse "JSON malformado"
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /auth/login [post]
func (h *Handler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var loginReq domain.LoginRequest
	if err := response.DecodeJSON(w, r, &loginReq); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	token, err := h.Service.Login(r.Context(), loginReq.Email, loginReq.Password)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, domain.LoginResponse{AccessToken: token})
}

// ListUsersHandler lida com a requisição GET /auth/users.
// @Summary Lista os usuários cadastrados
// @Description Apenas administradores.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.User
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou usuário não é administrador"
// @Router /auth/users [get]
func (h *Handler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.RequirePrincipal(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	users, err := h.Service.ListUsers(r.Context(), principal)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusOK, users)
}
