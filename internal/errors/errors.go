package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError é a interface central para todos os erros customizados do OrderChat.
// Ela permite que a borda (Handler HTTP ou sessão WebSocket) acesse a Categoria e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria estável do erro (e.g., "VALIDATION_ERROR", "NOT_FOUND")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes (original error)
}

// Categorias estáveis, legíveis por máquina.
const (
	CategoryValidation   = "VALIDATION_ERROR"
	CategoryBadRequest   = "BAD_REQUEST"
	CategoryUnauthorized = "UNAUTHORIZED"
	CategoryForbidden    = "FORBIDDEN"
	CategoryNotFound     = "NOT_FOUND"
	CategoryConflict     = "CONFLICT"
	CategoryInternal     = "INTERNAL_ERROR"
)

// Mensagem devolvida ao cliente para qualquer falha inesperada.
const genericInternalMessage = "Ocorreu um erro inesperado."

// --- Tipos de Erro Específicos (Erros de Domínio) ---

// ValidationError representa campos obrigatórios ausentes ou inválidos.
// Na borda HTTP é mapeado para 409, como o contrato público da API exige.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string    { return fmt.Sprintf("Erro de Validação: %s", e.Msg) }
func (e *ValidationError) Category() string { return CategoryValidation }
func (e *ValidationError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError cria um novo erro de validação.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// BadRequestError representa um payload que nem pôde ser decodificado.
type BadRequestError struct {
	Msg string
}

func (e *BadRequestError) Error() string    { return fmt.Sprintf("Requisição inválida: %s", e.Msg) }
func (e *BadRequestError) Category() string { return CategoryBadRequest }
func (e *BadRequestError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *BadRequestError) Unwrap() error    { return nil }

// NewBadRequestError cria um novo erro de requisição malformada.
func NewBadRequestError(msg string) AppError {
	return &BadRequestError{Msg: msg}
}

// UnauthorizedError: autenticado (ou não), mas sem direito sobre este recurso.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return fmt.Sprintf("Não autorizado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string { return CategoryUnauthorized }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized } // 401
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError cria um novo erro de não autorizado.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// ForbiddenError: o papel do usuário não permite esta ação.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string    { return fmt.Sprintf("Acesso negado: %s", e.Msg) }
func (e *ForbiddenError) Category() string { return CategoryForbidden }
func (e *ForbiddenError) HTTPStatus() int  { return http.StatusForbidden } // 403
func (e *ForbiddenError) Unwrap() error    { return nil }

// NewForbiddenError cria um novo erro de acesso proibido.
func NewForbiddenError(msg string) AppError {
	return &ForbiddenError{Msg: msg}
}

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return CategoryNotFound }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError representa uma pré-condição de estado violada (e.g., chat fechado, e-mail duplicado).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string { return CategoryConflict }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// InternalError representa falhas inesperadas no servidor, serviço ou repositório.
type InternalError struct {
	Msg string
	Err error // Erro original subjacente (e.g., erro do driver SQL)
}

func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Erro Interno: %s: %s", e.Msg, e.Err.Error())
	}
	return fmt.Sprintf("Erro Interno: %s", e.Msg)
}
func (e *InternalError) Category() string { return CategoryInternal }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor (para falhas de lógica ou código não esperado).
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError é um atalho para criar um InternalError específico de falhas no DB.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (DB)", msg), err)
}

// --- Helpers para a Borda (Tradução Final) ---

// AsAppError devolve o AppError contido em err, se houver.
func AsAppError(err error) (AppError, bool) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsInternal indica se err deve ser tratado como falha interna (500).
func IsInternal(err error) bool {
	appErr, ok := AsAppError(err)
	return !ok || appErr.HTTPStatus() >= http.StatusInternalServerError
}

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP, categoria e mensagem pública.
// Falhas internas nunca expõem detalhes do erro original.
func MapToHTTPStatus(err error) (int, string, string) {
	appErr, ok := AsAppError(err)
	if !ok {
		// Erro não tipado: tratado como erro interno genérico.
		return http.StatusInternalServerError, CategoryInternal, genericInternalMessage
	}

	if appErr.HTTPStatus() >= http.StatusInternalServerError {
		return appErr.HTTPStatus(), appErr.Category(), genericInternalMessage
	}

	return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
}
