package middleware

import (
	"context"
	"net/http"
	"strings"

	"orderchat/internal/domain"
	apperror "orderchat/internal/errors"
	"orderchat/internal/pkg/logger"
	"orderchat/internal/pkg/response"
	"orderchat/internal/pkg/token"
)

// ContextKey é um tipo não exportado-compatível para chaves de contexto,
// evitando colisão com chaves string de outros pacotes.
type ContextKey int

const (
	PrincipalKey ContextKey = iota
)

// TokenService define o contrato de validação necessário para o middleware.
type TokenService interface {
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// BearerToken extrai o token de um valor "Bearer <token>".
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(prefix):])
	return tok, tok != ""
}

// NewAuthMiddleware valida o JWT do header Authorization e anexa o domain.Principal
// ao contexto da requisição. Token ausente, malformado ou inválido resulta em 401.
func NewAuthMiddleware(tokenSvc TokenService, log logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Extrair o Token do Header Authorization: Bearer <token>
			tokenString, ok := BearerToken(r.Header.Get("Authorization"))
			if !ok {
				response.Error(w, r, log, apperror.NewUnauthorizedError("Token de autorização ausente ou malformado."))
				return
			}

			// 2. Validar o Token
			claims, err := tokenSvc.ValidateToken(tokenString)
			if err != nil {
				log.Debug("Token rejeitado.", map[string]interface{}{"path": r.URL.Path, "reason": err.Error()})
				response.Error(w, r, log, apperror.NewUnauthorizedError("Token inválido ou expirado."))
				return
			}

			// 3. Anexar o Principal ao Contexto
			ctx := WithPrincipal(r.Context(), claims.Principal())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithPrincipal devolve um contexto carregando o principal autenticado.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// PrincipalFromContext é a função utilitária para extrair o principal no handler.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(domain.Principal)
	return p, ok
}

// RequirePrincipal devolve o principal da requisição ou um UnauthorizedError
// quando a rota não passou pelo middleware de autenticação.
func RequirePrincipal(r *http.Request) (domain.Principal, error) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok || p.UserID == "" {
		return domain.Principal{}, apperror.NewUnauthorizedError("Usuário não autenticado.")
	}
	return p, nil
}
