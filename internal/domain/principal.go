package domain

// Principal é a identidade autenticada de quem faz a requisição.
// É resolvida uma única vez pelo middleware de autenticação (ou na conexão WebSocket)
// e repassada explicitamente para os serviços.
type Principal struct {
	UserID string   `json:"userId"`
	Role   UserRole `json:"role"`
}

// IsAdmin indica se o principal tem papel ADMIN.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanAccess implementa a regra dono-ou-admin.
func (p Principal) CanAccess(ownerID string) bool {
	return p.IsAdmin() || (p.UserID != "" && p.UserID == ownerID)
}
