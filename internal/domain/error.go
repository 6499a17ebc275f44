package domain

// ErrorResponse é o corpo de erro de toda a API.
// @Description Corpo de erro padronizado: código HTTP, categoria estável e mensagem legível.
type ErrorResponse struct {
	Code     int    `json:"code" example:"409"`
	Category string `json:"category" example:"CONFLICT"`
	Message  string `json:"message" example:"Conflito de estado: Chatroom está fechado"`
}
