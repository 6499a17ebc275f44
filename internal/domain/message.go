package domain

import (
	"context"
	"time"
)

// Message é uma mensagem imutável dentro de um chatroom.
// A ordem é a de aceitação pelo banco (coluna seq).
type Message struct {
	ID         string    `json:"id"`
	ChatroomID string    `json:"chatroomId"`
	UserID     string    `json:"userId"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewMessage é o comando de postagem, vindo do HTTP ou de uma sessão WebSocket.
// OriginSessionID fica vazio quando a mensagem chega pelo HTTP.
type NewMessage struct {
	ChatroomID      string
	Author          Principal
	Content         string
	OriginSessionID string
}

// CreateMessageRequest é o payload de POST /chatrooms/{id}/create-message.
type CreateMessageRequest struct {
	Message string `json:"message"`
}

// PostMessageRequest é o payload de POST /chatrooms/{id}/messages.
type PostMessageRequest struct {
	Content string `json:"content"`
}

// MessageRepository define o contrato de persistência de mensagens.
type MessageRepository interface {
	// Create só insere se o chatroom existir e estiver aberto; caso contrário devolve ConflictError.
	Create(ctx context.Context, msg Message) (Message, error)
	FindByChatroom(ctx context.Context, chatroomID string) ([]Message, error)
}

// MessageService define o contrato de lógica de negócio das mensagens.
type MessageService interface {
	PostMessage(ctx context.Context, cmd NewMessage) (Message, error)
	ListMessages(ctx context.Context, chatroomID string, principal Principal) ([]Message, error)
	// AuthorizeChatroom aplica a regra dono-ou-admin sem ler o histórico.
	AuthorizeChatroom(ctx context.Context, chatroomID string, principal Principal) error
}

// Broadcaster entrega uma mensagem já persistida aos assinantes do chatroom,
// exceto à sessão de origem.
type Broadcaster interface {
	Broadcast(msg Message, excludeSessionID string)
}
