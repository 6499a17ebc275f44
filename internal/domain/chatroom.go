package domain

import (
	"context"
	"time"
)

// Chatroom é o canal de negociação pareado 1:1 com um pedido.
// Nasce aberto junto com o pedido; fechar é irreversível.
type Chatroom struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	UserID    string    `json:"userId"` // dono do pedido
	IsClosed  bool      `json:"isClosed"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatroomOwnership é a parte imutável do chatroom usada na autorização.
type ChatroomOwnership struct {
	ChatroomID string `json:"chatroomId"`
	OrderID    string `json:"orderId"`
	UserID     string `json:"userId"`
}

// ChatroomRepository define o contrato de persistência de chatrooms.
type ChatroomRepository interface {
	FindByID(ctx context.Context, id string) (Chatroom, error)
	FindAll(ctx context.Context) ([]Chatroom, error)
	FindByOwner(ctx context.Context, userID string) ([]Chatroom, error)
	// Ownership devolve o pareamento imutável (pode vir do cache).
	Ownership(ctx context.Context, id string) (ChatroomOwnership, error)
	Close(ctx context.Context, id string) (Chatroom, error)
}

// ChatroomService define o contrato de lógica de negócio dos chatrooms.
type ChatroomService interface {
	ListChatrooms(ctx context.Context, principal Principal) ([]Chatroom, error)
	GetChatroom(ctx context.Context, id string, principal Principal) (Chatroom, error)
	CloseChatroom(ctx context.Context, id string, principal Principal) (Chatroom, error)
}
