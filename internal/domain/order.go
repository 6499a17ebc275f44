package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// OrderStatus representa o estágio do pedido no fluxo de produção.
type OrderStatus string

const (
	StatusReview     OrderStatus = "REVIEW"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusRejected   OrderStatus = "REJECTED"
)

// ParseOrderStatus valida o status recebido na API.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	switch s := OrderStatus(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusReview, StatusProcessing, StatusCompleted, StatusRejected:
		return s, true
	default:
		return "", false
	}
}

// Order é um pedido customizado feito por um cliente.
// Pedidos nunca são apagados; o dono (UserID) é imutável.
type Order struct {
	ID             string                 `json:"id"`
	UserID         string                 `json:"userId"`
	Description    string                 `json:"description"`
	Quantity       int                    `json:"quantity"`
	Specifications map[string]interface{} `json:"specifications"`
	Status         OrderStatus            `json:"status"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`

	// Chatroom pareado, preenchido nas leituras.
	Chatroom *Chatroom `json:"chatroom,omitempty"`
}

// OrderInput é o payload de criação de pedido.
type OrderInput struct {
	Description    string                 `json:"description"`
	Quantity       int                    `json:"quantity"`
	Specifications map[string]interface{} `json:"specifications"`
}

// OrderWithChatroom é a resposta de criação: o pedido e o chatroom criados na mesma transação.
type OrderWithChatroom struct {
	NewOrder Order    `json:"newOrder"`
	Chatroom Chatroom `json:"chatroom"`
}

// UpdateOrderStatusRequest é o payload de PATCH /orders/{id}/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" example:"PROCESSING"`
}

// --- Política de transição de status ---

// StatusPolicy decide quais arestas do grafo de status são aceitas.
// A regra "PROCESSING só com chatroom fechado" é aplicada antes, pelo serviço, em qualquer política.
type StatusPolicy interface {
	Name() string
	Allows(from, to OrderStatus) bool
}

const (
	PolicyOpen   = "open"
	PolicyStrict = "strict"
)

// NewStatusPolicy devolve a política configurada (ORDER_STATUS_POLICY).
func NewStatusPolicy(name string) (StatusPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyOpen:
		return openPolicy{}, nil
	case PolicyStrict:
		return strictPolicy{}, nil
	default:
		return nil, fmt.Errorf("política de status desconhecida: %q", name)
	}
}

// openPolicy aceita qualquer aresta.
type openPolicy struct{}

func (openPolicy) Name() string                 { return PolicyOpen }
func (openPolicy) Allows(_, _ OrderStatus) bool { return true }

// strictPolicy: REVIEW -> PROCESSING | REJECTED, PROCESSING -> COMPLETED.
type strictPolicy struct{}

var strictEdges = map[OrderStatus][]OrderStatus{
	StatusReview:     {StatusProcessing, StatusRejected},
	StatusProcessing: {StatusCompleted},
}

func (strictPolicy) Name() string { return PolicyStrict }

func (strictPolicy) Allows(from, to OrderStatus) bool {
	for _, next := range strictEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// --- Interfaces de Contrato ---

// OrderRepository define o contrato de persistência de pedidos.
type OrderRepository interface {
	// CreateWithChatroom persiste o pedido e seu chatroom numa única transação.
	CreateWithChatroom(ctx context.Context, order Order, chatroom Chatroom) (Order, Chatroom, error)
	FindByID(ctx context.Context, id string) (Order, error)
	FindAll(ctx context.Context) ([]Order, error)
	FindByOwner(ctx context.Context, userID string) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status OrderStatus) (Order, error)
}

// OrderService define o contrato de lógica de negócio dos pedidos.
type OrderService interface {
	CreateOrder(ctx context.Context, ownerID string, input OrderInput) (OrderWithChatroom, error)
	ListOrders(ctx context.Context, principal Principal) ([]Order, error)
	GetOrder(ctx context.Context, id string, principal Principal) (Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status string, principal Principal) (Order, error)
}
