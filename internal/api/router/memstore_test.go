package router_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"orderchat/internal/domain"
	apperror "orderchat/internal/errors"
	"orderchat/internal/pkg/cache"
)

// memStore implementa os quatro repositórios em memória, com as mesmas
// garantias que o Postgres dá aos serviços: criação atômica pedido+chatroom,
// fechamento idempotente e INSERT de mensagem condicionado ao chatroom aberto.
type memStore struct {
	mu        sync.Mutex
	seq       int64
	users     map[string]domain.User
	orders    map[string]domain.Order
	orderSeq  map[string]int64
	chatrooms map[string]domain.Chatroom
	messages  []domain.Message
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[string]domain.User),
		orders:    make(map[string]domain.Order),
		orderSeq:  make(map[string]int64),
		chatrooms: make(map[string]domain.Chatroom),
	}
}

// --- usuários ---

type memUsers struct{ s *memStore }

func (r memUsers) Save(ctx context.Context, u domain.User) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return domain.User{}, apperror.NewConflictError("Email já cadastrado.")
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = u
	return u, nil
}

func (r memUsers) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, apperror.NewNotFoundError("Usuário")
}

func (r memUsers) FindAll(ctx context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	return out, nil
}

// --- pedidos ---

type memOrders struct{ s *memStore }

func (r memOrders) CreateWithChatroom(ctx context.Context, o domain.Order, c domain.Chatroom) (domain.Order, domain.Chatroom, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	o.ID, o.CreatedAt, o.UpdatedAt = uuid.NewString(), now, now
	c.ID, c.OrderID, c.UserID, c.CreatedAt = uuid.NewString(), o.ID, o.UserID, now
	r.s.seq++
	r.s.orders[o.ID] = o
	r.s.orderSeq[o.ID] = r.s.seq
	r.s.chatrooms[c.ID] = c
	o.Chatroom = &c
	return o, c, nil
}

func (r memOrders) withChatroom(o domain.Order) domain.Order {
	for _, c := range r.s.chatrooms {
		if c.OrderID == o.ID {
			room := c
			o.Chatroom = &room
		}
	}
	return o
}

func (r memOrders) FindByID(ctx context.Context, id string) (domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return domain.Order{}, apperror.NewNotFoundError("Pedido não encontrado")
	}
	return r.withChatroom(o), nil
}

func (r memOrders) list(filter func(domain.Order) bool) []domain.Order {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Order{}
	for _, o := range r.s.orders {
		if filter(o) {
			out = append(out, r.withChatroom(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.s.orderSeq[out[i].ID] < r.s.orderSeq[out[j].ID] })
	return out
}

func (r memOrders) FindAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(func(domain.Order) bool { return true }), nil
}

func (r memOrders) FindByOwner(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(func(o domain.Order) bool { return o.UserID == userID }), nil
}

func (r memOrders) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return domain.Order{}, apperror.NewNotFoundError("Pedido não encontrado")
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	r.s.orders[id] = o
	return r.withChatroom(o), nil
}

// --- chatrooms ---

type memChatrooms struct{ s *memStore }

func (r memChatrooms) FindByID(ctx context.Context, id string) (domain.Chatroom, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.chatrooms[id]
	if !ok {
		return domain.Chatroom{}, apperror.NewNotFoundError("Chatroom não encontrado")
	}
	return c, nil
}

func (r memChatrooms) list(filter func(domain.Chatroom) bool) []domain.Chatroom {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Chatroom{}
	for _, c := range r.s.chatrooms {
		if filter(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.s.orderSeq[out[i].OrderID] < r.s.orderSeq[out[j].OrderID] })
	return out
}

func (r memChatrooms) FindAll(ctx context.Context) ([]domain.Chatroom, error) {
	return r.list(func(domain.Chatroom) bool { return true }), nil
}

func (r memChatrooms) FindByOwner(ctx context.Context, userID string) ([]domain.Chatroom, error) {
	return r.list(func(c domain.Chatroom) bool { return c.UserID == userID }), nil
}

func (r memChatrooms) Ownership(ctx context.Context, id string) (domain.ChatroomOwnership, error) {
	c, err := r.FindByID(ctx, id)
	if err != nil {
		return domain.ChatroomOwnership{}, err
	}
	return domain.ChatroomOwnership{ChatroomID: c.ID, OrderID: c.OrderID, UserID: c.UserID}, nil
}

func (r memChatrooms) Close(ctx context.Context, id string) (domain.Chatroom, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.chatrooms[id]
	if !ok {
		return domain.Chatroom{}, apperror.NewNotFoundError("Chatroom não encontrado")
	}
	c.IsClosed = true
	r.s.chatrooms[id] = c
	return c, nil
}

// --- mensagens ---

type memMessages struct{ s *memStore }

func (r memMessages) Create(ctx context.Context, m domain.Message) (domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.chatrooms[m.ChatroomID]
	if !ok || c.IsClosed {
		return domain.Message{}, apperror.NewConflictError("Chatroom está fechado")
	}
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now().UTC()
	r.s.messages = append(r.s.messages, m)
	return m, nil
}

func (r memMessages) FindByChatroom(ctx context.Context, chatroomID string) ([]domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Message{}
	for _, m := range r.s.messages {
		if m.ChatroomID == chatroomID {
			out = append(out, m)
		}
	}
	return out, nil
}

// --- cache (rate limiter) ---

type memCache struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newMemCache() *memCache { return &memCache{counts: make(map[string]int64)} }

func (c *memCache) Get(ctx context.Context, key string) (string, error) { return "", cache.ErrCacheMiss }
func (c *memCache) GetInt(ctx context.Context, key string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.counts[key]
	if !ok {
		return 0, cache.ErrCacheMiss
	}
	return int(n), nil
}
func (c *memCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}
func (c *memCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}
func (c *memCache) Delete(ctx context.Context, key string) error { return nil }

func (c *memCache) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[key]++
	return c.counts[key], nil
}

func (c *memCache) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.counts))
	for k := range c.counts {
		out = append(out, k)
	}
	return out
}
