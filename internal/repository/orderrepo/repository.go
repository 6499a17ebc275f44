package orderrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"orderchat/internal/domain"
	apperror "orderchat/internal/errors"
	"orderchat/internal/pkg/logger"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, user_id, description, quantity, specifications, status, created_at, updated_at)
                      VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	insertChatroomSQL = `INSERT INTO chatrooms (id, order_id, user_id, is_closed, created_at)
                         VALUES ($1, $2, $3, $4, $5)`

	// Toda leitura de pedido traz o chatroom pareado.
	selectOrderSQL = `SELECT o.id, o.user_id, o.description, o.quantity, o.specifications, o.status, o.created_at, o.updated_at,
                             c.id, c.order_id, c.user_id, c.is_closed, c.created_at
                      FROM orders o
                      JOIN chatrooms c ON c.order_id = o.id`

	updateStatusSQL = `WITH updated AS (
                           UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1
                           RETURNING id, user_id, description, quantity, specifications, status, created_at, updated_at
                       )
                       SELECT u.id, u.user_id, u.description, u.quantity, u.specifications, u.status, u.created_at, u.updated_at,
                              c.id, c.order_id, c.user_id, c.is_closed, c.created_at
                       FROM updated u
                       JOIN chatrooms c ON c.order_id = u.id`
)

// OrderRepository implementa domain.OrderRepository sobre PostgreSQL.
type OrderRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewOrderRepository cria o repositório de pedidos.
func NewOrderRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *OrderRepository {
	return &OrderRepository{DB: db, DBTimeout: dbTimeout, logger: logger}
}

// CreateWithChatroom persiste o pedido e o chatroom pareado numa única transação.
// Se qualquer um dos INSERTs falhar, nada é persistido.
func (r *OrderRepository) CreateWithChatroom(ctx context.Context, order domain.Order, chatroom domain.Chatroom) (domain.Order, domain.Chatroom, error) {
	r.logger.Debug("Iniciando criação de pedido + chatroom.", map[string]interface{}{"user_id": order.UserID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	// 1. IDs e timestamps
	now := time.Now().UTC()
	order.ID = uuid.NewString()
	order.CreatedAt = now
	order.UpdatedAt = now
	chatroom.ID = uuid.NewString()
	chatroom.OrderID = order.ID
	chatroom.UserID = order.UserID
	chatroom.CreatedAt = now

	specs, err := json.Marshal(order.Specifications)
	if err != nil {
		return domain.Order{}, domain.Chatroom{}, apperror.NewInternalError("falha ao serializar especificações", err)
	}

	// 2. Transação
	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação.", err)
		return domain.Order{}, domain.Chatroom{}, apperror.NewDBError("failed to start tx", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// 3. Pedido
	_, err = tx.ExecContext(ctxTimeout, insertOrderSQL,
		order.ID,
		order.UserID,
		order.Description,
		order.Quantity,
		string(specs), // texto: o pq enviaria []byte como bytea
		string(order.Status),
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir pedido.", err, map[string]interface{}{"order_id": order.ID})
		return domain.Order{}, domain.Chatroom{}, apperror.NewDBError("failed to insert order", err)
	}

	// 4. Chatroom pareado
	_, err = tx.ExecContext(ctxTimeout, insertChatroomSQL,
		chatroom.ID,
		chatroom.OrderID,
		chatroom.UserID,
		chatroom.IsClosed,
		chatroom.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir chatroom; pedido revertido.", err, map[string]interface{}{"order_id": order.ID})
		return domain.Order{}, domain.Chatroom{}, apperror.NewDBError("failed to insert chatroom", err)
	}

	// 5. Commit
	if err = tx.Commit(); err != nil {
		r.logger.Error("Falha no commit da criação de pedido.", err)
		return domain.Order{}, domain.Chatroom{}, apperror.NewDBError("failed to commit order", err)
	}

	r.logger.Info("Pedido e chatroom criados.", map[string]interface{}{"order_id": order.ID, "chatroom_id": chatroom.ID})

	paired := chatroom
	order.Chatroom = &paired
	return order, chatroom, nil
}

// FindByID busca um pedido (com seu chatroom) pelo ID.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	order, err := scanOrder(r.DB.QueryRowContext(ctxTimeout, selectOrderSQL+` WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, apperror.NewNotFoundError("Pedido não encontrado")
		}
		r.logger.Error("Falha ao buscar pedido no DB.", err, map[string]interface{}{"order_id": id})
		return domain.Order{}, apperror.NewDBError("failed to find order", err)
	}
	return order, nil
}

// FindAll lista todos os pedidos em ordem de criação.
func (r *OrderRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, selectOrderSQL+` ORDER BY o.seq`)
}

// FindByOwner lista os pedidos de um usuário em ordem de criação.
func (r *OrderRepository) FindByOwner(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, selectOrderSQL+` WHERE o.user_id = $1 ORDER BY o.seq`, userID)
}

// UpdateStatus grava o novo status e devolve o pedido atualizado.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	order, err := scanOrder(r.DB.QueryRowContext(ctxTimeout, updateStatusSQL, id, string(status), time.Now().UTC()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, apperror.NewNotFoundError("Pedido não encontrado")
		}
		r.logger.Error("Falha ao atualizar status do pedido.", err, map[string]interface{}{"order_id": id, "status": status})
		return domain.Order{}, apperror.NewDBError("failed to update order status", err)
	}

	r.logger.Info("Status do pedido atualizado.", map[string]interface{}{"order_id": id, "status": status})
	return order, nil
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar pedidos no DB.", err)
		return nil, apperror.NewDBError("failed to list orders", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, apperror.NewDBError("failed to scan order", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate orders", err)
	}
	return orders, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(s scanner) (domain.Order, error) {
	var (
		o      domain.Order
		c      domain.Chatroom
		specs  []byte
		status string
	)
	err := s.Scan(
		&o.ID, &o.UserID, &o.Description, &o.Quantity, &specs, &status, &o.CreatedAt, &o.UpdatedAt,
		&c.ID, &c.OrderID, &c.UserID, &c.IsClosed, &c.CreatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}

	o.Status = domain.OrderStatus(status)
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &o.Specifications); err != nil {
			return domain.Order{}, err
		}
	}
	o.Chatroom = &c
	return o, nil
}
