package chatroomrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"orderchat/internal/domain"
	apperror "orderchat/internal/errors"
	"orderchat/internal/pkg/cache"
	"orderchat/internal/pkg/logger"
	"orderchat/internal/pkg/metrics"
)

const (
	selectChatroomSQL = `SELECT id, order_id, user_id, is_closed, created_at FROM chatrooms`
	selectOwnerSQL    = `SELECT id, order_id, user_id FROM chatrooms WHERE id = $1`
	closeChatroomSQL  = `UPDATE chatrooms SET is_closed = TRUE WHERE id = $1
                         RETURNING id, order_id, user_id, is_closed, created_at`

	// O pareamento chatroom -> pedido/dono é imutável; só o TTL limita a memória no Redis.
	ownershipKeyPrefix = "chatroom:owner:"
	ownershipTTL       = 24 * time.Hour
	cacheKeyspace      = "chatroom_owner"
)

// ChatroomRepository implementa domain.ChatroomRepository.
// O estado is_closed é sempre lido do banco; apenas o pareamento vai para o cache.
type ChatroomRepository struct {
	DB           *sql.DB
	Cache        cache.Client // opcional
	DBTimeout    time.Duration
	CacheTimeout time.Duration
	logger       logger.Logger
}

// NewChatroomRepository cria o repositório de chatrooms.
func NewChatroomRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTimeout time.Duration, logger logger.Logger) *ChatroomRepository {
	return &ChatroomRepository{
		DB:           db,
		Cache:        cacheClient,
		DBTimeout:    dbTimeout,
		CacheTimeout: cacheTimeout,
		logger:       logger,
	}
}

// FindByID busca um chatroom pelo ID.
func (r *ChatroomRepository) FindByID(ctx context.Context, id string) (domain.Chatroom, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	c, err := scanChatroom(r.DB.QueryRowContext(ctxTimeout, selectChatroomSQL+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Chatroom{}, apperror.NewNotFoundError("Chatroom não encontrado")
		}
		r.logger.Error("Falha ao buscar chatroom no DB.", err, map[string]interface{}{"chatroom_id": id})
		return domain.Chatroom{}, apperror.NewDBError("failed to find chatroom", err)
	}
	return c, nil
}

// FindAll lista todos os chatrooms em ordem de criação.
func (r *ChatroomRepository) FindAll(ctx context.Context) ([]domain.Chatroom, error) {
	return r.list(ctx, selectChatroomSQL+` ORDER BY seq`)
}

// FindByOwner lista os chatrooms dos pedidos de um usuário.
func (r *ChatroomRepository) FindByOwner(ctx context.Context, userID string) ([]domain.Chatroom, error) {
	return r.list(ctx, selectChatroomSQL+` WHERE user_id = $1 ORDER BY seq`, userID)
}

// Ownership devolve o pareamento imutável do chatroom (cache-aside no Redis).
// Falhas de cache são registradas e o banco é consultado.
func (r *ChatroomRepository) Ownership(ctx context.Context, id string) (domain.ChatroomOwnership, error) {
	key := ownershipKeyPrefix + id

	// 1. Cache
	if own, ok := r.cachedOwnership(ctx, key); ok {
		return own, nil
	}

	// 2. Banco
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var own domain.ChatroomOwnership
	err := r.DB.QueryRowContext(ctxTimeout, selectOwnerSQL, id).Scan(&own.ChatroomID, &own.OrderID, &own.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ChatroomOwnership{}, apperror.NewNotFoundError("Chatroom não encontrado")
		}
		r.logger.Error("Falha ao buscar dono do chatroom no DB.", err, map[string]interface{}{"chatroom_id": id})
		return domain.ChatroomOwnership{}, apperror.NewDBError("failed to find chatroom owner", err)
	}

	// 3. Popula o cache
	r.storeOwnership(ctx, key, own)
	return own, nil
}

// Close marca o chatroom como fechado. Fechar de novo é um no-op.
func (r *ChatroomRepository) Close(ctx context.Context, id string) (domain.Chatroom, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	c, err := scanChatroom(r.DB.QueryRowContext(ctxTimeout, closeChatroomSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Chatroom{}, apperror.NewNotFoundError("Chatroom não encontrado")
		}
		r.logger.Error("Falha ao fechar chatroom.", err, map[string]interface{}{"chatroom_id": id})
		return domain.Chatroom{}, apperror.NewDBError("failed to close chatroom", err)
	}

	r.logger.Info("Chatroom fechado.", map[string]interface{}{"chatroom_id": id, "order_id": c.OrderID})
	return c, nil
}

func (r *ChatroomRepository) cachedOwnership(ctx context.Context, key string) (domain.ChatroomOwnership, bool) {
	if r.Cache == nil {
		return domain.ChatroomOwnership{}, false
	}

	ctxCache, cancel := context.WithTimeout(ctx, r.CacheTimeout)
	defer cancel()

	raw, err := r.Cache.Get(ctxCache, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			r.logger.Warn("Falha ao ler pareamento do cache.", map[string]interface{}{"key": key, "error": err.Error()})
		}
		metrics.CacheMisses.WithLabelValues(cacheKeyspace).Inc()
		return domain.ChatroomOwnership{}, false
	}

	var own domain.ChatroomOwnership
	if err := json.Unmarshal([]byte(raw), &own); err != nil {
		r.logger.Warn("Pareamento corrompido no cache.", map[string]interface{}{"key": key})
		metrics.CacheMisses.WithLabelValues(cacheKeyspace).Inc()
		return domain.ChatroomOwnership{}, false
	}

	metrics.CacheHits.WithLabelValues(cacheKeyspace).Inc()
	return own, true
}

func (r *ChatroomRepository) storeOwnership(ctx context.Context, key string, own domain.ChatroomOwnership) {
	if r.Cache == nil {
		return
	}

	payload, err := json.Marshal(own)
	if err != nil {
		return
	}

	ctxCache, cancel := context.WithTimeout(ctx, r.CacheTimeout)
	defer cancel()

	if err := r.Cache.Set(ctxCache, key, string(payload), ownershipTTL); err != nil {
		r.logger.Warn("Falha ao gravar pareamento no cache.", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

func (r *ChatroomRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Chatroom, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar chatrooms no DB.", err)
		return nil, apperror.NewDBError("failed to list chatrooms", err)
	}
	defer rows.Close()

	chatrooms := []domain.Chatroom{}
	for rows.Next() {
		c, err := scanChatroom(rows)
		if err != nil {
			return nil, apperror.NewDBError("failed to scan chatroom", err)
		}
		chatrooms = append(chatrooms, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate chatrooms", err)
	}
	return chatrooms, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanChatroom(s scanner) (domain.Chatroom, error) {
	var c domain.Chatroom
	err := s.Scan(&c.ID, &c.OrderID, &c.UserID, &c.IsClosed, &c.CreatedAt)
	return c, err
}
