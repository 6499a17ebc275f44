package messagerepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"orderchat/internal/domain"
	apperror "orderchat/internal/errors"
	"orderchat/internal/pkg/logger"
)

const (
	// O INSERT só acontece se o chatroom estiver aberto. FOR SHARE serializa com um
	// UPDATE de fechamento concorrente: ou a mensagem entra antes, ou não entra.
	insertMessageSQL = `INSERT INTO messages (id, chatroom_id, user_id, content, created_at)
                        SELECT $1::uuid, c.id, $3::uuid, $4::text, $5::timestamptz
                        FROM chatrooms c
                        WHERE c.id = $2 AND NOT c.is_closed
                        FOR SHARE`

	selectMessagesSQL = `SELECT id, chatroom_id, user_id, content, created_at
                         FROM messages
                         WHERE chatroom_id = $1
                         ORDER BY seq`
)

// MessageRepository implementa domain.MessageRepository.
type MessageRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewMessageRepository cria o repositório de mensagens.
func NewMessageRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *MessageRepository {
	return &MessageRepository{DB: db, DBTimeout: dbTimeout, logger: logger}
}

// Create insere a mensagem se o chatroom estiver aberto.
// Nenhuma linha inserida significa chatroom fechado (ou inexistente): ConflictError.
func (r *MessageRepository) Create(ctx context.Context, msg domain.Message) (domain.Message, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now().UTC()

	res, err := r.DB.ExecContext(ctxTimeout, insertMessageSQL,
		msg.ID,
		msg.ChatroomID,
		msg.UserID,
		msg.Content,
		msg.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir mensagem.", err, map[string]interface{}{"chatroom_id": msg.ChatroomID})
		return domain.Message{}, apperror.NewDBError("failed to insert message", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Message{}, apperror.NewDBError("failed to read rows affected", err)
	}
	if affected == 0 {
		r.logger.Info("Mensagem recusada: chatroom fechado.", map[string]interface{}{"chatroom_id": msg.ChatroomID})
		return domain.Message{}, apperror.NewConflictError("Chatroom está fechado")
	}

	r.logger.Debug("Mensagem persistida.", map[string]interface{}{"message_id": msg.ID, "chatroom_id": msg.ChatroomID})
	return msg, nil
}

// FindByChatroom lista as mensagens na ordem de aceitação pelo banco.
func (r *MessageRepository) FindByChatroom(ctx context.Context, chatroomID string) ([]domain.Message, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, selectMessagesSQL, chatroomID)
	if err != nil {
		r.logger.Error("Falha ao listar mensagens.", err, map[string]interface{}{"chatroom_id": chatroomID})
		return nil, apperror.NewDBError("failed to list messages", err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ChatroomID, &m.UserID, &m.Content, &m.CreatedAt); err != nil {
			return nil, apperror.NewDBError("failed to scan message", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate messages", err)
	}
	return messages, nil
}
