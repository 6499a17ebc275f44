package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"orderchat/internal/domain"
	apperror "orderchat/internal/errors"
	"orderchat/internal/pkg/logger"
	"orderchat/internal/pkg/middleware"
	"orderchat/internal/pkg/response"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = response.MaxBodyBytes
	eventTimeout   = 10 * time.Second
)

// Payloads dos eventos do cliente.
type chatroomRef struct {
	ChatroomID string `json:"chatroomId"`
}

type sendMessagePayload struct {
	ChatroomID string `json:"chatroomId"`
	Content    string `json:"content"`
}

type joinedPayload struct {
	ChatroomID string           `json:"chatroomId"`
	Messages   []domain.Message `json:"messages"`
}

type errorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// inbound é o envelope recebido; Data é decodificado conforme o evento.
type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Handler faz o upgrade em GET /ws/chat e conduz o protocolo de eventos.
type Handler struct {
	hub      *Hub
	messages domain.MessageService
	tokens   middleware.TokenService
	logger   logger.Logger
	upgrader websocket.Upgrader
}

// NewHandler cria o handler de WebSocket.
func NewHandler(hub *Hub, messages domain.MessageService, tokens middleware.TokenService, logger logger.Logger) *Handler {
	return &Handler{
		hub:      hub,
		messages: messages,
		tokens:   tokens,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Clientes autenticam por token, não por cookie.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// tokenFromRequest aceita Authorization: Bearer, o header "auth" (com ou sem Bearer)
// e o parâmetro de query "token" (navegadores não enviam headers no handshake).
func tokenFromRequest(r *http.Request) string {
	if tok, ok := middleware.BearerToken(r.Header.Get("Authorization")); ok {
		return tok
	}
	if raw := strings.TrimSpace(r.Header.Get("auth")); raw != "" {
		if tok, ok := middleware.BearerToken(raw); ok {
			return tok
		}
		return raw
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// ServeHTTP autentica antes do upgrade: sem token válido responde 401 e nenhuma sessão é criada.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tok := tokenFromRequest(r)
	if tok == "" {
		response.Error(w, r, h.logger, apperror.NewUnauthorizedError("Token de autorização ausente."))
		return
	}
	claims, err := h.tokens.ValidateToken(tok)
	if err != nil {
		response.Error(w, r, h.logger, apperror.NewUnauthorizedError("Token inválido ou expirado."))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// O upgrader já respondeu com o erro HTTP.
		h.logger.Warn("Falha no upgrade de WebSocket.", map[string]interface{}{"error": err.Error()})
		return
	}

	session := h.hub.Register(claims.Principal())
	c := &connection{h: h, conn: conn, session: session}

	go c.writePump()
	go c.readPump()
}

// connection liga uma *websocket.Conn à sua Session.
type connection struct {
	h       *Handler
	conn    *websocket.Conn
	session *Session
}

// readPump lê eventos em sequência até a conexão cair; então desconecta a sessão.
func (c *connection) readPump() {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		c.h.hub.Disconnect(c.session.ID)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.h.logger.Debug("Conexão WebSocket encerrada inesperadamente.", map[string]interface{}{
					"session_id": c.session.ID,
					"error":      err.Error(),
				})
			}
			return
		}
		c.handle(ctx, data)
	}
}

// writePump é o único escritor da conexão: eventos da fila e pings.
func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	out := c.session.Outbound()
	for {
		select {
		case payload, ok := <-out:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Sessão desconectada pelo hub
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handle despacha um evento do cliente. Erros vão só para a sessão de origem.
func (c *connection) handle(parent context.Context, data []byte) {
	var in inbound
	if err := json.Unmarshal(data, &in); err != nil {
		c.fail(apperror.NewBadRequestError("Evento inválido: JSON malformado."))
		return
	}

	ctx, cancel := context.WithTimeout(parent, eventTimeout)
	defer cancel()

	switch in.Event {
	case EventJoin:
		var ref chatroomRef
		if err := json.Unmarshal(in.Data, &ref); err != nil || ref.ChatroomID == "" {
			c.fail(apperror.NewValidationError("chatroomId Missing"))
			return
		}
		c.join(ctx, ref.ChatroomID)

	case EventLeave:
		var ref chatroomRef
		if err := json.Unmarshal(in.Data, &ref); err != nil || ref.ChatroomID == "" {
			c.fail(apperror.NewValidationError("chatroomId Missing"))
			return
		}
		c.h.hub.Leave(c.session.ID, ref.ChatroomID)
		c.h.hub.Send(c.session.ID, Event{Event: EventLeft, Data: ref})

	case EventSendMessage:
		var p sendMessagePayload
		if err := json.Unmarshal(in.Data, &p); err != nil {
			c.fail(apperror.NewBadRequestError("Payload de sendMessage inválido."))
			return
		}
		msg, err := c.h.messages.PostMessage(ctx, domain.NewMessage{
			ChatroomID:      p.ChatroomID,
			Author:          c.session.Principal,
			Content:         p.Content,
			OriginSessionID: c.session.ID,
		})
		if err != nil {
			c.fail(err)
			return
		}
		c.h.hub.Send(c.session.ID, Event{Event: EventMessageSent, Data: msg})

	default:
		c.fail(apperror.NewBadRequestError("Evento desconhecido: " + in.Event))
	}
}

// join autoriza pelo pareamento dono-ou-admin, inscreve e só então lê o snapshot.
// Uma mensagem aceita entre os dois passos pode chegar duas vezes (snapshot e newMessage), com o mesmo id.
func (c *connection) join(ctx context.Context, chatroomID string) {
	if err := c.h.messages.AuthorizeChatroom(ctx, chatroomID, c.session.Principal); err != nil {
		c.fail(err)
		return
	}

	if err := c.h.hub.Join(c.session.ID, chatroomID); err != nil {
		return
	}

	snapshot, err := c.h.messages.ListMessages(ctx, chatroomID, c.session.Principal)
	if err != nil {
		c.h.hub.Leave(c.session.ID, chatroomID)
		c.fail(err)
		return
	}

	c.h.hub.Send(c.session.ID, Event{Event: EventJoined, Data: joinedPayload{ChatroomID: chatroomID, Messages: snapshot}})
}

// fail traduz o erro para o evento "error" da sessão de origem.
func (c *connection) fail(err error) {
	_, kind, message := apperror.MapToHTTPStatus(err)
	if apperror.IsInternal(err) {
		c.h.logger.Error("Falha interna em evento WebSocket.", err, map[string]interface{}{"session_id": c.session.ID})
	}
	c.h.hub.Send(c.session.ID, Event{Event: EventError, Data: errorPayload{Kind: kind, Message: message}})
}
