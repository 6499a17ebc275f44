// Package realtime mantém as sessões WebSocket autenticadas, suas inscrições em
// chatrooms e o fan-out de mensagens já persistidas.
package realtime

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"

	"orderchat/internal/domain"
	"orderchat/internal/pkg/logger"
	"orderchat/internal/pkg/metrics"
)

// Nomes de eventos do protocolo.
const (
	EventJoin        = "join"
	EventJoined      = "joined"
	EventLeave       = "leave"
	EventLeft        = "left"
	EventSendMessage = "sendMessage"
	EventMessageSent = "messageSent"
	EventNewMessage  = "newMessage"
	EventError       = "error"
)

// ErrSessionClosed é devolvido quando a sessão já foi desconectada.
var ErrSessionClosed = errors.New("realtime: sessão encerrada")

// Event é o envelope JSON trafegado nos dois sentidos.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Session é o registro de uma conexão autenticada. Pertence ao Hub:
// rooms e closed só são alterados sob o lock do Hub.
type Session struct {
	ID        string
	Principal domain.Principal

	send   chan []byte
	rooms  map[string]struct{}
	closed bool
}

// Outbound é a fila de saída consumida pelo writer da conexão.
// É fechada quando a sessão é desconectada.
func (s *Session) Outbound() <-chan []byte {
	return s.send
}

// Hub é o roteador de sessões: sessionID -> Session e chatroomID -> inscritos.
type Hub struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	rooms      map[string]map[string]*Session
	sendBuffer int
	logger     logger.Logger
}

// NewHub cria o hub. sendBuffer limita a fila de saída de cada sessão.
func NewHub(sendBuffer int, logger logger.Logger) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = 1
	}
	return &Hub{
		sessions:   make(map[string]*Session),
		rooms:      make(map[string]map[string]*Session),
		sendBuffer: sendBuffer,
		logger:     logger,
	}
}

// Register cria e registra a sessão de um principal já autenticado.
func (h *Hub) Register(principal domain.Principal) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Principal: principal,
		send:      make(chan []byte, h.sendBuffer),
		rooms:     make(map[string]struct{}),
	}

	h.mu.Lock()
	h.sessions[s.ID] = s
	total := len(h.sessions)
	h.mu.Unlock()

	metrics.WSSessions.Inc()
	h.logger.Info("Sessão WebSocket registrada.", map[string]interface{}{
		"session_id": s.ID,
		"user_id":    principal.UserID,
		"total":      total,
	})
	return s
}

// Join inscreve a sessão no chatroom. A autorização é responsabilidade do chamador.
func (h *Hub) Join(sessionID, chatroomID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[sessionID]
	if !ok || s.closed {
		return ErrSessionClosed
	}

	subs, ok := h.rooms[chatroomID]
	if !ok {
		subs = make(map[string]*Session)
		h.rooms[chatroomID] = subs
	}
	subs[sessionID] = s
	s.rooms[chatroomID] = struct{}{}
	return nil
}

// Leave remove a inscrição da sessão no chatroom. Sair de uma sala não inscrita é no-op.
func (h *Hub) Leave(sessionID, chatroomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.sessions[sessionID]; ok {
		delete(s.rooms, chatroomID)
	}
	h.removeFromRoom(chatroomID, sessionID)
}

// Disconnect remove a sessão de todas as salas e fecha sua fila de saída.
// Qualquer broadcast calculado depois disso já não a enxerga. Idempotente.
func (h *Hub) Disconnect(sessionID string) {
	h.disconnect(sessionID)
}

func (h *Hub) disconnect(sessionID string) bool {
	h.mu.Lock()
	s, ok := h.sessions[sessionID]
	if !ok {
		h.mu.Unlock()
		return false
	}
	for chatroomID := range s.rooms {
		h.removeFromRoom(chatroomID, sessionID)
	}
	s.rooms = make(map[string]struct{})
	delete(h.sessions, sessionID)
	s.closed = true
	close(s.send)
	total := len(h.sessions)
	h.mu.Unlock()

	metrics.WSSessions.Dec()
	h.logger.Info("Sessão WebSocket encerrada.", map[string]interface{}{"session_id": sessionID, "total": total})
	return true
}

// Broadcast implementa domain.Broadcaster: entrega newMessage a todos os inscritos
// do chatroom, exceto a sessão de origem. Nunca bloqueia; sessões com a fila cheia são derrubadas.
func (h *Hub) Broadcast(msg domain.Message, excludeSessionID string) {
	payload, err := json.Marshal(Event{Event: EventNewMessage, Data: msg})
	if err != nil {
		h.logger.Error("Falha ao serializar newMessage.", err)
		return
	}

	var slow []string
	delivered := 0

	h.mu.RLock()
	for id, s := range h.rooms[msg.ChatroomID] {
		if id == excludeSessionID {
			continue
		}
		if h.offer(s, payload) {
			delivered++
		} else {
			slow = append(slow, id)
		}
	}
	h.mu.RUnlock()

	metrics.WSEventsDelivered.WithLabelValues(EventNewMessage).Add(float64(delivered))
	h.dropSlow(slow)
}

// Send entrega um evento a uma única sessão (respostas e erros).
func (h *Hub) Send(sessionID string, evt Event) bool {
	payload, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("Falha ao serializar evento.", err, map[string]interface{}{"event": evt.Event})
		return false
	}

	h.mu.RLock()
	s, ok := h.sessions[sessionID]
	queued := ok && h.offer(s, payload)
	h.mu.RUnlock()

	if !ok {
		return false
	}
	if !queued {
		h.dropSlow([]string{sessionID})
		return false
	}
	metrics.WSEventsDelivered.WithLabelValues(evt.Event).Inc()
	return true
}

// Subscribers devolve quantas sessões estão inscritas no chatroom.
func (h *Hub) Subscribers(chatroomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[chatroomID])
}

// SessionCount devolve o número de sessões registradas.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// offer tenta enfileirar sem bloquear. Exige o lock (leitura basta): Disconnect
// só fecha o canal sob o lock de escrita.
func (h *Hub) offer(s *Session, payload []byte) bool {
	if s.closed {
		return true
	}
	select {
	case s.send <- payload:
		return true
	default:
		return false
	}
}

func (h *Hub) dropSlow(ids []string) {
	for _, id := range ids {
		if h.disconnect(id) {
			h.logger.Warn("Sessão lenta desconectada: fila de envio cheia.", map[string]interface{}{"session_id": id})
			metrics.WSSlowSessionsDropped.Inc()
		}
	}
}

// removeFromRoom exige o lock de escrita.
func (h *Hub) removeFromRoom(chatroomID, sessionID string) {
	subs, ok := h.rooms[chatroomID]
	if !ok {
		return
	}
	delete(subs, sessionID)
	if len(subs) == 0 {
		delete(h.rooms, chatroomID)
	}
}
