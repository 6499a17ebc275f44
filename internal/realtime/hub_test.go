package realtime

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderchat/internal/domain"
	"orderchat/internal/pkg/logger"
)

func newTestHub(buffer int) *Hub {
	return NewHub(buffer, logger.New(io.Discard, "debug"))
}

func regular(id string) domain.Principal {
	return domain.Principal{UserID: id, Role: domain.RoleRegular}
}

// drain devolve os eventos já enfileirados sem bloquear.
func drain(t *testing.T, s *Session) []Event {
	t.Helper()
	var out []Event
	for {
		select {
		case payload, ok := <-s.Outbound():
			if !ok {
				return out
			}
			var evt Event
			require.NoError(t, json.Unmarshal(payload, &evt))
			out = append(out, evt)
		default:
			return out
		}
	}
}

func TestHub_BroadcastSkipsOriginAndNonSubscribers(t *testing.T) {
	hub := newTestHub(8)
	origin := hub.Register(regular("u1"))
	peer := hub.Register(regular("u1"))
	outsider := hub.Register(regular("u2"))

	require.NoError(t, hub.Join(origin.ID, "room-1"))
	require.NoError(t, hub.Join(peer.ID, "room-1"))
	require.NoError(t, hub.Join(outsider.ID, "room-2"))

	hub.Broadcast(domain.Message{ID: "m1", ChatroomID: "room-1", Content: "oi"}, origin.ID)

	assert.Empty(t, drain(t, origin))
	assert.Empty(t, drain(t, outsider))

	events := drain(t, peer)
	require.Len(t, events, 1)
	assert.Equal(t, EventNewMessage, events[0].Event)
	data := events[0].Data.(map[string]interface{})
	assert.Equal(t, "m1", data["id"])
	assert.Equal(t, "room-1", data["chatroomId"])
}

func TestHub_BroadcastWithoutOriginReachesEveryone(t *testing.T) {
	hub := newTestHub(8)
	a := hub.Register(regular("u1"))
	b := hub.Register(regular("u1"))
	require.NoError(t, hub.Join(a.ID, "room-1"))
	require.NoError(t, hub.Join(b.ID, "room-1"))

	// Mensagem vinda do HTTP: não há sessão de origem.
	hub.Broadcast(domain.Message{ID: "m1", ChatroomID: "room-1"}, "")

	assert.Len(t, drain(t, a), 1)
	assert.Len(t, drain(t, b), 1)
}

func TestHub_Leave(t *testing.T) {
	hub := newTestHub(8)
	s := hub.Register(regular("u1"))
	require.NoError(t, hub.Join(s.ID, "room-1"))
	assert.Equal(t, 1, hub.Subscribers("room-1"))

	hub.Leave(s.ID, "room-1")
	hub.Leave(s.ID, "room-nunca-inscrito")

	assert.Equal(t, 0, hub.Subscribers("room-1"))
	hub.Broadcast(domain.Message{ID: "m1", ChatroomID: "room-1"}, "")
	assert.Empty(t, drain(t, s))
}

func TestHub_DisconnectRemovesSessionEverywhere(t *testing.T) {
	hub := newTestHub(8)
	s := hub.Register(regular("u1"))
	require.NoError(t, hub.Join(s.ID, "room-1"))
	require.NoError(t, hub.Join(s.ID, "room-2"))

	hub.Disconnect(s.ID)
	hub.Disconnect(s.ID)

	assert.Equal(t, 0, hub.SessionCount())
	assert.Equal(t, 0, hub.Subscribers("room-1"))
	assert.Equal(t, 0, hub.Subscribers("room-2"))

	_, open := <-s.Outbound()
	assert.False(t, open, "a fila de saída deve ser fechada")

	assert.ErrorIs(t, hub.Join(s.ID, "room-1"), ErrSessionClosed)
	assert.False(t, hub.Send(s.ID, Event{Event: EventLeft}))
}

func TestHub_SlowSessionIsDropped(t *testing.T) {
	hub := newTestHub(1)
	slow := hub.Register(regular("u1"))
	fast := hub.Register(regular("u1"))
	require.NoError(t, hub.Join(slow.ID, "room-1"))
	require.NoError(t, hub.Join(fast.ID, "room-1"))

	hub.Broadcast(domain.Message{ID: "m1", ChatroomID: "room-1"}, "")
	// fast consome; slow não
	assert.Len(t, drain(t, fast), 1)

	hub.Broadcast(domain.Message{ID: "m2", ChatroomID: "room-1"}, "")

	assert.Equal(t, 1, hub.SessionCount())
	assert.Equal(t, 1, hub.Subscribers("room-1"))
	assert.Len(t, drain(t, fast), 1)
}

func TestHub_SendTargetsSingleSession(t *testing.T) {
	hub := newTestHub(4)
	a := hub.Register(regular("u1"))
	b := hub.Register(regular("u2"))

	ok := hub.Send(a.ID, Event{Event: EventError, Data: errorPayload{Kind: "NOT_FOUND", Message: "x"}})

	assert.True(t, ok)
	events := drain(t, a)
	require.Len(t, events, 1)
	assert.Equal(t, EventError, events[0].Event)
	assert.Empty(t, drain(t, b))
	assert.False(t, hub.Send("desconhecida", Event{Event: EventError}))
}
