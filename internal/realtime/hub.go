package realtime

import (
	"sync"

	"github.com/siddeshwardm/chat-application/internal/presence"
	"github.com/siddeshwardm/chat-application/pkg/log"
)

// Event names on the realtime channel.
const (
	EventAuthMe      = "auth:me"        // server → one conn: resolved user id
	EventOnlineUsers = "getOnlineUsers" // server → all: online user ids
	EventNewMessage  = "newMessage"     // server → recipient's conns
)

// Frame is the JSON envelope of every websocket text message.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type lifecycle struct {
	conn    presence.Handle
	connect bool
	done    chan struct{}
}

// Hub is the presence and delivery gateway. Connects and disconnects are
// applied one at a time on the hub goroutine, so each presence snapshot is
// sent to every connection in the order the registry changed.
type Hub struct {
	registry *presence.Registry
	events   chan lifecycle
	quit     chan struct{}
	stopOnce sync.Once
}

func NewHub(registry *presence.Registry) *Hub {
	h := &Hub{
		registry: registry,
		events:   make(chan lifecycle),
		quit:     make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case ev := <-h.events:
			if ev.connect {
				h.handleConnect(ev.conn)
			} else {
				h.handleDisconnect(ev.conn)
			}
			close(ev.done)

		case <-h.quit:
			return
		}
	}
}

// Stop ends the hub loop. Later Connect/Disconnect calls return immediately.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// Connect registers an authenticated connection, acknowledges its identity
// and rebroadcasts presence. It returns once all three have happened.
func (h *Hub) Connect(c presence.Handle) {
	h.dispatch(lifecycle{conn: c, connect: true, done: make(chan struct{})})
}

// Disconnect deregisters c and rebroadcasts presence. Safe for connections
// that were never registered.
func (h *Hub) Disconnect(c presence.Handle) {
	h.dispatch(lifecycle{conn: c, done: make(chan struct{})})
}

func (h *Hub) dispatch(ev lifecycle) {
	select {
	case <-h.quit:
		return
	default:
	}
	select {
	case h.events <- ev:
	case <-h.quit:
		return
	}
	select {
	case <-ev.done:
	case <-h.quit:
	}
}

func (h *Hub) handleConnect(c presence.Handle) {
	h.registry.Register(c.UserID(), c)
	log.Logger.Info().Str("conn_id", string(c.ID())).Str("user_id", c.UserID()).Msg("user connected")

	_ = c.Send(EventAuthMe, c.UserID())
	h.broadcastPresence()
}

func (h *Hub) handleDisconnect(c presence.Handle) {
	h.registry.Deregister(c.UserID(), c)
	log.Logger.Info().Str("conn_id", string(c.ID())).Str("user_id", c.UserID()).Msg("user disconnected")

	h.broadcastPresence()
}

func (h *Hub) broadcastPresence() {
	online := h.registry.OnlineUserIDs()
	onlineUsers.Set(float64(len(online)))
	openConnections.Set(float64(h.registry.ConnectionCount()))
	presenceBroadcasts.Inc()

	for _, c := range h.registry.All() {
		_ = c.Send(EventOnlineUsers, online) // ignore slow / dead tabs
	}
}

// --------------------------------------------------------------------
// Fan-out
// --------------------------------------------------------------------

// Emit pushes event to every live connection of userID and reports how many
// connections it was handed to. Offline users are a silent no-op.
func (h *Hub) Emit(userID, event string, payload any) int {
	conns := h.registry.ConnectionsFor(userID)
	for _, c := range conns {
		_ = c.Send(event, payload)
	}
	return len(conns)
}

// DeliverToUser pushes a new message to every live connection of recipientID.
// Best effort: nothing is queued for offline users and nothing is retried.
func (h *Hub) DeliverToUser(recipientID string, payload any) {
	if n := h.Emit(recipientID, EventNewMessage, payload); n > 0 {
		log.Logger.Debug().Str("user_id", recipientID).Int("conns", n).Msg("message fanned out")
	}
}

// OnlineUserIDs exposes the current presence snapshot.
func (h *Hub) OnlineUserIDs() []string {
	return h.registry.OnlineUserIDs()
}
