package realtime

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid"

	"github.com/siddeshwardm/chat-application/internal/presence"
	"github.com/siddeshwardm/chat-application/pkg/log"
)

var ErrConnClosed = errors.New("realtime: connection closed")

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

// Conn represents ONE browser-tab websocket.
type Conn struct {
	id   presence.ConnID
	ws   *websocket.Conn
	user string
	hub  *Hub
	out  chan []byte

	pingPeriod time.Duration
	closeOnce  sync.Once
	done       chan struct{}
}

// NewConnID returns a fresh, url-safe connection handle.
func NewConnID() (presence.ConnID, error) {
	id, err := gonanoid.Nanoid()
	if err != nil {
		return "", err
	}
	return presence.ConnID(id), nil
}

func (c *Conn) ID() presence.ConnID { return c.id }

func (c *Conn) UserID() string { return c.user }

// Send implements presence.Handle. It never blocks: a full outbound queue
// drops the frame.
func (c *Conn) Send(event string, payload any) error {
	b, err := json.Marshal(Frame{Event: event, Data: payload})
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		framesSent.WithLabelValues(event, "closed").Inc()
		return ErrConnClosed
	default:
	}
	select {
	case c.out <- b:
		framesSent.WithLabelValues(event, "queued").Inc()
	default: // channel full, drop
		framesSent.WithLabelValues(event, "dropped").Inc()
	}
	return nil
}

// ----------------------------------------------------------
// private loops
// ----------------------------------------------------------

func (c *Conn) readLoop() {
	defer c.close()

	pongWait := c.pingPeriod * 10 / 9
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		// Clients have nothing to say on this channel yet; reading only keeps
		// control frames flowing and detects the disconnect.
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Logger.Debug().Err(err).Str("conn_id", string(c.id)).Msg("ws read failed")
			}
			return
		}
	}
}

func (c *Conn) writeLoop() {
	tick := time.NewTicker(c.pingPeriod)
	defer tick.Stop()

	for {
		select {
		case msg := <-c.out:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.close()
				return
			}

		case <-tick.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}

		case <-c.done:
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// ----------------------------------------------------------

// close runs the disconnect path exactly once, whatever ended the connection.
func (c *Conn) close() {
	c.closeOnce.Do(func() {
		c.hub.Disconnect(c)
		close(c.done)
		_ = c.ws.Close()
	})
}

// ------------------------------------------------------------------
// Helper called from the HTTP upgrader
// ------------------------------------------------------------------

func NewConn(id presence.ConnID, user string, ws *websocket.Conn, hub *Hub,
	sendBuffer int, pingPeriod time.Duration) *Conn {

	if sendBuffer <= 0 {
		sendBuffer = 16
	}
	if pingPeriod <= 0 {
		pingPeriod = 25 * time.Second
	}
	conn := &Conn{
		id:         id,
		ws:         ws,
		user:       user,
		hub:        hub,
		out:        make(chan []byte, sendBuffer),
		pingPeriod: pingPeriod,
		done:       make(chan struct{}),
	}

	go conn.writeLoop()
	hub.Connect(conn)
	go conn.readLoop()

	return conn
}
