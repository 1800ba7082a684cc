package realtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddeshwardm/chat-application/internal/presence"
)

type sent struct {
	event   string
	payload any
}

// recorder is an in-memory presence.Handle.
type recorder struct {
	id   presence.ConnID
	user string

	mu     sync.Mutex
	frames []sent
}

func newRecorder(id, user string) *recorder {
	return &recorder{id: presence.ConnID(id), user: user}
}

func (r *recorder) ID() presence.ConnID { return r.id }
func (r *recorder) UserID() string      { return r.user }

func (r *recorder) Send(event string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, sent{event, payload})
	return nil
}

func (r *recorder) events(name string) []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []any
	for _, f := range r.frames {
		if f.event == name {
			out = append(out, f.payload)
		}
	}
	return out
}

func newTestHub(t *testing.T) (*Hub, *presence.Registry) {
	t.Helper()
	reg := presence.NewRegistry()
	h := NewHub(reg)
	t.Cleanup(h.Stop)
	return h, reg
}

func TestConnectAcknowledgesThenBroadcasts(t *testing.T) {
	h, reg := newTestHub(t)
	a := newRecorder("A", "u1")

	h.Connect(a)

	require.Len(t, a.frames, 2)
	assert.Equal(t, sent{EventAuthMe, "u1"}, a.frames[0])
	assert.Equal(t, sent{EventOnlineUsers, []string{"u1"}}, a.frames[1])
	assert.Equal(t, []string{"u1"}, reg.OnlineUserIDs())
}

func TestPresenceBroadcastReachesEveryone(t *testing.T) {
	h, _ := newTestHub(t)
	a, z := newRecorder("A", "u1"), newRecorder("Z", "u2")

	h.Connect(a)
	h.Connect(z)
	h.Disconnect(z)

	assert.Equal(t, []any{
		[]string{"u1"},
		[]string{"u1", "u2"},
		[]string{"u1"},
	}, a.events(EventOnlineUsers))
	assert.Equal(t, []any{"u2"}, z.events(EventAuthMe))
}

func TestDisconnectScenario(t *testing.T) {
	h, reg := newTestHub(t)
	a, b := newRecorder("A", "u1"), newRecorder("B", "u1")

	h.Connect(a)
	h.Connect(b)
	h.Disconnect(a)

	conns := reg.ConnectionsFor("u1")
	require.Len(t, conns, 1)
	assert.Equal(t, presence.ConnID("B"), conns[0].ID())
	assert.Equal(t, []string{"u1"}, b.events(EventOnlineUsers)[1])

	h.Disconnect(b)
	assert.NotContains(t, h.OnlineUserIDs(), "u1")
}

func TestDisconnectUnregisteredIsSafe(t *testing.T) {
	h, reg := newTestHub(t)
	a := newRecorder("A", "u1")
	h.Connect(a)

	h.Disconnect(newRecorder("ghost", "nobody"))

	assert.Equal(t, []string{"u1"}, reg.OnlineUserIDs())
}

func TestDeliverToUserFansOutToRecipientOnly(t *testing.T) {
	h, _ := newTestHub(t)
	x, y := newRecorder("X", "u2"), newRecorder("Y", "u2")
	z := newRecorder("Z", "u1")
	h.Connect(x)
	h.Connect(y)
	h.Connect(z)

	payload := map[string]string{"text": "hi"}
	h.DeliverToUser("u2", payload)

	assert.Equal(t, []any{payload}, x.events(EventNewMessage))
	assert.Equal(t, []any{payload}, y.events(EventNewMessage))
	assert.Empty(t, z.events(EventNewMessage))
}

func TestDeliverToOfflineUserIsNoop(t *testing.T) {
	h, _ := newTestHub(t)
	z := newRecorder("Z", "u1")
	h.Connect(z)

	assert.NotPanics(t, func() { h.DeliverToUser("offline", "hello") })
	assert.Equal(t, 0, h.Emit("offline", EventNewMessage, "hello"))
	assert.Empty(t, z.events(EventNewMessage))
}

func TestStoppedHubDoesNotBlock(t *testing.T) {
	h, reg := newTestHub(t)
	h.Stop()

	h.Connect(newRecorder("A", "u1"))
	h.Disconnect(newRecorder("A", "u1"))

	assert.Empty(t, reg.OnlineUserIDs())
}
