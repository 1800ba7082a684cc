package presence

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	id   ConnID
	user string
}

func (f *fakeHandle) ID() ConnID             { return f.id }
func (f *fakeHandle) UserID() string         { return f.user }
func (f *fakeHandle) Send(string, any) error { return nil }

func handle(id, user string) *fakeHandle {
	return &fakeHandle{id: ConnID(id), user: user}
}

func ids(hs []Handle) []ConnID {
	out := make([]ConnID, 0, len(hs))
	for _, h := range hs {
		out = append(out, h.ID())
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestRegisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	a := handle("A", "u1")

	r.Register("u1", a)
	r.Register("u1", a)

	assert.Equal(t, []ConnID{"A"}, ids(r.ConnectionsFor("u1")))
	assert.Equal(t, 1, r.ConnectionCount())
}

func TestDeregisterUnknownIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Register("u1", handle("A", "u1"))

	assert.NotPanics(t, func() {
		r.Deregister("ghost", handle("Z", "ghost"))
		r.Deregister("u1", handle("Z", "u1"))
	})

	assert.Equal(t, []string{"u1"}, r.OnlineUserIDs())
	assert.Equal(t, []ConnID{"A"}, ids(r.ConnectionsFor("u1")))
	assert.Equal(t, 1, r.ConnectionCount())
}

func TestMultipleConnectionsPerUser(t *testing.T) {
	r := NewRegistry()
	a, b := handle("A", "u1"), handle("B", "u1")
	r.Register("u1", a)
	r.Register("u1", b)

	r.Deregister("u1", a)
	assert.Equal(t, []ConnID{"B"}, ids(r.ConnectionsFor("u1")))
	assert.Contains(t, r.OnlineUserIDs(), "u1")

	r.Deregister("u1", b)
	assert.NotContains(t, r.OnlineUserIDs(), "u1")
	assert.Empty(t, r.ConnectionsFor("u1"))
	assert.Equal(t, 0, r.Len())
}

func TestConnectionsForReturnsSnapshot(t *testing.T) {
	r := NewRegistry()
	r.Register("u1", handle("A", "u1"))
	r.Register("u1", handle("B", "u1"))

	snap := r.ConnectionsFor("u1")
	for _, h := range snap {
		r.Deregister("u1", h)
	}

	assert.Len(t, snap, 2)
	assert.Empty(t, r.ConnectionsFor("u1"))
}

func TestAllSpansUsers(t *testing.T) {
	r := NewRegistry()
	r.Register("u1", handle("A", "u1"))
	r.Register("u2", handle("X", "u2"))
	r.Register("u2", handle("Y", "u2"))

	assert.Equal(t, []ConnID{"A", "X", "Y"}, ids(r.All()))
	assert.Equal(t, []string{"u1", "u2"}, r.OnlineUserIDs())
}

// A user is online iff the model set for that user is non-empty, for any
// interleaving of register/deregister calls.
func TestOnlineMatchesModel(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	r := NewRegistry()
	model := map[string]map[ConnID]bool{}

	users := []string{"u1", "u2", "u3"}
	for i := 0; i < 2000; i++ {
		u := users[rng.Intn(len(users))]
		h := handle(fmt.Sprintf("c%d", rng.Intn(6)), u)
		if rng.Intn(2) == 0 {
			r.Register(u, h)
			if model[u] == nil {
				model[u] = map[ConnID]bool{}
			}
			model[u][h.id] = true
		} else {
			r.Deregister(u, h)
			delete(model[u], h.id)
		}

		var want []string
		total := 0
		for _, id := range users {
			if len(model[id]) > 0 {
				want = append(want, id)
			}
			total += len(model[id])
		}
		got := r.OnlineUserIDs()
		if len(want) == 0 {
			require.Empty(t, got)
		} else {
			require.Equal(t, want, got)
		}
		require.Equal(t, total, r.ConnectionCount())
	}
}

func TestConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := fmt.Sprintf("u%d", i%3)
			h := handle(fmt.Sprintf("c%d", i), u)
			for j := 0; j < 200; j++ {
				r.Register(u, h)
				_ = r.ConnectionsFor(u)
				_ = r.OnlineUserIDs()
				r.Deregister(u, h)
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, r.OnlineUserIDs())
	assert.Equal(t, 0, r.ConnectionCount())
}
