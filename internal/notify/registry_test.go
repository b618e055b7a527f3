package notify

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	writes   []any
	writeErr error
	closed   int
}

func (f *fakeConn) WriteJSON(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, v)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeConn) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestRegistry_SendTo(t *testing.T) {
	r := NewRegistry()
	c := &fakeConn{}
	r.Connect("alice", c)

	require.NoError(t, r.SendTo("alice", "hello"))
	assert.Equal(t, []any{"hello"}, c.writes)
}

func TestRegistry_SendToUnknownUser(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.SendTo("nobody", "hello"), ErrNotConnected)
}

func TestRegistry_SendToFailureDropsConn(t *testing.T) {
	r := NewRegistry()
	c := &fakeConn{writeErr: errors.New("broken pipe")}
	r.Connect("alice", c)

	require.Error(t, r.SendTo("alice", "hello"))
	assert.Equal(t, 1, c.closeCount())
	assert.False(t, r.IsConnected("alice"))
}

func TestRegistry_ReconnectReplacesAndClosesOld(t *testing.T) {
	r := NewRegistry()
	old := &fakeConn{}
	replacement := &fakeConn{}

	r.Connect("alice", old)
	r.Connect("alice", replacement)

	assert.Equal(t, 1, old.closeCount())
	assert.Equal(t, 1, r.Count())

	require.NoError(t, r.SendTo("alice", "hello"))
	assert.Empty(t, old.writes)
	assert.Equal(t, []any{"hello"}, replacement.writes)
}

func TestRegistry_DisconnectIgnoresStaleConn(t *testing.T) {
	r := NewRegistry()
	old := &fakeConn{}
	replacement := &fakeConn{}

	r.Connect("alice", old)
	r.Connect("alice", replacement)

	// The old handler's deferred cleanup must not evict the replacement.
	r.Disconnect("alice", old)
	assert.True(t, r.IsConnected("alice"))

	r.Disconnect("alice", replacement)
	assert.False(t, r.IsConnected("alice"))
	assert.Equal(t, 1, replacement.closeCount())
}

func TestRegistry_Broadcast(t *testing.T) {
	r := NewRegistry()
	good := &fakeConn{}
	bad := &fakeConn{writeErr: errors.New("broken pipe")}
	r.Connect("alice", good)
	r.Connect("bob", bad)

	r.Broadcast("ping")

	assert.Equal(t, []any{"ping"}, good.writes)
	assert.True(t, r.IsConnected("alice"))
	assert.False(t, r.IsConnected("bob"))
}

func TestRegistry_CloseAll(t *testing.T) {
	r := NewRegistry()
	a := &fakeConn{}
	b := &fakeConn{}
	r.Connect("alice", a)
	r.Connect("bob", b)

	r.CloseAll()

	assert.Zero(t, r.Count())
	assert.Equal(t, 1, a.closeCount())
	assert.Equal(t, 1, b.closeCount())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c := &fakeConn{}
				r.Connect("alice", c)
				r.SendTo("alice", j)
				r.Disconnect("alice", c)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, r.Count())
}
