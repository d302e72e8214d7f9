package ws

import (
	"sync"
	"testing"
)

type fakeConn struct {
	mu     sync.Mutex
	sent   []any
	closed bool
	fail   bool
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errWrite
	}
	c.sent = append(c.sent, v)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) messages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

type writeError struct{}

func (writeError) Error() string { return "write failed" }

var errWrite = writeError{}

func TestSendToOtherSkipsSender(t *testing.T) {
	h := NewHub()
	alice := &fakeConn{}
	bob := &fakeConn{}
	h.Register("s-1", "alice", alice)
	h.Register("s-1", "bob", bob)

	h.SendToOther("s-1", "alice", "hello")

	if alice.messages() != 0 {
		t.Fatal("sender must not receive its own message")
	}
	if bob.messages() != 1 {
		t.Fatalf("bob received %d messages, want 1", bob.messages())
	}
}

func TestRegisterReplacesConnection(t *testing.T) {
	h := NewHub()
	first := &fakeConn{}
	h.Register("s-1", "alice", first)

	second := &fakeConn{}
	old := h.Register("s-1", "alice", second)
	if old != first {
		t.Fatal("reconnect must hand back the replaced connection")
	}

	h.SendToOther("s-1", "bob", "ping")
	if first.messages() != 0 || second.messages() != 1 {
		t.Fatalf("first=%d second=%d, only the new connection may receive", first.messages(), second.messages())
	}
}

func TestUnregisterOnlyDropsCurrent(t *testing.T) {
	h := NewHub()
	first := &fakeConn{}
	second := &fakeConn{}
	h.Register("s-1", "alice", first)
	h.Register("s-1", "alice", second)

	// the stale read loop of the replaced connection unregisters late
	h.Unregister("s-1", "alice", first)

	h.SendToOther("s-1", "bob", "ping")
	if second.messages() != 1 {
		t.Fatal("stale unregister must not evict the live connection")
	}
}

func TestFailedWriteDropsConnection(t *testing.T) {
	h := NewHub()
	broken := &fakeConn{fail: true}
	h.Register("s-1", "bob", broken)

	h.SendToOther("s-1", "alice", "one")
	h.SendToOther("s-1", "alice", "two") // bob is already gone

	if broken.messages() != 0 {
		t.Fatal("broken connection must not accumulate messages")
	}
}

func TestCloseSession(t *testing.T) {
	h := NewHub()
	alice := &fakeConn{}
	bob := &fakeConn{}
	h.Register("s-1", "alice", alice)
	h.Register("s-1", "bob", bob)

	h.CloseSession("s-1")
	if !alice.closed || !bob.closed {
		t.Fatal("all session connections must be closed")
	}

	h.SendToOther("s-1", "alice", "late")
	if bob.messages() != 0 {
		t.Fatal("closed session must not route messages")
	}
}
