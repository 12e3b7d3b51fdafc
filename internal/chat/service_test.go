package chat

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/protocol"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/registry"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/store"
)

// fakeConn records every pushed event for assertions.
type fakeConn struct {
	mu     sync.Mutex
	events []protocol.Outbound
}

func (c *fakeConn) Push(evt protocol.Outbound) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *fakeConn) byType(eventType string) []protocol.Outbound {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []protocol.Outbound
	for _, evt := range c.events {
		if evt.Type == eventType {
			out = append(out, evt)
		}
	}
	return out
}

func (c *fakeConn) last(t *testing.T, eventType string) protocol.Outbound {
	t.Helper()
	matches := c.byType(eventType)
	if len(matches) == 0 {
		t.Fatalf("no %s event pushed; got %+v", eventType, c.events)
	}
	return matches[len(matches)-1]
}

// plainVerifier avoids argon2 work in domain tests.
type plainVerifier struct{}

func (plainVerifier) Hash(plaintext string) (string, error) { return "plain:" + plaintext, nil }
func (plainVerifier) Verify(plaintext, digest string) bool  { return digest == "plain:"+plaintext }

type testEnv struct {
	svc   *Service
	store store.Store
	reg   *registry.InMemoryRegistry
	clock *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.OpenBolt(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	reg := registry.NewInMemory()
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(zaptest.NewLogger(t), st, reg, plainVerifier{}, Options{Now: clock.Now})
	return &testEnv{svc: svc, store: st, reg: reg, clock: clock}
}

// registerUser creates and authenticates a user over a fresh fake
// connection, returning its handle.
func (e *testEnv) registerUser(t *testing.T, username string) *fakeConn {
	t.Helper()
	conn := &fakeConn{}
	err := e.svc.Authenticate(conn, protocol.Authenticate{
		Username:      username,
		Password:      "pw-" + username,
		IsRegistering: true,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return conn
}
