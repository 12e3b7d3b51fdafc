package chat

import (
	"testing"

	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/model"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/protocol"
)

func TestDirectMessageDeliversAndEchoes(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice")
	bob := env.registerUser(t, "bob")

	if err := env.svc.SendMessage("alice", protocol.ChatMessage{To: "bob", Body: "hi"}); err != nil {
		t.Fatalf("send message: %v", err)
	}

	got := bob.last(t, protocol.EventNewMsg).Payload.(model.Message)
	if got.From != "alice" || got.To != "bob" || got.Body != "hi" || got.IsGroup {
		t.Fatalf("unexpected message at bob: %+v", got)
	}
	if got.ID == "" || got.Timestamp.IsZero() {
		t.Fatalf("expected server-assigned id and timestamp, got %+v", got)
	}

	echo := alice.last(t, protocol.EventNewMsg).Payload.(model.Message)
	if echo.ID != got.ID {
		t.Fatalf("expected sender echo of the same message, got %+v", echo)
	}
}

func TestDirectMessageToOfflineRecipientStillEchoesAndPersists(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice")
	env.registerUser(t, "bob")
	env.reg.Unregister("bob")

	if err := env.svc.SendMessage("alice", protocol.ChatMessage{To: "bob", Body: "you there?"}); err != nil {
		t.Fatalf("send message: %v", err)
	}

	// Echo arrives regardless of recipient presence.
	echo := alice.last(t, protocol.EventNewMsg).Payload.(model.Message)
	if echo.Body != "you there?" {
		t.Fatalf("unexpected echo: %+v", echo)
	}

	// The message is already persisted and retrievable later.
	history, err := env.store.DirectHistory("bob", "alice")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Body != "you there?" {
		t.Fatalf("expected persisted message, got %v", history)
	}
}

func TestGroupMessageFansOutToRegisteredMembers(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice")
	bob := env.registerUser(t, "bob")
	env.registerUser(t, "carol")
	env.reg.Unregister("carol")

	if err := env.svc.CreateGroup("alice", "team"); err != nil {
		t.Fatalf("create group: %v", err)
	}
	if err := env.svc.AddMember("alice", "team", "bob"); err != nil {
		t.Fatalf("add bob: %v", err)
	}
	if err := env.svc.AddMember("alice", "team", "carol"); err != nil {
		t.Fatalf("add carol: %v", err)
	}

	if err := env.svc.SendMessage("alice", protocol.ChatMessage{To: "team", IsGroup: true, Body: "standup"}); err != nil {
		t.Fatalf("send message: %v", err)
	}

	for name, conn := range map[string]*fakeConn{"alice": alice, "bob": bob} {
		got := conn.last(t, protocol.EventNewMsg).Payload.(model.Message)
		if got.To != "team" || !got.IsGroup || got.Body != "standup" {
			t.Fatalf("unexpected message at %s: %+v", name, got)
		}
	}

	// Offline carol can still catch up through history.
	history, err := env.store.GroupHistory("team")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one persisted group message, got %v", history)
	}
}

func TestGroupMessageToMissingGroupDeliversToNobody(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice")

	before := alice.count()
	if err := env.svc.SendMessage("alice", protocol.ChatMessage{To: "nowhere", IsGroup: true, Body: "void"}); err != nil {
		t.Fatalf("send message: %v", err)
	}
	if alice.count() != before {
		t.Fatal("expected no delivery for a missing group")
	}

	// Persistence still happened before the failed lookup.
	history, err := env.store.GroupHistory("nowhere")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected the message persisted anyway, got %v", history)
	}
}

func TestMessageFromUnregisteredSenderDropped(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice")
	env.reg.Unregister("alice")

	if err := env.svc.SendMessage("alice", protocol.ChatMessage{To: "bob", Body: "hi"}); err != nil {
		t.Fatalf("expected silent drop, got %v", err)
	}

	history, err := env.store.DirectHistory("alice", "bob")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected nothing persisted, got %v", history)
	}
}

func TestMessageTimestampsAscend(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice")
	env.registerUser(t, "bob")

	for _, body := range []string{"one", "two", "three"} {
		if err := env.svc.SendMessage("alice", protocol.ChatMessage{To: "bob", Body: body}); err != nil {
			t.Fatalf("send %s: %v", body, err)
		}
	}

	history, err := env.store.DirectHistory("alice", "bob")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if !history[i-1].Timestamp.Before(history[i].Timestamp) {
			t.Fatalf("expected ascending timestamps, got %v then %v", history[i-1].Timestamp, history[i].Timestamp)
		}
	}
	if history[0].Body != "one" || history[2].Body != "three" {
		t.Fatalf("expected send order preserved, got %v", history)
	}
}
