package store

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/model"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := OpenBolt(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateUserEnforcesUniqueness(t *testing.T) {
	s := openTestStore(t)

	if err := s.CreateUser(model.User{Username: "alice", PasswordHash: "h"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	err := s.CreateUser(model.User{Username: "alice", PasswordHash: "other"})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	got, err := s.GetUser("alice")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.PasswordHash != "h" {
		t.Fatalf("expected original document untouched, got hash %q", got.PasswordHash)
	}
}

func TestCreateUserConcurrentSingleWinner(t *testing.T) {
	s := openTestStore(t)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.CreateUser(model.User{Username: "race", PasswordHash: "h"})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrDuplicateKey):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one successful registration, got %d", wins)
	}
}

func TestGetUserMissing(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.GetUser("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetProfilePartialUpdate(t *testing.T) {
	s := openTestStore(t)

	if err := s.CreateUser(model.User{Username: "alice", Bio: "old", Email: "a@x"}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	bio := "new bio"
	if err := s.SetProfile("alice", ProfilePatch{Bio: &bio}); err != nil {
		t.Fatalf("set profile: %v", err)
	}

	got, err := s.GetUser("alice")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Bio != "new bio" {
		t.Fatalf("expected updated bio, got %q", got.Bio)
	}
	if got.Email != "a@x" {
		t.Fatalf("expected email untouched, got %q", got.Email)
	}

	if err := s.SetProfile("ghost", ProfilePatch{Bio: &bio}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing user, got %v", err)
	}
}

func TestAddFriendIdempotent(t *testing.T) {
	s := openTestStore(t)

	if err := s.CreateUser(model.User{Username: "alice"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := s.AddFriend("alice", "bob"); err != nil {
		t.Fatalf("add friend: %v", err)
	}
	if err := s.AddFriend("alice", "bob"); err != nil {
		t.Fatalf("repeat add friend: %v", err)
	}

	got, err := s.GetUser("alice")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if len(got.Friends) != 1 || got.Friends[0] != "bob" {
		t.Fatalf("expected friend set {bob}, got %v", got.Friends)
	}

	// Missing owner matches no document; no error, no effect.
	if err := s.AddFriend("ghost", "bob"); err != nil {
		t.Fatalf("add friend to missing user: %v", err)
	}
}

func TestGroupLifecycle(t *testing.T) {
	s := openTestStore(t)

	group := model.Group{Name: "team", Admin: "alice", Members: []string{"alice"}}
	if err := s.CreateGroup(group); err != nil {
		t.Fatalf("create group: %v", err)
	}
	if err := s.CreateGroup(group); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	if err := s.AddGroupMember("team", "bob"); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if err := s.AddGroupMember("team", "bob"); err != nil {
		t.Fatalf("repeat add member: %v", err)
	}

	got, err := s.GetGroup("team")
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	if len(got.Members) != 2 || !got.HasMember("alice") || !got.HasMember("bob") {
		t.Fatalf("expected members alice+bob, got %v", got.Members)
	}

	groups, err := s.GroupsFor("bob")
	if err != nil {
		t.Fatalf("groups for bob: %v", err)
	}
	if len(groups) != 1 || groups[0].Name != "team" {
		t.Fatalf("expected bob in team, got %v", groups)
	}

	groups, err = s.GroupsFor("carol")
	if err != nil {
		t.Fatalf("groups for carol: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("expected carol in no groups, got %v", groups)
	}
}

func TestHistoryAscendingAndScoped(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	msgs := []model.Message{
		{ID: "1", From: "alice", To: "bob", Body: "hi", Timestamp: base},
		{ID: "2", From: "bob", To: "alice", Body: "hey", Timestamp: base.Add(time.Second)},
		{ID: "3", From: "alice", To: "carol", Body: "other", Timestamp: base.Add(2 * time.Second)},
		{ID: "4", From: "alice", To: "team", IsGroup: true, Body: "grp", Timestamp: base.Add(3 * time.Second)},
	}
	for _, m := range msgs {
		if err := s.AppendMessage(m); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	direct, err := s.DirectHistory("bob", "alice")
	if err != nil {
		t.Fatalf("direct history: %v", err)
	}
	if len(direct) != 2 || direct[0].ID != "1" || direct[1].ID != "2" {
		t.Fatalf("expected [1,2] ascending, got %v", direct)
	}

	groupMsgs, err := s.GroupHistory("team")
	if err != nil {
		t.Fatalf("group history: %v", err)
	}
	if len(groupMsgs) != 1 || groupMsgs[0].ID != "4" {
		t.Fatalf("expected [4], got %v", groupMsgs)
	}

	// A direct message to a name never shadows a group of the same name.
	none, err := s.GroupHistory("bob")
	if err != nil {
		t.Fatalf("group history: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no group messages for bob, got %v", none)
	}
}
