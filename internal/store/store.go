// Package store is the persistence layer: a document store with per-entity
// collections, unique primary keys, and idempotent set-add updates.
package store

import (
	"errors"

	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/model"
)

var (
	// ErrNotFound is returned when a looked-up document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicateKey is returned when an insert collides with an
	// existing primary key.
	ErrDuplicateKey = errors.New("duplicate key")
)

// ProfilePatch is a partial user update; nil fields are left alone.
type ProfilePatch struct {
	Bio    *string
	Avatar *string
	Email  *string
}

// Store exposes the persistence contract used by the chat services.
// Single-document updates are atomic; nothing spans documents.
type Store interface {
	// CreateUser inserts a user, enforcing username uniqueness at the
	// store level. Returns ErrDuplicateKey on collision.
	CreateUser(user model.User) error
	GetUser(username string) (model.User, error)
	SetProfile(username string, patch ProfilePatch) error
	// AddFriend adds friend to username's friend set. The add is
	// idempotent, and a missing username matches no document and is
	// silently a no-op.
	AddFriend(username, friend string) error

	// CreateGroup inserts a group, enforcing name uniqueness. Returns
	// ErrDuplicateKey on collision.
	CreateGroup(group model.Group) error
	GetGroup(name string) (model.Group, error)
	// AddGroupMember adds member to the group's member set, idempotently.
	AddGroupMember(name, member string) error
	// GroupsFor lists every group whose member set contains username.
	GroupsFor(username string) ([]model.Group, error)

	// AppendMessage persists one immutable message.
	AppendMessage(msg model.Message) error
	// GroupHistory returns all messages targeting the group name,
	// ascending by timestamp.
	GroupHistory(name string) ([]model.Message, error)
	// DirectHistory returns all messages between a and b in either
	// direction, ascending by timestamp.
	DirectHistory(a, b string) ([]model.Message, error)

	Close() error
}
