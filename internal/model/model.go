package model

import "time"

// User is the persisted identity document, keyed by username.
type User struct {
	Username     string   `json:"username"`
	PasswordHash string   `json:"-"`
	Email        string   `json:"email,omitempty"`
	Avatar       string   `json:"avatar,omitempty"`
	Bio          string   `json:"bio,omitempty"`
	Friends      []string `json:"friends"`
}

// HasFriend reports whether name is already in the friend set.
func (u *User) HasFriend(name string) bool {
	for _, f := range u.Friends {
		if f == name {
			return true
		}
	}
	return false
}

// Group is a named chat room, keyed by name. The admin is always a member.
type Group struct {
	Name    string   `json:"name"`
	Admin   string   `json:"admin"`
	Members []string `json:"members"`
}

// HasMember reports whether name is in the member set.
func (g *Group) HasMember(name string) bool {
	for _, m := range g.Members {
		if m == name {
			return true
		}
	}
	return false
}

// Message is an immutable chat message. Target is a username for direct
// messages and a group name when IsGroup is set.
type Message struct {
	ID         string    `json:"id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	IsGroup    bool      `json:"isGroup"`
	Body       string    `json:"body"`
	Attachment string    `json:"attachment,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// UserStatus is one entry of a presence snapshot.
type UserStatus struct {
	Username string `json:"username"`
	IsOnline bool   `json:"isOnline"`
}
