// Package protocol defines the named-event envelope exchanged over the
// WebSocket surface and the payload records for each event type.
package protocol

import (
	"encoding/json"

	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/model"
)

// Client-to-server event names.
const (
	EventAuthenticate  = "authenticate"
	EventSendRequest   = "send_request"
	EventAcceptRequest = "accept_request"
	EventGetProfile    = "get_profile"
	EventUpdateProfile = "update_profile"
	EventChatMessage   = "chat_message"
	EventCreateGroup   = "create_group"
	EventAddMember     = "add_member"
	EventGetHistory    = "get_history"
)

// Server-to-client event names.
const (
	EventAuthSuccess     = "auth_success"
	EventAuthError       = "auth_error"
	EventUpdateUserList  = "update_user_list"
	EventUpdateGroupList = "update_group_list"
	EventReceiveRequest  = "receive_request"
	EventErrorMsg        = "error_msg"
	EventProfileData     = "profile_data"
	EventNewMsg          = "new_msg"
	EventChatHistory     = "chat_history"
)

// Inbound is a client frame; the payload stays raw until the type is known.
type Inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Outbound is a server frame ready for JSON encoding.
type Outbound struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Authenticate carries registration or login credentials.
type Authenticate struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	Email         string `json:"email,omitempty"`
	IsRegistering bool   `json:"isRegistering"`
}

// SendRequest asks the server to deliver a friend request.
type SendRequest struct {
	TargetName string `json:"targetName"`
}

// AcceptRequest confirms a previously received friend request.
type AcceptRequest struct {
	From string `json:"from"`
}

// GetProfile asks for another user's public profile.
type GetProfile struct {
	Target string `json:"target"`
}

// UpdateProfile carries a partial profile update; empty fields are left alone.
type UpdateProfile struct {
	Bio    string `json:"bio,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Email  string `json:"email,omitempty"`
}

// ChatMessage is an outgoing direct or group message.
type ChatMessage struct {
	To         string `json:"to"`
	IsGroup    bool   `json:"isGroup"`
	Body       string `json:"body"`
	Attachment string `json:"attachment,omitempty"`
}

// CreateGroup asks to create a named group with the caller as admin.
type CreateGroup struct {
	Name string `json:"name"`
}

// AddMember asks to add a user to a group the caller administers.
type AddMember struct {
	GroupName string `json:"groupName"`
	UserToAdd string `json:"userToAdd"`
}

// GetHistory requests the full persisted conversation with a user or group.
type GetHistory struct {
	Other   string `json:"other"`
	IsGroup bool   `json:"isGroup"`
}

// AuthSuccess acknowledges a successful authenticate.
type AuthSuccess struct {
	Username string `json:"username"`
}

// ErrorMessage is the single human-readable error payload used by both
// auth_error and error_msg.
type ErrorMessage struct {
	Message string `json:"message"`
}

// ReceiveRequest notifies a user of an incoming friend request.
type ReceiveRequest struct {
	From string `json:"from"`
}

// ProfileData is the public view of a user document.
type ProfileData struct {
	Username string `json:"username"`
	Bio      string `json:"bio,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Email    string `json:"email,omitempty"`
}

// NewUserList builds an update_user_list frame scoped to the caller's friends.
func NewUserList(statuses []model.UserStatus) Outbound {
	return Outbound{Type: EventUpdateUserList, Payload: statuses}
}

// NewGroupList builds an update_group_list frame scoped to the caller's groups.
func NewGroupList(groups []model.Group) Outbound {
	return Outbound{Type: EventUpdateGroupList, Payload: groups}
}

// NewMessage builds a new_msg frame.
func NewMessage(msg model.Message) Outbound {
	return Outbound{Type: EventNewMsg, Payload: msg}
}

// NewHistory builds a chat_history frame, ascending by timestamp.
func NewHistory(msgs []model.Message) Outbound {
	return Outbound{Type: EventChatHistory, Payload: msgs}
}
