package chat

// Error is a domain failure surfaced to the initiating connection as a
// single human-readable message event. Code feeds error metrics.
type Error struct {
	Code    string
	Message string
	// Auth marks errors delivered as auth_error instead of error_msg.
	Auth bool
}

func (e *Error) Error() string {
	return e.Message
}

var (
	// ErrDuplicateIdentity rejects a registration for a taken username.
	ErrDuplicateIdentity = &Error{Code: "DUPLICATE_IDENTITY", Message: "username is already taken", Auth: true}
	// ErrInvalidCredentials rejects a login with a bad username or password.
	ErrInvalidCredentials = &Error{Code: "INVALID_CREDENTIALS", Message: "invalid username or password", Auth: true}
	// ErrInvalidTarget rejects a self-targeted friend request.
	ErrInvalidTarget = &Error{Code: "INVALID_TARGET", Message: "you cannot send a request to yourself"}
	// ErrUserNotFound rejects an operation naming an unknown user.
	ErrUserNotFound = &Error{Code: "NOT_FOUND", Message: "no such user"}
	// ErrGroupNotFound rejects an operation naming an unknown group.
	ErrGroupNotFound = &Error{Code: "NOT_FOUND", Message: "no such group"}
	// ErrUserNotReachable reports a friend request to an offline user.
	ErrUserNotReachable = &Error{Code: "UNREACHABLE", Message: "user is not online"}
	// ErrNameTaken rejects creating a group under an existing name.
	ErrNameTaken = &Error{Code: "NAME_TAKEN", Message: "group name is already taken"}
)
