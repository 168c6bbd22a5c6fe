package service

import "errors"

// Every rejected operation returns one of these and leaves the store unchanged.
var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrBanned             = errors.New("user is banned")
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("admin role required")
	ErrEmptyInput         = errors.New("empty input")
	ErrSelfAction         = errors.New("action cannot target yourself")
	ErrAlreadyFriends     = errors.New("users are already friends")
	ErrNotFriends         = errors.New("users are not friends")
	ErrNotChannel         = errors.New("chat is not a channel")
	ErrAlreadyMember      = errors.New("user is already a participant")
	ErrNotMember          = errors.New("user is not a participant of this chat")
	ErrForbidden          = errors.New("channel is not public")
	ErrProtectedUser      = errors.New("seed admin cannot be deleted")
	ErrDuplicatePrefix    = errors.New("prefix already exists")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrUniqueIDExhausted  = errors.New("could not allocate a free unique id")
)
