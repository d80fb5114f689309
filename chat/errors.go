package chat

import "errors"

// Failure taxonomy for the messaging core. Gateway handlers convert these
// into an "error" event targeted at the originating socket; REST controllers
// map them to status codes.
var (
	ErrAuthentication = errors.New("authentication error")
	ErrValidation     = errors.New("invalid message data")
	ErrNotFound       = errors.New("not found")
	ErrAuthorization  = errors.New("unauthorized")
	ErrPersistence    = errors.New("persistence error")
)
