package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation parent of every input rejection
	ErrValidation = errors.New("validation error")
	// ErrInvalidUsername username too short
	ErrInvalidUsername = fmt.Errorf("%w: username must be at least %d characters", ErrValidation, MinUsernameLength)
	// ErrInvalidRoomID room id too short
	ErrInvalidRoomID = fmt.Errorf("%w: room id must be at least %d characters", ErrValidation, MinRoomIDLength)
	// ErrEmptyMessage message body blank after trim
	ErrEmptyMessage = fmt.Errorf("%w: message cannot be empty", ErrValidation)

	// ErrNotJoined command needs a joined room
	ErrNotJoined = errors.New("join a room first")
	// ErrStorageUnavailable message store unreachable or timed out
	ErrStorageUnavailable = errors.New("message storage unavailable")
	// ErrBadRequest malformed frame or unknown event
	ErrBadRequest = errors.New("bad request")
)

// Error codes sent in chat-error payloads
const (
	CodeValidation         = "validation_error"
	CodeNotJoined          = "not_joined"
	CodeStorageUnavailable = "storage_unavailable"
	CodeBadRequest         = "bad_request"
	CodeInternal           = "internal_error"
)

// ErrorCode classify err for the client
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrNotJoined):
		return CodeNotJoined
	case errors.Is(err, ErrStorageUnavailable):
		return CodeStorageUnavailable
	case errors.Is(err, ErrBadRequest):
		return CodeBadRequest
	default:
		return CodeInternal
	}
}

// ClientMessage user facing text for err. Storage details stay in the logs.
func ClientMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidUsername):
		return ErrInvalidUsername.Error()
	case errors.Is(err, ErrInvalidRoomID):
		return ErrInvalidRoomID.Error()
	case errors.Is(err, ErrEmptyMessage):
		return ErrEmptyMessage.Error()
	case errors.Is(err, ErrStorageUnavailable):
		return "message could not be saved, please try again"
	case errors.Is(err, ErrNotJoined):
		return ErrNotJoined.Error()
	default:
		return err.Error()
	}
}
