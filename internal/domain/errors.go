package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures reported back to a connection
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindAuth         ErrorKind = "auth"
	KindNotFound     ErrorKind = "not_found"
	KindPrecondition ErrorKind = "precondition"
	KindConflict     ErrorKind = "conflict"
	KindInternal     ErrorKind = "internal"
)

// Sentinel errors. Compare with errors.Is.
var (
	ErrNotRegistered     = &Error{Kind: KindPrecondition, Message: "register a name before doing that"}
	ErrNotMember         = &Error{Kind: KindPrecondition, Message: "you are not a member of this room"}
	ErrRoomNotFound      = &Error{Kind: KindNotFound, Message: "room not found"}
	ErrInvalidPassword   = &Error{Kind: KindAuth, Message: "invalid room password"}
	ErrRoomAlreadyExists = &Error{Kind: KindConflict, Message: "a room with that id already exists"}
	ErrInvalidRoomID     = &Error{Kind: KindValidation, Message: "room id must contain letters or digits"}
	ErrEmptyPayload      = &Error{Kind: KindValidation, Message: "file payload is empty"}
	ErrUnknownCommand    = &Error{Kind: KindValidation, Message: "unknown command"}
	ErrHubStopped        = &Error{Kind: KindInternal, Message: "server is shutting down"}
	ErrUnknownConnection = &Error{Kind: KindPrecondition, Message: "connection is not attached"}
)

// Error is a client-safe failure. Message is what the originating connection sees.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// KindOf returns the kind of err, or KindInternal for foreign errors
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// PublicMessage returns the text safe to show to a client
func PublicMessage(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// Invalid builds a validation error with a custom message
func Invalid(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}
