package service

import (
	"errors"
	"fmt"
)

// Domain errors returned by the services.  Handlers map them to HTTP
// statuses in one place; anything else is treated as an internal failure.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidState        = errors.New("invalid state")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrAlreadyExists       = errors.New("already exists")
	ErrSelfRequest         = errors.New("cannot send a friend request to yourself")
	ErrInvalidCode         = errors.New("invalid friend code")
	ErrGenerationExhausted = errors.New("could not generate a unique friend code")
	ErrCancelled           = errors.New("booking is cancelled")
	ErrAlreadyJoined       = errors.New("already joined this booking")
)

// CodeExistsError is returned by FriendCodes.Generate when the user
// already owns a code.  It matches ErrAlreadyExists.
type CodeExistsError struct {
	Code string
}

func (e *CodeExistsError) Error() string { return "friend code already exists" }

func (e *CodeExistsError) Unwrap() error { return ErrAlreadyExists }

func invalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
