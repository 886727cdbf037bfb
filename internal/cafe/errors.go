package cafe

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("order not found")
	ErrStaleState = errors.New("order was modified by another actor")
	ErrForbidden  = errors.New("actor is not allowed to perform this action")
)

// ValidationError: input salah dari caller, bisa diperbaiki lalu diulang.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// InvalidTransitionError menyebut state sekarang dan yang diminta.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

func IsInvalidTransition(err error) bool {
	var it *InvalidTransitionError
	return errors.As(err, &it)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
