package errors

import (
	"errors"
	"fmt"
)

// New returns an error with the given message.
func New(msg string) error {
	return errors.New(msg)
}

// contextError wraps an error with a short description of what was being
// attempted when the error occurred.
type contextError struct {
	context string
	err     error
}

func (err contextError) Error() string {
	return fmt.Sprintf("%s: %s", err.context, err.err)
}

func (err contextError) Unwrap() error {
	return err.err
}

// WithContext annotates `err` with `context`. The resulting error message has
// the form `context: err`.
func WithContext(err error, context string) error {
	return contextError{context: context, err: err}
}

// RootCause returns the original error that was wrapped by WithContext.
func RootCause(err error) error {
	for {
		ctxErr, ok := err.(contextError)
		if !ok {
			return err
		}
		err = ctxErr.err
	}
}

// FriendlyMessager is implemented by errors that carry a message meant to be
// shown directly to the user.
type FriendlyMessager interface {
	FriendlyMessage() string
}

// FriendlyError is an error whose message is already formatted for the user.
type FriendlyError struct {
	msg string
}

// NewFriendlyError formats a FriendlyError according to the format specifier.
func NewFriendlyError(format string, args ...interface{}) error {
	return FriendlyError{fmt.Sprintf(format, args...)}
}

func (err FriendlyError) Error() string {
	return err.msg
}

// FriendlyMessage returns the user facing message.
func (err FriendlyError) FriendlyMessage() string {
	return err.msg
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
