package neighbor

import (
	"errors"
	"fmt"
)

var (
	// ErrBadCutoff is wrapped by the errors returned for a cutoff that is not
	// a positive number.
	ErrBadCutoff = errors.New("the cutoff must be a positive number")

	// ErrCutoffTooLarge is wrapped by the errors returned when the minimum image
	// correction is requested with a cutoff that is not smaller than half the
	// thickness of the box along some periodic axis. In that case a pair could
	// be within the cutoff through more than one periodic image.
	ErrCutoffTooLarge = errors.New("cutoff not smaller than half the box thickness")

	// ErrBadPosition is wrapped by the errors returned when a position is not a finite number.
	ErrBadPosition = errors.New("non-finite atomic position")
)

// Error is the error type for the neighbor package.
type Error struct {
	message  string
	deco     []string
	critical bool
	err      error
}

func newError(message, caller string, wrapped error) *Error {
	return &Error{message: message, deco: []string{caller}, critical: true, err: wrapped}
}

func (err *Error) Error() string {
	return fmt.Sprintf("goALTBC/neighbor: %s", err.message)
}

// Decorate adds new information to the error
func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// Critical returns true if the error is critical, false otherwise
func (err *Error) Critical() bool { return err.critical }

// Unwrap returns the sentinel error wrapped, if any.
func (err *Error) Unwrap() error { return err.err }

func errDecorate(err error, caller string) error {
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(caller)
	}
	return err
}
