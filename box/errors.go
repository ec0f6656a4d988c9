package box

import (
	"errors"
	"fmt"
)

// ErrDegenerate is wrapped by the errors returned when a lattice has no volume.
// No frame can be spatially partitioned with such a lattice.
var ErrDegenerate = errors.New("degenerate (zero-volume) lattice")

// Error is the error type for the box package.
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
	return fmt.Sprintf("goALTBC/box: %s", err.message)
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

// errDecorate decorates the error with the caller's name before returning it.
// Errors not from this package are returned unchanged.
func errDecorate(err error, caller string) error {
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(caller)
	}
	return err
}
