package altbc

import (
	"errors"
	"fmt"
)

var (
	// ErrBadCutoff is wrapped by the errors returned for a cutoff that is
	// not a positive number.
	ErrBadCutoff = errors.New("the cutoff must be a positive number")

	// ErrBadAngles is wrapped by the errors returned when the angle window is
	// not contained in [0, 180] or theta_min > theta_max.
	ErrBadAngles = errors.New("the angles must satisfy 0 <= theta_min <= theta_max <= 180")

	// ErrBadGrid is wrapped by the errors returned for an occupancy grid without bins.
	ErrBadGrid = errors.New("the occupancy grid must have at least one bin")

	// ErrEmptyFrame is wrapped by the errors returned for a frame without atoms.
	ErrEmptyFrame = errors.New("frame without atoms")

	// ErrMismatch is wrapped by the errors returned when the number of
	// positions and the number of atoms in the topology differ.
	ErrMismatch = errors.New("positions and topology have different lengths")

	// ErrNoTopology is wrapped by the errors returned when a center species
	// is requested for atoms without a topology.
	ErrNoTopology = errors.New("a topology is needed to select centers by species")
)

// Error is the error type for the altbc package. Errors that occur while
// processing a trajectory carry the frame number.
type Error struct {
	message  string
	deco     []string
	critical bool
	frame    int
	err      error
}

func newError(message, caller string, wrapped error) *Error {
	return &Error{message: message, deco: []string{caller}, critical: true, frame: -1, err: wrapped}
}

func (err *Error) Error() string {
	ret := "goALTBC/altbc: "
	if err.frame >= 0 {
		ret += fmt.Sprintf("frame %d: ", err.frame)
	}
	if err.err != nil && err.err.Error() != err.message {
		return ret + err.err.Error() + ": " + err.message
	}
	return ret + err.message
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

// Frame returns the frame where the error happened, or -1 if the error is
// not associated to a frame.
func (err *Error) Frame() int { return err.frame }

// Unwrap returns the error wrapped, if any.
func (err *Error) Unwrap() error { return err.err }

// frameError wraps err, which happened while processing frame.
func frameError(err error, frame int, caller string) *Error {
	e := newError(err.Error(), caller, err)
	e.frame = frame
	return e
}

// errDecorate decorates the error with the caller's name before returning it,
// if it is an *Error.
func errDecorate(err error, caller string) error {
	if e, ok := err.(*Error); ok {
		e.Decorate(caller)
	}
	return err
}
