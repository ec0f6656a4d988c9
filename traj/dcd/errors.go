package dcd

import (
	"errors"
	"fmt"

	chem "github.com/rmera/goaltbc"
)

// Error is the general structure for DCD trajectory errors. It fullfills chem.Error and chem.TrajError
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err *Error) Error() string {
	return fmt.Sprintf("dcd file %s error: %s", err.filename, err.message)
}

// Decorate Adds new information to the error
func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// FileName returns the file to which the failing trajectory was associated
func (err *Error) FileName() string { return err.filename }

// Format returns the format of the file (always "dcd") associated to the error
func (err *Error) Format() string { return "dcd" }

// Critical returns true if the error is critical, false otherwise
func (err *Error) Critical() bool { return err.critical }

const (
	TrajUnIni      = "Traj object uninitialized to read"
	UnableToOpen   = "Unable to open file"
	WrongFormat    = "Wrong format in the DCD file or frame"
	NotEnoughSpace = "Not enough space for the coordinates"
	Xplor          = "X-plor DCD files are not supported"
	FixedAtoms     = "DCD files with fixed atoms are not supported"
)

// errDecorate decorates the error with the caller's name before returning it,
// if it implements chem.Error.
func errDecorate(err error, caller string) error {
	var e chem.Error
	if errors.As(err, &e) {
		e.Decorate(caller)
	}
	return err
}
