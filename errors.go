/*
 * errors.go, part of goALTBC.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package chem

import (
	"errors"
	"fmt"
)

// CError is the error type for the chem package. It implements TrajError.
type CError struct {
	message  string
	filename string
	format   string
	deco     []string
	critical bool
}

func newCError(message, filename, format, caller string) *CError {
	return &CError{message: message, filename: filename, format: format, deco: []string{caller}, critical: true}
}

func (err *CError) Error() string {
	if err.filename == "" {
		return fmt.Sprintf("%s: %s", err.format, err.message)
	}
	return fmt.Sprintf("%s file %s: %s", err.format, err.filename, err.message)
}

// Decorate adds new information to the error
func (err *CError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// FileName returns the file associated to the error, if any.
func (err *CError) FileName() string { return err.filename }

// Format returns the format of the file associated to the error.
func (err *CError) Format() string { return err.format }

// Critical returns true if the error is critical, false otherwise
func (err *CError) Critical() bool { return err.critical }

// lastFrameError implements LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
	format   string
}

// NewLastFrameError returns the error that readers of the given format
// return when the end of the trajectory is reached normally.
func NewLastFrameError(filename, format, caller string) LastFrameError {
	return &lastFrameError{fileName: filename, format: format, deco: []string{caller}}
}

// NormalLastFrameTermination does nothing
func (E *lastFrameError) NormalLastFrameTermination() {}

func (E *lastFrameError) FileName() string { return E.fileName }

func (E *lastFrameError) Error() string { return "EOF" }

func (E *lastFrameError) Critical() bool { return false }

func (E *lastFrameError) Format() string { return E.format }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

// IsLastFrame returns true if err is, or wraps, a LastFrameError.
func IsLastFrame(err error) bool {
	var lf LastFrameError
	return errors.As(err, &lf)
}

// errDecorate decorates the error with the caller's name before returning it,
// if the error implements Error.
func errDecorate(err error, caller string) error {
	var e Error
	if errors.As(err, &e) {
		e.Decorate(caller)
	}
	return err
}
