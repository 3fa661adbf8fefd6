// Apache-2.0 licensed. See LICENSE for the full text.

// Package errs classifies the errors this module returns into three
// kinds, so callers can tell "you passed something I can't use" apart
// from "the bytes you gave me aren't a sketch" apart from "you called
// this in an order the sketch doesn't support". Each kind wraps a
// sentinel that works with errors.Is; construction helpers attach the
// offending detail as a formatted message.
package errs

import (
	"errors"
	"fmt"
)

// ErrArgument marks an error caused by an out-of-range or otherwise
// invalid caller-supplied parameter (lg_k, seed, d/w, probability p, ...).
var ErrArgument = errors.New("invalid argument")

// ErrCorruption marks an error detected while decoding serialized bytes:
// a bad preamble, an unrecognized family or version byte, a truncated
// buffer, or a seed-hash mismatch between two sketches being combined.
var ErrCorruption = errors.New("corrupt or incompatible sketch bytes")

// ErrState marks an error caused by calling an operation before the
// object has the state it requires, e.g. reading the result of a
// set operation that was never updated.
var ErrState = errors.New("invalid sketch state")

type classified struct {
	kind error
	msg  string
}

func (e *classified) Error() string { return e.msg }
func (e *classified) Unwrap() error { return e.kind }

// Argument builds an ErrArgument-classified error with a formatted message.
func Argument(format string, a ...any) error {
	return &classified{kind: ErrArgument, msg: fmt.Sprintf(format, a...)}
}

// Corruption builds an ErrCorruption-classified error with a formatted message.
func Corruption(format string, a ...any) error {
	return &classified{kind: ErrCorruption, msg: fmt.Sprintf(format, a...)}
}

// State builds an ErrState-classified error with a formatted message.
func State(format string, a ...any) error {
	return &classified{kind: ErrState, msg: fmt.Sprintf(format, a...)}
}
