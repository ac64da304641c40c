package rcs

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedInput    = errors.New("malformed input")
	ErrInconsistentGraph = errors.New("inconsistent revision graph")
	ErrUnknownRevision   = errors.New("unknown revision")
	ErrMissingDelta      = errors.New("missing deltatext")
	ErrAmbiguousTag      = errors.New("ambiguous tag")
)

// SyntaxError reports a lexical or grammar violation at a byte offset
// within the source. It matches ErrMalformedInput with errors.Is.
type SyntaxError struct {
	Offset   int
	Expected string
	Found    string
}

func (e *SyntaxError) Error() string {
	if e.Found == "" {
		return fmt.Sprintf("%s at offset %d: %s", ErrMalformedInput, e.Offset, e.Expected)
	}
	return fmt.Sprintf("%s at offset %d: expected %s; got: %s", ErrMalformedInput, e.Offset, e.Expected, e.Found)
}

func (e *SyntaxError) Unwrap() error {
	return ErrMalformedInput
}
