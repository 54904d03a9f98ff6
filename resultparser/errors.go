package resultparser

import (
	"errors"
	"fmt"
)

var (
	ErrUnparseableClass    = errors.New("unparseable class line")
	ErrUnparseableScore    = errors.New("unparseable score line")
	ErrUnknownPatientOrgan = errors.New("patient has no organ in the registry")
)

// ParseError is raised when a line can't be parsed given the current state of
// the parser. Kind is one of the ErrUnparseable* sentinels.
type ParseError struct {
	State   State
	Line    string
	Message string
	Kind    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (state was %s, line was %q)", e.Message, e.State, e.Line)
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}
