package section

import (
	"errors"
	"fmt"
)

// Protocol errors. All of them are permanent for the request that raised
// them; none is retried.
var (
	ErrTooSmall         = errors.New("section smaller than required minimum")
	ErrReadOnly         = errors.New("section is capability-marked read-only")
	ErrNotExposed       = errors.New("section is not exposed by capabilities")
	ErrCountExceedsCaps = errors.New("entry count exceeds capability maximum")
	ErrShortData        = errors.New("section data too short")
	ErrCmdTimeout       = errors.New("command did not complete in time")
	ErrStorage          = errors.New("on-board storage is not available")
)

// Error tags a failure with the stable name of the section it crossed.
type Error struct {
	Section string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("section %s: %v", e.Section, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func secErr(name string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Section: name, Err: err}
}

func secErrf(name string, format string, args ...any) error {
	return &Error{Section: name, Err: fmt.Errorf(format, args...)}
}
