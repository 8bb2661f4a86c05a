package engine

import (
	"errors"
	"fmt"

	"github.com/tartampluch/go-encounter/internal/config"
)

// ErrNoCalendar is returned by event commands when no EventSource is wired.
var ErrNoCalendar = errors.New(config.ErrNoEventSource)

// ParseError reports user input that could not be understood, such as a
// malformed date in "birthday add". Callers detect it with errors.As and
// answer with a client error instead of an upstream failure.
type ParseError struct {
	Input  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %q: %v", e.Reason, e.Input, e.Err)
	}
	return fmt.Sprintf("%s %q", e.Reason, e.Input)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
