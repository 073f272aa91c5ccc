package collector

import (
	"errors"
	"fmt"

	"github.com/samgozman/vn-market-thread/pkg/errlvl"
)

var (
	// ErrUnrecoverable marks errors that will not go away on retry (malformed response, wrong params).
	ErrUnrecoverable = errors.New("unrecoverable")
	errPanic         = errors.New("provider panicked")
	errWrongParams   = errors.New("unexpected params")
)

// FetchError is the "data fetch error" of a provider.
// It carries the source name, a short message and the underlying cause.
type FetchError struct {
	Source  string     // source name (e.g. "gold")
	Message string     // short description of what failed
	Cause   error      // underlying transport or parsing error (optional)
	level   errlvl.Lvl // severity level of the error
}

// NewFetchError creates a new FetchError with WARN level: one failed source degrades the message, it doesn't stop the run.
func NewFetchError(source, message string, cause error) *FetchError {
	return &FetchError{
		Source:  source,
		Message: message,
		Cause:   cause,
		level:   errlvl.WARN,
	}
}

// WithLevel overrides the severity level of the error.
func (e *FetchError) WithLevel(lvl errlvl.Lvl) *FetchError {
	e.level = lvl
	return e
}

func (e *FetchError) Error() string {
	return e.getWrappedError().Error()
}

func (e *FetchError) Unwrap() error {
	return e.getWrappedError()
}

func (e *FetchError) getWrappedError() error {
	if e.Cause == nil {
		return errlvl.Wrap(fmt.Errorf("%s: %s", e.Source, e.Message), e.level)
	}

	return errlvl.Wrap(fmt.Errorf("%s: %s: %w", e.Source, e.Message, e.Cause), e.level)
}

// Unrecoverable marks err as not worth retrying.
func Unrecoverable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrUnrecoverable, err)
}

// WrongParams returns the error a provider reports when it receives params of the wrong variant.
func WrongParams(source string, got Params) *FetchError {
	return NewFetchError(source, fmt.Sprintf("%T", got), Unrecoverable(errWrongParams))
}

// asFetchError converts any error returned by a provider into a FetchError for the given source.
func asFetchError(source string, err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}

	return NewFetchError(source, "unexpected error", err)
}
